package dataservice

import (
	"errors"
	"fmt"
)

// ErrTransform is returned when a missing transform function cannot stand in
// as identity, because server shape and caller shape are different types.
var ErrTransform = errors.New("no transform between shapes")

// Transform converts between the server shape S and the caller shape C.
//
// Either function may be nil, in which case the identity is used.
type Transform[S, C any] struct {
	FromServer func(S) (C, error)
	ToServer   func(C) (S, error)
}

// Func adapts a conversion function which cannot fail
func Func[A, B any](fn func(A) B) func(A) (B, error) {
	return func(a A) (B, error) {
		return fn(a), nil
	}
}

// resolve returns a copy of the transform with nil functions replaced by identity
func (t *Transform[S, C]) resolve() Transform[S, C] {
	var resolved Transform[S, C]
	if t != nil {
		resolved = *t
	}
	if resolved.FromServer == nil {
		resolved.FromServer = identity[S, C]
	}
	if resolved.ToServer == nil {
		resolved.ToServer = identity[C, S]
	}
	return resolved
}

func identity[A, B any](a A) (B, error) {
	var zero B
	if any(a) == nil {
		// nil interface values pass through between interface shapes
		return zero, nil
	}
	b, ok := any(a).(B)
	if !ok {
		return zero, fmt.Errorf("%w: %T to %T", ErrTransform, a, zero)
	}
	return b, nil
}

func fromServerAll[S, C any](fromServer func(S) (C, error), items []S) ([]C, error) {
	result := make([]C, 0, len(items))
	for _, item := range items {
		c, err := fromServer(item)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}
