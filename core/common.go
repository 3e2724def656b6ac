package core

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Operation represents a data access operation, one of List, Read, Create, Update, Delete
type Operation string

// all supported data access operations
const (
	OperationList   Operation = "list"
	OperationRead   Operation = "read"
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// UnmarshalJSON is a custom JSON unmarshaller
func (o *Operation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Operation(s)
	switch *o {
	case OperationList, OperationRead, OperationCreate, OperationUpdate, OperationDelete:
		return nil
	default:
		return fmt.Errorf("%s is not valid Operation", s)
	}
}

// Mode is the code path an operation took
type Mode string

// the two code paths
const (
	ModeNetwork Mode = "network"
	ModeMock    Mode = "mock"
)

// Plural returns the plural form of the passed singular string.
//
// This is the algorithm used to create idiomatic REST routes
func Plural(singular string) string {
	if strings.HasSuffix(singular, "y") {
		return strings.TrimSuffix(singular, "y") + "ies"
	}
	if strings.HasSuffix(singular, "child") {
		return strings.TrimSuffix(singular, "child") + "children"
	}
	return singular + "s"
}
