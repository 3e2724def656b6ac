package promise

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewSettlesOnce(t *testing.T) {
	f := New(func(resolve func(int), reject func(error)) {
		resolve(1)
		resolve(2)
		reject(errors.New("too late"))
	})
	require.True(t, f.Settled())
	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestRejected(t *testing.T) {
	boom := errors.New("boom")
	f := Rejected[string](boom)
	v, err := f.Await(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, v)
}

func TestGo(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (string, error) {
		<-release
		return "done", nil
	})
	assert.False(t, f.Settled())
	close(release)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestAwaitContext(t *testing.T) {
	release := make(chan struct{})
	f := Go(func() (int, error) {
		<-release
		return 42, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the work itself was not cancelled
	close(release)
	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestThen(t *testing.T) {
	toString := func(i int) (string, error) { return strconv.Itoa(i), nil }

	v, err := Then(Resolved(7), toString, nil).Wait()
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	release := make(chan struct{})
	pending := Go(func() (int, error) {
		<-release
		return 8, nil
	})
	next := Then(pending, toString, nil)
	close(release)
	v, err = next.Wait()
	require.NoError(t, err)
	assert.Equal(t, "8", v)
}

func TestThenRejection(t *testing.T) {
	boom := errors.New("boom")
	called := false
	toString := func(i int) (string, error) {
		called = true
		return strconv.Itoa(i), nil
	}

	_, err := Then(Rejected[int](boom), toString, nil).Wait()
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)

	v, err := Then(Rejected[int](boom), toString, func(err error) (string, error) {
		return "recovered from " + err.Error(), nil
	}).Wait()
	require.NoError(t, err)
	assert.Equal(t, "recovered from boom", v)

	_, err = Then[int, string](Resolved(1), nil, nil).Wait()
	assert.ErrorIs(t, err, ErrNilCallback)
}
