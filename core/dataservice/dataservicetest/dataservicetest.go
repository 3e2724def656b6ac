/*
Package dataservicetest provides a DataService double for unit tests

Every operation returns a pending future which settles on Flush:

	widgets := dataservicetest.NewMock[Widget]().MockList([]Widget{{ID: "1"}})
	f := widgets.List(nil)
	widgets.Flush()
	list, _ := f.Wait()

Each operation is backed by a promisetest.Mock, which records the arguments of
every call. SingletonMock and ParentMock do the same for singleton and parent
data services.
*/
package dataservicetest

import (
	"sync"

	"github.com/relabs-tech/utilities/core/dataservice"
	"github.com/relabs-tech/utilities/core/promise"
	"github.com/relabs-tech/utilities/core/promise/promisetest"
)

// Mock is a dataservice.DataService whose futures settle on Flush
type Mock[C any] struct {
	ListMock   *promisetest.Mock[[]C]
	ReadMock   *promisetest.Mock[C]
	CreateMock *promisetest.Mock[C]
	UpdateMock *promisetest.Mock[C]
	DeleteMock *promisetest.Mock[struct{}]
}

var _ dataservice.DataService[struct{}] = (*Mock[struct{}])(nil)
var _ promisetest.Flusher = (*Mock[struct{}])(nil)

// NewMock returns a mock which lists nothing, reads the zero value and echoes
// created and updated objects
func NewMock[C any]() *Mock[C] {
	var zero C
	return &Mock[C]{
		ListMock:   promisetest.NewMock(promisetest.Value([]C{})),
		ReadMock:   promisetest.NewMock(promisetest.Value(zero)),
		CreateMock: promisetest.NewMock(echo[C](nil)),
		UpdateMock: promisetest.NewMock(echo[C](nil)),
		DeleteMock: promisetest.NewMock(promisetest.Value(struct{}{})),
	}
}

// echo resolves with fn of the first call argument, or the argument itself if fn is nil
func echo[C any](fn func(C) C) promisetest.Result[C] {
	return promisetest.Producer(func(args ...interface{}) C {
		obj, _ := args[0].(C)
		if fn == nil {
			return obj
		}
		return fn(obj)
	})
}

// MockList makes List resolve with data
func (m *Mock[C]) MockList(data []C) *Mock[C] {
	m.ListMock = promisetest.NewMock(promisetest.Value(data))
	return m
}

// MockRead makes Read resolve with data
func (m *Mock[C]) MockRead(data C) *Mock[C] {
	m.ReadMock = promisetest.NewMock(promisetest.Value(data))
	return m
}

// MockCreate makes Create resolve with fn of the created object. A nil fn echoes the object.
func (m *Mock[C]) MockCreate(fn func(C) C) *Mock[C] {
	m.CreateMock = promisetest.NewMock(echo(fn))
	return m
}

// MockUpdate makes Update resolve with fn of the updated object. A nil fn echoes the object.
func (m *Mock[C]) MockUpdate(fn func(C) C) *Mock[C] {
	m.UpdateMock = promisetest.NewMock(echo(fn))
	return m
}

// MockDelete makes Delete resolve
func (m *Mock[C]) MockDelete() *Mock[C] {
	m.DeleteMock = promisetest.NewMock(promisetest.Value(struct{}{}))
	return m
}

// List implements dataservice.DataService
func (m *Mock[C]) List(params map[string]string) *promise.Future[[]C] {
	return m.ListMock.Call(params)
}

// Read implements dataservice.DataService
func (m *Mock[C]) Read(id string) *promise.Future[C] {
	return m.ReadMock.Call(id)
}

// Create implements dataservice.DataService
func (m *Mock[C]) Create(domainObject C) *promise.Future[C] {
	return m.CreateMock.Call(domainObject)
}

// Update implements dataservice.DataService
func (m *Mock[C]) Update(domainObject C) *promise.Future[C] {
	return m.UpdateMock.Call(domainObject)
}

// Delete implements dataservice.DataService
func (m *Mock[C]) Delete(domainObject C) *promise.Future[struct{}] {
	return m.DeleteMock.Call(domainObject)
}

// Flush settles the pending futures of all operations
func (m *Mock[C]) Flush() {
	promisetest.FlushAll(m.ListMock, m.ReadMock, m.CreateMock, m.UpdateMock, m.DeleteMock)
}

// SingletonMock is a dataservice.SingletonDataService whose futures settle on Flush
type SingletonMock[C any] struct {
	GetMock    *promisetest.Mock[C]
	UpdateMock *promisetest.Mock[C]
}

var _ dataservice.SingletonDataService[struct{}] = (*SingletonMock[struct{}])(nil)
var _ promisetest.Flusher = (*SingletonMock[struct{}])(nil)

// NewSingletonMock returns a mock which reads the zero value and echoes updated objects
func NewSingletonMock[C any]() *SingletonMock[C] {
	var zero C
	return &SingletonMock[C]{
		GetMock:    promisetest.NewMock(promisetest.Value(zero)),
		UpdateMock: promisetest.NewMock(echo[C](nil)),
	}
}

// MockGet makes Get resolve with data
func (m *SingletonMock[C]) MockGet(data C) *SingletonMock[C] {
	m.GetMock = promisetest.NewMock(promisetest.Value(data))
	return m
}

// MockUpdate makes Update resolve with fn of the updated object. A nil fn echoes the object.
func (m *SingletonMock[C]) MockUpdate(fn func(C) C) *SingletonMock[C] {
	m.UpdateMock = promisetest.NewMock(echo(fn))
	return m
}

// Get implements dataservice.SingletonDataService
func (m *SingletonMock[C]) Get() *promise.Future[C] {
	return m.GetMock.Call()
}

// Update implements dataservice.SingletonDataService
func (m *SingletonMock[C]) Update(domainObject C) *promise.Future[C] {
	return m.UpdateMock.Call(domainObject)
}

// Flush settles the pending futures of all operations
func (m *SingletonMock[C]) Flush() {
	promisetest.FlushAll(m.GetMock, m.UpdateMock)
}

// ParentMock is a dataservice.ParentDataService double. ChildContracts returns
// whatever MockChild set up, typically a struct of mocks.
type ParentMock[C, Children any] struct {
	*Mock[C]

	mu       sync.Mutex
	children func(id string) Children
	childIDs []string
}

var _ dataservice.ParentDataService[struct{}, struct{}] = (*ParentMock[struct{}, struct{}])(nil)

// NewParentMock returns a parent mock whose ChildContracts returns the zero Children
func NewParentMock[C, Children any]() *ParentMock[C, Children] {
	return &ParentMock[C, Children]{Mock: NewMock[C]()}
}

// MockChild makes ChildContracts return children(id)
func (m *ParentMock[C, Children]) MockChild(children func(id string) Children) *ParentMock[C, Children] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.children = children
	return m
}

// ChildContracts implements dataservice.ParentDataService
func (m *ParentMock[C, Children]) ChildContracts(id string) Children {
	m.mu.Lock()
	m.childIDs = append(m.childIDs, id)
	children := m.children
	m.mu.Unlock()
	if children == nil {
		var zero Children
		return zero
	}
	return children(id)
}

// ChildIDs returns the identifiers ChildContracts was called with, in order
func (m *ParentMock[C, Children]) ChildIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.childIDs...)
}
