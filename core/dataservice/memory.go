package dataservice

import (
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an ordered in-memory data set of server shaped items.
//
// Its methods have the signatures of the mock accessors, so they can be passed
// to the operation configs directly:
//
//	b.Create(dataservice.CreateConfig[Widget, Widget]{
//		DomainObject: w,
//		UseMock:      true,
//		AddMockData:  store.Add,
//	})
type MemoryStore[S any] struct {
	mu    sync.Mutex
	items []S
	id    func(S) string
	setID func(S, string) S
}

// NewMemoryStore returns a store holding a copy of items. id returns the identifier of an item.
func NewMemoryStore[S any](id func(S) string, items ...S) *MemoryStore[S] {
	return &MemoryStore[S]{
		items: append([]S{}, items...),
		id:    id,
	}
}

// WithIDGenerator makes Add assign a new uuid to items without identifier
func (m *MemoryStore[S]) WithIDGenerator(setID func(S, string) S) *MemoryStore[S] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setID = setID
	return m
}

// List returns a copy of all items in order
func (m *MemoryStore[S]) List() []S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]S{}, m.items...)
}

// Len returns the number of items
func (m *MemoryStore[S]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Get returns the item with the given identifier
func (m *MemoryStore[S]) Get(id string) (S, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		return m.items[i], true
	}
	var zero S
	return zero, false
}

// Add appends item
func (m *MemoryStore[S]) Add(item S) {
	m.Insert(item)
}

// Insert appends item and returns it as stored, with a new identifier if the
// store has an id generator and item had none.
func (m *MemoryStore[S]) Insert(item S) S {
	m.mu.Lock()
	defer m.mu.Unlock()
	item = m.assignID(item)
	m.items = append(m.items, item)
	return item
}

// InsertIfAbsent is Insert, unless an item with the same identifier exists. It
// returns false in that case and leaves the store unchanged.
func (m *MemoryStore[S]) InsertIfAbsent(item S) (S, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item = m.assignID(item)
	if i := m.indexOf(m.id(item)); i >= 0 {
		return m.items[i], false
	}
	m.items = append(m.items, item)
	return item, true
}

// Put replaces the item with the same identifier or appends item if there is none
func (m *MemoryStore[S]) Put(item S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(m.id(item)); i >= 0 {
		m.items[i] = item
		return
	}
	m.items = append(m.items, item)
}

// Modify replaces the item with identifier id by fn of it and returns the result.
// It returns false if there is no such item. fn must not call the store.
func (m *MemoryStore[S]) Modify(id string, fn func(S) S) (S, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		var zero S
		return zero, false
	}
	m.items[i] = fn(m.items[i])
	return m.items[i], true
}

// RemoveID removes and returns the item with identifier id
func (m *MemoryStore[S]) RemoveID(id string) (S, bool) {
	return m.RemoveIf(id, nil)
}

// RemoveIf removes and returns the item with identifier id if match returns true
// for it. A nil match matches every item. match must not call the store.
func (m *MemoryStore[S]) RemoveIf(id string, match func(S) bool) (S, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 || (match != nil && !match(m.items[i])) {
		var zero S
		return zero, false
	}
	item := m.items[i]
	m.items = append(m.items[:i], m.items[i+1:]...)
	return item, true
}

func (m *MemoryStore[S]) assignID(item S) S {
	if m.setID != nil && m.id(item) == "" {
		item = m.setID(item, uuid.New().String())
	}
	return item
}

// Update replaces the item with the same identifier. Unknown items are ignored.
func (m *MemoryStore[S]) Update(item S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(m.id(item)); i >= 0 {
		m.items[i] = item
	}
}

// Remove removes the item with the same identifier. Unknown items are ignored.
func (m *MemoryStore[S]) Remove(item S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(m.id(item)); i >= 0 {
		m.items = append(m.items[:i], m.items[i+1:]...)
	}
}

func (m *MemoryStore[S]) indexOf(id string) int {
	for i, item := range m.items {
		if m.id(item) == id {
			return i
		}
	}
	return -1
}

// MemoryItem holds the single item of a singleton resource
type MemoryItem[S any] struct {
	mu   sync.Mutex
	item S
}

// NewMemoryItem returns a holder for item
func NewMemoryItem[S any](item S) *MemoryItem[S] {
	return &MemoryItem[S]{item: item}
}

// Get returns the item
func (m *MemoryItem[S]) Get() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.item
}

// Set replaces the item
func (m *MemoryItem[S]) Set(item S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.item = item
}
