package dataservice

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named struct {
	ID   string
	Name string
}

func namedID(n named) string { return n.ID }

func TestMemoryStore(t *testing.T) {
	seed := []named{{"a", "first"}, {"b", "second"}}
	store := NewMemoryStore(namedID, seed...)

	// the store holds a copy of the seed
	seed[0].Name = "changed"
	item, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "first", item.Name)

	_, ok = store.Get("z")
	assert.False(t, ok)

	store.Add(named{"c", "third"})
	assert.Equal(t, 3, store.Len())

	store.Update(named{"b", "updated"})
	store.Update(named{"unknown", "ignored"})
	assert.Equal(t, []named{{"a", "first"}, {"b", "updated"}, {"c", "third"}}, store.List())

	store.Remove(named{ID: "a"})
	store.Remove(named{ID: "unknown"})
	assert.Equal(t, []named{{"b", "updated"}, {"c", "third"}}, store.List())

	// List returns a copy
	list := store.List()
	list[0].Name = "mutated"
	item, _ = store.Get("b")
	assert.Equal(t, "updated", item.Name)
}

func TestMemoryStoreIDGenerator(t *testing.T) {
	store := NewMemoryStore(namedID).WithIDGenerator(func(n named, id string) named {
		n.ID = id
		return n
	})

	stored := store.Insert(named{Name: "new"})
	_, err := uuid.Parse(stored.ID)
	require.NoError(t, err)

	kept := store.Insert(named{ID: "mine", Name: "kept"})
	assert.Equal(t, "mine", kept.ID)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStoreAtomicOperations(t *testing.T) {
	store := NewMemoryStore(namedID, named{"a", "first"})

	stored, ok := store.InsertIfAbsent(named{"a", "again"})
	assert.False(t, ok)
	assert.Equal(t, "first", stored.Name)
	stored, ok = store.InsertIfAbsent(named{"b", "second"})
	assert.True(t, ok)
	assert.Equal(t, "second", stored.Name)

	modified, ok := store.Modify("a", func(n named) named {
		n.Name += "!"
		return n
	})
	assert.True(t, ok)
	assert.Equal(t, named{"a", "first!"}, modified)
	_, ok = store.Modify("z", func(n named) named { return n })
	assert.False(t, ok)

	store.Put(named{"b", "replaced"})
	store.Put(named{"c", "appended"})
	assert.Equal(t, []named{{"a", "first!"}, {"b", "replaced"}, {"c", "appended"}}, store.List())

	_, ok = store.RemoveIf("a", func(n named) bool { return n.Name == "other" })
	assert.False(t, ok)
	removed, ok := store.RemoveID("a")
	assert.True(t, ok)
	assert.Equal(t, "first!", removed.Name)
	_, ok = store.RemoveID("a")
	assert.False(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStoreConcurrentInsert(t *testing.T) {
	store := NewMemoryStore(namedID)

	const n = 100
	var inserted int64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.InsertIfAbsent(named{"same", "racer"}); ok {
				atomic.AddInt64(&inserted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), inserted)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryItem(t *testing.T) {
	item := NewMemoryItem(named{"s", "settings"})
	assert.Equal(t, named{"s", "settings"}, item.Get())
	item.Set(named{"s", "changed"})
	assert.Equal(t, "changed", item.Get().Name)
}
