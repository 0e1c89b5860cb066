package library

import (
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// Favorites is an insertion-ordered set of catalog items with at most one entry per key.
type Favorites struct {
	mu      sync.RWMutex
	entries map[models.Key]models.FavoriteEntry
	order   []models.Key
	now     func() time.Time
}

// NewFavorites creates an empty favorites set.
func NewFavorites() *Favorites {
	return &Favorites{entries: make(map[models.Key]models.FavoriteEntry), now: time.Now}
}

// Add stores item unless its key is already present. It reports whether the item was newly added.
func (f *Favorites) Add(item models.CatalogItem) bool {
	key := item.Key()

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.entries[key]; ok {
		return false
	}
	f.entries[key] = models.FavoriteEntry{Item: item, Kind: item.Kind, AddedAt: f.now()}
	f.order = append(f.order, key)
	return true
}

// Remove deletes the entry for key and returns its title.
func (f *Favorites) Remove(key models.Key) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[key]
	if !ok {
		return "", &shared.NotFoundError{Resource: "favorite", ID: string(key)}
	}

	delete(f.entries, key)
	if i := slices.Index(f.order, key); i >= 0 {
		f.order = slices.Delete(f.order, i, i+1)
	}
	return entry.Item.Title, nil
}

func (f *Favorites) Contains(key models.Key) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.entries[key]
	return ok
}

// List returns the entries in the order they were added.
func (f *Favorites) List() []models.FavoriteEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	list := make([]models.FavoriteEntry, 0, len(f.order))
	for _, key := range f.order {
		list = append(list, f.entries[key])
	}
	return list
}

func (f *Favorites) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}
