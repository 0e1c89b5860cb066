package library

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// Playlists stores named playlists in creation order. Every accessor returns copies, so callers never share item
// slices with the store.
type Playlists struct {
	mu        sync.RWMutex
	playlists map[string]*models.Playlist
	order     []string
	newID     func() string
	now       func() time.Time
}

// NewPlaylists creates an empty playlist store that assigns UUIDv7 ids.
func NewPlaylists() *Playlists {
	return &Playlists{
		playlists: make(map[string]*models.Playlist),
		newID:     shared.GenerateID,
		now:       time.Now,
	}
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &shared.ValidationError{Field: "playlist name", Reason: "is empty"}
	}
	return name, nil
}

// Create adds an empty playlist with a fresh id.
func (p *Playlists) Create(name string) (models.Playlist, error) {
	name, err := validName(name)
	if err != nil {
		return models.Playlist{}, err
	}

	pl := &models.Playlist{ID: p.newID(), Name: name, Items: []models.CatalogItem{}, CreatedAt: p.now()}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.playlists[pl.ID] = pl
	p.order = append(p.order, pl.ID)
	return pl.Clone(), nil
}

// Delete removes the playlist and returns its name.
func (p *Playlists) Delete(id string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pl, ok := p.playlists[id]
	if !ok {
		return "", notFound(id)
	}

	delete(p.playlists, id)
	if i := slices.Index(p.order, id); i >= 0 {
		p.order = slices.Delete(p.order, i, i+1)
	}
	return pl.Name, nil
}

// Rename changes the playlist's name.
func (p *Playlists) Rename(id, name string) (models.Playlist, error) {
	name, err := validName(name)
	if err != nil {
		return models.Playlist{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pl, ok := p.playlists[id]
	if !ok {
		return models.Playlist{}, notFound(id)
	}
	pl.Name = name
	return pl.Clone(), nil
}

// AddItem appends item to the playlist.
//
// It returns a [shared.DuplicateError] when an item with the same key is already in that playlist.
func (p *Playlists) AddItem(id string, item models.CatalogItem) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pl, ok := p.playlists[id]
	if !ok {
		return notFound(id)
	}

	key := item.Key()
	if slices.ContainsFunc(pl.Items, func(it models.CatalogItem) bool { return it.Key() == key }) {
		return &shared.DuplicateError{Container: pl.Name, Title: item.Title}
	}

	pl.Items = append(pl.Items, item)
	return nil
}

// RemoveItem drops the item with key from the playlist and returns its title.
func (p *Playlists) RemoveItem(id string, key models.Key) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pl, ok := p.playlists[id]
	if !ok {
		return "", notFound(id)
	}

	i := slices.IndexFunc(pl.Items, func(it models.CatalogItem) bool { return it.Key() == key })
	if i < 0 {
		return "", &shared.NotFoundError{Resource: "playlist item", ID: string(key)}
	}

	title := pl.Items[i].Title
	pl.Items = slices.Delete(pl.Items, i, i+1)
	return title, nil
}

func (p *Playlists) Get(id string) (models.Playlist, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pl, ok := p.playlists[id]
	if !ok {
		return models.Playlist{}, notFound(id)
	}
	return pl.Clone(), nil
}

// Items returns the playlist's items in insertion order.
func (p *Playlists) Items(id string) ([]models.CatalogItem, error) {
	pl, err := p.Get(id)
	if err != nil {
		return nil, err
	}
	return pl.Items, nil
}

// List returns every playlist in creation order.
func (p *Playlists) List() []models.Playlist {
	p.mu.RLock()
	defer p.mu.RUnlock()

	list := make([]models.Playlist, 0, len(p.order))
	for _, id := range p.order {
		list = append(list, p.playlists[id].Clone())
	}
	return list
}

func (p *Playlists) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order)
}

func notFound(id string) *shared.NotFoundError {
	return &shared.NotFoundError{Resource: "playlist", ID: id}
}
