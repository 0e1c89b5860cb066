// package tasks implements the session operations behind every CLI and TUI action.
//
// The core abstraction is Engine, which joins the catalog client with the favorites and playlist stores.
// Long-running exports emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// HistoryRecorder persists executed searches (repositories.SearchHistoryRepository).
type HistoryRecorder interface {
	RecordSearch(query string, kind models.Kind, provider string, results int) error
}

// EngineOpts configures optional [Engine] collaborators.
type EngineOpts struct {
	History HistoryRecorder // nil disables history
	Logger  *log.Logger
	Limit   int // default page size passed to the catalog
}

// Engine owns one session: a catalog client plus the favorites and playlist stores.
type Engine struct {
	catalog   services.Catalog
	favorites *library.Favorites
	playlists *library.Playlists
	history   HistoryRecorder
	logger    *log.Logger
	limit     int
}

// NewEngine creates a session over catalog with empty stores.
func NewEngine(catalog services.Catalog, opts EngineOpts) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Engine{
		catalog:   catalog,
		favorites: library.NewFavorites(),
		playlists: library.NewPlaylists(),
		history:   opts.History,
		logger:    logger,
		limit:     opts.Limit,
	}
}

func (e *Engine) Source() models.Source { return e.catalog.Source() }

// Search validates the query, runs it against the catalog and records it in the history.
//
// A history failure is logged and never fails the search.
func (e *Engine) Search(ctx context.Context, query string, kind models.Kind) ([]models.CatalogItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &shared.ValidationError{Field: "search query", Reason: "is empty"}
	}
	if !kind.Valid() {
		return nil, &shared.ValidationError{Field: "kind", Reason: "must be track, artist or album"}
	}

	items, err := e.catalog.Search(ctx, query, kind, e.limit)
	if err != nil {
		e.logger.Error("search failed", "query", query, "kind", kind, "error", err)
		return nil, err
	}

	if e.history != nil {
		if err := e.history.RecordSearch(query, kind, string(e.catalog.Source()), len(items)); err != nil {
			e.logger.Warn("failed to record search", "query", query, "error", err)
		}
	}

	return items, nil
}

// Lookup fetches one item by id.
func (e *Engine) Lookup(ctx context.Context, id string, kind models.Kind) (*models.CatalogItem, error) {
	return e.catalog.FetchDetail(ctx, id, kind)
}

// fresh re-fetches item so that stored records reflect the catalog's current data.
func (e *Engine) fresh(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error) {
	detail, err := e.catalog.FetchDetail(ctx, item.ID, item.Kind)
	if err != nil {
		return models.CatalogItem{}, err
	}
	return *detail, nil
}

// IsFavorite reports whether key is in the favorites.
func (e *Engine) IsFavorite(key models.Key) bool { return e.favorites.Contains(key) }

// Favorites lists favorite entries in insertion order.
func (e *Engine) Favorites() []models.FavoriteEntry { return e.favorites.List() }

// AddFavorite fetches a fresh copy of item and adds it to the favorites.
//
// An item already present yields a [shared.DuplicateError] without a remote call.
func (e *Engine) AddFavorite(ctx context.Context, item models.CatalogItem) (models.CatalogItem, error) {
	if e.favorites.Contains(item.Key()) {
		return item, &shared.DuplicateError{Container: "favorites", Title: item.Title}
	}

	detail, err := e.fresh(ctx, item)
	if err != nil {
		return item, err
	}

	if !e.favorites.Add(detail) {
		return detail, &shared.DuplicateError{Container: "favorites", Title: detail.Title}
	}
	e.logger.Debug("favorite added", "key", detail.Key())
	return detail, nil
}

// RemoveFavorite removes key from the favorites and returns the removed title.
func (e *Engine) RemoveFavorite(key models.Key) (string, error) {
	return e.favorites.Remove(key)
}

// ToggleFavorite removes item when it is a favorite and adds it otherwise. It reports whether the item is now a favorite.
func (e *Engine) ToggleFavorite(ctx context.Context, item models.CatalogItem) (bool, string, error) {
	if e.favorites.Contains(item.Key()) {
		title, err := e.favorites.Remove(item.Key())
		return false, title, err
	}

	detail, err := e.AddFavorite(ctx, item)
	return err == nil, detail.Title, err
}

// Playlists lists playlists in creation order.
func (e *Engine) Playlists() []models.Playlist { return e.playlists.List() }

func (e *Engine) Playlist(id string) (models.Playlist, error) { return e.playlists.Get(id) }

func (e *Engine) PlaylistItems(id string) ([]models.CatalogItem, error) { return e.playlists.Items(id) }

// CreatePlaylist creates an empty local playlist.
func (e *Engine) CreatePlaylist(name string) (models.Playlist, error) {
	p, err := e.playlists.Create(name)
	if err != nil {
		return p, err
	}
	e.logger.Debug("playlist created", "id", p.ID, "name", p.Name)
	return p, nil
}

// DeletePlaylist deletes a playlist. Callers confirm with the user first.
func (e *Engine) DeletePlaylist(id string) (string, error) {
	return e.playlists.Delete(id)
}

// RenamePlaylist changes a playlist's name.
func (e *Engine) RenamePlaylist(id, name string) (models.Playlist, error) {
	return e.playlists.Rename(id, name)
}

// AddToPlaylist fetches a fresh copy of item and appends it to the playlist.
//
// Unknown playlists and items already in the playlist are reported before any remote call.
func (e *Engine) AddToPlaylist(ctx context.Context, playlistID string, item models.CatalogItem) (models.CatalogItem, error) {
	p, err := e.playlists.Get(playlistID)
	if err != nil {
		return item, err
	}

	key := item.Key()
	if slices.ContainsFunc(p.Items, func(it models.CatalogItem) bool { return it.Key() == key }) {
		return item, &shared.DuplicateError{Container: p.Name, Title: item.Title}
	}

	detail, err := e.fresh(ctx, item)
	if err != nil {
		return item, err
	}

	if err := e.playlists.AddItem(playlistID, detail); err != nil {
		return detail, err
	}
	e.logger.Debug("playlist item added", "playlist", playlistID, "key", detail.Key())
	return detail, nil
}

// RemoveFromPlaylist drops key from the playlist and returns the removed title.
func (e *Engine) RemoveFromPlaylist(playlistID string, key models.Key) (string, error) {
	return e.playlists.RemoveItem(playlistID, key)
}

// Summary describes the session's collections for status lines.
func (e *Engine) Summary() string {
	return fmt.Sprintf("%d favorites · %d playlists", e.favorites.Len(), e.playlists.Len())
}
