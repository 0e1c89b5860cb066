package services

import (
	"context"
	"strings"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

const (
	// DefaultLimit is the page size used when a caller passes a non-positive limit.
	DefaultLimit = 12
	// MaxLimit is the largest page the remote catalogs return.
	MaxLimit = 50
)

// Catalog searches a remote music catalog and fetches single items, normalizing
// every result into a [models.CatalogItem].
type Catalog interface {
	// Search runs one query against the remote catalog and returns at most limit items.
	Search(ctx context.Context, query string, kind models.Kind, limit int) ([]models.CatalogItem, error)

	// FetchDetail loads one item by its remote id.
	FetchDetail(ctx context.Context, id string, kind models.Kind) (*models.CatalogItem, error)

	// Source identifies the catalog ("spotify", "deezer").
	Source() models.Source
}

// clampLimit maps non-positive limits to def and caps the rest at [MaxLimit].
func clampLimit(limit, def int) int {
	if def <= 0 {
		def = DefaultLimit
	}
	if limit <= 0 {
		limit = def
	}
	return min(limit, MaxLimit)
}

func joinNames(names []string) string {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, ", ")
}

func imageOrPlaceholder(url string) string {
	if strings.TrimSpace(url) == "" {
		return models.PlaceholderImageURL
	}
	return url
}

func validateKind(kind models.Kind) error {
	if !kind.Valid() {
		return &shared.ValidationError{Field: "kind", Reason: "must be track, artist or album"}
	}
	return nil
}

func validateSearch(query string, kind models.Kind) error {
	if strings.TrimSpace(query) == "" {
		return &shared.ValidationError{Field: "query", Reason: "is empty"}
	}
	return validateKind(kind)
}

func validateDetail(id string, kind models.Kind) error {
	if strings.TrimSpace(id) == "" {
		return &shared.ValidationError{Field: "id", Reason: "is empty"}
	}
	return validateKind(kind)
}
