package models

import (
	"fmt"
	"strings"
	"time"
)

// PlaceholderImageURL is used when the remote record carries no image.
const PlaceholderImageURL = "https://placehold.co/300x300?text=No+Image"

// Kind is the type of a catalog entity.
type Kind string

const (
	KindTrack  Kind = "track"
	KindArtist Kind = "artist"
	KindAlbum  Kind = "album"
)

// Kinds lists every supported [Kind] in display order.
var Kinds = []Kind{KindTrack, KindArtist, KindAlbum}

// ParseKind parses a kind name, accepting singular and plural forms in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "track", "song":
		return KindTrack, nil
	case "artist":
		return KindArtist, nil
	case "album":
		return KindAlbum, nil
	}
	return "", fmt.Errorf("unknown kind %q (expected track, artist or album)", s)
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k == KindTrack || k == KindArtist || k == KindAlbum
}

// Plural returns the plural form used by catalog APIs ("tracks", "artists", "albums").
func (k Kind) Plural() string { return string(k) + "s" }

func (k Kind) String() string { return string(k) }

// Next cycles through [Kinds].
func (k Kind) Next() Kind {
	for i, kind := range Kinds {
		if kind == k {
			return Kinds[(i+1)%len(Kinds)]
		}
	}
	return KindTrack
}

// Source identifies the remote catalog a record came from.
type Source string

const (
	SourceSpotify Source = "spotify"
	SourceDeezer  Source = "deezer"
)

// Key is the composite membership key of a catalog item: "source:kind:id".
//
// Two providers (or two kinds within one provider) may reuse the same raw id, so stores never key on the id alone.
type Key string

// NewKey builds the [Key] for the given parts.
func NewKey(source Source, kind Kind, id string) Key {
	return Key(fmt.Sprintf("%s:%s:%s", source, kind, id))
}

// CatalogItem is the normalized, display-agnostic representation of a remote track, artist or album.
type CatalogItem struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Source   Source `json:"source"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"image_url"`
}

// Key returns the composite membership key for the item.
func (i CatalogItem) Key() Key {
	return NewKey(i.Source, i.Kind, i.ID)
}

// FavoriteEntry is a catalog item stored in the favorites set.
type FavoriteEntry struct {
	Item    CatalogItem `json:"item"`
	Kind    Kind        `json:"kind"`
	AddedAt time.Time   `json:"added_at"`
}

// Playlist is a locally owned, named and ordered sequence of catalog items.
type Playlist struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Items     []CatalogItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
}

// Len returns the number of items in the playlist.
func (p Playlist) Len() int { return len(p.Items) }

// Clone returns a copy whose item slice does not alias p's.
func (p Playlist) Clone() Playlist {
	items := make([]CatalogItem, len(p.Items))
	copy(items, p.Items)
	p.Items = items
	return p
}
