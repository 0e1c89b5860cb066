package formatter

import (
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
)

// Card is the view model of one catalog record, independent of how it is drawn.
type Card struct {
	Key      models.Key
	Title    string
	Subtitle string
	ImageURL string
	Badge    string // kind label shown next to the title
	Favorite bool
	Note     string // free-form detail, e.g. when the item was added
}

// NewCard maps a catalog item to its view model.
func NewCard(item models.CatalogItem, favorite bool) Card {
	title := item.Title
	if title == "" {
		title = "Untitled"
	}
	return Card{
		Key:      item.Key(),
		Title:    title,
		Subtitle: item.Subtitle,
		ImageURL: item.ImageURL,
		Badge:    string(item.Kind),
		Favorite: favorite,
	}
}

// Cards maps items to cards, marking those for which isFavorite reports true.
func Cards(items []models.CatalogItem, isFavorite func(models.Key) bool) []Card {
	cards := make([]Card, len(items))
	for i, item := range items {
		cards[i] = NewCard(item, isFavorite != nil && isFavorite(item.Key()))
	}
	return cards
}

// FavoriteCard maps a favorites entry, noting when it was added.
func FavoriteCard(entry models.FavoriteEntry, now time.Time) Card {
	c := NewCard(entry.Item, true)
	c.Note = "added " + Ago(entry.AddedAt, now)
	return c
}

// PlaylistCard maps a playlist to a card summarizing its size.
func PlaylistCard(p models.Playlist) Card {
	c := Card{Title: p.Name, Badge: "playlist", ImageURL: models.PlaceholderImageURL}
	switch n := p.Len(); n {
	case 0:
		c.Subtitle = "empty"
	case 1:
		c.Subtitle = "1 item"
	default:
		c.Subtitle = fmt.Sprintf("%d items", n)
	}
	if p.Len() > 0 {
		c.ImageURL = p.Items[0].ImageURL
	}
	return c
}

// Ago renders a coarse relative time such as "just now" or "5m ago".
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
