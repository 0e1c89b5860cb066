package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
)

var (
	_ list.Item = cardItem{}
	_ list.Item = playlistItem{}
)

// cardItem wraps a catalog record and its [formatter.Card] to implement [list.Item].
type cardItem struct {
	item models.CatalogItem
	card formatter.Card
}

func (i cardItem) FilterValue() string { return i.card.Title }
func (i cardItem) Title() string {
	if i.card.Favorite {
		return "★ " + i.card.Title
	}
	return i.card.Title
}
func (i cardItem) Description() string { return describe(i.card) }

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
	card     formatter.Card
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.card.Title }
func (i playlistItem) Description() string { return describe(i.card) }

func describe(c formatter.Card) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{c.Subtitle, c.Badge, c.Note} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " • ")
}

func newList(title, singular, plural string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetStatusBarItemName(singular, plural)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}

func cardItems(items []models.CatalogItem, isFavorite func(models.Key) bool) []list.Item {
	cards := formatter.Cards(items, isFavorite)
	out := make([]list.Item, len(items))
	for i := range items {
		out[i] = cardItem{item: items[i], card: cards[i]}
	}
	return out
}

func selectedCard(l list.Model) (cardItem, bool) {
	it, ok := l.SelectedItem().(cardItem)
	return it, ok
}

func selectedPlaylist(l list.Model) (playlistItem, bool) {
	it, ok := l.SelectedItem().(playlistItem)
	return it, ok
}
