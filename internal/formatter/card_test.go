package formatter

import (
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/models"
)

func TestCards(t *testing.T) {
	t.Run("NewCard", func(t *testing.T) {
		item := testPlaylist().Items[0]
		card := NewCard(item, true)

		if card.Key != item.Key() || card.Title != "Bohemian Rhapsody" || card.Subtitle != "Queen" {
			t.Errorf("unexpected card %+v", card)
		}
		if card.Badge != "track" || !card.Favorite {
			t.Errorf("unexpected badge or favorite flag %+v", card)
		}
	})

	t.Run("Untitled", func(t *testing.T) {
		card := NewCard(models.CatalogItem{ID: "x", Kind: models.KindAlbum}, false)
		if card.Title != "Untitled" {
			t.Errorf("expected fallback title, got %q", card.Title)
		}
	})

	t.Run("Cards Marks Favorites", func(t *testing.T) {
		items := testPlaylist().Items
		favs := map[models.Key]bool{items[1].Key(): true}

		cards := Cards(items, func(k models.Key) bool { return favs[k] })
		if len(cards) != 2 || cards[0].Favorite || !cards[1].Favorite {
			t.Errorf("unexpected favorite flags %+v", cards)
		}

		if got := Cards(items, nil); got[0].Favorite || got[1].Favorite {
			t.Error("nil predicate should mark nothing")
		}
	})

	t.Run("PlaylistCard", func(t *testing.T) {
		p := testPlaylist()
		card := PlaylistCard(p)
		if card.Subtitle != "2 items" || card.ImageURL != "https://i.scdn.co/image/opera" {
			t.Errorf("unexpected playlist card %+v", card)
		}

		p.Items = nil
		if card := PlaylistCard(p); card.Subtitle != "empty" || card.ImageURL != models.PlaceholderImageURL {
			t.Errorf("unexpected empty playlist card %+v", card)
		}
	})

	t.Run("FavoriteCard", func(t *testing.T) {
		now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
		entry := models.FavoriteEntry{Item: testPlaylist().Items[0], Kind: models.KindTrack, AddedAt: now.Add(-5 * time.Minute)}

		card := FavoriteCard(entry, now)
		if card.Note != "added 5m ago" || !card.Favorite {
			t.Errorf("unexpected favorite card %+v", card)
		}
	})
}

func TestAgo(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	tc := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{42 * time.Minute, "42m ago"},
		{3 * time.Hour, "3h ago"},
		{72 * time.Hour, "2025-03-11"},
	}
	for _, tt := range tc {
		if got := Ago(now.Add(-tt.d), now); got != tt.want {
			t.Errorf("Ago(-%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
