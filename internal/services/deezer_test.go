package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	th "github.com/desertthunder/crate/internal/testing"
)

func newDeezerFixture(t *testing.T, handler http.HandlerFunc) *DeezerCatalog {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewDeezerCatalog(CatalogOptions{APIURL: srv.URL, Client: srv.Client(), DefaultLimit: DefaultLimit})
}

func TestDeezerCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("Search Tracks", func(t *testing.T) {
		var gotPath, gotQuery, gotLimit string
		catalog := newDeezerFixture(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.Query().Get("q")
			gotLimit = r.URL.Query().Get("limit")
			writeJSON(w, http.StatusOK, `{"data":[
				{"id":568115892,"title":"Bohemian Rhapsody","artist":{"id":412,"name":"Queen"},
				 "album":{"id":1,"title":"A Night at the Opera","cover_medium":"https://e-cdns/opera.jpg"}},
				{"id":2,"title":"Bohemian Rhapsody (Live)","artist":{"id":412,"name":"Queen"},"album":{"id":2}}
			],"total":2}`)
		})

		items, err := catalog.Search(ctx, "Bohemian Rhapsody", models.KindTrack, 0)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if gotPath != "/search/track" || gotQuery != "Bohemian Rhapsody" || gotLimit != "12" {
			t.Errorf("unexpected request path=%s q=%s limit=%s", gotPath, gotQuery, gotLimit)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].ID != "568115892" || items[0].Source != models.SourceDeezer {
			t.Errorf("unexpected first item %+v", items[0])
		}
		if items[0].Subtitle != "Queen" || items[0].ImageURL != "https://e-cdns/opera.jpg" {
			t.Errorf("unexpected normalization %+v", items[0])
		}
		if items[1].ImageURL != models.PlaceholderImageURL {
			t.Errorf("expected placeholder, got %q", items[1].ImageURL)
		}
	})

	t.Run("Search Artists", func(t *testing.T) {
		catalog := newDeezerFixture(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":[{"id":412,"name":"Queen","picture_medium":"https://e-cdns/queen.jpg","nb_fan":5432100}]}`)
		})

		items, err := catalog.Search(ctx, "queen", models.KindArtist, 3)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(items) != 1 || items[0].Subtitle != "5,432,100 followers" {
			t.Errorf("unexpected artists %+v", items)
		}
	})

	t.Run("Search Empty", func(t *testing.T) {
		catalog := newDeezerFixture(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"data":[],"total":0}`)
		})

		items, err := catalog.Search(ctx, "zzzz", models.KindAlbum, 0)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil result, got %#v", items)
		}
	})

	t.Run("FetchDetail Track With Contributors", func(t *testing.T) {
		var gotPath string
		catalog := newDeezerFixture(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			writeJSON(w, http.StatusOK, `{"id":3135556,"title":"Under Pressure","artist":{"name":"Queen"},
				"contributors":[{"name":"Queen"},{"name":"David Bowie"}],"album":{"cover_medium":"https://e-cdns/hot.jpg"}}`)
		})

		item, err := catalog.FetchDetail(ctx, "3135556", models.KindTrack)
		if err != nil {
			t.Fatalf("FetchDetail() error = %v", err)
		}
		if gotPath != "/track/3135556" {
			t.Errorf("unexpected path %s", gotPath)
		}
		if item.Subtitle != "Queen, David Bowie" {
			t.Errorf("expected contributors as subtitle, got %q", item.Subtitle)
		}
		if item.Key() != "deezer:track:3135556" {
			t.Errorf("unexpected key %s", item.Key())
		}
	})

	t.Run("Error In 200 Body", func(t *testing.T) {
		catalog := newDeezerFixture(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"error":{"type":"DataException","message":"no data","code":800}}`)
		})

		_, err := catalog.FetchDetail(ctx, "0", models.KindAlbum)

		var catErr *shared.CatalogError
		if !errors.As(err, &catErr) {
			t.Fatalf("expected *shared.CatalogError, got %T: %v", err, err)
		}
		if catErr.Status != http.StatusNotFound || catErr.Message != "no data" {
			t.Errorf("unexpected error %+v", catErr)
		}
	})

	t.Run("Quota Exceeded", func(t *testing.T) {
		catalog := newDeezerFixture(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"error":{"type":"Exception","message":"Quota limit exceeded","code":4}}`)
		})

		_, err := catalog.Search(ctx, "x", models.KindTrack, 0)

		var catErr *shared.CatalogError
		if !errors.As(err, &catErr) || catErr.Status != http.StatusTooManyRequests {
			t.Errorf("expected 429 CatalogError, got %v", err)
		}
	})

	t.Run("Server Error", func(t *testing.T) {
		catalog := newDeezerFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := catalog.Search(ctx, "x", models.KindTrack, 0)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Transport Error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		catalog := NewDeezerCatalog(CatalogOptions{APIURL: url})
		_, err := catalog.Search(ctx, "x", models.KindTrack, 0)

		var catErr *shared.CatalogError
		if !errors.As(err, &catErr) || catErr.Status != 0 {
			t.Errorf("expected transport CatalogError, got %v", err)
		}
	})

	t.Run("Body Read Failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &th.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: th.NewMockRoundTripper(resp, nil)}

		catalog := NewDeezerCatalog(CatalogOptions{APIURL: "http://deezer.test", Client: client})
		_, err := catalog.FetchDetail(ctx, "3135556", models.KindTrack)

		var catErr *shared.CatalogError
		if !errors.As(err, &catErr) || catErr.Message != "failed to read response" {
			t.Errorf("expected read failure, got %v", err)
		}
	})

	t.Run("Round Trip Failure", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("connection refused"))}

		catalog := NewDeezerCatalog(CatalogOptions{APIURL: "http://deezer.test", Client: client})
		_, err := catalog.Search(ctx, "x", models.KindAlbum, 0)

		if !errors.Is(err, shared.ErrAPIRequest) || errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected non-timeout API error, got %v", err)
		}
	})
}
