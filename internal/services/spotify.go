// Spotify Web API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

type followers struct {
	Total int `json:"total"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist. Simplified artists nested in tracks and albums carry no images or followers.
type SpotifyArtist struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Genres    []string       `json:"genres"`
	Followers followers      `json:"followers"`
	Images    []SpotifyImage `json:"images"`
	URI       string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

type spotifyPage[T any] struct {
	Items []*T `json:"items"`
	Total int  `json:"total"`
	Limit int  `json:"limit"`
}

type spotifySearchResponse struct {
	Tracks  *spotifyPage[SpotifyTrack]  `json:"tracks"`
	Artists *spotifyPage[SpotifyArtist] `json:"artists"`
	Albums  *spotifyPage[SpotifyAlbum]  `json:"albums"`
}

type spotifyErrorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func firstImage(images []SpotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func artistNames(artists []SpotifyArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return joinNames(names)
}

// CatalogItem normalizes the track: artists as subtitle, album art as image.
func (t SpotifyTrack) CatalogItem() models.CatalogItem {
	return models.CatalogItem{
		ID:       t.ID,
		Kind:     models.KindTrack,
		Source:   models.SourceSpotify,
		Title:    t.Name,
		Subtitle: artistNames(t.Artists),
		ImageURL: imageOrPlaceholder(firstImage(t.Album.Images)),
	}
}

// CatalogItem normalizes the artist with its follower count as subtitle.
func (a SpotifyArtist) CatalogItem() models.CatalogItem {
	return models.CatalogItem{
		ID:       a.ID,
		Kind:     models.KindArtist,
		Source:   models.SourceSpotify,
		Title:    a.Name,
		Subtitle: shared.FormatFollowers(a.Followers.Total),
		ImageURL: imageOrPlaceholder(firstImage(a.Images)),
	}
}

// CatalogItem normalizes the album: artists as subtitle, cover as image.
func (a SpotifyAlbum) CatalogItem() models.CatalogItem {
	return models.CatalogItem{
		ID:       a.ID,
		Kind:     models.KindAlbum,
		Source:   models.SourceSpotify,
		Title:    a.Name,
		Subtitle: artistNames(a.Artists),
		ImageURL: imageOrPlaceholder(firstImage(a.Images)),
	}
}

func normalizePage[T interface{ CatalogItem() models.CatalogItem }](page *spotifyPage[T]) []models.CatalogItem {
	if page == nil {
		return []models.CatalogItem{}
	}
	items := make([]models.CatalogItem, 0, len(page.Items))
	for _, it := range page.Items {
		if it != nil {
			items = append(items, (*it).CatalogItem())
		}
	}
	return items
}

// SpotifyCatalog implements [Catalog] against the Spotify Web API using an app credential.
type SpotifyCatalog struct {
	session      CredentialSource
	apiURL       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	defaultLimit int
	logger       *log.Logger
}

// NewSpotifyCatalog creates a Spotify catalog that authorizes requests with credentials from session.
func NewSpotifyCatalog(session CredentialSource, opts CatalogOptions) *SpotifyCatalog {
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = "https://api.spotify.com/v1"
	}

	return &SpotifyCatalog{
		session:      session,
		apiURL:       strings.TrimRight(apiURL, "/"),
		httpClient:   opts.client(),
		limiter:      opts.limiter(),
		defaultLimit: opts.DefaultLimit,
		logger:       opts.logger(),
	}
}

func (s *SpotifyCatalog) Source() models.Source { return models.SourceSpotify }

// Search runs GET /search for a single kind.
func (s *SpotifyCatalog) Search(ctx context.Context, query string, kind models.Kind, limit int) ([]models.CatalogItem, error) {
	if err := validateSearch(query, kind); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("type", kind.String())
	params.Set("limit", strconv.Itoa(clampLimit(limit, s.defaultLimit)))

	var resp spotifySearchResponse
	if err := s.get(ctx, "/search", params, &resp); err != nil {
		return nil, err
	}

	var items []models.CatalogItem
	switch kind {
	case models.KindTrack:
		items = normalizePage(resp.Tracks)
	case models.KindArtist:
		items = normalizePage(resp.Artists)
	case models.KindAlbum:
		items = normalizePage(resp.Albums)
	}

	s.logger.Debug("search complete", "query", query, "kind", kind, "results", len(items))
	return items, nil
}

// FetchDetail runs GET /{kind}s/{id}.
func (s *SpotifyCatalog) FetchDetail(ctx context.Context, id string, kind models.Kind) (*models.CatalogItem, error) {
	if err := validateDetail(id, kind); err != nil {
		return nil, err
	}

	endpoint := "/" + kind.Plural() + "/" + url.PathEscape(strings.TrimSpace(id))

	var item models.CatalogItem
	switch kind {
	case models.KindTrack:
		var t SpotifyTrack
		if err := s.get(ctx, endpoint, nil, &t); err != nil {
			return nil, err
		}
		item = t.CatalogItem()
	case models.KindArtist:
		var a SpotifyArtist
		if err := s.get(ctx, endpoint, nil, &a); err != nil {
			return nil, err
		}
		item = a.CatalogItem()
	case models.KindAlbum:
		var a SpotifyAlbum
		if err := s.get(ctx, endpoint, nil, &a); err != nil {
			return nil, err
		}
		item = a.CatalogItem()
	}

	return &item, nil
}

// get performs an authorized GET. A 401 refreshes the credential and replays the request once.
func (s *SpotifyCatalog) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	cred, err := s.session.EnsureCredential(ctx)
	if err != nil {
		return err
	}

	status, err := s.doRequest(ctx, cred, endpoint, params, result)
	if status != http.StatusUnauthorized {
		return err
	}

	s.logger.Debug("credential rejected, refreshing", "endpoint", endpoint)
	cred, err = s.session.Refresh(ctx, cred)
	if err != nil {
		return err
	}

	_, err = s.doRequest(ctx, cred, endpoint, params, result)
	return err
}

// doRequest performs one bearer-authorized GET and decodes the JSON body into result.
// It returns the HTTP status, zero when no response was received.
func (s *SpotifyCatalog) doRequest(ctx context.Context, cred Credential, endpoint string, params url.Values, result any) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, &shared.CatalogError{Provider: string(models.SourceSpotify), Message: "request cancelled", Err: err}
	}

	apiURL := s.apiURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, &shared.CatalogError{Provider: string(models.SourceSpotify), Message: "failed to create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+string(cred))
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, transportError(models.SourceSpotify, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr spotifyErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)

		msg := apiErr.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, &shared.CatalogError{Provider: string(models.SourceSpotify), Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return resp.StatusCode, &shared.CatalogError{
			Provider: string(models.SourceSpotify),
			Status:   resp.StatusCode,
			Message:  "failed to decode response",
			Err:      err,
		}
	}

	return resp.StatusCode, nil
}

// transportError wraps a failed round trip. Timeouts also match [shared.ErrTimeout].
func transportError(source models.Source, err error) *shared.CatalogError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &shared.CatalogError{Provider: string(source), Message: "request timed out", Err: fmt.Errorf("%w: %w", shared.ErrTimeout, err)}
	}
	return &shared.CatalogError{Provider: string(source), Message: "request failed", Err: err}
}

var _ Catalog = (*SpotifyCatalog)(nil)
