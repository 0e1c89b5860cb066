// Deezer public API implementation of [Catalog]
//
// See https://developers.deezer.com/api
package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

const maxDeezerBody = 4 << 20

// Deezer error codes that map onto HTTP statuses.
const (
	deezerQuotaExceeded = 4
	deezerDataNotFound  = 800
)

type DeezerArtist struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	PictureMedium string `json:"picture_medium"`
	NbFan         int    `json:"nb_fan"`
}

type DeezerAlbum struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	CoverMedium string       `json:"cover_medium"`
	Artist      DeezerArtist `json:"artist"`
}

type DeezerTrack struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Duration     int            `json:"duration"`
	Artist       DeezerArtist   `json:"artist"`
	Contributors []DeezerArtist `json:"contributors"`
	Album        DeezerAlbum    `json:"album"`
}

type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type deezerEnvelope struct {
	Error *deezerError    `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func deezerID(id int64) string { return strconv.FormatInt(id, 10) }

// CatalogItem normalizes the track. Detail responses list every contributor; search results only the main artist.
func (t DeezerTrack) CatalogItem() models.CatalogItem {
	names := []string{t.Artist.Name}
	if len(t.Contributors) > 0 {
		names = names[:0]
		for _, c := range t.Contributors {
			names = append(names, c.Name)
		}
	}

	return models.CatalogItem{
		ID:       deezerID(t.ID),
		Kind:     models.KindTrack,
		Source:   models.SourceDeezer,
		Title:    t.Title,
		Subtitle: joinNames(names),
		ImageURL: imageOrPlaceholder(t.Album.CoverMedium),
	}
}

func (a DeezerArtist) CatalogItem() models.CatalogItem {
	return models.CatalogItem{
		ID:       deezerID(a.ID),
		Kind:     models.KindArtist,
		Source:   models.SourceDeezer,
		Title:    a.Name,
		Subtitle: shared.FormatFollowers(a.NbFan),
		ImageURL: imageOrPlaceholder(a.PictureMedium),
	}
}

func (a DeezerAlbum) CatalogItem() models.CatalogItem {
	return models.CatalogItem{
		ID:       deezerID(a.ID),
		Kind:     models.KindAlbum,
		Source:   models.SourceDeezer,
		Title:    a.Title,
		Subtitle: joinNames([]string{a.Artist.Name}),
		ImageURL: imageOrPlaceholder(a.CoverMedium),
	}
}

// DeezerCatalog implements [Catalog] against the public Deezer API, which needs no credential.
type DeezerCatalog struct {
	apiURL       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	defaultLimit int
	logger       *log.Logger
}

// NewDeezerCatalog creates a Deezer catalog client.
func NewDeezerCatalog(opts CatalogOptions) *DeezerCatalog {
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = "https://api.deezer.com"
	}

	return &DeezerCatalog{
		apiURL:       strings.TrimRight(apiURL, "/"),
		httpClient:   opts.client(),
		limiter:      opts.limiter(),
		defaultLimit: opts.DefaultLimit,
		logger:       opts.logger(),
	}
}

func (d *DeezerCatalog) Source() models.Source { return models.SourceDeezer }

// Search runs GET /search/{kind}.
func (d *DeezerCatalog) Search(ctx context.Context, query string, kind models.Kind, limit int) ([]models.CatalogItem, error) {
	if err := validateSearch(query, kind); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("limit", strconv.Itoa(clampLimit(limit, d.defaultLimit)))

	var env deezerEnvelope
	if err := d.doRequest(ctx, "/search/"+kind.String(), params, &env); err != nil {
		return nil, err
	}

	items, err := decodeDeezerData(kind, env.Data)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("search complete", "query", query, "kind", kind, "results", len(items))
	return items, nil
}

// FetchDetail runs GET /{kind}/{id}.
func (d *DeezerCatalog) FetchDetail(ctx context.Context, id string, kind models.Kind) (*models.CatalogItem, error) {
	if err := validateDetail(id, kind); err != nil {
		return nil, err
	}

	endpoint := "/" + kind.String() + "/" + url.PathEscape(strings.TrimSpace(id))

	var item models.CatalogItem
	switch kind {
	case models.KindTrack:
		var t DeezerTrack
		if err := d.doRequest(ctx, endpoint, nil, &t); err != nil {
			return nil, err
		}
		item = t.CatalogItem()
	case models.KindArtist:
		var a DeezerArtist
		if err := d.doRequest(ctx, endpoint, nil, &a); err != nil {
			return nil, err
		}
		item = a.CatalogItem()
	case models.KindAlbum:
		var a DeezerAlbum
		if err := d.doRequest(ctx, endpoint, nil, &a); err != nil {
			return nil, err
		}
		item = a.CatalogItem()
	}

	return &item, nil
}

func decodeDeezerData(kind models.Kind, data json.RawMessage) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	if len(data) == 0 {
		return items, nil
	}

	var err error
	switch kind {
	case models.KindTrack:
		var tracks []DeezerTrack
		if err = json.Unmarshal(data, &tracks); err == nil {
			for _, t := range tracks {
				items = append(items, t.CatalogItem())
			}
		}
	case models.KindArtist:
		var artists []DeezerArtist
		if err = json.Unmarshal(data, &artists); err == nil {
			for _, a := range artists {
				items = append(items, a.CatalogItem())
			}
		}
	case models.KindAlbum:
		var albums []DeezerAlbum
		if err = json.Unmarshal(data, &albums); err == nil {
			for _, a := range albums {
				items = append(items, a.CatalogItem())
			}
		}
	}
	if err != nil {
		return nil, &shared.CatalogError{Provider: string(models.SourceDeezer), Message: "failed to decode response", Err: err}
	}
	return items, nil
}

// doRequest performs one GET. Deezer reports most failures as HTTP 200 with an "error" object, so the body is checked
// for one before it is decoded into result.
func (d *DeezerCatalog) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return &shared.CatalogError{Provider: string(models.SourceDeezer), Message: "request cancelled", Err: err}
	}

	apiURL := d.apiURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return &shared.CatalogError{Provider: string(models.SourceDeezer), Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return transportError(models.SourceDeezer, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDeezerBody))
	if err != nil {
		return &shared.CatalogError{Provider: string(models.SourceDeezer), Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	var env deezerEnvelope
	_ = json.Unmarshal(body, &env)

	if env.Error != nil {
		return &shared.CatalogError{
			Provider: string(models.SourceDeezer),
			Status:   deezerStatus(env.Error.Code, resp.StatusCode),
			Message:  env.Error.Message,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &shared.CatalogError{Provider: string(models.SourceDeezer), Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &shared.CatalogError{Provider: string(models.SourceDeezer), Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return nil
}

func deezerStatus(code, httpStatus int) int {
	switch code {
	case deezerDataNotFound:
		return http.StatusNotFound
	case deezerQuotaExceeded:
		return http.StatusTooManyRequests
	}
	if httpStatus >= 200 && httpStatus < 300 {
		return 0
	}
	return httpStatus
}

var _ Catalog = (*DeezerCatalog)(nil)
