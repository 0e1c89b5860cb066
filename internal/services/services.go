package services

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/time/rate"
)

// CatalogOptions configures a catalog client. Zero values fall back to defaults.
type CatalogOptions struct {
	APIURL       string
	Client       *http.Client
	DefaultLimit int
	RateLimit    float64 // requests per second, zero disables pacing
	Logger       *log.Logger
}

func (o CatalogOptions) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return NewHTTPClient(0)
}

func (o CatalogOptions) limiter() *rate.Limiter {
	if o.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(o.RateLimit), max(1, int(o.RateLimit)))
}

func (o CatalogOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// NewHTTPClient returns an [http.Client] with a bounded timeout, ten seconds when timeout is zero.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// NewCatalog builds the [Catalog] selected by cfg.Catalog.Provider.
//
// For Spotify the returned catalog owns a [SessionManager] built from the configured credentials.
func NewCatalog(cfg *shared.Config, logger *log.Logger) (Catalog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := CatalogOptions{
		Client:       NewHTTPClient(cfg.Catalog.Timeout()),
		DefaultLimit: cfg.Catalog.Limit,
		RateLimit:    cfg.Catalog.RateLimit,
		Logger:       logger,
	}

	switch models.Source(strings.ToLower(cfg.Catalog.Provider)) {
	case models.SourceSpotify:
		session, err := NewSessionManager(cfg.Credentials.Spotify, opts.Client, logger)
		if err != nil {
			return nil, err
		}
		opts.APIURL = cfg.Credentials.Spotify.APIURL
		return NewSpotifyCatalog(session, opts), nil
	case models.SourceDeezer:
		opts.APIURL = cfg.Credentials.Deezer.APIURL
		return NewDeezerCatalog(opts), nil
	default:
		return nil, fmt.Errorf("%w: unknown catalog provider %q", shared.ErrInvalidConfig, cfg.Catalog.Provider)
	}
}
