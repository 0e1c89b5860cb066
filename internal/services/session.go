package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

const exchangeTimeout = 15 * time.Second

// Credential is an opaque bearer token. Its expiry is not tracked; a 401 from the API marks it stale.
type Credential string

// CredentialSource hands out bearer credentials to catalog clients.
type CredentialSource interface {
	EnsureCredential(ctx context.Context) (Credential, error)
	Refresh(ctx context.Context, stale Credential) (Credential, error)
}

// SessionManager owns the process-wide app credential and acquires it through
// the OAuth2 client-credentials grant.
//
// Concurrent acquisitions share one in-flight exchange.
type SessionManager struct {
	config *clientcredentials.Config
	client *http.Client
	logger *log.Logger

	mu         sync.RWMutex
	credential Credential

	group     singleflight.Group
	exchanges atomic.Int64
}

// NewSessionManager creates a session for the given Spotify app credentials.
func NewSessionManager(cfg shared.SpotifyConfig, client *http.Client, logger *log.Logger) (*SessionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TokenURL == "" {
		return nil, &shared.ValidationError{Field: "token_url", Reason: "is empty"}
	}
	if client == nil {
		client = NewHTTPClient(0)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	// In-header auth form-encodes the id and secret before base64 (RFC 6749 section 2.3.1).
	return &SessionManager{
		config: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client: client,
		logger: logger,
	}, nil
}

// Current returns the held credential, empty when none has been acquired.
func (s *SessionManager) Current() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// Exchanges reports how many token exchanges this session has performed.
func (s *SessionManager) Exchanges() int64 { return s.exchanges.Load() }

// EnsureCredential returns the held credential, acquiring one first when absent.
func (s *SessionManager) EnsureCredential(ctx context.Context) (Credential, error) {
	if c := s.Current(); c != "" {
		return c, nil
	}

	ch := s.group.DoChan("credential", func() (any, error) {
		if c := s.Current(); c != "" {
			return c, nil
		}

		exCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exchangeTimeout)
		defer cancel()

		c, err := s.exchange(exCtx)
		if err != nil {
			return Credential(""), err
		}

		s.mu.Lock()
		s.credential = c
		s.mu.Unlock()
		return c, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(Credential), nil
	}
}

// Invalidate drops the held credential so the next call re-acquires it.
func (s *SessionManager) Invalidate() {
	s.mu.Lock()
	s.credential = ""
	s.mu.Unlock()
}

// Refresh replaces stale with a fresh credential.
//
// When another caller already replaced stale, the held credential is returned without a new exchange.
func (s *SessionManager) Refresh(ctx context.Context, stale Credential) (Credential, error) {
	s.mu.Lock()
	if s.credential == stale {
		s.credential = ""
	}
	s.mu.Unlock()

	return s.EnsureCredential(ctx)
}

func (s *SessionManager) exchange(ctx context.Context) (Credential, error) {
	s.exchanges.Add(1)
	s.logger.Debug("requesting app credential", "token_url", s.config.TokenURL, "client_id", shared.MaskSecret(s.config.ClientID))

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)
	tok, err := s.config.Token(ctx)
	if err != nil {
		authErr := authError(err)
		s.logger.Warn("credential exchange failed", "status", authErr.Status, "error", authErr.Message)
		return "", authErr
	}

	if strings.TrimSpace(tok.AccessToken) == "" {
		return "", &shared.AuthError{Message: "token response missing access_token"}
	}

	s.logger.Debug("app credential acquired", "token_type", tok.TokenType)
	return Credential(tok.AccessToken), nil
}

func authError(err error) *shared.AuthError {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := re.ErrorDescription
		if msg == "" {
			msg = re.ErrorCode
		}
		if msg == "" {
			msg = strings.TrimSpace(string(re.Body))
		}
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &shared.AuthError{Status: status, Message: msg, Err: err}
	}
	return &shared.AuthError{Message: err.Error(), Err: err}
}

var _ CredentialSource = (*SessionManager)(nil)
