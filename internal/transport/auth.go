package transport

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// Authenticator attaches credentials to outgoing requests.
type Authenticator interface {
	Authorize(ctx context.Context, req *Request) error
	// Refresh discards any cached credential so the next Authorize fetches a new one.
	Refresh(ctx context.Context) error
}

// TokenAuthenticator authorizes requests with bearer tokens from an oauth2.TokenSource.
type TokenAuthenticator struct {
	mu        sync.Mutex
	newSource func() oauth2.TokenSource
	cached    oauth2.TokenSource
}

// NewTokenAuthenticator caches tokens from base until they expire or Refresh is called.
func NewTokenAuthenticator(base oauth2.TokenSource) *TokenAuthenticator {
	return newTokenAuthenticator(func() oauth2.TokenSource { return base })
}

// newTokenAuthenticator takes a constructor because some sources, like jwt.Config's,
// cache internally and only a new source is guaranteed to mint a new token.
func newTokenAuthenticator(newSource func() oauth2.TokenSource) *TokenAuthenticator {
	return &TokenAuthenticator{
		newSource: newSource,
		cached:    oauth2.ReuseTokenSource(nil, newSource()),
	}
}

// NewStaticTokenAuthenticator always sends the same access token. Refresh is a no-op.
func NewStaticTokenAuthenticator(accessToken string) *TokenAuthenticator {
	return NewTokenAuthenticator(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
}

// NewCredentialsFileAuthenticator loads a service account key file with the spreadsheets scope.
func NewCredentialsFileAuthenticator(ctx context.Context, credentialsFile string) (*TokenAuthenticator, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	log.Debug().
		Str("credentials_file", credentialsFile).
		Str("client_email", cfg.Email).
		Msg("Loaded service account credentials")

	return newTokenAuthenticator(func() oauth2.TokenSource { return cfg.TokenSource(ctx) }), nil
}

func (a *TokenAuthenticator) Authorize(ctx context.Context, req *Request) error {
	a.mu.Lock()
	src := a.cached
	a.mu.Unlock()

	tok, err := src.Token()
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	req.Header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	return nil
}

func (a *TokenAuthenticator) Refresh(ctx context.Context) error {
	src := a.newSource()
	tok, err := src.Token()
	if err != nil {
		return fmt.Errorf("failed to refresh access token: %w", err)
	}

	a.mu.Lock()
	a.cached = oauth2.ReuseTokenSource(tok, src)
	a.mu.Unlock()

	log.Debug().Msg("Access token refreshed")
	return nil
}
