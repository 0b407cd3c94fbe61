package wsse

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/kbukum/docket/errors"
)

// Authenticator signs requests with a fresh UsernameToken. It holds only
// immutable state and is safe for concurrent use.
type Authenticator struct {
	username string
	secret   string
	now      func() time.Time
	random   io.Reader
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithRandom replaces crypto/rand as the nonce source.
func WithRandom(r io.Reader) Option {
	return func(a *Authenticator) { a.random = r }
}

// New creates an Authenticator. Missing credentials are a configuration error.
func New(username, secret string, opts ...Option) (*Authenticator, error) {
	if username == "" {
		return nil, apperrors.Configuration("API key is required for WSSE authentication")
	}
	if secret == "" {
		return nil, apperrors.Configuration("API secret is required for WSSE authentication")
	}
	a := &Authenticator{
		username: username,
		secret:   secret,
		now:      time.Now,
		random:   rand.Reader,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Username returns the key the tokens are issued for.
func (a *Authenticator) Username() string { return a.username }

// Token builds a new UsernameToken.
func (a *Authenticator) Token() (Token, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(a.random, nonce); err != nil {
		return Token{}, fmt.Errorf("wsse: generate nonce: %w", err)
	}
	created := a.now().UTC().Format(time.RFC3339)
	return Token{
		Username: a.username,
		Digest:   Digest(nonce, created, a.secret),
		Nonce:    base64.StdEncoding.EncodeToString(nonce),
		Created:  created,
	}, nil
}

// Sign sets the X-WSSE and Authorization headers on req.
func (a *Authenticator) Sign(req *http.Request) error {
	token, err := a.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", AuthorizationValue)
	req.Header.Set(HeaderName, token.String())
	return nil
}
