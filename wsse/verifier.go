package wsse

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"
)

var (
	ErrMissingHeader  = errors.New("wsse: missing X-WSSE header")
	ErrUnknownUser    = errors.New("wsse: unknown username")
	ErrDigestMismatch = errors.New("wsse: password digest mismatch")
	ErrStale          = errors.New("wsse: token expired or not yet valid")
	ErrReplay         = errors.New("wsse: nonce already used")
)

// SecretLookup returns the secret for a username.
type SecretLookup func(username string) (string, bool)

// StaticSecrets is a SecretLookup over a fixed map.
func StaticSecrets(secrets map[string]string) SecretLookup {
	return func(username string) (string, bool) {
		s, ok := secrets[username]
		return s, ok
	}
}

// Verifier validates UsernameTokens. Seen nonces are kept for twice the
// maximum age, which covers the whole window a token could be accepted in.
type Verifier struct {
	lookup SecretLookup
	maxAge time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithMaxAge sets how far Created may be from the current time. Default 5m.
func WithMaxAge(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.maxAge = d
		}
	}
}

// WithVerifierClock replaces time.Now.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a Verifier resolving secrets through lookup.
func NewVerifier(lookup SecretLookup, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		lookup: lookup,
		maxAge: 5 * time.Minute,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyRequest checks the X-WSSE header of r.
func (v *Verifier) VerifyRequest(r *http.Request) (Token, error) {
	header := r.Header.Get(HeaderName)
	if header == "" {
		return Token{}, ErrMissingHeader
	}
	return v.Verify(header)
}

// Verify checks one header value. A token that passes is recorded, so the same
// header is rejected with ErrReplay the second time.
func (v *Verifier) Verify(header string) (Token, error) {
	t, err := Parse(header)
	if err != nil {
		return Token{}, err
	}

	secret, ok := v.lookup(t.Username)
	if !ok {
		return t, ErrUnknownUser
	}

	nonce, err := base64.StdEncoding.DecodeString(t.Nonce)
	if err != nil {
		return t, ErrMalformed
	}
	created, err := time.Parse(time.RFC3339, t.Created)
	if err != nil {
		return t, ErrMalformed
	}

	want := Digest(nonce, t.Created, secret)
	if subtle.ConstantTimeCompare([]byte(want), []byte(t.Digest)) != 1 {
		return t, ErrDigestMismatch
	}

	now := v.now()
	if age := now.Sub(created); age > v.maxAge || age < -v.maxAge {
		return t, ErrStale
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.expire(now)
	if _, dup := v.seen[t.Nonce]; dup {
		return t, ErrReplay
	}
	v.seen[t.Nonce] = now
	return t, nil
}

func (v *Verifier) expire(now time.Time) {
	for nonce, at := range v.seen {
		if now.Sub(at) > 2*v.maxAge {
			delete(v.seen, nonce)
		}
	}
}
