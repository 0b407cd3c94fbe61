package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthSigner computes credentials per request with a Signer.
	AuthSigner
	// AuthCustom uses a custom authentication function.
	AuthCustom
)

// Signer adds credentials to an outgoing request. It is invoked once per
// request, after every other header is set.
type Signer interface {
	Sign(req *http.Request) error
}

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Signer signs every request (AuthSigner).
	Signer Signer
	// Apply is a custom function to modify the request (AuthCustom).
	Apply func(*http.Request) error
}

// SignerAuth creates an auth config that signs each request with s.
func SignerAuth(s Signer) *AuthConfig {
	return &AuthConfig{Type: AuthSigner, Signer: s}
}

// CustomAuth creates a custom auth config with a request modifier function.
func CustomAuth(fn func(*http.Request) error) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// apply applies authentication to an HTTP request.
func (a *AuthConfig) apply(req *http.Request) error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthSigner:
		if a.Signer != nil {
			return a.Signer.Sign(req)
		}
	case AuthCustom:
		if a.Apply != nil {
			return a.Apply(req)
		}
	}
	return nil
}
