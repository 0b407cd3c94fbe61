package wsse

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is fixed by the UsernameToken wire format
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// HeaderName carries the UsernameToken.
	HeaderName = "X-WSSE"
	// AuthorizationValue is sent in the Authorization header alongside it.
	AuthorizationValue = `WSSE profile="UsernameToken"`
	// NonceSize is the number of random bytes in a nonce.
	NonceSize = 16
)

// ErrMalformed is returned by Parse for headers that are not a UsernameToken.
var ErrMalformed = errors.New("wsse: malformed UsernameToken header")

// Token is one UsernameToken. Nonce is base64 encoded, Created is RFC 3339 UTC.
type Token struct {
	Username string
	Digest   string
	Nonce    string
	Created  string
}

// String renders the X-WSSE header value.
func (t Token) String() string {
	return fmt.Sprintf(`UsernameToken Username="%s", PasswordDigest="%s", Nonce="%s", Created="%s"`,
		t.Username, t.Digest, t.Nonce, t.Created)
}

// Digest computes base64(SHA1(nonce + created + secret)) over the raw nonce bytes.
func Digest(nonce []byte, created, secret string) string {
	h := sha1.New() //nolint:gosec
	h.Write(nonce)
	h.Write([]byte(created))
	h.Write([]byte(secret))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Parse reads an X-WSSE header value back into a Token.
func Parse(header string) (Token, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(header), "UsernameToken ")
	if !ok {
		return Token{}, ErrMalformed
	}

	var t Token
	for _, part := range strings.Split(rest, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
			return Token{}, ErrMalformed
		}
		value = value[1 : len(value)-1]
		switch key {
		case "Username":
			t.Username = value
		case "PasswordDigest":
			t.Digest = value
		case "Nonce":
			t.Nonce = value
		case "Created":
			t.Created = value
		}
	}

	if t.Username == "" || t.Digest == "" || t.Nonce == "" || t.Created == "" {
		return Token{}, ErrMalformed
	}
	return t, nil
}
