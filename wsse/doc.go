// Package wsse implements the WS-Security UsernameToken digest scheme used to
// authenticate every request to the remote API.
//
// Each token carries a fresh random nonce and a UTC creation time; the
// password digest is base64(SHA1(nonce + created + secret)). Tokens are never
// cached: Sign must be called once per outgoing request.
//
//	auth, err := wsse.New(apiKey, apiSecret)
//	if err != nil { ... }
//	if err := auth.Sign(req); err != nil { ... }
//
// Verifier is the server-side counterpart. It checks the digest, rejects
// tokens older than a maximum age and refuses nonces it has already seen.
package wsse
