// Package httpclient is the transport adapter beneath the docket connector.
// It resolves paths against a base URL, sends any verb (including
// non-standard ones through Request.Override), applies default headers,
// JSON-encodes bodies and signs each request through an AuthConfig.
//
//	adapter, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://sandbox.docket.com/api/v1",
//	    Auth:    httpclient.SignerAuth(authenticator),
//	})
//
//	resp, err := adapter.Do(ctx, httpclient.Request{
//	    Override: "LINK",
//	    Path:     "cases/42/documents/7",
//	})
//
// Status codes are not interpreted here; callers decide what is a success.
package httpclient
