package httpclient

import "net/http"

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE). Defaults to GET.
	Method string
	// Override replaces Method on the wire with a verb the standard set lacks,
	// e.g. "LINK". Sent exactly as given, case included.
	Override string
	// Path is appended to the adapter's BaseURL. Can be a full URL.
	Path string
	// Headers are request-specific headers (merged over adapter defaults).
	Headers map[string]string
	// Query are URL query parameters.
	Query map[string]string
	// Body is JSON-encoded unless it is an io.Reader, []byte or string.
	Body any
	// Auth overrides the adapter-level auth for this request.
	Auth *AuthConfig
}

// Verb returns the method sent on the wire.
func (r Request) Verb() string {
	if r.Override != "" {
		return r.Override
	}
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}
