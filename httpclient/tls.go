package httpclient

import "github.com/kbukum/docket/security"

// TLSConfig is an alias for the shared security TLS configuration.
type TLSConfig = security.TLSConfig
