// Package security holds the TLS settings used by the docket transport.
//
//	cfg := security.TLSConfig{CAFile: "/etc/docket/ca.pem", MinVersion: "1.3"}
//	tlsConfig, err := cfg.Build()
package security
