// Package version carries build metadata for the docket binary. Values are
// set at compile time:
//
//	go build -ldflags "-X github.com/kbukum/docket/version.Version=1.4.0"
package version
