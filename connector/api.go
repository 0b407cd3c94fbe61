package connector

import (
	"context"

	"github.com/kbukum/docket/entity"
	"github.com/kbukum/docket/registry"
)

// API is the entity protocol of the remote service. *Client implements it
// over HTTP; connectortest.Recorder is an in-memory double.
//
// Every method reports failure through its error. Transport failures are
// CONNECTION_FAILED or TIMEOUT, rejected statuses carry the received status
// (see errors.StatusOf), and body problems are MALFORMED_BODY or
// HYDRATION_ERROR.
type API interface {
	// WriteObject creates e (POST) when it is new, otherwise updates it (PUT).
	// A created entity is hydrated from the response. It returns false with a
	// nil error when e has no sendable fields and nothing was sent.
	WriteObject(ctx context.Context, e entity.Entity) (bool, error)

	// DeleteObject deletes e. Only 200 and 204 count as success.
	DeleteObject(ctx context.Context, e entity.Entity) error

	// ReadObject refreshes e from the server. Only 200 counts as success.
	ReadObject(ctx context.Context, e entity.Entity) error

	// LinkEntity attaches child below parent with the LINK verb.
	LinkEntity(ctx context.Context, parent, child entity.Entity) error

	// PerformAction runs a named action on e with the patch verb.
	PerformAction(ctx context.Context, e entity.Entity, action string) error

	// GetFileAssets fetches a base64 asset of e and returns the decoded bytes.
	GetFileAssets(ctx context.Context, e entity.Entity, asset string) ([]byte, error)

	// GetTextAssets fetches a text asset of e as is.
	GetTextAssets(ctx context.Context, e entity.Entity, asset string) (string, error)

	// Get fetches a collection path and returns the raw body. Query keys have
	// their first letter lowered on the wire.
	Get(ctx context.Context, path string, query map[string]string) ([]byte, error)

	// Registry resolves entity kinds to paths.
	Registry() *registry.Registry
}
