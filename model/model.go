// Package model holds the entity kinds docket ships with and the registry
// table that maps them to API collections.
package model

import (
	"github.com/kbukum/docket/entity"
	"github.com/kbukum/docket/registry"
)

// Entity kinds.
const (
	KindCase     = "case"
	KindDocument = "document"
	KindParty    = "party"
)

// Resources is the collection table of the remote API.
var Resources = []registry.Resource{
	{Kind: KindCase, Path: "cases"},
	{Kind: KindDocument, Path: "documents"},
	{Kind: KindParty, Path: "parties", Nested: map[string]string{KindCase: "matters"}},
}

// Registry builds the registry for Resources.
func Registry() *registry.Registry {
	return registry.MustNew(Resources...)
}

// Case is a matter tracked by the API.
type Case struct {
	ID        int64
	Title     string
	Status    string
	Reference string
	CreatedAt string
	UpdatedAt string
}

func (c *Case) Kind() string    { return KindCase }
func (c *Case) EntityID() int64 { return c.ID }

func (c *Case) Fields() entity.Fields {
	return entity.Fields{
		entity.ReadOnly("id", &c.ID),
		entity.Sendable("title", &c.Title),
		entity.Sendable("status", &c.Status),
		entity.Sendable("reference", &c.Reference),
		entity.ReadOnly("createdAt", &c.CreatedAt),
		entity.ReadOnly("updatedAt", &c.UpdatedAt),
	}
}

// Document is a file attached to a case. Its content is served as the
// "pdf" and "text" assets.
type Document struct {
	ID        int64
	Name      string
	MimeType  string
	Pages     int
	Tags      []string
	CreatedAt string
}

func (d *Document) Kind() string    { return KindDocument }
func (d *Document) EntityID() int64 { return d.ID }

func (d *Document) Fields() entity.Fields {
	return entity.Fields{
		entity.ReadOnly("id", &d.ID),
		entity.Sendable("name", &d.Name),
		entity.Sendable("mimeType", &d.MimeType),
		entity.ReadOnly("pages", &d.Pages),
		entity.Sendable("tags", &d.Tags),
		entity.ReadOnly("createdAt", &d.CreatedAt),
	}
}

// Party is a person or organisation involved in cases. The API lists a
// party's cases under "matters". Parties are managed upstream and have no
// writable fields here.
type Party struct {
	ID   int64
	Name string
	Role string
}

func (p *Party) Kind() string    { return KindParty }
func (p *Party) EntityID() int64 { return p.ID }

func (p *Party) Fields() entity.Fields {
	return entity.Fields{
		entity.ReadOnly("id", &p.ID),
		entity.ReadOnly("name", &p.Name),
		entity.ReadOnly("role", &p.Role),
	}
}

// New returns an empty entity of kind with the given id, for callers that
// only know the kind at run time.
func New(kind string, id int64) (entity.Entity, bool) {
	switch kind {
	case KindCase:
		return &Case{ID: id}, true
	case KindDocument:
		return &Document{ID: id}, true
	case KindParty:
		return &Party{ID: id}, true
	}
	return nil, false
}
