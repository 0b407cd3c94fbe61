package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/kbukum/docket/connector"
	"github.com/kbukum/docket/entity"
	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/model"
)

func newEntity(kind string, id int64) entity.Entity {
	e, _ := model.New(kind, id)
	return e
}

func collect[T any, PT interface {
	*T
	entity.Entity
}](items []*T, err error) ([]entity.Entity, error) {
	if err != nil {
		return nil, err
	}
	out := make([]entity.Entity, len(items))
	for i, item := range items {
		out[i] = PT(item)
	}
	return out, nil
}

func findAll(ctx context.Context, api connector.API, kind string, query map[string]string) ([]entity.Entity, error) {
	switch kind {
	case model.KindCase:
		return collect(connector.FindBy[model.Case](ctx, api, query))
	case model.KindDocument:
		return collect(connector.FindBy[model.Document](ctx, api, query))
	case model.KindParty:
		return collect(connector.FindBy[model.Party](ctx, api, query))
	}
	return nil, apperrors.InvalidInput("kind", "unknown kind "+kind)
}

func linkedAll(ctx context.Context, api connector.API, parent entity.Entity, kind string) ([]entity.Entity, error) {
	switch kind {
	case model.KindCase:
		return collect(connector.GetLinkedEntities[model.Case](ctx, api, parent))
	case model.KindDocument:
		return collect(connector.GetLinkedEntities[model.Document](ctx, api, parent))
	case model.KindParty:
		return collect(connector.GetLinkedEntities[model.Party](ctx, api, parent))
	}
	return nil, apperrors.InvalidInput("kind", "unknown kind "+kind)
}

func findLinked(ctx context.Context, api connector.API, parent entity.Entity, kind string, id int64) (entity.Entity, error) {
	switch kind {
	case model.KindCase:
		return one(connector.FindLinkedEntity[model.Case](ctx, api, parent, id))
	case model.KindDocument:
		return one(connector.FindLinkedEntity[model.Document](ctx, api, parent, id))
	case model.KindParty:
		return one(connector.FindLinkedEntity[model.Party](ctx, api, parent, id))
	}
	return nil, apperrors.InvalidInput("kind", "unknown kind "+kind)
}

func one[T any, PT interface {
	*T
	entity.Entity
}](item *T, err error) (entity.Entity, error) {
	if err != nil {
		return nil, err
	}
	return PT(item), nil
}

// fieldMap renders every bound field of e by wire name.
func fieldMap(e entity.Entity) map[string]any {
	fields := e.Fields()
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value()
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEntities(w io.Writer, items []entity.Entity) error {
	out := make([]map[string]any, len(items))
	for i, e := range items {
		out[i] = fieldMap(e)
	}
	return printJSON(w, out)
}

// parsePairs turns key=value arguments into a map.
func parsePairs(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, apperrors.InvalidInput("query", "expected key=value, got "+arg)
		}
		out[k] = v
	}
	return out, nil
}

// assignPairs sets fields of e from key=value pairs. A value is taken as
// JSON when it fits the field that way, otherwise as a string.
func assignPairs(e entity.Entity, pairs map[string]string) error {
	fields := e.Fields()
	for k, v := range pairs {
		f, ok := fields.Lookup(k)
		if !ok {
			return apperrors.InvalidInput(k, "no field "+k+" on "+e.Kind())
		}
		if json.Valid([]byte(v)) && f.Set(json.RawMessage(v)) == nil {
			continue
		}
		quoted, _ := json.Marshal(v)
		if err := f.Set(quoted); err != nil {
			return apperrors.Hydration(e.Kind(), f.Name, err)
		}
	}
	return nil
}
