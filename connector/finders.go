package connector

import (
	"context"
	"strconv"

	"github.com/kbukum/docket/entity"
)

// kindOf returns the kind of entity type T without an instance.
func kindOf[T any, PT interface {
	*T
	entity.Entity
}]() string {
	var zero T
	return PT(&zero).Kind()
}

// linkedPath is parentPath/parentId/childResource.
func linkedPath(api API, parent entity.Entity, childKind string) (string, error) {
	path, err := objectPath(api.Registry(), parent)
	if err != nil {
		return "", err
	}
	return path + "/" + api.Registry().NestedPathFor(parent.Kind(), childKind), nil
}

// GetLinkedEntities lists the T entities linked below parent, in server order.
func GetLinkedEntities[T any, PT interface {
	*T
	entity.Entity
}](ctx context.Context, api API, parent entity.Entity) ([]*T, error) {
	path, err := linkedPath(api, parent, kindOf[T, PT]())
	if err != nil {
		return nil, err
	}
	body, err := api.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return entity.DecodeList[T, PT](body)
}

// FindLinkedEntity fetches the T with the given id below parent. A rejected
// status is returned as an error like every other operation.
func FindLinkedEntity[T any, PT interface {
	*T
	entity.Entity
}](ctx context.Context, api API, parent entity.Entity, id int64) (*T, error) {
	path, err := linkedPath(api, parent, kindOf[T, PT]())
	if err != nil {
		return nil, err
	}
	body, err := api.Get(ctx, path+"/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}
	return entity.Decode[T, PT](body)
}

// FindBy lists the T entities of the collection matching query. An empty
// query sends no parameters.
func FindBy[T any, PT interface {
	*T
	entity.Entity
}](ctx context.Context, api API, query map[string]string) ([]*T, error) {
	body, err := api.Get(ctx, api.Registry().PathFor(kindOf[T, PT]()), query)
	if err != nil {
		return nil, err
	}
	return entity.DecodeList[T, PT](body)
}
