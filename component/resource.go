package component

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/worldmesh/netsync/codec"
	"github.com/worldmesh/netsync/types"
)

// Interface guard
var _ types.ResourceMetadata = (*resourceMetadata[types.Resource])(nil)

// resourceMetadata is the capability table for one registered global resource
// type, symmetric to componentMetadata.
type resourceMetadata[T types.Resource] struct {
	isIDSet bool
	id      types.ResourceID
	resType reflect.Type
	name    string
	schema  []byte
}

// NewResourceMetadata wraps the resource type T into its capability table.
func NewResourceMetadata[T types.Resource]() (types.ResourceMetadata, error) {
	var t T

	schema, err := types.SerializeComponentSchema(t)
	if err != nil {
		return nil, err
	}

	return &resourceMetadata[T]{
		resType: reflect.TypeOf(t),
		name:    t.Name(),
		schema:  schema,
	}, nil
}

func (r *resourceMetadata[T]) GetSchema() []byte {
	return r.schema
}

// SetID sets this resource type's slot id. It must be unique across the world.
func (r *resourceMetadata[T]) SetID(id types.ResourceID) error {
	if r.isIDSet {
		if id == r.id {
			return nil
		}
		return eris.Errorf("id for resource %q is already set to %v, cannot change to %v", r.name, r.id, id)
	}
	r.id = id
	r.isIDSet = true
	return nil
}

// String returns the resource type name.
func (r *resourceMetadata[T]) String() string {
	return r.name
}

// Name returns the resource type name.
func (r *resourceMetadata[T]) Name() string {
	return r.name
}

// ID returns the resource type's slot id.
func (r *resourceMetadata[T]) ID() types.ResourceID {
	return r.id
}

func (r *resourceMetadata[T]) Encode(v any) ([]byte, error) {
	return codec.Encode(v)
}

func (r *resourceMetadata[T]) Decode(bz []byte) (any, error) {
	return codec.Decode[T](bz)
}
