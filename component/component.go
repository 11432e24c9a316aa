package component

import (
	"reflect"

	"github.com/rotisserie/eris"

	"github.com/worldmesh/netsync/codec"
	"github.com/worldmesh/netsync/types"
)

// Interface guard
var _ types.ComponentMetadata = (*componentMetadata[types.Component])(nil)

// componentMetadata is the capability table for one registered component type.
// The sync engine only ever sees this wrapper; the concrete type T is erased
// behind Encode/Decode.
type componentMetadata[T types.Component] struct {
	isIDSet  bool
	id       types.ComponentID
	compType reflect.Type
	name     string
	schema   []byte
}

// NewComponentMetadata wraps the component type T into its capability table.
func NewComponentMetadata[T types.Component]() (types.ComponentMetadata, error) {
	var t T

	schema, err := types.SerializeComponentSchema(t)
	if err != nil {
		return nil, err
	}

	return &componentMetadata[T]{
		compType: reflect.TypeOf(t),
		name:     t.Name(),
		schema:   schema,
	}, nil
}

func (c *componentMetadata[T]) GetSchema() []byte {
	return c.schema
}

// SetID sets this component type's slot id. It must be unique across the world.
func (c *componentMetadata[T]) SetID(id types.ComponentID) error {
	if c.isIDSet {
		// Worlds register their components once, on startup. Tests often reuse
		// a component in multiple worlds, so re-setting the same id is allowed.
		if id == c.id {
			return nil
		}
		return eris.Errorf("id for component %q is already set to %v, cannot change to %v", c.name, c.id, id)
	}
	c.id = id
	c.isIDSet = true
	return nil
}

// String returns the component type name.
func (c *componentMetadata[T]) String() string {
	return c.name
}

// Name returns the component type name.
func (c *componentMetadata[T]) Name() string {
	return c.name
}

// ID returns the component type's slot id.
func (c *componentMetadata[T]) ID() types.ComponentID {
	return c.id
}

func (c *componentMetadata[T]) Encode(v any) ([]byte, error) {
	return codec.Encode(v)
}

func (c *componentMetadata[T]) Decode(bz []byte) (any, error) {
	return codec.Decode[T](bz)
}
