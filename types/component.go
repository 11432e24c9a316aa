package types

import (
	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

// ComponentID is the position of a component type in the fixed syncable list.
// It doubles as the wire slot index, so it must be identical on both ends of a
// connection.
type ComponentID int

// Component is the interface a user-defined struct must implement to be
// registered as a syncable component type.
type Component interface {
	// Name returns the name of the component. It must be unique within a world.
	Name() string
}

// ComponentMetadata is the capability table the sync engine holds for one
// registered component type: a fixed slot id plus encode/decode against the
// opaque storage representation. One instance exists per type, assembled at
// registration, so applying a wire slot never requires a runtime type lookup.
type ComponentMetadata interface { //revive:disable-line:exported
	// SetID sets the slot id of this component type. It must only be set once.
	SetID(ComponentID) error
	// ID returns the slot id of the component type.
	ID() ComponentID
	Encode(any) ([]byte, error)
	Decode([]byte) (any, error)
	GetSchema() []byte

	Component
}

// SerializeComponentSchema derives the JSON schema of a component type. The
// schema participates in the world's type-set tag and in re-registration
// validation.
func SerializeComponentSchema(component Component) ([]byte, error) {
	componentSchema := jsonschema.Reflect(component)
	schema, err := componentSchema.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "component must be json serializable")
	}
	return schema, nil
}

// IsSchemaValid reports whether two serialized schemas describe the same shape.
func IsSchemaValid(jsonSchemaBytes1 []byte, jsonSchemaBytes2 []byte) (bool, error) {
	patch, err := jsondiff.CompareJSON(jsonSchemaBytes1, jsonSchemaBytes2)
	if err != nil {
		return false, eris.Wrap(err, "")
	}
	return patch.String() == "", nil
}
