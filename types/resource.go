package types

// ResourceID is the position of a resource type in the fixed syncable list,
// and its wire slot index within the resource block.
type ResourceID int

// Resource is the interface a user-defined struct must implement to be
// registered as a syncable global resource type. Resources are world-global
// singletons; they are replaced by updates, never removed.
type Resource interface {
	// Name returns the name of the resource. It must be unique within a world.
	Name() string
}

// ResourceMetadata is the capability table for one registered resource type,
// symmetric to ComponentMetadata.
type ResourceMetadata interface { //revive:disable-line:exported
	// SetID sets the slot id of this resource type. It must only be set once.
	SetID(ResourceID) error
	// ID returns the slot id of the resource type.
	ID() ResourceID
	Encode(any) ([]byte, error)
	Decode([]byte) (any, error)
	GetSchema() []byte

	Resource
}
