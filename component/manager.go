package component

import (
	"hash/fnv"

	"github.com/rotisserie/eris"

	"github.com/worldmesh/netsync/gamestate"
	"github.com/worldmesh/netsync/types"
)

var (
	ErrComponentNotRegistered = eris.New("component not registered")
	ErrResourceNotRegistered  = eris.New("resource not registered")
)

// Manager holds the fixed, ordered lists of syncable component and resource
// types. Registration order defines the wire slot position of each type, so
// both ends of a connection must register the same types in the same order.
type Manager struct {
	components       []types.ComponentMetadata
	componentsByName map[string]types.ComponentMetadata
	resources        []types.ResourceMetadata
	resourcesByName  map[string]types.ResourceMetadata
	schemaStorage    gamestate.SchemaStorage
}

// NewManager creates a new syncable type manager.
func NewManager(schemaStorage gamestate.SchemaStorage) *Manager {
	return &Manager{
		componentsByName: make(map[string]types.ComponentMetadata),
		resourcesByName:  make(map[string]types.ResourceMetadata),
		schemaStorage:    schemaStorage,
	}
}

// RegisterComponent appends the component type to the syncable list and
// assigns it the next wire slot. There can only be one component with a given
// name. If a schema for the name is already stored (from a previous run of
// this world), the type's current schema must match it.
func (m *Manager) RegisterComponent(compMetadata types.ComponentMetadata) error {
	name := compMetadata.Name()
	if _, ok := m.componentsByName[name]; ok {
		return eris.Errorf("component %q is already registered", name)
	}

	if err := m.validateOrStoreSchema(name, compMetadata.GetSchema()); err != nil {
		return err
	}

	if err := compMetadata.SetID(types.ComponentID(len(m.components))); err != nil {
		return err
	}
	m.components = append(m.components, compMetadata)
	m.componentsByName[name] = compMetadata
	return nil
}

// RegisterResource appends the resource type to the syncable list and assigns
// it the next wire slot within the resource block.
func (m *Manager) RegisterResource(resMetadata types.ResourceMetadata) error {
	name := resMetadata.Name()
	if _, ok := m.resourcesByName[name]; ok {
		return eris.Errorf("resource %q is already registered", name)
	}

	if err := m.validateOrStoreSchema(name, resMetadata.GetSchema()); err != nil {
		return err
	}

	if err := resMetadata.SetID(types.ResourceID(len(m.resources))); err != nil {
		return err
	}
	m.resources = append(m.resources, resMetadata)
	m.resourcesByName[name] = resMetadata
	return nil
}

// validateOrStoreSchema compares the schema against the one recorded in
// storage, or records it if this is the first registration under this name.
func (m *Manager) validateOrStoreSchema(name string, schema []byte) error {
	storedSchema, err := m.schemaStorage.GetSchema(name)
	if err != nil && !eris.Is(eris.Cause(err), gamestate.ErrNoSchemaFound) {
		return err
	}

	if storedSchema != nil {
		valid, err := types.IsSchemaValid(schema, storedSchema)
		if err != nil {
			return err
		}
		if !valid {
			return eris.Wrap(types.ErrComponentSchemaMismatch, name)
		}
		return nil
	}
	return m.schemaStorage.SetSchema(name, schema)
}

// GetComponentByName returns the metadata of a registered component type.
func (m *Manager) GetComponentByName(name string) (types.ComponentMetadata, error) {
	componentType, ok := m.componentsByName[name]
	if !ok {
		return nil, eris.Wrap(ErrComponentNotRegistered, name)
	}
	return componentType, nil
}

// GetResourceByName returns the metadata of a registered resource type.
func (m *Manager) GetResourceByName(name string) (types.ResourceMetadata, error) {
	resourceType, ok := m.resourcesByName[name]
	if !ok {
		return nil, eris.Wrap(ErrResourceNotRegistered, name)
	}
	return resourceType, nil
}

// GetComponents returns all registered component types in wire slot order.
func (m *Manager) GetComponents() []types.ComponentMetadata {
	return m.components
}

// GetResources returns all registered resource types in wire slot order.
func (m *Manager) GetResources() []types.ResourceMetadata {
	return m.resources
}

// TypeSetID derives the stable identity of the registered type set: a 64-bit
// digest over the names and schemas of every syncable type, in slot order.
// Two worlds can only exchange messages if their type-set ids match.
func (m *Manager) TypeSetID() types.NetID {
	h := fnv.New64a()
	for _, comp := range m.components {
		_, _ = h.Write([]byte(comp.Name()))
		_, _ = h.Write(comp.GetSchema())
	}
	for _, res := range m.resources {
		_, _ = h.Write([]byte(res.Name()))
		_, _ = h.Write(res.GetSchema())
	}
	return types.NetID(h.Sum64())
}
