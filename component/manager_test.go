package component_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/worldmesh/netsync/assert"
	"github.com/worldmesh/netsync/component"
	"github.com/worldmesh/netsync/gamestate"
	"github.com/worldmesh/netsync/types"
)

type Foo struct {
	Value int
}

func (Foo) Name() string { return "foo" }

type Bar struct {
	Value int
}

func (Bar) Name() string { return "bar" }

// fooV2 has foo's name but a different shape, simulating a rebuilt world whose
// component definition drifted from the stored state.
type fooV2 struct {
	Value string
}

func (fooV2) Name() string { return "foo" }

type Weather struct {
	Temperature float64
}

func (Weather) Name() string { return "weather" }

func newManagerForTest(t *testing.T) (*component.Manager, gamestate.PrimitiveStorage[string]) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	storage := gamestate.NewRedisPrimitiveStorage(client)
	return component.NewManager(gamestate.NewSchemaStorage(storage)), storage
}

func mustComponentMetadata[T types.Component](t *testing.T) types.ComponentMetadata {
	md, err := component.NewComponentMetadata[T]()
	assert.NilError(t, err)
	return md
}

func TestRegistrationOrderAssignsSlotIDs(t *testing.T) {
	manager, _ := newManagerForTest(t)

	assert.NilError(t, manager.RegisterComponent(mustComponentMetadata[Foo](t)))
	assert.NilError(t, manager.RegisterComponent(mustComponentMetadata[Bar](t)))

	comps := manager.GetComponents()
	assert.Len(t, comps, 2)
	assert.Equal(t, types.ComponentID(0), comps[0].ID())
	assert.Equal(t, "foo", comps[0].Name())
	assert.Equal(t, types.ComponentID(1), comps[1].ID())
	assert.Equal(t, "bar", comps[1].Name())
}

func TestDuplicateComponentNameIsRejected(t *testing.T) {
	manager, _ := newManagerForTest(t)

	assert.NilError(t, manager.RegisterComponent(mustComponentMetadata[Foo](t)))
	err := manager.RegisterComponent(mustComponentMetadata[Foo](t))
	assert.ErrorContains(t, err, "already registered")
}

func TestGetComponentByName(t *testing.T) {
	manager, _ := newManagerForTest(t)
	assert.NilError(t, manager.RegisterComponent(mustComponentMetadata[Foo](t)))

	got, err := manager.GetComponentByName("foo")
	assert.NilError(t, err)
	assert.Equal(t, "foo", got.Name())

	_, err = manager.GetComponentByName("missing")
	assert.ErrorIs(t, err, component.ErrComponentNotRegistered)
}

func TestRegisterResourceAssignsSlotIDs(t *testing.T) {
	manager, _ := newManagerForTest(t)

	resMetadata, err := component.NewResourceMetadata[Weather]()
	assert.NilError(t, err)
	assert.NilError(t, manager.RegisterResource(resMetadata))

	got, err := manager.GetResourceByName("weather")
	assert.NilError(t, err)
	assert.Equal(t, types.ResourceID(0), got.ID())

	_, err = manager.GetResourceByName("missing")
	assert.ErrorIs(t, err, component.ErrResourceNotRegistered)
}

func TestSchemaDriftIsDetectedAcrossRestarts(t *testing.T) {
	manager, storage := newManagerForTest(t)
	assert.NilError(t, manager.RegisterComponent(mustComponentMetadata[Foo](t)))

	// A second manager over the same storage stands in for a restarted world.
	rebuilt := component.NewManager(gamestate.NewSchemaStorage(storage))
	assert.NilError(t, rebuilt.RegisterComponent(mustComponentMetadata[Foo](t)))

	drifted := component.NewManager(gamestate.NewSchemaStorage(storage))
	err := drifted.RegisterComponent(mustComponentMetadata[fooV2](t))
	assert.ErrorIs(t, err, types.ErrComponentSchemaMismatch)
}

func TestTypeSetIDPinsNamesAndOrder(t *testing.T) {
	managerA, _ := newManagerForTest(t)
	assert.NilError(t, managerA.RegisterComponent(mustComponentMetadata[Foo](t)))
	assert.NilError(t, managerA.RegisterComponent(mustComponentMetadata[Bar](t)))

	managerB, _ := newManagerForTest(t)
	assert.NilError(t, managerB.RegisterComponent(mustComponentMetadata[Foo](t)))
	assert.NilError(t, managerB.RegisterComponent(mustComponentMetadata[Bar](t)))

	assert.Equal(t, managerA.TypeSetID(), managerB.TypeSetID())

	// Same types registered in a different order describe a different wire
	// contract.
	managerC, _ := newManagerForTest(t)
	assert.NilError(t, managerC.RegisterComponent(mustComponentMetadata[Bar](t)))
	assert.NilError(t, managerC.RegisterComponent(mustComponentMetadata[Foo](t)))

	assert.Assert(t, managerA.TypeSetID() != managerC.TypeSetID())
}

func TestMetadataSchemaMatchesSerializedSchema(t *testing.T) {
	compMetadata := mustComponentMetadata[Foo](t)
	wantSchema, err := types.SerializeComponentSchema(Foo{})
	assert.NilError(t, err)
	assert.DeepEqual(t, wantSchema, compMetadata.GetSchema())

	resMetadata, err := component.NewResourceMetadata[Weather]()
	assert.NilError(t, err)
	wantSchema, err = types.SerializeComponentSchema(Weather{})
	assert.NilError(t, err)
	assert.DeepEqual(t, wantSchema, resMetadata.GetSchema())
}

func TestComponentMetadataRoundTripsValues(t *testing.T) {
	md := mustComponentMetadata[Foo](t)

	bz, err := md.Encode(Foo{Value: 42})
	assert.NilError(t, err)
	value, err := md.Decode(bz)
	assert.NilError(t, err)
	assert.Equal(t, Foo{Value: 42}, value)
}
