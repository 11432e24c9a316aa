package gamestate

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/worldmesh/netsync/codec"
	synclog "github.com/worldmesh/netsync/log"
	"github.com/worldmesh/netsync/types"
)

// compKey is a tuple of a component slot id and an entity id. It is used as a
// map key to track component data in memory.
type compKey struct {
	typeID   types.ComponentID
	entityID types.EntityID
}

// State is the storage engine the sync pipeline runs against. Values are
// written through to the primitive storage immediately and cached in memory,
// so restarting a world against the same storage resumes where it left off.
//
// State performs no locking; the sync model is single-threaded apply and
// callers are responsible for serializing access.
type State struct {
	dbStorage PrimitiveStorage[string]

	compValues VolatileStorage[compKey, any]
	statValues VolatileStorage[types.EntityID, types.NetStat]
	resValues  VolatileStorage[types.ResourceID, any]

	components []types.ComponentMetadata
	resources  []types.ResourceMetadata
	registered bool
}

// NewState creates a state manager on top of the given primitive storage.
func NewState(storage PrimitiveStorage[string]) *State {
	return &State{
		dbStorage:  storage,
		compValues: NewMapStorage[compKey, any](),
		statValues: NewMapStorage[types.EntityID, types.NetStat](),
		resValues:  NewMapStorage[types.ResourceID, any](),
	}
}

// RegisterSyncables hands the state the fixed lists of syncable types. It must
// be called exactly once, before any entity or resource operation.
func (s *State) RegisterSyncables(
	components []types.ComponentMetadata,
	resources []types.ResourceMetadata,
) error {
	if s.registered {
		return eris.Wrap(ErrSyncablesAlreadyRegistered, "")
	}
	s.components = components
	s.resources = resources
	s.registered = true
	return nil
}

// CreateEntity allocates a fresh local entity handle. The handle carries no
// components and no NetStat until the caller attaches them.
func (s *State) CreateEntity(ctx context.Context) (types.EntityID, error) {
	id, err := s.nextEntityID(ctx)
	if err != nil {
		return 0, err
	}
	synclog.Entity(&log.Logger, zerolog.DebugLevel, id, s.components)
	return id, nil
}

// RemoveEntity removes the entity, its NetStat and all its component values.
// The deletes go to storage as one atomic transaction, so a crash mid-removal
// cannot leave a half-deleted entity behind.
func (s *State) RemoveEntity(ctx context.Context, id types.EntityID) error {
	if _, err := s.GetNetStat(ctx, id); err != nil {
		return err
	}

	pipe, err := s.dbStorage.StartTransaction(ctx)
	if err != nil {
		return err
	}
	if err := pipe.Delete(ctx, storageNetStatKey(id)); err != nil {
		return err
	}
	for _, comp := range s.components {
		if err := pipe.Delete(ctx, storageComponentKey(comp.ID(), id)); err != nil {
			return err
		}
	}
	if err := pipe.EndTransaction(ctx); err != nil {
		return err
	}

	if err := s.statValues.Delete(id); err != nil {
		return err
	}
	for _, comp := range s.components {
		if err := s.compValues.Delete(compKey{comp.ID(), id}); err != nil {
			return err
		}
	}
	return nil
}

// SetComponent inserts or replaces the entity's component value.
func (s *State) SetComponent(
	ctx context.Context,
	cType types.ComponentMetadata,
	id types.EntityID,
	value any,
) error {
	bz, err := cType.Encode(value)
	if err != nil {
		return err
	}
	if err := s.dbStorage.Set(ctx, storageComponentKey(cType.ID(), id), bz); err != nil {
		return err
	}
	return s.compValues.Set(compKey{cType.ID(), id}, value)
}

// GetComponent returns the entity's component value, or ErrComponentNotOnEntity
// if the entity does not currently carry the component.
func (s *State) GetComponent(
	ctx context.Context,
	cType types.ComponentMetadata,
	id types.EntityID,
) (any, error) {
	key := compKey{cType.ID(), id}
	value, err := s.compValues.Get(key)
	if err == nil {
		return value, nil
	}

	bz, err := s.dbStorage.GetBytes(ctx, storageComponentKey(cType.ID(), id))
	if err != nil {
		if eris.Is(eris.Cause(err), redis.Nil) {
			return nil, eris.Wrap(ErrComponentNotOnEntity, cType.Name())
		}
		return nil, err
	}
	value, err = cType.Decode(bz)
	if err != nil {
		return nil, err
	}
	return value, s.compValues.Set(key, value)
}

// RemoveComponent removes the component from the entity. Removing a component
// the entity does not have is a no-op.
func (s *State) RemoveComponent(
	ctx context.Context,
	cType types.ComponentMetadata,
	id types.EntityID,
) error {
	if err := s.dbStorage.Delete(ctx, storageComponentKey(cType.ID(), id)); err != nil {
		return err
	}
	return s.compValues.Delete(compKey{cType.ID(), id})
}

// SetNetStat attaches or replaces the entity's NetStat metadata.
func (s *State) SetNetStat(ctx context.Context, id types.EntityID, stat types.NetStat) error {
	bz, err := codec.Encode(stat)
	if err != nil {
		return err
	}
	if err := s.dbStorage.Set(ctx, storageNetStatKey(id), bz); err != nil {
		return err
	}
	return s.statValues.Set(id, stat)
}

// GetNetStat reads the entity's NetStat metadata. ErrEntityDoesNotExist is
// returned when the entity has none; for an entity the caller believes to be
// tracked that indicates a broken entity.
func (s *State) GetNetStat(ctx context.Context, id types.EntityID) (types.NetStat, error) {
	stat, err := s.statValues.Get(id)
	if err == nil {
		return stat, nil
	}

	bz, err := s.dbStorage.GetBytes(ctx, storageNetStatKey(id))
	if err != nil {
		if eris.Is(eris.Cause(err), redis.Nil) {
			return types.NetStat{}, eris.Wrap(ErrEntityDoesNotExist, "")
		}
		return types.NetStat{}, err
	}
	stat, err = codec.Decode[types.NetStat](bz)
	if err != nil {
		return types.NetStat{}, err
	}
	return stat, s.statValues.Set(id, stat)
}

// SetResource replaces the global instance of the resource type.
func (s *State) SetResource(ctx context.Context, rType types.ResourceMetadata, value any) error {
	bz, err := rType.Encode(value)
	if err != nil {
		return err
	}
	if err := s.dbStorage.Set(ctx, storageResourceKey(rType.ID()), bz); err != nil {
		return err
	}
	return s.resValues.Set(rType.ID(), value)
}

// GetResource returns the current global instance of the resource type, or
// ErrResourceNotSet if the resource has not been initialized in this world.
func (s *State) GetResource(ctx context.Context, rType types.ResourceMetadata) (any, error) {
	value, err := s.resValues.Get(rType.ID())
	if err == nil {
		return value, nil
	}

	bz, err := s.dbStorage.GetBytes(ctx, storageResourceKey(rType.ID()))
	if err != nil {
		if eris.Is(eris.Cause(err), redis.Nil) {
			return nil, eris.Wrap(ErrResourceNotSet, rType.Name())
		}
		return nil, err
	}
	value, err = rType.Decode(bz)
	if err != nil {
		return nil, err
	}
	return value, s.resValues.Set(rType.ID(), value)
}

// ResourceSeq returns the shared sequence number of the resource group.
func (s *State) ResourceSeq(ctx context.Context) (types.SyncSeq, error) {
	seq, err := s.dbStorage.GetUInt64(ctx, storageResourceSeqKey())
	if err != nil {
		if eris.Is(eris.Cause(err), redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return types.SyncSeq(seq), nil
}

// SetResourceSeq stores the shared sequence number of the resource group.
func (s *State) SetResourceSeq(ctx context.Context, seq types.SyncSeq) error {
	return s.dbStorage.Set(ctx, storageResourceSeqKey(), uint64(seq))
}

// TrackedStats returns the NetStat of every entity persisted in storage.
// It is used to rebuild the identity map when a world restarts against
// existing state.
func (s *State) TrackedStats(ctx context.Context) (map[types.EntityID]types.NetStat, error) {
	keys, err := s.dbStorage.Keys(ctx)
	if err != nil {
		return nil, err
	}
	stats := make(map[types.EntityID]types.NetStat)
	for _, key := range keys {
		id, ok, err := parseNetStatKey(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		stat, err := s.GetNetStat(ctx, id)
		if err != nil {
			return nil, err
		}
		stats[id] = stat
	}
	return stats, nil
}

// NextNetID issues the next stable network identity. The counter advances
// atomically in storage, so issued ids are never reused for the lifetime of
// the backing storage, even across states sharing it.
func (s *State) NextNetID(ctx context.Context) (types.NetID, error) {
	id, err := s.dbStorage.Incr(ctx, storageNextNetIDKey())
	if err != nil {
		return 0, err
	}
	return types.NetID(id), nil
}

// Close closes the state manager.
func (s *State) Close(ctx context.Context) error {
	err := s.dbStorage.Close(ctx)
	if eris.Is(eris.Cause(err), redis.ErrClosed) {
		// Multiple shutdown paths may race to close the storage; a storage
		// that is already closed is not an error.
		return nil
	}
	return err
}

// nextEntityID returns the next available local entity id.
func (s *State) nextEntityID(ctx context.Context) (types.EntityID, error) {
	id, err := s.dbStorage.Incr(ctx, storageNextEntityIDKey())
	if err != nil {
		return 0, err
	}
	return types.EntityID(id), nil
}
