package netsync

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/worldmesh/netsync/component"
	"github.com/worldmesh/netsync/types"
)

// RegisterComponent adds the component type T to the fixed syncable list.
// Registration order defines the wire slot of the type and must be identical
// on both ends of a connection. Registration is rejected once the world has
// produced or consumed a message.
func RegisterComponent[T types.Component](w *World) error {
	if w.finalized {
		return eris.Wrap(ErrRegisterAfterFirstMessage, "")
	}
	compMetadata, err := component.NewComponentMetadata[T]()
	if err != nil {
		return err
	}
	return w.manager.RegisterComponent(compMetadata)
}

// Spawn creates a new synchronized entity owned by the given peer, assigns it
// a fresh NetID and attaches the given component values. The entity's sequence
// stream starts at 0 and advances on each mutation.
func (w *World) Spawn(owner types.NetID, components ...types.Component) (types.NetID, error) {
	if err := w.finalize(); err != nil {
		return 0, err
	}
	ctx := context.Background()

	netID, err := w.store.NextNetID(ctx)
	if err != nil {
		return 0, err
	}
	entityID, err := w.store.CreateEntity(ctx)
	if err != nil {
		return 0, err
	}
	if err := w.store.SetNetStat(ctx, entityID, types.NewNetStat(netID, owner)); err != nil {
		return 0, err
	}
	w.identities[netID] = entityID

	for _, comp := range components {
		cType, err := w.manager.GetComponentByName(comp.Name())
		if err != nil {
			return 0, err
		}
		if err := w.store.SetComponent(ctx, cType, entityID, comp); err != nil {
			return 0, err
		}
	}
	return netID, nil
}

// SpawnOwned creates a new synchronized entity owned by this world's peer.
func (w *World) SpawnOwned(components ...types.Component) (types.NetID, error) {
	return w.Spawn(w.peerID, components...)
}

// Despawn removes a tracked entity and queues a Remove record for the next
// Encode, so remote replicas delete their copy as well.
func (w *World) Despawn(id types.NetID) error {
	if err := w.finalize(); err != nil {
		return err
	}
	entityID, ok := w.identities[id]
	if !ok {
		return eris.Wrapf(ErrEntityNotTracked, "entity %d", id)
	}
	ctx := context.Background()

	stat, err := w.store.GetNetStat(ctx, entityID)
	if err != nil {
		return eris.Wrapf(types.ErrBrokenEntity, "entity %d", id)
	}
	if err := w.store.RemoveEntity(ctx, entityID); err != nil {
		return err
	}
	delete(w.identities, id)

	stat.SyncSeq++
	w.pendingRemovals = append(w.pendingRemovals, stat)
	return nil
}

// SetComponent inserts or replaces component data on a tracked entity and
// advances the entity's sequence number, so the change propagates on the next
// Encode.
func SetComponent[T types.Component](w *World, id types.NetID, value T) error {
	entityID, cType, err := resolveComponent[T](w, id)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := w.store.SetComponent(ctx, cType, entityID, value); err != nil {
		return err
	}
	return w.bumpStat(ctx, id, entityID)
}

// GetComponent returns component data from a tracked entity.
func GetComponent[T types.Component](w *World, id types.NetID) (comp *T, err error) {
	entityID, cType, err := resolveComponent[T](w, id)
	if err != nil {
		return nil, err
	}
	value, err := w.store.GetComponent(context.Background(), cType, entityID)
	if err != nil {
		return nil, err
	}
	t, ok := value.(T)
	if !ok {
		comp, ok = value.(*T)
		if !ok {
			return nil, eris.Errorf("type assertion for component failed: %v to %v", value, cType)
		}
		return comp, nil
	}
	return &t, nil
}

// RemoveComponent removes the component type T from a tracked entity and
// advances the entity's sequence number. Removing a component the entity does
// not carry is a no-op that still advances the sequence.
func RemoveComponent[T types.Component](w *World, id types.NetID) error {
	entityID, cType, err := resolveComponent[T](w, id)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := w.store.RemoveComponent(ctx, cType, entityID); err != nil {
		return err
	}
	return w.bumpStat(ctx, id, entityID)
}

// resolveComponent maps the NetID to the local entity handle and the type T to
// its registered metadata.
func resolveComponent[T types.Component](w *World, id types.NetID) (
	types.EntityID, types.ComponentMetadata, error,
) {
	if err := w.finalize(); err != nil {
		return 0, nil, err
	}
	entityID, ok := w.identities[id]
	if !ok {
		return 0, nil, eris.Wrapf(ErrEntityNotTracked, "entity %d", id)
	}
	var t T
	cType, err := w.manager.GetComponentByName(t.Name())
	if err != nil {
		return 0, nil, err
	}
	return entityID, cType, nil
}

// bumpStat advances the entity's sequence number after a local mutation.
func (w *World) bumpStat(ctx context.Context, id types.NetID, entityID types.EntityID) error {
	stat, err := w.store.GetNetStat(ctx, entityID)
	if err != nil {
		return eris.Wrapf(types.ErrBrokenEntity, "entity %d", id)
	}
	stat.SyncSeq++
	return w.store.SetNetStat(ctx, entityID, stat)
}

func sortedIdentityKeys(identities map[types.NetID]types.EntityID) []types.NetID {
	ids := make([]types.NetID, 0, len(identities))
	for id := range identities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
