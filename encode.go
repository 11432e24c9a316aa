package netsync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/worldmesh/netsync/codec"
	"github.com/worldmesh/netsync/gamestate"
	"github.com/worldmesh/netsync/statsd"
	"github.com/worldmesh/netsync/types"
)

// Encode serializes the world into one wire message: the resource block
// followed by a record for every tracked entity, plus Remove records for
// entities despawned since the previous Encode.
//
// Encode reads the simulation state but never advances sequence numbers;
// those move when the state itself is mutated. It must not race with
// concurrent structural mutation of the world, which is the caller's
// responsibility to prevent.
func (w *World) Encode() ([]byte, error) {
	if err := w.finalize(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer statsd.EmitEncodeStat(start)
	ctx := context.Background()

	resources, err := w.encodeResources(ctx)
	if err != nil {
		return nil, err
	}

	entities := make([]EntityRecord, 0, len(w.identities)+len(w.pendingRemovals))
	for _, netID := range sortedIdentityKeys(w.identities) {
		record, err := w.encodeEntity(ctx, netID, w.identities[netID])
		if err != nil {
			return nil, err
		}
		entities = append(entities, record)
	}
	for _, stat := range w.pendingRemovals {
		entities = append(entities, EntityRecord{Stat: stat, Remove: true})
	}

	bz, err := codec.Encode(Message{
		TypeSet:   w.typeSetID,
		Resources: resources,
		Entities:  entities,
	})
	if err != nil {
		return nil, err
	}

	// Remove records are emitted exactly once. The transport is ordered, so a
	// replica that saw the entity also sees this message.
	w.pendingRemovals = w.pendingRemovals[:0]
	return bz, nil
}

// encodeResources snapshots the resource group: its shared sequence number
// and one slot per registered resource type. Resources the world has not
// initialized yet encode as null.
func (w *World) encodeResources(ctx context.Context) (ResourceBlock, error) {
	resourceTypes := w.manager.GetResources()
	block := ResourceBlock{
		Slots: make([]json.RawMessage, len(resourceTypes)),
	}

	seq, err := w.store.ResourceSeq(ctx)
	if err != nil {
		return ResourceBlock{}, err
	}
	block.SyncSeq = seq

	for i, rType := range resourceTypes {
		value, err := w.store.GetResource(ctx, rType)
		if err != nil {
			if eris.Is(eris.Cause(err), gamestate.ErrResourceNotSet) {
				continue
			}
			return ResourceBlock{}, eris.Wrapf(types.ErrBrokenResource, "resource %q", rType.Name())
		}
		bz, err := rType.Encode(value)
		if err != nil {
			return ResourceBlock{}, err
		}
		block.Slots[i] = bz
	}
	return block, nil
}

// encodeEntity snapshots one tracked entity: its NetStat and one slot per
// registered component type. Components the entity does not carry encode as
// null.
func (w *World) encodeEntity(
	ctx context.Context,
	netID types.NetID,
	entityID types.EntityID,
) (EntityRecord, error) {
	stat, err := w.store.GetNetStat(ctx, entityID)
	if err != nil {
		return EntityRecord{}, eris.Wrapf(types.ErrBrokenEntity, "entity %d", netID)
	}

	componentTypes := w.manager.GetComponents()
	update := EntityUpdate{
		Slots: make([]json.RawMessage, len(componentTypes)),
	}
	for i, cType := range componentTypes {
		value, err := w.store.GetComponent(ctx, cType, entityID)
		if err != nil {
			if eris.Is(eris.Cause(err), gamestate.ErrComponentNotOnEntity) {
				continue
			}
			return EntityRecord{}, err
		}
		bz, err := cType.Encode(value)
		if err != nil {
			return EntityRecord{}, err
		}
		update.Slots[i] = bz
	}
	return EntityRecord{Stat: stat, Update: &update}, nil
}
