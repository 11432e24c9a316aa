package netsync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/worldmesh/netsync/codec"
	synclog "github.com/worldmesh/netsync/log"
	"github.com/worldmesh/netsync/statsd"
	"github.com/worldmesh/netsync/types"
)

// Report is the outcome of applying one wire message. Ownership violations
// are collected rather than returned as errors: a misbehaving peer only costs
// itself, and the caller can inspect the report to drive its own policy
// (disconnect, throttle, ignore).
type Report struct {
	// Violations holds one entry per entity record rejected because the
	// sender does not own the entity.
	Violations []*types.WrongOwnerError

	EntitiesApplied  int
	EntitiesCreated  int
	EntitiesRemoved  int
	EntitiesStale    int
	ResourcesApplied bool
}

// Apply decodes one wire message and applies it to the world. Structural
// corruption (wrong arity, malformed record, unknown type set) aborts the
// whole message with an error; per-entity ownership violations and stale
// sequence numbers only skip the entity in question and are accounted in the
// returned Report.
//
// Apply assumes it is the only mutator of the world for its duration.
func (w *World) Apply(bz []byte) (*Report, error) {
	if err := w.finalize(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer statsd.EmitApplyStat(start, "message")
	ctx := context.Background()

	msg, err := codec.Decode[Message](bz)
	if err != nil {
		return nil, err
	}
	if msg.TypeSet != w.typeSetID {
		return nil, eris.Wrapf(ErrTypeSetMismatch, "got %d, want %d", msg.TypeSet, w.typeSetID)
	}

	logger := synclog.CreateMessageLogger(&w.logger, uuid.NewString())
	report := &Report{}

	if err := w.applyResources(ctx, msg.Resources, report); err != nil {
		return nil, err
	}
	for i := range msg.Entities {
		if err := w.applyEntity(ctx, logger, &msg.Entities[i], report); err != nil {
			return nil, err
		}
	}

	statsd.EmitViolationCount(len(report.Violations))
	statsd.EmitStaleCount(report.EntitiesStale)
	return report, nil
}

// applyResources applies the resource block. The group shares a single
// sequence number: either it advances and every non-null slot is applied, or
// it does not and the whole block is skipped.
func (w *World) applyResources(ctx context.Context, block ResourceBlock, report *Report) error {
	resourceTypes := w.manager.GetResources()
	if len(block.Slots) != len(resourceTypes) {
		return eris.Wrapf(ErrWrongArity, "resource block has %d slots, want %d",
			len(block.Slots), len(resourceTypes))
	}

	seq, err := w.store.ResourceSeq(ctx)
	if err != nil {
		return err
	}
	if !seq.Update(block.SyncSeq) {
		return nil
	}

	for i, rType := range resourceTypes {
		if isNullSlot(block.Slots[i]) {
			continue
		}
		value, err := rType.Decode(block.Slots[i])
		if err != nil {
			return err
		}
		if err := w.store.SetResource(ctx, rType, value); err != nil {
			return err
		}
	}
	if err := w.store.SetResourceSeq(ctx, seq); err != nil {
		return err
	}
	report.ResourcesApplied = true
	return nil
}

// applyEntity applies one entity record: resolve or create the local entity,
// gate through ownership and sequence, then apply the update or remove.
func (w *World) applyEntity(
	ctx context.Context,
	logger *zerolog.Logger,
	record *EntityRecord,
	report *Report,
) error {
	if err := record.validate(len(w.manager.GetComponents())); err != nil {
		return err
	}

	entityID, tracked := w.identities[record.Stat.ID]
	if !tracked {
		// A Remove for an entity this world never saw carries no information.
		if record.Remove {
			return nil
		}
		return w.createEntity(ctx, logger, record, report)
	}

	stat, err := w.store.GetNetStat(ctx, entityID)
	if err != nil {
		return eris.Wrapf(types.ErrBrokenEntity, "entity %d", record.Stat.ID)
	}
	proceed, err := stat.Update(record.Stat)
	if err != nil {
		var violation *types.WrongOwnerError
		if errors.As(err, &violation) {
			synclog.Violation(logger, violation)
			report.Violations = append(report.Violations, violation)
			return nil
		}
		return err
	}
	if !proceed {
		report.EntitiesStale++
		return nil
	}

	if record.Remove {
		if err := w.store.RemoveEntity(ctx, entityID); err != nil {
			return err
		}
		delete(w.identities, record.Stat.ID)
		report.EntitiesRemoved++
		return nil
	}

	if err := w.store.SetNetStat(ctx, entityID, stat); err != nil {
		return err
	}
	if err := w.applySlots(ctx, entityID, record.Update); err != nil {
		return err
	}
	synclog.NetStat(logger, zerolog.DebugLevel, stat)
	report.EntitiesApplied++
	return nil
}

// createEntity handles the first sighting of a NetID: a fresh local entity is
// created, keyed into the identity map, and adopts the incoming stat as the
// start of its sequence stream.
func (w *World) createEntity(
	ctx context.Context,
	logger *zerolog.Logger,
	record *EntityRecord,
	report *Report,
) error {
	entityID, err := w.store.CreateEntity(ctx)
	if err != nil {
		return err
	}
	if err := w.store.SetNetStat(ctx, entityID, record.Stat); err != nil {
		return err
	}
	w.identities[record.Stat.ID] = entityID

	if err := w.applySlots(ctx, entityID, record.Update); err != nil {
		return err
	}
	synclog.NetStat(logger, zerolog.DebugLevel, record.Stat)
	report.EntitiesCreated++
	return nil
}

// applySlots walks the positional component list: a null slot removes the
// component if present, anything else inserts or replaces it.
func (w *World) applySlots(ctx context.Context, entityID types.EntityID, update *EntityUpdate) error {
	for i, cType := range w.manager.GetComponents() {
		raw := update.Slots[i]
		if isNullSlot(raw) {
			if err := w.store.RemoveComponent(ctx, cType, entityID); err != nil {
				return err
			}
			continue
		}
		value, err := cType.Decode(raw)
		if err != nil {
			return err
		}
		if err := w.store.SetComponent(ctx, cType, entityID, value); err != nil {
			return err
		}
	}
	return nil
}
