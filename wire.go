package netsync

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/worldmesh/netsync/types"
)

var (
	// ErrWrongArity is returned when a slot list on the wire does not match
	// the registered syncable type list. Slot positions are meaningless after
	// a mismatch, so the whole message is abandoned.
	ErrWrongArity = eris.New("slot count does not match registered syncable types")

	// ErrMalformedRecord is returned when an entity record is not exactly one
	// of update or remove.
	ErrMalformedRecord = eris.New("entity record must be exactly one of update or remove")

	// ErrTypeSetMismatch is returned when the sender registered a different
	// syncable type list than this world.
	ErrTypeSetMismatch = eris.New("message type-set id does not match registered syncable types")
)

// Message is the top-level wire shape: one resource block followed by a
// sequence of entity records. The type-set id pins the compile-time contract
// both ends must share (same types, same order).
type Message struct {
	TypeSet   types.NetID    `json:"type_set"`
	Resources ResourceBlock  `json:"resources"`
	Entities  []EntityRecord `json:"entities"`
}

// ResourceBlock carries the shared sequence number of the resource group and
// one slot per registered resource type, in slot order. A null slot means the
// resource is not initialized on the sending side.
type ResourceBlock struct {
	SyncSeq types.SyncSeq     `json:"sync_seq"`
	Slots   []json.RawMessage `json:"slots"`
}

// EntityRecord pairs an entity's NetStat with either an update or a remove
// instruction.
type EntityRecord struct {
	Stat   types.NetStat `json:"stat"`
	Update *EntityUpdate `json:"update,omitempty"`
	Remove bool          `json:"remove,omitempty"`
}

// EntityUpdate carries one slot per registered component type, in slot order.
// A null slot removes the component from the entity; any other value inserts
// or replaces it.
type EntityUpdate struct {
	Slots []json.RawMessage `json:"slots"`
}

// validate enforces the tagged-union shape and the component arity. Failing
// either is structural corruption: subsequent slot positions can no longer be
// trusted, so the caller must abort the whole message.
func (r *EntityRecord) validate(componentCount int) error {
	if r.Remove == (r.Update != nil) {
		return eris.Wrapf(ErrMalformedRecord, "entity %d", r.Stat.ID)
	}
	if r.Update != nil && len(r.Update.Slots) != componentCount {
		return eris.Wrapf(ErrWrongArity, "entity %d has %d component slots, want %d",
			r.Stat.ID, len(r.Update.Slots), componentCount)
	}
	return nil
}

// isNullSlot reports whether a wire slot is absent. Missing and explicit null
// slots are equivalent.
func isNullSlot(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
