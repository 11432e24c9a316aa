package types

import (
	"fmt"
)

// NetStat is the per-entity synchronization metadata: the entity's stable
// identity, the peer that owns it, and the sequence number of the last applied
// update. Every mutation of a synchronized entity is gated through it.
type NetStat struct {
	ID      NetID   `json:"id"`
	Owner   NetID   `json:"owner"`
	SyncSeq SyncSeq `json:"sync_seq"`
}

// NewNetStat returns the metadata for a freshly spawned entity. The sequence
// stream starts at 0 and advances on the first local mutation.
func NewNetStat(id, owner NetID) NetStat {
	return NetStat{ID: id, Owner: owner}
}

// Update applies the ownership and sequence gates for an incoming update.
//
// The incoming stat must describe the same entity; a mismatched id is a bug in
// the caller's identity-map handling and panics rather than returning an error.
//
// If the claimed owner differs from the recorded owner the update is rejected
// with a *WrongOwnerError before the sequence counter is consulted, so a
// non-owner can never advance the counter regardless of the sequence number it
// claims. Otherwise the result of the sequence gate is returned: true means
// the update should proceed to component application.
func (s *NetStat) Update(incoming NetStat) (bool, error) {
	if incoming.ID != s.ID {
		panic(fmt.Sprintf("netstat update for entity %d routed to entity %d", incoming.ID, s.ID))
	}
	if incoming.Owner != s.Owner {
		return false, &WrongOwnerError{Updater: incoming.Owner, Entity: s.ID, Owner: s.Owner}
	}
	return s.SyncSeq.Update(incoming.SyncSeq), nil
}

// WrongOwnerError reports that a peer tried to update an entity it does not
// own. It is recoverable at per-entity granularity: the offending update is
// discarded and decoding continues with the next entity record.
type WrongOwnerError struct {
	Updater NetID
	Entity  NetID
	Owner   NetID
}

func (e *WrongOwnerError) Error() string {
	return fmt.Sprintf("peer %d tried to sync entity %d owned by %d", e.Updater, e.Entity, e.Owner)
}
