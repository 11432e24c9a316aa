package types

// EntityID is the handle of an entity in the local storage engine. It is
// meaningful only on this side of the connection and never crosses the wire.
type EntityID uint64

// NetID is the stable identity of a synchronized entity. Unlike EntityID it is
// shared by every peer in a world and survives serialization and reconnection.
// A NetID is never reused while any peer may still reference it.
type NetID uint64

// Uint64 returns the raw wire representation of the id.
func (id NetID) Uint64() uint64 {
	return uint64(id)
}

// SyncSeq is the monotonic counter gating update acceptance for a logical
// stream (one entity, or the shared resource group). New streams start at 0.
type SyncSeq uint64

// Update adopts incoming as the new value and returns true iff incoming is
// strictly greater than the current value. An equal or lesser value leaves the
// counter untouched and returns false; stale updates are no-ops, not errors.
func (s *SyncSeq) Update(incoming SyncSeq) bool {
	if incoming <= *s {
		return false
	}
	*s = incoming
	return true
}
