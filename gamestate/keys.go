package gamestate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/worldmesh/netsync/types"
)

// All state lives under the "NETSYNC" prefix in the primitive storage.

const netStatKeyPrefix = "NETSYNC:NET-STAT:ENTITY-ID-"

// storageComponentKey maps a component slot id and an entity to the serialized
// value of that component on that entity. Presence of the key is what decides
// whether the entity currently has the component.
func storageComponentKey(typeID types.ComponentID, id types.EntityID) string {
	return fmt.Sprintf("NETSYNC:COMPONENT-VALUE:TYPE-ID-%d:ENTITY-ID-%d", typeID, id)
}

// storageNetStatKey maps an entity to its serialized NetStat metadata.
// An entity exists exactly as long as this key does.
func storageNetStatKey(id types.EntityID) string {
	return fmt.Sprintf("%s%d", netStatKeyPrefix, id)
}

// parseNetStatKey recovers the entity id from a net-stat storage key. The
// second return value is false when the key belongs to something else.
func parseNetStatKey(key string) (types.EntityID, bool, error) {
	rest, found := strings.CutPrefix(key, netStatKeyPrefix)
	if !found {
		return 0, false, nil
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false, eris.Wrapf(err, "malformed net-stat key %q", key)
	}
	return types.EntityID(id), true, nil
}

// storageResourceKey maps a resource slot id to the serialized value of that
// global resource.
func storageResourceKey(typeID types.ResourceID) string {
	return fmt.Sprintf("NETSYNC:RESOURCE-VALUE:TYPE-ID-%d", typeID)
}

// storageResourceSeqKey stores the shared sequence number of the resource
// group. Resources sync as one atomic group behind this single counter.
func storageResourceSeqKey() string {
	return "NETSYNC:RESOURCE-SEQ"
}

// storageNextEntityIDKey stores the next local entity id that can be assigned.
func storageNextEntityIDKey() string {
	return "NETSYNC:NEXT-ENTITY-ID"
}

// storageNextNetIDKey stores the next stable network identity that can be
// issued by this world. Ids smaller than this value have been issued already
// and must never be reused.
func storageNextNetIDKey() string {
	return "NETSYNC:NEXT-NET-ID"
}

// storageSchemaKey maps a syncable type name to its recorded JSON schema.
func storageSchemaKey(name string) string {
	return fmt.Sprintf("NETSYNC:SCHEMA:%s", name)
}
