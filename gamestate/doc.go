/*
Package gamestate persists the synchronized simulation state: entities, their
component values, their per-entity sync metadata, and the global resource
group. Writes go to the primitive storage immediately and are mirrored in an
in-memory cache, so a world restarted against the same storage resumes exactly
where it left off.

# Redis PrimitiveStorage Model

The Redis keys that store data in redis are defined in keys.go. All keys are
prefixed with "NETSYNC".

key:	fmt.Sprintf("NETSYNC:COMPONENT-VALUE:TYPE-ID-%d:ENTITY-ID-%d", componentTypeID, entityID)
value:	JSON serialized bytes that can be deserialized to the component with the
matching componentTypeID. Presence of this key is what decides whether the
entity currently carries the component.

key:	fmt.Sprintf("NETSYNC:NET-STAT:ENTITY-ID-%d", entityID)
value:	JSON serialized bytes that can be deserialized to the entity's NetStat:
its stable network identity, owning peer and sequence number. An entity exists
exactly as long as this key does, and scanning these keys is how a restarted
world rediscovers the entities it tracks.

key:	fmt.Sprintf("NETSYNC:RESOURCE-VALUE:TYPE-ID-%d", resourceTypeID)
value:	JSON serialized bytes that can be deserialized to the global resource
with the matching resourceTypeID.

key:	"NETSYNC:RESOURCE-SEQ"
value:	An integer holding the shared sequence number of the resource group.
Resources sync as one atomic group gated behind this single counter.

key:	"NETSYNC:NEXT-ENTITY-ID"
value:	An integer that represents the next available local entity ID. It can
be assumed that entity IDs smaller than this value have already been assigned.

key:	"NETSYNC:NEXT-NET-ID"
value:	An integer that represents the next stable network identity this world
may issue. Smaller ids have been issued already and are never reused.

key:	fmt.Sprintf("NETSYNC:SCHEMA:%s", typeName)
value:	The JSON schema recorded for the syncable type when it was first
registered. Later registrations under the same name must match it, which
catches a world whose type definitions drifted from its stored state.

# In-memory storage model

The in-memory data model roughly matches the model that is stored in redis,
but components and resources are cached as generic interfaces rather than as
serialized JSON. Caches fill lazily on first read.
*/
package gamestate
