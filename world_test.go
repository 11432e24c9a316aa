package netsync_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/worldmesh/netsync"
	"github.com/worldmesh/netsync/assert"
	"github.com/worldmesh/netsync/gamestate"
	"github.com/worldmesh/netsync/types"
)

type Position struct {
	X, Y float64
}

func (Position) Name() string { return "position" }

type Health struct {
	Current, Max int
}

func (Health) Name() string { return "health" }

type GameClock struct {
	Tick uint64
}

func (GameClock) Name() string { return "game_clock" }

func newWorldForTest(t *testing.T, peer types.NetID) *netsync.World {
	world, _ := newWorldAndClientForTest(t, peer, nil)
	return world
}

// newWorldAndClientForTest creates a world over the given redis client. If the
// client is nil, a miniredis-backed one is created. Both worlds of a test pair
// register the same types in the same order, as real peers must.
func newWorldAndClientForTest(t *testing.T, peer types.NetID, client *redis.Client) (*netsync.World, *redis.Client) {
	if client == nil {
		s := miniredis.RunT(t)
		client = redis.NewClient(&redis.Options{Addr: s.Addr()})
	}
	world, err := netsync.NewWorld(
		netsync.WithRedisClient(client),
		netsync.WithPeerID(peer),
		netsync.WithLogger(zerolog.Nop()),
	)
	assert.NilError(t, err)
	assert.NilError(t, netsync.RegisterComponent[Position](world))
	assert.NilError(t, netsync.RegisterComponent[Health](world))
	assert.NilError(t, netsync.RegisterResource[GameClock](world))
	return world, client
}

func trackedIDs(t *testing.T, w *netsync.World) []types.NetID {
	ids, err := w.TrackedIDs()
	assert.NilError(t, err)
	return ids
}

// transfer encodes the sender's state and applies it to the receiver,
// standing in for one message delivery on the transport.
func transfer(t *testing.T, from, to *netsync.World) *netsync.Report {
	bz, err := from.Encode()
	assert.NilError(t, err)
	report, err := to.Apply(bz)
	assert.NilError(t, err)
	return report
}

func TestSpawnedEntityAppearsOnRemote(t *testing.T) {
	a := newWorldForTest(t, 1)
	b := newWorldForTest(t, 2)
	wantPos := Position{X: 1, Y: 2}

	id, err := a.Spawn(1, wantPos)
	assert.NilError(t, err)

	report := transfer(t, a, b)
	assert.Equal(t, 1, report.EntitiesCreated)
	assert.Empty(t, report.Violations)

	assert.DeepEqual(t, []types.NetID{id}, trackedIDs(t, b))
	gotPos, err := netsync.GetComponent[Position](b, id)
	assert.NilError(t, err)
	assert.Equal(t, wantPos, *gotPos)

	// The entity was spawned without health, so the replica has none either.
	_, err = netsync.GetComponent[Health](b, id)
	assert.ErrorIs(t, err, gamestate.ErrComponentNotOnEntity)

	// The replica adopted the sender's stat wholesale.
	stat, err := b.NetStat(id)
	assert.NilError(t, err)
	assert.Equal(t, types.NetStat{ID: id, Owner: 1, SyncSeq: 0}, stat)
}

func TestSpawnOwnedUsesWorldPeer(t *testing.T) {
	w := newWorldForTest(t, 7)

	id, err := w.SpawnOwned(Position{})
	assert.NilError(t, err)
	stat, err := w.NetStat(id)
	assert.NilError(t, err)
	assert.Equal(t, types.NetID(7), stat.Owner)
}

func TestComponentUpdatePropagates(t *testing.T) {
	a := newWorldForTest(t, 1)
	b := newWorldForTest(t, 2)

	id, err := a.Spawn(1, Position{X: 1, Y: 2})
	assert.NilError(t, err)
	transfer(t, a, b)

	wantPos := Position{X: 3, Y: 4}
	assert.NilError(t, netsync.SetComponent(a, id, wantPos))

	report := transfer(t, a, b)
	assert.Equal(t, 1, report.EntitiesApplied)

	gotPos, err := netsync.GetComponent[Position](b, id)
	assert.NilError(t, err)
	assert.Equal(t, wantPos, *gotPos)
}

func TestComponentRemovalPropagates(t *testing.T) {
	a := newWorldForTest(t, 1)
	b := newWorldForTest(t, 2)

	id, err := a.Spawn(1, Position{X: 1}, Health{Current: 10, Max: 10})
	assert.NilError(t, err)
	transfer(t, a, b)

	assert.NilError(t, netsync.RemoveComponent[Health](a, id))
	transfer(t, a, b)

	_, err = netsync.GetComponent[Health](b, id)
	assert.ErrorIs(t, err, gamestate.ErrComponentNotOnEntity)

	// The other slots are untouched.
	gotPos, err := netsync.GetComponent[Position](b, id)
	assert.NilError(t, err)
	assert.Equal(t, Position{X: 1}, *gotPos)
}

func TestLocalMutationAdvancesSequence(t *testing.T) {
	w := newWorldForTest(t, 1)

	id, err := w.SpawnOwned(Position{})
	assert.NilError(t, err)

	assert.NilError(t, netsync.SetComponent(w, id, Position{X: 1}))
	assert.NilError(t, netsync.SetComponent(w, id, Position{X: 2}))

	stat, err := w.NetStat(id)
	assert.NilError(t, err)
	assert.Equal(t, types.SyncSeq(2), stat.SyncSeq)
}

func TestEncodeIsReadOnly(t *testing.T) {
	w := newWorldForTest(t, 1)

	id, err := w.SpawnOwned(Position{X: 1})
	assert.NilError(t, err)

	first, err := w.Encode()
	assert.NilError(t, err)
	second, err := w.Encode()
	assert.NilError(t, err)
	assert.DeepEqual(t, first, second)

	stat, err := w.NetStat(id)
	assert.NilError(t, err)
	assert.Equal(t, types.SyncSeq(0), stat.SyncSeq)
}

func TestRegistrationFrozenAfterFirstMessage(t *testing.T) {
	w := newWorldForTest(t, 1)

	_, err := w.Encode()
	assert.NilError(t, err)

	err = netsync.RegisterComponent[Position](w)
	assert.ErrorIs(t, err, netsync.ErrRegisterAfterFirstMessage)
	err = netsync.RegisterResource[GameClock](w)
	assert.ErrorIs(t, err, netsync.ErrRegisterAfterFirstMessage)
}

func TestRestartedWorldResumesTracking(t *testing.T) {
	a, client := newWorldAndClientForTest(t, 1, nil)

	first, err := a.SpawnOwned(Position{X: 1})
	assert.NilError(t, err)
	second, err := a.SpawnOwned(Position{X: 2})
	assert.NilError(t, err)

	// A fresh world over the same storage stands in for a process restart.
	restarted, _ := newWorldAndClientForTest(t, 1, client)
	b := newWorldForTest(t, 2)
	report := transfer(t, restarted, b)

	assert.Equal(t, 2, report.EntitiesCreated)
	assert.DeepEqual(t, []types.NetID{first, second}, trackedIDs(t, restarted))
	assert.DeepEqual(t, []types.NetID{first, second}, trackedIDs(t, b))

	// The NetID counter resumes too, so ids issued before the restart are
	// never handed out again.
	third, err := restarted.SpawnOwned(Position{X: 3})
	assert.NilError(t, err)
	assert.Assert(t, third > second)
}

func TestRestartedWorldDespawnsPersistedEntity(t *testing.T) {
	a, client := newWorldAndClientForTest(t, 1, nil)

	id, err := a.SpawnOwned(Position{X: 1})
	assert.NilError(t, err)

	// Despawn is the very first operation on the restarted world, before any
	// encode or apply had a chance to load the tracked entities.
	restarted, _ := newWorldAndClientForTest(t, 1, client)
	assert.NilError(t, restarted.Despawn(id))
	assert.Empty(t, trackedIDs(t, restarted))

	b := newWorldForTest(t, 2)
	report := transfer(t, restarted, b)
	assert.Equal(t, 0, report.EntitiesCreated)
}

func TestRestartedWorldReportsPersistedEntityFirst(t *testing.T) {
	a, client := newWorldAndClientForTest(t, 1, nil)

	id, err := a.SpawnOwned(Position{X: 1})
	assert.NilError(t, err)
	assert.NilError(t, netsync.SetComponent(a, id, Position{X: 2}))

	// NetStat and TrackedIDs as the first operations on the restarted world.
	restarted, _ := newWorldAndClientForTest(t, 1, client)
	stat, err := restarted.NetStat(id)
	assert.NilError(t, err)
	assert.Equal(t, types.NetStat{ID: id, Owner: 1, SyncSeq: 1}, stat)

	restarted, _ = newWorldAndClientForTest(t, 1, client)
	assert.DeepEqual(t, []types.NetID{id}, trackedIDs(t, restarted))
}

func TestDespawnPropagatesExactlyOnce(t *testing.T) {
	a := newWorldForTest(t, 1)
	b := newWorldForTest(t, 2)

	id, err := a.Spawn(1, Position{X: 1})
	assert.NilError(t, err)
	transfer(t, a, b)

	assert.NilError(t, a.Despawn(id))
	assert.Empty(t, trackedIDs(t, a))

	report := transfer(t, a, b)
	assert.Equal(t, 1, report.EntitiesRemoved)
	assert.Empty(t, trackedIDs(t, b))
	_, err = netsync.GetComponent[Position](b, id)
	assert.ErrorIs(t, err, netsync.ErrEntityNotTracked)

	// The transport is ordered, so the remove record rides exactly one
	// message.
	report = transfer(t, a, b)
	assert.Equal(t, 0, report.EntitiesRemoved)
}

func TestDespawnOfUntrackedEntityFails(t *testing.T) {
	w := newWorldForTest(t, 1)
	assert.ErrorIs(t, w.Despawn(42), netsync.ErrEntityNotTracked)
}

func TestResourcesSyncAsOneGroup(t *testing.T) {
	a := newWorldForTest(t, 1)
	b := newWorldForTest(t, 2)

	// Neither side has touched the resource group, so nothing transfers.
	report := transfer(t, a, b)
	assert.False(t, report.ResourcesApplied)

	assert.NilError(t, netsync.SetResource(a, GameClock{Tick: 5}))
	report = transfer(t, a, b)
	assert.True(t, report.ResourcesApplied)

	clock, err := netsync.GetResource[GameClock](b)
	assert.NilError(t, err)
	assert.Equal(t, uint64(5), clock.Tick)

	// Replaying the same message leaves the group untouched.
	report = transfer(t, a, b)
	assert.False(t, report.ResourcesApplied)

	// Echoing the state back to the sender is a no-op as well.
	report = transfer(t, b, a)
	assert.False(t, report.ResourcesApplied)
}
