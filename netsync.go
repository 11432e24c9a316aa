// Package netsync keeps two copies of a live simulation state consistent over
// an unreliable, ordered transport. Entities and global resources registered
// as syncable are serialized into self-describing wire messages; applying a
// message is gated per entity by ownership and a monotonic sequence number, so
// stale or duplicate deliveries are silent no-ops and a non-owning peer can
// never overwrite state it does not control.
//
// The package does not move bytes: callers deliver one decodable message at a
// time and decide what to do about ownership violations it reports.
package netsync

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/worldmesh/netsync/component"
	"github.com/worldmesh/netsync/gamestate"
	synclog "github.com/worldmesh/netsync/log"
	"github.com/worldmesh/netsync/statsd"
	"github.com/worldmesh/netsync/types"
)

var (
	ErrEntityNotTracked          = eris.New("entity is not tracked by this world")
	ErrRegisterAfterFirstMessage = eris.New("cannot register syncable types after the first encode or apply")
)

// Store is the capability surface netsync consumes from the entity/component
// storage engine. gamestate.State is the production implementation.
type Store interface {
	RegisterSyncables(components []types.ComponentMetadata, resources []types.ResourceMetadata) error

	CreateEntity(ctx context.Context) (types.EntityID, error)
	RemoveEntity(ctx context.Context, id types.EntityID) error

	GetComponent(ctx context.Context, cType types.ComponentMetadata, id types.EntityID) (any, error)
	SetComponent(ctx context.Context, cType types.ComponentMetadata, id types.EntityID, value any) error
	RemoveComponent(ctx context.Context, cType types.ComponentMetadata, id types.EntityID) error

	GetNetStat(ctx context.Context, id types.EntityID) (types.NetStat, error)
	SetNetStat(ctx context.Context, id types.EntityID, stat types.NetStat) error
	TrackedStats(ctx context.Context) (map[types.EntityID]types.NetStat, error)

	GetResource(ctx context.Context, rType types.ResourceMetadata) (any, error)
	SetResource(ctx context.Context, rType types.ResourceMetadata, value any) error
	ResourceSeq(ctx context.Context) (types.SyncSeq, error)
	SetResourceSeq(ctx context.Context, seq types.SyncSeq) error

	NextNetID(ctx context.Context) (types.NetID, error)
	Close(ctx context.Context) error
}

// World owns one synchronized copy of the simulation state: the storage
// engine, the registered syncable type lists, and the identity map from
// stable NetIDs to local entity handles.
//
// A World is not safe for concurrent use. Apply and Encode assume they are
// the only mutator of the underlying state for their duration; callers
// serialize access, typically by running both on the main simulation loop.
type World struct {
	redisClient redis.Cmdable
	store       Store
	manager     *component.Manager
	logger      zerolog.Logger
	peerID      types.NetID

	// identities maps stable network identity to the local entity handle.
	// At most one local entity exists per NetID at any time.
	identities map[types.NetID]types.EntityID

	// pendingRemovals holds the stats of locally despawned entities until the
	// next Encode emits their Remove records.
	pendingRemovals []types.NetStat

	typeSetID types.NetID
	finalized bool
}

// NewWorld creates a world from environment configuration and the given
// options. Syncable types must be registered before the first Encode, Apply
// or entity operation.
func NewWorld(opts ...WorldOption) (*World, error) {
	cfg, err := GetWorldConfig()
	if err != nil {
		return nil, err
	}

	w := &World{
		logger:     zerologlog.Logger,
		peerID:     types.NetID(cfg.PeerID),
		identities: make(map[types.NetID]types.EntityID),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.redisClient == nil {
		w.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
		})
	}
	storage := gamestate.NewRedisPrimitiveStorage(w.redisClient)
	w.store = gamestate.NewState(storage)
	w.manager = component.NewManager(gamestate.NewSchemaStorage(storage))

	if cfg.StatsdAddress != "" {
		if err := statsd.Init(cfg.StatsdAddress, []string{"world"}); err != nil {
			w.logger.Warn().Msgf("failed to init statsd: %v", err)
		}
	}

	return w, nil
}

// PeerID returns the network identity this world acts as.
func (w *World) PeerID() types.NetID {
	return w.peerID
}

// NetStat returns the sync metadata currently recorded for a tracked entity.
func (w *World) NetStat(id types.NetID) (types.NetStat, error) {
	if err := w.finalize(); err != nil {
		return types.NetStat{}, err
	}
	entityID, ok := w.identities[id]
	if !ok {
		return types.NetStat{}, eris.Wrapf(ErrEntityNotTracked, "entity %d", id)
	}
	stat, err := w.store.GetNetStat(context.Background(), entityID)
	if err != nil {
		return types.NetStat{}, eris.Wrapf(types.ErrBrokenEntity, "entity %d", id)
	}
	return stat, nil
}

// TrackedIDs returns the NetIDs of every entity this world currently tracks.
func (w *World) TrackedIDs() ([]types.NetID, error) {
	if err := w.finalize(); err != nil {
		return nil, err
	}
	return sortedIdentityKeys(w.identities), nil
}

// GetRegisteredComponents returns the syncable component list in slot order.
func (w *World) GetRegisteredComponents() []types.ComponentMetadata {
	return w.manager.GetComponents()
}

// GetRegisteredResources returns the syncable resource list in slot order.
func (w *World) GetRegisteredResources() []types.ResourceMetadata {
	return w.manager.GetResources()
}

// Close releases the underlying storage.
func (w *World) Close(ctx context.Context) error {
	return w.store.Close(ctx)
}

// finalize freezes the syncable type lists the first time the world touches
// state. Registration order is a wire contract, so it cannot change once a
// message has been produced or consumed.
func (w *World) finalize() error {
	if w.finalized {
		return nil
	}
	err := w.store.RegisterSyncables(w.manager.GetComponents(), w.manager.GetResources())
	if err != nil {
		return err
	}
	w.typeSetID = w.manager.TypeSetID()

	// A world restarted against existing storage resumes tracking the
	// entities it already knows about.
	stats, err := w.store.TrackedStats(context.Background())
	if err != nil {
		return err
	}
	for entityID, stat := range stats {
		w.identities[stat.ID] = entityID
	}

	synclog.World(&w.logger, w, zerolog.InfoLevel)
	w.finalized = true
	return nil
}
