package log

import (
	"github.com/rs/zerolog"

	"github.com/worldmesh/netsync/types"
)

// Loggable is anything that can report its registered syncable type lists.
type Loggable interface {
	GetRegisteredComponents() []types.ComponentMetadata
	GetRegisteredResources() []types.ResourceMetadata
}

func loadComponentIntoArrayLogger(
	component types.ComponentMetadata,
	arrayLogger *zerolog.Array,
) *zerolog.Array {
	dictLogger := zerolog.Dict()
	dictLogger = dictLogger.Int("component_id", int(component.ID()))
	dictLogger = dictLogger.Str("component_name", component.Name())
	return arrayLogger.Dict(dictLogger)
}

func loadComponentsToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	components := target.GetRegisteredComponents()
	zeroLoggerEvent.Int("total_components", len(components))
	arrayLogger := zerolog.Arr()
	for _, comp := range components {
		arrayLogger = loadComponentIntoArrayLogger(comp, arrayLogger)
	}
	return zeroLoggerEvent.Array("components", arrayLogger)
}

func loadResourcesToEvent(zeroLoggerEvent *zerolog.Event, target Loggable) *zerolog.Event {
	resources := target.GetRegisteredResources()
	zeroLoggerEvent.Int("total_resources", len(resources))
	arrayLogger := zerolog.Arr()
	for _, res := range resources {
		dictLogger := zerolog.Dict()
		dictLogger = dictLogger.Int("resource_id", int(res.ID()))
		dictLogger = dictLogger.Str("resource_name", res.Name())
		arrayLogger = arrayLogger.Dict(dictLogger)
	}
	return zeroLoggerEvent.Array("resources", arrayLogger)
}

// Components logs the registered syncable component list.
func Components(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// Resources logs the registered syncable resource list.
func Resources(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadResourcesToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// World logs everything about the world's syncable type set.
func World(logger *zerolog.Logger, target Loggable, level zerolog.Level) {
	zeroLoggerEvent := logger.WithLevel(level)
	zeroLoggerEvent = loadComponentsToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent = loadResourcesToEvent(zeroLoggerEvent, target)
	zeroLoggerEvent.Send()
}

// Entity logs the creation of a local entity handle.
func Entity(
	logger *zerolog.Logger,
	level zerolog.Level,
	entityID types.EntityID,
	components []types.ComponentMetadata,
) {
	zeroLoggerEvent := logger.WithLevel(level)
	arrayLogger := zerolog.Arr()
	for _, comp := range components {
		arrayLogger = loadComponentIntoArrayLogger(comp, arrayLogger)
	}
	zeroLoggerEvent.Array("components", arrayLogger)
	zeroLoggerEvent.Int("entity_id", int(entityID)).Send()
}

// NetStat logs an applied entity update.
func NetStat(logger *zerolog.Logger, level zerolog.Level, stat types.NetStat) {
	logger.WithLevel(level).
		Uint64("net_id", stat.ID.Uint64()).
		Uint64("owner", stat.Owner.Uint64()).
		Uint64("sync_seq", uint64(stat.SyncSeq)).
		Send()
}

// Violation logs an ownership violation reported during message apply.
func Violation(logger *zerolog.Logger, violation *types.WrongOwnerError) {
	logger.Warn().
		Uint64("updater", violation.Updater.Uint64()).
		Uint64("entity", violation.Entity.Uint64()).
		Uint64("owner", violation.Owner.Uint64()).
		Msg("ownership violation")
}

// CreateMessageLogger creates a sub logger scoped to one wire message. Using a
// single id you can follow every entity touched by that message.
func CreateMessageLogger(logger *zerolog.Logger, messageID string) *zerolog.Logger {
	newLogger := logger.With().Str("message_id", messageID).Logger()
	return &newLogger
}
