package gamestate

import (
	"github.com/rotisserie/eris"
)

var (
	ErrEntityDoesNotExist   = eris.New("entity does not exist")
	ErrComponentNotOnEntity = eris.New("component not on entity")
	ErrResourceNotSet       = eris.New("resource has not been set")
	ErrNoSchemaFound        = eris.New("no schema found")

	// ErrSyncablesAlreadyRegistered is returned when RegisterSyncables is
	// called more than once on the same state.
	ErrSyncablesAlreadyRegistered = eris.New("syncable types are already registered")
)
