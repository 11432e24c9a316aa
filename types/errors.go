package types

import "github.com/rotisserie/eris"

var (
	// ErrBrokenEntity signals that a tracked entity is missing its NetStat
	// metadata. This is a local engine defect, not bad peer data.
	ErrBrokenEntity = eris.New("entity is missing its net stat")

	// ErrBrokenResource signals that a registered resource could not be read
	// back from the storage engine. A local defect, not bad peer data.
	ErrBrokenResource = eris.New("resource is broken")

	// ErrComponentSchemaMismatch is returned when a registered syncable type's
	// schema does not match the schema recorded in storage.
	ErrComponentSchemaMismatch = eris.New("component schema does not match target schema")
)
