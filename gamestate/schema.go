package gamestate

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// SchemaStorage records the JSON schema of every registered syncable type so
// a world restarted against existing state can detect type drift.
type SchemaStorage interface {
	GetSchema(name string) ([]byte, error)
	SetSchema(name string, schema []byte) error
}

var _ SchemaStorage = &schemaStorage{}

type schemaStorage struct {
	storage PrimitiveStorage[string]
}

func NewSchemaStorage(storage PrimitiveStorage[string]) SchemaStorage {
	return &schemaStorage{storage: storage}
}

func (s *schemaStorage) GetSchema(name string) ([]byte, error) {
	bz, err := s.storage.GetBytes(context.Background(), storageSchemaKey(name))
	if err != nil {
		if eris.Is(eris.Cause(err), redis.Nil) {
			return nil, eris.Wrap(ErrNoSchemaFound, name)
		}
		return nil, err
	}
	return bz, nil
}

func (s *schemaStorage) SetSchema(name string, schema []byte) error {
	return s.storage.Set(context.Background(), storageSchemaKey(name), schema)
}
