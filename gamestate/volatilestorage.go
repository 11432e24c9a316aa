package gamestate

// VolatileStorage is the in-memory cache layer sitting in front of a
// PrimitiveStorage. Contents are lost on restart and rebuilt lazily.
type VolatileStorage[K comparable, V any] interface {
	Get(key K) (V, error)
	Set(key K, value V) error
	Delete(key K) error
	Keys() ([]K, error)
	Clear() error
}
