// Package codec is the single place where syncable payloads are converted
// to and from bytes. Component and resource values, as well as the top-level
// wire message, all round-trip through it.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// Decode unmarshals bz into a freshly allocated T.
func Decode[T any](bz []byte) (T, error) {
	value := new(T)
	if err := json.Unmarshal(bz, value); err != nil {
		return *value, eris.Wrap(err, "")
	}
	return *value, nil
}

// Encode marshals value into bytes.
func Encode(value any) ([]byte, error) {
	bz, err := json.Marshal(value)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}
