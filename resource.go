package netsync

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/worldmesh/netsync/component"
	"github.com/worldmesh/netsync/types"
)

// RegisterResource adds the global resource type T to the fixed syncable
// list. Registration order defines the wire slot of the type and must be
// identical on both ends of a connection.
func RegisterResource[T types.Resource](w *World) error {
	if w.finalized {
		return eris.Wrap(ErrRegisterAfterFirstMessage, "")
	}
	resMetadata, err := component.NewResourceMetadata[T]()
	if err != nil {
		return err
	}
	return w.manager.RegisterResource(resMetadata)
}

// SetResource replaces the world's global instance of the resource type T and
// advances the shared sequence number of the resource group, so the change
// propagates on the next Encode.
func SetResource[T types.Resource](w *World, value T) error {
	rType, err := resolveResource[T](w)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := w.store.SetResource(ctx, rType, value); err != nil {
		return err
	}
	seq, err := w.store.ResourceSeq(ctx)
	if err != nil {
		return err
	}
	return w.store.SetResourceSeq(ctx, seq+1)
}

// GetResource returns the world's current global instance of the resource
// type T.
func GetResource[T types.Resource](w *World) (res *T, err error) {
	rType, err := resolveResource[T](w)
	if err != nil {
		return nil, err
	}
	value, err := w.store.GetResource(context.Background(), rType)
	if err != nil {
		return nil, err
	}
	t, ok := value.(T)
	if !ok {
		res, ok = value.(*T)
		if !ok {
			return nil, eris.Errorf("type assertion for resource failed: %v to %v", value, rType)
		}
		return res, nil
	}
	return &t, nil
}

func resolveResource[T types.Resource](w *World) (types.ResourceMetadata, error) {
	if err := w.finalize(); err != nil {
		return nil, err
	}
	var t T
	return w.manager.GetResourceByName(t.Name())
}
