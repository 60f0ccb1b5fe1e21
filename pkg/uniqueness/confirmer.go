package uniqueness

import (
	"context"

	"github.com/dmitrymomot/liveform/pkg/formvalidator"
)

// StoreConfirmer answers remote checks straight from a Store, skipping the HTTP
// round trip when the form lives in the same process as the store.
type StoreConfirmer struct {
	store Store
}

var _ formvalidator.Confirmer = StoreConfirmer{}

func NewStoreConfirmer(store Store) StoreConfirmer {
	return StoreConfirmer{store: store}
}

func (c StoreConfirmer) Confirm(ctx context.Context, fieldID, value string) (formvalidator.Confirmation, error) {
	taken, err := c.store.Exists(ctx, fieldID, value)
	if err != nil {
		return formvalidator.Confirmation{}, err
	}
	return formvalidator.Confirmation{ValueInUse: taken}, nil
}
