package store

import (
	"context"
	"errors"

	"github.com/evermart/cart-service/internal/domain"
)

// CartStore is the persistence contract for carts, keyed by user id.
// Load returns (nil, nil) when no cart is stored. Save persists the full
// current state and resets the TTL from the save instant. Delete is
// idempotent on absent keys. Concurrent saves for the same user are
// last-writer-wins at the engine level.
type CartStore interface {
	Load(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	Save(ctx context.Context, cart *domain.ShoppingCart) error
	Delete(ctx context.Context, userID string) error
}

// ErrStoreUnavailable wraps engine-level I/O failures. These are transient;
// retry policy belongs to the caller.
var ErrStoreUnavailable = errors.New("cart store unavailable")
