package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/evermart/cart-service/internal/domain"
	"github.com/evermart/cart-service/internal/events"
	"github.com/evermart/cart-service/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrCartNotFound is returned when an operation other than AddItem requires a
// stored cart and none exists (or, for checkout and coupons, the cart is empty).
var ErrCartNotFound = errors.New("cart not found")

// CheckoutPublisher publishes the checkout event. Consumers define this
// interface, not the Kafka implementation.
type CheckoutPublisher interface {
	PublishCheckout(ctx context.Context, event events.CheckoutRequested) error
}

type ItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	ImageURL    string
}

type PriceUpdate struct {
	ProductID    uuid.UUID
	NewUnitPrice decimal.Decimal
}

type CouponInput struct {
	Code               string
	Kind               domain.CouponKind
	Value              decimal.Decimal
	MinimumOrderAmount *decimal.Decimal
	ExpiresAt          *time.Time
}

// CartService runs each operation as a short load-mutate-save sequence.
// Carts for different users are fully independent; same-user writes are
// last-writer-wins at the store.
type CartService struct {
	store     store.CartStore
	publisher CheckoutPublisher
	sfg       singleflight.Group // collapses concurrent reads of one hot cart
}

func NewCartService(s store.CartStore, publisher CheckoutPublisher) *CartService {
	return &CartService{
		store:     s,
		publisher: publisher,
	}
}

// GetCart returns the stored cart, or ErrCartNotFound.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.store.Load(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			return nil, fmt.Errorf("%w: user %s", ErrCartNotFound, userID)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ShoppingCart), nil
}

// AddItem adds a product to the user's cart, creating the cart if none is
// stored yet.
func (s *CartService) AddItem(ctx context.Context, userID string, input ItemInput) (*domain.ShoppingCart, error) {
	cart, err := s.loadOrNew(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := cart.AddItem(input.ProductID, input.ProductName, input.UnitPrice, input.Quantity, input.ImageURL); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItemQuantity sets a line's quantity; zero removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID string, productID uuid.UUID, newQuantity int) (*domain.ShoppingCart, error) {
	cart, err := s.loadExisting(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := cart.UpdateItemQuantity(productID, newQuantity); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*domain.ShoppingCart, error) {
	cart, err := s.loadExisting(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := cart.RemoveItem(productID); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear removes the stored cart record entirely. Idempotent.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, userID)
}

// ApplyCoupon constructs a fresh coupon and applies it to a non-empty cart,
// replacing any previous one.
func (s *CartService) ApplyCoupon(ctx context.Context, userID string, input CouponInput) (*domain.ShoppingCart, error) {
	cart, err := s.loadExisting(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items()) == 0 {
		return nil, fmt.Errorf("%w: cart is empty for user %s", ErrCartNotFound, userID)
	}

	coupon, err := domain.NewCoupon(input.Code, input.Kind, input.Value, input.MinimumOrderAmount, input.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := cart.ApplyCoupon(coupon); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) RemoveCoupon(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	cart, err := s.loadExisting(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.RemoveCoupon()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Reprice applies a batch of catalog price updates. Products no longer in the
// cart are skipped silently so the batch never fails halfway.
func (s *CartService) Reprice(ctx context.Context, userID string, updates []PriceUpdate) (*domain.ShoppingCart, error) {
	cart, err := s.loadExisting(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, update := range updates {
		if err := cart.RepriceItem(update.ProductID, update.NewUnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Merge combines the source user's cart into the target user's cart, then
// deletes the source record. With nothing to merge it returns the target's
// cart as-is (or a fresh empty one).
func (s *CartService) Merge(ctx context.Context, targetUserID, sourceUserID string) (*domain.ShoppingCart, error) {
	source, err := s.store.Load(ctx, sourceUserID)
	if err != nil {
		return nil, err
	}

	if source == nil || len(source.Items()) == 0 {
		target, err := s.store.Load(ctx, targetUserID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return domain.NewShoppingCart(targetUserID)
		}
		return target, nil
	}

	target, err := s.loadOrNew(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	if err := target.MergeFrom(source); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, target); err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, sourceUserID); err != nil {
		// The merged cart is already saved; a leftover source record only
		// lingers until its TTL.
		log.Printf("failed to delete source cart for user %s: %v", sourceUserID, err)
	}

	return target, nil
}

// Checkout publishes a CheckoutRequested event carrying a snapshot of the
// cart, then deletes the stored record. The two effects are not transactional:
// a failed publish keeps the cart stored and fails the whole operation; a
// failed delete leaves the cart behind despite the published event.
func (s *CartService) Checkout(ctx context.Context, userID, shippingAddress, paymentMethod string) (*domain.ShoppingCart, error) {
	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items()) == 0 {
		return nil, fmt.Errorf("%w: cart is empty or not found for user %s", ErrCartNotFound, userID)
	}

	event := events.NewCheckoutRequested(cart, shippingAddress, paymentMethod)
	if err := s.publisher.PublishCheckout(ctx, event); err != nil {
		return nil, fmt.Errorf("publish checkout: %w", err)
	}

	if err := s.store.Delete(ctx, userID); err != nil {
		return nil, err
	}

	return cart, nil
}

func (s *CartService) loadOrNew(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return domain.NewShoppingCart(userID)
	}
	return cart, nil
}

func (s *CartService) loadExisting(ctx context.Context, userID string) (*domain.ShoppingCart, error) {
	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("%w: user %s", ErrCartNotFound, userID)
	}
	return cart, nil
}
