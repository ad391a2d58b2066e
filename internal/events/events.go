package events

import (
	"time"

	"github.com/evermart/cart-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is what every published event must expose: a unique id and the key
// used to pick a partition. Implemented directly on each event type, so the
// publisher never has to introspect payloads.
type Event interface {
	ID() uuid.UUID
	PartitionKey() string
}

type SnapshotItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type SnapshotCoupon struct {
	Code               string           `json:"code"`
	Type               string           `json:"type"`
	Value              decimal.Decimal  `json:"value"`
	MinimumOrderAmount *decimal.Decimal `json:"minimumOrderAmount,omitempty"`
	ExpiresAt          *time.Time       `json:"expiresAt,omitempty"`
}

// CartSnapshot is the full cart state at checkout time, derived totals
// included.
type CartSnapshot struct {
	UserID         string          `json:"userId"`
	Items          []SnapshotItem  `json:"items"`
	AppliedCoupon  *SnapshotCoupon `json:"appliedCoupon,omitempty"`
	SubTotal       decimal.Decimal `json:"subTotal"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	TotalItemCount int             `json:"totalItemCount"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type CheckoutRequested struct {
	EventID         uuid.UUID    `json:"eventId"`
	UserID          string       `json:"userId"`
	Cart            CartSnapshot `json:"cart"`
	ShippingAddress string       `json:"shippingAddress,omitempty"`
	PaymentMethod   string       `json:"paymentMethod,omitempty"`
	OccurredAt      time.Time    `json:"occurredAt"`
}

func NewCheckoutRequested(cart *domain.ShoppingCart, shippingAddress, paymentMethod string) CheckoutRequested {
	return CheckoutRequested{
		EventID:         uuid.New(),
		UserID:          cart.UserID(),
		Cart:            Snapshot(cart),
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		OccurredAt:      time.Now().UTC(),
	}
}

func (e CheckoutRequested) ID() uuid.UUID { return e.EventID }

// PartitionKey routes by user id so one user's checkouts stay ordered; the
// event id is the fallback for events without a user.
func (e CheckoutRequested) PartitionKey() string {
	if e.UserID != "" {
		return e.UserID
	}
	return e.EventID.String()
}

// Snapshot captures a cart's current state, including derived totals.
func Snapshot(cart *domain.ShoppingCart) CartSnapshot {
	items := cart.Items()
	snap := CartSnapshot{
		UserID:         cart.UserID(),
		Items:          make([]SnapshotItem, len(items)),
		SubTotal:       cart.SubTotal(),
		Discount:       cart.Discount(),
		Total:          cart.Total(),
		TotalItemCount: cart.TotalItemCount(),
		CreatedAt:      cart.CreatedAt(),
		UpdatedAt:      cart.UpdatedAt(),
	}

	for i, item := range items {
		snap.Items[i] = SnapshotItem{
			ProductID:   item.ProductID(),
			ProductName: item.Name(),
			ImageURL:    item.ImageURL(),
			UnitPrice:   item.UnitPrice(),
			Quantity:    item.Quantity(),
			TotalPrice:  item.LineTotal(),
		}
	}

	if coupon, ok := cart.AppliedCoupon(); ok {
		snap.AppliedCoupon = &SnapshotCoupon{
			Code:               coupon.Code(),
			Type:               coupon.Kind().String(),
			Value:              coupon.Value(),
			MinimumOrderAmount: coupon.MinimumOrderAmount(),
			ExpiresAt:          coupon.ExpiresAt(),
		}
	}

	return snap
}
