package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Flat record shape shared across versions. Field names are camel-cased for
// interop with other consumers of the store; no derived fields are persisted.
type cartRecord struct {
	UserID        string        `json:"userId"`
	Items         []itemRecord  `json:"items"`
	AppliedCoupon *couponRecord `json:"appliedCoupon,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type itemRecord struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

type couponRecord struct {
	Code               string           `json:"code"`
	Type               string           `json:"type"`
	Value              decimal.Decimal  `json:"value"`
	MinimumOrderAmount *decimal.Decimal `json:"minimumOrderAmount,omitempty"`
	ExpiresAt          *time.Time       `json:"expiresAt,omitempty"`
}

// EncodeCart serializes a cart to its flat persistence record.
func EncodeCart(c *ShoppingCart) ([]byte, error) {
	rec := cartRecord{
		UserID:    c.userID,
		Items:     make([]itemRecord, len(c.items)),
		CreatedAt: c.createdAt,
		UpdatedAt: c.updatedAt,
	}

	for i, item := range c.items {
		rec.Items[i] = itemRecord{
			ProductID:   item.productID,
			ProductName: item.name,
			ImageURL:    item.imageURL,
			UnitPrice:   item.unitPrice,
			Quantity:    item.quantity,
		}
	}

	if c.coupon != nil {
		rec.AppliedCoupon = &couponRecord{
			Code:               c.coupon.code,
			Type:               c.coupon.kind.String(),
			Value:              c.coupon.value,
			MinimumOrderAmount: c.coupon.minimumOrder,
			ExpiresAt:          c.coupon.expiresAt,
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal cart record: %w", err)
	}
	return data, nil
}

// DecodeCart rebuilds a cart by replaying AddItem for every stored line in
// order, so a corrupted or hand-edited record that violates aggregate
// invariants is rejected. A blank record means "no cart", not an error.
//
// The stored coupon is validated by NewCoupon but attached without the
// applicability check: a coupon adopted during a merge may be inapplicable
// against the merged subtotal, and must still survive the round trip.
func DecodeCart(data []byte) (*ShoppingCart, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var rec cartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	cart, err := NewShoppingCart(rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	for _, item := range rec.Items {
		if err := cart.AddItem(item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.ImageURL); err != nil {
			return nil, err
		}
	}

	if rec.AppliedCoupon != nil {
		kind, err := ParseCouponKind(rec.AppliedCoupon.Type)
		if err != nil {
			return nil, err
		}
		coupon, err := NewCoupon(rec.AppliedCoupon.Code, kind, rec.AppliedCoupon.Value, rec.AppliedCoupon.MinimumOrderAmount, rec.AppliedCoupon.ExpiresAt)
		if err != nil {
			return nil, err
		}
		cart.coupon = &coupon
	}

	cart.createdAt = rec.CreatedAt
	cart.updatedAt = rec.UpdatedAt

	return cart, nil
}
