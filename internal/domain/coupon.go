package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CouponKind is the closed set of supported discount strategies.
type CouponKind int

const (
	CouponPercentage CouponKind = iota
	CouponFixedAmount
)

const maxCouponCodeLen = 50

var hundred = decimal.NewFromInt(100)

func (k CouponKind) String() string {
	switch k {
	case CouponPercentage:
		return "Percentage"
	case CouponFixedAmount:
		return "FixedAmount"
	default:
		return fmt.Sprintf("CouponKind(%d)", int(k))
	}
}

// ParseCouponKind is the single canonical parser for coupon kinds, shared by
// the HTTP boundary and the persistence codec. Matching is case-insensitive.
func ParseCouponKind(s string) (CouponKind, error) {
	switch strings.ToLower(s) {
	case "percentage":
		return CouponPercentage, nil
	case "fixedamount":
		return CouponFixedAmount, nil
	default:
		return 0, fmt.Errorf("%w: unknown coupon kind %q", ErrInvalidCoupon, s)
	}
}

// Coupon is a value: constructed fresh on each apply, never mutated.
type Coupon struct {
	code         string
	kind         CouponKind
	value        decimal.Decimal
	minimumOrder *decimal.Decimal
	expiresAt    *time.Time
}

// NewCoupon validates and normalizes a coupon. The code is upper-cased.
func NewCoupon(code string, kind CouponKind, value decimal.Decimal, minimumOrder *decimal.Decimal, expiresAt *time.Time) (Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return Coupon{}, fmt.Errorf("%w: code cannot be empty", ErrInvalidCoupon)
	}
	if len(code) > maxCouponCodeLen {
		return Coupon{}, fmt.Errorf("%w: code cannot exceed %d characters", ErrInvalidCoupon, maxCouponCodeLen)
	}
	if !value.IsPositive() {
		return Coupon{}, fmt.Errorf("%w: value must be greater than zero", ErrInvalidCoupon)
	}
	if kind == CouponPercentage && value.GreaterThan(hundred) {
		return Coupon{}, fmt.Errorf("%w: percentage discount cannot exceed 100", ErrInvalidCoupon)
	}

	return Coupon{
		code:         strings.ToUpper(code),
		kind:         kind,
		value:        value,
		minimumOrder: minimumOrder,
		expiresAt:    expiresAt,
	}, nil
}

func (c Coupon) Code() string                         { return c.code }
func (c Coupon) Kind() CouponKind                     { return c.kind }
func (c Coupon) Value() decimal.Decimal               { return c.value }
func (c Coupon) MinimumOrderAmount() *decimal.Decimal { return c.minimumOrder }
func (c Coupon) ExpiresAt() *time.Time                { return c.expiresAt }

func (c Coupon) IsExpired() bool {
	return c.expiresAt != nil && c.expiresAt.Before(time.Now().UTC())
}

// IsApplicable reports whether the coupon can discount an order of the given
// total: not expired, and the minimum order amount (if any) is met.
func (c Coupon) IsApplicable(orderTotal decimal.Decimal) bool {
	if c.IsExpired() {
		return false
	}
	if c.minimumOrder != nil && orderTotal.LessThan(*c.minimumOrder) {
		return false
	}
	return true
}

// CalculateDiscount returns the discount against orderTotal, or zero when the
// coupon is not applicable. Percentage discounts round to 2 decimal places,
// half away from zero. A fixed discount never exceeds the order total.
func (c Coupon) CalculateDiscount(orderTotal decimal.Decimal) decimal.Decimal {
	if !c.IsApplicable(orderTotal) {
		return decimal.Zero
	}

	switch c.kind {
	case CouponPercentage:
		return orderTotal.Mul(c.value).Div(hundred).Round(2)
	case CouponFixedAmount:
		return decimal.Min(c.value, orderTotal)
	default:
		return decimal.Zero
	}
}
