package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShoppingCart is the aggregate root. It owns its items and coupon; all
// mutation goes through its methods. A loaded cart must not be shared across
// concurrent operations — it holds no locks.
type ShoppingCart struct {
	userID    string
	items     []*CartItem
	coupon    *Coupon
	createdAt time.Time
	updatedAt time.Time
}

func NewShoppingCart(userID string) (*ShoppingCart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}

	now := time.Now().UTC()
	return &ShoppingCart{
		userID:    userID,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func (c *ShoppingCart) UserID() string       { return c.userID }
func (c *ShoppingCart) CreatedAt() time.Time { return c.createdAt }
func (c *ShoppingCart) UpdatedAt() time.Time { return c.updatedAt }

// Items returns the lines in insertion order. The returned slice is a copy;
// the items themselves cannot be mutated outside this package.
func (c *ShoppingCart) Items() []*CartItem {
	items := make([]*CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// AppliedCoupon returns the current coupon, if any.
func (c *ShoppingCart) AppliedCoupon() (Coupon, bool) {
	if c.coupon == nil {
		return Coupon{}, false
	}
	return *c.coupon, true
}

// SubTotal is the sum of all line totals, recomputed on every call.
func (c *ShoppingCart) SubTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Discount is the applied coupon's discount against the subtotal, or zero.
func (c *ShoppingCart) Discount() decimal.Decimal {
	if c.coupon == nil {
		return decimal.Zero
	}
	return c.coupon.CalculateDiscount(c.SubTotal())
}

// Total is subtotal minus discount, clamped at zero.
func (c *ShoppingCart) Total() decimal.Decimal {
	total := c.SubTotal().Sub(c.Discount())
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (c *ShoppingCart) TotalItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.quantity
	}
	return count
}

// AddItem appends a new line, or bumps the quantity of an existing line with
// the same product id. An existing line keeps its own name and price.
func (c *ShoppingCart) AddItem(productID uuid.UUID, name string, unitPrice decimal.Decimal, quantity int, imageURL string) error {
	if existing := c.findItem(productID); existing != nil {
		if err := existing.increaseQuantity(quantity); err != nil {
			return err
		}
		c.touch()
		return nil
	}

	item, err := newCartItem(productID, name, unitPrice, quantity, imageURL)
	if err != nil {
		return err
	}

	c.items = append(c.items, item)
	c.touch()
	return nil
}

// UpdateItemQuantity sets a line's quantity exactly. A quantity of zero or
// less removes the line instead of failing.
func (c *ShoppingCart) UpdateItemQuantity(productID uuid.UUID, newQuantity int) error {
	item := c.findItem(productID)
	if item == nil {
		return fmt.Errorf("%w: product %s", ErrItemNotFound, productID)
	}

	if newQuantity <= 0 {
		c.removeFromItems(productID)
	} else if err := item.updateQuantity(newQuantity); err != nil {
		return err
	}

	c.touch()
	return nil
}

func (c *ShoppingCart) RemoveItem(productID uuid.UUID) error {
	if c.findItem(productID) == nil {
		return fmt.Errorf("%w: product %s", ErrItemNotFound, productID)
	}

	c.removeFromItems(productID)
	c.touch()
	return nil
}

// Clear empties the cart and drops any coupon. Idempotent.
func (c *ShoppingCart) Clear() {
	c.items = nil
	c.coupon = nil
	c.touch()
}

// ApplyCoupon replaces any previously applied coupon. Coupons do not stack.
func (c *ShoppingCart) ApplyCoupon(coupon Coupon) error {
	if !coupon.IsApplicable(c.SubTotal()) {
		return fmt.Errorf("%w: coupon %q", ErrCouponNotApplicable, coupon.Code())
	}

	c.coupon = &coupon
	c.touch()
	return nil
}

func (c *ShoppingCart) RemoveCoupon() {
	c.coupon = nil
	c.touch()
}

// RepriceItem overwrites a line's unit price for catalog sync. Unlike
// RemoveItem, an absent product is a no-op, not an error, so one departed
// product does not fail a whole reprice batch. The no-op leaves the cart
// untouched, including its updated-at timestamp.
func (c *ShoppingCart) RepriceItem(productID uuid.UUID, newUnitPrice decimal.Decimal) error {
	item := c.findItem(productID)
	if item == nil {
		return nil
	}

	if err := item.updatePrice(newUnitPrice); err != nil {
		return err
	}
	c.touch()
	return nil
}

// MergeFrom replays every source line through AddItem: quantities combine on
// shared products, and the source's name and price win only for lines the
// target did not have. The source's coupon is adopted when the target has
// none, without re-checking applicability against the merged subtotal.
// Discarding the source's stored record is the caller's responsibility.
func (c *ShoppingCart) MergeFrom(source *ShoppingCart) error {
	for _, item := range source.items {
		if err := c.AddItem(item.productID, item.name, item.unitPrice, item.quantity, item.imageURL); err != nil {
			return err
		}
	}

	if c.coupon == nil && source.coupon != nil {
		coupon := *source.coupon
		c.coupon = &coupon
	}

	c.touch()
	return nil
}

func (c *ShoppingCart) findItem(productID uuid.UUID) *CartItem {
	for _, item := range c.items {
		if item.productID == productID {
			return item
		}
	}
	return nil
}

func (c *ShoppingCart) removeFromItems(productID uuid.UUID) {
	for i, item := range c.items {
		if item.productID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *ShoppingCart) touch() {
	c.updatedAt = time.Now().UTC()
}
