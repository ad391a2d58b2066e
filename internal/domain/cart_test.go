package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(t *testing.T) *ShoppingCart {
	t.Helper()
	cart, err := NewShoppingCart("user-1")
	require.NoError(t, err)
	return cart
}

func mustAdd(t *testing.T, cart *ShoppingCart, productID uuid.UUID, name string, price string, qty int) {
	t.Helper()
	require.NoError(t, cart.AddItem(productID, name, decimal.RequireFromString(price), qty, ""))
}

func TestNewShoppingCart(t *testing.T) {
	cart, err := NewShoppingCart("user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID())
	assert.Empty(t, cart.Items())
	assert.False(t, cart.CreatedAt().IsZero())
	assert.False(t, cart.UpdatedAt().IsZero())

	_, err = NewShoppingCart("  ")
	assert.Error(t, err)
}

func TestAddItem_SameProductMergesIntoOneLine(t *testing.T) {
	cart := newTestCart(t)
	productID := uuid.New()

	mustAdd(t, cart, productID, "Keyboard", "49.99", 2)
	mustAdd(t, cart, productID, "Keyboard", "49.99", 3)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity())
}

func TestAddItem_ExistingLineKeepsNameAndPrice(t *testing.T) {
	cart := newTestCart(t)
	productID := uuid.New()

	mustAdd(t, cart, productID, "Keyboard", "49.99", 1)
	// Re-add with a different name and price: only the quantity bumps.
	require.NoError(t, cart.AddItem(productID, "Renamed", decimal.RequireFromString("59.99"), 1, ""))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Keyboard", items[0].Name())
	assert.True(t, items[0].UnitPrice().Equal(decimal.RequireFromString("49.99")))
	assert.Equal(t, 2, items[0].Quantity())
}

func TestAddItem_InvalidNewLine(t *testing.T) {
	cart := newTestCart(t)
	before := cart.UpdatedAt()

	err := cart.AddItem(uuid.New(), "", decimal.NewFromInt(10), 1, "")
	assert.ErrorIs(t, err, ErrInvalidItem)
	assert.Empty(t, cart.Items())
	assert.Equal(t, before, cart.UpdatedAt(), "failed add must not touch the cart")
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	cart := newTestCart(t)
	first, second, third := uuid.New(), uuid.New(), uuid.New()

	mustAdd(t, cart, first, "A", "1.00", 1)
	mustAdd(t, cart, second, "B", "2.00", 1)
	mustAdd(t, cart, third, "C", "3.00", 1)
	mustAdd(t, cart, first, "A", "1.00", 1)

	items := cart.Items()
	require.Len(t, items, 3)
	assert.Equal(t, first, items[0].ProductID())
	assert.Equal(t, second, items[1].ProductID())
	assert.Equal(t, third, items[2].ProductID())
}

func TestUpdateItemQuantity(t *testing.T) {
	cart := newTestCart(t)
	productID := uuid.New()
	mustAdd(t, cart, productID, "Keyboard", "10.00", 2)

	require.NoError(t, cart.UpdateItemQuantity(productID, 9))
	assert.Equal(t, 9, cart.Items()[0].Quantity())
}

func TestUpdateItemQuantity_ZeroRemovesLine(t *testing.T) {
	cart := newTestCart(t)
	productID := uuid.New()
	mustAdd(t, cart, productID, "Keyboard", "10.00", 2)

	require.NoError(t, cart.UpdateItemQuantity(productID, 0))
	assert.Empty(t, cart.Items())
}

func TestUpdateItemQuantity_AbsentProduct(t *testing.T) {
	cart := newTestCart(t)
	err := cart.UpdateItemQuantity(uuid.New(), 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	cart := newTestCart(t)
	keep, remove := uuid.New(), uuid.New()
	mustAdd(t, cart, keep, "Keep", "1.00", 1)
	mustAdd(t, cart, remove, "Remove", "2.00", 1)

	require.NoError(t, cart.RemoveItem(remove))
	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, keep, items[0].ProductID())

	assert.ErrorIs(t, cart.RemoveItem(remove), ErrItemNotFound)
}

func TestClear(t *testing.T) {
	cart := newTestCart(t)
	mustAdd(t, cart, uuid.New(), "Keyboard", "10.00", 2)
	coupon, err := NewCoupon("SAVE10", CouponPercentage, decimal.NewFromInt(10), nil, nil)
	require.NoError(t, err)
	require.NoError(t, cart.ApplyCoupon(coupon))

	cart.Clear()
	assert.Empty(t, cart.Items())
	_, ok := cart.AppliedCoupon()
	assert.False(t, ok)

	// Idempotent.
	cart.Clear()
	assert.Empty(t, cart.Items())
}

func TestApplyCoupon_ReplacesPrevious(t *testing.T) {
	cart := newTestCart(t)
	mustAdd(t, cart, uuid.New(), "Keyboard", "100.00", 1)

	first, err := NewCoupon("FIRST", CouponPercentage, decimal.NewFromInt(10), nil, nil)
	require.NoError(t, err)
	second, err := NewCoupon("SECOND", CouponFixedAmount, decimal.NewFromInt(5), nil, nil)
	require.NoError(t, err)

	require.NoError(t, cart.ApplyCoupon(first))
	require.NoError(t, cart.ApplyCoupon(second))

	applied, ok := cart.AppliedCoupon()
	require.True(t, ok)
	assert.Equal(t, "SECOND", applied.Code())
}

func TestApplyCoupon_BelowMinimumOrder(t *testing.T) {
	cart := newTestCart(t)
	mustAdd(t, cart, uuid.New(), "Keyboard", "30.00", 1)

	minOrder := decimal.NewFromInt(50)
	coupon, err := NewCoupon("SAVE10", CouponPercentage, decimal.NewFromInt(10), &minOrder, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, cart.ApplyCoupon(coupon), ErrCouponNotApplicable)
	_, ok := cart.AppliedCoupon()
	assert.False(t, ok)
}

func TestApplyCoupon_Expired(t *testing.T) {
	cart := newTestCart(t)
	mustAdd(t, cart, uuid.New(), "Keyboard", "100.00", 1)

	past := time.Now().UTC().Add(-time.Hour)
	coupon, err := NewCoupon("OLD", CouponPercentage, decimal.NewFromInt(10), nil, &past)
	require.NoError(t, err)

	assert.ErrorIs(t, cart.ApplyCoupon(coupon), ErrCouponNotApplicable)
}

func TestRemoveCoupon_NoopWhenEmpty(t *testing.T) {
	cart := newTestCart(t)
	cart.RemoveCoupon()
	_, ok := cart.AppliedCoupon()
	assert.False(t, ok)
}

func TestRepriceItem(t *testing.T) {
	cart := newTestCart(t)
	productID := uuid.New()
	mustAdd(t, cart, productID, "Keyboard", "10.00", 3)

	require.NoError(t, cart.RepriceItem(productID, decimal.RequireFromString("8.00")))
	assert.True(t, cart.SubTotal().Equal(decimal.RequireFromString("24.00")))
	assert.Equal(t, 3, cart.Items()[0].Quantity())
}

func TestRepriceItem_AbsentProductIsTrueNoop(t *testing.T) {
	cart := newTestCart(t)
	mustAdd(t, cart, uuid.New(), "Keyboard", "10.00", 1)

	encodedBefore, err := EncodeCart(cart)
	require.NoError(t, err)
	before := cart.UpdatedAt()

	require.NoError(t, cart.RepriceItem(uuid.New(), decimal.NewFromInt(5)))

	encodedAfter, err := EncodeCart(cart)
	require.NoError(t, err)
	assert.Equal(t, encodedBefore, encodedAfter)
	assert.Equal(t, before, cart.UpdatedAt(), "no-op reprice must not touch updated-at")
}

func TestTotals(t *testing.T) {
	cart := newTestCart(t)
	mustAdd(t, cart, uuid.New(), "Keyboard", "49.99", 2)
	mustAdd(t, cart, uuid.New(), "Mouse", "0.02", 1)

	assert.True(t, cart.SubTotal().Equal(decimal.RequireFromString("100.00")), "got %s", cart.SubTotal())
	assert.Equal(t, 3, cart.TotalItemCount())

	coupon, err := NewCoupon("SAVE10", CouponPercentage, decimal.NewFromInt(10), nil, nil)
	require.NoError(t, err)
	require.NoError(t, cart.ApplyCoupon(coupon))

	assert.True(t, cart.Discount().Equal(decimal.RequireFromString("10.00")))
	assert.True(t, cart.Total().Equal(decimal.RequireFromString("90.00")))
}

func TestTotal_ClampedAtZero(t *testing.T) {
	cart := newTestCart(t)
	mustAdd(t, cart, uuid.New(), "Keyboard", "100.00", 1)

	coupon, err := NewCoupon("BIG", CouponFixedAmount, decimal.NewFromInt(150), nil, nil)
	require.NoError(t, err)
	require.NoError(t, cart.ApplyCoupon(coupon))

	assert.True(t, cart.Discount().Equal(decimal.RequireFromString("100.00")), "fixed discount capped at subtotal")
	assert.True(t, cart.Total().IsZero())
}

func TestMergeFrom_CombinesQuantities(t *testing.T) {
	target := newTestCart(t)
	source, err := NewShoppingCart("user-2")
	require.NoError(t, err)

	shared, onlySource := uuid.New(), uuid.New()
	mustAdd(t, target, shared, "Keyboard", "10.00", 2)
	mustAdd(t, source, shared, "Keyboard", "10.00", 3)
	mustAdd(t, source, onlySource, "Mouse", "5.00", 1)

	require.NoError(t, target.MergeFrom(source))

	items := target.Items()
	require.Len(t, items, 2)
	assert.Equal(t, shared, items[0].ProductID())
	assert.Equal(t, 5, items[0].Quantity())
	assert.Equal(t, onlySource, items[1].ProductID())
	assert.Equal(t, 1, items[1].Quantity())
}

func TestMergeFrom_SharedLineKeepsTargetNameAndPrice(t *testing.T) {
	target := newTestCart(t)
	source, err := NewShoppingCart("user-2")
	require.NoError(t, err)

	shared := uuid.New()
	mustAdd(t, target, shared, "Keyboard", "10.00", 1)
	mustAdd(t, source, shared, "Clavier", "12.00", 1)

	require.NoError(t, target.MergeFrom(source))

	items := target.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Keyboard", items[0].Name())
	assert.True(t, items[0].UnitPrice().Equal(decimal.RequireFromString("10.00")))
}

func TestMergeFrom_AdoptsSourceCouponOnlyWhenTargetHasNone(t *testing.T) {
	target := newTestCart(t)
	source, err := NewShoppingCart("user-2")
	require.NoError(t, err)

	mustAdd(t, target, uuid.New(), "Keyboard", "100.00", 1)
	mustAdd(t, source, uuid.New(), "Mouse", "100.00", 1)

	sourceCoupon, err := NewCoupon("SOURCE", CouponPercentage, decimal.NewFromInt(5), nil, nil)
	require.NoError(t, err)
	require.NoError(t, source.ApplyCoupon(sourceCoupon))

	require.NoError(t, target.MergeFrom(source))
	applied, ok := target.AppliedCoupon()
	require.True(t, ok)
	assert.Equal(t, "SOURCE", applied.Code())
}

func TestMergeFrom_TargetCouponWins(t *testing.T) {
	target := newTestCart(t)
	source, err := NewShoppingCart("user-2")
	require.NoError(t, err)

	mustAdd(t, target, uuid.New(), "Keyboard", "100.00", 1)
	mustAdd(t, source, uuid.New(), "Mouse", "100.00", 1)

	targetCoupon, err := NewCoupon("TARGET", CouponPercentage, decimal.NewFromInt(5), nil, nil)
	require.NoError(t, err)
	require.NoError(t, target.ApplyCoupon(targetCoupon))

	sourceCoupon, err := NewCoupon("SOURCE", CouponPercentage, decimal.NewFromInt(10), nil, nil)
	require.NoError(t, err)
	require.NoError(t, source.ApplyCoupon(sourceCoupon))

	require.NoError(t, target.MergeFrom(source))
	applied, ok := target.AppliedCoupon()
	require.True(t, ok)
	assert.Equal(t, "TARGET", applied.Code())
}

func TestMergeFrom_AdoptedCouponIsNotRevalidated(t *testing.T) {
	// The source coupon required the source cart's subtotal; after the merge
	// the combined subtotal still satisfies it here, but even a coupon whose
	// minimum is no longer met stays applied until the next coupon operation.
	target := newTestCart(t)
	source, err := NewShoppingCart("user-2")
	require.NoError(t, err)

	mustAdd(t, source, uuid.New(), "Mouse", "100.00", 1)

	minOrder := decimal.NewFromInt(60)
	coupon, err := NewCoupon("MIN60", CouponFixedAmount, decimal.NewFromInt(5), &minOrder, nil)
	require.NoError(t, err)
	require.NoError(t, source.ApplyCoupon(coupon))

	// Shrink the source below the coupon's minimum, then merge: the coupon is
	// carried over even though it is no longer applicable.
	require.NoError(t, source.UpdateItemQuantity(source.Items()[0].ProductID(), 0))
	mustAdd(t, source, uuid.New(), "Sticker", "1.00", 1)

	require.NoError(t, target.MergeFrom(source))

	applied, ok := target.AppliedCoupon()
	require.True(t, ok)
	assert.Equal(t, "MIN60", applied.Code())
	assert.False(t, applied.IsApplicable(target.SubTotal()))
	assert.True(t, target.Discount().IsZero(), "inapplicable coupon discounts nothing")
}
