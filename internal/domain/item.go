package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxProductNameLen = 500

// CartItem is a single product line inside a cart. Fields are only mutated
// through the owning ShoppingCart's operations.
type CartItem struct {
	productID uuid.UUID
	name      string
	imageURL  string
	unitPrice decimal.Decimal
	quantity  int
}

func newCartItem(productID uuid.UUID, name string, unitPrice decimal.Decimal, quantity int, imageURL string) (*CartItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product id cannot be empty", ErrInvalidItem)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: product name cannot be empty", ErrInvalidItem)
	}
	if len(name) > maxProductNameLen {
		return nil, fmt.Errorf("%w: product name cannot exceed %d characters", ErrInvalidItem, maxProductNameLen)
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price cannot be negative", ErrInvalidItem)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidItem)
	}

	return &CartItem{
		productID: productID,
		name:      name,
		imageURL:  imageURL,
		unitPrice: unitPrice,
		quantity:  quantity,
	}, nil
}

func (i *CartItem) ProductID() uuid.UUID       { return i.productID }
func (i *CartItem) Name() string               { return i.name }
func (i *CartItem) ImageURL() string           { return i.imageURL }
func (i *CartItem) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i *CartItem) Quantity() int              { return i.quantity }

// LineTotal is unit price times quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.unitPrice.Mul(decimal.NewFromInt(int64(i.quantity)))
}

func (i *CartItem) updateQuantity(newQuantity int) error {
	if newQuantity <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidQuantity)
	}
	i.quantity = newQuantity
	return nil
}

func (i *CartItem) increaseQuantity(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidQuantity)
	}
	i.quantity += amount
	return nil
}

func (i *CartItem) updatePrice(newUnitPrice decimal.Decimal) error {
	if newUnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative", ErrInvalidItem)
	}
	i.unitPrice = newUnitPrice
	return nil
}
