package domain

import "errors"

var (
	ErrInvalidItem         = errors.New("invalid cart item")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidCoupon       = errors.New("invalid coupon")
	ErrCouponNotApplicable = errors.New("coupon not applicable")
	ErrItemNotFound        = errors.New("item not found in cart")
	ErrCorruptRecord       = errors.New("corrupt cart record")
)
