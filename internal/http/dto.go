package http

import (
	"time"

	"github.com/evermart/cart-service/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AddItemRequest struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

type UpdateQuantityRequest struct {
	NewQuantity int `json:"newQuantity"`
}

type ApplyCouponRequest struct {
	CouponCode         string           `json:"couponCode"`
	CouponType         string           `json:"couponType"`
	Value              decimal.Decimal  `json:"value"`
	MinimumOrderAmount *decimal.Decimal `json:"minimumOrderAmount,omitempty"`
	ExpiresAt          *time.Time       `json:"expiresAt,omitempty"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress,omitempty"`
	PaymentMethod   string `json:"paymentMethod,omitempty"`
}

type MergeCartRequest struct {
	SourceUserID string `json:"sourceUserId"`
}

type PriceUpdateRequest struct {
	ProductID    uuid.UUID       `json:"productId"`
	NewUnitPrice decimal.Decimal `json:"newUnitPrice"`
}

type RepriceCartRequest struct {
	PriceUpdates []PriceUpdateRequest `json:"priceUpdates"`
}

type CartItemResponse struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

type CouponResponse struct {
	Code               string           `json:"code"`
	Type               string           `json:"type"`
	Value              decimal.Decimal  `json:"value"`
	MinimumOrderAmount *decimal.Decimal `json:"minimumOrderAmount,omitempty"`
	ExpiresAt          *time.Time       `json:"expiresAt,omitempty"`
}

type CartResponse struct {
	UserID         string             `json:"userId"`
	Items          []CartItemResponse `json:"items"`
	AppliedCoupon  *CouponResponse    `json:"appliedCoupon,omitempty"`
	SubTotal       decimal.Decimal    `json:"subTotal"`
	Discount       decimal.Decimal    `json:"discount"`
	Total          decimal.Decimal    `json:"total"`
	TotalItemCount int                `json:"totalItemCount"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func convertCart(cart *domain.ShoppingCart) CartResponse {
	items := cart.Items()
	resp := CartResponse{
		UserID:         cart.UserID(),
		Items:          make([]CartItemResponse, len(items)),
		SubTotal:       cart.SubTotal(),
		Discount:       cart.Discount(),
		Total:          cart.Total(),
		TotalItemCount: cart.TotalItemCount(),
		CreatedAt:      cart.CreatedAt(),
		UpdatedAt:      cart.UpdatedAt(),
	}

	for i, item := range items {
		resp.Items[i] = CartItemResponse{
			ProductID:   item.ProductID(),
			ProductName: item.Name(),
			ImageURL:    item.ImageURL(),
			UnitPrice:   item.UnitPrice(),
			Quantity:    item.Quantity(),
			TotalPrice:  item.LineTotal(),
		}
	}

	if coupon, ok := cart.AppliedCoupon(); ok {
		resp.AppliedCoupon = &CouponResponse{
			Code:               coupon.Code(),
			Type:               coupon.Kind().String(),
			Value:              coupon.Value(),
			MinimumOrderAmount: coupon.MinimumOrderAmount(),
			ExpiresAt:          coupon.ExpiresAt(),
		}
	}

	return resp
}
