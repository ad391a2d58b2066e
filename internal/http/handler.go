package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/evermart/cart-service/internal/domain"
	"github.com/evermart/cart-service/internal/service"
	"github.com/evermart/cart-service/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxProductNameLen = 500

// CartService is the slice of the service layer the handlers need.
// Consumers define this interface, not the service implementation.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	AddItem(ctx context.Context, userID string, input service.ItemInput) (*domain.ShoppingCart, error)
	UpdateItemQuantity(ctx context.Context, userID string, productID uuid.UUID, newQuantity int) (*domain.ShoppingCart, error)
	RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*domain.ShoppingCart, error)
	Clear(ctx context.Context, userID string) error
	ApplyCoupon(ctx context.Context, userID string, input service.CouponInput) (*domain.ShoppingCart, error)
	RemoveCoupon(ctx context.Context, userID string) (*domain.ShoppingCart, error)
	Reprice(ctx context.Context, userID string, updates []service.PriceUpdate) (*domain.ShoppingCart, error)
	Merge(ctx context.Context, targetUserID, sourceUserID string) (*domain.ShoppingCart, error)
	Checkout(ctx context.Context, userID, shippingAddress, paymentMethod string) (*domain.ShoppingCart, error)
}

type CartHandler struct {
	service CartService
}

func NewCartHandler(service CartService) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "userId is required")
		return
	}

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "userId is required")
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.ProductName == "" || len(req.ProductName) > maxProductNameLen {
		respondError(w, http.StatusBadRequest, "invalid_product_name", "productName must be non-empty and at most 500 characters")
		return
	}
	if req.UnitPrice.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_unit_price", "unitPrice cannot be negative")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be greater than zero")
		return
	}

	cart, err := h.service.AddItem(r.Context(), userID, service.ItemInput{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.NewQuantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "newQuantity cannot be negative")
		return
	}

	cart, err := h.service.UpdateItemQuantity(r.Context(), userID, productID, req.NewQuantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	if err := h.service.Clear(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.CouponCode == "" || len(req.CouponCode) > 50 {
		respondError(w, http.StatusBadRequest, "invalid_coupon_code", "couponCode must be non-empty and at most 50 characters")
		return
	}
	kind, err := domain.ParseCouponKind(req.CouponType)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_coupon_type", "couponType must be 'Percentage' or 'FixedAmount'")
		return
	}
	if !req.Value.IsPositive() {
		respondError(w, http.StatusBadRequest, "invalid_coupon_value", "value must be greater than zero")
		return
	}

	cart, err := h.service.ApplyCoupon(r.Context(), userID, service.CouponInput{
		Code:               req.CouponCode,
		Kind:               kind,
		Value:              req.Value,
		MinimumOrderAmount: req.MinimumOrderAmount,
		ExpiresAt:          req.ExpiresAt,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	cart, err := h.service.RemoveCoupon(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	// The body is optional; checkout without shipping details is allowed.
	var req CheckoutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}

	cart, err := h.service.Checkout(r.Context(), userID, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req MergeCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.SourceUserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_source_user_id", "sourceUserId is required")
		return
	}
	if req.SourceUserID == userID {
		respondError(w, http.StatusBadRequest, "invalid_source_user_id", "sourceUserId cannot equal the target userId")
		return
	}

	cart, err := h.service.Merge(r.Context(), userID, req.SourceUserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func (h *CartHandler) RepriceCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req RepriceCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if len(req.PriceUpdates) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_price_updates", "at least one price update is required")
		return
	}

	updates := make([]service.PriceUpdate, len(req.PriceUpdates))
	for i, update := range req.PriceUpdates {
		if update.ProductID == uuid.Nil {
			respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required for every price update")
			return
		}
		if update.NewUnitPrice.IsNegative() {
			respondError(w, http.StatusBadRequest, "invalid_unit_price", "newUnitPrice cannot be negative")
			return
		}
		updates[i] = service.PriceUpdate{
			ProductID:    update.ProductID,
			NewUnitPrice: update.NewUnitPrice,
		}
	}

	cart, err := h.service.Reprice(r.Context(), userID, updates)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, convertCart(cart))
}

func parseProductID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil || productID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId must be a valid UUID")
		return uuid.Nil, false
	}
	return productID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidItem),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidCoupon),
		errors.Is(err, domain.ErrCouponNotApplicable):
		respondError(w, http.StatusBadRequest, "domain_rule_violation", err.Error())
	case errors.Is(err, store.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", "cart store is unavailable")
	case errors.Is(err, domain.ErrCorruptRecord):
		respondError(w, http.StatusInternalServerError, "corrupt_record", "stored cart record is corrupt")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
