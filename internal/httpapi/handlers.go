package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/pricing"
	"github.com/noah-isme/toko-storefront/internal/product"
	"github.com/noah-isme/toko-storefront/internal/session"
	"github.com/noah-isme/toko-storefront/internal/submission"
)

type sessionKey struct{}

// Handler serves the storefront endpoints.
type Handler struct {
	Sessions *session.Manager
}

// RequireSession resolves the X-Session-ID header into a live session.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(SessionHeader))
		if id == "" {
			common.JSONError(w, http.StatusBadRequest, "SESSION_REQUIRED", "X-Session-ID header is required", nil)
			return
		}
		s, err := h.Sessions.Get(id)
		if err != nil {
			common.JSONError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found or expired", nil)
			return
		}
		ctx := context.WithValue(obs.WithSessionID(r.Context(), s.ID), sessionKey{}, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionKey{}).(*session.Session)
	return s
}

// CreateSession opens a new shopper session.
func (h *Handler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	s := h.Sessions.Create()
	w.Header().Set(SessionHeader, s.ID)
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{"sessionId": s.ID},
	})
}

// DeleteSession ends the caller's session and cancels its pending redirect.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Remove(sessionFrom(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

// Notifications drains the session's toast feed.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": sessionFrom(r).Inbox.Drain()})
}

// ListProducts returns the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": h.Sessions.Catalog().List()})
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) (*product.Page, bool) {
	pg, err := sessionFrom(r).Page(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return nil, false
		}
		common.WriteError(w, err)
		return nil, false
	}
	return pg, true
}

// GetProduct returns the product page state for the session.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	pg, ok := h.page(w, r)
	if !ok {
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": pg.View()})
}

// SelectVariant picks an option. Unavailable options are ignored and
// reported through "applied".
func (h *Handler) SelectVariant(w http.ResponseWriter, r *http.Request) {
	pg, ok := h.page(w, r)
	if !ok {
		return
	}
	var payload struct {
		Group  string `json:"group"`
		Option string `json:"option"`
	}
	if err := common.DecodeJSON(w, r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	applied := pg.Select(payload.Group, payload.Option)
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"applied": applied, "page": pg.View()},
	})
}

// SetProductQuantity applies the quantity picker value.
func (h *Handler) SetProductQuantity(w http.ResponseWriter, r *http.Request) {
	pg, ok := h.page(w, r)
	if !ok {
		return
	}
	qty, err := decodeQuantity(w, r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	pg.SetQuantity(qty)
	common.JSON(w, http.StatusOK, map[string]any{"data": pg.View()})
}

// AddToCart adds the selected variant to the cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	pg, ok := h.page(w, r)
	if !ok {
		return
	}
	item, err := pg.AddToCart(r.Context())
	if err != nil {
		if errors.Is(err, product.ErrSelectionIncomplete) {
			common.JSONError(w, http.StatusUnprocessableEntity, "SELECTION_INCOMPLETE", "Please select all product options.", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{"item": item, "cart": cartView(sessionFrom(r).Cart)},
	})
}

// AddToWishlist saves the product.
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	pg, ok := h.page(w, r)
	if !ok {
		return
	}
	if err := pg.AddToWishlist(r.Context()); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": sessionFrom(r).Wishlist.Entries()})
}

// GetWishlist lists saved products.
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": sessionFrom(r).Wishlist.Entries()})
}

// GetCart returns line items and totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": cartView(sessionFrom(r).Cart)})
}

// UpdateCartItem sets a line item quantity; values below 1 become 1.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	store := sessionFrom(r).Cart
	id, err := itemID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	qty, err := decodeQuantity(w, r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if !store.SetQuantity(id, qty) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart item not found", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cartView(store)})
}

// RemoveCartItem deletes a line item.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store := sessionFrom(r).Cart
	id, err := itemID(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if err := store.RemoveItem(r.Context(), id); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart item not found", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cartView(store)})
}

// GetCheckout returns the form, its inline errors, totals and status.
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": checkoutView(sessionFrom(r))})
}

// UpdateCheckoutForm applies field edits. Values may be strings or booleans.
func (h *Handler) UpdateCheckoutForm(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	var payload map[string]any
	if err := common.DecodeJSON(w, r, &payload); err != nil {
		common.WriteError(w, err)
		return
	}
	values := make(map[checkout.Field]string, len(payload))
	for k, v := range payload {
		switch tv := v.(type) {
		case string:
			values[checkout.Field(k)] = tv
		case bool:
			values[checkout.Field(k)] = strconv.FormatBool(tv)
		case nil:
			values[checkout.Field(k)] = ""
		default:
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("field %q must be a string or boolean", k), nil)
			return
		}
	}
	if err := s.Checkout.Apply(values); err != nil {
		if errors.Is(err, checkout.ErrUnknownField) || errors.Is(err, checkout.ErrInvalidValue) {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": checkoutView(s)})
}

// SubmitOrder places the order.
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	st, err := s.Submit(r.Context())
	switch {
	case err == nil:
		common.JSON(w, http.StatusOK, map[string]any{"data": st})
	case errors.Is(err, submission.ErrInvalidOrder):
		common.WriteError(w, common.NewAppError("VALIDATION_FAILED", "Please correct the highlighted fields.", http.StatusUnprocessableEntity, err).WithDetails(st.Errors))
	case errors.Is(err, submission.ErrEmptyCart):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CART", st.Reason, nil)
	case errors.Is(err, submission.ErrSubmissionFailed):
		zerologFrom(r).Warn().Err(err).Msg("checkout_submit_failed")
		common.JSONError(w, http.StatusBadGateway, "ORDER_FAILED", st.Reason, st)
	default:
		common.WriteError(w, err)
	}
}

// CheckoutStatus reports the submission state and hands out a pending
// redirect once.
func (h *Handler) CheckoutStatus(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	body := map[string]any{"status": s.Submission.Status()}
	if path, ok := s.Redirects.Take(); ok {
		body["navigateTo"] = path
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": body})
}

type lineView struct {
	cart.LineItem
	LineSubtotal pricing.Money `json:"lineSubtotal"`
}

func cartView(store *cart.Store) map[string]any {
	items, totals := store.Snapshot()
	lines := make([]lineView, 0, len(items))
	count := 0
	for _, it := range items {
		lines = append(lines, lineView{LineItem: it, LineSubtotal: pricing.Round(it.Subtotal())})
		count += it.Quantity
	}
	return map[string]any{
		"items":        lines,
		"itemCount":    count,
		"totals":       totals,
		"display":      totals.Display(),
		"freeShipping": totals.FreeShipping(),
	}
}

func checkoutView(s *session.Session) map[string]any {
	_, totals := s.Cart.Snapshot()
	return map[string]any{
		"form":    s.Checkout.Snapshot().Redacted(),
		"errors":  s.Checkout.Errors(),
		"status":  s.Submission.Status(),
		"totals":  totals.Display(),
		"isEmpty": s.Cart.IsEmpty(),
	}
}

func itemID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "*")
	id, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(id) == "" {
		return "", common.BadRequest("BAD_REQUEST", "invalid cart item id", err)
	}
	return id, nil
}

// decodeQuantity accepts {"quantity": 3} or {"quantity": "3"}; anything that
// is not a positive integer becomes 1.
func decodeQuantity(w http.ResponseWriter, r *http.Request) (int, error) {
	var payload struct {
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := common.DecodeJSON(w, r, &payload); err != nil {
		return 0, err
	}
	var asNumber float64
	if err := json.Unmarshal(payload.Quantity, &asNumber); err == nil {
		return cart.ClampQuantity(asNumber), nil
	}
	var asString string
	if err := json.Unmarshal(payload.Quantity, &asString); err == nil {
		return cart.ParseQuantity(asString), nil
	}
	return 1, nil
}

func zerologFrom(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
