package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rpkit/shop-ui/internal/core/domain"
	"github.com/rpkit/shop-ui/internal/core/port"
	"github.com/rpkit/shop-ui/internal/core/service"
)

// ShopHandler serves the read side of the session: shop info, the
// filtered item view and the cart.
type ShopHandler struct {
	viewer port.ShopViewer
}

func RegisterShop(mux *http.ServeMux, viewer port.ShopViewer) {
	h := ShopHandler{viewer}
	mux.HandleFunc("GET /v1/shop", h.GetShop)
	mux.HandleFunc("GET /v1/items", h.GetItems)
	mux.HandleFunc("GET /v1/cart", h.GetCart)
}

func (h ShopHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.GetShop"

	info := h.viewer.ShopInfo()
	writeJSON(w, op, ShopView{
		ShopName:       info.ShopName,
		CashBalance:    info.CashBalance,
		BankBalance:    info.BankBalance,
		PaymentMethod:  string(info.PaymentMethod),
		Categories:     info.Categories,
		SearchQuery:    info.SearchQuery,
		SortBy:         string(info.SortBy),
		CategoryFilter: info.CategoryFilter,
		Visible:        info.Visible,
	})
}

func (h ShopHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.GetItems"

	items := h.viewer.FilteredItems()
	view := make([]Item, 0, len(items))
	for _, it := range items {
		view = append(view, toWireItem(it))
	}
	writeJSON(w, op, view)
}

func (h ShopHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	const op = "ShopHandler.GetCart"

	lines := h.viewer.CartLines()
	view := CartView{
		Lines: make([]CartLine, 0, len(lines)),
		Total: h.viewer.CartTotal(),
		Count: h.viewer.CartItemCount(),
	}
	for _, l := range lines {
		view.Lines = append(view.Lines, CartLine{
			Item:     toWireItem(l.Item),
			Quantity: l.Quantity,
		})
	}
	writeJSON(w, op, view)
}

// CartHandler serves cart mutations.
type CartHandler struct {
	cart port.CartEditor
}

func RegisterCart(mux *http.ServeMux, cart port.CartEditor) {
	h := CartHandler{cart}
	mux.HandleFunc("POST /v1/cart/items", h.AddItem)
	mux.HandleFunc("PATCH /v1/cart/items", h.UpdateQuantity)
	mux.HandleFunc("DELETE /v1/cart/items/{id}", h.RemoveItem)
	mux.HandleFunc("DELETE /v1/cart", h.Clear)
}

func (h CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "CartHandler.AddItem"
	log := slog.With("op", op)

	var req AddToCartRequest
	if !readJSON(w, r, log, &req) {
		return
	}

	if err := h.cart.AddToCart(req.ItemID); err != nil {
		if errors.Is(err, service.ErrUnknownItem) {
			http.Error(w, "unknown item", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to add item", http.StatusInternalServerError)
		log.Error("failed to add item", "err", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if !readJSON(w, r, slog.With("op", "CartHandler.UpdateQuantity"), &req) {
		return
	}

	h.cart.UpdateCartQuantity(req.ItemID, req.Quantity)
	w.WriteHeader(http.StatusNoContent)
}

func (h CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveFromCart(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart()
	w.WriteHeader(http.StatusNoContent)
}

// ViewHandler serves search, sort, category and payment selections,
// plus the favorite toggle.
type ViewHandler struct {
	view port.ViewConfigurer
}

func RegisterView(mux *http.ServeMux, view port.ViewConfigurer) {
	h := ViewHandler{view}
	mux.HandleFunc("POST /v1/view/search", h.SetSearch)
	mux.HandleFunc("POST /v1/view/sort", h.SetSort)
	mux.HandleFunc("POST /v1/view/category", h.SetCategory)
	mux.HandleFunc("POST /v1/view/payment", h.SetPayment)
	mux.HandleFunc("POST /v1/items/{id}/favorite", h.ToggleFavorite)
}

func (h ViewHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !readJSON(w, r, slog.With("op", "ViewHandler.SetSearch"), &req) {
		return
	}

	h.view.SetSearchQuery(req.Query)
	w.WriteHeader(http.StatusNoContent)
}

func (h ViewHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if !readJSON(w, r, slog.With("op", "ViewHandler.SetSort"), &req) {
		return
	}

	if err := h.view.SetSortBy(domain.SortMode(req.SortBy)); err != nil {
		http.Error(w, "unknown sort mode", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h ViewHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !readJSON(w, r, slog.With("op", "ViewHandler.SetCategory"), &req) {
		return
	}

	h.view.SetCategoryFilter(req.Category)
	w.WriteHeader(http.StatusNoContent)
}

func (h ViewHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !readJSON(w, r, slog.With("op", "ViewHandler.SetPayment"), &req) {
		return
	}

	if err := h.view.SetPaymentMethod(domain.PaymentMethod(req.Method)); err != nil {
		http.Error(w, "unknown payment method", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h ViewHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	h.view.ToggleFavorite(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// CheckoutHandler serves checkout and shop close.
type CheckoutHandler struct {
	checkout port.CheckoutPerformer
	closer   port.ShopCloser
}

func RegisterCheckout(
	mux *http.ServeMux,
	checkout port.CheckoutPerformer,
	closer port.ShopCloser,
) {
	h := CheckoutHandler{checkout, closer}
	mux.HandleFunc("POST /v1/checkout", h.Checkout)
	mux.HandleFunc("POST /v1/close", h.Close)
}

func (h CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	const op = "CheckoutHandler.Checkout"
	log := slog.With("op", op)

	err := h.checkout.Checkout(r.Context())
	switch {
	case err == nil:
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, service.ErrEmptyCart):
		http.Error(w, "cart is empty", http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrCheckoutInFlight):
		http.Error(w, "checkout in progress", http.StatusConflict)
	default:
		http.Error(w, "purchase failed", http.StatusBadGateway)
		log.Error("checkout failed", "err", err)
	}
}

func (h CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.closer.CloseShop(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func toWireItem(it domain.Item) Item {
	return Item{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price,
		Stock:       it.Stock,
		Category:    it.Category,
		IsFavorite:  it.IsFavorite,
	}
}

func readJSON(
	w http.ResponseWriter, r *http.Request, log *slog.Logger, dst any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, op string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}
