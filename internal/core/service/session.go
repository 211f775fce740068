package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/rpkit/shop-ui/internal/core/domain"
	"github.com/rpkit/shop-ui/internal/core/port"
)

var _ port.SnapshotReceiver = (*Session)(nil)
var _ port.VisibilityReceiver = (*Session)(nil)
var _ port.CartEditor = (*Session)(nil)
var _ port.ViewConfigurer = (*Session)(nil)
var _ port.ShopViewer = (*Session)(nil)
var _ port.CheckoutPerformer = (*Session)(nil)
var _ port.ShopCloser = (*Session)(nil)

var (
	ErrUnknownItem      = errors.New("item is not in the current catalog")
	ErrUnknownSortMode  = errors.New("unknown sort mode")
	ErrUnknownPayMethod = errors.New("unknown payment method")

	// ErrEmptyCart marks a checkout attempted with nothing in the cart.
	// This is the disabled-action case, not a failure: no request is
	// sent and the session is left untouched.
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCheckoutInFlight = errors.New("checkout already in flight")
)

// Session owns the shop state for one player: the current catalog
// snapshot, the cart, and the view selections. Every mutation runs
// under one mutex, so updates never interleave even though they arrive
// from both the runtime bridge and the UI callback handlers.
type Session struct {
	mu sync.Mutex

	shopName       string
	items          []domain.Item
	categories     []string
	cashBalance    float64
	bankBalance    float64
	cart           []domain.CartLine
	searchQuery    string
	sortBy         domain.SortMode
	categoryFilter string
	paymentMethod  domain.PaymentMethod
	visible        bool

	checkoutBusy bool

	gateway     port.PurchaseGateway
	settlements port.SettlementPublisher
	policy      SettlementPolicy
}

// New returns a Session with an empty catalog and default view state.
// settlements may be nil; outcomes are then not published anywhere.
func New(
	gateway port.PurchaseGateway,
	settlements port.SettlementPublisher,
	policy SettlementPolicy,
) *Session {
	return &Session{
		sortBy:         domain.SortByName,
		categoryFilter: domain.CategoryAll,
		paymentMethod:  domain.PayCash,
		gateway:        gateway,
		settlements:    settlements,
		policy:         policy,
	}
}

// ReplaceCatalog installs a snapshot wholesale: items, categories,
// balances and shop name. The cart is cleared and the category filter
// returns to the all-items sentinel; search text and sort mode survive.
func (s *Session) ReplaceCatalog(snap domain.Snapshot) {
	const op = "Session.ReplaceCatalog"

	s.mu.Lock()
	defer s.mu.Unlock()

	s.shopName = snap.ShopName
	s.items = slices.Clone(snap.Items)
	s.categories = slices.Clone(snap.Categories)
	s.cashBalance = snap.CashBalance
	s.bankBalance = snap.BankBalance
	s.cart = nil
	s.categoryFilter = domain.CategoryAll

	slog.Info("catalog replaced",
		"op", op, "shop", snap.ShopName, "nItems", len(snap.Items))
}

// SetVisible records the UI visibility pushed by the runtime. Hiding
// the shop discards the cart.
func (s *Session) SetVisible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visible = v
	if !v {
		s.cart = nil
	}
}

// AddToCart puts one unit of the identified catalog item in the cart,
// accumulating onto an existing line if there is one.
func (s *Session) AddToCart(itemID string) error {
	const op = "Session.AddToCart"

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.items, func(it domain.Item) bool {
		return it.ID == itemID
	})
	if idx < 0 {
		return opErr(op, ErrUnknownItem)
	}

	for i := range s.cart {
		if s.cart[i].Item.ID == itemID {
			s.cart[i].Quantity++
			return nil
		}
	}
	s.cart = append(s.cart, domain.CartLine{Item: s.items[idx], Quantity: 1})
	return nil
}

// UpdateCartQuantity sets the quantity of an existing line. Any value
// at or below zero removes the line instead; quantities are never
// stored non-positive.
func (s *Session) UpdateCartQuantity(itemID string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(itemID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].Item.ID == itemID {
			s.cart[i].Quantity = quantity
			return
		}
	}
}

// RemoveFromCart drops the line for itemID. No-op when absent.
func (s *Session) RemoveFromCart(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = slices.DeleteFunc(s.cart, func(l domain.CartLine) bool {
		return l.Item.ID == itemID
	})
}

func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

func (s *Session) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
}

func (s *Session) SetSortBy(mode domain.SortMode) error {
	const op = "Session.SetSortBy"

	if !mode.Valid() {
		return opErr(op, ErrUnknownSortMode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = mode
	return nil
}

func (s *Session) SetCategoryFilter(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryFilter = category
}

func (s *Session) SetPaymentMethod(method domain.PaymentMethod) error {
	const op = "Session.SetPaymentMethod"

	if !method.Valid() {
		return opErr(op, ErrUnknownPayMethod)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentMethod = method
	return nil
}

// ToggleFavorite flips the favorite flag on every catalog entry with
// the given id. Duplicate ids within a snapshot all flip together.
func (s *Session) ToggleFavorite(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].IsFavorite = !s.items[i].IsFavorite
		}
	}
}

// CloseShop discards the cart and tells the runtime to dismiss the UI.
// The hide notification is fire-and-forget.
func (s *Session) CloseShop(ctx context.Context) {
	s.mu.Lock()
	s.cart = nil
	s.visible = false
	s.mu.Unlock()

	s.gateway.NotifyHide(ctx)
}
