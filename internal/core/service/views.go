package service

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/rpkit/shop-ui/internal/core/domain"
)

// ShopInfo reports identity, balances and the active view selections.
func (s *Session) ShopInfo() domain.ShopInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.ShopInfo{
		ShopName:       s.shopName,
		CashBalance:    s.cashBalance,
		BankBalance:    s.bankBalance,
		PaymentMethod:  s.paymentMethod,
		Categories:     slices.Clone(s.categories),
		SearchQuery:    s.searchQuery,
		SortBy:         s.sortBy,
		CategoryFilter: s.categoryFilter,
		Visible:        s.visible,
	}
}

// FilteredItems derives the catalog view: a case-insensitive substring
// match of the search query against name or description, intersected
// with the category filter, ordered by the active sort mode. The
// result is a fresh slice; catalog order is never disturbed.
func (s *Session) FilteredItems() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := strings.ToLower(s.searchQuery)

	var filtered []domain.Item
	for _, it := range s.items {
		matchesSearch := strings.Contains(strings.ToLower(it.Name), query) ||
			strings.Contains(strings.ToLower(it.Description), query)
		matchesCategory := s.categoryFilter == domain.CategoryAll ||
			it.Category == s.categoryFilter
		if matchesSearch && matchesCategory {
			filtered = append(filtered, it)
		}
	}

	switch s.sortBy {
	case domain.SortByName:
		c := collate.New(language.Und, collate.Loose, collate.Numeric)
		slices.SortStableFunc(filtered, func(a, b domain.Item) int {
			return c.CompareString(a.Name, b.Name)
		})
	case domain.SortByPriceDesc:
		slices.SortStableFunc(filtered, func(a, b domain.Item) int {
			return cmpFloat(b.Price, a.Price)
		})
	default:
		slices.SortStableFunc(filtered, func(a, b domain.Item) int {
			return cmpFloat(a.Price, b.Price)
		})
	}

	return filtered
}

// CartLines returns a copy of the cart in insertion order.
func (s *Session) CartLines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.cart)
}

// CartTotal is the sum of price times quantity over all cart lines.
func (s *Session) CartTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotal(s.cart)
}

// CartItemCount is the total number of units in the cart, not the
// number of distinct lines.
func (s *Session) CartItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, l := range s.cart {
		n += l.Quantity
	}
	return n
}

func cartTotal(cart []domain.CartLine) float64 {
	var total float64
	for _, l := range cart {
		total += l.Item.Price * float64(l.Quantity)
	}
	return total
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
