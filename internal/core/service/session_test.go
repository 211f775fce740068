package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpkit/shop-ui/internal/core/domain"
	"github.com/rpkit/shop-ui/internal/core/service"
)

type MockGateway struct {
	mock.Mock
}

func (g *MockGateway) SendPurchase(
	ctx context.Context, req domain.PurchaseRequest,
) error {
	args := g.Called(ctx, req)
	return args.Error(0)
}

func (g *MockGateway) NotifyHide(ctx context.Context) {
	g.Called(ctx)
}

func testSnapshot() domain.Snapshot {
	return domain.Snapshot{
		ShopName: "24/7 Store",
		Items: []domain.Item{
			{ID: "Burger-0", Name: "Burger", Description: "A Burger",
				Price: 12, Stock: 25, Category: "Food"},
			{ID: "Coffee-1", Name: "Coffee", Description: "A Coffee",
				Price: 6, Stock: 50, Category: "Drinks"},
			{ID: "E-Cola-2", Name: "E-Cola", Description: "A E-Cola",
				Price: 4, Stock: 100, Category: "Drinks"},
		},
		Categories:  []string{"Food", "Drinks"},
		CashBalance: 500,
		BankBalance: 1200,
	}
}

func newSession(t *testing.T) (*service.Session, *MockGateway) {
	t.Helper()
	gw := new(MockGateway)
	s := service.New(gw, nil, service.ClearAlways)
	s.ReplaceCatalog(testSnapshot())
	return s, gw
}

func TestCartMutations(t *testing.T) {
	t.Run("AddAccumulatesQuantity", func(t *testing.T) {
		s, _ := newSession(t)

		require.NoError(t, s.AddToCart("Burger-0"))
		require.NoError(t, s.AddToCart("Burger-0"))
		require.NoError(t, s.AddToCart("Coffee-1"))

		lines := s.CartLines()
		require.Len(t, lines, 2)
		assert.Equal(t, "Burger-0", lines[0].Item.ID)
		assert.Equal(t, 2, lines[0].Quantity)
		assert.Equal(t, "Coffee-1", lines[1].Item.ID)
		assert.Equal(t, 1, lines[1].Quantity)
	})

	t.Run("AddUnknownItem", func(t *testing.T) {
		s, _ := newSession(t)

		err := s.AddToCart("Pistol-9")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrUnknownItem)
		assert.Empty(t, s.CartLines())
	})

	t.Run("UpdateQuantity", func(t *testing.T) {
		s, _ := newSession(t)
		require.NoError(t, s.AddToCart("Burger-0"))

		s.UpdateCartQuantity("Burger-0", 5)
		lines := s.CartLines()
		require.Len(t, lines, 1)
		assert.Equal(t, 5, lines[0].Quantity)
	})

	t.Run("QuantityFloorRemovesLine", func(t *testing.T) {
		s, _ := newSession(t)
		require.NoError(t, s.AddToCart("Burger-0"))
		require.NoError(t, s.AddToCart("Coffee-1"))

		s.UpdateCartQuantity("Burger-0", 0)
		s.UpdateCartQuantity("Coffee-1", -3)
		assert.Empty(t, s.CartLines())
	})

	t.Run("RemoveIsIdempotent", func(t *testing.T) {
		s, _ := newSession(t)
		require.NoError(t, s.AddToCart("Burger-0"))

		s.RemoveFromCart("Burger-0")
		s.RemoveFromCart("Burger-0")
		s.RemoveFromCart("never-there")
		assert.Empty(t, s.CartLines())
	})

	t.Run("ClearTwice", func(t *testing.T) {
		s, _ := newSession(t)
		require.NoError(t, s.AddToCart("Burger-0"))

		s.ClearCart()
		assert.Empty(t, s.CartLines())
		s.ClearCart()
		assert.Empty(t, s.CartLines())
	})

	t.Run("QuantityAlwaysPositive", func(t *testing.T) {
		s, _ := newSession(t)
		require.NoError(t, s.AddToCart("Burger-0"))
		require.NoError(t, s.AddToCart("Coffee-1"))
		s.UpdateCartQuantity("Coffee-1", 7)
		s.UpdateCartQuantity("E-Cola-2", 3) // not in cart, no-op

		seen := make(map[string]bool)
		for _, l := range s.CartLines() {
			assert.GreaterOrEqual(t, l.Quantity, 1)
			assert.False(t, seen[l.Item.ID], "duplicate line for %s", l.Item.ID)
			seen[l.Item.ID] = true
		}
	})
}

func TestCartTotals(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.AddToCart("Burger-0"))
	require.NoError(t, s.AddToCart("Burger-0"))
	require.NoError(t, s.AddToCart("E-Cola-2"))

	assert.InDelta(t, 28, s.CartTotal(), 1e-9) // 2*12 + 4
	assert.Equal(t, 3, s.CartItemCount())

	var wantTotal float64
	var wantCount int
	for _, l := range s.CartLines() {
		wantTotal += l.Item.Price * float64(l.Quantity)
		wantCount += l.Quantity
	}
	assert.InDelta(t, wantTotal, s.CartTotal(), 1e-9)
	assert.Equal(t, wantCount, s.CartItemCount())
}

func TestSnapshotResetsSession(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.AddToCart("Burger-0"))
	s.SetCategoryFilter("Food")
	s.SetSearchQuery("bur")
	require.NoError(t, s.SetSortBy(domain.SortByPriceDesc))

	s.ReplaceCatalog(testSnapshot())

	assert.Empty(t, s.CartLines())
	info := s.ShopInfo()
	assert.Equal(t, domain.CategoryAll, info.CategoryFilter)
	// search and sort are view preferences and survive the snapshot
	assert.Equal(t, "bur", info.SearchQuery)
	assert.Equal(t, domain.SortByPriceDesc, info.SortBy)
}

func TestVisibilityHiddenClearsCart(t *testing.T) {
	s, _ := newSession(t)
	require.NoError(t, s.AddToCart("Burger-0"))

	s.SetVisible(false)
	assert.Empty(t, s.CartLines())
	assert.False(t, s.ShopInfo().Visible)

	s.SetVisible(true)
	assert.True(t, s.ShopInfo().Visible)
}

func TestToggleFavorite(t *testing.T) {
	s, _ := newSession(t)

	s.ToggleFavorite("Coffee-1")
	for _, it := range s.FilteredItems() {
		if it.ID == "Coffee-1" {
			assert.True(t, it.IsFavorite)
		} else {
			assert.False(t, it.IsFavorite)
		}
	}

	s.ToggleFavorite("Coffee-1")
	for _, it := range s.FilteredItems() {
		assert.False(t, it.IsFavorite)
	}
}

func TestSetters(t *testing.T) {
	t.Run("InvalidSortMode", func(t *testing.T) {
		s, _ := newSession(t)
		err := s.SetSortBy("stock")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrUnknownSortMode)
	})

	t.Run("InvalidPaymentMethod", func(t *testing.T) {
		s, _ := newSession(t)
		err := s.SetPaymentMethod("crypto")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrUnknownPayMethod)
	})

	t.Run("PaymentMethod", func(t *testing.T) {
		s, _ := newSession(t)
		require.NoError(t, s.SetPaymentMethod(domain.PayBank))
		assert.Equal(t, domain.PayBank, s.ShopInfo().PaymentMethod)
	})
}

func TestCloseShop(t *testing.T) {
	s, gw := newSession(t)
	require.NoError(t, s.AddToCart("Burger-0"))

	gw.On("NotifyHide", t.Context()).Return()

	s.CloseShop(t.Context())

	assert.Empty(t, s.CartLines())
	assert.False(t, s.ShopInfo().Visible)
	gw.AssertCalled(t, "NotifyHide", t.Context())
}
