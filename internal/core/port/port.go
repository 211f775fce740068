package port

import (
	"context"

	"github.com/rpkit/shop-ui/internal/core/domain"
)

// Inbound ports: what the adapters may ask of the session engine.

type SnapshotReceiver interface {
	ReplaceCatalog(domain.Snapshot)
}

type VisibilityReceiver interface {
	SetVisible(bool)
}

type CartEditor interface {
	AddToCart(itemID string) error
	UpdateCartQuantity(itemID string, quantity int)
	RemoveFromCart(itemID string)
	ClearCart()
}

type ViewConfigurer interface {
	SetSearchQuery(query string)
	SetSortBy(mode domain.SortMode) error
	SetCategoryFilter(category string)
	SetPaymentMethod(method domain.PaymentMethod) error
	ToggleFavorite(itemID string)
}

type ShopViewer interface {
	ShopInfo() domain.ShopInfo
	FilteredItems() []domain.Item
	CartLines() []domain.CartLine
	CartTotal() float64
	CartItemCount() int
}

type CheckoutPerformer interface {
	Checkout(ctx context.Context) error
}

type ShopCloser interface {
	CloseShop(ctx context.Context)
}

// Outbound ports: what the session engine asks of the outside world.

// PurchaseGateway delivers purchase requests to the game runtime and
// blocks until the runtime settles them.
type PurchaseGateway interface {
	SendPurchase(ctx context.Context, req domain.PurchaseRequest) error
	NotifyHide(ctx context.Context)
}

// SettlementPublisher records checkout outcomes out-of-band, best effort.
type SettlementPublisher interface {
	PublishSettlement(ctx context.Context, ev domain.SettlementEvent) error
	Close()
}
