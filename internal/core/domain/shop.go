package domain

// CategoryAll is the reserved category label meaning "no category filter".
const CategoryAll = "All Items"

// DefaultCategory is assigned to catalog items arriving without a category.
const DefaultCategory = "Misc"

type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayBank PaymentMethod = "bank"
)

func (m PaymentMethod) Valid() bool {
	return m == PayCash || m == PayBank
}

type SortMode string

const (
	SortByName      SortMode = "name"
	SortByPriceAsc  SortMode = "price"
	SortByPriceDesc SortMode = "price-high"
)

func (m SortMode) Valid() bool {
	switch m {
	case SortByName, SortByPriceAsc, SortByPriceDesc:
		return true
	}
	return false
}

type (
	// Item is one catalog entry. Items are issued atomically with a
	// snapshot and never mutated afterwards, except for the favorite flag.
	Item struct {
		ID          string
		Name        string
		Description string
		Price       float64
		Stock       int
		Category    string
		IsFavorite  bool
	}

	// CartLine pairs a catalog item with a positive quantity.
	CartLine struct {
		Item     Item
		Quantity int
	}

	// Snapshot is a full replacement of the shop catalog pushed by the
	// game runtime: items, categories, balances and the shop name.
	Snapshot struct {
		ShopName    string
		Items       []Item
		Categories  []string
		CashBalance float64
		BankBalance float64
	}
)

// ShopInfo is a read-only view of the session outside of the item list
// and the cart: identity, balances and the active view selections.
type ShopInfo struct {
	ShopName       string
	CashBalance    float64
	BankBalance    float64
	PaymentMethod  PaymentMethod
	Categories     []string
	SearchQuery    string
	SortBy         SortMode
	CategoryFilter string
	Visible        bool
}

type (
	// PurchaseLine identifies a purchased item by display name: the game
	// runtime resolves purchases by name, not by catalog id.
	PurchaseLine struct {
		ItemName string
		Quantity int
	}

	PurchaseRequest struct {
		ShopName      string
		Cart          []PurchaseLine
		PaymentMethod PaymentMethod
		Total         float64
	}

	// SettlementEvent describes the outcome of one checkout.
	SettlementEvent struct {
		ShopName      string
		PaymentMethod PaymentMethod
		Total         float64
		Lines         int
		OK            bool
	}
)
