package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/rpkit/shop-ui/internal/core/domain"
)

// Message types on the runtime bridge. Inbound names follow the
// runtime's event naming, outbound names follow its callback naming.
const (
	typeShopData       = "SET_SHOP_DATA"
	typeVisibility     = "UPDATE_VISIBILITY"
	typePurchaseResult = "purchaseResult"
	typePurchase       = "purchaseItems"
	typeHide           = "hideApp"
)

// envelope is the framing for every bridge message. ID is present only
// on correlated request/result pairs.
type envelope struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type shopDataItem struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Stock        *int    `json:"stock"`
	DefaultStock *int    `json:"defaultStock"`
	Category     string  `json:"category"`
}

type shopDataPayload struct {
	ShopName    string         `json:"shopName"`
	Items       []shopDataItem `json:"items"`
	Categories  []string       `json:"categories"`
	CashBalance *float64       `json:"cashBalance"`
	BankBalance *float64       `json:"bankBalance"`
}

type purchaseLine struct {
	ItemName string `json:"itemName"`
	Quantity int    `json:"quantity"`
}

type purchasePayload struct {
	ShopName      string         `json:"shopName"`
	Cart          []purchaseLine `json:"cart"`
	PaymentMethod string         `json:"paymentMethod"`
	Total         float64        `json:"total"`
}

type purchaseResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ParseShopData decodes a SET_SHOP_DATA payload into a catalog
// snapshot, applying the defaults the runtime leaves implicit: item ids
// are name plus list position, missing descriptions get a generated
// placeholder, stock falls back to defaultStock and then to zero only
// when the field is absent (an explicit zero is out-of-stock and kept),
// and uncategorized items land in the Misc category.
func ParseShopData(raw json.RawMessage) (domain.Snapshot, error) {
	const op = "bridge.ParseShopData"

	var p shopDataPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	snap := domain.Snapshot{
		ShopName:   p.ShopName,
		Categories: p.Categories,
	}
	if p.CashBalance != nil {
		snap.CashBalance = *p.CashBalance
	}
	if p.BankBalance != nil {
		snap.BankBalance = *p.BankBalance
	}

	for i, it := range p.Items {
		item := domain.Item{
			ID:          fmt.Sprintf("%s-%d", it.Name, i),
			Name:        it.Name,
			Description: it.Description,
			Price:       it.Price,
			Category:    it.Category,
		}
		if item.Description == "" {
			item.Description = "A " + it.Name
		}
		if item.Category == "" {
			item.Category = domain.DefaultCategory
		}
		switch {
		case it.Stock != nil:
			item.Stock = *it.Stock
		case it.DefaultStock != nil:
			item.Stock = *it.DefaultStock
		}
		snap.Items = append(snap.Items, item)
	}

	return snap, nil
}

func purchaseToWire(req domain.PurchaseRequest) purchasePayload {
	p := purchasePayload{
		ShopName:      req.ShopName,
		PaymentMethod: string(req.PaymentMethod),
		Total:         req.Total,
	}
	for _, l := range req.Cart {
		p.Cart = append(p.Cart, purchaseLine{
			ItemName: l.ItemName,
			Quantity: l.Quantity,
		})
	}
	return p
}
