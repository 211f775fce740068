package httphandler

type (
	Item struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
		Category    string  `json:"category"`
		IsFavorite  bool    `json:"is_favorite"`
	}

	CartLine struct {
		Item     Item `json:"item"`
		Quantity int  `json:"quantity"`
	}

	CartView struct {
		Lines []CartLine `json:"lines"`
		Total float64    `json:"total"`
		Count int        `json:"count"`
	}

	ShopView struct {
		ShopName       string   `json:"shop_name"`
		CashBalance    float64  `json:"cash_balance"`
		BankBalance    float64  `json:"bank_balance"`
		PaymentMethod  string   `json:"payment_method"`
		Categories     []string `json:"categories"`
		SearchQuery    string   `json:"search_query"`
		SortBy         string   `json:"sort_by"`
		CategoryFilter string   `json:"category_filter"`
		Visible        bool     `json:"visible"`
	}
)

type (
	AddToCartRequest struct {
		ItemID string `json:"item_id"`
	}

	UpdateQuantityRequest struct {
		ItemID   string `json:"item_id"`
		Quantity int    `json:"quantity"`
	}

	SearchRequest struct {
		Query string `json:"query"`
	}

	SortRequest struct {
		SortBy string `json:"sort_by"`
	}

	CategoryRequest struct {
		Category string `json:"category"`
	}

	PaymentRequest struct {
		Method string `json:"method"`
	}
)
