package domain

type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

// QuoteLine prices a cart line at its snapshot price, which is what checkout
// will charge, and reports the catalog's current availability.
type QuoteLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice Money  `json:"unitPrice"`
	LineTotal Money  `json:"lineTotal"`
	Available int32  `json:"available"`
	InStock   bool   `json:"inStock"`
}

type Quote struct {
	Lines       []QuoteLine `json:"lines"`
	Total       Money       `json:"total"`
	Purchasable bool        `json:"purchasable"`
}
