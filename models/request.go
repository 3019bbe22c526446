package models

// ExtractRequest is the payload for POST /fetch-item.
//
// The numeric overrides are pointers so that an explicit 0 can be told apart
// from an absent field.
type ExtractRequest struct {
	// URL is the product page to extract. Required, http or https only.
	URL string `json:"url" binding:"required"`

	// Price is a user-asserted current price. When set it always wins.
	Price *float64 `json:"price,omitempty"`

	// OriginalPrice and Savings are used together when Price is absent:
	// the current price becomes max(0, OriginalPrice-Savings).
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Savings       *float64 `json:"savings,omitempty"`
}

// BatchExtractRequest is the payload for POST /fetch-items.
type BatchExtractRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,max=20"`
}

// ExchangeRequest is the payload for POST /exchange.
type ExchangeRequest struct {
	Token string `json:"token"`
}

// AddItemRequest is the payload for POST /add-item.
type AddItemRequest struct {
	Title  string `json:"title"`
	Image  string `json:"image"`
	Price  string `json:"price"`
	URL    string `json:"url"`
	Source string `json:"source"`
}
