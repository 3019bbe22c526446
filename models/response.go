package models

// Placeholders returned when no strategy yields a value.
const (
	UntitledItem      = "Untitled Item"
	PriceNotAvailable = "Price not available"
)

// ExtractResult is the response for POST /fetch-item.
type ExtractResult struct {
	// Title is never empty; it falls back to UntitledItem.
	Title string `json:"title"`

	// Image is either empty or an absolute URL.
	Image string `json:"image"`

	// Price is a display string ("$19.99", "USD $19.99") or PriceNotAvailable.
	Price string `json:"price"`

	// Source is the page hostname without a leading "www.".
	Source string `json:"source"`

	// URL echoes the requested URL.
	URL string `json:"url"`
}

// BatchExtractEntry is one URL's outcome inside a BatchExtractResponse.
type BatchExtractEntry struct {
	URL    string         `json:"url"`
	Result *ExtractResult `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchExtractResponse is the response for POST /fetch-items.
type BatchExtractResponse struct {
	Results   []BatchExtractEntry `json:"results"`
	Completed int                 `json:"completed"`
	Failed    int                 `json:"failed"`
}

// ExchangeResponse is the response for POST /exchange.
type ExchangeResponse struct {
	Success   bool     `json:"success"`
	User      UserInfo `json:"user"`
	IsNewUser bool     `json:"isNewUser"`
}

// SuccessResponse is the body of mutations that return nothing else.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
