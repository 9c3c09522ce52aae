package httpx

type OptionsDTO struct {
	Shot  bool `json:"shot"`
	Syrup bool `json:"syrup"`
}

type MenuItemResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"`
	PriceText   string `json:"price_text"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Stock       int    `json:"stock"`
	SoldOut     bool   `json:"sold_out"`
}

type PriceQuoteResponse struct {
	MenuItemID    int        `json:"menu_item_id"`
	Options       OptionsDTO `json:"options"`
	UnitPrice     int        `json:"unit_price"`
	UnitPriceText string     `json:"unit_price_text"`
}

type AddToCartRequest struct {
	MenuItemID int        `json:"menu_item_id"`
	Options    OptionsDTO `json:"options"`
}

type CartLineResponse struct {
	Key           string     `json:"key"`
	MenuItemID    int        `json:"menu_item_id"`
	Name          string     `json:"name"`
	DisplayName   string     `json:"display_name"`
	Options       OptionsDTO `json:"options"`
	Quantity      int        `json:"quantity"`
	UnitPrice     int        `json:"unit_price"`
	LineTotal     int        `json:"line_total"`
	LineTotalText string     `json:"line_total_text"`
}

type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	Total     int                `json:"total"`
	TotalText string             `json:"total_text"`
}

type OrderLineResponse struct {
	MenuItemID    int        `json:"menu_item_id"`
	Name          string     `json:"name"`
	DisplayName   string     `json:"display_name"`
	Options       OptionsDTO `json:"options"`
	Quantity      int        `json:"quantity"`
	LineTotal     int        `json:"line_total"`
	LineTotalText string     `json:"line_total_text"`
}

type OrderResponse struct {
	ID             int64               `json:"id"`
	CreatedAt      string              `json:"created_at"`
	Status         string              `json:"status"`
	StatusLabel    string              `json:"status_label"`
	NextAction     string              `json:"next_action,omitempty"`
	TotalPrice     int                 `json:"total_price"`
	TotalPriceText string              `json:"total_price_text"`
	Lines          []OrderLineResponse `json:"lines"`
}

type SubmitOrderResponse struct {
	Message string        `json:"message"`
	Order   OrderResponse `json:"order"`
}

type AdvanceOrderResponse struct {
	Advanced bool          `json:"advanced"`
	Order    OrderResponse `json:"order"`
}

type InventoryItemResponse struct {
	MenuItemID int    `json:"menu_item_id"`
	Name       string `json:"name"`
	Stock      int    `json:"stock"`
	Level      string `json:"level"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

type StatsResponse struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Received  int `json:"received"`
	Making    int `json:"making"`
	Completed int `json:"completed"`
}

type JournalEntryResponse struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Status     string `json:"status,omitempty"`
	MenuItemID int    `json:"menu_item_id,omitempty"`
	Delta      int    `json:"delta,omitempty"`
	TraceID    string `json:"trace_id,omitempty"`
	RecordedAt string `json:"recorded_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
