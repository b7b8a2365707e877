package domain

// OrderItem is a single menu entry recognized inside one notification.
type OrderItem struct {
	Name   string `json:"name"`
	IsUdon bool   `json:"isUdon"`
}

// Order is the canonical record built from one notification message.
// Orders are immutable after construction.
type Order struct {
	ID      string
	Date    string // YYYY-MM-DD
	Sender  string
	Subject string
	Items   []OrderItem
	RawText string
	HasUdon bool
}

// NewOrder builds an order and derives HasUdon from the items. All orders
// must be constructed through here so the flag can never drift from the
// item list.
func NewOrder(id, date, sender, subject, rawText string, items []OrderItem) Order {
	hasUdon := false
	for _, item := range items {
		if item.IsUdon {
			hasUdon = true
			break
		}
	}

	return Order{
		ID:      id,
		Date:    date,
		Sender:  sender,
		Subject: subject,
		Items:   items,
		RawText: rawText,
		HasUdon: hasUdon,
	}
}

// RawMessage is one notification as delivered by the message feed. Date is
// the provider timestamp in whatever shape the provider uses; it is not the
// order date.
type RawMessage struct {
	ID      string
	Sender  string
	Subject string
	Date    string
	Body    string
}

// ExtractionResult is the structured reply of the extraction service. The
// zero value is the valid "nothing extracted" outcome, not an error.
type ExtractionResult struct {
	Date  string      `json:"date"`
	Items []OrderItem `json:"items"`
}

// Statistics is a derived snapshot over the current order collection.
type Statistics struct {
	TotalOrders    int
	UdonCount      int
	UdonPercentage float64
	MonthUdonCount int
}

// SeriesPoint is one per-date bucket of the order chart series.
type SeriesPoint struct {
	Date       string
	UdonCount  int
	OtherCount int
}
