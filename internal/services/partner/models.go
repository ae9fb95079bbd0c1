package partner

// Variant is the partner's current, authoritative catalog entry for one
// product/color/size combination.
type Variant struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	InStock   bool   `json:"in_stock"`
}

// Product is a catalog product with its variant list summary.
type Product struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	VariantCount int    `json:"variant_count"`
}

// VariantPage is one page of a catalog variant listing.
type VariantPage struct {
	Variants []Variant `json:"variants"`
	Total    int       `json:"total"`
	Offset   int       `json:"offset"`
	Limit    int       `json:"limit"`
}

// FileRef attaches a stored print artifact to an order item.
type FileRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// OrderItem is one fulfillable line on a partner order.
type OrderItem struct {
	ID                 int64     `json:"id,omitempty"`
	ExternalLineItemID string    `json:"external_line_item_id,omitempty"`
	VariantID          int64     `json:"variant_id"`
	Quantity           int       `json:"quantity"`
	Files              []FileRef `json:"files,omitempty"`
}

// Order is a partner fulfillment order.
type Order struct {
	ID              int64       `json:"id"`
	ExternalOrderID string      `json:"external_order_id,omitempty"`
	Status          string      `json:"status"`
	Items           []OrderItem `json:"items"`
}

// CreateOrderRequest creates a new partner order with its initial items.
type CreateOrderRequest struct {
	ExternalOrderID string      `json:"external_order_id"`
	Items           []OrderItem `json:"items"`
}
