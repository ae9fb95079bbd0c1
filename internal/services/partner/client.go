package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// MaxPageLimit is the server-side cap on catalog listing page sizes.
	MaxPageLimit = 100
)

// APIError is a partner-reported failure. Message carries the partner's
// machine-readable error text verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("partner api: http %d", e.StatusCode)
	}
	return fmt.Sprintf("partner api: http %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the failure is transient (5xx). 4xx means
// the request itself is bad and must not be replayed as-is.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500
}

// IsNotFound reports whether err is a partner 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// API is the partner surface the pipeline depends on. Fakes implement it
// in tests.
type API interface {
	GetOrder(ctx context.Context, id int64) (*Order, error)
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	CancelOrder(ctx context.Context, id int64) error
	AddOrderItem(ctx context.Context, orderID int64, item OrderItem) (*Order, error)
	RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*Order, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetVariant(ctx context.Context, id int64) (*Variant, error)
	ListVariants(ctx context.Context, productID int64, limit, offset int) (*VariantPage, error)
}

// Client provides access to the partner fulfillment API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a partner API client.
func New(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("partner: base url required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// GetOrder fetches a partner order by its partner-side ID.
func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder places a new fulfillment order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder cancels a partner order.
func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil)
}

// AddOrderItem appends a line item to an existing order.
func (c *Client) AddOrderItem(ctx context.Context, orderID int64, item OrderItem) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/items", orderID), item, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// RemoveOrderItem deletes a line item from an existing order.
func (c *Client) RemoveOrderItem(ctx context.Context, orderID, itemID int64) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d/items/%d", orderID, itemID), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetProduct looks up a catalog product.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetVariant looks up a single catalog variant by ID.
func (c *Client) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	var variant Variant
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/variants/%d", id), nil, &variant); err != nil {
		return nil, err
	}
	return &variant, nil
}

// ListVariants pages through a product's catalog variants. The limit is
// capped server-side at MaxPageLimit; the client clamps before sending.
func (c *Client) ListVariants(ctx context.Context, productID int64, limit, offset int) (*VariantPage, error) {
	if limit <= 0 || limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var page VariantPage
	path := fmt.Sprintf("/products/%d/variants?%s", productID, params.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("partner %s %s: encode payload: %w", method, path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("partner %s %s: build request: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("partner %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("partner %s %s: decode response: %w", method, path, err)
	}
	return nil
}

// decodeErrorMessage pulls the partner's error text out of a failure
// body. Both {"error":{"message":...}} and {"message":...} shapes occur.
func decodeErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != nil && envelope.Error.Message != "" {
			return envelope.Error.Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
