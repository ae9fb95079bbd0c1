package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// PutRequest describes one object upload.
type PutRequest struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// API is the storage surface the artifact store depends on. Fakes
// implement it in tests.
type API interface {
	Put(ctx context.Context, req PutRequest) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Client talks to an S3-style HTTP object storage endpoint.
type Client struct {
	endpoint      string
	bucket        string
	publicBaseURL string
	accessKey     string
	httpClient    *http.Client
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

// New creates an object storage client.
func New(endpoint, bucket, publicBaseURL, accessKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("objstore: endpoint required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("objstore: bucket required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	publicBaseURL = strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if publicBaseURL == "" {
		publicBaseURL = endpoint + "/" + bucket
	}
	client := &Client{
		endpoint:      endpoint,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		accessKey:     strings.TrimSpace(accessKey),
		httpClient:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Put uploads an object and returns its public URL. Uploads are
// idempotent for identical keys since keys are content-derived upstream.
func (c *Client) Put(ctx context.Context, put PutRequest) (string, error) {
	key := strings.TrimLeft(strings.TrimSpace(put.Key), "/")
	if key == "" {
		return "", errors.New("objstore put: key required")
	}
	if len(put.Body) == 0 {
		return "", errors.New("objstore put: empty body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(key), bytes.NewReader(put.Body))
	if err != nil {
		return "", fmt.Errorf("objstore put: build request: %w", err)
	}
	if put.ContentType != "" {
		req.Header.Set("Content-Type", put.ContentType)
	}
	if put.CacheControl != "" {
		req.Header.Set("Cache-Control", put.CacheControl)
	}
	for name, value := range put.Metadata {
		req.Header.Set("x-amz-meta-"+strings.ToLower(name), value)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("objstore put %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("objstore put %s: http %d: %s", key, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return c.publicBaseURL + "/" + key, nil
}

// Exists reports whether an object is already stored under key.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return false, errors.New("objstore exists: key required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.objectURL(key), nil)
	if err != nil {
		return false, fmt.Errorf("objstore exists: build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("objstore exists %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("objstore exists %s: http %d", key, resp.StatusCode)
	}
}

func (c *Client) objectURL(key string) string {
	escaped := make([]string, 0, 8)
	for _, segment := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return c.endpoint + "/" + c.bucket + "/" + strings.Join(escaped, "/")
}

func (c *Client) authorize(req *http.Request) {
	if c.accessKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessKey)
	}
}
