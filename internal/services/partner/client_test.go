package partner_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"platen/internal/services/partner"
)

func newTestClient(t *testing.T, handler http.Handler) *partner.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := partner.New(server.URL, "test-token", time.Second)
	if err != nil {
		t.Fatalf("partner.New failed: %v", err)
	}
	return client
}

func TestCreateOrderSendsPayloadAndAuth(t *testing.T) {
	var gotAuth string
	var gotReq partner.CreateOrderRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(partner.Order{ID: 998877, Status: "draft"})
	}))

	order, err := client.CreateOrder(context.Background(), partner.CreateOrderRequest{
		ExternalOrderID: "7055",
		Items: []partner.OrderItem{{
			ExternalLineItemID: "17499",
			VariantID:          3990245,
			Quantity:           1,
			Files:              []partner.FileRef{{Type: "default", URL: "https://cdn.test.example/print.png"}},
		}},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.ID != 998877 {
		t.Fatalf("order ID = %d", order.ID)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotReq.ExternalOrderID != "7055" || gotReq.Items[0].VariantID != 3990245 {
		t.Fatalf("unexpected payload: %#v", gotReq)
	}
}

func TestErrorMessageSurfacedFromNestedEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"variant 999 does not exist"}}`))
	}))

	_, err := client.CreateOrder(context.Background(), partner.CreateOrderRequest{})
	var apiErr *partner.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "variant 999 does not exist" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if apiErr.Retryable() {
		t.Fatal("4xx must not be retryable")
	}
}

func TestErrorMessageSurfacedFromFlatEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"maintenance window"}`))
	}))

	_, err := client.GetOrder(context.Background(), 1)
	var apiErr *partner.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "maintenance window" {
		t.Fatalf("message = %q", apiErr.Message)
	}
	if !apiErr.Retryable() {
		t.Fatal("5xx must be retryable")
	}
}

func TestIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no such variant", http.StatusNotFound)
	}))

	_, err := client.GetVariant(context.Background(), 12345)
	if !partner.IsNotFound(err) {
		t.Fatalf("expected not-found classification, got %v", err)
	}
}

func TestListVariantsClampsLimit(t *testing.T) {
	var gotLimit, gotOffset string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		gotOffset = r.URL.Query().Get("offset")
		_ = json.NewEncoder(w).Encode(partner.VariantPage{Total: 0})
	}))

	if _, err := client.ListVariants(context.Background(), 71, 5000, -3); err != nil {
		t.Fatalf("ListVariants failed: %v", err)
	}
	if gotLimit != "100" {
		t.Fatalf("limit = %q, want clamped to 100", gotLimit)
	}
	if gotOffset != "0" {
		t.Fatalf("offset = %q, want floored to 0", gotOffset)
	}
}

func TestListVariantsPath(t *testing.T) {
	var gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(partner.VariantPage{
			Variants: []partner.Variant{{ID: 1, SKU: "3990245_Black_S"}},
			Total:    1,
		})
	}))

	page, err := client.ListVariants(context.Background(), 71, 10, 0)
	if err != nil {
		t.Fatalf("ListVariants failed: %v", err)
	}
	if gotPath != "/products/71/variants" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(page.Variants) != 1 || page.Variants[0].SKU != "3990245_Black_S" {
		t.Fatalf("unexpected page: %#v", page)
	}
}

func TestCancelOrderUsesDelete(t *testing.T) {
	var gotMethod, gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.CancelOrder(context.Background(), 42); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/orders/42" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := partner.New("   ", "token", time.Second); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
