package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/api/middleware"
	"github.com/angelmondragon/inventory-reorder/internal/supplierorders"
	"github.com/angelmondragon/inventory-reorder/pkg/auth"
	"github.com/angelmondragon/inventory-reorder/pkg/enums"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
)

type stubOrders struct {
	confirmFn func(ctx context.Context, input supplierorders.ConfirmationInput) (*supplierorders.StatusDTO, error)
}

func (s stubOrders) Place(context.Context, supplierorders.PlaceOrderInput) (*supplierorders.StatusDTO, error) {
	return nil, nil
}

func (s stubOrders) List(context.Context, supplierorders.ListQuery) ([]supplierorders.OrderDTO, error) {
	return nil, nil
}

func (s stubOrders) Confirm(ctx context.Context, input supplierorders.ConfirmationInput) (*supplierorders.StatusDTO, error) {
	return s.confirmFn(ctx, input)
}

func confirmationBody(orderID uuid.UUID, status string) string {
	return `{"orderId":"` + orderID.String() + `","status":"` + status + `","supplierRef":"SUP-12345"}`
}

func TestOrderConfirmationAppliesVerdict(t *testing.T) {
	orderID := uuid.New()
	svc := stubOrders{
		confirmFn: func(ctx context.Context, input supplierorders.ConfirmationInput) (*supplierorders.StatusDTO, error) {
			if input.OrderID != orderID || input.Status != "Confirmed" {
				t.Fatalf("unexpected input %+v", input)
			}
			if input.SupplierRef == nil || *input.SupplierRef != "SUP-12345" {
				t.Fatalf("unexpected supplier ref %v", input.SupplierRef)
			}
			return &supplierorders.StatusDTO{ID: orderID, Status: enums.SupplierOrderStatusConfirmed}, nil
		},
	}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook/order-confirmation", strings.NewReader(confirmationBody(orderID, "Confirmed")))
	OrderConfirmation(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data supplierorders.StatusDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Status != enums.SupplierOrderStatusConfirmed {
		t.Fatalf("unexpected status %s", envelope.Data.Status)
	}
}

func TestOrderConfirmationMapsServiceErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown order", pkgerrors.New(pkgerrors.CodeNotFound, "supplier order not found"), http.StatusNotFound},
		{"already resolved", pkgerrors.New(pkgerrors.CodeStateConflict, "supplier order already confirmed"), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		svc := stubOrders{
			confirmFn: func(context.Context, supplierorders.ConfirmationInput) (*supplierorders.StatusDTO, error) {
				return nil, tc.err
			},
		}
		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(confirmationBody(uuid.New(), "Confirmed")))
		OrderConfirmation(svc, nil).ServeHTTP(resp, req)
		if resp.Code != tc.status {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.status, resp.Code)
		}
	}
}

func TestOrderConfirmationRejectsMissingFields(t *testing.T) {
	svc := stubOrders{
		confirmFn: func(context.Context, supplierorders.ConfirmationInput) (*supplierorders.StatusDTO, error) {
			t.Fatalf("service should not be called")
			return nil, nil
		},
	}
	resp := httptest.NewRecorder()
	OrderConfirmation(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"Confirmed"}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderConfirmationRejectsTokenForAnotherOrder(t *testing.T) {
	signer := auth.NewWebhookSigner("secret", "supplier-simulator", time.Minute)
	tokenOrder := uuid.New()
	token, err := signer.Mint(time.Now(), tokenOrder)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	called := false
	svc := stubOrders{
		confirmFn: func(context.Context, supplierorders.ConfirmationInput) (*supplierorders.StatusDTO, error) {
			called = true
			return &supplierorders.StatusDTO{}, nil
		},
	}
	handler := middleware.WebhookAuth(signer, nil)(OrderConfirmation(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(confirmationBody(uuid.New(), "Confirmed")))
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if called {
		t.Fatalf("service should not be called for a mismatched token")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(confirmationBody(tokenOrder, "Confirmed")))
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
