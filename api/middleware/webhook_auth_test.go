package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/pkg/auth"
)

func TestWebhookAuthAcceptsValidToken(t *testing.T) {
	signer := auth.NewWebhookSigner("secret", "supplier-simulator", time.Minute)
	orderID := uuid.New()
	token, err := signer.Mint(time.Now(), orderID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	var seen *auth.WebhookClaims
	handler := WebhookAuth(signer, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = WebhookClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/webhook/order-confirmation", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if seen == nil || seen.OrderID != orderID {
		t.Fatalf("expected claims for %s, got %+v", orderID, seen)
	}
}

func TestWebhookAuthRejectsMissingOrBadToken(t *testing.T) {
	signer := auth.NewWebhookSigner("secret", "supplier-simulator", time.Minute)
	other := auth.NewWebhookSigner("other-secret", "supplier-simulator", time.Minute)
	forged, err := other.Mint(time.Now(), uuid.New())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	handler := WebhookAuth(signer, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run")
	}))

	for name, header := range map[string]string{
		"missing": "",
		"basic":   "Basic abc",
		"forged":  "Bearer " + forged,
	} {
		req := httptest.NewRequest(http.MethodPost, "/webhook/order-confirmation", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 got %d", name, rec.Code)
		}
	}
}

func TestWebhookAuthDisabledWithoutSigner(t *testing.T) {
	handler := WebhookAuth(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if WebhookClaimsFromContext(r.Context()) != nil {
			t.Fatalf("no claims expected")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/order-confirmation", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
}
