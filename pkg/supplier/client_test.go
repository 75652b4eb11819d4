package supplier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/pkg/auth"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestClientConfirmPostsSignedPayload(t *testing.T) {
	orderID := uuid.New()
	signer := auth.NewWebhookSigner("secret", "supplier-simulator", time.Minute)

	var captured ConfirmationPayload
	var authHeader, capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		authHeader = req.Header.Get("Authorization")
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(`{}`)), Header: http.Header{}}, nil
	})

	client, err := NewClient("http://api.test/webhook/order-confirmation",
		WithHTTPClient(&http.Client{Transport: rt}),
		WithSigner(signer),
		WithReferenceGenerator(func() string { return "SUP-12345" }),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if err := client.Confirm(context.Background(), orderID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if capturedURL != "http://api.test/webhook/order-confirmation" {
		t.Fatalf("unexpected url %q", capturedURL)
	}
	if captured.OrderID != orderID || captured.Status != "Confirmed" || captured.SupplierRef != "SUP-12345" {
		t.Fatalf("unexpected payload %+v", captured)
	}
	token, ok := auth.BearerToken(authHeader)
	if !ok {
		t.Fatalf("missing bearer token, header=%q", authHeader)
	}
	claims, err := signer.Parse(token)
	if err != nil || claims.OrderID != orderID {
		t.Fatalf("token should verify for the order: %v", err)
	}
}

func TestClientConfirmReportsNon2xx(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader("missing")), Header: http.Header{}}, nil
	})
	client, err := NewClient("http://api.test/hook", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = client.Confirm(context.Background(), uuid.New())
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(" "); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestNewReferenceFormat(t *testing.T) {
	ref := NewReference()
	if !strings.HasPrefix(ref, "SUP-") || len(ref) != len("SUP-12345") {
		t.Fatalf("unexpected reference %q", ref)
	}
}
