package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/pkg/auth"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
)

const (
	defaultTimeout              = 10 * time.Second
	responseBodyReadLimit int64 = 1024
	confirmedStatus             = "Confirmed"
)

var errWebhookURLRequired = errors.New("supplier webhook url is required")

// ConfirmationPayload is the body the supplier posts back to the webhook.
type ConfirmationPayload struct {
	OrderID     uuid.UUID `json:"orderId"`
	Status      string    `json:"status"`
	SupplierRef string    `json:"supplierRef"`
}

// Client simulates the external supplier by posting confirmations to the
// order-confirmation webhook.
type Client struct {
	httpClient *http.Client
	webhookURL string
	signer     *auth.WebhookSigner
	now        func() time.Time
	ref        func() string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSigner attaches a bearer token to every callback.
func WithSigner(signer *auth.WebhookSigner) Option {
	return func(c *Client) {
		c.signer = signer
	}
}

// WithReferenceGenerator overrides how supplier references are produced.
func WithReferenceGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.ref = fn
		}
	}
}

func NewClient(webhookURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(webhookURL)
	if trimmed == "" {
		return nil, errWebhookURLRequired
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		webhookURL: trimmed,
		now:        time.Now,
		ref:        NewReference,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// NewReference returns a supplier reference like SUP-48213.
func NewReference() string {
	return fmt.Sprintf("SUP-%05d", 10000+rand.IntN(90000))
}

// Confirm posts a "Confirmed" callback for orderID.
func (c *Client) Confirm(ctx context.Context, orderID uuid.UUID) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "supplier client not configured")
	}

	payload, err := json.Marshal(ConfirmationPayload{
		OrderID:     orderID,
		Status:      confirmedStatus,
		SupplierRef: c.ref(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal confirmation")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build confirmation request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.signer != nil {
		token, err := c.signer.Mint(c.now(), orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign confirmation")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute confirmation request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "confirmation request failed")
	}
	return nil
}
