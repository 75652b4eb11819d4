package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/inventory-reorder/internal/demand"
	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
)

type stubLedger struct {
	recordFn   func(ctx context.Context, itemID uuid.UUID, day time.Time, quantity int) error
	trailingFn func(ctx context.Context, itemID uuid.UUID) ([]demand.StatDTO, error)
}

func (s stubLedger) Record(ctx context.Context, itemID uuid.UUID, day time.Time, quantity int) error {
	if s.recordFn != nil {
		return s.recordFn(ctx, itemID, day, quantity)
	}
	return nil
}

func (s stubLedger) Trailing(ctx context.Context, itemID uuid.UUID) ([]demand.StatDTO, error) {
	if s.trailingFn != nil {
		return s.trailingFn(ctx, itemID)
	}
	return nil, nil
}

func TestDemandRecordDefaultsToToday(t *testing.T) {
	id := uuid.New()
	var gotDay time.Time
	var gotQty int
	ledger := stubLedger{
		recordFn: func(ctx context.Context, itemID uuid.UUID, day time.Time, quantity int) error {
			gotDay, gotQty = day, quantity
			return nil
		},
	}

	resp := httptest.NewRecorder()
	req := withItemID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":0}`)), id)
	DemandRecord(ledger, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if !gotDay.IsZero() || gotQty != 0 {
		t.Fatalf("unexpected record day=%s qty=%d", gotDay, gotQty)
	}
}

func TestDemandRecordParsesDay(t *testing.T) {
	id := uuid.New()
	var gotDay time.Time
	ledger := stubLedger{
		recordFn: func(ctx context.Context, itemID uuid.UUID, day time.Time, quantity int) error {
			gotDay = day
			return nil
		},
	}

	resp := httptest.NewRecorder()
	req := withItemID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":4,"day":"2026-03-02"}`)), id)
	DemandRecord(ledger, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if !gotDay.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day %s", gotDay)
	}
}

func TestDemandRecordRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing quantity":  `{}`,
		"negative quantity": `{"quantity":-2}`,
		"bad day":           `{"quantity":1,"day":"yesterday"}`,
	}
	for name, body := range cases {
		resp := httptest.NewRecorder()
		req := withItemID(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), uuid.New())
		DemandRecord(stubLedger{
			recordFn: func(context.Context, uuid.UUID, time.Time, int) error {
				t.Fatalf("%s: ledger should not be called", name)
				return nil
			},
		}, nil).ServeHTTP(resp, req)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, resp.Code)
		}
	}
}

func TestDemandHistory(t *testing.T) {
	id := uuid.New()
	ledger := stubLedger{
		trailingFn: func(ctx context.Context, itemID uuid.UUID) ([]demand.StatDTO, error) {
			if itemID != id {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return []demand.StatDTO{{Day: "2026-03-01", Quantity: 3}, {Day: "2026-03-02", Quantity: 5}}, nil
		},
	}

	resp := httptest.NewRecorder()
	DemandHistory(ledger, nil).ServeHTTP(resp, withItemID(httptest.NewRequest(http.MethodGet, "/", nil), id))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var stats []demand.StatDTO
	decodeData(t, resp, &stats)
	if len(stats) != 2 || stats[1].Quantity != 5 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	resp = httptest.NewRecorder()
	DemandHistory(ledger, nil).ServeHTTP(resp, withItemID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New()))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
