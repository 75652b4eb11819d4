package enums

import "testing"

func TestParseOrderSource(t *testing.T) {
	cases := map[string]OrderSource{
		"automatic": OrderSourceAutomatic,
		" Manual ":  OrderSourceManual,
		"AUTOMATIC": OrderSourceAutomatic,
	}
	for raw, want := range cases {
		got, err := ParseOrderSource(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %q want %q", raw, got, want)
		}
	}
	if _, err := ParseOrderSource("robot"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestParseSupplierOrderStatus(t *testing.T) {
	got, err := ParseSupplierOrderStatus("Pending")
	if err != nil || got != SupplierOrderStatusPending {
		t.Fatalf("got %q, %v", got, err)
	}
	if !SupplierOrderStatusConfirmed.IsTerminal() || SupplierOrderStatusPending.IsTerminal() {
		t.Fatal("terminal statuses are confirmed and failed")
	}
	if _, err := ParseSupplierOrderStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestConfirmationOutcomeIsFinal(t *testing.T) {
	if ConfirmationOutcomeQueued.IsFinal() {
		t.Fatal("queued is not final")
	}
	for _, o := range []ConfirmationOutcome{ConfirmationOutcomeSucceeded, ConfirmationOutcomeFailed, ConfirmationOutcomeCanceled} {
		if !o.IsFinal() {
			t.Fatalf("%s should be final", o)
		}
	}
}
