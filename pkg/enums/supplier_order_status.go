package enums

import (
	"fmt"
	"strings"
)

// SupplierOrderStatus tracks the lifecycle of a replenishment order.
// Pending is the only non-terminal state.
type SupplierOrderStatus string

const (
	SupplierOrderStatusPending   SupplierOrderStatus = "pending"
	SupplierOrderStatusConfirmed SupplierOrderStatus = "confirmed"
	SupplierOrderStatusFailed    SupplierOrderStatus = "failed"
)

var validSupplierOrderStatuses = []SupplierOrderStatus{
	SupplierOrderStatusPending,
	SupplierOrderStatusConfirmed,
	SupplierOrderStatusFailed,
}

// String implements fmt.Stringer.
func (s SupplierOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupplierOrderStatus.
func (s SupplierOrderStatus) IsValid() bool {
	for _, candidate := range validSupplierOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s SupplierOrderStatus) IsTerminal() bool {
	return s == SupplierOrderStatusConfirmed || s == SupplierOrderStatusFailed
}

// ParseSupplierOrderStatus converts raw input into a SupplierOrderStatus, ignoring case.
func ParseSupplierOrderStatus(value string) (SupplierOrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validSupplierOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier order status %q", value)
}
