package enums

import (
	"fmt"
	"strings"
)

// OrderSource records who created a supplier order.
type OrderSource string

const (
	OrderSourceAutomatic OrderSource = "automatic"
	OrderSourceManual    OrderSource = "manual"
)

var validOrderSources = []OrderSource{
	OrderSourceAutomatic,
	OrderSourceManual,
}

// String implements fmt.Stringer.
func (s OrderSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderSource.
func (s OrderSource) IsValid() bool {
	for _, candidate := range validOrderSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderSource converts raw input into an OrderSource, ignoring case.
func ParseOrderSource(value string) (OrderSource, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validOrderSources {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order source %q", value)
}
