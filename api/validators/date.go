package validators

import (
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/inventory-reorder/pkg/errors"
)

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp.
// Empty input yields nil.
func ParseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" must be YYYY-MM-DD or RFC 3339").
		WithDetails(map[string]any{"field": field})
}
