package dashboard

import (
	"strings"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

// All is the sentinel that switches a categorical criterion off.
const All = "all"

// Criteria are the independent dashboard filters. Empty or "all" values are inactive.
type Criteria struct {
	Search      string `json:"search"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DisputeType string `json:"disputeType"`
	City        string `json:"city"`
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

// IsZero reports whether no criterion is active.
func (c Criteria) IsZero() bool {
	return !active(c.Search) && !active(c.Status) && !active(c.Priority) &&
		!active(c.DisputeType) && !active(c.City)
}

// Matches reports whether d satisfies every active criterion.
func (c Criteria) Matches(d domain.Dispute) bool {
	if active(c.Status) && string(d.Status) != strings.TrimSpace(c.Status) {
		return false
	}
	if active(c.Priority) && string(d.Priority) != strings.TrimSpace(c.Priority) {
		return false
	}
	if active(c.DisputeType) && d.DisputeType != strings.TrimSpace(c.DisputeType) {
		return false
	}
	if active(c.City) && d.City != strings.TrimSpace(c.City) {
		return false
	}
	if active(c.Search) {
		term := strings.ToLower(strings.TrimSpace(c.Search))
		for _, field := range []string{d.OrderItemID, d.TrackingID, d.SupplierName, d.SupplierEmail, d.Description} {
			if strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	}
	return true
}

// Apply returns the records matching c in their original order. The result is never nil.
func Apply(records []domain.Dispute, c Criteria) []domain.Dispute {
	out := make([]domain.Dispute, 0, len(records))
	for _, d := range records {
		if c.Matches(d) {
			out = append(out, d)
		}
	}
	return out
}
