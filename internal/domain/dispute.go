package domain

import (
	"strings"
	"time"
)

// DisputeStatus enumerates lifecycle states for disputes. Both schema generations
// are covered: the original four plus the extended review/payment states.
type DisputeStatus string

const (
	DisputeStatusPending        DisputeStatus = "Pending"
	DisputeStatusInProgress     DisputeStatus = "In Progress"
	DisputeStatusResolved       DisputeStatus = "Resolved"
	DisputeStatusRejected       DisputeStatus = "Rejected"
	DisputeStatusFakeSignatures DisputeStatus = "Fake Signatures"
	DisputeStatusPaid           DisputeStatus = "Paid"
	DisputeStatusUnderReview    DisputeStatus = "Under Review"
)

// KnownStatuses lists every recognised status in display order.
var KnownStatuses = []DisputeStatus{
	DisputeStatusPending,
	DisputeStatusInProgress,
	DisputeStatusResolved,
	DisputeStatusRejected,
	DisputeStatusFakeSignatures,
	DisputeStatusPaid,
	DisputeStatusUnderReview,
}

// DisputePriority enumerates urgency levels.
type DisputePriority string

const (
	DisputePriorityLow    DisputePriority = "Low"
	DisputePriorityMedium DisputePriority = "Medium"
	DisputePriorityHigh   DisputePriority = "High"
	DisputePriorityUrgent DisputePriority = "Urgent"
)

// KnownPriorities lists every recognised priority.
var KnownPriorities = []DisputePriority{
	DisputePriorityLow,
	DisputePriorityMedium,
	DisputePriorityHigh,
	DisputePriorityUrgent,
}

// Dispute is the canonical record behind every dispute table row.
type Dispute struct {
	ID                     string
	OrderItemID            string
	TrackingID             string
	DisputeType            string
	Category               string
	Subcategory            string
	Priority               DisputePriority
	SupplierName           string
	SupplierEmail          string
	SupplierID             string
	Description            string
	City                   string
	Status                 DisputeStatus
	SubmissionDate         time.Time
	LastUpdateDate         time.Time
	Attachments            string
	Amount                 string
	ContactPhone           string
	PreferredContact       string
	ExpectedResolutionDate string
}

// ParseStatus maps free text onto a known status ignoring case, spaces, dashes and
// underscores. Empty input yields Pending; unrecognised input is returned trimmed and
// reported as unknown.
func ParseStatus(raw string) (DisputeStatus, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DisputeStatusPending, true
	}
	key := foldLabel(trimmed)
	for _, status := range KnownStatuses {
		if foldLabel(string(status)) == key {
			return status, true
		}
	}
	return DisputeStatus(trimmed), false
}

// ParsePriority maps free text onto a known priority. Empty input yields Medium.
func ParsePriority(raw string) (DisputePriority, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DisputePriorityMedium, true
	}
	key := foldLabel(trimmed)
	for _, priority := range KnownPriorities {
		if foldLabel(string(priority)) == key {
			return priority, true
		}
	}
	return DisputePriority(trimmed), false
}

// IsOwnedBy reports whether the supplier id or email equals owner.
func (d Dispute) IsOwnedBy(owner string) bool {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return false
	}
	if d.SupplierID != "" && d.SupplierID == owner {
		return true
	}
	return d.SupplierEmail != "" && strings.EqualFold(d.SupplierEmail, owner)
}

func foldLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
