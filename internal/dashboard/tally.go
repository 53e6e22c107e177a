// Package dashboard computes the metrics, filters, age buckets and export rows shown on
// the supplier and admin dashboards. Every function is pure over its inputs.
package dashboard

import (
	"math"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

// Summary is the status tally of a dispute collection.
type Summary struct {
	TotalSubmitted      int `json:"totalSubmitted"`
	TotalPending        int `json:"totalPending"`
	TotalInProgress     int `json:"totalInProgress"`
	TotalResolved       int `json:"totalResolved"`
	TotalRejected       int `json:"totalRejected"`
	TotalFakeSignatures int `json:"totalFakeSignatures"`
	TotalPaid           int `json:"totalPaid"`
	TotalUnderReview    int `json:"totalUnderReview"`
	TotalOther          int `json:"totalOther"`
}

// Tally counts records per status in one pass. Statuses outside the known set land in
// TotalOther so the buckets always sum to TotalSubmitted.
func Tally(records []domain.Dispute) Summary {
	var s Summary
	for _, d := range records {
		s.TotalSubmitted++
		switch d.Status {
		case domain.DisputeStatusPending, "":
			s.TotalPending++
		case domain.DisputeStatusInProgress:
			s.TotalInProgress++
		case domain.DisputeStatusResolved:
			s.TotalResolved++
		case domain.DisputeStatusRejected:
			s.TotalRejected++
		case domain.DisputeStatusFakeSignatures:
			s.TotalFakeSignatures++
		case domain.DisputeStatusPaid:
			s.TotalPaid++
		case domain.DisputeStatusUnderReview:
			s.TotalUnderReview++
		default:
			s.TotalOther++
		}
	}
	return s
}

// BucketSum adds up every status bucket.
func (s Summary) BucketSum() int {
	return s.TotalPending + s.TotalInProgress + s.TotalResolved + s.TotalRejected +
		s.TotalFakeSignatures + s.TotalPaid + s.TotalUnderReview + s.TotalOther
}

// Rate returns count as a percentage of TotalSubmitted rounded to one decimal.
func (s Summary) Rate(count int) float64 {
	if s.TotalSubmitted == 0 {
		return 0
	}
	return math.Round(float64(count)*1000/float64(s.TotalSubmitted)) / 10
}

// StatusCount is one slice of the status chart.
type StatusCount struct {
	Status  string  `json:"status"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Breakdown lists every known status plus the catch-all in display order.
func (s Summary) Breakdown() []StatusCount {
	counts := []struct {
		status string
		count  int
	}{
		{string(domain.DisputeStatusPending), s.TotalPending},
		{string(domain.DisputeStatusInProgress), s.TotalInProgress},
		{string(domain.DisputeStatusResolved), s.TotalResolved},
		{string(domain.DisputeStatusRejected), s.TotalRejected},
		{string(domain.DisputeStatusFakeSignatures), s.TotalFakeSignatures},
		{string(domain.DisputeStatusPaid), s.TotalPaid},
		{string(domain.DisputeStatusUnderReview), s.TotalUnderReview},
		{"Other", s.TotalOther},
	}
	out := make([]StatusCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, StatusCount{Status: c.status, Count: c.count, Percent: s.Rate(c.count)})
	}
	return out
}
