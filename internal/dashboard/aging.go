package dashboard

import (
	"math"
	"time"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

// AgeBucket counts pending disputes whose age falls within [MinDays, MaxDays].
// MaxDays is zero for the open-ended last bucket.
type AgeBucket struct {
	Label   string `json:"label"`
	MinDays int    `json:"minDays"`
	MaxDays int    `json:"maxDays,omitempty"`
	Count   int    `json:"count"`
}

func newBuckets() []AgeBucket {
	return []AgeBucket{
		{Label: "0-3 days", MinDays: 0, MaxDays: 3},
		{Label: "4-7 days", MinDays: 4, MaxDays: 7},
		{Label: "8-14 days", MinDays: 8, MaxDays: 14},
		{Label: "15+ days", MinDays: 15},
	}
}

// ElapsedDays is the ceiling of the absolute whole-day distance, never less than one.
func ElapsedDays(now, submitted time.Time) int {
	diff := now.Sub(submitted)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(diff.Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// AgeBuckets places every pending dispute in exactly one of four fixed ranges. Empty
// buckets are reported with a zero count. Records with no submission date count as 15+.
func AgeBuckets(now time.Time, records []domain.Dispute) []AgeBucket {
	buckets := newBuckets()
	for _, d := range records {
		if d.Status != domain.DisputeStatusPending && d.Status != "" {
			continue
		}
		if d.SubmissionDate.IsZero() {
			buckets[len(buckets)-1].Count++
			continue
		}
		buckets[bucketFor(ElapsedDays(now, d.SubmissionDate))].Count++
	}
	return buckets
}

func bucketFor(days int) int {
	switch {
	case days <= 3:
		return 0
	case days <= 7:
		return 1
	case days <= 14:
		return 2
	default:
		return 3
	}
}
