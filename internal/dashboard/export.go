package dashboard

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/spec-kit/dispute-portal/internal/domain"
)

// ExportHeader is the column order of exported dispute tables.
var ExportHeader = []string{
	"Dispute ID",
	"Order Item ID",
	"Tracking ID",
	"Supplier Name",
	"Supplier Email",
	"Type",
	"Priority",
	"Status",
	"Description",
	"Submission Date",
	"Last Update",
	"Days Open",
}

const exportDateLayout = "2006-01-02 15:04"

// ExportRow shapes one dispute for export.
func ExportRow(now time.Time, d domain.Dispute) []string {
	daysOpen := ""
	if !d.SubmissionDate.IsZero() {
		daysOpen = strconv.Itoa(ElapsedDays(now, d.SubmissionDate))
	}
	return []string{
		d.ID,
		d.OrderItemID,
		d.TrackingID,
		d.SupplierName,
		d.SupplierEmail,
		d.DisputeType,
		string(d.Priority),
		string(d.Status),
		d.Description,
		formatExportDate(d.SubmissionDate),
		formatExportDate(d.LastUpdateDate),
		daysOpen,
	}
}

// ExportTable returns the header row followed by one row per record, in order.
func ExportTable(now time.Time, records []domain.Dispute) [][]string {
	table := make([][]string, 0, len(records)+1)
	table = append(table, append([]string(nil), ExportHeader...))
	for _, d := range records {
		table = append(table, ExportRow(now, d))
	}
	return table
}

// WriteCSV writes ExportTable as CSV.
func WriteCSV(w io.Writer, now time.Time, records []domain.Dispute) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(ExportTable(now, records)); err != nil {
		return err
	}
	return cw.Error()
}

func formatExportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(exportDateLayout)
}
