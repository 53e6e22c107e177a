// Package rowstore addresses a spreadsheet-like tabular store by table name and row.
package rowstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/dispute-portal/pkg/util/errorutil"
)

var (
	ErrTableNotFound = fmt.Errorf("rowstore: table %w", errorutil.ErrNotFound)
	ErrRowNotFound   = fmt.Errorf("rowstore: row %w", errorutil.ErrNotFound)
	ErrNoHeaders     = errors.New("rowstore: table requires at least one header")
)

// Row is one data row keyed by column header.
type Row map[string]any

// Store is the contract every tabular backend satisfies. Rows are append-only, so a
// data row's zero-based index never changes once written.
type Store interface {
	List(ctx context.Context, table string) ([]Row, error)
	Headers(ctx context.Context, table string) ([]string, error)
	Append(ctx context.Context, table string, row Row) error
	Update(ctx context.Context, table string, index int, values Row) error
	EnsureTable(ctx context.Context, table string, headers []string) error
}

// Text renders a cell value the way a spreadsheet would display it.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// project keeps only the values whose key is one of headers.
func project(headers []string, values Row) Row {
	out := make(Row, len(headers))
	for _, h := range headers {
		if v, ok := values[h]; ok {
			out[h] = v
		}
	}
	return out
}

func cleanHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

func tableError(err error, table string) error {
	return fmt.Errorf("%w: %s", err, table)
}
