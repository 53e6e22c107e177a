// Package normalize maps heterogeneous sheet rows onto canonical dispute records and back.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/dispute-portal/internal/config"
	"github.com/spec-kit/dispute-portal/internal/domain"
	"github.com/spec-kit/dispute-portal/internal/rowstore"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+`)

	// idNamespace seeds derived identifiers for rows without an id column.
	idNamespace = uuid.MustParse("6f1c7a52-3d1e-4f0b-9a57-2c1d8e4b7a90")

	dateLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006",
	}
)

// Normalizer resolves canonical fields through the ordered synonym lists of a schema.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	disputes    []config.FieldSpec
	credentials []config.FieldSpec
}

// New builds a normalizer for schema.
func New(schema config.Schema) *Normalizer {
	return &Normalizer{disputes: schema.Disputes, credentials: schema.Credentials}
}

// index is a case-insensitive view of a raw row. For keys that fold to the same text
// the first non-empty value in sorted key order wins.
type index struct {
	row    rowstore.Row
	folded map[string]string
}

func newIndex(row rowstore.Row) index {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]string, len(keys))
	for _, k := range keys {
		v := cell(row[k])
		if v == "" {
			continue
		}
		fk := foldKey(k)
		if _, seen := folded[fk]; !seen {
			folded[fk] = v
		}
	}
	return index{row: row, folded: folded}
}

// lookup probes synonyms exactly in order, then case-insensitively.
func (ix index) lookup(synonyms []string) string {
	for _, s := range synonyms {
		if v := cell(ix.row[s]); v != "" {
			return v
		}
	}
	for _, s := range synonyms {
		if v, ok := ix.folded[foldKey(s)]; ok {
			return v
		}
	}
	return ""
}

func (ix index) field(spec config.FieldSpec) string {
	if v := ix.lookup(spec.Synonyms); v != "" {
		return v
	}
	return spec.Default
}

// Field resolves one canonical dispute field from row, applying its default.
func (n *Normalizer) Field(row rowstore.Row, name string) string {
	for _, spec := range n.disputes {
		if spec.Name == name {
			return newIndex(row).field(spec)
		}
	}
	return ""
}

// Normalize converts a raw row into a canonical dispute. The result depends only on row.
func (n *Normalizer) Normalize(row rowstore.Row) domain.Dispute {
	ix := newIndex(row)
	values := make(map[string]string, len(n.disputes))
	for _, spec := range n.disputes {
		values[spec.Name] = ix.field(spec)
	}

	d := domain.Dispute{
		ID:                     values[config.FieldID],
		OrderItemID:            values[config.FieldOrderItemID],
		TrackingID:             values[config.FieldTrackingID],
		DisputeType:            values[config.FieldDisputeType],
		Category:               values[config.FieldCategory],
		Subcategory:            values[config.FieldSubcategory],
		SupplierName:           values[config.FieldSupplierName],
		SupplierEmail:          values[config.FieldSupplierEmail],
		SupplierID:             values[config.FieldSupplierID],
		Description:            values[config.FieldDescription],
		City:                   values[config.FieldCity],
		SubmissionDate:         ParseTime(values[config.FieldSubmissionDate]),
		LastUpdateDate:         ParseTime(values[config.FieldLastUpdateDate]),
		Attachments:            values[config.FieldAttachments],
		Amount:                 values[config.FieldAmount],
		ContactPhone:           values[config.FieldContactPhone],
		PreferredContact:       values[config.FieldPreferredContact],
		ExpectedResolutionDate: values[config.FieldExpectedResolutionDate],
	}
	if status, ok := domain.ParseStatus(values[config.FieldStatus]); ok {
		d.Status = status
	} else {
		d.Status = domain.DisputeStatusPending
	}
	d.Priority, _ = domain.ParsePriority(values[config.FieldPriority])

	if name, email, ok := SplitSupplier(d.SupplierName); ok {
		d.SupplierName = name
		if d.SupplierEmail == "" {
			d.SupplierEmail = email
		}
	}

	if d.ID == "" {
		d.ID = DeriveID(values[config.FieldSubmissionDate], d.OrderItemID, d.TrackingID, d.SupplierEmail)
	}
	return d
}

// Credential converts a credentials table row.
func (n *Normalizer) Credential(row rowstore.Row) domain.Credential {
	ix := newIndex(row)
	values := make(map[string]string, len(n.credentials))
	for _, spec := range n.credentials {
		values[spec.Name] = ix.field(spec)
	}
	return domain.Credential{
		Email:        values[config.CredentialEmail],
		Password:     values[config.CredentialPassword],
		SupplierID:   values[config.CredentialSupplierID],
		SupplierName: values[config.CredentialSupplierName],
		Role:         domain.ParseRole(values[config.CredentialRole]),
	}
}

// Values renders d as canonical field name to cell text.
func (n *Normalizer) Values(d domain.Dispute) map[string]string {
	return map[string]string{
		config.FieldID:                     d.ID,
		config.FieldOrderItemID:            d.OrderItemID,
		config.FieldTrackingID:             d.TrackingID,
		config.FieldDisputeType:            d.DisputeType,
		config.FieldCategory:               d.Category,
		config.FieldSubcategory:            d.Subcategory,
		config.FieldPriority:               string(d.Priority),
		config.FieldSupplierName:           d.SupplierName,
		config.FieldSupplierEmail:          d.SupplierEmail,
		config.FieldSupplierID:             d.SupplierID,
		config.FieldDescription:            d.Description,
		config.FieldCity:                   d.City,
		config.FieldStatus:                 string(d.Status),
		config.FieldSubmissionDate:         FormatTime(d.SubmissionDate),
		config.FieldLastUpdateDate:         FormatTime(d.LastUpdateDate),
		config.FieldAttachments:            d.Attachments,
		config.FieldAmount:                 d.Amount,
		config.FieldContactPhone:           d.ContactPhone,
		config.FieldPreferredContact:       d.PreferredContact,
		config.FieldExpectedResolutionDate: d.ExpectedResolutionDate,
	}
}

// HeaderField returns the canonical field that supplies a sheet column, using the same
// exact-then-case-insensitive synonym rule as Normalize.
func (n *Normalizer) HeaderField(header string) (string, bool) {
	for _, spec := range n.disputes {
		for _, s := range spec.Synonyms {
			if s == header {
				return spec.Name, true
			}
		}
	}
	key := foldKey(header)
	for _, spec := range n.disputes {
		for _, s := range spec.Synonyms {
			if foldKey(s) == key {
				return spec.Name, true
			}
		}
	}
	return "", false
}

// MapToHeaders lays d out for a destination table. Headers no field claims get "".
func (n *Normalizer) MapToHeaders(d domain.Dispute, headers []string) rowstore.Row {
	values := n.Values(d)
	row := make(rowstore.Row, len(headers))
	for _, h := range headers {
		if field, ok := n.HeaderField(h); ok {
			row[h] = values[field]
			continue
		}
		row[h] = ""
	}
	return row
}

// ColumnsFor returns the headers of a table that are supplied by field.
func (n *Normalizer) ColumnsFor(headers []string, field string) []string {
	var cols []string
	for _, h := range headers {
		if f, ok := n.HeaderField(h); ok && f == field {
			cols = append(cols, h)
		}
	}
	return cols
}

// DefaultHeaders is the header row written when a dispute table is created.
func (n *Normalizer) DefaultHeaders() []string {
	headers := make([]string, 0, len(n.disputes))
	for _, spec := range n.disputes {
		if spec.Header != "" {
			headers = append(headers, spec.Header)
		}
	}
	return headers
}

// SplitSupplier separates "Name <local@domain>" style values. ok is false when s holds no
// email address.
func SplitSupplier(s string) (name, email string, ok bool) {
	loc := emailPattern.FindStringIndex(s)
	if loc == nil {
		return s, "", false
	}
	email = strings.TrimRight(s[loc[0]:loc[1]], ".")
	rest := s[:loc[0]] + s[loc[1]:]
	rest = strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '<', '>':
			return -1
		}
		return r
	}, rest)
	name = strings.Trim(strings.Join(strings.Fields(rest), " "), " -,;:")
	return name, email, true
}

// DeriveID builds a stable identifier from fields that never change after creation.
func DeriveID(submission, orderItemID, trackingID, supplierEmail string) string {
	key := strings.Join([]string{
		strings.TrimSpace(submission),
		strings.TrimSpace(orderItemID),
		strings.TrimSpace(trackingID),
		strings.ToLower(strings.TrimSpace(supplierEmail)),
	}, "|")
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

// ParseTime accepts the timestamp shapes found in the sheets. Unparseable text yields the
// zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FormatTime renders t for storage. The zero time renders empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// cell renders a probed value trimmed; whitespace-only cells count as empty.
func cell(v any) string {
	return strings.TrimSpace(rowstore.Text(v))
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
