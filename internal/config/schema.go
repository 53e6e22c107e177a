package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Canonical dispute field names.
const (
	FieldID                     = "id"
	FieldOrderItemID            = "orderItemId"
	FieldTrackingID             = "trackingId"
	FieldDisputeType            = "disputeType"
	FieldCategory               = "category"
	FieldSubcategory            = "subcategory"
	FieldPriority               = "priority"
	FieldSupplierName           = "supplierName"
	FieldSupplierEmail          = "supplierEmail"
	FieldSupplierID             = "supplierId"
	FieldDescription            = "description"
	FieldCity                   = "city"
	FieldStatus                 = "status"
	FieldSubmissionDate         = "submissionDate"
	FieldLastUpdateDate         = "lastUpdateDate"
	FieldAttachments            = "attachments"
	FieldAmount                 = "amount"
	FieldContactPhone           = "contactPhone"
	FieldPreferredContact       = "preferredContact"
	FieldExpectedResolutionDate = "expectedResolutionDate"
)

// Canonical credential field names.
const (
	CredentialEmail        = "email"
	CredentialPassword     = "password"
	CredentialSupplierID   = "supplierId"
	CredentialSupplierName = "supplierName"
	CredentialRole         = "role"
)

// FieldSpec describes how one canonical field is found in a raw row.
type FieldSpec struct {
	Name     string   `yaml:"name"`
	Header   string   `yaml:"header"`
	Synonyms []string `yaml:"synonyms"`
	Default  string   `yaml:"default"`
}

// Schema holds the synonym tables for dispute and credential rows.
type Schema struct {
	Disputes    []FieldSpec `yaml:"disputes"`
	Credentials []FieldSpec `yaml:"credentials"`
}

// Field returns the dispute field spec named name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Disputes {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// LoadSchema returns the built-in schema, overlaid with the YAML file at path when set.
// Only fields named in the file are replaced.
func LoadSchema(path string) (Schema, error) {
	schema := DefaultSchema()
	if path == "" {
		return schema, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema file: %w", err)
	}
	var overlay Schema
	if err := yaml.Unmarshal(content, &overlay); err != nil {
		return Schema{}, fmt.Errorf("parse schema file: %w", err)
	}
	if schema.Disputes, err = mergeFields(schema.Disputes, overlay.Disputes); err != nil {
		return Schema{}, fmt.Errorf("disputes: %w", err)
	}
	if schema.Credentials, err = mergeFields(schema.Credentials, overlay.Credentials); err != nil {
		return Schema{}, fmt.Errorf("credentials: %w", err)
	}
	return schema, nil
}

func mergeFields(base, overlay []FieldSpec) ([]FieldSpec, error) {
	for _, o := range overlay {
		idx := -1
		for i := range base {
			if base[i].Name == o.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("unknown field %q", o.Name)
		}
		if len(o.Synonyms) > 0 {
			base[idx].Synonyms = o.Synonyms
		}
		if o.Header != "" {
			base[idx].Header = o.Header
		}
		if o.Default != "" {
			base[idx].Default = o.Default
		}
	}
	return base, nil
}

// DefaultSchema covers the header variants seen across the dispute sheets.
func DefaultSchema() Schema {
	return Schema{
		Disputes: []FieldSpec{
			{Name: FieldID, Header: "Dispute ID", Synonyms: []string{"id", "disputeId", "Dispute ID", "DisputeID", "ID"}},
			{Name: FieldOrderItemID, Header: "Order Item ID", Synonyms: []string{"orderItemId", "Order Item ID", "OrderItemID", "orderId", "Order ID", "Item ID"}},
			{Name: FieldTrackingID, Header: "Tracking ID", Synonyms: []string{"trackingId", "Tracking ID", "TrackingID", "Tracking Number", "AWB"}},
			{Name: FieldDisputeType, Header: "Dispute Type", Synonyms: []string{"disputeType", "Dispute Type", "type", "Type"}},
			{Name: FieldCategory, Header: "Category", Synonyms: []string{"category", "Category", "Dispute Category"}},
			{Name: FieldSubcategory, Header: "Subcategory", Synonyms: []string{"subcategory", "Subcategory", "Sub Category", "Sub-Category"}},
			{Name: FieldPriority, Header: "Priority", Synonyms: []string{"priority", "Priority"}, Default: "Medium"},
			{Name: FieldSupplierName, Header: "Supplier Name", Synonyms: []string{"supplierName", "Supplier Name", "SupplierName", "Supplier", "supplier"}},
			{Name: FieldSupplierEmail, Header: "Supplier Email", Synonyms: []string{"supplierEmail", "Supplier Email", "SupplierEmail", "email", "Email"}},
			{Name: FieldSupplierID, Header: "Supplier ID", Synonyms: []string{"supplierId", "Supplier ID", "SupplierID", "supplier_id"}},
			{Name: FieldDescription, Header: "Description", Synonyms: []string{"description", "Description", "reason", "Reason", "Dispute Reason", "details", "Details"}},
			{Name: FieldCity, Header: "City", Synonyms: []string{"city", "City"}},
			{Name: FieldStatus, Header: "Status", Synonyms: []string{"status", "Status", "Dispute Status"}, Default: "Pending"},
			{Name: FieldSubmissionDate, Header: "Submission Date", Synonyms: []string{"submissionDate", "Submission Date", "Submitted At", "timestamp", "Timestamp", "createdAt", "Date"}},
			{Name: FieldLastUpdateDate, Header: "Last Update Date", Synonyms: []string{"lastUpdateDate", "Last Update Date", "Last Updated", "updatedAt"}},
			{Name: FieldAttachments, Header: "Attachments", Synonyms: []string{"attachments", "Attachments", "Attachment", "attachmentUrl"}},
			{Name: FieldAmount, Header: "Amount", Synonyms: []string{"amount", "Amount", "Claim Amount"}},
			{Name: FieldContactPhone, Header: "Contact Phone", Synonyms: []string{"contactPhone", "Contact Phone", "Phone", "phone"}},
			{Name: FieldPreferredContact, Header: "Preferred Contact", Synonyms: []string{"preferredContact", "Preferred Contact", "Preferred Contact Method"}},
			{Name: FieldExpectedResolutionDate, Header: "Expected Resolution Date", Synonyms: []string{"expectedResolutionDate", "Expected Resolution Date"}},
		},
		Credentials: []FieldSpec{
			{Name: CredentialEmail, Header: "Email", Synonyms: []string{"email", "Email", "Supplier Email"}},
			{Name: CredentialPassword, Header: "Password", Synonyms: []string{"password", "Password"}},
			{Name: CredentialSupplierID, Header: "Supplier ID", Synonyms: []string{"supplierId", "Supplier ID", "SupplierID"}},
			{Name: CredentialSupplierName, Header: "Supplier Name", Synonyms: []string{"supplierName", "Supplier Name", "Supplier", "Name"}},
			{Name: CredentialRole, Header: "Role", Synonyms: []string{"role", "Role"}, Default: "supplier"},
		},
	}
}
