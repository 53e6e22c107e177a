package domain

import "time"

// AttachmentReference records an evidence upload issued to a supplier.
type AttachmentReference struct {
	StorageKey  string
	FileName    string
	ContentType string
	SupplierID  string
	Email       string
	CreatedAt   time.Time
}
