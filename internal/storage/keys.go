package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._\-]+`)

// AllowedContentTypes lists the evidence formats accepted for dispute attachments.
var AllowedContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
}

// BuildKey constructs the object key for an attachment upload.
func BuildKey(supplierID, uploadID, filename string) string {
	return fmt.Sprintf("disputes/%s/%s/%s", SanitizeName(supplierID), uploadID, SanitizeName(filename))
}

// ParseKey extracts the supplier id and upload id from an attachment key.
func ParseKey(key string) (supplierID, uploadID string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 4 || parts[0] != "disputes" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// SanitizeName keeps path-safe characters and defaults empty names.
func SanitizeName(s string) string {
	s = filepath.Base(strings.TrimSpace(s))
	s = strings.Trim(unsafeChars.ReplaceAllString(s, "_"), "_")
	if s == "" || s == "." {
		return "attachment"
	}
	return s
}

// ValidateUpload checks the content type and that the file extension agrees with it.
func ValidateUpload(filename, contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := AllowedContentTypes[ct]
	if !ok {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	got := strings.ToLower(filepath.Ext(filename))
	if got == ".jpeg" {
		got = ".jpg"
	}
	if got != ext {
		return fmt.Errorf("file extension %q does not match %s", filepath.Ext(filename), ct)
	}
	return nil
}
