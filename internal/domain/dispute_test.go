package domain

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in    string
		want  DisputeStatus
		known bool
	}{
		{"", DisputeStatusPending, true},
		{"  ", DisputeStatusPending, true},
		{"pending", DisputeStatusPending, true},
		{"IN_PROGRESS", DisputeStatusInProgress, true},
		{"in-progress", DisputeStatusInProgress, true},
		{"fake signatures", DisputeStatusFakeSignatures, true},
		{"UnderReview", DisputeStatusUnderReview, true},
		{" Escalated ", DisputeStatus("Escalated"), false},
	}
	for _, tt := range tests {
		got, known := ParseStatus(tt.in)
		if got != tt.want || known != tt.known {
			t.Fatalf("ParseStatus(%q) = (%q,%v), want (%q,%v)", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestParsePriorityDefaultsToMedium(t *testing.T) {
	if p, ok := ParsePriority(""); p != DisputePriorityMedium || !ok {
		t.Fatalf("expected Medium default, got %q", p)
	}
	if p, ok := ParsePriority("high"); p != DisputePriorityHigh || !ok {
		t.Fatalf("expected High, got %q", p)
	}
	if _, ok := ParsePriority("whenever"); ok {
		t.Fatal("expected unknown priority to be rejected")
	}
}

func TestIsOwnedBy(t *testing.T) {
	d := Dispute{SupplierID: "SUP-001", SupplierEmail: "Ops@Acme.test"}
	if !d.IsOwnedBy("SUP-001") {
		t.Fatal("expected supplier id match")
	}
	if !d.IsOwnedBy("ops@acme.test") {
		t.Fatal("expected case-insensitive email match")
	}
	if d.IsOwnedBy("SUP-00") || d.IsOwnedBy("") {
		t.Fatal("ownership must not be a partial match")
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole(" Admin ") != RoleAdmin {
		t.Fatal("expected admin")
	}
	if ParseRole("manager") != RoleSupplier {
		t.Fatal("expected unknown roles to fall back to supplier")
	}
}
