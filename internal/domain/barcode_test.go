package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewMasterBarcodeFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	mb := NewMasterBarcode(now)
	if !IsMasterBarcode(mb) {
		t.Fatalf("generated barcode %q does not match format", mb)
	}
	if !strings.HasPrefix(mb, "MCO-20260314-") {
		t.Fatalf("expected date segment 20260314, got %q", mb)
	}
	if len(mb) != len("MCO-20260314-XXXXX") {
		t.Fatalf("unexpected length for %q", mb)
	}
}

func TestNewMasterBarcodeSuffixVaries(t *testing.T) {
	now := time.Now().UTC()
	seen := make(map[string]bool, 32)
	for i := 0; i < 32; i++ {
		seen[NewMasterBarcode(now)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected varying suffixes, got %d distinct barcodes", len(seen))
	}
}

func TestIsMasterBarcodeRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"MCO-2026031-ABCDE",
		"MCO-20260314-abcde",
		"MCO-20260314-ABCD",
		"XCO-20260314-ABCDE",
		"MCO-20260314-ABCDEF",
	}
	for _, candidate := range bad {
		if IsMasterBarcode(candidate) {
			t.Fatalf("expected %q to be rejected", candidate)
		}
	}
}
