package domain

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"
)

const masterBarcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var masterBarcodePattern = regexp.MustCompile(`^MCO-\d{8}-[A-Z0-9]{5}$`)

// NewMasterBarcode builds a master checkout barcode of the form
// MCO-YYYYMMDD-XXXXX with a random 5-character uppercase suffix.
func NewMasterBarcode(now time.Time) string {
	suffix := make([]byte, 5)
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		// Time-based fallback keeps the format valid if crypto/rand fails.
		stamp := now.UTC().UnixNano()
		for i := range suffix {
			suffix[i] = masterBarcodeAlphabet[int(stamp>>(i*6))%len(masterBarcodeAlphabet)]
		}
	} else {
		for i, b := range buf {
			suffix[i] = masterBarcodeAlphabet[int(b)%len(masterBarcodeAlphabet)]
		}
	}
	return fmt.Sprintf("MCO-%s-%s", now.UTC().Format("20060102"), string(suffix))
}

// IsMasterBarcode reports whether s matches the MCO-YYYYMMDD-XXXXX format.
func IsMasterBarcode(s string) bool {
	return masterBarcodePattern.MatchString(s)
}
