package domain

import (
	"testing"
	"time"
)

func line(qty, returned int) CheckoutItemDetail {
	status := ItemReturnStatusCheckedOut
	if returned >= qty {
		status = ItemReturnStatusReturned
	}
	return CheckoutItemDetail{
		ItemID:            "itm-1",
		Quantity:          qty,
		ReturnedQuantity:  returned,
		RemainingQuantity: qty - returned,
		ReturnStatus:      status,
	}
}

func TestDeriveStatusActive(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(48 * time.Hour)

	got := DeriveStatus([]CheckoutItemDetail{line(3, 0), line(2, 0)}, &future, now)
	if got != CheckoutStatusActive {
		t.Fatalf("expected active, got %s", got)
	}
}

func TestDeriveStatusFullyReturned(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)

	// Fully returned wins even when the expected date has passed.
	got := DeriveStatus([]CheckoutItemDetail{line(3, 3), line(2, 2)}, &past, now)
	if got != CheckoutStatusFullyReturned {
		t.Fatalf("expected fully-returned, got %s", got)
	}
}

func TestDeriveStatusOverdueOnlyWithoutReturns(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)

	if got := DeriveStatus([]CheckoutItemDetail{line(3, 0)}, &past, now); got != CheckoutStatusOverdue {
		t.Fatalf("expected overdue with no returns, got %s", got)
	}

	// A single returned unit masks overdue.
	if got := DeriveStatus([]CheckoutItemDetail{line(3, 1)}, &past, now); got != CheckoutStatusPartialReturn {
		t.Fatalf("expected partial-return to mask overdue, got %s", got)
	}
}

func TestDeriveStatusPartialReturn(t *testing.T) {
	now := time.Now().UTC()

	got := DeriveStatus([]CheckoutItemDetail{line(3, 3), line(2, 0)}, nil, now)
	if got != CheckoutStatusPartialReturn {
		t.Fatalf("expected partial-return, got %s", got)
	}
}

func TestDeriveStatusNoExpectedDateNeverOverdue(t *testing.T) {
	now := time.Now().UTC()

	got := DeriveStatus([]CheckoutItemDetail{line(1, 0)}, nil, now)
	if got != CheckoutStatusActive {
		t.Fatalf("expected active without expected date, got %s", got)
	}
}

func TestRecalcTotalsSumsLines(t *testing.T) {
	now := time.Now().UTC()
	checkout := ExtendedCheckout{
		Items: []CheckoutItemDetail{line(5, 2), line(4, 0)},
	}

	RecalcTotals(&checkout, now)

	if checkout.TotalItems != 9 {
		t.Fatalf("expected total 9, got %d", checkout.TotalItems)
	}
	if checkout.ReturnedItems != 2 {
		t.Fatalf("expected returned 2, got %d", checkout.ReturnedItems)
	}
	if checkout.RemainingItems != 7 {
		t.Fatalf("expected remaining 7, got %d", checkout.RemainingItems)
	}
	if checkout.TotalItems != checkout.ReturnedItems+checkout.RemainingItems {
		t.Fatalf("totals do not balance: %d != %d + %d", checkout.TotalItems, checkout.ReturnedItems, checkout.RemainingItems)
	}
	if checkout.Status != CheckoutStatusPartialReturn {
		t.Fatalf("expected partial-return status, got %s", checkout.Status)
	}
}
