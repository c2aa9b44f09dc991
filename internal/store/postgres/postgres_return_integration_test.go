package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"equiptrack/backend/internal/domain"
	"equiptrack/backend/internal/store"
)

func TestApplyReturnRestocksInventory(t *testing.T) {
	databaseURL := os.Getenv("EQUIPTRACK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set EQUIPTRACK_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	barcode := fmt.Sprintf("EQ-RET-IT-%d", stamp)
	masterBarcode := domain.NewMasterBarcode(time.Now().UTC())

	item, err := s.CreateItem(ctx, domain.InventoryItem{
		Barcode:     barcode,
		Name:        "Return IT Radio",
		Category:    "radio",
		Quantity:    10,
		MinQuantity: 2,
		Location:    "shelf-it",
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM return_history WHERE checkout_id IN (SELECT id FROM checkouts WHERE master_barcode = $1)`, masterBarcode)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM checkout_items WHERE checkout_id IN (SELECT id FROM checkouts WHERE master_barcode = $1)`, masterBarcode)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM checkouts WHERE master_barcode = $1`, masterBarcode)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, item.ID)
	})

	now := time.Now().UTC()
	checkout := domain.ExtendedCheckout{
		MasterBarcode:  masterBarcode,
		CheckedOutBy:   "Integration Tester",
		CheckedOutDate: now,
		Items: []domain.CheckoutItemDetail{{
			ItemID:            item.ID,
			Barcode:           item.Barcode,
			Name:              item.Name,
			Quantity:          4,
			RemainingQuantity: 4,
			ReturnStatus:      domain.ItemReturnStatusCheckedOut,
		}},
		ReturnHistory: []domain.ReturnHistoryEntry{},
	}
	domain.RecalcTotals(&checkout, now)

	created, err := s.CreateCheckout(ctx, checkout)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if created.Version != 1 {
		t.Fatalf("expected version 1, got %d", created.Version)
	}

	afterCheckout, err := s.GetItemByBarcode(ctx, barcode)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if afterCheckout.Quantity != 6 {
		t.Fatalf("expected stock 6 after checkout, got %d", afterCheckout.Quantity)
	}

	updated := *created
	updated.Items = []domain.CheckoutItemDetail{created.Items[0]}
	updated.Items[0].ReturnedQuantity = 3
	updated.Items[0].RemainingQuantity = 1
	domain.RecalcTotals(&updated, time.Now().UTC())
	updated.ReturnHistory = append(updated.ReturnHistory, domain.ReturnHistoryEntry{
		ReturnDate:    time.Now().UTC(),
		ReturnedBy:    "Integration Tester",
		ReturnType:    domain.ReturnTypePartial,
		ItemsReturned: 3,
		Items:         []domain.ReturnLine{{ItemID: item.ID, Name: item.Name, Quantity: 3}},
	})

	result, err := s.ApplyReturn(ctx, masterBarcode, created.Version, updated, []domain.StockAdjustment{{ItemID: item.ID, Qty: 3}})
	if err != nil {
		t.Fatalf("apply return: %v", err)
	}
	if result.Version != created.Version+1 {
		t.Fatalf("expected version %d, got %d", created.Version+1, result.Version)
	}
	if result.RemainingItems != 1 {
		t.Fatalf("expected remaining 1, got %d", result.RemainingItems)
	}
	if len(result.ReturnHistory) != 1 || result.ReturnHistory[0].ItemsReturned != 3 {
		t.Fatalf("bad return history: %+v", result.ReturnHistory)
	}

	afterReturn, err := s.GetItemByBarcode(ctx, barcode)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if afterReturn.Quantity != 9 {
		t.Fatalf("expected stock 9 after restock, got %d", afterReturn.Quantity)
	}

	// Replay with the stale version; the guard must reject it.
	_, err = s.ApplyReturn(ctx, masterBarcode, created.Version, updated, nil)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict on stale version, got %v", err)
	}
}

func TestCheckoutItemsKeepCreationOrder(t *testing.T) {
	databaseURL := os.Getenv("EQUIPTRACK_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set EQUIPTRACK_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	masterBarcode := domain.NewMasterBarcode(time.Now().UTC())

	// Barcodes sort opposite to creation order on purpose.
	first, err := s.CreateItem(ctx, domain.InventoryItem{
		Barcode:  fmt.Sprintf("EQ-ORD-Z-%d", stamp),
		Name:     "Order IT Zulu",
		Category: "radio",
		Quantity: 5,
		Location: "shelf-it",
	})
	if err != nil {
		t.Fatalf("create first item: %v", err)
	}
	second, err := s.CreateItem(ctx, domain.InventoryItem{
		Barcode:  fmt.Sprintf("EQ-ORD-A-%d", stamp),
		Name:     "Order IT Alpha",
		Category: "radio",
		Quantity: 5,
		Location: "shelf-it",
	})
	if err != nil {
		t.Fatalf("create second item: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM checkout_items WHERE checkout_id IN (SELECT id FROM checkouts WHERE master_barcode = $1)`, masterBarcode)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM checkouts WHERE master_barcode = $1`, masterBarcode)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM items WHERE id IN ($1, $2)`, first.ID, second.ID)
	})

	now := time.Now().UTC()
	checkout := domain.ExtendedCheckout{
		MasterBarcode:  masterBarcode,
		CheckedOutBy:   "Integration Tester",
		CheckedOutDate: now,
		Items: []domain.CheckoutItemDetail{
			{ItemID: first.ID, Barcode: first.Barcode, Name: first.Name, Quantity: 1, RemainingQuantity: 1, ReturnStatus: domain.ItemReturnStatusCheckedOut},
			{ItemID: second.ID, Barcode: second.Barcode, Name: second.Name, Quantity: 1, RemainingQuantity: 1, ReturnStatus: domain.ItemReturnStatusCheckedOut},
		},
		ReturnHistory: []domain.ReturnHistoryEntry{},
	}
	domain.RecalcTotals(&checkout, now)

	if _, err := s.CreateCheckout(ctx, checkout); err != nil {
		t.Fatalf("create checkout: %v", err)
	}

	fetched, err := s.GetCheckoutByMasterBarcode(ctx, masterBarcode)
	if err != nil {
		t.Fatalf("get checkout: %v", err)
	}
	if len(fetched.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(fetched.Items))
	}
	if fetched.Items[0].ItemID != first.ID || fetched.Items[1].ItemID != second.ID {
		t.Fatalf("lines out of creation order: %s, %s", fetched.Items[0].Barcode, fetched.Items[1].Barcode)
	}
}
