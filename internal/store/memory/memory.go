package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"equiptrack/backend/internal/domain"
	"equiptrack/backend/internal/store"
	"equiptrack/backend/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	itemsByID       map[string]domain.InventoryItem
	itemIDByBarcode map[string]string
	checkoutsByMB   map[string]*domain.ExtendedCheckout
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD; when
// unset, hardcoded dev defaults are used with a warning. Production runs
// against PostgreSQL (DATABASE_URL set) and never touches these.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		email    string
		password string
		role     string
	}{
		{"admin", "admin@equiptrack.local", adminPwd, "admin"},
		{"staff", "staff@equiptrack.local", staffPwd, "staff"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Email:     u.email,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	now := time.Now().UTC()
	items := []domain.InventoryItem{
		{Barcode: "EQ-LAPTOP-01", Name: "Dell Latitude 5540", Category: "computing", Quantity: 12, MinQuantity: 3, Location: "Shelf A1"},
		{Barcode: "EQ-LAPTOP-02", Name: "MacBook Air M3", Category: "computing", Quantity: 6, MinQuantity: 2, Location: "Shelf A1"},
		{Barcode: "EQ-PROJ-01", Name: "Epson EB-FH52 Projector", Category: "av", Quantity: 4, MinQuantity: 1, Location: "Shelf B2"},
		{Barcode: "EQ-CAM-01", Name: "Sony A6400 Camera", Category: "av", Quantity: 3, MinQuantity: 1, Location: "Locker C1"},
		{Barcode: "EQ-TRIPOD-01", Name: "Manfrotto Tripod", Category: "av", Quantity: 8, MinQuantity: 2, Location: "Shelf B3"},
		{Barcode: "EQ-MULTI-01", Name: "Fluke 117 Multimeter", Category: "instruments", Quantity: 10, MinQuantity: 2, Location: "Drawer D1"},
		{Barcode: "EQ-LEVEL-01", Name: "Bosch Laser Level", Category: "instruments", Quantity: 5, MinQuantity: 1, Location: "Drawer D2"},
		{Barcode: "EQ-RADIO-01", Name: "Motorola Two-Way Radio", Category: "field", Quantity: 16, MinQuantity: 4, Location: "Shelf E1"},
		{Barcode: "EQ-CABLE-HDMI", Name: "HDMI Cable 3m", Category: "accessories", Quantity: 30, MinQuantity: 10, Location: "Bin F1"},
		{Barcode: "EQ-BATT-01", Name: "Battery Pack 20000mAh", Category: "accessories", Quantity: 20, MinQuantity: 5, Location: "Bin F2"},
	}

	itemsByID := make(map[string]domain.InventoryItem, len(items))
	itemIDByBarcode := make(map[string]string, len(items))
	for _, item := range items {
		item.ID = xid.New("itm")
		item.Active = true
		item.CreatedAt = now
		item.UpdatedAt = now
		itemsByID[item.ID] = item
		itemIDByBarcode[item.Barcode] = item.ID
	}

	return &Store{
		itemsByID:       itemsByID,
		itemIDByBarcode: itemIDByBarcode,
		checkoutsByMB:   make(map[string]*domain.ExtendedCheckout),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListItems(_ context.Context) ([]domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.InventoryItem, 0, len(s.itemsByID))
	for _, item := range s.itemsByID {
		if !item.Active {
			continue
		}
		items = append(items, item)
	}

	slices.SortFunc(items, func(a, b domain.InventoryItem) int {
		if a.Category == b.Category {
			return cmpString(a.Name, b.Name)
		}
		return cmpString(a.Category, b.Category)
	})

	return items, nil
}

func (s *Store) CreateItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.Barcode == "" || item.Name == "" || item.Quantity < 0 || item.MinQuantity < 0 {
		return nil, store.ErrValidation
	}
	if _, exists := s.itemIDByBarcode[item.Barcode]; exists {
		return nil, fmt.Errorf("%w: barcode %s already registered", store.ErrValidation, item.Barcode)
	}

	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = xid.New("itm")
	}
	item.Active = true
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	s.itemsByID[item.ID] = item
	s.itemIDByBarcode[item.Barcode] = item.ID
	created := item
	return &created, nil
}

func (s *Store) GetItemByBarcode(_ context.Context, barcode string) (*domain.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.itemIDByBarcode[barcode]
	if !ok {
		return nil, store.ErrNotFound
	}
	item, ok := s.itemsByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyItem := item
	return &copyItem, nil
}

func (s *Store) UpdateItem(_ context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.ID == "" || item.Name == "" || item.Quantity < 0 || item.MinQuantity < 0 {
		return nil, store.ErrValidation
	}
	existing, ok := s.itemsByID[item.ID]
	if !ok {
		return nil, store.ErrNotFound
	}

	// Barcode is immutable once assigned.
	item.Barcode = existing.Barcode
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now().UTC()
	s.itemsByID[item.ID] = item
	updated := item
	return &updated, nil
}

func (s *Store) AdjustItemQuantity(_ context.Context, itemID string, delta int) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return nil, store.ErrNotFound
	}
	next := item.Quantity + delta
	if next < 0 {
		return nil, fmt.Errorf("%w: quantity for %s would drop below zero", store.ErrValidation, item.Barcode)
	}
	item.Quantity = next
	item.UpdatedAt = time.Now().UTC()
	s.itemsByID[itemID] = item
	updated := item
	return &updated, nil
}

// CreateCheckout validates every line against current stock before touching
// anything, so a failing line leaves the whole batch unapplied.
func (s *Store) CreateCheckout(_ context.Context, checkout domain.ExtendedCheckout) (*domain.ExtendedCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if checkout.MasterBarcode == "" || len(checkout.Items) == 0 {
		return nil, store.ErrValidation
	}
	if _, exists := s.checkoutsByMB[checkout.MasterBarcode]; exists {
		return nil, fmt.Errorf("%w: master barcode %s already in use", store.ErrValidation, checkout.MasterBarcode)
	}

	for _, detail := range checkout.Items {
		if detail.Quantity < 1 {
			return nil, store.ErrValidation
		}
		item, ok := s.itemsByID[detail.ItemID]
		if !ok || !item.Active {
			return nil, fmt.Errorf("%w: item %s", store.ErrNotFound, detail.ItemID)
		}
		if item.Quantity < detail.Quantity {
			return nil, fmt.Errorf("%w: %s has %d, requested %d", store.ErrInsufficientStock, item.Barcode, item.Quantity, detail.Quantity)
		}
	}

	now := time.Now().UTC()
	for _, detail := range checkout.Items {
		item := s.itemsByID[detail.ItemID]
		item.Quantity -= detail.Quantity
		item.UpdatedAt = now
		s.itemsByID[detail.ItemID] = item
	}

	if checkout.ID == "" {
		checkout.ID = xid.New("chk")
	}
	checkout.Version = 1
	if checkout.CreatedAt.IsZero() {
		checkout.CreatedAt = now
	}
	checkout.UpdatedAt = now

	stored := cloneCheckout(checkout)
	s.checkoutsByMB[checkout.MasterBarcode] = &stored
	created := cloneCheckout(stored)
	return &created, nil
}

func (s *Store) GetCheckoutByMasterBarcode(_ context.Context, masterBarcode string) (*domain.ExtendedCheckout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.checkoutsByMB[masterBarcode]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := cloneCheckout(*stored)
	return &found, nil
}

func (s *Store) ListCheckouts(_ context.Context) ([]domain.ExtendedCheckout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkouts := make([]domain.ExtendedCheckout, 0, len(s.checkoutsByMB))
	for _, stored := range s.checkoutsByMB {
		checkouts = append(checkouts, cloneCheckout(*stored))
	}

	slices.SortFunc(checkouts, func(a, b domain.ExtendedCheckout) int {
		if a.CheckedOutDate.Equal(b.CheckedOutDate) {
			return cmpString(b.ID, a.ID)
		}
		if a.CheckedOutDate.After(b.CheckedOutDate) {
			return -1
		}
		return 1
	})

	return checkouts, nil
}

func (s *Store) ApplyReturn(_ context.Context, masterBarcode string, expectedVersion int, updated domain.ExtendedCheckout, restock []domain.StockAdjustment) (*domain.ExtendedCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.checkoutsByMB[masterBarcode]
	if !ok {
		return nil, store.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return nil, fmt.Errorf("%w: expected version %d, stored %d", store.ErrConflict, expectedVersion, stored.Version)
	}

	for _, adj := range restock {
		if adj.Qty < 1 {
			return nil, store.ErrValidation
		}
		if _, ok := s.itemsByID[adj.ItemID]; !ok {
			return nil, fmt.Errorf("%w: item %s", store.ErrNotFound, adj.ItemID)
		}
	}

	now := time.Now().UTC()
	for _, adj := range restock {
		item := s.itemsByID[adj.ItemID]
		item.Quantity += adj.Qty
		item.UpdatedAt = now
		s.itemsByID[adj.ItemID] = item
	}

	updated.ID = stored.ID
	updated.MasterBarcode = masterBarcode
	updated.Version = expectedVersion + 1
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = now

	next := cloneCheckout(updated)
	s.checkoutsByMB[masterBarcode] = &next
	result := cloneCheckout(next)
	return &result, nil
}

func (s *Store) UpdateCheckoutStatus(_ context.Context, masterBarcode string, expectedVersion int, status string) (*domain.ExtendedCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.checkoutsByMB[masterBarcode]
	if !ok {
		return nil, store.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return nil, fmt.Errorf("%w: expected version %d, stored %d", store.ErrConflict, expectedVersion, stored.Version)
	}

	stored.Status = status
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = time.Now().UTC()
	result := cloneCheckout(*stored)
	return &result, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}

	logs := make([]domain.AuditLog, 0, limit)
	for _, entry := range s.auditLogs {
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		logs = append(logs, entry)
	}

	slices.SortFunc(logs, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrValidation
	}
	if _, exists := s.usersByUsername[username]; exists {
		return fmt.Errorf("%w: username %s already exists", store.ErrValidation, username)
	}
	user.Username = username
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	user, ok := s.usersByUsername[username]
	if !ok {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func cloneCheckout(c domain.ExtendedCheckout) domain.ExtendedCheckout {
	out := c
	out.Items = make([]domain.CheckoutItemDetail, len(c.Items))
	copy(out.Items, c.Items)
	for i := range out.Items {
		if c.Items[i].ReturnDate != nil {
			rd := *c.Items[i].ReturnDate
			out.Items[i].ReturnDate = &rd
		}
	}
	out.ReturnHistory = make([]domain.ReturnHistoryEntry, len(c.ReturnHistory))
	copy(out.ReturnHistory, c.ReturnHistory)
	for i := range out.ReturnHistory {
		lines := make([]domain.ReturnLine, len(c.ReturnHistory[i].Items))
		copy(lines, c.ReturnHistory[i].Items)
		out.ReturnHistory[i].Items = lines
	}
	if c.ExpectedReturnDate != nil {
		erd := *c.ExpectedReturnDate
		out.ExpectedReturnDate = &erd
	}
	return out
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
