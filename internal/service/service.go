package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"equiptrack/backend/internal/cache"
	"equiptrack/backend/internal/domain"
	"equiptrack/backend/internal/store"
	"equiptrack/backend/internal/xid"
)

type Service struct {
	repo     store.Repository
	cache    cache.CheckoutCache
	cacheTTL time.Duration
}

func New(repo store.Repository, checkoutCache cache.CheckoutCache, cacheTTL time.Duration) *Service {
	if checkoutCache == nil {
		checkoutCache = cache.NoopCheckoutCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Service{
		repo:     repo,
		cache:    checkoutCache,
		cacheTTL: cacheTTL,
	}
}

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

func (s *Service) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.repo.ListItems(ctx)
}

func (s *Service) CreateItem(ctx context.Context, req domain.ItemCreateRequest) (domain.InventoryItem, error) {
	barcode := strings.TrimSpace(req.Barcode)
	name := strings.TrimSpace(req.Name)
	if barcode == "" || name == "" {
		return domain.InventoryItem{}, fmt.Errorf("%w: barcode and name are required", store.ErrValidation)
	}
	if req.Quantity < 0 || req.MinQuantity < 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: quantities must not be negative", store.ErrValidation)
	}

	created, err := s.repo.CreateItem(ctx, domain.InventoryItem{
		Barcode:     barcode,
		Name:        name,
		Category:    strings.TrimSpace(req.Category),
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		Location:    strings.TrimSpace(req.Location),
	})
	if err != nil {
		return domain.InventoryItem{}, err
	}

	s.logAudit(ctx, "item.create", "item", created.ID, fmt.Sprintf("barcode=%s qty=%d", created.Barcode, created.Quantity))
	return *created, nil
}

func (s *Service) GetItemByBarcode(ctx context.Context, barcode string) (domain.InventoryItem, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return domain.InventoryItem{}, fmt.Errorf("%w: barcode is required", store.ErrValidation)
	}
	item, err := s.repo.GetItemByBarcode(ctx, barcode)
	if err != nil {
		return domain.InventoryItem{}, fmt.Errorf("resolve barcode %s: %w", barcode, err)
	}
	return *item, nil
}

func (s *Service) UpdateItem(ctx context.Context, barcode string, req domain.ItemUpdateRequest) (domain.InventoryItem, error) {
	item, err := s.GetItemByBarcode(ctx, barcode)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.MinQuantity != nil {
		item.MinQuantity = *req.MinQuantity
	}
	if req.Location != nil {
		item.Location = strings.TrimSpace(*req.Location)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	updated, err := s.repo.UpdateItem(ctx, item)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	s.logAudit(ctx, "item.update", "item", updated.ID, fmt.Sprintf("barcode=%s", updated.Barcode))
	return *updated, nil
}

// AdjustItemQuantity applies a manual stock correction. The store rejects
// adjustments that would take the quantity below zero.
func (s *Service) AdjustItemQuantity(ctx context.Context, barcode string, delta int, reason string) (domain.InventoryItem, error) {
	if delta == 0 {
		return domain.InventoryItem{}, fmt.Errorf("%w: delta must not be zero", store.ErrValidation)
	}
	item, err := s.GetItemByBarcode(ctx, barcode)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	updated, err := s.repo.AdjustItemQuantity(ctx, item.ID, delta)
	if err != nil {
		return domain.InventoryItem{}, err
	}

	s.logAudit(ctx, "item.adjust", "item", updated.ID,
		fmt.Sprintf("barcode=%s delta=%+d reason=%s", updated.Barcode, delta, defaultString(reason, "unspecified")))
	return *updated, nil
}

func (s *Service) LowStockReport(ctx context.Context) (domain.LowStockResponse, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return domain.LowStockResponse{}, err
	}

	report := domain.LowStockResponse{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Items:       make([]domain.LowStockItem, 0, 8),
	}
	for _, item := range items {
		if item.Quantity > item.MinQuantity {
			continue
		}
		report.Items = append(report.Items, domain.LowStockItem{
			Item:    item,
			Deficit: item.MinQuantity - item.Quantity,
		})
	}
	return report, nil
}

// CreateCheckout builds a bulk checkout from (barcode, quantity) lines.
// Lines are validated one by one for specific errors; the store re-validates
// the whole batch atomically before decrementing anything.
func (s *Service) CreateCheckout(ctx context.Context, req domain.CheckoutCreateRequest) (domain.ExtendedCheckout, error) {
	lines := normalizeLines(req.Items)
	if len(lines) == 0 {
		return domain.ExtendedCheckout{}, fmt.Errorf("%w: no items to check out", store.ErrValidation)
	}
	checkedOutBy := strings.TrimSpace(req.CheckedOutBy)
	if checkedOutBy == "" {
		return domain.ExtendedCheckout{}, fmt.Errorf("%w: checked_out_by is required", store.ErrValidation)
	}

	var expectedReturn *time.Time
	if strings.TrimSpace(req.ExpectedReturnDate) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(req.ExpectedReturnDate))
		if err != nil {
			return domain.ExtendedCheckout{}, fmt.Errorf("%w: expected_return_date must be YYYY-MM-DD", store.ErrValidation)
		}
		// End of the expected day: a checkout is not overdue during it.
		deadline := parsed.Add(24*time.Hour - time.Second)
		expectedReturn = &deadline
	}

	now := time.Now().UTC()
	details := make([]domain.CheckoutItemDetail, 0, len(lines))
	for _, line := range lines {
		item, err := s.repo.GetItemByBarcode(ctx, line.Barcode)
		if err != nil {
			return domain.ExtendedCheckout{}, fmt.Errorf("resolve barcode %s: %w", line.Barcode, err)
		}
		if item.Quantity < line.Quantity {
			return domain.ExtendedCheckout{}, fmt.Errorf("%w: %s has %d available, requested %d",
				store.ErrInsufficientStock, item.Barcode, item.Quantity, line.Quantity)
		}
		details = append(details, domain.CheckoutItemDetail{
			ItemID:            item.ID,
			Barcode:           item.Barcode,
			Name:              item.Name,
			Quantity:          line.Quantity,
			ReturnedQuantity:  0,
			RemainingQuantity: line.Quantity,
			ReturnStatus:      domain.ItemReturnStatusCheckedOut,
		})
	}

	checkout := domain.ExtendedCheckout{
		MasterBarcode:      domain.NewMasterBarcode(now),
		Items:              details,
		CheckedOutBy:       checkedOutBy,
		CheckedOutByEmail:  strings.ToLower(strings.TrimSpace(req.CheckedOutByEmail)),
		Purpose:            strings.TrimSpace(req.Purpose),
		CheckedOutDate:     now,
		ExpectedReturnDate: expectedReturn,
		ReturnHistory:      []domain.ReturnHistoryEntry{},
	}
	domain.RecalcTotals(&checkout, now)

	created, err := s.repo.CreateCheckout(ctx, checkout)
	if err != nil {
		return domain.ExtendedCheckout{}, err
	}

	s.logAudit(ctx, "checkout.create", "checkout", created.MasterBarcode,
		fmt.Sprintf("items=%d units=%d by=%s", len(created.Items), created.TotalItems, created.CheckedOutBy))

	if err := s.cache.Set(ctx, cacheKey(created.MasterBarcode), created, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: checkout cache set failed: %v", err)
	}
	return *created, nil
}

func (s *Service) GetCheckout(ctx context.Context, masterBarcode string) (domain.ExtendedCheckout, error) {
	masterBarcode = strings.TrimSpace(masterBarcode)
	if !domain.IsMasterBarcode(masterBarcode) {
		return domain.ExtendedCheckout{}, fmt.Errorf("%w: malformed master barcode %q", store.ErrValidation, masterBarcode)
	}

	if cached, ok, err := s.cache.Get(ctx, cacheKey(masterBarcode)); err != nil {
		log.Printf("[service] WARN: checkout cache get failed: %v", err)
	} else if ok {
		refreshed := *cached
		refreshed.Status = domain.DeriveStatus(refreshed.Items, refreshed.ExpectedReturnDate, time.Now().UTC())
		return refreshed, nil
	}

	checkout, err := s.repo.GetCheckoutByMasterBarcode(ctx, masterBarcode)
	if err != nil {
		return domain.ExtendedCheckout{}, fmt.Errorf("checkout %s: %w", masterBarcode, err)
	}

	if err := s.cache.Set(ctx, cacheKey(masterBarcode), checkout, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: checkout cache set failed: %v", err)
	}

	result := *checkout
	result.Status = domain.DeriveStatus(result.Items, result.ExpectedReturnDate, time.Now().UTC())
	return result, nil
}

func (s *Service) ListCheckouts(ctx context.Context, filter domain.CheckoutFilter) ([]domain.ExtendedCheckout, error) {
	checkouts, err := s.repo.ListCheckouts(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for i := range checkouts {
		checkouts[i].Status = domain.DeriveStatus(checkouts[i].Items, checkouts[i].ExpectedReturnDate, now)
	}

	return domain.FilterCheckouts(checkouts, filter), nil
}

// ApplyReturn reconciles a full or partial return against a checkout. The
// write is guarded by the version loaded here; a concurrent return in the
// gap surfaces as ErrConflict and the caller retries with fresh state.
func (s *Service) ApplyReturn(ctx context.Context, masterBarcode string, req domain.ReturnRequest) (domain.ExtendedCheckout, error) {
	masterBarcode = strings.TrimSpace(masterBarcode)
	if !domain.IsMasterBarcode(masterBarcode) {
		return domain.ExtendedCheckout{}, fmt.Errorf("%w: malformed master barcode %q", store.ErrValidation, masterBarcode)
	}

	checkout, err := s.repo.GetCheckoutByMasterBarcode(ctx, masterBarcode)
	if err != nil {
		return domain.ExtendedCheckout{}, fmt.Errorf("checkout %s: %w", masterBarcode, err)
	}
	if req.Version > 0 && req.Version != checkout.Version {
		return domain.ExtendedCheckout{}, fmt.Errorf("%w: request version %d, current %d", store.ErrConflict, req.Version, checkout.Version)
	}
	if checkout.RemainingItems == 0 {
		return domain.ExtendedCheckout{}, fmt.Errorf("%s: %w", masterBarcode, store.ErrAlreadyReturned)
	}

	planned, err := planReturnLines(*checkout, req)
	if err != nil {
		return domain.ExtendedCheckout{}, err
	}

	now := time.Now().UTC()
	updated := *checkout
	updated.Items = make([]domain.CheckoutItemDetail, len(checkout.Items))
	copy(updated.Items, checkout.Items)

	totalReturned := 0
	historyLines := make([]domain.ReturnLine, 0, len(planned))
	restock := make([]domain.StockAdjustment, 0, len(planned))
	for i := range updated.Items {
		qty, ok := planned[updated.Items[i].ItemID]
		if !ok {
			continue
		}
		updated.Items[i].ReturnedQuantity += qty
		updated.Items[i].RemainingQuantity -= qty
		if updated.Items[i].RemainingQuantity == 0 {
			updated.Items[i].ReturnStatus = domain.ItemReturnStatusReturned
			returnDate := now
			updated.Items[i].ReturnDate = &returnDate
		}
		totalReturned += qty
		historyLines = append(historyLines, domain.ReturnLine{
			ItemID:   updated.Items[i].ItemID,
			Name:     updated.Items[i].Name,
			Quantity: qty,
		})
		restock = append(restock, domain.StockAdjustment{ItemID: updated.Items[i].ItemID, Qty: qty})
	}
	if totalReturned == 0 {
		return domain.ExtendedCheckout{}, fmt.Errorf("%s: %w", masterBarcode, store.ErrNothingToReturn)
	}

	domain.RecalcTotals(&updated, now)

	entry := domain.ReturnHistoryEntry{
		ID:            xid.New("ret"),
		ReturnDate:    now,
		ReturnedBy:    returnedBy(ctx, req.ReturnedBy),
		ReturnType:    classifyReturn(updated.RemainingItems, len(historyLines)),
		ItemsReturned: totalReturned,
		Items:         historyLines,
		Notes:         strings.TrimSpace(req.Notes),
	}
	updated.ReturnHistory = append(append([]domain.ReturnHistoryEntry{}, checkout.ReturnHistory...), entry)

	persisted, err := s.repo.ApplyReturn(ctx, masterBarcode, checkout.Version, updated, restock)
	if err != nil {
		return domain.ExtendedCheckout{}, err
	}

	s.logAudit(ctx, "checkout.return", "checkout", masterBarcode,
		fmt.Sprintf("type=%s units=%d remaining=%d", entry.ReturnType, totalReturned, persisted.RemainingItems))

	if err := s.cache.Del(ctx, cacheKey(masterBarcode)); err != nil {
		log.Printf("[service] WARN: checkout cache invalidation failed: %v", err)
	}
	return *persisted, nil
}

// planReturnLines maps itemID -> quantity for this return call. A full
// return covers every remaining unit; a partial return validates each
// submitted line against its checkout line.
func planReturnLines(checkout domain.ExtendedCheckout, req domain.ReturnRequest) (map[string]int, error) {
	byID := make(map[string]domain.CheckoutItemDetail, len(checkout.Items))
	for _, detail := range checkout.Items {
		byID[detail.ItemID] = detail
	}

	switch req.ReturnType {
	case domain.ReturnTypeFull:
		planned := make(map[string]int, len(checkout.Items))
		for _, detail := range checkout.Items {
			if detail.RemainingQuantity > 0 {
				planned[detail.ItemID] = detail.RemainingQuantity
			}
		}
		if len(planned) == 0 {
			return nil, fmt.Errorf("%s: %w", checkout.MasterBarcode, store.ErrNothingToReturn)
		}
		return planned, nil

	case domain.ReturnTypePartial:
		if len(req.Items) == 0 {
			return nil, fmt.Errorf("%w: partial return requires item lines", store.ErrValidation)
		}
		planned := make(map[string]int, len(req.Items))
		for _, line := range req.Items {
			// Each submitted line must be positive on its own; duplicates
			// may not net each other out.
			if line.Quantity < 1 {
				return nil, fmt.Errorf("%w: return quantity for item %s must be positive", store.ErrValidation, line.ItemID)
			}
			planned[line.ItemID] += line.Quantity
		}
		for itemID, qty := range planned {
			detail, ok := byID[itemID]
			if !ok {
				return nil, fmt.Errorf("%w: item %s is not part of checkout %s", store.ErrNotFound, itemID, checkout.MasterBarcode)
			}
			if qty > detail.RemainingQuantity {
				return nil, fmt.Errorf("%w: return quantity %d exceeds remaining %d for %s",
					store.ErrValidation, qty, detail.RemainingQuantity, detail.Barcode)
			}
		}
		return planned, nil

	default:
		return nil, fmt.Errorf("%w: return_type must be %q or %q", store.ErrValidation, domain.ReturnTypeFull, domain.ReturnTypePartial)
	}
}

// classifyReturn names the net effect of one return call: clearing the
// checkout is "full", a single line short of clearing is "individual",
// anything else is "partial".
func classifyReturn(remainingAfter int, lineCount int) string {
	switch {
	case remainingAfter == 0:
		return domain.ReturnTypeFull
	case lineCount == 1:
		return domain.ReturnTypeIndividual
	default:
		return domain.ReturnTypePartial
	}
}

// SweepOverdue persists the overdue status for active checkouts whose
// expected return date has passed. Version conflicts are skipped; a return
// racing the sweep already rewrote the status.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	checkouts, err := s.repo.ListCheckouts(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	flagged := 0
	for _, checkout := range checkouts {
		if checkout.Status != domain.CheckoutStatusActive {
			continue
		}
		if domain.DeriveStatus(checkout.Items, checkout.ExpectedReturnDate, now) != domain.CheckoutStatusOverdue {
			continue
		}
		if _, err := s.repo.UpdateCheckoutStatus(ctx, checkout.MasterBarcode, checkout.Version, domain.CheckoutStatusOverdue); err != nil {
			log.Printf("[service] WARN: overdue sweep skipped %s: %v", checkout.MasterBarcode, err)
			continue
		}
		if err := s.cache.Del(ctx, cacheKey(checkout.MasterBarcode)); err != nil {
			log.Printf("[service] WARN: checkout cache invalidation failed: %v", err)
		}
		flagged++
	}

	if flagged > 0 {
		s.logAudit(ctx, "checkout.overdue-sweep", "checkout", "", fmt.Sprintf("flagged=%d", flagged))
	}
	return flagged, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, date string, limit int) ([]domain.AuditLog, error) {
	from, err := dayStart(date)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAuditLogs(ctx, from, from.Add(24*time.Hour), limit)
}

// ActivityReport summarizes one day: checkouts opened and units returned
// that day, plus current status counts and units still out across the board.
func (s *Service) ActivityReport(ctx context.Context, date string) (domain.ActivityReport, error) {
	from, err := dayStart(date)
	if err != nil {
		return domain.ActivityReport{}, err
	}
	to := from.Add(24 * time.Hour)

	checkouts, err := s.repo.ListCheckouts(ctx)
	if err != nil {
		return domain.ActivityReport{}, err
	}

	now := time.Now().UTC()
	report := domain.ActivityReport{Date: from.Format("2006-01-02")}
	for _, checkout := range checkouts {
		if !checkout.CheckedOutDate.Before(from) && checkout.CheckedOutDate.Before(to) {
			report.Checkouts++
		}
		switch domain.DeriveStatus(checkout.Items, checkout.ExpectedReturnDate, now) {
		case domain.CheckoutStatusActive:
			report.Active++
		case domain.CheckoutStatusPartialReturn:
			report.PartialReturns++
		case domain.CheckoutStatusFullyReturned:
			report.FullyReturned++
		case domain.CheckoutStatusOverdue:
			report.Overdue++
		}
		report.UnitsOut += checkout.RemainingItems
		for _, entry := range checkout.ReturnHistory {
			if !entry.ReturnDate.Before(from) && entry.ReturnDate.Before(to) {
				report.UnitsReturned += entry.ItemsReturned
			}
		}
	}
	return report, nil
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, _ := ActorFromContext(ctx)
	err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ActorUsername: defaultString(actor.Username, "system"),
		ActorRole:     defaultString(actor.Role, "system"),
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
	})
	if err != nil {
		log.Printf("[service] WARN: audit log failed for %s: %v", action, err)
	}
}

func returnedBy(ctx context.Context, requested string) string {
	if trimmed := strings.TrimSpace(requested); trimmed != "" {
		return trimmed
	}
	if actor, ok := ActorFromContext(ctx); ok && actor.Username != "" {
		return actor.Username
	}
	return "unknown"
}

// normalizeLines trims barcodes, drops blank lines, and merges duplicate
// barcodes by summing their quantities.
func normalizeLines(lines []domain.CheckoutLine) []domain.CheckoutLine {
	merged := make(map[string]int, len(lines))
	order := make([]string, 0, len(lines))
	for _, line := range lines {
		barcode := strings.TrimSpace(line.Barcode)
		if barcode == "" || line.Quantity < 1 {
			continue
		}
		if _, seen := merged[barcode]; !seen {
			order = append(order, barcode)
		}
		merged[barcode] += line.Quantity
	}

	result := make([]domain.CheckoutLine, 0, len(order))
	for _, barcode := range order {
		result = append(result, domain.CheckoutLine{Barcode: barcode, Quantity: merged[barcode]})
	}
	return result
}

func dayStart(date string) (time.Time, error) {
	day := time.Now().UTC()
	if strings.TrimSpace(date) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(date))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrValidation)
		}
		day = parsed
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC), nil
}

func cacheKey(masterBarcode string) string {
	return "checkout:" + masterBarcode
}

func defaultString(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
