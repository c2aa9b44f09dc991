package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"equiptrack/backend/internal/domain"
	"equiptrack/backend/internal/store"
	"equiptrack/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, barcode, name, category, quantity, min_quantity, location, active, created_at, updated_at
		FROM items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.InventoryItem, 0, 128)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *Store) CreateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.Barcode == "" || item.Name == "" {
		return nil, fmt.Errorf("%w: barcode and name are required", store.ErrValidation)
	}
	if item.Quantity < 0 || item.MinQuantity < 0 {
		return nil, fmt.Errorf("%w: quantities must not be negative", store.ErrValidation)
	}

	if item.ID == "" {
		item.ID = xid.New("itm")
	}
	item.Active = true
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, barcode, name, category, quantity, min_quantity, location, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, item.ID, item.Barcode, item.Name, item.Category, item.Quantity, item.MinQuantity, item.Location, item.Active, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: barcode %s already exists", store.ErrValidation, item.Barcode)
		}
		return nil, err
	}

	created := item
	return &created, nil
}

func (s *Store) GetItemByBarcode(ctx context.Context, barcode string) (*domain.InventoryItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, barcode, name, category, quantity, min_quantity, location, active, created_at, updated_at
		FROM items
		WHERE barcode = $1 AND active = true
	`, barcode)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.ID == "" || item.Name == "" {
		return nil, fmt.Errorf("%w: id and name are required", store.ErrValidation)
	}
	if item.MinQuantity < 0 {
		return nil, fmt.Errorf("%w: min quantity must not be negative", store.ErrValidation)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET name = $2, category = $3, min_quantity = $4, location = $5, active = $6, updated_at = now()
		WHERE id = $1
	`, item.ID, item.Name, item.Category, item.MinQuantity, item.Location, item.Active)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := item
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}

func (s *Store) AdjustItemQuantity(ctx context.Context, itemID string, delta int) (*domain.InventoryItem, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	row := pgTx.QueryRowContext(ctx, `
		SELECT id, barcode, name, category, quantity, min_quantity, location, active, created_at, updated_at
		FROM items
		WHERE id = $1
		FOR UPDATE
	`, itemID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if item.Quantity+delta < 0 {
		return nil, fmt.Errorf("%w: quantity for %s would drop below zero", store.ErrValidation, item.Barcode)
	}

	_, err = pgTx.ExecContext(ctx, `
		UPDATE items
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
	`, itemID, delta)
	if err != nil {
		return nil, err
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	item.Quantity += delta
	item.UpdatedAt = time.Now().UTC()
	return &item, nil
}

// CreateCheckout decrements stock for every line and inserts the checkout in
// one serializable transaction. Any failed line rolls back the whole batch.
func (s *Store) CreateCheckout(ctx context.Context, checkout domain.ExtendedCheckout) (*domain.ExtendedCheckout, error) {
	if checkout.MasterBarcode == "" {
		return nil, fmt.Errorf("%w: master barcode is required", store.ErrValidation)
	}
	if len(checkout.Items) == 0 {
		return nil, fmt.Errorf("%w: no items to check out", store.ErrValidation)
	}

	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	ids := uniqueItemIDs(checkout.Items)
	stockRows, err := pgTx.QueryContext(ctx, `
		SELECT id, barcode, quantity, active
		FROM items
		WHERE id = ANY($1)
		FOR UPDATE
	`, ids)
	if err != nil {
		return nil, err
	}
	type stockState struct {
		barcode string
		qty     int
		active  bool
	}
	stockMap := make(map[string]stockState, len(ids))
	for stockRows.Next() {
		var id string
		var state stockState
		if err := stockRows.Scan(&id, &state.barcode, &state.qty, &state.active); err != nil {
			_ = stockRows.Close()
			return nil, err
		}
		stockMap[id] = state
	}
	if err := stockRows.Err(); err != nil {
		_ = stockRows.Close()
		return nil, err
	}
	_ = stockRows.Close()

	for _, line := range checkout.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %s must be positive", store.ErrValidation, line.Barcode)
		}
		state, exists := stockMap[line.ItemID]
		if !exists || !state.active {
			return nil, fmt.Errorf("%w: item %s", store.ErrNotFound, line.Barcode)
		}
		if state.qty < line.Quantity {
			return nil, fmt.Errorf("%w: %s has %d available, requested %d",
				store.ErrInsufficientStock, state.barcode, state.qty, line.Quantity)
		}

		_, err = pgTx.ExecContext(ctx, `
			UPDATE items
			SET quantity = quantity - $1, updated_at = now()
			WHERE id = $2
		`, line.Quantity, line.ItemID)
		if err != nil {
			return nil, err
		}
	}

	if checkout.ID == "" {
		checkout.ID = xid.New("chk")
	}
	now := time.Now().UTC()
	if checkout.CreatedAt.IsZero() {
		checkout.CreatedAt = now
	}
	checkout.UpdatedAt = now
	checkout.Version = 1

	_, err = pgTx.ExecContext(ctx, `
		INSERT INTO checkouts (
			id, master_barcode, total_items, returned_items, remaining_items, status,
			checked_out_by, checked_out_by_email, purpose, checked_out_date,
			expected_return_date, version, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, checkout.ID, checkout.MasterBarcode, checkout.TotalItems, checkout.ReturnedItems,
		checkout.RemainingItems, checkout.Status, checkout.CheckedOutBy,
		nullIfEmpty(checkout.CheckedOutByEmail), nullIfEmpty(checkout.Purpose),
		checkout.CheckedOutDate, nullTime(checkout.ExpectedReturnDate),
		checkout.Version, checkout.CreatedAt, checkout.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: master barcode %s already exists", store.ErrValidation, checkout.MasterBarcode)
		}
		return nil, err
	}

	for i, line := range checkout.Items {
		_, err := pgTx.ExecContext(ctx, `
			INSERT INTO checkout_items (
				checkout_id, line_no, item_id, barcode, name, quantity,
				returned_quantity, remaining_quantity, return_status, return_date
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, checkout.ID, i+1, line.ItemID, line.Barcode, line.Name, line.Quantity,
			line.ReturnedQuantity, line.RemainingQuantity, line.ReturnStatus, nullTime(line.ReturnDate))
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	return &checkout, nil
}

func (s *Store) GetCheckoutByMasterBarcode(ctx context.Context, masterBarcode string) (*domain.ExtendedCheckout, error) {
	checkout, err := scanCheckoutHeader(s.db.QueryRowContext(ctx, `
		SELECT id, master_barcode, total_items, returned_items, remaining_items, status,
		       checked_out_by, checked_out_by_email, purpose, checked_out_date,
		       expected_return_date, version, created_at, updated_at
		FROM checkouts
		WHERE master_barcode = $1
	`, masterBarcode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := s.loadCheckoutDetails(ctx, checkout); err != nil {
		return nil, err
	}
	return checkout, nil
}

func (s *Store) ListCheckouts(ctx context.Context) ([]domain.ExtendedCheckout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, master_barcode, total_items, returned_items, remaining_items, status,
		       checked_out_by, checked_out_by_email, purpose, checked_out_date,
		       expected_return_date, version, created_at, updated_at
		FROM checkouts
		ORDER BY checked_out_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checkouts := make([]domain.ExtendedCheckout, 0, 64)
	for rows.Next() {
		checkout, err := scanCheckoutHeader(rows)
		if err != nil {
			return nil, err
		}
		checkouts = append(checkouts, *checkout)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range checkouts {
		if err := s.loadCheckoutDetails(ctx, &checkouts[i]); err != nil {
			return nil, err
		}
	}
	return checkouts, nil
}

// ApplyReturn rewrites the checkout guarded by its version and restocks the
// returned quantities in the same transaction. RowsAffected zero on the
// version-guarded update means a concurrent writer won.
func (s *Store) ApplyReturn(ctx context.Context, masterBarcode string, expectedVersion int, updated domain.ExtendedCheckout, restock []domain.StockAdjustment) (*domain.ExtendedCheckout, error) {
	pgTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = pgTx.Rollback() }()

	now := time.Now().UTC()
	res, err := pgTx.ExecContext(ctx, `
		UPDATE checkouts
		SET total_items = $3, returned_items = $4, remaining_items = $5, status = $6,
		    version = version + 1, updated_at = $7
		WHERE master_barcode = $1 AND version = $2
	`, masterBarcode, expectedVersion, updated.TotalItems, updated.ReturnedItems,
		updated.RemainingItems, updated.Status, now)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if exists, err := s.checkoutExists(ctx, masterBarcode); err != nil {
			return nil, err
		} else if !exists {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("%w: checkout %s was modified concurrently", store.ErrConflict, masterBarcode)
	}

	for _, line := range updated.Items {
		_, err := pgTx.ExecContext(ctx, `
			UPDATE checkout_items
			SET returned_quantity = $3, remaining_quantity = $4, return_status = $5, return_date = $6
			WHERE checkout_id = $1 AND item_id = $2
		`, updated.ID, line.ItemID, line.ReturnedQuantity, line.RemainingQuantity,
			line.ReturnStatus, nullTime(line.ReturnDate))
		if err != nil {
			return nil, err
		}
	}

	if len(updated.ReturnHistory) > 0 {
		entry := updated.ReturnHistory[len(updated.ReturnHistory)-1]
		if entry.ID == "" {
			entry.ID = xid.New("ret")
		}
		lines, err := json.Marshal(entry.Items)
		if err != nil {
			return nil, err
		}
		_, err = pgTx.ExecContext(ctx, `
			INSERT INTO return_history (id, checkout_id, return_date, returned_by, return_type, items_returned, items, notes)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, entry.ID, updated.ID, entry.ReturnDate, entry.ReturnedBy, entry.ReturnType,
			entry.ItemsReturned, lines, nullIfEmpty(entry.Notes))
		if err != nil {
			return nil, err
		}
	}

	for _, adj := range restock {
		_, err := pgTx.ExecContext(ctx, `
			UPDATE items
			SET quantity = quantity + $1, updated_at = now()
			WHERE id = $2
		`, adj.Qty, adj.ItemID)
		if err != nil {
			return nil, err
		}
	}

	if err := pgTx.Commit(); err != nil {
		return nil, err
	}

	return s.GetCheckoutByMasterBarcode(ctx, masterBarcode)
}

func (s *Store) UpdateCheckoutStatus(ctx context.Context, masterBarcode string, expectedVersion int, status string) (*domain.ExtendedCheckout, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE checkouts
		SET status = $3, version = version + 1, updated_at = now()
		WHERE master_barcode = $1 AND version = $2
	`, masterBarcode, expectedVersion, status)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if exists, err := s.checkoutExists(ctx, masterBarcode); err != nil {
			return nil, err
		} else if !exists {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("%w: checkout %s was modified concurrently", store.ErrConflict, masterBarcode)
	}

	return s.GetCheckoutByMasterBarcode(ctx, masterBarcode)
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("aud")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType,
		nullIfEmpty(entry.EntityID), nullIfEmpty(entry.Detail), entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		var entityID, detail sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action,
			&entry.EntityType, &entityID, &detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.EntityID = entityID.String
		entry.Detail = detail.String
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return fmt.Errorf("%w: username and password are required", store.ErrValidation)
	}
	if user.Role == "" {
		user.Role = "staff"
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, email, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,now())
	`, user.Username, nullIfEmpty(user.Email), user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %s already exists", store.ErrValidation, user.Username)
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, email, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		var email sql.NullString
		if err := rows.Scan(&user.Username, &email, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.Email = email.String
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: username and password are required", store.ErrValidation)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users
		SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := row.Scan(&item.ID, &item.Barcode, &item.Name, &item.Category, &item.Quantity,
		&item.MinQuantity, &item.Location, &item.Active, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func scanCheckoutHeader(row rowScanner) (*domain.ExtendedCheckout, error) {
	var checkout domain.ExtendedCheckout
	var email, purpose sql.NullString
	var expected sql.NullTime
	err := row.Scan(&checkout.ID, &checkout.MasterBarcode, &checkout.TotalItems,
		&checkout.ReturnedItems, &checkout.RemainingItems, &checkout.Status,
		&checkout.CheckedOutBy, &email, &purpose, &checkout.CheckedOutDate,
		&expected, &checkout.Version, &checkout.CreatedAt, &checkout.UpdatedAt)
	if err != nil {
		return nil, err
	}

	checkout.CheckedOutByEmail = email.String
	checkout.Purpose = purpose.String
	checkout.CheckedOutDate = checkout.CheckedOutDate.UTC()
	checkout.CreatedAt = checkout.CreatedAt.UTC()
	checkout.UpdatedAt = checkout.UpdatedAt.UTC()
	if expected.Valid {
		e := expected.Time.UTC()
		checkout.ExpectedReturnDate = &e
	}
	return &checkout, nil
}

func (s *Store) loadCheckoutDetails(ctx context.Context, checkout *domain.ExtendedCheckout) error {
	itemRows, err := s.db.QueryContext(ctx, `
		SELECT item_id, barcode, name, quantity, returned_quantity, remaining_quantity, return_status, return_date
		FROM checkout_items
		WHERE checkout_id = $1
		ORDER BY line_no ASC
	`, checkout.ID)
	if err != nil {
		return err
	}
	defer itemRows.Close()

	checkout.Items = make([]domain.CheckoutItemDetail, 0, 8)
	for itemRows.Next() {
		var detail domain.CheckoutItemDetail
		var returnDate sql.NullTime
		if err := itemRows.Scan(&detail.ItemID, &detail.Barcode, &detail.Name, &detail.Quantity,
			&detail.ReturnedQuantity, &detail.RemainingQuantity, &detail.ReturnStatus, &returnDate); err != nil {
			return err
		}
		if returnDate.Valid {
			r := returnDate.Time.UTC()
			detail.ReturnDate = &r
		}
		checkout.Items = append(checkout.Items, detail)
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	historyRows, err := s.db.QueryContext(ctx, `
		SELECT id, return_date, returned_by, return_type, items_returned, items, notes
		FROM return_history
		WHERE checkout_id = $1
		ORDER BY return_date ASC
	`, checkout.ID)
	if err != nil {
		return err
	}
	defer historyRows.Close()

	checkout.ReturnHistory = make([]domain.ReturnHistoryEntry, 0, 4)
	for historyRows.Next() {
		var entry domain.ReturnHistoryEntry
		var lines []byte
		var notes sql.NullString
		if err := historyRows.Scan(&entry.ID, &entry.ReturnDate, &entry.ReturnedBy,
			&entry.ReturnType, &entry.ItemsReturned, &lines, &notes); err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := json.Unmarshal(lines, &entry.Items); err != nil {
				return err
			}
		}
		entry.ReturnDate = entry.ReturnDate.UTC()
		entry.Notes = notes.String
		checkout.ReturnHistory = append(checkout.ReturnHistory, entry)
	}
	return historyRows.Err()
}

func (s *Store) checkoutExists(ctx context.Context, masterBarcode string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM checkouts WHERE master_barcode = $1`, masterBarcode).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func uniqueItemIDs(lines []domain.CheckoutItemDetail) []string {
	set := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.ItemID == "" {
			continue
		}
		if _, seen := set[line.ItemID]; seen {
			continue
		}
		set[line.ItemID] = struct{}{}
		ids = append(ids, line.ItemID)
	}
	return ids
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}
