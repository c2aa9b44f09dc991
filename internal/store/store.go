package store

import (
	"context"
	"errors"
	"time"

	"equiptrack/backend/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("version conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNothingToReturn   = errors.New("nothing to return")
	ErrAlreadyReturned   = errors.New("checkout already fully returned")
)

type Repository interface {
	ListItems(ctx context.Context) ([]domain.InventoryItem, error)
	CreateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	GetItemByBarcode(ctx context.Context, barcode string) (*domain.InventoryItem, error)
	UpdateItem(ctx context.Context, item domain.InventoryItem) (*domain.InventoryItem, error)
	AdjustItemQuantity(ctx context.Context, itemID string, delta int) (*domain.InventoryItem, error)

	CreateCheckout(ctx context.Context, checkout domain.ExtendedCheckout) (*domain.ExtendedCheckout, error)
	GetCheckoutByMasterBarcode(ctx context.Context, masterBarcode string) (*domain.ExtendedCheckout, error)
	ListCheckouts(ctx context.Context) ([]domain.ExtendedCheckout, error)
	// ApplyReturn persists the updated checkout and restocks the returned
	// quantities in one atomic step. The write succeeds only when the stored
	// version equals expectedVersion; otherwise ErrConflict is returned and
	// nothing changes.
	ApplyReturn(ctx context.Context, masterBarcode string, expectedVersion int, updated domain.ExtendedCheckout, restock []domain.StockAdjustment) (*domain.ExtendedCheckout, error)
	UpdateCheckoutStatus(ctx context.Context, masterBarcode string, expectedVersion int, status string) (*domain.ExtendedCheckout, error)

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
