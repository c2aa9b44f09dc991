package domain

import "time"

type InventoryItem struct {
	ID          string    `json:"id"`
	Barcode     string    `json:"barcode"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	Location    string    `json:"location"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ItemCreateRequest struct {
	Barcode     string `json:"barcode"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"min_quantity"`
	Location    string `json:"location"`
}

type ItemUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	MinQuantity *int    `json:"min_quantity,omitempty"`
	Location    *string `json:"location,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

type ItemAdjustRequest struct {
	Delta         int    `json:"delta"`
	Reason        string `json:"reason"`
	SupervisorPIN string `json:"supervisor_pin"`
}

// CheckoutItemDetail is one item line inside a bulk checkout. The quantity
// split must always satisfy Quantity == ReturnedQuantity + RemainingQuantity.
type CheckoutItemDetail struct {
	ItemID            string     `json:"item_id"`
	Barcode           string     `json:"barcode"`
	Name              string     `json:"name"`
	Quantity          int        `json:"quantity"`
	ReturnedQuantity  int        `json:"returned_quantity"`
	RemainingQuantity int        `json:"remaining_quantity"`
	ReturnStatus      string     `json:"return_status"`
	ReturnDate        *time.Time `json:"return_date,omitempty"`
}

type ReturnLine struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ReturnHistoryEntry records one return event. Entries are append-only and
// never mutated after being written.
type ReturnHistoryEntry struct {
	ID            string       `json:"id"`
	ReturnDate    time.Time    `json:"return_date"`
	ReturnedBy    string       `json:"returned_by"`
	ReturnType    string       `json:"return_type"`
	ItemsReturned int          `json:"items_returned"`
	Items         []ReturnLine `json:"items"`
	Notes         string       `json:"notes,omitempty"`
}

// ExtendedCheckout is a bulk checkout identified by a single master barcode.
// Version increments on every successful write and guards concurrent returns.
type ExtendedCheckout struct {
	ID                 string               `json:"id"`
	MasterBarcode      string               `json:"master_barcode"`
	Items              []CheckoutItemDetail `json:"items"`
	TotalItems         int                  `json:"total_items"`
	ReturnedItems      int                  `json:"returned_items"`
	RemainingItems     int                  `json:"remaining_items"`
	Status             string               `json:"status"`
	CheckedOutBy       string               `json:"checked_out_by"`
	CheckedOutByEmail  string               `json:"checked_out_by_email"`
	Purpose            string               `json:"purpose,omitempty"`
	CheckedOutDate     time.Time            `json:"checked_out_date"`
	ExpectedReturnDate *time.Time           `json:"expected_return_date,omitempty"`
	ReturnHistory      []ReturnHistoryEntry `json:"return_history"`
	Version            int                  `json:"version"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

type CheckoutLine struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

type CheckoutCreateRequest struct {
	Items              []CheckoutLine `json:"items"`
	CheckedOutBy       string         `json:"checked_out_by"`
	CheckedOutByEmail  string         `json:"checked_out_by_email"`
	Purpose            string         `json:"purpose,omitempty"`
	ExpectedReturnDate string         `json:"expected_return_date,omitempty"`
}

type ReturnItemLine struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type ReturnRequest struct {
	ReturnType string           `json:"return_type"`
	Items      []ReturnItemLine `json:"items,omitempty"`
	ReturnedBy string           `json:"returned_by"`
	Notes      string           `json:"notes,omitempty"`
	Version    int              `json:"version,omitempty"`
}

type CheckoutResponse struct {
	Checkout ExtendedCheckout `json:"checkout"`
}

type CheckoutListResponse struct {
	Checkouts []ExtendedCheckout `json:"checkouts"`
}

// CheckoutFilter narrows listCheckouts results. Search matches are
// case-insensitive substrings; Status and OwnerEmail match exactly.
type CheckoutFilter struct {
	Status       string
	Search       string
	OwnerEmail   string
	MineFirst    bool
	CurrentEmail string
}

type StockAdjustment struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

type LowStockItem struct {
	Item    InventoryItem `json:"item"`
	Deficit int           `json:"deficit"`
}

type LowStockResponse struct {
	GeneratedAt string         `json:"generated_at"`
	Items       []LowStockItem `json:"items"`
}

type ActivityReport struct {
	Date           string `json:"date"`
	Checkouts      int    `json:"checkouts"`
	Active         int    `json:"active"`
	PartialReturns int    `json:"partial_returns"`
	FullyReturned  int    `json:"fully_returned"`
	Overdue        int    `json:"overdue"`
	UnitsOut       int    `json:"units_out"`
	UnitsReturned  int    `json:"units_returned"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Email    string
	Role     string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Email     string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	CheckoutStatusActive        = "active"
	CheckoutStatusPartialReturn = "partial-return"
	CheckoutStatusFullyReturned = "fully-returned"
	CheckoutStatusOverdue       = "overdue"
)

const (
	ItemReturnStatusCheckedOut = "checked-out"
	ItemReturnStatusReturned   = "returned"
)

const (
	ReturnTypeFull       = "full"
	ReturnTypePartial    = "partial"
	ReturnTypeIndividual = "individual"
)
