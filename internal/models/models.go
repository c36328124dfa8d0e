package models

import (
	"time"
)

// Collection keys. Each key holds one JSON document in the store.
const (
	KeyUsers     = "users"
	KeyInventory = "inventory"
	KeyRepairs   = "repairs"
	KeySales     = "sales"
	KeyDues      = "dues"
	KeySettings  = "settings"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User - The person operating the shop counter
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Password  string     `json:"password"` // bcrypt hash; legacy imports may hold plaintext
	Role      Role       `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Product - The Inventory
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	CostPrice    float64   `json:"costPrice"`
	SellingPrice float64   `json:"sellingPrice"`
	Stock        int       `json:"stock"`
	MinStock     int       `json:"minStock"`
	Supplier     string    `json:"supplier"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsLowStock reports whether the product is at or below its reorder threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// SaleItem - one cart line, a snapshot of the price at the time of sale
type SaleItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

// Sale - The Transaction Header. Immutable once written; the linked Due
// carries any later payments.
type Sale struct {
	ID             string       `json:"id"`
	BillNumber     string       `json:"billNumber"`
	CustomerName   string       `json:"customerName"`
	CustomerPhone  string       `json:"customerPhone"`
	Items          []SaleItem   `json:"items"`
	Subtotal       float64      `json:"subtotal"`
	Discount       float64      `json:"discount"`
	DiscountType   DiscountType `json:"discountType"`
	DiscountAmount float64      `json:"discountAmount"`
	Total          float64      `json:"total"`
	PaymentMethod  string       `json:"paymentMethod"`
	PaidAmount     float64      `json:"paidAmount"`
	DueAmount      float64      `json:"dueAmount"`
	CreatedAt      time.Time    `json:"createdAt"`
}

type RepairStatus string

const (
	RepairPending    RepairStatus = "pending"
	RepairInProgress RepairStatus = "in-progress"
	RepairCompleted  RepairStatus = "completed"
	RepairDelivered  RepairStatus = "delivered"
)

// Valid reports whether s is one of the known repair states.
func (s RepairStatus) Valid() bool {
	switch s {
	case RepairPending, RepairInProgress, RepairCompleted, RepairDelivered:
		return true
	}
	return false
}

// Repair - a device job card
type Repair struct {
	ID            string       `json:"id"`
	BillNumber    string       `json:"billNumber"`
	CustomerName  string       `json:"customerName"`
	CustomerPhone string       `json:"customerPhone"`
	DeviceType    string       `json:"deviceType"`
	DeviceModel   string       `json:"deviceModel"`
	Issue         string       `json:"issue"`
	EstimatedCost float64      `json:"estimatedCost"`
	AdvanceAmount float64      `json:"advanceAmount"`
	DueAmount     float64      `json:"dueAmount"`
	Status        RepairStatus `json:"status"`
	Notes         string       `json:"notes"`
	CreatedAt     time.Time    `json:"createdAt"`
	PaymentMethod string       `json:"paymentMethod,omitempty"`
}

type DueType string

const (
	DueFromSale   DueType = "sale"
	DueFromRepair DueType = "repair"
)

// Payment - one entry in a due's payment history
type Payment struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
	Method string    `json:"method"`
}

// Due - outstanding balance against a sale or repair bill. ID is the id of
// the originating record.
type Due struct {
	ID             string    `json:"id"`
	CustomerName   string    `json:"customerName"`
	CustomerPhone  string    `json:"customerPhone"`
	OriginalAmount float64   `json:"originalAmount"`
	PaidAmount     float64   `json:"paidAmount"`
	DueAmount      float64   `json:"dueAmount"`
	Type           DueType   `json:"type"`
	BillNumber     string    `json:"billNumber"`
	CreatedAt      time.Time `json:"createdAt"`
	Payments       []Payment `json:"payments"`
}

// OriginRef names the record a due was raised against.
type OriginRef struct {
	Kind DueType `json:"kind"`
	ID   string  `json:"id"`
}

// Origin returns the typed reference to the sale or repair behind d.
func (d Due) Origin() OriginRef {
	return OriginRef{Kind: d.Type, ID: d.ID}
}

// Outstanding reports whether anything is left to collect.
func (d Due) Outstanding() bool {
	return d.DueAmount > 0
}

// Settings - shop details printed on bills and backup preferences
type Settings struct {
	ShopName     string `json:"shopName" validate:"required"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Email        string `json:"email" validate:"omitempty,email"`
	Footer       string `json:"footer"`
	PrinterWidth string `json:"printerWidth" validate:"oneof=58mm 80mm"`
	AutoBackup   bool   `json:"autoBackup"`
}

// DefaultSettings is what a fresh shop starts with.
func DefaultSettings() Settings {
	return Settings{
		ShopName:     "Mobile Repair & Electronics",
		Address:      "123 Main Street, City",
		Phone:        "+91 9876543210",
		Email:        "info@mobilerepair.com",
		Footer:       "Thank you for your business!",
		PrinterWidth: "58mm",
		AutoBackup:   true,
	}
}

// Session identifies the acting user of a request.
type Session struct {
	UserID   string
	Username string
	Role     Role
}

// IsAdmin reports whether the session may use admin-only operations.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
