// models/models.go
package models

import "time"

// TransactionType distinguishes expenses from debt repayments
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypePayment TransactionType = "payment"
)

// TransactionStatus is the lifecycle state of a transaction.
// Only completed transactions count toward balances.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Category tags a transaction for spending breakdowns
type Category string

const (
	CategoryFood           Category = "food"
	CategoryGroceries      Category = "groceries"
	CategoryHousehold      Category = "household"
	CategoryUtilities      Category = "utilities"
	CategoryRent           Category = "rent"
	CategoryTransportation Category = "transportation"
	CategoryEntertainment  Category = "entertainment"
	CategoryPersonal       Category = "personal"
	CategoryMedical        Category = "medical"
	CategoryOther          Category = "other"
)

// Categories lists every known category in display order
var Categories = []Category{
	CategoryFood,
	CategoryGroceries,
	CategoryHousehold,
	CategoryUtilities,
	CategoryRent,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryPersonal,
	CategoryMedical,
	CategoryOther,
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction is a single ledger record.
//
// For expenses, ToUser fronted the money and FromUser owes it.
// For payments, FromUser sends money to ToUser.
type Transaction struct {
	ID           string            `json:"id"`
	TripID       string            `json:"tripId,omitempty"`
	Timestamp    int64             `json:"timestamp"`
	Amount       float64           `json:"amount"`
	Type         TransactionType   `json:"type"`
	FromUserID   string            `json:"fromUserId"`
	FromUserName string            `json:"fromUserName"`
	ToUserID     string            `json:"toUserId"`
	ToUserName   string            `json:"toUserName"`
	Description  string            `json:"description"`
	Status       TransactionStatus `json:"status"`
	IsSplit      bool              `json:"isSplit,omitempty"`
	Category     Category          `json:"category,omitempty"`
}

// CreatedAt returns the creation time of the transaction
func (t *Transaction) CreatedAt() time.Time {
	return time.UnixMilli(t.Timestamp)
}

// Involves reports whether userID is either party of the transaction
func (t *Transaction) Involves(userID string) bool {
	return t.FromUserID == userID || t.ToUserID == userID
}

// TransactionPatch holds the fields a stored transaction may change.
// Nil fields are left untouched.
type TransactionPatch struct {
	Status   *TransactionStatus
	Category *Category
}

// Apply merges the patch into t
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
}

// UserRef identifies a party by id and display name
type UserRef struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name"`
}

// UserBalance is the derived balance for one user. It is never persisted.
type UserBalance struct {
	UserID     string  `json:"userId"`
	UserName   string  `json:"userName"`
	TotalSpent float64 `json:"totalSpent"`
	OwesAmount float64 `json:"owesAmount"`
	OwedAmount float64 `json:"owedAmount"`
	// NetBalance is OwedAmount - OwesAmount; positive means others owe this user
	NetBalance float64 `json:"netBalance"`
}

// SettlementRecommendation is a suggested transfer between two users
type SettlementRecommendation struct {
	From   UserRef `json:"from"`
	To     UserRef `json:"to"`
	Amount float64 `json:"amount"`
}

// LedgerSummary bundles balances with the transfers that would settle them
type LedgerSummary struct {
	Balances        []UserBalance              `json:"balances"`
	Recommendations []SettlementRecommendation `json:"recommendations"`
}

// CategorySummary totals completed expenses for one category
type CategorySummary struct {
	Category Category `json:"category"`
	Total    float64  `json:"total"`
	Count    int      `json:"count"`
}

// TransactionFilter narrows a transaction listing. Zero values match everything.
type TransactionFilter struct {
	Status   TransactionStatus
	Type     TransactionType
	TripID   string
	Category Category
	UserID   string
}

// Matches reports whether t passes every non-empty criterion
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.TripID != "" && t.TripID != f.TripID {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.UserID != "" && !t.Involves(f.UserID) {
		return false
	}
	return true
}

// PendingReminder describes a payment still awaiting confirmation
type PendingReminder struct {
	Namespace     string        `json:"namespace"`
	TransactionID string        `json:"transactionId"`
	From          UserRef       `json:"from"`
	To            UserRef       `json:"to"`
	Amount        float64       `json:"amount"`
	Age           time.Duration `json:"age"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}
