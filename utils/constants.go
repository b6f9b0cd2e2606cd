package utils

const (
	// Storage
	TransactionNamespacePrefix = "ledger:transactions:"

	// Defaults
	DefaultExpenseDescription = "Shared expense"
	DefaultPaymentDescription = "Payment"

	// HTTP status messages
	ErrInvalidRequest        = "Invalid request"
	ErrUserIDRequired        = "User ID is required"
	ErrFailedToExport        = "Failed to export ledger"
	ErrInvalidCategory       = "Invalid category"
	ErrInvalidStatus         = "Invalid transaction status"
	ErrInvalidType           = "Invalid transaction type"
	ErrSelfTransfer          = "Cannot transfer to yourself"
	ErrTransactionNotPending = "Only pending transactions can change status"

	// Precision for monetary calculations
	MoneyDecimalPlaces = 2

	// SettleEpsilon is the tolerance under which a balance counts as settled
	SettleEpsilon = 0.01

	// MaxTransactionAmount caps a single amount so balance sums stay finite
	MaxTransactionAmount = 1e12
)

// TransactionNamespace returns the storage key holding a user's transactions
func TransactionNamespace(userID string) string {
	return TransactionNamespacePrefix + userID
}
