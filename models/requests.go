package models

// AddExpenseRequest records money fronted by To on behalf of From
type AddExpenseRequest struct {
	TripID      string   `json:"tripId"`
	From        UserRef  `json:"from"`
	To          UserRef  `json:"to"`
	Amount      float64  `json:"amount" binding:"required"`
	IsSplit     bool     `json:"isSplit"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// AddPaymentRequest initiates a repayment from From to To.
// The payment stays pending until confirmed.
type AddPaymentRequest struct {
	From        UserRef  `json:"from"`
	To          UserRef  `json:"to"`
	Amount      float64  `json:"amount" binding:"required"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// SetCategoryRequest recategorizes an existing transaction
type SetCategoryRequest struct {
	Category Category `json:"category" binding:"required"`
}
