package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fadhlanhapp/taskaloop-ledger/models"
	"github.com/fadhlanhapp/taskaloop-ledger/services"
	"github.com/fadhlanhapp/taskaloop-ledger/utils"
)

// LedgerHandler handles ledger-related HTTP requests
type LedgerHandler struct {
	ledgerService *services.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// AddExpense handles POST /users/:userId/expenses
func (h *LedgerHandler) AddExpense(c *gin.Context) {
	var req models.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	tx, err := h.ledgerService.AddExpense(c.Request.Context(), c.Param("userId"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleCreated(c, tx)
}

// AddPayment handles POST /users/:userId/payments
func (h *LedgerHandler) AddPayment(c *gin.Context) {
	var req models.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	tx, err := h.ledgerService.AddPayment(c.Request.Context(), c.Param("userId"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleCreated(c, tx)
}

// ConfirmTransaction handles POST /users/:userId/transactions/:id/confirm
func (h *LedgerHandler) ConfirmTransaction(c *gin.Context) {
	tx, err := h.ledgerService.Confirm(c.Request.Context(), c.Param("userId"), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, tx)
}

// CancelTransaction handles POST /users/:userId/transactions/:id/cancel
func (h *LedgerHandler) CancelTransaction(c *gin.Context) {
	tx, err := h.ledgerService.Cancel(c.Request.Context(), c.Param("userId"), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, tx)
}

// SetCategory handles PATCH /users/:userId/transactions/:id/category
func (h *LedgerHandler) SetCategory(c *gin.Context) {
	var req models.SetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.NewBadRequestError(utils.ErrInvalidRequest))
		return
	}

	tx, err := h.ledgerService.SetCategory(c.Request.Context(), c.Param("userId"), c.Param("id"), req.Category)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, tx)
}

// ListTransactions handles GET /users/:userId/transactions
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	transactions, err := h.ledgerService.ListTransactions(c.Request.Context(), c.Param("userId"), filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, transactions)
}

// GetBalances handles GET /users/:userId/balances
func (h *LedgerHandler) GetBalances(c *gin.Context) {
	balances, err := h.ledgerService.CalculateBalances(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, balances)
}

// GetSettlements handles GET /users/:userId/settlements
func (h *LedgerHandler) GetSettlements(c *gin.Context) {
	summary, err := h.ledgerService.Summary(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, summary)
}

// GetCategories handles GET /users/:userId/categories
func (h *LedgerHandler) GetCategories(c *gin.Context) {
	breakdown, err := h.ledgerService.CategoryBreakdown(c.Request.Context(), c.Param("userId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleSuccess(c, breakdown)
}

func parseFilter(c *gin.Context) (models.TransactionFilter, error) {
	filter := models.TransactionFilter{
		Status:   models.TransactionStatus(c.Query("status")),
		Type:     models.TransactionType(c.Query("type")),
		TripID:   c.Query("tripId"),
		Category: models.Category(c.Query("category")),
		UserID:   c.Query("participant"),
	}

	switch filter.Status {
	case "", models.StatusPending, models.StatusCompleted, models.StatusCancelled:
	default:
		return filter, utils.NewValidationError(utils.ErrInvalidStatus)
	}

	switch filter.Type {
	case "", models.TransactionTypeExpense, models.TransactionTypePayment:
	default:
		return filter, utils.NewValidationError(utils.ErrInvalidType)
	}

	if filter.Category != "" && !filter.Category.Valid() {
		return filter, utils.NewValidationError(utils.ErrInvalidCategory)
	}

	return filter, nil
}
