package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fadhlanhapp/taskaloop-ledger/models"
	"github.com/fadhlanhapp/taskaloop-ledger/utils"
)

// TransactionStore is the persistence the ledger needs.
// *repository.TransactionRepository satisfies it.
type TransactionStore interface {
	Load(ctx context.Context, userID string) ([]models.Transaction, error)
	Add(ctx context.Context, userID string, tx models.Transaction) (*models.Transaction, error)
	UpdateWhere(ctx context.Context, userID, id string, patch models.TransactionPatch, guard func(*models.Transaction) error) (*models.Transaction, error)
}

// LedgerService records expenses and payments and derives balances from them
type LedgerService struct {
	store       TransactionStore
	settlements *SettlementService
	now         func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store TransactionStore) *LedgerService {
	return &LedgerService{
		store:       store,
		settlements: NewSettlementService(),
		now:         time.Now,
	}
}

// AddExpense records money fronted by req.To on behalf of req.From.
// Expenses are completed as soon as they are recorded.
func (s *LedgerService) AddExpense(ctx context.Context, userID string, req *models.AddExpenseRequest) (*models.Transaction, error) {
	if err := s.validateTransfer(userID, req.From, req.To, req.Amount, req.Category); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = utils.DefaultExpenseDescription
	}

	tx := models.Transaction{
		TripID:       strings.TrimSpace(req.TripID),
		Timestamp:    s.now().UnixMilli(),
		Amount:       req.Amount,
		Type:         models.TransactionTypeExpense,
		FromUserID:   strings.TrimSpace(req.From.ID),
		FromUserName: utils.DisplayName(req.From.Name, req.From.ID),
		ToUserID:     strings.TrimSpace(req.To.ID),
		ToUserName:   utils.DisplayName(req.To.Name, req.To.ID),
		Description:  description,
		Status:       models.StatusCompleted,
		IsSplit:      req.IsSplit,
		Category:     req.Category,
	}

	stored, err := s.store.Add(ctx, userID, tx)
	if err != nil {
		return nil, fmt.Errorf("add expense: %w", err)
	}

	s.logTransaction("Expense recorded", userID, stored)
	return stored, nil
}

// AddPayment initiates a repayment from req.From to req.To.
// The payment stays pending until confirmed and does not affect balances before that.
func (s *LedgerService) AddPayment(ctx context.Context, userID string, req *models.AddPaymentRequest) (*models.Transaction, error) {
	if err := s.validateTransfer(userID, req.From, req.To, req.Amount, req.Category); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = utils.DefaultPaymentDescription
	}

	tx := models.Transaction{
		Timestamp:    s.now().UnixMilli(),
		Amount:       req.Amount,
		Type:         models.TransactionTypePayment,
		FromUserID:   strings.TrimSpace(req.From.ID),
		FromUserName: utils.DisplayName(req.From.Name, req.From.ID),
		ToUserID:     strings.TrimSpace(req.To.ID),
		ToUserName:   utils.DisplayName(req.To.Name, req.To.ID),
		Description:  description,
		Status:       models.StatusPending,
		Category:     req.Category,
	}

	stored, err := s.store.Add(ctx, userID, tx)
	if err != nil {
		return nil, fmt.Errorf("add payment: %w", err)
	}

	s.logTransaction("Payment initiated", userID, stored)
	return stored, nil
}

// Confirm completes a pending transaction
func (s *LedgerService) Confirm(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return s.transition(ctx, userID, id, models.StatusCompleted)
}

// Cancel cancels a pending transaction
func (s *LedgerService) Cancel(ctx context.Context, userID, id string) (*models.Transaction, error) {
	return s.transition(ctx, userID, id, models.StatusCancelled)
}

func (s *LedgerService) transition(ctx context.Context, userID, id string, status models.TransactionStatus) (*models.Transaction, error) {
	if err := utils.ValidateRequired(userID, "user id"); err != nil {
		return nil, err
	}

	requirePending := func(tx *models.Transaction) error {
		if tx.Status != models.StatusPending {
			return utils.NewConflictError(utils.ErrTransactionNotPending)
		}
		return nil
	}

	updated, err := s.store.UpdateWhere(ctx, userID, id, models.TransactionPatch{Status: &status}, requirePending)
	if err != nil {
		return nil, fmt.Errorf("mark transaction %s: %w", status, err)
	}
	if updated == nil {
		return nil, utils.NewNotFoundError("Transaction")
	}

	s.logTransaction("Transaction status changed", userID, updated)
	return updated, nil
}

// SetCategory recategorizes a transaction regardless of its status
func (s *LedgerService) SetCategory(ctx context.Context, userID, id string, category models.Category) (*models.Transaction, error) {
	if err := utils.ValidateRequired(userID, "user id"); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, utils.NewValidationError(utils.ErrInvalidCategory)
	}

	updated, err := s.store.UpdateWhere(ctx, userID, id, models.TransactionPatch{Category: &category}, nil)
	if err != nil {
		return nil, fmt.Errorf("set category: %w", err)
	}
	if updated == nil {
		return nil, utils.NewNotFoundError("Transaction")
	}
	return updated, nil
}

// ListTransactions returns the transactions matching filter, newest first
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error) {
	transactions, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	matched := []models.Transaction{}
	for i := len(transactions) - 1; i >= 0; i-- {
		if filter.Matches(&transactions[i]) {
			matched = append(matched, transactions[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})
	return matched, nil
}

// CalculateBalances recomputes every user's balance from the stored transactions
func (s *LedgerService) CalculateBalances(ctx context.Context, userID string) ([]models.UserBalance, error) {
	transactions, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("calculate balances: %w", err)
	}
	return CalculateBalances(transactions), nil
}

// GetSettlementRecommendations suggests transfers that would settle all balances
func (s *LedgerService) GetSettlementRecommendations(ctx context.Context, userID string) ([]models.SettlementRecommendation, error) {
	balances, err := s.CalculateBalances(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.settlements.Recommend(balances), nil
}

// Summary returns balances and recommendations computed from one load
func (s *LedgerService) Summary(ctx context.Context, userID string) (*models.LedgerSummary, error) {
	balances, err := s.CalculateBalances(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.LedgerSummary{
		Balances:        balances,
		Recommendations: s.settlements.Recommend(balances),
	}, nil
}

// CategoryBreakdown totals completed expenses per category.
// Uncategorized expenses count as "other".
func (s *LedgerService) CategoryBreakdown(ctx context.Context, userID string) ([]models.CategorySummary, error) {
	transactions, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}

	totals := make(map[models.Category]*models.CategorySummary)
	for _, tx := range transactions {
		if tx.Type != models.TransactionTypeExpense || tx.Status != models.StatusCompleted {
			continue
		}

		category := tx.Category
		if category == "" {
			category = models.CategoryOther
		}

		summary, ok := totals[category]
		if !ok {
			summary = &models.CategorySummary{Category: category}
			totals[category] = summary
		}
		summary.Total += tx.Amount
		summary.Count++
	}

	breakdown := []models.CategorySummary{}
	for _, category := range models.Categories {
		if summary, ok := totals[category]; ok {
			summary.Total = utils.Round(summary.Total)
			breakdown = append(breakdown, *summary)
		}
	}
	return breakdown, nil
}

// validateTransfer enforces the preconditions shared by expenses and payments
func (s *LedgerService) validateTransfer(userID string, from, to models.UserRef, amount float64, category models.Category) error {
	if err := utils.ValidateRequired(userID, "user id"); err != nil {
		return err
	}
	if err := utils.ValidateRequired(from.ID, "from user"); err != nil {
		return err
	}
	if err := utils.ValidateRequired(to.ID, "to user"); err != nil {
		return err
	}
	if err := utils.ValidateDistinctParties(from.ID, to.ID); err != nil {
		return err
	}
	if err := utils.ValidatePositive(amount, "amount"); err != nil {
		return err
	}
	if category != "" && !category.Valid() {
		return utils.NewValidationError(utils.ErrInvalidCategory)
	}
	return nil
}

func (s *LedgerService) logTransaction(msg, userID string, tx *models.Transaction) {
	utils.Logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": tx.ID,
		"type":           tx.Type,
		"status":         tx.Status,
		"amount":         tx.Amount,
	}).Info(msg)
}
