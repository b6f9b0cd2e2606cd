package services

import (
	"math"
	"sort"

	"github.com/fadhlanhapp/taskaloop-ledger/models"
	"github.com/fadhlanhapp/taskaloop-ledger/utils"
)

// SettlementService turns balances into suggested transfers
type SettlementService struct{}

// NewSettlementService creates a new settlement service
func NewSettlementService() *SettlementService {
	return &SettlementService{}
}

// Recommend proposes transfers that bring every net balance to zero.
//
// Debtors are walked most-negative first and creditors most-positive first,
// matching each pair for the smaller of the two outstanding amounts. Ties keep
// the input order. The input slice is not modified.
func (s *SettlementService) Recommend(balances []models.UserBalance) []models.SettlementRecommendation {
	debtors := s.extractDebtors(balances)
	creditors := s.extractCreditors(balances)

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].NetBalance < debtors[j].NetBalance
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].NetBalance > creditors[j].NetBalance
	})

	return s.generateSettlements(debtors, creditors)
}

// extractDebtors copies users who owe money.
// Non-finite balances cannot be settled and are skipped.
func (s *SettlementService) extractDebtors(balances []models.UserBalance) []models.UserBalance {
	var debtors []models.UserBalance
	for _, balance := range balances {
		if balance.NetBalance < 0 && utils.IsFinite(balance.NetBalance) {
			debtors = append(debtors, balance)
		}
	}
	return debtors
}

// extractCreditors copies users who are owed money, skipping non-finite balances
func (s *SettlementService) extractCreditors(balances []models.UserBalance) []models.UserBalance {
	var creditors []models.UserBalance
	for _, balance := range balances {
		if balance.NetBalance > 0 && utils.IsFinite(balance.NetBalance) {
			creditors = append(creditors, balance)
		}
	}
	return creditors
}

// generateSettlements runs the two-cursor merge over the sorted working copies
func (s *SettlementService) generateSettlements(debtors, creditors []models.UserBalance) []models.SettlementRecommendation {
	recommendations := []models.SettlementRecommendation{}

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := utils.Min(math.Abs(debtor.NetBalance), creditor.NetBalance)

		// Sub-cent leftovers still move the cursors but are not worth a transfer
		if rounded := utils.Round(amount); rounded > 0 {
			recommendations = append(recommendations, models.SettlementRecommendation{
				From:   models.UserRef{ID: debtor.UserID, Name: debtor.UserName},
				To:     models.UserRef{ID: creditor.UserID, Name: creditor.UserName},
				Amount: rounded,
			})
		}

		debtor.NetBalance += amount
		creditor.NetBalance -= amount

		if utils.IsSettled(debtor.NetBalance) {
			i++
		}
		if utils.IsSettled(creditor.NetBalance) {
			j++
		}
	}

	return recommendations
}
