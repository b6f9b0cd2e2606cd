package services

import (
	"github.com/fadhlanhapp/taskaloop-ledger/models"
)

// CalculateBalances folds completed transactions into per-user balances.
//
// Users appear in the order they are first seen in a completed transaction.
// Pending and cancelled transactions are ignored entirely.
//
// Expenses: the payer (ToUser) absorbs the amount into TotalSpent and is owed
// the debt; FromUser owes it. A split expense attributes half the amount as
// debt, otherwise the full amount.
//
// Payments: the sender (FromUser) absorbs the amount into TotalSpent and
// OwedAmount while the recipient's OwesAmount grows by the same amount, which
// offsets an earlier expense debt between the pair.
func CalculateBalances(transactions []models.Transaction) []models.UserBalance {
	balances := []models.UserBalance{}
	index := make(map[string]int)

	entry := func(userID, userName string) int {
		if i, ok := index[userID]; ok {
			return i
		}
		index[userID] = len(balances)
		balances = append(balances, models.UserBalance{UserID: userID, UserName: userName})
		return len(balances) - 1
	}

	for _, tx := range transactions {
		if tx.Status != models.StatusCompleted {
			continue
		}

		from := entry(tx.FromUserID, tx.FromUserName)
		to := entry(tx.ToUserID, tx.ToUserName)

		switch tx.Type {
		case models.TransactionTypeExpense:
			debt := tx.Amount
			if tx.IsSplit {
				debt = tx.Amount / 2
			}
			balances[to].TotalSpent += tx.Amount
			balances[from].OwesAmount += debt
			balances[to].OwedAmount += debt
		case models.TransactionTypePayment:
			balances[from].TotalSpent += tx.Amount
			balances[from].OwedAmount += tx.Amount
			balances[to].OwesAmount += tx.Amount
		}
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].OwedAmount - balances[i].OwesAmount
	}

	return balances
}
