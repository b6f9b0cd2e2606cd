package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadhlanhapp/taskaloop-ledger/models"
	"github.com/fadhlanhapp/taskaloop-ledger/repository"
)

var sweepTime = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func pendingPayment(from, to string, amount float64, age time.Duration) models.Transaction {
	return models.Transaction{
		Timestamp:    sweepTime.Add(-age).UnixMilli(),
		Amount:       amount,
		Type:         models.TransactionTypePayment,
		FromUserID:   from,
		FromUserName: "User " + from,
		ToUserID:     to,
		ToUserName:   "User " + to,
		Status:       models.StatusPending,
	}
}

func seed(t *testing.T, repo *repository.TransactionRepository, userID string, transactions ...models.Transaction) []string {
	t.Helper()

	ids := make([]string, 0, len(transactions))
	for _, tx := range transactions {
		stored, err := repo.Add(context.Background(), userID, tx)
		require.NoError(t, err)
		ids = append(ids, stored.ID)
	}
	return ids
}

func TestReminderJob_Run(t *testing.T) {
	repo := repository.NewTransactionRepository(repository.NewMemoryStore())

	stale := seed(t, repo, "alice",
		pendingPayment("alice", "bob", 20, 96*time.Hour),
		pendingPayment("alice", "carol", 5, time.Hour),
	)

	confirmed := pendingPayment("bob", "alice", 50, 200*time.Hour)
	confirmed.Status = models.StatusCompleted
	expense := pendingPayment("bob", "alice", 50, 200*time.Hour)
	expense.Type = models.TransactionTypeExpense
	bobStale := seed(t, repo, "bob", confirmed, expense, pendingPayment("bob", "dan", 12.5, 80*time.Hour))

	job := NewReminderJob(repo, 72*time.Hour)
	job.now = func() time.Time { return sweepTime }

	reminders, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 2)

	byID := make(map[string]models.PendingReminder)
	for _, r := range reminders {
		byID[r.TransactionID] = r
	}

	aliceReminder, ok := byID[stale[0]]
	require.True(t, ok)
	assert.Equal(t, "ledger:transactions:alice", aliceReminder.Namespace)
	assert.Equal(t, "bob", aliceReminder.To.ID)
	assert.Equal(t, 20.0, aliceReminder.Amount)
	assert.Equal(t, 96*time.Hour, aliceReminder.Age)

	bobReminder, ok := byID[bobStale[2]]
	require.True(t, ok)
	assert.Equal(t, "ledger:transactions:bob", bobReminder.Namespace)
	assert.Equal(t, "User dan", bobReminder.To.Name)
}

func TestReminderJob_RunEmpty(t *testing.T) {
	job := NewReminderJob(repository.NewTransactionRepository(repository.NewMemoryStore()), time.Hour)

	reminders, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, reminders)
	assert.Empty(t, reminders)
}

type flakySource struct {
	ledgers map[string][]models.Transaction
	listErr error
}

func (f *flakySource) UserIDs(context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []string{"broken", "ok"}, nil
}

func (f *flakySource) Load(_ context.Context, userID string) ([]models.Transaction, error) {
	transactions, ok := f.ledgers[userID]
	if !ok {
		return nil, errors.New("corrupt ledger")
	}
	return transactions, nil
}

func TestReminderJob_SkipsUnreadableLedgers(t *testing.T) {
	source := &flakySource{ledgers: map[string][]models.Transaction{
		"ok": {pendingPayment("ok", "bob", 9, 100*time.Hour)},
	}}

	job := NewReminderJob(source, 72*time.Hour)
	job.now = func() time.Time { return sweepTime }

	reminders, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "ledger:transactions:ok", reminders[0].Namespace)
}

func TestReminderJob_ListFailure(t *testing.T) {
	job := NewReminderJob(&flakySource{listErr: errors.New("db down")}, time.Hour)

	_, err := job.Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestReminderJob_Start(t *testing.T) {
	job := NewReminderJob(repository.NewTransactionRepository(repository.NewMemoryStore()), time.Hour)

	require.NoError(t, job.Start(""))
	assert.Nil(t, job.cron)

	assert.Error(t, job.Start("not a schedule"))

	require.NoError(t, job.Start("@every 1h"))
	assert.NotNil(t, job.cron)
	job.Stop()
	assert.Nil(t, job.cron)
}
