package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fadhlanhapp/taskaloop-ledger/models"
	"github.com/fadhlanhapp/taskaloop-ledger/utils"
)

const sweepTimeout = 45 * time.Second

// LedgerSource lists ledgers and loads their transactions.
// *repository.TransactionRepository satisfies it.
type LedgerSource interface {
	UserIDs(ctx context.Context) ([]string, error)
	Load(ctx context.Context, userID string) ([]models.Transaction, error)
}

// ReminderJob finds payments that have been waiting too long for confirmation
type ReminderJob struct {
	source LedgerSource
	minAge time.Duration
	now    func() time.Time
	cron   *cron.Cron
}

// NewReminderJob creates a reminder job for payments pending at least minAge
func NewReminderJob(source LedgerSource, minAge time.Duration) *ReminderJob {
	return &ReminderJob{
		source: source,
		minAge: minAge,
		now:    time.Now,
	}
}

// Run sweeps every ledger once and logs a reminder per stale pending payment.
// A ledger that fails to load is logged and skipped.
func (j *ReminderJob) Run(ctx context.Context) ([]models.PendingReminder, error) {
	userIDs, err := j.source.UserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}

	now := j.now()
	reminders := []models.PendingReminder{}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return reminders, err
		}

		transactions, err := j.source.Load(ctx, userID)
		if err != nil {
			utils.Logger.WithError(err).WithField("user_id", userID).Error("Failed to load ledger for reminders")
			continue
		}

		for i := range transactions {
			tx := &transactions[i]
			if tx.Type != models.TransactionTypePayment || tx.Status != models.StatusPending {
				continue
			}

			age := now.Sub(tx.CreatedAt())
			if age < j.minAge {
				continue
			}

			reminder := models.PendingReminder{
				Namespace:     utils.TransactionNamespace(userID),
				TransactionID: tx.ID,
				From:          models.UserRef{ID: tx.FromUserID, Name: tx.FromUserName},
				To:            models.UserRef{ID: tx.ToUserID, Name: tx.ToUserName},
				Amount:        tx.Amount,
				Age:           age,
			}
			reminders = append(reminders, reminder)

			utils.Logger.WithFields(logrus.Fields{
				"namespace":      reminder.Namespace,
				"transaction_id": reminder.TransactionID,
				"from":           reminder.From.Name,
				"to":             reminder.To.Name,
				"amount":         utils.FormatMoney(reminder.Amount),
				"age":            age.Round(time.Minute).String(),
			}).Info("Payment awaiting confirmation")
		}
	}

	utils.Logger.WithField("count", len(reminders)).Info("Finished pending payment sweep")
	return reminders, nil
}

// Start schedules Run on the given cron spec. An empty schedule disables the job.
func (j *ReminderJob) Start(schedule string) error {
	if schedule == "" {
		utils.Logger.Info("Pending payment reminders disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if _, err := j.Run(ctx); err != nil {
			utils.Logger.Errorf("Cron job failed to sweep pending payments: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}

	c.Start()
	j.cron = c
	utils.Logger.Infof("Pending payment reminders scheduled (%s)", schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (j *ReminderJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	j.cron = nil
}
