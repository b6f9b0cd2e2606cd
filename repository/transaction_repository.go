// repository/transaction_repository.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fadhlanhapp/taskaloop-ledger/models"
	"github.com/fadhlanhapp/taskaloop-ledger/utils"
)

// maxWriteAttempts bounds retries of a read-modify-write cycle after version conflicts
const maxWriteAttempts = 3

// StorageError reports a failed load or save of a user's transaction list
type StorageError struct {
	Op        string
	Namespace string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Namespace, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// TransactionRepository stores each user's transactions as one JSON list
type TransactionRepository struct {
	store KVStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(store KVStore) *TransactionRepository {
	return &TransactionRepository{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// lock serializes read-modify-write cycles for one namespace inside this process
func (r *TransactionRepository) lock(namespace string) func() {
	r.mu.Lock()
	l, ok := r.locks[namespace]
	if !ok {
		l = &sync.Mutex{}
		r.locks[namespace] = l
	}
	r.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func namespaceFor(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", utils.NewValidationError(utils.ErrUserIDRequired)
	}
	return utils.TransactionNamespace(userID), nil
}

func (r *TransactionRepository) fail(op, namespace string, err error) error {
	utils.Logger.WithFields(logrus.Fields{
		"namespace": namespace,
		"operation": op,
	}).WithError(err).Error("Transaction storage failure")
	return &StorageError{Op: op, Namespace: namespace, Err: err}
}

// read loads the list and its version from the store
func (r *TransactionRepository) read(ctx context.Context, namespace string) ([]models.Transaction, int64, error) {
	payload, version, err := r.store.Get(ctx, namespace)
	if err != nil {
		return nil, 0, r.fail("load", namespace, err)
	}

	transactions := []models.Transaction{}
	if len(payload) == 0 {
		return transactions, version, nil
	}

	if err := json.Unmarshal(payload, &transactions); err != nil {
		return nil, 0, r.fail("load", namespace, fmt.Errorf("failed to decode transactions: %w", err))
	}
	return transactions, version, nil
}

// write encodes and stores the list if the version is unchanged
func (r *TransactionRepository) write(ctx context.Context, namespace string, transactions []models.Transaction, version int64) error {
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	payload, err := json.Marshal(transactions)
	if err != nil {
		return r.fail("save", namespace, fmt.Errorf("failed to encode transactions: %w", err))
	}

	if err := r.store.Put(ctx, namespace, payload, version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return err
		}
		return r.fail("save", namespace, err)
	}
	return nil
}

// mutate runs a read-modify-write cycle, retrying when another writer got there first
func (r *TransactionRepository) mutate(ctx context.Context, namespace string, fn func([]models.Transaction) ([]models.Transaction, bool)) error {
	unlock := r.lock(namespace)
	defer unlock()

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		transactions, version, err := r.read(ctx, namespace)
		if err != nil {
			return err
		}

		updated, changed := fn(transactions)
		if !changed {
			return nil
		}

		err = r.write(ctx, namespace, updated, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}

		utils.Logger.WithFields(logrus.Fields{
			"namespace": namespace,
			"attempt":   attempt,
		}).Warn("Transaction list changed concurrently, retrying")
	}

	return r.fail("save", namespace, ErrVersionConflict)
}

// Load returns all transactions stored for userID, oldest first.
// A user without stored transactions gets an empty slice.
func (r *TransactionRepository) Load(ctx context.Context, userID string) ([]models.Transaction, error) {
	namespace, err := namespaceFor(userID)
	if err != nil {
		return nil, err
	}

	transactions, _, err := r.read(ctx, namespace)
	return transactions, err
}

// Save replaces the stored list for userID with transactions
func (r *TransactionRepository) Save(ctx context.Context, userID string, transactions []models.Transaction) error {
	namespace, err := namespaceFor(userID)
	if err != nil {
		return err
	}

	replacement := append([]models.Transaction(nil), transactions...)
	return r.mutate(ctx, namespace, func([]models.Transaction) ([]models.Transaction, bool) {
		return replacement, true
	})
}

// Add assigns an ID, appends the transaction and returns the stored record
func (r *TransactionRepository) Add(ctx context.Context, userID string, tx models.Transaction) (*models.Transaction, error) {
	namespace, err := namespaceFor(userID)
	if err != nil {
		return nil, err
	}

	tx.ID = utils.GenerateID()
	if tx.Timestamp == 0 {
		tx.Timestamp = time.Now().UnixMilli()
	}

	err = r.mutate(ctx, namespace, func(transactions []models.Transaction) ([]models.Transaction, bool) {
		return append(transactions, tx), true
	})
	if err != nil {
		return nil, err
	}

	return &tx, nil
}

// Update merges patch into the transaction with the given ID.
// It returns nil, nil when no transaction matches.
func (r *TransactionRepository) Update(ctx context.Context, userID, id string, patch models.TransactionPatch) (*models.Transaction, error) {
	return r.UpdateWhere(ctx, userID, id, patch, nil)
}

// UpdateWhere is Update with a guard evaluated against the stored record
// inside the write cycle. A guard error aborts the update and is returned as is.
func (r *TransactionRepository) UpdateWhere(ctx context.Context, userID, id string, patch models.TransactionPatch, guard func(*models.Transaction) error) (*models.Transaction, error) {
	namespace, err := namespaceFor(userID)
	if err != nil {
		return nil, err
	}

	var updated *models.Transaction
	var guardErr error
	err = r.mutate(ctx, namespace, func(transactions []models.Transaction) ([]models.Transaction, bool) {
		updated, guardErr = nil, nil
		for i := range transactions {
			if transactions[i].ID != id {
				continue
			}
			if guard != nil {
				if guardErr = guard(&transactions[i]); guardErr != nil {
					return transactions, false
				}
			}
			patch.Apply(&transactions[i])
			stored := transactions[i]
			updated = &stored
			return transactions, true
		}
		return transactions, false
	})
	if err != nil {
		return nil, err
	}
	if guardErr != nil {
		return nil, guardErr
	}

	return updated, nil
}

// Get returns the transaction with the given ID, or nil when absent
func (r *TransactionRepository) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	transactions, err := r.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range transactions {
		if transactions[i].ID == id {
			return &transactions[i], nil
		}
	}
	return nil, nil
}

// UserIDs lists every user with a stored transaction list
func (r *TransactionRepository) UserIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, utils.TransactionNamespacePrefix)
	if err != nil {
		return nil, r.fail("list", utils.TransactionNamespacePrefix, err)
	}

	userIDs := make([]string, 0, len(keys))
	for _, key := range keys {
		userIDs = append(userIDs, strings.TrimPrefix(key, utils.TransactionNamespacePrefix))
	}
	return userIDs, nil
}
