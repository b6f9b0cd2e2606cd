package utils

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 20.0, Round(20))
	assert.Equal(t, 33.33, Round(100.0/3))
	assert.Equal(t, 0.13, Round(0.125))
	assert.Equal(t, -0.13, Round(-0.125))
}

func TestIsSettled(t *testing.T) {
	assert.True(t, IsSettled(0))
	assert.True(t, IsSettled(0.009))
	assert.True(t, IsSettled(-0.009))
	assert.False(t, IsSettled(0.01))
	assert.False(t, IsSettled(-5))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "20.00", FormatMoney(20))
	assert.Equal(t, "12.35", FormatMoney(12.345))
}

func TestValidatePositive(t *testing.T) {
	assert.NoError(t, ValidatePositive(0.01, "amount"))

	for _, v := range []float64{0, -1} {
		err := ValidatePositive(v, "amount")
		var appErr *AppError
		if assert.True(t, errors.As(err, &appErr), "value %v", v) {
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
			assert.Equal(t, "amount must be positive", appErr.Message)
		}
	}

	assert.NoError(t, ValidatePositive(MaxTransactionAmount, "amount"))
	err := ValidatePositive(MaxTransactionAmount*10, "amount")
	var appErr *AppError
	if assert.True(t, errors.As(err, &appErr)) {
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Equal(t, "amount must not exceed 1000000000000.00", appErr.Message)
	}
	assert.Error(t, ValidatePositive(1e308, "amount"))
}

func TestRoundLeavesNonFiniteValues(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, math.IsInf(Round(math.Inf(1)), 1))
		assert.True(t, math.IsNaN(Round(math.NaN())))
	})
	assert.False(t, IsFinite(math.Inf(-1)))
	assert.True(t, IsFinite(-3.5))
}

func TestValidateDistinctParties(t *testing.T) {
	assert.NoError(t, ValidateDistinctParties("alice", "bob"))
	assert.Error(t, ValidateDistinctParties("alice", "alice"))
	assert.Error(t, ValidateDistinctParties("alice", " alice "))
}

func TestAppErrorUnwrapsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("confirm: %w", NewNotFoundError("Transaction"))

	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Transaction not found", appErr.Message)
}

func TestGenerateIDIsTimeOrdered(t *testing.T) {
	first := GenerateID()
	second := GenerateID()
	assert.NotEqual(t, first, second)
	assert.Less(t, first, second)
}

func TestCleanFileName(t *testing.T) {
	assert.Equal(t, "Ledger_a_b_Export", CleanFileName("Ledger a/b Export"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("warn"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
}

func TestTransactionNamespace(t *testing.T) {
	assert.Equal(t, "ledger:transactions:alice", TransactionNamespace("alice"))
}
