package utils

import (
	"fmt"
	"math"
	"strings"
)

// ValidateRequired checks if a string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidatePositive checks if a number is positive, finite and at most MaxTransactionAmount
func ValidatePositive(value float64, fieldName string) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewValidationError(fmt.Sprintf("%s must be a finite number", fieldName))
	}
	if value <= 0 {
		return NewValidationError(fmt.Sprintf("%s must be positive", fieldName))
	}
	if value > MaxTransactionAmount {
		return NewValidationError(fmt.Sprintf("%s must not exceed %s", fieldName, FormatMoney(MaxTransactionAmount)))
	}
	return nil
}

// ValidateDistinctParties checks that money does not move from a user to themselves
func ValidateDistinctParties(fromID, toID string) error {
	if strings.TrimSpace(fromID) == strings.TrimSpace(toID) {
		return NewValidationError(ErrSelfTransfer)
	}
	return nil
}
