package utils

import (
	"github.com/google/uuid"
)

// GenerateID generates a time-ordered ID for ledger records.
// UUIDv7 keeps ids sortable by creation time.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
