package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// RecordID identifies a saved elicitation record
type RecordID ID

func (id RecordID) String() string { return ID(id).String() }

// NewRecordID creates a fresh record identifier
func NewRecordID() RecordID {
	return RecordID(NewID())
}

// ParseRecordID validates a record identifier supplied by a caller.
// Record IDs are UUIDs; anything else is rejected.
func ParseRecordID(s string) (RecordID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("record ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid record ID %q: %w", s, err)
	}
	return RecordID(s), nil
}
