package core

import "fmt"

// ValidateRecord checks the invariants every stored record must satisfy.
//
// Validation rules:
//   - ID must not be empty
//   - Topic must be a member of Categories
//   - Entities must be non-nil (an empty slice is fine)
//
// Title may be empty: providers occasionally send untitled items.
func ValidateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyID)
	}

	if !record.Topic.IsKnown() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidRecord, ErrUnknownTopic, record.Topic)
	}

	if record.Entities == nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrNilEntities)
	}

	return nil
}
