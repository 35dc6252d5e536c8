package models

import (
	"database/sql/driver"
	"fmt"
)

// QuoteStatus represents the lifecycle state of a price quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusDeclined QuoteStatus = "declined"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// QuoteStatuses lists every status in lifecycle order.
var QuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusAccepted,
	QuoteStatusDeclined,
	QuoteStatusExpired,
}

// String returns the string representation of the status
func (s QuoteStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted,
		QuoteStatusDeclined, QuoteStatusExpired:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for QuoteStatus
func (s *QuoteStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = QuoteStatus(v)
	case []byte:
		*s = QuoteStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into QuoteStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for QuoteStatus
func (s QuoteStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid QuoteStatus: %s", s)
	}
	return string(s), nil
}

// AllowedPredecessors returns the statuses a quote may move to s from.
// Nothing moves back to draft.
func (s QuoteStatus) AllowedPredecessors() []QuoteStatus {
	switch s {
	case QuoteStatusSent:
		return []QuoteStatus{QuoteStatusDraft}
	case QuoteStatusAccepted, QuoteStatusDeclined:
		return []QuoteStatus{QuoteStatusSent}
	case QuoteStatusExpired:
		return []QuoteStatus{QuoteStatusSent, QuoteStatusAccepted, QuoteStatusDeclined}
	default:
		return nil
	}
}

// CanTransitionTo reports whether the status machine allows s -> next.
// Moving to expired additionally requires valid_until to have passed.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, p := range next.AllowedPredecessors() {
		if p == s {
			return true
		}
	}
	return false
}

// Expirable reports whether a quote in status s expires once valid_until passes.
func (s QuoteStatus) Expirable() bool {
	return s.CanTransitionTo(QuoteStatusExpired)
}
