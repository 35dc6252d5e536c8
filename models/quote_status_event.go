package models

import (
	"time"

	"github.com/amirphl/dynamic-pricing/utils"
	"gorm.io/gorm"
)

// Actors recorded on status events
const (
	QuoteEventActorAPI     = "api"
	QuoteEventActorSweeper = "expiry_sweeper"
	QuoteEventActorReader  = "read_expiry"
)

// QuoteStatusEvent records one applied status transition.
type QuoteStatusEvent struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	QuoteID    uint        `gorm:"not null;index:idx_quote_status_events_quote_id" json:"quote_id"`
	FromStatus QuoteStatus `gorm:"type:quote_status;not null" json:"from_status"`
	ToStatus   QuoteStatus `gorm:"type:quote_status;not null;index:idx_quote_status_events_to_status" json:"to_status"`
	Actor      string      `gorm:"size:50;not null" json:"actor"`
	RequestID  *string     `gorm:"size:255;index:idx_quote_status_events_request_id" json:"request_id,omitempty"`
	Note       *string     `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time   `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_quote_status_events_created_at" json:"created_at"`

	Quote *PriceQuote `gorm:"foreignKey:QuoteID;references:ID" json:"-"`
}

func (QuoteStatusEvent) TableName() string {
	return "quote_status_events"
}

func (e *QuoteStatusEvent) BeforeCreate(tx *gorm.DB) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = utils.UTCNow()
	}
	return nil
}

// QuoteStatusEventFilter represents filter criteria for status event queries
type QuoteStatusEventFilter struct {
	ID            *uint
	QuoteID       *uint
	ToStatus      *QuoteStatus
	Actor         *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
