package models

import "time"

// StatusMapping assigns funnel semantics to each status string that appears
// on leads and applications. The flags are stored as 0/1 integers to match
// the spreadsheet the defaults were lifted from.
type StatusMapping struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	StatusName             string    `gorm:"column:status_name;uniqueIndex;size:200;not null" json:"status_name"`
	IsApplicationReceived  int       `gorm:"column:is_application_received;default:0" json:"is_application_received"`
	IsApplicationProcessed int       `gorm:"column:is_application_processed;default:0" json:"is_application_processed"`
	IsApplicationApproved  int       `gorm:"column:is_application_approved;default:0" json:"is_application_approved"`
	IsFuture               int       `gorm:"column:is_future;default:0" json:"is_future"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (StatusMapping) TableName() string {
	return "status_mappings"
}

// DefaultStatusMappings returns the seed rows for a fresh database.
func DefaultStatusMappings() []StatusMapping {
	row := func(name string, received, processed, approved, future int) StatusMapping {
		return StatusMapping{
			StatusName:             name,
			IsApplicationReceived:  received,
			IsApplicationProcessed: processed,
			IsApplicationApproved:  approved,
			IsFuture:               future,
		}
	}
	return []StatusMapping{
		row("Active", 1, 1, 1, 0),
		row("Affordability check", 0, 0, 0, 0),
		row("Affordability check failed", 1, 1, 0, 0),
		row("Affordability check for review", 1, 1, 0, 1),
		row("Affordability check partial received", 0, 0, 0, 0),
		row("Affordability check passed", 1, 1, 1, 0),
		row("Affordability check query", 1, 1, 0, 1),
		row("Affordability check received", 1, 1, 0, 1),
		row("Agreement sent for signature", 1, 1, 1, 0),
		row("Agreement signed", 1, 1, 1, 0),
		row("Application checked", 0, 0, 0, 0),
		row("Application received", 0, 0, 0, 0),
		row("Arrears", 1, 1, 1, 0),
		row("Awaiting affordability check", 1, 0, 0, 0),
		row("Breathing space", 1, 1, 1, 0),
		row("Cancelled", 0, 0, 0, 0),
		row("Cancelled - exceeds £2000 limit", 1, 0, 0, 0),
		row("Cancelled - income under £1000", 1, 0, 0, 0),
		row("Cancelled - under 30 years old", 1, 0, 0, 0),
		row("Capture customer direct debit details", 1, 1, 1, 0),
		row("Capture customer direct debit details (Sofa/Bed)", 1, 1, 1, 0),
		row("Closed - customer doesn't want the product anymore", 0, 0, 0, 0),
		row("Closed - customer not responding to request", 1, 0, 0, 0),
		row("Closed - customer refused to supply bank statement", 0, 0, 0, 0),
		row("Closed - no response to pre call", 1, 0, 0, 0),
		row("Closed - did not respond to further info req", 1, 0, 0, 0),
		row("Closed - not interested anymore", 0, 0, 0, 0),
		row("Closed - pending open banking", 0, 0, 0, 0),
		row("Closed - previous application failed", 0, 0, 0, 0),
		row("Closed - product out of stock", 1, 1, 0, 0),
		row("Closed - within post discharge period", 1, 1, 1, 0),
		row("Collect initial payment", 1, 1, 1, 0),
		row("Future", 0, 0, 0, 1),
	}
}
