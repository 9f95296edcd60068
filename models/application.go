package models

import "time"

// Affordability outcomes as they appear in upload filenames and sheet names.
const (
	AffordabilityPassed = "passed"
	AffordabilityFailed = "failed"
)

// Application records the affordability decision for a lead. The LeadID
// column doubles as the durable passed/failed lookup set: affordability
// uploads upsert rows here, lead uploads copy status and value onto the
// matching row, so the two files can arrive in either order.
type Application struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	LeadID              string     `gorm:"column:lead_id;uniqueIndex;size:50;not null" json:"lead_id"`
	AppliedAt           *time.Time `gorm:"column:applied_at;index" json:"applied_at"`
	Status              string     `gorm:"column:status;size:200" json:"status"`
	AffordabilityResult string     `gorm:"column:affordability_result;size:20;index" json:"affordability_result"`
	LeadValue           *float64   `gorm:"column:lead_value" json:"lead_value"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Application) TableName() string {
	return "applications"
}
