package models

import "time"

// NameMapping translates the raw marketing-source string on a lead into the
// ad platform's campaign name. Lookups are exact-match on the stored value.
type NameMapping struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SourceName   string    `gorm:"column:source_name;uniqueIndex;size:200;not null" json:"source_name"`
	CampaignName string    `gorm:"column:campaign_name;size:200;not null" json:"campaign_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func (NameMapping) TableName() string {
	return "name_mappings"
}
