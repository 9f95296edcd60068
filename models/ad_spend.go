package models

import "time"

// AdSpend is one dated spend observation for a campaign, optionally broken
// down to ad level. Rows are append-only: re-uploading a spend file inserts
// the observations again rather than updating in place.
type AdSpend struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ReportingEndDate time.Time `gorm:"column:reporting_end_date;index;not null" json:"reporting_end_date"`
	MetaCampaignName string    `gorm:"column:meta_campaign_name;size:200;index;not null" json:"meta_campaign_name"`
	AdLevel          *string   `gorm:"column:ad_level;size:200" json:"ad_level"`
	SpendAmount      float64   `gorm:"column:spend_amount;not null" json:"spend_amount"`
	IsNew            bool      `gorm:"column:is_new;default:false" json:"is_new"`
	CampaignID       uint      `gorm:"column:campaign_id;index" json:"campaign_id"`
	CreatedAt        time.Time `json:"created_at"`
}

func (AdSpend) TableName() string {
	return "ad_spends"
}
