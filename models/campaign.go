package models

import "time"

// Campaign is an advertising campaign keyed by the ad platform's own name
// for it (MetaName). Display name defaults to the same string until an
// operator renames it.
type Campaign struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:200;not null" json:"name"`
	MetaName  string    `gorm:"column:meta_name;uniqueIndex;size:200;not null" json:"meta_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AdSpends []AdSpend `gorm:"foreignKey:CampaignID" json:"-"`
}

func (Campaign) TableName() string {
	return "campaigns"
}
