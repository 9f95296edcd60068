package models

import "time"

// Product categories used for report filtering.
const (
	CategorySofa        = "Sofa"
	CategoryFurniture   = "Furniture"
	CategoryAppliances  = "Appliances"
	CategoryElectronics = "Electronics"
	CategoryLeisure     = "Leisure"
	CategoryOutdoor     = "Outdoor"
	CategoryOther       = "Other"
)

// Product is a catalog entry. New names surfaced by the description
// extractor are inserted automatically with category Other until an
// operator reclassifies them.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;uniqueIndex;size:200;not null" json:"name"`
	Category  string    `gorm:"column:category;size:100" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}
