package models

import "time"

// Lead holds one inbound enquiry from the lead-generation export, keyed by
// the provider's reference string. Derived columns (product, campaign, sale
// value) are filled in during ingestion.
type Lead struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Reference          string     `gorm:"column:reference;uniqueIndex;size:50;not null" json:"reference"`
	ReceivedAt         *time.Time `gorm:"column:received_at;index" json:"received_at"`
	Status             string     `gorm:"column:status;size:200;index" json:"status"`
	MarketingSource    string     `gorm:"column:marketing_source;size:200" json:"marketing_source"`
	CapitalAmount      *float64   `gorm:"column:capital_amount" json:"capital_amount"`
	PaymentType        string     `gorm:"column:payment_type;size:50" json:"payment_type"`
	InterestTotal      *float64   `gorm:"column:interest_total" json:"interest_total"`
	RepaymentAmount    *float64   `gorm:"column:repayment_amount" json:"repayment_amount"`
	TotalPayable       *float64   `gorm:"column:total_payable" json:"total_payable"`
	ProductDescription string     `gorm:"column:product_description;type:text" json:"product_description"`
	ProductName        string     `gorm:"column:product_name;size:200;index" json:"product_name"`
	CampaignName       *string    `gorm:"column:campaign_name;size:200;index" json:"campaign_name"`
	SaleValue          float64    `gorm:"column:sale_value" json:"sale_value"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// CalculateSaleValue derives the monetary value of the enquiry. Monthly and
// four-weekly plans carry the value in the total-payable column when it is
// populated; everything else falls back to the capital amount.
func (l *Lead) CalculateSaleValue() float64 {
	if l.CapitalAmount == nil {
		return 0
	}
	switch l.PaymentType {
	case "Monthly", "Four Weekly":
		if l.TotalPayable != nil {
			return *l.TotalPayable
		}
		return *l.CapitalAmount
	default:
		return *l.CapitalAmount
	}
}
