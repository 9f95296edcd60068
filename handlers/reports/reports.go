package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/craigmalenga/marketing/models"
	"github.com/craigmalenga/marketing/utils"
)

// CreditRow is one product line of the credit-performance report.
type CreditRow struct {
	Product                    string  `json:"product"`
	Number                     int64   `json:"number"`
	AverageValueCreditApplied  float64 `json:"average_value_credit_applied"`
	CombinedEnquiryCreditValue float64 `json:"combined_enquiry_credit_value"`
	CreditForApplications      float64 `json:"credit_for_applications"`
	PullThroughRate            float64 `json:"pull_through_rate"`
	CreditForProcessed         float64 `json:"credit_for_processed_applications"`
	PctProcessed               float64 `json:"percent_applications_processed"`
	CreditApproved             float64 `json:"credit_issued_for_approved_applications"`
	PctApproved                float64 `json:"percent_processed_applications_issued"`
	AvgCreditPerEnquiry        float64 `json:"average_credit_issued_per_enquiry"`
}

type reportFilters struct {
	start    *time.Time
	end      *time.Time
	category string
	campaign string
	adLevel  string
}

func parseFilters(c *gin.Context) reportFilters {
	f := reportFilters{
		category: c.Query("product_category"),
		campaign: c.Query("campaign_name"),
		adLevel:  c.Query("ad_level"),
	}
	if t, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		f.start = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		// Inclusive end of day.
		t = t.Add(24*time.Hour - time.Second)
		f.end = &t
	}
	return f
}

func leadRange(db *gorm.DB, f reportFilters) *gorm.DB {
	if f.start != nil {
		db = db.Where("leads.received_at >= ?", *f.start)
	}
	if f.end != nil {
		db = db.Where("leads.received_at <= ?", *f.end)
	}
	return db
}

// BuildCreditPerformance aggregates enquiry and application funnel figures
// per product. Exposed for the export handler and for tests.
func BuildCreditPerformance(db *gorm.DB, f reportFilters) ([]CreditRow, CreditRow, error) {
	type enquiryAgg struct {
		ProductName  string
		EnquiryCount int64
		EnquiryValue float64
	}

	q := db.Model(&models.Lead{}).
		Select("product_name, COUNT(DISTINCT reference) AS enquiry_count, COALESCE(SUM(sale_value), 0) AS enquiry_value").
		Where("product_name <> ''")
	q = leadRange(q, f)
	if f.category != "" {
		q = q.Where("product_name IN (?)",
			db.Model(&models.Product{}).Select("name").Where("category = ?", f.category))
	}

	var enquiries []enquiryAgg
	if err := q.Group("product_name").Order("product_name").Scan(&enquiries).Error; err != nil {
		return nil, CreditRow{}, err
	}

	appAgg := func(product string, flag string) (int64, float64, error) {
		type agg struct {
			AppCount int64
			AppValue float64
		}
		q := db.Model(&models.Application{}).
			Select("COUNT(DISTINCT applications.lead_id) AS app_count, COALESCE(SUM(applications.lead_value), 0) AS app_value").
			Joins("JOIN leads ON applications.lead_id = leads.reference").
			Where("leads.product_name = ?", product)
		q = leadRange(q, f)
		if flag != "" {
			q = q.Joins("JOIN status_mappings ON leads.status = status_mappings.status_name").
				Where(fmt.Sprintf("status_mappings.%s = 1", flag))
		}
		var a agg
		if err := q.Scan(&a).Error; err != nil {
			return 0, 0, err
		}
		return a.AppCount, a.AppValue, nil
	}

	var rows []CreditRow
	for _, e := range enquiries {
		appCount, appValue, err := appAgg(e.ProductName, "")
		if err != nil {
			return nil, CreditRow{}, err
		}
		processedCount, processedValue, err := appAgg(e.ProductName, "is_application_processed")
		if err != nil {
			return nil, CreditRow{}, err
		}
		approvedCount, approvedValue, err := appAgg(e.ProductName, "is_application_approved")
		if err != nil {
			return nil, CreditRow{}, err
		}

		row := CreditRow{
			Product:                    e.ProductName,
			Number:                     e.EnquiryCount,
			CombinedEnquiryCreditValue: e.EnquiryValue,
			CreditForApplications:      appValue,
			CreditForProcessed:         processedValue,
			CreditApproved:             approvedValue,
		}
		if appCount > 0 {
			row.AverageValueCreditApplied = appValue / float64(appCount)
			row.PctProcessed = float64(processedCount) / float64(appCount)
		}
		if e.EnquiryCount > 0 {
			row.PullThroughRate = float64(appCount) / float64(e.EnquiryCount)
			row.AvgCreditPerEnquiry = approvedValue / float64(e.EnquiryCount)
		}
		if processedCount > 0 {
			row.PctApproved = float64(approvedCount) / float64(processedCount)
		}
		rows = append(rows, row)
	}

	totals := CreditRow{Product: "TOTAL"}
	for _, r := range rows {
		totals.Number += r.Number
		totals.CombinedEnquiryCreditValue += r.CombinedEnquiryCreditValue
		totals.CreditForApplications += r.CreditForApplications
		totals.CreditForProcessed += r.CreditForProcessed
		totals.CreditApproved += r.CreditApproved
	}
	if totals.Number > 0 {
		totals.AverageValueCreditApplied = totals.CreditForApplications / float64(totals.Number)
		totals.AvgCreditPerEnquiry = totals.CreditApproved / float64(totals.Number)
	}
	if totals.CombinedEnquiryCreditValue > 0 {
		totals.PullThroughRate = totals.CreditForApplications / totals.CombinedEnquiryCreditValue
	}
	if totals.CreditForApplications > 0 {
		totals.PctProcessed = totals.CreditForProcessed / totals.CreditForApplications
	}
	if totals.CreditForProcessed > 0 {
		totals.PctApproved = totals.CreditApproved / totals.CreditForProcessed
	}

	return rows, totals, nil
}

func CreditPerformance(c *gin.Context) {
	rows, totals, err := BuildCreditPerformance(utils.DB, parseFilters(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rows": rows, "totals": totals})
}

// StatusBreakdown is one status line of the marketing-campaign report.
type StatusBreakdown struct {
	Status    string  `json:"status"`
	Received  int     `json:"is_application_received"`
	Processed int     `json:"is_application_processed"`
	Approved  int     `json:"is_application_approved"`
	Future    int     `json:"is_future"`
	Count     int64   `json:"count"`
	Value     float64 `json:"value"`
}

// MarketingSummary carries the cost and ROI metrics of the campaign report.
type MarketingSummary struct {
	MarketingCost         float64 `json:"marketing_cost"`
	CostPerEnquiry        float64 `json:"cost_per_enquiry"`
	CostPerApplication    float64 `json:"cost_per_application"`
	CostPerApprovedLoan   float64 `json:"cost_per_approved_loan"`
	ApprovalRate          float64 `json:"approval_rate"`
	SumOfCreditIssued     float64 `json:"sum_of_credit_issued"`
	AvgCreditPerApproved  float64 `json:"average_credit_issued_per_successful_app"`
	CreditPerPoundSpent   float64 `json:"credit_per_pound_spent"`
	ExpectedGMPerPound    float64 `json:"expected_gross_margin_per_pound_spent"`
	GMReturnPerPoundSpent float64 `json:"gross_margin_return_per_pound_spent"`
}

// expectedGrossMargin is the business's planning figure for lending margin.
const expectedGrossMargin = 0.432

// BuildMarketingCampaign assembles spend, enquiry and per-status funnel
// figures for one campaign (or all of them).
func BuildMarketingCampaign(db *gorm.DB, f reportFilters) (MarketingSummary, []StatusBreakdown, map[string]int64, error) {
	spendQ := db.Model(&models.AdSpend{})
	if f.start != nil {
		spendQ = spendQ.Where("reporting_end_date >= ?", *f.start)
	}
	if f.end != nil {
		spendQ = spendQ.Where("reporting_end_date <= ?", *f.end)
	}
	if f.campaign != "" {
		spendQ = spendQ.Where("meta_campaign_name = ?", f.campaign)
	}
	if f.adLevel != "" {
		spendQ = spendQ.Where("ad_level = ?", f.adLevel)
	}
	var totalSpend float64
	if err := spendQ.Select("COALESCE(SUM(spend_amount), 0)").Scan(&totalSpend).Error; err != nil {
		return MarketingSummary{}, nil, nil, err
	}

	leadQ := leadRange(db.Model(&models.Lead{}), f)
	if f.campaign != "" {
		leadQ = leadQ.Where("campaign_name = ?", f.campaign)
	}
	var enquiryCount int64
	if err := leadQ.Distinct("reference").Count(&enquiryCount).Error; err != nil {
		return MarketingSummary{}, nil, nil, err
	}

	var statuses []models.StatusMapping
	if err := db.Order("status_name").Find(&statuses).Error; err != nil {
		return MarketingSummary{}, nil, nil, err
	}

	var breakdown []StatusBreakdown
	for _, s := range statuses {
		q := db.Model(&models.Lead{}).Where("status = ?", s.StatusName)
		q = leadRange(q, f)
		if f.campaign != "" {
			q = q.Where("campaign_name = ?", f.campaign)
		}
		var agg struct {
			Count int64
			Value float64
		}
		if err := q.Select("COUNT(DISTINCT reference) AS count, COALESCE(SUM(sale_value), 0) AS value").Scan(&agg).Error; err != nil {
			return MarketingSummary{}, nil, nil, err
		}
		breakdown = append(breakdown, StatusBreakdown{
			Status:    s.StatusName,
			Received:  s.IsApplicationReceived,
			Processed: s.IsApplicationProcessed,
			Approved:  s.IsApplicationApproved,
			Future:    s.IsFuture,
			Count:     agg.Count,
			Value:     agg.Value,
		})
	}

	var applicationCount, processedCount, approvedCount int64
	var creditIssued float64
	for _, b := range breakdown {
		if b.Received == 1 {
			applicationCount += b.Count
		}
		if b.Processed == 1 {
			processedCount += b.Count
		}
		if b.Approved == 1 {
			approvedCount += b.Count
			creditIssued += b.Value
		}
	}

	summary := MarketingSummary{
		MarketingCost:     totalSpend,
		SumOfCreditIssued: creditIssued,
	}
	if enquiryCount > 0 {
		summary.CostPerEnquiry = totalSpend / float64(enquiryCount)
	}
	if applicationCount > 0 {
		summary.CostPerApplication = totalSpend / float64(applicationCount)
		summary.ApprovalRate = float64(approvedCount) / float64(applicationCount)
	}
	if approvedCount > 0 {
		summary.CostPerApprovedLoan = totalSpend / float64(approvedCount)
		summary.AvgCreditPerApproved = creditIssued / float64(approvedCount)
	}
	if totalSpend > 0 {
		summary.CreditPerPoundSpent = creditIssued / totalSpend
		summary.ExpectedGMPerPound = summary.CreditPerPoundSpent * expectedGrossMargin
		summary.GMReturnPerPoundSpent = summary.ExpectedGMPerPound - 1
	}

	counts := map[string]int64{
		"enquiries":    enquiryCount,
		"applications": applicationCount,
		"processed":    processedCount,
		"approved":     approvedCount,
	}
	return summary, breakdown, counts, nil
}

func MarketingCampaign(c *gin.Context) {
	summary, breakdown, counts, err := BuildMarketingCampaign(utils.DB, parseFilters(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"summary":          summary,
		"status_breakdown": breakdown,
		"counts":           counts,
	})
}

// Summary returns dashboard totals and the current week's activity.
func Summary(c *gin.Context) {
	db := utils.DB

	var totalEnquiries, totalApplications, totalCampaigns int64
	if err := db.Model(&models.Lead{}).Count(&totalEnquiries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := db.Model(&models.Application{}).Count(&totalApplications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if err := db.Model(&models.Campaign{}).Count(&totalCampaigns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	now := time.Now()
	weekday := (int(now.Weekday()) + 6) % 7 // Monday-start week
	weekStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -weekday)

	var weekEnquiries, weekApplications int64
	db.Model(&models.Lead{}).Where("received_at >= ?", weekStart).Count(&weekEnquiries)
	db.Model(&models.Application{}).Where("applied_at >= ?", weekStart).Count(&weekApplications)

	var weekSpend float64
	db.Model(&models.AdSpend{}).Where("reporting_end_date >= ?", weekStart).
		Select("COALESCE(SUM(spend_amount), 0)").Scan(&weekSpend)

	var approvedCount int64
	db.Model(&models.Lead{}).
		Joins("JOIN status_mappings ON leads.status = status_mappings.status_name").
		Where("status_mappings.is_application_approved = 1").
		Distinct("leads.reference").Count(&approvedCount)

	approvalRate := 0.0
	if totalApplications > 0 {
		approvalRate = float64(approvedCount) / float64(totalApplications)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"total_enquiries":    totalEnquiries,
		"total_applications": totalApplications,
		"total_campaigns":    totalCampaigns,
		"week_enquiries":     weekEnquiries,
		"week_applications":  weekApplications,
		"week_spend":         weekSpend,
		"approval_rate":      approvalRate,
	})
}
