package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/craigmalenga/marketing/utils"
)

var creditHeaders = []string{
	"Product",
	"Number",
	"Average Value Credit Applied",
	"Combined Enquiry Credit Value",
	"Credit for Applications",
	"Pull Through Rate",
	"Credit for Processed Applications",
	"% Applications Processed",
	"Credit Issued for Approved Applications",
	"% Processed Applications Issued",
	"Average Credit Issued Per Enquiry",
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
			WrapText:   true,
		},
	})
}

func writeRow(f *excelize.File, sheet string, rowIdx int, values []interface{}) error {
	for col, v := range values {
		cellRef, err := excelize.CoordinatesToCellName(col+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellRef, v); err != nil {
			return err
		}
	}
	return nil
}

func creditRowValues(r CreditRow) []interface{} {
	return []interface{}{
		r.Product,
		r.Number,
		r.AverageValueCreditApplied,
		r.CombinedEnquiryCreditValue,
		r.CreditForApplications,
		r.PullThroughRate * 100,
		r.CreditForProcessed,
		r.PctProcessed * 100,
		r.CreditApproved,
		r.PctApproved * 100,
		r.AvgCreditPerEnquiry,
	}
}

// ExportCreditPerformance streams the credit-performance report as an
// Excel attachment.
func ExportCreditPerformance(c *gin.Context) {
	rows, totals, err := BuildCreditPerformance(utils.DB, parseFilters(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	const sheet = "Credit Performance"
	f.SetSheetName("Sheet1", sheet)

	headerVals := make([]interface{}, len(creditHeaders))
	for i, h := range creditHeaders {
		headerVals[i] = h
	}
	if err := writeRow(f, sheet, 1, headerVals); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if style, err := headerStyle(f); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(creditHeaders), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, r := range rows {
		if err := writeRow(f, sheet, i+2, creditRowValues(r)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
	}
	if err := writeRow(f, sheet, len(rows)+2, creditRowValues(totals)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	serveWorkbook(c, f, fmt.Sprintf("credit_performance_%s.xlsx", time.Now().Format("20060102_150405")))
}

// ExportMarketingCampaign streams the marketing-campaign report, one
// summary sheet and one status-breakdown sheet.
func ExportMarketingCampaign(c *gin.Context) {
	summary, breakdown, _, err := BuildMarketingCampaign(utils.DB, parseFilters(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	f.SetSheetName("Sheet1", "Summary")

	metrics := [][2]interface{}{
		{"Marketing Cost", summary.MarketingCost},
		{"Cost Per Enquiry", summary.CostPerEnquiry},
		{"Cost Per Application", summary.CostPerApplication},
		{"Cost Per Approved Loan", summary.CostPerApprovedLoan},
		{"Approval Rate", summary.ApprovalRate},
		{"Sum of Credit Issued", summary.SumOfCreditIssued},
		{"Average Credit Issued Per Successful App", summary.AvgCreditPerApproved},
		{"Credit Per Pound Spent", summary.CreditPerPoundSpent},
		{"Expected Gross Margin Per Pound Spent", summary.ExpectedGMPerPound},
		{"Gross Margin Return Per Pound Spent", summary.GMReturnPerPoundSpent},
	}
	for i, m := range metrics {
		if err := writeRow(f, "Summary", i+1, []interface{}{m[0], m[1]}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	const statusSheet = "Status Breakdown"
	if _, err := f.NewSheet(statusSheet); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	statusHeaders := []interface{}{"Status", "Received", "Processed", "Approved", "Future", "Count", "Value"}
	if err := writeRow(f, statusSheet, 1, statusHeaders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if style, err := headerStyle(f); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(statusHeaders), 1)
		_ = f.SetCellStyle(statusSheet, "A1", last, style)
	}
	for i, b := range breakdown {
		values := []interface{}{b.Status, b.Received, b.Processed, b.Approved, b.Future, b.Count, b.Value}
		if err := writeRow(f, statusSheet, i+2, values); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	serveWorkbook(c, f, fmt.Sprintf("marketing_campaign_%s.xlsx", time.Now().Format("20060102_150405")))
}

func serveWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}
