package ingest

import (
	"fmt"
	"strings"
)

// Canonical field names resolved by the column mapper.
const (
	FieldReference       = "reference"
	FieldLeadID          = "lead_id"
	FieldReceivedAt      = "received_at"
	FieldDateTime        = "datetime"
	FieldStatus          = "status"
	FieldMarketingSource = "marketing_source"
	FieldCapitalAmount   = "capital_amount"
	FieldPaymentType     = "payment_type"
	FieldInterestTotal   = "interest_total"
	FieldRepayment       = "repayment_amount"
	FieldTotalPayable    = "total_payable"
	FieldDescription     = "product_description"
	FieldLeadValue       = "lead_value"
	FieldDate            = "date"
	FieldCampaign        = "campaign"
	FieldAdLevel         = "ad_level"
	FieldSpend           = "spend"
	FieldIsNew           = "is_new"
)

// fieldRule maps one canonical field to an ordered list of header synonyms.
// A header matches when it contains any synonym, case-insensitively. Keeping
// the rules in a table rather than cascading conditionals makes the set
// testable and extensible on its own.
type fieldRule struct {
	Field    string
	Synonyms []string
}

// LeadFieldRules resolves the columns of a lead (FLG) export. The provider
// uses positional DataN column names, so those come first, with
// human-readable synonyms as fallbacks for hand-edited files.
var LeadFieldRules = []fieldRule{
	{FieldReference, []string{"reference", "lead id", "ref"}},
	{FieldReceivedAt, []string{"receiveddatetime", "received", "date"}},
	{FieldStatus, []string{"status"}},
	{FieldMarketingSource, []string{"marketingsource", "marketing", "source", "channel"}},
	{FieldCapitalAmount, []string{"data5", "capital", "loan amount"}},
	{FieldPaymentType, []string{"data6", "payment type", "payment"}},
	{FieldInterestTotal, []string{"data7", "interest"}},
	{FieldRepayment, []string{"data8", "repayment", "instalment"}},
	{FieldTotalPayable, []string{"data10", "total payable", "payable"}},
	{FieldDescription, []string{"data29", "description", "product"}},
}

// ApplicationFieldRules resolves the columns of an affordability export.
var ApplicationFieldRules = []fieldRule{
	{FieldLeadID, []string{"lead id", "leadid", "lead_id"}},
	{FieldDateTime, []string{"datetime", "date"}},
	{FieldStatus, []string{"currentstatus", "status"}},
	{FieldLeadValue, []string{"leadvalue", "value"}},
}

// AdSpendFieldRules resolves the columns of an ad-spend export.
var AdSpendFieldRules = []fieldRule{
	{FieldDate, []string{"reporting end", "reporting", "date", "day"}},
	{FieldCampaign, []string{"campaign name", "campaign"}},
	{FieldAdLevel, []string{"ad level", "adset", "ad set", "ad name"}},
	{FieldSpend, []string{"spend", "amount", "cost"}},
	{FieldIsNew, []string{"new"}},
}

// headerScanCap bounds how far down a sheet the header hunt goes. Real files
// carry at most a few preamble rows of titles and export metadata.
const headerScanCap = 10

// FindHeaderRow scans the first rows of a grid for one whose cells contain
// any of the anchor keywords, returning its index. Rows above it are
// preamble. Returns -1 when no row qualifies.
func FindHeaderRow(grid [][]string, anchors []string) int {
	limit := len(grid)
	if limit > headerScanCap {
		limit = headerScanCap
	}
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(grid[i], " "))
		for _, anchor := range anchors {
			if strings.Contains(joined, strings.ToLower(anchor)) {
				return i
			}
		}
	}
	return -1
}

// MapColumns assigns column indexes to canonical fields. Rules are applied
// in order; for each field the first matching header wins and a column can
// be claimed by at most one field. Unmatched fields are simply absent from
// the result.
func MapColumns(headers []string, rules []fieldRule) map[string]int {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	mapped := make(map[string]int, len(rules))
	claimed := make(map[int]bool, len(rules))

	for _, rule := range rules {
		for _, syn := range rule.Synonyms {
			found := -1
			for i, h := range lowered {
				if h == "" || claimed[i] {
					continue
				}
				if strings.Contains(h, syn) {
					found = i
					break
				}
			}
			if found >= 0 {
				mapped[rule.Field] = found
				claimed[found] = true
				break
			}
		}
	}
	return mapped
}

// LastNumericColumn is the lossy fallback for spend files whose amount
// column has an unrecognizable header: the rightmost column whose body cells
// mostly parse as numbers. Returns -1 when nothing qualifies.
func LastNumericColumn(grid [][]string, headerRow int, claimed map[string]int) int {
	taken := make(map[int]bool, len(claimed))
	for _, idx := range claimed {
		taken[idx] = true
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	for col := width - 1; col >= 0; col-- {
		if taken[col] {
			continue
		}
		numeric, filled := 0, 0
		for r := headerRow + 1; r < len(grid); r++ {
			if col >= len(grid[r]) || strings.TrimSpace(grid[r][col]) == "" {
				continue
			}
			filled++
			if ParseFloat(grid[r][col]) != nil {
				numeric++
			}
		}
		if filled > 0 && numeric == filled {
			return col
		}
	}
	return -1
}

// ErrMissingColumn reports a structural failure: the file cannot be ingested
// without the named field.
func ErrMissingColumn(field string) error {
	return fmt.Errorf("could not identify required column %q in uploaded file", field)
}
