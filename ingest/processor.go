package ingest

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/craigmalenga/marketing/models"
)

// Result is the outcome contract of one ingestion call. Field names are
// stable: the upload handlers render them directly to the operator.
type Result struct {
	FileType         string   `json:"file_type"`
	RecordsProcessed int      `json:"records_processed"`
	RowsSkipped      int      `json:"rows_skipped"`
	PassedCount      int      `json:"passed_count,omitempty"`
	FailedCount      int      `json:"failed_count,omitempty"`
	NewProducts      []string `json:"new_products,omitempty"`
	NewCampaigns     []string `json:"new_campaigns,omitempty"`
	UnmappedSources  []string `json:"unmapped_sources,omitempty"`
	MappingsCreated  int      `json:"mappings_created,omitempty"`
	MappingsUpdated  int      `json:"mappings_updated,omitempty"`
	TotalSpend       float64  `json:"total_spend,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Processor runs file ingestion. Each Process method reads one uploaded
// file and reconciles it inside a single transaction: a structural failure
// rolls the whole batch back, a bad row is logged and skipped. The
// processor itself is stateless; cross-file affordability correlation lives
// in the applications table, not in memory.
type Processor struct {
	db *gorm.DB
}

func NewProcessor(db *gorm.DB) *Processor {
	return &Processor{db: db}
}

// ProcessApplicationsFile ingests an affordability-outcome list. The
// pass/fail label comes from the sheet name or, failing that, the uploaded
// filename; a sheet must carry a lead-id column to be usable.
func (p *Processor) ProcessApplicationsFile(path, originalName string) (*Result, error) {
	sheets, err := ReadSheets(path)
	if err != nil {
		return nil, err
	}

	fileLabel := affordabilityLabel(originalName)
	res := &Result{FileType: "applications"}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		labelled := 0
		for _, sheet := range sheets {
			label := affordabilityLabel(sheet.Name)
			if label == "" {
				label = fileLabel
			}
			if label == "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("sheet %q skipped: cannot tell passed from failed", sheet.Name))
				continue
			}
			labelled++

			if err := p.processApplicationsSheet(tx, sheet, label, res); err != nil {
				return err
			}
		}
		if labelled == 0 {
			return errors.New("could not determine affordability result from filename or sheet names")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Processor) processApplicationsSheet(tx *gorm.DB, sheet Sheet, label string, res *Result) error {
	headerRow := FindHeaderRow(sheet.Rows, []string{"datetime", "lead id", "leadid"})
	if headerRow < 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("sheet %q skipped: no header row found", sheet.Name))
		return nil
	}

	cols := MapColumns(sheet.Rows[headerRow], ApplicationFieldRules)
	if _, ok := cols[FieldLeadID]; !ok {
		return ErrMissingColumn(FieldLeadID)
	}

	for _, row := range sheet.Rows[headerRow+1:] {
		leadID := cellAt(row, cols, FieldLeadID)
		if leadID == "" {
			continue
		}

		result := label
		if status := strings.ToLower(cellAt(row, cols, FieldStatus)); strings.Contains(status, models.AffordabilityFailed) {
			result = models.AffordabilityFailed
		} else if strings.Contains(status, models.AffordabilityPassed) {
			result = models.AffordabilityPassed
		}

		var app models.Application
		err := tx.Where("lead_id = ?", leadID).First(&app).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		app.LeadID = leadID
		app.AffordabilityResult = result
		if at := ParseDateTime(cellAt(row, cols, FieldDateTime)); at != nil {
			app.AppliedAt = at
		}
		if status := cellAt(row, cols, FieldStatus); status != "" {
			app.Status = status
		}
		if v := ParseFloat(cellAt(row, cols, FieldLeadValue)); v != nil {
			app.LeadValue = v
		}

		// Lead uploaded first: copy its snapshot onto the application.
		var lead models.Lead
		if err := tx.Where("reference = ?", leadID).First(&lead).Error; err == nil {
			if app.Status == "" {
				app.Status = lead.Status
			}
			if app.LeadValue == nil {
				sv := lead.SaleValue
				app.LeadValue = &sv
			}
		}

		if err := tx.Save(&app).Error; err != nil {
			return err
		}

		if result == models.AffordabilityPassed {
			res.PassedCount++
		} else {
			res.FailedCount++
		}
		res.RecordsProcessed++
	}
	return nil
}

// ProcessLeadsFile ingests a lead export, upserting by reference and
// deriving product, sale value, campaign attribution and, where an
// affordability outcome is already known, the application snapshot.
func (p *Processor) ProcessLeadsFile(path string) (*Result, error) {
	sheets, err := ReadSheets(path)
	if err != nil {
		return nil, err
	}
	sheet := pickLeadSheet(sheets)

	headerRow := FindHeaderRow(sheet.Rows, []string{"reference"})
	if headerRow < 0 {
		return nil, errors.New("could not find header row in lead file")
	}
	cols := MapColumns(sheet.Rows[headerRow], LeadFieldRules)
	if _, ok := cols[FieldReference]; !ok {
		return nil, ErrMissingColumn(FieldReference)
	}

	res := &Result{FileType: "leads"}
	newProducts := map[string]bool{}
	unmapped := map[string]bool{}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		var appCount, mappingCount int64
		if err := tx.Model(&models.Application{}).Count(&appCount).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.NameMapping{}).Count(&mappingCount).Error; err != nil {
			return err
		}
		if appCount == 0 {
			res.Warnings = append(res.Warnings, "no affordability results loaded yet: leads will not be linked to applications")
		}
		if mappingCount == 0 {
			res.Warnings = append(res.Warnings, "no name mappings loaded yet: marketing sources will not be attributed")
		}

		for _, row := range sheet.Rows[headerRow+1:] {
			reference := cellAt(row, cols, FieldReference)
			if reference == "" {
				continue
			}

			var lead models.Lead
			err := tx.Where("reference = ?", reference).First(&lead).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			lead.Reference = reference
			lead.ReceivedAt = ParseDateTime(cellAt(row, cols, FieldReceivedAt))
			lead.Status = cellAt(row, cols, FieldStatus)
			lead.MarketingSource = cellAt(row, cols, FieldMarketingSource)
			lead.CapitalAmount = ParseFloat(cellAt(row, cols, FieldCapitalAmount))
			lead.PaymentType = cellAt(row, cols, FieldPaymentType)
			lead.InterestTotal = ParseFloat(cellAt(row, cols, FieldInterestTotal))
			lead.RepaymentAmount = ParseFloat(cellAt(row, cols, FieldRepayment))
			lead.TotalPayable = ParseFloat(cellAt(row, cols, FieldTotalPayable))
			lead.ProductDescription = cellAt(row, cols, FieldDescription)
			lead.SaleValue = lead.CalculateSaleValue()

			if lead.ProductDescription != "" {
				product := PrimaryProduct(lead.ProductDescription)
				lead.ProductName = product.Name
				if product.Name != "Other" && !newProducts[product.Name] {
					var existing models.Product
					err := tx.Where("name = ?", product.Name).First(&existing).Error
					if errors.Is(err, gorm.ErrRecordNotFound) {
						newProducts[product.Name] = true
					} else if err != nil {
						return err
					}
				}
			}

			lead.CampaignName = nil
			if lead.MarketingSource != "" {
				var mapping models.NameMapping
				err := tx.Where("source_name = ?", lead.MarketingSource).First(&mapping).Error
				switch {
				case err == nil:
					lead.CampaignName = &mapping.CampaignName
				case errors.Is(err, gorm.ErrRecordNotFound):
					unmapped[lead.MarketingSource] = true
				default:
					return err
				}
			}

			if err := tx.Save(&lead).Error; err != nil {
				return err
			}

			// Cross-source link: a known affordability outcome for this
			// reference gets the lead's status and value copied in.
			var app models.Application
			err = tx.Where("lead_id = ?", reference).First(&app).Error
			if err == nil {
				app.Status = lead.Status
				sv := lead.SaleValue
				app.LeadValue = &sv
				if app.AppliedAt == nil {
					app.AppliedAt = lead.ReceivedAt
				}
				if err := tx.Save(&app).Error; err != nil {
					return err
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			res.RecordsProcessed++
		}

		for name := range newProducts {
			product := models.Product{Name: name, Category: CategoryFor(name)}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.NewProducts = sortedKeys(newProducts)
	res.UnmappedSources = sortedKeys(unmapped)
	return res, nil
}

// ProcessAdSpendFile ingests a multi-sheet spend report. Every sheet is
// scanned independently; "historic" files fall back to the reporting period
// encoded in the sheet or file name. Rows append, never update.
func (p *Processor) ProcessAdSpendFile(path, originalName string) (*Result, error) {
	sheets, err := ReadSheets(path)
	if err != nil {
		return nil, err
	}
	historic := strings.Contains(strings.ToLower(originalName), "historic")

	res := &Result{FileType: "ad_spend"}
	newCampaigns := map[string]bool{}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		usable := 0
		for _, sheet := range sheets {
			ok, err := p.processAdSpendSheet(tx, sheet, originalName, historic, res, newCampaigns)
			if err != nil {
				return err
			}
			if ok {
				usable++
			}
		}
		if usable == 0 {
			return errors.New("could not identify required columns in ad spend file")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.NewCampaigns = sortedKeys(newCampaigns)
	return res, nil
}

func (p *Processor) processAdSpendSheet(tx *gorm.DB, sheet Sheet, originalName string, historic bool, res *Result, newCampaigns map[string]bool) (bool, error) {
	if len(sheet.Rows) == 0 {
		return false, nil
	}

	headerRow := FindHeaderRow(sheet.Rows, []string{"date", "reporting", "end"})
	if headerRow < 0 {
		headerRow = 0
	}
	cols := MapColumns(sheet.Rows[headerRow], AdSpendFieldRules)

	if _, ok := cols[FieldCampaign]; !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf("sheet %q skipped: no campaign column", sheet.Name))
		return false, nil
	}
	if _, ok := cols[FieldSpend]; !ok {
		// Lossy fallback: the rightmost all-numeric column is assumed to be
		// the spend figure.
		if idx := LastNumericColumn(sheet.Rows, headerRow, cols); idx >= 0 {
			cols[FieldSpend] = idx
			res.Warnings = append(res.Warnings, fmt.Sprintf("sheet %q: no spend header, guessed column %d", sheet.Name, idx+1))
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("sheet %q skipped: no spend column", sheet.Name))
			return false, nil
		}
	}

	// Historic exports encode the period in the sheet or file name instead
	// of a date column; the day defaults to month end.
	var period *time.Time
	if historic {
		period = PeriodFromName(sheet.Name)
		if period == nil {
			period = PeriodFromName(filepath.Base(originalName))
		}
	}
	if _, ok := cols[FieldDate]; !ok && period == nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("sheet %q skipped: no date column or period in name", sheet.Name))
		return false, nil
	}

	for _, row := range sheet.Rows[headerRow+1:] {
		campaignName := cellAt(row, cols, FieldCampaign)
		if campaignName == "" {
			continue
		}

		date := ParseDate(cellAt(row, cols, FieldDate))
		if date == nil {
			date = period
		}
		if date == nil {
			log.Printf("ad spend row skipped: unparseable date for campaign %q", campaignName)
			res.RowsSkipped++
			continue
		}

		spend := ParseFloat(cellAt(row, cols, FieldSpend))
		if spend == nil || *spend <= 0 {
			log.Printf("ad spend row skipped: no positive spend for campaign %q", campaignName)
			res.RowsSkipped++
			continue
		}

		var campaign models.Campaign
		err := tx.Where("meta_name = ?", campaignName).First(&campaign).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			campaign = models.Campaign{Name: campaignName, MetaName: campaignName}
			if err := tx.Create(&campaign).Error; err != nil {
				return false, err
			}
			newCampaigns[campaignName] = true
		} else if err != nil {
			return false, err
		}

		var adLevel *string
		if v := cellAt(row, cols, FieldAdLevel); v != "" {
			adLevel = &v
		}

		entry := models.AdSpend{
			ReportingEndDate: *date,
			MetaCampaignName: campaignName,
			AdLevel:          adLevel,
			SpendAmount:      *spend,
			IsNew:            ParseBool(cellAt(row, cols, FieldIsNew)) || newCampaigns[campaignName],
			CampaignID:       campaign.ID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return false, err
		}

		res.TotalSpend += *spend
		res.RecordsProcessed++
	}
	return true, nil
}

// ProcessMappingFile ingests the marketing-source to campaign translation
// table, from a two-column spreadsheet/CSV or from tables embedded in a
// Word document.
func (p *Processor) ProcessMappingFile(path string) (*Result, error) {
	var tables [][][]string

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx", ".doc":
		t, err := ReadDocTables(path)
		if err != nil {
			return nil, err
		}
		tables = t
	default:
		sheets, err := ReadSheets(path)
		if err != nil {
			return nil, err
		}
		for _, sheet := range sheets {
			tables = append(tables, sheet.Rows)
		}
	}

	res := &Result{FileType: "name_mapping"}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			for _, row := range table {
				if len(row) < 2 {
					continue
				}
				source := strings.TrimSpace(row[0])
				campaign := strings.TrimSpace(row[1])

				// Data-entry artifact seen in the real documents.
				source = strings.TrimSpace(strings.TrimPrefix(source, "?"))

				if source == "" || campaign == "" {
					continue
				}
				if isMappingHeader(source, campaign) {
					continue
				}

				var mapping models.NameMapping
				err := tx.Where("source_name = ?", source).First(&mapping).Error
				switch {
				case errors.Is(err, gorm.ErrRecordNotFound):
					mapping = models.NameMapping{SourceName: source, CampaignName: campaign}
					if err := tx.Create(&mapping).Error; err != nil {
						return err
					}
					res.MappingsCreated++
				case err != nil:
					return err
				default:
					if mapping.CampaignName != campaign {
						mapping.CampaignName = campaign
						if err := tx.Save(&mapping).Error; err != nil {
							return err
						}
					}
					res.MappingsUpdated++
				}
				res.RecordsProcessed++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

var mappingHeaderWords = []string{"flg", "meta", "name", "source", "campaign", "mapping"}

// isMappingHeader recognizes a repeated header row: both cells read like
// column titles rather than data.
func isMappingHeader(a, b string) bool {
	return containsAny(strings.ToLower(a)) && containsAny(strings.ToLower(b))
}

func containsAny(s string) bool {
	for _, w := range mappingHeaderWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func affordabilityLabel(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, models.AffordabilityPassed):
		return models.AffordabilityPassed
	case strings.Contains(lower, models.AffordabilityFailed):
		return models.AffordabilityFailed
	}
	return ""
}

// pickLeadSheet prefers the conventional "ALL" sheet of the lead export and
// falls back to the first sheet for single-sheet or CSV uploads.
func pickLeadSheet(sheets []Sheet) Sheet {
	for _, s := range sheets {
		if strings.EqualFold(s.Name, "ALL") {
			return s
		}
	}
	return sheets[0]
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
