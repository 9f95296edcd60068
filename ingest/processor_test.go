package ingest

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/craigmalenga/marketing/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Lead{},
		&models.Application{},
		&models.Campaign{},
		&models.AdSpend{},
		&models.Product{},
		&models.NameMapping{},
		&models.StatusMapping{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const leadCSVHeader = "Reference,ReceivedDateTime,Status,MarketingSource,Data5,Data6,Data7,Data8,Data10,Data29\n"

func TestLeadUpsertIdempotence(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "leads.csv", leadCSVHeader+
		"L001,2024-07-01 09:00:00,Active,FacebookSummer,1000,Monthly,200,100,1200,Roma sofa\n"+
		"L002,2024-07-02 10:00:00,Cancelled,GoogleAds,500,Weekly,50,25,600,washing machine\n")

	for i := 0; i < 2; i++ {
		res, err := p.ProcessLeadsFile(path)
		if err != nil {
			t.Fatalf("pass %d: %v", i+1, err)
		}
		if res.RecordsProcessed != 2 {
			t.Fatalf("pass %d: records_processed = %d, want 2", i+1, res.RecordsProcessed)
		}
	}

	var count int64
	db.Model(&models.Lead{}).Count(&count)
	if count != 2 {
		t.Fatalf("lead count after double ingest = %d, want 2", count)
	}

	var lead models.Lead
	if err := db.Where("reference = ?", "L001").First(&lead).Error; err != nil {
		t.Fatalf("find L001: %v", err)
	}
	if lead.ProductName != "Sofa - Roma" {
		t.Fatalf("product = %q, want Sofa - Roma", lead.ProductName)
	}
	if lead.SaleValue != 1200 {
		t.Fatalf("sale value = %v, want 1200 (Monthly uses total payable)", lead.SaleValue)
	}
	if lead.ReceivedAt == nil || !lead.ReceivedAt.Equal(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("received_at = %v", lead.ReceivedAt)
	}
}

func TestLeadNewProductsAndUnmappedSources(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "leads.csv", leadCSVHeader+
		"L010,2024-07-01,Active,Spring2025FB,800,,,,,Roma sofa\n")

	res, err := p.ProcessLeadsFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.NewProducts) != 1 || res.NewProducts[0] != "Sofa - Roma" {
		t.Fatalf("new_products = %v, want [Sofa - Roma]", res.NewProducts)
	}
	if len(res.UnmappedSources) != 1 || res.UnmappedSources[0] != "Spring2025FB" {
		t.Fatalf("unmapped_sources = %v, want [Spring2025FB]", res.UnmappedSources)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("warnings = %v, want empty-table advisories for applications and mappings", res.Warnings)
	}

	var lead models.Lead
	if err := db.Where("reference = ?", "L010").First(&lead).Error; err != nil {
		t.Fatal(err)
	}
	if lead.CampaignName != nil {
		t.Fatalf("campaign_name = %v, want nil for unmapped source", *lead.CampaignName)
	}

	var product models.Product
	if err := db.Where("name = ?", "Sofa - Roma").First(&product).Error; err != nil {
		t.Fatalf("auto-created product missing: %v", err)
	}
	if product.Category != models.CategorySofa {
		t.Fatalf("product category = %q, want %q", product.Category, models.CategorySofa)
	}
}

func TestLeadCampaignAttribution(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&models.NameMapping{SourceName: "FacebookSummer", CampaignName: "Summer Push"}).Error; err != nil {
		t.Fatal(err)
	}
	p := NewProcessor(db)

	path := writeTempFile(t, "leads.csv", leadCSVHeader+
		"L020,2024-07-01,Active,FacebookSummer,900,,,,,laptop\n")

	res, err := p.ProcessLeadsFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.UnmappedSources) != 0 {
		t.Fatalf("unmapped_sources = %v, want none", res.UnmappedSources)
	}

	var lead models.Lead
	if err := db.Where("reference = ?", "L020").First(&lead).Error; err != nil {
		t.Fatal(err)
	}
	if lead.CampaignName == nil || *lead.CampaignName != "Summer Push" {
		t.Fatalf("campaign_name = %v, want Summer Push", lead.CampaignName)
	}
}

func TestLeadRowFaultTolerance(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	// One garbage capital amount must not abort the batch: the field parses
	// to nil and the row still ingests.
	path := writeTempFile(t, "leads.csv", leadCSVHeader+
		"L030,2024-07-01,Active,src,1000,,,,,sofa\n"+
		"L031,2024-07-01,Active,src,not-a-number,,,,,sofa\n"+
		"L032,2024-07-01,Active,src,500,,,,,sofa\n")

	res, err := p.ProcessLeadsFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordsProcessed != 3 {
		t.Fatalf("records_processed = %d, want 3", res.RecordsProcessed)
	}

	var lead models.Lead
	if err := db.Where("reference = ?", "L031").First(&lead).Error; err != nil {
		t.Fatal(err)
	}
	if lead.CapitalAmount != nil {
		t.Fatalf("capital_amount = %v, want nil", *lead.CapitalAmount)
	}
	if lead.SaleValue != 0 {
		t.Fatalf("sale_value = %v, want 0", lead.SaleValue)
	}
}

func TestLeadFileMissingReferenceColumn(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "leads.csv", "Name,Value\nBob,12\n")
	if _, err := p.ProcessLeadsFile(path); err == nil {
		t.Fatal("expected structural error for missing reference column")
	}

	var count int64
	db.Model(&models.Lead{}).Count(&count)
	if count != 0 {
		t.Fatalf("lead count = %d, want 0 after rejected file", count)
	}
}

func TestAdSpendAppendOnly(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "spend.csv",
		"Date,Campaign Name,Ad Level,Spend\n"+
			"2024-07-01,Summer Push,Ad 1,120.50\n"+
			"2024-07-01,Summer Push,Ad 2,80\n")

	res1, err := p.ProcessAdSpendFile(path, "spend.csv")
	if err != nil {
		t.Fatal(err)
	}
	if res1.RecordsProcessed != 2 || res1.TotalSpend != 200.5 {
		t.Fatalf("first pass: processed=%d spend=%v, want 2 / 200.5", res1.RecordsProcessed, res1.TotalSpend)
	}
	if len(res1.NewCampaigns) != 1 || res1.NewCampaigns[0] != "Summer Push" {
		t.Fatalf("new_campaigns = %v, want [Summer Push]", res1.NewCampaigns)
	}

	res2, err := p.ProcessAdSpendFile(path, "spend.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(res2.NewCampaigns) != 0 {
		t.Fatalf("second pass new_campaigns = %v, want none", res2.NewCampaigns)
	}

	// Documented non-idempotence: the same file twice doubles the rows and
	// the recorded spend.
	var count int64
	db.Model(&models.AdSpend{}).Count(&count)
	if count != 4 {
		t.Fatalf("ad spend rows = %d, want 4", count)
	}
	var total float64
	db.Model(&models.AdSpend{}).Select("COALESCE(SUM(spend_amount), 0)").Scan(&total)
	if total != 401.0 {
		t.Fatalf("total spend = %v, want 401", total)
	}

	var campaigns int64
	db.Model(&models.Campaign{}).Count(&campaigns)
	if campaigns != 1 {
		t.Fatalf("campaign count = %d, want 1", campaigns)
	}
}

func TestAdSpendSkipsBadRows(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "spend.csv",
		"Date,Campaign Name,Spend\n"+
			"2024-07-01,Good,50\n"+
			"2024-07-01,ZeroSpend,0\n"+
			"2024-07-01,Negative,-5\n"+
			"2024-07-01,Garbage,abc\n"+
			"not-a-date,BadDate,75\n")

	res, err := p.ProcessAdSpendFile(path, "spend.csv")
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordsProcessed != 1 {
		t.Fatalf("records_processed = %d, want 1", res.RecordsProcessed)
	}
	if res.RowsSkipped != 4 {
		t.Fatalf("rows_skipped = %d, want 4", res.RowsSkipped)
	}
}

func TestAdSpendHistoricPeriodFromName(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "historic_spend_Jul24.csv",
		"Campaign Name,Spend\n"+
			"Legacy Campaign,300\n")

	res, err := p.ProcessAdSpendFile(path, "historic_spend_Jul24.csv")
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordsProcessed != 1 {
		t.Fatalf("records_processed = %d, want 1", res.RecordsProcessed)
	}

	var row models.AdSpend
	if err := db.First(&row).Error; err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
	if !row.ReportingEndDate.Equal(want) {
		t.Fatalf("reporting_end_date = %v, want %v (month end from file name)", row.ReportingEndDate, want)
	}
}

func TestAdSpendSpendColumnFallback(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "spend.csv",
		"Date,Campaign Name,Figure\n"+
			"2024-07-01,Mystery,42.5\n")

	res, err := p.ProcessAdSpendFile(path, "spend.csv")
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordsProcessed != 1 {
		t.Fatalf("records_processed = %d, want 1", res.RecordsProcessed)
	}
	var row models.AdSpend
	if err := db.First(&row).Error; err != nil {
		t.Fatal(err)
	}
	if row.SpendAmount != 42.5 {
		t.Fatalf("spend = %v, want 42.5 via numeric-column fallback", row.SpendAmount)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning about the guessed spend column")
	}
}

func TestAffordabilityThenLeadEndToEnd(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	appPath := writeTempFile(t, "affordability_passed.csv", "Lead ID\n12345\n")
	res, err := p.ProcessApplicationsFile(appPath, "affordability_passed.csv")
	if err != nil {
		t.Fatal(err)
	}
	if res.PassedCount != 1 || res.FailedCount != 0 {
		t.Fatalf("passed=%d failed=%d, want 1/0", res.PassedCount, res.FailedCount)
	}

	leadPath := writeTempFile(t, "leads.csv", leadCSVHeader+
		"12345,2024-07-01,Approved,src,1000,,,,,sofa\n")
	if _, err := p.ProcessLeadsFile(leadPath); err != nil {
		t.Fatal(err)
	}

	var apps []models.Application
	if err := db.Find(&apps).Error; err != nil {
		t.Fatal(err)
	}
	if len(apps) != 1 {
		t.Fatalf("application count = %d, want 1", len(apps))
	}
	app := apps[0]
	if app.LeadID != "12345" {
		t.Fatalf("lead_id = %q, want 12345", app.LeadID)
	}
	if app.AffordabilityResult != models.AffordabilityPassed {
		t.Fatalf("affordability_result = %q, want passed", app.AffordabilityResult)
	}
	if app.Status != "Approved" {
		t.Fatalf("status = %q, want Approved", app.Status)
	}
	if app.LeadValue == nil || *app.LeadValue != 1000 {
		t.Fatalf("lead_value = %v, want 1000", app.LeadValue)
	}
}

func TestLeadThenAffordabilityOrderIndependent(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	leadPath := writeTempFile(t, "leads.csv", leadCSVHeader+
		"777,2024-07-01,Active,src,250,,,,,tv\n")
	if _, err := p.ProcessLeadsFile(leadPath); err != nil {
		t.Fatal(err)
	}

	appPath := writeTempFile(t, "affordability_failed.csv", "Lead ID\n777\n")
	if _, err := p.ProcessApplicationsFile(appPath, "affordability_failed.csv"); err != nil {
		t.Fatal(err)
	}

	var app models.Application
	if err := db.Where("lead_id = ?", "777").First(&app).Error; err != nil {
		t.Fatal(err)
	}
	if app.AffordabilityResult != models.AffordabilityFailed {
		t.Fatalf("affordability_result = %q, want failed", app.AffordabilityResult)
	}
	if app.Status != "Active" {
		t.Fatalf("status = %q, want Active (copied from existing lead)", app.Status)
	}
	if app.LeadValue == nil || *app.LeadValue != 250 {
		t.Fatalf("lead_value = %v, want 250", app.LeadValue)
	}
}

func TestApplicationsUpsertByLeadID(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "affordability_passed.csv", "Lead ID\n555\n555\n")
	res, err := p.ProcessApplicationsFile(path, "affordability_passed.csv")
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordsProcessed != 2 {
		t.Fatalf("records_processed = %d, want 2", res.RecordsProcessed)
	}

	var count int64
	db.Model(&models.Application{}).Count(&count)
	if count != 1 {
		t.Fatalf("application count = %d, want 1 (upsert by lead id)", count)
	}
}

func TestApplicationsStructuralFailureRollsBack(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Affordability data - passed")
	if err := f.SetSheetRow("Affordability data - passed", "A1", &[]interface{}{"Lead ID"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Affordability data - passed", "A2", &[]interface{}{"9001"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.NewSheet("Affordability data - failed"); err != nil {
		t.Fatal(err)
	}
	// Anchor word present but no lead-id column: structural failure.
	if err := f.SetSheetRow("Affordability data - failed", "A1", &[]interface{}{"DateTime", "Customer"}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "affordability.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	if _, err := p.ProcessApplicationsFile(path, "affordability.xlsx"); err == nil {
		t.Fatal("expected structural failure")
	}

	// The valid first sheet must have been rolled back with the batch.
	var count int64
	db.Model(&models.Application{}).Count(&count)
	if count != 0 {
		t.Fatalf("application count = %d, want 0 after rollback", count)
	}
}

func TestApplicationsFileWithoutLabel(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "upload.csv", "Lead ID\n1\n")
	if _, err := p.ProcessApplicationsFile(path, "upload.csv"); err == nil {
		t.Fatal("expected error when neither filename nor sheet names carry passed/failed")
	}
}

const mappingDocXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Campaign name mappings</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>FLG Name</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Meta Name</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>?Facebook Spring</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Spring Campaign</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>TikTok Jan</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Jan Push</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mappings.docx")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(out)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMappingFileFromDocx(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeDocx(t, mappingDocXML)
	res, err := p.ProcessMappingFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.MappingsCreated != 2 || res.MappingsUpdated != 0 {
		t.Fatalf("created=%d updated=%d, want 2/0", res.MappingsCreated, res.MappingsUpdated)
	}

	// Header-ish first row skipped, leading "?" stripped.
	var mapping models.NameMapping
	if err := db.Where("source_name = ?", "Facebook Spring").First(&mapping).Error; err != nil {
		t.Fatalf("stripped source name not found: %v", err)
	}
	if mapping.CampaignName != "Spring Campaign" {
		t.Fatalf("campaign = %q, want Spring Campaign", mapping.CampaignName)
	}

	var count int64
	db.Model(&models.NameMapping{}).Count(&count)
	if count != 2 {
		t.Fatalf("mapping count = %d, want 2", count)
	}
}

func TestMappingFileUpsertsFromCSV(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "mappings.csv",
		"FLG Name,Meta Name\n"+
			"Facebook Spring,Spring Campaign\n")
	res, err := p.ProcessMappingFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.MappingsCreated != 1 {
		t.Fatalf("created = %d, want 1", res.MappingsCreated)
	}

	repath := writeTempFile(t, "mappings2.csv",
		"FLG Name,Meta Name\n"+
			"Facebook Spring,Renamed Campaign\n")
	res, err = p.ProcessMappingFile(repath)
	if err != nil {
		t.Fatal(err)
	}
	if res.MappingsCreated != 0 || res.MappingsUpdated != 1 {
		t.Fatalf("created=%d updated=%d, want 0/1", res.MappingsCreated, res.MappingsUpdated)
	}

	var mapping models.NameMapping
	if err := db.Where("source_name = ?", "Facebook Spring").First(&mapping).Error; err != nil {
		t.Fatal(err)
	}
	if mapping.CampaignName != "Renamed Campaign" {
		t.Fatalf("campaign = %q, want Renamed Campaign", mapping.CampaignName)
	}
}

func TestUnsupportedExtensionIsStructural(t *testing.T) {
	db := newTestDB(t)
	p := NewProcessor(db)

	path := writeTempFile(t, "leads.pdf", "not a table")
	if _, err := p.ProcessLeadsFile(path); err == nil {
		t.Fatal("expected unsupported-extension error")
	}
}
