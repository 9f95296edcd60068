package seed

import (
	"log"

	"github.com/craigmalenga/marketing/ingest"
	"github.com/craigmalenga/marketing/models"
	"github.com/craigmalenga/marketing/utils"
)

// StatusMappings inserts the default funnel flags for every known status
// string. Skips seeding when the table already has rows.
func StatusMappings() error {
	var count int64
	if err := utils.DB.Model(&models.StatusMapping{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Status mappings already seeded. Skipping.")
		return nil
	}

	rows := models.DefaultStatusMappings()
	if err := utils.DB.Create(&rows).Error; err != nil {
		return err
	}
	log.Printf("Seeded %d status mappings", len(rows))
	return nil
}

// Products inserts the extractor catalog with its category assignments.
func Products() error {
	var count int64
	if err := utils.DB.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Product catalog already seeded. Skipping.")
		return nil
	}

	var rows []models.Product
	for _, name := range ingest.CatalogProductNames() {
		rows = append(rows, models.Product{Name: name, Category: ingest.CategoryFor(name)})
	}
	if err := utils.DB.Create(&rows).Error; err != nil {
		return err
	}
	log.Printf("Seeded %d products", len(rows))
	return nil
}
