package upload

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craigmalenga/marketing/ingest"
	"github.com/craigmalenga/marketing/models"
	"github.com/craigmalenga/marketing/utils"
)

var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".csv":  true,
	".txt":  true,
	".docx": true,
	".doc":  true,
}

func uploadDir() string {
	if dir := os.Getenv("UPLOAD_FOLDER"); dir != "" {
		return dir
	}
	return filepath.Join("data", "uploads")
}

// saveUpload stores the multipart file under a timestamped name and returns
// its path plus the original filename (the ingestion pipeline reads labels
// like "passed" and "historic" from it).
func saveUpload(c *gin.Context, prefix string) (string, string, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return "", "", fmt.Errorf("no file provided")
	}
	if file.Filename == "" {
		return "", "", fmt.Errorf("no file selected")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", "", fmt.Errorf("invalid file type %q", ext)
	}

	if err := os.MkdirAll(uploadDir(), 0o755); err != nil {
		return "", "", err
	}
	name := fmt.Sprintf("%s_%s_%s", prefix, time.Now().Format("20060102_150405"), filepath.Base(file.Filename))
	path := filepath.Join(uploadDir(), name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		return "", "", err
	}
	return path, file.Filename, nil
}

func Applications(c *gin.Context) {
	path, original, err := saveUpload(c, "applications")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer os.Remove(path)

	result, err := ingest.NewProcessor(utils.DB).ProcessApplicationsFile(path, original)
	if err != nil {
		log.Printf("Error processing applications file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Applications file processed successfully",
		"file_type":         result.FileType,
		"records_processed": result.RecordsProcessed,
		"passed_count":      result.PassedCount,
		"failed_count":      result.FailedCount,
		"warnings":          result.Warnings,
	})
}

func Leads(c *gin.Context) {
	path, _, err := saveUpload(c, "leads")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer os.Remove(path)

	result, err := ingest.NewProcessor(utils.DB).ProcessLeadsFile(path)
	if err != nil {
		log.Printf("Error processing lead file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Lead file processed successfully",
		"file_type":         result.FileType,
		"records_processed": result.RecordsProcessed,
		"new_products":      result.NewProducts,
		"unmapped_sources":  result.UnmappedSources,
		"warnings":          result.Warnings,
	})
}

func AdSpend(c *gin.Context) {
	path, original, err := saveUpload(c, "ad_spend")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer os.Remove(path)

	result, err := ingest.NewProcessor(utils.DB).ProcessAdSpendFile(path, original)
	if err != nil {
		log.Printf("Error processing ad spend file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"message":           "Ad spend file processed successfully",
		"file_type":         result.FileType,
		"records_processed": result.RecordsProcessed,
		"rows_skipped":      result.RowsSkipped,
		"new_campaigns":     result.NewCampaigns,
		"total_spend":       result.TotalSpend,
		"warnings":          result.Warnings,
	})
}

func NameMapping(c *gin.Context) {
	path, _, err := saveUpload(c, "name_mapping")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer os.Remove(path)

	result, err := ingest.NewProcessor(utils.DB).ProcessMappingFile(path)
	if err != nil {
		log.Printf("Error processing mapping file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Name mapping file processed successfully",
		"file_type":        result.FileType,
		"mappings_created": result.MappingsCreated,
		"mappings_updated": result.MappingsUpdated,
	})
}

// Status reports the latest ingest timestamp and row count per table, for
// the operator dashboard.
func Status(c *gin.Context) {
	type tableStatus struct {
		LastUpload *time.Time `json:"last_upload"`
		Total      int64      `json:"total_records"`
	}
	status := map[string]tableStatus{}

	collect := func(key string, model interface{}) error {
		var count int64
		if err := utils.DB.Model(model).Count(&count).Error; err != nil {
			return err
		}
		entry := tableStatus{Total: count}
		if count > 0 {
			var latest struct {
				CreatedAt time.Time
			}
			if err := utils.DB.Model(model).Order("created_at DESC").Limit(1).Scan(&latest).Error; err != nil {
				return err
			}
			entry.LastUpload = &latest.CreatedAt
		}
		status[key] = entry
		return nil
	}

	for key, model := range map[string]interface{}{
		"applications":  &models.Application{},
		"leads":         &models.Lead{},
		"ad_spend":      &models.AdSpend{},
		"name_mappings": &models.NameMapping{},
	} {
		if err := collect(key, model); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "status": status})
}
