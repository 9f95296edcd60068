package mappings

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/craigmalenga/marketing/models"
	"github.com/craigmalenga/marketing/utils"
)

func GetStatusMappings(c *gin.Context) {
	var rows []models.StatusMapping
	if err := utils.DB.Order("status_name").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

type statusMappingRequest struct {
	StatusName             string `json:"status_name"`
	IsApplicationReceived  *int   `json:"is_application_received"`
	IsApplicationProcessed *int   `json:"is_application_processed"`
	IsApplicationApproved  *int   `json:"is_application_approved"`
	IsFuture               *int   `json:"is_future"`
}

func CreateStatusMapping(c *gin.Context) {
	var req statusMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.StatusName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Status name is required"})
		return
	}

	var existing models.StatusMapping
	if err := utils.DB.Where("status_name = ?", req.StatusName).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Status already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	mapping := models.StatusMapping{StatusName: req.StatusName}
	applyStatusFlags(&mapping, req)

	if err := utils.DB.Create(&mapping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status mapping created successfully", "data": mapping})
}

func UpdateStatusMapping(c *gin.Context) {
	var mapping models.StatusMapping
	if err := utils.DB.First(&mapping, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Status mapping not found"})
		return
	}

	var req statusMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.StatusName != "" {
		mapping.StatusName = req.StatusName
	}
	applyStatusFlags(&mapping, req)

	if err := utils.DB.Save(&mapping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status mapping updated successfully", "data": mapping})
}

func DeleteStatusMapping(c *gin.Context) {
	var mapping models.StatusMapping
	if err := utils.DB.First(&mapping, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Status mapping not found"})
		return
	}
	if err := utils.DB.Delete(&mapping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status mapping deleted successfully"})
}

func applyStatusFlags(mapping *models.StatusMapping, req statusMappingRequest) {
	if req.IsApplicationReceived != nil {
		mapping.IsApplicationReceived = *req.IsApplicationReceived
	}
	if req.IsApplicationProcessed != nil {
		mapping.IsApplicationProcessed = *req.IsApplicationProcessed
	}
	if req.IsApplicationApproved != nil {
		mapping.IsApplicationApproved = *req.IsApplicationApproved
	}
	if req.IsFuture != nil {
		mapping.IsFuture = *req.IsFuture
	}
}

func GetNameMappings(c *gin.Context) {
	var rows []models.NameMapping
	if err := utils.DB.Order("source_name").Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
}

type nameMappingRequest struct {
	SourceName   string `json:"source_name"`
	CampaignName string `json:"campaign_name"`
}

func CreateNameMapping(c *gin.Context) {
	var req nameMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.SourceName == "" || req.CampaignName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Source name and campaign name are required"})
		return
	}

	mapping := models.NameMapping{SourceName: req.SourceName, CampaignName: req.CampaignName}
	if err := utils.DB.Create(&mapping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Name mapping created successfully", "data": mapping})
}

func UpdateNameMapping(c *gin.Context) {
	var mapping models.NameMapping
	if err := utils.DB.First(&mapping, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Name mapping not found"})
		return
	}

	var req nameMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if req.SourceName != "" {
		mapping.SourceName = req.SourceName
	}
	if req.CampaignName != "" {
		mapping.CampaignName = req.CampaignName
	}

	if err := utils.DB.Save(&mapping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Name mapping updated successfully", "data": mapping})
}

func DeleteNameMapping(c *gin.Context) {
	var mapping models.NameMapping
	if err := utils.DB.First(&mapping, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Name mapping not found"})
		return
	}
	if err := utils.DB.Delete(&mapping).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Name mapping deleted successfully"})
}
