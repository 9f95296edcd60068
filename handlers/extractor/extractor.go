package extractor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craigmalenga/marketing/ingest"
)

type extractRequest struct {
	Description string `json:"description"`
}

// Extract runs the product extractor on a description without touching the
// database. Operators use it to check what a lead file will derive before
// uploading.
func Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	products := ingest.ExtractProducts(req.Description)
	total := 0.0
	for _, p := range products {
		total += p.Price
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"description": req.Description,
		"products":    products,
		"total_value": total,
	})
}
