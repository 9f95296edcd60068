package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/craigmalenga/marketing/handlers/extractor"
	"github.com/craigmalenga/marketing/handlers/mappings"
	"github.com/craigmalenga/marketing/handlers/reports"
	"github.com/craigmalenga/marketing/handlers/upload"
	"github.com/craigmalenga/marketing/migrations"
	"github.com/craigmalenga/marketing/seed"
	"github.com/craigmalenga/marketing/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env file:", err)
	}
}

func main() {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	utils.ConnectDatabase()

	if err := migrations.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := seed.StatusMappings(); err != nil {
		log.Fatalf("Failed to seed status mappings: %v", err)
	}
	if err := seed.Products(); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
		})

		up := api.Group("/upload")
		{
			up.POST("/applications", upload.Applications)
			up.POST("/leads", upload.Leads)
			up.POST("/ad-spend", upload.AdSpend)
			up.POST("/name-mapping", upload.NameMapping)
			up.GET("/status", upload.Status)
		}

		mp := api.Group("/mappings")
		{
			mp.GET("/status", mappings.GetStatusMappings)
			mp.POST("/status", mappings.CreateStatusMapping)
			mp.PUT("/status/:id", mappings.UpdateStatusMapping)
			mp.DELETE("/status/:id", mappings.DeleteStatusMapping)
			mp.GET("/name", mappings.GetNameMappings)
			mp.POST("/name", mappings.CreateNameMapping)
			mp.PUT("/name/:id", mappings.UpdateNameMapping)
			mp.DELETE("/name/:id", mappings.DeleteNameMapping)
		}

		rp := api.Group("/reports")
		{
			rp.GET("/credit-performance", reports.CreditPerformance)
			rp.GET("/credit-performance/export", reports.ExportCreditPerformance)
			rp.GET("/marketing-campaign", reports.MarketingCampaign)
			rp.GET("/marketing-campaign/export", reports.ExportMarketingCampaign)
			rp.GET("/summary", reports.Summary)
		}

		api.POST("/extract/products", extractor.Extract)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
