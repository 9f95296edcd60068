package migrations

import (
	"github.com/craigmalenga/marketing/models"
	"github.com/craigmalenga/marketing/utils"
)

func Migrate() error {
	return utils.DB.AutoMigrate(
		&models.Lead{},
		&models.Application{},
		&models.Campaign{},
		&models.AdSpend{},
		&models.Product{},
		&models.NameMapping{},
		&models.StatusMapping{},
	)
}
