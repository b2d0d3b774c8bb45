package daemon

import (
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/policy"
)

func seed(_ *config.Config, db *gorm.DB) {
	// Seed initial data if user table is empty

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		// Create default admin user
		db.Create(
			&models.User{
				Username:         "admin",
				UserName:         "Administrator",
				Password:         models.HashPassword("changeme"),
				Active:           true,
				GroupCompanyRole: string(policy.RoleAdmin),
				Department:       "IMR",
			},
		)
	}

	db.Model(&models.ImrReference{}).Count(&count)
	if count == 0 {
		db.Create(&[]models.ImrReference{
			{Category: models.RefCategoryFundClass, Value: "FRMT", DisplayOrder: 1},
			{Category: models.RefCategoryFundClass, Value: "FQIF - A", DisplayOrder: 2},
			{Category: models.RefCategoryFundClass, Value: "FQIF - B", DisplayOrder: 3},
			{Category: models.RefCategoryPortfolioNature, Value: "DC(full service)", DisplayOrder: 1},
			{Category: models.RefCategoryPortfolioNature, Value: "Pension", DisplayOrder: 2},
			{Category: models.RefCategoryPensionCategory, Value: "MPF- Direct", DisplayOrder: 1},
			{Category: models.RefCategoryPensionCategory, Value: "ORSO", DisplayOrder: 2},
			{Category: models.RefCategoryMemberChoice, Value: "Member Choice", DisplayOrder: 1},
			{Category: models.RefCategoryMemberChoice, Value: "No Member Choice", DisplayOrder: 2},
		})
	}

	// the shared account needs at least one alt id to resolve against
	db.Model(&models.GfasAccount{}).Where("account_no = ?", models.SentinelAccountNo).Count(&count)
	if count == 0 {
		db.Create(&models.GfasAccount{
			AccountNo:   models.SentinelAccountNo,
			AltID:       "DEFAULT",
			AccountName: "SHARED CLIENT ACCOUNT",
		})
	}
}
