// Package reference serves the categorized dropdown values used by the
// mapping add/edit workflow.
package reference

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrCategoryUnknown is returned for an unrecognized category.
	ErrCategoryUnknown = errors.New("unknown reference category")
)

var knownCategories = map[string]bool{
	models.RefCategoryFundClass:       true,
	models.RefCategoryPortfolioNature: true,
	models.RefCategoryPensionCategory: true,
	models.RefCategoryMemberChoice:    true,
}

// ByCategory returns the values of one category in display order.
func ByCategory(db *gorm.DB, category string) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if !knownCategories[category] {
		return nil, ErrCategoryUnknown
	}

	var values []string

	err := db.Model(&models.ImrReference{}).
		Where("category = ?", category).
		Order("display_order ASC, value ASC").
		Pluck("value", &values).Error
	if err != nil {
		return nil, err
	}

	return values, nil
}
