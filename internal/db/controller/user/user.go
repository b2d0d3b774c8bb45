// Package user provides lookups over console user accounts.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
)

// ByUsername retrieves an active user by login name.
func ByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User

	result := db.Where("username = ? AND active = ?", username, true).First(&u)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &u, nil
}

// ByID retrieves an active user by id.
func ByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User

	result := db.Where("id = ? AND active = ?", id, true).First(&u)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, result.Error
	}

	return &u, nil
}

// ByDepartments lists the active users of the given departments ordered
// by display name. The RM dropdown of the add/edit workflow is built
// from this list.
func ByDepartments(db *gorm.DB, departments []string) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if len(departments) == 0 {
		return []models.User{}, nil
	}

	var list []models.User

	err := db.Where("department IN ? AND active = ?", departments, true).
		Order("user_name ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	return list, nil
}
