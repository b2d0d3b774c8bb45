// Package feeletter manages fee letter metadata. File payloads live on
// disk under the configured letter path, keyed by object id; this
// package owns the metadata rows and the object id lifecycle.
package feeletter

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

const (
	// DefaultPageSize for paged letter queries.
	DefaultPageSize = 20
	// MaxPageSize caps client supplied page sizes.
	MaxPageSize = 100
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrLetterNotFound is returned when a fee letter is not found.
	ErrLetterNotFound = errors.New("fee letter not found")
	// ErrFileNameEmpty is returned for an upload without a file name.
	ErrFileNameEmpty = errors.New("file name must not be empty")
)

// QueryParams carries the fee letter search criteria.
type QueryParams struct {
	// Comment matches as a case insensitive substring.
	Comment string
	// UploadUserName is an exact match.
	UploadUserName string

	PageNum  int
	PageSize int
}

// Query runs a paged search over fee letters, newest first.
func Query(db *gorm.DB, p QueryParams) ([]models.FeeLetter, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	if p.PageNum < 1 {
		p.PageNum = 1
	}

	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}

	tx := db.Model(&models.FeeLetter{})

	if p.Comment != "" {
		tx = tx.Where("LOWER(comment) LIKE ?", "%"+strings.ToLower(p.Comment)+"%")
	}

	if p.UploadUserName != "" {
		tx = tx.Where("upload_user_name = ?", p.UploadUserName)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.FeeLetter

	offset := (p.PageNum - 1) * p.PageSize
	if err := tx.Order("letter_id DESC").Limit(p.PageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// Create registers an uploaded letter and returns the record with its
// freshly assigned object id. The comment falls back to the file name
// when blank.
func Create(db *gorm.DB, fileName, comment, uploaderName string) (*models.FeeLetter, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, ErrFileNameEmpty
	}

	comment = strings.TrimSpace(comment)
	if comment == "" {
		comment = fileName
	}

	letter := &models.FeeLetter{
		Comment:        comment,
		FileName:       fileName,
		UploadUserName: uploaderName,
		S3ObjectID:     uuid.NewString(),
		CreatedBy:      uploaderName,
	}

	if err := db.Create(letter).Error; err != nil {
		return nil, err
	}

	return letter, nil
}

// Get retrieves one fee letter by id.
func Get(db *gorm.DB, letterID uint64) (*models.FeeLetter, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var letter models.FeeLetter

	result := db.First(&letter, letterID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLetterNotFound
		}

		return nil, result.Error
	}

	return &letter, nil
}

// Remove deletes a fee letter row and returns the removed record so the
// caller can delete the stored payload as well.
func Remove(db *gorm.DB, letterID uint64) (*models.FeeLetter, error) {
	letter, err := Get(db, letterID)
	if err != nil {
		return nil, err
	}

	if err := db.Delete(&models.FeeLetter{}, letterID).Error; err != nil {
		return nil, err
	}

	return letter, nil
}
