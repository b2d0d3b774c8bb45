// Package auditlog reads the mapping audit trail. Entries are written
// by the mapping controller; this package only queries them.
package auditlog

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

const (
	// DefaultPageSize for paged audit queries.
	DefaultPageSize = 20
	// MaxPageSize caps client supplied page sizes.
	MaxPageSize = 100
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Query returns audit entries newest first, filtered by account number
// and/or account name. Both criteria are optional; the audit screen
// lists everything on its initial fetch.
func Query(db *gorm.DB, accountNo, accountName string, pageNum, pageSize int) ([]models.MappingAuditLog, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	if pageNum < 1 {
		pageNum = 1
	}

	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	tx := db.Model(&models.MappingAuditLog{})

	if accountNo = strings.ToUpper(strings.TrimSpace(accountNo)); accountNo != "" {
		tx = tx.Where("gfas_account_no LIKE ?", "%"+accountNo+"%")
	}

	if accountName = strings.TrimSpace(accountName); accountName != "" {
		tx = tx.Where("LOWER(gfas_account_name) LIKE ?", "%"+strings.ToLower(accountName)+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.MappingAuditLog

	offset := (pageNum - 1) * pageSize
	if err := tx.Order("log_id DESC").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}
