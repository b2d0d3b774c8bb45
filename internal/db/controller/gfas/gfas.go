// Package gfas resolves GFAS account names from the replicated account
// reference table. The mapping add workflow uses it to derive the
// account name server-side instead of trusting client input.
package gfas

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrAccountNotFound is returned when no account matches.
	ErrAccountNotFound = errors.New("gfas account not found")
	// ErrAltIDRequired is returned when looking up the shared account
	// number without an alternative id.
	ErrAltIDRequired = errors.New("alternative id is required for the shared gfas account")
)

// LookupName resolves the account name for an account number. The
// shared sentinel account number holds many unrelated accounts, so it
// resolves through the alternative id; for any other account the
// alternative id is ignored.
func LookupName(db *gorm.DB, accountNo, altID string) (string, error) {
	if db == nil {
		return "", ErrDBNil
	}

	accountNo = strings.ToUpper(strings.TrimSpace(accountNo))
	altID = strings.ToUpper(strings.TrimSpace(altID))

	tx := db.Model(&models.GfasAccount{}).Where("account_no = ?", accountNo)

	if accountNo == models.SentinelAccountNo {
		if altID == "" {
			return "", ErrAltIDRequired
		}

		tx = tx.Where("alt_id = ?", altID)
	}

	var acct models.GfasAccount

	result := tx.Limit(1).Find(&acct)
	if result.Error != nil {
		return "", result.Error
	}

	if result.RowsAffected == 0 {
		return "", ErrAccountNotFound
	}

	return acct.AccountName, nil
}
