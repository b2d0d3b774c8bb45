package models

import "time"

// GfasAccount is the lookup table resolving a GFAS account number (plus
// alternative id for the sentinel account) to its account name. The
// console never edits account names; they are fed from the upstream GFAS
// extract.
type GfasAccount struct {
	ID uint64 `gorm:"primaryKey" json:"-"`
	// AccountNo is stored uppercased.
	AccountNo string `gorm:"size:30;not null;index:idx_account_alt,unique" json:"gfasAccountNo"`
	// AltID is blank except for rows of the sentinel account number.
	AltID       string    `gorm:"size:30;index:idx_account_alt,unique" json:"alternativeId"`
	AccountName string    `gorm:"size:255;not null" json:"gfasAccountName"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName specifies the database table name for the GfasAccount model.
func (GfasAccount) TableName() string {
	return "gfas_accounts"
}
