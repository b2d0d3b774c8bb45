package models

import "time"

// Audit actions recorded for mapping changes.
const (
	AuditActionAdd        = "Add"
	AuditActionUpdate     = "Update"
	AuditActionDelete     = "Delete"
	AuditActionBulkAdd    = "BulkAdd"
	AuditActionBulkUpdate = "BulkUpdate"
	AuditActionBulkDelete = "BulkDelete"
)

// MappingAuditLog is an immutable record of one mapping change. Old and
// new field values are nullable on purpose: a nil pointer means the field
// was not part of the change, which is what the audit viewer keys its
// diff rendering on.
type MappingAuditLog struct {
	LogID           uint64    `gorm:"primaryKey" json:"logId"`
	GfasAccountNo   string    `gorm:"size:30;not null;index" json:"gfasAccountNo"`
	GfasAccountName string    `gorm:"size:255" json:"gfasAccountName"`
	AlternativeID   string    `gorm:"size:30" json:"alternativeId"`
	Action          string    `gorm:"size:20;not null" json:"action"`
	CreatedUserName string    `gorm:"size:100;not null" json:"createdUserName"`
	CreatedAt       time.Time `json:"createdDate"`

	OldHeadGroup         *string `gorm:"size:255" json:"oldHeadGroup,omitempty"`
	NewHeadGroup         *string `gorm:"size:255" json:"newHeadGroup,omitempty"`
	OldWiGroup           *string `gorm:"size:255" json:"oldWiGroup,omitempty"`
	NewWiGroup           *string `gorm:"size:255" json:"newWiGroup,omitempty"`
	OldWiCustomizedGroup *string `gorm:"size:255" json:"oldWiCustomizedGroup,omitempty"`
	NewWiCustomizedGroup *string `gorm:"size:255" json:"newWiCustomizedGroup,omitempty"`
	OldFundClass         *string `gorm:"size:50" json:"oldFundClass,omitempty"`
	NewFundClass         *string `gorm:"size:50" json:"newFundClass,omitempty"`
	OldPensionCategory   *string `gorm:"size:50" json:"oldPensionCategory,omitempty"`
	NewPensionCategory   *string `gorm:"size:50" json:"newPensionCategory,omitempty"`
	OldPortfolioNature   *string `gorm:"size:50" json:"oldPortfolioNature,omitempty"`
	NewPortfolioNature   *string `gorm:"size:50" json:"newPortfolioNature,omitempty"`
	OldMemberChoice      *string `gorm:"size:50" json:"oldMemberChoice,omitempty"`
	NewMemberChoice      *string `gorm:"size:50" json:"newMemberChoice,omitempty"`
	OldRmName            *string `gorm:"size:100" json:"oldRmName,omitempty"`
	NewRmName            *string `gorm:"size:100" json:"newRmName,omitempty"`
	OldAgent             *string `gorm:"size:255" json:"oldAgent,omitempty"`
	NewAgent             *string `gorm:"size:255" json:"newAgent,omitempty"`
	OldIsGlobalClient    *string `gorm:"size:1" json:"oldIsGlobalClient,omitempty"`
	NewIsGlobalClient    *string `gorm:"size:1" json:"newIsGlobalClient,omitempty"`
}

// TableName specifies the database table name for the MappingAuditLog model.
func (MappingAuditLog) TableName() string {
	return "mapping_audit_logs"
}
