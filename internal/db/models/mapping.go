// Package models contains database model definitions.
package models

import "time"

// SentinelAccountNo is the shared/generic GFAS account number. Mappings
// using it must carry an alternative id to disambiguate the account.
const SentinelAccountNo = "CCC 111111"

// GlobalClient flag values stored on a mapping record.
const (
	GlobalClientYes = "Y"
	GlobalClientNo  = "N"
)

// GroupCompanyMapping is a single Group Company mapping row keyed on a
// GFAS account. Group names are denormalized next to their ids so search
// results and audit entries render without joins.
type GroupCompanyMapping struct {
	// MappingID is the unique identifier, assigned on creation.
	MappingID uint64 `gorm:"primaryKey" json:"mappingId"`
	// GfasAccountNo is the external account number, stored uppercased.
	GfasAccountNo string `gorm:"size:30;not null;index" json:"gfasAccountNo" validate:"required"`
	// AlternativeID disambiguates the sentinel account number; blank otherwise.
	AlternativeID string `gorm:"size:30" json:"alternativeId"`
	// GfasAccountName is resolved server-side from account no + alternative id.
	GfasAccountName string `gorm:"size:255;not null" json:"gfasAccountName" validate:"required"`

	HeadGroupID   uint64 `gorm:"not null;index" json:"headGroupId" validate:"required"`
	HeadGroupName string `gorm:"size:255;not null" json:"headGroupName" validate:"required"`

	WIGroupID   uint64 `gorm:"column:wi_group_id;not null;index" json:"wiGroupId" validate:"required"`
	WIGroupName string `gorm:"column:wi_group_name;size:255;not null" json:"wiGroupName" validate:"required"`

	// WI customized group is optional; zero id means none.
	WICustomizedGroupID   uint64 `gorm:"column:wi_customized_group_id;index" json:"wiCustomizedGroupId"`
	WICustomizedGroupName string `gorm:"column:wi_customized_group_name;size:255" json:"wiCustomizedGroupName"`

	FundClass       string `gorm:"size:50;not null" json:"fundClass" validate:"required"`
	PensionCategory string `gorm:"size:50;not null" json:"pensionCategory" validate:"required"`
	PortfolioNature string `gorm:"size:50;not null" json:"portfolioNature" validate:"required"`
	MemberChoice    string `gorm:"size:50;not null" json:"memberChoice" validate:"required"`

	// RM is the assigned relationship manager, blank or the shared sentinel
	// "Client Service Officer" when the record is unowned.
	RM string `gorm:"column:rm;size:100" json:"rm"`
	// Agent is free text.
	Agent string `gorm:"size:255;not null" json:"agent" validate:"required"`
	// GlobalClient is "Y" or "N".
	GlobalClient string `gorm:"size:1;not null" json:"globalClient" validate:"required,oneof=Y N"`

	CreatedBy     string    `gorm:"size:100" json:"createdBy"`
	CreatedAt     time.Time `json:"createdDate"`
	LastUpdatedBy string    `gorm:"size:100" json:"lastUpdatedBy"`
	UpdatedAt     time.Time `json:"lastUpdatedDate"`
}

// TableName specifies the database table name for the GroupCompanyMapping model.
func (GroupCompanyMapping) TableName() string {
	return "group_company_mappings"
}
