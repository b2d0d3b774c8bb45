package models

import "time"

// Reference data categories served by queryImrReferenceByCategory.
const (
	RefCategoryFundClass       = "FUND_CLASS"
	RefCategoryPortfolioNature = "PORTFOLIO_NATURE"
	RefCategoryPensionCategory = "PENSION_CATEGORY"
	RefCategoryMemberChoice    = "MEMBER_CHOICE"
)

// ImrReference is one categorized enum value used to populate the
// dropdowns of the add/edit workflow.
type ImrReference struct {
	ID           uint64    `gorm:"primaryKey" json:"-"`
	Category     string    `gorm:"size:50;not null;index" json:"category"`
	Value        string    `gorm:"size:100;not null" json:"value"`
	DisplayOrder int       `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName specifies the database table name for the ImrReference model.
func (ImrReference) TableName() string {
	return "imr_references"
}
