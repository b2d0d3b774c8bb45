package models

import "time"

// HeadGroup is a named tag attached to mapping records. Head, WI and WI
// customized groups are independent, hierarchically unrelated reference
// tables managed from their own screens.
type HeadGroup struct {
	HeadGroupID uint64    `gorm:"primaryKey" json:"headGroupId"`
	GroupName   string    `gorm:"size:255;not null;uniqueIndex" json:"groupName"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// OrphanGroup is computed at query time; a group is orphan when no
	// mapping record references it. Only orphan groups may be deleted.
	OrphanGroup bool `gorm:"-" json:"orphanGroup"`
}

// TableName specifies the database table name for the HeadGroup model.
func (HeadGroup) TableName() string {
	return "head_groups"
}

// WIGroup is the WI group reference table, see HeadGroup.
type WIGroup struct {
	WIGroupID uint64    `gorm:"column:wi_group_id;primaryKey" json:"wiGroupId"`
	GroupName string    `gorm:"size:255;not null;uniqueIndex" json:"groupName"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	OrphanGroup bool `gorm:"-" json:"orphanGroup"`
}

// TableName specifies the database table name for the WIGroup model.
func (WIGroup) TableName() string {
	return "wi_groups"
}

// WICustomizedGroup is the WI customized group reference table, see HeadGroup.
type WICustomizedGroup struct {
	WICustomizedGroupID uint64    `gorm:"column:wi_customized_group_id;primaryKey" json:"wiCustomizedGroupId"`
	GroupName           string    `gorm:"size:255;not null;uniqueIndex" json:"groupName"`
	CreatedAt           time.Time `json:"-"`
	UpdatedAt           time.Time `json:"-"`

	OrphanGroup bool `gorm:"-" json:"orphanGroup"`
}

// TableName specifies the database table name for the WICustomizedGroup model.
func (WICustomizedGroup) TableName() string {
	return "wi_customized_groups"
}
