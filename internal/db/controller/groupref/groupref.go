// Package groupref manages the three group reference tables behind the
// mapping screens: head groups, WI groups and WI customized groups. The
// tables share a shape, so operations take a Kind instead of being
// triplicated per table.
package groupref

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

const (
	// TypeaheadLimit caps suggestion lists.
	TypeaheadLimit = 10
	// DefaultPageSize for paged group searches.
	DefaultPageSize = 20
	// MaxPageSize caps client supplied page sizes.
	MaxPageSize = 100
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrKindUnknown is returned for an unrecognized group kind.
	ErrKindUnknown = errors.New("unknown group kind")
	// ErrGroupNotFound is returned when a group record is not found.
	ErrGroupNotFound = errors.New("group not found")
	// ErrGroupExists is returned when a group name already exists.
	ErrGroupExists = errors.New("group name already exists")
	// ErrGroupInUse is returned when deleting a group that mapping
	// records still reference.
	ErrGroupInUse = errors.New("group is referenced by mapping records")
	// ErrGroupNameEmpty is returned for a blank group name.
	ErrGroupNameEmpty = errors.New("group name must not be empty")
)

// Kind selects one of the group reference tables.
type Kind string

// Group kinds.
const (
	KindHead         Kind = "headGroup"
	KindWI           Kind = "wiGroup"
	KindWICustomized Kind = "wiCustomizedGroup"
)

type kindSpec struct {
	table string
	idCol string
	// mapCol is the referencing column on group_company_mappings, used
	// for the orphan check.
	mapCol string
}

var kindSpecs = map[Kind]kindSpec{
	KindHead:         {table: "head_groups", idCol: "head_group_id", mapCol: "head_group_id"},
	KindWI:           {table: "wi_groups", idCol: "wi_group_id", mapCol: "wi_group_id"},
	KindWICustomized: {table: "wi_customized_groups", idCol: "wi_customized_group_id", mapCol: "wi_customized_group_id"},
}

func spec(kind Kind) (kindSpec, error) {
	s, ok := kindSpecs[kind]
	if !ok {
		return kindSpec{}, ErrKindUnknown
	}

	return s, nil
}

// Group is the kind-neutral view of a group reference row.
type Group struct {
	GroupID   uint64 `json:"groupId"`
	GroupName string `json:"groupName"`
	// OrphanGroup is true when no mapping record references the group.
	// Only orphan groups may be deleted.
	OrphanGroup bool `json:"orphanGroup"`
}

// Typeahead returns up to TypeaheadLimit groups whose name contains the
// given term, case insensitive, ordered by name, along with the total
// match count so callers can tell a full page from a truncated one. The
// minimum term length is enforced by the caller; an empty term matches
// nothing.
func Typeahead(db *gorm.DB, kind Kind, term string) ([]Group, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	s, err := spec(kind)
	if err != nil {
		return nil, 0, err
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return []Group{}, 0, nil
	}

	tx := db.Table(s.table).
		Where("LOWER(group_name) LIKE ?", "%"+strings.ToLower(term)+"%")

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Group

	err = tx.
		Select(s.idCol + " AS group_id, group_name").
		Order("group_name ASC").
		Limit(TypeaheadLimit).
		Scan(&list).Error
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// Search runs a paged fuzzy search over one group table, computing the
// orphan flag per row.
func Search(db *gorm.DB, kind Kind, name string, pageNum, pageSize int) ([]Group, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	s, err := spec(kind)
	if err != nil {
		return nil, 0, err
	}

	if pageNum < 1 {
		pageNum = 1
	}

	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	tx := db.Table(s.table)
	if name = strings.TrimSpace(name); name != "" {
		tx = tx.Where("LOWER(group_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orphan := "NOT EXISTS (SELECT 1 FROM group_company_mappings m WHERE m." +
		s.mapCol + " = " + s.table + "." + s.idCol + ") AS orphan_group"

	var list []Group

	err = tx.
		Select(s.idCol + " AS group_id, group_name, " + orphan).
		Order("group_name ASC").
		Limit(pageSize).
		Offset((pageNum - 1) * pageSize).
		Scan(&list).Error
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// Get retrieves one group by id.
func Get(db *gorm.DB, kind Kind, groupID uint64) (*Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	s, err := spec(kind)
	if err != nil {
		return nil, err
	}

	var g Group

	result := db.Table(s.table).
		Select(s.idCol+" AS group_id, group_name").
		Where(s.idCol+" = ?", groupID).
		Limit(1).
		Scan(&g)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrGroupNotFound
	}

	return &g, nil
}

// Add creates a new group with the given name. Names are unique per
// table, case insensitive.
func Add(db *gorm.DB, kind Kind, name string) (*Group, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	s, err := spec(kind)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrGroupNameEmpty
	}

	taken, err := nameTaken(db, s, name, 0)
	if err != nil {
		return nil, err
	}

	if taken {
		return nil, ErrGroupExists
	}

	err = db.Table(s.table).Create(map[string]interface{}{
		"group_name": name,
		"created_at": gorm.Expr("CURRENT_TIMESTAMP"),
		"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
	}).Error
	if err != nil {
		return nil, err
	}

	var g Group

	err = db.Table(s.table).
		Select(s.idCol+" AS group_id, group_name").
		Where("group_name = ?", name).
		Scan(&g).Error
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// Rename changes a group's name. Mapping records denormalize group
// names, so Rename also rewrites the name on every referencing record.
func Rename(db *gorm.DB, kind Kind, groupID uint64, name string) error {
	if db == nil {
		return ErrDBNil
	}

	s, err := spec(kind)
	if err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrGroupNameEmpty
	}

	taken, err := nameTaken(db, s, name, groupID)
	if err != nil {
		return err
	}

	if taken {
		return ErrGroupExists
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Table(s.table).
			Where(s.idCol+" = ?", groupID).
			Updates(map[string]interface{}{
				"group_name": name,
				"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrGroupNotFound
		}

		return tx.Table("group_company_mappings").
			Where(s.mapCol+" = ?", groupID).
			Update(denormNameColumn(kind), name).Error
	})
}

// Remove deletes a group. Groups still referenced by mapping records
// may not be deleted.
func Remove(db *gorm.DB, kind Kind, groupID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	s, err := spec(kind)
	if err != nil {
		return err
	}

	var refs int64

	err = db.Table("group_company_mappings").
		Where(s.mapCol+" = ?", groupID).
		Count(&refs).Error
	if err != nil {
		return err
	}

	if refs > 0 {
		return ErrGroupInUse
	}

	result := db.Exec("DELETE FROM "+s.table+" WHERE "+s.idCol+" = ?", groupID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrGroupNotFound
	}

	return nil
}

func nameTaken(db *gorm.DB, s kindSpec, name string, excludeID uint64) (bool, error) {
	tx := db.Table(s.table).Where("LOWER(group_name) = ?", strings.ToLower(name))
	if excludeID != 0 {
		tx = tx.Where(s.idCol+" <> ?", excludeID)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func denormNameColumn(kind Kind) string {
	switch kind {
	case KindHead:
		return "head_group_name"
	case KindWI:
		return "wi_group_name"
	case KindWICustomized:
		return "wi_customized_group_name"
	}

	return ""
}
