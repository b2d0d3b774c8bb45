// Package mapping provides CRUD operations for Group Company mapping
// records, including fuzzy paged search and the audit trail written
// alongside every mutation.
package mapping

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

const (
	// DefaultPageSize for paged searches.
	DefaultPageSize = 20
	// MaxPageSize caps client supplied page sizes.
	MaxPageSize = 100
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrMappingNotFound is returned when a mapping record is not found.
	ErrMappingNotFound = errors.New("mapping not found")
	// ErrAccountNoInvalid is returned for account numbers with characters
	// outside the uppercase alphanumeric + space set.
	ErrAccountNoInvalid = errors.New("gfas account no may only contain letters, digits and spaces")
	// ErrAlternativeIDRequired is returned when the sentinel account number
	// is used without an alternative id.
	ErrAlternativeIDRequired = errors.New("alternative id is required for the shared gfas account")
	// ErrMandatoryFieldMissing is returned when a create/update misses a
	// mandatory field.
	ErrMandatoryFieldMissing = errors.New("mandatory mapping field is missing")
)

var accountNoPattern = regexp.MustCompile(`^[A-Z0-9 ]+$`)

// NormalizeAccountNo uppercases and validates a GFAS account number.
func NormalizeAccountNo(raw string) (string, error) {
	no := strings.ToUpper(strings.TrimSpace(raw))
	if no == "" || !accountNoPattern.MatchString(no) {
		return "", ErrAccountNoInvalid
	}

	return no, nil
}

// SearchParams carries the mapping search criteria. The first block are
// the search form fields; the *Filter fields are the narrowing column
// filters applied on top without resetting pagination.
type SearchParams struct {
	HeadGroupName string
	GfasAccountNo string
	RM            string
	WIGroupName   string
	FundClass     string
	// GlobalClient is the tri-state flag: "Y", "N" or "" for unset.
	GlobalClient string

	HeadGroupNameFilter         string
	WIGroupNameFilter           string
	WICustomizedGroupNameFilter string

	PageNum  int
	PageSize int
}

// Empty reports whether no search form criterion is set. Column filters do
// not count; they only ever narrow an active search.
func (p SearchParams) Empty() bool {
	return p.HeadGroupName == "" &&
		p.GfasAccountNo == "" &&
		p.RM == "" &&
		p.WIGroupName == "" &&
		p.FundClass == "" &&
		p.GlobalClient == ""
}

func (p *SearchParams) normalize() {
	if p.PageNum < 1 {
		p.PageNum = 1
	}

	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
}

// Search runs a fuzzy paged search over mapping records.
func Search(db *gorm.DB, p SearchParams) ([]models.GroupCompanyMapping, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	p.normalize()

	tx := db.Model(&models.GroupCompanyMapping{})

	if p.HeadGroupName != "" {
		tx = tx.Where("LOWER(head_group_name) LIKE ?", "%"+strings.ToLower(p.HeadGroupName)+"%")
	}

	if p.GfasAccountNo != "" {
		tx = tx.Where("gfas_account_no LIKE ?", "%"+strings.ToUpper(p.GfasAccountNo)+"%")
	}

	if p.RM != "" {
		tx = tx.Where("rm = ?", p.RM)
	}

	if p.WIGroupName != "" {
		tx = tx.Where("LOWER(wi_group_name) LIKE ?", "%"+strings.ToLower(p.WIGroupName)+"%")
	}

	if p.FundClass != "" {
		tx = tx.Where("fund_class = ?", p.FundClass)
	}

	if p.GlobalClient != "" {
		tx = tx.Where("global_client = ?", p.GlobalClient)
	}

	if p.HeadGroupNameFilter != "" {
		tx = tx.Where("LOWER(head_group_name) LIKE ?", "%"+strings.ToLower(p.HeadGroupNameFilter)+"%")
	}

	if p.WIGroupNameFilter != "" {
		tx = tx.Where("LOWER(wi_group_name) LIKE ?", "%"+strings.ToLower(p.WIGroupNameFilter)+"%")
	}

	if p.WICustomizedGroupNameFilter != "" {
		tx = tx.Where("LOWER(wi_customized_group_name) LIKE ?", "%"+strings.ToLower(p.WICustomizedGroupNameFilter)+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.GroupCompanyMapping

	offset := (p.PageNum - 1) * p.PageSize
	if err := tx.Order("mapping_id DESC").Limit(p.PageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// Get retrieves a mapping by its id.
func Get(db *gorm.DB, mappingID uint64) (*models.GroupCompanyMapping, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var m models.GroupCompanyMapping

	result := db.First(&m, mappingID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrMappingNotFound
		}

		return nil, result.Error
	}

	return &m, nil
}

var fieldValidator = validator.New()

// validate checks the mandatory fields for create. The WI customized
// group is the only optional group reference.
func validate(m *models.GroupCompanyMapping) error {
	if err := fieldValidator.Struct(m); err != nil {
		return ErrMandatoryFieldMissing
	}

	// required passes whitespace-only strings
	mandatory := []string{
		m.GfasAccountName,
		m.HeadGroupName,
		m.WIGroupName,
		m.FundClass,
		m.PensionCategory,
		m.PortfolioNature,
		m.MemberChoice,
		m.Agent,
	}

	for _, v := range mandatory {
		if strings.TrimSpace(v) == "" {
			return ErrMandatoryFieldMissing
		}
	}

	return nil
}

// Add creates a new mapping record and its audit entry in one
// transaction. bulk selects the bulk audit action variant.
func Add(db *gorm.DB, m *models.GroupCompanyMapping, actor string, bulk bool) error {
	if db == nil {
		return ErrDBNil
	}

	no, err := NormalizeAccountNo(m.GfasAccountNo)
	if err != nil {
		return err
	}

	m.GfasAccountNo = no
	m.AlternativeID = strings.ToUpper(strings.TrimSpace(m.AlternativeID))

	if m.GfasAccountNo == models.SentinelAccountNo && m.AlternativeID == "" {
		return ErrAlternativeIDRequired
	}

	if err := validate(m); err != nil {
		return err
	}

	m.CreatedBy = actor
	m.LastUpdatedBy = actor

	action := models.AuditActionAdd
	if bulk {
		action = models.AuditActionBulkAdd
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}

		return tx.Create(snapshotAudit(m, action, actor, false)).Error
	})
}

// Save updates an existing mapping record. The account number, its
// alternative id and the derived account name are immutable; incoming
// values for them are ignored in favor of the stored ones. The audit
// entry carries old/new pairs only for fields that actually changed.
func Save(db *gorm.DB, m *models.GroupCompanyMapping, actor string, bulk bool) error {
	if db == nil {
		return ErrDBNil
	}

	old, err := Get(db, m.MappingID)
	if err != nil {
		return err
	}

	// immutable post-creation
	m.GfasAccountNo = old.GfasAccountNo
	m.AlternativeID = old.AlternativeID
	m.GfasAccountName = old.GfasAccountName
	m.CreatedBy = old.CreatedBy
	m.CreatedAt = old.CreatedAt

	if err := validate(m); err != nil {
		return err
	}

	m.LastUpdatedBy = actor

	action := models.AuditActionUpdate
	if bulk {
		action = models.AuditActionBulkUpdate
	}

	entry := diffAudit(old, m, action, actor)

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(m).Error; err != nil {
			return err
		}

		if entry == nil {
			// nothing changed, no audit row
			return nil
		}

		return tx.Create(entry).Error
	})
}

// Remove deletes a mapping record and writes a delete audit entry
// snapshotting every old field value.
func Remove(db *gorm.DB, mappingID uint64, actor string, bulk bool) error {
	if db == nil {
		return ErrDBNil
	}

	old, err := Get(db, mappingID)
	if err != nil {
		return err
	}

	action := models.AuditActionDelete
	if bulk {
		action = models.AuditActionBulkDelete
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.GroupCompanyMapping{}, mappingID)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrMappingNotFound
		}

		return tx.Create(snapshotAudit(old, action, actor, true)).Error
	})
}

func strPtr(s string) *string {
	return &s
}

// snapshotAudit builds an audit entry carrying every field of the record,
// on the old side for deletes and on the new side for adds.
func snapshotAudit(m *models.GroupCompanyMapping, action, actor string, oldSide bool) *models.MappingAuditLog {
	entry := &models.MappingAuditLog{
		GfasAccountNo:   m.GfasAccountNo,
		GfasAccountName: m.GfasAccountName,
		AlternativeID:   m.AlternativeID,
		Action:          action,
		CreatedUserName: actor,
	}

	fields := []struct {
		value string
		old   **string
		new   **string
	}{
		{m.HeadGroupName, &entry.OldHeadGroup, &entry.NewHeadGroup},
		{m.WIGroupName, &entry.OldWiGroup, &entry.NewWiGroup},
		{m.WICustomizedGroupName, &entry.OldWiCustomizedGroup, &entry.NewWiCustomizedGroup},
		{m.FundClass, &entry.OldFundClass, &entry.NewFundClass},
		{m.PensionCategory, &entry.OldPensionCategory, &entry.NewPensionCategory},
		{m.PortfolioNature, &entry.OldPortfolioNature, &entry.NewPortfolioNature},
		{m.MemberChoice, &entry.OldMemberChoice, &entry.NewMemberChoice},
		{m.RM, &entry.OldRmName, &entry.NewRmName},
		{m.Agent, &entry.OldAgent, &entry.NewAgent},
		{m.GlobalClient, &entry.OldIsGlobalClient, &entry.NewIsGlobalClient},
	}

	for _, f := range fields {
		if oldSide {
			*f.old = strPtr(f.value)
		} else {
			*f.new = strPtr(f.value)
		}
	}

	return entry
}

// diffAudit builds an update audit entry with old/new pairs for changed
// fields only. Returns nil when nothing changed.
func diffAudit(old, updated *models.GroupCompanyMapping, action, actor string) *models.MappingAuditLog {
	entry := &models.MappingAuditLog{
		GfasAccountNo:   old.GfasAccountNo,
		GfasAccountName: old.GfasAccountName,
		AlternativeID:   old.AlternativeID,
		Action:          action,
		CreatedUserName: actor,
	}

	changed := false

	pairs := []struct {
		oldVal string
		newVal string
		old    **string
		new    **string
	}{
		{old.HeadGroupName, updated.HeadGroupName, &entry.OldHeadGroup, &entry.NewHeadGroup},
		{old.WIGroupName, updated.WIGroupName, &entry.OldWiGroup, &entry.NewWiGroup},
		{old.WICustomizedGroupName, updated.WICustomizedGroupName, &entry.OldWiCustomizedGroup, &entry.NewWiCustomizedGroup},
		{old.FundClass, updated.FundClass, &entry.OldFundClass, &entry.NewFundClass},
		{old.PensionCategory, updated.PensionCategory, &entry.OldPensionCategory, &entry.NewPensionCategory},
		{old.PortfolioNature, updated.PortfolioNature, &entry.OldPortfolioNature, &entry.NewPortfolioNature},
		{old.MemberChoice, updated.MemberChoice, &entry.OldMemberChoice, &entry.NewMemberChoice},
		{old.RM, updated.RM, &entry.OldRmName, &entry.NewRmName},
		{old.Agent, updated.Agent, &entry.OldAgent, &entry.NewAgent},
		{old.GlobalClient, updated.GlobalClient, &entry.OldIsGlobalClient, &entry.NewIsGlobalClient},
	}

	for _, p := range pairs {
		if p.oldVal == p.newVal {
			continue
		}

		*p.old = strPtr(p.oldVal)
		*p.new = strPtr(p.newVal)
		changed = true
	}

	if !changed {
		return nil
	}

	return entry
}
