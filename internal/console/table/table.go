// Package table holds the state machine of the mapping results screen:
// search criteria validation, column filters, pagination, row selection
// and the bulk action rules.
package table

import (
	"context"
	"errors"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/console/gateway"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/policy"
)

// DefaultPageSize matches the server default.
const DefaultPageSize = 20

var (
	// ErrNoCriteria is returned when a search is triggered without any
	// criterion. The message is surfaced verbatim to the user.
	ErrNoCriteria = errors.New("Please input one search criteria at least")
	// ErrNoActiveQuery is returned for operations that need an executed
	// search first (paging, filtering).
	ErrNoActiveQuery = errors.New("no active query")
	// ErrSelectionEmpty is returned for bulk actions over an empty
	// selection.
	ErrSelectionEmpty = errors.New("no rows selected")
	// ErrBulkEditSingleRow is returned when bulk edit is triggered with
	// more or less than one selected row.
	ErrBulkEditSingleRow = errors.New("bulk edit requires exactly one selected row")
	// ErrPermissionDenied is returned when the role/ownership rules deny
	// the action for at least one selected row.
	ErrPermissionDenied = errors.New("you are not allowed to perform this action")
)

// Fetch runs the mapping search, usually gateway.Client.QueryMappings.
type Fetch func(ctx context.Context, q gateway.MappingQuery) ([]models.GroupCompanyMapping, *gateway.Page, error)

// Criteria are the search form fields. At least one must be set before
// any fetch happens.
type Criteria struct {
	HeadGroupName string
	GfasAccountNo string
	RM            string
	WIGroupName   string
	FundClass     string
	// GlobalClient is tri-state: "Y", "N" or "" for any.
	GlobalClient string
}

// Empty reports whether no criterion is set.
func (c Criteria) Empty() bool {
	return c == Criteria{}
}

// Filters are the narrowing column filters. They only ever apply on top
// of an active search and never count as criteria.
type Filters struct {
	HeadGroupName         string
	WIGroupName           string
	WICustomizedGroupName string
}

// Controller drives one results table.
type Controller struct {
	fetch    Fetch
	role     policy.Role
	userName string

	active   bool
	criteria Criteria
	filters  Filters
	pageNum  int
	pageSize int

	rows     []models.GroupCompanyMapping
	total    int64
	selected map[uint64]bool
}

// NewController creates a table controller for one session.
func NewController(fetch Fetch, role policy.Role, userName string) *Controller {
	if fetch == nil {
		panic("fetch cannot be nil")
	}

	return &Controller{
		fetch:    fetch,
		role:     role,
		userName: userName,
		pageSize: DefaultPageSize,
		selected: make(map[uint64]bool),
	}
}

// Search validates and executes a new search. A new search drops the
// column filters, the selection and returns to the first page.
func (c *Controller) Search(ctx context.Context, criteria Criteria) error {
	if criteria.Empty() {
		return ErrNoCriteria
	}

	c.criteria = criteria
	c.filters = Filters{}
	c.pageNum = 1
	c.selected = make(map[uint64]bool)
	c.active = true

	return c.load(ctx)
}

// SetFilters narrows the active search. The current page is kept; rows
// that fall off the page simply disappear from it.
func (c *Controller) SetFilters(ctx context.Context, filters Filters) error {
	if !c.active {
		return ErrNoActiveQuery
	}

	c.filters = filters
	c.selected = make(map[uint64]bool)

	return c.load(ctx)
}

// GoToPage moves to the given 1-based page of the active search.
func (c *Controller) GoToPage(ctx context.Context, pageNum int) error {
	if !c.active {
		return ErrNoActiveQuery
	}

	if pageNum < 1 {
		pageNum = 1
	}

	c.pageNum = pageNum
	c.selected = make(map[uint64]bool)

	return c.load(ctx)
}

// Refresh re-runs the active search in place, used after a mutation.
// Without an active search it is a no-op: the table must never fetch
// the unfiltered universe.
func (c *Controller) Refresh(ctx context.Context) error {
	if !c.active {
		return nil
	}

	c.selected = make(map[uint64]bool)

	return c.load(ctx)
}

func (c *Controller) load(ctx context.Context) error {
	q := gateway.MappingQuery{
		HeadGroupName:               c.criteria.HeadGroupName,
		GfasAccountNo:               c.criteria.GfasAccountNo,
		RM:                          c.criteria.RM,
		WIGroupName:                 c.criteria.WIGroupName,
		FundClass:                   c.criteria.FundClass,
		GlobalClient:                c.criteria.GlobalClient,
		HeadGroupNameFilter:         c.filters.HeadGroupName,
		WIGroupNameFilter:           c.filters.WIGroupName,
		WICustomizedGroupNameFilter: c.filters.WICustomizedGroupName,
		PageNum:                     c.pageNum,
		PageSize:                    c.pageSize,
	}

	rows, page, err := c.fetch(ctx, q)
	if err != nil {
		return err
	}

	c.rows = rows
	c.total = page.Total
	c.pageNum = page.PageNum

	return nil
}

// Rows returns the current page of results.
func (c *Controller) Rows() []models.GroupCompanyMapping {
	return c.rows
}

// Total returns the total match count of the active search.
func (c *Controller) Total() int64 {
	return c.total
}

// PageNum returns the current 1-based page number.
func (c *Controller) PageNum() int {
	return c.pageNum
}

// Active reports whether a search has been executed.
func (c *Controller) Active() bool {
	return c.active
}

// ToggleSelect flips the selection of one row on the current page.
func (c *Controller) ToggleSelect(mappingID uint64) {
	if c.selected[mappingID] {
		delete(c.selected, mappingID)
		return
	}

	for _, row := range c.rows {
		if row.MappingID == mappingID {
			c.selected[mappingID] = true
			return
		}
	}
}

// Selected returns the selected rows of the current page.
func (c *Controller) Selected() []models.GroupCompanyMapping {
	var out []models.GroupCompanyMapping

	for _, row := range c.rows {
		if c.selected[row.MappingID] {
			out = append(out, row)
		}
	}

	return out
}

// CanEditRow decides whether the session user may edit one row.
func (c *Controller) CanEditRow(row *models.GroupCompanyMapping) bool {
	own := policy.Ownership{RM: row.RM}
	return policy.CanPerform(policy.ActionEdit, c.role, &own, c.userName)
}

// CanDeleteRow decides whether the session user may delete one row.
func (c *Controller) CanDeleteRow(row *models.GroupCompanyMapping) bool {
	own := policy.Ownership{RM: row.RM}
	return policy.CanPerform(policy.ActionDelete, c.role, &own, c.userName)
}

// BulkDeleteRows validates a bulk delete over the selection: every
// selected row must individually be deletable by the session user.
func (c *Controller) BulkDeleteRows() ([]models.GroupCompanyMapping, error) {
	selected := c.Selected()
	if len(selected) == 0 {
		return nil, ErrSelectionEmpty
	}

	owns := make([]policy.Ownership, len(selected))
	for i, row := range selected {
		owns[i] = policy.Ownership{RM: row.RM}
	}

	if !policy.CanPerformAll(policy.ActionDelete, c.role, owns, c.userName) {
		return nil, ErrPermissionDenied
	}

	return selected, nil
}

// BulkEditRow validates a bulk edit: exactly one selected row, editable
// by the session user.
func (c *Controller) BulkEditRow() (*models.GroupCompanyMapping, error) {
	selected := c.Selected()
	if len(selected) != 1 {
		if len(selected) == 0 {
			return nil, ErrSelectionEmpty
		}

		return nil, ErrBulkEditSingleRow
	}

	row := selected[0]
	if !c.CanEditRow(&row) {
		return nil, ErrPermissionDenied
	}

	return &row, nil
}
