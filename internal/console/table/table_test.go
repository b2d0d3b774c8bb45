package table

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/console/gateway"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/policy"
)

// fakeFetch records queries and answers from a fixed row set.
type fakeFetch struct {
	queries []gateway.MappingQuery
	rows    []models.GroupCompanyMapping
	err     error
}

func (f *fakeFetch) fetch(_ context.Context, q gateway.MappingQuery) ([]models.GroupCompanyMapping, *gateway.Page, error) {
	f.queries = append(f.queries, q)

	if f.err != nil {
		return nil, nil, f.err
	}

	return f.rows, &gateway.Page{
		Total:    int64(len(f.rows)),
		PageNum:  q.PageNum,
		PageSize: q.PageSize,
	}, nil
}

func testRows() []models.GroupCompanyMapping {
	return []models.GroupCompanyMapping{
		{MappingID: 1, GfasAccountNo: "ABC123", HeadGroupName: "Acme", RM: "Vivian Fung"},
		{MappingID: 2, GfasAccountNo: "XYZ900", HeadGroupName: "Acme", RM: policy.SharedOwner},
		{MappingID: 3, GfasAccountNo: "QRS555", HeadGroupName: "Acme", RM: "Bob Chan"},
	}
}

func TestSearch_RequiresCriteria(t *testing.T) {
	f := &fakeFetch{rows: testRows()}
	c := NewController(f.fetch, policy.RoleWrite, "Vivian Fung")

	err := c.Search(context.Background(), Criteria{})
	assert.ErrorIs(t, err, ErrNoCriteria)
	assert.Empty(t, f.queries, "validation failures never reach the network")
	assert.False(t, c.Active())

	require.NoError(t, c.Search(context.Background(), Criteria{HeadGroupName: "Acme"}))
	assert.True(t, c.Active())
	assert.Len(t, c.Rows(), 3)
	assert.EqualValues(t, 3, c.Total())
}

func TestRefresh_SuppressedWithoutActiveQuery(t *testing.T) {
	f := &fakeFetch{rows: testRows()}
	c := NewController(f.fetch, policy.RoleWrite, "Vivian Fung")

	require.NoError(t, c.Refresh(context.Background()))
	assert.Empty(t, f.queries, "refresh without an active search must not fetch")

	require.NoError(t, c.Search(context.Background(), Criteria{FundClass: "FRMT"}))
	require.NoError(t, c.Refresh(context.Background()))
	require.Len(t, f.queries, 2)
	assert.Equal(t, "FRMT", f.queries[1].FundClass, "refresh re-runs the last criteria")
}

func TestFiltersAndPagingNeedActiveQuery(t *testing.T) {
	f := &fakeFetch{rows: testRows()}
	c := NewController(f.fetch, policy.RoleWrite, "Vivian Fung")

	assert.ErrorIs(t, c.SetFilters(context.Background(), Filters{HeadGroupName: "acme"}), ErrNoActiveQuery)
	assert.ErrorIs(t, c.GoToPage(context.Background(), 2), ErrNoActiveQuery)

	require.NoError(t, c.Search(context.Background(), Criteria{HeadGroupName: "Acme"}))

	require.NoError(t, c.SetFilters(context.Background(), Filters{WIGroupName: "wi"}))
	last := f.queries[len(f.queries)-1]
	assert.Equal(t, "Acme", last.HeadGroupName, "criteria survive filtering")
	assert.Equal(t, "wi", last.WIGroupNameFilter)

	require.NoError(t, c.GoToPage(context.Background(), 3))
	assert.Equal(t, 3, f.queries[len(f.queries)-1].PageNum)

	// a fresh search drops filters and returns to page one
	require.NoError(t, c.Search(context.Background(), Criteria{RM: "Bob Chan"}))
	last = f.queries[len(f.queries)-1]
	assert.Empty(t, last.WIGroupNameFilter)
	assert.Equal(t, 1, last.PageNum)
}

func TestSelection(t *testing.T) {
	f := &fakeFetch{rows: testRows()}
	c := NewController(f.fetch, policy.RoleWrite, "Vivian Fung")
	require.NoError(t, c.Search(context.Background(), Criteria{HeadGroupName: "Acme"}))

	c.ToggleSelect(1)
	c.ToggleSelect(2)
	c.ToggleSelect(9999) // not on the page, ignored

	selected := c.Selected()
	require.Len(t, selected, 2)

	c.ToggleSelect(1)
	assert.Len(t, c.Selected(), 1)

	// selection is cleared by refresh
	require.NoError(t, c.Refresh(context.Background()))
	assert.Empty(t, c.Selected())
}

func TestBulkDelete_AndSemantics(t *testing.T) {
	f := &fakeFetch{rows: testRows()}
	c := NewController(f.fetch, policy.RoleWrite, "Vivian Fung")
	require.NoError(t, c.Search(context.Background(), Criteria{HeadGroupName: "Acme"}))

	_, err := c.BulkDeleteRows()
	assert.ErrorIs(t, err, ErrSelectionEmpty)

	// own row + shared row: allowed
	c.ToggleSelect(1)
	c.ToggleSelect(2)

	rows, err := c.BulkDeleteRows()
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// adding another RM's row denies the whole selection
	c.ToggleSelect(3)

	_, err = c.BulkDeleteRows()
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestBulkDelete_AdminIgnoresOwnership(t *testing.T) {
	f := &fakeFetch{rows: testRows()}
	c := NewController(f.fetch, policy.RoleAdmin, "Alice Wong")
	require.NoError(t, c.Search(context.Background(), Criteria{HeadGroupName: "Acme"}))

	c.ToggleSelect(1)
	c.ToggleSelect(2)
	c.ToggleSelect(3)

	rows, err := c.BulkDeleteRows()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestBulkEdit_ExactlyOneRow(t *testing.T) {
	f := &fakeFetch{rows: testRows()}
	c := NewController(f.fetch, policy.RoleWrite, "Vivian Fung")
	require.NoError(t, c.Search(context.Background(), Criteria{HeadGroupName: "Acme"}))

	_, err := c.BulkEditRow()
	assert.ErrorIs(t, err, ErrSelectionEmpty)

	c.ToggleSelect(1)
	c.ToggleSelect(2)

	_, err = c.BulkEditRow()
	assert.ErrorIs(t, err, ErrBulkEditSingleRow)

	c.ToggleSelect(2)

	row, err := c.BulkEditRow()
	require.NoError(t, err)
	assert.EqualValues(t, 1, row.MappingID)

	// selecting only another RM's row is denied
	c.ToggleSelect(1)
	c.ToggleSelect(3)

	_, err = c.BulkEditRow()
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestReadRoleCannotMutateRows(t *testing.T) {
	f := &fakeFetch{rows: testRows()}
	c := NewController(f.fetch, policy.RoleRead, "Carol Lee")
	require.NoError(t, c.Search(context.Background(), Criteria{HeadGroupName: "Acme"}))

	rows := c.Rows()
	for i := range rows {
		assert.False(t, c.CanEditRow(&rows[i]))
		assert.False(t, c.CanDeleteRow(&rows[i]))
	}
}
