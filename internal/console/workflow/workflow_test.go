package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

// fakeBackend records calls and answers from canned data.
type fakeBackend struct {
	lookups   []string // "accountNo|altId" per lookup call
	names     map[string]string
	addCalls  int
	saveCalls int
	addErr    error
	saveErr   error
	lastSaved *models.GroupCompanyMapping
}

func (f *fakeBackend) GfasAccountName(_ context.Context, accountNo, altID string) (string, error) {
	f.lookups = append(f.lookups, accountNo+"|"+altID)

	if name, ok := f.names[accountNo+"|"+altID]; ok {
		return name, nil
	}

	return "RESOLVED " + accountNo, nil
}

func (f *fakeBackend) AddMapping(_ context.Context, m *models.GroupCompanyMapping) error {
	f.addCalls++
	f.lastSaved = m

	if f.addErr != nil {
		return f.addErr
	}

	m.MappingID = 42

	return nil
}

func (f *fakeBackend) SaveMapping(_ context.Context, m *models.GroupCompanyMapping) error {
	f.saveCalls++
	f.lastSaved = m

	return f.saveErr
}

func fillDraft(w *Workflow) {
	w.SetHeadGroup(7, "Acme")
	w.SetWIGroup(3, "Acme WI")
	w.SetFundClass("FQIF - B")
	w.Draft().PensionCategory = "MPF- Direct"
	w.Draft().PortfolioNature = "Pension"
	w.Draft().MemberChoice = "Member Choice"
	w.Draft().Agent = "Direct"
	w.Draft().GlobalClient = models.GlobalClientYes
}

func TestAdd_AccountLookupOnBlur(t *testing.T) {
	b := &fakeBackend{}
	w := NewAdd(b)

	require.NoError(t, w.SetAccountNo(context.Background(), " abc123 "))
	assert.Equal(t, "ABC123", w.Draft().GfasAccountNo, "uppercased on blur")
	assert.Equal(t, "RESOLVED ABC123", w.Draft().GfasAccountName)
	assert.Equal(t, []string{"ABC123|"}, b.lookups)

	assert.ErrorIs(t, w.SetAccountNo(context.Background(), "abc-123"), ErrAccountNoInvalid)
}

func TestAdd_SentinelDefersLookupUntilAltID(t *testing.T) {
	b := &fakeBackend{names: map[string]string{
		models.SentinelAccountNo + "|ALT01": "SHARED CLIENT ONE",
	}}
	w := NewAdd(b)

	require.NoError(t, w.SetAccountNo(context.Background(), "ccc 111111"))
	assert.True(t, w.SentinelAccount())
	assert.Empty(t, w.Draft().GfasAccountName)
	assert.Empty(t, b.lookups, "lookup is suppressed until the alt id arrives")

	require.NoError(t, w.SetAltID(context.Background(), "alt01"))
	assert.Equal(t, "SHARED CLIENT ONE", w.Draft().GfasAccountName)
	assert.Equal(t, []string{models.SentinelAccountNo + "|ALT01"}, b.lookups,
		"exactly one lookup, carrying both parameters")
}

func TestSetFundClass_FRMTAutofill(t *testing.T) {
	w := NewAdd(&fakeBackend{})

	w.SetFundClass(FundClassFRMT)
	assert.Equal(t, FRMTPortfolioNature, w.Draft().PortfolioNature)
	assert.Equal(t, FRMTPensionCategory, w.Draft().PensionCategory)
	assert.Equal(t, FRMTMemberChoice, w.Draft().MemberChoice)

	// other fund classes leave the companions alone
	w.Draft().PortfolioNature = "Pension"
	w.SetFundClass("FQIF - B")
	assert.Equal(t, "Pension", w.Draft().PortfolioNature)
}

func TestConfirm_ValidatesMandatoryFields(t *testing.T) {
	b := &fakeBackend{}
	w := NewAdd(b)

	_, err := w.Confirm()
	assert.ErrorIs(t, err, ErrAccountNoInvalid)

	require.NoError(t, w.SetAccountNo(context.Background(), "ABC123"))

	_, err = w.Confirm()
	assert.ErrorIs(t, err, ErrMandatoryMissing)
	assert.Equal(t, PhaseEditing, w.Phase(), "failed validation stays in editing")

	fillDraft(w)

	summary, err := w.Confirm()
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirming, w.Phase())
	assert.NotEmpty(t, summary)
	assert.Zero(t, b.addCalls, "confirmation never hits the server")
}

func TestConfirm_SentinelRequiresAltID(t *testing.T) {
	w := NewAdd(&fakeBackend{})
	require.NoError(t, w.SetAccountNo(context.Background(), models.SentinelAccountNo))
	fillDraft(w)
	w.Draft().GfasAccountName = "SHARED"

	_, err := w.Confirm()
	assert.ErrorIs(t, err, ErrAltIDRequired)
}

func TestEndToEndAdd(t *testing.T) {
	b := &fakeBackend{}
	w := NewAdd(b)

	refreshed := false
	w.OnSuccess = func() { refreshed = true }

	require.NoError(t, w.SetAccountNo(context.Background(), "ABC123"))
	fillDraft(w)

	summary, err := w.Confirm()
	require.NoError(t, err)

	byField := map[string]FieldChange{}
	for _, fc := range summary {
		byField[fc.Field] = fc
	}

	assert.Equal(t, "Acme", byField["headGroup"].New)
	assert.Equal(t, models.GlobalClientYes, byField["globalClient"].New)
	assert.False(t, byField["headGroup"].Changed, "add mode marks nothing as changed")

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, PhaseClosed, w.Phase())
	assert.True(t, refreshed, "success notifies the table to refresh")
	assert.Equal(t, 1, b.addCalls)
	assert.EqualValues(t, 7, b.lastSaved.HeadGroupID)
}

func TestEdit_DiffMarksOnlyChangedFields(t *testing.T) {
	existing := &models.GroupCompanyMapping{
		MappingID:       9,
		GfasAccountNo:   "ABC123",
		GfasAccountName: "ACME",
		HeadGroupID:     7,
		HeadGroupName:   "Acme",
		WIGroupID:       3,
		WIGroupName:     "Acme WI",
		FundClass:       "A",
		PensionCategory: "MPF- Direct",
		PortfolioNature: "Pension",
		MemberChoice:    "Member Choice",
		Agent:           "Direct",
		GlobalClient:    models.GlobalClientNo,
	}

	b := &fakeBackend{}
	w := NewEdit(b, existing)

	assert.ErrorIs(t, w.SetAccountNo(context.Background(), "XYZ999"), ErrAccountImmutable)

	w.SetFundClass("B")

	summary, err := w.Confirm()
	require.NoError(t, err)

	for _, fc := range summary {
		if fc.Field == "fundClass" {
			assert.True(t, fc.Changed)
			assert.Equal(t, "A", fc.Old)
			assert.Equal(t, "B", fc.New)

			continue
		}

		assert.False(t, fc.Changed, "field %s must render unchanged", fc.Field)
	}
}

func TestSubmit_FailureReturnsToConfirming(t *testing.T) {
	b := &fakeBackend{addErr: assert.AnError}
	w := NewAdd(b)

	require.NoError(t, w.SetAccountNo(context.Background(), "ABC123"))
	fillDraft(w)

	_, err := w.Confirm()
	require.NoError(t, err)

	assert.Error(t, w.Submit(context.Background()))
	assert.Equal(t, PhaseConfirming, w.Phase(), "failure keeps the modal open")

	// phase gating
	require.NoError(t, w.Back())
	assert.Equal(t, PhaseEditing, w.Phase())
	assert.ErrorIs(t, w.Submit(context.Background()), ErrWrongPhase)
}

func TestCancel_DiscardsDraft(t *testing.T) {
	b := &fakeBackend{}
	w := NewAdd(b)

	refreshed := false
	w.OnSuccess = func() { refreshed = true }

	require.NoError(t, w.SetAccountNo(context.Background(), "ABC123"))
	fillDraft(w)

	w.Cancel()
	assert.Equal(t, PhaseClosed, w.Phase())
	assert.Empty(t, w.Draft().GfasAccountNo, "the abandoned draft is dropped")
	assert.Zero(t, b.addCalls, "nothing reaches the server")
	assert.False(t, refreshed)

	assert.ErrorIs(t, w.Submit(context.Background()), ErrWrongPhase)
	_, err := w.Confirm()
	assert.ErrorIs(t, err, ErrWrongPhase)

	// closing from the confirmation phase behaves the same
	w = NewAdd(b)
	require.NoError(t, w.SetAccountNo(context.Background(), "ABC123"))
	fillDraft(w)

	_, err = w.Confirm()
	require.NoError(t, err)

	w.Cancel()
	assert.Equal(t, PhaseClosed, w.Phase())
	assert.Zero(t, b.addCalls)
}
