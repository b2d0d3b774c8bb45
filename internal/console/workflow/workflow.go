// Package workflow implements the two-phase add/edit modal of mapping
// records: an editing phase with reference dropdowns, typeahead group
// fields and server-side account name resolution, a confirmation phase
// rendering a before/after summary, and the final submit.
package workflow

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

// Fund class FRMT auto-populates its companion values. This is a
// documented special case of that one fund class, not a general rule.
const (
	FundClassFRMT       = "FRMT"
	FRMTPortfolioNature = "DC(full service)"
	FRMTPensionCategory = "MPF- Direct"
	FRMTMemberChoice    = "Member Choice"
)

// Mode selects create vs update behavior.
type Mode string

// Workflow modes.
const (
	ModeAdd  Mode = "add"
	ModeEdit Mode = "edit"
)

// Phase is the workflow state.
type Phase string

// Workflow phases.
const (
	PhaseEditing    Phase = "editing"
	PhaseConfirming Phase = "confirming"
	PhaseSubmitting Phase = "submitting"
	PhaseClosed     Phase = "closed"
)

var (
	// ErrAccountImmutable is returned when editing tries to change the
	// account number of an existing record.
	ErrAccountImmutable = errors.New("account number cannot be changed")
	// ErrAccountNoInvalid is returned for malformed account numbers.
	ErrAccountNoInvalid = errors.New("account number may only contain letters, digits and spaces")
	// ErrAltIDRequired is returned when the shared account number lacks
	// an alt id.
	ErrAltIDRequired = errors.New("Alt Id is required for this GFAS account")
	// ErrMandatoryMissing is returned when confirmation is requested
	// with empty mandatory fields.
	ErrMandatoryMissing = errors.New("please fill in all mandatory fields")
	// ErrWrongPhase is returned for calls outside their phase.
	ErrWrongPhase = errors.New("operation not allowed in current phase")
)

var accountNoPattern = regexp.MustCompile(`^[A-Z0-9 ]+$`)

// Backend is the slice of the gateway the workflow needs.
type Backend interface {
	GfasAccountName(ctx context.Context, accountNo, altID string) (string, error)
	AddMapping(ctx context.Context, m *models.GroupCompanyMapping) error
	SaveMapping(ctx context.Context, m *models.GroupCompanyMapping) error
}

// FieldChange is one row of the confirmation summary.
type FieldChange struct {
	Field   string
	Old     string
	New     string
	Changed bool
}

// Workflow drives one open add/edit modal.
type Workflow struct {
	mode    Mode
	phase   Phase
	backend Backend

	// original is the edit baseline; nil in add mode.
	original *models.GroupCompanyMapping
	draft    models.GroupCompanyMapping

	// OnSuccess is invoked after a successful submit, before the
	// workflow closes. The table controller hooks its refresh here.
	OnSuccess func()
}

// NewAdd opens an add workflow.
func NewAdd(backend Backend) *Workflow {
	if backend == nil {
		panic("backend cannot be nil")
	}

	return &Workflow{
		mode:    ModeAdd,
		phase:   PhaseEditing,
		backend: backend,
	}
}

// NewEdit opens an edit workflow over an existing record.
func NewEdit(backend Backend, existing *models.GroupCompanyMapping) *Workflow {
	if backend == nil {
		panic("backend cannot be nil")
	}

	if existing == nil {
		panic("existing record cannot be nil")
	}

	original := *existing

	return &Workflow{
		mode:     ModeEdit,
		phase:    PhaseEditing,
		backend:  backend,
		original: &original,
		draft:    *existing,
	}
}

// Mode returns the workflow mode.
func (w *Workflow) Mode() Mode {
	return w.mode
}

// Phase returns the current phase.
func (w *Workflow) Phase() Phase {
	return w.phase
}

// Draft returns the record under edit.
func (w *Workflow) Draft() *models.GroupCompanyMapping {
	return &w.draft
}

// SentinelAccount reports whether the draft uses the shared account
// number and therefore needs an Alt Id.
func (w *Workflow) SentinelAccount() bool {
	return w.draft.GfasAccountNo == models.SentinelAccountNo
}

// SetAccountNo handles the account number input blur: uppercases the
// value and resolves the account name. For the shared sentinel account
// the lookup is deferred until the Alt Id is supplied too.
func (w *Workflow) SetAccountNo(ctx context.Context, raw string) error {
	if w.mode == ModeEdit {
		return ErrAccountImmutable
	}

	no := strings.ToUpper(strings.TrimSpace(raw))
	if no == "" || !accountNoPattern.MatchString(no) {
		return ErrAccountNoInvalid
	}

	w.draft.GfasAccountNo = no
	w.draft.GfasAccountName = ""

	if no == models.SentinelAccountNo && strings.TrimSpace(w.draft.AlternativeID) == "" {
		// name lookup waits for the alt id
		return nil
	}

	return w.resolveName(ctx)
}

// SetAltID handles the Alt Id input. For the sentinel account a
// non-empty Alt Id completes the deferred name lookup.
func (w *Workflow) SetAltID(ctx context.Context, raw string) error {
	if w.mode == ModeEdit {
		return ErrAccountImmutable
	}

	w.draft.AlternativeID = strings.ToUpper(strings.TrimSpace(raw))

	if !w.SentinelAccount() || w.draft.AlternativeID == "" {
		return nil
	}

	return w.resolveName(ctx)
}

func (w *Workflow) resolveName(ctx context.Context) error {
	name, err := w.backend.GfasAccountName(ctx, w.draft.GfasAccountNo, w.draft.AlternativeID)
	if err != nil {
		return err
	}

	w.draft.GfasAccountName = name

	return nil
}

// SetFundClass sets the fund class. FRMT auto-populates the companion
// dropdowns.
func (w *Workflow) SetFundClass(fundClass string) {
	w.draft.FundClass = fundClass

	if fundClass == FundClassFRMT {
		w.draft.PortfolioNature = FRMTPortfolioNature
		w.draft.PensionCategory = FRMTPensionCategory
		w.draft.MemberChoice = FRMTMemberChoice
	}
}

// SetHeadGroup binds the head group typeahead selection.
func (w *Workflow) SetHeadGroup(id uint64, name string) {
	w.draft.HeadGroupID = id
	w.draft.HeadGroupName = name
}

// SetWIGroup binds the WI group typeahead selection.
func (w *Workflow) SetWIGroup(id uint64, name string) {
	w.draft.WIGroupID = id
	w.draft.WIGroupName = name
}

// SetWICustomizedGroup binds the optional WI customized group
// selection. A zero id clears it.
func (w *Workflow) SetWICustomizedGroup(id uint64, name string) {
	w.draft.WICustomizedGroupID = id
	w.draft.WICustomizedGroupName = name

	if id == 0 {
		w.draft.WICustomizedGroupName = ""
	}
}

// validate runs the client-side mandatory checks before any request.
func (w *Workflow) validate() error {
	d := &w.draft

	if d.GfasAccountNo == "" || !accountNoPattern.MatchString(d.GfasAccountNo) {
		return ErrAccountNoInvalid
	}

	if d.GfasAccountNo == models.SentinelAccountNo && strings.TrimSpace(d.AlternativeID) == "" {
		return ErrAltIDRequired
	}

	mandatory := []string{
		d.GfasAccountName,
		d.HeadGroupName,
		d.WIGroupName,
		d.FundClass,
		d.PensionCategory,
		d.PortfolioNature,
		d.MemberChoice,
		d.Agent,
		d.GlobalClient,
	}

	for _, v := range mandatory {
		if strings.TrimSpace(v) == "" {
			return ErrMandatoryMissing
		}
	}

	if d.HeadGroupID == 0 || d.WIGroupID == 0 {
		return ErrMandatoryMissing
	}

	return nil
}

// Confirm validates the draft and moves to the confirmation phase,
// returning the field summary to render.
func (w *Workflow) Confirm() ([]FieldChange, error) {
	if w.phase != PhaseEditing {
		return nil, ErrWrongPhase
	}

	if err := w.validate(); err != nil {
		return nil, err
	}

	w.phase = PhaseConfirming

	return w.Summary(), nil
}

// Cancel closes the workflow from any phase, discarding the draft.
// Nothing is persisted and OnSuccess does not fire.
func (w *Workflow) Cancel() {
	w.phase = PhaseClosed
	w.draft = models.GroupCompanyMapping{}
}

// Back returns from the confirmation phase to editing.
func (w *Workflow) Back() error {
	if w.phase != PhaseConfirming {
		return ErrWrongPhase
	}

	w.phase = PhaseEditing

	return nil
}

// Summary builds the confirmation rows. In add mode the old column is
// empty and nothing is marked changed; in edit mode changed fields are
// flagged with their old and new values.
func (w *Workflow) Summary() []FieldChange {
	type field struct {
		name string
		get  func(m *models.GroupCompanyMapping) string
	}

	fields := []field{
		{"gfasAccountNo", func(m *models.GroupCompanyMapping) string { return m.GfasAccountNo }},
		{"alternativeId", func(m *models.GroupCompanyMapping) string { return m.AlternativeID }},
		{"gfasAccountName", func(m *models.GroupCompanyMapping) string { return m.GfasAccountName }},
		{"headGroup", func(m *models.GroupCompanyMapping) string { return m.HeadGroupName }},
		{"wiGroup", func(m *models.GroupCompanyMapping) string { return m.WIGroupName }},
		{"wiCustomizedGroup", func(m *models.GroupCompanyMapping) string { return m.WICustomizedGroupName }},
		{"fundClass", func(m *models.GroupCompanyMapping) string { return m.FundClass }},
		{"pensionCategory", func(m *models.GroupCompanyMapping) string { return m.PensionCategory }},
		{"portfolioNature", func(m *models.GroupCompanyMapping) string { return m.PortfolioNature }},
		{"memberChoice", func(m *models.GroupCompanyMapping) string { return m.MemberChoice }},
		{"rm", func(m *models.GroupCompanyMapping) string { return m.RM }},
		{"agent", func(m *models.GroupCompanyMapping) string { return m.Agent }},
		{"globalClient", func(m *models.GroupCompanyMapping) string { return m.GlobalClient }},
	}

	out := make([]FieldChange, 0, len(fields))

	for _, f := range fields {
		change := FieldChange{Field: f.name, New: f.get(&w.draft)}

		if w.mode == ModeEdit {
			change.Old = f.get(w.original)
			change.Changed = change.Old != change.New
		}

		out = append(out, change)
	}

	return out
}

// Submit persists the draft. On success the workflow closes and
// OnSuccess fires; on failure it returns to the confirmation phase with
// the error for the caller to surface.
func (w *Workflow) Submit(ctx context.Context) error {
	if w.phase != PhaseConfirming {
		return ErrWrongPhase
	}

	w.phase = PhaseSubmitting

	var err error

	if w.mode == ModeAdd {
		err = w.backend.AddMapping(ctx, &w.draft)
	} else {
		err = w.backend.SaveMapping(ctx, &w.draft)
	}

	if err != nil {
		w.phase = PhaseConfirming
		return err
	}

	w.phase = PhaseClosed

	if w.OnSuccess != nil {
		w.OnSuccess()
	}

	return nil
}
