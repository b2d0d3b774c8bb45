// Package auditview renders mapping audit entries for the history
// screen: which fields to show and how, per audit action.
package auditview

import (
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
)

// NoChanges is rendered when an entry carries nothing displayable.
const NoChanges = "No changes recorded"

// Line is one rendered field of an audit entry.
type Line struct {
	Field string
	Text  string
}

// field labels in display order
var fieldOrder = []string{
	"headGroup",
	"wiGroup",
	"wiCustomizedGroup",
	"fundClass",
	"pensionCategory",
	"portfolioNature",
	"memberChoice",
	"rmName",
	"agent",
	"isGlobalClient",
}

type pair struct {
	old *string
	new *string
}

func pairs(e *models.MappingAuditLog) map[string]pair {
	return map[string]pair{
		"headGroup":         {e.OldHeadGroup, e.NewHeadGroup},
		"wiGroup":           {e.OldWiGroup, e.NewWiGroup},
		"wiCustomizedGroup": {e.OldWiCustomizedGroup, e.NewWiCustomizedGroup},
		"fundClass":         {e.OldFundClass, e.NewFundClass},
		"pensionCategory":   {e.OldPensionCategory, e.NewPensionCategory},
		"portfolioNature":   {e.OldPortfolioNature, e.NewPortfolioNature},
		"memberChoice":      {e.OldMemberChoice, e.NewMemberChoice},
		"rmName":            {e.OldRmName, e.NewRmName},
		"agent":             {e.OldAgent, e.NewAgent},
		"isGlobalClient":    {e.OldIsGlobalClient, e.NewIsGlobalClient},
	}
}

func valueOrDash(p *string) string {
	if p == nil || *p == "" {
		return "-"
	}

	return *p
}

// Render builds the display lines of one audit entry. Add entries list
// the created values, delete entries the removed values, update entries
// the old => new transitions of the changed fields. Entries without
// displayable fields, including unknown actions, render the NoChanges
// marker.
func Render(e *models.MappingAuditLog) []Line {
	byField := pairs(e)

	var lines []Line

	switch e.Action {
	case models.AuditActionAdd, models.AuditActionBulkAdd:
		for _, f := range fieldOrder {
			if p := byField[f]; p.new != nil {
				lines = append(lines, Line{Field: f, Text: valueOrDash(p.new)})
			}
		}
	case models.AuditActionDelete, models.AuditActionBulkDelete:
		for _, f := range fieldOrder {
			if p := byField[f]; p.old != nil {
				lines = append(lines, Line{Field: f, Text: valueOrDash(p.old)})
			}
		}
	case models.AuditActionUpdate, models.AuditActionBulkUpdate:
		for _, f := range fieldOrder {
			// a transition exists only where a new value was recorded
			p := byField[f]
			if p.new == nil {
				continue
			}

			lines = append(lines, Line{
				Field: f,
				Text:  valueOrDash(p.old) + " => " + valueOrDash(p.new),
			})
		}
	}

	if len(lines) == 0 {
		return []Line{{Text: NoChanges}}
	}

	return lines
}
