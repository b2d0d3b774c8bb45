// Package policy holds the role based access rules of the Group Company
// console. Decisions are pure functions over the session role and the
// ownership of the touched record, so the web handlers and the console
// client can share one implementation.
package policy

import "strings"

// Role is the Group Company role carried by a user account.
type Role string

// Known roles. An unknown role string parses to the zero Role, which is
// denied every action.
const (
	RoleRead  Role = "READ"
	RoleWrite Role = "WRITE"
	RoleAdmin Role = "ADMIN"
)

// SharedOwner is the RM display name marking a record as shared. Records
// assigned to it are treated as unowned: any WRITE user may change them.
const SharedOwner = "Client Service Officer"

// ParseRole normalizes a raw role string. Unknown values yield the zero
// Role.
func ParseRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleRead:
		return RoleRead
	case RoleWrite:
		return RoleWrite
	case RoleAdmin:
		return RoleAdmin
	}

	return ""
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleRead || r == RoleWrite || r == RoleAdmin
}

// Action is a user-triggered operation subject to the access rules.
type Action string

// Actions checked against the policy.
const (
	ActionSearch   Action = "search"
	ActionAdd      Action = "add"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionUpload   Action = "upload"
	ActionDownload Action = "download"
)

// Ownership is the slice of a mapping record the policy looks at.
type Ownership struct {
	// RM is the assigned relationship manager display name.
	RM string
}

// Owned reports whether the record has a real owner. Blank and the
// shared sentinel owner both count as unowned.
func (o Ownership) Owned() bool {
	rm := strings.TrimSpace(o.RM)
	return rm != "" && rm != SharedOwner
}

// CanPerform decides whether a user may perform an action.
//
// ADMIN may do everything. READ may search and download. WRITE may
// search, add, upload and download unconditionally, and may edit or
// delete a record only when it is unowned or owned by the user. Actions
// that touch a record (edit, delete) are denied when rec is nil.
func CanPerform(action Action, role Role, rec *Ownership, currentUserName string) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleRead:
		return action == ActionSearch || action == ActionDownload
	case RoleWrite:
		switch action {
		case ActionSearch, ActionAdd, ActionUpload, ActionDownload:
			return true
		case ActionEdit, ActionDelete:
			if rec == nil {
				return false
			}

			return !rec.Owned() || rec.RM == currentUserName
		}
	}

	return false
}

// CanPerformAll decides a bulk action over a selection: every selected
// record must individually pass, and an empty selection is denied.
func CanPerformAll(action Action, role Role, recs []Ownership, currentUserName string) bool {
	if len(recs) == 0 {
		return false
	}

	for i := range recs {
		if !CanPerform(action, role, &recs[i], currentUserName) {
			return false
		}
	}

	return true
}
