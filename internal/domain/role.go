package domain

// Role classifies a visiting session.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEditor   Role = "editor"
	RoleUploader Role = "uploader"
)

// ParseRole maps a user supplied string onto a claimable role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleEditor:
		return Role(s), true
	default:
		return "", false
	}
}

// RoleAssignment is the single persisted row naming the admin and editor sessions.
type RoleAssignment struct {
	AdminSessionID  *string
	EditorSessionID *string
}

// Holder returns the session currently holding the given role, if any.
func (r RoleAssignment) Holder(role Role) (string, bool) {
	var p *string
	switch role {
	case RoleAdmin:
		p = r.AdminSessionID
	case RoleEditor:
		p = r.EditorSessionID
	}
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}
