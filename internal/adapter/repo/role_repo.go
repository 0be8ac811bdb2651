package repo

import (
	"context"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
	"github.com/sindhuth/donation-ocr-app/internal/sqlinline"
)

// GetRoles reads the role assignment row. A missing row reads as unassigned.
func (s *PostgresStore) GetRoles(ctx context.Context) (domain.RoleAssignment, error) {
	var ra domain.RoleAssignment
	err := s.sql.QueryRow(ctx, sqlinline.QGetRoles).Scan(&ra.AdminSessionID, &ra.EditorSessionID)
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.RoleAssignment{}, nil
		}
		return domain.RoleAssignment{}, storageErr("get roles", err)
	}
	return ra, nil
}

// ClaimRole is a conditional update: it reports true only when this call
// filled the empty slot.
func (s *PostgresStore) ClaimRole(ctx context.Context, role domain.Role, sessionID string) (bool, error) {
	var q string
	switch role {
	case domain.RoleAdmin:
		q = sqlinline.QClaimAdminRole
	case domain.RoleEditor:
		q = sqlinline.QClaimEditorRole
	default:
		return false, nil
	}
	tag, err := s.sql.Exec(ctx, q, sessionID)
	if err != nil {
		return false, storageErr("claim role", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ClearRoles unsets both role slots.
func (s *PostgresStore) ClearRoles(ctx context.Context) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QClearRoles); err != nil {
		return storageErr("clear roles", err)
	}
	return nil
}
