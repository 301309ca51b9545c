package audit

import (
	"log/slog"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	auditDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/audit"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
)

// Service exposes read access to the audit trail. Admins and auditors only;
// the auditor role exists precisely for this surface.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) canRead(principal *auth.Principal) bool {
	return principal.Role == userDatamodel.RoleAdmin || principal.Role == userDatamodel.RoleAuditor
}

func (s *Service) AuditLogs(principal *auth.Principal, filters ListFilters) ([]*auditDatamodel.AuditLog, error) {
	if !s.canRead(principal) {
		return nil, internal.NewForbiddenError("only administrators and auditors can read the audit trail", internal.ErrCodeNotOwner)
	}
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	return s.repo.ListAuditLogs(filters)
}

func (s *Service) LoginActivity(principal *auth.Principal, filters LoginActivityFilters) ([]*auditDatamodel.LoginActivity, error) {
	if !s.canRead(principal) {
		return nil, internal.NewForbiddenError("only administrators and auditors can read login activity", internal.ErrCodeNotOwner)
	}
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	return s.repo.ListLoginActivity(filters)
}

func (s *Service) UserActivity(principal *auth.Principal, filters UserActivityFilters) ([]*auditDatamodel.UserActivityLog, error) {
	if !s.canRead(principal) {
		return nil, internal.NewForbiddenError("only administrators and auditors can read user activity", internal.ErrCodeNotOwner)
	}
	if filters.Limit <= 0 || filters.Limit > 200 {
		filters.Limit = 50
	}
	return s.repo.ListUserActivity(filters)
}
