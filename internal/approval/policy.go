package approval

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
)

// Policy decides whether a principal may perform a given operation on a
// transaction. It is a pure decision component: it reads role and limit data
// off the principal and never touches storage.
type Policy struct {
	logger *slog.Logger
}

func NewPolicy(logger *slog.Logger) *Policy {
	return &Policy{logger: logger}
}

// CanApprove reports whether the principal may move a transaction of the
// given post-tax amount into approved.
//
// Admins have unconditional authority. Managers and approvers are bound by
// their approval limit: nil means unlimited, otherwise the amount must not
// exceed it (inclusive boundary). Everyone else is denied outright.
func (p *Policy) CanApprove(principal *auth.Principal, amount decimal.Decimal) error {
	switch principal.Role {
	case userDatamodel.RoleAdmin:
		return nil
	case userDatamodel.RoleManager, userDatamodel.RoleApprover:
		if principal.ApprovalLimit == nil {
			return nil
		}
		if amount.LessThanOrEqual(*principal.ApprovalLimit) {
			return nil
		}
		p.logger.Warn("approval denied: amount exceeds limit",
			"user_id", principal.ID,
			"role", principal.Role,
			"amount", amount.String(),
			"approval_limit", principal.ApprovalLimit.String())
		return internal.ErrExceedsLimit
	case userDatamodel.RoleAuditor:
		return internal.ErrReadOnlyRole
	default:
		p.logger.Warn("approval denied: role cannot approve",
			"user_id", principal.ID,
			"role", principal.Role)
		return internal.ErrNotOwner
	}
}

// CanWrite rejects any mutating operation from the read-only auditor role.
func (p *Policy) CanWrite(principal *auth.Principal) error {
	if principal.Role == userDatamodel.RoleAuditor {
		p.logger.Warn("write denied: auditor is read-only", "user_id", principal.ID)
		return internal.ErrReadOnlyRole
	}
	return nil
}

// CanAccess enforces the ownership rule for non-approval operations: a
// non-admin principal may only act on transactions it submitted or requested.
func (p *Policy) CanAccess(principal *auth.Principal, submittedBy, requestedBy int64) error {
	if principal.Role == userDatamodel.RoleAdmin {
		return nil
	}
	if submittedBy == principal.ID || requestedBy == principal.ID {
		return nil
	}
	p.logger.Warn("access denied: principal does not own resource",
		"user_id", principal.ID,
		"submitted_by", submittedBy,
		"requested_by", requestedBy)
	return internal.ErrNotOwner
}

// IsAdmin reports admin authority for operations reserved to administrators.
func (p *Policy) IsAdmin(principal *auth.Principal) bool {
	return principal.Role == userDatamodel.RoleAdmin
}

// CanManageUsers covers user administration, granted to admins and managers.
func (p *Policy) CanManageUsers(principal *auth.Principal) bool {
	return principal.Role == userDatamodel.RoleAdmin || principal.Role == userDatamodel.RoleManager
}
