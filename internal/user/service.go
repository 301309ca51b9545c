package user

import (
	"context"
	"log/slog"

	"github.com/Poorani-S/pettycash-backend/internal"
	"github.com/Poorani-S/pettycash-backend/internal/approval"
	"github.com/Poorani-S/pettycash-backend/internal/auth"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
)

type Repository interface {
	Create(u *userDatamodel.User) error
	GetByID(id int64) (*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	List(filters ListFilters) ([]*userDatamodel.User, error)
	Update(u *userDatamodel.User) error
	SetActive(id int64, active bool) error
}

// PasswordHasher abstracts bcrypt so the service can be tested without
// paying the hashing cost.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	policy *approval.Policy
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, policy *approval.Policy, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		policy: policy,
		bus:    bus,
		logger: logger,
	}
}

// Create registers a new user. Admin only; the supplied password is hashed
// before it ever reaches the repository.
func (s *Service) Create(ctx context.Context, principal *auth.Principal, dto CreateUserDTO) (*UserResponse, error) {
	if !s.policy.IsAdmin(principal) {
		return nil, internal.NewForbiddenError("only administrators can create users", internal.ErrCodeNotOwner)
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, internal.NewValidationError("a user with this email already exists", internal.ErrCodeDuplicateResource)
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &userDatamodel.User{
		Name:          dto.Name,
		Email:         dto.Email,
		Phone:         dto.Phone,
		PasswordHash:  &hash,
		Role:          dto.Role,
		ApprovalLimit: dto.ApprovalLimit,
		Department:    dto.Department,
		ManagerID:     dto.ManagerID,
		IsActive:      true,
	}
	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.publishChange(ctx, "created", u, principal, []string{"name", "email", "role"})
	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "by", principal.ID)

	resp := ToResponse(u)
	return &resp, nil
}

// Get returns a user. Admins and managers may view anyone; everyone else
// only themselves.
func (s *Service) Get(ctx context.Context, principal *auth.Principal, id int64) (*UserResponse, error) {
	if !s.policy.CanManageUsers(principal) && principal.ID != id {
		return nil, internal.ErrNotOwner
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := ToResponse(u)
	return &resp, nil
}

// List returns users matching the filters. Admin and manager only.
func (s *Service) List(ctx context.Context, principal *auth.Principal, filters ListFilters) ([]UserResponse, error) {
	if !s.policy.CanManageUsers(principal) {
		return nil, internal.NewForbiddenError("only administrators and managers can list users", internal.ErrCodeNotOwner)
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	users, err := s.repo.List(filters)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToResponse(u))
	}
	return responses, nil
}

// Update edits profile fields. Admins may edit anyone; users may edit their
// own profile but not their approval limit.
func (s *Service) Update(ctx context.Context, principal *auth.Principal, id int64, dto UpdateUserDTO) (*UserResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	isSelf := principal.ID == id
	if !s.policy.IsAdmin(principal) && !isSelf {
		return nil, internal.ErrNotOwner
	}
	if isSelf && !s.policy.IsAdmin(principal) && dto.ApprovalLimit != nil {
		return nil, internal.NewForbiddenError("approval limit can only be changed by an administrator", internal.ErrCodeNotOwner)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	var changed []string
	if dto.Name != nil {
		u.Name = *dto.Name
		changed = append(changed, "name")
	}
	if dto.Phone != nil {
		u.Phone = *dto.Phone
		changed = append(changed, "phone")
	}
	if dto.Department != nil {
		u.Department = *dto.Department
		changed = append(changed, "department")
	}
	if dto.ApprovalLimit != nil {
		u.ApprovalLimit = dto.ApprovalLimit
		changed = append(changed, "approval_limit")
	}
	if dto.ManagerID != nil {
		u.ManagerID = dto.ManagerID
		changed = append(changed, "manager_id")
	}

	if len(changed) == 0 {
		resp := ToResponse(u)
		return &resp, nil
	}

	if err := s.repo.Update(u); err != nil {
		return nil, err
	}

	s.publishChange(ctx, "updated", u, principal, changed)
	resp := ToResponse(u)
	return &resp, nil
}

// ChangeRole reassigns a user's role, and the approval limit with it when
// supplied, as one mutation. Admin only.
func (s *Service) ChangeRole(ctx context.Context, principal *auth.Principal, id int64, dto ChangeRoleDTO) (*UserResponse, error) {
	if !s.policy.IsAdmin(principal) {
		return nil, internal.NewForbiddenError("only administrators can change roles", internal.ErrCodeNotOwner)
	}
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	u.Role = dto.Role
	changed := []string{"role"}
	if dto.ApprovalLimit != nil {
		u.ApprovalLimit = dto.ApprovalLimit
		changed = append(changed, "approval_limit")
	}

	if err := s.repo.Update(u); err != nil {
		return nil, err
	}

	s.publishChange(ctx, "role_changed", u, principal, changed)
	s.logger.Info("user role changed", "user_id", id, "role", dto.Role, "by", principal.ID)

	resp := ToResponse(u)
	return &resp, nil
}

// Deactivate soft-disables a login. The record stays for audit history.
func (s *Service) Deactivate(ctx context.Context, principal *auth.Principal, id int64) error {
	return s.setActive(ctx, principal, id, false, "deactivated")
}

// Reactivate re-enables a previously deactivated user.
func (s *Service) Reactivate(ctx context.Context, principal *auth.Principal, id int64) error {
	return s.setActive(ctx, principal, id, true, "reactivated")
}

func (s *Service) setActive(ctx context.Context, principal *auth.Principal, id int64, active bool, action string) error {
	if !s.policy.IsAdmin(principal) {
		return internal.NewForbiddenError("only administrators can change user status", internal.ErrCodeNotOwner)
	}
	if principal.ID == id && !active {
		return internal.NewValidationError("you cannot deactivate your own account", internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.SetActive(id, active); err != nil {
		return err
	}

	s.publishChange(ctx, action, u, principal, []string{"is_active"})
	return nil
}

func (s *Service) publishChange(ctx context.Context, action string, target *userDatamodel.User, principal *auth.Principal, changes []string) {
	if s.bus == nil {
		return
	}
	event := events.NewUserChangedEvent(action, target.ID, target.Name, target.Email, principal.ID, principal.Name, changes)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish user change event", "error", err, "action", action)
	}
}
