package user

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
)

var assignableRoles = map[string]bool{
	userDatamodel.RoleAdmin:    true,
	userDatamodel.RoleManager:  true,
	userDatamodel.RoleApprover: true,
	userDatamodel.RoleEmployee: true,
	userDatamodel.RoleAuditor:  true,
}

// UserResponse is the API shape of a user. The role is the normalized value;
// legacy stored roles never leave the service layer. Password material is
// never serialized.
type UserResponse struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone,omitempty"`
	Role          string           `json:"role"`
	ApprovalLimit *decimal.Decimal `json:"approval_limit,omitempty"`
	Department    string           `json:"department,omitempty"`
	ManagerID     *int64           `json:"manager_id,omitempty"`
	IsActive      bool             `json:"is_active"`
	LastLogin     *time.Time       `json:"last_login,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func ToResponse(u *userDatamodel.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          userDatamodel.NormalizeRole(u.Role),
		ApprovalLimit: u.ApprovalLimit,
		Department:    u.Department,
		ManagerID:     u.ManagerID,
		IsActive:      u.IsActive,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
	}
}

type CreateUserDTO struct {
	Name          string           `json:"name" validate:"required"`
	Email         string           `json:"email" validate:"required,email"`
	Phone         string           `json:"phone,omitempty"`
	Password      string           `json:"password" validate:"required,min=8"`
	Role          string           `json:"role" validate:"required"`
	ApprovalLimit *decimal.Decimal `json:"approval_limit,omitempty"`
	Department    string           `json:"department,omitempty"`
	ManagerID     *int64           `json:"manager_id,omitempty"`
}

func (dto *CreateUserDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !assignableRoles[dto.Role] {
		return errors.New("role must be one of admin, manager, approver, employee, auditor")
	}
	if dto.ApprovalLimit != nil && !dto.ApprovalLimit.IsPositive() {
		return errors.New("approval limit must be greater than 0")
	}
	return nil
}

type UpdateUserDTO struct {
	Name          *string          `json:"name,omitempty"`
	Phone         *string          `json:"phone,omitempty"`
	Department    *string          `json:"department,omitempty"`
	ApprovalLimit *decimal.Decimal `json:"approval_limit,omitempty"`
	ManagerID     *int64           `json:"manager_id,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.ApprovalLimit != nil && !dto.ApprovalLimit.IsPositive() {
		return errors.New("approval limit must be greater than 0")
	}
	return nil
}

// ChangeRoleDTO reassigns a user's role, optionally with a new approval
// limit in the same mutation.
type ChangeRoleDTO struct {
	Role          string           `json:"role" validate:"required"`
	ApprovalLimit *decimal.Decimal `json:"approval_limit,omitempty"`
}

func (dto ChangeRoleDTO) Validate() error {
	if !assignableRoles[dto.Role] {
		return errors.New("role must be one of admin, manager, approver, employee, auditor")
	}
	if dto.ApprovalLimit != nil && !dto.ApprovalLimit.IsPositive() {
		return errors.New("approval limit must be greater than 0")
	}
	return nil
}

// ListFilters narrows user listings. Zero values mean "no filter".
type ListFilters struct {
	Role       string
	Department string
	IsActive   *bool
	Search     string
	Limit      int
	Offset     int
}
