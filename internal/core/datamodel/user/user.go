package user

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleApprover = "approver"
	RoleEmployee = "employee"
	RoleAuditor  = "auditor"

	// Legacy roles still present in historical data. Normalized to employee
	// at the authorization boundary, never rewritten in storage.
	RoleCustodian = "custodian"
	RoleHandler   = "handler"
)

type User struct {
	ID                     int64            `gorm:"primaryKey"`
	Name                   string           `gorm:"column:name;not null"`
	Email                  string           `gorm:"column:email;uniqueIndex;not null"`
	Phone                  string           `gorm:"column:phone"`
	PasswordHash           *string          `gorm:"column:password_hash"`
	Role                   string           `gorm:"column:role;default:employee"`
	ApprovalLimit          *decimal.Decimal `gorm:"column:approval_limit;type:numeric"`
	Department             string           `gorm:"column:department"`
	ManagerID              *int64           `gorm:"column:manager_id"`
	IsActive               bool             `gorm:"column:is_active;default:true"`
	FailedPasswordAttempts int              `gorm:"column:failed_password_attempts;default:0"`
	FailedOTPAttempts      int              `gorm:"column:failed_otp_attempts;default:0"`
	AccountLockedUntil     *time.Time       `gorm:"column:account_locked_until"`
	LastOTPSentAt          *time.Time       `gorm:"column:last_otp_sent_at"`
	LastLogin              *time.Time       `gorm:"column:last_login"`
	CreatedAt              time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// NormalizeRole maps legacy role values onto their current equivalent. Pure
// derivation; the stored record is left untouched.
func NormalizeRole(stored string) string {
	switch stored {
	case RoleCustodian, RoleHandler:
		return RoleEmployee
	default:
		return stored
	}
}

func (u *User) IsLocked(now time.Time) bool {
	return u.AccountLockedUntil != nil && u.AccountLockedUntil.After(now)
}
