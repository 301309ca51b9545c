package audit

import (
	"encoding/json"
	"time"
)

const (
	ActionCreateTransaction  = "CREATE_TRANSACTION"
	ActionUpdateTransaction  = "UPDATE_TRANSACTION"
	ActionDeleteTransaction  = "DELETE_TRANSACTION"
	ActionApproveTransaction = "APPROVE_TRANSACTION"
	ActionRejectTransaction  = "REJECT_TRANSACTION"
	ActionCreateUser         = "CREATE_USER"
	ActionUpdateUser         = "UPDATE_USER"
	ActionDeleteUser         = "DELETE_USER"
	ActionCreateCategory     = "CREATE_CATEGORY"
	ActionUpdateCategory     = "UPDATE_CATEGORY"
	ActionDeleteCategory     = "DELETE_CATEGORY"
	ActionLogin              = "LOGIN"
	ActionLogout             = "LOGOUT"
)

// AuditLog records a state-changing action. Append-only; never consulted by
// the core for decision making.
type AuditLog struct {
	ID           int64           `gorm:"primaryKey"`
	Action       string          `gorm:"column:action;not null;index"`
	PerformedBy  int64           `gorm:"column:performed_by;not null;index"`
	TargetEntity string          `gorm:"column:target_entity;not null"`
	TargetID     int64           `gorm:"column:target_id;not null"`
	Changes      json.RawMessage `gorm:"column:changes;type:jsonb"`
	IPAddress    string          `gorm:"column:ip_address"`
	UserAgent    string          `gorm:"column:user_agent"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

const (
	LoginMethodPassword = "password"
	LoginMethodOTP      = "otp"

	LoginStatusSuccess = "success"
	LoginStatusFailed  = "failed"
)

type LoginActivity struct {
	ID            int64     `gorm:"primaryKey"`
	UserID        int64     `gorm:"column:user_id;not null;index"`
	Email         string    `gorm:"column:email;not null"`
	Name          string    `gorm:"column:name"`
	Role          string    `gorm:"column:role"`
	LoginMethod   string    `gorm:"column:login_method;not null"`
	LoginStatus   string    `gorm:"column:login_status;not null;index"`
	FailureReason *string   `gorm:"column:failure_reason"`
	IPAddress     string    `gorm:"column:ip_address"`
	UserAgent     string    `gorm:"column:user_agent"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (LoginActivity) TableName() string {
	return "login_activities"
}

type UserActivityLog struct {
	ID              int64           `gorm:"primaryKey"`
	Action          string          `gorm:"column:action;not null;index"`
	TargetUserID    int64           `gorm:"column:target_user_id;not null;index"`
	TargetUserName  string          `gorm:"column:target_user_name"`
	TargetUserEmail string          `gorm:"column:target_user_email"`
	PerformedBy     int64           `gorm:"column:performed_by;not null;index"`
	PerformedByName string          `gorm:"column:performed_by_name"`
	Details         json.RawMessage `gorm:"column:details;type:jsonb"`
	IPAddress       string          `gorm:"column:ip_address"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime;index"`
}

func (UserActivityLog) TableName() string {
	return "user_activity_logs"
}
