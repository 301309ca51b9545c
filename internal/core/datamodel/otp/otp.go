package otp

import "time"

const (
	TypeLogin         = "login"
	TypePasswordReset = "password_reset"
)

// OTP is an ephemeral credential. At most one unused OTP of a given type
// exists per user; issuing a new one invalidates the rest.
type OTP struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null"`
	Email     string    `gorm:"column:email;not null"`
	Phone     string    `gorm:"column:phone"`
	Code      string    `gorm:"column:code;not null"`
	OTPType   string    `gorm:"column:otp_type;default:login"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	IsUsed    bool      `gorm:"column:is_used;default:false"`
	Attempts  int       `gorm:"column:attempts;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (OTP) TableName() string {
	return "otps"
}

func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
