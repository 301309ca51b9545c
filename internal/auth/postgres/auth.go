package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/Poorani-S/pettycash-backend/internal"
	otpDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/otp"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
)

// UserRepository implements auth.UserRepository using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// RecordPasswordFailure bumps the failure counter in place and returns the
// new count. The increment runs server-side so concurrent failures cannot
// lose updates.
func (r *UserRepository) RecordPasswordFailure(userID int64) (int, error) {
	var attempts int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"failed_password_attempts": gorm.Expr("failed_password_attempts + 1"),
				"updated_at":               time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return internal.ErrUserNotFound
		}
		return tx.Model(&userDatamodel.User{}).
			Where("id = ?", userID).
			Pluck("failed_password_attempts", &attempts).Error
	})
	return attempts, err
}

func (r *UserRepository) RecordOTPFailure(userID int64) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"failed_otp_attempts": gorm.Expr("failed_otp_attempts + 1"),
			"updated_at":          time.Now(),
		}).Error
}

// ResetFailureCounters clears both failure counters and any lock, and stamps
// the successful login time.
func (r *UserRepository) ResetFailureCounters(userID int64, loginAt time.Time) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"failed_password_attempts": 0,
			"failed_otp_attempts":      0,
			"account_locked_until":     nil,
			"last_login":               loginAt,
			"updated_at":               time.Now(),
		}).Error
}

func (r *UserRepository) SetOTPSentAt(userID int64, sentAt time.Time) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_otp_sent_at": sentAt,
			"updated_at":       time.Now(),
		}).Error
}

func (r *UserRepository) LockAccount(userID int64, until time.Time) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"account_locked_until": until,
			"updated_at":           time.Now(),
		}).Error
}

// OTPRepository implements auth.OTPRepository using GORM.
type OTPRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// InvalidateActive marks all unused codes of the given type as consumed so
// only the most recently issued code can succeed.
func (r *OTPRepository) InvalidateActive(userID int64, otpType string) error {
	return r.db.Model(&otpDatamodel.OTP{}).
		Where("user_id = ? AND otp_type = ? AND is_used = ?", userID, otpType, false).
		Update("is_used", true).Error
}

func (r *OTPRepository) Create(record *otpDatamodel.OTP) error {
	return r.db.Create(record).Error
}

func (r *OTPRepository) GetActive(userID int64, otpType string, now time.Time) (*otpDatamodel.OTP, error) {
	var record otpDatamodel.OTP
	err := r.db.Where("user_id = ? AND otp_type = ? AND is_used = ? AND expires_at > ?",
		userID, otpType, false, now).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// IncrementAttempts bumps the attempt counter on the OTP row and returns the
// new value. Counting happens before code comparison so a guessing client
// burns attempts even on malformed submissions.
func (r *OTPRepository) IncrementAttempts(id int64) (int, error) {
	var attempts int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&otpDatamodel.OTP{}).
			Where("id = ?", id).
			Update("attempts", gorm.Expr("attempts + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&otpDatamodel.OTP{}).
			Where("id = ?", id).
			Pluck("attempts", &attempts).Error
	})
	return attempts, err
}

func (r *OTPRepository) MarkUsed(id int64) error {
	return r.db.Model(&otpDatamodel.OTP{}).
		Where("id = ?", id).
		Update("is_used", true).Error
}
