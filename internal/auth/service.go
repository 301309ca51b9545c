package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Poorani-S/pettycash-backend/internal"
	auditDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/audit"
	otpDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/otp"
	userDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/user"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
)

// Three consecutive password failures trigger the admin alert and the
// suggestion to fall back to OTP login. Password failures never lock the
// account; only OTP abuse does.
const passwordFailureThreshold = 3

type UserRepository interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	RecordPasswordFailure(userID int64) (attempts int, err error)
	RecordOTPFailure(userID int64) error
	ResetFailureCounters(userID int64, loginAt time.Time) error
	SetOTPSentAt(userID int64, sentAt time.Time) error
	LockAccount(userID int64, until time.Time) error
}

type OTPRepository interface {
	InvalidateActive(userID int64, otpType string) error
	Create(record *otpDatamodel.OTP) error
	GetActive(userID int64, otpType string, now time.Time) (*otpDatamodel.OTP, error)
	IncrementAttempts(id int64) (attempts int, err error)
	MarkUsed(id int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Config struct {
	BCryptCost          int
	OTPCooldown         time.Duration
	OTPExpiry           time.Duration
	OTPMaxAttempts      int
	AccountLockDuration time.Duration
}

type Service struct {
	users  UserRepository
	otps   OTPRepository
	tokens TokenGeneratorAPI
	bus    EventPublisher
	cfg    Config
	logger *slog.Logger
}

func NewService(users UserRepository, otps OTPRepository, tokens TokenGeneratorAPI, bus EventPublisher, cfg Config, logger *slog.Logger) *Service {
	if cfg.BCryptCost == 0 {
		cfg.BCryptCost = bcrypt.DefaultCost
	}
	if cfg.OTPCooldown == 0 {
		cfg.OTPCooldown = time.Minute
	}
	if cfg.OTPExpiry == 0 {
		cfg.OTPExpiry = 10 * time.Minute
	}
	if cfg.OTPMaxAttempts == 0 {
		cfg.OTPMaxAttempts = 5
	}
	if cfg.AccountLockDuration == 0 {
		cfg.AccountLockDuration = 15 * time.Minute
	}
	return &Service{
		users:  users,
		otps:   otps,
		tokens: tokens,
		bus:    bus,
		cfg:    cfg,
		logger: logger,
	}
}

// AuthenticateWithPassword validates email+password credentials. A mismatch
// bumps the failure counter; crossing the threshold raises a best-effort
// admin alert and flags the response so the client can offer OTP login.
func (s *Service) AuthenticateWithPassword(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(dto.Email)
	if err != nil {
		return nil, internal.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, internal.ErrUserInactive
	}
	if user.IsLocked(time.Now()) {
		return nil, internal.ErrAccountLocked
	}
	if user.PasswordHash == nil {
		// Password login is optional; OTP-only accounts have no hash.
		return nil, internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(*user.PasswordHash, dto.Password); err != nil {
		attempts, recErr := s.users.RecordPasswordFailure(user.ID)
		if recErr != nil {
			s.logger.Error("failed to record password failure", "error", recErr, "user_id", user.ID)
		}

		s.publishLoginAttempt(ctx, user, auditDatamodel.LoginMethodPassword, false, "invalid password")

		if attempts >= passwordFailureThreshold {
			s.publish(ctx, events.NewFailedLoginAlertEvent(user.ID, user.Email, user.Name, attempts))
			return nil, internal.NewUnauthorizedError(
				fmt.Sprintf("Invalid credentials. You have exceeded %d failed attempts. Admin has been notified. You can try logging in with OTP instead.", passwordFailureThreshold),
				internal.ErrCodeInvalidCredentials,
			).WithDetails(map[string]interface{}{"failed_attempts": attempts, "suggest_otp": true})
		}

		return nil, internal.NewUnauthorizedError(
			fmt.Sprintf("Invalid credentials. %d attempt(s) remaining before admin notification.", passwordFailureThreshold-attempts),
			internal.ErrCodeInvalidCredentials,
		).WithDetails(map[string]interface{}{"failed_attempts": attempts})
	}

	if err := s.users.ResetFailureCounters(user.ID, time.Now()); err != nil {
		s.logger.Error("failed to reset failure counters", "error", err, "user_id", user.ID)
	}

	s.publishLoginAttempt(ctx, user, auditDatamodel.LoginMethodPassword, true, "")

	return s.issueTokens(user)
}

// RequestOTP issues a fresh login OTP, honoring the per-user cooldown window
// and invalidating any previously issued unused codes of the same type.
func (s *Service) RequestOTP(ctx context.Context, dto RequestOTPDTO) (maskedEmail string, expiresIn time.Duration, err error) {
	if err := dto.Validate(); err != nil {
		return "", 0, err
	}

	user, err := s.users.GetByEmail(dto.Email)
	if err != nil {
		return "", 0, internal.ErrUserNotFound
	}
	if !user.IsActive {
		return "", 0, internal.ErrUserInactive
	}
	if user.IsLocked(time.Now()) {
		return "", 0, internal.ErrAccountLocked
	}

	if user.LastOTPSentAt != nil {
		elapsed := time.Since(*user.LastOTPSentAt)
		if elapsed < s.cfg.OTPCooldown {
			remaining := int((s.cfg.OTPCooldown - elapsed).Seconds()) + 1
			return "", 0, internal.NewRateLimitedError(
				fmt.Sprintf("Please wait %d seconds before requesting another OTP", remaining),
				internal.ErrCodeOTPRateLimited,
			)
		}
	}

	code, err := generateOTPCode()
	if err != nil {
		return "", 0, internal.NewInternalError("failed to generate OTP", err)
	}

	if err := s.otps.InvalidateActive(user.ID, otpDatamodel.TypeLogin); err != nil {
		return "", 0, internal.NewInternalError("failed to invalidate previous OTPs", err)
	}

	record := &otpDatamodel.OTP{
		UserID:    user.ID,
		Email:     user.Email,
		Phone:     user.Phone,
		Code:      code,
		OTPType:   otpDatamodel.TypeLogin,
		ExpiresAt: time.Now().Add(s.cfg.OTPExpiry),
	}
	if err := s.otps.Create(record); err != nil {
		return "", 0, internal.NewInternalError("failed to persist OTP", err)
	}

	if err := s.users.SetOTPSentAt(user.ID, time.Now()); err != nil {
		s.logger.Error("failed to stamp OTP sent time", "error", err, "user_id", user.ID)
	}

	s.publish(ctx, events.NewOTPIssuedEvent(user.ID, user.Email, user.Name, code))

	s.logger.Info("otp issued", "user_id", user.ID)

	return maskEmail(user.Email), s.cfg.OTPExpiry, nil
}

// VerifyOTP checks a submitted code against the active OTP record. Every
// attempt bumps the record's counter before comparison; reaching the cap hard
// locks the account so a stolen, partially guessed code cannot be brute
// forced past the window.
func (s *Service) VerifyOTP(ctx context.Context, dto VerifyOTPDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(dto.Email)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	if user.IsLocked(time.Now()) {
		return nil, internal.ErrAccountLocked
	}

	record, err := s.otps.GetActive(user.ID, otpDatamodel.TypeLogin, time.Now())
	if err != nil || record == nil {
		return nil, internal.NewValidationError("OTP has expired or is invalid. Please request a new one.", internal.ErrCodeOTPExpired)
	}

	attempts, err := s.otps.IncrementAttempts(record.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to record OTP attempt", err)
	}

	if record.Code != dto.OTP {
		if attempts >= s.cfg.OTPMaxAttempts {
			if err := s.users.RecordOTPFailure(user.ID); err != nil {
				s.logger.Error("failed to record OTP failure", "error", err, "user_id", user.ID)
			}
			until := time.Now().Add(s.cfg.AccountLockDuration)
			if err := s.users.LockAccount(user.ID, until); err != nil {
				s.logger.Error("failed to lock account", "error", err, "user_id", user.ID)
			}
			s.publishLoginAttempt(ctx, user, auditDatamodel.LoginMethodOTP, false, "too many OTP attempts")
			return nil, internal.NewLockedError(
				fmt.Sprintf("Too many failed attempts. Account locked for %d minutes.", int(s.cfg.AccountLockDuration.Minutes())),
				internal.ErrCodeAccountLocked,
			)
		}

		if err := s.users.RecordOTPFailure(user.ID); err != nil {
			s.logger.Error("failed to record OTP failure", "error", err, "user_id", user.ID)
		}
		s.publishLoginAttempt(ctx, user, auditDatamodel.LoginMethodOTP, false, "invalid OTP")
		return nil, internal.NewUnauthorizedError(
			fmt.Sprintf("Invalid OTP. %d attempts remaining.", s.cfg.OTPMaxAttempts-attempts),
			internal.ErrCodeInvalidOTP,
		)
	}

	// Correct code after the lock threshold still counts as abuse.
	if attempts > s.cfg.OTPMaxAttempts {
		return nil, internal.ErrAccountLocked
	}

	if err := s.otps.MarkUsed(record.ID); err != nil {
		return nil, internal.NewInternalError("failed to consume OTP", err)
	}

	if err := s.users.ResetFailureCounters(user.ID, time.Now()); err != nil {
		s.logger.Error("failed to reset failure counters", "error", err, "user_id", user.ID)
	}

	s.publishLoginAttempt(ctx, user, auditDatamodel.LoginMethodOTP, true, "")

	return s.issueTokens(user)
}

// RefreshTokens validates a refresh token and returns a new pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	accessToken, err := s.tokens.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	newRefreshToken, err := s.tokens.GenerateRefreshToken(claims.UserID, claims.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// GetPrincipal loads the acting user and applies role normalization. The
// normalized role lives only on the returned principal.
func (s *Service) GetPrincipal(userID int64) (*Principal, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, internal.ErrUserInactive
	}
	return &Principal{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          userDatamodel.NormalizeRole(user.Role),
		Department:    user.Department,
		ApprovalLimit: user.ApprovalLimit,
	}, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.cfg.BCryptCost)
}

func (s *Service) issueTokens(user *userDatamodel.User) (*LoginResult, error) {
	uid := strconv.FormatInt(user.ID, 10)

	accessToken, err := s.tokens.GenerateAccessToken(uid, user.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate access token", err)
	}
	refreshToken, err := s.tokens.GenerateRefreshToken(uid, user.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate refresh token", err)
	}

	return &LoginResult{
		Tokens: AuthTokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
		Principal: &Principal{
			ID:            user.ID,
			Email:         user.Email,
			Name:          user.Name,
			Role:          userDatamodel.NormalizeRole(user.Role),
			Department:    user.Department,
			ApprovalLimit: user.ApprovalLimit,
		},
	}, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish auth event", "error", err, "event_type", event.EventType())
	}
}

func (s *Service) publishLoginAttempt(ctx context.Context, user *userDatamodel.User, method string, success bool, reason string) {
	s.publish(ctx, events.NewLoginAttemptEvent(
		user.ID, user.Email, user.Name, userDatamodel.NormalizeRole(user.Role), method, success, reason))
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

var emailMaskPattern = regexp.MustCompile(`(.{2})(.*)(@.*)`)

func maskEmail(email string) string {
	return emailMaskPattern.ReplaceAllString(email, "$1***$3")
}
