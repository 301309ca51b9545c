package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTransactionCreated  = "transaction.created"
	EventTypeTransactionApproved = "transaction.approved"
	EventTypeTransactionRejected = "transaction.rejected"
	EventTypeTransactionPaid     = "transaction.paid"
	EventTypeTransactionDeleted  = "transaction.deleted"
	EventTypeFundsTransferred    = "funds.transferred"
	EventTypeLoginAttempt        = "auth.login_attempt"
	EventTypeFailedLoginAlert    = "auth.failed_login_alert"
	EventTypeOTPIssued           = "auth.otp_issued"
	EventTypeUserChanged         = "user.changed"
)

type TransactionEvent struct {
	BaseEvent
	TransactionID     int64  `json:"transaction_id"`
	TransactionNumber string `json:"transaction_number"`
	Amount            string `json:"amount"`
	ActorID           int64  `json:"actor_id"`
	Comment           string `json:"comment,omitempty"`
}

func NewTransactionEvent(eventType string, transactionID int64, transactionNumber, amount string, actorID int64, comment string) *TransactionEvent {
	return &TransactionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transaction_id":     transactionID,
				"transaction_number": transactionNumber,
				"amount":             amount,
				"actor_id":           actorID,
				"comment":            comment,
			},
		},
		TransactionID:     transactionID,
		TransactionNumber: transactionNumber,
		Amount:            amount,
		ActorID:           actorID,
		Comment:           comment,
	}
}

type FundsTransferredEvent struct {
	BaseEvent
	TransferID   int64  `json:"transfer_id"`
	TransferType string `json:"transfer_type"`
	Amount       string `json:"amount"`
	InitiatedBy  int64  `json:"initiated_by"`
}

func NewFundsTransferredEvent(transferID int64, transferType, amount string, initiatedBy int64) *FundsTransferredEvent {
	return &FundsTransferredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeFundsTransferred,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"transfer_id":   transferID,
				"transfer_type": transferType,
				"amount":        amount,
				"initiated_by":  initiatedBy,
			},
		},
		TransferID:   transferID,
		TransferType: transferType,
		Amount:       amount,
		InitiatedBy:  initiatedBy,
	}
}

type LoginAttemptEvent struct {
	BaseEvent
	UserID        int64  `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	LoginMethod   string `json:"login_method"`
	Success       bool   `json:"success"`
	FailureReason string `json:"failure_reason,omitempty"`
}

func NewLoginAttemptEvent(userID int64, email, name, role, loginMethod string, success bool, failureReason string) *LoginAttemptEvent {
	return &LoginAttemptEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginAttempt,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":        userID,
				"email":          email,
				"login_method":   loginMethod,
				"success":        success,
				"failure_reason": failureReason,
			},
		},
		UserID:        userID,
		Email:         email,
		Name:          name,
		Role:          role,
		LoginMethod:   loginMethod,
		Success:       success,
		FailureReason: failureReason,
	}
}

type FailedLoginAlertEvent struct {
	BaseEvent
	UserID         int64  `json:"user_id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	FailedAttempts int    `json:"failed_attempts"`
}

func NewFailedLoginAlertEvent(userID int64, email, name string, failedAttempts int) *FailedLoginAlertEvent {
	return &FailedLoginAlertEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeFailedLoginAlert,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":         userID,
				"email":           email,
				"failed_attempts": failedAttempts,
			},
		},
		UserID:         userID,
		Email:          email,
		Name:           name,
		FailedAttempts: failedAttempts,
	}
}

type OTPIssuedEvent struct {
	BaseEvent
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Code        string `json:"-"`
	DisplayName string `json:"display_name"`
}

func NewOTPIssuedEvent(userID int64, email, name, code string) *OTPIssuedEvent {
	return &OTPIssuedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeOTPIssued,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
			},
		},
		UserID:      userID,
		Email:       email,
		Name:        name,
		Code:        code,
		DisplayName: name,
	}
}

type UserChangedEvent struct {
	BaseEvent
	Action          string `json:"action"`
	TargetUserID    int64  `json:"target_user_id"`
	TargetUserName  string `json:"target_user_name"`
	TargetUserEmail string `json:"target_user_email"`
	PerformedBy     int64  `json:"performed_by"`
	PerformedByName string `json:"performed_by_name"`
	Changes         []string `json:"changes,omitempty"`
}

func NewUserChangedEvent(action string, targetUserID int64, targetUserName, targetUserEmail string, performedBy int64, performedByName string, changes []string) *UserChangedEvent {
	return &UserChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"action":         action,
				"target_user_id": targetUserID,
				"performed_by":   performedBy,
				"changes":        changes,
			},
		},
		Action:          action,
		TargetUserID:    targetUserID,
		TargetUserName:  targetUserName,
		TargetUserEmail: targetUserEmail,
		PerformedBy:     performedBy,
		PerformedByName: performedByName,
		Changes:         changes,
	}
}
