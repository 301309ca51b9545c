package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	auditDatamodel "github.com/Poorani-S/pettycash-backend/internal/core/datamodel/audit"
	"github.com/Poorani-S/pettycash-backend/internal/core/events"
)

type Repository interface {
	CreateAuditLog(log *auditDatamodel.AuditLog) error
	CreateLoginActivity(activity *auditDatamodel.LoginActivity) error
	CreateUserActivityLog(log *auditDatamodel.UserActivityLog) error
	ListAuditLogs(filters ListFilters) ([]*auditDatamodel.AuditLog, error)
	ListLoginActivity(filters LoginActivityFilters) ([]*auditDatamodel.LoginActivity, error)
	ListUserActivity(filters UserActivityFilters) ([]*auditDatamodel.UserActivityLog, error)
}

// ListFilters narrow audit log queries.
type ListFilters struct {
	Action      string
	PerformedBy int64
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

type LoginActivityFilters struct {
	UserID int64
	Status string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type UserActivityFilters struct {
	TargetUserID int64
	Limit        int
	Offset       int
}

// Recorder subscribes to domain events and materializes them into audit
// tables. It observes only: failures are logged and never surface back to
// the operation that emitted the event.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Register wires the recorder onto the event bus.
func (r *Recorder) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeTransactionCreated, r.handleTransactionEvent(auditDatamodel.ActionCreateTransaction))
	bus.Subscribe(events.EventTypeTransactionApproved, r.handleTransactionEvent(auditDatamodel.ActionApproveTransaction))
	bus.Subscribe(events.EventTypeTransactionRejected, r.handleTransactionEvent(auditDatamodel.ActionRejectTransaction))
	bus.Subscribe(events.EventTypeTransactionPaid, r.handleTransactionEvent(auditDatamodel.ActionUpdateTransaction))
	bus.Subscribe(events.EventTypeTransactionDeleted, r.handleTransactionEvent(auditDatamodel.ActionDeleteTransaction))
	bus.Subscribe(events.EventTypeFundsTransferred, r.handleFundsTransferred)
	bus.Subscribe(events.EventTypeLoginAttempt, r.handleLoginAttempt)
	bus.Subscribe(events.EventTypeUserChanged, r.handleUserChanged)
}

func (r *Recorder) handleTransactionEvent(action string) events.Handler {
	return func(ctx context.Context, event events.Event) error {
		e, ok := event.(*events.TransactionEvent)
		if !ok {
			return nil
		}

		changes, _ := json.Marshal(map[string]interface{}{
			"transaction_number": e.TransactionNumber,
			"amount":             e.Amount,
			"comment":            e.Comment,
		})

		return r.repo.CreateAuditLog(&auditDatamodel.AuditLog{
			Action:       action,
			PerformedBy:  e.ActorID,
			TargetEntity: "transaction",
			TargetID:     e.TransactionID,
			Changes:      changes,
		})
	}
}

func (r *Recorder) handleFundsTransferred(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.FundsTransferredEvent)
	if !ok {
		return nil
	}

	changes, _ := json.Marshal(map[string]interface{}{
		"transfer_type": e.TransferType,
		"amount":        e.Amount,
	})

	return r.repo.CreateAuditLog(&auditDatamodel.AuditLog{
		Action:       "CREATE_FUND_TRANSFER",
		PerformedBy:  e.InitiatedBy,
		TargetEntity: "fund_transfer",
		TargetID:     e.TransferID,
		Changes:      changes,
	})
}

func (r *Recorder) handleLoginAttempt(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LoginAttemptEvent)
	if !ok {
		return nil
	}

	status := auditDatamodel.LoginStatusSuccess
	var reason *string
	if !e.Success {
		status = auditDatamodel.LoginStatusFailed
		if e.FailureReason != "" {
			fr := e.FailureReason
			reason = &fr
		}
	}

	return r.repo.CreateLoginActivity(&auditDatamodel.LoginActivity{
		UserID:        e.UserID,
		Email:         e.Email,
		Name:          e.Name,
		Role:          e.Role,
		LoginMethod:   e.LoginMethod,
		LoginStatus:   status,
		FailureReason: reason,
	})
}

func (r *Recorder) handleUserChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.UserChangedEvent)
	if !ok {
		return nil
	}

	details, _ := json.Marshal(map[string]interface{}{"changes": e.Changes})

	return r.repo.CreateUserActivityLog(&auditDatamodel.UserActivityLog{
		Action:          e.Action,
		TargetUserID:    e.TargetUserID,
		TargetUserName:  e.TargetUserName,
		TargetUserEmail: e.TargetUserEmail,
		PerformedBy:     e.PerformedBy,
		PerformedByName: e.PerformedByName,
		Details:         details,
	})
}
