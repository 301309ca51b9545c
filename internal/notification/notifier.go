package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Poorani-S/pettycash-backend/internal/core/events"
)

// AdminDirectory resolves the recipients for operational alerts.
type AdminDirectory interface {
	ActiveAdminEmails() ([]string, error)
}

// Enqueuer is the delivery side of the notifier, satisfied by Mailer.
type Enqueuer interface {
	Enqueue(job EmailJob)
}

// Notifier turns domain events into outbound email. OTP codes are only ever
// sent to the account owner; repeated login failures alert every active
// administrator.
type Notifier struct {
	mailer Enqueuer
	admins AdminDirectory
	logger *slog.Logger
}

func NewNotifier(mailer Enqueuer, admins AdminDirectory, logger *slog.Logger) *Notifier {
	return &Notifier{
		mailer: mailer,
		admins: admins,
		logger: logger,
	}
}

// Register wires the notifier onto the event bus.
func (n *Notifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeOTPIssued, n.handleOTPIssued)
	bus.Subscribe(events.EventTypeFailedLoginAlert, n.handleFailedLoginAlert)
}

func (n *Notifier) handleOTPIssued(ctx context.Context, event events.Event) error {
	otpEvent, ok := event.(*events.OTPIssuedEvent)
	if !ok {
		n.logger.Warn("unexpected event payload for otp notification", "event_type", event.EventType())
		return nil
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nYour one-time login code is: %s\n\nThe code expires in 10 minutes. If you did not request it, please contact your administrator.",
		otpEvent.DisplayName, otpEvent.Code)

	n.mailer.Enqueue(EmailJob{
		To:      []string{otpEvent.Email},
		Subject: "Your one-time login code",
		Body:    body,
	})
	return nil
}

func (n *Notifier) handleFailedLoginAlert(ctx context.Context, event events.Event) error {
	alertEvent, ok := event.(*events.FailedLoginAlertEvent)
	if !ok {
		n.logger.Warn("unexpected event payload for failed login alert", "event_type", event.EventType())
		return nil
	}

	recipients, err := n.admins.ActiveAdminEmails()
	if err != nil {
		n.logger.Error("failed to resolve admin recipients", "error", err)
		return err
	}
	if len(recipients) == 0 {
		n.logger.Warn("no active admins to alert about failed logins", "user_id", alertEvent.UserID)
		return nil
	}

	body := fmt.Sprintf(
		"Repeated failed password attempts detected.\n\nUser: %s (%s)\nConsecutive failures: %d\n\nThe user has been prompted to sign in with a one-time code instead.",
		alertEvent.Name, alertEvent.Email, alertEvent.FailedAttempts)

	n.mailer.Enqueue(EmailJob{
		To:      recipients,
		Subject: fmt.Sprintf("Security alert: failed login attempts for %s", alertEvent.Email),
		Body:    body,
	})
	return nil
}
