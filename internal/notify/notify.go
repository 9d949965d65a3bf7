// Package notify tells the reviewer channel about registrations, VIP payment claims and withdrawals.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/util"
	log "github.com/sirupsen/logrus"
)

// Notifier delivers reviewer notifications. Implementations never fail the caller:
// delivery problems are logged.
type Notifier interface {
	UserRegistered(ctx context.Context, user *models.User)
	VIPPaymentClaimed(ctx context.Context, user *models.User)
	WithdrawalRequested(ctx context.Context, user *models.User, withdrawal *models.Transaction)
}

// Kinds label notifications in logs and metrics.
const (
	KindUserRegistered      = "user_registered"
	KindVIPPaymentClaimed   = "vip_payment_claimed"
	KindWithdrawalRequested = "withdrawal_requested"
)

// Message is one rendered notification.
type Message struct {
	Kind string
	Text string
}

func userRegisteredMessage(user *models.User) Message {
	return Message{
		Kind: KindUserRegistered,
		Text: fmt.Sprintf("New player registered\nUsername: %s\nEmail: %s\nUser ID: %d", user.Username, user.Email, user.ID),
	}
}

func vipPaymentMessage(user *models.User) Message {
	return Message{
		Kind: KindVIPPaymentClaimed,
		Text: fmt.Sprintf("VIP payment claimed, verification needed\nUsername: %s\nEmail: %s\nUser ID: %d", user.Username, user.Email, user.ID),
	}
}

func withdrawalMessage(user *models.User, withdrawal *models.Transaction) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Withdrawal request #%d\n", withdrawal.ID)
	fmt.Fprintf(&b, "Username: %s\nEmail: %s\n", user.Username, user.Email)
	amount := withdrawal.Amount
	if amount < 0 {
		amount = -amount
	}
	fmt.Fprintf(&b, "Amount: %s\n", rules.FormatAmount(amount))
	fmt.Fprintf(&b, "Bank: %s\n", deref(withdrawal.BankName))
	fmt.Fprintf(&b, "Account: %s (%s)", deref(withdrawal.AccountName), util.MaskAccountNumber(deref(withdrawal.AccountNumber)))
	return Message{Kind: KindWithdrawalRequested, Text: b.String()}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// LogNotifier writes notifications to the log. It is used when no chat is configured.
type LogNotifier struct{}

// UserRegistered logs a registration.
func (LogNotifier) UserRegistered(ctx context.Context, user *models.User) {
	logMessage(userRegisteredMessage(user))
}

// VIPPaymentClaimed logs a VIP payment claim.
func (LogNotifier) VIPPaymentClaimed(ctx context.Context, user *models.User) {
	logMessage(vipPaymentMessage(user))
}

// WithdrawalRequested logs a withdrawal request.
func (LogNotifier) WithdrawalRequested(ctx context.Context, user *models.User, withdrawal *models.Transaction) {
	logMessage(withdrawalMessage(user, withdrawal))
}

func logMessage(msg Message) {
	log.WithField("kind", msg.Kind).Info(msg.Text)
}
