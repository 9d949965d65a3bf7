package wallet

import (
	"context"
	"strings"

	"github.com/matchday-bet/matchday/internal/events"
	"github.com/matchday-bet/matchday/internal/metrics"
	"github.com/matchday-bet/matchday/internal/models"
	"github.com/matchday-bet/matchday/internal/rules"
	"github.com/matchday-bet/matchday/internal/security"
	"github.com/matchday-bet/matchday/internal/store"
	"github.com/matchday-bet/matchday/internal/util"
)

// WithdrawalSubmittedMessage is returned with an accepted withdrawal.
const WithdrawalSubmittedMessage = "Withdrawal request submitted successfully"

// WithdrawalInput is a withdrawal request.
type WithdrawalInput struct {
	AccountNumber string
	BankName      string
	AccountName   string
	Amount        int64
	ActivationKey string
}

func (in *WithdrawalInput) normalize() error {
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.BankName = strings.TrimSpace(in.BankName)
	in.AccountName = strings.TrimSpace(in.AccountName)
	if in.AccountNumber == "" || in.BankName == "" || in.AccountName == "" || in.ActivationKey == "" || in.Amount == 0 {
		return rules.ErrMissingWithdrawInfo
	}
	if in.Amount < 0 {
		return rules.ErrInvalidAmount
	}
	return nil
}

// WithdrawalResult is an accepted withdrawal.
type WithdrawalResult struct {
	User        *models.User
	Transaction *models.Transaction
}

// RequestWithdrawal debits amount plus the fee and records a pending withdrawal for
// the reviewer. The withdrawal, the fee and the feed entry commit together.
func (s *Service) RequestWithdrawal(ctx context.Context, userID uint64, in WithdrawalInput) (*WithdrawalResult, error) {
	if errInput := in.normalize(); errInput != nil {
		return nil, errInput
	}
	if !security.TokenEqual(s.withdrawalCode(), in.ActivationKey) {
		return nil, rules.ErrInvalidWithdrawKey
	}

	minimum := s.withdrawalMinimum()
	fee := s.withdrawalFee()
	var result WithdrawalResult
	errTx := s.store.WithUser(ctx, userID, func(tx store.Tx, user *models.User) error {
		if user.Balance < minimum {
			return rules.WithdrawalMinimumViolation(minimum)
		}
		// amount + fee <= balance, written so a huge amount cannot wrap.
		if in.Amount > user.Balance-fee {
			return rules.WithdrawalFundsViolation(fee)
		}

		withdrawal := &models.Transaction{
			Type:          models.TransactionTypeWithdrawal,
			Amount:        -in.Amount,
			Status:        models.TransactionStatusPending,
			Details:       "Withdrawal request",
			BankName:      &in.BankName,
			AccountNumber: &in.AccountNumber,
			AccountName:   &in.AccountName,
		}
		if errPost := tx.Post(withdrawal); errPost != nil {
			return errPost
		}
		if errPost := tx.Post(&models.Transaction{
			Type:    models.TransactionTypeFee,
			Amount:  -fee,
			Status:  models.TransactionStatusCompleted,
			Details: "Account Box Breaking Fee",
		}); errPost != nil {
			return errPost
		}
		if errFeed := tx.AppendVirtualTransaction(&models.VirtualTransaction{
			Username: user.Username,
			Type:     string(models.TransactionTypeWithdrawal),
			Amount:   in.Amount,
		}); errFeed != nil {
			return errFeed
		}
		result = WithdrawalResult{User: user, Transaction: withdrawal}
		return nil
	})
	if errTx != nil {
		return nil, errTx
	}

	metrics.WithdrawalsRequested.Inc()
	metrics.ObserveLedger(string(models.TransactionTypeWithdrawal), in.Amount)
	metrics.ObserveLedger(string(models.TransactionTypeFee), fee)
	s.notifier.WithdrawalRequested(ctx, result.User, result.Transaction)
	events.Emit(ctx, s.publisher, events.New(events.TypeWithdrawalRequested, userID, map[string]any{
		"transactionId": result.Transaction.ID,
		"amount":        in.Amount,
		"fee":           fee,
		"bankName":      in.BankName,
		"accountNumber": util.MaskAccountNumber(in.AccountNumber),
	}))
	return &result, nil
}
