package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Violation is a rejected request that maps to a 400 response. Nothing was mutated.
type Violation struct {
	Message string
}

func (v *Violation) Error() string { return v.Message }

// Violationf formats a new Violation.
func Violationf(format string, args ...any) *Violation {
	return &Violation{Message: fmt.Sprintf(format, args...)}
}

// IsViolation reports whether err wraps a *Violation and returns it.
func IsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Shared violations.
var (
	ErrAlreadySpun         = &Violation{Message: "You've already used your free spin today"}
	ErrDuplicateBet        = &Violation{Message: "You already have a bet for this match"}
	ErrAlreadyVIP          = &Violation{Message: "You are already a VIP member"}
	ErrInvalidVIPKey       = &Violation{Message: "Invalid activation key"}
	ErrInvalidWithdrawKey  = &Violation{Message: "Invalid withdrawal activation key"}
	ErrMissingActivation   = &Violation{Message: "Activation key is required"}
	ErrMissingBetFields    = &Violation{Message: "Match ID, prediction, and odds are required"}
	ErrInvalidPrediction   = &Violation{Message: "Prediction must be one of home, draw or away"}
	ErrInvalidOdds         = &Violation{Message: "Odds must be greater than zero"}
	ErrMissingWithdrawInfo = &Violation{Message: "All fields are required"}
	ErrInvalidAmount       = &Violation{Message: "Amount must be greater than zero"}
)

// BetLimitViolation names the tier limit and suggests VIP to regular users.
func BetLimitViolation(isVIP bool, limit int) *Violation {
	if isVIP {
		return Violationf("VIP members can only bet on up to %d matches at a time", limit)
	}
	return Violationf("Free users can only bet on up to %d matches at a time. Upgrade to VIP for more!", limit)
}

// InsufficientBalanceViolation reports the balance needed to activate VIP.
func InsufficientBalanceViolation(required int64) *Violation {
	return Violationf("Insufficient balance. You need %s to activate VIP", FormatAmount(required))
}

// WithdrawalMinimumViolation reports the minimum balance required to withdraw.
func WithdrawalMinimumViolation(minimum int64) *Violation {
	return Violationf("You need at least %s to request a withdrawal", FormatAmount(minimum))
}

// WithdrawalFundsViolation reports that amount plus fee exceeds the balance.
func WithdrawalFundsViolation(fee int64) *Violation {
	return Violationf("Insufficient balance for withdrawal plus %s Account Box Breaking Fee", FormatAmount(fee))
}

// FormatAmount renders a currency amount with thousands separators, e.g. ₦30,000.
func FormatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "₦" + b.String()
}
