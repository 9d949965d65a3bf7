package settings

import "time"

// DB config keys for runtime overrides of reward settings.
const (
	// VIPActivationCodeKey overrides the VIP activation code.
	VIPActivationCodeKey = "VIP_ACTIVATION_CODE"
	// WithdrawalActivationCodeKey overrides the withdrawal activation code.
	WithdrawalActivationCodeKey = "WITHDRAWAL_ACTIVATION_CODE"
	// VIPFeeKey overrides the VIP activation fee.
	VIPFeeKey = "VIP_FEE"
	// WithdrawalMinimumKey overrides the minimum balance required to withdraw.
	WithdrawalMinimumKey = "WITHDRAWAL_MINIMUM"
	// WithdrawalFeeKey overrides the fee charged per withdrawal.
	WithdrawalFeeKey = "WITHDRAWAL_FEE"
	// DefaultRefreshInterval is how often the snapshot is reloaded from the database.
	DefaultRefreshInterval = 30 * time.Second
)

// knownKeys lists the keys the admin API accepts.
var knownKeys = map[string]struct{}{
	VIPActivationCodeKey:        {},
	WithdrawalActivationCodeKey: {},
	VIPFeeKey:                   {},
	WithdrawalMinimumKey:        {},
	WithdrawalFeeKey:            {},
}

// IsKnownKey reports whether key is a supported runtime override.
func IsKnownKey(key string) bool {
	_, ok := knownKeys[key]
	return ok
}
