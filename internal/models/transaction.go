package models

import "time"

// TransactionType classifies a ledger entry.
type TransactionType string

// TransactionType values.
const (
	TransactionTypeWin           TransactionType = "win"
	TransactionTypeLoss          TransactionType = "loss"
	TransactionTypeLuckySpin     TransactionType = "lucky_spin"
	TransactionTypeVIPActivation TransactionType = "vip_activation"
	TransactionTypeWithdrawal    TransactionType = "withdrawal"
	TransactionTypeFee           TransactionType = "fee"
)

// TransactionStatus is the processing state of a ledger entry.
type TransactionStatus string

// TransactionStatus values. Only withdrawals ever leave pending.
const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an append-only balance ledger entry. Amount is signed: credits are positive.
type Transaction struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"` // Primary key.

	UserID uint64            `gorm:"not null;index" json:"userId"` // Owner.
	Type   TransactionType   `gorm:"type:text;not null;index" json:"type"`
	Amount int64             `gorm:"not null" json:"amount"`
	Status TransactionStatus `gorm:"type:text;not null;default:'completed'" json:"status"`

	Details string `gorm:"type:text" json:"details"`

	BankName      *string `gorm:"type:text" json:"bankName,omitempty"`      // Withdrawals only.
	AccountNumber *string `gorm:"type:text" json:"accountNumber,omitempty"` // Withdrawals only.
	AccountName   *string `gorm:"type:text" json:"accountName,omitempty"`   // Withdrawals only.

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"` // Last status change.
}
