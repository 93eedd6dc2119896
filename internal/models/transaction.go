package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Transaction is an append-only ledger entry. Amount is signed (debits
// negative) and Reference is the idempotency key: hardware retries of the
// same settlement collide on the unique index instead of double-charging.
type Transaction struct {
	ID            uint            `gorm:"primarykey"`
	CreatedAt     time.Time       `gorm:"precision:3"` // Millisecond precision
	AccountID     uint            `gorm:"index;not null"`
	Type          TransactionType `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description   string          `gorm:"type:text"`
	Reference     string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	Metadata      datatypes.JSON
	Operator      string `gorm:"type:varchar(100)"` // Username or 'system'
	Hash          string `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// GenerateHash generates a tamper-proof hash for the transaction
func (t *Transaction) GenerateHash(secret string) string {
	data := fmt.Sprintf("%d|%d|%s|%s|%s|%s|%s|%s",
		t.AccountID, t.CreatedAt.UnixNano(), t.Amount.String(),
		t.BalanceBefore.String(), t.BalanceAfter.String(),
		t.Description, t.Reference, t.Type)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
