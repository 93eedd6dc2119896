package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodWallet         PaymentMethod = "wallet"
	PaymentMethodCash           PaymentMethod = "cash_payment"
	PaymentMethodManualOverride PaymentMethod = "manual_override"
	PaymentMethodGovExemption   PaymentMethod = "governmental_exemption"
)

type PassageStatus string

const (
	PassageStatusSuccessful PassageStatus = "successful"
	PassageStatusRejected   PassageStatus = "rejected"
)

// TollPassage is the audit record of one scan event, accepted or rejected.
// Written exactly once per event and never mutated; corrections go through
// new ledger entries.
type TollPassage struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	ScannedAt  time.Time `gorm:"index;not null"`
	AccountID  *uint     `gorm:"index"` // nil when the tag is unregistered
	VehicleID  *uint     `gorm:"index"`
	TollGateID uint      `gorm:"index;not null"`
	// Tag exactly as reported by the scanner, kept even for unknown tags.
	RFIDTag         string   `gorm:"column:rfid_tag;type:varchar(64)"`
	WeightKg        *float64 // nil when the weight sensor sent no reading
	IsOverweight    bool
	TollAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FineAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30)"` // empty for unpaid rejections
	Status          PassageStatus   `gorm:"type:varchar(15);index;not null"`
	RejectionReason string          `gorm:"type:varchar(255)"`
	// Scan event idempotency token; replays of the same token return the
	// recorded outcome instead of processing the passage again.
	Reference string `gorm:"type:varchar(64);uniqueIndex;not null"`
}
