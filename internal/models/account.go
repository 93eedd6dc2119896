package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountRole string

const (
	RoleDriver AccountRole = "driver"
	RoleStaff  AccountRole = "staff"
	RoleAdmin  AccountRole = "admin"
)

// Account is the wallet owner. Balance is mutated only by ledger operations;
// accounts referenced by passages are soft-deleted, never removed.
type Account struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	Username  string         `gorm:"uniqueIndex;not null"`
	Password  string         `gorm:"not null"`
	Role      AccountRole    `gorm:"type:varchar(20);not null;default:'driver'"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// Derived from the license classification at registration time. Vehicles
	// in the government category are exempt regardless of this flag.
	GovernmentExempt bool `gorm:"default:false"`
	IsActive         bool `gorm:"default:true"`
	Version          int  `gorm:"default:1"`
}
