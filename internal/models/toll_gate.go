package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeviceStatus string

const (
	DeviceStatusOperational DeviceStatus = "operational"
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusError       DeviceStatus = "error"
)

type TollGate struct {
	ID                 uint `gorm:"primarykey"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Name               string          `gorm:"type:varchar(100);not null"`
	Location           string          `gorm:"type:varchar(255)"`
	BaseTollRate       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OverweightFineRate decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	WeightLimitKg      float64         `gorm:"not null"`
	GateStatus         DeviceStatus    `gorm:"type:varchar(20);not null;default:'operational'"`
	RFIDScannerStatus  DeviceStatus    `gorm:"column:rfid_scanner_status;type:varchar(20);not null;default:'operational'"`
	WeightSensorStatus DeviceStatus    `gorm:"type:varchar(20);not null;default:'operational'"`
	IsActive           bool            `gorm:"default:true"`
	LastHeartbeatAt    *time.Time
}

// CanAuthorize reports whether the gate may process passages. A broken
// weight sensor does not block passage, it only disables overweight fines.
func (g *TollGate) CanAuthorize() bool {
	return g.IsActive &&
		g.GateStatus == DeviceStatusOperational &&
		g.RFIDScannerStatus == DeviceStatusOperational
}
