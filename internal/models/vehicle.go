package models

import "time"

type VehicleCategory string

const (
	VehicleCategoryCar        VehicleCategory = "car"
	VehicleCategoryBus        VehicleCategory = "bus"
	VehicleCategoryTruck      VehicleCategory = "truck"
	VehicleCategoryMotorcycle VehicleCategory = "motorcycle"
	VehicleCategoryEmergency  VehicleCategory = "emergency"
	VehicleCategoryGovernment VehicleCategory = "government"
)

type Vehicle struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	AccountID uint `gorm:"index;not null"`
	// Nil until a tag is physically attached. The unique index keeps a tag
	// bound to at most one vehicle; reassignment clears the old binding first.
	RFIDTag       *string         `gorm:"column:rfid_tag;type:varchar(64);uniqueIndex"`
	PlateNumber   string          `gorm:"type:varchar(20);not null"`
	Category      VehicleCategory `gorm:"type:varchar(20);not null;default:'car'"`
	CapacityClass string          `gorm:"type:varchar(20)"`
	IsActive      bool            `gorm:"default:true"`
}
