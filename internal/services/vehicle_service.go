package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
)

var (
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrRFIDNotFound    = errors.New("rfid tag not registered or vehicle inactive")
	ErrRFIDTagInUse    = errors.New("rfid tag is already assigned to another vehicle")
)

const vehicleCacheTTL = 5 * time.Minute

type RegisterVehicleRequest struct {
	AccountID     uint
	PlateNumber   string
	Category      models.VehicleCategory
	CapacityClass string
}

func RegisterVehicle(req RegisterVehicleRequest) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		AccountID:     req.AccountID,
		PlateNumber:   req.PlateNumber,
		Category:      req.Category,
		CapacityClass: req.CapacityClass,
		IsActive:      true,
	}
	if err := database.DB.Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// AssignRFIDTag binds a physical tag to a vehicle. The tag may be held by at
// most one vehicle; the check and the write run in one transaction, with the
// unique index as the backstop against a concurrent assignment.
func AssignRFIDTag(vehicleID uint, tag string) (*models.Vehicle, error) {
	var vehicle models.Vehicle

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&vehicle, vehicleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return err
		}

		var holder models.Vehicle
		err := tx.Where("rfid_tag = ? AND id <> ?", tag, vehicleID).First(&holder).Error
		if err == nil {
			return ErrRFIDTagInUse
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		oldTag := vehicle.RFIDTag
		if err := tx.Model(&vehicle).Update("rfid_tag", tag).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrRFIDTagInUse
			}
			return err
		}

		if oldTag != nil {
			invalidateVehicleTagCache(*oldTag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidateVehicleTagCache(tag)
	database.DB.First(&vehicle, vehicleID)
	return &vehicle, nil
}

// FindActiveVehicleByTag resolves a scanned tag to its active vehicle.
// Read-through cached; deactivation and reassignment invalidate the entry, so
// a stale hit is bounded by the TTL and only risks stale vehicle attributes,
// never funds (settlement re-reads the account inside its own transaction).
func FindActiveVehicleByTag(tag string) (*models.Vehicle, error) {
	cacheKey := vehicleTagCacheKey(tag)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var vehicle models.Vehicle
			if err := json.Unmarshal([]byte(val), &vehicle); err == nil && vehicle.IsActive {
				return &vehicle, nil
			}
		}
	}

	var vehicle models.Vehicle
	err := database.DB.Where("rfid_tag = ? AND is_active = ?", tag, true).First(&vehicle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRFIDNotFound
		}
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(vehicle); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, vehicleCacheTTL)
		}
	}

	return &vehicle, nil
}

func SetVehicleActive(vehicleID uint, active bool) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := database.DB.First(&vehicle, vehicleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	if err := database.DB.Model(&vehicle).Update("is_active", active).Error; err != nil {
		return nil, err
	}

	if vehicle.RFIDTag != nil {
		invalidateVehicleTagCache(*vehicle.RFIDTag)
	}
	database.DB.First(&vehicle, vehicleID)
	return &vehicle, nil
}

func FindVehiclesByAccount(accountID uint) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := database.DB.Where("account_id = ?", accountID).Order("id").Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

func vehicleTagCacheKey(tag string) string {
	return fmt.Sprintf("vehicle:rfid:%s", tag)
}

func invalidateVehicleTagCache(tag string) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, vehicleTagCacheKey(tag))
	}
}
