package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
)

var ErrGateNotFound = errors.New("toll gate not found")

const gateCacheTTL = 5 * time.Minute

// FindGateByID loads a gate, serving repeated reads from redis. Heartbeats
// and config updates invalidate the cached copy.
func FindGateByID(gateID uint) (*models.TollGate, error) {
	cacheKey := fmt.Sprintf("gate:%d", gateID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var gate models.TollGate
			if err := json.Unmarshal([]byte(val), &gate); err == nil {
				return &gate, nil
			}
		}
	}

	var gate models.TollGate
	if err := database.DB.First(&gate, gateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGateNotFound
		}
		return nil, err
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(gate); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, gateCacheTTL)
		}
	}

	return &gate, nil
}

type CreateGateRequest struct {
	Name               string
	Location           string
	BaseTollRate       decimal.Decimal
	OverweightFineRate decimal.Decimal
	WeightLimitKg      float64
}

func CreateGate(req CreateGateRequest) (*models.TollGate, error) {
	gate := &models.TollGate{
		Name:               req.Name,
		Location:           req.Location,
		BaseTollRate:       req.BaseTollRate,
		OverweightFineRate: req.OverweightFineRate,
		WeightLimitKg:      req.WeightLimitKg,
		GateStatus:         models.DeviceStatusOperational,
		RFIDScannerStatus:  models.DeviceStatusOperational,
		WeightSensorStatus: models.DeviceStatusOperational,
		IsActive:           true,
	}
	if err := database.DB.Create(gate).Error; err != nil {
		return nil, err
	}
	return gate, nil
}

// UpdateGate applies selective field updates (rates, limits, active flag).
func UpdateGate(gateID uint, updates map[string]interface{}) (*models.TollGate, error) {
	var gate models.TollGate
	if err := database.DB.First(&gate, gateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGateNotFound
		}
		return nil, err
	}

	if err := database.DB.Model(&gate).Updates(updates).Error; err != nil {
		return nil, err
	}

	invalidateGateCache(gateID)
	database.DB.First(&gate, gateID)
	return &gate, nil
}

func ListGates() ([]models.TollGate, error) {
	var gates []models.TollGate
	if err := database.DB.Order("id").Find(&gates).Error; err != nil {
		return nil, err
	}
	return gates, nil
}

// HeartbeatReport carries the periodic device self-report from a gate
// controller. Empty statuses leave the current value untouched.
type HeartbeatReport struct {
	GateStatus         models.DeviceStatus
	RFIDScannerStatus  models.DeviceStatus
	WeightSensorStatus models.DeviceStatus
}

// ApplyHeartbeat records subsystem statuses consumed by the gate check on
// the next passage. Independent of passage processing.
func ApplyHeartbeat(gateID uint, report HeartbeatReport) (*models.TollGate, error) {
	var gate models.TollGate
	if err := database.DB.First(&gate, gateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGateNotFound
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"last_heartbeat_at": now,
	}
	if report.GateStatus != "" {
		updates["gate_status"] = report.GateStatus
	}
	if report.RFIDScannerStatus != "" {
		updates["rfid_scanner_status"] = report.RFIDScannerStatus
	}
	if report.WeightSensorStatus != "" {
		updates["weight_sensor_status"] = report.WeightSensorStatus
	}

	if err := database.DB.Model(&gate).Updates(updates).Error; err != nil {
		return nil, err
	}

	invalidateGateCache(gateID)

	if database.RedisClient != nil {
		lastSeenKey := fmt.Sprintf("gate:last_seen:%d", gateID)
		database.RedisClient.Set(database.Ctx, lastSeenKey, now.Format(time.RFC3339), 0)
	}

	database.DB.First(&gate, gateID)
	return &gate, nil
}

func invalidateGateCache(gateID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, fmt.Sprintf("gate:%d", gateID))
	}
}
