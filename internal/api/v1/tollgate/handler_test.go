package tollgate

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/pkg/logger"
)

const testDeviceKey = "test-device-key"

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.Migrator().DropTable(&models.Account{}, &models.Vehicle{}, &models.TollGate{},
		&models.Transaction{}, &models.TollPassage{})
	db.AutoMigrate(&models.Account{}, &models.Vehicle{}, &models.TollGate{},
		&models.Transaction{}, &models.TollPassage{})

	database.DB = db
	database.RedisClient = nil
	logger.Log = zap.NewNop()

	router := gin.New()
	v1 := router.Group("/api/v1")
	RegisterRoutes(v1, testDeviceKey)
	return router
}

func seedGatewayFixtures(balance string) (models.Account, models.Vehicle, models.TollGate) {
	account := models.Account{
		Username: "gateway-driver",
		Password: "x",
		Role:     models.RoleDriver,
		Balance:  decimal.RequireFromString(balance),
		IsActive: true,
		Version:  1,
	}
	database.DB.Create(&account)

	tag := "TAG-GW1"
	vehicle := models.Vehicle{
		AccountID:   account.ID,
		RFIDTag:     &tag,
		PlateNumber: "UAX 900A",
		Category:    models.VehicleCategoryCar,
		IsActive:    true,
	}
	database.DB.Create(&vehicle)

	gate := models.TollGate{
		Name:               "West Gate",
		BaseTollRate:       decimal.NewFromInt(500),
		OverweightFineRate: decimal.NewFromInt(1000),
		WeightLimitKg:      5000,
		GateStatus:         models.DeviceStatusOperational,
		RFIDScannerStatus:  models.DeviceStatusOperational,
		WeightSensorStatus: models.DeviceStatusOperational,
		IsActive:           true,
	}
	database.DB.Create(&gate)

	return account, vehicle, gate
}

func performDeviceRequest(router *gin.Engine, path string, body interface{}, key string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Device-Key", key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVerifyEndpointSuccess(t *testing.T) {
	router := setupTestRouter()
	_, _, gate := seedGatewayFixtures("10000.00")

	w := performDeviceRequest(router, "/api/v1/toll-gate/verify", map[string]interface{}{
		"rfid_uid":       "TAG-GW1",
		"toll_gate_id":   gate.ID,
		"weight_kg":      3000.0,
		"scan_reference": "gw-scan-1",
	}, testDeviceKey)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    VerifyResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "500.00", resp.Data.AmountDeducted)
	assert.False(t, resp.Data.IsGovernmental)
	assert.False(t, resp.Data.IsOverweight)
	assert.NotNil(t, resp.Data.NewBalance)
	assert.Equal(t, "9500.00", *resp.Data.NewBalance)
}

func TestVerifyEndpointInsufficientBalance(t *testing.T) {
	router := setupTestRouter()
	_, _, gate := seedGatewayFixtures("100.00")

	w := performDeviceRequest(router, "/api/v1/toll-gate/verify", map[string]interface{}{
		"rfid_uid":     "TAG-GW1",
		"toll_gate_id": gate.ID,
	}, testDeviceKey)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var resp struct {
		Success   bool   `json:"success"`
		ErrorCode string `json:"error_code"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "INSUFFICIENT_BALANCE", resp.ErrorCode)
}

func TestVerifyEndpointUnknownRFID(t *testing.T) {
	router := setupTestRouter()
	_, _, gate := seedGatewayFixtures("10000.00")

	w := performDeviceRequest(router, "/api/v1/toll-gate/verify", map[string]interface{}{
		"rfid_uid":     "TAG-NOBODY",
		"toll_gate_id": gate.ID,
	}, testDeviceKey)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		ErrorCode string `json:"error_code"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RFID_NOT_FOUND", resp.ErrorCode)
}

func TestVerifyEndpointMissingFields(t *testing.T) {
	router := setupTestRouter()
	seedGatewayFixtures("10000.00")

	w := performDeviceRequest(router, "/api/v1/toll-gate/verify", map[string]interface{}{
		"rfid_uid": "TAG-GW1",
	}, testDeviceKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyEndpointRejectsBadDeviceKey(t *testing.T) {
	router := setupTestRouter()
	_, _, gate := seedGatewayFixtures("10000.00")

	body := map[string]interface{}{
		"rfid_uid":     "TAG-GW1",
		"toll_gate_id": gate.ID,
	}

	w := performDeviceRequest(router, "/api/v1/toll-gate/verify", body, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performDeviceRequest(router, "/api/v1/toll-gate/verify", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyEndpointReplay(t *testing.T) {
	router := setupTestRouter()
	_, _, gate := seedGatewayFixtures("10000.00")

	body := map[string]interface{}{
		"rfid_uid":       "TAG-GW1",
		"toll_gate_id":   gate.ID,
		"scan_reference": "gw-replay-1",
	}

	first := performDeviceRequest(router, "/api/v1/toll-gate/verify", body, testDeviceKey)
	assert.Equal(t, http.StatusOK, first.Code)

	second := performDeviceRequest(router, "/api/v1/toll-gate/verify", body, testDeviceKey)
	assert.Equal(t, http.StatusOK, second.Code)

	var resp struct {
		Data VerifyResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Replayed)
	assert.Equal(t, "9500.00", *resp.Data.NewBalance)

	var entryCount int64
	database.DB.Model(&models.Transaction{}).Count(&entryCount)
	assert.Equal(t, int64(1), entryCount)
}

func TestHeartbeatEndpoint(t *testing.T) {
	router := setupTestRouter()
	_, _, gate := seedGatewayFixtures("10000.00")

	w := performDeviceRequest(router, "/api/v1/toll-gate/heartbeat", map[string]interface{}{
		"toll_gate_id":        gate.ID,
		"gate_status":         "offline",
		"rfid_scanner_status": "error",
	}, testDeviceKey)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data HeartbeatResponse `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "offline", resp.Data.GateStatus)
	assert.Equal(t, "error", resp.Data.RFIDScannerStatus)
	assert.Equal(t, "operational", resp.Data.WeightSensorStatus)

	var reloaded models.TollGate
	assert.NoError(t, database.DB.First(&reloaded, gate.ID).Error)
	assert.Equal(t, models.DeviceStatusError, reloaded.RFIDScannerStatus)

	// The gate now refuses passages.
	v := performDeviceRequest(router, "/api/v1/toll-gate/verify", map[string]interface{}{
		"rfid_uid":     "TAG-GW1",
		"toll_gate_id": gate.ID,
	}, testDeviceKey)
	assert.Equal(t, http.StatusConflict, v.Code)

	var verifyResp struct {
		ErrorCode string `json:"error_code"`
	}
	assert.NoError(t, json.Unmarshal(v.Body.Bytes(), &verifyResp))
	assert.Equal(t, "GATE_UNAVAILABLE", verifyResp.ErrorCode)
}

func TestHeartbeatEndpointUnknownGate(t *testing.T) {
	router := setupTestRouter()
	seedGatewayFixtures("10000.00")

	w := performDeviceRequest(router, "/api/v1/toll-gate/heartbeat", map[string]interface{}{
		"toll_gate_id": 9999,
		"gate_status":  "operational",
	}, testDeviceKey)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHeartbeatEndpointRejectsBadStatus(t *testing.T) {
	router := setupTestRouter()
	_, _, gate := seedGatewayFixtures("10000.00")

	w := performDeviceRequest(router, "/api/v1/toll-gate/heartbeat", map[string]interface{}{
		"toll_gate_id": gate.ID,
		"gate_status":  "exploded",
	}, testDeviceKey)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
