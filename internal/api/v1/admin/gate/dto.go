package gate

import "time"

type CreateGateRequest struct {
	Name               string  `json:"name" binding:"required,max=100"`
	Location           string  `json:"location" binding:"omitempty,max=255"`
	BaseTollRate       string  `json:"base_toll_rate" binding:"required"`
	OverweightFineRate string  `json:"overweight_fine_rate" binding:"required"`
	WeightLimitKg      float64 `json:"weight_limit_kg" binding:"required,gt=0"`
}

type UpdateGateRequest struct {
	Name               *string  `json:"name" binding:"omitempty,max=100"`
	Location           *string  `json:"location" binding:"omitempty,max=255"`
	BaseTollRate       *string  `json:"base_toll_rate"`
	OverweightFineRate *string  `json:"overweight_fine_rate"`
	WeightLimitKg      *float64 `json:"weight_limit_kg" binding:"omitempty,gt=0"`
	IsActive           *bool    `json:"is_active"`
}

type GateResponse struct {
	ID                 uint       `json:"id"`
	Name               string     `json:"name"`
	Location           string     `json:"location"`
	BaseTollRate       string     `json:"base_toll_rate"`
	OverweightFineRate string     `json:"overweight_fine_rate"`
	WeightLimitKg      float64    `json:"weight_limit_kg"`
	GateStatus         string     `json:"gate_status"`
	RFIDScannerStatus  string     `json:"rfid_scanner_status"`
	WeightSensorStatus string     `json:"weight_sensor_status"`
	IsActive           bool       `json:"is_active"`
	LastHeartbeatAt    *time.Time `json:"last_heartbeat_at"`
}

type GateListResponse struct {
	Gates []GateResponse `json:"gates"`
}
