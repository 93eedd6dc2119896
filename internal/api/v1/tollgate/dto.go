package tollgate

// VerifyRequest is the raw scan report from a gate controller.
// scan_reference is the device's idempotency token; resending the same token
// returns the original outcome without re-charging.
type VerifyRequest struct {
	RFIDUID       string   `json:"rfid_uid" binding:"required"`
	TollGateID    uint     `json:"toll_gate_id" binding:"required"`
	WeightKg      *float64 `json:"weight_kg" binding:"omitempty,gte=0"`
	ScanReference string   `json:"scan_reference" binding:"omitempty,max=64"`
}

type VerifyResponse struct {
	PassageID      uint    `json:"passage_id"`
	AmountDeducted string  `json:"amount_deducted"`
	TollAmount     string  `json:"toll_amount"`
	FineAmount     string  `json:"fine_amount"`
	IsGovernmental bool    `json:"is_governmental"`
	IsOverweight   bool    `json:"is_overweight"`
	NewBalance     *string `json:"new_balance,omitempty"`
	Replayed       bool    `json:"replayed,omitempty"`
}

type HeartbeatRequest struct {
	TollGateID         uint   `json:"toll_gate_id" binding:"required"`
	GateStatus         string `json:"gate_status" binding:"omitempty,oneof=operational offline error"`
	RFIDScannerStatus  string `json:"rfid_scanner_status" binding:"omitempty,oneof=operational offline error"`
	WeightSensorStatus string `json:"weight_sensor_status" binding:"omitempty,oneof=operational offline error"`
}

type HeartbeatResponse struct {
	TollGateID         uint   `json:"toll_gate_id"`
	GateStatus         string `json:"gate_status"`
	RFIDScannerStatus  string `json:"rfid_scanner_status"`
	WeightSensorStatus string `json:"weight_sensor_status"`
	IsActive           bool   `json:"is_active"`
}
