package passage

import "time"

type PassageListItem struct {
	ID              uint      `json:"id"`
	ScannedAt       time.Time `json:"scanned_at"`
	AccountID       *uint     `json:"account_id"`
	VehicleID       *uint     `json:"vehicle_id"`
	TollGateID      uint      `json:"toll_gate_id"`
	RFIDTag         string    `json:"rfid_tag"`
	WeightKg        *float64  `json:"weight_kg"`
	IsOverweight    bool      `json:"is_overweight"`
	TollAmount      string    `json:"toll_amount"`
	FineAmount      string    `json:"fine_amount"`
	TotalAmount     string    `json:"total_amount"`
	PaymentMethod   string    `json:"payment_method"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
}

type PassageListResponse struct {
	Passages []PassageListItem `json:"passages"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// ManualPassageRequest records a booth-handled passage: cash payment or a
// staff barrier override.
type ManualPassageRequest struct {
	TollGateID    uint   `json:"toll_gate_id" binding:"required"`
	VehicleID     *uint  `json:"vehicle_id"`
	AccountID     *uint  `json:"account_id"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash_payment manual_override"`
	Amount        string `json:"amount" binding:"required"`
}
