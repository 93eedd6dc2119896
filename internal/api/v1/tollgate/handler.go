package tollgate

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/internal/services"
	"github.com/sparechange679/toll-collection-system-sub001/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Verify authorizes and settles one scan event reported by a gate device.
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result, err := services.VerifyPassage(services.PassageRequest{
		RFIDTag:    req.RFIDUID,
		TollGateID: req.TollGateID,
		WeightKg:   req.WeightKg,
		Reference:  req.ScanReference,
	})
	if err != nil {
		status, code, message := mapVerifyError(err)
		c.JSON(status, utils.NewCodedErrorResponse(code, message))
		return
	}

	passage := result.Passage
	resp := VerifyResponse{
		PassageID:      passage.ID,
		AmountDeducted: passage.TotalAmount.StringFixed(2),
		TollAmount:     passage.TollAmount.StringFixed(2),
		FineAmount:     passage.FineAmount.StringFixed(2),
		IsGovernmental: passage.PaymentMethod == models.PaymentMethodGovExemption,
		IsOverweight:   passage.IsOverweight,
		Replayed:       result.Replayed,
	}
	if result.NewBalance != nil {
		balance := result.NewBalance.StringFixed(2)
		resp.NewBalance = &balance
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Passage authorized", resp))
}

// Heartbeat records device subsystem statuses for a gate.
func (h *Handler) Heartbeat(c *gin.Context) {
	var req HeartbeatRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	gate, err := services.ApplyHeartbeat(req.TollGateID, services.HeartbeatReport{
		GateStatus:         models.DeviceStatus(req.GateStatus),
		RFIDScannerStatus:  models.DeviceStatus(req.RFIDScannerStatus),
		WeightSensorStatus: models.DeviceStatus(req.WeightSensorStatus),
	})
	if err != nil {
		if errors.Is(err, services.ErrGateNotFound) {
			c.JSON(http.StatusNotFound, utils.NewCodedErrorResponse(utils.CodeGateNotFound, "Toll gate not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewCodedErrorResponse(utils.CodeInternalError, "Failed to record heartbeat"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Heartbeat recorded", HeartbeatResponse{
		TollGateID:         gate.ID,
		GateStatus:         string(gate.GateStatus),
		RFIDScannerStatus:  string(gate.RFIDScannerStatus),
		WeightSensorStatus: string(gate.WeightSensorStatus),
		IsActive:           gate.IsActive,
	}))
}

func mapVerifyError(err error) (int, string, string) {
	switch {
	case errors.Is(err, services.ErrGateNotFound):
		return http.StatusNotFound, utils.CodeGateNotFound, "Toll gate not found"
	case errors.Is(err, services.ErrGateUnavailable):
		return http.StatusConflict, utils.CodeGateUnavailable, "Toll gate is not operational"
	case errors.Is(err, services.ErrRFIDNotFound):
		return http.StatusNotFound, utils.CodeRFIDNotFound, "RFID tag not registered or vehicle inactive"
	case errors.Is(err, services.ErrInsufficientFunds):
		return http.StatusPaymentRequired, utils.CodeInsufficientBalance, "Insufficient balance"
	case errors.Is(err, services.ErrDuplicateReference):
		return http.StatusConflict, utils.CodeDuplicateReference, "Scan reference already processed"
	default:
		return http.StatusInternalServerError, utils.CodeInternalError, "Failed to process passage"
	}
}
