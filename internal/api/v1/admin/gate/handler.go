package gate

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/internal/services"
	"github.com/sparechange679/toll-collection-system-sub001/internal/utils"
)

func CreateGate(c *gin.Context) {
	var req CreateGateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	baseRate, err := decimal.NewFromString(req.BaseTollRate)
	if err != nil || baseRate.IsNegative() {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("base_toll_rate must be a non-negative decimal"))
		return
	}
	fineRate, err := decimal.NewFromString(req.OverweightFineRate)
	if err != nil || fineRate.IsNegative() {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("overweight_fine_rate must be a non-negative decimal"))
		return
	}

	created, err := services.CreateGate(services.CreateGateRequest{
		Name:               req.Name,
		Location:           req.Location,
		BaseTollRate:       baseRate,
		OverweightFineRate: fineRate,
		WeightLimitKg:      req.WeightLimitKg,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to create toll gate"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Toll gate created", toGateResponse(created)))
}

func UpdateGate(c *gin.Context) {
	gateID, err := strconv.Atoi(c.Param("id"))
	if err != nil || gateID < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid gate id"))
		return
	}

	var req UpdateGateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.BaseTollRate != nil {
		rate, err := decimal.NewFromString(*req.BaseTollRate)
		if err != nil || rate.IsNegative() {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("base_toll_rate must be a non-negative decimal"))
			return
		}
		updates["base_toll_rate"] = rate
	}
	if req.OverweightFineRate != nil {
		rate, err := decimal.NewFromString(*req.OverweightFineRate)
		if err != nil || rate.IsNegative() {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("overweight_fine_rate must be a non-negative decimal"))
			return
		}
		updates["overweight_fine_rate"] = rate
	}
	if req.WeightLimitKg != nil {
		updates["weight_limit_kg"] = *req.WeightLimitKg
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("No fields to update"))
		return
	}

	updated, err := services.UpdateGate(uint(gateID), updates)
	if err != nil {
		if errors.Is(err, services.ErrGateNotFound) {
			c.JSON(http.StatusNotFound, utils.NewCodedErrorResponse(utils.CodeGateNotFound, "Toll gate not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to update toll gate"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Toll gate updated", toGateResponse(updated)))
}

func ListGates(c *gin.Context) {
	gates, err := services.ListGates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to list toll gates"))
		return
	}

	items := make([]GateResponse, 0, len(gates))
	for i := range gates {
		items = append(items, toGateResponse(&gates[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", GateListResponse{Gates: items}))
}

func GetGate(c *gin.Context) {
	gateID, err := strconv.Atoi(c.Param("id"))
	if err != nil || gateID < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid gate id"))
		return
	}

	gate, err := services.FindGateByID(uint(gateID))
	if err != nil {
		if errors.Is(err, services.ErrGateNotFound) {
			c.JSON(http.StatusNotFound, utils.NewCodedErrorResponse(utils.CodeGateNotFound, "Toll gate not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to load toll gate"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", toGateResponse(gate)))
}

func toGateResponse(g *models.TollGate) GateResponse {
	return GateResponse{
		ID:                 g.ID,
		Name:               g.Name,
		Location:           g.Location,
		BaseTollRate:       g.BaseTollRate.StringFixed(2),
		OverweightFineRate: g.OverweightFineRate.StringFixed(2),
		WeightLimitKg:      g.WeightLimitKg,
		GateStatus:         string(g.GateStatus),
		RFIDScannerStatus:  string(g.RFIDScannerStatus),
		WeightSensorStatus: string(g.WeightSensorStatus),
		IsActive:           g.IsActive,
		LastHeartbeatAt:    g.LastHeartbeatAt,
	}
}
