package vehicle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/internal/services"
	"github.com/sparechange679/toll-collection-system-sub001/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func currentAccount(c *gin.Context) (models.Account, bool) {
	raw, exists := c.Get("account")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse("Unauthorized"))
		return models.Account{}, false
	}
	account, ok := raw.(models.Account)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse("Unauthorized"))
		return models.Account{}, false
	}
	return account, true
}

func (h *Handler) Register(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	var req RegisterVehicleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	vehicle, err := services.RegisterVehicle(services.RegisterVehicleRequest{
		AccountID:     account.ID,
		PlateNumber:   req.PlateNumber,
		Category:      models.VehicleCategory(req.Category),
		CapacityClass: req.CapacityClass,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to register vehicle"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Vehicle registered", toVehicleResponse(vehicle)))
}

func (h *Handler) List(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	vehicles, err := services.FindVehiclesByAccount(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to list vehicles"))
		return
	}

	items := make([]VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		items = append(items, toVehicleResponse(&vehicles[i]))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", VehicleListResponse{Vehicles: items}))
}

func (h *Handler) AssignRFID(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || vehicleID < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid vehicle id"))
		return
	}

	var req AssignRFIDRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !h.ownsVehicle(c, account, uint(vehicleID)) {
		return
	}

	vehicle, err := services.AssignRFIDTag(uint(vehicleID), req.RFIDTag)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVehicleNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse("Vehicle not found"))
		case errors.Is(err, services.ErrRFIDTagInUse):
			c.JSON(http.StatusConflict, utils.NewErrorResponse("RFID tag is already assigned to another vehicle"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to assign RFID tag"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("RFID tag assigned", toVehicleResponse(vehicle)))
}

func (h *Handler) Deactivate(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	vehicleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || vehicleID < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid vehicle id"))
		return
	}

	if !h.ownsVehicle(c, account, uint(vehicleID)) {
		return
	}

	vehicle, err := services.SetVehicleActive(uint(vehicleID), false)
	if err != nil {
		if errors.Is(err, services.ErrVehicleNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse("Vehicle not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to deactivate vehicle"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Vehicle deactivated", toVehicleResponse(vehicle)))
}

// ownsVehicle rejects cross-account vehicle mutation. Admins manage vehicles
// through their own endpoints, not this one.
func (h *Handler) ownsVehicle(c *gin.Context, account models.Account, vehicleID uint) bool {
	vehicles, err := services.FindVehiclesByAccount(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to verify vehicle ownership"))
		return false
	}
	for _, v := range vehicles {
		if v.ID == vehicleID {
			return true
		}
	}
	c.JSON(http.StatusNotFound, utils.NewErrorResponse("Vehicle not found"))
	return false
}

func toVehicleResponse(v *models.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:            v.ID,
		PlateNumber:   v.PlateNumber,
		Category:      string(v.Category),
		CapacityClass: v.CapacityClass,
		RFIDTag:       v.RFIDTag,
		IsActive:      v.IsActive,
	}
}
