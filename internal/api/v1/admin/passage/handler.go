package passage

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/internal/services"
	"github.com/sparechange679/toll-collection-system-sub001/internal/utils"
)

// ListPassages returns a paginated, filtered view of passage records.
func ListPassages(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid page number"))
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid limit number"))
		return
	}

	filter := services.PassageFilter{Page: page, Limit: limit}

	if gateIDStr, exists := c.GetQuery("toll_gate_id"); exists {
		gateID, err := strconv.Atoi(gateIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid toll_gate_id"))
			return
		}
		id := uint(gateID)
		filter.TollGateID = &id
	}
	if accountIDStr, exists := c.GetQuery("account_id"); exists {
		accountID, err := strconv.Atoi(accountIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid account_id"))
			return
		}
		id := uint(accountID)
		filter.AccountID = &id
	}
	if statusStr, exists := c.GetQuery("status"); exists {
		status := models.PassageStatus(statusStr)
		filter.Status = &status
	}
	if methodStr, exists := c.GetQuery("payment_method"); exists {
		method := models.PaymentMethod(methodStr)
		filter.PaymentMethod = &method
	}
	if startStr, exists := c.GetQuery("start_time"); exists {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid start_time"))
			return
		}
		filter.StartTime = &start
	}
	if endStr, exists := c.GetQuery("end_time"); exists {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid end_time"))
			return
		}
		filter.EndTime = &end
	}

	passages, total, err := services.FindPassages(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to list passages"))
		return
	}

	items := make([]PassageListItem, 0, len(passages))
	for _, p := range passages {
		items = append(items, toPassageListItem(p))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", PassageListResponse{
		Passages: items,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}))
}

// Summary returns per-gate passage counts and collected revenue.
func Summary(c *gin.Context) {
	var startTime, endTime *time.Time
	if startStr, exists := c.GetQuery("start_time"); exists {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid start_time"))
			return
		}
		startTime = &start
	}
	if endStr, exists := c.GetQuery("end_time"); exists {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid end_time"))
			return
		}
		endTime = &end
	}

	summaries, err := services.SummarizePassagesByGate(startTime, endTime)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to summarize passages"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", summaries))
}

// CreateManualPassage records a booth cash payment or barrier override.
func CreateManualPassage(c *gin.Context) {
	var req ManualPassageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Amount must be a non-negative decimal"))
		return
	}

	operator := "staff"
	if raw, exists := c.Get("account"); exists {
		if account, ok := raw.(models.Account); ok {
			operator = account.Username
		}
	}

	passage, err := services.RecordManualPassage(req.TollGateID, req.VehicleID, req.AccountID,
		models.PaymentMethod(req.PaymentMethod), amount, operator)
	if err != nil {
		if errors.Is(err, services.ErrGateNotFound) {
			c.JSON(http.StatusNotFound, utils.NewCodedErrorResponse(utils.CodeGateNotFound, "Toll gate not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to record manual passage"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Manual passage recorded", toPassageListItem(*passage)))
}

func toPassageListItem(p models.TollPassage) PassageListItem {
	return PassageListItem{
		ID:              p.ID,
		ScannedAt:       p.ScannedAt,
		AccountID:       p.AccountID,
		VehicleID:       p.VehicleID,
		TollGateID:      p.TollGateID,
		RFIDTag:         p.RFIDTag,
		WeightKg:        p.WeightKg,
		IsOverweight:    p.IsOverweight,
		TollAmount:      p.TollAmount.StringFixed(2),
		FineAmount:      p.FineAmount.StringFixed(2),
		TotalAmount:     p.TotalAmount.StringFixed(2),
		PaymentMethod:   string(p.PaymentMethod),
		Status:          string(p.Status),
		RejectionReason: p.RejectionReason,
	}
}
