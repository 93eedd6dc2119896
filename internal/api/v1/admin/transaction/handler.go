package transaction

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/internal/services"
	"github.com/sparechange679/toll-collection-system-sub001/internal/utils"
)

// ListTransactions returns a paginated ledger view with filtering.
func ListTransactions(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	transactions, total, err := services.FindTransactions(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to list transactions"))
		return
	}

	items := make([]TransactionListItem, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, TransactionListItem{
			ID:            t.ID,
			CreatedAt:     t.CreatedAt,
			AccountID:     t.AccountID,
			Type:          string(t.Type),
			Amount:        t.Amount.StringFixed(2),
			BalanceBefore: t.BalanceBefore.StringFixed(2),
			BalanceAfter:  t.BalanceAfter.StringFixed(2),
			Description:   t.Description,
			Reference:     t.Reference,
			Operator:      t.Operator,
			Hash:          t.Hash,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", TransactionListResponse{
		Transactions: items,
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}))
}

// ExportTransactions streams the filtered ledger as CSV.
func ExportTransactions(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	// Export ignores pagination; cap the result set instead.
	filter.Page = 1
	filter.Limit = 100000

	transactions, _, err := services.FindTransactions(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to export transactions"))
		return
	}

	data, err := services.GenerateTransactionCSV(transactions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to generate CSV"))
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// CreateManualTransaction applies a staff-initiated ledger operation through
// the same credit/debit primitives used by passage settlement.
func CreateManualTransaction(c *gin.Context) {
	var req ManualTransactionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Amount must be a positive decimal"))
		return
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.New().String()
	}

	operator := "staff"
	if raw, exists := c.Get("account"); exists {
		if account, ok := raw.(models.Account); ok {
			operator = account.Username
		}
	}

	var entry *models.Transaction
	if req.Type == "credit" {
		entry, err = services.Credit(req.AccountID, amount, req.Description, reference, operator, nil)
	} else {
		entry, err = services.Debit(req.AccountID, amount, req.Description, reference, operator, nil)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse("Account not found"))
		case errors.Is(err, services.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, utils.NewCodedErrorResponse(utils.CodeInsufficientBalance, "Insufficient balance"))
		case errors.Is(err, services.ErrDuplicateReference):
			c.JSON(http.StatusConflict, utils.NewCodedErrorResponse(utils.CodeDuplicateReference, "Reference already processed"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to apply transaction"))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Transaction applied", ManualTransactionResponse{
		TransactionID: entry.ID,
		AccountID:     entry.AccountID,
		Amount:        entry.Amount.StringFixed(2),
		NewBalance:    entry.BalanceAfter.StringFixed(2),
	}))
}

func parseFilter(c *gin.Context) (services.TransactionFilter, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid page number"))
		return services.TransactionFilter{}, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid limit number"))
		return services.TransactionFilter{}, false
	}

	filter := services.TransactionFilter{Page: page, Limit: limit}

	if accountIDStr, exists := c.GetQuery("account_id"); exists {
		accountID, err := strconv.Atoi(accountIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid account_id"))
			return services.TransactionFilter{}, false
		}
		id := uint(accountID)
		filter.AccountID = &id
	}
	if typeStr, exists := c.GetQuery("type"); exists {
		txType := models.TransactionType(typeStr)
		filter.Type = &txType
	}
	if startStr, exists := c.GetQuery("start_time"); exists {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid start_time"))
			return services.TransactionFilter{}, false
		}
		filter.StartTime = &start
	}
	if endStr, exists := c.GetQuery("end_time"); exists {
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Invalid end_time"))
			return services.TransactionFilter{}, false
		}
		filter.EndTime = &end
	}

	return filter, true
}
