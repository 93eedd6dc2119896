package wallet

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

// Balance returns the caller's current wallet balance.
func (h *Handler) Balance(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	balance, err := services.BalanceOf(account.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to read balance"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", BalanceResponse{
		Balance: balance.StringFixed(2),
	}))
}

// TopUp credits the caller's wallet. The payment gateway callback path uses
// the same ledger primitive; this endpoint covers booth/counter top-ups.
func (h *Handler) TopUp(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

	var req TopUpRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse("Amount must be a positive decimal"))
		return
	}

	entry, err := services.Credit(account.ID, amount, "Wallet top-up", req.Reference, account.Username, nil)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateReference) {
			c.JSON(http.StatusConflict, utils.NewCodedErrorResponse(utils.CodeDuplicateReference, "Top-up reference already processed"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to top up wallet"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Wallet topped up", TopUpResponse{
		TransactionID: entry.ID,
		Amount:        entry.Amount.StringFixed(2),
		NewBalance:    entry.BalanceAfter.StringFixed(2),
	}))
}

// Transactions lists the caller's own ledger history.
func (h *Handler) Transactions(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}

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

	filter := services.TransactionFilter{
		AccountID: &account.ID,
		Page:      page,
		Limit:     limit,
	}

	transactions, total, err := services.FindTransactions(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to list transactions"))
		return
	}

	items := make([]TransactionListItem, 0, len(transactions))
	for _, t := range transactions {
		items = append(items, TransactionListItem{
			ID:           t.ID,
			CreatedAt:    t.CreatedAt,
			Type:         string(t.Type),
			Amount:       t.Amount.StringFixed(2),
			BalanceAfter: t.BalanceAfter.StringFixed(2),
			Description:  t.Description,
			Reference:    t.Reference,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", TransactionListResponse{
		Transactions: items,
		Total:        total,
		Page:         page,
		Limit:        limit,
	}))
}
