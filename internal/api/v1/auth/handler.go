package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sparechange679/toll-collection-system-sub001/internal/models"
	"github.com/sparechange679/toll-collection-system-sub001/internal/services"
	"github.com/sparechange679/toll-collection-system-sub001/internal/utils"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	account, err := services.RegisterAccount(req.Username, req.Password, req.GovernmentExempt)
	if err != nil {
		if errors.Is(err, services.ErrAccountAlreadyExists) {
			c.JSON(http.StatusConflict, utils.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to register account"))
		return
	}

	c.JSON(http.StatusCreated, utils.NewSuccessResponse("Account registered", toAccountResponse(account)))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	token, account, err := services.LoginAccount(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse("Invalid credentials"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Login successful", LoginResponse{
		Token:   token,
		Account: toAccountResponse(account),
	}))
}

func (h *Handler) Logout(c *gin.Context) {
	tokenString, err := utils.ExtractToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(err.Error()))
		return
	}

	// Deny the token for its remaining lifetime.
	if err := services.AddToDenylist(tokenString, 72*time.Hour); err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse("Failed to log out"))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Logged out", nil))
}

func toAccountResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		ID:               account.ID,
		Username:         account.Username,
		Role:             string(account.Role),
		Balance:          account.Balance.StringFixed(2),
		GovernmentExempt: account.GovernmentExempt,
	}
}
