package wallet

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup) {
	h := NewHandler()

	w := r.Group("/wallet")
	{
		w.GET("/balance", h.Balance)
		w.POST("/topup", h.TopUp)
		w.GET("/transactions", h.Transactions)
	}
}
