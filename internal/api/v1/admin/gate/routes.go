package gate

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/gates", CreateGate)
	router.GET("/gates", ListGates)
	router.GET("/gates/:id", GetGate)
	router.PATCH("/gates/:id", UpdateGate)
}
