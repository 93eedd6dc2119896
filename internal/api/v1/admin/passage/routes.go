package passage

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/passages", ListPassages)
	router.GET("/passages/summary", Summary)
	router.POST("/passages/manual", CreateManualPassage)
}
