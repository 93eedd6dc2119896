package vehicle

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup) {
	h := NewHandler()

	v := r.Group("/vehicles")
	{
		v.POST("", h.Register)
		v.GET("", h.List)
		v.POST("/:id/rfid", h.AssignRFID)
		v.POST("/:id/deactivate", h.Deactivate)
	}
}
