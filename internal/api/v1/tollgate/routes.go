package tollgate

import (
	"github.com/gin-gonic/gin"

	"github.com/sparechange679/toll-collection-system-sub001/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, deviceKey string) {
	h := NewHandler()

	gate := r.Group("/toll-gate")
	gate.Use(middleware.DeviceAuthMiddleware(deviceKey))
	{
		gate.POST("/verify", h.Verify)
		gate.POST("/heartbeat", h.Heartbeat)
	}
}
