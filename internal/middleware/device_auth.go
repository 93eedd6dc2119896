package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sparechange679/toll-collection-system-sub001/internal/utils"
)

// DeviceAuthMiddleware authenticates hardware gateway requests with the
// static key provisioned to field devices. An empty configured key disables
// the check (local development).
func DeviceAuthMiddleware(deviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deviceKey == "" {
			c.Next()
			return
		}

		presented := c.GetHeader("X-Device-Key")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(deviceKey)) != 1 {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse("Invalid device key"))
			c.Abort()
			return
		}

		c.Next()
	}
}
