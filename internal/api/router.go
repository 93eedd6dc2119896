package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sparechange679/toll-collection-system-sub001/config"
	adminGate "github.com/sparechange679/toll-collection-system-sub001/internal/api/v1/admin/gate"
	adminPassage "github.com/sparechange679/toll-collection-system-sub001/internal/api/v1/admin/passage"
	adminTransaction "github.com/sparechange679/toll-collection-system-sub001/internal/api/v1/admin/transaction"
	"github.com/sparechange679/toll-collection-system-sub001/internal/api/v1/auth"
	"github.com/sparechange679/toll-collection-system-sub001/internal/api/v1/tollgate"
	"github.com/sparechange679/toll-collection-system-sub001/internal/api/v1/vehicle"
	"github.com/sparechange679/toll-collection-system-sub001/internal/api/v1/wallet"
	"github.com/sparechange679/toll-collection-system-sub001/internal/database"
	"github.com/sparechange679/toll-collection-system-sub001/internal/middleware"
)

func NewRouter() (*gin.Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	_, err = database.Connect(cfg)
	if err != nil {
		return nil, err
	}

	err = database.ConnectRedis(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	// Configure CORS for the staff/driver web frontend
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Device-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum age for preflight requests
	}))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth.RegisterRoutes(v1)

		// Hardware gateway endpoints, device-key authenticated
		tollgate.RegisterRoutes(v1, cfg.DeviceAPIKey)

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware())
		{
			wallet.RegisterRoutes(authorized)
			vehicle.RegisterRoutes(authorized)
		}

		// Staff routes: manual passages and counter transactions
		staff := v1.Group("/staff")
		staff.Use(middleware.StaffAuthMiddleware())
		{
			adminPassage.RegisterRoutes(staff)
			adminTransaction.RegisterRoutes(staff)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			adminGate.RegisterRoutes(admin)
			adminPassage.RegisterRoutes(admin)
			adminTransaction.RegisterRoutes(admin)
		}
	}

	return router, nil
}
