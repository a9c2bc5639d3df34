package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/7FIl/freepass-2026/cache"
	"github.com/7FIl/freepass-2026/utils"
)

type HealthController struct {
	DB    *gorm.DB
	Cache cache.Cache // nil when no shared cache is configured
}

func NewHealthController(db *gorm.DB, c cache.Cache) *HealthController {
	return &HealthController{DB: db, Cache: c}
}

// Health reports database and cache reachability. A cache outage only
// degrades the service, a database outage makes it unavailable.
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	report := gin.H{"status": "ok", "database": "up", "cache": "disabled"}
	code := http.StatusOK

	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		report["database"] = "down"
		report["status"] = "unavailable"
		code = http.StatusServiceUnavailable
	}
	if hc.Cache != nil {
		report["cache"] = "up"
		if hc.Cache.Ping(ctx) != nil {
			report["cache"] = "down"
			if code == http.StatusOK {
				report["status"] = "degraded"
			}
		}
	}
	utils.RespondJSON(c, code, "Health check", report)
}
