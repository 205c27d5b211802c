package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/infra"
	"github.com/ProyectoSpoon/spoon-platform-sub004/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Postgres is required; Redis and RabbitMQ are reported but only degrade the
// status, since tables and cash keep working without them.
func Health(db *gorm.DB, rdb *redis.Client, broker *infra.Broker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if db == nil {
			dbStatus = "error"
		} else if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else {
				body["dlq"] = worker.DLQLengths(ctx, rdb)
			}
		}
		body["redis"] = redisStatus

		brokerStatus := "disabled"
		if broker != nil {
			brokerStatus = "connected"
			if !broker.Healthy() {
				brokerStatus = "error"
			}
			body["broker_circuit"] = broker.State()
		}
		body["broker"] = brokerStatus

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		body["degraded"] = redisStatus == "error" || brokerStatus == "error"
		c.JSON(status, body)
	}
}
