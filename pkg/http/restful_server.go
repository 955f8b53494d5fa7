package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
)

type RestfulServer struct {
	Server           *gin.Engine
	Iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore
	// JWTSecret guards the admin routes; empty disables the check.
	JWTSecret string
}

func (rs *RestfulServer) CheckLimiter(key string) bool {
	return rs.RateLimiterStore.Allow(key)
}

func (rs *RestfulServer) SetLimiter(key string, keyRate float64, keyBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(key, rate.Limit(keyRate), keyBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.Use(RequestID(), AccessLog())
	// devices and dashboards call from anywhere
	rs.Server.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", common.HeaderRequestID},
		ExposeHeaders:   []string{"Content-Length", common.HeaderRequestID},
		MaxAge:          time.Hour,
	}))

	rs.Server.GET("/healthz", rs.HealthCheck)

	admin := AdminAuth(rs.JWTSecret)

	api := rs.Server.Group("/api")
	{
		api.POST("/limiter/:key", admin, rs.PostLimiter)
	}

	sensors := api.Group("/sensor-data")
	{
		sensors.POST("", rs.PostSensorData)
		sensors.GET("", rs.GetAllSensorData)
		sensors.GET("/health", rs.SensorHealth)
		sensors.GET("/latest/:limit", rs.GetLatestReadings)
		sensors.GET("/rfid/:rfidTag", rs.GetReadingsByTag)
		sensors.GET("/date-range", rs.GetReadingsInRange)
		sensors.GET("/light-detected", rs.GetReadingsWithLight)
		sensors.GET("/high-temperature", rs.GetReadingsAboveTemperature)
		sensors.GET("/low-humidity", rs.GetReadingsBelowHumidity)
		sensors.GET("/stats/total-records", rs.GetTotalRecords)
		sensors.GET("/stats/device-count", rs.GetDeviceCount)
		sensors.GET("/stats/temperature-max", rs.GetMaxTemperature)
		sensors.GET("/stats/humidity-avg", rs.GetAverageHumidity)
		sensors.GET("/stats/summary", rs.GetRangeSummary)
		sensors.GET("/:id", rs.GetSensorData)
		sensors.PUT("/:id", admin, rs.UpdateSensorData)
		sensors.DELETE("/:id", admin, rs.DeleteSensorData)
	}

	rfid := api.Group("/rfid-auth")
	{
		rfid.POST("", rs.PostAccess)
		rfid.PUT("/change-pin", rs.ChangePIN)
		rfid.GET("/:rfidTag", rs.GetAccess)
		rfid.DELETE("/:rfidTag", admin, rs.DeactivateAccess)
	}
}
