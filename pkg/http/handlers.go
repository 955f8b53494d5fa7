package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
)

const localDateTimeLayout = "2006-01-02T15:04:05"

// parseDate accepts RFC 3339 or a zone-less local date-time read as UTC.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.ParseInLocation(localDateTimeLayout, value, time.UTC)
}

func parseDateRange(c *gin.Context) (time.Time, time.Time, error) {
	start, err := parseDate(c.Query("startDate"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid startDate")
	}
	end, err := parseDate(c.Query("endDate"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid endDate")
	}
	return start, end, nil
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, iot.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, iot.ErrInvalidTag),
		errors.Is(err, iot.ErrMissingPIN),
		errors.Is(err, iot.ErrInvalidRange),
		errors.Is(err, iot.ErrMissingField),
		errors.Is(err, iot.ErrEmptyPatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (rs *RestfulServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		common.GetLoggerWith(common.LoggerNameRestfulServer).Error("request failed",
			zap.String(common.LoggerFieldRequestID, c.GetString(ctxKeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}

func rejectLimited(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "rate limit exceeded"})
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().GTE(0).Required(),
	"burst": z.Int().GTE(1).Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	key := c.Param("key")

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(key, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
