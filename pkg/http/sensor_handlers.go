package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"

	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
)

const (
	defaultHighTemperature = 30.0
	defaultLowHumidity     = 30.0
)

// SensorReadingRequest uses pointers so a missing field can be told apart
// from a zero reading.
type SensorReadingRequest struct {
	Timestamp     *int64   `json:"timestamp"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	LightDetected *bool    `json:"light_detected"`
	KeypadInput   *string  `json:"keypad_input"`
	LastRFIDTag   *string  `json:"last_rfid_tag"`
	DeviceIP      *string  `json:"device_ip"`
	RSSI          *int     `json:"rssi"`
}

var sensorReadingRequestSchema = z.Struct(z.Shape{
	"Timestamp":   z.Ptr(z.Int64().GT(0)).NotNil(),
	"Temperature": z.Ptr(z.Float64().GTE(-100).LTE(200)).NotNil(),
	"Humidity":    z.Ptr(z.Float64().GTE(0).LTE(100)).NotNil(),
	"KeypadInput": z.Ptr(z.String().Max(255)),
	"LastRFIDTag": z.Ptr(z.String().Max(20)),
	"DeviceIP":    z.Ptr(z.String().Max(20)),
})

func (r *SensorReadingRequest) toModel() *models.SensorReading {
	reading := &models.SensorReading{
		Timestamp:   *r.Timestamp,
		Temperature: *r.Temperature,
		Humidity:    *r.Humidity,
		RSSI:        r.RSSI,
	}
	if r.LightDetected != nil {
		reading.LightDetected = *r.LightDetected
	}
	if r.KeypadInput != nil {
		reading.KeypadInput = *r.KeypadInput
	}
	if r.LastRFIDTag != nil {
		reading.LastRFIDTag = iot.NormalizeTag(*r.LastRFIDTag)
	}
	if r.DeviceIP != nil {
		reading.DeviceIP = strings.TrimSpace(*r.DeviceIP)
	}
	return reading
}

type SensorReadingUpdateRequest struct {
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	LightDetected *bool    `json:"light_detected"`
	KeypadInput   *string  `json:"keypad_input"`
	LastRFIDTag   *string  `json:"last_rfid_tag"`
	DeviceIP      *string  `json:"device_ip"`
	RSSI          *int     `json:"rssi"`
}

var sensorReadingUpdateSchema = z.Struct(z.Shape{
	"Temperature": z.Ptr(z.Float64().GTE(-100).LTE(200)),
	"Humidity":    z.Ptr(z.Float64().GTE(0).LTE(100)),
	"KeypadInput": z.Ptr(z.String().Max(255)),
	"LastRFIDTag": z.Ptr(z.String().Max(20)),
	"DeviceIP":    z.Ptr(z.String().Max(20)),
})

func (r *SensorReadingUpdateRequest) toPatch() models.SensorReadingPatch {
	patch := models.SensorReadingPatch{
		Temperature:   r.Temperature,
		Humidity:      r.Humidity,
		LightDetected: r.LightDetected,
		KeypadInput:   r.KeypadInput,
		RSSI:          r.RSSI,
	}
	if r.LastRFIDTag != nil {
		tag := iot.NormalizeTag(*r.LastRFIDTag)
		patch.LastRFIDTag = &tag
	}
	if r.DeviceIP != nil {
		ip := strings.TrimSpace(*r.DeviceIP)
		patch.DeviceIP = &ip
	}
	return patch
}

func respondReadings(c *gin.Context, readings []models.SensorReading) {
	if readings == nil {
		readings = []models.SensorReading{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "total": len(readings), "data": readings})
}

func (rs *RestfulServer) PostSensorData(c *gin.Context) {
	var req SensorReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed body: " + err.Error()})
		return
	}
	if issues := sensorReadingRequestSchema.Validate(&req); issues != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "validation failed", "error": issues})
		return
	}

	reading := req.toModel()
	if reading.DeviceIP == "" {
		reading.DeviceIP = c.ClientIP()
	}

	if !rs.CheckLimiter(reading.DeviceIP) {
		rejectLimited(c)
		return
	}

	saved, err := rs.Iot.Reading.SaveReading(reading)
	if err != nil {
		rs.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   "Sensor data saved successfully",
		"id":        saved.ID,
		"timestamp": saved.CreatedAt,
	})
}

func (rs *RestfulServer) GetAllSensorData(c *gin.Context) {
	readings, err := rs.Iot.Reading.ListReadings()
	if err != nil {
		rs.fail(c, err)
		return
	}
	respondReadings(c, readings)
}

func (rs *RestfulServer) GetSensorData(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	reading, err := rs.Iot.Reading.GetReading(id)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reading})
}

func (rs *RestfulServer) GetLatestReadings(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid limit"})
		return
	}

	readings, err := rs.Iot.Reading.LatestReadings(limit)
	if err != nil {
		rs.fail(c, err)
		return
	}
	respondReadings(c, readings)
}

func (rs *RestfulServer) GetReadingsByTag(c *gin.Context) {
	readings, err := rs.Iot.Reading.ReadingsByTag(iot.NormalizeTag(c.Param("rfidTag")))
	if err != nil {
		rs.fail(c, err)
		return
	}
	respondReadings(c, readings)
}

func (rs *RestfulServer) GetReadingsInRange(c *gin.Context) {
	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	readings, err := rs.Iot.Reading.ReadingsInRange(start, end)
	if err != nil {
		rs.fail(c, err)
		return
	}
	respondReadings(c, readings)
}

func (rs *RestfulServer) GetReadingsWithLight(c *gin.Context) {
	readings, err := rs.Iot.Reading.ReadingsWithLight()
	if err != nil {
		rs.fail(c, err)
		return
	}
	respondReadings(c, readings)
}

func queryThreshold(c *gin.Context, fallback float64) (float64, bool) {
	raw := c.Query("threshold")
	if raw == "" {
		return fallback, true
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid threshold"})
		return 0, false
	}
	return threshold, true
}

func (rs *RestfulServer) GetReadingsAboveTemperature(c *gin.Context) {
	threshold, ok := queryThreshold(c, defaultHighTemperature)
	if !ok {
		return
	}

	readings, err := rs.Iot.Reading.ReadingsAboveTemperature(threshold)
	if err != nil {
		rs.fail(c, err)
		return
	}
	respondReadings(c, readings)
}

func (rs *RestfulServer) GetReadingsBelowHumidity(c *gin.Context) {
	threshold, ok := queryThreshold(c, defaultLowHumidity)
	if !ok {
		return
	}

	readings, err := rs.Iot.Reading.ReadingsBelowHumidity(threshold)
	if err != nil {
		rs.fail(c, err)
		return
	}
	respondReadings(c, readings)
}

func (rs *RestfulServer) UpdateSensorData(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req SensorReadingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "malformed body: " + err.Error()})
		return
	}
	if issues := sensorReadingUpdateSchema.Validate(&req); issues != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "validation failed", "error": issues})
		return
	}

	updated, err := rs.Iot.Reading.UpdateReading(id, req.toPatch())
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Sensor data updated successfully", "data": updated})
}

func (rs *RestfulServer) DeleteSensorData(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := rs.Iot.Reading.DeleteReading(id); err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Sensor data deleted successfully"})
}

func (rs *RestfulServer) GetTotalRecords(c *gin.Context) {
	total, err := rs.Iot.Reading.CountReadings()
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": total})
}

func (rs *RestfulServer) GetDeviceCount(c *gin.Context) {
	ip := strings.TrimSpace(c.Query("ip"))
	if ip == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "ip is required"})
		return
	}

	total, err := rs.Iot.Reading.CountReadingsByDevice(ip)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": total})
}

func (rs *RestfulServer) GetMaxTemperature(c *gin.Context) {
	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	value, err := rs.Iot.Reading.MaxTemperature(start, end)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": value})
}

func (rs *RestfulServer) GetAverageHumidity(c *gin.Context) {
	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	value, err := rs.Iot.Reading.AverageHumidity(start, end)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": value})
}

func (rs *RestfulServer) GetRangeSummary(c *gin.Context) {
	start, end, err := parseDateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	summary, err := rs.Iot.Reading.RangeSummary(start, end)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

func (rs *RestfulServer) SensorHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "sensor data service is running",
		"timestamp": time.Now().UTC(),
	})
}
