package iot

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
)

const MaxLatestReadings = 100

const newestFirst = "created_at desc, id desc"

func (i *IOT) readingLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTReading),
	)
}

func (i *IOT) saveReading(input *models.SensorReading) (*models.SensorReading, error) {
	logger := i.readingLogger()

	if input.Timestamp <= 0 {
		return nil, fmt.Errorf("%w: timestamp", ErrMissingField)
	}

	reading := models.SensorReading{
		Timestamp:     input.Timestamp,
		Temperature:   input.Temperature,
		Humidity:      input.Humidity,
		LightDetected: input.LightDetected,
		KeypadInput:   input.KeypadInput,
		LastRFIDTag:   input.LastRFIDTag,
		DeviceIP:      input.DeviceIP,
		RSSI:          input.RSSI,
		CreatedAt:     input.CreatedAt,
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = i.now().UTC()
	}

	logger.Info("Received reading from device", zap.Reflect("reading", reading))

	if err := i.Db.Conn.Create(&reading).Error; err != nil {
		return nil, err
	}

	logger.Info("Saved reading", zap.Uint("id", reading.ID))

	return &reading, nil
}

func (i *IOT) getReading(id uint) (*models.SensorReading, error) {
	var reading models.SensorReading
	if err := i.Db.Conn.First(&reading, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &reading, nil
}

func (i *IOT) findReadings(scope func(*gorm.DB) *gorm.DB) ([]models.SensorReading, error) {
	readings := []models.SensorReading{}
	err := i.Db.Conn.
		Scopes(scope).
		Order(newestFirst).
		Find(&readings).Error
	return readings, err
}

func inRange(start, end time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("created_at BETWEEN ? AND ?", start.UTC(), end.UTC())
	}
}

func checkRange(start, end time.Time) error {
	if start.After(end) {
		return ErrInvalidRange
	}
	return nil
}

func (i *IOT) latestReadings(limit int) ([]models.SensorReading, error) {
	limit = common.Clamp(limit, 1, MaxLatestReadings)
	return i.findReadings(func(tx *gorm.DB) *gorm.DB { return tx.Limit(limit) })
}

func (i *IOT) readingsInRange(start, end time.Time) ([]models.SensorReading, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return i.findReadings(inRange(start, end))
}

func (i *IOT) updateReading(id uint, patch models.SensorReadingPatch) (*models.SensorReading, error) {
	logger := i.readingLogger()

	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	var reading models.SensorReading
	err := i.Db.Conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reading, id).Error; err != nil {
			return err
		}

		updates := map[string]any{}
		if patch.Temperature != nil {
			updates["temperature"] = *patch.Temperature
		}
		if patch.Humidity != nil {
			updates["humidity"] = *patch.Humidity
		}
		if patch.LightDetected != nil {
			updates["light_detected"] = *patch.LightDetected
		}
		if patch.KeypadInput != nil {
			updates["keypad_input"] = *patch.KeypadInput
		}
		if patch.LastRFIDTag != nil {
			updates["last_rfid_tag"] = NormalizeTag(*patch.LastRFIDTag)
		}
		if patch.DeviceIP != nil {
			updates["device_ip"] = strings.TrimSpace(*patch.DeviceIP)
		}
		if patch.RSSI != nil {
			updates["rssi"] = *patch.RSSI
		}

		if err := tx.Model(&reading).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&reading, id).Error
	})
	if err != nil {
		return nil, translateNotFound(err)
	}

	logger.Info("Updated reading", zap.Uint("id", id), zap.Reflect("reading", reading))

	return &reading, nil
}

func (i *IOT) deleteReading(id uint) error {
	result := i.Db.Conn.Delete(&models.SensorReading{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	i.readingLogger().Info("Deleted reading", zap.Uint("id", id))
	return nil
}

func (i *IOT) countReadings(scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var count int64
	err := i.Db.Conn.Model(&models.SensorReading{}).Scopes(scope).Count(&count).Error
	return count, err
}

func (i *IOT) aggregate(expr string, start, end time.Time) (*float64, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	var value sql.NullFloat64
	err := i.Db.Conn.
		Model(&models.SensorReading{}).
		Scopes(inRange(start, end)).
		Select(expr).
		Row().
		Scan(&value)
	if err != nil {
		return nil, err
	}
	if !value.Valid {
		return nil, nil
	}
	return &value.Float64, nil
}

type rangeAggregate struct {
	Count   int64
	MinTemp sql.NullFloat64
	MaxTemp sql.NullFloat64
	AvgTemp sql.NullFloat64
	MinHum  sql.NullFloat64
	MaxHum  sql.NullFloat64
	AvgHum  sql.NullFloat64
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func (i *IOT) rangeSummary(start, end time.Time) (*models.RangeSummary, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	var agg rangeAggregate
	err := i.Db.Conn.
		Model(&models.SensorReading{}).
		Scopes(inRange(start, end)).
		Select(`COUNT(*) AS count,
			MIN(temperature) AS min_temp, MAX(temperature) AS max_temp, AVG(temperature) AS avg_temp,
			MIN(humidity) AS min_hum, MAX(humidity) AS max_hum, AVG(humidity) AS avg_hum`).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	return &models.RangeSummary{
		Start:          start,
		End:            end,
		Count:          agg.Count,
		MinTemperature: nullable(agg.MinTemp),
		MaxTemperature: nullable(agg.MaxTemp),
		AvgTemperature: nullable(agg.AvgTemp),
		MinHumidity:    nullable(agg.MinHum),
		MaxHumidity:    nullable(agg.MaxHum),
		AvgHumidity:    nullable(agg.AvgHum),
	}, nil
}

type IReadingImpl struct {
	iot *IOT
}

func (ir *IReadingImpl) SaveReading(input *models.SensorReading) (*models.SensorReading, error) {
	return ir.iot.saveReading(input)
}

func (ir *IReadingImpl) GetReading(id uint) (*models.SensorReading, error) {
	return ir.iot.getReading(id)
}

func (ir *IReadingImpl) ListReadings() ([]models.SensorReading, error) {
	return ir.iot.findReadings(func(tx *gorm.DB) *gorm.DB { return tx })
}

func (ir *IReadingImpl) LatestReadings(limit int) ([]models.SensorReading, error) {
	return ir.iot.latestReadings(limit)
}

func (ir *IReadingImpl) ReadingsByTag(rfidTag string) ([]models.SensorReading, error) {
	return ir.iot.findReadings(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("last_rfid_tag = ?", rfidTag)
	})
}

func (ir *IReadingImpl) ReadingsInRange(start, end time.Time) ([]models.SensorReading, error) {
	return ir.iot.readingsInRange(start, end)
}

func (ir *IReadingImpl) ReadingsWithLight() ([]models.SensorReading, error) {
	return ir.iot.findReadings(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("light_detected = ?", true)
	})
}

func (ir *IReadingImpl) ReadingsAboveTemperature(threshold float64) ([]models.SensorReading, error) {
	return ir.iot.findReadings(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("temperature > ?", threshold)
	})
}

func (ir *IReadingImpl) ReadingsBelowHumidity(threshold float64) ([]models.SensorReading, error) {
	return ir.iot.findReadings(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("humidity < ?", threshold)
	})
}

func (ir *IReadingImpl) UpdateReading(id uint, patch models.SensorReadingPatch) (*models.SensorReading, error) {
	return ir.iot.updateReading(id, patch)
}

func (ir *IReadingImpl) DeleteReading(id uint) error {
	return ir.iot.deleteReading(id)
}

func (ir *IReadingImpl) CountReadings() (int64, error) {
	return ir.iot.countReadings(func(tx *gorm.DB) *gorm.DB { return tx })
}

func (ir *IReadingImpl) CountReadingsByDevice(deviceIP string) (int64, error) {
	return ir.iot.countReadings(func(tx *gorm.DB) *gorm.DB {
		return tx.Where("device_ip = ?", deviceIP)
	})
}

func (ir *IReadingImpl) MaxTemperature(start, end time.Time) (*float64, error) {
	return ir.iot.aggregate("MAX(temperature)", start, end)
}

func (ir *IReadingImpl) AverageHumidity(start, end time.Time) (*float64, error) {
	return ir.iot.aggregate("AVG(humidity)", start, end)
}

func (ir *IReadingImpl) RangeSummary(start, end time.Time) (*models.RangeSummary, error) {
	return ir.iot.rangeSummary(start, end)
}

func (i *IOT) GetIReading() IReading {
	return &IReadingImpl{iot: i}
}
