package iot

import (
	"time"

	"liyu1981.xyz/iot-access-telemetry/pkg/db"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_iot.go -package=mocks . IReading,IAccess

type IReading interface {
	SaveReading(input *models.SensorReading) (*models.SensorReading, error)
	GetReading(id uint) (*models.SensorReading, error)
	ListReadings() ([]models.SensorReading, error)
	LatestReadings(limit int) ([]models.SensorReading, error)
	ReadingsByTag(rfidTag string) ([]models.SensorReading, error)
	ReadingsInRange(start, end time.Time) ([]models.SensorReading, error)
	ReadingsWithLight() ([]models.SensorReading, error)
	ReadingsAboveTemperature(threshold float64) ([]models.SensorReading, error)
	ReadingsBelowHumidity(threshold float64) ([]models.SensorReading, error)
	UpdateReading(id uint, patch models.SensorReadingPatch) (*models.SensorReading, error)
	DeleteReading(id uint) error
	CountReadings() (int64, error)
	CountReadingsByDevice(deviceIP string) (int64, error)
	MaxTemperature(start, end time.Time) (*float64, error)
	AverageHumidity(start, end time.Time) (*float64, error)
	RangeSummary(start, end time.Time) (*models.RangeSummary, error)
}

type IAccess interface {
	Authenticate(req *models.AccessRequest) (*models.AccessResult, error)
	ChangePIN(rfidTag, oldPIN, newPIN string) (*models.AccessResult, error)
	Deactivate(rfidTag string) (*models.AccessResult, error)
	GetAccess(rfidTag string) (*models.RFIDAccess, error)
}

type IOT struct {
	Db      db.DB
	Reading IReading
	Access  IAccess

	// Now is the clock used for access timestamps; nil means time.Now.
	Now func() time.Time
	// PINCost is the bcrypt cost for stored PINs; 0 means bcrypt.DefaultCost.
	PINCost int
}

type ServiceOpts struct {
	Reading IReading
	Access  IAccess
}

func (i *IOT) WithServices(opts ServiceOpts) *IOT {
	if opts.Reading != nil {
		i.Reading = opts.Reading
	}
	if opts.Access != nil {
		i.Access = opts.Access
	}
	return i
}

// WithDefaultServices wires the database backed implementations.
func (i *IOT) WithDefaultServices() *IOT {
	return i.WithServices(ServiceOpts{
		Reading: i.GetIReading(),
		Access:  i.GetIAccess(),
	})
}

func (i *IOT) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}
