package models

import "time"

type AccessAction string

const (
	AccessActionToggle    AccessAction = "toggle"
	AccessActionVerifyPIN AccessAction = "verify_pin"
)

const (
	GreetingEntry = "Hola"
	GreetingExit  = "Adios"
)

// SensorReading is one push from the device. CreatedAt is the server clock;
// Timestamp is whatever the device reported.
type SensorReading struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Timestamp     int64     `gorm:"not null" json:"timestamp"`
	Temperature   float64   `gorm:"not null" json:"temperature"`
	Humidity      float64   `gorm:"not null" json:"humidity"`
	LightDetected bool      `gorm:"not null;default:false;index" json:"light_detected"`
	KeypadInput   string    `gorm:"size:255" json:"keypad_input,omitempty"`
	LastRFIDTag   string    `gorm:"size:20;index" json:"last_rfid_tag,omitempty"`
	DeviceIP      string    `gorm:"size:20;index" json:"device_ip,omitempty"`
	RSSI          *int      `json:"rssi,omitempty"`
	CreatedAt     time.Time `gorm:"not null;index;autoCreateTime" json:"created_at"`
}

// SensorReadingPatch carries the fields an update may touch; nil means keep.
type SensorReadingPatch struct {
	Temperature   *float64
	Humidity      *float64
	LightDetected *bool
	KeypadInput   *string
	LastRFIDTag   *string
	DeviceIP      *string
	RSSI          *int
}

func (p SensorReadingPatch) IsEmpty() bool {
	return p.Temperature == nil && p.Humidity == nil && p.LightDetected == nil &&
		p.KeypadInput == nil && p.LastRFIDTag == nil && p.DeviceIP == nil && p.RSSI == nil
}

// RangeSummary aggregates readings whose CreatedAt falls in [Start, End].
// The pointer fields stay nil when Count is zero.
type RangeSummary struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Count          int64     `json:"count"`
	MinTemperature *float64  `json:"min_temperature"`
	MaxTemperature *float64  `json:"max_temperature"`
	AvgTemperature *float64  `json:"avg_temperature"`
	MinHumidity    *float64  `json:"min_humidity"`
	MaxHumidity    *float64  `json:"max_humidity"`
	AvgHumidity    *float64  `json:"avg_humidity"`
}

// RFIDAccess is the single row kept per physical tag.
type RFIDAccess struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RFIDTag      string    `gorm:"size:20;not null;uniqueIndex" json:"rfid_tag"`
	OwnerName    string    `gorm:"size:100" json:"owner_name,omitempty"`
	PINHash      string    `gorm:"size:72" json:"-"`
	AccessCount  int       `gorm:"not null;default:1" json:"access_count"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	LastAccessAt time.Time `json:"last_access_at"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (a *RFIDAccess) HasPIN() bool {
	return a.PINHash != ""
}

type AccessRequest struct {
	RFIDTag   string
	PIN       string
	Action    AccessAction
	OwnerName string
}

type AccessResult struct {
	Authenticated bool   `json:"authenticated"`
	New           bool   `json:"new"`
	Message       string `json:"message"`
	RFIDTag       string `json:"rfid_tag"`
}

const (
	AccessMessageRegistered  = "registered"
	AccessMessageGranted     = "access granted"
	AccessMessageInvalidPIN  = "invalid PIN"
	AccessMessageDeactivated = "deactivated"
	AccessMessageNotFound    = "card not found"
	AccessMessagePINChanged  = "PIN updated"
	AccessMessageWrongOldPIN = "old PIN incorrect"
)
