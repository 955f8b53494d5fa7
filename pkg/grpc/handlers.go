package grpc

import (
	"context"
	"fmt"
	"math"
	"strings"

	z "github.com/Oudwins/zog"
	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"liyu1981.xyz/iot-access-telemetry/pkg/auth"
	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
)

func grpcLogger() *zap.Logger {
	return common.GetLoggerWith(common.LoggerNameGrpcServer)
}

func numberField(s *structpb.Struct, name string) *float64 {
	if v, ok := s.GetFields()[name].GetKind().(*structpb.Value_NumberValue); ok {
		n := v.NumberValue
		return &n
	}
	return nil
}

func stringField(s *structpb.Struct, name string) *string {
	if v, ok := s.GetFields()[name].GetKind().(*structpb.Value_StringValue); ok {
		str := v.StringValue
		return &str
	}
	return nil
}

func boolField(s *structpb.Struct, name string) *bool {
	if v, ok := s.GetFields()[name].GetKind().(*structpb.Value_BoolValue); ok {
		b := v.BoolValue
		return &b
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func reply(fields map[string]any) (*structpb.Struct, error) {
	return structpb.NewStruct(fields)
}

func failure(message string) (*structpb.Struct, error) {
	return reply(map[string]any{"success": false, "message": message})
}

// maxExactInteger is the largest magnitude a float64 holds without losing
// integer precision.
const maxExactInteger = 1 << 53

func isWholeNumber(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) <= maxExactInteger
}

// Struct numbers are doubles, so the device clock arrives as float64.
type readingPayload struct {
	Timestamp     *float64
	Temperature   *float64
	Humidity      *float64
	LightDetected *bool
	KeypadInput   *string
	LastRFIDTag   *string
	DeviceIP      *string
	RSSI          *float64
}

var readingPayloadSchema = z.Struct(z.Shape{
	"Timestamp":   z.Ptr(z.Float64().GT(0)).NotNil(),
	"Temperature": z.Ptr(z.Float64().GTE(-100).LTE(200)).NotNil(),
	"Humidity":    z.Ptr(z.Float64().GTE(0).LTE(100)).NotNil(),
	"KeypadInput": z.Ptr(z.String().Max(255)),
	"LastRFIDTag": z.Ptr(z.String().Max(20)),
	"DeviceIP":    z.Ptr(z.String().Max(20)),
})

func readingPayloadFrom(req *structpb.Struct) readingPayload {
	return readingPayload{
		Timestamp:     numberField(req, "timestamp"),
		Temperature:   numberField(req, "temperature"),
		Humidity:      numberField(req, "humidity"),
		LightDetected: boolField(req, "light_detected"),
		KeypadInput:   stringField(req, "keypad_input"),
		LastRFIDTag:   stringField(req, "last_rfid_tag"),
		DeviceIP:      stringField(req, "device_ip"),
		RSSI:          numberField(req, "rssi"),
	}
}

func (p readingPayload) toModel() *models.SensorReading {
	reading := &models.SensorReading{
		Timestamp:     int64(*p.Timestamp),
		Temperature:   *p.Temperature,
		Humidity:      *p.Humidity,
		LightDetected: deref(p.LightDetected),
		KeypadInput:   deref(p.KeypadInput),
		LastRFIDTag:   iot.NormalizeTag(deref(p.LastRFIDTag)),
		DeviceIP:      strings.TrimSpace(deref(p.DeviceIP)),
	}
	if p.RSSI != nil {
		rssi := int(*p.RSSI)
		reading.RSSI = &rssi
	}
	return reading
}

func (s *IOTServer) PostReading(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	payload := readingPayloadFrom(req)
	if issues := readingPayloadSchema.Validate(&payload); issues != nil {
		return failure(fmt.Sprintf("validation error: %v", issues))
	}
	if !isWholeNumber(*payload.Timestamp) {
		return failure(fmt.Sprintf("validation error: timestamp %v is not a whole number of milliseconds", *payload.Timestamp))
	}
	if payload.RSSI != nil && !isWholeNumber(*payload.RSSI) {
		return failure(fmt.Sprintf("validation error: rssi %v is not a whole number", *payload.RSSI))
	}

	reading := payload.toModel()
	if reading.DeviceIP == "" {
		reading.DeviceIP = peerHost(ctx)
	}

	saved, err := s.Iot.Reading.SaveReading(reading)
	if err != nil {
		grpcLogger().Error("PostReading failed", zap.Error(err))
		return failure(err.Error())
	}

	return reply(map[string]any{
		"success": true,
		"message": "OK",
		"id":      saved.ID,
	})
}

type accessPayload struct {
	RFIDTag   string
	PIN       string
	Action    string
	OwnerName string
}

var accessPayloadSchema = z.Struct(z.Shape{
	"RFIDTag":   z.String().Trim().Min(1).Max(20).Required(),
	"PIN":       z.String().Max(10),
	"Action":    z.String().OneOf([]string{"", string(models.AccessActionToggle), string(models.AccessActionVerifyPIN)}),
	"OwnerName": z.String().Max(100),
})

func (s *IOTServer) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	payload := accessPayload{
		RFIDTag:   deref(stringField(req, "rfid_tag")),
		PIN:       deref(stringField(req, "pin")),
		Action:    deref(stringField(req, "action")),
		OwnerName: deref(stringField(req, "owner_name")),
	}
	if issues := accessPayloadSchema.Validate(&payload); issues != nil {
		return reply(map[string]any{
			"success":       false,
			"authenticated": false,
			"new":           false,
			"message":       fmt.Sprintf("validation error: %v", issues),
			"rfid_tag":      iot.NormalizeTag(payload.RFIDTag),
		})
	}

	result, err := s.Iot.Access.Authenticate(&models.AccessRequest{
		RFIDTag:   payload.RFIDTag,
		PIN:       payload.PIN,
		Action:    models.AccessAction(payload.Action),
		OwnerName: payload.OwnerName,
	})
	if err != nil {
		return reply(map[string]any{
			"success":       false,
			"authenticated": false,
			"new":           false,
			"message":       "Error: " + err.Error(),
			"rfid_tag":      iot.NormalizeTag(payload.RFIDTag),
		})
	}

	return reply(map[string]any{
		"success":       true,
		"authenticated": result.Authenticated,
		"new":           result.New,
		"message":       result.Message,
		"rfid_tag":      result.RFIDTag,
	})
}

func (s *IOTServer) authorizeAdmin(ctx context.Context) error {
	if s.JWTSecret == "" {
		return nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return auth.ErrNoToken
	}
	token, err := auth.BearerToken(values[0])
	if err != nil {
		return err
	}
	_, err = auth.ParseAdminToken(s.JWTSecret, token)
	return err
}

type limiterPayload struct {
	Key   string
	Rate  *float64
	Burst *float64
}

var limiterPayloadSchema = z.Struct(z.Shape{
	"Key":   z.String().Trim().Min(1).Required(),
	"Rate":  z.Ptr(z.Float64().GTE(0)).NotNil(),
	"Burst": z.Ptr(z.Float64().GTE(1)).NotNil(),
})

func (s *IOTServer) PostLimiter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.authorizeAdmin(ctx); err != nil {
		grpcLogger().Warn("PostLimiter rejected", zap.Error(err))
		return failure("unauthorized: " + err.Error())
	}

	payload := limiterPayload{
		Key:   deref(stringField(req, "key")),
		Rate:  numberField(req, "rate"),
		Burst: numberField(req, "burst"),
	}
	if issues := limiterPayloadSchema.Validate(&payload); issues != nil {
		return failure(fmt.Sprintf("validation error: %v", issues))
	}

	if !s.SetLimiter(payload.Key, *payload.Rate, int(*payload.Burst)) {
		return failure("RateLimiterStore is not used. No effect.")
	}
	return reply(map[string]any{"success": true, "message": "OK"})
}
