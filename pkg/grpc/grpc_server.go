package grpc

import (
	"golang.org/x/time/rate"

	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
)

type IOTServer struct {
	Iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore
	// JWTSecret guards PostLimiter; empty disables the check.
	JWTSecret string
}

var _ DeviceServiceServer = (*IOTServer)(nil)

func (i *IOTServer) CheckLimiter(key string) bool {
	return i.RateLimiterStore.Allow(key)
}

func (i *IOTServer) SetLimiter(key string, keyRate float64, keyBurst int) bool {
	if i.RateLimiterStore == nil {
		return false
	}
	i.RateLimiterStore.SetLimiter(key, rate.Limit(keyRate), keyBurst)
	return true
}
