package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
)

// LimitedMethod names a method to rate limit and the request field whose
// value picks the bucket.
type LimitedMethod struct {
	FullMethod string
	KeyField   string
}

// DefaultLimitedMethods limits readings per device and presentations per tag.
var DefaultLimitedMethods = []LimitedMethod{
	{FullMethod: MethodPostReading, KeyField: "device_ip"},
	{FullMethod: MethodAuthenticate, KeyField: "rfid_tag"},
}

func peerHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
		return host
	}
	return p.Addr.String()
}

func (i *IOTServer) CreateRateLimitInterceptor(targets []LimitedMethod) grpc.UnaryServerInterceptor {
	keyFields := common.Reducer(targets,
		func(m map[string]string, t LimitedMethod) map[string]string {
			m[t.FullMethod] = t.KeyField
			return m
		},
		map[string]string{},
	)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if field, ok := keyFields[info.FullMethod]; ok {
			if r, ok := req.(*structpb.Struct); ok {
				key := r.GetFields()[field].GetStringValue()
				if field == "rfid_tag" {
					key = iot.NormalizeTag(key)
				}
				if key == "" {
					key = peerHost(ctx)
				}
				if !i.CheckLimiter(key) {
					return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
				}
			}
		}

		return handler(ctx, req)
	}
}
