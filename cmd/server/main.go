package main

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/db"
	iotGrpc "liyu1981.xyz/iot-access-telemetry/pkg/grpc"
	iotHttp "liyu1981.xyz/iot-access-telemetry/pkg/http"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
	iotMqtt "liyu1981.xyz/iot-access-telemetry/pkg/mqtt"
)

func main() {
	var err error

	err = godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file, copy .env.example to .env first if in development")
	}

	iotDbType := common.GetEnv(common.EnvKeyIOTDBType, "file")
	dialector, ok := db.DialectorFor(iotDbType)
	if !ok {
		log.Fatal("Unknown IOT_DB_TYPE: " + iotDbType)
	}
	dbInstance := db.GetInstance(dialector)

	grpcHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyIOTGrpcHostPort))
	httpHostPort := strings.TrimSpace(os.Getenv(common.EnvKeyIOTHttpHostPort))
	jwtSecret := strings.TrimSpace(os.Getenv(common.EnvKeyIOTJWTSecret))

	var defaultRate float64
	var defaultBurst int64

	if defaultRate, err = strconv.ParseFloat(os.Getenv(common.EnvKeyIOTDefaultRate), 64); err != nil {
		log.Fatal("Invalid IOT_DEFAULT_RATE, or not set in .env, should be a float64 value")
	}

	if defaultBurst, err = strconv.ParseInt(os.Getenv(common.EnvKeyIOTDefaultBurst), 10, 64); err != nil {
		log.Fatal("Invalid IOT_DEFAULT_BURST, or not set in .env, should be an int value")
	}

	logger := common.GetLogger()
	defaultLimiter := zap.String("default_limiter",
		fmt.Sprintf("{\"default_rate\": %v, \"default_burst\": %v}", defaultRate, defaultBurst))

	if jwtSecret == "" {
		logger.Warn("IOT_JWT_SECRET not set, admin routes are open")
	}

	iotCore := iot.IOT{
		Db: *dbInstance,
	}
	iotCore.WithDefaultServices()

	if grpcHostPort != "" {
		logger.Info("Starting gRPC server on port " + grpcHostPort)
		go func() {
			iotGrpcServer := iotGrpc.IOTServer{
				Iot:              &iotCore,
				RateLimiterStore: iot.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
				JWTSecret:        jwtSecret,
			}
			interceptor := iotGrpcServer.CreateRateLimitInterceptor(iotGrpc.DefaultLimitedMethods)
			s := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
			iotGrpc.RegisterDeviceServiceServer(s, &iotGrpcServer)
			logger.Info("gRPC server created with:", defaultLimiter)

			listener, err := net.Listen("tcp", grpcHostPort)
			if err != nil {
				log.Fatalf("failed to listen: %v", err)
			}

			logger.Info("start gRPC server on " + grpcHostPort)
			if err := s.Serve(listener); err != nil {
				log.Fatalf("grpc server failed to serve: %v", err)
			}
		}()
	}

	mqttConfig := iotMqtt.ConfigFromEnv()
	if mqttConfig.Enabled() {
		ingestor := iotMqtt.New(mqttConfig, &iotCore)
		ingestor.RateLimiterStore = iot.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst))
		if err := ingestor.Start(); err != nil {
			log.Fatalf("mqtt ingestor failed to connect: %v", err)
		}
		defer ingestor.Stop()
		logger.Info("MQTT ingestor subscribed",
			zap.String("broker", mqttConfig.Broker),
			zap.Strings("topics", []string{ingestor.ReadingsFilter(), ingestor.RFIDFilter()}),
			defaultLimiter)
	}

	if httpHostPort == "" {
		// fallback to default http port
		httpHostPort = ":8080"
	}

	if common.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rs := &iotHttp.RestfulServer{
		Server:           gin.Default(),
		Iot:              &iotCore,
		RateLimiterStore: iot.NewRateLimiterStore(rate.Limit(defaultRate), int(defaultBurst)),
		JWTSecret:        jwtSecret,
	}
	rs.Setup()

	logger.Info("http server created with:", defaultLimiter, zap.String("db_type", iotDbType))

	logger.Info("Starting HTTP server on: " + httpHostPort)
	if err := rs.Server.Run(httpHostPort); err != nil {
		log.Fatalf("http server failed to serve: %v", err)
	}
}
