package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyIOTDBType      string = "IOT_DB_TYPE"
	EnvKeyIOTDbPath      string = "IOT_DB_PATH"
	EnvKeyIOTPostgresDSN string = "IOT_POSTGRES_DSN"

	EnvKeyIOTHttpHostPort string = "IOT_HTTP_HOST_PORT"
	EnvKeyIOTGrpcHostPort string = "IOT_GRPC_HOST_PORT"

	EnvKeyIOTDefaultRate  string = "IOT_DEFAULT_RATE"
	EnvKeyIOTDefaultBurst string = "IOT_DEFAULT_BURST"

	EnvKeyIOTJWTSecret string = "IOT_JWT_SECRET"

	EnvKeyIOTLogDir string = "IOT_LOG_DIR"

	EnvKeyIOTMqttBroker      string = "IOT_MQTT_BROKER"
	EnvKeyIOTMqttClientID    string = "IOT_MQTT_CLIENT_ID"
	EnvKeyIOTMqttTopicPrefix string = "IOT_MQTT_TOPIC_PREFIX"
	EnvKeyIOTMqttUsername    string = "IOT_MQTT_USERNAME"
	EnvKeyIOTMqttPassword    string = "IOT_MQTT_PASSWORD"

	LoggerNameIOTCore        string = "iot_core"
	LoggerNameRestfulServer  string = "restful_server"
	LoggerNameGrpcServer     string = "grpc_server"
	LoggerNameMqttIngestor   string = "mqtt_ingestor"
	LoggerFieldIOTCategory   string = "category"
	LoggerFieldRequestID     string = "request_id"
	LoggerCategoryIOTReading string = "reading"
	LoggerCategoryIOTAccess  string = "access"

	HeaderRequestID string = "X-Request-ID"
)
