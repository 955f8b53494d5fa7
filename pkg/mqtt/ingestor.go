package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
)

const (
	DefaultTopicPrefix = "telemetry"
	DefaultClientID    = "iot-access-telemetry"

	subjectReadings = "readings"
	subjectRFID     = "rfid"
	subjectReply    = "reply"

	qosAtLeastOnce = 1
	publishTimeout = 5 * time.Second
)

var (
	ErrUnknownTopic   = errors.New("topic not handled")
	ErrInvalidPayload = errors.New("invalid payload")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	Username    string
	Password    string
}

func ConfigFromEnv() Config {
	return Config{
		Broker:      common.GetEnv(common.EnvKeyIOTMqttBroker, ""),
		ClientID:    common.GetEnv(common.EnvKeyIOTMqttClientID, DefaultClientID),
		TopicPrefix: strings.Trim(common.GetEnv(common.EnvKeyIOTMqttTopicPrefix, DefaultTopicPrefix), "/"),
		Username:    common.GetEnv(common.EnvKeyIOTMqttUsername, ""),
		Password:    common.GetEnv(common.EnvKeyIOTMqttPassword, ""),
	}
}

func (c Config) Enabled() bool {
	return c.Broker != ""
}

// publisher is the slice of paho.Client the ingestor writes replies with.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) paho.Token
}

// Ingestor feeds broker traffic into the same services the REST and gRPC
// servers use. Devices publish to <prefix>/<device>/readings and
// <prefix>/<device>/rfid; access results go back on <prefix>/<device>/rfid/reply.
type Ingestor struct {
	cfg              Config
	iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore

	client paho.Client
	pub    publisher
}

func New(cfg Config, iotCore *iot.IOT) *Ingestor {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.ClientID == "" {
		cfg.ClientID = DefaultClientID
	}

	i := &Ingestor{cfg: cfg, iot: iotCore}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnectionLost = func(_ paho.Client, err error) {
		i.logger().Error("MQTT connection lost", zap.Error(err))
	}
	opts.OnConnect = func(c paho.Client) {
		filters := map[string]byte{
			i.ReadingsFilter(): qosAtLeastOnce,
			i.RFIDFilter():     qosAtLeastOnce,
		}
		i.logger().Info("MQTT connected, subscribing", zap.Any("topics", filters))
		if token := c.SubscribeMultiple(filters, i.onMessage); token.Wait() && token.Error() != nil {
			i.logger().Error("Failed to subscribe", zap.Error(token.Error()))
		}
	}

	i.client = paho.NewClient(opts)
	i.pub = i.client
	return i
}

func (i *Ingestor) logger() *zap.Logger {
	return common.GetLoggerWith(common.LoggerNameMqttIngestor)
}

func (i *Ingestor) ReadingsFilter() string {
	return i.cfg.TopicPrefix + "/+/" + subjectReadings
}

func (i *Ingestor) RFIDFilter() string {
	return i.cfg.TopicPrefix + "/+/" + subjectRFID
}

func (i *Ingestor) ReplyTopic(device string) string {
	return fmt.Sprintf("%s/%s/%s/%s", i.cfg.TopicPrefix, device, subjectRFID, subjectReply)
}

func (i *Ingestor) Start() error {
	i.logger().Info("Connecting to MQTT broker", zap.String("broker", i.cfg.Broker), zap.String("client_id", i.cfg.ClientID))
	if token := i.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (i *Ingestor) Stop() {
	if i.client != nil && i.client.IsConnected() {
		i.client.Disconnect(500)
	}
}

func (i *Ingestor) IsConnected() bool {
	return i.client != nil && i.client.IsConnected()
}

func (i *Ingestor) onMessage(_ paho.Client, m paho.Message) {
	if err := i.dispatch(m.Topic(), m.Payload()); err != nil {
		i.logger().Warn("Dropped MQTT message", zap.String("topic", m.Topic()), zap.Error(err))
	}
}

// dispatch routes one message by topic. <prefix>/<device>/<subject>
func (i *Ingestor) dispatch(topic string, payload []byte) error {
	rest, found := strings.CutPrefix(topic, i.cfg.TopicPrefix+"/")
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	device, subject := parts[0], parts[1]
	switch subject {
	case subjectReadings:
		return i.handleReading(device, payload)
	case subjectRFID:
		return i.handleAccess(device, payload)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}
}

type readingMessage struct {
	Timestamp     *int64   `json:"timestamp"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	LightDetected *bool    `json:"light_detected"`
	KeypadInput   *string  `json:"keypad_input"`
	LastRFIDTag   *string  `json:"last_rfid_tag"`
	DeviceIP      *string  `json:"device_ip"`
	RSSI          *int     `json:"rssi"`
}

var readingMessageSchema = z.Struct(z.Shape{
	"Timestamp":   z.Ptr(z.Int64().GT(0)).NotNil(),
	"Temperature": z.Ptr(z.Float64().GTE(-100).LTE(200)).NotNil(),
	"Humidity":    z.Ptr(z.Float64().GTE(0).LTE(100)).NotNil(),
	"KeypadInput": z.Ptr(z.String().Max(255)),
	"LastRFIDTag": z.Ptr(z.String().Max(20)),
	"DeviceIP":    z.Ptr(z.String().Max(20)),
})

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

func (i *Ingestor) handleReading(device string, payload []byte) error {
	var msg readingMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if issues := readingMessageSchema.Validate(&msg); issues != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, issues)
	}

	reading := &models.SensorReading{
		Timestamp:     *msg.Timestamp,
		Temperature:   *msg.Temperature,
		Humidity:      *msg.Humidity,
		LightDetected: valueOr(msg.LightDetected, false),
		KeypadInput:   valueOr(msg.KeypadInput, ""),
		LastRFIDTag:   iot.NormalizeTag(valueOr(msg.LastRFIDTag, "")),
		DeviceIP:      strings.TrimSpace(valueOr(msg.DeviceIP, "")),
		RSSI:          msg.RSSI,
	}
	if reading.DeviceIP == "" {
		reading.DeviceIP = device
	}

	if !i.RateLimiterStore.Allow(reading.DeviceIP) {
		return ErrRateLimited
	}

	saved, err := i.iot.Reading.SaveReading(reading)
	if err != nil {
		return err
	}
	i.logger().Debug("Stored MQTT reading", zap.String("device", device), zap.Uint("id", saved.ID))
	return nil
}

type accessMessage struct {
	RFIDTag   string `json:"rfid_tag"`
	PIN       string `json:"pin"`
	Action    string `json:"action"`
	OwnerName string `json:"owner_name"`
}

var accessMessageSchema = z.Struct(z.Shape{
	"RFIDTag":   z.String().Trim().Min(1).Max(20).Required(),
	"PIN":       z.String().Max(10),
	"Action":    z.String().OneOf([]string{"", string(models.AccessActionToggle), string(models.AccessActionVerifyPIN)}),
	"OwnerName": z.String().Max(100),
})

func (i *Ingestor) handleAccess(device string, payload []byte) error {
	var msg accessMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if issues := accessMessageSchema.Validate(&msg); issues != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, issues)
	}

	tag := iot.NormalizeTag(msg.RFIDTag)

	var result *models.AccessResult
	var err error
	if i.RateLimiterStore.Allow(tag) {
		result, err = i.iot.Access.Authenticate(&models.AccessRequest{
			RFIDTag:   tag,
			PIN:       msg.PIN,
			Action:    models.AccessAction(msg.Action),
			OwnerName: msg.OwnerName,
		})
	} else {
		err = ErrRateLimited
	}
	if err != nil {
		// the device still waits for an answer
		result = &models.AccessResult{Message: "Error: " + err.Error(), RFIDTag: tag}
	}

	if pubErr := i.reply(device, result); pubErr != nil {
		return errors.Join(err, pubErr)
	}
	return err
}

func (i *Ingestor) reply(device string, result *models.AccessResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	token := i.pub.Publish(i.ReplyTopic(device), qosAtLeastOnce, false, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", i.ReplyTopic(device))
	}
	return token.Error()
}
