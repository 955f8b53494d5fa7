package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/db"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot/mocks"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
	_ "liyu1981.xyz/iot-access-telemetry/pkg/testing"
)

type fakeToken struct {
	err  error
	done chan struct{}
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
	err      error
}

func (p *fakePublisher) Publish(topic string, qos byte, _ bool, payload any) paho.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return newFakeToken(p.err)
}

func (p *fakePublisher) last(t *testing.T) (string, models.AccessResult) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.messages)
	msg := p.messages[len(p.messages)-1]
	var result models.AccessResult
	require.NoError(t, json.Unmarshal(msg.payload, &result))
	return msg.topic, result
}

func newTestIngestor(t *testing.T, useMockIReading, useMockIAccess bool) (
	*Ingestor,
	*fakePublisher,
	*mocks.MockIReading,
	*mocks.MockIAccess,
) {
	ctrl := gomock.NewController(t)
	mockIReading := mocks.NewMockIReading(ctrl)
	mockIAccess := mocks.NewMockIAccess(ctrl)

	iotCore := &iot.IOT{
		Db:      *db.GetInstance(db.UseMemorySqliteDialector()),
		PINCost: bcrypt.MinCost,
	}
	iotCore.WithDefaultServices()
	if useMockIReading {
		iotCore.Reading = mockIReading
	}
	if useMockIAccess {
		iotCore.Access = mockIAccess
	}

	ingestor := New(Config{Broker: "tcp://127.0.0.1:1883", TopicPrefix: "site"}, iotCore)
	pub := &fakePublisher{}
	ingestor.pub = pub
	return ingestor, pub, mockIReading, mockIAccess
}

func newTag() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func newDevice() string {
	return "node-" + uuid.NewString()[:8]
}

func TestNew_ConfiguresClientWithoutConnecting(t *testing.T) {
	common.SetTestLoggerNop()

	ingestor := New(Config{Broker: "tcp://broker:1883", Username: "dev", Password: "pw"}, &iot.IOT{})
	assert.False(t, ingestor.IsConnected())

	opts := ingestor.client.OptionsReader()
	assert.Equal(t, DefaultClientID, opts.ClientID())
	assert.Equal(t, "dev", opts.Username())
	require.Len(t, opts.Servers(), 1)
	assert.Equal(t, "broker:1883", opts.Servers()[0].Host)

	assert.Equal(t, "telemetry/+/readings", ingestor.ReadingsFilter())
	assert.Equal(t, "telemetry/+/rfid", ingestor.RFIDFilter())
	assert.Equal(t, "telemetry/door-1/rfid/reply", ingestor.ReplyTopic("door-1"))

	// safe to stop a client that never connected
	ingestor.Stop()
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(common.EnvKeyIOTMqttBroker, "tcp://mqtt:1883")
	t.Setenv(common.EnvKeyIOTMqttTopicPrefix, "/campus/")
	t.Setenv(common.EnvKeyIOTMqttClientID, "")

	cfg := ConfigFromEnv()
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "campus", cfg.TopicPrefix)
	assert.Equal(t, DefaultClientID, cfg.ClientID)

	assert.False(t, Config{}.Enabled())
}

func TestDispatch_Reading(t *testing.T) {
	common.SetTestLoggerNop()

	ingestor, _, _, _ := newTestIngestor(t, false, false)
	device := newDevice()
	tag := newTag()

	payload := fmt.Sprintf(`{"timestamp": %d, "temperature": 19.5, "humidity": 40, "last_rfid_tag": "%s", "rssi": -55}`,
		time.Now().UnixMilli(), strings.ToLower(tag))
	require.NoError(t, ingestor.dispatch("site/"+device+"/readings", []byte(payload)))

	// the topic names the device when the payload does not
	count, err := ingestor.iot.Reading.CountReadingsByDevice(device)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	readings, err := ingestor.iot.Reading.ReadingsByTag(tag)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, 19.5, readings[0].Temperature)
	require.NotNil(t, readings[0].RSSI)
	assert.Equal(t, -55, *readings[0].RSSI)
}

func TestDispatch_ReadingKeepsPayloadDeviceIP(t *testing.T) {
	common.SetTestLoggerNop()

	ingestor, _, mockIReading, _ := newTestIngestor(t, true, false)

	mockIReading.EXPECT().
		SaveReading(gomock.Any()).
		DoAndReturn(func(r *models.SensorReading) (*models.SensorReading, error) {
			assert.Equal(t, "192.168.4.20", r.DeviceIP)
			return r, nil
		}).
		Times(1)

	payload := `{"timestamp": 1700000000000, "temperature": 21, "humidity": 33, "device_ip": "192.168.4.20"}`
	require.NoError(t, ingestor.dispatch("site/esp32/readings", []byte(payload)))
}

func TestDispatch_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	ingestor, pub, mockIReading, _ := newTestIngestor(t, true, false)
	mockIReading.EXPECT().SaveReading(gomock.Any()).Times(0)

	for _, topic := range []string{
		"other/dev/readings",
		"site/dev",
		"site//readings",
		"site/dev/readings/extra",
		"site/dev/status",
	} {
		err := ingestor.dispatch(topic, []byte(`{}`))
		assert.ErrorIs(t, err, ErrUnknownTopic, topic)
	}

	for _, payload := range []string{
		`not json`,
		`{}`,
		`{"timestamp": 1, "temperature": 20}`,
		`{"timestamp": 1, "temperature": 20, "humidity": 101}`,
	} {
		err := ingestor.dispatch("site/dev/readings", []byte(payload))
		assert.ErrorIs(t, err, ErrInvalidPayload, payload)
	}

	err := ingestor.dispatch("site/dev/rfid", []byte(`{"pin": "1234"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Empty(t, pub.messages)
}

func TestDispatch_RFIDRepliesOnDeviceTopic(t *testing.T) {
	common.SetTestLoggerNop()

	ingestor, pub, _, _ := newTestIngestor(t, false, false)
	device := newDevice()
	tag := newTag()

	require.NoError(t, ingestor.dispatch("site/"+device+"/rfid", []byte(`{"rfid_tag": "`+tag+`"}`)))
	topic, result := pub.last(t)
	assert.Equal(t, "site/"+device+"/rfid/reply", topic)
	assert.Equal(t, models.AccessResult{Authenticated: true, New: true, Message: "Hola", RFIDTag: tag}, result)
	assert.Equal(t, byte(1), pub.messages[0].qos)

	require.NoError(t, ingestor.dispatch("site/"+device+"/rfid", []byte(`{"rfid_tag": "`+tag+`", "action": "toggle"}`)))
	_, result = pub.last(t)
	assert.Equal(t, "Adios", result.Message)

	// service errors are still answered so the device does not hang
	err := ingestor.dispatch("site/"+device+"/rfid", []byte(`{"rfid_tag": "`+newTag()+`", "action": "verify_pin"}`))
	assert.ErrorIs(t, err, iot.ErrMissingPIN)
	_, result = pub.last(t)
	assert.False(t, result.Authenticated)
	assert.True(t, strings.HasPrefix(result.Message, "Error: "))
}

func TestDispatch_RFIDPublishFailure(t *testing.T) {
	common.SetTestLoggerNop()

	ingestor, pub, _, mockIAccess := newTestIngestor(t, false, true)
	pub.err = errors.New("broker gone")

	tag := newTag()
	mockIAccess.EXPECT().
		Authenticate(gomock.Eq(&models.AccessRequest{RFIDTag: tag, Action: models.AccessActionToggle})).
		Return(&models.AccessResult{Authenticated: true, Message: "Hola", RFIDTag: tag}, nil).
		Times(1)

	err := ingestor.dispatch("site/door/rfid", []byte(`{"rfid_tag": "`+tag+`", "action": "toggle"}`))
	assert.ErrorContains(t, err, "broker gone")
}

func TestDispatch_RateLimited(t *testing.T) {
	common.SetTestLoggerNop()

	ingestor, pub, _, _ := newTestIngestor(t, false, false)
	ingestor.RateLimiterStore = iot.NewRateLimiterStore(0, 1)

	device := newDevice()
	payload := []byte(fmt.Sprintf(`{"timestamp": %d, "temperature": 20, "humidity": 50}`, time.Now().UnixMilli()))
	require.NoError(t, ingestor.dispatch("site/"+device+"/readings", payload))
	assert.ErrorIs(t, ingestor.dispatch("site/"+device+"/readings", payload), ErrRateLimited)

	tag := newTag()
	require.NoError(t, ingestor.dispatch("site/"+device+"/rfid", []byte(`{"rfid_tag": "`+tag+`"}`)))
	assert.ErrorIs(t, ingestor.dispatch("site/"+device+"/rfid", []byte(`{"rfid_tag": "`+tag+`"}`)), ErrRateLimited)

	// a limited presentation is still answered
	assert.Len(t, pub.messages, 2)
	topic, result := pub.last(t)
	assert.Equal(t, "site/"+device+"/rfid/reply", topic)
	assert.Equal(t, models.AccessResult{Message: "Error: rate limit exceeded", RFIDTag: tag}, result)

	access, err := ingestor.iot.Access.GetAccess(tag)
	require.NoError(t, err)
	assert.Equal(t, 1, access.AccessCount)
}

func TestDispatch_RateLimitedReplyFailure(t *testing.T) {
	common.SetTestLoggerNop()

	ingestor, pub, _, mockIAccess := newTestIngestor(t, false, true)
	ingestor.RateLimiterStore = iot.NewRateLimiterStore(0, 0)
	pub.err = errors.New("broker gone")
	mockIAccess.EXPECT().Authenticate(gomock.Any()).Times(0)

	err := ingestor.dispatch("site/door/rfid", []byte(`{"rfid_tag": "`+newTag()+`"}`))
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.ErrorContains(t, err, "broker gone")
}
