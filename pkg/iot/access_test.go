package iot

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"liyu1981.xyz/iot-access-telemetry/pkg/common"
	"liyu1981.xyz/iot-access-telemetry/pkg/models"
	_ "liyu1981.xyz/iot-access-telemetry/pkg/testing"
)

func present(t *testing.T, iotObj *IOT, req models.AccessRequest) *models.AccessResult {
	t.Helper()
	result, err := iotObj.Access.Authenticate(&req)
	require.NoError(t, err)
	return result
}

func TestGreetingFor(t *testing.T) {
	assert.Equal(t, "Hola", GreetingFor(1))
	assert.Equal(t, "Adios", GreetingFor(2))
	assert.Equal(t, "Hola", GreetingFor(3))
	assert.Equal(t, "Adios", GreetingFor(100))
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "1A2B3C4D", NormalizeTag(" 1a2b3c4d\n"))
	assert.Equal(t, "", NormalizeTag("   "))
}

func TestToggle_AlternatesGreeting(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	tag := newTag()

	first := present(t, iotObj, models.AccessRequest{RFIDTag: tag})
	assert.Equal(t, &models.AccessResult{Authenticated: true, New: true, Message: "Hola", RFIDTag: tag}, first)

	expected := []string{"Adios", "Hola", "Adios"}
	for _, greeting := range expected {
		result := present(t, iotObj, models.AccessRequest{RFIDTag: tag, Action: models.AccessActionToggle})
		assert.True(t, result.Authenticated)
		assert.False(t, result.New)
		assert.Equal(t, greeting, result.Message)
	}

	access, err := iotObj.Access.GetAccess(tag)
	require.NoError(t, err)
	assert.Equal(t, 4, access.AccessCount)
	assert.True(t, access.Active)
	assert.False(t, access.HasPIN())
}

func TestToggle_NormalizesTagAndKeepsOwner(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	tag := newTag()

	present(t, iotObj, models.AccessRequest{RFIDTag: " " + tag + " ", OwnerName: "Ana"})
	second := present(t, iotObj, models.AccessRequest{RFIDTag: tag})
	assert.Equal(t, "Adios", second.Message)

	access, err := iotObj.Access.GetAccess(tag)
	require.NoError(t, err)
	assert.Equal(t, "Ana", access.OwnerName)
}

func TestToggle_ConcurrentPresentationsAreAllCounted(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	const presentations = 20
	tag := newTag()

	var wg sync.WaitGroup
	results := make(chan *models.AccessResult, presentations)
	errs := make(chan error, presentations)
	for range presentations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := iotObj.Access.Authenticate(&models.AccessRequest{RFIDTag: tag})
			if err != nil {
				errs <- err
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Errorf("presentation failed: %v", err)
	}

	created := 0
	greetings := map[string]int{}
	for result := range results {
		assert.True(t, result.Authenticated)
		if result.New {
			created++
		}
		greetings[result.Message]++
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, presentations/2, greetings["Hola"])
	assert.Equal(t, presentations/2, greetings["Adios"])

	access, err := iotObj.Access.GetAccess(tag)
	require.NoError(t, err)
	assert.Equal(t, presentations, access.AccessCount)
}

func TestToggle_RefreshesLastAccess(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	clock := time.Date(2030, time.March, 1, 8, 0, 0, 0, time.UTC)
	iotObj.Now = func() time.Time { return clock }

	tag := newTag()
	present(t, iotObj, models.AccessRequest{RFIDTag: tag})

	clock = clock.Add(9 * time.Hour)
	present(t, iotObj, models.AccessRequest{RFIDTag: tag})

	access, err := iotObj.Access.GetAccess(tag)
	require.NoError(t, err)
	assert.True(t, clock.Equal(access.LastAccessAt), "expected %v, got %v", clock, access.LastAccessAt)
}

func TestVerifyPIN_RegisterThenAuthenticate(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	tag := newTag()

	registered := present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "1234", Action: models.AccessActionVerifyPIN})
	assert.Equal(t, &models.AccessResult{Authenticated: true, New: true, Message: "registered", RFIDTag: tag}, registered)

	granted := present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "1234", Action: models.AccessActionVerifyPIN})
	assert.True(t, granted.Authenticated)
	assert.False(t, granted.New)
	assert.Equal(t, models.AccessMessageGranted, granted.Message)

	rejected := present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "9999", Action: models.AccessActionVerifyPIN})
	assert.False(t, rejected.Authenticated)
	assert.Equal(t, models.AccessMessageInvalidPIN, rejected.Message)

	// a wrong PIN does not count as a presentation, and there is no lockout
	access, err := iotObj.Access.GetAccess(tag)
	require.NoError(t, err)
	assert.Equal(t, 2, access.AccessCount)
	assert.NotEqual(t, "1234", access.PINHash)

	again := present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "1234", Action: models.AccessActionVerifyPIN})
	assert.True(t, again.Authenticated)
}

func TestVerifyPIN_AssignsFirstPINToToggleTag(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	tag := newTag()
	present(t, iotObj, models.AccessRequest{RFIDTag: tag})

	result := present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "4321", Action: models.AccessActionVerifyPIN})
	assert.Equal(t, &models.AccessResult{Authenticated: true, Message: "registered", RFIDTag: tag}, result)

	access, err := iotObj.Access.GetAccess(tag)
	require.NoError(t, err)
	assert.True(t, access.HasPIN())
}

func TestAuthenticate_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	_, err := iotObj.Access.Authenticate(&models.AccessRequest{RFIDTag: "  "})
	assert.ErrorIs(t, err, ErrInvalidTag)

	_, err = iotObj.Access.Authenticate(&models.AccessRequest{RFIDTag: newTag(), Action: models.AccessActionVerifyPIN})
	assert.ErrorIs(t, err, ErrMissingPIN)

	_, err = iotObj.Access.GetAccess(newTag())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeactivate_BlocksBothFlows(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	tag := newTag()
	present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "1111", Action: models.AccessActionVerifyPIN})

	result, err := iotObj.Access.Deactivate(tag)
	require.NoError(t, err)
	assert.Equal(t, &models.AccessResult{Message: "deactivated", RFIDTag: tag}, result)

	toggle := present(t, iotObj, models.AccessRequest{RFIDTag: tag})
	assert.False(t, toggle.Authenticated)
	assert.Equal(t, models.AccessMessageDeactivated, toggle.Message)

	pin := present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "1111", Action: models.AccessActionVerifyPIN})
	assert.False(t, pin.Authenticated)
	assert.Equal(t, models.AccessMessageDeactivated, pin.Message)

	changed, err := iotObj.Access.ChangePIN(tag, "1111", "2222")
	require.NoError(t, err)
	assert.False(t, changed.Authenticated)

	access, err := iotObj.Access.GetAccess(tag)
	require.NoError(t, err)
	assert.False(t, access.Active)
	assert.Equal(t, 1, access.AccessCount)

	unknown, err := iotObj.Access.Deactivate(newTag())
	require.NoError(t, err)
	assert.Equal(t, models.AccessMessageNotFound, unknown.Message)
}

func TestChangePIN(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	tag := newTag()
	present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "1234", Action: models.AccessActionVerifyPIN})

	wrong, err := iotObj.Access.ChangePIN(tag, "0000", "5678")
	require.NoError(t, err)
	assert.Equal(t, &models.AccessResult{Message: "old PIN incorrect", RFIDTag: tag}, wrong)

	ok, err := iotObj.Access.ChangePIN(tag, "1234", "5678")
	require.NoError(t, err)
	assert.Equal(t, &models.AccessResult{Authenticated: true, Message: "PIN updated", RFIDTag: tag}, ok)

	oldPIN := present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "1234", Action: models.AccessActionVerifyPIN})
	assert.False(t, oldPIN.Authenticated)

	newPIN := present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "5678", Action: models.AccessActionVerifyPIN})
	assert.True(t, newPIN.Authenticated)
}

func TestChangePIN_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	unknown, err := iotObj.Access.ChangePIN(newTag(), "1", "2")
	require.NoError(t, err)
	assert.Equal(t, models.AccessMessageNotFound, unknown.Message)

	_, err = iotObj.Access.ChangePIN(newTag(), "1", "")
	assert.ErrorIs(t, err, ErrMissingPIN)

	_, err = iotObj.Access.ChangePIN("", "1", "2")
	assert.ErrorIs(t, err, ErrInvalidTag)

	// a toggle-only tag has no PIN yet, so an empty old PIN sets the first one
	tag := newTag()
	present(t, iotObj, models.AccessRequest{RFIDTag: tag})
	first, err := iotObj.Access.ChangePIN(tag, "", "2468")
	require.NoError(t, err)
	assert.True(t, first.Authenticated)
}

func TestAuthenticate_WithLog(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	ctrl, iotObj, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false)
	defer ctrl.Finish()

	tag := newTag()
	present(t, iotObj, models.AccessRequest{RFIDTag: tag, PIN: "8080", Action: models.AccessActionVerifyPIN})

	found := false
	for _, log := range ParseLogs(buf) {
		lobj := log.(map[string]any)
		if lobj["category"] == "access" &&
			lobj["msg"] == "Tag presentation handled" &&
			lobj["result"].(map[string]any)["rfid_tag"] == tag {
			found = true
		}
		// PINs never reach the logs
		assert.NotContains(t, lobj, "pin")
	}
	assert.True(t, found, "log not found")
}
