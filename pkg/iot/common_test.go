package iot

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"liyu1981.xyz/iot-access-telemetry/pkg/db"
	"liyu1981.xyz/iot-access-telemetry/pkg/iot/mocks"
)

func GetMockIOTWithMemorySqliteDialector(t *testing.T, useMockIReading, useMockIAccess bool) (
	*gomock.Controller,
	*IOT,
	*mocks.MockIReading,
	*mocks.MockIAccess,
) {
	ctrl := gomock.NewController(t)

	mockIReading := mocks.NewMockIReading(ctrl)
	mockIAccess := mocks.NewMockIAccess(ctrl)
	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	iotInstance := &IOT{Db: *dbInstance, PINCost: bcrypt.MinCost}

	readingService := iotInstance.GetIReading()
	if useMockIReading {
		readingService = mockIReading
	}

	accessService := iotInstance.GetIAccess()
	if useMockIAccess {
		accessService = mockIAccess
	}

	iotInstance.WithServices(ServiceOpts{
		Reading: readingService,
		Access:  accessService,
	})

	return ctrl, iotInstance, mockIReading, mockIAccess
}

// fixedWindow returns a one-hour window on a day no other test writes to,
// so range queries against the shared in-memory database stay isolated.
func fixedWindow(day int) (time.Time, time.Time) {
	start := time.Date(2001, time.January, day, 10, 0, 0, 0, time.UTC)
	return start, start.Add(time.Hour)
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
