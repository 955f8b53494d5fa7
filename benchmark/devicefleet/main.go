package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	iotGrpc "liyu1981.xyz/iot-access-telemetry/pkg/grpc"
)

var maxDevices = flag.Int("devices", 1000, "number of simulated devices")
var httpHostPort = flag.String("http", "127.0.0.1:8080", "REST server host:port")
var grpcHostPort = flag.String("grpc", "127.0.0.1:10801", "gRPC server host:port")

var grpcClient *iotGrpc.DeviceServiceClient

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

var failures atomic.Int64

type device struct {
	ip  string
	tag string
	pin string
}

func main() {
	flag.Parse()

	devices := make([]device, *maxDevices)
	for i := range *maxDevices {
		id := uuid.New()
		devices[i] = device{
			ip:  fmt.Sprintf("10.%d.%d.%d", id[0], id[1], id[2]),
			tag: strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10]),
			pin: fmt.Sprintf("%04d", i%10000),
		}
	}
	fmt.Printf("generated %v devices\n", *maxDevices)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", *httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	conn, err := grpc.Dial(*grpcHostPort, grpc.WithInsecure())
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()
	grpcClient = iotGrpc.NewDeviceServiceClient(conn)

	fmt.Printf("gRPC client connected\n")

	run("registered tags", devices, 1, func(d device) { authenticate(d, "verify_pin") })
	run("did actions", devices, 3, doActions)

	fmt.Printf("failures: %v\n", failures.Load())
}

func run(label string, devices []device, actionsPerDevice int, fn func(device)) {
	startTime := time.Now()
	wg := sync.WaitGroup{}
	for _, d := range devices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(d)
		}()
	}
	wg.Wait()
	usedTime := time.Since(startTime)

	fmt.Printf(
		"\r%s for %v devices: used time=%v seconds, throughput=%v action/second\n",
		label, len(devices), usedTime.Seconds(), float64(len(devices)*actionsPerDevice)/usedTime.Seconds(),
	)
}

func flipCoin() bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100000)%2 == 0
}

func rndFloat64(min, max float64, decimal int) float64 {
	rndMu.Lock()
	val := min + rnd.Float64()*(max-min)
	rndMu.Unlock()
	multiplier := math.Pow10(decimal)
	return math.Round(val*multiplier) / multiplier
}

func fail(format string, args ...any) {
	failures.Add(1)
	fmt.Printf("\n"+format+"\n", args...)
}

func doActions(d device) {
	actions := []func(){
		func() { postReading(d) },
		func() { authenticate(d, "toggle") },
		func() { authenticate(d, "verify_pin") },
	}
	rndMu.Lock()
	rnd.Shuffle(len(actions), func(i, j int) { actions[i], actions[j] = actions[j], actions[i] })
	pause := time.Duration(100+rnd.Int31n(1000)) * time.Millisecond
	rndMu.Unlock()

	for _, action := range actions {
		action()
		time.Sleep(pause)
	}
}

func postReading(d device) {
	payload := map[string]any{
		"timestamp":      time.Now().UnixMilli(),
		"temperature":    rndFloat64(-10.0, 45.0, 2),
		"humidity":       rndFloat64(0.0, 100.0, 2),
		"light_detected": flipCoin(),
		"last_rfid_tag":  d.tag,
		"device_ip":      d.ip,
	}

	if flipCoin() {
		jsonData, _ := json.Marshal(payload)
		resp, err := http.Post(fmt.Sprintf("http://%s/api/sensor-data", *httpHostPort), "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			fail("error: %v", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			fail("reading rejected: %v", resp.Status)
		}
		return
	}

	// Struct numbers are doubles
	payload["timestamp"] = float64(payload["timestamp"].(int64))
	req, err := structpb.NewStruct(payload)
	if err != nil {
		fail("error: %v", err)
		return
	}
	resp, err := grpcClient.PostReading(context.Background(), req)
	if err != nil {
		fail("error: %v", err)
		return
	}
	if !resp.GetFields()["success"].GetBoolValue() {
		fail("response success = false: %v", resp)
	}
}

func authenticate(d device, action string) {
	payload := map[string]any{"rfid_tag": d.tag, "action": action}
	if action == "verify_pin" {
		payload["pin"] = d.pin
	}

	if flipCoin() {
		jsonData, _ := json.Marshal(payload)
		resp, err := http.Post(fmt.Sprintf("http://%s/api/rfid-auth", *httpHostPort), "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			fail("error: %v", err)
			return
		}
		defer resp.Body.Close()
		var result struct {
			Authenticated bool   `json:"authenticated"`
			Message       string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || resp.StatusCode != http.StatusOK {
			fail("auth rejected: %v %v", resp.Status, err)
			return
		}
		if action == "verify_pin" && !result.Authenticated {
			fail("pin not accepted for %s: %s", d.tag, result.Message)
		}
		return
	}

	req, err := structpb.NewStruct(payload)
	if err != nil {
		fail("error: %v", err)
		return
	}
	resp, err := grpcClient.Authenticate(context.Background(), req)
	if err != nil {
		fail("error: %v", err)
		return
	}
	if !resp.GetFields()["success"].GetBoolValue() {
		fail("response success = false: %v", resp)
	}
}
