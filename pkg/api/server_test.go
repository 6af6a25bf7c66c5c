package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
	"github.com/bobo-nums/robomaster/pkg/teleop"
)

func newTestServer() (*Server, *queue.Queue[robot.KeyEvent]) {
	logger := customlog.NewNop()
	keys := queue.New[robot.KeyEvent](10)
	state := teleop.NewVelocityState(0.2, 20)
	hub := teleop.NewHub(logger)

	server := NewServer(logger, hub, state, keys, map[string]QueueStats{
		"keys": keys,
	})
	return server, keys
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer()

	resp, err := server.app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestStatusEndpointReportsQueuesAndVelocity(t *testing.T) {
	server, keys := newTestServer()
	keys.TrySend(robot.KeyEvent{Key: robot.KeyForward, Down: true})

	resp, err := server.app.Test(httptest.NewRequest("GET", "/api/status", nil))
	if err != nil {
		t.Fatalf("Status request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read status body: %v", err)
	}

	var status struct {
		Workers map[string]string `json:"workers"`
		Queues  map[string]struct {
			Depth    int `json:"depth"`
			Capacity int `json:"capacity"`
		} `json:"queues"`
		Velocity teleop.VelocitySnapshot `json:"velocity"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("Failed to parse status body: %v", err)
	}

	q, ok := status.Queues["keys"]
	if !ok {
		t.Fatalf("Expected 'keys' queue in status, got %v", status.Queues)
	}
	if q.Depth != 1 || q.Capacity != 10 {
		t.Errorf("Expected depth 1 capacity 10, got depth %d capacity %d", q.Depth, q.Capacity)
	}

	if status.Velocity.Gear != 1 {
		t.Errorf("Expected initial gear 1, got %d", status.Velocity.Gear)
	}
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	server, _ := newTestServer()

	resp, err := server.app.Test(httptest.NewRequest("GET", "/ws/control", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 426 {
		t.Errorf("Expected status 426 for plain HTTP request, got %d", resp.StatusCode)
	}
}

func TestFrameHubDropsWhenClientLags(t *testing.T) {
	hub := NewFrameHub(customlog.NewNop())

	ch := make(chan []byte, 2)
	hub.mu.Lock()
	hub.clients["test"] = ch
	hub.mu.Unlock()

	for i := 0; i < 5; i++ {
		hub.Broadcast(robot.VideoFrame{Data: []byte{byte(i)}})
	}

	if len(ch) != 2 {
		t.Errorf("Expected 2 buffered frames after overflow, got %d", len(ch))
	}
	first := <-ch
	if first[0] != 0 {
		t.Errorf("Expected oldest frame first, got %d", first[0])
	}

	if hub.ClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount())
	}
}
