package teleop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
)

func TestVideoServiceForwardsFramesInOrder(t *testing.T) {
	frames := queue.New[robot.VideoFrame](10)

	var mu sync.Mutex
	var seen [][]byte
	sink := func(f robot.VideoFrame) {
		mu.Lock()
		seen = append(seen, f.Data)
		mu.Unlock()
	}

	v := NewVideoService(frames, sink, 10*time.Millisecond, log.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()

	frames.TrySend(robot.VideoFrame{Data: []byte{1}})
	frames.TrySend(robot.VideoFrame{Data: []byte{2}})
	frames.TrySend(robot.VideoFrame{Data: []byte{3}})

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected 3 frames, got %d", n)
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, f := range seen {
		if f[0] != byte(i+1) {
			t.Errorf("Frame %d out of order: %v", i, f)
		}
	}
}
