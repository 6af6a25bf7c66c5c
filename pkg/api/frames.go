package api

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/robot"
)

const clientFrameBuffer = 8

// FrameHub fans decoded video frames out to connected websocket clients.
// A slow client drops frames rather than backing up the video worker.
type FrameHub struct {
	mu      sync.Mutex
	clients map[string]chan []byte
	logger  customlog.Logger
}

// NewFrameHub creates an empty frame hub.
func NewFrameHub(logger customlog.Logger) *FrameHub {
	return &FrameHub{
		clients: make(map[string]chan []byte),
		logger:  logger,
	}
}

// Broadcast delivers one frame to every client without blocking.
func (h *FrameHub) Broadcast(frame robot.VideoFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.clients {
		select {
		case ch <- frame.Data:
		default:
			h.logger.Debugf("video client %s lagging, dropping frame", id)
		}
	}
}

// ClientCount returns the number of connected video clients.
func (h *FrameHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// handleClient serves one video websocket connection until it closes.
func (h *FrameHub) handleClient(conn *websocket.Conn) {
	id := uuid.NewString()
	ch := make(chan []byte, clientFrameBuffer)

	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()

	h.logger.Infof("video websocket connected: %s (client %s)", conn.RemoteAddr(), id)

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
		h.logger.Infof("video websocket disconnected (client %s)", id)
	}()

	// Read pump exists only to observe the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case data := <-ch:
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				h.logger.Infof("video client %s write failed: %v", id, err)
				return
			}
		}
	}
}
