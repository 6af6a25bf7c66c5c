package api

import (
	"context"
	"fmt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
	"github.com/bobo-nums/robomaster/pkg/teleop"
)

// QueueStats exposes queue depth for the status endpoint.
type QueueStats interface {
	Len() int
	Cap() int
}

// Server is the operator-facing HTTP surface: health and status endpoints,
// the control websocket that acts as the keyboard device, and the video
// websocket that receives decoded frames.
type Server struct {
	app      *fiber.App
	logger   customlog.Logger
	hub      *teleop.Hub
	state    *teleop.VelocityState
	keys     *queue.Queue[robot.KeyEvent]
	queues   map[string]QueueStats
	frameHub *FrameHub
}

// NewServer builds the fiber app and its routes.
func NewServer(
	logger customlog.Logger,
	hub *teleop.Hub,
	state *teleop.VelocityState,
	keys *queue.Queue[robot.KeyEvent],
	queues map[string]QueueStats,
) *Server {
	s := &Server{
		logger:   logger,
		hub:      hub,
		state:    state,
		keys:     keys,
		queues:   queues,
		frameHub: NewFrameHub(logger),
	}

	app := fiber.New(fiber.Config{
		AppName:      "RoboMaster Teleop",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "robomaster teleop controller",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/control", websocket.New(func(conn *websocket.Conn) {
		ControlSocketHandler(conn, s.logger, s.keys)
	}))
	app.Get("/ws/video", websocket.New(s.frameHub.handleClient))

	s.app = app
	return s
}

// handleStatus reports worker states, queue depths, and the current
// velocity snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	queues := make(map[string]fiber.Map, len(s.queues))
	for name, q := range s.queues {
		queues[name] = fiber.Map{"depth": q.Len(), "capacity": q.Cap()}
	}

	return c.JSON(fiber.Map{
		"workers":  s.hub.WorkerStates(),
		"queues":   queues,
		"velocity": s.state.Snapshot(),
	})
}

// BroadcastFrame forwards one decoded video frame to every connected
// video websocket client. It satisfies teleop.FrameSink.
func (s *Server) BroadcastFrame(frame robot.VideoFrame) {
	s.frameHub.Broadcast(frame)
}

// Listen starts serving on the given port. It blocks until Shutdown.
func (s *Server) Listen(port int) error {
	return s.app.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
