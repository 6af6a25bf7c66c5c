package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"
	"github.com/spf13/cobra"

	"github.com/bobo-nums/robomaster/pkg/api"
	"github.com/bobo-nums/robomaster/pkg/config"
	"github.com/bobo-nums/robomaster/pkg/gateway"
	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
	"github.com/bobo-nums/robomaster/pkg/teleop"
)

const shutdownTimeout = 5 * time.Second

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "teleop",
	Short:        "Keyboard teleoperation controller for the RoboMaster EP",
	Long:         "Drives a RoboMaster EP robot over a ZeroMQ gateway: chassis with WASD, gimbal with the arrow keys, blaster with space. Key edges arrive from the operator's browser over a websocket.",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config/teleop_config.yaml", "path to the controller configuration file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warning, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	logger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Infof("teleop controller starting (config: %s)", configPath)

	zctx, err := zmq4.NewContext()
	if err != nil {
		return fmt.Errorf("failed to create ZeroMQ context: %w", err)
	}

	cmdClient, err := gateway.NewCommandClient(zctx, cfg.Gateway.CommandAddress, cfg.RequestTimeout(), logger)
	if err != nil {
		return fmt.Errorf("failed to connect command client: %w", err)
	}
	defer cmdClient.Close()

	if err := setupSession(cmdClient, cfg, logger); err != nil {
		return err
	}

	// Bounded queues between the gateway listener and the consumer loops.
	push := queue.New[robot.TelemetryMessage](cfg.Queues.Size)
	events := queue.New[robot.Event](cfg.Queues.Size)
	frames := queue.New[robot.VideoFrame](cfg.Queues.Size)
	keys := queue.New[robot.KeyEvent](cfg.Queues.Size)

	listener, err := gateway.NewListener(zctx, cfg.Gateway.SubscribeAddress, push, events, frames, logger)
	if err != nil {
		return fmt.Errorf("failed to connect gateway listener: %w", err)
	}

	state := teleop.NewVelocityState(cfg.Control.UnitSpeed, cfg.Control.UnitDegree)
	keyboard := teleop.NewKeyboardController(cmdClient, state, logger)
	router := teleop.NewEventRouter(cmdClient, push, events, cfg.QueueTimeout(), logger)

	hub := teleop.NewHub(logger)

	server := api.NewServer(logger, hub, state, keys, map[string]api.QueueStats{
		"push":   push,
		"events": events,
		"frames": frames,
		"keys":   keys,
	})
	video := teleop.NewVideoService(frames, server.BroadcastFrame, cfg.QueueTimeout(), logger)

	hub.Register("gateway-listener", listener.Run)
	hub.Register("event-router", router.Run)
	hub.Register("video", video.Run)
	hub.Register("keyboard", func(ctx context.Context) error {
		return keyboard.Run(ctx, keys, cfg.QueueTimeout(), hub.Stop)
	})

	hub.Start(context.Background())

	go func() {
		logger.Infof("operator server listening on port %d", cfg.Server.HTTPPort)
		if err := server.Listen(cfg.Server.HTTPPort); err != nil {
			logger.Errorf("operator server failed: %v", err)
			hub.Stop()
		}
	}()

	waitCh := make(chan error, 1)
	go func() { waitCh <- hub.Wait() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
		logger.Infof("signal received, shutting down")
		hub.Stop()
		runErr = <-waitCh
	case runErr = <-waitCh:
		// Quit chord, worker failure, or every worker done.
	}

	keys.Close()

	// Leave the robot stationary no matter how the session ended.
	if err := cmdClient.ChassisZero(); err != nil {
		logger.Errorf("failed to zero chassis on shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("operator server forced to shutdown: %v", err)
	}

	if runErr != nil {
		logger.Errorf("control session ended with error: %v", runErr)
		return runErr
	}
	logger.Infof("teleop controller exited properly")
	return nil
}

// setupSession issues the one-time robot configuration: gimbal-lead mode,
// recentered gimbal, video stream on, telemetry pushes on, and armor/sound
// event subscriptions.
func setupSession(cmd robot.Commander, cfg *config.Config, logger customlog.Logger) error {
	freq := cfg.Queues.PushFrequencyHz

	steps := []struct {
		name string
		call func() error
	}{
		{"set robot mode", func() error { return cmd.RobotMode(robot.ModeGimbalLead) }},
		{"recenter gimbal", func() error { return cmd.GimbalRecenter() }},
		{"start video stream", func() error { return cmd.Stream(true) }},
		{"enable chassis push", func() error { return cmd.ChassisPushOn(freq, freq, freq) }},
		{"enable gimbal push", func() error { return cmd.GimbalPushOn(freq) }},
		{"set armor sensitivity", func() error { return cmd.ArmorSensitivity(cfg.Safety.ArmorSensitivity) }},
		{"enable armor hit events", func() error { return cmd.ArmorEvent(robot.ArmorHit, true) }},
		{"enable sound events", func() error { return cmd.SoundEvent(robot.SoundApplause, true) }},
	}

	for _, step := range steps {
		if err := step.call(); err != nil {
			return fmt.Errorf("session setup: %s: %w", step.name, err)
		}
		logger.Debugf("session setup: %s done", step.name)
	}

	logger.Infof("robot session configured")
	return nil
}
