package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pebbe/zmq4"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
)

const pollInterval = 500 * time.Millisecond

// Listener subscribes to the gateway's publish endpoint and fans incoming
// envelopes out to the telemetry, event, and frame queues. Enqueueing
// never blocks: when a consumer falls behind, the oldest unconsumed
// messages simply win and new ones are dropped with a warning.
type Listener struct {
	socket *zmq4.Socket
	poller *zmq4.Poller
	push   *queue.Queue[robot.TelemetryMessage]
	events *queue.Queue[robot.Event]
	frames *queue.Queue[robot.VideoFrame]
	logger customlog.Logger
}

// NewListener connects a subscriber to the gateway's PUB endpoint.
func NewListener(
	zctx *zmq4.Context,
	address string,
	push *queue.Queue[robot.TelemetryMessage],
	events *queue.Queue[robot.Event],
	frames *queue.Queue[robot.VideoFrame],
	logger customlog.Logger,
) (*Listener, error) {
	socket, err := zctx.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}

	if err := socket.SetSubscribe(""); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	if err := socket.Connect(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	logger.Infof("gateway listener connected to %s", address)

	return &Listener{
		socket: socket,
		poller: poller,
		push:   push,
		events: events,
		frames: frames,
		logger: logger,
	}, nil
}

// Run receives envelopes until the context is cancelled. Polling is
// bounded so shutdown is never stuck behind a silent gateway.
func (l *Listener) Run(ctx context.Context) error {
	defer l.socket.Close()

	l.logger.Infof("gateway listener started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		sockets, err := l.poller.Poll(pollInterval)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("error polling gateway socket: %w", err)
		}
		if len(sockets) == 0 {
			continue
		}

		msg, err := l.socket.RecvBytes(0)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Errorf("error receiving gateway message: %v", err)
			continue
		}

		l.dispatch(msg)
	}
}

// dispatch classifies one raw envelope and enqueues it for its consumer.
func (l *Listener) dispatch(msg []byte) {
	now := time.Now()

	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		l.logger.Warnf("discarding malformed gateway message (%d bytes): %v", len(msg), err)
		return
	}

	switch env.Type {
	case MsgTypePush:
		if !l.push.TrySend(decodeTelemetry(&env, now)) {
			l.logger.Warnf("telemetry queue full, discarding push for topic '%s'", env.Topic)
		}
	case MsgTypeEvent:
		if !l.events.TrySend(decodeEvent(&env)) {
			l.logger.Warnf("event queue full, discarding event")
		}
	case MsgTypeFrame:
		frame, err := decodeFrame(&env, now)
		if err != nil {
			l.logger.Warnf("discarding malformed video frame: %v", err)
			return
		}
		if !l.frames.TrySend(frame) {
			l.logger.Debugf("frame queue full, dropping frame (%d bytes)", len(frame.Data))
		}
	default:
		l.logger.Warnf("unknown gateway message type: %s", env.Type)
	}
}
