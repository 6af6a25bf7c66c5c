package teleop

import (
	"context"
	"fmt"
	"time"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
)

// EventRouter drains the telemetry push queue and the robot event queue on
// a fixed cadence. Everything received is logged; an armor hit additionally
// triggers an immediate zero-velocity chassis command issued straight
// through the command capability.
//
// The safety stop deliberately bypasses the VelocityState and does not
// touch its previous-sent values, matching the original behavior: a later
// keyboard send of the same velocity may be suppressed as unchanged even
// though the robot was stopped in between. See the safety tests.
type EventRouter struct {
	cmd     robot.Commander
	push    *queue.Queue[robot.TelemetryMessage]
	events  *queue.Queue[robot.Event]
	timeout time.Duration
	logger  customlog.Logger
}

// NewEventRouter creates an event router. timeout bounds each of the two
// receives performed per poll cycle.
func NewEventRouter(
	cmd robot.Commander,
	push *queue.Queue[robot.TelemetryMessage],
	events *queue.Queue[robot.Event],
	timeout time.Duration,
	logger customlog.Logger,
) *EventRouter {
	return &EventRouter{
		cmd:     cmd,
		push:    push,
		events:  events,
		timeout: timeout,
		logger:  logger,
	}
}

// Poll performs one cycle: one bounded receive from the push queue and one
// from the event queue. Empty results are the expected common case and are
// absorbed silently.
func (r *EventRouter) Poll() error {
	if msg, ok := r.push.Receive(r.timeout); ok {
		r.logger.Infof("push: %s", msg)
	}

	if ev, ok := r.events.Receive(r.timeout); ok {
		// Safety first.
		if _, hit := ev.(robot.ArmorHitEvent); hit {
			if err := r.cmd.ChassisSpeed(0, 0, 0); err != nil {
				return fmt.Errorf("safety stop: %w", err)
			}
		}
		r.logger.Infof("event: %s", ev)
	}

	return nil
}

// Run polls until the context is cancelled. A transport failure on the
// safety path terminates the loop; the hub surfaces it at join.
func (r *EventRouter) Run(ctx context.Context) error {
	r.logger.Infof("event router started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := r.Poll(); err != nil {
			r.logger.Errorf("event router: %v", err)
			return err
		}
	}
}
