package teleop

import (
	"context"
	"fmt"
	"time"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/queue"
	"github.com/bobo-nums/robomaster/pkg/robot"
)

// KeyboardController consumes key edges and turns them into velocity
// commands. It is the only writer of the VelocityState.
type KeyboardController struct {
	cmd    robot.Commander
	state  *VelocityState
	logger customlog.Logger
}

// NewKeyboardController creates a keyboard controller.
func NewKeyboardController(cmd robot.Commander, state *VelocityState, logger customlog.Logger) *KeyboardController {
	return &KeyboardController{
		cmd:    cmd,
		state:  state,
		logger: logger,
	}
}

// HandleEvent processes one key edge. It returns true when the
// session-terminate chord was observed. A non-nil error means the command
// transport failed; the caller terminates, it does not retry.
func (c *KeyboardController) HandleEvent(ev robot.KeyEvent) (bool, error) {
	var res KeyResult
	if ev.Down {
		c.logger.Debugf("pressed: %s", ev.Key)
		res = c.state.ApplyKeyDown(ev.Key)
	} else {
		c.logger.Debugf("released: %s", ev.Key)
		res = c.state.ApplyKeyUp(ev.Key)
	}

	if res.Fire {
		if err := c.cmd.BlasterFire(); err != nil {
			return false, fmt.Errorf("blaster fire: %w", err)
		}
	}
	if res.SendChassis {
		c.logger.Debugf("chassis speed: x: %v, y: %v", res.Chassis.X, res.Chassis.Y)
		if err := c.cmd.ChassisSpeed(res.Chassis.X, res.Chassis.Y, 0); err != nil {
			return false, fmt.Errorf("chassis speed: %w", err)
		}
	}
	if res.SendGimbal {
		c.logger.Debugf("gimbal speed: pitch: %v, yaw: %v", res.Gimbal.X, res.Gimbal.Y)
		if err := c.cmd.GimbalSpeed(res.Gimbal.X, res.Gimbal.Y); err != nil {
			return false, fmt.Errorf("gimbal speed: %w", err)
		}
	}

	return res.Quit, nil
}

// Run drains the key event queue until the quit chord fires, the context
// is cancelled, or the queue closes with nothing left. quit is invoked
// once when the chord is observed, after the final zero-velocity send.
func (c *KeyboardController) Run(ctx context.Context, keys *queue.Queue[robot.KeyEvent], timeout time.Duration, quit func()) error {
	c.logger.Infof("keyboard controller started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		ev, ok := keys.Receive(timeout)
		if !ok {
			if keys.Closed() {
				c.logger.Infof("key event stream closed")
				return nil
			}
			continue
		}

		quitChord, err := c.HandleEvent(ev)
		if err != nil {
			c.logger.Errorf("keyboard controller: %v", err)
			return err
		}
		if quitChord {
			c.logger.Infof("quit chord received, ending control session")
			if quit != nil {
				quit()
			}
			return nil
		}
	}
}
