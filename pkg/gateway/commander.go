package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	customlog "github.com/bobo-nums/robomaster/pkg/log"
	"github.com/bobo-nums/robomaster/pkg/robot"
)

// Common errors
var (
	ErrClientClosed = errors.New("command client is closed")
)

var _ robot.Commander = (*CommandClient)(nil)

// CommandClient implements robot.Commander over a ZeroMQ REQ socket to the
// robot gateway. REQ sockets enforce a strict send/receive alternation and
// are not safe for concurrent use, so every call is serialized by a mutex;
// this also makes the client safe to share between the keyboard controller
// and the event router.
type CommandClient struct {
	mu     sync.Mutex
	socket *zmq4.Socket
	logger customlog.Logger
	closed bool
}

// NewCommandClient connects a command client to the gateway's REQ/REP
// endpoint. timeout bounds both the send and the reply wait of each call.
func NewCommandClient(zctx *zmq4.Context, address string, timeout time.Duration, logger customlog.Logger) (*CommandClient, error) {
	socket, err := zctx.NewSocket(zmq4.REQ)
	if err != nil {
		return nil, fmt.Errorf("failed to create REQ socket: %w", err)
	}

	if err := socket.Connect(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.SetRcvtimeo(timeout); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set receive timeout: %w", err)
	}
	if err := socket.SetSndtimeo(timeout); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set send timeout: %w", err)
	}

	logger.Infof("command client connected to %s", address)

	return &CommandClient{
		socket: socket,
		logger: logger,
	}, nil
}

// call sends one COMMAND envelope and waits for the reply. Any transport
// or gateway error is returned to the caller, which terminates its loop;
// there are no retries here.
func (c *CommandClient) call(command string, args map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	payload, err := json.Marshal(commandPayload{Command: command, Args: args})
	if err != nil {
		return fmt.Errorf("failed to marshal command '%s': %w", command, err)
	}

	env := Envelope{
		Type:      MsgTypeCommand,
		Timestamp: float64(time.Now().Unix()),
		Data:      payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope for '%s': %w", command, err)
	}

	if _, err := c.socket.SendBytes(data, 0); err != nil {
		return fmt.Errorf("failed to send command '%s': %w", command, err)
	}

	reply, err := c.socket.RecvBytes(0)
	if err != nil {
		return fmt.Errorf("failed to receive reply for '%s': %w", command, err)
	}

	var replyEnv Envelope
	if err := json.Unmarshal(reply, &replyEnv); err != nil {
		return fmt.Errorf("invalid reply for '%s': %w", command, err)
	}

	if replyEnv.Type == MsgTypeError {
		var errResp ErrorResponse
		if err := json.Unmarshal(replyEnv.Data, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("gateway rejected '%s': %s (code %d)", command, errResp.Message, errResp.Code)
		}
		return fmt.Errorf("gateway rejected '%s'", command)
	}

	c.logger.Debugf("command '%s' acknowledged", command)
	return nil
}

func (c *CommandClient) ChassisSpeed(vx, vy, vz float64) error {
	return c.call("chassis_speed", map[string]interface{}{"vx": vx, "vy": vy, "vz": vz})
}

func (c *CommandClient) GimbalSpeed(pitch, yaw float64) error {
	return c.call("gimbal_speed", map[string]interface{}{"pitch": pitch, "yaw": yaw})
}

func (c *CommandClient) BlasterFire() error {
	return c.call("blaster_fire", nil)
}

func (c *CommandClient) ChassisZero() error {
	return c.call("chassis_wheel", map[string]interface{}{"w1": 0, "w2": 0, "w3": 0, "w4": 0})
}

func (c *CommandClient) RobotMode(mode string) error {
	return c.call("robot_mode", map[string]interface{}{"mode": mode})
}

func (c *CommandClient) GimbalRecenter() error {
	return c.call("gimbal_recenter", nil)
}

func (c *CommandClient) Stream(on bool) error {
	return c.call("stream", map[string]interface{}{"on": on})
}

func (c *CommandClient) ChassisPushOn(positionFreq, attitudeFreq, statusFreq int) error {
	return c.call("chassis_push_on", map[string]interface{}{
		"position_freq": positionFreq,
		"attitude_freq": attitudeFreq,
		"status_freq":   statusFreq,
	})
}

func (c *CommandClient) GimbalPushOn(freq int) error {
	return c.call("gimbal_push_on", map[string]interface{}{"attitude_freq": freq})
}

func (c *CommandClient) ArmorSensitivity(level int) error {
	return c.call("armor_sensitivity", map[string]interface{}{"level": level})
}

func (c *CommandClient) ArmorEvent(attr string, on bool) error {
	return c.call("armor_event", map[string]interface{}{"attr": attr, "on": on})
}

func (c *CommandClient) SoundEvent(attr string, on bool) error {
	return c.call("sound_event", map[string]interface{}{"attr": attr, "on": on})
}

// Close releases the socket. Calls after Close fail with ErrClientClosed.
func (c *CommandClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.socket != nil {
		c.socket.Close()
		c.socket = nil
	}
}
