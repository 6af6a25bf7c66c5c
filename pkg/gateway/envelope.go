package gateway

import (
	"encoding/json"
	"time"

	"github.com/bobo-nums/robomaster/pkg/robot"
)

// Message types carried on the gateway link.
const (
	MsgTypePush    = "PUSH"
	MsgTypeEvent   = "EVENT"
	MsgTypeFrame   = "FRAME"
	MsgTypeCommand = "COMMAND"
	MsgTypeAck     = "ACK"
	MsgTypeError   = "ERROR"
)

// Event names used in event payloads.
const (
	eventArmorHit        = "armor_hit"
	eventSoundRecognized = "sound_recognized"
)

// Envelope is the generic JSON message structure exchanged with the robot
// gateway over ZeroMQ.
type Envelope struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic,omitempty"`
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// ErrorResponse is the payload of an ERROR envelope.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// commandPayload is the payload of an outbound COMMAND envelope.
type commandPayload struct {
	Command string                 `json:"command"`
	Args    map[string]interface{} `json:"args,omitempty"`
}

type eventPayload struct {
	Name  string `json:"name"`
	Armor int    `json:"armor,omitempty"`
	Hit   string `json:"hit_type,omitempty"`
	Sound string `json:"sound,omitempty"`
}

type framePayload struct {
	Data []byte `json:"data"`
}

// decodeTelemetry turns a PUSH envelope into a telemetry message. The
// payload stays opaque; only the router's log ever looks at it.
func decodeTelemetry(env *Envelope, now time.Time) robot.TelemetryMessage {
	return robot.TelemetryMessage{
		Topic:      env.Topic,
		Raw:        string(env.Data),
		ReceivedAt: now,
	}
}

// decodeEvent turns an EVENT envelope into a typed robot event. Payloads
// that fail to parse or carry an unknown name come back as RawEvent so the
// router can still log them.
func decodeEvent(env *Envelope) robot.Event {
	var payload eventPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return robot.RawEvent{Data: string(env.Data)}
	}

	switch payload.Name {
	case eventArmorHit:
		return robot.ArmorHitEvent{Armor: payload.Armor, Type: payload.Hit}
	case eventSoundRecognized:
		return robot.SoundRecognizedEvent{Sound: payload.Sound}
	default:
		return robot.RawEvent{Data: string(env.Data)}
	}
}

// decodeFrame turns a FRAME envelope into a video frame. The frame bytes
// travel base64-encoded in the JSON payload.
func decodeFrame(env *Envelope, now time.Time) (robot.VideoFrame, error) {
	var payload framePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return robot.VideoFrame{}, err
	}
	return robot.VideoFrame{Data: payload.Data, ReceivedAt: now}, nil
}
