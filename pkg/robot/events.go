package robot

import (
	"fmt"
	"time"
)

// TelemetryMessage is one push-channel sample (chassis position/attitude,
// gimbal angles). The controller only logs it; the payload stays opaque.
type TelemetryMessage struct {
	Topic      string
	Raw        string
	ReceivedAt time.Time
}

func (m TelemetryMessage) String() string {
	return fmt.Sprintf("%s: %s", m.Topic, m.Raw)
}

// Event is a robot-originated event (armor hit, sound recognition, or
// anything else the robot pushes on the event channel).
type Event interface {
	fmt.Stringer
}

// ArmorHitEvent reports that an armor plate was struck. It triggers the
// safety stop path.
type ArmorHitEvent struct {
	Armor int
	Type  string
}

func (e ArmorHitEvent) String() string {
	return fmt.Sprintf("armor hit: armor=%d type=%s", e.Armor, e.Type)
}

// SoundRecognizedEvent reports a recognized sound pattern.
type SoundRecognizedEvent struct {
	Sound string
}

func (e SoundRecognizedEvent) String() string {
	return fmt.Sprintf("sound recognized: %s", e.Sound)
}

// RawEvent carries an event the controller has no dedicated type for.
type RawEvent struct {
	Data string
}

func (e RawEvent) String() string {
	return e.Data
}

// VideoFrame is one decoded frame from the robot's video stream. The
// controller forwards it to the display sink without inspecting it.
type VideoFrame struct {
	Data       []byte
	ReceivedAt time.Time
}
