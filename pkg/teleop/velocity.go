package teleop

import (
	"sync"

	"github.com/bobo-nums/robomaster/pkg/robot"
)

// Vec2 is a two-axis velocity vector. For the chassis, X is forward speed
// and Y is rightward speed (m/s); for the gimbal, X is pitch and Y is yaw
// speed (deg/s).
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type axisGroup int

const (
	chassisGroup axisGroup = iota
	gimbalGroup
)

// keyEffect describes what a movement key does: which vector it touches,
// which axis of it, and the sign of the applied magnitude. The magnitude
// itself comes from the current gear (unit speed for the chassis group,
// unit degree for the gimbal group). The same table drives press and
// release: press assigns sign*magnitude, release zeroes the axis.
type keyEffect struct {
	group axisGroup
	axis  int // 0 = X, 1 = Y
	sign  float64
}

var keyEffects = map[robot.Key]keyEffect{
	robot.KeyForward:     {chassisGroup, 0, +1},
	robot.KeyBack:        {chassisGroup, 0, -1},
	robot.KeyLeft:        {chassisGroup, 1, -1},
	robot.KeyRight:       {chassisGroup, 1, +1},
	robot.KeyGimbalUp:    {gimbalGroup, 0, +1},
	robot.KeyGimbalDown:  {gimbalGroup, 0, -1},
	robot.KeyGimbalLeft:  {gimbalGroup, 1, -1},
	robot.KeyGimbalRight: {gimbalGroup, 1, +1},
}

// KeyResult tells the caller what a key edge requires: which velocity
// commands to issue (only those whose value actually changed), whether to
// fire the blaster, and whether the session-terminate chord was hit.
type KeyResult struct {
	SendChassis bool
	Chassis     Vec2
	SendGimbal  bool
	Gimbal      Vec2
	Fire        bool
	Quit        bool
}

// VelocitySnapshot is a read-only copy of the state for status reporting.
type VelocitySnapshot struct {
	Gear         int     `json:"gear"`
	Chassis      Vec2    `json:"chassis"`
	Gimbal       Vec2    `json:"gimbal"`
	UnitSpeed    float64 `json:"unit_speed"`
	UnitDegree   float64 `json:"unit_degree"`
	ModifierHeld bool    `json:"modifier_held"`
}

// VelocityState holds the chassis and gimbal velocity vectors, the
// previously sent values for change detection, and the gear multiplier.
// All access goes through ApplyKeyDown/ApplyKeyUp/Snapshot, which take an
// internal exclusive lock; no other component touches the fields.
type VelocityState struct {
	mu sync.Mutex

	gear       int
	unitSpeed  float64
	unitDegree float64
	deltaV     float64 // gear * unitSpeed
	deltaD     float64 // gear * unitDegree

	chassis     Vec2
	prevChassis Vec2
	gimbal      Vec2
	prevGimbal  Vec2

	modifierHeld bool
}

// NewVelocityState creates a velocity state in gear 1 with the given
// per-gear increments.
func NewVelocityState(unitSpeed, unitDegree float64) *VelocityState {
	return &VelocityState{
		gear:       1,
		unitSpeed:  unitSpeed,
		unitDegree: unitDegree,
		deltaV:     unitSpeed,
		deltaD:     unitDegree,
	}
}

// ApplyKeyDown handles a key press edge. Press handlers are idempotent
// assignments, so keyboard auto-repeat produces no spurious commands: the
// change detection sees the same value and suppresses the send.
func (s *VelocityState) ApplyKeyDown(key robot.Key) KeyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == robot.KeyModifier {
		s.modifierHeld = true
		return KeyResult{}
	}
	if s.modifierHeld && key == robot.KeyQuit {
		// Session-terminate chord: stop everything, send once.
		s.chassis = Vec2{}
		s.gimbal = Vec2{}
		res := s.pendingSends()
		res.Quit = true
		return res
	}
	if key == robot.KeyFire {
		return KeyResult{Fire: true}
	}

	effect, ok := keyEffects[key]
	if !ok {
		return KeyResult{}
	}
	s.setAxis(effect, effect.sign)
	return s.pendingSends()
}

// ApplyKeyUp handles a key release edge. Releasing a movement key zeroes
// its axis; releasing a gear digit switches gear for subsequent presses
// without rescaling velocity already in flight.
func (s *VelocityState) ApplyKeyUp(key robot.Key) KeyResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key == robot.KeyModifier {
		s.modifierHeld = false
		return KeyResult{}
	}
	if gear := key.GearDigit(); gear != 0 {
		s.gear = gear
		s.deltaV = float64(gear) * s.unitSpeed
		s.deltaD = float64(gear) * s.unitDegree
		return KeyResult{}
	}

	effect, ok := keyEffects[key]
	if !ok {
		return KeyResult{}
	}
	s.setAxis(effect, 0)
	return s.pendingSends()
}

// setAxis assigns sign*magnitude to the axis named by effect. Caller holds
// the lock.
func (s *VelocityState) setAxis(effect keyEffect, sign float64) {
	var value float64
	switch effect.group {
	case chassisGroup:
		value = sign * s.deltaV
		if effect.axis == 0 {
			s.chassis.X = value
		} else {
			s.chassis.Y = value
		}
	case gimbalGroup:
		value = sign * s.deltaD
		if effect.axis == 0 {
			s.gimbal.X = value
		} else {
			s.gimbal.Y = value
		}
	}
}

// pendingSends compares current vectors against the previously sent ones
// and marks an axis group for sending only when its value changed. This is
// the anti-spam guarantee: at most one command per axis group per actual
// value change. Caller holds the lock.
func (s *VelocityState) pendingSends() KeyResult {
	var res KeyResult
	if s.chassis != s.prevChassis {
		s.prevChassis = s.chassis
		res.SendChassis = true
		res.Chassis = s.chassis
	}
	if s.gimbal != s.prevGimbal {
		s.prevGimbal = s.gimbal
		res.SendGimbal = true
		res.Gimbal = s.gimbal
	}
	return res
}

// Snapshot returns a copy of the current state for status reporting.
func (s *VelocityState) Snapshot() VelocitySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return VelocitySnapshot{
		Gear:         s.gear,
		Chassis:      s.chassis,
		Gimbal:       s.gimbal,
		UnitSpeed:    s.unitSpeed,
		UnitDegree:   s.unitDegree,
		ModifierHeld: s.modifierHeld,
	}
}
