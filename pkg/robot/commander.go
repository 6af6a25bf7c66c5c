package robot

// Robot modes accepted by Commander.RobotMode.
const (
	ModeChassisLead = "chassis_lead"
	ModeGimbalLead  = "gimbal_lead"
	ModeFree        = "free"
)

// Event attributes accepted by Commander.ArmorEvent and Commander.SoundEvent.
const (
	ArmorHit      = "hit"
	SoundApplause = "applause"
)

// Commander is the command capability of a connected robot. All motion and
// weapon calls are fire-and-forget: a non-nil error means the transport
// failed and the calling loop is expected to surface it, not retry.
//
// Implementations must be safe for concurrent use; the keyboard controller
// and the event router issue commands independently.
type Commander interface {
	// ChassisSpeed sets the chassis velocity: vx forward (m/s), vy right
	// (m/s), vz clockwise rotation (deg/s).
	ChassisSpeed(vx, vy, vz float64) error

	// GimbalSpeed sets the gimbal rotation speed in deg/s.
	GimbalSpeed(pitch, yaw float64) error

	// BlasterFire fires the blaster once.
	BlasterFire() error

	// ChassisZero immediately zeroes the chassis wheel speeds.
	ChassisZero() error

	// Session setup calls, issued once at startup.
	RobotMode(mode string) error
	GimbalRecenter() error
	Stream(on bool) error
	ChassisPushOn(positionFreq, attitudeFreq, statusFreq int) error
	GimbalPushOn(freq int) error
	ArmorSensitivity(level int) error
	ArmorEvent(attr string, on bool) error
	SoundEvent(attr string, on bool) error
}
