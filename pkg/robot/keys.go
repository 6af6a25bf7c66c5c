package robot

import "strings"

// Key identifies one control key on the operator's keyboard.
type Key string

// Control keys. Movement follows drive-game convention: WASD for the
// chassis, arrow keys for the gimbal.
const (
	KeyForward     Key = "w"
	KeyBack        Key = "s"
	KeyLeft        Key = "a"
	KeyRight       Key = "d"
	KeyGimbalUp    Key = "up"
	KeyGimbalDown  Key = "down"
	KeyGimbalLeft  Key = "left"
	KeyGimbalRight Key = "right"
	KeyModifier    Key = "ctrl"
	KeyFire        Key = "space"
	KeyQuit        Key = "c"
	KeyGear1       Key = "1"
	KeyGear2       Key = "2"
	KeyGear3       Key = "3"
	KeyGear4       Key = "4"
	KeyGear5       Key = "5"
)

// KeyEvent is one edge of a key: pressed (Down=true) or released.
type KeyEvent struct {
	Key  Key
	Down bool
}

// ParseKey normalizes a key name as reported by a browser KeyboardEvent
// ("w", "ArrowUp", "Control", " ") into a Key. The second return value is
// false for keys the controller does not use; callers ignore those.
func ParseKey(name string) (Key, bool) {
	switch strings.ToLower(name) {
	case "w":
		return KeyForward, true
	case "s":
		return KeyBack, true
	case "a":
		return KeyLeft, true
	case "d":
		return KeyRight, true
	case "arrowup", "up":
		return KeyGimbalUp, true
	case "arrowdown", "down":
		return KeyGimbalDown, true
	case "arrowleft", "left":
		return KeyGimbalLeft, true
	case "arrowright", "right":
		return KeyGimbalRight, true
	case "control", "ctrl":
		return KeyModifier, true
	case " ", "space", "spacebar":
		return KeyFire, true
	case "c":
		return KeyQuit, true
	case "1", "2", "3", "4", "5":
		return Key(strings.ToLower(name)), true
	default:
		return "", false
	}
}

// GearDigit returns the gear number for gear keys (1-5), or 0 for any
// other key.
func (k Key) GearDigit() int {
	switch k {
	case KeyGear1:
		return 1
	case KeyGear2:
		return 2
	case KeyGear3:
		return 3
	case KeyGear4:
		return 4
	case KeyGear5:
		return 5
	default:
		return 0
	}
}
