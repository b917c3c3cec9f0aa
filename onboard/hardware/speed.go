package hardware

import "github.com/CodedInternet/gowemos/calcs"

const (
	SPEED_MIN = 0
	SPEED_MAX = 100

	// Speeds 1-100 are mapped onto steps 5-512. The top of the range is one
	// past MAX_STEP and is clamped to it.
	STEP_LOW  = 5
	STEP_HIGH = 512
)

// SpeedToStep converts a speed percentage into a duty cycle step. Speed 0
// has no step, callers must coast the motor instead.
func SpeedToStep(speed int) (step uint16, err error) {
	if speed <= SPEED_MIN || speed > SPEED_MAX {
		return 0, invalidArgument("speed %d outside 1-%d", speed, SPEED_MAX)
	}

	return uint16(calcs.TranslateInt(speed, 1, SPEED_MAX, STEP_LOW, STEP_HIGH, 0, MAX_STEP)), nil
}
