package comms

import (
	"github.com/CodedInternet/gowemos/onboard"
)

const (
	CMD_MOTOR_ON  = "motor_on"
	CMD_MOTOR_OFF = "motor_off"
	CMD_BRAKE     = "brake"
	CMD_STANDBY   = "standby"
	CMD_CONFIGURE = "configure"
	CMD_PRESET    = "preset"
	CMD_STATE     = "state"
)

// Cmd is a command received from a client. Value carries the speed for
// motor_on, Name the preset for preset.
type Cmd struct {
	Cmd       string  `json:"cmd"`
	Shield    string  `json:"shield,omitempty"`
	Motor     string  `json:"motor,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Name      string  `json:"name,omitempty"`
}

type StatePayload struct {
	Shields onboard.ShieldsState `json:"shields"`
	Error   string               `json:"error,omitempty"`
}
