package hardware

import (
	"fmt"
	"strconv"
	"strings"
)

// ShieldAddress is the index (0-3) of a shield on the bus. The bus address
// is SHIELD_BASE_ADDR + index.
type ShieldAddress uint8

const (
	Address0x2D ShieldAddress = iota
	Address0x2E
	Address0x2F
	Address0x30

	SHIELD_BASE_ADDR = 0x2D
	SHIELD_COUNT     = 4
)

// Motor is one of the two channels on a shield.
type Motor uint8

const (
	MotorA Motor = 0
	MotorB Motor = 1
)

// Direction is the 4 bit direction code sent in a set motor frame.
// Brake, Coast and Standby are only produced by the stop operations.
type Direction uint8

const (
	Brake   Direction = 0
	Reverse Direction = 1
	Forward Direction = 2
	Standby Direction = 4
	Coast   Direction = 5
)

func (s ShieldAddress) Valid() bool {
	return s < SHIELD_COUNT
}

// BusAddr resolves the 7-bit I2C address of the shield.
func (s ShieldAddress) BusAddr() uint16 {
	return uint16(SHIELD_BASE_ADDR+s) & 0x7F
}

func (s ShieldAddress) String() string {
	return fmt.Sprintf("0x%02X", SHIELD_BASE_ADDR+int(s))
}

func (m Motor) Valid() bool {
	return m == MotorA || m == MotorB
}

func (m Motor) String() string {
	switch m {
	case MotorA:
		return "A"
	case MotorB:
		return "B"
	}
	return fmt.Sprintf("Motor(%d)", uint8(m))
}

func (d Direction) Valid() bool {
	switch d {
	case Brake, Reverse, Forward, Standby, Coast:
		return true
	}
	return false
}

// Driving reports whether the direction spins the motor. Only driving
// directions are accepted by MotorOn.
func (d Direction) Driving() bool {
	return d == Forward || d == Reverse
}

// Inverted swaps Forward and Reverse, stop codes are returned as is.
func (d Direction) Inverted() Direction {
	switch d {
	case Forward:
		return Reverse
	case Reverse:
		return Forward
	}
	return d
}

func (d Direction) String() string {
	switch d {
	case Brake:
		return "brake"
	case Reverse:
		return "reverse"
	case Forward:
		return "forward"
	case Standby:
		return "standby"
	case Coast:
		return "coast"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// ParseShieldAddress accepts either an index ("0".."3") or a bus address
// ("0x2D".."0x30").
func ParseShieldAddress(s string) (ShieldAddress, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil || v < SHIELD_BASE_ADDR || v >= SHIELD_BASE_ADDR+SHIELD_COUNT {
			return 0, invalidArgument("shield address %q", s)
		}
		return ShieldAddress(v - SHIELD_BASE_ADDR), nil
	}

	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil || !ShieldAddress(v).Valid() {
		return 0, invalidArgument("shield index %q", s)
	}
	return ShieldAddress(v), nil
}

func ParseMotor(s string) (Motor, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "0":
		return MotorA, nil
	case "B", "1":
		return MotorB, nil
	}
	return 0, invalidArgument("motor %q", s)
}

// ParseDirection only accepts the driving directions, stop codes have their
// own operations.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "fwd", "f":
		return Forward, nil
	case "reverse", "rev", "r":
		return Reverse, nil
	}
	return 0, invalidArgument("direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
