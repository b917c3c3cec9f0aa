package hardware

import (
	"errors"
	"fmt"
)

const (
	CMD_CONFIGURE_PWM = 0x00
	CMD_SET_MOTOR     = 0x10

	CMD_MASK    = 0xF0
	NIBBLE_MASK = 0x0F

	FRAME_LEN = 3

	// PWM settings sent to every shield. 9 bit resolution gives steps 0-511.
	PWM_RESOLUTION = 9
	PWM_FREQUENCY  = 15000

	MAX_STEP = 1<<PWM_RESOLUTION - 1
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
)

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// BusError wraps a failed write to a shield. Writes are never retried.
type BusError struct {
	Addr uint16
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("i2c write to 0x%02X failed: %v", e.Addr, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// Frame is a single command sent to a shield.
//
//	|  4 bit CMD | 4 bit          | 16 bit                     |
//	| config pwm | resolution     | frequency                  |
//	|  set motor | motor          | 4 bit dir | 12 bit step    |
type Frame [FRAME_LEN]byte

func (f Frame) Cmd() uint8 {
	return f[0] & CMD_MASK
}

// Motor is only meaningful for set motor frames.
func (f Frame) Motor() Motor {
	return Motor(f[0] & NIBBLE_MASK)
}

func (f Frame) Direction() Direction {
	return Direction(f[1] >> 4)
}

func (f Frame) Step() uint16 {
	return uint16(f[1]&NIBBLE_MASK)<<8 | uint16(f[2])
}

func (f Frame) String() string {
	return fmt.Sprintf("[0x%02X 0x%02X 0x%02X]", f[0], f[1], f[2])
}

// ConfigurePWMFrame sets the shield's PWM resolution and frequency.
func ConfigurePWMFrame(resolution uint8, frequency uint16) Frame {
	return Frame{
		CMD_CONFIGURE_PWM | resolution&NIBBLE_MASK,
		byte(frequency >> 8),
		byte(frequency),
	}
}

// SetMotorFrame sets one motor's direction and duty cycle step.
func SetMotorFrame(motor Motor, direction Direction, step uint16) Frame {
	return Frame{
		CMD_SET_MOTOR | byte(motor)&NIBBLE_MASK,
		byte(direction)<<4 | byte(step>>8)&NIBBLE_MASK,
		byte(step),
	}
}
