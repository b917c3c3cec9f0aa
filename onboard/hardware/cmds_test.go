package hardware

import (
	"errors"
	. "github.com/smartystreets/goconvey/convey"
	"testing"
)

func TestConfigurePWMFrame(t *testing.T) {
	Convey("default PWM settings encode correctly", t, func() {
		f := ConfigurePWMFrame(PWM_RESOLUTION, PWM_FREQUENCY)
		So(f, ShouldResemble, Frame{0x09, 0x3A, 0x98})
		So(f.Cmd(), ShouldEqual, CMD_CONFIGURE_PWM)
	})

	Convey("resolution is masked to the low nibble", t, func() {
		f := ConfigurePWMFrame(0x1A, 5000)
		So(f, ShouldResemble, Frame{0x0A, 0x13, 0x88})
	})
}

func TestSetMotorFrame(t *testing.T) {
	Convey("command nibble and motor share byte 0", t, func() {
		So(SetMotorFrame(MotorA, Forward, 0)[0], ShouldEqual, 0x10)
		So(SetMotorFrame(MotorB, Forward, 0)[0], ShouldEqual, 0x11)
	})

	Convey("direction fills the high nibble of byte 1", t, func() {
		So(SetMotorFrame(MotorA, Brake, 0)[1], ShouldEqual, 0x00)
		So(SetMotorFrame(MotorA, Reverse, 0)[1], ShouldEqual, 0x10)
		So(SetMotorFrame(MotorA, Forward, 0)[1], ShouldEqual, 0x20)
		So(SetMotorFrame(MotorA, Standby, 0)[1], ShouldEqual, 0x40)
		So(SetMotorFrame(MotorA, Coast, 0)[1], ShouldEqual, 0x50)
	})

	Convey("step is split over byte 1 and byte 2", t, func() {
		So(SetMotorFrame(MotorA, Forward, 511), ShouldResemble, Frame{0x10, 0x21, 0xFF})
		So(SetMotorFrame(MotorB, Reverse, 256), ShouldResemble, Frame{0x11, 0x11, 0x00})
		So(SetMotorFrame(MotorB, Brake, 0), ShouldResemble, Frame{0x11, 0x00, 0x00})
	})

	Convey("every valid frame decodes back to its fields", t, func() {
		var broken []string
		for _, m := range []Motor{MotorA, MotorB} {
			for _, d := range []Direction{Brake, Reverse, Forward, Standby, Coast} {
				for step := uint16(0); step <= MAX_STEP; step++ {
					f := SetMotorFrame(m, d, step)
					if f.Cmd() != CMD_SET_MOTOR || f.Motor() != m || f.Direction() != d || f.Step() != step {
						broken = append(broken, f.String())
					}
				}
			}
		}
		So(broken, ShouldBeEmpty)
	})

	Convey("String prints every byte", t, func() {
		So(Frame{0x10, 0x21, 0xFF}.String(), ShouldEqual, "[0x10 0x21 0xFF]")
	})
}

func TestBusError(t *testing.T) {
	Convey("bus errors unwrap to the cause", t, func() {
		cause := errors.New("nack")
		err := &BusError{Addr: 0x30, Err: cause}
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "0x30")
	})
}
