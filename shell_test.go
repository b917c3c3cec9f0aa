package main

import (
	. "github.com/smartystreets/goconvey/convey"
	"os"
	"testing"

	"github.com/CodedInternet/gowemos/onboard"
	"github.com/CodedInternet/gowemos/onboard/hardware"
)

func findCommand(name string) shellCommand {
	for _, cmd := range deviceCommands(ENV.Device) {
		if cmd.name == name {
			return cmd
		}
	}
	panic("no shell command " + name)
}

func TestShellCommands(t *testing.T) {
	Convey("Given the shell commands on simulated shields", t, func() {
		bus := setupTestDevice()

		Convey("on parses its arguments", func() {
			So(findCommand("on").run([]string{"drive", "B", "fwd", "50"}), ShouldBeNil)
			So(busData(bus), ShouldResemble, [][]byte{
				{0x09, 0x3A, 0x98},
				{0x11, 0x21, 0x00},
			})
		})

		Convey("speed 0 coasts the motor", func() {
			So(findCommand("on").run([]string{"drive", "A", "forward", "0"}), ShouldBeNil)
			So(busData(bus)[1], ShouldResemble, []byte{0x10, 0x50, 0x00})
		})

		Convey("bad arguments fail before the bus is used", func() {
			So(findCommand("on").run([]string{"drive", "A", "forward"}), ShouldNotBeNil)
			So(findCommand("on").run([]string{"drive", "A", "forward", "fast"}), ShouldNotBeNil)
			So(findCommand("on").run([]string{"drive", "A", "sideways", "10"}), ShouldNotBeNil)
			So(findCommand("off").run([]string{"drive"}), ShouldNotBeNil)
			So(findCommand("brake").run([]string{"drive", "Z"}), ShouldNotBeNil)
			So(findCommand("standby").run(nil), ShouldNotBeNil)
			So(bus.Transactions(), ShouldBeEmpty)
		})

		Convey("stop commands", func() {
			So(findCommand("off").run([]string{"aux", "a"}), ShouldBeNil)
			So(findCommand("brake").run([]string{"aux", "b"}), ShouldBeNil)
			So(findCommand("standby").run([]string{"aux"}), ShouldBeNil)
			So(busData(bus), ShouldResemble, [][]byte{
				{0x09, 0x3A, 0x98},
				{0x10, 0x50, 0x00},
				{0x11, 0x00, 0x00},
				{0x10, 0x40, 0x00},
			})
		})

		Convey("presets and configure", func() {
			So(findCommand("configure").run([]string{"drive"}), ShouldBeNil)
			So(findCommand("preset").run([]string{"stop"}), ShouldBeNil)
			So(findCommand("preset").run([]string{"nope"}), ShouldNotBeNil)
		})
	})
}

func TestStatusTable(t *testing.T) {
	Convey("status renders every shield", t, func() {
		setupTestDevice()
		So(ENV.Device.MotorOn("drive", hardware.MotorA, hardware.Forward, 100), ShouldBeNil)

		out := statusTable(ENV.Device.GetState())
		So(out, ShouldContainSubstring, "drive")
		So(out, ShouldContainSubstring, "0x30")
		So(out, ShouldContainSubstring, "forward 511")
		So(out, ShouldContainSubstring, "aux")
	})

	Convey("an empty state is explained", t, func() {
		So(statusTable(onboard.ShieldsState{}), ShouldContainSubstring, "no shields configured")
	})

	Convey("motor cells", t, func() {
		So(motorCell(hardware.MotorStatus{}), ShouldEqual, "-")
		So(motorCell(hardware.MotorStatus{Sent: true, Direction: hardware.Brake}), ShouldEqual, "brake")
		So(motorCell(hardware.MotorStatus{Sent: true, Direction: hardware.Reverse, Step: 10}), ShouldEqual, "reverse 10")
	})
}

func TestShellEnabled(t *testing.T) {
	Convey("serve only runs the shell on a terminal", t, func() {
		r, w, err := os.Pipe()
		So(err, ShouldBeNil)
		defer r.Close()
		defer w.Close()

		// piped or closed stdin, as under systemd or docker without -t
		So(shellEnabled(false, r.Fd()), ShouldBeFalse)

		Convey("and never when disabled", func() {
			So(shellEnabled(true, r.Fd()), ShouldBeFalse)
			So(shellEnabled(true, os.Stdin.Fd()), ShouldBeFalse)
		})
	})
}
