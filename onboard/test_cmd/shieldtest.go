package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/CodedInternet/gowemos/onboard/hardware"
	"github.com/CodedInternet/gowemos/onboard/i2cbus"
)

// Spins motor A of a single shield for a moment and puts it back into
// standby. Useful to check the wiring before writing a config file.
var opts struct {
	Driver string        `long:"driver" default:"i2cdev" description:"i2cdev, periph, serial or sim"`
	Device string        `long:"device" default:"/dev/i2c-1"`
	Shield string        `long:"shield" default:"0x30" description:"shield index or address"`
	Speed  int           `long:"speed" default:"30"`
	Run    time.Duration `long:"run" default:"1s"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	shield, err := hardware.ParseShieldAddress(opts.Shield)
	if err != nil {
		panic(err)
	}

	logger := log.New(os.Stderr, "[shieldtest] ", log.LstdFlags)
	bus, err := i2cbus.Open(i2cbus.Config{Driver: opts.Driver, Device: opts.Device}, logger)
	if err != nil {
		panic(err)
	}
	defer bus.Close()

	ctrl := hardware.NewController(bus, logger)
	if err := ctrl.Configure(shield); err != nil {
		panic(err)
	}

	if err := ctrl.MotorOn(shield, hardware.MotorA, hardware.Forward, opts.Speed); err != nil {
		panic(err)
	}
	time.Sleep(opts.Run)

	if err := ctrl.AllOff(shield); err != nil {
		panic(err)
	}

	status, _ := ctrl.Status(shield)
	fmt.Printf("Success! Shield %s answered, last motor A command %s\n", shield, status.Motors[hardware.MotorA].Direction)
}
