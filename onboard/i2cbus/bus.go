// Package i2cbus opens the I2C bus the motor shields are connected to.
//
// Every backend implements drivers.I2C from tinygo.org/x/drivers so the
// shield controller does not care whether frames go out through
// /dev/i2c-N, periph.io, a serial bridge or the simulator.
package i2cbus

import (
	"io"
	"log"
	"time"

	"tinygo.org/x/drivers"

	deverrors "github.com/CodedInternet/gowemos/onboard/errors"
)

const (
	DRIVER_I2CDEV = "i2cdev"
	DRIVER_PERIPH = "periph"
	DRIVER_SERIAL = "serial"
	DRIVER_SIM    = "sim"

	DEFAULT_DEVICE  = "/dev/i2c-1"
	DEFAULT_BAUD    = 115200
	DEFAULT_TIMEOUT = 500 * time.Millisecond
)

type Config struct {
	Driver  string        `yaml:"driver"`
	Device  string        `yaml:"device"`
	Baud    int           `yaml:"baud"`
	Timeout time.Duration `yaml:"timeout"`
}

// Bus is an I2C bus that has to be released when done.
type Bus interface {
	drivers.I2C
	io.Closer
}

// Open creates the bus described by config. An empty driver defaults to
// i2cdev.
func Open(config Config, logger *log.Logger) (bus Bus, err error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	switch config.Driver {
	case DRIVER_I2CDEV, "":
		device := config.Device
		if device == "" {
			device = DEFAULT_DEVICE
		}
		var dev *DevBus
		if dev, err = OpenDev(device); err != nil {
			return nil, err
		}
		bus = dev

	case DRIVER_PERIPH:
		if bus, err = OpenPeriph(config.Device); err != nil {
			return nil, err
		}

	case DRIVER_SERIAL:
		var bridge *SerialBus
		if bridge, err = OpenSerial(config); err != nil {
			return nil, err
		}
		bus = bridge

	case DRIVER_SIM:
		bus = NewSimBus(logger)

	default:
		return nil, deverrors.UnsupportedBusError{Driver: config.Driver}
	}

	logger.Printf("opened %s bus %s", config.Driver, config.Device)
	return bus, nil
}
