package i2cbus

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// OpenPeriph opens a bus through periph.io. An empty name picks the first
// bus found by the host drivers.
func OpenPeriph(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	return i2creg.Open(name)
}
