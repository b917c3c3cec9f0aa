//go:build !linux

package i2cbus

import (
	deverrors "github.com/CodedInternet/gowemos/onboard/errors"
)

type DevBus struct{}

func OpenDev(dev string) (*DevBus, error) {
	return nil, deverrors.UnsupportedBusError{Driver: DRIVER_I2CDEV, Reason: "i2c-dev is only available on linux"}
}

func (bus *DevBus) Tx(addr uint16, w, r []byte) error {
	return deverrors.UnsupportedBusError{Driver: DRIVER_I2CDEV}
}

func (bus *DevBus) Close() error {
	return nil
}
