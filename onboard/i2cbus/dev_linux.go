package i2cbus

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the I2C_SLAVE ioctl number from linux/i2c-dev.h; x/sys/unix does not export it.
const i2cSlave = 0x0703

// DevBus writes through the Linux i2c-dev interface (/dev/i2c-N).
type DevBus struct {
	fd    *os.File
	lock  sync.Mutex
	slave int
}

func OpenDev(dev string) (*DevBus, error) {
	fd, err := os.OpenFile(dev, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	return &DevBus{fd: fd, slave: -1}, nil
}

// Tx writes w to addr, then reads into r if it is not empty.
func (bus *DevBus) Tx(addr uint16, w, r []byte) error {
	bus.lock.Lock()
	defer bus.lock.Unlock()

	if err := bus.connect(int(addr)); err != nil {
		return err
	}

	if len(w) > 0 {
		n, err := bus.fd.Write(w)
		if err != nil {
			return err
		}
		if n != len(w) {
			return fmt.Errorf("short write to 0x%02X: %d of %d bytes", addr, n, len(w))
		}
	}

	if len(r) > 0 {
		if _, err := bus.fd.Read(r); err != nil {
			return err
		}
	}

	return nil
}

func (bus *DevBus) Close() error {
	return bus.fd.Close()
}

// connect selects the slave address for following reads and writes.
func (bus *DevBus) connect(i2cAddr int) error {
	if bus.slave == i2cAddr {
		return nil
	}

	if err := unix.IoctlSetInt(int(bus.fd.Fd()), i2cSlave, i2cAddr); err != nil {
		return err
	}
	bus.slave = i2cAddr
	return nil
}
