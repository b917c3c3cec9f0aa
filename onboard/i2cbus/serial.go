package i2cbus

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goburrow/serial"
)

// SerialBus forwards I2C writes to a microcontroller over a UART. Each
// transaction is one line, "W<addr> <hex data> <seq>\n", answered by
// "OK <seq>" or "ERR <seq> <reason>". Replies carrying another sequence
// number are late answers to an earlier, timed out write and are skipped.
type SerialBus struct {
	port io.ReadWriteCloser
	resp *bufio.Reader
	lock sync.Mutex
	seq  uint8
}

func OpenSerial(config Config) (*SerialBus, error) {
	baud := config.Baud
	if baud == 0 {
		baud = DEFAULT_BAUD
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DEFAULT_TIMEOUT
	}

	port, err := serial.Open(&serial.Config{
		Address:  config.Device,
		BaudRate: baud,
		Timeout:  timeout,
	})
	if err != nil {
		return nil, err
	}

	return newSerialBus(port), nil
}

func newSerialBus(port io.ReadWriteCloser) *SerialBus {
	return &SerialBus{
		port: port,
		resp: bufio.NewReader(port),
	}
}

// Tx only supports writes, the bridge has no read command.
func (bus *SerialBus) Tx(addr uint16, w, r []byte) error {
	if len(r) > 0 {
		return fmt.Errorf("serial bridge cannot read from 0x%02X", addr)
	}

	data := strings.ToUpper(hex.EncodeToString(w))

	bus.lock.Lock()
	defer bus.lock.Unlock()

	bus.seq++
	tag := fmt.Sprintf("%02X", bus.seq)

	if _, err := fmt.Fprintf(bus.port, "W%02X %s %s\n", addr, data, tag); err != nil {
		return err
	}

	for {
		line, err := bus.resp.ReadString('\n')
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] != tag {
			continue
		}

		if fields[0] != "OK" {
			return fmt.Errorf("serial bridge: %s %s", fields[0], strings.Join(fields[2:], " "))
		}
		return nil
	}
}

func (bus *SerialBus) Close() error {
	return bus.port.Close()
}
