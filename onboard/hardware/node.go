package hardware

import (
	"tinygo.org/x/drivers"
)

// NodeState is the configuration state of a single shield. A shield moves
// from NodeUninitialized to NodeConfigured once and never back.
type NodeState uint8

const (
	NodeUninitialized NodeState = iota
	NodeConfigured
)

func (s NodeState) String() string {
	if s == NodeConfigured {
		return "configured"
	}
	return "uninitialized"
}

// MotorStatus is the last command sent to one motor channel.
type MotorStatus struct {
	Sent      bool      `json:"sent"`
	Direction Direction `json:"direction"`
	Step      uint16    `json:"step"`
}

type ShieldStatus struct {
	Address    ShieldAddress  `json:"-"`
	BusAddr    uint16         `json:"bus_addr"`
	Configured bool           `json:"configured"`
	Standby    bool           `json:"standby"`
	Motors     [2]MotorStatus `json:"motors"`
}

// ShieldNode tracks one shield on the bus. It is not safe for concurrent use,
// the owning Controller serialises access.
type ShieldNode struct {
	addr    ShieldAddress
	state   NodeState
	standby bool
	motors  [2]MotorStatus
}

func (n *ShieldNode) State() NodeState {
	return n.state
}

// ensureConfigured sends the PWM configuration frame the first time it is
// called. A failed write leaves the node uninitialized so the next
// operation tries again.
func (n *ShieldNode) ensureConfigured(tx func(addr uint16, f Frame) error) error {
	if n.state == NodeConfigured {
		return nil
	}

	if err := tx(n.addr.BusAddr(), ConfigurePWMFrame(PWM_RESOLUTION, PWM_FREQUENCY)); err != nil {
		return err
	}

	n.state = NodeConfigured
	return nil
}

// record keeps the last frame sent to a motor. Standby addresses the whole
// shield through motor A, so it is tracked separately.
func (n *ShieldNode) record(f Frame) {
	if f.Direction() == Standby {
		n.standby = true
		return
	}

	n.standby = false
	n.motors[f.Motor()] = MotorStatus{
		Sent:      true,
		Direction: f.Direction(),
		Step:      f.Step(),
	}
}

func (n *ShieldNode) status() ShieldStatus {
	return ShieldStatus{
		Address:    n.addr,
		BusAddr:    n.addr.BusAddr(),
		Configured: n.state == NodeConfigured,
		Standby:    n.standby,
		Motors:     n.motors,
	}
}

// busWriter adapts a drivers.I2C into the single frame write used by nodes.
func busWriter(bus drivers.I2C, buf *Frame) func(addr uint16, f Frame) error {
	return func(addr uint16, f Frame) error {
		*buf = f
		if err := bus.Tx(addr, buf[:], nil); err != nil {
			return &BusError{Addr: addr, Err: err}
		}
		return nil
	}
}
