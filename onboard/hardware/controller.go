package hardware

import (
	"io"
	"log"
	"sync"

	"tinygo.org/x/drivers"
)

// Controller drives up to SHIELD_COUNT motor shields sharing one I2C bus.
//
// Every public operation configures the target shield first if required,
// then sends its motor frame. The whole operation holds the controller lock
// so frames from concurrent callers never interleave on the bus.
type Controller struct {
	lock  sync.Mutex
	nodes [SHIELD_COUNT]ShieldNode
	buf   Frame
	tx    func(addr uint16, f Frame) error
	log   *log.Logger
}

func NewController(bus drivers.I2C, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &Controller{
		log: logger,
	}
	for i := range c.nodes {
		c.nodes[i].addr = ShieldAddress(i)
	}
	c.tx = busWriter(bus, &c.buf)

	return c
}

// Configure sends the PWM configuration to a shield unless it has already
// been configured.
func (c *Controller) Configure(shield ShieldAddress) error {
	if !shield.Valid() {
		return invalidArgument("shield %d", shield)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	return c.configure(shield)
}

// SetMotor sends a raw set motor frame. It does not configure the shield.
func (c *Controller) SetMotor(shield ShieldAddress, motor Motor, direction Direction, step uint16) error {
	if err := validate(shield, motor); err != nil {
		return err
	}
	if !direction.Valid() {
		return invalidArgument("direction %d", direction)
	}
	if step > MAX_STEP {
		return invalidArgument("step %d above %d", step, MAX_STEP)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	return c.setMotor(shield, motor, direction, step)
}

// MotorOn runs a motor at speed percent (0-100). Speed 0 coasts the motor.
func (c *Controller) MotorOn(shield ShieldAddress, motor Motor, direction Direction, speed int) error {
	if err := validate(shield, motor); err != nil {
		return err
	}
	if !direction.Driving() {
		return invalidArgument("direction %s cannot drive a motor", direction)
	}
	if speed < SPEED_MIN || speed > SPEED_MAX {
		return invalidArgument("speed %d outside %d-%d", speed, SPEED_MIN, SPEED_MAX)
	}

	if speed == 0 {
		return c.MotorOff(shield, motor)
	}

	step, err := SpeedToStep(speed)
	if err != nil {
		return err
	}

	return c.configured(shield, func() error {
		return c.setMotor(shield, motor, direction, step)
	})
}

// MotorOff disconnects a motor so it free-wheels to a stop.
func (c *Controller) MotorOff(shield ShieldAddress, motor Motor) error {
	if err := validate(shield, motor); err != nil {
		return err
	}

	return c.configured(shield, func() error {
		return c.setMotor(shield, motor, Coast, 0)
	})
}

// BrakeMotor shorts the motor windings to stop it immediately.
func (c *Controller) BrakeMotor(shield ShieldAddress, motor Motor) error {
	if err := validate(shield, motor); err != nil {
		return err
	}

	return c.configured(shield, func() error {
		return c.setMotor(shield, motor, Brake, 0)
	})
}

// AllOff puts the whole shield into standby. The command is always sent on
// motor A's channel, the shield applies it to both motors.
func (c *Controller) AllOff(shield ShieldAddress) error {
	if !shield.Valid() {
		return invalidArgument("shield %d", shield)
	}

	return c.configured(shield, func() error {
		return c.setMotor(shield, MotorA, Standby, 0)
	})
}

func (c *Controller) State(shield ShieldAddress) NodeState {
	if !shield.Valid() {
		return NodeUninitialized
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	return c.nodes[shield].State()
}

func (c *Controller) Status(shield ShieldAddress) (ShieldStatus, error) {
	if !shield.Valid() {
		return ShieldStatus{}, invalidArgument("shield %d", shield)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	return c.nodes[shield].status(), nil
}

// configured runs fn with the lock held after making sure the shield is
// configured.
func (c *Controller) configured(shield ShieldAddress, fn func() error) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := c.configure(shield); err != nil {
		return err
	}
	return fn()
}

func (c *Controller) configure(shield ShieldAddress) error {
	node := &c.nodes[shield]
	if node.State() == NodeConfigured {
		return nil
	}

	if err := node.ensureConfigured(c.tx); err != nil {
		c.log.Printf("configure shield %s: %v", shield, err)
		return err
	}

	c.log.Printf("shield %s configured: %d bit resolution at %dHz", shield, PWM_RESOLUTION, PWM_FREQUENCY)
	return nil
}

func (c *Controller) setMotor(shield ShieldAddress, motor Motor, direction Direction, step uint16) error {
	node := &c.nodes[shield]
	f := SetMotorFrame(motor, direction, step)

	if err := c.tx(shield.BusAddr(), f); err != nil {
		c.log.Printf("set motor %s on shield %s: %v", motor, shield, err)
		return err
	}

	node.record(f)
	return nil
}

func validate(shield ShieldAddress, motor Motor) error {
	if !shield.Valid() {
		return invalidArgument("shield %d", shield)
	}
	if !motor.Valid() {
		return invalidArgument("motor %d", motor)
	}
	return nil
}
