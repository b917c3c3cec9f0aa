package onboard

import (
	"errors"
	"io"
	"log"
	"sort"
	"strings"

	deverrors "github.com/CodedInternet/gowemos/onboard/errors"
	"github.com/CodedInternet/gowemos/onboard/hardware"
	"github.com/CodedInternet/gowemos/onboard/i2cbus"
)

// Shields is the set of named motor shields a client can drive.
type Shields interface {
	Configure(shield string) (err error)
	MotorOn(shield string, motor hardware.Motor, direction hardware.Direction, speed int) (err error)
	MotorOff(shield string, motor hardware.Motor) (err error)
	BrakeMotor(shield string, motor hardware.Motor) (err error)
	AllOff(shield string) (err error)
	RunPreset(name string) (err error)
	GetState() (state ShieldsState)
}

type ShieldState struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	hardware.ShieldStatus
}

type ShieldsState []ShieldState

type MotorShields struct {
	Config ShieldsConfig

	bus        i2cbus.Bus
	controller *hardware.Controller
	motors     map[string][2]hardware.MotorInterface
	log        *log.Logger
}

// NewMotorShields opens the configured bus and binds every shield to it.
func NewMotorShields(config ShieldsConfig, logger *log.Logger) (d *MotorShields, err error) {
	bus, err := i2cbus.Open(config.Bus, logger)
	if err != nil {
		return
	}

	return NewMotorShieldsOnBus(config, bus, logger), nil
}

func NewMotorShieldsOnBus(config ShieldsConfig, bus i2cbus.Bus, logger *log.Logger) (d *MotorShields) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	d = &MotorShields{
		Config:     config,
		bus:        bus,
		controller: hardware.NewController(bus, logger),
		motors:     make(map[string][2]hardware.MotorInterface, len(config.Shields)),
		log:        logger,
	}

	for name, sConf := range config.Shields {
		var motors [2]hardware.MotorInterface
		for _, m := range []hardware.Motor{hardware.MotorA, hardware.MotorB} {
			motors[m] = &hardware.ShieldMotor{
				Controller: d.controller,
				Shield:     sConf.Address,
				Index:      m,
				Inverted:   sConf.Inverted(m),
			}
		}
		d.motors[name] = motors
	}

	return
}

func (d *MotorShields) Names() []string {
	return d.Config.ShieldNames()
}

func (d *MotorShields) PresetNames() []string {
	names := make([]string, 0, len(d.Config.Presets))
	for name := range d.Config.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *MotorShields) Configure(shield string) (err error) {
	s, ok := d.Config.Shields[shield]
	if !ok {
		return deverrors.ShieldNameError{Name: shield}
	}

	return d.controller.Configure(s.Address)
}

func (d *MotorShields) MotorOn(shield string, motor hardware.Motor, direction hardware.Direction, speed int) (err error) {
	m, err := d.motor(shield, motor)
	if err != nil {
		return
	}

	return m.Run(direction, speed)
}

func (d *MotorShields) MotorOff(shield string, motor hardware.Motor) (err error) {
	m, err := d.motor(shield, motor)
	if err != nil {
		return
	}

	return m.Coast()
}

func (d *MotorShields) BrakeMotor(shield string, motor hardware.Motor) (err error) {
	m, err := d.motor(shield, motor)
	if err != nil {
		return
	}

	return m.Brake()
}

func (d *MotorShields) AllOff(shield string) (err error) {
	s, ok := d.Config.Shields[shield]
	if !ok {
		return deverrors.ShieldNameError{Name: shield}
	}

	return d.controller.AllOff(s.Address)
}

// RunPreset executes the steps of a preset in order and stops at the first
// failing step.
func (d *MotorShields) RunPreset(name string) (err error) {
	steps, ok := d.Config.Presets[name]
	if !ok {
		return deverrors.PresetNameError{Name: name}
	}

	d.log.Printf("running preset %s", name)
	for _, step := range steps {
		if err = d.runStep(step); err != nil {
			return
		}
	}

	return
}

func (d *MotorShields) runStep(step PresetStep) error {
	if strings.ToLower(step.Action) == ACTION_STANDBY {
		return d.AllOff(step.Shield)
	}

	motor, err := hardware.ParseMotor(step.Motor)
	if err != nil {
		return err
	}

	switch strings.ToLower(step.Action) {
	case ACTION_ON:
		direction, err := hardware.ParseDirection(step.Direction)
		if err != nil {
			return err
		}
		return d.MotorOn(step.Shield, motor, direction, step.Speed)

	case ACTION_OFF:
		return d.MotorOff(step.Shield, motor)

	case ACTION_BRAKE:
		return d.BrakeMotor(step.Shield, motor)
	}

	return errors.New("unknown preset action " + step.Action)
}

// GetState reports every shield ordered by address.
func (d *MotorShields) GetState() (state ShieldsState) {
	for _, name := range d.Names() {
		sConf := d.Config.Shields[name]
		status, err := d.controller.Status(sConf.Address)
		if err != nil {
			continue
		}

		state = append(state, ShieldState{
			Name:         name,
			Address:      sConf.Address.String(),
			ShieldStatus: status,
		})
	}
	return
}

// Shutdown puts every configured shield into standby and releases the bus.
// The bus is closed even if a shield could not be reached.
func (d *MotorShields) Shutdown() (err error) {
	for _, name := range d.Names() {
		addr := d.Config.Shields[name].Address
		if d.controller.State(addr) != hardware.NodeConfigured {
			continue
		}

		if serr := d.controller.AllOff(addr); serr != nil && err == nil {
			err = serr
		}
	}

	if cerr := d.bus.Close(); err == nil {
		err = cerr
	}
	return
}

func (d *MotorShields) motor(shield string, motor hardware.Motor) (hardware.MotorInterface, error) {
	motors, ok := d.motors[shield]
	if !ok {
		return nil, deverrors.ShieldNameError{Name: shield}
	}

	if !motor.Valid() {
		return nil, hardware.ErrInvalidArgument
	}

	return motors[motor], nil
}
