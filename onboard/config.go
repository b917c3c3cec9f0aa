package onboard

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver"
	"gopkg.in/yaml.v2"

	"github.com/CodedInternet/gowemos/onboard/hardware"
	"github.com/CodedInternet/gowemos/onboard/i2cbus"
)

const (
	CONFIG_VERSION = "~1.0"

	ACTION_ON      = "on"
	ACTION_OFF     = "off"
	ACTION_BRAKE   = "brake"
	ACTION_STANDBY = "standby"
)

type ShieldsConfig struct {
	Version string                  `yaml:"version"`
	Bus     i2cbus.Config           `yaml:"bus"`
	Shields map[string]ShieldConfig `yaml:"shields"`
	Presets map[string][]PresetStep `yaml:"presets,omitempty"`
}

type ShieldConfig struct {
	Address hardware.ShieldAddress
	Invert  []hardware.Motor
}

type YAMLShield struct {
	Address string   `yaml:"address"`
	Invert  []string `yaml:"invert,flow,omitempty"`
}

// PresetStep is one motor operation of a preset. Direction and Speed are only
// used by the "on" action.
type PresetStep struct {
	Shield    string `yaml:"shield"`
	Motor     string `yaml:"motor,omitempty"`
	Action    string `yaml:"action"`
	Direction string `yaml:"direction,omitempty"`
	Speed     int    `yaml:"speed,omitempty"`
}

func (sc ShieldConfig) MarshalYAML() (interface{}, error) {
	ys := &YAMLShield{Address: sc.Address.String()}
	for _, m := range sc.Invert {
		ys.Invert = append(ys.Invert, m.String())
	}
	return ys, nil
}

func (sc *ShieldConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ys YAMLShield
	if err := unmarshal(&ys); err != nil {
		return err
	}

	addr, err := hardware.ParseShieldAddress(ys.Address)
	if err != nil {
		return err
	}
	sc.Address = addr

	sc.Invert = nil
	for _, name := range ys.Invert {
		m, err := hardware.ParseMotor(name)
		if err != nil {
			return err
		}
		sc.Invert = append(sc.Invert, m)
	}
	return nil
}

func (sc ShieldConfig) Inverted(m hardware.Motor) bool {
	for _, inv := range sc.Invert {
		if inv == m {
			return true
		}
	}
	return false
}

// LoadConfig reads and checks a YAML config file.
func LoadConfig(filename string) (config ShieldsConfig, err error) {
	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return config, fmt.Errorf("unable to read yaml file: %w", err)
	}

	err = yaml.Unmarshal(yamlFile, &config)
	if err != nil {
		return config, fmt.Errorf("unable to unmarshal yaml: %w", err)
	}

	err = config.Check()
	return
}

// Check validates the config version and that shields and presets are
// consistent. Missing presets are filled with the defaults.
func (c *ShieldsConfig) Check() error {
	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("invalid config version %q: %w", c.Version, err)
	}

	constraint, err := semver.NewConstraint(CONFIG_VERSION)
	if err != nil {
		return err
	}

	if !constraint.Check(version) {
		return fmt.Errorf("unable to use config version %s - require %s", c.Version, CONFIG_VERSION)
	}

	if len(c.Shields) == 0 {
		return fmt.Errorf("no shields configured")
	}

	used := make(map[hardware.ShieldAddress]string)
	for _, name := range c.ShieldNames() {
		addr := c.Shields[name].Address
		if other, ok := used[addr]; ok {
			return fmt.Errorf("shields %s and %s share address %s", other, name, addr)
		}
		used[addr] = name
	}

	if len(c.Presets) == 0 {
		c.Presets = DefaultPresets(c.ShieldNames()[0])
	}

	for name, steps := range c.Presets {
		for i, step := range steps {
			if err := c.checkStep(step); err != nil {
				return fmt.Errorf("preset %s step %d: %w", name, i+1, err)
			}
		}
	}

	return nil
}

func (c *ShieldsConfig) checkStep(step PresetStep) error {
	if _, ok := c.Shields[step.Shield]; !ok {
		return fmt.Errorf("unknown shield %q", step.Shield)
	}

	switch strings.ToLower(step.Action) {
	case ACTION_STANDBY:
		return nil

	case ACTION_OFF, ACTION_BRAKE:
		_, err := hardware.ParseMotor(step.Motor)
		return err

	case ACTION_ON:
		if _, err := hardware.ParseMotor(step.Motor); err != nil {
			return err
		}
		if _, err := hardware.ParseDirection(step.Direction); err != nil {
			return err
		}
		if step.Speed < hardware.SPEED_MIN || step.Speed > hardware.SPEED_MAX {
			return fmt.Errorf("speed %d outside %d-%d", step.Speed, hardware.SPEED_MIN, hardware.SPEED_MAX)
		}
		return nil
	}

	return fmt.Errorf("unknown action %q", step.Action)
}

// ShieldNames returns the configured names ordered by shield address.
func (c *ShieldsConfig) ShieldNames() []string {
	names := make([]string, 0, len(c.Shields))
	for name := range c.Shields {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return c.Shields[names[i]].Address < c.Shields[names[j]].Address
	})
	return names
}

// DefaultPresets drives a two wheeled base on one shield: spin in place,
// drive forward with mirrored motors and coast to a stop.
func DefaultPresets(shield string) map[string][]PresetStep {
	return map[string][]PresetStep{
		"spin": {
			{Shield: shield, Motor: "A", Action: ACTION_ON, Direction: "forward", Speed: 100},
			{Shield: shield, Motor: "B", Action: ACTION_ON, Direction: "reverse", Speed: 100},
		},
		"forward": {
			{Shield: shield, Motor: "A", Action: ACTION_ON, Direction: "reverse", Speed: 100},
			{Shield: shield, Motor: "B", Action: ACTION_ON, Direction: "forward", Speed: 100},
		},
		"stop": {
			{Shield: shield, Motor: "A", Action: ACTION_OFF},
			{Shield: shield, Motor: "B", Action: ACTION_OFF},
		},
	}
}
