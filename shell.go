package main

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/CodedInternet/gowemos/onboard"
	"github.com/CodedInternet/gowemos/onboard/hardware"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// shellCommand is a device command run from the shell. Usage is printed
// when the command fails.
type shellCommand struct {
	name  string
	usage string
	run   func(args []string) error
}

func newShell() *ishell.Shell {
	shieldNames := func([]string) []string {
		return ENV.Device.Names()
	}
	presetNames := func([]string) []string {
		return ENV.Device.PresetNames()
	}

	shell := ishell.New()
	shell.ShowPrompt(true)
	shell.Interrupt(func(c *ishell.Context, count int, input string) {
		if count >= 2 {
			c.Stop()
			return
		}
		c.Println("Input Ctrl-c once more to exit")
	})
	shell.AddCmd(&ishell.Cmd{
		Name: "createsuperuser",
		Help: "createsuperuser <email> <password>",
		Func: func(c *ishell.Context) {
			// disable the '>>>' for cleaner same line input.
			c.ShowPrompt(false)
			defer c.ShowPrompt(true)

			var email string
			if len(c.Args) >= 1 {
				email = c.Args[0]
			} else {
				c.Print("Email: ")
				email = c.ReadLine()
			}

			var password string
			if len(c.Args) >= 2 {
				password = c.Args[1]
			} else {
				c.Print("Password: ")
				password = c.ReadPassword()
			}

			if err := createUser(ENV.DB, email, password, true); err != nil {
				c.Err(err)
				return
			}
			c.Println("Superuser created")
		},
	})

	for _, cmd := range deviceCommands(ENV.Device) {
		cmd := cmd
		completer := shieldNames
		if cmd.name == "preset" {
			completer = presetNames
		}

		shell.AddCmd(&ishell.Cmd{
			Name:      cmd.name,
			Help:      cmd.usage,
			Completer: completer,
			Func: func(c *ishell.Context) {
				if err := cmd.run(c.Args); err != nil {
					c.Err(err)
					c.Println("usage:", cmd.usage)
					return
				}
				if ENV.Conductor != nil {
					ENV.Conductor.UpdateClients()
				}
			},
		})
	}

	shell.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "show the last command sent to every shield",
		Func: func(c *ishell.Context) {
			c.Println(statusTable(ENV.Device.GetState()))
		},
	})

	return shell
}

func deviceCommands(device onboard.Shields) []shellCommand {
	return []shellCommand{
		{
			name:  "on",
			usage: "on <shield> <motor> <forward|reverse> <speed>",
			run: func(args []string) error {
				if len(args) != 4 {
					return fmt.Errorf("expected 4 arguments, got %d", len(args))
				}
				motor, err := hardware.ParseMotor(args[1])
				if err != nil {
					return err
				}
				direction, err := hardware.ParseDirection(args[2])
				if err != nil {
					return err
				}
				speed, err := strconv.Atoi(args[3])
				if err != nil {
					return fmt.Errorf("invalid speed %q", args[3])
				}
				return device.MotorOn(args[0], motor, direction, speed)
			},
		},
		{
			name:  "off",
			usage: "off <shield> <motor>",
			run: func(args []string) error {
				if len(args) != 2 {
					return fmt.Errorf("expected 2 arguments, got %d", len(args))
				}
				motor, err := hardware.ParseMotor(args[1])
				if err != nil {
					return err
				}
				return device.MotorOff(args[0], motor)
			},
		},
		{
			name:  "brake",
			usage: "brake <shield> <motor>",
			run: func(args []string) error {
				if len(args) != 2 {
					return fmt.Errorf("expected 2 arguments, got %d", len(args))
				}
				motor, err := hardware.ParseMotor(args[1])
				if err != nil {
					return err
				}
				return device.BrakeMotor(args[0], motor)
			},
		},
		{
			name:  "standby",
			usage: "standby <shield>",
			run: func(args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("expected 1 argument, got %d", len(args))
				}
				return device.AllOff(args[0])
			},
		},
		{
			name:  "configure",
			usage: "configure <shield>",
			run: func(args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("expected 1 argument, got %d", len(args))
				}
				return device.Configure(args[0])
			},
		},
		{
			name:  "preset",
			usage: "preset <name>",
			run: func(args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("expected 1 argument, got %d", len(args))
				}
				return device.RunPreset(args[0])
			},
		},
	}
}

// statusTable renders one row per shield with the last command sent to each
// motor.
func statusTable(state onboard.ShieldsState) string {
	if len(state) == 0 {
		return dimStyle.Render("no shields configured")
	}

	rows := make([][]string, 0, len(state))
	for _, s := range state {
		rows = append(rows, []string{
			s.Name,
			s.Address,
			yesNo(s.Configured),
			yesNo(s.Standby),
			motorCell(s.Motors[hardware.MotorA]),
			motorCell(s.Motors[hardware.MotorB]),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Shield", "Address", "Configured", "Standby", "Motor A", "Motor B").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return nameStyle
			}
			return cellStyle
		})

	return t.Render()
}

func motorCell(m hardware.MotorStatus) string {
	if !m.Sent {
		return "-"
	}
	if m.Direction.Driving() {
		return fmt.Sprintf("%s %d", m.Direction, m.Step)
	}
	return m.Direction.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
