package errors

import "fmt"

type ShieldNameError struct {
	Name string
}

func (err ShieldNameError) Error() string {
	return fmt.Sprintf("no such shield %s", err.Name)
}

type PresetNameError struct {
	Name string
}

func (err PresetNameError) Error() string {
	return fmt.Sprintf("no such preset %s", err.Name)
}

type UnsupportedBusError struct {
	Driver string
	Reason string
}

func (err UnsupportedBusError) Error() string {
	if len(err.Driver) == 0 {
		err.Driver = "UNKNOWN"
	}
	if len(err.Reason) == 0 {
		return fmt.Sprintf("unsupported bus driver %s", err.Driver)
	}

	return fmt.Sprintf("unsupported bus driver %s: %s", err.Driver, err.Reason)
}
