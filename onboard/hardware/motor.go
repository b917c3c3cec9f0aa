package hardware

// MotorInterface drives a single motor channel.
type MotorInterface interface {
	Run(direction Direction, speed int) error
	Coast() error
	Brake() error
	GetState() (state MotorStatus)
}

var _ MotorInterface = (*ShieldMotor)(nil)

// ShieldMotor binds one channel of a shield on a Controller. Inverted swaps
// Forward and Reverse for motors wired the other way round.
type ShieldMotor struct {
	Controller *Controller
	Shield     ShieldAddress
	Index      Motor
	Inverted   bool
}

func (m *ShieldMotor) Run(direction Direction, speed int) error {
	if m.Inverted {
		direction = direction.Inverted()
	}
	return m.Controller.MotorOn(m.Shield, m.Index, direction, speed)
}

func (m *ShieldMotor) Coast() error {
	return m.Controller.MotorOff(m.Shield, m.Index)
}

func (m *ShieldMotor) Brake() error {
	return m.Controller.BrakeMotor(m.Shield, m.Index)
}

func (m *ShieldMotor) GetState() (state MotorStatus) {
	status, err := m.Controller.Status(m.Shield)
	if err != nil || !m.Index.Valid() {
		return
	}
	return status.Motors[m.Index]
}
