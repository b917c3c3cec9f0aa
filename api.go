package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/CodedInternet/gowemos/onboard/hardware"
)

// MotorOnPayload is the body of a motor on request.
type MotorOnPayload struct {
	Direction string `json:"direction"`
	Speed     *int   `json:"speed"`

	direction hardware.Direction
}

func (p *MotorOnPayload) Bind(r *http.Request) (err error) {
	if p.Speed == nil {
		return errors.New("speed is required")
	}

	p.direction, err = hardware.ParseDirection(p.Direction)
	return
}

// ShieldRoutes mounts the motor control API.
func ShieldRoutes(r chi.Router) {
	r.Get("/", ListShields)

	r.Route("/{shield}", func(r chi.Router) {
		r.Post("/configure", ConfigureShield)
		r.Post("/standby", StandbyShield)

		r.Route("/motors/{motor}", func(r chi.Router) {
			r.Post("/on", MotorOn)
			r.Post("/off", MotorOff)
			r.Post("/brake", BrakeMotor)
		})
	})
}

func ListShields(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ENV.Device.GetState())
}

func ConfigureShield(w http.ResponseWriter, r *http.Request) {
	deviceResponse(w, r, ENV.Device.Configure(chi.URLParam(r, "shield")))
}

func StandbyShield(w http.ResponseWriter, r *http.Request) {
	deviceResponse(w, r, ENV.Device.AllOff(chi.URLParam(r, "shield")))
}

func MotorOn(w http.ResponseWriter, r *http.Request) {
	motor, err := hardware.ParseMotor(chi.URLParam(r, "motor"))
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	data := &MotorOnPayload{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	deviceResponse(w, r, ENV.Device.MotorOn(chi.URLParam(r, "shield"), motor, data.direction, *data.Speed))
}

func MotorOff(w http.ResponseWriter, r *http.Request) {
	motor, err := hardware.ParseMotor(chi.URLParam(r, "motor"))
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	deviceResponse(w, r, ENV.Device.MotorOff(chi.URLParam(r, "shield"), motor))
}

func BrakeMotor(w http.ResponseWriter, r *http.Request) {
	motor, err := hardware.ParseMotor(chi.URLParam(r, "motor"))
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	deviceResponse(w, r, ENV.Device.BrakeMotor(chi.URLParam(r, "shield"), motor))
}

func RunPreset(w http.ResponseWriter, r *http.Request) {
	deviceResponse(w, r, ENV.Device.RunPreset(chi.URLParam(r, "preset")))
}

// deviceResponse renders the device state after a successful command and
// pushes it to websocket clients.
func deviceResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		render.Render(w, r, ErrDevice(err))
		return
	}

	if ENV.Conductor != nil {
		ENV.Conductor.UpdateClients()
	}
	render.JSON(w, r, ENV.Device.GetState())
}
