package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	deverrors "github.com/CodedInternet/gowemos/onboard/errors"
	"github.com/CodedInternet/gowemos/onboard/hardware"
)

// ErrResponse renders an error as a JSON body with a matching status code.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErrResponse(err error, status int) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		ErrorText:      err.Error(),
	}
}

var ErrNotFound = &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "Resource not found."}

func ErrInvalidRequest(err error) render.Renderer {
	return newErrResponse(err, http.StatusBadRequest)
}

func ErrUnauthorized(err error) render.Renderer {
	return newErrResponse(err, http.StatusUnauthorized)
}

func ErrPermissionDenied(err error) render.Renderer {
	return newErrResponse(err, http.StatusForbidden)
}

func ErrRender(err error) render.Renderer {
	return newErrResponse(err, http.StatusInternalServerError)
}

// ErrDevice maps a device error onto a response: unknown names are 404,
// bad arguments 400 and bus failures 502.
func ErrDevice(err error) render.Renderer {
	var shieldErr deverrors.ShieldNameError
	var presetErr deverrors.PresetNameError
	var busErr *hardware.BusError

	switch {
	case errors.As(err, &shieldErr), errors.As(err, &presetErr):
		return newErrResponse(err, http.StatusNotFound)
	case errors.Is(err, hardware.ErrInvalidArgument):
		return newErrResponse(err, http.StatusBadRequest)
	case errors.As(err, &busErr):
		return newErrResponse(err, http.StatusBadGateway)
	}
	return ErrRender(err)
}
