package main

import (
	"bytes"
	"encoding/json"
	. "github.com/smartystreets/goconvey/convey"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/CodedInternet/gowemos/comms"
	"github.com/CodedInternet/gowemos/onboard"
	"github.com/CodedInternet/gowemos/onboard/hardware"
	"github.com/CodedInternet/gowemos/onboard/i2cbus"
)

func setupTestDevice() (bus *i2cbus.SimBus) {
	config := onboard.ShieldsConfig{
		Version: "1.0",
		Shields: map[string]onboard.ShieldConfig{
			"drive": {Address: hardware.Address0x30},
			"aux":   {Address: hardware.Address0x2D},
		},
	}
	if err := config.Check(); err != nil {
		panic(err)
	}

	bus = i2cbus.NewSimBus(nil)
	ENV.Device = onboard.NewMotorShieldsOnBus(config, bus, nil)
	ENV.Conductor = comms.NewConductor(ENV.Device, nil)
	return
}

func authedRequest(method, url, token string, payload interface{}) *http.Request {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}

	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func busData(bus *i2cbus.SimBus) (data [][]byte) {
	for _, tx := range bus.Transactions() {
		data = append(data, tx.Data)
	}
	return
}

func TestShieldAPI(t *testing.T) {
	token, err := newJWT("api@test.case")
	if err != nil {
		t.Fatal(err)
	}

	Convey("Given a router with two simulated shields", t, func() {
		bus := setupTestDevice()
		router := newRouter()

		do := func(method, url string, payload interface{}) *httptest.ResponseRecorder {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, authedRequest(method, url, token, payload))
			return rr
		}

		Convey("the API requires a token", func() {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, authedRequest("GET", "/api/shields", "", nil))
			So(rr.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("shields are listed by address", func() {
			rr := do("GET", "/api/shields", nil)
			So(rr.Code, ShouldEqual, http.StatusOK)

			var state onboard.ShieldsState
			So(json.Unmarshal(rr.Body.Bytes(), &state), ShouldBeNil)
			So(len(state), ShouldEqual, 2)
			So(state[0].Name, ShouldEqual, "aux")
			So(state[1].Name, ShouldEqual, "drive")
			So(state[1].Address, ShouldEqual, "0x30")
		})

		Convey("a motor is switched on at full speed", func() {
			rr := do("POST", "/api/shields/drive/motors/A/on", map[string]interface{}{"direction": "forward", "speed": 100})
			So(rr.Code, ShouldEqual, http.StatusOK)
			So(busData(bus), ShouldResemble, [][]byte{
				{0x09, 0x3A, 0x98},
				{0x10, 0x21, 0xFF},
			})
			So(rr.Body.String(), ShouldContainSubstring, `"direction":"forward"`)

			Convey("and stopped", func() {
				So(do("POST", "/api/shields/drive/motors/A/off", nil).Code, ShouldEqual, http.StatusOK)
				So(do("POST", "/api/shields/drive/motors/b/brake", nil).Code, ShouldEqual, http.StatusOK)
				So(do("POST", "/api/shields/drive/standby", nil).Code, ShouldEqual, http.StatusOK)

				So(busData(bus)[2:], ShouldResemble, [][]byte{
					{0x10, 0x50, 0x00},
					{0x11, 0x00, 0x00},
					{0x10, 0x40, 0x00},
				})
			})
		})

		Convey("configure only sends the PWM frame once", func() {
			So(do("POST", "/api/shields/aux/configure", nil).Code, ShouldEqual, http.StatusOK)
			So(do("POST", "/api/shields/aux/configure", nil).Code, ShouldEqual, http.StatusOK)
			So(busData(bus), ShouldResemble, [][]byte{{0x09, 0x3A, 0x98}})
		})

		Convey("bad requests are rejected without touching the bus", func() {
			So(do("POST", "/api/shields/drive/motors/A/on", map[string]interface{}{"direction": "forward"}).Code, ShouldEqual, http.StatusBadRequest)
			So(do("POST", "/api/shields/drive/motors/A/on", map[string]interface{}{"direction": "brake", "speed": 50}).Code, ShouldEqual, http.StatusBadRequest)
			So(do("POST", "/api/shields/drive/motors/A/on", map[string]interface{}{"direction": "forward", "speed": 101}).Code, ShouldEqual, http.StatusBadRequest)
			So(do("POST", "/api/shields/drive/motors/C/off", nil).Code, ShouldEqual, http.StatusBadRequest)
			So(bus.Transactions(), ShouldBeEmpty)
		})

		Convey("unknown names are not found", func() {
			So(do("POST", "/api/shields/nope/motors/A/off", nil).Code, ShouldEqual, http.StatusNotFound)
			So(do("POST", "/api/presets/nope", nil).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("default presets drive the first shield", func() {
			So(do("POST", "/api/presets/spin", nil).Code, ShouldEqual, http.StatusOK)
			So(busData(bus), ShouldResemble, [][]byte{
				{0x09, 0x3A, 0x98},
				{0x10, 0x21, 0xFF},
				{0x11, 0x11, 0xFF},
			})
		})

		Convey("bus failures are reported as a bad gateway", func() {
			bus.Close()
			rr := do("POST", "/api/shields/drive/motors/A/off", nil)
			So(rr.Code, ShouldEqual, http.StatusBadGateway)
			So(rr.Body.String(), ShouldContainSubstring, "0x30")
		})
	})
}

func TestDriveWebsocket(t *testing.T) {
	token, err := newJWT("ws@test.case")
	if err != nil {
		t.Fatal(err)
	}

	Convey("Given a running server", t, func() {
		bus := setupTestDevice()
		srv := httptest.NewServer(newRouter())
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/drive"

		Convey("connections without a token are refused", func() {
			_, resp, err := websocket.DefaultDialer.Dial(url, nil)
			So(err, ShouldNotBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("commands drive the shield and return the state", func() {
			conn, _, err := websocket.DefaultDialer.Dial(url+"?jwt="+token, nil)
			So(err, ShouldBeNil)
			defer conn.Close()

			So(conn.WriteJSON(comms.Cmd{Cmd: comms.CMD_MOTOR_ON, Shield: "drive", Motor: "A", Direction: "reverse", Value: 100}), ShouldBeNil)

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			var payload comms.StatePayload
			So(conn.ReadJSON(&payload), ShouldBeNil)
			So(payload.Error, ShouldBeEmpty)
			So(busData(bus), ShouldResemble, [][]byte{
				{0x09, 0x3A, 0x98},
				{0x10, 0x11, 0xFF},
			})
		})
	})
}
