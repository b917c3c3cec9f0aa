package comms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/CodedInternet/gowemos/onboard"
	"github.com/CodedInternet/gowemos/onboard/hardware"
)

const CLIENT_QUEUE = 8

// Conductor executes client commands on the device and pushes the resulting
// state to every connected client.
type Conductor struct {
	Device onboard.Shields

	clients map[*Client]struct{}
	lock    sync.Mutex
	log     *log.Logger
}

type Client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewConductor(device onboard.Shields, logger *log.Logger) *Conductor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Conductor{
		Device:  device,
		clients: make(map[*Client]struct{}),
		log:     logger,
	}
}

func (c *Conductor) ProcessCommand(cmd Cmd) error {
	switch cmd.Cmd {
	case CMD_MOTOR_ON:
		motor, err := hardware.ParseMotor(cmd.Motor)
		if err != nil {
			return err
		}
		direction, err := hardware.ParseDirection(cmd.Direction)
		if err != nil {
			return err
		}
		if cmd.Value != math.Trunc(cmd.Value) {
			return fmt.Errorf("%w: speed %v is not a whole percentage", hardware.ErrInvalidArgument, cmd.Value)
		}
		return c.Device.MotorOn(cmd.Shield, motor, direction, int(cmd.Value))

	case CMD_MOTOR_OFF:
		motor, err := hardware.ParseMotor(cmd.Motor)
		if err != nil {
			return err
		}
		return c.Device.MotorOff(cmd.Shield, motor)

	case CMD_BRAKE:
		motor, err := hardware.ParseMotor(cmd.Motor)
		if err != nil {
			return err
		}
		return c.Device.BrakeMotor(cmd.Shield, motor)

	case CMD_STANDBY:
		return c.Device.AllOff(cmd.Shield)

	case CMD_CONFIGURE:
		return c.Device.Configure(cmd.Shield)

	case CMD_PRESET:
		return c.Device.RunPreset(cmd.Name)

	case CMD_STATE:
		return nil
	}

	return fmt.Errorf("unable to process command %q", cmd.Cmd)
}

// Serve runs a websocket client until its connection drops. Every command
// is answered with the device state, which is also sent to the other
// clients.
func (c *Conductor) Serve(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, CLIENT_QUEUE),
	}
	c.addClient(client)
	defer c.removeClient(client)

	go client.writer()

	for {
		var cmd Cmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if isDecodeError(err) {
				c.reply(client, err)
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Println("read:", err)
			}
			return
		}

		if err := c.ProcessCommand(cmd); err != nil {
			c.log.Printf("command %s failed: %v", cmd.Cmd, err)
			c.reply(client, err)
			continue
		}

		c.UpdateClients()
	}
}

// UpdateClients sends the current state to every client. Slow clients that
// cannot keep up miss updates.
func (c *Conductor) UpdateClients() {
	msg, err := json.Marshal(StatePayload{Shields: c.Device.GetState()})
	if err != nil {
		c.log.Println("marshal state:", err)
		return
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	for client := range c.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
}

func (c *Conductor) ClientCount() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.clients)
}

func (c *Conductor) reply(client *Client, cmdErr error) {
	msg, err := json.Marshal(StatePayload{
		Shields: c.Device.GetState(),
		Error:   cmdErr.Error(),
	})
	if err != nil {
		return
	}

	select {
	case client.send <- msg:
	default:
	}
}

func (c *Conductor) addClient(client *Client) {
	c.lock.Lock()
	c.clients[client] = struct{}{}
	c.lock.Unlock()
}

func (c *Conductor) removeClient(client *Client) {
	c.lock.Lock()
	delete(c.clients, client)
	close(client.send)
	c.lock.Unlock()
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func (client *Client) writer() {
	for msg := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
