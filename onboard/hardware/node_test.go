package hardware

import (
	"errors"
	. "github.com/smartystreets/goconvey/convey"
	"testing"
)

type testTx struct {
	addr uint16
	data []byte
}

type testBus struct {
	txerr bool
	txs   []testTx
}

func (t *testBus) Tx(addr uint16, w, r []byte) error {
	if t.txerr {
		return errors.New("this is a simulated tx error")
	}

	// copy as the controller reuses its buffer
	data := make([]byte, len(w))
	copy(data, w)
	t.txs = append(t.txs, testTx{addr: addr, data: data})
	return nil
}

func (t *testBus) frames(addr uint16) (frames []Frame) {
	for _, tx := range t.txs {
		if tx.addr == addr {
			var f Frame
			copy(f[:], tx.data)
			frames = append(frames, f)
		}
	}
	return
}

func createTestController() (tBus *testBus, c *Controller) {
	tBus = &testBus{}
	c = NewController(tBus, nil)
	return
}

func TestShieldNode(t *testing.T) {
	Convey("a new node is uninitialized", t, func() {
		tBus := &testBus{}
		var buf Frame
		node := &ShieldNode{addr: Address0x2F}
		So(node.State(), ShouldEqual, NodeUninitialized)

		Convey("configuring sends one frame and transitions once", func() {
			tx := busWriter(tBus, &buf)
			So(node.ensureConfigured(tx), ShouldBeNil)
			So(node.ensureConfigured(tx), ShouldBeNil)
			So(node.State(), ShouldEqual, NodeConfigured)
			So(tBus.txs, ShouldHaveLength, 1)
			So(tBus.txs[0].addr, ShouldEqual, 0x2F)
			So(tBus.txs[0].data, ShouldResemble, []byte{0x09, 0x3A, 0x98})
		})

		Convey("a failed write leaves the node uninitialized", func() {
			tBus.txerr = true
			err := node.ensureConfigured(busWriter(tBus, &buf))

			var busErr *BusError
			So(errors.As(err, &busErr), ShouldBeTrue)
			So(busErr.Addr, ShouldEqual, 0x2F)
			So(node.State(), ShouldEqual, NodeUninitialized)
		})
	})

	Convey("recording tracks motors and standby", t, func() {
		node := &ShieldNode{}
		node.record(SetMotorFrame(MotorB, Forward, 300))
		So(node.status().Motors[MotorB], ShouldResemble, MotorStatus{Sent: true, Direction: Forward, Step: 300})
		So(node.status().Motors[MotorA].Sent, ShouldBeFalse)

		node.record(SetMotorFrame(MotorA, Standby, 0))
		So(node.status().Standby, ShouldBeTrue)
		So(node.status().Motors[MotorA].Sent, ShouldBeFalse)

		node.record(SetMotorFrame(MotorA, Coast, 0))
		So(node.status().Standby, ShouldBeFalse)
	})
}
