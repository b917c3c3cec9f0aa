package i2cbus

import (
	"io"
	"log"
	"sync"
)

// Transaction is a write recorded by SimBus.
type Transaction struct {
	Addr uint16
	Data []byte
}

// SimBus accepts every write and keeps a copy of it. Used when running
// without hardware and in tests.
type SimBus struct {
	lock   sync.Mutex
	txs    []Transaction
	closed bool
	log    *log.Logger
}

func NewSimBus(logger *log.Logger) *SimBus {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &SimBus{log: logger}
}

func (s *SimBus) Tx(addr uint16, w, r []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}

	data := make([]byte, len(w))
	copy(data, w)
	s.txs = append(s.txs, Transaction{Addr: addr, Data: data})
	s.log.Printf("sim tx 0x%02X % X", addr, data)

	// nothing to read back from a simulated shield
	for i := range r {
		r[i] = 0
	}
	return nil
}

// Transactions returns a copy of everything written so far.
func (s *SimBus) Transactions() []Transaction {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make([]Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

func (s *SimBus) Reset() {
	s.lock.Lock()
	s.txs = nil
	s.lock.Unlock()
}

func (s *SimBus) Close() error {
	s.lock.Lock()
	s.closed = true
	s.lock.Unlock()
	return nil
}
