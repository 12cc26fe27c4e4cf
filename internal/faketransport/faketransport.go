// Package faketransport is an in-memory session.Transport double used by
// the session package's tests to drive CONNECT_RESP/SUBMIT_RESP/DELIVER
// frames without a real socket.
package faketransport

import (
	"sync"

	"github.com/Ucell-first/cmpp30/cmpp/pdu"
)

// Sent records one frame handed to the transport's Send method.
type Sent struct {
	SequenceID uint32
	Message    pdu.Message
}

// Fake is a controllable session.Transport. Tests call Connect/Disconnect
// through the session.Client under test, and call Deliver/fail methods on
// the Fake directly from the test goroutine to simulate gateway behavior.
type Fake struct {
	mu sync.Mutex

	connected bool
	connectErr error
	sendErr    error

	Sent []Sent

	onReceive    func(pdu.Header, pdu.Message)
	onDisconnect func(error)
}

// New returns a Fake ready to accept a Connect call.
func New() *Fake {
	return &Fake{}
}

// FailConnectWith makes the next Connect call return err.
func (f *Fake) FailConnectWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectErr = err
}

// FailSendWith makes every subsequent Send call return err.
func (f *Fake) FailSendWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

func (f *Fake) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.connectErr != nil {
		err := f.connectErr
		f.connectErr = nil
		return err
	}
	f.connected = true
	return nil
}

func (f *Fake) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *Fake) Send(sequenceID uint32, msg pdu.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.Sent = append(f.Sent, Sent{SequenceID: sequenceID, Message: msg})
	return nil
}

func (f *Fake) SetReceiveHandler(h func(pdu.Header, pdu.Message)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onReceive = h
}

func (f *Fake) SetDisconnectHandler(h func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onDisconnect = h
}

// Deliver simulates an inbound frame arriving on the transport's own
// execution context, the same as a real transport.
func (f *Fake) Deliver(seq uint32, msg pdu.Message) {
	f.mu.Lock()
	h := f.onReceive
	f.mu.Unlock()
	if h != nil {
		h(pdu.Header{SequenceID: seq, CommandID: msg.CommandID()}, msg)
	}
}

// SimulateDisconnect invokes the registered disconnect handler, as if the
// link had dropped out from under the client.
func (f *Fake) SimulateDisconnect(err error) {
	f.mu.Lock()
	h := f.onDisconnect
	f.connected = false
	f.mu.Unlock()
	if h != nil {
		h(err)
	}
}

// LastSent returns the most recently sent frame, or false if none yet.
func (f *Fake) LastSent() (Sent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return Sent{}, false
	}
	return f.Sent[len(f.Sent)-1], true
}
