package session

import "github.com/Ucell-first/cmpp30/cmpp/pdu"

// Transport is the byte-level collaborator the session engine depends on:
// it owns the TCP connection and frame codec, and delivers inbound frames
// and disconnection notices via callbacks. The concrete implementation
// lives in cmpp/codec; tests use internal/faketransport.
type Transport interface {
	// Connect establishes the underlying connection.
	Connect() error

	// Disconnect tears the connection down. Safe to call when already
	// disconnected.
	Disconnect() error

	// Send serializes and writes msg under sequenceID. May be called
	// concurrently by the session loop and the receive dispatcher; the
	// transport must serialize writes internally.
	Send(sequenceID uint32, msg pdu.Message) error

	// SetReceiveHandler registers the callback invoked on the transport's
	// own execution context for every inbound frame.
	SetReceiveHandler(func(pdu.Header, pdu.Message))

	// SetDisconnectHandler registers the callback invoked when the
	// connection ends other than through a call to Disconnect.
	SetDisconnectHandler(func(error))
}
