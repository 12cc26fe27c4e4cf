// Package codec implements the byte-level CMPP 3.0 transport: TCP framing,
// the 12-byte header, and a persistent read loop that feeds decoded frames
// to the session engine. It extends a single-shot connect/writePDU/readPDU
// request/response exchange into a persistent connection that can also
// receive unsolicited DELIVER and ACTIVE_TEST frames.
package codec

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	cmpperrors "github.com/Ucell-first/cmpp30/cmpp/errors"
	"github.com/Ucell-first/cmpp30/cmpp/pdu"
)

// Conn is a session.Transport backed by a real TCP socket.
type Conn struct {
	host string
	port int

	connectTimeout time.Duration
	readTimeout    time.Duration

	writeMu sync.Mutex
	conn    net.Conn

	onReceive    func(pdu.Header, pdu.Message)
	onDisconnect func(error)

	stop chan struct{}
}

// New returns a Conn targeting host:port. connectTimeout bounds the dial;
// readTimeout bounds each individual read of the background receive loop
// (not a request timeout, that belongs to the session package).
func New(host string, port int, connectTimeout, readTimeout time.Duration) *Conn {
	return &Conn{
		host:           host,
		port:           port,
		connectTimeout: connectTimeout,
		readTimeout:    readTimeout,
	}
}

// SetReceiveHandler registers the callback invoked for every inbound frame.
func (c *Conn) SetReceiveHandler(f func(pdu.Header, pdu.Message)) {
	c.onReceive = f
}

// SetDisconnectHandler registers the callback invoked when the read loop
// observes the connection end. It is not invoked when the connection ends
// through a local Disconnect.
func (c *Conn) SetDisconnectHandler(f func(error)) {
	c.onDisconnect = f
}

// Connect dials the gateway and starts the background read loop.
func (c *Conn) Connect() error {
	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	dialer := net.Dialer{Timeout: c.connectTimeout}

	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return cmpperrors.Wrap(cmpperrors.New("cmpp transport: dial failed"), err)
	}

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()

	c.stop = make(chan struct{})
	go c.readLoop(conn, c.stop)
	return nil
}

// Disconnect closes the socket and stops the read loop. Safe to call more
// than once.
func (c *Conn) Disconnect() error {
	c.writeMu.Lock()
	conn := c.conn
	c.conn = nil
	c.writeMu.Unlock()

	if conn == nil {
		return nil
	}
	if c.stop != nil {
		close(c.stop)
	}
	return conn.Close()
}

// Send serializes and writes one PDU. Safe to call concurrently from the
// session loop and the inbound dispatcher: the transport must serialize
// writes internally.
func (c *Conn) Send(sequenceID uint32, msg pdu.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return cmpperrors.New("cmpp transport: not connected")
	}

	body := msg.Marshal()
	header := pdu.MarshalHeader(pdu.Header{CommandID: msg.CommandID(), SequenceID: sequenceID}, len(body))

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return cmpperrors.Wrap(cmpperrors.New("cmpp transport: set write deadline"), err)
	}
	if _, err := c.conn.Write(header); err != nil {
		return cmpperrors.Wrap(cmpperrors.New("cmpp transport: write header"), err)
	}
	if len(body) > 0 {
		if _, err := c.conn.Write(body); err != nil {
			return cmpperrors.Wrap(cmpperrors.New("cmpp transport: write body"), err)
		}
	}
	return nil
}

// readLoop decodes frames until the connection errs or Disconnect is
// called. On a connection error it fires the disconnect callback once; when
// Disconnect stopped it, it returns without firing the callback.
func (c *Conn) readLoop(conn net.Conn, stop chan struct{}) {
	var loopErr error
	for {
		select {
		case <-stop:
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			loopErr = err
			break
		}

		headerBuf := make([]byte, pdu.HeaderLen)
		if _, err := io.ReadFull(conn, headerBuf); err != nil {
			if isTimeout(err) {
				continue
			}
			loopErr = err
			break
		}

		header, err := pdu.UnmarshalHeader(headerBuf)
		if err != nil {
			loopErr = err
			break
		}

		bodyLen := int(header.TotalLength) - pdu.HeaderLen
		var body []byte
		if bodyLen > 0 {
			body = make([]byte, bodyLen)
			if _, err := io.ReadFull(conn, body); err != nil {
				loopErr = err
				break
			}
		}

		msg, err := pdu.Decode(header.CommandID, body)
		if err != nil {
			// Malformed frame: skip it, keep the link up. A genuinely dead
			// socket will fail the next header read instead.
			continue
		}

		if c.onReceive != nil {
			c.onReceive(header, msg)
		}
	}

	select {
	case <-stop:
		return
	default:
	}
	if c.onDisconnect != nil {
		c.onDisconnect(loopErr)
	}
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
