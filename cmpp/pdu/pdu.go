// Package pdu defines the typed CMPP 3.0 protocol records the session
// engine exchanges with the gateway, and their wire marshal/unmarshal pair.
// Field widths follow the CMPP 3.0 fixed-layout wire format; every string
// field is a fixed-width, null-padded byte slice rather than a C-string, the
// one structural difference from the SMPP PDUs this package's layout is
// descended from.
package pdu

import (
	"encoding/binary"

	cmpperrors "github.com/Ucell-first/cmpp30/cmpp/errors"
)

// Command ids, as defined by the CMPP 3.0 protocol.
const (
	CommandConnect         uint32 = 0x00000001
	CommandConnectResp     uint32 = 0x80000001
	CommandTerminate       uint32 = 0x00000002
	CommandTerminateResp   uint32 = 0x80000002
	CommandSubmit          uint32 = 0x00000004
	CommandSubmitResp      uint32 = 0x80000004
	CommandDeliver         uint32 = 0x00000005
	CommandDeliverResp     uint32 = 0x80000005
	CommandActiveTest      uint32 = 0x00000008
	CommandActiveTestResp  uint32 = 0x80000008
)

// HeaderLen is the fixed 12-byte CMPP frame header: totalLength, commandId,
// sequenceId, all big-endian uint32.
const HeaderLen = 12

// Header is the frame envelope common to every CMPP PDU.
type Header struct {
	TotalLength uint32
	CommandID   uint32
	SequenceID  uint32
}

// MarshalHeader writes h immediately before bodyLen bytes of body.
func MarshalHeader(h Header, bodyLen int) []byte {
	buf := make([]byte, HeaderLen)
	binary.BigEndian.PutUint32(buf[0:4], uint32(HeaderLen+bodyLen))
	binary.BigEndian.PutUint32(buf[4:8], h.CommandID)
	binary.BigEndian.PutUint32(buf[8:12], h.SequenceID)
	return buf
}

// UnmarshalHeader reads the 12-byte frame header.
func UnmarshalHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, cmpperrors.New("short frame header")
	}
	return Header{
		TotalLength: binary.BigEndian.Uint32(b[0:4]),
		CommandID:   binary.BigEndian.Uint32(b[4:8]),
		SequenceID:  binary.BigEndian.Uint32(b[8:12]),
	}, nil
}

// Message is implemented by every typed CMPP body.
type Message interface {
	// CommandID identifies the frame's wire command.
	CommandID() uint32

	// Marshal encodes the body (excluding the header).
	Marshal() []byte
}

// putFixedString writes s into a len(dst)-byte field, truncating or
// null-padding as needed. The string's bytes are copied as-is, so ASCII text
// takes one byte per character.
func putFixedString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// getFixedString trims trailing NUL bytes from a fixed-width string field.
func getFixedString(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

func errShortBody(frame string) error {
	return cmpperrors.New(frame + ": body too short")
}
