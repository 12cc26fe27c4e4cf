package pdu

import "encoding/binary"

// MsgFmt values for Submit/Deliver.
const (
	MsgFmtUCS2    byte = 8
	MsgFmtSpecial byte = 15 // carrier-specific marker, see config.AttemptRemoveSignature
)

// Submit result codes.
const (
	ResultOK             byte = 0
	ResultMessageTooLong byte = 4
	ResultCongested      byte = 8
	// 10..13 map to ConfigError; see session package's result classifier.
)

// Submit is the CMPP_SUBMIT request.
type Submit struct {
	MsgID              uint64
	PkTotal            byte
	PkNumber           byte
	RegisteredDelivery byte
	MsgLevel           byte
	ServiceID          string // 10 bytes
	FeeUserType        byte
	FeeTerminalID      string // 21 bytes, the spCode
	FeeTerminalType    byte
	TpPID              byte
	TpUDHI             byte
	MsgFmt             byte
	MsgSrc             string // 6 bytes, gatewayUsername
	FeeType            string // 2 bytes
	FeeCode            string // 6 bytes
	ValidTime          string // 17 bytes
	AtTime             string // 17 bytes
	SrcID              string // 21 bytes, spCode+extendedCode
	DestTerminalID     []string
	DestTerminalType   byte
	MsgContent         []byte
	LinkID             string // 20 bytes
}

const destTerminalIDWidth = 21

func (Submit) CommandID() uint32 { return CommandSubmit }

func (s Submit) Marshal() []byte {
	n := 8 + 1 + 1 + 1 + 1 + 10 + 1 + 21 + 1 + 1 + 1 + 1 + 6 + 2 + 6 + 17 + 17 + 21 + 1 +
		len(s.DestTerminalID)*destTerminalIDWidth + 1 + 1 + len(s.MsgContent) + 20
	buf := make([]byte, n)
	i := 0
	binary.BigEndian.PutUint64(buf[i:i+8], s.MsgID)
	i += 8
	buf[i] = s.PkTotal
	i++
	buf[i] = s.PkNumber
	i++
	buf[i] = s.RegisteredDelivery
	i++
	buf[i] = s.MsgLevel
	i++
	putFixedString(buf[i:i+10], s.ServiceID)
	i += 10
	buf[i] = s.FeeUserType
	i++
	putFixedString(buf[i:i+21], s.FeeTerminalID)
	i += 21
	buf[i] = s.FeeTerminalType
	i++
	buf[i] = s.TpPID
	i++
	buf[i] = s.TpUDHI
	i++
	buf[i] = s.MsgFmt
	i++
	putFixedString(buf[i:i+6], s.MsgSrc)
	i += 6
	putFixedString(buf[i:i+2], s.FeeType)
	i += 2
	putFixedString(buf[i:i+6], s.FeeCode)
	i += 6
	putFixedString(buf[i:i+17], s.ValidTime)
	i += 17
	putFixedString(buf[i:i+17], s.AtTime)
	i += 17
	putFixedString(buf[i:i+21], s.SrcID)
	i += 21
	buf[i] = byte(len(s.DestTerminalID))
	i++
	for _, d := range s.DestTerminalID {
		putFixedString(buf[i:i+destTerminalIDWidth], d)
		i += destTerminalIDWidth
	}
	buf[i] = s.DestTerminalType
	i++
	buf[i] = byte(len(s.MsgContent))
	i++
	copy(buf[i:i+len(s.MsgContent)], s.MsgContent)
	i += len(s.MsgContent)
	putFixedString(buf[i:i+20], s.LinkID)
	return buf
}

// SubmitResp is the CMPP_SUBMIT_RESP reply.
type SubmitResp struct {
	MsgID  uint64
	Result byte
}

func (SubmitResp) CommandID() uint32 { return CommandSubmitResp }

func (r SubmitResp) Marshal() []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf[0:8], r.MsgID)
	buf[8] = r.Result
	return buf
}

// UnmarshalSubmitResp decodes a CMPP_SUBMIT_RESP body.
func UnmarshalSubmitResp(b []byte) (SubmitResp, error) {
	if len(b) < 9 {
		return SubmitResp{}, errShortBody("CMPP_SUBMIT_RESP")
	}
	return SubmitResp{
		MsgID:  binary.BigEndian.Uint64(b[0:8]),
		Result: b[8],
	}, nil
}

// MsgIDToInt64 reinterprets the 8-byte MsgId field as little-endian int64,
// the wire-identity form of message ids surfaced to callers.
func MsgIDToInt64(msgID uint64) int64 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], msgID)
	return int64(binary.LittleEndian.Uint64(b[:]))
}
