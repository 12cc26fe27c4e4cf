package pdu

import (
	"encoding/binary"
	"strings"

	cmpperrors "github.com/Ucell-first/cmpp30/cmpp/errors"
)

// Deliver is the CMPP_DELIVER request, carrying either a mobile-originated
// message (RegisteredDelivery == 0) or a status report (RegisteredDelivery
// == 1).
type Deliver struct {
	MsgID              uint64
	DestID             string // 21 bytes
	ServiceID          string // 10 bytes
	TpPID              byte
	TpUDHI             byte
	MsgFmt             byte
	SrcTerminalID      string // 21 bytes
	RegisteredDelivery byte
	MsgContent         []byte
	LinkID             string // 20 bytes
}

func (Deliver) CommandID() uint32 { return CommandDeliver }

func (d Deliver) Marshal() []byte {
	n := 8 + 21 + 10 + 1 + 1 + 1 + 21 + 1 + 1 + len(d.MsgContent) + 20
	buf := make([]byte, n)
	i := 0
	binary.BigEndian.PutUint64(buf[i:i+8], d.MsgID)
	i += 8
	putFixedString(buf[i:i+21], d.DestID)
	i += 21
	putFixedString(buf[i:i+10], d.ServiceID)
	i += 10
	buf[i] = d.TpPID
	i++
	buf[i] = d.TpUDHI
	i++
	buf[i] = d.MsgFmt
	i++
	putFixedString(buf[i:i+21], d.SrcTerminalID)
	i += 21
	buf[i] = d.RegisteredDelivery
	i++
	buf[i] = byte(len(d.MsgContent))
	i++
	copy(buf[i:i+len(d.MsgContent)], d.MsgContent)
	i += len(d.MsgContent)
	putFixedString(buf[i:i+20], d.LinkID)
	return buf
}

// UnmarshalDeliver decodes a CMPP_DELIVER body.
func UnmarshalDeliver(b []byte) (Deliver, error) {
	if len(b) < 8+21+10+1+1+1+21+1+1 {
		return Deliver{}, errShortBody("CMPP_DELIVER")
	}
	var d Deliver
	i := 0
	d.MsgID = binary.BigEndian.Uint64(b[i : i+8])
	i += 8
	d.DestID = getFixedString(b[i : i+21])
	i += 21
	d.ServiceID = getFixedString(b[i : i+10])
	i += 10
	d.TpPID = b[i]
	i++
	d.TpUDHI = b[i]
	i++
	d.MsgFmt = b[i]
	i++
	d.SrcTerminalID = getFixedString(b[i : i+21])
	i += 21
	d.RegisteredDelivery = b[i]
	i++
	msgLen := int(b[i])
	i++
	if len(b) < i+msgLen+20 {
		return Deliver{}, errShortBody("CMPP_DELIVER content")
	}
	d.MsgContent = append([]byte(nil), b[i:i+msgLen]...)
	i += msgLen
	d.LinkID = getFixedString(b[i : i+20])
	return d, nil
}

// DeliverResp is the CMPP_DELIVER_RESP reply.
type DeliverResp struct {
	MsgID  uint64
	Result byte
}

func (DeliverResp) CommandID() uint32 { return CommandDeliverResp }

func (r DeliverResp) Marshal() []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf[0:8], r.MsgID)
	buf[8] = r.Result
	return buf
}

// UnmarshalDeliverResp decodes a CMPP_DELIVER_RESP body.
func UnmarshalDeliverResp(b []byte) (DeliverResp, error) {
	if len(b) < 9 {
		return DeliverResp{}, errShortBody("CMPP_DELIVER_RESP")
	}
	return DeliverResp{
		MsgID:  binary.BigEndian.Uint64(b[0:8]),
		Result: b[8],
	}, nil
}

// StatusReport is the parsed payload of a DELIVER whose RegisteredDelivery
// is 1: a gateway-generated delivery outcome for a prior SUBMIT.
type StatusReport struct {
	MsgID      int64
	StatusText string
}

// ParseStatusReport extracts the id/stat fields from a status-report
// MsgContent. The report is carried as ASCII "key:value" pairs separated by
// single spaces, e.g. "id:... sub:001 dlvrd:001 submit date:... done
// date:... stat:DELIVRD err:000 text:".
func ParseStatusReport(content []byte) (StatusReport, error) {
	fields := map[string]string{}
	for _, tok := range strings.Fields(string(content)) {
		if kv := strings.SplitN(tok, ":", 2); len(kv) == 2 {
			fields[kv[0]] = kv[1]
		}
	}
	idHex, ok := fields["id"]
	if !ok {
		return StatusReport{}, cmpperrors.New("status report missing id field")
	}
	id, err := parseReportID(idHex)
	if err != nil {
		return StatusReport{}, cmpperrors.Wrap(cmpperrors.New("status report id malformed"), err)
	}
	return StatusReport{MsgID: id, StatusText: fields["stat"]}, nil
}

func parseReportID(s string) (int64, error) {
	var v uint64
	for _, c := range []byte(s) {
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return 0, cmpperrors.New("invalid hex digit in report id")
		}
		v = v<<4 | d
	}
	return MsgIDToInt64(v), nil
}
