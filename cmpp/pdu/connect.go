package pdu

import "encoding/binary"

// Connect is the CMPP_CONNECT request.
type Connect struct {
	SourceAddr          string // 6 bytes, the gateway-facing username
	AuthenticatorSource [16]byte
	Version             byte
	Timestamp           uint32 // decimal-coded MMddhhmmss
}

func (Connect) CommandID() uint32 { return CommandConnect }

func (c Connect) Marshal() []byte {
	buf := make([]byte, 6+16+1+4)
	putFixedString(buf[0:6], c.SourceAddr)
	copy(buf[6:22], c.AuthenticatorSource[:])
	buf[22] = c.Version
	binary.BigEndian.PutUint32(buf[23:27], c.Timestamp)
	return buf
}

// UnmarshalConnect decodes a CMPP_CONNECT body.
func UnmarshalConnect(b []byte) (Connect, error) {
	if len(b) < 27 {
		return Connect{}, errShortBody("CMPP_CONNECT")
	}
	var c Connect
	c.SourceAddr = getFixedString(b[0:6])
	copy(c.AuthenticatorSource[:], b[6:22])
	c.Version = b[22]
	c.Timestamp = binary.BigEndian.Uint32(b[23:27])
	return c, nil
}

// ConnectResp is the CMPP_CONNECT_RESP reply.
//
// Status codes: 0 ok, 1 structural, 2 source, 3 credential (auth), 4 version.
type ConnectResp struct {
	Status            byte
	AuthenticatorISMG [16]byte
	Version           byte
}

func (ConnectResp) CommandID() uint32 { return CommandConnectResp }

func (r ConnectResp) Marshal() []byte {
	buf := make([]byte, 1+16+1)
	buf[0] = r.Status
	copy(buf[1:17], r.AuthenticatorISMG[:])
	buf[17] = r.Version
	return buf
}

// UnmarshalConnectResp decodes a CMPP_CONNECT_RESP body.
func UnmarshalConnectResp(b []byte) (ConnectResp, error) {
	if len(b) < 18 {
		return ConnectResp{}, errShortBody("CMPP_CONNECT_RESP")
	}
	var r ConnectResp
	r.Status = b[0]
	copy(r.AuthenticatorISMG[:], b[1:17])
	r.Version = b[17]
	return r, nil
}

// StatusText renders a human-readable reason for a non-zero ConnectResp
// status.
func (r ConnectResp) StatusText() string {
	switch r.Status {
	case 0:
		return ""
	case 1:
		return "消息结构错误" // structural error
	case 2:
		return "非法源地址" // illegal source address
	case 3:
		return "认证失败" // authentication failed
	case 4:
		return "版本太高" // version too high
	default:
		return "未知错误" // unknown error
	}
}
