package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{CommandID: CommandSubmit, SequenceID: 42}
	buf := MarshalHeader(h, 10)

	got, err := UnmarshalHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(HeaderLen+10), got.TotalLength)
	assert.Equal(t, h.CommandID, got.CommandID)
	assert.Equal(t, h.SequenceID, got.SequenceID)
}

func TestUnmarshalHeaderShortBuffer(t *testing.T) {
	_, err := UnmarshalHeader([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestMsgIDToInt64ReinterpretsByteOrder(t *testing.T) {
	// MsgId wire bytes 00 01 02 03 04 05 06 07 (big-endian uint64), then
	// reinterpreted as little-endian int64.
	var msgID uint64
	for _, b := range []byte{0, 1, 2, 3, 4, 5, 6, 7} {
		msgID = msgID<<8 | uint64(b)
	}
	got := MsgIDToInt64(msgID)
	assert.Equal(t, int64(0x0706050403020100), got)
}

func TestSubmitMarshalFieldLayout(t *testing.T) {
	s := Submit{
		MsgID:              0,
		PkTotal:            1,
		PkNumber:           1,
		RegisteredDelivery: 1,
		ServiceID:          "svc",
		FeeUserType:        3,
		FeeTerminalID:      "900001",
		TpUDHI:             1,
		MsgFmt:             MsgFmtUCS2,
		MsgSrc:             "900001",
		FeeType:            "02",
		FeeCode:            "05",
		SrcID:              "90000188",
		DestTerminalID:     []string{"13800000000", "13900000000"},
		MsgContent:         []byte{0x05, 0x00, 0x03, 1, 2, 1, 0x00, 0x68},
	}

	buf := s.Marshal()

	// MsgId(8) PkTotal(1) PkNumber(1) RegisteredDelivery(1) MsgLevel(1)
	assert.Equal(t, byte(1), buf[8])  // PkTotal
	assert.Equal(t, byte(1), buf[9])  // PkNumber
	assert.Equal(t, byte(1), buf[10]) // RegisteredDelivery

	destCountOffset := 8 + 1 + 1 + 1 + 1 + 10 + 1 + 21 + 1 + 1 + 1 + 1 + 6 + 2 + 6 + 17 + 17 + 21
	assert.Equal(t, byte(2), buf[destCountOffset], "DestUsrTl must record the receiver count")

	msgLengthOffset := destCountOffset + 1 + len(s.DestTerminalID)*destTerminalIDWidth + 1
	assert.Equal(t, byte(len(s.MsgContent)), buf[msgLengthOffset])
}

func TestSubmitRespRoundTrip(t *testing.T) {
	r := SubmitResp{MsgID: 0x0123456789ABCDEF, Result: ResultCongested}
	got, err := UnmarshalSubmitResp(r.Marshal())
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestDeliverRoundTrip(t *testing.T) {
	d := Deliver{
		MsgID:              7,
		DestID:             "900001",
		ServiceID:          "svc",
		TpUDHI:             0,
		MsgFmt:             MsgFmtUCS2,
		SrcTerminalID:      "13800000000",
		RegisteredDelivery: 0,
		MsgContent:         []byte{0x00, 0x68, 0x00, 0x69},
	}

	got, err := UnmarshalDeliver(d.Marshal())
	require.NoError(t, err)
	assert.Equal(t, d.MsgID, got.MsgID)
	assert.Equal(t, d.DestID, got.DestID)
	assert.Equal(t, d.SrcTerminalID, got.SrcTerminalID)
	assert.Equal(t, d.MsgContent, got.MsgContent)
}

func TestParseStatusReport(t *testing.T) {
	content := []byte("id:0a sub:001 dlvrd:001 submit date:2601010000 done date:2601010001 stat:DELIVRD err:000 text:")
	report, err := ParseStatusReport(content)
	require.NoError(t, err)
	assert.Equal(t, "DELIVRD", report.StatusText)
	assert.Equal(t, MsgIDToInt64(0x0a), report.MsgID)
}

func TestParseStatusReportMissingID(t *testing.T) {
	_, err := ParseStatusReport([]byte("stat:DELIVRD"))
	assert.Error(t, err)
}

func TestConnectRespStatusText(t *testing.T) {
	assert.Equal(t, "", ConnectResp{Status: 0}.StatusText())
	assert.Equal(t, "认证失败", ConnectResp{Status: 3}.StatusText())
	assert.Equal(t, "未知错误", ConnectResp{Status: 99}.StatusText())
}

func TestDecodeDispatchesByCommandID(t *testing.T) {
	connResp := ConnectResp{Status: 0, Version: 0x30}
	msg, err := Decode(CommandConnectResp, connResp.Marshal())
	require.NoError(t, err)
	assert.Equal(t, connResp, msg)

	_, err = Decode(CommandSubmit, nil)
	assert.Error(t, err, "CMPP_SUBMIT is never an inbound frame")

	_, err = Decode(0xDEADBEEF, nil)
	assert.Error(t, err)
}
