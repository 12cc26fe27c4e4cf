package session

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/Ucell-first/cmpp30/cmpp/pdu"
)

// onFrame is the receive dispatcher registered with the transport. It runs
// on the transport's own goroutine, never the session loop's; a recovered
// panic here is logged rather than allowed to tear the session down.
func (c *Client) onFrame(h pdu.Header, msg pdu.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("dispatcher panic recovered", "panic", fmt.Sprintf("%v", r), "commandId", h.CommandID, "sequenceId", h.SequenceID)
		}
	}()

	c.touchTransfer()

	if c.Status() == Authenticating {
		if cr, ok := msg.(pdu.ConnectResp); ok {
			c.handleConnectResp(cr)
		} else {
			c.logger.Warn("unexpected frame while authenticating", "commandId", h.CommandID)
			c._disconnect()
		}
		return
	}

	switch m := msg.(type) {
	case pdu.Deliver:
		c.handleDeliver(h.SequenceID, m)
	case pdu.ActiveTest:
		c.replyActiveTest(h.SequenceID)
	case pdu.ActiveTestResp:
		// nothing waits on this specifically; touchTransfer above already
		// counted it as link activity.
	case pdu.SubmitResp:
		if c.window.Complete(h.SequenceID, m) {
			c.metrics.SubmitResults.WithLabelValues(resultToStatus(m.Result).String()).Inc()
		}
	case pdu.Terminate:
		c.logger.Warn("link terminated by peer")
		c._disconnect()
	case pdu.TerminateResp:
		c.logger.Warn("terminate acknowledged by peer")
		c._disconnect()
	case pdu.ConnectResp:
		// CONNECT_RESP outside Authenticating is stale or duplicated; ignore.
	}
}

func (c *Client) handleConnectResp(r pdu.ConnectResp) {
	if r.Status == 0 {
		c.setState(Connected, "")
		seq := c.nextSequence()
		if err := c.transport.Send(seq, pdu.ActiveTest{}); err == nil {
			c.touchTransfer()
			c.metrics.ActiveTests.Inc()
		}
		return
	}
	c.setState(AuthenticationFailed, r.StatusText())
}

func (c *Client) replyActiveTest(seq uint32) {
	if err := c.transport.Send(seq, pdu.ActiveTestResp{}); err != nil {
		c.logger.Warn("active test response send failed", "err", err.Error())
	}
}

func (c *Client) handleDeliver(seq uint32, d pdu.Deliver) {
	resp := pdu.DeliverResp{MsgID: d.MsgID, Result: 0}
	if err := c.transport.Send(seq, resp); err != nil {
		c.logger.Warn("deliver response send failed", "err", err.Error())
	}

	if d.RegisteredDelivery == 0 {
		c.emitReceive(MessageReceive{
			Content:     decodeUCS2(stripUDH(d.MsgContent, d.TpUDHI)),
			Source:      d.SrcTerminalID,
			MessageID:   pdu.MsgIDToInt64(d.MsgID),
			Destination: d.DestID,
		})
		return
	}

	report, err := pdu.ParseStatusReport(stripUDH(d.MsgContent, d.TpUDHI))
	if err != nil {
		c.logger.Warn("status report parse failed", "err", err.Error())
		return
	}
	c.emitReport(MessageReport{
		MessageID:   report.MsgID,
		StatusText:  report.StatusText,
		Destination: d.DestID,
	})
}

// stripUDH removes the User Data Header from inbound content whose TpUDHI
// marks it present; the CMPP wire format carries UDH inline in MsgContent
// rather than as a separate field.
func stripUDH(content []byte, tpUDHI byte) []byte {
	if tpUDHI == 0 || len(content) == 0 {
		return content
	}
	udhl := int(content[0])
	if len(content) < 1+udhl {
		return content
	}
	return content[1+udhl:]
}

// decodeUCS2 decodes UTF-16BE content, the encoding used for submitted and
// delivered message bodies alike.
func decodeUCS2(b []byte) string {
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(b[i*2:])
	}
	return string(utf16.Decode(units))
}
