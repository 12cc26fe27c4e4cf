package session

import (
	"context"
	"time"

	"github.com/Ucell-first/cmpp30/cmpp/pdu"
	"github.com/Ucell-first/cmpp30/internal/fragment"
)

// congestedRetryDelay is how long Send waits before retrying a fragment
// that came back Congested.
const congestedRetryDelay = 100 * time.Millisecond

// Send submits content to receivers under extendedCode, fragmenting it per
// the client's configuration. It blocks until every fragment has either
// succeeded or the submission has failed outright.
//
// msgIDs holds the wire message id of every fragment that completed
// successfully before a failure, if any; callers needing per-fragment
// detail should treat a non-Success status with a partial msgIDs slice as
// "some fragments delivered, the rest did not."
func (c *Client) Send(ctx context.Context, extendedCode string, receivers []string, content string, needStatusReport bool) (SendStatus, []int64, error) {
	switch c.Status() {
	case AuthenticationFailed:
		return ConfigError, nil, nil
	case Disposed:
		return NotConnected, nil, nil
	case Connecting, Authenticating, Disconnected:
		return Congested, nil, nil
	}

	if c.pending.Len() >= c.cfg.PendingQueueLimit {
		return Congested, nil, nil
	}

	ref := byte(c.peekSequence())
	cfg := fragment.Config{
		Signature:                      c.cfg.GatewaySignature,
		DisableLongMessage:             c.cfg.DisableLongMessage,
		SendLongMessageAsShortMessages: c.cfg.SendLongMessageAsShortMessages,
		PrepositiveGatewaySignature:    c.cfg.PrepositiveGatewaySignature,
		AttemptRemoveSignature:         c.cfg.AttemptRemoveSignature,
	}

	pieces, err := fragment.Split(content, cfg, ref)
	if err != nil {
		switch err {
		case fragment.ErrEmpty:
			return Unknown, nil, nil
		case fragment.ErrTooLong:
			return MessageTooLong, nil, nil
		default:
			return Unknown, nil, err
		}
	}

	concatenated := len(pieces) > 1 && pieces[0].TpUDHI == 1
	splitAsShort := len(pieces) > 1 && pieces[0].TpUDHI == 0
	retryable := concatenated || splitAsShort

	var msgIDs []int64
	for i, p := range pieces {
		for {
			status, msgID, serr := c.submitAndWait(ctx, extendedCode, receivers, needStatusReport, p)
			if status == Congested && retryable && !(concatenated && i == 0) {
				select {
				case <-time.After(congestedRetryDelay):
					continue
				case <-ctx.Done():
					return Timeout, msgIDs, ctx.Err()
				}
			}
			if status != Success {
				return status, msgIDs, serr
			}
			msgIDs = append(msgIDs, msgID)
			break
		}
	}
	return Success, msgIDs, nil
}

func (c *Client) submitAndWait(ctx context.Context, extendedCode string, receivers []string, needStatusReport bool, p fragment.Piece) (SendStatus, int64, error) {
	content := p.Content
	if p.TpUDHI == 1 {
		content = make([]byte, 0, len(p.UDH)+len(p.Content))
		content = append(content, p.UDH...)
		content = append(content, p.Content...)
	}

	var registeredDelivery byte
	if needStatusReport {
		registeredDelivery = 1
	}

	msg := pdu.Submit{
		PkTotal:            1,
		PkNumber:           1,
		RegisteredDelivery: registeredDelivery,
		ServiceID:          c.cfg.ServiceID,
		FeeUserType:        3,
		FeeTerminalID:      c.cfg.SPCode,
		TpUDHI:             p.TpUDHI,
		MsgFmt:             p.MsgFmt,
		MsgSrc:             c.cfg.GatewayUsername,
		FeeType:            c.cfg.FeeType,
		FeeCode:            c.cfg.FeeCode,
		SrcID:              c.cfg.SPCode + extendedCode,
		DestTerminalID:     receivers,
		MsgContent:         content,
	}

	s := newSubmission(msg)
	c.pending.Push(s)

	timer := time.NewTimer(c.cfg.SubmitTimeout)
	defer timer.Stop()

	select {
	case comp := <-s.done:
		switch comp.reason {
		case reasonMatched:
			status := resultToStatus(comp.resp.Result)
			var id int64
			if status == Success {
				id = pdu.MsgIDToInt64(comp.resp.MsgID)
			}
			return status, id, nil
		case reasonTimeout:
			return Timeout, 0, nil
		default: // reasonAborted
			return Timeout, 0, nil
		}
	case <-timer.C:
		return Timeout, 0, nil
	case <-ctx.Done():
		return Timeout, 0, ctx.Err()
	}
}
