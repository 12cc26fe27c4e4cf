package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ucell-first/cmpp30/cmpp/config"
	"github.com/Ucell-first/cmpp30/cmpp/pdu"
	"github.com/Ucell-first/cmpp30/internal/faketransport"
)

func testConfig() config.Config {
	return config.Config{
		Address:           "gateway.example.test:7890",
		SPCode:            "900001",
		GatewayUsername:   "900001",
		GatewayPassword:   "secret",
		ServiceID:         "svc",
		FeeType:           "02",
		FeeCode:           "05",
		ConnectTimeout:    time.Second,
		AuthTimeout:       200 * time.Millisecond,
		SubmitTimeout:     300 * time.Millisecond,
		KeepaliveIdle:     150 * time.Millisecond,
		ReconnectBackoff:  20 * time.Millisecond,
		WindowSize:        2,
		PendingQueueLimit: 4,
	}
}

// waitFor polls cond until it is true or the deadline elapses, failing the
// test otherwise. Session-loop transitions happen on a background
// goroutine, so tests observe them by polling rather than signaling.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// newConnectedClient starts a Client against a Fake transport and drives it
// through CONNECT/CONNECT_RESP to Connected before returning.
func newConnectedClient(t *testing.T) (*Client, *faketransport.Fake, context.CancelFunc) {
	t.Helper()
	fake := faketransport.New()
	c := New(testConfig(), fake)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))

	waitFor(t, time.Second, func() bool {
		sent, ok := fake.LastSent()
		return ok && sent.Message.CommandID() == pdu.CommandConnect
	})
	connectFrame, _ := fake.LastSent()
	fake.Deliver(connectFrame.SequenceID, pdu.ConnectResp{Status: 0})

	waitFor(t, time.Second, func() bool {
		return c.Status() == Connected
	})
	return c, fake, cancel
}

func TestConnectAuthenticationFailure(t *testing.T) {
	fake := faketransport.New()
	c := New(testConfig(), fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))

	waitFor(t, time.Second, func() bool {
		sent, ok := fake.LastSent()
		return ok && sent.Message.CommandID() == pdu.CommandConnect
	})
	connectFrame, _ := fake.LastSent()
	fake.Deliver(connectFrame.SequenceID, pdu.ConnectResp{Status: 3})

	waitFor(t, time.Second, func() bool {
		return c.Status() == AuthenticationFailed
	})
	assert.Equal(t, "认证失败", c.StatusText())
}

func TestSendShortMessageHappyPath(t *testing.T) {
	c, fake, cancel := newConnectedClient(t)
	defer cancel()

	resultCh := make(chan SendStatus, 1)
	go func() {
		status, _, err := c.Send(context.Background(), "88", []string{"13800000000"}, "hi", false)
		require.NoError(t, err)
		resultCh <- status
	}()

	var submitSeq uint32
	waitFor(t, time.Second, func() bool {
		sent, ok := fake.LastSent()
		if ok && sent.Message.CommandID() == pdu.CommandSubmit {
			submitSeq = sent.SequenceID
			return true
		}
		return false
	})
	fake.Deliver(submitSeq, pdu.SubmitResp{MsgID: 1, Result: pdu.ResultOK})

	select {
	case status := <-resultCh:
		assert.Equal(t, Success, status)
	case <-time.After(time.Second):
		t.Fatal("Send did not complete in time")
	}
}

func TestSendConcatenatedLongMessage(t *testing.T) {
	c, fake, cancel := newConnectedClient(t)
	defer cancel()

	content := ""
	for i := 0; i < 100; i++ {
		content += "A"
	}

	resultCh := make(chan SendStatus, 1)
	go func() {
		status, msgIDs, err := c.Send(context.Background(), "", []string{"13800000000"}, content, false)
		require.NoError(t, err)
		assert.Len(t, msgIDs, 2)
		resultCh <- status
	}()

	var lastSeq uint32
	seenFirst := false
	for i := 0; i < 2; i++ {
		var submitSeq uint32
		waitFor(t, time.Second, func() bool {
			sent, ok := fake.LastSent()
			if ok && sent.Message.CommandID() == pdu.CommandSubmit && (!seenFirst || sent.SequenceID != lastSeq) {
				submitSeq = sent.SequenceID
				return true
			}
			return false
		})
		seenFirst = true
		lastSeq = submitSeq
		fake.Deliver(submitSeq, pdu.SubmitResp{MsgID: uint64(i + 1), Result: pdu.ResultOK})
	}

	select {
	case status := <-resultCh:
		assert.Equal(t, Success, status)
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not complete in time")
	}
}

func TestSendCongestedSingleFragmentSurfacesDirectly(t *testing.T) {
	c, fake, cancel := newConnectedClient(t)
	defer cancel()

	resultCh := make(chan SendStatus, 1)
	go func() {
		status, _, err := c.Send(context.Background(), "", []string{"13800000000"}, "hi", false)
		require.NoError(t, err)
		resultCh <- status
	}()

	var submitSeq uint32
	waitFor(t, time.Second, func() bool {
		sent, ok := fake.LastSent()
		if ok && sent.Message.CommandID() == pdu.CommandSubmit {
			submitSeq = sent.SequenceID
			return true
		}
		return false
	})
	fake.Deliver(submitSeq, pdu.SubmitResp{Result: pdu.ResultCongested})

	select {
	case status := <-resultCh:
		assert.Equal(t, Congested, status)
	case <-time.After(time.Second):
		t.Fatal("Send did not complete in time")
	}
}

func TestSendWhileDisconnectedReturnsCongested(t *testing.T) {
	fake := faketransport.New()
	c := New(testConfig(), fake)
	// never started: state stays Disconnected

	status, msgIDs, err := c.Send(context.Background(), "", []string{"13800000000"}, "hi", false)
	require.NoError(t, err)
	assert.Equal(t, Congested, status)
	assert.Nil(t, msgIDs)
}

func TestStallDetectionReconnects(t *testing.T) {
	c, fake, cancel := newConnectedClient(t)
	defer cancel()

	resultCh := make(chan SendStatus, 1)
	go func() {
		status, _, err := c.Send(context.Background(), "", []string{"13800000000"}, "hi", false)
		require.NoError(t, err)
		resultCh <- status
	}()

	waitFor(t, time.Second, func() bool {
		sent, ok := fake.LastSent()
		return ok && sent.Message.CommandID() == pdu.CommandSubmit
	})
	// Never answer the SUBMIT: it times out, and since the link has been
	// idle beyond KeepaliveIdle, the pump reconnects.
	select {
	case status := <-resultCh:
		assert.Equal(t, Timeout, status)
	case <-time.After(2 * time.Second):
		t.Fatal("Send did not time out as expected")
	}

	waitFor(t, time.Second, func() bool {
		sent, ok := fake.LastSent()
		return ok && sent.Message.CommandID() == pdu.CommandConnect
	})
}

func TestTransportDisconnectAbortsInFlightSubmission(t *testing.T) {
	c, fake, cancel := newConnectedClient(t)
	defer cancel()

	resultCh := make(chan SendStatus, 1)
	go func() {
		status, _, err := c.Send(context.Background(), "", []string{"13800000000"}, "hi", false)
		require.NoError(t, err)
		resultCh <- status
	}()

	waitFor(t, time.Second, func() bool {
		sent, ok := fake.LastSent()
		return ok && sent.Message.CommandID() == pdu.CommandSubmit
	})
	fake.SimulateDisconnect(errors.New("connection reset"))

	select {
	case status := <-resultCh:
		assert.Equal(t, Timeout, status)
	case <-time.After(time.Second):
		t.Fatal("Send did not unblock after disconnect")
	}
	assert.Equal(t, Disconnected, c.Status())
}

func TestDeliverEmitsMessageReceive(t *testing.T) {
	c, fake, cancel := newConnectedClient(t)
	defer cancel()

	received := make(chan MessageReceive, 1)
	c.OnMessageReceive(func(m MessageReceive) { received <- m })

	content := append([]byte{}, encodeForTest("hi")...)
	fake.Deliver(99, pdu.Deliver{
		MsgID:              5,
		DestID:             "900001",
		SrcTerminalID:      "13800000000",
		RegisteredDelivery: 0,
		MsgContent:         content,
	})

	select {
	case m := <-received:
		assert.Equal(t, "hi", m.Content)
		assert.Equal(t, "13800000000", m.Source)
	case <-time.After(time.Second):
		t.Fatal("expected a MessageReceive event")
	}
}

func encodeForTest(s string) []byte {
	return []byte{0x00, s[0], 0x00, s[1]}
}
