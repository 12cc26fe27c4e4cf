// Package session implements the CMPP 3.0 session engine: the state machine
// that owns the transport, authenticates, multiplexes submissions within a
// bounded in-flight window, correlates asynchronous responses, fragments
// long messages, enforces per-request timeouts, recovers from link
// failures, and dispatches inbound notifications.
package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/Ucell-first/cmpp30/cmpp/config"
	cmpplog "github.com/Ucell-first/cmpp30/cmpp/log"
	cmppmetrics "github.com/Ucell-first/cmpp30/cmpp/metrics"
	"github.com/Ucell-first/cmpp30/cmpp/pdu"
	"github.com/Ucell-first/cmpp30/internal/auth"
)

// Client is the CMPP 3.0 session engine. Construct with New, then Start it
// before calling Send.
type Client struct {
	cfg       config.Config
	transport Transport
	logger    cmpplog.Logger
	metrics   cmppmetrics.Metrics
	now       func() time.Time
	backoff   backoff.BackOff

	stateMu          sync.Mutex
	state            State
	stateText        string
	lastTransferTime time.Time

	seqMu sync.Mutex
	seq   uint32

	window  *windowRegistry
	pending *pendingQueue

	sinkMu        sync.Mutex
	onReceiveSink func(MessageReceive)
	onReportSink  func(MessageReport)

	startMu sync.Mutex
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
	doneCh  chan struct{}
}

// New constructs a Client. t is the byte-level transport collaborator
// (cmpp/codec.Conn in production, internal/faketransport.Fake in tests).
func New(cfg config.Config, t Transport, opts ...Option) *Client {
	c := &Client{
		cfg:       cfg,
		transport: t,
		logger:    cmpplog.Nop(),
		metrics:   cmppmetrics.Nop(),
		now:       time.Now,
		window:    newWindowRegistry(cfg.WindowSize),
		pending:   newPendingQueue(),
		state:     Disconnected,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.backoff = backoff.NewConstantBackOff(c.cfg.ReconnectBackoff)
	c.lastTransferTime = c.now()

	t.SetReceiveHandler(c.onFrame)
	t.SetDisconnectHandler(c.onTransportDisconnect)
	return c
}

// Start begins the background session loop. It returns immediately; the
// loop runs until ctx is canceled or Stop is called.
func (c *Client) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.started {
		return nil
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	g, gctx := errgroup.WithContext(runCtx)
	c.group = g
	c.doneCh = make(chan struct{})

	g.Go(func() error {
		c.run(gctx)
		return nil
	})
	return nil
}

// Stop disposes the client: it waits a short grace period for in-flight
// submissions to settle, tears down the transport, and stops the session
// loop. Safe to call more than once.
func (c *Client) Stop() error {
	c.stateMu.Lock()
	alreadyDisposed := c.state == Disposed
	c.state = Disposed
	c.stateText = ""
	c.stateMu.Unlock()

	if alreadyDisposed {
		return nil
	}
	c.logger.Info("disposing client")

	deadline := time.Now().Add(2 * time.Second)
	for c.window.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}

	_ = c.transport.Disconnect()
	c.window.DrainAborted()

	c.startMu.Lock()
	cancel := c.cancel
	g := c.group
	c.startMu.Unlock()
	if cancel != nil {
		cancel()
	}
	if g != nil {
		_ = g.Wait()
	}
	return nil
}

// Status returns the current session state.
func (c *Client) Status() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// StatusText returns the human-readable reason attached to the current
// state (non-empty typically only for AuthenticationFailed).
func (c *Client) StatusText() string {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.stateText
}

// OnMessageReceive registers the sink invoked for mobile-originated
// messages. Overwrites any previously registered sink.
func (c *Client) OnMessageReceive(f func(MessageReceive)) {
	c.sinkMu.Lock()
	c.onReceiveSink = f
	c.sinkMu.Unlock()
}

// OnMessageReport registers the sink invoked for delivery reports.
func (c *Client) OnMessageReport(f func(MessageReport)) {
	c.sinkMu.Lock()
	c.onReportSink = f
	c.sinkMu.Unlock()
}

func (c *Client) emitReceive(m MessageReceive) {
	c.sinkMu.Lock()
	f := c.onReceiveSink
	c.sinkMu.Unlock()
	if f != nil {
		f(m)
	}
}

func (c *Client) emitReport(m MessageReport) {
	c.sinkMu.Lock()
	f := c.onReportSink
	c.sinkMu.Unlock()
	if f != nil {
		f(m)
	}
}

func (c *Client) setState(s State, text string) {
	c.stateMu.Lock()
	c.state = s
	c.stateText = text
	c.stateMu.Unlock()
	c.logger.Info("session state transition", "state", s.String(), "text", text)
}

func (c *Client) touchTransfer() {
	c.stateMu.Lock()
	c.lastTransferTime = c.now()
	c.stateMu.Unlock()
}

func (c *Client) sinceLastTransfer() time.Duration {
	c.stateMu.Lock()
	t := c.lastTransferTime
	c.stateMu.Unlock()
	return c.now().Sub(t)
}

// peekSequence reads the sequence counter without consuming it, for the
// fragmenter's stable-per-submission reference byte.
func (c *Client) peekSequence() uint32 {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	return c.seq
}

// nextSequence is a post-increment: it returns the pre-increment value.
// Wraps naturally on overflow.
func (c *Client) nextSequence() uint32 {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	s := c.seq
	c.seq++
	return s
}

func (c *Client) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// run is the session loop's body, iterated until ctx is canceled.
func (c *Client) run(ctx context.Context) {
	defer close(c.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch c.Status() {
		case Disconnected:
			if err := c.connectAndAuthenticate(); err != nil {
				c.logger.Warn("connect failed", "err", err.Error())
				c.sleep(ctx, c.backoff.NextBackOff())
			}
		case Connecting:
			c.sleep(ctx, 50*time.Millisecond)
		case Authenticating:
			if c.sinceLastTransfer() > c.cfg.AuthTimeout {
				c.logger.Warn("authentication timed out", "text", "认证超时")
				c._disconnect()
				c.sleep(ctx, c.backoff.NextBackOff())
			} else {
				c.sleep(ctx, 50*time.Millisecond)
			}
		case AuthenticationFailed:
			c.sleep(ctx, time.Second)
		case Disposed:
			return
		case Connected:
			c.pump(ctx)
		}
	}
}

// connectAndAuthenticate drives Disconnected → Connecting → Authenticating.
// Completion of authentication itself happens asynchronously, in the
// receive dispatcher's handleConnectResp.
func (c *Client) connectAndAuthenticate() error {
	c.setState(Connecting, "")

	if err := c.transport.Connect(); err != nil {
		c.setState(Disconnected, "")
		return err
	}
	c.touchTransfer()
	c.setState(Authenticating, "")

	ts := auth.TimestampFormat(c.now())
	digest := auth.Digest(c.cfg.GatewayUsername, c.cfg.GatewayPassword, ts)
	tsValue, _ := strconv.ParseUint(ts, 10, 32)

	connect := pdu.Connect{
		SourceAddr:          c.cfg.GatewayUsername,
		AuthenticatorSource: digest,
		Version:             0x30,
		Timestamp:           uint32(tsValue),
	}

	seq := c.nextSequence()
	if err := c.transport.Send(seq, connect); err != nil {
		c._disconnect()
		return err
	}
	return nil
}

// _disconnect drops the transport and aborts every in-flight window entry.
// Idempotent: calling it when already Disconnected or Disposed is a no-op,
// which matters because both the session loop and the transport's own
// disconnect callback can reach it for the same link failure.
func (c *Client) _disconnect() {
	c.stateMu.Lock()
	if c.state == Disconnected || c.state == Disposed {
		c.stateMu.Unlock()
		return
	}
	c.stateMu.Unlock()

	_ = c.transport.Disconnect()
	c.window.DrainAborted()
	c.metrics.Reconnects.Inc()
	c.setState(Disconnected, "")
}

func (c *Client) onTransportDisconnect(err error) {
	if err != nil {
		c.logger.Warn("transport disconnected", "err", err.Error())
	}
	c._disconnect()
}

// pump runs one iteration of the Connected-state dispatch logic: sweep
// timed-out submissions, detect a stalled link, send a keepalive when idle,
// then drain the pending queue into the window.
func (c *Client) pump(ctx context.Context) {
	now := c.now()
	timedOut := c.window.SweepTimeouts(now, c.cfg.SubmitTimeout)
	c.metrics.WindowOccupancy.Set(float64(c.window.Len()))

	if len(timedOut) > 0 && c.sinceLastTransfer() > c.cfg.KeepaliveIdle {
		c.logger.Warn("link stalled: timing out remaining window and reconnecting")
		c.window.DrainAborted()
		c._disconnect()
		return
	}

	if c.window.Len() == 0 && c.pending.Len() == 0 && c.sinceLastTransfer() > c.cfg.KeepaliveIdle {
		seq := c.nextSequence()
		if err := c.transport.Send(seq, pdu.ActiveTest{}); err != nil {
			c.logger.Warn("active test send failed", "err", err.Error())
		} else {
			c.touchTransfer()
			c.metrics.ActiveTests.Inc()
		}
		c.sleep(ctx, 100*time.Millisecond)
		return
	}

	if c.window.Full() || c.pending.Len() == 0 {
		c.sleep(ctx, 50*time.Millisecond)
		return
	}

	for c.window.Len() < c.cfg.WindowSize {
		s, ok := c.pending.Pop()
		if !ok {
			break
		}
		seq := c.nextSequence()
		s.sendTime = c.now()
		if !c.window.Insert(seq, s) {
			c.pending.Push(s)
			break
		}
		if err := c.transport.Send(seq, s.msg); err != nil {
			c.logger.Warn("submit send failed", "err", err.Error())
			c._disconnect()
			return
		}
	}
}
