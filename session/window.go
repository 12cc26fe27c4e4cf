package session

import (
	"sync"
	"time"

	"github.com/Ucell-first/cmpp30/cmpp/pdu"
)

// completionReason records why a submission's completion fired: a matched
// response, a timeout sweep, or a disconnect abort (a nil *pdu.SubmitResp
// alone can't tell the last two apart). Send reports both reasonTimeout and
// reasonAborted as Timeout.
type completionReason int

const (
	reasonMatched completionReason = iota
	reasonTimeout
	reasonAborted
)

// completion is what a submission's single-shot signal carries.
type completion struct {
	resp   *pdu.SubmitResp
	reason completionReason
}

// submission is one window entry: a prepared SUBMIT awaiting (or about to
// await) its SUBMIT_RESP.
type submission struct {
	sequenceID uint32
	sendTime   time.Time
	msg        pdu.Submit

	done chan completion // buffered 1; signaled exactly once
}

func newSubmission(msg pdu.Submit) *submission {
	return &submission{msg: msg, done: make(chan completion, 1)}
}

// signal fires s.done exactly once. Subsequent calls are no-ops: the
// dispatcher and the sweep/disconnect paths may race to complete the same
// entry, and a waiter must only ever see the first outcome.
func (s *submission) signal(c completion) {
	select {
	case s.done <- c:
	default:
	}
}

// windowRegistry tracks in-flight submissions by sequence id, bounded to
// size entries.
type windowRegistry struct {
	mu    sync.Mutex
	size  int
	byseq map[uint32]*submission
}

func newWindowRegistry(size int) *windowRegistry {
	return &windowRegistry{size: size, byseq: make(map[uint32]*submission)}
}

// Len reports the current occupancy.
func (w *windowRegistry) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byseq)
}

// Full reports whether the registry is at capacity.
func (w *windowRegistry) Full() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byseq) >= w.size
}

// Insert adds s under sequenceID, if there is room. Returns false if the
// registry is already full.
func (w *windowRegistry) Insert(sequenceID uint32, s *submission) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.byseq) >= w.size {
		return false
	}
	s.sequenceID = sequenceID
	w.byseq[sequenceID] = s
	return true
}

// Complete looks up sequenceID, removes it, and signals it with resp.
// Reports false if the sequence id is unknown: a late response after a
// timeout sweep already removed it, and is silently ignored by the caller.
func (w *windowRegistry) Complete(sequenceID uint32, resp pdu.SubmitResp) bool {
	w.mu.Lock()
	s, ok := w.byseq[sequenceID]
	if ok {
		delete(w.byseq, sequenceID)
	}
	w.mu.Unlock()
	if !ok {
		return false
	}
	r := resp
	s.signal(completion{resp: &r, reason: reasonMatched})
	return true
}

// SweepTimeouts removes and signals every entry whose sendTime is older
// than timeout. Returns the removed entries so the caller can run stall
// detection over them.
func (w *windowRegistry) SweepTimeouts(now time.Time, timeout time.Duration) []*submission {
	w.mu.Lock()
	var timedOut []*submission
	for seq, s := range w.byseq {
		if now.Sub(s.sendTime) > timeout {
			timedOut = append(timedOut, s)
			delete(w.byseq, seq)
		}
	}
	w.mu.Unlock()

	for _, s := range timedOut {
		s.signal(completion{reason: reasonTimeout})
	}
	return timedOut
}

// DrainAborted removes every remaining entry and signals each with
// reasonAborted. In-flight entries are not silently retried under a new
// sequence id; they are surfaced to their original waiter as aborted (see
// DESIGN.md's re-enqueue-on-disconnect decision).
func (w *windowRegistry) DrainAborted() []*submission {
	w.mu.Lock()
	drained := make([]*submission, 0, len(w.byseq))
	for seq, s := range w.byseq {
		drained = append(drained, s)
		delete(w.byseq, seq)
	}
	w.mu.Unlock()

	for _, s := range drained {
		s.signal(completion{reason: reasonAborted})
	}
	return drained
}
