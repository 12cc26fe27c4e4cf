package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ucell-first/cmpp30/cmpp/pdu"
)

func TestWindowRegistryInsertRespectsCapacity(t *testing.T) {
	w := newWindowRegistry(2)
	assert.True(t, w.Insert(1, newSubmission(pdu.Submit{})))
	assert.True(t, w.Insert(2, newSubmission(pdu.Submit{})))
	assert.False(t, w.Insert(3, newSubmission(pdu.Submit{})), "third insert must fail once full")
	assert.True(t, w.Full())
}

func TestWindowRegistryCompleteSignalsAndRemoves(t *testing.T) {
	w := newWindowRegistry(4)
	s := newSubmission(pdu.Submit{})
	require.True(t, w.Insert(5, s))

	ok := w.Complete(5, pdu.SubmitResp{MsgID: 99, Result: 0})
	assert.True(t, ok)
	assert.Equal(t, 0, w.Len())

	select {
	case c := <-s.done:
		assert.Equal(t, reasonMatched, c.reason)
		assert.Equal(t, uint64(99), c.resp.MsgID)
	default:
		t.Fatal("expected a completion signal")
	}
}

func TestWindowRegistryCompleteUnknownSequenceIgnored(t *testing.T) {
	w := newWindowRegistry(4)
	assert.False(t, w.Complete(123, pdu.SubmitResp{}))
}

func TestWindowRegistrySweepTimeouts(t *testing.T) {
	w := newWindowRegistry(4)
	s := newSubmission(pdu.Submit{})
	s.sendTime = time.Now().Add(-time.Minute)
	require.True(t, w.Insert(1, s))

	fresh := newSubmission(pdu.Submit{})
	fresh.sendTime = time.Now()
	require.True(t, w.Insert(2, fresh))

	timedOut := w.SweepTimeouts(time.Now(), 30*time.Second)
	require.Len(t, timedOut, 1)
	assert.Equal(t, 1, w.Len(), "only the stale entry is removed")

	c := <-s.done
	assert.Equal(t, reasonTimeout, c.reason)
}

func TestWindowRegistryDrainAbortedSignalsEveryEntry(t *testing.T) {
	w := newWindowRegistry(4)
	a := newSubmission(pdu.Submit{})
	b := newSubmission(pdu.Submit{})
	require.True(t, w.Insert(1, a))
	require.True(t, w.Insert(2, b))

	drained := w.DrainAborted()
	assert.Len(t, drained, 2)
	assert.Equal(t, 0, w.Len())

	for _, s := range []*submission{a, b} {
		c := <-s.done
		assert.Equal(t, reasonAborted, c.reason)
	}
}

func TestSubmissionSignalFiresOnlyOnce(t *testing.T) {
	s := newSubmission(pdu.Submit{})
	s.signal(completion{reason: reasonTimeout})
	s.signal(completion{reason: reasonAborted}) // must not block or overwrite

	c := <-s.done
	assert.Equal(t, reasonTimeout, c.reason)
}
