package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ucell-first/cmpp30/cmpp/pdu"
)

func TestPendingQueueFIFOOrder(t *testing.T) {
	q := newPendingQueue()
	first := newSubmission(pdu.Submit{ServiceID: "first"})
	second := newSubmission(pdu.Submit{ServiceID: "second"})

	q.Push(first)
	q.Push(second)
	assert.Equal(t, 2, q.Len())

	got, ok := q.Pop()
	require.True(t, ok)
	assert.Same(t, first, got)

	got, ok = q.Pop()
	require.True(t, ok)
	assert.Same(t, second, got)

	_, ok = q.Pop()
	assert.False(t, ok)
}
