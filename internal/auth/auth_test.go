package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampFormat(t *testing.T) {
	ts := TimestampFormat(time.Date(2026, time.March, 5, 8, 9, 3, 0, time.UTC))
	assert.Equal(t, "0305080903", ts)
}

func TestDigestDependsOnEveryInput(t *testing.T) {
	base := Digest("900001", "secret", "0305080903")

	assert.NotEqual(t, base, Digest("900002", "secret", "0305080903"), "digest must depend on username")
	assert.NotEqual(t, base, Digest("900001", "other", "0305080903"), "digest must depend on password")
	assert.NotEqual(t, base, Digest("900001", "secret", "0305080904"), "digest must depend on timestamp")
	assert.Equal(t, base, Digest("900001", "secret", "0305080903"), "digest must be deterministic")
}
