// Package auth computes the CMPP_CONNECT authenticator digest.
package auth

import (
	"crypto/md5"
	"fmt"
	"time"
	"unicode/utf16"
)

// TimestampFormat renders t as the decimal MMddhhmmss integer the CMPP
// authenticator requires: month, day, hour, minute, second, each
// zero-padded, read in t's own location (the session loop passes local
// time).
func TimestampFormat(t time.Time) string {
	return fmt.Sprintf("%02d%02d%02d%02d%02d", int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Digest computes AuthenticatorSource = MD5(username || 0x00*9 || password
// || timestamp), treating every input as raw ASCII bytes (each code unit
// truncated to one byte).
func Digest(username, password, timestamp string) [16]byte {
	h := md5.New()
	h.Write(toASCIIBytes(username))
	h.Write(make([]byte, 9))
	h.Write(toASCIIBytes(password))
	h.Write(toASCIIBytes(timestamp))
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

func toASCIIBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, len(units))
	for i, u := range units {
		b[i] = byte(u)
	}
	return b
}
