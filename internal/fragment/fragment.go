// Package fragment implements long-message splitting: UCS-2 encoding, the
// 140-byte SMS payload ceiling, and the UDH-based concatenated-long-SMS
// layout, following the same segmentation-and-reassembly idiom as
// warthog618/sms's ms/sar package (concatenation reference/total/sequence
// numbering) and its ucs2 codec (warthog618/sms/encoding/ucs2).
package fragment

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
)

const (
	maxSMSBytes       = 140
	udhLen            = 6
	maxPayloadBytes   = maxSMSBytes - udhLen // 134
	maxFragmentsAllow = 8
)

// Sentinel errors the session package maps onto SendStatus values.
var (
	// ErrEmpty: content has no text to send.
	ErrEmpty = errors.New("fragment: content is empty")
	// ErrTooLong: more than 8 fragments, or more than 1 while
	// DisableLongMessage is set.
	ErrTooLong = errors.New("fragment: message too long")
)

// Config mirrors the relevant subset of the client's Config.
type Config struct {
	Signature                      string
	DisableLongMessage             bool
	SendLongMessageAsShortMessages bool
	PrepositiveGatewaySignature    bool
	AttemptRemoveSignature         bool
}

// Piece is one wire-ready fragment: UDH (nil if this is a plain short SMS),
// MsgFmt and TpUDHI for the SUBMIT frame, and the already-UCS2-encoded
// content (signature included, if this config embeds one).
type Piece struct {
	UDH        []byte // 6 bytes, nil when TpUDHI == 0
	MsgFmt     byte
	TpUDHI     byte
	Content    []byte
	SeqInGroup int // 1-based position among Pieces, TOTAL = len(Pieces)
}

// msgFmt returns the MsgFmt byte for cfg: the carrier "special" marker when
// AttemptRemoveSignature requests it, UCS-2 otherwise.
func msgFmt(cfg Config) byte {
	if cfg.AttemptRemoveSignature {
		return 0x0F
	}
	return 0x08
}

// Split computes the wire-ready fragments for content under cfg. ref is the
// low byte of the sequence counter at fragmentation time and must stay
// stable across every fragment of one submission.
func Split(content string, cfg Config, ref byte) ([]Piece, error) {
	if content == "" {
		return nil, ErrEmpty
	}

	if cfg.SendLongMessageAsShortMessages {
		return splitAsShortMessages(content, cfg)
	}
	return splitAsSingleOrConcatenated(content, cfg, ref)
}

func encodeUCS2(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.BigEndian.PutUint16(out[i*2:], u)
	}
	return out
}

func splitAsSingleOrConcatenated(content string, cfg Config, ref byte) ([]Piece, error) {
	encoded := encodeUCS2(content)

	sigLen := 0
	if !cfg.AttemptRemoveSignature {
		sigLen = len(encodeUCS2(cfg.Signature))
	}

	if len(encoded)+sigLen <= maxSMSBytes {
		body := applySignature(encoded, cfg)
		return []Piece{{
			MsgFmt:     msgFmt(cfg),
			TpUDHI:     0,
			Content:    body,
			SeqInGroup: 1,
		}}, nil
	}

	total := (len(encoded)-1)/maxPayloadBytes + 1
	if total > maxFragmentsAllow {
		return nil, ErrTooLong
	}
	if total > 1 && cfg.DisableLongMessage {
		return nil, ErrTooLong
	}

	pieces := make([]Piece, 0, total)
	for seq := 1; seq <= total; seq++ {
		start := (seq - 1) * maxPayloadBytes
		end := start + maxPayloadBytes
		if end > len(encoded) {
			end = len(encoded)
		}
		udh := []byte{0x05, 0x00, 0x03, ref, byte(total), byte(seq)}
		pieces = append(pieces, Piece{
			UDH:        udh,
			MsgFmt:     msgFmt(cfg),
			TpUDHI:     1,
			Content:    encoded[start:end],
			SeqInGroup: seq,
		})
	}
	return pieces, nil
}

func splitAsShortMessages(content string, cfg Config) ([]Piece, error) {
	budget := maxSMSBytes
	prependSig := cfg.PrepositiveGatewaySignature && !cfg.AttemptRemoveSignature
	var sigBytes []byte
	if prependSig {
		sigBytes = encodeUCS2(cfg.Signature)
		budget -= len(sigBytes)
	}
	if budget <= 0 {
		return nil, ErrTooLong
	}

	chunks := chunkOnCodePoints(content, budget)
	if len(chunks) > maxFragmentsAllow {
		return nil, ErrTooLong
	}
	if len(chunks) > 1 && cfg.DisableLongMessage {
		return nil, ErrTooLong
	}

	pieces := make([]Piece, 0, len(chunks))
	for i, c := range chunks {
		body := c
		if prependSig {
			body = append(append([]byte(nil), sigBytes...), c...)
		}
		pieces = append(pieces, Piece{
			MsgFmt:     msgFmt(cfg),
			TpUDHI:     0,
			Content:    body,
			SeqInGroup: i + 1,
		})
	}
	return pieces, nil
}

// chunkOnCodePoints splits content into UCS-2-encoded chunks no larger than
// budget bytes, never splitting a surrogate pair across chunks.
func chunkOnCodePoints(content string, budget int) [][]byte {
	runes := []rune(content)
	var chunks [][]byte
	var cur []uint16
	curBytes := 0

	flush := func() {
		if len(cur) == 0 {
			return
		}
		b := make([]byte, len(cur)*2)
		for i, u := range cur {
			binary.BigEndian.PutUint16(b[i*2:], u)
		}
		chunks = append(chunks, b)
		cur = nil
		curBytes = 0
	}

	for _, r := range runes {
		units := utf16.Encode([]rune{r})
		need := len(units) * 2
		if curBytes+need > budget && len(cur) > 0 {
			flush()
		}
		cur = append(cur, units...)
		curBytes += need
	}
	flush()
	return chunks
}

func applySignature(encoded []byte, cfg Config) []byte {
	if cfg.AttemptRemoveSignature || cfg.Signature == "" {
		return encoded
	}
	sig := encodeUCS2(cfg.Signature)
	if cfg.PrepositiveGatewaySignature {
		return append(append([]byte(nil), sig...), encoded...)
	}
	return append(append([]byte(nil), encoded...), sig...)
}
