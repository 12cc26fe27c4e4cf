// Package errors provides a wrapped error type used across the cmpp30
// module so config, codec and session failures carry a stable message chain
// independent of whatever the underlying stdlib error happens to say.
package errors

import "fmt"

// Error is implemented by values that carry an unwrappable message chain.
type Error interface {
	// Error implements the error interface.
	Error() string

	// Msg returns this error's own message, without any wrapped cause.
	Msg() string

	// Err returns the wrapped cause, or nil if there is none.
	Err() Error
}

var _ Error = (*wrapped)(nil)

type wrapped struct {
	msg string
	err Error
}

func (w *wrapped) Error() string {
	if w == nil {
		return ""
	}
	if w.err != nil {
		return fmt.Sprintf("%s: %s", w.msg, w.err.Error())
	}
	return w.msg
}

func (w *wrapped) Msg() string {
	return w.msg
}

func (w *wrapped) Err() Error {
	return w.err
}

// New returns an Error carrying the given message.
func New(msg string) Error {
	return &wrapped{msg: msg}
}

// Wrap returns an Error formed by attaching err as wrapper's cause. Returns
// nil if either argument is nil.
func Wrap(wrapper Error, err error) Error {
	if wrapper == nil || err == nil {
		return nil
	}
	return &wrapped{msg: wrapper.Msg(), err: cast(err)}
}

func cast(err error) Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(Error); ok {
		return e
	}
	return &wrapped{msg: err.Error()}
}

// Contains reports whether e's message, or any cause in its chain, matches
// target's message.
func Contains(e Error, target error) bool {
	if e == nil || target == nil {
		return e == nil
	}
	if e.Msg() == target.Error() {
		return true
	}
	if e.Err() == nil {
		return false
	}
	return Contains(e.Err(), target)
}
