package terminator

import (
	"bytes"
	"fmt"
)

type Kind uint8

const (
	// Delimiter completes a unit as soon as a literal byte sequence is met
	Delimiter Kind = iota + 1
	// FixedCount completes a unit as soon as exactly N bytes are collected
	FixedCount
)

// Terminator is the rule telling the Reader when a unit of input is complete. Exactly
// one of its modes is active at a time.
type Terminator struct {
	delim []byte
	count int
	kind  Kind
}

// Delim returns a terminator that completes on the first occurrence of seq.
func Delim(seq string) Terminator {
	if len(seq) == 0 {
		panic("BUG: empty delimiter")
	}

	return Terminator{kind: Delimiter, delim: []byte(seq)}
}

// Count returns a terminator that completes once n bytes are collected.
func Count(n int) Terminator {
	if n < 0 {
		panic(fmt.Sprintf("BUG: negative terminator count: %d", n))
	}

	return Terminator{kind: FixedCount, count: n}
}

func (t Terminator) Kind() Kind {
	return t.kind
}

func (t Terminator) String() string {
	switch t.kind {
	case Delimiter:
		return fmt.Sprintf("delimiter(%q)", t.delim)
	case FixedCount:
		return fmt.Sprintf("count(%d)", t.count)
	default:
		return "unset"
	}
}

// Reader accumulates inbound bytes and hands them out unit by unit, where a unit is
// delimited by the active Terminator. It knows nothing about the protocol it serves.
type Reader struct {
	buff []byte
	// scanned is the number of leading bytes of buff that are known to not contain
	// the beginning of the delimiter, so they are skipped by following scans
	scanned int
	term    Terminator
}

func New(term Terminator) *Reader {
	return &Reader{term: term}
}

// Feed appends the chunk to the internal buffer. The chunk is copied, so the caller is
// free to reuse it.
func (r *Reader) Feed(chunk []byte) {
	r.buff = append(r.buff, chunk...)
}

// Poll returns the next complete unit, if any. For delimiter mode the returned unit
// doesn't include the delimiter itself, however both are consumed. For counting mode
// exactly N bytes are returned, leaving everything else buffered.
//
// Returned slices stay valid and are never overridden by the Reader.
func (r *Reader) Poll() (unit []byte, ok bool) {
	switch r.term.kind {
	case Delimiter:
		idx := bytes.Index(r.buff[r.scanned:], r.term.delim)
		if idx == -1 {
			if tail := len(r.buff) - len(r.term.delim) + 1; tail > r.scanned {
				r.scanned = tail
			}

			return nil, false
		}

		idx += r.scanned
		unit = r.buff[:idx:idx]
		r.consume(idx + len(r.term.delim))

		return unit, true
	case FixedCount:
		if len(r.buff) < r.term.count {
			return nil, false
		}

		n := r.term.count
		unit = r.buff[:n:n]
		r.consume(n)

		return unit, true
	default:
		panic(fmt.Sprintf("BUG: polling with unset terminator: %s", r.term))
	}
}

// SetTerminator swaps the active terminator. Data that is already buffered will be
// examined against the new terminator on the next Poll.
func (r *Reader) SetTerminator(term Terminator) {
	r.term = term
	r.scanned = 0
}

func (r *Reader) Terminator() Terminator {
	return r.term
}

// Buffered returns the number of bytes that are collected, but not yet returned.
func (r *Reader) Buffered() int {
	return len(r.buff)
}

// Reset drops everything buffered and installs a new terminator.
func (r *Reader) Reset(term Terminator) {
	r.buff = nil
	r.SetTerminator(term)
}

func (r *Reader) consume(n int) {
	r.scanned = 0

	if n == len(r.buff) {
		// dropping the reference instead of re-slicing to zero, as previously returned
		// units may still point into the old memory
		r.buff = nil
		return
	}

	r.buff = r.buff[n:]
}
