// Package sb implements a growable byte buffer with the semantic
// scanning helpers (whitespace/comma skipping, quoted-literal scanning,
// C-string style termination) that the rest of masp is built on.
//
// The type is named after the original `sb` ("string buffer") routines
// it is grounded on: append, grow, reset and scan, nothing more.
package sb

import "fmt"

// MaxPowerTwo bounds the buffer's capacity exponent. A buffer never
// grows past 1<<MaxPowerTwo bytes; an append that would cross it is a
// fatal error rather than a silent truncation.
const MaxPowerTwo = 24

// defaultPowerTwo is the capacity exponent a zero-value New buffer
// starts with.
const defaultPowerTwo = 5

// Buffer is a growable, owned byte container. The zero value is not
// usable; construct one with New or NewSize.
type Buffer struct {
	bytes []byte
	pot   uint
	dead  bool
}

// New returns an empty buffer with the default initial capacity.
func New() *Buffer {
	return NewSize(defaultPowerTwo)
}

// NewSize returns an empty buffer whose initial capacity is 1<<pot
// bytes. It panics if pot exceeds MaxPowerTwo.
func NewSize(pot uint) *Buffer {
	if pot > MaxPowerTwo {
		panic(fmt.Sprintf("sb: initial capacity exponent %d exceeds max %d", pot, MaxPowerTwo))
	}
	return &Buffer{
		bytes: make([]byte, 0, 1<<pot),
		pot:   pot,
	}
}

// FromString returns a buffer pre-loaded with s.
func FromString(s string) *Buffer {
	b := New()
	b.AppendString(s)
	return b
}

func (b *Buffer) checkAlive() {
	if b.dead {
		panic("sb: use of buffer after Kill")
	}
}

// grow ensures capacity for n additional bytes, doubling the backing
// power of two until it fits, up to MaxPowerTwo.
func (b *Buffer) grow(n int) {
	need := len(b.bytes) + n
	pot := b.pot
	for need > 1<<pot {
		pot++
		if pot > MaxPowerTwo {
			panic(fmt.Sprintf("sb: buffer would exceed maximum capacity 1<<%d", MaxPowerTwo))
		}
	}
	if pot == b.pot {
		return
	}
	grown := make([]byte, len(b.bytes), 1<<pot)
	copy(grown, b.bytes)
	b.bytes = grown
	b.pot = pot
}

// AppendChar appends one byte.
func (b *Buffer) AppendChar(c byte) {
	b.checkAlive()
	b.grow(1)
	b.bytes = append(b.bytes, c)
}

// AppendBytes appends src in full.
func (b *Buffer) AppendBytes(src []byte) {
	b.checkAlive()
	b.grow(len(src))
	b.bytes = append(b.bytes, src...)
}

// AppendBuffer appends the contents of other.
func (b *Buffer) AppendBuffer(other *Buffer) {
	b.AppendBytes(other.Bytes())
}

// AppendString appends s up to (not including) the first NUL byte.
func (b *Buffer) AppendString(s string) {
	if i := indexNUL(s); i >= 0 {
		s = s[:i]
	}
	b.AppendBytes([]byte(s))
}

func indexNUL(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return i
		}
	}
	return -1
}

// Reset sets the length back to zero; capacity is retained.
func (b *Buffer) Reset() {
	b.checkAlive()
	b.bytes = b.bytes[:0]
}

// Kill releases the backing storage. Any further mutating call on b
// (an append, Reset, Kill, AsCString or Terminate) panics; read-only
// accessors such as Len, Bytes and String see an empty buffer.
func (b *Buffer) Kill() {
	b.checkAlive()
	b.bytes = nil
	b.dead = true
}

// Len returns the number of valid bytes.
func (b *Buffer) Len() int {
	return len(b.bytes)
}

// Bytes returns the valid portion of the buffer. The slice is only
// valid until the next mutating call.
func (b *Buffer) Bytes() []byte {
	return b.bytes
}

// String returns the valid portion of the buffer as a string.
func (b *Buffer) String() string {
	return string(b.bytes)
}

// AsCString appends a NUL and returns bytes[0:len] including that NUL;
// Len() is advanced past it.
func (b *Buffer) AsCString() []byte {
	b.AppendChar(0)
	return b.bytes
}

// Terminate appends a NUL and returns it as part of the result slice,
// but does not count it towards Len(): the NUL is there for C-string
// interop, not for the buffer's own notion of length.
func (b *Buffer) Terminate() []byte {
	b.checkAlive()
	b.grow(1)
	withNUL := append(b.bytes, 0)
	return withNUL
}

// SkipWhitespace returns the smallest j >= idx such that byte j is not
// a space or tab, or j == Len().
func (b *Buffer) SkipWhitespace(idx int) int {
	for idx < len(b.bytes) && isSpaceOrTab(b.bytes[idx]) {
		idx++
	}
	return idx
}

// SkipComma skips whitespace, one optional comma, then whitespace.
func (b *Buffer) SkipComma(idx int) int {
	idx = b.SkipWhitespace(idx)
	if idx < len(b.bytes) && b.bytes[idx] == ',' {
		idx++
	}
	return b.SkipWhitespace(idx)
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}

// EatLiteral copies a quoted string literal starting at idx (including
// both delimiters) into out, honoring backslash escapes: the backslash
// is dropped and the following byte copied verbatim. It stops at the
// matching unescaped closing quote and reports ok == true. If bytes[idx]
// is not a quote character, it returns idx unchanged, leaves out
// untouched, and reports ok == true (there was no literal to close).
// If a quote is opened but the buffer ends before the matching closing
// quote is found, it returns the consumed-to-end cursor with ok ==
// false, so callers can report an unterminated string literal
// (spec.md §7's syntax-error taxonomy) instead of silently accepting a
// dangling quote.
func (b *Buffer) EatLiteral(idx int, out *Buffer) (int, bool) {
	if idx >= len(b.bytes) {
		return idx, true
	}
	quote := b.bytes[idx]
	if quote != '"' && quote != '\'' {
		return idx, true
	}
	out.AppendChar(b.bytes[idx])
	idx++
	for idx < len(b.bytes) {
		c := b.bytes[idx]
		switch {
		case c == '\\' && idx < len(b.bytes)-1:
			idx++
			out.AppendChar(b.bytes[idx])
			idx++
		case c == quote:
			out.AppendChar(c)
			idx++
			return idx, true
		default:
			out.AppendChar(c)
			idx++
		}
	}
	return idx, false
}
