package scan

import (
	"fmt"
	"os"
)

// Source is a cursor over a sequence of bytes.
//
// Peek and Next report false once the end of input has been reached.
// PeekN returns at most n bytes starting at the current position without
// consuming them; the returned slice is only valid until the next call that
// moves the cursor.
type Source interface {
	Peek() (byte, bool)
	Next() (byte, bool)
	PeekN(n int) []byte
	Position() int
	SetPosition(pos int) error
	EOF() bool
}

// MemorySource is a Source over a byte slice held entirely in memory.
type MemorySource struct {
	buf []byte
	pos int
}

// NewMemorySource returns a source reading from buf. The slice is not copied.
func NewMemorySource(buf []byte) *MemorySource {
	return &MemorySource{buf: buf}
}

// NewMemorySourceString returns a source reading the bytes of s.
func NewMemorySourceString(s string) *MemorySource {
	return NewMemorySource([]byte(s))
}

// ReadMemorySource loads the whole file at path into memory.
func ReadMemorySource(path string) (*MemorySource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError(err)
	}
	return NewMemorySource(buf), nil
}

func (s *MemorySource) Peek() (byte, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	return s.buf[s.pos], true
}

func (s *MemorySource) Next() (byte, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	b := s.buf[s.pos]
	s.pos++
	return b, true
}

func (s *MemorySource) PeekN(n int) []byte {
	end := s.pos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	if s.pos >= end {
		return nil
	}
	return s.buf[s.pos:end]
}

func (s *MemorySource) Position() int {
	return s.pos
}

func (s *MemorySource) SetPosition(pos int) error {
	if pos < 0 || pos > len(s.buf) {
		return fmt.Errorf("Position %d out of range [0, %d].", pos, len(s.buf))
	}
	s.pos = pos
	return nil
}

func (s *MemorySource) EOF() bool {
	return s.pos >= len(s.buf)
}

// Len returns the total number of bytes in the source.
func (s *MemorySource) Len() int {
	return len(s.buf)
}

// Slice returns the bytes in [start, end). It is used to recover the raw text
// of a region that has already been scanned.
func (s *MemorySource) Slice(start, end int) []byte {
	if start < 0 {
		start = 0
	}
	if end > len(s.buf) {
		end = len(s.buf)
	}
	if start >= end {
		return nil
	}
	return s.buf[start:end]
}
