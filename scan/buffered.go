package scan

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// MinWindow is the smallest peek window a BufferedSource will use. It is
// large enough for the longest literal matched by the readers in this module
// ("Dimensions", "Taxlabels", "Translate").
const MinWindow = 16

// DefaultBufferSize is the buffer size used by OpenBuffered.
const DefaultBufferSize = 64 * 1024

// BufferedSource is a Source that streams from a reader. Only a window of
// the input is held in memory at any time, so PeekN can never return more
// than the buffer size. SetPosition requires the reader to be an io.Seeker.
//
// A read error other than io.EOF is treated as the end of input by Peek and
// Next and is remembered; it is available from Err.
type BufferedSource struct {
	rd     io.Reader
	r      *bufio.Reader
	pos    int
	err    error
	closer io.Closer
}

// NewBufferedSource returns a source reading from rd with a buffer of the
// given size. Sizes smaller than MinWindow are raised to MinWindow.
func NewBufferedSource(rd io.Reader, size int) *BufferedSource {
	if size < MinWindow {
		size = MinWindow
	}
	return &BufferedSource{
		rd: rd,
		r:  bufio.NewReaderSize(rd, size),
	}
}

// OpenBuffered opens the file at path for buffered reading. The caller must
// call Close when done.
func OpenBuffered(path string) (*BufferedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewIOError(err)
	}
	s := NewBufferedSource(f, DefaultBufferSize)
	s.closer = f
	return s, nil
}

func (s *BufferedSource) Peek() (byte, bool) {
	b, err := s.r.Peek(1)
	if err != nil {
		s.fail(err)
		return 0, false
	}
	return b[0], true
}

func (s *BufferedSource) Next() (byte, bool) {
	b, err := s.r.ReadByte()
	if err != nil {
		s.fail(err)
		return 0, false
	}
	s.pos++
	return b, true
}

func (s *BufferedSource) PeekN(n int) []byte {
	if n > s.r.Size() {
		n = s.r.Size()
	}
	// A short read is fine here: Peek returns whatever is buffered.
	b, err := s.r.Peek(n)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		s.fail(err)
	}
	return b
}

func (s *BufferedSource) Position() int {
	return s.pos
}

// SetPosition seeks the underlying reader and discards the buffered window.
func (s *BufferedSource) SetPosition(pos int) error {
	seeker, ok := s.rd.(io.Seeker)
	if !ok {
		return fmt.Errorf("Cannot move to position %d: input is not seekable.", pos)
	}
	if _, err := seeker.Seek(int64(pos), io.SeekStart); err != nil {
		return NewIOError(err)
	}
	s.r.Reset(s.rd)
	s.pos = pos
	return nil
}

func (s *BufferedSource) EOF() bool {
	_, err := s.r.Peek(1)
	return err != nil
}

// Err returns the first read error encountered that was not io.EOF.
func (s *BufferedSource) Err() error {
	return s.err
}

// Close closes the underlying file if the source was created by
// OpenBuffered.
func (s *BufferedSource) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

func (s *BufferedSource) fail(err error) {
	if err != io.EOF && s.err == nil {
		s.err = err
	}
}
