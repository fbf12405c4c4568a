package scan

import (
	"fmt"
	"io"
)

// Mode controls whether a ConsumeUntil family method also consumes the
// terminator it stops at.
type Mode int

const (
	Exclusive Mode = iota
	Inclusive
)

// Parser layers token level operations on top of a Source.
//
// It is NOT safe to use a Parser from multiple goroutines.
type Parser struct {
	src     Source
	scratch []byte
}

// NewParser returns a parser reading from src.
func NewParser(src Source) *Parser {
	return &Parser{src: src, scratch: make([]byte, 0, 64)}
}

// NewParserString returns a parser over an in-memory copy of s.
func NewParserString(s string) *Parser {
	return NewParser(NewMemorySourceString(s))
}

// NewParserBytes returns a parser over buf. The slice is not copied.
func NewParserBytes(buf []byte) *Parser {
	return NewParser(NewMemorySource(buf))
}

// Source returns the underlying source.
func (p *Parser) Source() Source {
	return p.src
}

// Close closes the underlying source if it holds a resource.
func (p *Parser) Close() error {
	if c, ok := p.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Parser) Peek() (byte, bool) {
	return p.src.Peek()
}

func (p *Parser) Next() (byte, bool) {
	return p.src.Next()
}

func (p *Parser) EOF() bool {
	return p.src.EOF()
}

func (p *Parser) Position() int {
	return p.src.Position()
}

// SetPosition rewinds (or advances) the cursor to an absolute offset.
func (p *Parser) SetPosition(pos int) error {
	if err := p.src.SetPosition(pos); err != nil {
		if e, ok := err.(*Error); ok {
			return e
		}
		return p.Errorf(KindIO, "%s", err)
	}
	return nil
}

// ContextString returns up to n bytes following the cursor.
func (p *Parser) ContextString(n int) string {
	return string(p.src.PeekN(n))
}

// SkipWhitespace consumes spaces, tabs, carriage returns and newlines.
func (p *Parser) SkipWhitespace() {
	for {
		b, ok := p.src.Peek()
		if !ok || !isSpace(b) {
			return
		}
		p.src.Next()
	}
}

// SkipComment consumes a single bracketed comment if one starts at the
// cursor. It reports whether a comment was consumed.
func (p *Parser) SkipComment() (bool, error) {
	if !p.ConsumeIf('[') {
		return false, nil
	}
	if !p.ConsumeUntil(']', Inclusive) {
		return false, p.Errorf(KindUnclosedComment, "")
	}
	return true, nil
}

// SkipCommentAndWhitespace consumes any run of whitespace and comments.
func (p *Parser) SkipCommentAndWhitespace() error {
	p.SkipWhitespace()
	for {
		skipped, err := p.SkipComment()
		if err != nil {
			return err
		}
		if !skipped {
			return nil
		}
		p.SkipWhitespace()
	}
}

// PeekIs reports whether the next byte equals c, ignoring ASCII case.
func (p *Parser) PeekIs(c byte) bool {
	b, ok := p.src.Peek()
	return ok && (b == c || lower(b) == lower(c))
}

// PeekIsWord reports whether the input at the cursor starts with word,
// ignoring ASCII case. Nothing is consumed.
func (p *Parser) PeekIsWord(word string) bool {
	got := p.src.PeekN(len(word))
	if len(got) < len(word) {
		return false
	}
	for i := 0; i < len(word); i++ {
		if got[i] != word[i] && lower(got[i]) != lower(word[i]) {
			return false
		}
	}
	return true
}

// ConsumeIf consumes the next byte if it equals c, ignoring ASCII case.
func (p *Parser) ConsumeIf(c byte) bool {
	if !p.PeekIs(c) {
		return false
	}
	p.src.Next()
	return true
}

// ConsumeIfWord consumes word if the input at the cursor starts with it,
// ignoring ASCII case.
func (p *Parser) ConsumeIfWord(word string) bool {
	if !p.PeekIsWord(word) {
		return false
	}
	for i := 0; i < len(word); i++ {
		p.src.Next()
	}
	return true
}

// ConsumeUntil consumes bytes up to the first occurrence of target. It
// returns false if the end of input was reached first.
func (p *Parser) ConsumeUntil(target byte, mode Mode) bool {
	for {
		b, ok := p.src.Peek()
		if !ok {
			return false
		}
		if b == target {
			if mode == Inclusive {
				p.src.Next()
			}
			return true
		}
		p.src.Next()
	}
}

// ConsumeUntilAny consumes bytes up to the first byte contained in targets
// and returns that byte. ok is false if the end of input was reached first.
func (p *Parser) ConsumeUntilAny(targets string, mode Mode) (found byte, ok bool) {
	for {
		b, more := p.src.Peek()
		if !more {
			return 0, false
		}
		if contains(targets, b) {
			if mode == Inclusive {
				p.src.Next()
			}
			return b, true
		}
		p.src.Next()
	}
}

// ConsumeUntilWord consumes bytes up to the first occurrence of word
// (ignoring ASCII case). It returns false if the end of input was reached
// first.
func (p *Parser) ConsumeUntilWord(word string, mode Mode) bool {
	for !p.src.EOF() {
		if p.PeekIsWord(word) {
			if mode == Inclusive {
				p.ConsumeIfWord(word)
			}
			return true
		}
		p.src.Next()
	}
	return false
}

// ParseLabel skips leading whitespace and comments and then reads either a
// quoted label or an unquoted label terminated by any byte in delims.
func (p *Parser) ParseLabel(delims string) (string, error) {
	if err := p.SkipCommentAndWhitespace(); err != nil {
		return "", err
	}
	if p.PeekIs('\'') {
		return p.ParseQuotedLabel()
	}
	return p.ParseUnquotedLabel(delims), nil
}

// ParseQuotedLabel reads a label enclosed in single quotes. A doubled quote
// inside the label stands for one literal quote.
func (p *Parser) ParseQuotedLabel() (string, error) {
	if !p.ConsumeIf('\'') {
		return "", p.Errorf(KindInvalidFormatting, "")
	}
	buf := p.scratch[:0]
	for {
		b, ok := p.src.Next()
		if !ok {
			p.scratch = buf
			return "", p.Errorf(KindUnexpectedEOF, "")
		}
		if b == '\'' {
			if !p.ConsumeIf('\'') {
				break
			}
		}
		buf = append(buf, b)
	}
	p.scratch = buf
	return string(buf), nil
}

// ParseUnquotedLabel reads bytes until one of delims or the end of input.
// The delimiter is not consumed.
func (p *Parser) ParseUnquotedLabel(delims string) string {
	buf := p.scratch[:0]
	for {
		b, ok := p.src.Peek()
		if !ok || contains(delims, b) {
			break
		}
		buf = append(buf, b)
		p.src.Next()
	}
	p.scratch = buf
	return string(buf)
}

// Errorf builds an *Error of the given kind at the current position. If
// the source has failed with a read error, that error is reported instead.
func (p *Parser) Errorf(kind Kind, format string, v ...interface{}) *Error {
	if es, ok := p.src.(interface{ Err() error }); ok && kind != KindIO {
		if err := es.Err(); err != nil {
			e := NewIOError(err)
			e.Offset = p.src.Position()
			return e
		}
	}
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	return &Error{
		Kind:    kind,
		Msg:     msg,
		Offset:  p.src.Position(),
		Context: p.ContextString(ContextLength),
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func contains(set string, b byte) bool {
	for i := 0; i < len(set); i++ {
		if set[i] == b {
			return true
		}
	}
	return false
}
