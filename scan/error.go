package scan

import (
	"fmt"
	"strings"
)

// ContextLength is the number of bytes following the failure point that are
// recorded in an Error.
const ContextLength = 50

// Kind classifies a parse failure.
type Kind int

const (
	KindIO Kind = iota + 1
	KindUnexpectedEOF
	KindMissingNexusHeader
	KindInvalidBlockName
	KindInvalidTaxaBlock
	KindInvalidTreesBlock
	KindInvalidTranslateCommand
	KindUnclosedComment
	KindInvalidNewick
	KindInvalidFormatting
	KindUnresolvedLabel
)

var kindText = map[Kind]string{
	KindIO:                      "IO error",
	KindUnexpectedEOF:           "Unexpected end of file",
	KindMissingNexusHeader:      "File does not start with #NEXUS header",
	KindInvalidBlockName:        "Invalid block name",
	KindInvalidTaxaBlock:        "Invalid TAXA block format",
	KindInvalidTreesBlock:       "Invalid TREES block format",
	KindInvalidTranslateCommand: "Invalid TRANSLATE command",
	KindUnclosedComment:         "Unclosed comment",
	KindInvalidNewick:           "Invalid newick string",
	KindInvalidFormatting:       "Invalid formatting",
	KindUnresolvedLabel:         "Could not resolve label",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinel values for use with errors.Is. Any *Error matches the sentinel
// of its kind.
var (
	ErrIO                      = &Error{Kind: KindIO}
	ErrUnexpectedEOF           = &Error{Kind: KindUnexpectedEOF}
	ErrMissingNexusHeader      = &Error{Kind: KindMissingNexusHeader}
	ErrInvalidBlockName        = &Error{Kind: KindInvalidBlockName}
	ErrInvalidTaxaBlock        = &Error{Kind: KindInvalidTaxaBlock}
	ErrInvalidTreesBlock       = &Error{Kind: KindInvalidTreesBlock}
	ErrInvalidTranslateCommand = &Error{Kind: KindInvalidTranslateCommand}
	ErrUnclosedComment         = &Error{Kind: KindUnclosedComment}
	ErrInvalidNewick           = &Error{Kind: KindInvalidNewick}
	ErrInvalidFormatting       = &Error{Kind: KindInvalidFormatting}
	ErrUnresolvedLabel         = &Error{Kind: KindUnresolvedLabel}
)

// Error is a parse failure with its location in the input.
type Error struct {
	Kind Kind

	// Additional detail. May be empty.
	Msg string

	// Byte offset at which the failure was detected.
	Offset int

	// Up to ContextLength bytes of input starting at Offset.
	Context string

	// The underlying error for KindIO.
	Err error
}

// NewIOError wraps an I/O failure. I/O errors carry no position.
func NewIOError(err error) *Error {
	return &Error{Kind: KindIO, Msg: err.Error(), Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if len(e.Msg) > 0 {
		if e.Kind == KindInvalidNewick {
			b.WriteString(": ")
		} else {
			b.WriteString(" - ")
		}
		b.WriteString(e.Msg)
	}
	fmt.Fprintf(&b, " at position %d", e.Offset)
	if len(e.Context) > 0 {
		fmt.Fprintf(&b, "\n  Context (next %d bytes): %s", len(e.Context), e.Context)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
