package report

import "fmt"

// TextSpan represents a range or "span" of source text. It is used to specify
// erroneous or otherwise significant source text in a program.  Text spans are
// inclusive on both sides: the starting position is the position of the first
// character in the span and the ending position is the position of the last
// character in the span.  The line and column numbers are zero-indexed.
type TextSpan struct {
	// The line and column beginning the text span.
	StartLine, StartCol int

	// The line and column ending the text span.
	EndLine, EndCol int
}

// NewSpanOver returns a new text span which spans over and between the two
// given text spans.
func NewSpanOver(start, end *TextSpan) *TextSpan {
	return &TextSpan{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

// Before reports whether span a starts before span b.  Nil spans sort first.
func (a *TextSpan) Before(b *TextSpan) bool {
	if a == nil {
		return b != nil
	} else if b == nil {
		return false
	}

	if a.StartLine != b.StartLine {
		return a.StartLine < b.StartLine
	}

	return a.StartCol < b.StartCol
}

func (a *TextSpan) String() string {
	if a == nil {
		return "?"
	}

	return fmt.Sprintf("%d:%d-%d:%d", a.StartLine+1, a.StartCol+1, a.EndLine+1, a.EndCol+1)
}
