package sexpr

import (
	"strings"
	"unicode"

	"github.com/redgush/flycatcher/report"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokLParen
	tokRParen
	tokAtom
	tokString
)

type token struct {
	kind tokKind
	text string
	span *report.TextSpan
}

// scanner splits S-expression text into tokens while tracking line and column
// positions.
type scanner struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newScanner(input string) *scanner {
	return &scanner{src: []rune(input)}
}

func (s *scanner) peek() rune {
	if s.pos >= len(s.src) {
		return 0
	}

	return s.src[s.pos]
}

func (s *scanner) read() rune {
	c := s.src[s.pos]
	s.pos++

	if c == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}

	return c
}

// skipTrivia skips whitespace and `;` line comments.
func (s *scanner) skipTrivia() {
	for s.pos < len(s.src) {
		c := s.peek()
		if unicode.IsSpace(c) {
			s.read()
		} else if c == ';' {
			for s.pos < len(s.src) && s.peek() != '\n' {
				s.read()
			}
		} else {
			return
		}
	}
}

func (s *scanner) next() (token, error) {
	s.skipTrivia()

	startLine, startCol := s.line, s.col
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, span: &report.TextSpan{
			StartLine: startLine, StartCol: startCol, EndLine: startLine, EndCol: startCol,
		}}, nil
	}

	mkSpan := func() *report.TextSpan {
		endLine, endCol := s.line, s.col-1
		if endCol < 0 {
			endCol = 0
		}

		return &report.TextSpan{StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol}
	}

	switch c := s.peek(); c {
	case '(', '[':
		s.read()
		return token{kind: tokLParen, text: "(", span: mkSpan()}, nil
	case ')', ']':
		s.read()
		return token{kind: tokRParen, text: ")", span: mkSpan()}, nil
	case '"':
		text, err := s.readString()
		if err != nil {
			return token{}, &SyntaxError{Message: err.Error(), Span: mkSpan()}
		}

		return token{kind: tokString, text: text, span: mkSpan()}, nil
	default:
		sb := strings.Builder{}
		for s.pos < len(s.src) && isAtomChar(s.peek()) {
			sb.WriteRune(s.read())
		}

		if sb.Len() == 0 {
			s.read()
			return token{}, &SyntaxError{Message: "unexpected character `" + string(c) + "`", Span: mkSpan()}
		}

		return token{kind: tokAtom, text: sb.String(), span: mkSpan()}, nil
	}
}

type stringError string

func (se stringError) Error() string {
	return string(se)
}

func (s *scanner) readString() (string, error) {
	s.read() // opening quote

	sb := strings.Builder{}
	for {
		if s.pos >= len(s.src) {
			return "", stringError("unterminated string")
		}

		c := s.read()
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			if s.pos >= len(s.src) {
				return "", stringError("unterminated string")
			}

			switch e := s.read(); e {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case '"', '\\':
				sb.WriteRune(e)
			default:
				return "", stringError("invalid escape sequence: \\" + string(e))
			}
		default:
			sb.WriteRune(c)
		}
	}
}

func isAtomChar(c rune) bool {
	switch c {
	case '(', ')', '[', ']', '"', ';':
		return false
	}

	return !unicode.IsSpace(c) && unicode.IsPrint(c)
}
