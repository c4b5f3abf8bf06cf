// Package sexpr reads the S-expression text that syntax trees are stored in.
package sexpr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/redgush/flycatcher/report"
)

// Kind is the kind of a datum.
type Kind int

// Enumeration of datum kinds.
const (
	KindSymbol Kind = iota
	KindString
	KindInt
	KindFloat
	KindList
)

// Node is a single datum: an atom or a list.
type Node struct {
	Kind Kind

	// Text is the symbol name, the decoded string contents, or the literal
	// text of a number.
	Text string

	Items []*Node

	Span *report.TextSpan
}

// IsList reports whether the node is a list.
func (n *Node) IsList() bool {
	return n.Kind == KindList
}

// Head returns the symbol at the head of a list or "" if there is none.
func (n *Node) Head() string {
	if n.Kind == KindList && len(n.Items) > 0 && n.Items[0].Kind == KindSymbol {
		return n.Items[0].Text
	}

	return ""
}

// Args returns all items of a list after its head.
func (n *Node) Args() []*Node {
	if n.Kind != KindList || len(n.Items) == 0 {
		return nil
	}

	return n.Items[1:]
}

func (n *Node) String() string {
	switch n.Kind {
	case KindString:
		return strconv.Quote(n.Text)
	case KindList:
		sb := strings.Builder{}
		sb.WriteRune('(')
		for i, item := range n.Items {
			if i > 0 {
				sb.WriteRune(' ')
			}

			sb.WriteString(item.String())
		}
		sb.WriteRune(')')
		return sb.String()
	default:
		return n.Text
	}
}

// -----------------------------------------------------------------------------

// SyntaxError is an error in the S-expression text itself.
type SyntaxError struct {
	Message string
	Span    *report.TextSpan
}

func (se *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", se.Span.StartLine+1, se.Span.StartCol+1, se.Message)
}

// Parse reads every top-level datum in the input.
func Parse(input string) ([]*Node, error) {
	p := &parser{sc: newScanner(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var nodes []*Node
	for p.tok.kind != tokEOF {
		node, err := p.parseDatum()
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}

// ParseOne reads exactly one datum.
func ParseOne(input string) (*Node, error) {
	nodes, err := Parse(input)
	if err != nil {
		return nil, err
	}

	if len(nodes) != 1 {
		return nil, &SyntaxError{
			Message: fmt.Sprintf("expected exactly one datum but got %d", len(nodes)),
			Span:    &report.TextSpan{},
		}
	}

	return nodes[0], nil
}

type parser struct {
	sc  *scanner
	tok token
}

func (p *parser) advance() error {
	tok, err := p.sc.next()
	if err != nil {
		return err
	}

	p.tok = tok
	return nil
}

func (p *parser) parseDatum() (*Node, error) {
	switch p.tok.kind {
	case tokLParen:
		return p.parseList()
	case tokRParen:
		return nil, &SyntaxError{Message: "unexpected `)`", Span: p.tok.span}
	case tokEOF:
		return nil, &SyntaxError{Message: "unexpected end of input", Span: p.tok.span}
	}

	node := &Node{Text: p.tok.text, Span: p.tok.span}
	switch p.tok.kind {
	case tokString:
		node.Kind = KindString
	case tokAtom:
		kind, err := classifyAtom(p.tok.text)
		if err != nil {
			return nil, &SyntaxError{Message: err.Error(), Span: p.tok.span}
		}

		node.Kind = kind
	}

	return node, p.advance()
}

func (p *parser) parseList() (*Node, error) {
	start := p.tok.span
	if err := p.advance(); err != nil {
		return nil, err
	}

	list := &Node{Kind: KindList}
	for p.tok.kind != tokRParen {
		if p.tok.kind == tokEOF {
			return nil, &SyntaxError{Message: "unclosed `(`", Span: start}
		}

		item, err := p.parseDatum()
		if err != nil {
			return nil, err
		}

		list.Items = append(list.Items, item)
	}

	list.Span = report.NewSpanOver(start, p.tok.span)
	return list, p.advance()
}

// classifyAtom decides whether an atom is a number or a symbol.  Integers
// that do not fit in 64 bits are rejected.
func classifyAtom(text string) (Kind, error) {
	if _, err := strconv.ParseUint(text, 0, 64); err == nil {
		return KindInt, nil
	} else if errors.Is(err, strconv.ErrRange) {
		return KindInt, errors.Errorf("integer literal out of range: `%s`", text)
	}

	if strings.ContainsAny(text, ".eE") {
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			return KindFloat, nil
		}
	}

	return KindSymbol, nil
}
