package sexpr

import (
	"testing"

	"github.com/nalgeon/be"

	"github.com/redgush/flycatcher/report"
)

func TestParse(t *testing.T) {
	nodes, err := Parse("(module main ; comment\n  (static x int64 -12)\n  [f 1.5 \"a\\nb\"])")
	be.Err(t, err, nil)
	be.Equal(t, len(nodes), 1)

	root := nodes[0]
	be.Equal(t, root.Head(), "module")
	be.Equal(t, len(root.Args()), 3)

	static := root.Items[2]
	be.Equal(t, static.Items[3].Kind, KindSymbol)
	be.Equal(t, static.Items[3].Text, "-12")

	f := root.Items[3]
	be.Equal(t, f.Items[1].Kind, KindFloat)
	be.Equal(t, f.Items[2].Kind, KindString)
	be.Equal(t, f.Items[2].Text, "a\nb")

	be.Equal(t, root.String(), `(module main (static x int64 -12) (f 1.5 "a\nb"))`)
}

func TestSpans(t *testing.T) {
	node, err := ParseOne("(a\n  (bc 42))")
	be.Err(t, err, nil)

	be.Equal(t, *node.Span, report.TextSpan{StartLine: 0, StartCol: 0, EndLine: 1, EndCol: 9})

	inner := node.Items[1]
	be.Equal(t, *inner.Span, report.TextSpan{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 8})
	be.Equal(t, *inner.Items[0].Span, report.TextSpan{StartLine: 1, StartCol: 3, EndLine: 1, EndCol: 4})
	be.Equal(t, inner.Items[1].Kind, KindInt)
}

func TestSyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"(a":      "unclosed `(`",
		")":       "unexpected `)`",
		"(a \"b)": "unterminated string",
		"(a) (b)": "expected exactly one datum but got 2",
		"":        "expected exactly one datum but got 0",
	}

	for src, msg := range cases {
		_, err := ParseOne(src)

		serr, ok := err.(*SyntaxError)
		be.True(t, ok)
		be.Equal(t, serr.Message, msg)
	}
}

func TestIntegerOutOfRange(t *testing.T) {
	_, err := ParseOne("(static x uint64\n  99999999999999999999999)")

	serr, ok := err.(*SyntaxError)
	be.True(t, ok)
	be.Equal(t, serr.Message, "integer literal out of range: `99999999999999999999999`")
	be.Equal(t, serr.Span.StartLine, 1)

	node, err := ParseOne("18446744073709551615")
	be.Err(t, err, nil)
	be.Equal(t, node.Kind, KindInt)
}
