// Package suite runs compiler test cases written in Markdown.  Each case is a
// `Test:` heading followed by one or more `fst` fences holding the modules of
// a project and any number of assertion fences.
package suite

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the language of a fence holding a module tree.  The fence may
// name the import path of the module: eg. "```fst geo".  It defaults to
// `main`.
const InputFence = "fst"

// AssertionType represents the type of an assertion fence.
type AssertionType string

const (
	// AssertionMIR compares the MIR of a module or of one of its functions.
	// The fence names the module (default `main`) or a function link name:
	// eg. "```mir main.f".
	AssertionMIR AssertionType = "mir"

	// AssertionDiagnostics compares every diagnostic of the project, one per
	// line.  An empty fence asserts that there are none.
	AssertionDiagnostics AssertionType = "diagnostics"
)

// Assertion is a single assertion of a test case.
type Assertion struct {
	Type AssertionType

	// Target is the module or function the assertion is about.
	Target string

	Content string

	// Line is the line of the fence in the Markdown document.
	Line int
}

// TestCase is a complete test case extracted from Markdown.
type TestCase struct {
	Name string

	// Modules maps import paths to module trees.
	Modules map[string]string

	Assertions []Assertion
}

// ExtractTestCases parses a Markdown document and extracts all test cases.
func ExtractTestCases(markdownContent string) ([]*TestCase, error) {
	source := []byte(markdownContent)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var testCases []*TestCase
	var current *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if !strings.HasPrefix(headingText, "Test: ") {
				return ast.WalkContinue, nil
			}

			if current != nil {
				if err := validateTestCase(current); err != nil {
					return ast.WalkStop, err
				}

				testCases = append(testCases, current)
			}

			current = &TestCase{
				Name:    strings.TrimPrefix(headingText, "Test: "),
				Modules: make(map[string]string),
			}
		case *ast.FencedCodeBlock:
			info := fenceInfo(n, source)
			lineNum := getLineNumber(n, source)
			if len(info) == 0 {
				return ast.WalkContinue, nil
			}

			if current == nil {
				return ast.WalkStop, errors.Errorf("line %d: %s fence found outside of test case", lineNum, info[0])
			}

			target := ""
			if len(info) > 1 {
				target = info[1]
			}

			content := strings.TrimRight(extractCodeBlockContent(n, source), "\n")

			switch info[0] {
			case InputFence:
				if target == "" {
					target = "main"
				}

				if _, ok := current.Modules[target]; ok {
					return ast.WalkStop, errors.Errorf("line %d: module `%s` defined twice in test '%s'", lineNum, target, current.Name)
				}

				current.Modules[target] = content
			case string(AssertionMIR), string(AssertionDiagnostics):
				current.Assertions = append(current.Assertions, Assertion{
					Type:    AssertionType(info[0]),
					Target:  target,
					Content: content,
					Line:    lineNum,
				})
			default:
				return ast.WalkStop, errors.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, info[0], current.Name)
			}
		}

		return ast.WalkContinue, nil
	})

	if err != nil {
		return nil, errors.Wrap(err, "error walking markdown AST")
	}

	if current != nil {
		if err := validateTestCase(current); err != nil {
			return nil, err
		}

		testCases = append(testCases, current)
	}

	return testCases, nil
}

// fenceInfo returns the words of a fence's info string.
func fenceInfo(codeBlock *ast.FencedCodeBlock, source []byte) []string {
	if codeBlock.Info == nil {
		return nil
	}

	return strings.Fields(string(codeBlock.Info.Segment.Value(source)))
}

// extractTextFromNode extracts plain text content from a markdown node.
func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if text, ok := n.(*ast.Text); ok {
				buf.Write(text.Segment.Value(source))
			}
		}

		return ast.WalkContinue, nil
	})

	return buf.String()
}

// extractCodeBlockContent extracts the content from a fenced code block.
func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer

	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}

	return buf.String()
}

// validateTestCase ensures a test case has both input and at least one
// assertion.
func validateTestCase(tc *TestCase) error {
	if len(tc.Modules) == 0 {
		return errors.Errorf("test '%s' has no input fence", tc.Name)
	}

	if len(tc.Assertions) == 0 {
		return errors.Errorf("test '%s' has no assertion fences", tc.Name)
	}

	return nil
}

// getLineNumber calculates the line number of a given AST node.
func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}

	startPos := node.Lines().At(0).Start
	return bytes.Count(source[:startPos], []byte("\n"))
}
