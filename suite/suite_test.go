package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"
)

func TestSuites(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	be.Err(t, err, nil)
	be.True(t, len(paths) > 0)

	for _, path := range paths {
		buff, err := os.ReadFile(path)
		be.Err(t, err, nil)

		testCases, err := ExtractTestCases(string(buff))
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}

		for _, tc := range testCases {
			t.Run(filepath.Base(path)+"/"+tc.Name, func(t *testing.T) {
				result, err := Run(tc)
				be.Err(t, err, nil)

				for _, assertion := range tc.Assertions {
					got, err := result.Actual(assertion)
					if err != nil {
						t.Errorf("%s:%d: %v", path, assertion.Line, err)
						continue
					}

					if diff := cmp.Diff(assertion.Content, got); diff != "" {
						t.Errorf("%s:%d: %s mismatch (-want +got):\n%s", path, assertion.Line, assertion.Type, diff)
					}
				}
			})
		}
	}
}

func TestExtractTestCases(t *testing.T) {
	doc := "# Title\n\n" +
		"Some prose.\n\n" +
		"## Test: two modules\n\n" +
		"```fst geo\n(module geo)\n```\n\n" +
		"```fst\n(module main (import \"geo\"))\n```\n\n" +
		"```diagnostics\n```\n\n" +
		"## Test: function mir\n\n" +
		"```fst\n(module main)\n```\n\n" +
		"```mir main.f\nfunc @main.f() void {\n}\n```\n"

	testCases, err := ExtractTestCases(doc)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	first := testCases[0]
	be.Equal(t, first.Name, "two modules")
	be.Equal(t, first.Modules, map[string]string{
		"geo":  "(module geo)",
		"main": "(module main (import \"geo\"))",
	})
	be.Equal(t, len(first.Assertions), 1)
	be.Equal(t, first.Assertions[0].Type, AssertionDiagnostics)
	be.Equal(t, first.Assertions[0].Content, "")

	second := testCases[1]
	be.Equal(t, second.Assertions[0].Type, AssertionMIR)
	be.Equal(t, second.Assertions[0].Target, "main.f")
	be.Equal(t, second.Assertions[0].Content, "func @main.f() void {\n}")
}

func TestExtractErrors(t *testing.T) {
	cases := map[string]string{
		"outside test":   "```fst\n(module main)\n```\n",
		"unknown fence":  "## Test: x\n\n```fst\n(module main)\n```\n\n```wasm\n```\n",
		"no input":       "## Test: x\n\n```diagnostics\n```\n",
		"no assertion":   "## Test: x\n\n```fst\n(module main)\n```\n",
		"duplicate main": "## Test: x\n\n```fst\n(module main)\n```\n\n```fst\n(module main)\n```\n\n```diagnostics\n```\n",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ExtractTestCases(doc)
			be.True(t, err != nil)
		})
	}
}
