package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"
	"github.com/pterm/pterm"

	"github.com/redgush/flycatcher/report"
)

func TestParseLogLevel(t *testing.T) {
	be.Equal(t, ParseLogLevel("silent"), LogLevelSilent)
	be.Equal(t, ParseLogLevel("error"), LogLevelError)
	be.Equal(t, ParseLogLevel("warn"), LogLevelWarning)
	be.Equal(t, ParseLogLevel("verbose"), LogLevelVerbose)
	be.Equal(t, ParseLogLevel("loud"), LogLevelVerbose)
}

func TestFormatSelection(t *testing.T) {
	lines := []string{"    (func g () void (block (f 42))))"}
	span := &report.TextSpan{StartLine: 2, StartCol: 27, EndLine: 2, EndCol: 32}

	got := pterm.RemoveColorFromString(formatSelection(lines, span))
	want := "\n" +
		"3 | (func g () void (block (f 42))))\n" +
		"  | " + strings.Repeat(" ", 23) + "^^^^^^\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatMultilineSelection(t *testing.T) {
	lines := []string{
		"  (while (< i n)",
		"    (block (set i 1)))",
	}
	span := &report.TextSpan{StartLine: 8, StartCol: 2, EndLine: 9, EndCol: 21}

	got := pterm.RemoveColorFromString(formatSelection(lines, span))
	want := "\n" +
		"9  | (while (< i n)\n" +
		"   | " + strings.Repeat("^", 14) + "\n" +
		"10 |   (block (set i 1)))\n" +
		"   | " + strings.Repeat("^", 20) + "\n"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatSummary(t *testing.T) {
	be.Equal(t, pterm.RemoveColorFromString(formatSummary(true, 0, 1)), "\nAll done! (0 errors, 1 warning)\n")
	be.Equal(t, pterm.RemoveColorFromString(formatSummary(false, 3, 0)), "\nOh no! (3 errors, 0 warnings)\n")
}

func TestWarningsHeldUntilFinished(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.fst")
	be.Err(t, os.WriteFile(path, []byte("(module main\n  (func f () void (block)))\n"), 0o644), nil)

	buf := &bytes.Buffer{}
	l := newLogger(buf, LogLevelWarning)

	warning := &report.Diagnostic{
		Severity: report.SevWarning,
		Code:     report.CodeUnreachableCode,
		Message:  "unreachable code",
		Span:     &report.TextSpan{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 5},
		AbsPath:  path,
		ReprPath: "src/main.fst",
	}

	l.handleDiagnostic(warning)
	be.Equal(t, buf.Len(), 0)

	l.handleDiagnostic(&report.Diagnostic{
		Severity: report.SevError,
		Code:     report.CodeTypeMismatch,
		Message:  "type mismatch: expected `string` but got `int64`",
		ReprPath: "src/main.fst",
	})
	be.Equal(t, l.errorCount, 1)
	be.True(t, strings.Contains(buf.String(), "src/main.fst: error[FC0020]: type mismatch"))

	buf.Reset()
	l.flushWarnings()

	out := pterm.RemoveColorFromString(buf.String())
	be.True(t, strings.Contains(out, "src/main.fst:2:3: warning[FC0030]: unreachable code"))
	be.True(t, strings.Contains(out, "2 | (func f () void (block)))"))
	be.True(t, strings.Contains(out, "  | ^^^^"))
}

func TestSilentLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	l := newLogger(buf, LogLevelSilent)

	l.handleDiagnostic(&report.Diagnostic{Severity: report.SevError, Code: report.CodeUndefined, Message: "undefined symbol: `x`"})
	l.flushWarnings()

	be.Equal(t, l.errorCount, 1)
	be.Equal(t, buf.Len(), 0)
}
