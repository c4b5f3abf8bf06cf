package logging

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/redgush/flycatcher/report"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

func disableColor() {
	pterm.DisableColor()
}

// PrintErrorMessage prints a standard Go error to the console.
func PrintErrorMessage(tag string, err error) {
	fmt.Fprintln(logger.out, ErrorStyleBG.Sprint(tag)+ErrorColorFG.Sprint(" "+err.Error()))
}

// PrintWarningMessage prints a warning message to the console.
func PrintWarningMessage(tag, msg string) {
	fmt.Fprintln(logger.out, WarnStyleBG.Sprint(tag)+WarnColorFG.Sprint(" "+msg))
}

// PrintInfoMessage prints an informational message to the console.
func PrintInfoMessage(tag, msg string) {
	fmt.Fprintln(logger.out, InfoStyleBG.Sprint(tag)+InfoColorFG.Sprint(" "+msg))
}

// -----------------------------------------------------------------------------

// displayDiagnostic displays a compilation error or warning.
func (l *Logger) displayDiagnostic(d *report.Diagnostic) {
	fmt.Fprint(l.out, formatBanner(d, pterm.GetTerminalWidth()))
	fmt.Fprintln(l.out, d.String())

	if d.Span != nil {
		if lines, err := readSpanLines(d.AbsPath, d.Span); err == nil {
			fmt.Fprint(l.out, formatSelection(lines, d.Span))
		}
	}
}

// formatBanner formats the banner on top of a diagnostic: its severity, its
// code and the name of the file it occurred in.
func formatBanner(d *report.Diagnostic, termWidth int) string {
	var tag string
	if d.Severity == report.SevError {
		tag = ErrorStyleBG.Sprint("Error " + d.Code)
	} else {
		tag = WarnStyleBG.Sprint("Warning " + d.Code)
	}

	fileName := filepath.Base(d.ReprPath)

	bannerLen := termWidth / 2
	if bannerLen > 50 {
		bannerLen = 50
	}

	dashCount := bannerLen - len(fileName) - len(pterm.RemoveColorFromString(tag)) - 1
	if dashCount < 2 {
		dashCount = 2
	}

	return "\n-- " + tag + " " + strings.Repeat("-", dashCount) + " " + InfoColorFG.Sprint(fileName) + "\n"
}

// readSpanLines reads the source lines covered by a span.
func readSpanLines(absPath string, span *report.TextSpan) ([]string, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for ln := 0; sc.Scan(); ln++ {
		if span.StartLine <= ln && ln <= span.EndLine {
			lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
		}
	}

	return lines, sc.Err()
}

// formatSelection formats the selected source lines with line numbers and
// caret underlining.  lines are the lines covered by span, starting with the
// span's first line.
func formatSelection(lines []string, span *report.TextSpan) string {
	if len(lines) == 0 {
		return ""
	}

	minIndent := math.MaxInt
	for _, line := range lines {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if indent < minIndent {
			minIndent = indent
		}
	}

	maxLineNumLen := len(strconv.Itoa(span.EndLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	sb := &strings.Builder{}
	sb.WriteString("\n")

	for i, line := range lines {
		sb.WriteString(InfoColorFG.Sprintf(lineNumFmtStr, i+span.StartLine+1))
		sb.WriteString(line[minIndent:])
		sb.WriteString("\n")

		start := 0
		if i == 0 {
			start = span.StartCol - minIndent
		}

		// spans are inclusive of their end column
		end := len(line) - minIndent
		if i == len(lines)-1 && span.EndCol+1-minIndent < end {
			end = span.EndCol + 1 - minIndent
		}

		sb.WriteString(strings.Repeat(" ", maxLineNumLen) + " | ")
		if end > start && start >= 0 {
			sb.WriteString(strings.Repeat(" ", start))
			sb.WriteString(ErrorColorFG.Sprint(strings.Repeat("^", end-start)))
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

const fatalErrorPostlude = `
This is a bug in the compiler.
Please open an issue on GitHub: github.com/redgush/flycatcher`

func (l *Logger) displayFatalError(ice *report.InternalError) {
	fmt.Fprint(l.out, "\n\n")
	fmt.Fprintln(l.out, ErrorStyleBG.Sprint("Fatal Error")+" "+ErrorColorFG.Sprint(ice.Error()))

	if l.LogLevel == LogLevelVerbose {
		fmt.Fprintln(l.out, string(ice.Stack))
	}

	fmt.Fprintln(l.out, InfoColorFG.Sprint(fatalErrorPostlude))
}

// -----------------------------------------------------------------------------

// displayCompileHeader displays the compiler information before compilation
// starts.
func (l *Logger) displayCompileHeader(version, target string) {
	fmt.Fprintln(l.out, "flyc "+InfoColorFG.Sprint("v"+version)+" -- target: "+InfoColorFG.Sprint(target))
}

// phaseSpinner is the spinner of the current phase when the output is
// interactive.
var phaseSpinner *pterm.SpinnerPrinter
var currentPhase string
var phaseStartTime time.Time

const maxPhaseLength = len("Analyzing")

func phaseText(phase string) string {
	pad := maxPhaseLength - len(phase) + 2
	if pad < 1 {
		pad = 1
	}

	return phase + "..." + strings.Repeat(" ", pad)
}

// beginPhase displays the beginning of a compilation phase.  It must be
// called with the lock held.
func (l *Logger) beginPhase(phase string) {
	currentPhase = phase
	phaseStartTime = time.Now()

	if !l.interactive {
		return
	}

	phaseSpinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))

	phaseSpinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}

	phaseSpinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	phaseSpinner, _ = phaseSpinner.Start(phaseText(phase))
}

// endPhase displays the end of the current compilation phase.  It must be
// called with the lock held.
func (l *Logger) endPhase(success bool) {
	if currentPhase == "" {
		return
	}

	elapsed := fmt.Sprintf("(%.3fs)", time.Since(phaseStartTime).Seconds())

	switch {
	case phaseSpinner != nil && success:
		phaseSpinner.Success(phaseText(currentPhase), elapsed)
	case phaseSpinner != nil:
		phaseSpinner.Fail(phaseText(currentPhase))
	case l.LogLevel == LogLevelVerbose && success:
		fmt.Fprintln(l.out, phaseText(currentPhase)+"Done "+elapsed)
	case l.LogLevel == LogLevelVerbose:
		fmt.Fprintln(l.out, phaseText(currentPhase)+"Fail")
	}

	phaseSpinner = nil
	currentPhase = ""
}

// displayCompilationFinished displays a compilation finished message.
func (l *Logger) displayCompilationFinished(success bool, errorCount, warningCount int) {
	fmt.Fprint(l.out, formatSummary(success, errorCount, warningCount))
}

func formatSummary(success bool, errorCount, warningCount int) string {
	sb := &strings.Builder{}
	sb.WriteString("\n")

	if success {
		sb.WriteString(SuccessColorFG.Sprint("All done! "))
	} else {
		sb.WriteString(ErrorColorFG.Sprint("Oh no! "))
	}

	sb.WriteString("(")

	switch errorCount {
	case 0:
		sb.WriteString(SuccessColorFG.Sprint(0) + " errors, ")
	case 1:
		sb.WriteString(ErrorColorFG.Sprint(1) + " error, ")
	default:
		sb.WriteString(ErrorColorFG.Sprint(errorCount) + " errors, ")
	}

	switch warningCount {
	case 0:
		sb.WriteString(SuccessColorFG.Sprint(0) + " warnings)\n")
	case 1:
		sb.WriteString(WarnColorFG.Sprint(1) + " warning)\n")
	default:
		sb.WriteString(WarnColorFG.Sprint(warningCount) + " warnings)\n")
	}

	return sb.String()
}
