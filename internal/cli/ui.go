package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	liberrors "github.com/matzehuels/libman/pkg/errors"
	"github.com/matzehuels/libman/pkg/manifest"
)

// stdout receives all user-facing output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for library ids.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCode    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(22)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printCodedError prints err with its LIB code highlighted.
func printCodedError(prefix string, err *liberrors.Error) {
	line := styleCode.Render(string(err.Code)) + " " + err.Message
	if prefix != "" {
		line = StyleHighlight.Render(prefix) + ": " + line
	}
	printError("%s", line)
}

// =============================================================================
// Result Output
// =============================================================================

// resultSummary counts restore outcomes.
type resultSummary struct {
	installed, upToDate, failed, cancelled int
}

func (s *resultSummary) add(o resultSummary) {
	s.installed += o.installed
	s.upToDate += o.upToDate
	s.failed += o.failed
	s.cancelled += o.cancelled
}

func (s resultSummary) String() string {
	var parts []string
	if s.installed > 0 {
		parts = append(parts, fmt.Sprintf("%d restored", s.installed))
	}
	if s.upToDate > 0 {
		parts = append(parts, fmt.Sprintf("%d up to date", s.upToDate))
	}
	if s.failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.failed))
	}
	if s.cancelled > 0 {
		parts = append(parts, fmt.Sprintf("%d cancelled", s.cancelled))
	}
	if len(parts) == 0 {
		return "no libraries"
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

// printResults renders one line per entry, plus its errors, and tallies
// the outcomes. verb is the phrase shown before the destination of a
// success, e.g. "restored to".
func printResults(m *manifest.Manifest, results []manifest.Result, verb string) resultSummary {
	var sum resultSummary
	for _, r := range results {
		id := m.LibraryID(r.Value)
		if id == "" {
			id = "(unnamed)"
		}
		switch {
		case r.Cancelled:
			sum.cancelled++
			printWarning("%s cancelled", id)
		case !r.Success():
			sum.failed++
			for _, err := range r.Errors {
				printCodedError(id, err)
			}
		case r.UpToDate:
			sum.upToDate++
			printInfo("%s is up to date", StyleHighlight.Render(id))
		default:
			sum.installed++
			dest := r.Value.DestinationPath
			if dest == "" {
				printSuccess("%s %s", StyleHighlight.Render(id), strings.Fields(verb)[0])
			} else {
				printSuccess("%s %s %s", StyleHighlight.Render(id), verb, StyleValue.Render(dest))
			}
		}
	}
	return sum
}

// errFailed is returned by commands whose results were already printed.
type errFailed struct{ summary resultSummary }

func (e errFailed) Error() string {
	if e.summary.failed == 0 && e.summary.cancelled > 0 {
		return "operation cancelled"
	}
	if e.summary.failed == 1 {
		return "1 library failed"
	}
	return fmt.Sprintf("%d libraries failed", e.summary.failed)
}
