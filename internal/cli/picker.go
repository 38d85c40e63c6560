package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/manifest"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// errAmbiguous is returned when several entries match and no terminal is
// available to ask which one was meant.
var errAmbiguous = errors.New("more than one library matches; pass --provider or the full library id")

// errPickAborted is returned when the user quits the picker.
var errPickAborted = errors.New("no library selected")

// =============================================================================
// LibraryPickerModel - Interactive entry selection
// =============================================================================

// pickerRow is one manifest entry as the picker shows it.
type pickerRow struct {
	ID          string
	Provider    string
	Destination string
}

// LibraryPickerModel is the bubbletea model for choosing one of several
// manifest entries.
type LibraryPickerModel struct {
	Title    string
	Rows     []pickerRow
	Cursor   int
	Selected int
}

// NewLibraryPickerModel creates a picker over rows with nothing selected.
func NewLibraryPickerModel(title string, rows []pickerRow) LibraryPickerModel {
	return LibraryPickerModel{Title: title, Rows: rows, Selected: -1}
}

func (m LibraryPickerModel) Init() tea.Cmd {
	return nil
}

func (m LibraryPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Rows)-1 {
			m.Cursor++
		}
	case "enter":
		m.Selected = m.Cursor
		return m, tea.Quit
	}
	return m, nil
}

func (m LibraryPickerModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, len(m.Rows))
	for i, r := range m.Rows {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, r.ID, r.Provider, r.Destination}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Library", "Provider", "Destination").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// pickLibrary narrows candidates to one entry, asking interactively when
// stdin and stderr are terminals.
func pickLibrary(ctx context.Context, m *manifest.Manifest, term string, candidates []library.InstallationState) (library.InstallationState, error) {
	switch len(candidates) {
	case 0:
		return library.InstallationState{}, fmt.Errorf("library %q is not in %s", term, manifest.FileName)
	case 1:
		return candidates[0], nil
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stderr) {
		return library.InstallationState{}, errAmbiguous
	}

	rows := make([]pickerRow, len(candidates))
	for i, c := range candidates {
		rows[i] = pickerRow{ID: m.LibraryID(c), Provider: c.ProviderID, Destination: c.DestinationPath}
	}
	model := NewLibraryPickerModel(fmt.Sprintf("Several libraries match %q", term), rows)
	final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return library.InstallationState{}, err
	}
	picked := final.(LibraryPickerModel)
	if picked.Selected < 0 {
		return library.InstallationState{}, errPickAborted
	}
	return candidates[picked.Selected], nil
}
