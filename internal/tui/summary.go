package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/tzwi/fcncmva/internal/dataset"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Summary renders a resolution as plain sections, one line per entry
// followed by its matched directories.
func Summary(res dataset.Result, note string) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("⬡ FCNC dataset resolution"))
	b.WriteString("\n")
	if note != "" {
		b.WriteString(mutedStyle.Render(note))
		b.WriteString("\n")
	}
	if res.Unfiltered {
		b.WriteString(warnStyle.Render("signal samples taken without channel filtering"))
		b.WriteString("\n")
	}
	writeEntries(&b, viewSignal.title(), res.Signal)
	writeEntries(&b, viewBackground.title(), res.Background)
	if len(res.Skipped) > 0 {
		b.WriteString(section(viewSkipped.title(), len(res.Skipped)))
		for _, s := range res.Skipped {
			fmt.Fprintf(&b, "  %-7s %s -> %s\n", s.Mode, s.Process, s.DatasetGroup)
		}
	}
	if res.Duplicates > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d repeated dataset names dropped", res.Duplicates)))
		b.WriteString("\n")
	}
	return b.String()
}

func writeEntries(b *strings.Builder, title string, entries []dataset.Entry) {
	b.WriteString(section(title, len(entries)))
	for _, e := range entries {
		row := entryRow(e)
		fmt.Fprintf(b, "  %-7s %-20s %-10s %s (dirs=%s weight=%s)\n", row[0], row[1], row[2], e.DatasetName, row[4], row[5])
		for _, p := range e.Paths {
			fmt.Fprintf(b, "      %s\n", p)
		}
	}
}

func section(title string, n int) string {
	return lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s: %d", title, n)) + "\n"
}
