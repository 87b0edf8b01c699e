package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"mfcexport/pkg/models"
)

// Summary describes a finished export
type Summary struct {
	Username string
	Pages    int
	Figures  int
	Records  int
	Skipped  []int
	Path     string
	Duration time.Duration
}

// NewTable returns a rounded table writer mirrored to w
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RenderSummary prints the export summary table
func RenderSummary(w io.Writer, s Summary) {
	t := NewTable(w)
	t.SetTitle("Export summary")
	t.AppendRows([]table.Row{
		{"Username", s.Username},
		{"Listing pages", s.Pages},
		{"Figures listed", s.Figures},
		{"Rows written", s.Records},
	})
	if len(s.Skipped) > 0 {
		ids := make([]string, 0, len(s.Skipped))
		for _, id := range s.Skipped {
			ids = append(ids, fmt.Sprint(id))
		}
		t.AppendRow(table.Row{"Skipped ids", strings.Join(ids, ", ")})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"File", s.Path})
	t.AppendRow(table.Row{"Elapsed", FormatDuration(s.Duration)})
	t.Render()
}

// RenderPreview prints the first limit records as a table.
// A limit of zero or less prints every record.
func RenderPreview(w io.Writer, records []models.FigureRecord, limit int) {
	t := NewTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Price (JPY)", "Release Date", "Owned"})

	shown := records
	if limit > 0 && len(records) > limit {
		shown = records[:limit]
	}
	for _, r := range shown {
		t.AppendRow(table.Row{r.ID, r.Name, r.Price, r.ReleaseDate, r.OwnedCount})
	}
	if len(shown) < len(records) {
		t.AppendFooter(table.Row{"", fmt.Sprintf("… %d more", len(records)-len(shown))})
	}
	t.Render()
}
