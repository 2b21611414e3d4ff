package table

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core/pagination"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// Glyph returns the terminal/HTML symbol of a sort indicator.
func (i Indicator) Glyph() string {
	switch i {
	case IndicatorUnsorted:
		return "↕"
	case IndicatorAscending:
		return "↑"
	case IndicatorDescending:
		return "↓"
	}
	return ""
}

// WriteText writes the view as a bordered terminal table followed by the pagination strip, if any.
func WriteText(w io.Writer, v View) error {
	var b strings.Builder

	if v.Loading {
		b.WriteString(mutedStyle.Render(strings.Repeat("░", 24)))
		b.WriteString("\n")
		for i := 0; i < v.SkeletonRows; i++ {
			b.WriteString(mutedStyle.Render(strings.Repeat("░", 16)))
			b.WriteString("\n")
		}
	} else {
		headers := make([]string, 0, len(v.Headers))
		for _, hc := range v.Headers {
			h := hc.Header
			if g := hc.Indicator.Glyph(); g != "" {
				h += " " + g
			}
			headers = append(headers, h)
		}

		t := lgtable.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == lgtable.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers(headers...)

		if v.Empty {
			// no column spans in terminal tables: the message goes in the first cell
			row := make([]string, len(v.Headers))
			if len(row) > 0 {
				row[0] = v.EmptyMessage
			}
			t.Row(row...)
		}
		for _, r := range v.Rows {
			cells := make([]string, 0, len(r.Cells))
			for _, c := range r.Cells {
				cells = append(cells, cellText(c.Content))
			}
			t.Row(cells...)
		}
		b.WriteString(t.Render())
		b.WriteString("\n")

		if v.Pagination != nil {
			b.WriteString(paginationText(v.Pagination))
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "table.WriteText")
	}
	return nil
}

func cellText(content interface{}) string {
	if h, ok := content.(template.HTML); ok {
		return string(h)
	}
	return stringify(content)
}

func paginationText(pv *pagination.View) string {
	parts := make([]string, 0, len(pv.Items)+2)
	if pv.PrevDisabled {
		parts = append(parts, mutedStyle.Render("<"))
	} else {
		parts = append(parts, "<")
	}
	for _, it := range pv.Items {
		switch {
		case it.IsEllipsis():
			parts = append(parts, "...")
		case it.Current:
			parts = append(parts, fmt.Sprintf("[%d]", it.Page))
		default:
			parts = append(parts, fmt.Sprint(it.Page))
		}
	}
	if pv.NextDisabled {
		parts = append(parts, mutedStyle.Render(">"))
	} else {
		parts = append(parts, ">")
	}
	return pv.Summary + "  " + strings.Join(parts, " ")
}
