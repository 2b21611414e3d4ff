package table

import (
	"html/template"
	"io"

	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core/pagination"
)

// Links builds the hrefs of the interactive parts of an HTML table.
// A nil func leaves the matching elements without links.
type Links struct {
	Sort func(next SortState) string
	Page func(page int) string
	Row  func(rec Record) string
}

type (
	htmlHeader struct {
		HeaderCell
		Href  string
		Glyph string
	}

	htmlRow struct {
		Href  string
		Cells []Cell
	}

	htmlPageItem struct {
		pagination.Item
		Href string
	}

	htmlPagination struct {
		*pagination.View
		PrevHref string
		NextHref string
		Items    []htmlPageItem
	}

	htmlData struct {
		View       View
		Headers    []htmlHeader
		Rows       []htmlRow
		Skeleton   []int
		Pagination *htmlPagination
	}
)

var htmlTmpl = template.Must(template.New("table").Funcs(template.FuncMap{
	"cell": cellHTML,
}).Parse(tableTemplate))

// WriteHTML writes the view as an HTML fragment.
func WriteHTML(w io.Writer, v View, links Links) error {
	data := htmlData{View: v}

	if v.Loading {
		data.Skeleton = make([]int, v.SkeletonRows)
	}
	for _, hc := range v.Headers {
		h := htmlHeader{HeaderCell: hc, Glyph: hc.Indicator.Glyph()}
		if hc.Sortable && links.Sort != nil {
			h.Href = links.Sort(hc.NextSort)
		}
		data.Headers = append(data.Headers, h)
	}
	for _, row := range v.Rows {
		r := htmlRow{Cells: row.Cells}
		if v.Clickable && links.Row != nil {
			r.Href = links.Row(row.Record)
		}
		data.Rows = append(data.Rows, r)
	}
	if pv := v.Pagination; pv != nil {
		hp := &htmlPagination{View: pv}
		if links.Page != nil {
			if !pv.PrevDisabled {
				hp.PrevHref = links.Page(pv.PrevPage)
			}
			if !pv.NextDisabled {
				hp.NextHref = links.Page(pv.NextPage)
			}
		}
		for _, it := range pv.Items {
			item := htmlPageItem{Item: it}
			if !it.IsEllipsis() && links.Page != nil {
				item.Href = links.Page(it.Page)
			}
			hp.Items = append(hp.Items, item)
		}
		data.Pagination = hp
	}

	if err := htmlTmpl.Execute(w, data); err != nil {
		return errors.Wrap(err, "table.WriteHTML")
	}
	return nil
}

// cellHTML keeps template.HTML contents as is and stringifies everything else (escaped by the template).
func cellHTML(content interface{}) interface{} {
	if h, ok := content.(template.HTML); ok {
		return h
	}
	return stringify(content)
}

const tableTemplate = `<div class="record-table">
{{- if .View.Loading}}
<div class="record-table-skeleton" aria-busy="true">
<div class="skeleton-bar skeleton-header"></div>
{{- range .Skeleton}}
<div class="skeleton-bar"></div>
{{- end}}
</div>
{{- else}}
<table>
<thead>
<tr>
{{- range .Headers}}
<th{{if .Width}} style="width: {{.Width}}"{{end}}{{if .Sortable}} class="sortable"{{end}}>
{{- if .Href}}<a href="{{.Href}}">{{.Header}}{{if .Glyph}} <span class="sort-indicator">{{.Glyph}}</span>{{end}}</a>
{{- else}}{{.Header}}{{if .Glyph}} <span class="sort-indicator">{{.Glyph}}</span>{{end}}{{end -}}
</th>
{{- end}}
</tr>
</thead>
<tbody>
{{- if .View.Empty}}
<tr class="empty"><td colspan="{{.View.ColSpan}}">{{.View.EmptyMessage}}</td></tr>
{{- else}}
{{- range .Rows}}
<tr{{if .Href}} class="clickable" data-href="{{.Href}}"{{end}}>
{{- range .Cells}}<td>{{cell .Content}}</td>{{end -}}
</tr>
{{- end}}
{{- end}}
</tbody>
</table>
{{- with .Pagination}}
<nav class="pagination">
<p class="pagination-summary">{{.Summary}}</p>
<ul>
<li>{{if .PrevHref}}<a href="{{.PrevHref}}" rel="prev">Previous</a>{{else}}<span class="disabled">Previous</span>{{end}}</li>
{{- range .Items}}
{{- if .IsEllipsis}}
<li class="ellipsis"><span>...</span></li>
{{- else if .Current}}
<li class="current"><span aria-current="page">{{.Page}}</span></li>
{{- else}}
<li>{{if .Href}}<a href="{{.Href}}">{{.Page}}</a>{{else}}<span>{{.Page}}</span>{{end}}</li>
{{- end}}
{{- end}}
<li>{{if .NextHref}}<a href="{{.NextHref}}" rel="next">Next</a>{{else}}<span class="disabled">Next</span>{{end}}</li>
</ul>
</nav>
{{- end}}
{{- end}}
</div>
`
