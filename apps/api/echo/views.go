package echoapi

import (
	"html/template"
	"io"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	appfs "github.com/AI-Fit-GMS/gms/fs"
)

const dashboardTemplatesDir = "templates/dashboard"

var dashboardPages = []string{"list", "login"}

// views renders the dashboard pages: each page defines "content" inside the shared "layout".
type views struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*views)(nil)

func mustParseViews() *views {
	v := &views{pages: make(map[string]*template.Template, len(dashboardPages))}
	layout := path.Join(dashboardTemplatesDir, "layout.gohtml")
	for _, name := range dashboardPages {
		v.pages[name] = template.Must(template.ParseFS(appfs.FS, layout, path.Join(dashboardTemplatesDir, name+".gohtml")))
	}
	return v
}

func (v *views) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := v.pages[name]
	if !ok {
		return errors.Errorf("views.Render: unknown page %q", name)
	}
	return errors.Wrapf(tmpl.ExecuteTemplate(w, "layout", data), "views.Render(%s)", name)
}
