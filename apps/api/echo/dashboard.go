package echoapi

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/pagination"
	"github.com/AI-Fit-GMS/gms/core/table"
	"github.com/AI-Fit-GMS/gms/core/trainer"
	"github.com/AI-Fit-GMS/gms/core/user"
)

const (
	sortParam  = "sort"
	dirParam   = "dir"
	dateLayout = "2006-01-02"
)

type (
	navItem struct {
		Title  string
		Href   string
		Active bool
	}

	statItem struct {
		Label string
		Value int
	}

	pageData struct {
		AppName string
		Title   string
		User    *user.User
		Nav     []navItem

		// list pages
		Table  template.HTML
		Search string
		Stats  []statItem

		// login page
		Error string
		Email string
		Next  string
	}

	// listPage describes one record table page of the dashboard.
	listPage struct {
		title   string
		columns []table.Column
		rowLink func(rec table.Record) string
		// query fetches one page of records for the search term.
		query func(ctx context.Context, search string, page core.PageRequest) ([]table.Record, int, error)
		stats func(ctx context.Context) ([]statItem, error)
	}

	dashboard struct {
		auth    *authenticator
		deps    *ServerDeps
		perPage int
	}
)

var dashboardNav = []navItem{
	{Title: "Members", Href: "/dashboard/members"},
	{Title: "Trainers", Href: "/dashboard/trainers"},
	{Title: "Classes", Href: "/dashboard/classes"},
	{Title: "Invoices", Href: "/dashboard/invoices"},
	{Title: "Equipment", Href: "/dashboard/equipment"},
}

func registerDashboard(g *echo.Group, auth *authenticator, deps *ServerDeps) {
	d := &dashboard{auth: auth, deps: deps, perPage: deps.Conf.Dashboard.ItemsPerPage}

	g.GET("/login", d.loginForm)
	g.POST("/login", d.login)
	g.POST("/logout", d.logout)

	ag := g.Group("", auth.middleware(cookieTokenLookup))
	ag.GET("", d.home)

	staff := roleMiddleware(user.RoleAdmin, user.RoleStaff)
	desk := roleMiddleware(user.RoleAdmin, user.RoleFrontDesk)
	ag.GET("/members", d.list(d.membersPage()), staff)
	ag.GET("/trainers", d.list(d.trainersPage()))
	ag.GET("/classes", d.list(d.classesPage()))
	ag.GET("/invoices", d.list(d.invoicesPage()), desk)
	ag.GET("/invoices/:id/statement", d.statement, desk)
	ag.GET("/equipment", d.list(d.equipmentPage()), staff)
}

func (d *dashboard) newPageData(ctx echo.Context, title string) pageData {
	data := pageData{AppName: d.deps.Conf.AppName, Title: title}
	if usr, err := d.auth.contextUser(ctx); err == nil {
		data.User = &usr
	}
	path := ctx.Request().URL.Path
	for _, item := range dashboardNav {
		item.Active = item.Href == path
		data.Nav = append(data.Nav, item)
	}
	return data
}

// Auth

func safeNext(next string) string {
	if !strings.HasPrefix(next, "/dashboard") || strings.HasPrefix(next, "/dashboard/login") {
		return "/dashboard"
	}
	return next
}

func (d *dashboard) loginForm(ctx echo.Context) error {
	data := d.newPageData(ctx, "Sign in")
	data.Next = safeNext(ctx.QueryParam("next"))
	return ctx.Render(http.StatusOK, "login", data)
}

func (d *dashboard) login(ctx echo.Context) error {
	var creds user.LoginCredentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}
	creds.Email = core.CleanString(creds.Email, true /* lower */)
	next := safeNext(ctx.FormValue("next"))

	token, err := d.auth.login(ctx, creds)
	if err != nil {
		if err != errAuthenticationFailed {
			return err
		}
		data := d.newPageData(ctx, "Sign in")
		data.Error = "Invalid email or password."
		data.Email = creds.Email
		data.Next = next
		return ctx.Render(http.StatusUnauthorized, "login", data)
	}

	ctx.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/dashboard",
		Expires:  time.Now().Add(d.deps.Conf.JWTExpirationDelta),
		HttpOnly: true,
		Secure:   !d.deps.Conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
	return ctx.Redirect(http.StatusSeeOther, next)
}

func (d *dashboard) logout(ctx echo.Context) error {
	ctx.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Path:     "/dashboard",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return ctx.Redirect(http.StatusSeeOther, "/dashboard/login")
}

func (d *dashboard) home(ctx echo.Context) error {
	if contextHasAnyRole(ctx, []string{user.RoleAdmin, user.RoleStaff}) {
		return ctx.Redirect(http.StatusSeeOther, "/dashboard/members")
	}
	return ctx.Redirect(http.StatusSeeOther, "/dashboard/classes")
}

// Tables

// listURL returns the current URL with `page` and the sort state replaced; other query params are kept.
func listURL(ctx echo.Context, page int, sort table.SortState) string {
	q := make(url.Values)
	for k, v := range ctx.QueryParams() {
		q[k] = v
	}
	q.Set(pageParam, strconv.Itoa(page))
	q.Del(sortParam)
	q.Del(dirParam)
	if !sort.IsZero() {
		q.Set(sortParam, sort.Key)
		q.Set(dirParam, string(sort.Direction))
	}
	return ctx.Request().URL.Path + "?" + q.Encode()
}

// list serves a record table page: the page of records comes from the service while the
// sort state, carried by the `sort` and `dir` params, only orders the rows of that page.
func (d *dashboard) list(p listPage) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		search := core.CleanString(ctx.QueryParam("search"))
		page := bindPage(ctx, d.perPage)

		recs, total, err := p.query(ctx.Request().Context(), search, page)
		if err != nil {
			return errors.Wrapf(err, "querying %s", strings.ToLower(p.title))
		}

		props := table.Props{
			Data:    recs,
			Columns: p.columns,
			Pagination: &pagination.Strip{
				CurrentPage:  page.Page,
				TotalPages:   core.TotalPages(total, page.PerPage),
				ItemsPerPage: page.PerPage,
				TotalItems:   total,
			},
		}
		if search != "" {
			props.EmptyMessage = fmt.Sprintf("No %s match %q", strings.ToLower(p.title), search)
		}
		if p.rowLink != nil {
			props.OnRowClick = func(table.Record) {} // rows navigate through their links
		}
		tbl := table.New(props)
		tbl.SetSort(table.SortState{
			Key:       ctx.QueryParam(sortParam),
			Direction: table.ParseDirection(ctx.QueryParam(dirParam)),
		})

		links := table.Links{
			Sort: func(next table.SortState) string { return listURL(ctx, page.Page, next) },
			Page: func(n int) string { return listURL(ctx, n, tbl.Sort()) },
			Row:  p.rowLink,
		}
		var buf bytes.Buffer
		if err = table.WriteHTML(&buf, tbl.Render(), links); err != nil {
			return errors.Wrap(err, "writing table")
		}

		data := d.newPageData(ctx, p.title)
		data.Table = template.HTML(buf.String()) // nolint:gosec // escaped by table.WriteHTML
		data.Search = search
		if p.stats != nil {
			if data.Stats, err = p.stats(ctx.Request().Context()); err != nil {
				return err
			}
		}
		return ctx.Render(http.StatusOK, "list", data)
	}
}

func (d *dashboard) memberStats(ctx context.Context) ([]statItem, error) {
	st, err := d.deps.MemberSvc.Stats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "computing member stats")
	}
	return []statItem{
		{Label: "Total", Value: st.Total},
		{Label: "Active", Value: st.Active},
		{Label: "Expired", Value: st.Expired},
		{Label: "Suspended", Value: st.Suspended},
	}, nil
}

func (d *dashboard) statement(ctx echo.Context) error {
	inv, err := d.deps.BillingSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding invoice by ID")
	}
	return ctx.String(http.StatusOK, inv.Statement())
}

// Cells

func dateCell(key string) func(rec table.Record) interface{} {
	return func(rec table.Record) interface{} {
		if t, ok := rec.Get(key).(time.Time); ok && !t.IsZero() {
			return t.Format(dateLayout)
		}
		return nil
	}
}

func moneyCell(key string) func(rec table.Record) interface{} {
	return func(rec table.Record) interface{} {
		return fmt.Sprintf("%.2f", cast.ToFloat64(rec.Get(key)))
	}
}

func badgeCell(key string) func(rec table.Record) interface{} {
	return func(rec table.Record) interface{} {
		v := template.HTMLEscapeString(cast.ToString(rec.Get(key)))
		if v == "" {
			return nil
		}
		class := strings.ReplaceAll(strings.ToLower(v), " ", "-")
		return template.HTML(`<span class="badge badge-` + class + `">` + v + `</span>`) // nolint:gosec // escaped above
	}
}

// Pages

func (d *dashboard) membersPage() listPage {
	return listPage{
		title: "Members",
		columns: []table.Column{
			{Key: "name", Header: "Name", Sortable: true},
			{Key: "email", Header: "Email", Sortable: true},
			{Key: "phone", Header: "Phone"},
			{Key: "membership.type", Header: "Plan", Sortable: true},
			{Key: "membership.status", Header: "Status", Sortable: true, Render: badgeCell("membership.status")},
			{Key: "membership.end_date", Header: "Expires", Sortable: true, Render: dateCell("membership.end_date"), Width: "8rem"},
		},
		query: func(ctx context.Context, search string, page core.PageRequest) ([]table.Record, int, error) {
			members, total, err := d.deps.MemberSvc.Query(ctx, member.QueryFilter{Search: search}, page, nil)
			return member.Records(members), total, err
		},
		stats: d.memberStats,
	}
}

func (d *dashboard) trainersPage() listPage {
	return listPage{
		title: "Trainers",
		columns: []table.Column{
			{Key: "name", Header: "Name", Sortable: true},
			{Key: "email", Header: "Email", Sortable: true},
			{Key: "specialization", Header: "Specialization"},
			{Key: "experience", Header: "Experience (years)", Sortable: true},
			{Key: "hourly_rate", Header: "Hourly rate", Sortable: true, Render: moneyCell("hourly_rate")},
			{Key: "rating", Header: "Rating", Sortable: true},
			{Key: "status", Header: "Status", Sortable: true, Render: badgeCell("status")},
		},
		query: func(ctx context.Context, search string, page core.PageRequest) ([]table.Record, int, error) {
			trainers, total, err := d.deps.TrainerSvc.Query(ctx, trainer.QueryFilter{Search: search}, page, nil)
			return trainer.Records(trainers), total, err
		},
	}
}

func (d *dashboard) classesPage() listPage {
	return listPage{
		title: "Classes",
		columns: []table.Column{
			{Key: "name", Header: "Class", Sortable: true},
			{Key: "type", Header: "Type", Sortable: true},
			{Key: "trainer_name", Header: "Trainer", Sortable: true},
			{Key: "schedule.day_of_week", Header: "Day", Sortable: true},
			{Key: "schedule.time", Header: "Time", Sortable: true},
			{Key: "enrolled", Header: "Enrolled", Sortable: true, Render: func(rec table.Record) interface{} {
				return fmt.Sprintf("%v/%v", rec.Get("enrolled"), rec.Get("capacity"))
			}},
			{Key: "level", Header: "Level", Sortable: true},
			{Key: "price", Header: "Price", Sortable: true, Render: moneyCell("price")},
		},
		query: func(ctx context.Context, search string, page core.PageRequest) ([]table.Record, int, error) {
			classes, total, err := d.deps.ClassSvc.Query(ctx, gymclass.QueryFilter{Search: search}, page, nil)
			return gymclass.Records(classes), total, err
		},
	}
}

func (d *dashboard) invoicesPage() listPage {
	return listPage{
		title: "Invoices",
		columns: []table.Column{
			{Key: "invoice_number", Header: "Invoice", Sortable: true},
			{Key: "member_name", Header: "Member", Sortable: true},
			{Key: "total", Header: "Total", Sortable: true, Render: moneyCell("total")},
			{Key: "status", Header: "Status", Sortable: true, Render: badgeCell("status")},
			{Key: "due_date", Header: "Due", Sortable: true, Render: dateCell("due_date")},
			{Key: "paid_date", Header: "Paid", Sortable: true, Render: dateCell("paid_date")},
		},
		rowLink: func(rec table.Record) string {
			return "/dashboard/invoices/" + url.PathEscape(cast.ToString(rec.Get("id"))) + "/statement"
		},
		query: func(ctx context.Context, search string, page core.PageRequest) ([]table.Record, int, error) {
			invoices, total, err := d.deps.BillingSvc.Query(ctx, billing.QueryFilter{Search: search}, page, nil)
			return billing.Records(invoices), total, err
		},
	}
}

func (d *dashboard) equipmentPage() listPage {
	return listPage{
		title: "Equipment",
		columns: []table.Column{
			{Key: "name", Header: "Name", Sortable: true},
			{Key: "condition", Header: "Condition", Sortable: true, Render: badgeCell("condition")},
			{Key: "purchase_date", Header: "Purchased", Sortable: true, Render: dateCell("purchase_date")},
		},
		query: func(ctx context.Context, search string, page core.PageRequest) ([]table.Record, int, error) {
			items, total, err := d.deps.EquipmentSvc.Query(ctx, equipment.QueryFilter{Search: search}, page, nil)
			return equipment.Records(items), total, err
		},
	}
}
