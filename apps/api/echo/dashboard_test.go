package echoapi_test

import (
	"context"

	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/user"
)

// login signs in through the dashboard form and returns the session cookie.
func (app *testApp) login(t *testing.T, email string) *http.Cookie {
	t.Helper()

	rec := app.postForm(t, "/dashboard/login", url.Values{"email": {email}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "gms_token" {
			return c
		}
	}
	t.Fatalf("login(%s): no session cookie", email)
	return nil
}

func (app *testApp) getPage(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return app.do(t, req)
}

// assertOrder checks that every string of want appears in body, in that order.
func assertOrder(t *testing.T, body string, want ...string) {
	t.Helper()
	last := -1
	for _, s := range want {
		i := strings.Index(body, s)
		if !assert.Greater(t, i, last, "%q is out of order", s) {
			return
		}
		last = i
	}
}

func Test_dashboard_auth(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin)

	t.Run("anonymous visitors are sent to login", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/members?page=2", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard/login?next="+url.QueryEscape("/dashboard/members?page=2"), rec.Header().Get("Location"))
	})

	t.Run("login form", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/login?next=/dashboard/classes", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="next" value="/dashboard/classes"`)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := app.postForm(t, "/dashboard/login", url.Values{"email": {"admin@gms.test"}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password.")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("login redirects to next", func(t *testing.T) {
		form := url.Values{"email": {"admin@gms.test"}, "password": {testPassword}, "next": {"/dashboard/trainers"}}
		rec := app.postForm(t, "/dashboard/login", form)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard/trainers", rec.Header().Get("Location"))
	})

	t.Run("foreign next is ignored", func(t *testing.T) {
		form := url.Values{"email": {"admin@gms.test"}, "password": {testPassword}, "next": {"https://evil.test/"}}
		rec := app.postForm(t, "/dashboard/login", form)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("home", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard", app.login(t, "admin@gms.test"))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard/members", rec.Header().Get("Location"))
	})

	t.Run("logout", func(t *testing.T) {
		rec := app.postForm(t, "/dashboard/logout", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		require.Len(t, rec.Result().Cookies(), 1)
		assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
	})
}

func Test_dashboard_members(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin)
	app.createUser(t, "Member", "member@gms.test", user.RoleMember)
	cookie := app.login(t, "admin@gms.test")

	app.createMember(t, "Zoe", "Adams", "zoe@gms.test")
	app.createMember(t, "Amy", "Brown", "amy@gms.test")
	app.createMember(t, "Max", "Clark", "max@gms.test")

	t.Run("staff only", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/members", app.login(t, "member@gms.test"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unsorted", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/members", cookie)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := rec.Body.String()

		assert.Contains(t, body, "Total: <strong>3</strong>")
		assert.Contains(t, body, "Active: <strong>3</strong>")
		assert.Contains(t, body, "Showing 1 to 3 of 3 results")
		// newest first, as served
		assertOrder(t, body, "Max Clark", "Amy Brown", "Zoe Adams")
		// first click sorts ascending
		assert.Contains(t, body, `href="/dashboard/members?dir=asc&amp;page=1&amp;sort=name"`)
		assert.Contains(t, body, "↕")
		// not sortable
		assert.Contains(t, body, "<th>Phone</th>")
	})

	t.Run("sorted descending", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/members?sort=name&dir=desc", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assertOrder(t, body, "Zoe Adams", "Max Clark", "Amy Brown")
		assert.Contains(t, body, "↓")
		// clicking the sorted column flips its direction
		assert.Contains(t, body, `href="/dashboard/members?dir=asc&amp;page=1&amp;sort=name"`)
		assert.Contains(t, body, `href="/dashboard/members?dir=asc&amp;page=1&amp;sort=email"`)
	})

	t.Run("unknown sort key", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/members?sort=phone&dir=asc", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assertOrder(t, rec.Body.String(), "Max Clark", "Amy Brown", "Zoe Adams")
	})

	t.Run("page links keep the sort", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/members?sort=name&dir=asc&per_page=2", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Contains(t, body, "Showing 1 to 2 of 3 results")
		assert.Contains(t, body, `<span class="disabled">Previous</span>`)
		assert.Contains(t, body, `href="/dashboard/members?dir=asc&amp;page=2&amp;per_page=2&amp;sort=name" rel="next"`)
		// only the served page is sorted
		assertOrder(t, body, "Amy Brown", "Max Clark")
		assert.NotContains(t, body, "Zoe Adams")
	})

	t.Run("last page", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/members?page=2&per_page=2", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Contains(t, body, "Showing 3 to 3 of 3 results")
		assert.Contains(t, body, `<span class="disabled">Next</span>`)
		assert.Contains(t, body, `href="/dashboard/members?page=1&amp;per_page=2" rel="prev"`)
	})

	t.Run("no match", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/members?search=nobody", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Contains(t, body, `<tr class="empty"><td colspan="6">No members match &#34;nobody&#34;</td></tr>`)
		assert.Contains(t, body, "Showing 1 to 0 of 0 results")
	})
}

func Test_dashboard_invoices(t *testing.T) {
	app := newTestApp(t)
	app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin)
	app.createUser(t, "Coach", "coach@gms.test", user.RoleTrainer)
	cookie := app.login(t, "admin@gms.test")

	m := app.createMember(t, "Amy", "Brown", "amy@gms.test")
	inv, err := app.billingSvc.Create(context.Background(), billing.NewInvoice{
		MemberID: m.ID,
		Items:    []billing.NewItem{{Description: "Monthly membership", Quantity: 1, UnitPrice: 49.99}},
		DueDate:  time.Now().AddDate(0, 0, 7),
	})
	require.NoError(t, err)

	t.Run("admin only", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/invoices", app.login(t, "coach@gms.test"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rows link to statements", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/invoices", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()

		assert.Contains(t, body, `data-href="/dashboard/invoices/`+inv.ID+`/statement"`)
		assert.Contains(t, body, inv.InvoiceNumber)
		assert.Contains(t, body, "49.99")
		assert.Contains(t, body, `<span class="badge badge-pending">pending</span>`)
	})

	t.Run("statement", func(t *testing.T) {
		rec := app.getPage(t, "/dashboard/invoices/"+inv.ID+"/statement", cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, inv.Statement(), rec.Body.String())
	})
}
