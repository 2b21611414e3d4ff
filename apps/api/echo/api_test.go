package echoapi_test

import (
	"context"

	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/AI-Fit-GMS/gms/apps/api/echo"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/trainer"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type memberList struct {
	Results    []member.Member `json:"results"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalItems int             `json:"total_items"`
	TotalPages int             `json:"total_pages"`
}

func memberNames(members []member.Member) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.FullName())
	}
	return names
}

func Test_memberApi_query(t *testing.T) {
	app := newTestApp(t)
	coach := app.token(t, app.createUser(t, "Coach", "coach@gms.test", user.RoleTrainer))
	customer := app.token(t, app.createUser(t, "Customer", "customer@gms.test", user.RoleMember))

	app.createMember(t, "Zoe", "Adams", "zoe@gms.test")
	app.createMember(t, "Amy", "Brown", "amy@gms.test")
	app.createMember(t, "Max", "Clark", "max@gms.test")

	t.Run("auth required", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/members", "", nil)
		assertHTTPError(t, rec, http.StatusUnauthorized, "missing or malformed jwt")
	})

	t.Run("staff required", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/members", customer, nil)
		assertHTTPError(t, rec, http.StatusForbidden, "permission denied")
	})

	tests := []struct {
		name      string
		path      string
		wantNames []string
		wantPage  int
		wantTotal int
		wantPages int
	}{
		{
			name: "ordering", path: "/v1/members?ordering=first_name",
			wantNames: []string{"Amy Brown", "Max Clark", "Zoe Adams"}, wantPage: 1, wantTotal: 3, wantPages: 1,
		},
		{
			name: "ordering desc", path: "/v1/members?ordering=-last_name",
			wantNames: []string{"Max Clark", "Amy Brown", "Zoe Adams"}, wantPage: 1, wantTotal: 3, wantPages: 1,
		},
		{
			name: "second page", path: "/v1/members?ordering=first_name&page=2&per_page=2",
			wantNames: []string{"Zoe Adams"}, wantPage: 2, wantTotal: 3, wantPages: 2,
		},
		{
			name: "search", path: "/v1/members?search=CLA",
			wantNames: []string{"Max Clark"}, wantPage: 1, wantTotal: 1, wantPages: 1,
		},
		{
			name: "no match", path: "/v1/members?search=nobody",
			wantNames: []string{}, wantPage: 1, wantTotal: 0, wantPages: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request(t, http.MethodGet, tt.path, coach, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp memberList
			decode(t, rec, &resp)
			assert.Equal(t, tt.wantNames, memberNames(resp.Results))
			assert.Equal(t, tt.wantPage, resp.Page)
			assert.Equal(t, tt.wantTotal, resp.TotalItems)
			assert.Equal(t, tt.wantPages, resp.TotalPages)
		})
	}
}

func Test_memberApi_crud(t *testing.T) {
	app := newTestApp(t)
	admin := app.token(t, app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin))
	coach := app.token(t, app.createUser(t, "Coach", "coach@gms.test", user.RoleTrainer))

	newMember := member.NewMember{FirstName: "Jane", LastName: "Doe", Email: "jane@gms.test", MembershipType: member.TypePremium}

	t.Run("create requires admin", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/members", coach, newMember)
		assertHTTPError(t, rec, http.StatusForbidden, "permission denied")
	})

	t.Run("create invalid", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/members", admin, member.NewMember{FirstName: "Jane"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string]string
		decode(t, rec, &fields)
		assert.Contains(t, fields, "email")
		assert.Contains(t, fields, "membership_type")
	})

	var created member.Member
	t.Run("create", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/members", admin, newMember)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &created)
		assert.Equal(t, member.StatusActive, created.Membership.Status)
		assert.Equal(t, member.TypePremium, created.Membership.Type)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/members", admin, newMember)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"email": "`+member.ErrEmailExists.Error()+`"}`, rec.Body.String())
	})

	t.Run("retrieve", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/members/"+created.ID, coach, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var got member.Member
		decode(t, rec, &got)
		assert.Equal(t, created.Email, got.Email)
	})

	t.Run("update", func(t *testing.T) {
		rec := app.request(t, http.MethodPut, "/v1/members/"+created.ID, admin, member.UpdateMember{MembershipStatus: member.StatusSuspended})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got member.Member
		decode(t, rec, &got)
		assert.Equal(t, member.StatusSuspended, got.Membership.Status)
		assert.Equal(t, "Jane", got.FirstName)
	})

	t.Run("stats", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/members/stats", coach, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var st member.Stats
		decode(t, rec, &st)
		assert.Equal(t, member.Stats{Total: 1, Suspended: 1}, st)
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.request(t, http.MethodDelete, "/v1/members/"+created.ID, admin, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = app.request(t, http.MethodGet, "/v1/members/"+created.ID, coach, nil)
		assertHTTPError(t, rec, http.StatusNotFound, member.ErrNotFound.Error())
	})
}

func Test_classApi_enroll(t *testing.T) {
	app := newTestApp(t)
	admin := app.token(t, app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin))

	tr, err := app.trainerSvc.Create(context.Background(), trainer.NewTrainer{
		FirstName:      "Sarah",
		LastName:       "Connor",
		Email:          "sarah@gms.test",
		Specialization: []string{"yoga"},
		Experience:     5,
		HourlyRate:     40,
	})
	require.NoError(t, err)

	rec := app.request(t, http.MethodPost, "/v1/classes", admin, gymclass.NewClass{
		Name:      "Morning Yoga",
		Type:      "yoga",
		TrainerID: tr.ID,
		Schedule:  gymclass.Schedule{DayOfWeek: "monday", StartTime: "07:00", EndTime: "08:00"},
		Capacity:  1,
		Location:  "Studio A",
		Level:     "beginner",
		Price:     15,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var class gymclass.Class
	decode(t, rec, &class)
	assert.Equal(t, "Sarah Connor", class.TrainerName)

	first := app.createMember(t, "Amy", "Brown", "amy@gms.test")
	second := app.createMember(t, "Max", "Clark", "max@gms.test")
	path := "/v1/classes/" + class.ID + "/enroll"

	t.Run("enrolled", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, path, admin, echoapi.EnrollRequest{MemberID: first.ID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got gymclass.Class
		decode(t, rec, &got)
		assert.Equal(t, 1, got.Enrolled)
	})

	t.Run("already enrolled", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, path, admin, echoapi.EnrollRequest{MemberID: first.ID})
		assertHTTPError(t, rec, http.StatusConflict, gymclass.ErrAlreadyEnrolled.Error())
	})

	t.Run("full", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, path, admin, echoapi.EnrollRequest{MemberID: second.ID})
		assertHTTPError(t, rec, http.StatusConflict, gymclass.ErrClassFull.Error())
	})

	t.Run("unknown class", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/classes/nope/enroll", admin, echoapi.EnrollRequest{MemberID: second.ID})
		assertHTTPError(t, rec, http.StatusNotFound, gymclass.ErrNotFound.Error())
	})

	t.Run("member required", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, path, admin, echoapi.EnrollRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"member_id": "this field is required"}`, rec.Body.String())
	})
}

func Test_invoiceApi_pay(t *testing.T) {
	app := newTestApp(t)
	admin := app.token(t, app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin))
	m := app.createMember(t, "Amy", "Brown", "amy@gms.test")

	rec := app.request(t, http.MethodPost, "/v1/invoices", admin, billing.NewInvoice{
		MemberID: m.ID,
		Items: []billing.NewItem{
			{Description: "Monthly membership", Quantity: 1, UnitPrice: 50},
			{Description: "Locker", Quantity: 2, UnitPrice: 5},
		},
		TaxRate: 10,
		DueDate: time.Now().AddDate(0, 0, 7),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv billing.Invoice
	decode(t, rec, &inv)
	assert.Equal(t, 60.0, inv.Amount)
	assert.Equal(t, 6.0, inv.Tax)
	assert.Equal(t, 66.0, inv.Total)
	assert.Equal(t, billing.StatusPending, inv.Status)
	assert.Regexp(t, `^INV-\d{6}-\d+$`, inv.InvoiceNumber)

	path := "/v1/invoices/" + inv.ID + "/pay"

	t.Run("partial", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, path, admin, billing.NewPayment{Amount: 16, Method: billing.MethodCash})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp echoapi.PaymentResponse
		decode(t, rec, &resp)
		assert.Equal(t, billing.StatusPending, resp.Invoice.Status)
		assert.Equal(t, 16.0, resp.Payment.Amount)
	})

	t.Run("exceeds balance", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, path, admin, billing.NewPayment{Amount: 100, Method: billing.MethodCard})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("settled", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, path, admin, billing.NewPayment{Amount: 50, Method: billing.MethodUPI})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp echoapi.PaymentResponse
		decode(t, rec, &resp)
		assert.Equal(t, billing.StatusPaid, resp.Invoice.Status)
		assert.False(t, resp.Invoice.PaidDate.IsZero())
	})

	t.Run("not payable", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, path, admin, billing.NewPayment{Amount: 1, Method: billing.MethodCash})
		assertHTTPError(t, rec, http.StatusConflict, billing.ErrNotPayable.Error())

		rec = app.request(t, http.MethodPost, "/v1/invoices/"+inv.ID+"/cancel", admin, nil)
		assertHTTPError(t, rec, http.StatusConflict, billing.ErrNotPayable.Error())
	})
}

func Test_frontDesk(t *testing.T) {
	app := newTestApp(t)
	desk := app.token(t, app.createUser(t, "Desk", "desk@gms.test", user.RoleFrontDesk))
	coach := app.token(t, app.createUser(t, "Coach", "coach@gms.test", user.RoleTrainer))

	var m member.Member
	t.Run("registers members", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/members", desk, member.NewMember{FirstName: "Jane", LastName: "Doe", Email: "jane@gms.test", MembershipType: member.TypeBasic})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &m)

		rec = app.request(t, http.MethodPut, "/v1/members/"+m.ID, desk, member.UpdateMember{MembershipType: member.TypeVIP})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = app.request(t, http.MethodDelete, "/v1/members/"+m.ID, desk, nil)
		assertHTTPError(t, rec, http.StatusForbidden, "permission denied")
	})

	var inv billing.Invoice
	t.Run("takes payments", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/invoices", desk, billing.NewInvoice{
			MemberID: m.ID,
			Items:    []billing.NewItem{{Description: "Day pass", Quantity: 2, UnitPrice: 12.5}},
			DueDate:  time.Now().AddDate(0, 0, 1),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &inv)

		path := "/v1/invoices/" + inv.ID
		for _, amount := range []float64{10, 15} {
			rec = app.request(t, http.MethodPost, path+"/pay", desk, billing.NewPayment{Amount: amount, Method: billing.MethodCash})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		}

		rec = app.request(t, http.MethodGet, path+"/payments", desk, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var payments []billing.Payment
		decode(t, rec, &payments)
		require.Len(t, payments, 2)
		assert.Equal(t, 25.0, payments[0].Amount+payments[1].Amount)

		rec = app.request(t, http.MethodGet, "/v1/invoices/nope/payments", desk, nil)
		assertHTTPError(t, rec, http.StatusNotFound, billing.ErrNotFound.Error())
	})

	t.Run("cannot cancel invoices", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/invoices/"+inv.ID+"/cancel", desk, nil)
		assertHTTPError(t, rec, http.StatusForbidden, "permission denied")
	})

	t.Run("trainers cannot bill", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/invoices/"+inv.ID+"/payments", coach, nil)
		assertHTTPError(t, rec, http.StatusForbidden, "permission denied")
	})

	t.Run("no analytics", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/dashboard/stats", desk, nil)
		assertHTTPError(t, rec, http.StatusForbidden, "permission denied")
	})
}
