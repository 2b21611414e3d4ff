package echoapi_test

import (
	"context"

	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/AI-Fit-GMS/gms/apps/api/echo"
	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/report"
	"github.com/AI-Fit-GMS/gms/core/trainer"
	"github.com/AI-Fit-GMS/gms/core/user"
	appfs "github.com/AI-Fit-GMS/gms/fs"
	emailsvc "github.com/AI-Fit-GMS/gms/services/email"
	inmemdb "github.com/AI-Fit-GMS/gms/storage/database/inmem"
	testutil "github.com/AI-Fit-GMS/gms/tests"
)

const testPassword = "Sup3r-Secr3t!"

type testApp struct {
	conf       *core.Config
	server     *echoapi.Server
	usrRepo    user.Repository
	memberSvc  *member.Service
	trainerSvc *trainer.Service
	classSvc   *gymclass.Service
	billingSvc *billing.Service
	mailSvc    *emailsvc.ConsoleServiceMock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	conf := testutil.NewConfig(t)
	logger := testutil.NewLogger(t)
	validate, translator := testutil.NewValidator()

	tmpls, err := core.ParseEmailTemplates(appfs.FS, true)
	require.NoError(t, err)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, tmpls, logger)

	db := inmemdb.Open()
	app := &testApp{
		conf:    conf,
		usrRepo: inmemdb.NewUserRepository(db),
		mailSvc: mailSvc,
	}
	memberRepo := inmemdb.NewMemberRepository(db)
	trainerRepo := inmemdb.NewTrainerRepository(db)
	classRepo := inmemdb.NewClassRepository(db)
	invoiceRepo := inmemdb.NewInvoiceRepository(db)
	app.memberSvc = member.NewService(memberRepo, validate, logger)
	app.trainerSvc = trainer.NewService(trainerRepo, validate)
	app.classSvc = gymclass.NewService(classRepo, app.trainerSvc, app.memberSvc, validate)
	app.billingSvc = billing.NewService(invoiceRepo, app.memberSvc, mailSvc, validate, logger)

	app.server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        user.NewService(app.usrRepo, validate),
		MemberSvc:      app.memberSvc,
		TrainerSvc:     app.trainerSvc,
		ClassSvc:       app.classSvc,
		BillingSvc:     app.billingSvc,
		EquipmentSvc:   equipment.NewService(inmemdb.NewEquipmentRepository(db), validate),
		ReportSvc:      report.NewService(memberRepo, trainerRepo, classRepo, invoiceRepo),
	})
	return app
}

func (app *testApp) createUser(t *testing.T, name, email string, roles ...string) user.User {
	t.Helper()
	return testutil.CreateUser(t, app.usrRepo, name, email, testPassword, roles, true)
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, app.conf), app.conf)
	require.NoError(t, err)
	return token
}

func (app *testApp) createMember(t *testing.T, first, last, email string) member.Member {
	t.Helper()
	m, err := app.memberSvc.Create(context.Background(), member.NewMember{
		FirstName:      first,
		LastName:       last,
		Email:          email,
		MembershipType: member.TypeBasic,
	})
	require.NoError(t, err)
	return m
}

func (app *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

// request sends a JSON request, authenticated when token is set.
func (app *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return app.do(t, req)
}

func (app *testApp) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return app.do(t, req)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func assertHTTPError(t *testing.T, rec *httptest.ResponseRecorder, wantCode int, wantMsg string) {
	t.Helper()
	assert.Equal(t, wantCode, rec.Code)
	assert.JSONEq(t, `{"error": "`+wantMsg+`"}`, rec.Body.String())
}

func TestServer_home(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to GMS API!", rec.Body.String())
}

func TestServer_metrics(t *testing.T) {
	app := newTestApp(t)

	app.request(t, http.MethodGet, "/", "", nil)
	app.request(t, http.MethodGet, "/v1/users/me", "", nil)

	rec := app.request(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `gms_http_requests_total{code="200",method="GET",route="/"} 1`)
	assert.Contains(t, body, `gms_http_requests_total{code="401",method="GET",route="/v1/users/me"} 1`)
	assert.Contains(t, body, "gms_http_request_duration_seconds")
	assert.Contains(t, body, "go_goroutines")
}
