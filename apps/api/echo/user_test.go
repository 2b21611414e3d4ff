package echoapi_test

import (
	"context"

	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/AI-Fit-GMS/gms/apps/api/echo"
	"github.com/AI-Fit-GMS/gms/core/user"
)

func Test_userApi_login(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin)
	gone := app.createUser(t, "Gone", "gone@gms.test")
	inactive, err := app.usrRepo.GetUserByID(context.Background(), gone.ID)
	require.NoError(t, err)
	inactive.IsActive = false
	_, err = app.usrRepo.UpdateUser(context.Background(), inactive)
	require.NoError(t, err)

	tests := []struct {
		name  string
		creds user.LoginCredentials
	}{
		{name: "empty", creds: user.LoginCredentials{}},
		{name: "unknown email", creds: user.LoginCredentials{Email: "nobody@gms.test", Password: testPassword}},
		{name: "wrong password", creds: user.LoginCredentials{Email: usr.Email, Password: "wrong"}},
		{name: "inactive", creds: user.LoginCredentials{Email: inactive.Email, Password: testPassword}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request(t, http.MethodPost, "/v1/users/login", "", tt.creds)
			assertHTTPError(t, rec, http.StatusBadRequest, "authentication failed")
		})
	}

	t.Run("success", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/users/login", "", user.LoginCredentials{Email: " ADMIN@gms.test ", Password: testPassword})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.LoginResponse
		decode(t, rec, &resp)
		require.NotEmpty(t, resp.Token)

		rec = app.request(t, http.MethodGet, "/v1/users/me", resp.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var me user.User
		decode(t, rec, &me)
		assert.Equal(t, usr.ID, me.ID)
		assert.False(t, me.LastLogin.IsZero())
	})
}

func Test_userApi_me(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "Trainer", "trainer@gms.test", user.RoleTrainer)

	t.Run("auth required", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/users/me", "", nil)
		assertHTTPError(t, rec, http.StatusUnauthorized, "missing or malformed jwt")
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/users/me", "not-a-jwt", nil)
		assertHTTPError(t, rec, http.StatusUnauthorized, "invalid or expired jwt")
	})

	t.Run("profile", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/users/me", app.token(t, usr), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var me user.User
		decode(t, rec, &me)
		assert.Equal(t, usr.Email, me.Email)
		assert.Equal(t, []string{user.RoleTrainer}, me.Roles)
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "Trainer", "trainer@gms.test", user.RoleTrainer)

	rec := app.request(t, http.MethodPost, "/v1/users/token-refresh", app.token(t, usr), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp echoapi.LoginResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
}

func Test_userApi_create(t *testing.T) {
	app := newTestApp(t)
	admin := app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin)
	trainer := app.createUser(t, "Trainer", "trainer@gms.test", user.RoleTrainer)

	newUser := func(roles ...string) user.NewUser {
		return user.NewUser{
			Name:            "Coach Carter",
			Email:           "carter@gms.test",
			Password:        "Xy9!kLm#4pQr",
			PasswordConfirm: "Xy9!kLm#4pQr",
			Roles:           roles,
		}
	}

	t.Run("admin required", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/users/register", app.token(t, trainer), newUser(user.RoleTrainer))
		assertHTTPError(t, rec, http.StatusForbidden, "permission denied")
	})

	t.Run("role above own", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/users/register", app.token(t, admin), newUser(user.RoleAdminOwner))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"roles": "not enough rights to set these roles"}`, rec.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/users/register", app.token(t, admin), newUser(user.RoleTrainer))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var usr user.User
		decode(t, rec, &usr)
		assert.Equal(t, "carter@gms.test", usr.Email)
		assert.True(t, usr.IsActive)
	})
}

func Test_userApi_updateProfile(t *testing.T) {
	app := newTestApp(t)
	usr := app.createUser(t, "Desk", "desk@gms.test", user.RoleFrontDesk)
	app.createUser(t, "Coach", "coach@gms.test", user.RoleTrainer)
	token := app.token(t, usr)

	t.Run("auth required", func(t *testing.T) {
		rec := app.request(t, http.MethodPut, "/v1/users/me", "", user.UpdateProfile{Name: "Nobody"})
		assertHTTPError(t, rec, http.StatusUnauthorized, "missing or malformed jwt")
	})

	t.Run("email taken", func(t *testing.T) {
		rec := app.request(t, http.MethodPut, "/v1/users/me", token, user.UpdateProfile{Email: "Coach@gms.test"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"email": "`+user.ErrEmailExists.Error()+`"}`, rec.Body.String())
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := app.request(t, http.MethodPut, "/v1/users/me", token, user.UpdateProfile{Email: "desk-at-gms"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var fields map[string]string
		decode(t, rec, &fields)
		assert.Contains(t, fields, "email")
	})

	t.Run("updated", func(t *testing.T) {
		rec := app.request(t, http.MethodPut, "/v1/users/me", token, user.UpdateProfile{Name: "Front Desk", Email: "frontdesk@gms.test"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = app.request(t, http.MethodGet, "/v1/users/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var me user.User
		decode(t, rec, &me)
		assert.Equal(t, "Front Desk", me.Name)
		assert.Equal(t, "frontdesk@gms.test", me.Email)
		assert.Equal(t, []string{user.RoleFrontDesk}, me.Roles)
	})
}

func Test_userApi_roles(t *testing.T) {
	app := newTestApp(t)
	admin := app.createUser(t, "Admin", "admin@gms.test", user.RoleAdmin)
	desk := app.createUser(t, "Desk", "desk@gms.test", user.RoleFrontDesk)

	values := func(token string) []string {
		rec := app.request(t, http.MethodGet, "/v1/users/roles", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var roles []user.Role
		decode(t, rec, &roles)
		out := make([]string, 0, len(roles))
		for _, r := range roles {
			out = append(out, r.Value)
		}
		return out
	}

	assert.Equal(t, []string{user.RoleAdmin, user.RoleFrontDesk, user.RoleTrainer, user.RoleMember}, values(app.token(t, admin)))
	assert.Equal(t, []string{user.RoleFrontDesk, user.RoleTrainer, user.RoleMember}, values(app.token(t, desk)))
}

func Test_userApi_create_frontDesk(t *testing.T) {
	app := newTestApp(t)
	desk := app.token(t, app.createUser(t, "Desk", "desk@gms.test", user.RoleFrontDesk))

	newUser := func(roles ...string) user.NewUser {
		return user.NewUser{
			Name:            "Amy Brown",
			Email:           "amy@gms.test",
			Password:        "Xy9!kLm#4pQr",
			PasswordConfirm: "Xy9!kLm#4pQr",
			Roles:           roles,
		}
	}

	rec := app.request(t, http.MethodPost, "/v1/users/register", desk, newUser(user.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"roles": "not enough rights to set these roles"}`, rec.Body.String())

	rec = app.request(t, http.MethodPost, "/v1/users/register", desk, newUser(user.RoleMember))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
