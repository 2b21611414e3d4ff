package user_test

import (
	"context"

	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/user"
	inmemdb "github.com/AI-Fit-GMS/gms/storage/database/inmem"
	testutil "github.com/AI-Fit-GMS/gms/tests"
)

const pwd = "Sup3r-Secr3t!"

func newService(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()
	validate, _ := testutil.NewValidator()
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return user.NewService(repo, validate), repo
}

func validationTags(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "want validator.ValidationErrors, got %v", err)
	tags := make(map[string]string, len(verrs))
	for _, e := range verrs {
		tags[e.Field()] = e.Tag()
	}
	return tags
}

func TestService_Create(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:            " Jane Doe ",
		Email:           " Jane@Example.COM",
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.Equal(t, "Jane Doe", usr.Name)
	assert.Equal(t, "jane@example.com", usr.Email)
	assert.Equal(t, []string{user.RoleMember}, usr.Roles)
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword(pwd))

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, user.NewUser{Name: "Other", Email: "JANE@example.com", Password: pwd, PasswordConfirm: pwd})
		var verr *core.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, user.ErrEmailExists, verr.Err)
		assert.Equal(t, "email", verr.Fields[0].Field)
	})

	t.Run("invalid roles", func(t *testing.T) {
		_, err := svc.Create(ctx, user.NewUser{Name: "Bob", Email: "bob@example.com", Password: pwd, PasswordConfirm: pwd, Roles: []string{"superuser"}})
		assert.Equal(t, map[string]string{"roles": "allroles"}, validationTags(t, err))
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		_, err := svc.Create(ctx, user.NewUser{Name: "Bob", Email: "bob@example.com", Password: pwd, PasswordConfirm: pwd + "x"})
		assert.Equal(t, map[string]string{"password_confirm": "eqfield"}, validationTags(t, err))
	})
}

func TestService_Create_passwordPolicy(t *testing.T) {
	svc, _ := newService(t)

	tests := []struct {
		name, pwd, tag string
	}{
		{"too short", "Ab1!", "pwdminlen"},
		{"whitespace", "Ab1! cdef", "pwdnospace"},
		{"all numeric", "1234567890", "pwdnotallnum"},
		{"no special", "Abcdefg12", "pwdcplx"},
		{"no upper", "abcdef1!", "pwdcplx"},
		{"similar to name", "Jane.Doe1", "pwdtoosim"},
		{"common", "P@ssw0rd", "pwdnocommon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), user.NewUser{
				Name:            "Jane Doe",
				Email:           "jane@example.com",
				Password:        tt.pwd,
				PasswordConfirm: tt.pwd,
			})
			assert.Equal(t, map[string]string{"password": tt.tag}, validationTags(t, err))
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	active := testutil.CreateUser(t, repo, "Active", "active@example.com", pwd, []string{user.RoleTrainer}, true)
	testutil.CreateUser(t, repo, "Inactive", "inactive@example.com", pwd, []string{user.RoleMember}, false)

	tests := []struct {
		name, email, pwd string
		wantErr          error
	}{
		{"unknown email", "nobody@example.com", pwd, user.ErrInvalidCredentials},
		{"wrong password", "active@example.com", "nope", user.ErrInvalidCredentials},
		{"inactive", "inactive@example.com", pwd, user.ErrInvalidCredentials},
		{"ok, email is cleaned", " ACTIVE@example.com ", pwd, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, active.ID, usr.ID)
			assert.False(t, usr.LastLogin.IsZero())
		})
	}
}

func TestService_ChangePassword(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Jane Doe", "jane@example.com", pwd, []string{user.RoleMember}, true)
	newPwd := "Xy9!kLm#4pQr"

	err := svc.ChangePassword(ctx, "nope", user.ChangePassword{OldPassword: pwd, Password: newPwd, PasswordConfirm: newPwd})
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))

	err = svc.ChangePassword(ctx, usr.ID, user.ChangePassword{OldPassword: "wrong", Password: newPwd, PasswordConfirm: newPwd})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, user.ErrWrongPassword, verr.Err)

	err = svc.ChangePassword(ctx, usr.ID, user.ChangePassword{OldPassword: pwd, Password: "Jane.Doe1", PasswordConfirm: "Jane.Doe1"})
	assert.Equal(t, map[string]string{"password": "pwdtoosim"}, validationTags(t, err))

	require.NoError(t, svc.ChangePassword(ctx, usr.ID, user.ChangePassword{OldPassword: pwd, Password: newPwd, PasswordConfirm: newPwd}))
	_, err = svc.Authenticate(ctx, usr.Email, pwd)
	assert.Equal(t, user.ErrInvalidCredentials, err)
	_, err = svc.Authenticate(ctx, usr.Email, newPwd)
	assert.NoError(t, err)
}

func TestService_UpdateProfile(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Jane Doe", "jane@example.com", pwd, []string{user.RoleFrontDesk}, true)
	testutil.CreateUser(t, repo, "John Roe", "john@example.com", pwd, []string{user.RoleTrainer}, true)

	_, err := svc.UpdateProfile(ctx, "nope", user.UpdateProfile{Name: "Nobody"})
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))

	_, err = svc.UpdateProfile(ctx, usr.ID, user.UpdateProfile{Email: "not-an-email"})
	assert.Equal(t, map[string]string{"email": "email"}, validationTags(t, err))

	_, err = svc.UpdateProfile(ctx, usr.ID, user.UpdateProfile{Email: " JOHN@example.com"})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, user.ErrEmailExists, verr.Err)
	assert.Equal(t, "email", verr.Fields[0].Field)

	t.Run("name only", func(t *testing.T) {
		got, err := svc.UpdateProfile(ctx, usr.ID, user.UpdateProfile{Name: " Jane Smith "})
		require.NoError(t, err)
		assert.Equal(t, "Jane Smith", got.Name)
		assert.Equal(t, "jane@example.com", got.Email)
	})

	t.Run("same email", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, usr.ID, user.UpdateProfile{Email: "Jane@Example.com"})
		assert.NoError(t, err)
	})

	t.Run("new email", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, usr.ID, user.UpdateProfile{Email: "jane.smith@example.com"})
		require.NoError(t, err)
		got, err := svc.GetByEmail(ctx, "jane.smith@example.com")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		assert.Equal(t, "Jane Smith", got.Name)
		assert.Equal(t, []string{user.RoleFrontDesk}, got.Roles)
		assert.NoError(t, got.CheckPassword(pwd))
	})
}

func TestService_SetPassword(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Jane Doe", "jane@example.com", pwd, []string{user.RoleAdminOwner}, true)

	assert.Equal(t, map[string]string{"password": "pwdminlen"}, validationTags(t, svc.SetPassword(ctx, usr.ID, "short")))

	require.NoError(t, svc.SetPassword(ctx, usr.ID, "Xy9!kLm#4pQr"))
	got, err := svc.GetByEmail(ctx, "JANE@example.com")
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("Xy9!kLm#4pQr"))
}

func TestUser_roles(t *testing.T) {
	usr := user.User{Roles: []string{user.RoleAdminOwner}}
	assert.True(t, usr.IsAdmin())
	assert.False(t, usr.IsTrainer())
	assert.False(t, usr.IsStaff())
	assert.True(t, user.MaxRolePriority([]string{user.RoleMember, user.RoleAdminOwner}) > user.MaxRolePriority([]string{user.RoleTrainer}))

	desk := user.User{Roles: []string{user.RoleFrontDesk}}
	assert.True(t, desk.IsStaff())
	assert.False(t, desk.IsTrainer())
	assert.False(t, desk.IsAdmin())
	assert.True(t, desk.RoleStartsWith(user.RoleStaff))

	assert.Zero(t, user.RolePriority("staff:janitor"))
}

func TestGrantableRoles(t *testing.T) {
	values := func(roles []user.Role) []string {
		out := make([]string, 0, len(roles))
		for _, r := range roles {
			out = append(out, r.Value)
		}
		return out
	}

	tests := []struct {
		name  string
		roles []string
		want  []string
	}{
		{name: "owner", roles: []string{user.RoleAdminOwner}, want: []string{user.RoleAdminOwner, user.RoleAdmin, user.RoleFrontDesk, user.RoleTrainer, user.RoleMember}},
		{name: "manager", roles: []string{user.RoleAdmin}, want: []string{user.RoleAdmin, user.RoleFrontDesk, user.RoleTrainer, user.RoleMember}},
		{name: "front desk", roles: []string{user.RoleFrontDesk}, want: []string{user.RoleFrontDesk, user.RoleTrainer, user.RoleMember}},
		{name: "highest wins", roles: []string{user.RoleMember, user.RoleTrainer}, want: []string{user.RoleTrainer, user.RoleMember}},
		{name: "none", roles: nil, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, values(user.GrantableRoles(tt.roles)))
		})
	}
}
