package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AI-Fit-GMS/gms/core"
)

// Role values are "<group>:<position>". Route guards match on the group ("staff:" covers
// the front desk and the trainers), the position only matters for priorities.
const (
	RoleAdmin      = "admin:"      // club manager
	RoleAdminOwner = "admin:owner" // club owner

	RoleStaff     = "staff:"
	RoleFrontDesk = "staff:frontdesk" // check-ins, registrations and payments
	RoleTrainer   = "staff:trainer"

	RoleMember = "member:"
)

// Role describes an assignable role. A user can only grant roles of a priority up to their own.
type Role struct {
	Value    string `json:"value"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// Roles lists the assignable roles, highest priority first.
var Roles = []Role{
	{Value: RoleAdminOwner, Name: "Club owner", Priority: 40},
	{Value: RoleAdmin, Name: "Manager", Priority: 30},
	{Value: RoleFrontDesk, Name: "Front desk", Priority: 20},
	{Value: RoleTrainer, Name: "Trainer", Priority: 15},
	{Value: RoleMember, Name: "Member", Priority: 1},
}

var rolePriorities = func() map[string]int {
	m := make(map[string]int, len(Roles))
	for _, r := range Roles {
		m[r.Value] = r.Priority
	}
	return m
}()

// RolePriority is 0 for unknown roles.
func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if p := RolePriority(role); p > max {
			max = p
		}
	}
	return max
}

// GrantableRoles are the roles a user holding `roles` may give to others.
func GrantableRoles(roles []string) []Role {
	max := MaxRolePriority(roles)
	grantable := make([]Role, 0, len(Roles))
	for _, r := range Roles {
		if r.Priority <= max {
			grantable = append(grantable, r)
		}
	}
	return grantable
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

// IsStaff is true for the front desk and the trainers.
func (u *User) IsStaff() bool {
	return u.RoleStartsWith(RoleStaff)
}

func (u *User) IsTrainer() bool {
	return u.RoleStartsWith(RoleTrainer)
}

func (u *User) IsMember() bool {
	return u.RoleStartsWith(RoleMember)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
}

// UpdateProfile holds the profile fields a user can edit; empty fields are left unchanged.
type UpdateProfile struct {
	Name  string `json:"name" validate:"omitempty,notblank"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (up *UpdateProfile) Clean() {
	up.Name = core.CleanString(up.Name)
	up.Email = core.CleanString(up.Email, true /* lower */)
}

// ChangePassword defines the information needed to replace a User's password.
type ChangePassword struct {
	OldPassword     string `json:"old_password" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`

	// user attributes, set by the service for the similarity check
	name, email string
}

type LoginCredentials struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}
