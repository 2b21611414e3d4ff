package member

import (
	"strings"
	"time"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/table"
)

// Membership types
const (
	TypeBasic   = "basic"
	TypePremium = "premium"
	TypeVIP     = "vip"
)

// Membership statuses
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusSuspended = "suspended"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

type (
	Membership struct {
		Type      string    `json:"type"`
		Status    string    `json:"status"`
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
		AutoRenew bool      `json:"auto_renew"`
	}

	Member struct {
		ID          string     `json:"id"`
		FirstName   string     `json:"first_name"`
		LastName    string     `json:"last_name"`
		Email       string     `json:"email"`
		Phone       string     `json:"phone"`
		DateOfBirth time.Time  `json:"date_of_birth"`
		Gender      string     `json:"gender"`
		Address     string     `json:"address"`
		Membership  Membership `json:"membership"`
		CreatedAt   time.Time  `json:"created_at"` // UTC
		UpdatedAt   time.Time  `json:"updated_at"` // UTC
	}

	Stats struct {
		Total     int `json:"total"`
		Active    int `json:"active"`
		Expired   int `json:"expired"`
		Suspended int `json:"suspended"`
	}
)

func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// IsExpired tells whether an active membership ran past its end date.
func (m Member) IsExpired(now time.Time) bool {
	return m.Membership.Status == StatusActive && !m.Membership.EndDate.IsZero() && m.Membership.EndDate.Before(now)
}

// Record flattens the member for record tables. Nested fields use dotted keys.
func (m Member) Record() table.Record {
	return table.Record{
		"id":                    m.ID,
		"name":                  m.FullName(),
		"first_name":            m.FirstName,
		"last_name":             m.LastName,
		"email":                 m.Email,
		"phone":                 m.Phone,
		"gender":                m.Gender,
		"membership.type":       m.Membership.Type,
		"membership.status":     m.Membership.Status,
		"membership.start_date": m.Membership.StartDate,
		"membership.end_date":   m.Membership.EndDate,
		"membership.auto_renew": m.Membership.AutoRenew,
		"created_at":            m.CreatedAt,
	}
}

func Records(members []Member) []table.Record {
	recs := make([]table.Record, 0, len(members))
	for _, m := range members {
		recs = append(recs, m.Record())
	}
	return recs
}

// NewMember contains information needed to register a new Member.
type NewMember struct {
	FirstName      string    `json:"first_name" form:"first_name" validate:"required,notblank"`
	LastName       string    `json:"last_name" form:"last_name" validate:"required,notblank"`
	Email          string    `json:"email" form:"email" validate:"required,email"`
	Phone          string    `json:"phone" form:"phone" validate:"omitempty,phone"`
	DateOfBirth    time.Time `json:"date_of_birth" form:"date_of_birth"`
	Gender         string    `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
	Address        string    `json:"address" form:"address"`
	MembershipType string    `json:"membership_type" form:"membership_type" validate:"required,oneof=basic premium vip"`
	StartDate      time.Time `json:"start_date" form:"start_date"`
	DurationMonths int       `json:"duration_months" form:"duration_months" validate:"omitempty,min=1,max=36"`
	AutoRenew      bool      `json:"auto_renew" form:"auto_renew"`
}

func (nm *NewMember) Clean() {
	nm.FirstName = core.CleanString(nm.FirstName)
	nm.LastName = core.CleanString(nm.LastName)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Phone = core.CleanString(nm.Phone)
	nm.Address = core.CleanString(nm.Address)
	nm.MembershipType = core.CleanString(nm.MembershipType, true /* lower */)
	nm.Gender = core.CleanString(nm.Gender, true /* lower */)
}

// UpdateMember defines what information may be provided to modify an existing Member.
// Empty fields are left untouched.
type UpdateMember struct {
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email" validate:"omitempty,email"`
	Phone            string    `json:"phone" validate:"omitempty,phone"`
	Address          string    `json:"address"`
	MembershipType   string    `json:"membership_type" validate:"omitempty,oneof=basic premium vip"`
	MembershipStatus string    `json:"membership_status" validate:"omitempty,oneof=active expired suspended"`
	EndDate          time.Time `json:"end_date"`
	AutoRenew        *bool     `json:"auto_renew"`
}

func (um *UpdateMember) apply(m *Member) {
	if v := core.CleanString(um.FirstName); v != "" {
		m.FirstName = v
	}
	if v := core.CleanString(um.LastName); v != "" {
		m.LastName = v
	}
	if v := core.CleanString(um.Email, true /* lower */); v != "" {
		m.Email = v
	}
	if v := core.CleanString(um.Phone); v != "" {
		m.Phone = v
	}
	if v := core.CleanString(um.Address); v != "" {
		m.Address = v
	}
	if v := core.CleanString(um.MembershipType, true /* lower */); v != "" {
		m.Membership.Type = v
	}
	if v := core.CleanString(um.MembershipStatus, true /* lower */); v != "" {
		m.Membership.Status = v
	}
	if !um.EndDate.IsZero() {
		m.Membership.EndDate = um.EndDate.UTC()
	}
	if um.AutoRenew != nil {
		m.Membership.AutoRenew = *um.AutoRenew
	}
}

type QueryFilter struct {
	Search string `query:"search"`
	Status string `query:"status"`
	Type   string `query:"type"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
}

// Match applies the filter on m: AND on the set fields, case-insensitive Search on names and email.
func (qf QueryFilter) Match(m Member) bool {
	if qf.Status != "" && m.Membership.Status != qf.Status {
		return false
	}
	if qf.Type != "" && m.Membership.Type != qf.Type {
		return false
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		return strings.Contains(strings.ToLower(m.FullName()), s) || strings.Contains(m.Email, s)
	}
	return true
}
