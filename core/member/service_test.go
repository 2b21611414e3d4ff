package member_test

import (
	"context"

	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/member"
	inmemdb "github.com/AI-Fit-GMS/gms/storage/database/inmem"
	testutil "github.com/AI-Fit-GMS/gms/tests"
)

func newService(t *testing.T) *member.Service {
	t.Helper()
	validate, _ := testutil.NewValidator()
	return member.NewService(inmemdb.NewMemberRepository(inmemdb.Open()), validate, testutil.NewLogger(t))
}

func createMember(t *testing.T, svc *member.Service, first, last, mtype string) member.Member {
	t.Helper()
	m, err := svc.Create(context.Background(), member.NewMember{
		FirstName:      first,
		LastName:       last,
		Email:          first + "@example.com",
		MembershipType: mtype,
	})
	require.NoError(t, err)
	return m
}

func names(members []member.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.FirstName)
	}
	return out
}

func TestService_Create(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	t.Run("invalid", func(t *testing.T) {
		_, err := svc.Create(ctx, member.NewMember{FirstName: "Ann", Email: "nope", Phone: "call me", MembershipType: "gold", DurationMonths: 40})
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		fields := make([]string, 0, len(verrs))
		for _, e := range verrs {
			fields = append(fields, e.Field())
		}
		assert.ElementsMatch(t, []string{"last_name", "email", "phone", "membership_type", "duration_months"}, fields)
	})

	m, err := svc.Create(ctx, member.NewMember{
		FirstName:      " Ann ",
		LastName:       "Lee",
		Email:          "Ann@Example.com",
		Phone:          "+1 (555) 010-2030",
		MembershipType: "Premium",
		StartDate:      start,
		DurationMonths: 3,
		AutoRenew:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", m.FirstName)
	assert.Equal(t, "ann@example.com", m.Email)
	assert.Equal(t, member.Membership{
		Type:      member.TypePremium,
		Status:    member.StatusActive,
		StartDate: start,
		EndDate:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), // Apr 31 normalizes to May 1
		AutoRenew: true,
	}, m.Membership)

	t.Run("default duration", func(t *testing.T) {
		m, err := svc.Create(ctx, member.NewMember{FirstName: "Bo", LastName: "Kim", Email: "bo@example.com", MembershipType: "basic"})
		require.NoError(t, err)
		assert.Equal(t, m.Membership.StartDate.AddDate(0, 1, 0), m.Membership.EndDate)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, member.NewMember{FirstName: "Ann", LastName: "Other", Email: "ann@example.com", MembershipType: "vip"})
		var verr *core.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, member.ErrEmailExists, verr.Err)
	})
}

func TestService_Query(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	createMember(t, svc, "carla", "Zed", member.TypeVIP)
	createMember(t, svc, "alice", "Young", member.TypeBasic)
	createMember(t, svc, "bruno", "Xu", member.TypeBasic)

	byFirst := []core.DBOrdering{{Field: "first_name", Ascending: true}}

	tests := []struct {
		name      string
		filter    member.QueryFilter
		page      core.PageRequest
		ordering  []core.DBOrdering
		wantNames []string
		wantTotal int
	}{
		{"first name asc", member.QueryFilter{}, core.PageRequest{}, byFirst, []string{"alice", "bruno", "carla"}, 3},
		{"last name desc", member.QueryFilter{}, core.PageRequest{}, []core.DBOrdering{{Field: "last_name"}}, []string{"carla", "alice", "bruno"}, 3},
		{"nested field", member.QueryFilter{}, core.PageRequest{}, []core.DBOrdering{{Field: "membership.type", Ascending: false}, {Field: "first_name", Ascending: true}}, []string{"carla", "alice", "bruno"}, 3},
		{"unknown field is ignored", member.QueryFilter{}, core.PageRequest{}, []core.DBOrdering{{Field: "password"}, {Field: "first_name", Ascending: true}}, []string{"alice", "bruno", "carla"}, 3},
		{"second page", member.QueryFilter{}, core.PageRequest{Page: 2, PerPage: 2}, byFirst, []string{"carla"}, 3},
		{"page past the end", member.QueryFilter{}, core.PageRequest{Page: 5, PerPage: 2}, byFirst, []string{}, 3},
		{"type filter", member.QueryFilter{Type: " BASIC "}, core.PageRequest{}, byFirst, []string{"alice", "bruno"}, 2},
		{"search", member.QueryFilter{Search: "YOUNG"}, core.PageRequest{}, byFirst, []string{"alice"}, 1},
		{"no match", member.QueryFilter{Search: "nobody"}, core.PageRequest{Page: 1, PerPage: 10}, byFirst, []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := svc.Query(ctx, tt.filter, tt.page, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names(got))
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestService_UpdateDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	ann := createMember(t, svc, "ann", "Lee", member.TypeBasic)
	createMember(t, svc, "bo", "Kim", member.TypeBasic)

	autoRenew := true
	got, err := svc.Update(ctx, ann.ID, member.UpdateMember{MembershipStatus: "suspended", Phone: "555 0100", AutoRenew: &autoRenew})
	require.NoError(t, err)
	assert.Equal(t, member.StatusSuspended, got.Membership.Status)
	assert.Equal(t, "555 0100", got.Phone)
	assert.True(t, got.Membership.AutoRenew)
	assert.Equal(t, "Lee", got.LastName)

	_, err = svc.Update(ctx, ann.ID, member.UpdateMember{Email: "bo@example.com"})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, member.ErrEmailExists, verr.Err)

	_, err = svc.Update(ctx, ann.ID, member.UpdateMember{Email: "ann@example.com"})
	assert.NoError(t, err, "keeping its own email")

	_, err = svc.Update(ctx, ann.ID, member.UpdateMember{MembershipStatus: "frozen"})
	assert.Error(t, err)

	_, err = svc.Update(ctx, "nope", member.UpdateMember{Phone: "555 0100"})
	assert.Equal(t, member.ErrNotFound, errors.Cause(err))

	require.NoError(t, svc.Delete(ctx, ann.ID))
	_, err = svc.GetByID(ctx, ann.ID)
	assert.Equal(t, member.ErrNotFound, errors.Cause(err))
	assert.Equal(t, member.ErrNotFound, errors.Cause(svc.Delete(ctx, ann.ID)))
}

func TestService_StatsAndExpiry(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i, first := range []string{"ann", "bo", "cy"} {
		_, err := svc.Create(ctx, member.NewMember{
			FirstName:      first,
			LastName:       "Test",
			Email:          first + "@example.com",
			MembershipType: member.TypeBasic,
			StartDate:      now.AddDate(0, -(i + 2), 0),
			DurationMonths: 1,
		})
		require.NoError(t, err)
	}
	suspended := createMember(t, svc, "dee", "Test", member.TypeVIP)
	_, err := svc.Update(ctx, suspended.ID, member.UpdateMember{MembershipStatus: member.StatusSuspended})
	require.NoError(t, err)

	n, err := svc.ExpireMemberships(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = svc.ExpireMemberships(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n, "already expired")

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, member.Stats{Total: 4, Active: 0, Expired: 3, Suspended: 1}, st)
}

func TestMember_Record(t *testing.T) {
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := member.Member{
		FirstName:  "Ann",
		LastName:   "Lee",
		Membership: member.Membership{Type: member.TypeVIP, Status: member.StatusActive, EndDate: end},
	}
	rec := m.Record()
	assert.Equal(t, "Ann Lee", rec["name"])
	assert.Equal(t, member.TypeVIP, rec["membership.type"])
	assert.Equal(t, end, rec["membership.end_date"])

	assert.True(t, m.IsExpired(end.Add(time.Second)))
	assert.False(t, m.IsExpired(end.Add(-time.Second)))
	assert.Len(t, member.Records([]member.Member{m, m}), 2)
}
