package member

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
)

var (
	// errors
	ErrNotFound    = errors.New("member not found")
	ErrEmailExists = errors.New("a member with this email already exists")

	// OrderingFields maps the orderable fields to their column names.
	OrderingFields = map[string]string{
		"first_name":          "first_name",
		"last_name":           "last_name",
		"email":               "email",
		"created_at":          "created_at",
		"membership.type":     "membership_type",
		"membership.status":   "membership_status",
		"membership.end_date": "membership_end_date",
	}
	defaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
)

const defaultDurationMonths = 1

type (
	Repository interface {
		// QueryMembers returns the requested page of the members matching filter, and their total count.
		QueryMembers(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Member, int, error)
		GetMemberByID(ctx context.Context, id string) (Member, error)
		GetMemberByEmail(ctx context.Context, email string) (Member, error)
		CreateMember(ctx context.Context, m Member) (Member, error)
		UpdateMember(ctx context.Context, m Member) (Member, error)
		DeleteMember(ctx context.Context, id string) error
		CountMembersByStatus(ctx context.Context) (map[string]int, error)
		// ExpireMemberships marks the active memberships ended before now as expired.
		ExpireMemberships(ctx context.Context, now time.Time) (int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(repo Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{repo: repo, validate: validate, logger: logger}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludedID string) error {
	m, err := svc.repo.GetMemberByEmail(ctx, email)
	switch errors.Cause(err) {
	case nil:
		if m.ID == excludedID {
			return nil
		}
		return core.NewFieldValidationError("email", ErrEmailExists)
	case ErrNotFound:
		return nil
	default:
		return err
	}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Member, int, error) {
	filter.Clean()
	ordering = core.CleanOrdering(ordering, OrderingFields)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	members, total, err := svc.repo.QueryMembers(ctx, filter, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying members")
	}
	return members, total, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Member, error) {
	return svc.repo.GetMemberByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, nm NewMember) (Member, error) {
	nm.Clean()
	if err := svc.validate.Struct(nm); err != nil {
		return Member{}, err
	}
	if err := svc.checkUniqueness(ctx, nm.Email, ""); err != nil {
		return Member{}, err
	}

	now := time.Now().UTC()
	start := nm.StartDate.UTC()
	if nm.StartDate.IsZero() {
		start = now.Truncate(24 * time.Hour)
	}
	months := nm.DurationMonths
	if months == 0 {
		months = defaultDurationMonths
	}

	m := Member{
		ID:          uuid.NewString(),
		FirstName:   nm.FirstName,
		LastName:    nm.LastName,
		Email:       nm.Email,
		Phone:       nm.Phone,
		DateOfBirth: nm.DateOfBirth.UTC(),
		Gender:      nm.Gender,
		Address:     nm.Address,
		Membership: Membership{
			Type:      nm.MembershipType,
			Status:    StatusActive,
			StartDate: start,
			EndDate:   start.AddDate(0, months, 0),
			AutoRenew: nm.AutoRenew,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateMember(ctx, m)
}

func (svc *Service) Update(ctx context.Context, id string, um UpdateMember) (Member, error) {
	if err := svc.validate.Struct(um); err != nil {
		return Member{}, err
	}
	m, err := svc.repo.GetMemberByID(ctx, id)
	if err != nil {
		return Member{}, err
	}
	um.apply(&m)
	if err := svc.checkUniqueness(ctx, m.Email, m.ID); err != nil {
		return Member{}, err
	}
	m.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMember(ctx, m)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteMember(ctx, id)
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := svc.repo.CountMembersByStatus(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "counting members")
	}
	return StatsFromCounts(counts), nil
}

// StatsFromCounts builds the stats from the member counts per membership status.
func StatsFromCounts(counts map[string]int) Stats {
	st := Stats{
		Active:    counts[StatusActive],
		Expired:   counts[StatusExpired],
		Suspended: counts[StatusSuspended],
	}
	for _, n := range counts {
		st.Total += n
	}
	return st
}

// ExpireMemberships expires the active memberships whose end date is past.
func (svc *Service) ExpireMemberships(ctx context.Context, now time.Time) (int, error) {
	n, err := svc.repo.ExpireMemberships(ctx, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "expiring memberships")
	}
	if n > 0 {
		svc.logger.Info("memberships expired", map[string]interface{}{"count": n})
	}
	return n, nil
}
