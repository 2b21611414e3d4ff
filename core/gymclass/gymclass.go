// Package gymclass manages scheduled group classes and their enrollments.
package gymclass

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/table"
	"github.com/AI-Fit-GMS/gms/core/trainer"
)

// Statuses
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

var (
	// errors
	ErrNotFound        = errors.New("class not found")
	ErrClassFull       = errors.New("class is full")
	ErrAlreadyEnrolled = errors.New("member is already enrolled in this class")
	ErrNotActive       = errors.New("class is not open for enrollment")

	OrderingFields = map[string]string{
		"name":       "name",
		"type":       "type",
		"level":      "level",
		"price":      "price",
		"capacity":   "capacity",
		"enrolled":   "enrolled",
		"created_at": "created_at",
	}
	defaultOrdering = []core.DBOrdering{{Field: "name", Ascending: true}}
)

type (
	Schedule struct {
		DayOfWeek string `json:"day_of_week" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
		StartTime string `json:"start_time" validate:"required,datetime=15:04"`
		EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	}

	Class struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Type        string    `json:"type"`
		TrainerID   string    `json:"trainer_id"`
		TrainerName string    `json:"trainer_name"`
		Schedule    Schedule  `json:"schedule"`
		Capacity    int       `json:"capacity"`
		Enrolled    int       `json:"enrolled"`
		Location    string    `json:"location"`
		Level       string    `json:"level"`
		Price       float64   `json:"price"`
		Status      string    `json:"status"`
		CreatedAt   time.Time `json:"created_at"` // UTC
	}

	NewClass struct {
		Name        string   `json:"name" validate:"required,notblank"`
		Description string   `json:"description"`
		Type        string   `json:"type" validate:"required,oneof=yoga cardio strength hiit pilates zumba crossfit"`
		TrainerID   string   `json:"trainer_id" validate:"required"`
		Schedule    Schedule `json:"schedule"`
		Capacity    int      `json:"capacity" validate:"min=1,max=200"`
		Location    string   `json:"location" validate:"required,notblank"`
		Level       string   `json:"level" validate:"required,oneof=beginner intermediate advanced all"`
		Price       float64  `json:"price" validate:"min=0"`
	}

	QueryFilter struct {
		Search    string `query:"search"`
		Type      string `query:"type"`
		Level     string `query:"level"`
		TrainerID string `query:"trainer_id"`
		Status    string `query:"status"`
	}

	Repository interface {
		QueryClasses(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Class, int, error)
		GetClassByID(ctx context.Context, id string) (Class, error)
		CreateClass(ctx context.Context, c Class) (Class, error)
		// EnrollMember atomically adds an enrollment, failing with ErrClassFull or ErrAlreadyEnrolled.
		EnrollMember(ctx context.Context, classID, memberID string) (Class, error)
	}

	TrainerFinder interface {
		GetByID(ctx context.Context, id string) (trainer.Trainer, error)
	}

	MemberFinder interface {
		GetByID(ctx context.Context, id string) (member.Member, error)
	}

	Service struct {
		repo     Repository
		trainers TrainerFinder
		members  MemberFinder
		validate *validator.Validate
	}
)

func (c Class) SpotsLeft() int {
	if c.Enrolled >= c.Capacity {
		return 0
	}
	return c.Capacity - c.Enrolled
}

func (c Class) IsFull() bool { return c.SpotsLeft() == 0 }

func (c Class) Record() table.Record {
	return table.Record{
		"id":                   c.ID,
		"name":                 c.Name,
		"type":                 c.Type,
		"trainer_name":         c.TrainerName,
		"schedule.day_of_week": c.Schedule.DayOfWeek,
		"schedule.time":        fmt.Sprintf("%s - %s", c.Schedule.StartTime, c.Schedule.EndTime),
		"capacity":             c.Capacity,
		"enrolled":             c.Enrolled,
		"location":             c.Location,
		"level":                c.Level,
		"price":                c.Price,
		"status":               c.Status,
	}
}

func Records(classes []Class) []table.Record {
	recs := make([]table.Record, 0, len(classes))
	for _, c := range classes {
		recs = append(recs, c.Record())
	}
	return recs
}

func (nc *NewClass) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Type = core.CleanString(nc.Type, true /* lower */)
	nc.Location = core.CleanString(nc.Location)
	nc.Level = core.CleanString(nc.Level, true /* lower */)
	nc.Schedule.DayOfWeek = core.CleanString(nc.Schedule.DayOfWeek, true /* lower */)
	nc.Schedule.StartTime = core.CleanString(nc.Schedule.StartTime)
	nc.Schedule.EndTime = core.CleanString(nc.Schedule.EndTime)
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Type = core.CleanString(qf.Type, true /* lower */)
	qf.Level = core.CleanString(qf.Level, true /* lower */)
	qf.TrainerID = core.CleanString(qf.TrainerID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

func (qf QueryFilter) Match(c Class) bool {
	if qf.Type != "" && c.Type != qf.Type {
		return false
	}
	if qf.Level != "" && c.Level != qf.Level {
		return false
	}
	if qf.TrainerID != "" && c.TrainerID != qf.TrainerID {
		return false
	}
	if qf.Status != "" && c.Status != qf.Status {
		return false
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		return strings.Contains(strings.ToLower(c.Name), s) || strings.Contains(strings.ToLower(c.TrainerName), s)
	}
	return true
}

func NewService(repo Repository, trainers TrainerFinder, members MemberFinder, validate *validator.Validate) *Service {
	return &Service{repo: repo, trainers: trainers, members: members, validate: validate}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Class, int, error) {
	filter.Clean()
	ordering = core.CleanOrdering(ordering, OrderingFields)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	classes, total, err := svc.repo.QueryClasses(ctx, filter, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying classes")
	}
	return classes, total, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	nc.Clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Class{}, err
	}
	if nc.Schedule.EndTime <= nc.Schedule.StartTime {
		return Class{}, core.NewFieldValidationError("end_time", errors.New("end time must be after start time"))
	}

	tr, err := svc.trainers.GetByID(ctx, nc.TrainerID)
	if err != nil {
		if errors.Cause(err) == trainer.ErrNotFound {
			return Class{}, core.NewFieldValidationError("trainer_id", err)
		}
		return Class{}, err
	}

	return svc.repo.CreateClass(ctx, Class{
		ID:          uuid.NewString(),
		Name:        nc.Name,
		Description: nc.Description,
		Type:        nc.Type,
		TrainerID:   tr.ID,
		TrainerName: tr.FullName(),
		Schedule:    nc.Schedule,
		Capacity:    nc.Capacity,
		Location:    nc.Location,
		Level:       nc.Level,
		Price:       nc.Price,
		Status:      StatusActive,
		CreatedAt:   time.Now().UTC(),
	})
}

// Enroll registers a member in a class.
func (svc *Service) Enroll(ctx context.Context, classID, memberID string) (Class, error) {
	c, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return Class{}, err
	}
	if c.Status != StatusActive {
		return Class{}, ErrNotActive
	}

	m, err := svc.members.GetByID(ctx, memberID)
	if err != nil {
		return Class{}, err
	}
	if m.Membership.Status != member.StatusActive {
		return Class{}, core.NewFieldValidationError("member_id", errors.New("membership is not active"))
	}
	return svc.repo.EnrollMember(ctx, c.ID, m.ID)
}
