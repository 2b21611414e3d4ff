// Package trainer manages the club's trainers.
package trainer

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/table"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusOnLeave  = "on_leave"
)

var (
	// errors
	ErrNotFound    = errors.New("trainer not found")
	ErrEmailExists = errors.New("a trainer with this email already exists")

	OrderingFields = map[string]string{
		"first_name":  "first_name",
		"last_name":   "last_name",
		"experience":  "experience",
		"hourly_rate": "hourly_rate",
		"rating":      "rating",
		"created_at":  "created_at",
	}
	defaultOrdering = []core.DBOrdering{{Field: "last_name", Ascending: true}, {Field: "first_name", Ascending: true}}
)

type (
	Trainer struct {
		ID             string    `json:"id"`
		FirstName      string    `json:"first_name"`
		LastName       string    `json:"last_name"`
		Email          string    `json:"email"`
		Phone          string    `json:"phone"`
		Specialization []string  `json:"specialization"`
		Experience     int       `json:"experience"` // years
		Certifications []string  `json:"certifications"`
		HourlyRate     float64   `json:"hourly_rate"`
		Status         string    `json:"status"`
		Rating         float64   `json:"rating"`
		CreatedAt      time.Time `json:"created_at"` // UTC
	}

	NewTrainer struct {
		FirstName      string   `json:"first_name" validate:"required,notblank"`
		LastName       string   `json:"last_name" validate:"required,notblank"`
		Email          string   `json:"email" validate:"required,email"`
		Phone          string   `json:"phone" validate:"omitempty,phone"`
		Specialization []string `json:"specialization" validate:"required,min=1,dive,notblank"`
		Experience     int      `json:"experience" validate:"min=0,max=60"`
		Certifications []string `json:"certifications" validate:"omitempty,dive,notblank"`
		HourlyRate     float64  `json:"hourly_rate" validate:"gt=0"`
	}

	QueryFilter struct {
		Search         string `query:"search"`
		Status         string `query:"status"`
		Specialization string `query:"specialization"`
	}

	Repository interface {
		QueryTrainers(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Trainer, int, error)
		GetTrainerByID(ctx context.Context, id string) (Trainer, error)
		GetTrainerByEmail(ctx context.Context, email string) (Trainer, error)
		CreateTrainer(ctx context.Context, t Trainer) (Trainer, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func (t Trainer) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

func (t Trainer) Record() table.Record {
	return table.Record{
		"id":             t.ID,
		"name":           t.FullName(),
		"first_name":     t.FirstName,
		"last_name":      t.LastName,
		"email":          t.Email,
		"phone":          t.Phone,
		"specialization": strings.Join(t.Specialization, ", "),
		"experience":     t.Experience,
		"hourly_rate":    t.HourlyRate,
		"status":         t.Status,
		"rating":         t.Rating,
		"created_at":     t.CreatedAt,
	}
}

func Records(trainers []Trainer) []table.Record {
	recs := make([]table.Record, 0, len(trainers))
	for _, t := range trainers {
		recs = append(recs, t.Record())
	}
	return recs
}

func (nt *NewTrainer) Clean() {
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = core.CleanString(nt.Phone)
	for i := range nt.Specialization {
		nt.Specialization[i] = core.CleanString(nt.Specialization[i])
	}
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Specialization = core.CleanString(qf.Specialization, true /* lower */)
}

func (qf QueryFilter) Match(t Trainer) bool {
	if qf.Status != "" && t.Status != qf.Status {
		return false
	}
	if qf.Specialization != "" {
		var found bool
		for _, s := range t.Specialization {
			if strings.ToLower(s) == qf.Specialization {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		return strings.Contains(strings.ToLower(t.FullName()), s) || strings.Contains(t.Email, s)
	}
	return true
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Trainer, int, error) {
	filter.Clean()
	ordering = core.CleanOrdering(ordering, OrderingFields)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	trainers, total, err := svc.repo.QueryTrainers(ctx, filter, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying trainers")
	}
	return trainers, total, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Trainer, error) {
	return svc.repo.GetTrainerByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, nt NewTrainer) (Trainer, error) {
	nt.Clean()
	if err := svc.validate.Struct(nt); err != nil {
		return Trainer{}, err
	}
	_, err := svc.repo.GetTrainerByEmail(ctx, nt.Email)
	switch errors.Cause(err) {
	case nil:
		return Trainer{}, core.NewFieldValidationError("email", ErrEmailExists)
	case ErrNotFound:
	default:
		return Trainer{}, err
	}

	return svc.repo.CreateTrainer(ctx, Trainer{
		ID:             uuid.NewString(),
		FirstName:      nt.FirstName,
		LastName:       nt.LastName,
		Email:          nt.Email,
		Phone:          nt.Phone,
		Specialization: nt.Specialization,
		Experience:     nt.Experience,
		Certifications: nt.Certifications,
		HourlyRate:     nt.HourlyRate,
		Status:         StatusActive,
		CreatedAt:      time.Now().UTC(),
	})
}
