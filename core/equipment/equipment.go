// Package equipment keeps the inventory of the club's machines and gear.
package equipment

import (
	"context"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/table"
)

// Conditions
const (
	ConditionNew           = "New"
	ConditionGood          = "Good"
	ConditionInMaintenance = "In Maintenance"
	ConditionRetired       = "Retired"
)

var (
	// errors
	ErrNotFound = errors.New("equipment not found")

	Conditions = []string{ConditionNew, ConditionGood, ConditionInMaintenance, ConditionRetired}

	OrderingFields = map[string]string{
		"name":          "name",
		"condition":     "condition",
		"purchase_date": "purchase_date",
		"created_at":    "created_at",
	}
	defaultOrdering = []core.DBOrdering{{Field: "name", Ascending: true}}

	conditionTag  = "condition"
	conditionText = "{0} must be one of [New, Good, In Maintenance, Retired]"
)

type (
	Equipment struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Condition    string    `json:"condition"`
		PurchaseDate time.Time `json:"purchase_date"`
		Image        string    `json:"image,omitempty"`
		CreatedAt    time.Time `json:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at"` // UTC
	}

	NewEquipment struct {
		Name         string    `json:"name" validate:"required,notblank"`
		Condition    string    `json:"condition" validate:"required,condition"`
		PurchaseDate time.Time `json:"purchase_date" validate:"required"`
		Image        string    `json:"image" validate:"omitempty,url"`
	}

	UpdateEquipment struct {
		Condition string `json:"condition" validate:"omitempty,condition"`
		Image     string `json:"image" validate:"omitempty,url"`
	}

	QueryFilter struct {
		Search    string `query:"search"`
		Condition string `query:"condition"`
	}

	Repository interface {
		QueryEquipment(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Equipment, int, error)
		GetEquipmentByID(ctx context.Context, id string) (Equipment, error)
		CreateEquipment(ctx context.Context, eq Equipment) (Equipment, error)
		UpdateEquipment(ctx context.Context, eq Equipment) (Equipment, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

// RegisterValidators registers the "condition" validation and its translation.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(conditionTag, func(fl validator.FieldLevel) bool {
		return ValidCondition(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, conditionTag, conditionText)
}

func ValidCondition(c string) bool {
	for _, cond := range Conditions {
		if c == cond {
			return true
		}
	}
	return false
}

func (eq Equipment) Record() table.Record {
	return table.Record{
		"id":            eq.ID,
		"name":          eq.Name,
		"condition":     eq.Condition,
		"purchase_date": eq.PurchaseDate,
		"created_at":    eq.CreatedAt,
		"updated_at":    eq.UpdatedAt,
	}
}

func Records(items []Equipment) []table.Record {
	recs := make([]table.Record, 0, len(items))
	for _, eq := range items {
		recs = append(recs, eq.Record())
	}
	return recs
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Condition = core.CleanString(qf.Condition)
}

func (qf QueryFilter) Match(eq Equipment) bool {
	if qf.Condition != "" && !strings.EqualFold(eq.Condition, qf.Condition) {
		return false
	}
	if qf.Search != "" {
		return strings.Contains(strings.ToLower(eq.Name), strings.ToLower(qf.Search))
	}
	return true
}

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Equipment, int, error) {
	filter.Clean()
	ordering = core.CleanOrdering(ordering, OrderingFields)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	items, total, err := svc.repo.QueryEquipment(ctx, filter, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying equipment")
	}
	return items, total, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Equipment, error) {
	return svc.repo.GetEquipmentByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ne NewEquipment) (Equipment, error) {
	ne.Name = core.CleanString(ne.Name)
	ne.Condition = core.CleanString(ne.Condition)
	ne.Image = core.CleanString(ne.Image)
	if err := svc.validate.Struct(ne); err != nil {
		return Equipment{}, err
	}

	now := time.Now().UTC()
	return svc.repo.CreateEquipment(ctx, Equipment{
		ID:           uuid.NewString(),
		Name:         ne.Name,
		Condition:    ne.Condition,
		PurchaseDate: ne.PurchaseDate.UTC(),
		Image:        ne.Image,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateEquipment) (Equipment, error) {
	ue.Condition = core.CleanString(ue.Condition)
	ue.Image = core.CleanString(ue.Image)
	if err := svc.validate.Struct(ue); err != nil {
		return Equipment{}, err
	}

	eq, err := svc.repo.GetEquipmentByID(ctx, id)
	if err != nil {
		return Equipment{}, err
	}
	if ue.Condition != "" {
		eq.Condition = ue.Condition
	}
	if ue.Image != "" {
		eq.Image = ue.Image
	}
	eq.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEquipment(ctx, eq)
}
