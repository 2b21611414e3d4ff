package equipment

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"net"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
)

// fallbackRepository serves the fallback repository whenever the primary one cannot be reached.
type fallbackRepository struct {
	primary  Repository
	fallback Repository
	logger   core.Logger
}

var _ Repository = (*fallbackRepository)(nil)

func NewFallbackRepository(primary, fallback Repository, logger core.Logger) Repository {
	return &fallbackRepository{primary: primary, fallback: fallback, logger: logger}
}

// IsUnreachable tells whether err means the storage could not be reached at all.
func IsUnreachable(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, syscall.ECONNREFUSED)
}

func (repo *fallbackRepository) useFallback(op string, err error) bool {
	if !IsUnreachable(err) {
		return false
	}
	repo.logger.Warn("equipment storage unreachable, serving mock data", map[string]interface{}{"op": op}, err)
	return true
}

func (repo *fallbackRepository) QueryEquipment(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Equipment, int, error) {
	items, total, err := repo.primary.QueryEquipment(ctx, filter, page, ordering)
	if repo.useFallback("query", err) {
		return repo.fallback.QueryEquipment(ctx, filter, page, ordering)
	}
	return items, total, err
}

func (repo *fallbackRepository) GetEquipmentByID(ctx context.Context, id string) (Equipment, error) {
	eq, err := repo.primary.GetEquipmentByID(ctx, id)
	if repo.useFallback("get", err) {
		return repo.fallback.GetEquipmentByID(ctx, id)
	}
	return eq, err
}

func (repo *fallbackRepository) CreateEquipment(ctx context.Context, eq Equipment) (Equipment, error) {
	created, err := repo.primary.CreateEquipment(ctx, eq)
	if repo.useFallback("create", err) {
		return repo.fallback.CreateEquipment(ctx, eq)
	}
	return created, err
}

func (repo *fallbackRepository) UpdateEquipment(ctx context.Context, eq Equipment) (Equipment, error) {
	updated, err := repo.primary.UpdateEquipment(ctx, eq)
	if repo.useFallback("update", err) {
		return repo.fallback.UpdateEquipment(ctx, eq)
	}
	return updated, err
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func timestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// MockEquipment is the built-in inventory served when the storage is unreachable.
func MockEquipment() []Equipment {
	return []Equipment{
		{ID: "1", Name: "Treadmill Pro 3000", Condition: ConditionGood, PurchaseDate: date("2023-01-15"), CreatedAt: timestamp("2023-01-15T10:00:00Z"), UpdatedAt: timestamp("2023-01-15T10:00:00Z")},
		{ID: "2", Name: "Adjustable Bench", Condition: ConditionNew, PurchaseDate: date("2024-03-20"), CreatedAt: timestamp("2024-03-20T10:00:00Z"), UpdatedAt: timestamp("2024-03-20T10:00:00Z")},
		{ID: "3", Name: "Dumbbell Set (5-50 lbs)", Condition: ConditionGood, PurchaseDate: date("2022-11-10"), CreatedAt: timestamp("2022-11-10T10:00:00Z"), UpdatedAt: timestamp("2022-11-10T10:00:00Z")},
		{ID: "4", Name: "Elliptical Machine", Condition: ConditionInMaintenance, PurchaseDate: date("2021-08-05"), CreatedAt: timestamp("2021-08-05T10:00:00Z"), UpdatedAt: timestamp("2024-01-10T10:00:00Z")},
		{ID: "5", Name: "Rowing Machine", Condition: ConditionGood, PurchaseDate: date("2023-06-12"), CreatedAt: timestamp("2023-06-12T10:00:00Z"), UpdatedAt: timestamp("2023-06-12T10:00:00Z")},
	}
}
