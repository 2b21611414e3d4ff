package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/equipment"
)

const equipmentColumns = "id, name, condition, purchase_date, image, created_at, updated_at"

type equipmentRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Condition    string    `db:"condition"`
	PurchaseDate time.Time `db:"purchase_date"`
	Image        string    `db:"image"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r equipmentRow) equipment() equipment.Equipment {
	return equipment.Equipment{
		ID:           r.ID,
		Name:         r.Name,
		Condition:    r.Condition,
		PurchaseDate: r.PurchaseDate.UTC(),
		Image:        r.Image,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type equipmentRepository struct {
	db *sqlx.DB
}

var _ equipment.Repository = (*equipmentRepository)(nil)

func NewEquipmentRepository(db *sqlx.DB) equipment.Repository {
	return &equipmentRepository{db: db}
}

func (repo *equipmentRepository) QueryEquipment(ctx context.Context, filter equipment.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]equipment.Equipment, int, error) {
	w := new(where)
	if filter.Condition != "" {
		w.add("LOWER(condition) = LOWER(?)", filter.Condition)
	}
	w.search(filter.Search, "name")

	var rows []equipmentRow
	total, err := queryPage(ctx, repo.db, &rows, equipmentColumns, "equipment", w, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying equipment")
	}
	items := make([]equipment.Equipment, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.equipment())
	}
	return items, total, nil
}

func (repo *equipmentRepository) GetEquipmentByID(ctx context.Context, id string) (equipment.Equipment, error) {
	var row equipmentRow
	if err := getOne(ctx, repo.db, &row, equipment.ErrNotFound, "SELECT "+equipmentColumns+" FROM equipment WHERE id = ?", id); err != nil {
		return equipment.Equipment{}, err
	}
	return row.equipment(), nil
}

func (repo *equipmentRepository) CreateEquipment(ctx context.Context, eq equipment.Equipment) (equipment.Equipment, error) {
	q := repo.db.Rebind("INSERT INTO equipment (" + equipmentColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?)")
	_, err := repo.db.ExecContext(ctx, q,
		eq.ID, eq.Name, eq.Condition, eq.PurchaseDate.UTC(), eq.Image, eq.CreatedAt.UTC(), eq.UpdatedAt.UTC())
	if err != nil {
		return equipment.Equipment{}, errors.Wrap(err, "inserting equipment")
	}
	return eq, nil
}

func (repo *equipmentRepository) UpdateEquipment(ctx context.Context, eq equipment.Equipment) (equipment.Equipment, error) {
	err := execOne(ctx, repo.db, equipment.ErrNotFound,
		"UPDATE equipment SET name = ?, condition = ?, purchase_date = ?, image = ?, updated_at = ? WHERE id = ?",
		eq.Name, eq.Condition, eq.PurchaseDate.UTC(), eq.Image, eq.UpdatedAt.UTC(), eq.ID)
	if err != nil {
		return equipment.Equipment{}, err
	}
	return eq, nil
}
