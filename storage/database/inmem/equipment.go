package inmemdb

import (
	"context"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/equipment"
)

type equipmentRepository struct {
	db *table[equipment.Equipment]
}

var _ equipment.Repository = (*equipmentRepository)(nil)

func NewEquipmentRepository(db *DB) equipment.Repository {
	return &equipmentRepository{db: db.equipment}
}

// NewMockEquipmentRepository returns a standalone repository holding the built-in mock inventory.
func NewMockEquipmentRepository() equipment.Repository {
	t := newTable[equipment.Equipment]()
	for _, eq := range equipment.MockEquipment() {
		eq := eq
		t.rows[eq.ID] = &eq
	}
	return &equipmentRepository{db: t}
}

func equipmentColumn(eq equipment.Equipment, col string) interface{} {
	switch col {
	case "name":
		return eq.Name
	case "condition":
		return eq.Condition
	case "purchase_date":
		return eq.PurchaseDate
	case "created_at":
		return eq.CreatedAt
	}
	return nil
}

func (repo *equipmentRepository) QueryEquipment(_ context.Context, filter equipment.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]equipment.Equipment, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items, total := queryRows(repo.db.all(), filter.Match, page, ordering, equipmentColumn)
	return items, total, nil
}

func (repo *equipmentRepository) GetEquipmentByID(_ context.Context, id string) (equipment.Equipment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if eq, ok := repo.db.rows[id]; ok {
		return *eq, nil
	}
	return equipment.Equipment{}, equipment.ErrNotFound
}

func (repo *equipmentRepository) CreateEquipment(_ context.Context, eq equipment.Equipment) (equipment.Equipment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows[eq.ID] = &eq
	return eq, nil
}

func (repo *equipmentRepository) UpdateEquipment(_ context.Context, eq equipment.Equipment) (equipment.Equipment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[eq.ID]; !ok {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	repo.db.rows[eq.ID] = &eq
	return eq, nil
}
