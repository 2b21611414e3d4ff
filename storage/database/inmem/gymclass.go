package inmemdb

import (
	"context"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
)

type classRepository struct {
	db *classTable
}

var _ gymclass.Repository = (*classRepository)(nil)

func NewClassRepository(db *DB) gymclass.Repository {
	return &classRepository{db: db.class}
}

func classColumn(c gymclass.Class, col string) interface{} {
	switch col {
	case "name":
		return c.Name
	case "type":
		return c.Type
	case "level":
		return c.Level
	case "price":
		return c.Price
	case "capacity":
		return c.Capacity
	case "enrolled":
		return c.Enrolled
	case "created_at":
		return c.CreatedAt
	}
	return nil
}

func (repo *classRepository) QueryClasses(_ context.Context, filter gymclass.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]gymclass.Class, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes, total := queryRows(repo.db.all(), filter.Match, page, ordering, classColumn)
	return classes, total, nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id string) (gymclass.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.rows[id]; ok {
		return *c, nil
	}
	return gymclass.Class{}, gymclass.ErrNotFound
}

func (repo *classRepository) CreateClass(_ context.Context, c gymclass.Class) (gymclass.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows[c.ID] = &c
	repo.db.enrollments[c.ID] = make(map[string]bool)
	return c, nil
}

func (repo *classRepository) EnrollMember(_ context.Context, classID, memberID string) (gymclass.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.rows[classID]
	if !ok {
		return gymclass.Class{}, gymclass.ErrNotFound
	}
	enrolled := repo.db.enrollments[classID]
	if enrolled[memberID] {
		return gymclass.Class{}, gymclass.ErrAlreadyEnrolled
	}
	if c.IsFull() {
		return gymclass.Class{}, gymclass.ErrClassFull
	}

	if enrolled == nil {
		enrolled = make(map[string]bool)
		repo.db.enrollments[classID] = enrolled
	}
	enrolled[memberID] = true
	c.Enrolled++
	return *c, nil
}
