package inmemdb

import (
	"context"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/trainer"
)

type trainerRepository struct {
	db *table[trainer.Trainer]
}

var _ trainer.Repository = (*trainerRepository)(nil)

func NewTrainerRepository(db *DB) trainer.Repository {
	return &trainerRepository{db: db.trainer}
}

func trainerColumn(t trainer.Trainer, col string) interface{} {
	switch col {
	case "first_name":
		return t.FirstName
	case "last_name":
		return t.LastName
	case "experience":
		return t.Experience
	case "hourly_rate":
		return t.HourlyRate
	case "rating":
		return t.Rating
	case "created_at":
		return t.CreatedAt
	}
	return nil
}

func (repo *trainerRepository) QueryTrainers(_ context.Context, filter trainer.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]trainer.Trainer, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	trainers, total := queryRows(repo.db.all(), filter.Match, page, ordering, trainerColumn)
	return trainers, total, nil
}

func (repo *trainerRepository) GetTrainerByID(_ context.Context, id string) (trainer.Trainer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.rows[id]; ok {
		return *t, nil
	}
	return trainer.Trainer{}, trainer.ErrNotFound
}

func (repo *trainerRepository) GetTrainerByEmail(_ context.Context, email string) (trainer.Trainer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.rows {
		if t.Email == email {
			return *t, nil
		}
	}
	return trainer.Trainer{}, trainer.ErrNotFound
}

func (repo *trainerRepository) CreateTrainer(_ context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows[t.ID] = &t
	return t, nil
}
