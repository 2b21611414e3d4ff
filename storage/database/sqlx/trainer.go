package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/trainer"
)

const trainerColumns = `id, first_name, last_name, email, phone, specialization, experience, certifications,
	hourly_rate, status, rating, created_at`

type trainerRow struct {
	ID             string      `db:"id"`
	FirstName      string      `db:"first_name"`
	LastName       string      `db:"last_name"`
	Email          string      `db:"email"`
	Phone          null.String `db:"phone"`
	Specialization string      `db:"specialization"`
	Experience     int         `db:"experience"`
	Certifications string      `db:"certifications"`
	HourlyRate     float64     `db:"hourly_rate"`
	Status         string      `db:"status"`
	Rating         float64     `db:"rating"`
	CreatedAt      time.Time   `db:"created_at"`
}

func (r trainerRow) trainer() trainer.Trainer {
	return trainer.Trainer{
		ID:             r.ID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone.String,
		Specialization: splitList(r.Specialization),
		Experience:     r.Experience,
		Certifications: splitList(r.Certifications),
		HourlyRate:     r.HourlyRate,
		Status:         r.Status,
		Rating:         r.Rating,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

type trainerRepository struct {
	db *sqlx.DB
}

var _ trainer.Repository = (*trainerRepository)(nil)

func NewTrainerRepository(db *sqlx.DB) trainer.Repository {
	return &trainerRepository{db: db}
}

func (repo *trainerRepository) QueryTrainers(ctx context.Context, filter trainer.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]trainer.Trainer, int, error) {
	w := new(where)
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Specialization != "" {
		w.add("(',' || LOWER(specialization) || ',') LIKE ?", "%,"+strings.ToLower(filter.Specialization)+",%")
	}
	w.search(filter.Search, "first_name || ' ' || last_name", "email")

	var rows []trainerRow
	total, err := queryPage(ctx, repo.db, &rows, trainerColumns, "trainers", w, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying trainers")
	}
	trainers := make([]trainer.Trainer, 0, len(rows))
	for _, r := range rows {
		trainers = append(trainers, r.trainer())
	}
	return trainers, total, nil
}

func (repo *trainerRepository) get(ctx context.Context, cond string, arg interface{}) (trainer.Trainer, error) {
	var row trainerRow
	if err := getOne(ctx, repo.db, &row, trainer.ErrNotFound, "SELECT "+trainerColumns+" FROM trainers WHERE "+cond, arg); err != nil {
		return trainer.Trainer{}, err
	}
	return row.trainer(), nil
}

func (repo *trainerRepository) GetTrainerByID(ctx context.Context, id string) (trainer.Trainer, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo *trainerRepository) GetTrainerByEmail(ctx context.Context, email string) (trainer.Trainer, error) {
	return repo.get(ctx, "email = ?", email)
}

func (repo *trainerRepository) CreateTrainer(ctx context.Context, t trainer.Trainer) (trainer.Trainer, error) {
	q := repo.db.Rebind(`INSERT INTO trainers (` + trainerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		t.ID, t.FirstName, t.LastName, t.Email, null.NewString(t.Phone, t.Phone != ""),
		joinList(t.Specialization), t.Experience, joinList(t.Certifications),
		t.HourlyRate, t.Status, t.Rating, t.CreatedAt.UTC())
	if err != nil {
		return trainer.Trainer{}, errors.Wrap(err, "inserting trainer")
	}
	return t, nil
}
