package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
)

const classColumns = `id, name, description, type, trainer_id, trainer_name, day_of_week, start_time, end_time,
	capacity, enrolled, location, level, price, status, created_at`

type classRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Type        string    `db:"type"`
	TrainerID   string    `db:"trainer_id"`
	TrainerName string    `db:"trainer_name"`
	DayOfWeek   string    `db:"day_of_week"`
	StartTime   string    `db:"start_time"`
	EndTime     string    `db:"end_time"`
	Capacity    int       `db:"capacity"`
	Enrolled    int       `db:"enrolled"`
	Location    string    `db:"location"`
	Level       string    `db:"level"`
	Price       float64   `db:"price"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r classRow) class() gymclass.Class {
	return gymclass.Class{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		TrainerID:   r.TrainerID,
		TrainerName: r.TrainerName,
		Schedule: gymclass.Schedule{
			DayOfWeek: r.DayOfWeek,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		},
		Capacity:  r.Capacity,
		Enrolled:  r.Enrolled,
		Location:  r.Location,
		Level:     r.Level,
		Price:     r.Price,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type classRepository struct {
	db *sqlx.DB
}

var _ gymclass.Repository = (*classRepository)(nil)

func NewClassRepository(db *sqlx.DB) gymclass.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) QueryClasses(ctx context.Context, filter gymclass.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]gymclass.Class, int, error) {
	w := new(where)
	if filter.Type != "" {
		w.add("type = ?", filter.Type)
	}
	if filter.Level != "" {
		w.add("level = ?", filter.Level)
	}
	if filter.TrainerID != "" {
		w.add("trainer_id = ?", filter.TrainerID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	w.search(filter.Search, "name", "trainer_name")

	var rows []classRow
	total, err := queryPage(ctx, repo.db, &rows, classColumns, "classes", w, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying classes")
	}
	classes := make([]gymclass.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.class())
	}
	return classes, total, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id string) (gymclass.Class, error) {
	var row classRow
	if err := getOne(ctx, repo.db, &row, gymclass.ErrNotFound, "SELECT "+classColumns+" FROM classes WHERE id = ?", id); err != nil {
		return gymclass.Class{}, err
	}
	return row.class(), nil
}

func (repo *classRepository) CreateClass(ctx context.Context, c gymclass.Class) (gymclass.Class, error) {
	q := repo.db.Rebind(`INSERT INTO classes (` + classColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := repo.db.ExecContext(ctx, q,
		c.ID, c.Name, c.Description, c.Type, c.TrainerID, c.TrainerName,
		c.Schedule.DayOfWeek, c.Schedule.StartTime, c.Schedule.EndTime,
		c.Capacity, c.Enrolled, c.Location, c.Level, c.Price, c.Status, c.CreatedAt.UTC())
	if err != nil {
		return gymclass.Class{}, errors.Wrap(err, "inserting class")
	}
	return c, nil
}

func (repo *classRepository) EnrollMember(ctx context.Context, classID, memberID string) (gymclass.Class, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var n int
		q := tx.Rebind("SELECT COUNT(*) FROM class_enrollments WHERE class_id = ? AND member_id = ?")
		if err := tx.GetContext(ctx, &n, q, classID, memberID); err != nil {
			return errors.Wrap(err, "checking enrollment")
		}
		if n > 0 {
			return gymclass.ErrAlreadyEnrolled
		}

		// the capacity guard lives in the UPDATE so concurrent enrollments cannot overbook
		err := execOne(ctx, tx, gymclass.ErrClassFull,
			"UPDATE classes SET enrolled = enrolled + 1 WHERE id = ? AND enrolled < capacity", classID)
		if err != nil {
			return err
		}

		q = tx.Rebind("INSERT INTO class_enrollments (class_id, member_id, enrolled_at) VALUES (?, ?, ?)")
		_, err = tx.ExecContext(ctx, q, classID, memberID, time.Now().UTC())
		return errors.Wrap(err, "inserting enrollment")
	})
	if err != nil {
		return gymclass.Class{}, err
	}
	return repo.GetClassByID(ctx, classID)
}
