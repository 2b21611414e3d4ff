package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/member"
)

const memberColumns = `id, first_name, last_name, email, phone, date_of_birth, gender, address,
	membership_type, membership_status, membership_start_date, membership_end_date, membership_auto_renew,
	created_at, updated_at`

type memberRow struct {
	ID                  string      `db:"id"`
	FirstName           string      `db:"first_name"`
	LastName            string      `db:"last_name"`
	Email               string      `db:"email"`
	Phone               null.String `db:"phone"`
	DateOfBirth         null.Time   `db:"date_of_birth"`
	Gender              null.String `db:"gender"`
	Address             null.String `db:"address"`
	MembershipType      string      `db:"membership_type"`
	MembershipStatus    string      `db:"membership_status"`
	MembershipStartDate time.Time   `db:"membership_start_date"`
	MembershipEndDate   time.Time   `db:"membership_end_date"`
	MembershipAutoRenew bool        `db:"membership_auto_renew"`
	CreatedAt           time.Time   `db:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at"`
}

func newMemberRow(m member.Member) memberRow {
	return memberRow{
		ID:                  m.ID,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		Email:               m.Email,
		Phone:               null.NewString(m.Phone, m.Phone != ""),
		DateOfBirth:         null.NewTime(m.DateOfBirth.UTC(), !m.DateOfBirth.IsZero()),
		Gender:              null.NewString(m.Gender, m.Gender != ""),
		Address:             null.NewString(m.Address, m.Address != ""),
		MembershipType:      m.Membership.Type,
		MembershipStatus:    m.Membership.Status,
		MembershipStartDate: m.Membership.StartDate.UTC(),
		MembershipEndDate:   m.Membership.EndDate.UTC(),
		MembershipAutoRenew: m.Membership.AutoRenew,
		CreatedAt:           m.CreatedAt.UTC(),
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
}

func (r memberRow) member() member.Member {
	m := member.Member{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone.String,
		Gender:    r.Gender.String,
		Address:   r.Address.String,
		Membership: member.Membership{
			Type:      r.MembershipType,
			Status:    r.MembershipStatus,
			StartDate: r.MembershipStartDate.UTC(),
			EndDate:   r.MembershipEndDate.UTC(),
			AutoRenew: r.MembershipAutoRenew,
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.DateOfBirth.Valid {
		m.DateOfBirth = r.DateOfBirth.Time.UTC()
	}
	return m
}

type memberRepository struct {
	db *sqlx.DB
}

var _ member.Repository = (*memberRepository)(nil)

func NewMemberRepository(db *sqlx.DB) member.Repository {
	return &memberRepository{db: db}
}

func (repo *memberRepository) QueryMembers(ctx context.Context, filter member.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]member.Member, int, error) {
	w := new(where)
	if filter.Status != "" {
		w.add("membership_status = ?", filter.Status)
	}
	if filter.Type != "" {
		w.add("membership_type = ?", filter.Type)
	}
	w.search(filter.Search, "first_name || ' ' || last_name", "email")

	var rows []memberRow
	total, err := queryPage(ctx, repo.db, &rows, memberColumns, "members", w, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying members")
	}
	members := make([]member.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.member())
	}
	return members, total, nil
}

func (repo *memberRepository) get(ctx context.Context, cond string, arg interface{}) (member.Member, error) {
	var row memberRow
	if err := getOne(ctx, repo.db, &row, member.ErrNotFound, "SELECT "+memberColumns+" FROM members WHERE "+cond, arg); err != nil {
		return member.Member{}, err
	}
	return row.member(), nil
}

func (repo *memberRepository) GetMemberByID(ctx context.Context, id string) (member.Member, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo *memberRepository) GetMemberByEmail(ctx context.Context, email string) (member.Member, error) {
	return repo.get(ctx, "email = ?", email)
}

func (repo *memberRepository) CreateMember(ctx context.Context, m member.Member) (member.Member, error) {
	q := `INSERT INTO members (` + memberColumns + `)
		VALUES (:id, :first_name, :last_name, :email, :phone, :date_of_birth, :gender, :address,
			:membership_type, :membership_status, :membership_start_date, :membership_end_date, :membership_auto_renew,
			:created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newMemberRow(m)); err != nil {
		return member.Member{}, errors.Wrap(err, "inserting member")
	}
	return m, nil
}

func (repo *memberRepository) UpdateMember(ctx context.Context, m member.Member) (member.Member, error) {
	r := newMemberRow(m)
	q := `UPDATE members SET first_name = ?, last_name = ?, email = ?, phone = ?, date_of_birth = ?, gender = ?, address = ?,
		membership_type = ?, membership_status = ?, membership_start_date = ?, membership_end_date = ?,
		membership_auto_renew = ?, updated_at = ?
		WHERE id = ?`
	err := execOne(ctx, repo.db, member.ErrNotFound, q,
		r.FirstName, r.LastName, r.Email, r.Phone, r.DateOfBirth, r.Gender, r.Address,
		r.MembershipType, r.MembershipStatus, r.MembershipStartDate, r.MembershipEndDate,
		r.MembershipAutoRenew, r.UpdatedAt, r.ID)
	if err != nil {
		return member.Member{}, err
	}
	return m, nil
}

func (repo *memberRepository) DeleteMember(ctx context.Context, id string) error {
	return execOne(ctx, repo.db, member.ErrNotFound, "DELETE FROM members WHERE id = ?", id)
}

func (repo *memberRepository) CountMembersByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string `db:"membership_status"`
		Count  int    `db:"n"`
	}
	q := "SELECT membership_status, COUNT(*) AS n FROM members GROUP BY membership_status"
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "counting members")
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

func (repo *memberRepository) ExpireMemberships(ctx context.Context, now time.Time) (int, error) {
	q := repo.db.Rebind(`UPDATE members SET membership_status = ?, updated_at = ?
		WHERE membership_status = ? AND membership_end_date < ?`)
	res, err := repo.db.ExecContext(ctx, q, member.StatusExpired, now.UTC(), member.StatusActive, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "expiring memberships")
	}
	n, err := res.RowsAffected()
	return int(n), err
}
