package inmemdb

import (
	"context"
	"time"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/member"
)

type memberRepository struct {
	db *table[member.Member]
}

var _ member.Repository = (*memberRepository)(nil)

func NewMemberRepository(db *DB) member.Repository {
	return &memberRepository{db: db.member}
}

func memberColumn(m member.Member, col string) interface{} {
	switch col {
	case "first_name":
		return m.FirstName
	case "last_name":
		return m.LastName
	case "email":
		return m.Email
	case "created_at":
		return m.CreatedAt
	case "membership_type":
		return m.Membership.Type
	case "membership_status":
		return m.Membership.Status
	case "membership_end_date":
		return m.Membership.EndDate
	}
	return nil
}

func (repo *memberRepository) QueryMembers(_ context.Context, filter member.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]member.Member, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members, total := queryRows(repo.db.all(), filter.Match, page, ordering, memberColumn)
	return members, total, nil
}

func (repo *memberRepository) GetMemberByID(_ context.Context, id string) (member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.rows[id]; ok {
		return *m, nil
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) GetMemberByEmail(_ context.Context, email string) (member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, m := range repo.db.rows {
		if m.Email == email {
			return *m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) CreateMember(_ context.Context, m member.Member) (member.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *memberRepository) UpdateMember(_ context.Context, m member.Member) (member.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[m.ID]; !ok {
		return member.Member{}, member.ErrNotFound
	}
	repo.db.rows[m.ID] = &m
	return m, nil
}

func (repo *memberRepository) DeleteMember(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return member.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}

func (repo *memberRepository) CountMembersByStatus(_ context.Context) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, m := range repo.db.rows {
		counts[m.Membership.Status]++
	}
	return counts, nil
}

func (repo *memberRepository) ExpireMemberships(_ context.Context, now time.Time) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, m := range repo.db.rows {
		if m.IsExpired(now) {
			m.Membership.Status = member.StatusExpired
			m.UpdatedAt = now
			n++
		}
	}
	return n, nil
}
