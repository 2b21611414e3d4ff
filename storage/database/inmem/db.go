// Package inmemdb is a thread safe, in-memory storage for every repository.
// It backs development servers and tests.
package inmemdb

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/trainer"
	"github.com/AI-Fit-GMS/gms/core/user"
)

type (
	DB struct {
		user      *table[user.User]
		member    *table[member.Member]
		trainer   *table[trainer.Trainer]
		class     *classTable
		invoice   *invoiceTable
		equipment *table[equipment.Equipment]
	}

	table[T any] struct {
		sync.RWMutex
		rows map[string]*T
	}

	classTable struct {
		table[gymclass.Class]
		enrollments map[string]map[string]bool // {classID: {memberID}}
	}

	invoiceTable struct {
		table[billing.Invoice]
		payments map[string][]billing.Payment // {invoiceID: payments}
		seqs     map[string]int               // {period: last seq}
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func Open() *DB {
	return &DB{
		user:    newTable[user.User](),
		member:  newTable[member.Member](),
		trainer: newTable[trainer.Trainer](),
		class: &classTable{
			table:       table[gymclass.Class]{rows: make(map[string]*gymclass.Class)},
			enrollments: make(map[string]map[string]bool),
		},
		invoice: &invoiceTable{
			table:    table[billing.Invoice]{rows: make(map[string]*billing.Invoice)},
			payments: make(map[string][]billing.Payment),
			seqs:     make(map[string]int),
		},
		equipment: newTable[equipment.Equipment](),
	}
}

// all returns a copy of the rows ordered by id. Callers hold the lock.
func (t *table[T]) all() []T {
	ids := make([]string, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]T, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, *t.rows[id])
	}
	return rows
}

// queryRows filters, orders and pages rows the way SQL repositories do.
// Ties keep the input order: rows from all() are in id order, as SQL repositories break ties.
// `column` returns the value of a row for an (already whitelisted) ordering column.
func queryRows[T any](rows []T, match func(T) bool, page core.PageRequest, ordering []core.DBOrdering, column func(T, string) interface{}) ([]T, int) {
	filtered := make([]T, 0, len(rows))
	for _, r := range rows {
		if match(r) {
			filtered = append(filtered, r)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := core.CompareValues(column(filtered[i], ord.Field), column(filtered[j], ord.Field))
			if !ok || cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		return false
	})

	total := len(filtered)
	if page.PerPage <= 0 {
		return filtered, total
	}
	start, end := page.Slice(total)
	return filtered[start:end], total
}

func lower(s string) string {
	return strings.ToLower(s)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
