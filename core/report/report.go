// Package report computes the dashboard analytics (revenue, member growth, class attendance)
// from the club's repositories.
package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/trainer"
)

const (
	MaxMonths     = 24
	MaxActivities = 50

	monthLayout = "2006-01"

	ActivityMemberJoined  = "member_joined"
	ActivityInvoiceIssued = "invoice_issued"
	ActivityInvoicePaid   = "invoice_paid"
)

var ErrInvalidPeriod = errors.Errorf("period must end after it starts and span at most %d months", MaxMonths)

type (
	Overview struct {
		Members             member.Stats `json:"members"`
		ActiveTrainers      int          `json:"active_trainers"`
		ClassesToday        int          `json:"classes_today"`
		RevenueThisMonth    float64      `json:"revenue_this_month"`
		OutstandingInvoices int          `json:"outstanding_invoices"`
		OutstandingAmount   float64      `json:"outstanding_amount"`
	}

	MonthlyRevenue struct {
		Month    string  `json:"month"` // yyyy-mm
		Revenue  float64 `json:"revenue"`
		Invoices int     `json:"invoices"`
	}

	MonthlyGrowth struct {
		Month        string `json:"month"` // yyyy-mm
		NewMembers   int    `json:"new_members"`
		TotalMembers int    `json:"total_members"`
	}

	ClassAttendance struct {
		ClassID   string  `json:"class_id"`
		ClassName string  `json:"class_name"`
		DayOfWeek string  `json:"day_of_week"`
		Enrolled  int     `json:"enrolled"`
		Capacity  int     `json:"capacity"`
		FillRate  float64 `json:"fill_rate"` // percent
	}

	Activity struct {
		Kind        string    `json:"kind"`
		Description string    `json:"description"`
		At          time.Time `json:"at"` // UTC
	}

	Service struct {
		members  member.Repository
		trainers trainer.Repository
		classes  gymclass.Repository
		invoices billing.Repository
	}
)

func NewService(members member.Repository, trainers trainer.Repository, classes gymclass.Repository, invoices billing.Repository) *Service {
	return &Service{members: members, trainers: trainers, classes: classes, invoices: invoices}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// LastMonths returns the period of the n months ending with the month of now.
func LastMonths(now time.Time, n int) (from, to time.Time) {
	to = monthStart(now)
	return to.AddDate(0, -(n - 1), 0), to
}

// months returns the first day of every month from the month of `from` to the month of `to`.
func months(from, to time.Time) ([]time.Time, error) {
	first, last := monthStart(from), monthStart(to)
	if last.Before(first) {
		return nil, core.NewFieldValidationError("end_date", ErrInvalidPeriod)
	}
	var out []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		if len(out) == MaxMonths {
			return nil, core.NewFieldValidationError("end_date", ErrInvalidPeriod)
		}
		out = append(out, m)
	}
	return out, nil
}

func (svc *Service) allMembers(ctx context.Context) ([]member.Member, error) {
	members, _, err := svc.members.QueryMembers(ctx, member.QueryFilter{}, core.PageRequest{}, nil)
	return members, errors.Wrap(err, "querying members")
}

func (svc *Service) Overview(ctx context.Context, now time.Time) (Overview, error) {
	var ov Overview

	counts, err := svc.members.CountMembersByStatus(ctx)
	if err != nil {
		return Overview{}, errors.Wrap(err, "counting members")
	}
	ov.Members = member.StatsFromCounts(counts)

	_, ov.ActiveTrainers, err = svc.trainers.QueryTrainers(ctx, trainer.QueryFilter{Status: trainer.StatusActive}, core.PageRequest{}, nil)
	if err != nil {
		return Overview{}, errors.Wrap(err, "counting trainers")
	}

	classes, _, err := svc.classes.QueryClasses(ctx, gymclass.QueryFilter{Status: gymclass.StatusActive}, core.PageRequest{}, nil)
	if err != nil {
		return Overview{}, errors.Wrap(err, "querying classes")
	}
	today := strings.ToLower(now.UTC().Weekday().String())
	for _, c := range classes {
		if c.Schedule.DayOfWeek == today {
			ov.ClassesToday++
		}
	}

	paid, err := svc.invoices.ListInvoicesByStatus(ctx, billing.StatusPaid)
	if err != nil {
		return Overview{}, errors.Wrap(err, "listing paid invoices")
	}
	month := now.UTC().Format(monthLayout)
	for _, inv := range paid {
		if inv.PaidDate.UTC().Format(monthLayout) == month {
			ov.RevenueThisMonth += inv.Total
		}
	}
	ov.RevenueThisMonth = round2(ov.RevenueThisMonth)

	for _, status := range []string{billing.StatusPending, billing.StatusOverdue} {
		invoices, err := svc.invoices.ListInvoicesByStatus(ctx, status)
		if err != nil {
			return Overview{}, errors.Wrapf(err, "listing %s invoices", status)
		}
		for _, inv := range invoices {
			ov.OutstandingInvoices++
			ov.OutstandingAmount += inv.Total
		}
	}
	ov.OutstandingAmount = round2(ov.OutstandingAmount)
	return ov, nil
}

// Revenue sums the paid invoices per month of payment, zero months included.
func (svc *Service) Revenue(ctx context.Context, from, to time.Time) ([]MonthlyRevenue, error) {
	period, err := months(from, to)
	if err != nil {
		return nil, err
	}
	paid, err := svc.invoices.ListInvoicesByStatus(ctx, billing.StatusPaid)
	if err != nil {
		return nil, errors.Wrap(err, "listing paid invoices")
	}

	out := make([]MonthlyRevenue, len(period))
	index := make(map[string]int, len(period))
	for i, m := range period {
		out[i].Month = m.Format(monthLayout)
		index[out[i].Month] = i
	}
	for _, inv := range paid {
		if i, ok := index[inv.PaidDate.UTC().Format(monthLayout)]; ok {
			out[i].Revenue += inv.Total
			out[i].Invoices++
		}
	}
	for i := range out {
		out[i].Revenue = round2(out[i].Revenue)
	}
	return out, nil
}

// MemberGrowth counts the members who joined in each month, and the members on record at its end.
func (svc *Service) MemberGrowth(ctx context.Context, from, to time.Time) ([]MonthlyGrowth, error) {
	period, err := months(from, to)
	if err != nil {
		return nil, err
	}
	members, err := svc.allMembers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MonthlyGrowth, 0, len(period))
	for _, m := range period {
		next := m.AddDate(0, 1, 0)
		g := MonthlyGrowth{Month: m.Format(monthLayout)}
		for _, mem := range members {
			if !mem.CreatedAt.Before(next) {
				continue
			}
			g.TotalMembers++
			if !mem.CreatedAt.Before(m) {
				g.NewMembers++
			}
		}
		out = append(out, g)
	}
	return out, nil
}

// ClassAttendance reports the enrollments against the capacity of the active classes.
func (svc *Service) ClassAttendance(ctx context.Context) ([]ClassAttendance, error) {
	byName := []core.DBOrdering{{Field: "name", Ascending: true}}
	classes, _, err := svc.classes.QueryClasses(ctx, gymclass.QueryFilter{Status: gymclass.StatusActive}, core.PageRequest{}, byName)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}

	out := make([]ClassAttendance, 0, len(classes))
	for _, c := range classes {
		a := ClassAttendance{
			ClassID:   c.ID,
			ClassName: c.Name,
			DayOfWeek: c.Schedule.DayOfWeek,
			Enrolled:  c.Enrolled,
			Capacity:  c.Capacity,
		}
		if c.Capacity > 0 {
			a.FillRate = math.Round(float64(c.Enrolled)/float64(c.Capacity)*1000) / 10
		}
		out = append(out, a)
	}
	return out, nil
}

// RecentActivities merges the latest member signups and invoice events, newest first.
func (svc *Service) RecentActivities(ctx context.Context, limit int) ([]Activity, error) {
	if limit < 1 || limit > MaxActivities {
		limit = 10
	}
	latest := core.PageRequest{Page: 1, PerPage: limit}
	newestFirst := []core.DBOrdering{{Field: "created_at", Ascending: false}}

	members, _, err := svc.members.QueryMembers(ctx, member.QueryFilter{}, latest, newestFirst)
	if err != nil {
		return nil, errors.Wrap(err, "querying latest members")
	}
	invoices, _, err := svc.invoices.QueryInvoices(ctx, billing.QueryFilter{}, latest, newestFirst)
	if err != nil {
		return nil, errors.Wrap(err, "querying latest invoices")
	}

	activities := make([]Activity, 0, len(members)+len(invoices))
	for _, m := range members {
		activities = append(activities, Activity{
			Kind:        ActivityMemberJoined,
			Description: fmt.Sprintf("%s joined with a %s membership", m.FullName(), m.Membership.Type),
			At:          m.CreatedAt,
		})
	}
	for _, inv := range invoices {
		a := Activity{
			Kind:        ActivityInvoiceIssued,
			Description: fmt.Sprintf("Invoice %s of %.2f issued to %s", inv.InvoiceNumber, inv.Total, inv.MemberName),
			At:          inv.CreatedAt,
		}
		if inv.Status == billing.StatusPaid && !inv.PaidDate.IsZero() {
			a.Kind = ActivityInvoicePaid
			a.Description = fmt.Sprintf("Invoice %s of %.2f paid by %s", inv.InvoiceNumber, inv.Total, inv.MemberName)
			a.At = inv.PaidDate
		}
		activities = append(activities, a)
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].At.After(activities[j].At)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}
