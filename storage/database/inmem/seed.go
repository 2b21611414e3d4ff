package inmemdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AI-Fit-GMS/gms/core/billing"
	"github.com/AI-Fit-GMS/gms/core/equipment"
	"github.com/AI-Fit-GMS/gms/core/gymclass"
	"github.com/AI-Fit-GMS/gms/core/member"
	"github.com/AI-Fit-GMS/gms/core/trainer"
)

var (
	seedFirstNames = []string{"John", "Sarah", "Mike", "Emily", "David", "Priya", "Carlos", "Aisha", "Tom", "Lena", "Ravi", "Grace"}
	seedLastNames  = []string{"Doe", "Connor", "Johnson", "Davis", "Miller", "Sharma", "Garcia", "Khan", "Brown", "Fischer", "Patel", "Lee"}
	seedTypes      = []string{member.TypeBasic, member.TypePremium, member.TypeVIP}
	seedPrices     = map[string]float64{member.TypeBasic: 29.99, member.TypePremium: 59.99, member.TypeVIP: 99.99}
)

// Seed fills db with demo data: members, trainers, classes, invoices and the mock equipment.
func Seed(db *DB, now time.Time) {
	now = now.UTC()
	today := now.Truncate(24 * time.Hour)

	db.member.Lock()
	members := make([]member.Member, 0, 24)
	for i := 0; i < 24; i++ {
		first := seedFirstNames[i%len(seedFirstNames)]
		last := seedLastNames[(i*5)%len(seedLastNames)]
		start := today.AddDate(0, -(i % 14), -i)
		m := member.Member{
			ID:        uuid.NewString(),
			FirstName: first,
			LastName:  last,
			Email:     fmt.Sprintf("%s.%s%d@example.com", lower(first), lower(last), i),
			Phone:     fmt.Sprintf("+1 555 01%02d", i),
			Gender:    []string{member.GenderMale, member.GenderFemale, member.GenderOther}[i%3],
			Membership: member.Membership{
				Type:      seedTypes[i%len(seedTypes)],
				Status:    member.StatusActive,
				StartDate: start,
				EndDate:   start.AddDate(0, 12, 0),
				AutoRenew: i%2 == 0,
			},
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
			UpdatedAt: now.Add(-time.Duration(i) * time.Hour),
		}
		switch {
		case i%7 == 3:
			m.Membership.Status = member.StatusSuspended
		case i%5 == 4:
			m.Membership.Status = member.StatusExpired
			m.Membership.EndDate = today.AddDate(0, 0, -i)
		}
		members = append(members, m)
		db.member.rows[m.ID] = &m
	}
	db.member.Unlock()

	db.trainer.Lock()
	trainers := []trainer.Trainer{
		{FirstName: "Alex", LastName: "Turner", Email: "alex.turner@gms.local", Specialization: []string{"Strength", "CrossFit"}, Experience: 8, HourlyRate: 45, Rating: 4.8},
		{FirstName: "Maya", LastName: "Singh", Email: "maya.singh@gms.local", Specialization: []string{"Yoga", "Pilates"}, Experience: 6, HourlyRate: 40, Rating: 4.9},
		{FirstName: "Jordan", LastName: "Blake", Email: "jordan.blake@gms.local", Specialization: []string{"HIIT", "Cardio"}, Experience: 4, HourlyRate: 35, Rating: 4.5},
		{FirstName: "Nina", LastName: "Lopez", Email: "nina.lopez@gms.local", Specialization: []string{"Zumba"}, Experience: 3, HourlyRate: 30, Rating: 4.6},
	}
	for i := range trainers {
		trainers[i].ID = uuid.NewString()
		trainers[i].Status = trainer.StatusActive
		trainers[i].CreatedAt = now.AddDate(0, -i-1, 0)
		db.trainer.rows[trainers[i].ID] = &trainers[i]
	}
	trainers[3].Status = trainer.StatusOnLeave
	db.trainer.Unlock()

	db.class.Lock()
	classes := []gymclass.Class{
		{Name: "Morning Yoga", Type: "yoga", Schedule: gymclass.Schedule{DayOfWeek: "monday", StartTime: "07:00", EndTime: "08:00"}, Capacity: 20, Location: "Studio A", Level: "all", Price: 15},
		{Name: "Power Lifting", Type: "strength", Schedule: gymclass.Schedule{DayOfWeek: "tuesday", StartTime: "18:00", EndTime: "19:30"}, Capacity: 10, Location: "Weights Room", Level: "advanced", Price: 25},
		{Name: "HIIT Blast", Type: "hiit", Schedule: gymclass.Schedule{DayOfWeek: "wednesday", StartTime: "12:30", EndTime: "13:15"}, Capacity: 15, Location: "Studio B", Level: "intermediate", Price: 20},
		{Name: "Pilates Core", Type: "pilates", Schedule: gymclass.Schedule{DayOfWeek: "thursday", StartTime: "09:00", EndTime: "10:00"}, Capacity: 12, Location: "Studio A", Level: "beginner", Price: 18},
		{Name: "Zumba Party", Type: "zumba", Schedule: gymclass.Schedule{DayOfWeek: "friday", StartTime: "19:00", EndTime: "20:00"}, Capacity: 25, Location: "Main Hall", Level: "all", Price: 12},
		{Name: "CrossFit WOD", Type: "crossfit", Schedule: gymclass.Schedule{DayOfWeek: "saturday", StartTime: "10:00", EndTime: "11:00"}, Capacity: 2, Location: "Box", Level: "advanced", Price: 22},
	}
	trainerOf := []int{1, 0, 2, 1, 3, 0}
	for i := range classes {
		c := &classes[i]
		tr := trainers[trainerOf[i]]
		c.ID = uuid.NewString()
		c.TrainerID = tr.ID
		c.TrainerName = tr.FullName()
		c.Status = gymclass.StatusActive
		c.CreatedAt = now.AddDate(0, 0, -i)

		enrolled := make(map[string]bool)
		for j := 0; j < len(members) && len(enrolled) < c.Capacity && len(enrolled) < 3+i; j += 2 {
			enrolled[members[(i+j)%len(members)].ID] = true
		}
		c.Enrolled = len(enrolled)
		db.class.rows[c.ID] = c
		db.class.enrollments[c.ID] = enrolled
	}
	db.class.Unlock()

	db.invoice.Lock()
	period := now.Format("200601")
	for i, m := range members[:12] {
		db.invoice.seqs[period]++
		price := seedPrices[m.Membership.Type]
		inv := billing.Invoice{
			ID:            uuid.NewString(),
			InvoiceNumber: fmt.Sprintf("INV-%s-%04d", period, db.invoice.seqs[period]),
			MemberID:      m.ID,
			MemberName:    m.FullName(),
			MemberEmail:   m.Email,
			Items:         []billing.Item{{Description: "Membership - " + m.Membership.Type, Quantity: 1, UnitPrice: price, Total: price}},
			Amount:        price,
			Tax:           round2(price * 0.18),
			Status:        billing.StatusPending,
			DueDate:       today.AddDate(0, 0, 10-3*i),
			CreatedAt:     now.AddDate(0, 0, -i),
		}
		inv.Total = round2(inv.Amount + inv.Tax)
		switch {
		case i%4 == 0:
			inv.Status = billing.StatusPaid
			inv.PaidDate = inv.CreatedAt.Add(2 * time.Hour)
			db.invoice.payments[inv.ID] = []billing.Payment{{
				ID:        uuid.NewString(),
				InvoiceID: inv.ID,
				Amount:    inv.Total,
				Method:    billing.MethodCard,
				PaidAt:    inv.PaidDate,
			}}
		case inv.DueDate.Before(today):
			inv.Status = billing.StatusOverdue
		}
		db.invoice.rows[inv.ID] = &inv
	}
	db.invoice.Unlock()

	db.equipment.Lock()
	for _, eq := range equipment.MockEquipment() {
		eq := eq
		eq.ID = uuid.NewString()
		db.equipment.rows[eq.ID] = &eq
	}
	db.equipment.Unlock()
}
