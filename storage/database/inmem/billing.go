package inmemdb

import (
	"context"
	"time"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
)

type invoiceRepository struct {
	db *invoiceTable
}

var _ billing.Repository = (*invoiceRepository)(nil)

func NewInvoiceRepository(db *DB) billing.Repository {
	return &invoiceRepository{db: db.invoice}
}

func invoiceColumn(inv billing.Invoice, col string) interface{} {
	switch col {
	case "invoice_number":
		return inv.InvoiceNumber
	case "member_name":
		return inv.MemberName
	case "total":
		return inv.Total
	case "status":
		return inv.Status
	case "due_date":
		return inv.DueDate
	case "created_at":
		return inv.CreatedAt
	}
	return nil
}

func (repo *invoiceRepository) QueryInvoices(_ context.Context, filter billing.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]billing.Invoice, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	invoices, total := queryRows(repo.db.all(), filter.Match, page, ordering, invoiceColumn)
	return invoices, total, nil
}

func (repo *invoiceRepository) ListInvoicesByStatus(_ context.Context, status string) ([]billing.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ordering := []core.DBOrdering{{Field: "due_date", Ascending: true}}
	filter := billing.QueryFilter{Status: status}
	invoices, _ := queryRows(repo.db.all(), filter.Match, core.PageRequest{}, ordering, invoiceColumn)
	return invoices, nil
}

func (repo *invoiceRepository) GetInvoiceByID(_ context.Context, id string) (billing.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inv, ok := repo.db.rows[id]; ok {
		return *inv, nil
	}
	return billing.Invoice{}, billing.ErrNotFound
}

func (repo *invoiceRepository) NextInvoiceSeq(_ context.Context, period string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seqs[period]++
	return repo.db.seqs[period], nil
}

func (repo *invoiceRepository) CreateInvoice(_ context.Context, inv billing.Invoice) (billing.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inv.Items = append([]billing.Item(nil), inv.Items...)
	repo.db.rows[inv.ID] = &inv
	return inv, nil
}

func (repo *invoiceRepository) UpdateInvoice(_ context.Context, inv billing.Invoice) (billing.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[inv.ID]; !ok {
		return billing.Invoice{}, billing.ErrNotFound
	}
	repo.db.rows[inv.ID] = &inv
	return inv, nil
}

func (repo *invoiceRepository) RecordPayment(_ context.Context, p billing.Payment) (billing.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.rows[p.InvoiceID]
	if !ok {
		return billing.Invoice{}, billing.ErrNotFound
	}
	inv := *stored
	var paid float64
	for _, prev := range repo.db.payments[inv.ID] {
		paid += prev.Amount
	}
	if err := inv.ApplyPayment(p, paid); err != nil {
		return billing.Invoice{}, err
	}

	repo.db.payments[inv.ID] = append(repo.db.payments[inv.ID], p)
	repo.db.rows[inv.ID] = &inv
	return inv, nil
}

func (repo *invoiceRepository) ListPayments(_ context.Context, invoiceID string) ([]billing.Payment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return append([]billing.Payment(nil), repo.db.payments[invoiceID]...), nil
}

func (repo *invoiceRepository) MarkOverdue(_ context.Context, now time.Time) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, inv := range repo.db.rows {
		if inv.Status == billing.StatusPending && inv.DueDate.Before(now) {
			inv.Status = billing.StatusOverdue
			n++
		}
	}
	return n, nil
}
