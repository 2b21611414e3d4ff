package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/billing"
)

const invoiceColumns = `id, invoice_number, member_id, member_name, member_email, amount, tax, total,
	status, due_date, paid_date, created_at`

type (
	invoiceRow struct {
		ID            string    `db:"id"`
		InvoiceNumber string    `db:"invoice_number"`
		MemberID      string    `db:"member_id"`
		MemberName    string    `db:"member_name"`
		MemberEmail   string    `db:"member_email"`
		Amount        float64   `db:"amount"`
		Tax           float64   `db:"tax"`
		Total         float64   `db:"total"`
		Status        string    `db:"status"`
		DueDate       time.Time `db:"due_date"`
		PaidDate      null.Time `db:"paid_date"`
		CreatedAt     time.Time `db:"created_at"`
	}

	itemRow struct {
		InvoiceID   string  `db:"invoice_id"`
		Position    int     `db:"position"`
		Description string  `db:"description"`
		Quantity    int     `db:"quantity"`
		UnitPrice   float64 `db:"unit_price"`
		Total       float64 `db:"total"`
	}

	paymentRow struct {
		ID        string    `db:"id"`
		InvoiceID string    `db:"invoice_id"`
		Amount    float64   `db:"amount"`
		Method    string    `db:"method"`
		Reference string    `db:"reference"`
		PaidAt    time.Time `db:"paid_at"`
	}
)

func (r invoiceRow) invoice() billing.Invoice {
	inv := billing.Invoice{
		ID:            r.ID,
		InvoiceNumber: r.InvoiceNumber,
		MemberID:      r.MemberID,
		MemberName:    r.MemberName,
		MemberEmail:   r.MemberEmail,
		Items:         []billing.Item{},
		Amount:        r.Amount,
		Tax:           r.Tax,
		Total:         r.Total,
		Status:        r.Status,
		DueDate:       r.DueDate.UTC(),
		CreatedAt:     r.CreatedAt.UTC(),
	}
	if r.PaidDate.Valid {
		inv.PaidDate = r.PaidDate.Time.UTC()
	}
	return inv
}

func (r paymentRow) payment() billing.Payment {
	return billing.Payment{
		ID:        r.ID,
		InvoiceID: r.InvoiceID,
		Amount:    r.Amount,
		Method:    r.Method,
		Reference: r.Reference,
		PaidAt:    r.PaidAt.UTC(),
	}
}

type invoiceRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*invoiceRepository)(nil)

func NewInvoiceRepository(db *sqlx.DB) billing.Repository {
	return &invoiceRepository{db: db}
}

// withItems converts the rows and loads their items in a single query.
func (repo *invoiceRepository) withItems(ctx context.Context, rows []invoiceRow) ([]billing.Invoice, error) {
	invoices := make([]billing.Invoice, 0, len(rows))
	if len(rows) == 0 {
		return invoices, nil
	}
	ids := make([]string, 0, len(rows))
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		invoices = append(invoices, r.invoice())
		ids = append(ids, r.ID)
		index[r.ID] = i
	}

	q, args, err := sqlx.In(`SELECT invoice_id, position, description, quantity, unit_price, total
		FROM invoice_items WHERE invoice_id IN (?) ORDER BY invoice_id, position`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building items query")
	}
	var items []itemRow
	if err := repo.db.SelectContext(ctx, &items, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting invoice items")
	}
	for _, it := range items {
		inv := &invoices[index[it.InvoiceID]]
		inv.Items = append(inv.Items, billing.Item{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	return invoices, nil
}

func (repo *invoiceRepository) QueryInvoices(ctx context.Context, filter billing.QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]billing.Invoice, int, error) {
	w := new(where)
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.MemberID != "" {
		w.add("member_id = ?", filter.MemberID)
	}
	w.search(filter.Search, "invoice_number", "member_name", "member_email")

	var rows []invoiceRow
	total, err := queryPage(ctx, repo.db, &rows, invoiceColumns, "invoices", w, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying invoices")
	}
	invoices, err := repo.withItems(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (repo *invoiceRepository) ListInvoicesByStatus(ctx context.Context, status string) ([]billing.Invoice, error) {
	var rows []invoiceRow
	q := repo.db.Rebind("SELECT " + invoiceColumns + " FROM invoices WHERE status = ? ORDER BY due_date")
	if err := repo.db.SelectContext(ctx, &rows, q, status); err != nil {
		return nil, errors.Wrap(err, "listing invoices")
	}
	return repo.withItems(ctx, rows)
}

func (repo *invoiceRepository) GetInvoiceByID(ctx context.Context, id string) (billing.Invoice, error) {
	var row invoiceRow
	if err := getOne(ctx, repo.db, &row, billing.ErrNotFound, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id); err != nil {
		return billing.Invoice{}, err
	}
	invoices, err := repo.withItems(ctx, []invoiceRow{row})
	if err != nil {
		return billing.Invoice{}, err
	}
	return invoices[0], nil
}

func (repo *invoiceRepository) NextInvoiceSeq(ctx context.Context, period string) (int, error) {
	var seq int
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		err := execOne(ctx, tx, errNoRowsAffected,
			"UPDATE invoice_sequences SET last_seq = last_seq + 1 WHERE period = ?", period)
		if errors.Is(err, errNoRowsAffected) {
			_, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO invoice_sequences (period, last_seq) VALUES (?, 1)"), period)
		}
		if err != nil {
			return errors.Wrap(err, "bumping invoice sequence")
		}
		return tx.GetContext(ctx, &seq, tx.Rebind("SELECT last_seq FROM invoice_sequences WHERE period = ?"), period)
	})
	return seq, err
}

func (repo *invoiceRepository) CreateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`INSERT INTO invoices (` + invoiceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, q,
			inv.ID, inv.InvoiceNumber, inv.MemberID, inv.MemberName, inv.MemberEmail,
			inv.Amount, inv.Tax, inv.Total, inv.Status, inv.DueDate.UTC(),
			null.NewTime(inv.PaidDate.UTC(), !inv.PaidDate.IsZero()), inv.CreatedAt.UTC())
		if err != nil {
			return errors.Wrap(err, "inserting invoice")
		}

		q = tx.Rebind(`INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, total)
			VALUES (?, ?, ?, ?, ?, ?)`)
		for i, it := range inv.Items {
			if _, err := tx.ExecContext(ctx, q, inv.ID, i, it.Description, it.Quantity, it.UnitPrice, it.Total); err != nil {
				return errors.Wrap(err, "inserting invoice item")
			}
		}
		return nil
	})
	if err != nil {
		return billing.Invoice{}, err
	}
	return inv, nil
}

func (repo *invoiceRepository) UpdateInvoice(ctx context.Context, inv billing.Invoice) (billing.Invoice, error) {
	err := execOne(ctx, repo.db, billing.ErrNotFound,
		"UPDATE invoices SET status = ?, due_date = ?, paid_date = ? WHERE id = ?",
		inv.Status, inv.DueDate.UTC(), null.NewTime(inv.PaidDate.UTC(), !inv.PaidDate.IsZero()), inv.ID)
	if err != nil {
		return billing.Invoice{}, err
	}
	return inv, nil
}

func (repo *invoiceRepository) RecordPayment(ctx context.Context, p billing.Payment) (billing.Invoice, error) {
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		// the no-op update holds the invoice row lock until commit: concurrent payments queue up here
		if err := execOne(ctx, tx, billing.ErrNotFound, "UPDATE invoices SET status = status WHERE id = ?", p.InvoiceID); err != nil {
			return err
		}

		var row invoiceRow
		if err := tx.GetContext(ctx, &row, tx.Rebind("SELECT "+invoiceColumns+" FROM invoices WHERE id = ?"), p.InvoiceID); err != nil {
			return errors.Wrap(err, "getting invoice")
		}
		var paid float64
		if err := tx.GetContext(ctx, &paid, tx.Rebind("SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?"), p.InvoiceID); err != nil {
			return errors.Wrap(err, "summing payments")
		}
		inv := row.invoice()
		if err := inv.ApplyPayment(p, paid); err != nil {
			return err
		}

		q := tx.Rebind(`INSERT INTO payments (id, invoice_id, amount, method, reference, paid_at) VALUES (?, ?, ?, ?, ?, ?)`)
		if _, err := tx.ExecContext(ctx, q, p.ID, p.InvoiceID, p.Amount, p.Method, p.Reference, p.PaidAt.UTC()); err != nil {
			return errors.Wrap(err, "inserting payment")
		}
		if inv.Status != row.Status {
			q = tx.Rebind("UPDATE invoices SET status = ?, paid_date = ? WHERE id = ?")
			if _, err := tx.ExecContext(ctx, q, inv.Status, inv.PaidDate.UTC(), inv.ID); err != nil {
				return errors.Wrap(err, "marking invoice paid")
			}
		}
		return nil
	})
	if err != nil {
		return billing.Invoice{}, err
	}
	return repo.GetInvoiceByID(ctx, p.InvoiceID)
}

func (repo *invoiceRepository) ListPayments(ctx context.Context, invoiceID string) ([]billing.Payment, error) {
	var rows []paymentRow
	q := repo.db.Rebind(`SELECT id, invoice_id, amount, method, reference, paid_at
		FROM payments WHERE invoice_id = ? ORDER BY paid_at`)
	if err := repo.db.SelectContext(ctx, &rows, q, invoiceID); err != nil {
		return nil, errors.Wrap(err, "listing payments")
	}
	payments := make([]billing.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, r.payment())
	}
	return payments, nil
}

func (repo *invoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	q := repo.db.Rebind("UPDATE invoices SET status = ? WHERE status = ? AND due_date < ?")
	res, err := repo.db.ExecContext(ctx, q, billing.StatusOverdue, billing.StatusPending, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "marking overdue invoices")
	}
	n, err := res.RowsAffected()
	return int(n), err
}
