package billing

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/member"
)

const reminderTemplate = "invoice_reminder"

var (
	// errors
	ErrNotFound       = errors.New("invoice not found")
	ErrNotPayable     = errors.New("invoice is not payable")
	ErrExceedsBalance = errors.New("amount exceeds the invoice balance")
	ErrMemberNotFound = errors.New("member not found")

	OrderingFields = map[string]string{
		"invoice_number": "invoice_number",
		"member_name":    "member_name",
		"total":          "total",
		"status":         "status",
		"due_date":       "due_date",
		"created_at":     "created_at",
	}
	defaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
)

type (
	Repository interface {
		QueryInvoices(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Invoice, int, error)
		ListInvoicesByStatus(ctx context.Context, status string) ([]Invoice, error)
		GetInvoiceByID(ctx context.Context, id string) (Invoice, error)
		// NextInvoiceSeq returns the next sequence number of the invoices of a "yyyymm" period.
		NextInvoiceSeq(ctx context.Context, period string) (int, error)
		CreateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		UpdateInvoice(ctx context.Context, inv Invoice) (Invoice, error)
		// RecordPayment stores p and applies it to its invoice (see Invoice.ApplyPayment) in one step.
		RecordPayment(ctx context.Context, p Payment) (Invoice, error)
		ListPayments(ctx context.Context, invoiceID string) ([]Payment, error)
		// MarkOverdue marks the pending invoices due before now as overdue.
		MarkOverdue(ctx context.Context, now time.Time) (int, error)
	}

	MemberFinder interface {
		GetByID(ctx context.Context, id string) (member.Member, error)
	}

	Service struct {
		repo     Repository
		members  MemberFinder
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(repo Repository, members MemberFinder, mailSvc core.EmailService, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{repo: repo, members: members, mailSvc: mailSvc, validate: validate, logger: logger}
}

func invoiceNumber(period string, seq int) string {
	return fmt.Sprintf("INV-%s-%04d", period, seq)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, page core.PageRequest, ordering []core.DBOrdering) ([]Invoice, int, error) {
	filter.Clean()
	ordering = core.CleanOrdering(ordering, OrderingFields)
	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	invoices, total, err := svc.repo.QueryInvoices(ctx, filter, page, ordering)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying invoices")
	}
	return invoices, total, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Invoice, error) {
	return svc.repo.GetInvoiceByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ni NewInvoice) (Invoice, error) {
	ni.Clean()
	if err := svc.validate.Struct(ni); err != nil {
		return Invoice{}, err
	}

	m, err := svc.members.GetByID(ctx, ni.MemberID)
	if err != nil {
		if errors.Cause(err) == member.ErrNotFound {
			return Invoice{}, core.NewFieldValidationError("member_id", ErrMemberNotFound)
		}
		return Invoice{}, err
	}

	now := time.Now().UTC()
	period := now.Format("200601")
	seq, err := svc.repo.NextInvoiceSeq(ctx, period)
	if err != nil {
		return Invoice{}, errors.Wrap(err, "numbering invoice")
	}

	inv := Invoice{
		ID:            uuid.NewString(),
		InvoiceNumber: invoiceNumber(period, seq),
		MemberID:      m.ID,
		MemberName:    m.FullName(),
		MemberEmail:   m.Email,
		Items:         make([]Item, 0, len(ni.Items)),
		Status:        StatusPending,
		DueDate:       ni.DueDate.UTC(),
		CreatedAt:     now,
	}
	for _, it := range ni.Items {
		inv.Items = append(inv.Items, Item{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	inv.computeTotals(ni.TaxRate)
	return svc.repo.CreateInvoice(ctx, inv)
}

// RecordPayment registers a payment; the invoice is marked paid once fully paid.
func (svc *Service) RecordPayment(ctx context.Context, invoiceID string, np NewPayment) (Invoice, Payment, error) {
	np.Clean()
	if err := svc.validate.Struct(np); err != nil {
		return Invoice{}, Payment{}, err
	}

	p := Payment{
		ID:        uuid.NewString(),
		InvoiceID: invoiceID,
		Amount:    round2(np.Amount),
		Method:    np.Method,
		Reference: np.Reference,
		PaidAt:    time.Now().UTC(),
	}
	inv, err := svc.repo.RecordPayment(ctx, p)
	switch {
	case errors.Is(err, ErrExceedsBalance):
		return Invoice{}, Payment{}, core.NewFieldValidationError("amount", ErrExceedsBalance)
	case err != nil:
		return Invoice{}, Payment{}, err
	}
	return inv, p, nil
}

// Payments lists the payments received for the invoice, oldest first.
func (svc *Service) Payments(ctx context.Context, invoiceID string) ([]Payment, error) {
	if _, err := svc.repo.GetInvoiceByID(ctx, invoiceID); err != nil {
		return nil, err
	}
	return svc.repo.ListPayments(ctx, invoiceID)
}

func (svc *Service) Cancel(ctx context.Context, id string) (Invoice, error) {
	inv, err := svc.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if !inv.IsPayable() {
		return Invoice{}, ErrNotPayable
	}
	inv.Status = StatusCancelled
	return svc.repo.UpdateInvoice(ctx, inv)
}

func (svc *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	n, err := svc.repo.MarkOverdue(ctx, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "marking overdue invoices")
	}
	if n > 0 {
		svc.logger.Info("invoices overdue", map[string]interface{}{"count": n})
	}
	return n, nil
}

// SendReminders emails a payment reminder, with the invoice statement attached, for every overdue invoice.
func (svc *Service) SendReminders(ctx context.Context) (int, error) {
	invoices, err := svc.repo.ListInvoicesByStatus(ctx, StatusOverdue)
	if err != nil {
		return 0, errors.Wrap(err, "listing overdue invoices")
	}

	msgs := make([]*core.EmailMessage, 0, len(invoices))
	for _, inv := range invoices {
		if inv.MemberEmail == "" {
			continue
		}
		msg := &core.EmailMessage{
			To:           []mail.Address{inv.recipient()},
			Subject:      fmt.Sprintf("Payment reminder: invoice %s", inv.InvoiceNumber),
			TemplateName: reminderTemplate,
			TemplateData: inv,
		}
		if err := msg.Attach(strings.NewReader(inv.Statement()), inv.InvoiceNumber+".txt", "text/plain"); err != nil {
			svc.logger.Error(fmt.Sprintf("attaching statement of %s: %v", inv.InvoiceNumber, err), err)
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
	return len(msgs), nil
}
