package billing

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/AI-Fit-GMS/gms/core"
	"github.com/AI-Fit-GMS/gms/core/table"
)

// Invoice statuses
const (
	StatusPaid      = "paid"
	StatusPending   = "pending"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

// Payment methods
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodUPI          = "upi"
	MethodBankTransfer = "bank_transfer"
)

type (
	Item struct {
		Description string  `json:"description"`
		Quantity    int     `json:"quantity"`
		UnitPrice   float64 `json:"unit_price"`
		Total       float64 `json:"total"`
	}

	Invoice struct {
		ID            string    `json:"id"`
		InvoiceNumber string    `json:"invoice_number"`
		MemberID      string    `json:"member_id"`
		MemberName    string    `json:"member_name"`
		MemberEmail   string    `json:"member_email"`
		Items         []Item    `json:"items"`
		Amount        float64   `json:"amount"`
		Tax           float64   `json:"tax"`
		Total         float64   `json:"total"`
		Status        string    `json:"status"`
		DueDate       time.Time `json:"due_date"`
		PaidDate      time.Time `json:"paid_date,omitempty"`
		CreatedAt     time.Time `json:"created_at"` // UTC
	}

	Payment struct {
		ID        string    `json:"id"`
		InvoiceID string    `json:"invoice_id"`
		Amount    float64   `json:"amount"`
		Method    string    `json:"method"`
		Reference string    `json:"reference,omitempty"`
		PaidAt    time.Time `json:"paid_at"` // UTC
	}

	NewItem struct {
		Description string  `json:"description" validate:"required,notblank"`
		Quantity    int     `json:"quantity" validate:"min=1"`
		UnitPrice   float64 `json:"unit_price" validate:"gt=0"`
	}

	NewInvoice struct {
		MemberID string    `json:"member_id" validate:"required"`
		Items    []NewItem `json:"items" validate:"required,min=1,dive"`
		TaxRate  float64   `json:"tax_rate" validate:"min=0,max=100"` // percent
		DueDate  time.Time `json:"due_date" validate:"required"`
	}

	NewPayment struct {
		Amount    float64 `json:"amount" validate:"gt=0"`
		Method    string  `json:"method" validate:"required,oneof=cash card upi bank_transfer"`
		Reference string  `json:"reference"`
	}

	QueryFilter struct {
		Search   string `query:"search"`
		Status   string `query:"status"`
		MemberID string `query:"member_id"`
	}
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// computeTotals fills the item totals and the invoice amount, tax and total.
func (inv *Invoice) computeTotals(taxRate float64) {
	inv.Amount = 0
	for i := range inv.Items {
		it := &inv.Items[i]
		it.Total = round2(float64(it.Quantity) * it.UnitPrice)
		inv.Amount += it.Total
	}
	inv.Amount = round2(inv.Amount)
	inv.Tax = round2(inv.Amount * taxRate / 100)
	inv.Total = round2(inv.Amount + inv.Tax)
}

func (inv Invoice) IsPayable() bool {
	return inv.Status == StatusPending || inv.Status == StatusOverdue
}

// ApplyPayment checks p against the balance left once `paid` was received,
// and marks the invoice paid when p settles it.
func (inv *Invoice) ApplyPayment(p Payment, paid float64) error {
	if !inv.IsPayable() {
		return ErrNotPayable
	}
	balance := round2(inv.Total - paid)
	if p.Amount > balance {
		return ErrExceedsBalance
	}
	if p.Amount == balance {
		inv.Status = StatusPaid
		inv.PaidDate = p.PaidAt
	}
	return nil
}

func (inv Invoice) recipient() mail.Address {
	return mail.Address{Name: inv.MemberName, Address: inv.MemberEmail}
}

// Statement is the plain text breakdown of the invoice.
func (inv Invoice) Statement() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice %s\n", inv.InvoiceNumber)
	fmt.Fprintf(&b, "Member: %s <%s>\n", inv.MemberName, inv.MemberEmail)
	fmt.Fprintf(&b, "Due date: %s\n\n", inv.DueDate.Format("2006-01-02"))
	for _, it := range inv.Items {
		fmt.Fprintf(&b, "%-32s %3d x %10.2f = %10.2f\n", it.Description, it.Quantity, it.UnitPrice, it.Total)
	}
	fmt.Fprintf(&b, "\n%-49s %10.2f\n", "Amount", inv.Amount)
	fmt.Fprintf(&b, "%-49s %10.2f\n", "Tax", inv.Tax)
	fmt.Fprintf(&b, "%-49s %10.2f\n", "Total", inv.Total)
	return b.String()
}

func (inv Invoice) Record() table.Record {
	rec := table.Record{
		"id":             inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"member_name":    inv.MemberName,
		"member_email":   inv.MemberEmail,
		"amount":         inv.Amount,
		"tax":            inv.Tax,
		"total":          inv.Total,
		"status":         inv.Status,
		"due_date":       inv.DueDate,
		"created_at":     inv.CreatedAt,
	}
	if !inv.PaidDate.IsZero() {
		rec["paid_date"] = inv.PaidDate
	}
	return rec
}

func Records(invoices []Invoice) []table.Record {
	recs := make([]table.Record, 0, len(invoices))
	for _, inv := range invoices {
		recs = append(recs, inv.Record())
	}
	return recs
}

func (ni *NewInvoice) Clean() {
	ni.MemberID = core.CleanString(ni.MemberID)
	for i := range ni.Items {
		ni.Items[i].Description = core.CleanString(ni.Items[i].Description)
	}
}

func (np *NewPayment) Clean() {
	np.Method = core.CleanString(np.Method, true /* lower */)
	np.Reference = core.CleanString(np.Reference)
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.MemberID = core.CleanString(qf.MemberID)
}

func (qf QueryFilter) Match(inv Invoice) bool {
	if qf.Status != "" && inv.Status != qf.Status {
		return false
	}
	if qf.MemberID != "" && inv.MemberID != qf.MemberID {
		return false
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		return strings.Contains(strings.ToLower(inv.InvoiceNumber), s) ||
			strings.Contains(strings.ToLower(inv.MemberName), s) ||
			strings.Contains(inv.MemberEmail, s)
	}
	return true
}
