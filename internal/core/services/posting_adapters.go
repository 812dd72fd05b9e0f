package services

import (
	"fmt"
	"strings"

	"github.com/clinicore/clinic_ledger_app/internal/apperrors"
	"github.com/clinicore/clinic_ledger_app/internal/core/domain"
	"github.com/clinicore/clinic_ledger_app/internal/dto"
)

// Chart-of-account business codes used by the posting adapters. Seeded by
// the initial migration.
const (
	CodeCash            = "1000"
	CodeBank            = "1010"
	CodePharmacyStock   = "1400"
	CodeGSTInput        = "1450"
	CodeAccountsPayable = "2000"
	CodeGSTPayable      = "2100"
	CodeConsultationRev = "4000"
	CodePharmacyRev     = "4010"
	CodeLabRev          = "4020"
	CodeUltrasoundRev   = "4030"
)

// PostingAdapter builds the journal entry for one reference kind. Adapters
// are registered in a PostingRegistry; adding a kind means registering an
// adapter, not editing a central switch.
type PostingAdapter interface {
	// Kind is the reference kind this adapter handles.
	Kind() domain.ReferenceKind

	// Priority is the queue priority for tasks of this kind.
	Priority() int

	// BuildEntry translates a source event snapshot into a balanced
	// posting request.
	BuildEntry(event domain.RevenueEvent) (dto.PostEntryRequest, error)
}

// PostingRegistry maps reference kinds to their posting adapters.
type PostingRegistry struct {
	adapters map[domain.ReferenceKind]PostingAdapter
	kinds    []domain.ReferenceKind // registration order, for deterministic scans
}

// NewPostingRegistry creates an empty registry.
func NewPostingRegistry() *PostingRegistry {
	return &PostingRegistry{adapters: make(map[domain.ReferenceKind]PostingAdapter)}
}

// Register adds an adapter, replacing any previous one for the same kind.
func (r *PostingRegistry) Register(a PostingAdapter) {
	if _, exists := r.adapters[a.Kind()]; !exists {
		r.kinds = append(r.kinds, a.Kind())
	}
	r.adapters[a.Kind()] = a
}

// Adapter looks up the adapter for a kind.
func (r *PostingRegistry) Adapter(kind domain.ReferenceKind) (PostingAdapter, error) {
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no posting adapter registered for reference kind %q", apperrors.ErrValidation, kind)
	}
	return a, nil
}

// Kinds returns all registered kinds in registration order.
func (r *PostingRegistry) Kinds() []domain.ReferenceKind {
	return r.kinds
}

// DefaultPostingRegistry registers the adapters for every billing source.
func DefaultPostingRegistry() *PostingRegistry {
	r := NewPostingRegistry()
	r.Register(revenueAdapter{kind: domain.KindConsultation, revenueCode: CodeConsultationRev, priority: domain.PriorityNormal})
	r.Register(revenueAdapter{kind: domain.KindPharmacy, revenueCode: CodePharmacyRev, priority: domain.PriorityNormal})
	r.Register(revenueAdapter{kind: domain.KindLab, revenueCode: CodeLabRev, priority: domain.PriorityNormal})
	r.Register(revenueAdapter{kind: domain.KindUltrasound, revenueCode: CodeUltrasoundRev, priority: domain.PriorityNormal})
	r.Register(purchaseInvoiceAdapter{})
	return r
}

// settlementCode maps a payment mode onto the receiving asset account.
func settlementCode(paymentMode string) string {
	switch strings.ToUpper(strings.TrimSpace(paymentMode)) {
	case "", "CASH":
		return CodeCash
	default:
		// CARD, UPI, CHEQUE, TRANSFER all settle through the bank account.
		return CodeBank
	}
}

func titleCase(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func validateEvent(event domain.RevenueEvent) error {
	if !event.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive for %s %d", apperrors.ErrValidation, event.Kind, event.ReferenceID)
	}
	if event.TaxAmount.IsNegative() || event.TaxAmount.GreaterThanOrEqual(event.Amount) {
		return fmt.Errorf("%w: tax amount %s out of range for %s %d", apperrors.ErrValidation, event.TaxAmount, event.Kind, event.ReferenceID)
	}
	return nil
}

// revenueAdapter posts a billing event: debit the settlement account for
// the gross amount, credit the kind's revenue account for the net amount,
// credit GST payable for the tax portion.
type revenueAdapter struct {
	kind        domain.ReferenceKind
	revenueCode string
	priority    int
}

func (a revenueAdapter) Kind() domain.ReferenceKind { return a.kind }
func (a revenueAdapter) Priority() int              { return a.priority }

func (a revenueAdapter) BuildEntry(event domain.RevenueEvent) (dto.PostEntryRequest, error) {
	if err := validateEvent(event); err != nil {
		return dto.PostEntryRequest{}, err
	}

	description := event.Description
	if description == "" {
		description = fmt.Sprintf("%s billing #%d", titleCase(string(a.kind)), event.ReferenceID)
	}

	net := event.Amount.Sub(event.TaxAmount)
	lines := []dto.PostEntryLine{
		{AccountCode: settlementCode(event.PaymentMode), Debit: event.Amount, Description: description},
		{AccountCode: a.revenueCode, Credit: net, Description: description},
	}
	if event.TaxAmount.IsPositive() {
		lines = append(lines, dto.PostEntryLine{AccountCode: CodeGSTPayable, Credit: event.TaxAmount, Description: description})
	}

	return dto.PostEntryRequest{
		Date:          event.Date,
		ReferenceKind: a.kind,
		ReferenceID:   event.ReferenceID,
		Description:   description,
		Lines:         lines,
	}, nil
}

// purchaseInvoiceAdapter posts a supplier invoice: debit stock for the net
// amount and GST input for the tax, credit accounts payable for the gross.
type purchaseInvoiceAdapter struct{}

func (purchaseInvoiceAdapter) Kind() domain.ReferenceKind { return domain.KindPurchaseInvoice }
func (purchaseInvoiceAdapter) Priority() int              { return domain.PriorityLow }

func (purchaseInvoiceAdapter) BuildEntry(event domain.RevenueEvent) (dto.PostEntryRequest, error) {
	if err := validateEvent(event); err != nil {
		return dto.PostEntryRequest{}, err
	}

	description := event.Description
	if description == "" {
		description = fmt.Sprintf("Purchase invoice #%d", event.ReferenceID)
	}

	net := event.Amount.Sub(event.TaxAmount)
	lines := []dto.PostEntryLine{
		{AccountCode: CodePharmacyStock, Debit: net, Description: description},
		{AccountCode: CodeAccountsPayable, Credit: event.Amount, Description: description},
	}
	if event.TaxAmount.IsPositive() {
		// Insert the tax line before the payable so debits precede credits.
		lines = []dto.PostEntryLine{
			lines[0],
			{AccountCode: CodeGSTInput, Debit: event.TaxAmount, Description: description},
			lines[1],
		}
	}

	return dto.PostEntryRequest{
		Date:          event.Date,
		ReferenceKind: domain.KindPurchaseInvoice,
		ReferenceID:   event.ReferenceID,
		Description:   description,
		Lines:         lines,
	}, nil
}
