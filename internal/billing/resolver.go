package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payment-failure-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

const serviceDateLayout = "2006-01-02"

var (
	ErrNoUnpaidInvoice    = errors.New("no unpaid invoice found")
	ErrNoBillableItem     = errors.New("no invoice item with a positive charge found")
	ErrInvalidServiceDate = errors.New("invalid service date")
)

// InvoiceFetcher is the billing API call the resolver depends on.
type InvoiceFetcher interface {
	FetchInvoices(ctx context.Context, accountID string) (domain.InvoiceSummary, error)
}

type Resolver struct {
	fetcher InvoiceFetcher
}

func NewResolver(fetcher InvoiceFetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve fetches the account's invoices once and selects the item to notify about.
// Every failure is reported as domain.ErrDataUnavailable.
func (r *Resolver) Resolve(ctx context.Context, accountID string) (domain.SelectedInvoiceItem, error) {
	summary, err := r.fetcher.FetchInvoices(ctx, accountID)
	if err != nil {
		return domain.SelectedInvoiceItem{}, fmt.Errorf("%w for account %s: %w", domain.ErrDataUnavailable, accountID, err)
	}

	item, err := SelectInvoiceItem(summary)
	if err != nil {
		return domain.SelectedInvoiceItem{}, fmt.Errorf("%w for account %s: %w", domain.ErrDataUnavailable, accountID, err)
	}

	log.WithFields(log.Fields{
		"account_id":        accountID,
		"subscription_name": item.SubscriptionName,
	}).Debug("Selected unpaid invoice item")
	return item, nil
}

// SelectInvoiceItem picks the first Posted invoice with a positive balance and, within it,
// the first item with a positive charge. API order is kept.
func SelectInvoiceItem(summary domain.InvoiceSummary) (domain.SelectedInvoiceItem, error) {
	var invoice *domain.Invoice
	for i := range summary.Invoices {
		if isUnpaid(summary.Invoices[i]) {
			invoice = &summary.Invoices[i]
			break
		}
	}
	if invoice == nil {
		return domain.SelectedInvoiceItem{}, ErrNoUnpaidInvoice
	}

	var item *domain.InvoiceItem
	for i := range invoice.InvoiceItems {
		if invoice.InvoiceItems[i].ChargeAmount.IsPositive() {
			item = &invoice.InvoiceItems[i]
			break
		}
	}
	if item == nil {
		return domain.SelectedInvoiceItem{}, fmt.Errorf("%w on invoice %s", ErrNoBillableItem, invoice.ID)
	}

	start, err := time.Parse(serviceDateLayout, item.ServiceStartDate)
	if err != nil {
		return domain.SelectedInvoiceItem{}, fmt.Errorf("%w: start %q", ErrInvalidServiceDate, item.ServiceStartDate)
	}
	end, err := time.Parse(serviceDateLayout, item.ServiceEndDate)
	if err != nil {
		return domain.SelectedInvoiceItem{}, fmt.Errorf("%w: end %q", ErrInvalidServiceDate, item.ServiceEndDate)
	}

	return domain.SelectedInvoiceItem{
		SubscriptionName: item.SubscriptionName,
		ProductName:      item.ProductName,
		Amount:           invoice.Amount,
		ServiceStartDate: start,
		ServiceEndDate:   end,
	}, nil
}

func isUnpaid(inv domain.Invoice) bool {
	return inv.Balance.IsPositive() && inv.Status == domain.InvoicePosted
}
