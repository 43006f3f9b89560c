package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentFailureCallout is the payload the billing provider posts when a payment attempt fails.
type PaymentFailureCallout struct {
	AccountID                 string `json:"accountId"`
	PaymentID                 string `json:"paymentId"`
	FailureNumber             string `json:"failureNumber"`
	PaymentMethodType         string `json:"paymentMethodType"`
	Currency                  string `json:"currency"`
	TenantID                  string `json:"tenantId"`
	Email                     string `json:"email"`
	FirstName                 string `json:"firstName"`
	LastName                  string `json:"lastName"`
	CreditCardType            string `json:"creditCardType"`
	CreditCardExpirationMonth string `json:"creditCardExpirationMonth"`
	CreditCardExpirationYear  string `json:"creditCardExpirationYear"`
}

type InvoiceStatus string

const (
	InvoicePosted InvoiceStatus = "Posted"
	InvoiceDraft  InvoiceStatus = "Draft"
)

type InvoiceSummary struct {
	Invoices []Invoice
}

type Invoice struct {
	ID           string
	Amount       decimal.Decimal
	Balance      decimal.Decimal
	Status       InvoiceStatus
	InvoiceItems []InvoiceItem
}

// InvoiceItem keeps service dates as the billing API sends them (YYYY-MM-DD).
type InvoiceItem struct {
	ChargeAmount     decimal.Decimal
	ProductName      string
	SubscriptionName string
	ServiceStartDate string
	ServiceEndDate   string
}

// SelectedInvoiceItem is the billable line of the first unpaid invoice, carrying that invoice's total.
type SelectedInvoiceItem struct {
	SubscriptionName string
	ProductName      string
	Amount           decimal.Decimal
	ServiceStartDate time.Time
	ServiceEndDate   time.Time
}

// AttemptVariant names the downstream data extension for a failed payment attempt.
type AttemptVariant string

const (
	FirstFailedPayment  AttemptVariant = "first-failed-payment-email"
	SecondFailedPayment AttemptVariant = "second-failed-payment-email"
	ThirdFailedPayment  AttemptVariant = "third-failed-payment-email"
)

type NotificationMessage struct {
	To                ToDef          `json:"To"`
	DataExtensionName AttemptVariant `json:"DataExtensionName"`
}

type ToDef struct {
	Address           string            `json:"Address"`
	SubscriberKey     string            `json:"SubscriberKey"`
	ContactAttributes ContactAttributes `json:"ContactAttributes"`
}

type ContactAttributes struct {
	SubscriberAttributes SubscriberAttributes `json:"SubscriberAttributes"`
}

type SubscriberAttributes struct {
	SubscriberKey    string `json:"SubscriberKey"`
	EmailAddress     string `json:"EmailAddress"`
	SubscriberID     string `json:"subscriber_id"`
	Product          string `json:"product"`
	PaymentMethod    string `json:"payment_method"`
	CardType         string `json:"card_type"`
	CardExpiryDate   string `json:"card_expiry_date"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	PrimaryKey       string `json:"primaryKey"`
	Price            string `json:"price"`
	ServiceStartDate string `json:"serviceStartDate"`
	ServiceEndDate   string `json:"serviceEndDate"`
	BillingAccountID string `json:"billing_account_id"`
}

// AccountID returns the billing account the message was built for.
func (m NotificationMessage) AccountID() string {
	return m.To.ContactAttributes.SubscriberAttributes.BillingAccountID
}

// VariantForFailureNumber maps the callout's failureNumber onto its attempt variant.
// Values other than "1", "2" and "3" have no variant.
func VariantForFailureNumber(failureNumber string) (AttemptVariant, bool) {
	switch failureNumber {
	case "1":
		return FirstFailedPayment, true
	case "2":
		return SecondFailedPayment, true
	case "3":
		return ThirdFailedPayment, true
	default:
		return "", false
	}
}
