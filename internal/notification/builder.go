package notification

import (
	"fmt"
	"strings"
	"time"

	"payment-failure-service/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const serviceDateFormat = "02 January 2006"

// Build maps a callout and its selected invoice item onto the queue message.
// It has no side effects.
func Build(callout domain.PaymentFailureCallout, item domain.SelectedInvoiceItem) (domain.NotificationMessage, error) {
	variant, ok := domain.VariantForFailureNumber(callout.FailureNumber)
	if !ok {
		return domain.NotificationMessage{}, fmt.Errorf("%w: no attempt variant for failure number %q", domain.ErrPayloadParse, callout.FailureNumber)
	}

	return domain.NotificationMessage{
		To: domain.ToDef{
			Address:       callout.Email,
			SubscriberKey: callout.Email,
			ContactAttributes: domain.ContactAttributes{
				SubscriberAttributes: domain.SubscriberAttributes{
					SubscriberKey:    callout.Email,
					EmailAddress:     callout.Email,
					SubscriberID:     item.SubscriptionName,
					Product:          item.ProductName,
					PaymentMethod:    callout.PaymentMethodType,
					CardType:         callout.CreditCardType,
					CardExpiryDate:   FormatCardExpiry(callout.CreditCardExpirationMonth, callout.CreditCardExpirationYear),
					FirstName:        callout.FirstName,
					LastName:         callout.LastName,
					PrimaryKey:       callout.PaymentID,
					Price:            FormatPrice(item.Amount, callout.Currency),
					ServiceStartDate: FormatServiceDate(item.ServiceStartDate),
					ServiceEndDate:   FormatServiceDate(item.ServiceEndDate),
					BillingAccountID: callout.AccountID,
				},
			},
		},
		DataExtensionName: variant,
	}, nil
}

// CurrencySymbol returns the display symbol for an ISO currency code, or the
// upper-cased code itself when the currency has no known symbol.
func CurrencySymbol(currency string) string {
	code := strings.ToUpper(currency)
	switch code {
	case "GBP":
		return "£"
	case "EUR":
		return "€"
	case "AUD", "USD", "CAD", "NZD":
		return "$"
	default:
		return code
	}
}

// FormatPrice renders amount with thousands separators and two decimals, prefixed by
// the currency symbol: 1234.5 GBP is "£1,234.50".
func FormatPrice(amount decimal.Decimal, currency string) string {
	rounded := amount.RoundBank(2)
	p := message.NewPrinter(language.English)
	return CurrencySymbol(currency) + p.Sprintf("%v", number.Decimal(rounded.InexactFloat64(), number.Scale(2)))
}

func FormatServiceDate(t time.Time) string {
	return t.Format(serviceDateFormat)
}

// FormatCardExpiry joins the callout's month and year as given, without padding.
func FormatCardExpiry(month, year string) string {
	return month + "/" + year
}
