package validator

import (
	"fmt"

	"payment-failure-service/internal/domain"

	"github.com/goccy/go-json"
)

var (
	ErrInvalidJSON          = fmt.Errorf("%w: invalid json", domain.ErrPayloadParse)
	ErrMissingField         = fmt.Errorf("%w: missing required field", domain.ErrPayloadParse)
	ErrUnknownFailureNumber = fmt.Errorf("%w: unknown failure number", domain.ErrPayloadParse)
)

// rawCallout keeps pointers so an absent field can be told apart from an empty one.
type rawCallout struct {
	AccountID                 *string `json:"accountId"`
	PaymentID                 *string `json:"paymentId"`
	FailureNumber             *string `json:"failureNumber"`
	PaymentMethodType         *string `json:"paymentMethodType"`
	Currency                  *string `json:"currency"`
	TenantID                  *string `json:"tenantId"`
	Email                     *string `json:"email"`
	FirstName                 *string `json:"firstName"`
	LastName                  *string `json:"lastName"`
	CreditCardType            *string `json:"creditCardType"`
	CreditCardExpirationMonth *string `json:"creditCardExpirationMonth"`
	CreditCardExpirationYear  *string `json:"creditCardExpirationYear"`
}

type requiredField struct {
	name  string
	value *string
	dst   *string
}

// ParseCallout decodes and validates a payment failure callout body.
// It never returns a partially populated callout.
func ParseCallout(body []byte) (domain.PaymentFailureCallout, error) {
	var raw rawCallout
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.PaymentFailureCallout{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	var callout domain.PaymentFailureCallout
	fields := []requiredField{
		{"accountId", raw.AccountID, &callout.AccountID},
		{"paymentId", raw.PaymentID, &callout.PaymentID},
		{"failureNumber", raw.FailureNumber, &callout.FailureNumber},
		{"paymentMethodType", raw.PaymentMethodType, &callout.PaymentMethodType},
		{"currency", raw.Currency, &callout.Currency},
		{"tenantId", raw.TenantID, &callout.TenantID},
		{"email", raw.Email, &callout.Email},
		{"firstName", raw.FirstName, &callout.FirstName},
		{"lastName", raw.LastName, &callout.LastName},
		{"creditCardType", raw.CreditCardType, &callout.CreditCardType},
		{"creditCardExpirationMonth", raw.CreditCardExpirationMonth, &callout.CreditCardExpirationMonth},
		{"creditCardExpirationYear", raw.CreditCardExpirationYear, &callout.CreditCardExpirationYear},
	}
	for _, f := range fields {
		if f.value == nil {
			return domain.PaymentFailureCallout{}, fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
		*f.dst = *f.value
	}

	if err := ValidateFailureNumber(callout.FailureNumber); err != nil {
		return domain.PaymentFailureCallout{}, err
	}
	return callout, nil
}

func ValidateFailureNumber(failureNumber string) error {
	if _, ok := domain.VariantForFailureNumber(failureNumber); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFailureNumber, failureNumber)
	}
	return nil
}
