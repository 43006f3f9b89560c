package domain

import "errors"

var (
	// ErrConfigurationUnavailable means the process started without usable configuration.
	ErrConfigurationUnavailable = errors.New("configuration unavailable")

	ErrAuthentication = errors.New("api credentials not accepted")
	ErrTenantMismatch = errors.New("tenant not trusted")

	// ErrPayloadParse covers malformed JSON, missing fields and unmapped failure numbers.
	ErrPayloadParse = errors.New("payment failure callout could not be parsed")

	// ErrDataUnavailable is returned when no unpaid invoice or billable line item can be found,
	// or when the billing API call itself fails.
	ErrDataUnavailable = errors.New("could not retrieve additional data")

	ErrPublish = errors.New("notification could not be published")
)
