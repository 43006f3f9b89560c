package service

import (
	"context"
	"fmt"
	"net/http"

	"payment-failure-service/internal/auth"
	"payment-failure-service/internal/domain"
	"payment-failure-service/internal/notification"
	"payment-failure-service/internal/validator"

	log "github.com/sirupsen/logrus"
)

// InvoiceResolver finds the unpaid invoice item a callout refers to.
type InvoiceResolver interface {
	Resolve(ctx context.Context, accountID string) (domain.SelectedInvoiceItem, error)
}

// MessageSender publishes a built notification to the outbound queue.
type MessageSender interface {
	Send(ctx context.Context, msg domain.NotificationMessage) error
}

type Request struct {
	RequestID   string
	Credentials auth.Credentials
	Body        []byte
}

// State is a terminal state of a processed request.
type State string

const (
	StateSuccess                  State = "Success"
	StateUnauthorized             State = "Unauthorized"
	StateBadRequest               State = "BadRequest"
	StateEnrichmentFailed         State = "EnrichmentFailed"
	StatePublishFailed            State = "PublishFailed"
	StateConfigurationUnavailable State = "ConfigurationUnavailable"
)

type Outcome struct {
	State      State
	StatusCode int
	Err        error
}

func statusFor(state State) int {
	switch state {
	case StateSuccess:
		return http.StatusOK
	case StateBadRequest:
		return http.StatusBadRequest
	case StateUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

type paymentFailureService struct {
	trusted   auth.Trusted
	resolver  InvoiceResolver
	sender    MessageSender
	configErr error
}

func NewPaymentFailureService(trusted auth.Trusted, resolver InvoiceResolver, sender MessageSender) *paymentFailureService {
	return &paymentFailureService{trusted: trusted, resolver: resolver, sender: sender}
}

// NewUnavailableService answers every request with a configuration failure.
func NewUnavailableService(configErr error) *paymentFailureService {
	return &paymentFailureService{configErr: fmt.Errorf("%w: %w", domain.ErrConfigurationUnavailable, configErr)}
}

// Process runs one callout through authentication, parsing, tenant validation,
// enrichment and publishing. Every failure ends in exactly one Outcome.
func (s *paymentFailureService) Process(ctx context.Context, req Request) Outcome {
	logCtx := log.WithField("request_id", req.RequestID)

	if s.configErr != nil {
		return finish(logCtx, StateConfigurationUnavailable, s.configErr)
	}

	if !auth.Authenticate(req.Credentials, s.trusted) {
		return finish(logCtx, StateUnauthorized, domain.ErrAuthentication)
	}

	callout, err := validator.ParseCallout(req.Body)
	if err != nil {
		return finish(logCtx, StateBadRequest, err)
	}

	logCtx = logCtx.WithFields(log.Fields{
		"account_id":     callout.AccountID,
		"payment_id":     callout.PaymentID,
		"failure_number": callout.FailureNumber,
	})

	if !auth.ValidTenant(callout.TenantID, s.trusted) {
		return finish(logCtx, StateUnauthorized, domain.ErrTenantMismatch)
	}

	item, err := s.resolver.Resolve(ctx, callout.AccountID)
	if err != nil {
		return finish(logCtx, StateEnrichmentFailed, err)
	}

	msg, err := notification.Build(callout, item)
	if err != nil {
		return finish(logCtx, StateBadRequest, err)
	}

	if err := s.sender.Send(ctx, msg); err != nil {
		return finish(logCtx, StatePublishFailed, err)
	}

	logCtx.WithField("data_extension", msg.DataExtensionName).Info("Payment failure notification queued")
	return finish(logCtx, StateSuccess, nil)
}

func finish(logCtx *log.Entry, state State, err error) Outcome {
	out := Outcome{State: state, StatusCode: statusFor(state), Err: err}
	entry := logCtx.WithFields(log.Fields{"state": state, "status_code": out.StatusCode})
	switch {
	case err == nil:
		entry.Debug("Request finished")
	case out.StatusCode >= http.StatusInternalServerError:
		entry.WithError(err).Error("Request failed")
	default:
		entry.WithError(err).Warn("Request rejected")
	}
	return out
}
