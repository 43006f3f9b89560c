package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"payment-failure-service/internal/auth"
	"payment-failure-service/internal/domain"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- MOCKS ---

type mockResolver struct {
	item  domain.SelectedInvoiceItem
	err   error
	calls []string
}

func (m *mockResolver) Resolve(ctx context.Context, accountID string) (domain.SelectedInvoiceItem, error) {
	m.calls = append(m.calls, accountID)
	return m.item, m.err
}

type mockSender struct {
	sent []domain.NotificationMessage
	err  error
}

func (m *mockSender) Send(ctx context.Context, msg domain.NotificationMessage) error {
	m.sent = append(m.sent, msg)
	return m.err
}

var trusted = auth.Trusted{
	APIClients: []auth.Credentials{{APIClientID: "client", APIToken: "token"}},
	TenantIDs:  []string{"tenant-1"},
}

var goodCredentials = auth.Credentials{APIClientID: "client", APIToken: "token"}

func calloutBody(t *testing.T, overrides map[string]any) []byte {
	t.Helper()
	fields := map[string]any{
		"accountId":                 "A00001",
		"paymentId":                 "P00042",
		"failureNumber":             "2",
		"paymentMethodType":         "CreditCard",
		"currency":                  "GBP",
		"tenantId":                  "tenant-1",
		"email":                     "reader@example.com",
		"firstName":                 "Ada",
		"lastName":                  "Lovelace",
		"creditCardType":            "Visa",
		"creditCardExpirationMonth": "7",
		"creditCardExpirationYear":  "2027",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	body, err := json.Marshal(fields)
	require.NoError(t, err)
	return body
}

func selectedItem() domain.SelectedInvoiceItem {
	return domain.SelectedInvoiceItem{
		SubscriptionName: "A-S0001",
		ProductName:      "Guardian Weekly",
		Amount:           decimal.RequireFromString("37.5"),
		ServiceStartDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		ServiceEndDate:   time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC),
	}
}

// --- TESTS ---

func TestProcess_HappyPath(t *testing.T) {
	resolver := &mockResolver{item: selectedItem()}
	sender := &mockSender{}
	svc := NewPaymentFailureService(trusted, resolver, sender)

	out := svc.Process(context.Background(), Request{RequestID: "r-1", Credentials: goodCredentials, Body: calloutBody(t, nil)})

	assert.Equal(t, StateSuccess, out.State)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.NoError(t, out.Err)
	assert.Equal(t, []string{"A00001"}, resolver.calls)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, domain.SecondFailedPayment, msg.DataExtensionName)
	attrs := msg.To.ContactAttributes.SubscriberAttributes
	assert.Equal(t, "£37.50", attrs.Price)
	assert.Equal(t, "01 March 2024", attrs.ServiceStartDate)
	assert.Equal(t, "31 May 2024", attrs.ServiceEndDate)
	assert.Equal(t, "P00042", attrs.PrimaryKey)
}

func TestProcess_Outcomes(t *testing.T) {
	tests := []struct {
		name         string
		credentials  auth.Credentials
		body         func(t *testing.T) []byte
		resolverErr  error
		senderErr    error
		wantState    State
		wantStatus   int
		wantErr      error
		wantResolves int
		wantSends    int
	}{
		{
			name:        "bad credentials",
			credentials: auth.Credentials{APIClientID: "client",
			APIToken:    "nope"},
			body:        func(t *testing.T) []byte { return calloutBody(t, nil) },
			wantState:   StateUnauthorized,
			wantStatus:  http.StatusUnauthorized,
			wantErr:     domain.ErrAuthentication,
		},
		{
			name:        "bad credentials win over malformed body",
			credentials: auth.Credentials{},
			body:        func(t *testing.T) []byte { return []byte("{not json") },
			wantState:   StateUnauthorized,
			wantStatus:  http.StatusUnauthorized,
			wantErr:     domain.ErrAuthentication,
		},
		{
			name:        "malformed json",
			credentials: goodCredentials,
			body:        func(t *testing.T) []byte { return []byte("{not json") },
			wantState:   StateBadRequest,
			wantStatus:  http.StatusBadRequest,
			wantErr:     domain.ErrPayloadParse,
		},
		{
			name:        "unknown failure number",
			credentials: goodCredentials,
			body:        func(t *testing.T) []byte { return calloutBody(t, map[string]any{"failureNumber": "4"}) },
			wantState:   StateBadRequest,
			wantStatus:  http.StatusBadRequest,
			wantErr:     domain.ErrPayloadParse,
		},
		{
			name:        "untrusted tenant",
			credentials: goodCredentials,
			body:        func(t *testing.T) []byte { return calloutBody(t, map[string]any{"tenantId": "tenant-9"}) },
			wantState:   StateUnauthorized,
			wantStatus:  http.StatusUnauthorized,
			wantErr:     domain.ErrTenantMismatch,
		},
		{
			name:         "enrichment failure",
			credentials:  goodCredentials,
			body:         func(t *testing.T) []byte { return calloutBody(t, nil) },
			resolverErr:  domain.ErrDataUnavailable,
			wantState:    StateEnrichmentFailed,
			wantStatus:   http.StatusInternalServerError,
			wantErr:      domain.ErrDataUnavailable,
			wantResolves: 1,
		},
		{
			name:         "publish failure",
			credentials:  goodCredentials,
			body:         func(t *testing.T) []byte { return calloutBody(t, nil) },
			senderErr:    domain.ErrPublish,
			wantState:    StatePublishFailed,
			wantStatus:   http.StatusInternalServerError,
			wantErr:      domain.ErrPublish,
			wantResolves: 1,
			wantSends:    1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &mockResolver{item: selectedItem(), err: tc.resolverErr}
			sender := &mockSender{err: tc.senderErr}
			svc := NewPaymentFailureService(trusted, resolver, sender)

			out := svc.Process(context.Background(), Request{Credentials: tc.credentials, Body: tc.body(t)})

			assert.Equal(t, tc.wantState, out.State)
			assert.Equal(t, tc.wantStatus, out.StatusCode)
			assert.True(t, errors.Is(out.Err, tc.wantErr), "got %v", out.Err)
			assert.Len(t, resolver.calls, tc.wantResolves)
			assert.Len(t, sender.sent, tc.wantSends)
		})
	}
}

func TestProcess_ConfigurationUnavailable(t *testing.T) {
	svc := NewUnavailableService(errors.New("BILLING_API_URL is required"))

	for i := 0; i < 2; i++ {
		out := svc.Process(context.Background(), Request{Credentials: goodCredentials, Body: calloutBody(t, nil)})
		assert.Equal(t, StateConfigurationUnavailable, out.State)
		assert.Equal(t, http.StatusInternalServerError, out.StatusCode)
		assert.ErrorIs(t, out.Err, domain.ErrConfigurationUnavailable)
	}
}
