package billing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"payment-failure-service/internal/domain"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

const maxErrorBody = 512

// Client reads invoice transactions from the billing provider's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string
}

func NewClient(httpClient *http.Client, baseURL, username, password string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
	}
}

type invoiceTransactionsResponse struct {
	Success  *bool        `json:"success"`
	Invoices []invoiceDTO `json:"invoices"`
}

type invoiceDTO struct {
	ID           string           `json:"id"`
	Amount       decimal.Decimal  `json:"amount"`
	Balance      decimal.Decimal  `json:"balance"`
	Status       string           `json:"status"`
	InvoiceItems []invoiceItemDTO `json:"invoiceItems"`
}

type invoiceItemDTO struct {
	ChargeAmount     decimal.Decimal `json:"chargeAmount"`
	ProductName      string          `json:"productName"`
	SubscriptionName string          `json:"subscriptionName"`
	ServiceStartDate string          `json:"serviceStartDate"`
	ServiceEndDate   string          `json:"serviceEndDate"`
}

// FetchInvoices returns the account's invoices in the order the API lists them.
func (c *Client) FetchInvoices(ctx context.Context, accountID string) (domain.InvoiceSummary, error) {
	endpoint := c.baseURL + "/transactions/invoices/accounts/" + url.PathEscape(accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.InvoiceSummary{}, fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiAccessKeyId", c.username)
	req.Header.Set("apiSecretAccessKey", c.password)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return domain.InvoiceSummary{}, fmt.Errorf("invoice request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return domain.InvoiceSummary{}, fmt.Errorf("invoice request returned %d: %s", res.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload invoiceTransactionsResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return domain.InvoiceSummary{}, fmt.Errorf("decode invoice response: %w", err)
	}
	if payload.Success != nil && !*payload.Success {
		return domain.InvoiceSummary{}, fmt.Errorf("invoice response reported success=false")
	}

	return payload.toDomain(), nil
}

func (r invoiceTransactionsResponse) toDomain() domain.InvoiceSummary {
	summary := domain.InvoiceSummary{Invoices: make([]domain.Invoice, 0, len(r.Invoices))}
	for _, inv := range r.Invoices {
		items := make([]domain.InvoiceItem, 0, len(inv.InvoiceItems))
		for _, it := range inv.InvoiceItems {
			items = append(items, domain.InvoiceItem{
				ChargeAmount:     it.ChargeAmount,
				ProductName:      it.ProductName,
				SubscriptionName: it.SubscriptionName,
				ServiceStartDate: it.ServiceStartDate,
				ServiceEndDate:   it.ServiceEndDate,
			})
		}
		summary.Invoices = append(summary.Invoices, domain.Invoice{
			ID:           inv.ID,
			Amount:       inv.Amount,
			Balance:      inv.Balance,
			Status:       domain.InvoiceStatus(inv.Status),
			InvoiceItems: items,
		})
	}
	return summary
}
