package handler

import (
	"context"
	"encoding/base64"
	"net/http"

	"payment-failure-service/internal/auth"
	"payment-failure-service/internal/service"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	queryAPIClientID = "apiClientId"
	queryAPIToken    = "apiToken"
)

// PaymentFailureService defines the interface for the callout processing pipeline
type PaymentFailureService interface {
	Process(ctx context.Context, req service.Request) service.Outcome
}

type apiGatewayHandler struct {
	paymentFailureService PaymentFailureService
}

func NewAPIGatewayHandler(paymentFailureService PaymentFailureService) *apiGatewayHandler {
	return &apiGatewayHandler{paymentFailureService: paymentFailureService}
}

type responseBody struct {
	Message string `json:"message"`
}

// HandleRequest is the Lambda entry point for API Gateway proxy events. It never returns an error:
// every outcome is expressed through the status code.
func (h *apiGatewayHandler) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			log.WithField("request_id", requestID).WithError(err).Warn("Could not decode base64 body")
			decoded = nil // parsed as an empty body after authentication
		}
		body = decoded
	}

	out := h.paymentFailureService.Process(ctx, service.Request{
		RequestID: requestID,
		Credentials: auth.Credentials{
			APIClientID: req.QueryStringParameters[queryAPIClientID],
			APIToken:    req.QueryStringParameters[queryAPIToken],
		},
		Body: body,
	})

	return toResponse(out), nil
}

func toResponse(out service.Outcome) events.APIGatewayProxyResponse {
	payload, err := json.Marshal(responseBody{Message: http.StatusText(out.StatusCode)})
	if err != nil {
		payload = []byte(`{}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(payload),
	}
}
