package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"payment-failure-service/internal/service"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	requests []service.Request
	outcome  service.Outcome
	panics   bool
}

func (f *fakeService) Process(ctx context.Context, req service.Request) service.Outcome {
	if f.panics {
		panic("boom")
	}
	f.requests = append(f.requests, req)
	return f.outcome
}

func TestHandleRequest(t *testing.T) {
	svc := &fakeService{outcome: service.Outcome{State: service.StateSuccess, StatusCode: http.StatusOK}}
	h := NewAPIGatewayHandler(svc)

	resp, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{"apiClientId": "client", "apiToken": "token"},
		Body:                  `{"accountId":"A00001"}`,
		RequestContext:        events.APIGatewayProxyRequestContext{RequestID: "req-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"OK"}`, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	require.Len(t, svc.requests, 1)
	got := svc.requests[0]
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "client", got.Credentials.APIClientID)
	assert.Equal(t, "token", got.Credentials.APIToken)
	assert.Equal(t, `{"accountId":"A00001"}`, string(got.Body))
}

func TestHandleRequest_Base64Body(t *testing.T) {
	svc := &fakeService{outcome: service.Outcome{StatusCode: http.StatusOK}}
	h := NewAPIGatewayHandler(svc)

	_, err := h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"a":1}`)),
		IsBase64Encoded: true,
	})
	require.NoError(t, err)
	require.Len(t, svc.requests, 1)
	assert.Equal(t, `{"a":1}`, string(svc.requests[0].Body))
	assert.NotEmpty(t, svc.requests[0].RequestID)

	_, err = h.HandleRequest(context.Background(), events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true})
	require.NoError(t, err)
	require.Len(t, svc.requests, 2)
	assert.Empty(t, svc.requests[1].Body)
}

func TestHandleRequest_OutcomesDoNotEchoDetails(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		svc := &fakeService{outcome: service.Outcome{StatusCode: code, Err: assert.AnError}}
		resp, err := NewAPIGatewayHandler(svc).HandleRequest(context.Background(), events.APIGatewayProxyRequest{})
		require.NoError(t, err)
		assert.Equal(t, code, resp.StatusCode)
		assert.NotContains(t, resp.Body, assert.AnError.Error())
	}
}

func TestRouter(t *testing.T) {
	svc := &fakeService{outcome: service.Outcome{StatusCode: http.StatusUnauthorized}}
	srv := httptest.NewServer(NewRouter(NewAPIGatewayHandler(svc)))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/payment-failure?apiClientId=client&apiToken=token", "application/json", strings.NewReader(`{"x":1}`))
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.Len(t, svc.requests, 1)
	assert.Equal(t, "client", svc.requests[0].Credentials.APIClientID)
	assert.Equal(t, "token", svc.requests[0].Credentials.APIToken)
	assert.Equal(t, `{"x":1}`, string(svc.requests[0].Body))
}

func TestRouter_RecoversPanics(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewAPIGatewayHandler(&fakeService{panics: true})))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/payment-failure", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
}

func TestRouter_UnknownPath(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewAPIGatewayHandler(&fakeService{})))
	defer srv.Close()

	res, err := http.Post(srv.URL+"/other", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
