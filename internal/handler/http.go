package handler

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bmizerany/pat"
	"github.com/google/uuid"
	"github.com/justinas/alice"
	log "github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

// NewRouter serves the callout over plain HTTP for running outside a function environment.
func NewRouter(h *apiGatewayHandler) http.Handler {
	standardMiddleware := alice.New(recoverPanic, logRequest, makeResponseJSON)

	mux := pat.New()
	mux.Post("/payment-failure", standardMiddleware.ThenFunc(h.ServeHTTP))
	return mux
}

// ServeHTTP converts the request into an API Gateway proxy event and answers with its response.
func (h *apiGatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, `{"message":"Bad Request"}`, http.StatusBadRequest)
		return
	}

	query := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	headers := make(map[string]string)
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	resp, _ := h.HandleRequest(r.Context(), events.APIGatewayProxyRequest{
		HTTPMethod:            r.Method,
		Path:                  r.URL.Path,
		Headers:               headers,
		QueryStringParameters: query,
		Body:                  string(body),
		RequestContext:        events.APIGatewayProxyRequestContext{RequestID: uuid.NewString()},
	})

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func makeResponseJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"remote_addr": r.RemoteAddr,
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration":    time.Since(start).String(),
		}).Info("HTTP request")
	})
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.WithError(fmt.Errorf("%v", err)).Error("Recovered from panic")
				w.Header().Set("Connection", "close")
				http.Error(w, `{"message":"Internal Server Error"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
