package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-failure-service/internal/billing"
	"payment-failure-service/internal/config"
	"payment-failure-service/internal/handler"
	"payment-failure-service/internal/sender"
	"payment-failure-service/internal/service"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// 1. Logger
	inLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	if inLambda {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	log.Info("Starting payment failure service...")

	// 2. .env is only expected when running locally
	if !inLambda {
		if err := godotenv.Load(); err != nil {
			log.Warn("Could not load .env file.")
		}
	}

	// 3. Wire the pipeline. A broken configuration still starts so every request gets a 500.
	ctx := context.Background()
	cfg, svc, queueSender, err := build(ctx)
	if err != nil {
		log.WithError(err).Error("Configuration unavailable, all requests will be rejected")
		svc = service.NewUnavailableService(err)
	}
	if queueSender != nil {
		defer func() {
			if err := queueSender.Close(); err != nil {
				log.WithError(err).Error("Failed to close queue sender")
			}
		}()
	}

	apiHandler := handler.NewAPIGatewayHandler(svc)

	// 4. Serve
	if inLambda {
		lambda.Start(apiHandler.HandleRequest)
		return
	}

	addr := ":8080"
	if cfg != nil {
		addr = cfg.HTTPAddr
	}
	serveHTTP(addr, handler.NewRouter(apiHandler))
}

func build(ctx context.Context) (*config.Config, handler.PaymentFailureService, sender.QueueSender, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, keeping info")
	}

	var sess *session.Session
	if cfg.ConfigS3Bucket != "" || cfg.Queue.Backend == sender.BackendSQS {
		sess, err = session.NewSession(&aws.Config{Region: aws.String(cfg.AWSRegion)})
		if err != nil {
			return cfg, nil, nil, fmt.Errorf("failed to create aws session: %w", err)
		}
	}

	var s3Client s3iface.S3API
	if cfg.ConfigS3Bucket != "" {
		s3Client = s3.New(sess)
	}
	trusted, err := config.ResolveTrusted(ctx, cfg, s3Client)
	if err != nil {
		return cfg, nil, nil, err
	}

	queueSender, err := newQueueSender(cfg, sess)
	if err != nil {
		return cfg, nil, nil, err
	}

	billingClient := billing.NewClient(
		&http.Client{Timeout: cfg.Billing.Timeout},
		cfg.Billing.URL,
		cfg.Billing.Username,
		cfg.Billing.Password,
	)
	svc := service.NewPaymentFailureService(trusted, billing.NewResolver(billingClient), queueSender)

	log.WithFields(log.Fields{
		"stage":         cfg.Stage,
		"queue_backend": cfg.Queue.Backend,
		"api_clients":   len(trusted.APIClients),
		"tenants":       len(trusted.TenantIDs),
	}).Info("Payment failure service configured")
	return cfg, svc, queueSender, nil
}

func newQueueSender(cfg *config.Config, sess *session.Session) (sender.QueueSender, error) {
	q := cfg.Queue
	switch q.Backend {
	case sender.BackendKafka:
		log.WithFields(log.Fields{"kafka_servers": q.KafkaBootstrapServers, "topic": q.KafkaTopic}).Info("Connecting to Kafka")
		return sender.NewKafkaSender(q.KafkaBootstrapServers, q.KafkaTopic)
	case sender.BackendSQS:
		log.WithField("queue_url", q.SQSQueueURL).Info("Using SQS queue")
		return sender.NewSQSSender(sess, q.SQSQueueURL), nil
	case sender.BackendRabbitMQ:
		log.WithField("queue", q.RabbitMQQueue).Info("Connecting to RabbitMQ")
		return sender.NewRabbitMQSender(q.RabbitMQURL, q.RabbitMQQueue)
	default:
		return nil, fmt.Errorf("unknown queue backend %q", q.Backend)
	}
}

func serveHTTP(addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("Listening for payment failure callouts")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigchan
	log.Infof("Caught signal %v: terminating", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
