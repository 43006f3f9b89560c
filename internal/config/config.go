package config

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"payment-failure-service/internal/auth"

	"github.com/caarlos0/env/v11"
)

const (
	StageLocal = "local"
	StageCode  = "code"
	StageProd  = "prod"
)

type Config struct {
	Stage    string `env:"STAGE" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// TrustedAPICredentials is a comma separated list of apiClientId:apiToken pairs.
	TrustedAPICredentials map[string]string `env:"TRUSTED_API_CREDENTIALS"`
	TrustedTenantIDs      []string          `env:"TRUSTED_TENANT_IDS"`

	ConfigS3Bucket string `env:"CONFIG_S3_BUCKET"`
	ConfigS3Key    string `env:"CONFIG_S3_KEY" envDefault:"payment-failure/trusted.json"`
	AWSRegion      string `env:"AWS_REGION" envDefault:"eu-west-1"`

	Billing BillingConfig `envPrefix:"BILLING_API_"`
	Queue   QueueConfig
}

type BillingConfig struct {
	URL      string        `env:"URL,required"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type QueueConfig struct {
	Backend               string `env:"QUEUE_BACKEND" envDefault:"kafka"`
	KafkaBootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS"`
	KafkaTopic            string `env:"KAFKA_TOPIC" envDefault:"payment-failure-notifications"`
	SQSQueueURL           string `env:"SQS_QUEUE_URL"`
	RabbitMQURL           string `env:"RABBITMQ_URL"`
	RabbitMQQueue         string `env:"RABBITMQ_QUEUE" envDefault:"email_jobs"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Stage {
	case StageLocal, StageCode, StageProd:
	default:
		return fmt.Errorf("invalid STAGE %q", c.Stage)
	}
	if c.Billing.Timeout <= 0 {
		return errors.New("BILLING_API_TIMEOUT must be positive")
	}

	q := c.Queue
	switch q.Backend {
	case "kafka":
		if q.KafkaBootstrapServers == "" || q.KafkaTopic == "" {
			return errors.New("KAFKA_BOOTSTRAP_SERVERS and KAFKA_TOPIC are required for the kafka backend")
		}
	case "sqs":
		if q.SQSQueueURL == "" {
			return errors.New("SQS_QUEUE_URL is required for the sqs backend")
		}
	case "rabbitmq":
		if q.RabbitMQURL == "" || q.RabbitMQQueue == "" {
			return errors.New("RABBITMQ_URL and RABBITMQ_QUEUE are required for the rabbitmq backend")
		}
	default:
		return fmt.Errorf("unknown QUEUE_BACKEND %q", q.Backend)
	}
	return nil
}

// Trusted returns the credentials and tenants configured through the environment.
func (c *Config) Trusted() auth.Trusted {
	ids := make([]string, 0, len(c.TrustedAPICredentials))
	for id := range c.TrustedAPICredentials {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	trusted := auth.Trusted{TenantIDs: append([]string(nil), c.TrustedTenantIDs...)}
	for _, id := range ids {
		trusted.APIClients = append(trusted.APIClients, auth.Credentials{APIClientID: id, APIToken: c.TrustedAPICredentials[id]})
	}
	return trusted
}

// ValidateTrusted rejects a trusted set that could never authenticate a request.
func ValidateTrusted(t auth.Trusted) error {
	if len(t.APIClients) == 0 {
		return errors.New("no trusted api credentials configured")
	}
	for _, c := range t.APIClients {
		if c.APIClientID == "" || c.APIToken == "" {
			return errors.New("trusted api credentials must have a client id and a token")
		}
	}
	if len(t.TenantIDs) == 0 {
		return errors.New("no trusted tenant ids configured")
	}
	return nil
}
