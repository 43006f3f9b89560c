package config

import (
	"context"
	"fmt"

	"payment-failure-service/internal/auth"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// LoadTrustedDocument reads a JSON document of trusted api clients and tenant ids from S3.
func LoadTrustedDocument(ctx context.Context, client s3iface.S3API, bucket, key string) (auth.Trusted, error) {
	out, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return auth.Trusted{}, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	var trusted auth.Trusted
	if err := json.NewDecoder(out.Body).Decode(&trusted); err != nil {
		return auth.Trusted{}, fmt.Errorf("failed to decode s3://%s/%s: %w", bucket, key, err)
	}
	log.WithFields(log.Fields{
		"bucket":      bucket,
		"key":         key,
		"api_clients": len(trusted.APIClients),
		"tenants":     len(trusted.TenantIDs),
	}).Info("Loaded trusted credentials document")
	return trusted, nil
}

// ResolveTrusted merges the optional S3 document into the environment values and validates the result.
// client may be nil when no bucket is configured.
func ResolveTrusted(ctx context.Context, cfg *Config, client s3iface.S3API) (auth.Trusted, error) {
	trusted := cfg.Trusted()
	if cfg.ConfigS3Bucket != "" {
		if client == nil {
			return auth.Trusted{}, fmt.Errorf("CONFIG_S3_BUCKET is set but no s3 client is available")
		}
		doc, err := LoadTrustedDocument(ctx, client, cfg.ConfigS3Bucket, cfg.ConfigS3Key)
		if err != nil {
			return auth.Trusted{}, err
		}
		trusted.APIClients = append(trusted.APIClients, doc.APIClients...)
		trusted.TenantIDs = append(trusted.TenantIDs, doc.TenantIDs...)
	}
	if err := ValidateTrusted(trusted); err != nil {
		return auth.Trusted{}, err
	}
	return trusted, nil
}
