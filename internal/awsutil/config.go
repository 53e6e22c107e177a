// Package awsutil loads AWS configuration shared by the DynamoDB row store and S3 attachments.
package awsutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"

	"github.com/spec-kit/dispute-portal/internal/config"
)

// Load loads the default AWS configuration, pointing every client at cfg.EndpointURL
// when it is set (e.g. http://localstack:4566).
func Load(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsConf, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EndpointURL != "" {
		awsConf.BaseEndpoint = aws.String(cfg.EndpointURL)
	}
	return awsConf, nil
}

// UsesCustomEndpoint reports whether clients should use path-style addressing.
func UsesCustomEndpoint(cfg config.AWSConfig) bool {
	return cfg.EndpointURL != ""
}
