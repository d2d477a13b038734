package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quantgrid/xetrapulse/config"
)

// awsConfigLoader is an indirection for unit testing; defaults to the SDK loader.
var awsConfigLoader = awsconfig.LoadDefaultConfig

// InitS3 initializes an S3 client using the provided configuration.
//
// Behavior:
//   - Loads the standard AWS config chain (env credentials, shared config).
//   - Applies the configured region.
//   - When a custom endpoint is set (e.g. MinIO), switches the client to
//     path-style addressing.
//
// Returns:
//   - *s3.Client: a ready client (safe for concurrent use).
//   - error: if the AWS configuration chain cannot be resolved.
func InitS3(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	awsCfg, err := awsConfigLoader(ctx, awsconfig.WithRegion(cfg.S3.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}
