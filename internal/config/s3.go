package config

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds S3 configuration
type S3Config struct {
	Client *s3.Client
	Bucket string
	// PublicBaseURL prefixes object keys to build public attachment URLs.
	PublicBaseURL string
}

// NewS3Config creates a new S3 configuration. S3_ENDPOINT points the client
// at an S3-compatible store such as MinIO.
func NewS3Config(ctx context.Context) (*S3Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(os.Getenv("AWS_REGION")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	endpoint := os.Getenv("S3_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	bucket := os.Getenv("S3_BUCKET_NAME")
	publicURL := os.Getenv("S3_PUBLIC_BASE_URL")
	if publicURL == "" {
		publicURL = "https://" + bucket + ".s3." + cfg.Region + ".amazonaws.com"
	}

	return &S3Config{
		Client:        client,
		Bucket:        bucket,
		PublicBaseURL: strings.TrimRight(publicURL, "/"),
	}, nil
}
