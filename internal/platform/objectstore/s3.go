package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type s3Signer struct {
	log     *logger.Logger
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewS3Signer loads the default AWS credential chain. Extra load options
// (static credentials in tests) are appended after the region.
func NewS3Signer(ctx context.Context, cfg S3Config, ttl time.Duration, log *logger.Logger, loadOpts ...func(*config.LoadOptions) error) (Signer, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := append([]func(*config.LoadOptions) error{config.WithRegion(region)}, loadOpts...)
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &s3Signer{
		log:     log.With("signer", "S3"),
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     ttl,
	}, nil
}

func (s *s3Signer) Provider() Mode     { return ModeS3 }
func (s *s3Signer) IsConfigured() bool { return s != nil && s.presign != nil && s.bucket != "" }

// If-None-Match: * is signed into each URL so a PUT onto an existing key fails.
func (s *s3Signer) GenerateUploadURLs(ctx context.Context, files []FileDescriptor, namespace string) ([]UploadTarget, error) {
	targets, err := generate(ctx, files, namespace, func(ctx context.Context, blob, contentType string) (string, error) {
		out, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(blob),
			ContentType: aws.String(contentType),
			IfNoneMatch: aws.String("*"),
		}, s3.WithPresignExpires(s.ttl))
		if err != nil {
			return "", err
		}
		return out.URL, nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("upload urls issued", "count", len(targets), "namespace", namespace)
	return targets, nil
}

func (s *s3Signer) GetDownloadURL(ctx context.Context, blobPath string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.ttl
	}
	out, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(blobPath),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return out.URL, nil
}
