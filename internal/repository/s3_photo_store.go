package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	apperrors "mealtap/internal/errors"
)

// S3Options configures the S3-compatible photo store. With Supabase the access
// key is the project ref, the secret is the publishable key and every request
// carries the user's access token as session token, so bucket policies apply
// to the signed-in user.
type S3Options struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

type s3PhotoStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	opts    S3Options
}

// NewS3PhotoStore creates a photo store backed by an S3-compatible endpoint.
func NewS3PhotoStore(ctx context.Context, opts S3Options) (PhotoStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})
	return &s3PhotoStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		opts:    opts,
	}, nil
}

// asUser scopes a single call to the user's token.
func (s *s3PhotoStore) asUser(token string) func(*s3.Options) {
	return func(o *s3.Options) {
		if token != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(s.opts.AccessKeyID, s.opts.SecretAccessKey, token)
		}
	}
}

func (s *s3PhotoStore) Upload(ctx context.Context, token, path string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		IfNoneMatch: aws.String("*"),
	}, s.asUser(token))
	if err != nil {
		if isS3Conflict(err) {
			return fmt.Errorf("%w: %s", apperrors.ErrPhotoExists, path)
		}
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (s *s3PhotoStore) SignedURL(ctx context.Context, token, path string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(ttl), func(po *s3.PresignOptions) {
		po.ClientOptions = append(po.ClientOptions, s.asUser(token))
	})
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", err)
	}
	return req.URL, nil
}

func isS3Conflict(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}
