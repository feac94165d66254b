// Package storage wraps the S3-compatible object store that holds user
// documents and hazard media. Objects are uploaded once at
// registration/report time and served to clients through public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Buckets used by the application.
const (
	UserDocumentsBucket = "user-documents"
	HazardMediaBucket   = "hazard-media"
)

// BlobStore uploads a file and returns its public URL. Handlers depend
// on this interface so tests can substitute an in-memory fake.
type BlobStore interface {
	Upload(ctx context.Context, bucket, name string, data []byte, contentType string) (string, error)
}

// S3Store talks to any S3-compatible endpoint (MinIO, Supabase storage,
// AWS itself). Path-style addressing is forced because self-hosted
// stores rarely support virtual-hosted buckets.
type S3Store struct {
	client    *s3.Client
	publicURL string
}

// NewS3Store builds a client against the given endpoint with static
// credentials. publicURL is the base under which uploaded objects are
// publicly reachable, typically "<endpoint>" or a CDN front.
func NewS3Store(ctx context.Context, endpoint, region, accessKey, secretKey, publicURL string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return &S3Store{client: client, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Upload writes the object (overwriting any existing one with the same
// name) and returns its public URL.
func (s *S3Store) Upload(ctx context.Context, bucket, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, name, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, name), nil
}
