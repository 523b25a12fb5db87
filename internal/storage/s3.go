package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Options configures S3Backend. Endpoint is set for S3-compatible stores
// and switches to path-style addressing.
type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string
	// BaseURL overrides the public URL prefix, e.g. a CDN in front of the bucket.
	BaseURL string
}

// S3Backend stores objects in a bucket.
type S3Backend struct {
	client  *s3.S3
	bucket  string
	baseURL string
}

// NewS3Backend opens an AWS session with the default credential chain.
func NewS3Backend(opts S3Options) (*S3Backend, error) {
	awsCfg := &aws.Config{Region: aws.String(opts.Region)}
	if opts.Endpoint != "" {
		awsCfg.Endpoint = aws.String(opts.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" || strings.HasPrefix(baseURL, "/") {
		if opts.Endpoint != "" {
			baseURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
		}
	}

	return &S3Backend{
		client:  s3.New(sess),
		bucket:  opts.Bucket,
		baseURL: baseURL,
	}, nil
}

// Put uploads content as key.
func (b *S3Backend) Put(ctx context.Context, key string, content []byte, contentType string) error {
	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(contentType),
	})
	return err
}

// Delete removes key from the bucket.
func (b *S3Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	return err
}

// URL returns the public object URL.
func (b *S3Backend) URL(key string) string {
	if key == "" {
		return ""
	}
	return b.baseURL + "/" + strings.TrimLeft(key, "/")
}
