package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Uploader stores dish images and returns public URLs. Size and content-type
// limits are enforced by the HTTP layer before anything reaches an Uploader.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// S3Uploader stores objects in an S3 bucket
type S3Uploader struct {
	bucket   string
	uploader *s3manager.Uploader
	client   *s3.S3
}

// NewS3Uploader creates an uploader for the given bucket and region
func NewS3Uploader(bucket, region, endpoint string) (*S3Uploader, error) {
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	return &S3Uploader{
		bucket:   bucket,
		uploader: s3manager.NewUploader(sess),
		client:   s3.New(sess),
	}, nil
}

// Upload stores an object and returns its public URL
func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	out, err := u.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return out.Location, nil
}

// Delete removes an object by its public URL. Unknown URLs are ignored.
func (u *S3Uploader) Delete(ctx context.Context, publicURL string) error {
	key, ok := u.keyFromURL(publicURL)
	if !ok {
		return nil
	}

	_, err := u.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (u *S3Uploader) keyFromURL(publicURL string) (string, bool) {
	parsed, err := url.Parse(publicURL)
	if err != nil {
		return "", false
	}

	path := strings.TrimPrefix(parsed.Path, "/")
	// Path-style URLs carry the bucket as the first segment.
	path = strings.TrimPrefix(path, u.bucket+"/")
	if path == "" {
		return "", false
	}
	return path, true
}
