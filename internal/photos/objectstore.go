package photos

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Object is one stored binary object.
type Object struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// ObjectStore is the binary store behind property photos.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
}

// S3Store is the S3 implementation of the ObjectStore interface
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Store creates an S3-backed object store. baseURL is the public
// prefix under which objects are served; when empty the virtual-hosted
// bucket URL is used.
func NewS3Store(ctx context.Context, region, bucket, baseURL string) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Store{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// BaseURL returns the public prefix under which objects are served.
func (s *S3Store) BaseURL() string { return s.baseURL }

// Put implements the ObjectStore interface
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("PutObject operation failed: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete implements the ObjectStore interface
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("DeleteObject operation failed: %w", err)
	}
	return nil
}

// List implements the ObjectStore interface
func (s *S3Store) List(ctx context.Context, prefix string) ([]Object, error) {
	result, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("ListObjectsV2 operation failed: %w", err)
	}

	objects := make([]Object, 0, len(result.Contents))
	for _, item := range result.Contents {
		obj := Object{}
		if item.Key != nil {
			obj.Key = *item.Key
			obj.URL = s.baseURL + "/" + *item.Key
		}
		if item.Size != nil {
			obj.Size = *item.Size
		}
		objects = append(objects, obj)
	}
	return objects, nil
}
