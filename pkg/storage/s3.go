package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gdpr-toolkit/obfuscator/pkg/config"
	"github.com/gdpr-toolkit/obfuscator/pkg/location"
)

// S3API is the subset of the S3 client used by this store. Tests
// substitute a fake.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 reads and overwrites objects in S3. A fresh client is acquired per
// call: credentials are resolved at operation time and no connection
// state is shared across invocations.
type S3 struct {
	newClient func(ctx context.Context) (S3API, error)
}

// NewS3 returns an S3 store configured from cfg. When cfg sets a
// custom endpoint, path-style addressing is enabled.
func NewS3(cfg config.Config) *S3 {
	return &S3{
		newClient: func(ctx context.Context) (S3API, error) {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
			if err != nil {
				return nil, fmt.Errorf("loading AWS config: %w", err)
			}
			return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
				if cfg.AWSEndpointURL != "" {
					o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
					o.UsePathStyle = true
				}
			}), nil
		},
	}
}

// NewS3WithClient returns an S3 store backed by a fixed client. Used in
// tests.
func NewS3WithClient(client S3API) *S3 {
	return &S3{newClient: func(context.Context) (S3API, error) { return client, nil }}
}

// Fetch implements Store.
func (s *S3) Fetch(ctx context.Context, loc location.Location) ([]byte, error) {
	client, err := s.newClient(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("retrieving %s: %w", loc, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", loc, err)
	}
	return data, nil
}

// Store implements Store, overwriting the object in place with the
// given content type.
func (s *S3) Store(ctx context.Context, loc location.Location, data []byte, contentType string) error {
	client, err := s.newClient(ctx)
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(loc.Bucket),
		Key:         aws.String(loc.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", loc, err)
	}
	return nil
}

// NewRouter builds the default backend router from configuration.
func NewRouter(cfg config.Config) *Router {
	return &Router{Local: NewLocal(), S3: NewS3(cfg)}
}
