// Mediamirror - Object Store Media Mirror and Range Streaming Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediamirror

package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tomtom215/mediamirror/internal/config"
	"github.com/tomtom215/mediamirror/internal/metrics"
	"github.com/tomtom215/mediamirror/internal/store"
)

const delimiter = "/"

// S3Store is a Store backed by an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// New wraps an existing S3 client.
func New(client *s3.Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// NewFromConfig builds an S3 client from the remote configuration. Credentials
// come from the default AWS chain unless overridden through optFns.
func NewFromConfig(ctx context.Context, cfg config.RemoteConfig, optFns ...func(*awsconfig.LoadOptions) error) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	opts = append(opts, optFns...)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return New(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Bucket), nil
}

// Bucket returns the bucket name.
func (s *S3Store) Bucket() string { return s.bucket }

// List returns the objects directly under prefix. Common prefixes
// (sub-"directories") and the prefix placeholder object are skipped.
func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	start := time.Now()
	defer func() {
		metrics.RecordObjectStoreRequest("list", time.Since(start), 0)
	}()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String(delimiter),
	})

	var out []ObjectInfo
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || key == prefix {
				continue
			}
			out = append(out, ObjectInfo{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
			})
		}
	}
	return out, nil
}

// Download streams the object at key into dstPath.
func (s *S3Store) Download(ctx context.Context, key, dstPath string) (int64, error) {
	start := time.Now()
	var n int64
	defer func() {
		metrics.RecordObjectStoreRequest("download", time.Since(start), n)
	}()

	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return 0, fmt.Errorf("%s: %w", key, ErrObjectNotFound)
		}
		return 0, fmt.Errorf("s3 get object: %w", err)
	}
	defer resp.Body.Close()

	n, err = store.WriteFileAtomic(dstPath, resp.Body)
	if err != nil {
		return n, fmt.Errorf("s3 download %s: %w", key, err)
	}
	return n, nil
}

// isNotFoundError returns true if the error indicates the object doesn't exist.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if code == "NoSuchKey" || code == "NotFound" || code == "404" {
			return true
		}
	}
	return false
}
