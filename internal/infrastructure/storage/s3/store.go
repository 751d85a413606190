// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

// Package s3 stores archived transcript and notes content in Amazon S3.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/meetingharvest/transcript-service/internal/domain"
)

// putObjectAPI is the subset of the S3 client used by the store.
type putObjectAPI interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store implements domain.ContentStore using Amazon S3. Overwrites of an
// existing key are allowed at this layer; the registry's transcript existence
// check is what makes archival at-most-once.
type Store struct {
	client putObjectAPI
	bucket string
	prefix string
}

// New creates a new S3-backed content store.
func New(ctx context.Context, region, bucket, prefix string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
	}, nil
}

var _ domain.ContentStore = (*Store)(nil)

// Put writes data under the given path and returns the stored path.
func (s *Store) Put(ctx context.Context, path string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	objectKey := applyPrefix(s.prefix, path)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/plain; charset=utf-8"),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", domain.NewStorageError(
			fmt.Sprintf("s3 put object bucket=%s key=%s", s.bucket, objectKey), err)
	}

	return path, nil
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}
