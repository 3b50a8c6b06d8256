// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ObjectGetter is the subset of the S3 client used by S3.
type ObjectGetter interface {
	GetObject(context.Context, *s3v2.GetObjectInput, ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// S3 fetches s3://bucket/key URLs and returns the object body as text.
type S3 struct {
	client ObjectGetter
}

func NewS3(client ObjectGetter) *S3 {
	return &S3{client: client}
}

// awsOptions holds optional overrides for AWS config loading.
type awsOptions struct {
	profile string
	region  string
}

// AWSOption customizes how AWS config is loaded. With no options the shell's
// AWS setup is inherited (AWS_PROFILE, shared config, env, IMDS).
type AWSOption func(*awsOptions)

func WithProfile(profile string) AWSOption {
	return func(o *awsOptions) { o.profile = profile }
}

func WithRegion(region string) AWSOption {
	return func(o *awsOptions) { o.region = region }
}

// NewS3FromConfig loads the default AWS config chain and builds an S3 fetcher
// on top of it.
func NewS3FromConfig(ctx context.Context, opts ...AWSOption) (*S3, error) {
	var o awsOptions
	for _, opt := range opts {
		opt(&o)
	}

	var loadOpts []func(*config.LoadOptions) error
	if o.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(o.profile))
	}
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3(s3v2.NewFromConfig(cfg)), nil
}

// Fetch implements Fetcher.
func (s *S3) Fetch(ctx context.Context, rawURL string) (string, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return "", &Error{URL: rawURL, Err: err}
	}

	out, err := s.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			log.Debugf("s3 error code %s for %s", apiErr.ErrorCode(), rawURL)
		}
		return "", &Error{URL: rawURL, Err: fmt.Errorf("failed to get object: %w", err)}
	}
	defer out.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(out.Body); err != nil {
		return "", &Error{URL: rawURL, Err: fmt.Errorf("failed to read object: %w", err)}
	}

	log.Debugf("fetched s3://%s/%s (%d bytes)", bucket, key, doc.Len())
	return doc.String(), nil
}

func parseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("not an s3 url: %s", rawURL)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url must be s3://bucket/key: %s", rawURL)
	}
	return bucket, key, nil
}
