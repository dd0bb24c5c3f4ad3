// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Backend wraps one S3 client shared by all prefixed stores.
type s3Backend struct {
	s3       *s3.Client
	bucket   string
	endpoint string
	cdnURL   string
}

// newS3Backend builds the shared client with static credentials and
// path-style addressing.
func newS3Backend(cfg Config) *s3Backend {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})
	return &s3Backend{
		s3:       client,
		bucket:   cfg.Bucket,
		endpoint: endpoint,
		cdnURL:   strings.TrimRight(cfg.CDNURL, "/"),
	}
}

func (b *s3Backend) store(prefix string) *s3Store {
	return &s3Store{backend: b, prefix: strings.Trim(prefix, "/")}
}

// s3Store is one logical area under an object key prefix.
type s3Store struct {
	backend *s3Backend
	prefix  string
}

func (s *s3Store) key(name string) string {
	return s.prefix + "/" + strings.TrimLeft(name, "/")
}

// Put stores an object with public-read ACL so the storefront can fetch
// it directly.
func (s *s3Store) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.backend.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.backend.bucket),
		Key:           aws.String(s.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", s.key(name), err)
	}
	return nil
}

func (s *s3Store) Get(ctx context.Context, name string) ([]byte, error) {
	output, err := s.backend.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.backend.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", s.key(name), err)
	}
	defer output.Body.Close()
	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body %s: %w", s.key(name), err)
	}
	return data, nil
}

func (s *s3Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.backend.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.backend.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %s: %w", s.key(name), err)
	}
	return true, nil
}

func (s *s3Store) List(ctx context.Context) ([]string, error) {
	prefix := s.prefix + "/"
	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.backend.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.backend.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", s.prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func (s *s3Store) Remove(ctx context.Context, name string) error {
	_, err := s.backend.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.backend.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", s.key(name), err)
	}
	return nil
}

// PublicURL prefers the CDN when configured, falling back to a path-style
// bucket URL.
func (s *s3Store) PublicURL(name string) string {
	if name == "" {
		return ""
	}
	if s.backend.cdnURL != "" {
		return s.backend.cdnURL + "/" + s.key(name)
	}
	return s.backend.endpoint + "/" + s.backend.bucket + "/" + s.key(name)
}
