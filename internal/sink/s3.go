// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sink holds output destinations that need more than an io.Writer.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ContentType is the MIME type set on uploaded S-Record objects.
const ContentType = "text/plain; charset=us-ascii"

// ErrCommitted is returned by Write after the object was uploaded.
var ErrCommitted = errors.New("s3 sink: already committed")

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 spools written bytes to a temporary file and uploads them as one
// object on Commit. Close always removes the spool file.
type S3 struct {
	client s3API
	bucket string
	key    string
	spool  *os.File
	size   int64
	done   bool
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(raw string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(raw, "s3://")
	if !ok {
		return "", "", fmt.Errorf("s3 url %q: missing s3:// prefix", raw)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 url %q: want s3://bucket/key", raw)
	}
	return bucket, key, nil
}

// NewS3 creates a sink uploading to bucket/key.
func NewS3(client s3API, bucket, key string) (*S3, error) {
	if client == nil {
		return nil, errors.New("s3 sink: client is required")
	}
	if strings.TrimSpace(bucket) == "" || strings.TrimSpace(key) == "" {
		return nil, errors.New("s3 sink: bucket and key are required")
	}

	spool, err := os.CreateTemp("", "srecdump-*.s19")
	if err != nil {
		return nil, fmt.Errorf("s3 sink: create spool: %w", err)
	}
	return &S3{client: client, bucket: bucket, key: key, spool: spool}, nil
}

// Write appends p to the spool file.
func (s *S3) Write(p []byte) (int, error) {
	if s.done {
		return 0, ErrCommitted
	}
	n, err := s.spool.Write(p)
	s.size += int64(n)
	return n, err
}

// Commit uploads everything written so far.
func (s *S3) Commit(ctx context.Context) error {
	if s.done {
		return ErrCommitted
	}
	if _, err := s.spool.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("s3 sink: rewind spool: %w", err)
	}

	bucket, key, ct, size := s.bucket, s.key, ContentType, s.size
	input := s3.PutObjectInput{
		Bucket:        &bucket,
		Key:           &key,
		Body:          s.spool,
		ContentLength: &size,
		ContentType:   &ct,
	}
	if _, err := s.client.PutObject(ctx, &input); err != nil {
		return fmt.Errorf("put s3 object key=%q: %w", s.key, err)
	}
	s.done = true
	return nil
}

// Location returns the destination as an s3:// URL.
func (s *S3) Location() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Close removes the spool file without uploading.
func (s *S3) Close() error {
	name := s.spool.Name()
	err := s.spool.Close()
	if rmErr := os.Remove(name); err == nil {
		err = rmErr
	}
	return err
}
