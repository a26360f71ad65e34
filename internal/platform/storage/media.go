// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage provides the binary media store for avatar and cover images.

It wraps an S3-compatible object store (MinIO, Cloudflare R2, AWS S3) behind
a one-method upload capability so the domain layer never touches object
storage primitives directly.

Contract:

  - Upload consumes a local temporary file and returns a public URL.
  - The local file is ALWAYS deleted, on both the success and failure paths.
  - A failed upload yields an error, never a partial URL.
*/
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/taibuivan/vidora/pkg/uuid"
)

// Uploader is the capability the domain layer depends on.
//
// # Why an interface?
//
// Media hosting is an external collaborator, not core logic. The interface
// lets services swap in a test double and keeps minio types out of the
// domain packages.
type Uploader interface {
	// Upload pushes the file at localPath to the media store and returns its
	// public URL. The local file is removed regardless of the outcome.
	Upload(ctx context.Context, localPath string) (string, error)
}

// Options configures the media store connection.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
	Bucket    string

	// PublicBaseURL is the URL prefix under which uploaded objects are served,
	// e.g. "https://media.vidora.app".
	PublicBaseURL string
}

// MediaStore implements [Uploader] on top of a MinIO client.
type MediaStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *slog.Logger
}

// NewMediaStore connects to the object store and verifies the target bucket.
func NewMediaStore(ctx context.Context, opts Options, logger *slog.Logger) (*MediaStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to create client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to check bucket %q: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("storage: failed to create bucket %q: %w", opts.Bucket, err)
		}
	}

	logger.Info("media store connected",
		slog.String("endpoint", opts.Endpoint),
		slog.String("bucket", opts.Bucket),
	)

	return &MediaStore{
		client:  client,
		bucket:  opts.Bucket,
		baseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		logger:  logger,
	}, nil
}

// Upload pushes a local temporary file into the bucket under a fresh
// time-sortable object key and returns its public URL.
//
// The local file is deleted on both success and failure — the spool
// directory must never accumulate orphans.
func (store *MediaStore) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", fmt.Errorf("storage: empty local path")
	}

	// The temp file is consumed by this call, success or not.
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			store.logger.Warn("media_tmp_cleanup_failed",
				slog.String("path", localPath),
				slog.Any("error", err),
			)
		}
	}()

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("storage: failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("storage: failed to stat %s: %w", localPath, err)
	}

	extension := filepath.Ext(localPath)
	objectKey := uuid.New() + extension

	contentType := mime.TypeByExtension(extension)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = store.client.PutObject(ctx, store.bucket, objectKey, file, info.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload failed: %w", err)
	}

	return store.baseURL + "/" + objectKey, nil
}

// Ping verifies the object store is reachable and the bucket still exists.
// Used by the readiness probe.
func (store *MediaStore) Ping(ctx context.Context) error {
	exists, err := store.client.BucketExists(ctx, store.bucket)
	if err != nil {
		return fmt.Errorf("storage: ping failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("storage: bucket %q is gone", store.bucket)
	}
	return nil
}
