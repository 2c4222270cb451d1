package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"autotasking/pkg/config"
	"autotasking/pkg/errutil"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Client = fx.Module("minio.client", fx.Provide(registerClient, NewStorage))

func registerClient(c *config.Config) (*minio.Client, error) {
	client, err := minio.New(c.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Minio.AccessKey, c.Minio.SecretKey, ""),
		Secure: c.Minio.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, c.Minio.BucketName)
	if err != nil {
		zap.L().Warn("failed to check if bucket exists", zap.String("bucket", c.Minio.BucketName), zap.Error(err))
	}
	zap.L().Info("MinIO client initialized", zap.String("endpoint", c.Minio.Endpoint), zap.Bool("bucketExists", exists))
	return client, nil
}

// Storage keeps video payloads in one bucket.
type Storage struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewStorage(client *minio.Client, c *config.Config) *Storage {
	return &Storage{
		client: client,
		bucket: c.Minio.BucketName,
		ttl:    c.Minio.SignedURLTTL,
	}
}

// Put writes the object and refuses to replace an existing key.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	switch {
	case err == nil:
		return errutil.Conflict("object already exists", nil, errutil.WithDetails(errutil.Detail{Field: "file", Message: key}))
	case !isNotFound(err):
		return errutil.Store("stat object", err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return errutil.Store("upload object", err)
	}
	return nil
}

// SignedURL returns a time-limited GET link for key.
func (s *Storage) SignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.ttl, url.Values{})
	if err != nil {
		return "", errutil.Store("sign object url", err)
	}
	return u.String(), nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return errutil.Store("remove object", err)
	}
	return nil
}

// Ping reports whether the bucket is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.bucket)
	}
	return nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.StatusCode == http.StatusNotFound || resp.Code == "NoSuchKey"
}
