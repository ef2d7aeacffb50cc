package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// maxObjectSize caps how much of a prompt bundle object is read.
const maxObjectSize = 1 << 20

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

// New buat koneksi MinIO. The bucket must already exist; this service only reads from it.
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", bucket)
	}

	slog.Info("[MinioStore] Connected",
		slog.String("endpoint", endpoint),
		slog.String("bucket", bucket))
	return &Store{client: cli, bucketName: bucket, region: region}, nil
}

// Fetch reads the object stored under key.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size > maxObjectSize {
		return nil, fmt.Errorf("object %s is %d bytes, limit is %d", key, info.Size, maxObjectSize)
	}

	data, err := io.ReadAll(io.LimitReader(obj, maxObjectSize))
	if err != nil {
		return nil, err
	}
	slog.Info("[MinioStore] Object fetched",
		slog.String("bucket", s.bucketName),
		slog.String("key", key),
		slog.Int("bytes", len(data)))
	return data, nil
}
