package network

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadStore holds files users have uploaded for registration or
// verification. Callers get a stream and never assume anything
// about where the bytes live.
type UploadStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}

// S3UploadStore keeps uploads in an S3-compatible bucket.
type S3UploadStore struct {
	client *minio.Client
	bucket string
}

// NewS3Client returns a minio client for host. Set useSSL to false
// only when talking to localhost in dev and test.
func NewS3Client(host, keyID, secretKey string, useSSL bool) (*minio.Client, error) {
	return minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(keyID, secretKey, ""),
		Secure: useSSL,
	})
}

func NewS3UploadStore(client *minio.Client, bucket string) *S3UploadStore {
	return &S3UploadStore{client: client, bucket: bucket}
}

// Open returns a stream of the upload stored under key. We stat the
// object first because minio defers GetObject errors until the
// first read.
func (s *S3UploadStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("Error getting %s/%s from S3: %v", s.bucket, key, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("Error getting %s/%s from S3: %v", s.bucket, key, err)
	}
	return obj, nil
}

func (s *S3UploadStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("Error putting %s/%s into S3: %v", s.bucket, key, err)
	}
	return nil
}

// LocalUploadStore keeps uploads in a directory on local disk.
type LocalUploadStore struct {
	Dir string
}

func NewLocalUploadStore(dir string) *LocalUploadStore {
	return &LocalUploadStore{Dir: dir}
}

// path keeps key inside Dir, even if key contains "..".
func (s *LocalUploadStore) path(key string) string {
	return filepath.Join(s.Dir, filepath.Clean(string(filepath.Separator)+key))
}

func (s *LocalUploadStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(s.path(key))
}

func (s *LocalUploadStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, r)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	return closeErr
}
