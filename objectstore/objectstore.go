// Package objectstore archives export artifacts in S3-compatible storage.
package objectstore

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/petrodata/brentdash/errors"
)

const minioHealthCheckAfter = time.Second * 2

type Store interface {
	Store(ctx context.Context, name string, blob []byte, expireAt time.Time) error
	Get(ctx context.Context, name string) ([]byte, error)
}

type MinioStore struct {
	bucketName string

	c *minio.Client
}

func NewMinio(ctx context.Context, bucketName string, endpoint string, accessID string, secretAccessID string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Region: "us-east-1",
		Creds:  credentials.NewStaticV4(accessID, secretAccessID, ""),
		Secure: false,
	})
	if err != nil {
		return nil, errors.Wrap(err, "minio client cannot be created")
	}
	_, _ = client.HealthCheck(minioHealthCheckAfter)

	if !client.IsOnline() {
		return nil, errors.Newf("minio endpoint is offline")
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, errors.Wrap(err, "minio bucket exists failed")
	}
	if !exists {
		err = client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return nil, errors.Wrap(err, "cannot make new minio bucket")
		}
	}

	return &MinioStore{c: client, bucketName: bucketName}, nil
}

func (m *MinioStore) Store(ctx context.Context, name string, blob []byte, expireAt time.Time) error {
	_, err := m.c.PutObject(ctx, m.bucketName, name, bytes.NewReader(blob), int64(len(blob)), minio.PutObjectOptions{
		Expires: expireAt,
	})
	return errors.Wrap(err, "cannot store object")
}

func (m *MinioStore) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := m.c.GetObject(ctx, m.bucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "cannot get object")
	}
	defer obj.Close()

	bs, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read object")
	}
	return bs, nil
}
