package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

var ErrEmptyExport = errors.New("export payload is empty")

// Target stores a rendered export and returns where it ended up.
type Target interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// DirTarget writes exports into a local directory.
type DirTarget struct {
	dir string
}

func NewDirTarget(dir string) *DirTarget {
	return &DirTarget{dir: dir}
}

func (t *DirTarget) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyExport
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(t.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UseSSL          bool
}

// MinioTarget uploads exports to an S3 compatible bucket.
type MinioTarget struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// NewMinioTarget connects to the endpoint and creates the bucket if it does
// not exist yet.
func NewMinioTarget(ctx context.Context, cfg S3Config, log *zap.Logger) (*MinioTarget, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		log.Info("export bucket created", zap.String("bucket", cfg.Bucket))
	}

	return &MinioTarget{client: client, bucket: cfg.Bucket, log: log}, nil
}

func (t *MinioTarget) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyExport
	}

	objectName := "exports/" + filepath.Base(name)
	_, err := t.client.PutObject(ctx, t.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", t.bucket, objectName), nil
}

// NewTarget picks the bucket target when s3 names an endpoint and bucket,
// otherwise a directory target. It returns nil when neither is configured.
func NewTarget(ctx context.Context, dir string, s3 S3Config, log *zap.Logger) (Target, error) {
	if s3.Endpoint != "" && s3.Bucket != "" {
		t, err := NewMinioTarget(ctx, s3, log)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	if dir != "" {
		return NewDirTarget(dir), nil
	}
	return nil, nil
}
