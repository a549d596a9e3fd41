package catalog

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config selects where the catalog is loaded from. S3 wins over Path; with neither set the
// embedded catalog is used.
type Config struct {
	Path string
	S3   S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Key       string
	UseSSL    bool
}

func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.Bucket) != ""
}

// Open loads the catalog once at process start.
func Open(ctx context.Context, cfg Config) (*Catalog, string, error) {
	switch {
	case cfg.S3.Enabled():
		c, err := LoadS3(ctx, cfg.S3)
		return c, "s3://" + cfg.S3.Bucket + "/" + objectKey(cfg.S3), err
	case strings.TrimSpace(cfg.Path) != "":
		c, err := LoadFile(cfg.Path)
		return c, cfg.Path, err
	default:
		return Default(), "embedded", nil
	}
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func newS3Client(cfg S3Config) (*minio.Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	return client, nil
}

func objectKey(cfg S3Config) string {
	key := strings.TrimLeft(strings.TrimSpace(cfg.Key), "/")
	if key == "" {
		key = "fallback_schemes.json"
	}
	return key
}

// LoadS3 fetches the catalog object from an S3-compatible store.
func LoadS3(ctx context.Context, cfg S3Config) (*Catalog, error) {
	client, err := newS3Client(cfg)
	if err != nil {
		return nil, err
	}
	key := objectKey(cfg)
	if _, err := client.StatObject(ctx, cfg.Bucket, key, minio.StatObjectOptions{}); err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil, fmt.Errorf("catalog object %s/%s not found", cfg.Bucket, key)
		}
		return nil, fmt.Errorf("stat catalog object: %w", err)
	}
	obj, err := client.GetObject(ctx, cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get catalog object: %w", err)
	}
	defer obj.Close()
	return Load(obj)
}

// PublishS3 uploads c so that servers configured with the same S3Config load it on start.
// The bucket is created when missing.
func PublishS3(ctx context.Context, cfg S3Config, c *Catalog) error {
	client, err := newS3Client(cfg)
	if err != nil {
		return err
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return fmt.Errorf("make bucket: %w", err)
		}
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, cfg.Bucket, objectKey(cfg), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}
