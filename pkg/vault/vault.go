// Package vault reads plans from and stores budget reports in S3-compatible
// object storage. Objects are addressed as vault://bucket/key.
package vault

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Scheme prefixes every vault URI.
const Scheme = "vault://"

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Client wraps an S3-compatible object store.
type Client struct {
	mc     *minio.Client
	bucket string
}

// Ref is a vault reference returned after storing content.
type Ref struct {
	URI      string // vault://bucket/key
	Checksum string // sha256:hex
	Size     int64
}

// New creates a vault client and ensures the report bucket exists.
func New(ctx context.Context, cfg Config) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("vault: connect: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("vault: check bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("vault: create bucket: %w", err)
		}
	}

	return &Client{mc: mc, bucket: cfg.Bucket}, nil
}

// Store writes JSON data under key in the report bucket.
func (c *Client) Store(ctx context.Context, key string, data []byte) (Ref, error) {
	info, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return Ref{}, fmt.Errorf("vault: store %s: %w", key, err)
	}

	return Ref{
		URI:      FormatURI(c.bucket, key),
		Checksum: Checksum(data),
		Size:     info.Size,
	}, nil
}

// Fetch retrieves the object a vault URI points at. The bucket named in the
// URI is used, which need not be the report bucket.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, ok := ParseURI(uri)
	if !ok {
		return nil, fmt.Errorf("vault: invalid uri %q", uri)
	}

	obj, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("vault: fetch %s: %w", uri, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", uri, err)
	}
	return data, nil
}

// IsURI reports whether s uses the vault scheme.
func IsURI(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// ParseURI splits vault://bucket/key into its parts.
func ParseURI(uri string) (bucket, key string, ok bool) {
	if !IsURI(uri) {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(strings.TrimPrefix(uri, Scheme), "/")
	if bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// FormatURI builds a vault URI.
func FormatURI(bucket, key string) string {
	return Scheme + bucket + "/" + key
}

// Checksum returns the sha256:hex digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", h)
}

// VerifyChecksum re-computes sha256 of data and compares against expected.
func VerifyChecksum(data []byte, expected string) bool {
	return Checksum(data) == expected
}
