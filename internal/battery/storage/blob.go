// Package storage 保存图片等二进制内容，返回可访问的URL。
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// 存储方式
const (
	ModeInline = "inline"
	ModeLocal  = "local"
	ModeMinIO  = "minio"
)

// ErrInvalidDataURL data-URL 格式错误
var ErrInvalidDataURL = errors.New("invalid data url")

// BlobStore 二进制存储
type BlobStore interface {
	// Put 保存内容，返回访问URL
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ObjectName 生成对象名：YYYY/MM/<uuid>_<name>
func ObjectName(name string, now time.Time) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%d/%02d/%s_%s", now.Year(), now.Month(), id, path.Base(name))
}

// DecodeDataURL 解析 data:<mime>;base64,<payload>
func DecodeDataURL(s string) (contentType string, data []byte, err error) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, ErrInvalidDataURL
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}

// EncodeDataURL 生成 data-URL
func EncodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// LocalBlobStore 本地目录存储，通过 /uploads 静态路由访问
type LocalBlobStore struct {
	dir     string
	baseURL string
}

// NewLocalBlobStore 创建本地存储
func NewLocalBlobStore(dir, baseURL string) *LocalBlobStore {
	return &LocalBlobStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalBlobStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	object := ObjectName(name, time.Now())
	target := filepath.Join(s.dir, filepath.FromSlash(object))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return s.baseURL + "/" + object, nil
}

// MinIOBlobStore MinIO对象存储
type MinIOBlobStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// MinIOOptions MinIO连接参数
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL 对外访问前缀，为空时使用 endpoint/bucket
	PublicURL string
}

// NewMinIOBlobStore 创建MinIO存储，bucket不存在时自动创建
func NewMinIOBlobStore(ctx context.Context, opts MinIOOptions) (*MinIOBlobStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket: %w", err)
		}
	}

	baseURL := opts.PublicURL
	if baseURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
	}
	return &MinIOBlobStore{client: client, bucket: opts.Bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *MinIOBlobStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	object := "images/" + ObjectName(name, time.Now())
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	return s.baseURL + "/" + object, nil
}
