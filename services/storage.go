package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"drivebox/config"
)

// StoredObject 对象存储返回的落盘结果
type StoredObject struct {
	Key  string // 存储侧的对象key
	URL  string // 可访问的URL
	Name string // 用户可见的文件名
	Size int64  // 字节数
}

// ObjectStorage 对象存储抽象，支持本地磁盘和S3两种后端
type ObjectStorage interface {
	Put(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*StoredObject, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PresignURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

// NewObjectStorage 根据配置创建对象存储
func NewObjectStorage(cfg *config.StorageConfig) (ObjectStorage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsS3Enabled() {
		storage, err := NewS3Storage(S3Config{
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			KeyPrefix: cfg.S3KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init S3 storage: %w", err)
		}
		return storage, nil
	}

	storage, err := NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init local storage: %w", err)
	}
	return storage, nil
}
