package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalStorage 本地磁盘存储，URL 形如 /uploads/<name>
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (l *LocalStorage) Put(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*StoredObject, error) {
	ext := filepath.Ext(filename)
	key := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(l.dir, key))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create file: %v", ErrStorage, err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filepath.Join(l.dir, key))
		return nil, fmt.Errorf("%w: failed to write file: %v", ErrStorage, err)
	}

	return &StoredObject{
		Key:  key,
		URL:  "/uploads/" + key,
		Name: filename,
		Size: written,
	}, nil
}

func (l *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	// key 由服务端生成，Base 防御路径穿越
	data, err := os.ReadFile(filepath.Join(l.dir, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read file: %v", ErrStorage, err)
	}
	return data, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.dir, filepath.Base(key))); err != nil {
		return fmt.Errorf("%w: failed to delete file: %v", ErrStorage, err)
	}
	return nil
}

// PresignURL 本地存储不支持预签名
func (l *LocalStorage) PresignURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return "", fmt.Errorf("%w: presigned URL 仅支持 S3 存储", ErrInvalidInput)
}
