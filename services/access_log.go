package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"gorm.io/gorm"

	"drivebox/models"
)

// AccessLogStore 文件访问日志存储，支持 SQLite 和 ClickHouse 两种后端
type AccessLogStore interface {
	Record(ctx context.Context, entry *models.FileAccessLog) error
	ListByFile(ctx context.Context, owner string, fileID uint, limit int) ([]models.FileAccessLog, error)
}

// NewAccessLogStore 创建访问日志存储，conn 为 nil 时回落到 SQLite
func NewAccessLogStore(db *gorm.DB, conn driver.Conn) AccessLogStore {
	if conn != nil {
		return &clickhouseAccessLogStore{conn: conn}
	}
	return &sqliteAccessLogStore{db: db}
}

type sqliteAccessLogStore struct {
	db *gorm.DB
}

func (s *sqliteAccessLogStore) Record(ctx context.Context, entry *models.FileAccessLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("%w: failed to record access log: %v", ErrPersistence, err)
	}
	return nil
}

func (s *sqliteAccessLogStore) ListByFile(ctx context.Context, owner string, fileID uint, limit int) ([]models.FileAccessLog, error) {
	var logs []models.FileAccessLog
	err := s.db.WithContext(ctx).
		Where("file_id = ? AND user_id = ?", fileID, owner).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list access logs: %v", ErrPersistence, err)
	}
	return logs, nil
}

type clickhouseAccessLogStore struct {
	conn driver.Conn
}

func (s *clickhouseAccessLogStore) Record(ctx context.Context, entry *models.FileAccessLog) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := s.conn.Exec(ctx, `
		INSERT INTO file_access_logs (file_id, user_id, action, file_name, client_ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uint32(entry.FileID), entry.UserID, entry.Action, entry.FileName, entry.ClientIP, createdAt,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to record access log: %v", ErrPersistence, err)
	}
	return nil
}

func (s *clickhouseAccessLogStore) ListByFile(ctx context.Context, owner string, fileID uint, limit int) ([]models.FileAccessLog, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT file_id, user_id, action, file_name, client_ip, created_at
		FROM file_access_logs
		WHERE file_id = ? AND user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		uint32(fileID), owner, uint64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list access logs: %v", ErrPersistence, err)
	}
	defer rows.Close()

	var logs []models.FileAccessLog
	for rows.Next() {
		var (
			entry  models.FileAccessLog
			fileID uint32
		)
		if err := rows.Scan(&fileID, &entry.UserID, &entry.Action, &entry.FileName, &entry.ClientIP, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan access log: %v", ErrPersistence, err)
		}
		entry.FileID = uint(fileID)
		logs = append(logs, entry)
	}
	return logs, nil
}
