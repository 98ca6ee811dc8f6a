package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"drivebox/config"
)

// OpenClickHouse 连接 ClickHouse 并初始化访问日志表
func OpenClickHouse(cfg *config.ClickHouseConfig) (driver.Conn, error) {
	log.Printf("🔗 正在连接 ClickHouse: %s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("连接 ClickHouse 失败: %w", err)
	}

	ctx := context.Background()
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping ClickHouse 失败: %w", err)
	}

	if err := createAccessLogTable(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建表失败: %w", err)
	}

	log.Printf("✅ ClickHouse 初始化完成 - 数据库: %s", cfg.Database)
	return conn, nil
}

func createAccessLogTable(ctx context.Context, conn driver.Conn) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS file_access_logs (
			file_id    UInt32,
			user_id    String,
			action     LowCardinality(String),
			file_name  String,
			client_ip  String,
			created_at DateTime
		) ENGINE = MergeTree()
		ORDER BY (user_id, created_at)
		TTL created_at + INTERVAL 90 DAY
	`
	return conn.Exec(ctx, ddl)
}
