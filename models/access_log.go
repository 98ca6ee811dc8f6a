package models

import (
	"time"
)

// 文件访问动作
const (
	AccessActionUpload   = "upload"
	AccessActionDownload = "download"
	AccessActionPreview  = "preview"
	AccessActionPurge    = "purge"
)

// FileAccessLog SQLite 访问日志模型（用于 GORM）
type FileAccessLog struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	FileID    uint      `json:"file_id" gorm:"index"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);index"`
	Action    string    `json:"action" gorm:"type:varchar(20);index"`
	FileName  string    `json:"file_name" gorm:"type:varchar(255)"`
	ClientIP  string    `json:"client_ip" gorm:"type:varchar(45)"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (FileAccessLog) TableName() string {
	return "file_access_logs"
}
