package models

import (
	"time"
)

type File struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	URL         string    `json:"url" gorm:"type:varchar(1000);not null"`
	ObjectKey   string    `json:"object_key" gorm:"type:varchar(500);index"`
	ContentType string    `json:"content_type" gorm:"type:varchar(100)"`
	Size        int64     `json:"size"`
	FolderID    *uint     `json:"folder_id" gorm:"index"`
	Folder      *Folder   `json:"-" gorm:"foreignKey:FolderID"`
	UserID      string    `json:"user_id" gorm:"type:varchar(64);index;not null"`
	IsTrash     bool      `json:"is_trash" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type DownloadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}
