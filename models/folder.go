package models

import (
	"time"
)

type Folder struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);index;not null"`
	CreatedAt time.Time `json:"created_at"`
}
