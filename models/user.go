package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	Username  string         `json:"username" gorm:"unique;not null"`
	Password  string         `json:"-" gorm:"not null"` // 哈希后的密码
	Email     string         `json:"email" gorm:"unique"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	LastLogin time.Time      `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OwnerID 文件/文件夹记录上的所有者标识（字符串形式的用户ID）
func (u *User) OwnerID() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}
