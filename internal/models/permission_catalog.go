package models

import "time"

// PermissionCatalog 权限目录表
// code 创建后不可变更；enabled 控制是否参与授权判定。
type PermissionCatalog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Code        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Module      string    `gorm:"type:varchar(100);not null" json:"module"`
	Description string    `gorm:"type:varchar(255)" json:"description,omitempty"`
	Enabled     bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName 指定表名
func (PermissionCatalog) TableName() string {
	return "permissions_catalog"
}
