package models

import "time"

// Role 角色表
// 说明：is_system 为真的内置角色可编辑但不可删除。
type Role struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	Name        string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string           `gorm:"type:varchar(255)" json:"description,omitempty"`
	IsSystem    bool             `gorm:"not null;default:false" json:"is_system"`
	CreatedAt   time.Time        `json:"created_at"`
	Permissions []RolePermission `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Role) TableName() string {
	return "roles"
}

// RolePermission 角色权限关联表
// code 为权限编码的弱引用：不强制存在于权限目录中。
type RolePermission struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	RoleID uint   `gorm:"index;not null" json:"role_id"`
	Code   string `gorm:"type:varchar(100);not null" json:"code"`
}

// TableName 指定表名
func (RolePermission) TableName() string {
	return "role_permissions"
}
