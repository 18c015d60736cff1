package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID                uint           `gorm:"primarykey" json:"id"`              // 主键
	Email             string         `gorm:"uniqueIndex;not null" json:"email"` // 邮箱（登录名）
	PasswordHash      string         `gorm:"not null" json:"-"`                 // 密码哈希（不返回给前端）
	FullName          string         `gorm:"index;default:''" json:"full_name"` // 姓名
	Role              string         `gorm:"type:varchar(50);index;not null;default:'teacher'" json:"role"`
	IsSuperuser       bool           `gorm:"not null;default:false;index" json:"is_superuser"` // 是否超级管理员
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`           // 账号是否激活
	Department        string         `gorm:"type:varchar(255)" json:"department,omitempty"`    // 院系名称（自由文本）
	DepartmentCode    string         `gorm:"type:varchar(50);index" json:"department_code,omitempty"`
	EmployeeID        string         `gorm:"type:varchar(100)" json:"employee_id,omitempty"` // 工号
	Phone             string         `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Title             string         `gorm:"type:varchar(100)" json:"title,omitempty"`              // 职称
	ResearchDirection string         `gorm:"type:varchar(500)" json:"research_direction,omitempty"` // 研究方向
	ProfilePublic     bool           `gorm:"not null;default:false" json:"profile_public"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
