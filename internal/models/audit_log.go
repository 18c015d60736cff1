package models

import "time"

// AuditLog 审计日志表
// 仅追加：创建后不会被更新或删除。
type AuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"` // 操作人，系统动作时为空
	Action     string    `gorm:"type:varchar(255);not null" json:"action"`
	TargetType string    `gorm:"type:varchar(100)" json:"target_type,omitempty"`
	TargetID   *uint     `gorm:"index" json:"target_id,omitempty"`
	OldValue   JSON      `gorm:"type:json" json:"old_value,omitempty"`
	NewValue   JSON      `gorm:"type:json" json:"new_value,omitempty"`
	IP         string    `gorm:"type:varchar(100)" json:"ip,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "audit_logs"
}
