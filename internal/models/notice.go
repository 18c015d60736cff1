package models

import "time"

// Notice 通知公告表
// 创建后内容不可变，已读状态记录在 NoticeRecipient 上。
type Notice struct {
	ID                   uint      `gorm:"primarykey" json:"id"`
	Title                string    `gorm:"type:varchar(255);not null" json:"title"`
	Content              string    `gorm:"type:varchar(2000);not null" json:"content"`
	TargetRole           string    `gorm:"type:varchar(50);not null" json:"target_role"` // 角色名或通配符 all
	TargetDepartment     string    `gorm:"type:varchar(255)" json:"target_department,omitempty"`
	TargetDepartmentCode string    `gorm:"type:varchar(50)" json:"target_department_code,omitempty"`
	Publisher            string    `gorm:"type:varchar(255)" json:"publisher,omitempty"`
	CreatedAt            time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (Notice) TableName() string {
	return "notices"
}

// NoticeRecipient 通知接收人表
// (notice_id, user_id) 唯一，创建时批量扇出。
type NoticeRecipient struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	NoticeID  uint       `gorm:"uniqueIndex:idx_notice_user;not null" json:"notice_id"`
	UserID    uint       `gorm:"uniqueIndex:idx_notice_user;index;not null" json:"user_id"`
	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName 指定表名
func (NoticeRecipient) TableName() string {
	return "notice_recipients"
}
