package models

import "time"

// ResearchType 成果大类表（如 科研项目 / 学术成果）
type ResearchType struct {
	ID          uint              `gorm:"primarykey" json:"id"`
	Name        string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string            `gorm:"type:varchar(1000)" json:"description,omitempty"`
	Subtypes    []ResearchSubtype `gorm:"foreignKey:TypeID;constraint:OnDelete:CASCADE" json:"subtypes,omitempty"`
}

// TableName 指定表名
func (ResearchType) TableName() string {
	return "research_types"
}

// ResearchSubtype 成果子类表（如 纵向项目 / 学术论文）
type ResearchSubtype struct {
	ID     uint          `gorm:"primarykey" json:"id"`
	Name   string        `gorm:"type:varchar(255);not null" json:"name"`
	TypeID uint          `gorm:"index;not null" json:"type_id"`
	Type   *ResearchType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
}

// TableName 指定表名
func (ResearchSubtype) TableName() string {
	return "research_subtypes"
}

// ResearchItem 科研成果表
type ResearchItem struct {
	ID           uint                   `gorm:"primarykey" json:"id"`
	Title        string                 `gorm:"type:varchar(255);not null" json:"title"`
	UserID       uint                   `gorm:"index;not null" json:"user_id"` // 所有者
	SubtypeID    uint                   `gorm:"index;not null" json:"subtype_id"`
	ContentJSON  JSON                   `gorm:"type:json" json:"content_json,omitempty"` // 申报表单内容
	Status       string                 `gorm:"type:varchar(20);index;not null;default:'draft'" json:"status"`
	FileURL      string                 `gorm:"type:varchar(500)" json:"file_url,omitempty"`
	AuditRemarks string                 `gorm:"type:text" json:"audit_remarks,omitempty"`
	ApproveTime  *time.Time             `json:"approve_time,omitempty"`
	CreatedAt    time.Time              `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Subtype      *ResearchSubtype       `gorm:"foreignKey:SubtypeID" json:"subtype,omitempty"`
	Collaborators []ResearchCollaborator `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"collaborators,omitempty"`
}

// TableName 指定表名
func (ResearchItem) TableName() string {
	return "research_items"
}

// ResearchCollaborator 成果协作人表（非所有者成员）
type ResearchCollaborator struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	ItemID uint   `gorm:"index;not null" json:"item_id"`
	UserID uint   `gorm:"index;not null" json:"user_id"`
	Role   string `gorm:"type:varchar(100);default:'participant'" json:"role"`
}

// TableName 指定表名
func (ResearchCollaborator) TableName() string {
	return "research_collaborators"
}
