package repository

import "time"

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page           int
	PageSize       int
	Keyword        string
	Role           string
	DepartmentCode string
	OnlyActive     bool
}

// ResearchItemListFilter 查询科研成果列表的过滤条件
type ResearchItemListFilter struct {
	Page      int
	PageSize  int
	OwnerID   uint
	Status    string
	SubtypeID uint
	Search    string
}

// AuditLogListFilter 查询审计日志列表的过滤条件
type AuditLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Action      string
	TargetType  string
	TargetID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NoticeListFilter 查询通知列表的过滤条件
type NoticeListFilter struct {
	Page       int
	PageSize   int
	TargetRole string
}
