package constants

// 审批状态常量
const (
	ResearchStatusDraft    = "draft"
	ResearchStatusPending  = "pending"
	ResearchStatusApproved = "approved"
	ResearchStatusRejected = "rejected"
)

// 系统角色常量
const (
	RoleSysAdmin      = "sys_admin"
	RoleResearchAdmin = "research_admin"
	RoleTeacher       = "teacher"

	// RoleAll 通知目标角色通配符
	RoleAll = "all"
)

// 成果分类常量（按关键字派生，非落库字段）
const (
	CategoryVerticalProject   = "纵向项目"
	CategoryHorizontalProject = "横向项目"
	CategoryPaper             = "学术论文"
	CategoryPatent            = "专利"
	CategoryPublication       = "出版著作"
	CategoryAward             = "科技奖励"
	CategoryOther             = "其他"
)

// 审计动作常量
const (
	AuditActionCreateItem        = "创建科研项目"
	AuditActionUpdateItemStatus  = "更新项目状态"
	AuditActionBatchUpdateStatus = "批量更新项目状态"
	AuditActionDeleteItem        = "删除科研项目"
)

// 异步任务类型常量
const (
	TaskStatsRefresh = "research:stats_refresh"
	QueueDefault     = "default"
)
