package repository

import (
	"github.com/keyan-next/internal/models"

	"gorm.io/gorm"
)

// AuditLogRow 带操作人信息的审计日志行
type AuditLogRow struct {
	models.AuditLog
	OperatorName  string `json:"operator_name,omitempty"`
	OperatorEmail string `json:"operator_email,omitempty"`
}

// AuditLogRepository 审计日志数据访问接口
// 仅追加：只提供创建与查询。
type AuditLogRepository interface {
	Create(log *models.AuditLog) error
	CreateTx(tx *gorm.DB, log *models.AuditLog) error
	List(filter AuditLogListFilter) ([]AuditLogRow, int64, error)
}

// GormAuditLogRepository GORM 实现
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository 创建审计日志仓库
func NewAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create 写入审计日志
func (r *GormAuditLogRepository) Create(log *models.AuditLog) error {
	return r.db.Create(log).Error
}

// CreateTx 在已有事务内写入审计日志
func (r *GormAuditLogRepository) CreateTx(tx *gorm.DB, log *models.AuditLog) error {
	return tx.Create(log).Error
}

// List 审计日志列表，最新在前，左连接用户表补充操作人信息
func (r *GormAuditLogRepository) List(filter AuditLogListFilter) ([]AuditLogRow, int64, error) {
	rows := make([]AuditLogRow, 0)
	query := r.db.Model(&models.AuditLog{})
	if filter.UserID > 0 {
		query = query.Where("audit_logs.user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("audit_logs.action LIKE ?", "%"+filter.Action+"%")
	}
	if filter.TargetType != "" {
		query = query.Where("audit_logs.target_type = ?", filter.TargetType)
	}
	if filter.TargetID > 0 {
		query = query.Where("audit_logs.target_id = ?", filter.TargetID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("audit_logs.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("audit_logs.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.
		Select("audit_logs.*, users.full_name AS operator_name, users.email AS operator_email").
		Joins("LEFT JOIN users ON users.id = audit_logs.user_id").
		Order("audit_logs.created_at DESC, audit_logs.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
