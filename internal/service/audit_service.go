package service

import (
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"

	"gorm.io/gorm"
)

// AuditRecordInput 审计记录入参
type AuditRecordInput struct {
	UserID     *uint
	Action     string
	TargetType string
	TargetID   *uint
	OldValue   models.JSON
	NewValue   models.JSON
	IP         string
}

// AuditService 审计日志服务
type AuditService struct {
	auditRepo repository.AuditLogRepository
}

// NewAuditService 创建审计日志服务实例
func NewAuditService(auditRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record 追加一条审计记录
func (s *AuditService) Record(input AuditRecordInput) error {
	return s.auditRepo.Create(s.build(input))
}

// RecordTx 在已有事务内追加审计记录
// 业务变更与审计记录同事务提交，审计写入失败则整体回滚。
func (s *AuditService) RecordTx(tx *gorm.DB, input AuditRecordInput) error {
	return s.auditRepo.CreateTx(tx, s.build(input))
}

// List 审计日志列表
func (s *AuditService) List(filter repository.AuditLogListFilter) ([]repository.AuditLogRow, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.auditRepo.List(filter)
}

func (s *AuditService) build(input AuditRecordInput) *models.AuditLog {
	return &models.AuditLog{
		UserID:     input.UserID,
		Action:     input.Action,
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		OldValue:   input.OldValue,
		NewValue:   input.NewValue,
		IP:         input.IP,
	}
}
