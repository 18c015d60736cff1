package service

import (
	"strings"
	"time"

	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"

	"gorm.io/gorm"
)

// StatsNotifier 统计刷新通知接口
// 状态变更提交后触发，由异步队列实现；为空时跳过。
type StatsNotifier interface {
	NotifyStatsChanged()
}

// ResearchItemView 带派生分类的成果视图
type ResearchItemView struct {
	models.ResearchItem
	Category string `json:"category"`
}

// CreateItemInput 创建成果入参
type CreateItemInput struct {
	OwnerID       uint
	Title         string
	SubtypeID     uint
	ContentJSON   models.JSON
	Status        string
	FileURL       string
	Collaborators []string // 协作人姓名，精确匹配，未命中静默丢弃
	IP            string
}

// UpdateItemInput 更新成果入参（不含状态字段）
type UpdateItemInput struct {
	ID          uint
	Title       string
	SubtypeID   uint
	ContentJSON models.JSON
	FileURL     string
}

// ReviewInput 单条审核入参
type ReviewInput struct {
	ID         uint
	Status     string
	Remarks    string
	ReviewerID uint
	IP         string
}

// BatchReviewInput 批量审核入参
type BatchReviewInput struct {
	IDs        []uint
	Status     string
	Remarks    string
	ReviewerID uint
	IP         string
}

// ResearchService 科研成果服务
type ResearchService struct {
	itemRepo repository.ResearchItemRepository
	typeRepo repository.ResearchTypeRepository
	userRepo repository.UserRepository
	audit    *AuditService
	notifier StatsNotifier
}

// NewResearchService 创建科研成果服务实例
func NewResearchService(
	itemRepo repository.ResearchItemRepository,
	typeRepo repository.ResearchTypeRepository,
	userRepo repository.UserRepository,
	audit *AuditService,
	notifier StatsNotifier,
) *ResearchService {
	return &ResearchService{
		itemRepo: itemRepo,
		typeRepo: typeRepo,
		userRepo: userRepo,
		audit:    audit,
		notifier: notifier,
	}
}

// CreateItem 创建成果
func (s *ResearchService) CreateItem(input CreateItemInput) (*models.ResearchItem, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.SubtypeID == 0 {
		return nil, ErrValidation
	}
	subtype, err := s.typeRepo.GetSubtypeByID(input.SubtypeID)
	if err != nil {
		return nil, err
	}
	if subtype == nil {
		return nil, ErrValidation
	}

	status := input.Status
	if status == "" {
		status = constants.ResearchStatusDraft
	}
	if status != constants.ResearchStatusDraft && status != constants.ResearchStatusPending {
		return nil, ErrValidation
	}

	item := &models.ResearchItem{
		Title:       title,
		UserID:      input.OwnerID,
		SubtypeID:   input.SubtypeID,
		ContentJSON: input.ContentJSON,
		Status:      status,
		FileURL:     input.FileURL,
	}
	item.Collaborators = s.resolveCollaborators(input.OwnerID, input.Collaborators)

	err = s.itemRepo.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewResearchItemRepository(tx).Create(item); err != nil {
			return err
		}
		return s.audit.RecordTx(tx, AuditRecordInput{
			UserID:     &input.OwnerID,
			Action:     constants.AuditActionCreateItem,
			TargetType: "research_item",
			TargetID:   &item.ID,
			NewValue:   models.JSON{"title": item.Title, "subtype_id": item.SubtypeID, "status": item.Status},
			IP:         input.IP,
		})
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// resolveCollaborators 按姓名精确匹配协作人，未命中丢弃，所有者自身跳过
func (s *ResearchService) resolveCollaborators(ownerID uint, names []string) []models.ResearchCollaborator {
	if len(names) == 0 {
		return nil
	}
	users, err := s.userRepo.ListByFullNames(names)
	if err != nil {
		logger.Warnw("collaborator_resolve_failed", "error", err)
		return nil
	}
	collaborators := make([]models.ResearchCollaborator, 0, len(users))
	seen := make(map[uint]bool, len(users))
	for _, user := range users {
		if user.ID == ownerID || seen[user.ID] {
			continue
		}
		seen[user.ID] = true
		collaborators = append(collaborators, models.ResearchCollaborator{UserID: user.ID})
	}
	return collaborators
}

// GetItem 获取成果（带派生分类）
func (s *ResearchService) GetItem(id uint) (*ResearchItemView, error) {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	view := s.toView(*item)
	return &view, nil
}

// ListItems 成果列表（审核/管理视角）
func (s *ResearchService) ListItems(filter repository.ResearchItemListFilter) ([]ResearchItemView, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	items, total, err := s.itemRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	return s.toViews(items), total, nil
}

// ListMyItems 成果列表（本人视角：所有者或协作人）
func (s *ResearchService) ListMyItems(userID uint, filter repository.ResearchItemListFilter) ([]ResearchItemView, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	items, total, err := s.itemRepo.ListForUser(userID, filter)
	if err != nil {
		return nil, 0, err
	}
	return s.toViews(items), total, nil
}

// UpdateItem 更新成果内容字段，仅所有者或超管可操作
func (s *ResearchService) UpdateItem(actor *models.User, input UpdateItemInput) (*models.ResearchItem, error) {
	item, err := s.itemRepo.GetByID(input.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if !canManageItem(actor, item) {
		return nil, ErrPermissionDenied
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrValidation
	}
	if input.SubtypeID != 0 && input.SubtypeID != item.SubtypeID {
		subtype, err := s.typeRepo.GetSubtypeByID(input.SubtypeID)
		if err != nil {
			return nil, err
		}
		if subtype == nil {
			return nil, ErrValidation
		}
		item.SubtypeID = input.SubtypeID
	}
	item.Title = title
	item.ContentJSON = input.ContentJSON
	item.FileURL = input.FileURL

	if err := s.itemRepo.Update(item); err != nil {
		return nil, err
	}
	return s.itemRepo.GetByID(item.ID)
}

// DeleteItem 删除成果，仅所有者或超管可操作
func (s *ResearchService) DeleteItem(actor *models.User, id uint, ip string) error {
	item, err := s.itemRepo.GetByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	if !canManageItem(actor, item) {
		return ErrPermissionDenied
	}

	return s.itemRepo.Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewResearchItemRepository(tx)
		if err := txRepo.Delete(id); err != nil {
			return err
		}
		return s.audit.RecordTx(tx, AuditRecordInput{
			UserID:     &actor.ID,
			Action:     constants.AuditActionDeleteItem,
			TargetType: "research_item",
			TargetID:   &id,
			OldValue:   models.JSON{"title": item.Title, "status": item.Status},
			IP:         ip,
		})
	})
}

// UpdateStatus 单条审核
// 仅待审条目可转入终态；审核与审计记录同事务提交。
func (s *ResearchService) UpdateStatus(input ReviewInput) (*ResearchItemView, error) {
	if input.Status != constants.ResearchStatusApproved && input.Status != constants.ResearchStatusRejected {
		return nil, ErrValidation
	}
	item, err := s.itemRepo.GetByID(input.ID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	if item.Status != constants.ResearchStatusPending {
		return nil, ErrAlreadyReviewed
	}

	var approveTime *time.Time
	if input.Status == constants.ResearchStatusApproved {
		now := time.Now()
		approveTime = &now
	}

	err = s.itemRepo.Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewResearchItemRepository(tx)
		if err := txRepo.UpdateStatus(input.ID, input.Status, input.Remarks, approveTime); err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrAlreadyReviewed
			}
			return err
		}
		return s.audit.RecordTx(tx, AuditRecordInput{
			UserID:     &input.ReviewerID,
			Action:     constants.AuditActionUpdateItemStatus,
			TargetType: "research_item",
			TargetID:   &input.ID,
			OldValue:   models.JSON{"status": item.Status},
			NewValue:   models.JSON{"status": input.Status, "audit_remarks": input.Remarks},
			IP:         input.IP,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyStats()
	return s.GetItem(input.ID)
}

// BatchUpdateStatus 批量审核
// 先取待审集与入参求交，非待审条目静默剔除；交集为空则整批失败。
// 返回实际变更条数。
func (s *ResearchService) BatchUpdateStatus(input BatchReviewInput) (int, error) {
	if input.Status != constants.ResearchStatusApproved && input.Status != constants.ResearchStatusRejected {
		return 0, ErrValidation
	}
	if len(input.IDs) == 0 {
		return 0, ErrNoPendingItems
	}

	var approveTime *time.Time
	if input.Status == constants.ResearchStatusApproved {
		now := time.Now()
		approveTime = &now
	}

	updated := 0
	err := s.itemRepo.Transaction(func(tx *gorm.DB) error {
		pending, err := repository.NewResearchItemRepository(tx).ListPendingByIDs(input.IDs)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return ErrNoPendingItems
		}
		pendingIDs := make([]uint, 0, len(pending))
		for _, item := range pending {
			pendingIDs = append(pendingIDs, item.ID)
		}

		updates := map[string]interface{}{
			"status":        input.Status,
			"audit_remarks": input.Remarks,
			"approve_time":  approveTime,
		}
		result := tx.Model(&models.ResearchItem{}).
			Where("id IN ? AND status = ?", pendingIDs, constants.ResearchStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		updated = int(result.RowsAffected)

		ids := make([]interface{}, 0, len(pendingIDs))
		for _, id := range pendingIDs {
			ids = append(ids, id)
		}
		return s.audit.RecordTx(tx, AuditRecordInput{
			UserID:     &input.ReviewerID,
			Action:     constants.AuditActionBatchUpdateStatus,
			TargetType: "research_item",
			OldValue:   models.JSON{"status": constants.ResearchStatusPending},
			NewValue:   models.JSON{"status": input.Status, "ids": ids, "count": updated},
			IP:         input.IP,
		})
	})
	if err != nil {
		return 0, err
	}

	s.notifyStats()
	return updated, nil
}

// ListTypes 成果大类列表
func (s *ResearchService) ListTypes() ([]models.ResearchType, error) {
	return s.typeRepo.ListTypes()
}

// ListSubtypes 成果子类列表
func (s *ResearchService) ListSubtypes(typeID uint) ([]models.ResearchSubtype, error) {
	return s.typeRepo.ListSubtypes(typeID)
}

func (s *ResearchService) notifyStats() {
	if s.notifier != nil {
		s.notifier.NotifyStatsChanged()
	}
}

func (s *ResearchService) toView(item models.ResearchItem) ResearchItemView {
	subtypeName, typeName := "", ""
	if item.Subtype != nil {
		subtypeName = item.Subtype.Name
		if item.Subtype.Type != nil {
			typeName = item.Subtype.Type.Name
		}
	}
	return ResearchItemView{
		ResearchItem: item,
		Category:     CategoryOf(subtypeName, typeName),
	}
}

func (s *ResearchService) toViews(items []models.ResearchItem) []ResearchItemView {
	views := make([]ResearchItemView, 0, len(items))
	for _, item := range items {
		views = append(views, s.toView(item))
	}
	return views
}

// canManageItem 所有权判定：所有者或超管
func canManageItem(actor *models.User, item *models.ResearchItem) bool {
	if actor == nil {
		return false
	}
	return actor.IsSuperuser || actor.ID == item.UserID
}
