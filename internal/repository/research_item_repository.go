package repository

import (
	"errors"
	"time"

	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/models"

	"gorm.io/gorm"
)

// ResearchItemRepository 科研成果数据访问接口
type ResearchItemRepository interface {
	Create(item *models.ResearchItem) error
	GetByID(id uint) (*models.ResearchItem, error)
	Update(item *models.ResearchItem) error
	Delete(id uint) error
	List(filter ResearchItemListFilter) ([]models.ResearchItem, int64, error)
	ListForUser(userID uint, filter ResearchItemListFilter) ([]models.ResearchItem, int64, error)
	ListPendingByIDs(ids []uint) ([]models.ResearchItem, error)
	UpdateStatus(id uint, status, remarks string, approveTime *time.Time) error
	CountByStatus() (map[string]int64, error)
	ListByStatus(status string) ([]models.ResearchItem, error)
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormResearchItemRepository GORM 实现
type GormResearchItemRepository struct {
	db *gorm.DB
}

// NewResearchItemRepository 创建科研成果仓库
func NewResearchItemRepository(db *gorm.DB) *GormResearchItemRepository {
	return &GormResearchItemRepository{db: db}
}

// Create 创建成果（含协作人，同一事务）
func (r *GormResearchItemRepository) Create(item *models.ResearchItem) error {
	return r.db.Create(item).Error
}

// GetByID 根据 ID 获取成果（带子类与大类）
func (r *GormResearchItemRepository) GetByID(id uint) (*models.ResearchItem, error) {
	var item models.ResearchItem
	if err := r.db.Preload("Subtype.Type").Preload("Collaborators").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Update 更新成果内容字段
func (r *GormResearchItemRepository) Update(item *models.ResearchItem) error {
	return r.db.Model(&models.ResearchItem{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"title":        item.Title,
			"subtype_id":   item.SubtypeID,
			"content_json": item.ContentJSON,
			"file_url":     item.FileURL,
		}).Error
}

// Delete 删除成果及其协作人
func (r *GormResearchItemRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&models.ResearchCollaborator{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ResearchItem{}, id).Error
	})
}

// List 成果列表（管理视角，支持状态/子类/所有者/关键字过滤）
func (r *GormResearchItemRepository) List(filter ResearchItemListFilter) ([]models.ResearchItem, int64, error) {
	items := make([]models.ResearchItem, 0)
	query := r.db.Model(&models.ResearchItem{})
	if filter.OwnerID > 0 {
		query = query.Where("user_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SubtypeID > 0 {
		query = query.Where("subtype_id = ?", filter.SubtypeID)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Subtype.Type").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListForUser 成果列表（本人视角：所有者或协作人）
func (r *GormResearchItemRepository) ListForUser(userID uint, filter ResearchItemListFilter) ([]models.ResearchItem, int64, error) {
	items := make([]models.ResearchItem, 0)
	sub := r.db.Model(&models.ResearchCollaborator{}).Select("item_id").Where("user_id = ?", userID)
	query := r.db.Model(&models.ResearchItem{}).
		Where("user_id = ? OR id IN (?)", userID, sub)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SubtypeID > 0 {
		query = query.Where("subtype_id = ?", filter.SubtypeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Subtype.Type").Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListPendingByIDs 在给定 ID 集中筛出待审条目
func (r *GormResearchItemRepository) ListPendingByIDs(ids []uint) ([]models.ResearchItem, error) {
	items := make([]models.ResearchItem, 0)
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.db.Where("id IN ? AND status = ?", ids, constants.ResearchStatusPending).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus 条件更新单条状态
// 附带 status = pending 条件，避免并发下覆盖已审结果。
func (r *GormResearchItemRepository) UpdateStatus(id uint, status, remarks string, approveTime *time.Time) error {
	updates := map[string]interface{}{
		"status":        status,
		"audit_remarks": remarks,
		"approve_time":  approveTime,
	}
	result := r.db.Model(&models.ResearchItem{}).
		Where("id = ? AND status = ?", id, constants.ResearchStatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountByStatus 按状态统计成果数
func (r *GormResearchItemRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	rows := make([]row, 0)
	if err := r.db.Model(&models.ResearchItem{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Count
	}
	return counts, nil
}

// ListByStatus 按状态取全部成果（统计用，带子类与大类）
func (r *GormResearchItemRepository) ListByStatus(status string) ([]models.ResearchItem, error) {
	items := make([]models.ResearchItem, 0)
	query := r.db.Preload("Subtype.Type")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Transaction 在事务中执行
func (r *GormResearchItemRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
