package repository

import (
	"errors"

	"github.com/keyan-next/internal/models"

	"gorm.io/gorm"
)

// PermissionCatalogRepository 权限目录数据访问接口
type PermissionCatalogRepository interface {
	List(onlyEnabled bool) ([]models.PermissionCatalog, error)
	GetByCode(code string) (*models.PermissionCatalog, error)
	Create(entry *models.PermissionCatalog) error
	Update(entry *models.PermissionCatalog) error
	Delete(id uint) error
	ExistingCodes(codes []string) (map[string]bool, error)
}

// GormPermissionCatalogRepository GORM 实现
type GormPermissionCatalogRepository struct {
	db *gorm.DB
}

// NewPermissionCatalogRepository 创建权限目录仓库
func NewPermissionCatalogRepository(db *gorm.DB) *GormPermissionCatalogRepository {
	return &GormPermissionCatalogRepository{db: db}
}

// List 权限目录列表
func (r *GormPermissionCatalogRepository) List(onlyEnabled bool) ([]models.PermissionCatalog, error) {
	entries := make([]models.PermissionCatalog, 0)
	query := r.db.Order("code ASC")
	if onlyEnabled {
		query = query.Where("enabled = ?", true)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByCode 根据编码获取权限条目
func (r *GormPermissionCatalogRepository) GetByCode(code string) (*models.PermissionCatalog, error) {
	var entry models.PermissionCatalog
	if err := r.db.Where("code = ?", code).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Create 创建权限条目
func (r *GormPermissionCatalogRepository) Create(entry *models.PermissionCatalog) error {
	return r.db.Create(entry).Error
}

// Update 更新权限条目（编码不可变）
func (r *GormPermissionCatalogRepository) Update(entry *models.PermissionCatalog) error {
	return r.db.Model(&models.PermissionCatalog{}).Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"name":        entry.Name,
			"module":      entry.Module,
			"description": entry.Description,
			"enabled":     entry.Enabled,
		}).Error
}

// Delete 删除权限条目
func (r *GormPermissionCatalogRepository) Delete(id uint) error {
	if id == 0 {
		return errors.New("invalid catalog id")
	}
	return r.db.Delete(&models.PermissionCatalog{}, id).Error
}

// ExistingCodes 批量查询目录内已存在的编码
func (r *GormPermissionCatalogRepository) ExistingCodes(codes []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(codes))
	if len(codes) == 0 {
		return existing, nil
	}
	found := make([]string, 0, len(codes))
	if err := r.db.Model(&models.PermissionCatalog{}).
		Where("code IN ?", codes).
		Pluck("code", &found).Error; err != nil {
		return nil, err
	}
	for _, code := range found {
		existing[code] = true
	}
	return existing, nil
}
