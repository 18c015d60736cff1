package repository

import (
	"errors"

	"github.com/keyan-next/internal/models"

	"gorm.io/gorm"
)

// ResearchTypeRepository 成果类型数据访问接口
type ResearchTypeRepository interface {
	ListTypes() ([]models.ResearchType, error)
	ListSubtypes(typeID uint) ([]models.ResearchSubtype, error)
	GetSubtypeByID(id uint) (*models.ResearchSubtype, error)
	CreateType(t *models.ResearchType) error
	CreateSubtype(sub *models.ResearchSubtype) error
}

// GormResearchTypeRepository GORM 实现
type GormResearchTypeRepository struct {
	db *gorm.DB
}

// NewResearchTypeRepository 创建成果类型仓库
func NewResearchTypeRepository(db *gorm.DB) *GormResearchTypeRepository {
	return &GormResearchTypeRepository{db: db}
}

// ListTypes 大类列表（含子类）
func (r *GormResearchTypeRepository) ListTypes() ([]models.ResearchType, error) {
	types := make([]models.ResearchType, 0)
	if err := r.db.Preload("Subtypes").Order("id ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// ListSubtypes 子类列表，typeID 为 0 时返回全部
func (r *GormResearchTypeRepository) ListSubtypes(typeID uint) ([]models.ResearchSubtype, error) {
	subtypes := make([]models.ResearchSubtype, 0)
	query := r.db.Preload("Type").Order("id ASC")
	if typeID > 0 {
		query = query.Where("type_id = ?", typeID)
	}
	if err := query.Find(&subtypes).Error; err != nil {
		return nil, err
	}
	return subtypes, nil
}

// GetSubtypeByID 根据 ID 获取子类（带大类）
func (r *GormResearchTypeRepository) GetSubtypeByID(id uint) (*models.ResearchSubtype, error) {
	var sub models.ResearchSubtype
	if err := r.db.Preload("Type").First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// CreateType 创建大类
func (r *GormResearchTypeRepository) CreateType(t *models.ResearchType) error {
	return r.db.Create(t).Error
}

// CreateSubtype 创建子类
func (r *GormResearchTypeRepository) CreateSubtype(sub *models.ResearchSubtype) error {
	return r.db.Create(sub).Error
}
