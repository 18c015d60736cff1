package repository

import (
	"errors"

	"github.com/keyan-next/internal/models"

	"gorm.io/gorm"
)

// DepartmentRepository 院系数据访问接口
type DepartmentRepository interface {
	List() ([]models.Department, error)
	GetByCode(code string) (*models.Department, error)
	Create(dept *models.Department) error
	Update(dept *models.Department) error
	Delete(id uint) error
	ListAliases() ([]models.DepartmentAlias, error)
	CreateAlias(alias *models.DepartmentAlias) error
	DeleteAlias(id uint) error
}

// GormDepartmentRepository GORM 实现
type GormDepartmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建院系仓库
func NewDepartmentRepository(db *gorm.DB) *GormDepartmentRepository {
	return &GormDepartmentRepository{db: db}
}

// List 院系列表
func (r *GormDepartmentRepository) List() ([]models.Department, error) {
	departments := make([]models.Department, 0)
	if err := r.db.Order("code ASC").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

// GetByCode 根据编码获取院系
func (r *GormDepartmentRepository) GetByCode(code string) (*models.Department, error) {
	var dept models.Department
	if err := r.db.Where("code = ?", code).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

// Create 创建院系
func (r *GormDepartmentRepository) Create(dept *models.Department) error {
	return r.db.Create(dept).Error
}

// Update 更新院系名称
func (r *GormDepartmentRepository) Update(dept *models.Department) error {
	return r.db.Model(&models.Department{}).Where("id = ?", dept.ID).
		Update("name", dept.Name).Error
}

// Delete 删除院系
func (r *GormDepartmentRepository) Delete(id uint) error {
	return r.db.Delete(&models.Department{}, id).Error
}

// ListAliases 别名列表
func (r *GormDepartmentRepository) ListAliases() ([]models.DepartmentAlias, error) {
	aliases := make([]models.DepartmentAlias, 0)
	if err := r.db.Order("id ASC").Find(&aliases).Error; err != nil {
		return nil, err
	}
	return aliases, nil
}

// CreateAlias 创建别名
func (r *GormDepartmentRepository) CreateAlias(alias *models.DepartmentAlias) error {
	return r.db.Create(alias).Error
}

// DeleteAlias 删除别名
func (r *GormDepartmentRepository) DeleteAlias(id uint) error {
	return r.db.Delete(&models.DepartmentAlias{}, id).Error
}
