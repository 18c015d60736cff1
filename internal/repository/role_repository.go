package repository

import (
	"errors"

	"github.com/keyan-next/internal/models"

	"gorm.io/gorm"
)

// RoleRepository 角色数据访问接口
type RoleRepository interface {
	List() ([]models.Role, error)
	GetByID(id uint) (*models.Role, error)
	GetByName(name string) (*models.Role, error)
	Create(role *models.Role) error
	Update(role *models.Role) error
	Rename(id uint, oldName, newName string) error
	Delete(id uint) error
	ReplacePermissions(roleID uint, codes []string) error
	PermissionCodes(roleID uint) ([]string, error)
}

// GormRoleRepository GORM 实现
type GormRoleRepository struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓库
func NewRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// List 角色列表（含权限编码集）
func (r *GormRoleRepository) List() ([]models.Role, error) {
	roles := make([]models.Role, 0)
	if err := r.db.Preload("Permissions").Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// GetByID 根据 ID 获取角色
func (r *GormRoleRepository) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.Preload("Permissions").First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// GetByName 根据名称获取角色
func (r *GormRoleRepository) GetByName(name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

// Create 创建角色
func (r *GormRoleRepository) Create(role *models.Role) error {
	return r.db.Create(role).Error
}

// Update 更新角色描述（不触碰名称与权限关联，改名走 Rename）
func (r *GormRoleRepository) Update(role *models.Role) error {
	return r.db.Model(&models.Role{}).Where("id = ?", role.ID).
		Updates(map[string]interface{}{
			"description": role.Description,
		}).Error
}

// Rename 角色改名并级联更新用户表引用
// 用户表按名称引用角色，改名与引用迁移在同一事务内完成。
func (r *GormRoleRepository) Rename(id uint, oldName, newName string) error {
	if id == 0 {
		return errors.New("invalid role id")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Role{}).Where("id = ?", id).
			Update("name", newName).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("role = ?", oldName).
			Update("role", newName).Error
	})
}

// Delete 删除角色及其权限关联
func (r *GormRoleRepository) Delete(id uint) error {
	if id == 0 {
		return errors.New("invalid role id")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, id).Error
	})
}

// ReplacePermissions 原子替换角色的全部权限编码
// 先删后插在同一事务内完成，调用方不会观察到半更新状态。
func (r *GormRoleRepository) ReplacePermissions(roleID uint, codes []string) error {
	if roleID == 0 {
		return errors.New("invalid role id")
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if len(codes) == 0 {
			return nil
		}
		rows := make([]models.RolePermission, 0, len(codes))
		for _, code := range codes {
			rows = append(rows, models.RolePermission{RoleID: roleID, Code: code})
		}
		return tx.Create(&rows).Error
	})
}

// PermissionCodes 获取角色的权限编码集
func (r *GormRoleRepository) PermissionCodes(roleID uint) ([]string, error) {
	codes := make([]string, 0)
	if err := r.db.Model(&models.RolePermission{}).
		Where("role_id = ?", roleID).
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
