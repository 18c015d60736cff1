package service

import (
	"strings"

	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"
)

// PermissionSyncer 权限执行索引同步接口
// 角色权限以关系表为准，变更后同步到运行时执行器；为空时跳过。
type PermissionSyncer interface {
	SyncRolePermissions(role string, codes []string) error
	RemoveRole(role string) error
}

// RoleView 带权限编码集的角色视图
type RoleView struct {
	models.Role
	PermissionCodes []string `json:"permission_codes"`
}

// RBACService 角色与权限目录服务
type RBACService struct {
	roleRepo    repository.RoleRepository
	catalogRepo repository.PermissionCatalogRepository
	syncer      PermissionSyncer
}

// NewRBACService 创建 RBAC 服务实例
func NewRBACService(roleRepo repository.RoleRepository, catalogRepo repository.PermissionCatalogRepository, syncer PermissionSyncer) *RBACService {
	return &RBACService{
		roleRepo:    roleRepo,
		catalogRepo: catalogRepo,
		syncer:      syncer,
	}
}

// ListRoles 角色列表
func (s *RBACService) ListRoles() ([]RoleView, error) {
	roles, err := s.roleRepo.List()
	if err != nil {
		return nil, err
	}
	views := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		views = append(views, toRoleView(role))
	}
	return views, nil
}

// GetRole 获取角色
func (s *RBACService) GetRole(id uint) (*RoleView, error) {
	role, err := s.roleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNotFound
	}
	view := toRoleView(*role)
	return &view, nil
}

// CreateRole 创建角色，is_system 标记内置角色以阻止后续删除
func (s *RBACService) CreateRole(name, description string, isSystem bool) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}
	existing, err := s.roleRepo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	role := &models.Role{Name: name, Description: description, IsSystem: isSystem}
	if err := s.roleRepo.Create(role); err != nil {
		return nil, err
	}
	return role, nil
}

// UpdateRole 更新角色名称与描述
// 用户表按名称引用角色，改名级联迁移引用并重建执行索引。
func (s *RBACService) UpdateRole(id uint, name, description string) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNotFound
	}

	name = strings.TrimSpace(name)
	if name != "" && name != role.Name {
		existing, err := s.roleRepo.GetByName(name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrConflict
		}
		oldName := role.Name
		if err := s.roleRepo.Rename(id, oldName, name); err != nil {
			return nil, err
		}
		role.Name = name
		s.syncRemove(oldName)
		s.syncReplace(name, toRoleView(*role).PermissionCodes)
	}

	role.Description = description
	if err := s.roleRepo.Update(role); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole 删除角色，系统内置角色禁止删除
func (s *RBACService) DeleteRole(id uint) error {
	role, err := s.roleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrNotFound
	}
	if role.IsSystem {
		return ErrSystemRole
	}
	if err := s.roleRepo.Delete(id); err != nil {
		return err
	}
	s.syncRemove(role.Name)
	return nil
}

// ReplacePermissions 原子替换角色权限编码集
// 入参去重且保持首次出现顺序；编码是目录的弱引用，不校验存在性。
func (s *RBACService) ReplacePermissions(roleID uint, codes []string) (*RoleView, error) {
	role, err := s.roleRepo.GetByID(roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNotFound
	}

	deduped := dedupeCodes(codes)
	if err := s.roleRepo.ReplacePermissions(roleID, deduped); err != nil {
		return nil, err
	}
	s.syncReplace(role.Name, deduped)
	return s.GetRole(roleID)
}

// ListCatalog 权限目录列表
func (s *RBACService) ListCatalog(onlyEnabled bool) ([]models.PermissionCatalog, error) {
	return s.catalogRepo.List(onlyEnabled)
}

// CreateCatalogEntry 创建权限目录条目
func (s *RBACService) CreateCatalogEntry(entry *models.PermissionCatalog) error {
	entry.Code = strings.TrimSpace(entry.Code)
	if entry.Code == "" || entry.Name == "" {
		return ErrValidation
	}
	existing, err := s.catalogRepo.GetByCode(entry.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrConflict
	}
	return s.catalogRepo.Create(entry)
}

// UpdateCatalogEntry 更新权限目录条目（编码不可变，名称与所属模块留空则保持原值）
func (s *RBACService) UpdateCatalogEntry(code, name, module, description string, enabled bool) (*models.PermissionCatalog, error) {
	entry, err := s.catalogRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotFound
	}
	if name = strings.TrimSpace(name); name != "" {
		entry.Name = name
	}
	if module = strings.TrimSpace(module); module != "" {
		entry.Module = module
	}
	entry.Description = description
	entry.Enabled = enabled
	if err := s.catalogRepo.Update(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteCatalogEntry 删除权限目录条目
// 角色对编码是弱引用，删除目录条目不回收角色里的既有授权。
func (s *RBACService) DeleteCatalogEntry(code string) error {
	entry, err := s.catalogRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrNotFound
	}
	return s.catalogRepo.Delete(entry.ID)
}

func (s *RBACService) syncReplace(roleName string, codes []string) {
	if s.syncer == nil {
		return
	}
	if err := s.syncer.SyncRolePermissions(roleName, codes); err != nil {
		logger.Warnw("permission_sync_failed", "role", roleName, "error", err)
	}
}

func (s *RBACService) syncRemove(roleName string) {
	if s.syncer == nil {
		return
	}
	if err := s.syncer.RemoveRole(roleName); err != nil {
		logger.Warnw("permission_sync_failed", "role", roleName, "error", err)
	}
}

func toRoleView(role models.Role) RoleView {
	codes := make([]string, 0, len(role.Permissions))
	for _, perm := range role.Permissions {
		codes = append(codes, perm.Code)
	}
	return RoleView{Role: role, PermissionCodes: codes}
}

func dedupeCodes(codes []string) []string {
	deduped := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		deduped = append(deduped, code)
	}
	return deduped
}
