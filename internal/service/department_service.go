package service

import (
	"strings"

	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"
)

// DepartmentService 院系归一化与管理服务
type DepartmentService struct {
	deptRepo repository.DepartmentRepository
}

// NewDepartmentService 创建院系服务实例
func NewDepartmentService(deptRepo repository.DepartmentRepository) *DepartmentService {
	return &DepartmentService{deptRepo: deptRepo}
}

// normalizeDeptName 归一化院系名称：去首尾空白、小写、去内部空格
func normalizeDeptName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(normalized, " ", "")
}

// Resolve 将自由文本院系名解析为规范编码
// 先精确匹配规范名称，再精确匹配别名；都未命中返回空串。
func (s *DepartmentService) Resolve(queryText string) (string, error) {
	normalized := normalizeDeptName(queryText)
	if normalized == "" {
		return "", nil
	}

	departments, err := s.deptRepo.List()
	if err != nil {
		return "", err
	}
	for _, dept := range departments {
		if normalizeDeptName(dept.Name) == normalized {
			return dept.Code, nil
		}
	}

	aliases, err := s.deptRepo.ListAliases()
	if err != nil {
		return "", err
	}
	for _, alias := range aliases {
		if normalizeDeptName(alias.Alias) == normalized {
			return alias.Code, nil
		}
	}
	return "", nil
}

// List 院系列表
func (s *DepartmentService) List() ([]models.Department, error) {
	return s.deptRepo.List()
}

// Create 创建院系
func (s *DepartmentService) Create(code, name string) (*models.Department, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" || name == "" {
		return nil, ErrValidation
	}
	existing, err := s.deptRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	dept := &models.Department{Code: code, Name: name}
	if err := s.deptRepo.Create(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Update 更新院系名称
func (s *DepartmentService) Update(code, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}
	dept, err := s.deptRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if dept == nil {
		return nil, ErrNotFound
	}
	dept.Name = name
	if err := s.deptRepo.Update(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete 删除院系
func (s *DepartmentService) Delete(code string) error {
	dept, err := s.deptRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if dept == nil {
		return ErrNotFound
	}
	return s.deptRepo.Delete(dept.ID)
}

// ListAliases 别名列表
func (s *DepartmentService) ListAliases() ([]models.DepartmentAlias, error) {
	return s.deptRepo.ListAliases()
}

// CreateAlias 创建别名
// 目标编码允许指向尚不存在的院系，仅作读侧归一化。
func (s *DepartmentService) CreateAlias(alias, code string) (*models.DepartmentAlias, error) {
	alias = strings.TrimSpace(alias)
	code = strings.TrimSpace(code)
	if alias == "" || code == "" {
		return nil, ErrValidation
	}
	row := &models.DepartmentAlias{Alias: alias, Code: code}
	if err := s.deptRepo.CreateAlias(row); err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteAlias 删除别名
func (s *DepartmentService) DeleteAlias(id uint) error {
	return s.deptRepo.DeleteAlias(id)
}
