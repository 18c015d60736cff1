package service

import (
	"context"
	"strings"

	"github.com/keyan-next/internal/cache"
	"github.com/keyan-next/internal/logger"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"
)

// CreateUserInput 创建用户入参
type CreateUserInput struct {
	Email          string
	Password       string
	FullName       string
	Role           string
	IsSuperuser    bool
	Department     string
	DepartmentCode string
	EmployeeID     string
	Phone          string
	Title          string
}

// UpdateUserInput 更新用户资料入参
type UpdateUserInput struct {
	ID                uint
	FullName          *string
	Department        *string
	DepartmentCode    *string
	EmployeeID        *string
	Phone             *string
	Title             *string
	ResearchDirection *string
	ProfilePublic     *bool
	IsActive          *bool
	Role              *string
}

// UserService 用户管理服务
type UserService struct {
	userRepo repository.UserRepository
	authSvc  *AuthService
	deptSvc  *DepartmentService
}

// NewUserService 创建用户服务实例
func NewUserService(userRepo repository.UserRepository, authSvc *AuthService, deptSvc *DepartmentService) *UserService {
	return &UserService{
		userRepo: userRepo,
		authSvc:  authSvc,
		deptSvc:  deptSvc,
	}
}

// Create 创建用户
// 院系编码缺省时按院系名归一化解析补齐。
func (s *UserService) Create(input CreateUserInput) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || input.Password == "" {
		return nil, ErrValidation
	}
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	departmentCode := strings.TrimSpace(input.DepartmentCode)
	if departmentCode == "" && input.Department != "" {
		code, err := s.deptSvc.Resolve(input.Department)
		if err != nil {
			return nil, err
		}
		departmentCode = code
	}

	user := &models.User{
		Email:          email,
		PasswordHash:   hash,
		FullName:       input.FullName,
		Role:           input.Role,
		IsSuperuser:    input.IsSuperuser,
		IsActive:       true,
		Department:     input.Department,
		DepartmentCode: departmentCode,
		EmployeeID:     input.EmployeeID,
		Phone:          input.Phone,
		Title:          input.Title,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get 获取用户
func (s *UserService) Get(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// List 用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.userRepo.List(filter)
}

// Update 更新用户资料
// 改了院系名而没给编码时重新归一化解析。
func (s *UserService) Update(input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(input.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Department != nil {
		user.Department = *input.Department
		if input.DepartmentCode == nil {
			code, err := s.deptSvc.Resolve(*input.Department)
			if err != nil {
				return nil, err
			}
			user.DepartmentCode = code
		}
	}
	if input.DepartmentCode != nil {
		user.DepartmentCode = *input.DepartmentCode
	}
	if input.EmployeeID != nil {
		user.EmployeeID = *input.EmployeeID
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Title != nil {
		user.Title = *input.Title
	}
	if input.ResearchDirection != nil {
		user.ResearchDirection = *input.ResearchDirection
	}
	if input.ProfilePublic != nil {
		user.ProfilePublic = *input.ProfilePublic
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Role != nil && *input.Role != "" {
		user.Role = *input.Role
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	s.invalidateAuthState(user.ID)
	return user, nil
}

// ChangePassword 修改密码
func (s *UserService) ChangePassword(id uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if err := s.authSvc.VerifyPassword(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := s.authSvc.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.userRepo.Update(user)
}

// Delete 删除用户（软删除）
func (s *UserService) Delete(id uint) error {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if err := s.userRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateAuthState(id)
	return nil
}

// invalidateAuthState 用户资料变更后失效鉴权快照
func (s *UserService) invalidateAuthState(userID uint) {
	if err := cache.DelUserAuthState(context.Background(), userID); err != nil {
		logger.Warnw("auth_state_invalidate_failed", "user_id", userID, "error", err)
	}
}
