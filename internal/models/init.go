package models

import (
	"strings"

	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultSuperuser 初始化默认超级管理员账号
func InitDefaultSuperuser(email, password string) error {
	var count int64
	DB.Model(&User{}).Where("is_superuser = ?", true).Count(&count)
	if count > 0 {
		return nil
	}

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "系统管理员",
		Role:         constants.RoleSysAdmin,
		IsSuperuser:  true,
		IsActive:     true,
	}
	if err := DB.Create(&user).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_superuser_created_with_default_password", "email", email)
		logger.Warnw("default_superuser_password_change_required", "email", email)
	} else {
		logger.Warnw("default_superuser_created", "email", email, "password_hidden", true)
	}
	return nil
}

// InitSystemRoles 初始化内置角色（幂等）
func InitSystemRoles() error {
	roles := []Role{
		{Name: constants.RoleSysAdmin, Description: "系统管理权限", IsSystem: true},
		{Name: constants.RoleResearchAdmin, Description: "科研管理权限", IsSystem: true},
		{Name: constants.RoleTeacher, Description: "教师默认权限", IsSystem: true},
	}
	for _, role := range roles {
		var count int64
		if err := DB.Model(&Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// InitDefaultDepartments 初始化默认院系与别名（幂等）
func InitDefaultDepartments() error {
	departments := []Department{
		{Code: "CS", Name: "计算机学院"},
	}
	for _, dept := range departments {
		var count int64
		if err := DB.Model(&Department{}).Where("code = ?", dept.Code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&dept).Error; err != nil {
			return err
		}
	}

	aliases := []DepartmentAlias{
		{Alias: "计算机科学与技术学院", Code: "CS"},
		{Alias: "计院", Code: "CS"},
		{Alias: "计算机", Code: "CS"},
	}
	for _, alias := range aliases {
		var count int64
		if err := DB.Model(&DepartmentAlias{}).Where("alias = ?", alias.Alias).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := DB.Create(&alias).Error; err != nil {
			return err
		}
	}
	return nil
}

// InitPermissionCatalog 初始化权限目录（幂等）
func InitPermissionCatalog() error {
	entries := []PermissionCatalog{
		{Code: "system.health.view", Name: "查看系统健康", Module: "System"},
		{Code: "system.users.manage", Name: "用户管理", Module: "System"},
		{Code: "system.roles.manage", Name: "角色管理", Module: "System"},
		{Code: "system.departments.manage", Name: "院系管理", Module: "System"},
		{Code: "research.review", Name: "成果审核", Module: "Research"},
		{Code: "research.view_all", Name: "查看全部成果", Module: "Research"},
		{Code: "notice.publish", Name: "发布通知", Module: "Notice"},
		{Code: "logs.view", Name: "查看审计日志", Module: "Logs"},
	}
	for _, entry := range entries {
		normalized := strings.TrimSpace(entry.Code)
		if normalized == "" {
			continue
		}
		var count int64
		if err := DB.Model(&PermissionCatalog{}).Where("code = ?", normalized).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		entry.Enabled = true
		if err := DB.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}
