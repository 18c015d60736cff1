package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const casbinTableName = "casbin_rule"

// 策略主体为角色名，客体为权限编码；角色权限以关系表为准，
// 这里只承载运行时判定，变更时由上层整组同步。
const permissionModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

// Service Casbin 授权服务
// 封装权限编码判定与角色策略同步。
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}

	m, err := model.NewModelFromString(permissionModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	return &Service{enforcer: enforcer}, nil
}

// Enforcer 返回底层 enforcer
func (s *Service) Enforcer() *casbin.SyncedEnforcer {
	if s == nil {
		return nil
	}
	return s.enforcer
}

// CheckPermission 判定角色是否持有权限编码
func (s *Service) CheckPermission(role, code string) (bool, error) {
	if s == nil || s.enforcer == nil {
		return false, fmt.Errorf("authz service unavailable")
	}
	role = strings.TrimSpace(role)
	code = strings.TrimSpace(code)
	if role == "" || code == "" {
		return false, nil
	}
	return s.enforcer.Enforce(role, code)
}

// SyncRolePermissions 整组覆盖角色的权限编码策略
func (s *Service) SyncRolePermissions(role string, codes []string) error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return fmt.Errorf("role is required")
	}

	if _, err := s.enforcer.RemoveFilteredPolicy(0, role); err != nil {
		return fmt.Errorf("clear role policy failed: %w", err)
	}
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, err := s.enforcer.AddPolicy(role, code); err != nil {
			return fmt.Errorf("add role policy failed: %w", err)
		}
	}
	return nil
}

// RemoveRole 删除角色的全部策略
func (s *Service) RemoveRole(role string) error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return fmt.Errorf("role is required")
	}
	if _, err := s.enforcer.RemoveFilteredPolicy(0, role); err != nil {
		return fmt.Errorf("remove role policy failed: %w", err)
	}
	return nil
}

// SyncAll 按关系表快照整体重建策略
// 启动时调用，保证执行索引与关系表一致。
func (s *Service) SyncAll(permissions map[string][]string) error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	roles := make([]string, 0, len(permissions))
	for role := range permissions {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	for _, role := range roles {
		if err := s.SyncRolePermissions(role, permissions[role]); err != nil {
			return err
		}
	}
	return nil
}

// RolePermissions 查询角色当前生效的权限编码
func (s *Service) RolePermissions(role string) ([]string, error) {
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, strings.TrimSpace(role))
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	codes := make([]string, 0, len(rules))
	for _, rule := range rules {
		if len(rule) >= 2 {
			codes = append(codes, rule[1])
		}
	}
	sort.Strings(codes)
	return codes, nil
}
