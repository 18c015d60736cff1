package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// recordingSyncer 记录同步调用，模拟运行时执行索引
type recordingSyncer struct {
	synced  map[string][]string
	removed []string
	fail    bool
}

func (s *recordingSyncer) SyncRolePermissions(role string, codes []string) error {
	if s.fail {
		return errors.New("sync unavailable")
	}
	if s.synced == nil {
		s.synced = make(map[string][]string)
	}
	s.synced[role] = codes
	return nil
}

func (s *recordingSyncer) RemoveRole(role string) error {
	if s.fail {
		return errors.New("sync unavailable")
	}
	s.removed = append(s.removed, role)
	return nil
}

func setupRBACServiceTest(t *testing.T) (*RBACService, *recordingSyncer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:rbac_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Role{}, &models.RolePermission{}, &models.PermissionCatalog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	syncer := &recordingSyncer{}
	svc := NewRBACService(repository.NewRoleRepository(db), repository.NewPermissionCatalogRepository(db), syncer)
	return svc, syncer, db
}

func TestCreateRoleConflict(t *testing.T) {
	svc, _, _ := setupRBACServiceTest(t)
	role, err := svc.CreateRole("reviewer", "成果审核", false)
	if err != nil {
		t.Fatalf("create role failed: %v", err)
	}
	if role.ID == 0 || role.IsSystem {
		t.Fatalf("unexpected role: %+v", role)
	}
	if _, err := svc.CreateRole("reviewer", "重复", false); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := svc.CreateRole("   ", "", false); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCreateRoleSystemFlag(t *testing.T) {
	svc, _, _ := setupRBACServiceTest(t)
	role, err := svc.CreateRole("platform_admin", "平台内置", true)
	if err != nil {
		t.Fatalf("create role failed: %v", err)
	}
	if !role.IsSystem {
		t.Fatalf("expected system role, got %+v", role)
	}
	// 创建时标记为内置的角色同样受删除保护
	if err := svc.DeleteRole(role.ID); !errors.Is(err, ErrSystemRole) {
		t.Fatalf("expected ErrSystemRole, got %v", err)
	}
}

func TestDeleteSystemRoleForbidden(t *testing.T) {
	svc, syncer, db := setupRBACServiceTest(t)
	system := models.Role{Name: "sys_admin", IsSystem: true}
	if err := db.Create(&system).Error; err != nil {
		t.Fatalf("create system role failed: %v", err)
	}

	if err := svc.DeleteRole(system.ID); !errors.Is(err, ErrSystemRole) {
		t.Fatalf("expected ErrSystemRole, got %v", err)
	}
	if len(syncer.removed) != 0 {
		t.Fatalf("expected no sync removal, got %v", syncer.removed)
	}
	if err := svc.DeleteRole(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRoleRemovesPermissions(t *testing.T) {
	svc, syncer, db := setupRBACServiceTest(t)
	role, err := svc.CreateRole("temp", "", false)
	if err != nil {
		t.Fatalf("create role failed: %v", err)
	}
	if _, err := svc.ReplacePermissions(role.ID, []string{"logs.view"}); err != nil {
		t.Fatalf("replace permissions failed: %v", err)
	}

	if err := svc.DeleteRole(role.ID); err != nil {
		t.Fatalf("delete role failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&count).Error; err != nil {
		t.Fatalf("count permissions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected permission rows removed, got %d", count)
	}
	if len(syncer.removed) != 1 || syncer.removed[0] != "temp" {
		t.Fatalf("expected sync removal for temp, got %v", syncer.removed)
	}
}

func TestReplacePermissionsDedupes(t *testing.T) {
	svc, syncer, db := setupRBACServiceTest(t)
	role, err := svc.CreateRole("reviewer", "", false)
	if err != nil {
		t.Fatalf("create role failed: %v", err)
	}

	view, err := svc.ReplacePermissions(role.ID, []string{
		"research.review",
		"notice.publish",
		"research.review",
		"logs.view",
		"notice.publish",
	})
	if err != nil {
		t.Fatalf("replace permissions failed: %v", err)
	}
	want := []string{"research.review", "notice.publish", "logs.view"}
	if len(view.PermissionCodes) != len(want) {
		t.Fatalf("expected %v, got %v", want, view.PermissionCodes)
	}
	for i, code := range want {
		if view.PermissionCodes[i] != code {
			t.Fatalf("expected %v in first-seen order, got %v", want, view.PermissionCodes)
		}
	}
	if got := syncer.synced["reviewer"]; len(got) != 3 {
		t.Fatalf("expected deduped codes synced, got %v", got)
	}

	// 整组替换：旧编码全部被覆盖
	view, err = svc.ReplacePermissions(role.ID, []string{"research.view_all"})
	if err != nil {
		t.Fatalf("second replace failed: %v", err)
	}
	if len(view.PermissionCodes) != 1 || view.PermissionCodes[0] != "research.view_all" {
		t.Fatalf("expected single replaced code, got %v", view.PermissionCodes)
	}
	var count int64
	if err := db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&count).Error; err != nil {
		t.Fatalf("count permissions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 permission row, got %d", count)
	}
}

func TestReplacePermissionsSyncFailureKeepsStore(t *testing.T) {
	svc, syncer, db := setupRBACServiceTest(t)
	role, err := svc.CreateRole("reviewer", "", false)
	if err != nil {
		t.Fatalf("create role failed: %v", err)
	}

	// 执行索引同步失败只告警，关系表变更照常生效
	syncer.fail = true
	view, err := svc.ReplacePermissions(role.ID, []string{"research.review"})
	if err != nil {
		t.Fatalf("replace permissions failed: %v", err)
	}
	if len(view.PermissionCodes) != 1 {
		t.Fatalf("expected store updated, got %v", view.PermissionCodes)
	}
	var count int64
	if err := db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&count).Error; err != nil {
		t.Fatalf("count permissions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 permission row, got %d", count)
	}
}

func TestUpdateRoleDescriptionKeepsName(t *testing.T) {
	svc, syncer, _ := setupRBACServiceTest(t)
	role, err := svc.CreateRole("reviewer", "旧描述", false)
	if err != nil {
		t.Fatalf("create role failed: %v", err)
	}

	// 名称留空表示不改名，不触发执行索引重建
	updated, err := svc.UpdateRole(role.ID, "", "新描述")
	if err != nil {
		t.Fatalf("update role failed: %v", err)
	}
	if updated.Name != "reviewer" || updated.Description != "新描述" {
		t.Fatalf("unexpected role: %+v", updated)
	}
	if len(syncer.removed) != 0 {
		t.Fatalf("expected no sync removal, got %v", syncer.removed)
	}
}

func TestUpdateRoleRenameCascades(t *testing.T) {
	svc, syncer, db := setupRBACServiceTest(t)
	role, err := svc.CreateRole("reviewer", "成果审核", false)
	if err != nil {
		t.Fatalf("create role failed: %v", err)
	}
	if _, err := svc.ReplacePermissions(role.ID, []string{"research.review"}); err != nil {
		t.Fatalf("replace permissions failed: %v", err)
	}
	user := models.User{Email: "holder@example.com", Role: "reviewer", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	updated, err := svc.UpdateRole(role.ID, "auditor", "成果审核")
	if err != nil {
		t.Fatalf("rename role failed: %v", err)
	}
	if updated.Name != "auditor" {
		t.Fatalf("expected renamed role, got %+v", updated)
	}

	// 用户表按名称引用角色，改名后引用随之迁移
	var holder models.User
	if err := db.First(&holder, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if holder.Role != "auditor" {
		t.Fatalf("expected user role migrated to auditor, got %s", holder.Role)
	}

	// 执行索引：旧名称策略清除，新名称携带原编码集重建
	if len(syncer.removed) != 1 || syncer.removed[0] != "reviewer" {
		t.Fatalf("expected old role removed from index, got %v", syncer.removed)
	}
	if codes := syncer.synced["auditor"]; len(codes) != 1 || codes[0] != "research.review" {
		t.Fatalf("expected codes rebuilt under new name, got %v", codes)
	}

	// 改名撞上既有角色名时拒绝
	if _, err := svc.CreateRole("occupied", "", false); err != nil {
		t.Fatalf("create role failed: %v", err)
	}
	if _, err := svc.UpdateRole(role.ID, "occupied", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPermissionCatalog(t *testing.T) {
	svc, _, _ := setupRBACServiceTest(t)
	entry := &models.PermissionCatalog{Code: "research.review", Name: "成果审核", Enabled: true}
	if err := svc.CreateCatalogEntry(entry); err != nil {
		t.Fatalf("create catalog entry failed: %v", err)
	}
	if err := svc.CreateCatalogEntry(&models.PermissionCatalog{Code: "research.review", Name: "重复"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	updated, err := svc.UpdateCatalogEntry("research.review", "成果复核", "Research", "停用中", false)
	if err != nil {
		t.Fatalf("update catalog entry failed: %v", err)
	}
	if updated.Enabled || updated.Description != "停用中" {
		t.Fatalf("unexpected entry: %+v", updated)
	}
	if updated.Name != "成果复核" || updated.Module != "Research" {
		t.Fatalf("expected name and module updated, got %+v", updated)
	}

	// 名称与模块留空则保持原值
	kept, err := svc.UpdateCatalogEntry("research.review", "", "", "停用中", false)
	if err != nil {
		t.Fatalf("update catalog entry failed: %v", err)
	}
	if kept.Name != "成果复核" || kept.Module != "Research" {
		t.Fatalf("expected name and module kept, got %+v", kept)
	}

	enabled, err := svc.ListCatalog(true)
	if err != nil {
		t.Fatalf("list catalog failed: %v", err)
	}
	if len(enabled) != 0 {
		t.Fatalf("expected no enabled entries, got %+v", enabled)
	}
	all, err := svc.ListCatalog(false)
	if err != nil {
		t.Fatalf("list catalog failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 entry, got %+v", all)
	}
}

func TestDeleteCatalogEntry(t *testing.T) {
	svc, _, db := setupRBACServiceTest(t)
	if err := svc.CreateCatalogEntry(&models.PermissionCatalog{Code: "logs.view", Name: "查看日志", Enabled: true}); err != nil {
		t.Fatalf("create catalog entry failed: %v", err)
	}

	if err := svc.DeleteCatalogEntry("logs.view"); err != nil {
		t.Fatalf("delete catalog entry failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.PermissionCatalog{}).Where("code = ?", "logs.view").Count(&count).Error; err != nil {
		t.Fatalf("count catalog failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected entry removed, got %d", count)
	}

	if err := svc.DeleteCatalogEntry("logs.view"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing entry, got %v", err)
	}
}
