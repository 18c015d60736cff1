package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestCheckPermissionWithRolePolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SyncRolePermissions("research_admin", []string{"research.review", "notice.publish"}); err != nil {
		t.Fatalf("sync role permissions failed: %v", err)
	}

	allow, err := svc.CheckPermission("research_admin", "research.review")
	if err != nil {
		t.Fatalf("check allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.CheckPermission("research_admin", "system.users.manage")
	if err != nil {
		t.Fatalf("check deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}

	allow, err = svc.CheckPermission("teacher", "research.review")
	if err != nil {
		t.Fatalf("check other role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false for unrelated role")
	}
}

func TestSyncRolePermissionsOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SyncRolePermissions("ops", []string{"logs.view", "system.health.view"}); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}
	if err := svc.SyncRolePermissions("ops", []string{"logs.view"}); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}

	codes, err := svc.RolePermissions("ops")
	if err != nil {
		t.Fatalf("role permissions failed: %v", err)
	}
	if len(codes) != 1 || codes[0] != "logs.view" {
		t.Fatalf("expected only logs.view, got %v", codes)
	}

	allow, err := svc.CheckPermission("ops", "system.health.view")
	if err != nil {
		t.Fatalf("check removed code failed: %v", err)
	}
	if allow {
		t.Fatalf("expected removed code to be denied")
	}
}

func TestRemoveRoleClearsPolicies(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SyncRolePermissions("temp", []string{"notice.publish"}); err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if err := svc.RemoveRole("temp"); err != nil {
		t.Fatalf("remove role failed: %v", err)
	}

	codes, err := svc.RolePermissions("temp")
	if err != nil {
		t.Fatalf("role permissions failed: %v", err)
	}
	if len(codes) != 0 {
		t.Fatalf("expected no codes after removal, got %v", codes)
	}
}

func TestSyncAllRebuildsSnapshot(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SyncRolePermissions("research_admin", []string{"stale.code"}); err != nil {
		t.Fatalf("seed stale policy failed: %v", err)
	}

	snapshot := map[string][]string{
		"research_admin": {"research.review", "research.view_all"},
		"sys_admin":      {"system.users.manage"},
	}
	if err := svc.SyncAll(snapshot); err != nil {
		t.Fatalf("sync all failed: %v", err)
	}

	allow, err := svc.CheckPermission("research_admin", "stale.code")
	if err != nil {
		t.Fatalf("check stale failed: %v", err)
	}
	if allow {
		t.Fatalf("expected stale policy to be replaced")
	}
	allow, err = svc.CheckPermission("sys_admin", "system.users.manage")
	if err != nil {
		t.Fatalf("check sys_admin failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected sys_admin policy from snapshot")
	}
}

func TestCheckPermissionEmptyInput(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	allow, err := svc.CheckPermission("", "research.review")
	if err != nil {
		t.Fatalf("check empty role failed: %v", err)
	}
	if allow {
		t.Fatalf("expected empty role to be denied")
	}
	allow, err = svc.CheckPermission("research_admin", "  ")
	if err != nil {
		t.Fatalf("check empty code failed: %v", err)
	}
	if allow {
		t.Fatalf("expected empty code to be denied")
	}
}
