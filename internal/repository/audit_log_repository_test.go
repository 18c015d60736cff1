package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/keyan-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuditLogRepoTest(t *testing.T) (*GormAuditLogRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:audit_log_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewAuditLogRepository(db), db
}

func TestAuditLogListJoinsOperator(t *testing.T) {
	repo, db := setupAuditLogRepoTest(t)
	user := models.User{Email: "op@example.com", PasswordHash: "hash", FullName: "操作员", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	targetID := uint(42)
	if err := repo.Create(&models.AuditLog{
		UserID:     &user.ID,
		Action:     "更新项目状态",
		TargetType: "research_item",
		TargetID:   &targetID,
		NewValue:   models.JSON{"status": "approved"},
	}); err != nil {
		t.Fatalf("create audit log failed: %v", err)
	}
	// 系统动作：无操作人
	if err := repo.Create(&models.AuditLog{Action: "系统初始化"}); err != nil {
		t.Fatalf("create system log failed: %v", err)
	}

	rows, total, err := repo.List(AuditLogListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 rows, got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(AuditLogListFilter{UserID: user.ID, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 row for user, got %d", total)
	}
	if rows[0].OperatorName != "操作员" || rows[0].OperatorEmail != "op@example.com" {
		t.Fatalf("expected operator info joined, got %+v", rows[0])
	}

	rows, _, err = repo.List(AuditLogListFilter{Action: "初始化", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by action failed: %v", err)
	}
	if len(rows) != 1 || rows[0].OperatorName != "" {
		t.Fatalf("expected system entry without operator, got %+v", rows)
	}
}

func TestAuditLogListTimeRange(t *testing.T) {
	repo, db := setupAuditLogRepoTest(t)
	old := models.AuditLog{Action: "旧动作", CreatedAt: time.Now().Add(-48 * time.Hour)}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("create old log failed: %v", err)
	}
	if err := repo.Create(&models.AuditLog{Action: "新动作"}); err != nil {
		t.Fatalf("create new log failed: %v", err)
	}

	from := time.Now().Add(-time.Hour)
	rows, total, err := repo.List(AuditLogListFilter{CreatedFrom: &from, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || rows[0].Action != "新动作" {
		t.Fatalf("expected only recent entry, got total=%d rows=%+v", total, rows)
	}
}
