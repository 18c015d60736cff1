package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStatsServiceTest(t *testing.T) (*StatsService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:stats_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.ResearchType{},
		&models.ResearchSubtype{},
		&models.ResearchItem{},
		&models.ResearchCollaborator{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewStatsService(repository.NewResearchItemRepository(db)), db
}

func TestStatsClassifiesApprovedByCategory(t *testing.T) {
	svc, db := setupStatsServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	vertical := createTestSubtype(t, db, "科研项目", "纵向项目")
	paper := createTestSubtype(t, db, "学术成果", "学术论文")

	createTestItem(t, db, owner.ID, vertical.ID, constants.ResearchStatusApproved)
	createTestItem(t, db, owner.ID, vertical.ID, constants.ResearchStatusApproved)
	createTestItem(t, db, owner.ID, paper.ID, constants.ResearchStatusApproved)
	createTestItem(t, db, owner.ID, paper.ID, constants.ResearchStatusPending)
	createTestItem(t, db, owner.ID, vertical.ID, constants.ResearchStatusDraft)

	stats, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.Total != 5 {
		t.Fatalf("expected total 5, got %d", stats.Total)
	}
	if stats.ApprovedTotal != 3 {
		t.Fatalf("expected 3 approved, got %d", stats.ApprovedTotal)
	}
	if stats.ByStatus[constants.ResearchStatusPending] != 1 {
		t.Fatalf("expected 1 pending, got %d", stats.ByStatus[constants.ResearchStatusPending])
	}
	// 仅已通过条目参与分类统计
	if stats.ByCategory[constants.CategoryVerticalProject] != 2 {
		t.Fatalf("expected 2 vertical projects, got %d", stats.ByCategory[constants.CategoryVerticalProject])
	}
	if stats.ByCategory[constants.CategoryPaper] != 1 {
		t.Fatalf("expected 1 paper, got %d", stats.ByCategory[constants.CategoryPaper])
	}
	if stats.GeneratedAt == 0 {
		t.Fatalf("expected generated timestamp")
	}
}

func TestStatsEmptyDatabase(t *testing.T) {
	svc, _ := setupStatsServiceTest(t)
	stats, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get stats failed: %v", err)
	}
	if stats.Total != 0 || stats.ApprovedTotal != 0 || len(stats.ByCategory) != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
}
