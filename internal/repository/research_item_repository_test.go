package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupResearchItemRepoTest(t *testing.T) (*GormResearchItemRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:research_item_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.ResearchType{},
		&models.ResearchSubtype{},
		&models.ResearchItem{},
		&models.ResearchCollaborator{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewResearchItemRepository(db), db
}

func seedItem(t *testing.T, db *gorm.DB, status string) *models.ResearchItem {
	t.Helper()
	item := models.ResearchItem{
		Title:     fmt.Sprintf("item_%d", time.Now().UnixNano()),
		UserID:    1,
		SubtypeID: 1,
		Status:    status,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item failed: %v", err)
	}
	return &item
}

func TestUpdateStatusRequiresPending(t *testing.T) {
	repo, db := setupResearchItemRepoTest(t)
	item := seedItem(t, db, constants.ResearchStatusPending)

	now := time.Now()
	if err := repo.UpdateStatus(item.ID, constants.ResearchStatusApproved, "ok", &now); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	var reloaded models.ResearchItem
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != constants.ResearchStatusApproved || reloaded.ApproveTime == nil {
		t.Fatalf("unexpected item: status=%s approve_time=%v", reloaded.Status, reloaded.ApproveTime)
	}

	// 第二次更新命中不到 pending 行
	err := repo.UpdateStatus(item.ID, constants.ResearchStatusRejected, "", nil)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if err := db.First(&reloaded, item.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != constants.ResearchStatusApproved {
		t.Fatalf("expected approved result preserved, got %s", reloaded.Status)
	}
}

func TestListPendingByIDs(t *testing.T) {
	repo, db := setupResearchItemRepoTest(t)
	pending := seedItem(t, db, constants.ResearchStatusPending)
	seedItem(t, db, constants.ResearchStatusApproved)
	other := seedItem(t, db, constants.ResearchStatusPending)

	items, err := repo.ListPendingByIDs([]uint{pending.ID, other.ID, 9999})
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 pending items, got %d", len(items))
	}

	items, err = repo.ListPendingByIDs(nil)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty result for empty ids, got %d", len(items))
	}
}

func TestListFilters(t *testing.T) {
	repo, db := setupResearchItemRepoTest(t)
	if err := db.Create(&models.ResearchItem{
		Title: "深度学习研究", UserID: 1, SubtypeID: 1, Status: constants.ResearchStatusPending,
	}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if err := db.Create(&models.ResearchItem{
		Title: "区块链应用", UserID: 2, SubtypeID: 2, Status: constants.ResearchStatusApproved,
	}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	items, total, err := repo.List(ResearchItemListFilter{Status: constants.ResearchStatusPending, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Title != "深度学习研究" {
		t.Fatalf("unexpected status filter result: total=%d items=%+v", total, items)
	}

	_, total, err = repo.List(ResearchItemListFilter{Search: "区块链", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 match for keyword, got %d", total)
	}

	_, total, err = repo.List(ResearchItemListFilter{OwnerID: 2, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 item for owner 2, got %d", total)
	}
}

func TestCountByStatus(t *testing.T) {
	repo, db := setupResearchItemRepoTest(t)
	seedItem(t, db, constants.ResearchStatusPending)
	seedItem(t, db, constants.ResearchStatusPending)
	seedItem(t, db, constants.ResearchStatusApproved)

	counts, err := repo.CountByStatus()
	if err != nil {
		t.Fatalf("count by status failed: %v", err)
	}
	if counts[constants.ResearchStatusPending] != 2 || counts[constants.ResearchStatusApproved] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
