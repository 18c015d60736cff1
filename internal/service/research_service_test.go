package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	calls int
}

func (n *recordingNotifier) NotifyStatsChanged() {
	n.calls++
}

func setupResearchServiceTest(t *testing.T) (*ResearchService, *recordingNotifier, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:research_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	notifier := &recordingNotifier{}
	svc := NewResearchService(
		repository.NewResearchItemRepository(db),
		repository.NewResearchTypeRepository(db),
		repository.NewUserRepository(db),
		NewAuditService(repository.NewAuditLogRepository(db)),
		notifier,
	)
	return svc, notifier, db
}

func createTestSubtype(t *testing.T, db *gorm.DB, typeName, subtypeName string) *models.ResearchSubtype {
	t.Helper()
	rt := models.ResearchType{Name: typeName}
	if err := db.Where("name = ?", typeName).FirstOrCreate(&rt).Error; err != nil {
		t.Fatalf("create research type failed: %v", err)
	}
	subtype := models.ResearchSubtype{Name: subtypeName, TypeID: rt.ID}
	if err := db.Create(&subtype).Error; err != nil {
		t.Fatalf("create research subtype failed: %v", err)
	}
	return &subtype
}

func createResearchTestUser(t *testing.T, db *gorm.DB, fullName string) *models.User {
	t.Helper()
	user := models.User{
		Email:        fmt.Sprintf("%d_%s@example.com", time.Now().UnixNano(), fullName),
		PasswordHash: "hash",
		FullName:     fullName,
		Role:         constants.RoleTeacher,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return &user
}

func createTestItem(t *testing.T, db *gorm.DB, ownerID, subtypeID uint, status string) *models.ResearchItem {
	t.Helper()
	item := models.ResearchItem{
		Title:     fmt.Sprintf("item_%d", time.Now().UnixNano()),
		UserID:    ownerID,
		SubtypeID: subtypeID,
		Status:    status,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create research item failed: %v", err)
	}
	return &item
}

func TestCreateItemDefaultsDraftAndWritesAudit(t *testing.T) {
	svc, _, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	subtype := createTestSubtype(t, db, "科研项目", "纵向项目")

	item, err := svc.CreateItem(CreateItemInput{
		OwnerID:     owner.ID,
		Title:       "  国家自然科学基金项目  ",
		SubtypeID:   subtype.ID,
		ContentJSON: models.JSON{"funding": "50万"},
	})
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}
	if item.Status != constants.ResearchStatusDraft {
		t.Fatalf("expected draft status, got %s", item.Status)
	}
	if item.Title != "国家自然科学基金项目" {
		t.Fatalf("expected trimmed title, got %q", item.Title)
	}

	var logs []models.AuditLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("load audit logs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != constants.AuditActionCreateItem {
		t.Fatalf("expected one create audit entry, got %+v", logs)
	}
	if logs[0].TargetID == nil || *logs[0].TargetID != item.ID {
		t.Fatalf("expected audit target %d, got %+v", item.ID, logs[0].TargetID)
	}
}

func TestCreateItemValidation(t *testing.T) {
	svc, _, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	subtype := createTestSubtype(t, db, "科研项目", "横向项目")

	cases := []CreateItemInput{
		{OwnerID: owner.ID, Title: "   ", SubtypeID: subtype.ID},
		{OwnerID: owner.ID, Title: "有标题"},
		{OwnerID: owner.ID, Title: "有标题", SubtypeID: 9999},
		{OwnerID: owner.ID, Title: "有标题", SubtypeID: subtype.ID, Status: constants.ResearchStatusApproved},
	}
	for i, input := range cases {
		if _, err := svc.CreateItem(input); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestCreateItemResolvesCollaborators(t *testing.T) {
	svc, _, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	peer := createResearchTestUser(t, db, "李四")
	subtype := createTestSubtype(t, db, "学术成果", "学术论文")

	// 未命中姓名与所有者自身都被静默丢弃
	item, err := svc.CreateItem(CreateItemInput{
		OwnerID:       owner.ID,
		Title:         "分布式系统研究",
		SubtypeID:     subtype.ID,
		Status:        constants.ResearchStatusPending,
		Collaborators: []string{"李四", "张三", "不存在的人", "李四"},
	})
	if err != nil {
		t.Fatalf("create item failed: %v", err)
	}

	var rows []models.ResearchCollaborator
	if err := db.Where("item_id = ?", item.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load collaborators failed: %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != peer.ID {
		t.Fatalf("expected single collaborator %d, got %+v", peer.ID, rows)
	}
}

func TestUpdateStatusApproveStampsTime(t *testing.T) {
	svc, notifier, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	reviewer := createResearchTestUser(t, db, "审核员")
	subtype := createTestSubtype(t, db, "科研项目", "纵向项目")
	item := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusPending)

	before := time.Now().Add(-time.Second)
	view, err := svc.UpdateStatus(ReviewInput{
		ID:         item.ID,
		Status:     constants.ResearchStatusApproved,
		Remarks:    "材料齐全",
		ReviewerID: reviewer.ID,
	})
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if view.Status != constants.ResearchStatusApproved {
		t.Fatalf("expected approved, got %s", view.Status)
	}
	if view.ApproveTime == nil || view.ApproveTime.Before(before) {
		t.Fatalf("expected server-side approve time, got %v", view.ApproveTime)
	}
	if view.AuditRemarks != "材料齐全" {
		t.Fatalf("expected remarks persisted, got %q", view.AuditRemarks)
	}
	if view.Category != constants.CategoryVerticalProject {
		t.Fatalf("expected derived category, got %s", view.Category)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected 1 stats notification, got %d", notifier.calls)
	}

	var count int64
	if err := db.Model(&models.AuditLog{}).
		Where("action = ?", constants.AuditActionUpdateItemStatus).
		Count(&count).Error; err != nil {
		t.Fatalf("count audit logs failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 review audit entry, got %d", count)
	}

	// 审计记录留存迁移前后的状态
	var audit models.AuditLog
	if err := db.Where("action = ?", constants.AuditActionUpdateItemStatus).First(&audit).Error; err != nil {
		t.Fatalf("load audit log failed: %v", err)
	}
	if audit.OldValue["status"] != constants.ResearchStatusPending {
		t.Fatalf("expected old_value to carry pending, got %v", audit.OldValue)
	}
	if audit.NewValue["status"] != constants.ResearchStatusApproved {
		t.Fatalf("expected new_value to carry approved, got %v", audit.NewValue)
	}
}

func TestUpdateStatusRejectLeavesApproveTimeEmpty(t *testing.T) {
	svc, _, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	subtype := createTestSubtype(t, db, "科研项目", "横向项目")
	item := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusPending)

	view, err := svc.UpdateStatus(ReviewInput{
		ID:         item.ID,
		Status:     constants.ResearchStatusRejected,
		Remarks:    "材料不全",
		ReviewerID: owner.ID,
	})
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if view.Status != constants.ResearchStatusRejected || view.ApproveTime != nil {
		t.Fatalf("unexpected rejected view: status=%s approve_time=%v", view.Status, view.ApproveTime)
	}
}

func TestUpdateStatusOnlyPending(t *testing.T) {
	svc, _, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	subtype := createTestSubtype(t, db, "科研项目", "纵向项目")

	for _, status := range []string{
		constants.ResearchStatusDraft,
		constants.ResearchStatusApproved,
		constants.ResearchStatusRejected,
	} {
		item := createTestItem(t, db, owner.ID, subtype.ID, status)
		_, err := svc.UpdateStatus(ReviewInput{
			ID:         item.ID,
			Status:     constants.ResearchStatusApproved,
			ReviewerID: owner.ID,
		})
		if !errors.Is(err, ErrAlreadyReviewed) {
			t.Fatalf("status %s: expected ErrAlreadyReviewed, got %v", status, err)
		}
	}

	_, err := svc.UpdateStatus(ReviewInput{ID: 9999, Status: constants.ResearchStatusApproved})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	item := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusPending)
	_, err = svc.UpdateStatus(ReviewInput{ID: item.ID, Status: constants.ResearchStatusDraft})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for non-final status, got %v", err)
	}
}

func TestBatchUpdateStatusIntersectsPending(t *testing.T) {
	svc, notifier, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	reviewer := createResearchTestUser(t, db, "审核员")
	subtype := createTestSubtype(t, db, "学术成果", "发明专利")

	pending1 := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusPending)
	approved := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusApproved)
	pending2 := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusPending)
	draft := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusDraft)

	updated, err := svc.BatchUpdateStatus(BatchReviewInput{
		IDs:        []uint{pending1.ID, approved.ID, pending2.ID, draft.ID},
		Status:     constants.ResearchStatusApproved,
		Remarks:    "批量通过",
		ReviewerID: reviewer.ID,
	})
	if err != nil {
		t.Fatalf("batch update failed: %v", err)
	}
	if updated != 2 {
		t.Fatalf("expected 2 updated, got %d", updated)
	}
	if notifier.calls != 1 {
		t.Fatalf("expected 1 stats notification, got %d", notifier.calls)
	}

	// 非待审条目不被触碰
	var reloaded models.ResearchItem
	if err := db.First(&reloaded, draft.ID).Error; err != nil {
		t.Fatalf("reload draft failed: %v", err)
	}
	if reloaded.Status != constants.ResearchStatusDraft {
		t.Fatalf("expected draft untouched, got %s", reloaded.Status)
	}
	for _, id := range []uint{pending1.ID, pending2.ID} {
		var item models.ResearchItem
		if err := db.First(&item, id).Error; err != nil {
			t.Fatalf("reload item failed: %v", err)
		}
		if item.Status != constants.ResearchStatusApproved || item.ApproveTime == nil {
			t.Fatalf("item %d: expected approved with time, got status=%s time=%v", id, item.Status, item.ApproveTime)
		}
	}

	// 整批只落一条审计记录
	var count int64
	if err := db.Model(&models.AuditLog{}).
		Where("action = ?", constants.AuditActionBatchUpdateStatus).
		Count(&count).Error; err != nil {
		t.Fatalf("count audit logs failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 batch audit entry, got %d", count)
	}
	var audit models.AuditLog
	if err := db.Where("action = ?", constants.AuditActionBatchUpdateStatus).First(&audit).Error; err != nil {
		t.Fatalf("load audit log failed: %v", err)
	}
	if audit.OldValue["status"] != constants.ResearchStatusPending {
		t.Fatalf("expected old_value to carry pending, got %v", audit.OldValue)
	}
	if audit.NewValue["status"] != constants.ResearchStatusApproved {
		t.Fatalf("expected new_value to carry approved, got %v", audit.NewValue)
	}
	if got, ok := audit.NewValue["count"].(float64); !ok || int(got) != 2 {
		t.Fatalf("expected batch count 2 in new_value, got %v", audit.NewValue["count"])
	}
}

func TestBatchUpdateStatusNoPending(t *testing.T) {
	svc, notifier, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	subtype := createTestSubtype(t, db, "学术成果", "科技奖励")
	approved := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusApproved)

	_, err := svc.BatchUpdateStatus(BatchReviewInput{
		IDs:    []uint{approved.ID, 9999},
		Status: constants.ResearchStatusRejected,
	})
	if !errors.Is(err, ErrNoPendingItems) {
		t.Fatalf("expected ErrNoPendingItems, got %v", err)
	}

	_, err = svc.BatchUpdateStatus(BatchReviewInput{
		IDs:    nil,
		Status: constants.ResearchStatusRejected,
	})
	if !errors.Is(err, ErrNoPendingItems) {
		t.Fatalf("expected ErrNoPendingItems for empty ids, got %v", err)
	}
	if notifier.calls != 0 {
		t.Fatalf("expected no stats notification on failed batch, got %d", notifier.calls)
	}

	// 整批失败不落审计记录
	var count int64
	if err := db.Model(&models.AuditLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count audit logs failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no audit entries, got %d", count)
	}
}

func TestDeleteItemOwnershipGate(t *testing.T) {
	svc, _, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	other := createResearchTestUser(t, db, "李四")
	super := createResearchTestUser(t, db, "超管")
	super.IsSuperuser = true
	subtype := createTestSubtype(t, db, "科研项目", "纵向项目")

	item := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusDraft)
	if err := svc.DeleteItem(other, item.ID, ""); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for non-owner, got %v", err)
	}
	if err := svc.DeleteItem(owner, item.ID, ""); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}

	item = createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusDraft)
	if err := svc.DeleteItem(super, item.ID, ""); err != nil {
		t.Fatalf("superuser delete failed: %v", err)
	}
}

func TestListMyItemsIncludesCollaborations(t *testing.T) {
	svc, _, db := setupResearchServiceTest(t)
	owner := createResearchTestUser(t, db, "张三")
	peer := createResearchTestUser(t, db, "李四")
	subtype := createTestSubtype(t, db, "学术成果", "出版著作")

	mine := createTestItem(t, db, owner.ID, subtype.ID, constants.ResearchStatusPending)
	shared := createTestItem(t, db, peer.ID, subtype.ID, constants.ResearchStatusPending)
	if err := db.Create(&models.ResearchCollaborator{ItemID: shared.ID, UserID: owner.ID}).Error; err != nil {
		t.Fatalf("create collaborator failed: %v", err)
	}
	createTestItem(t, db, peer.ID, subtype.ID, constants.ResearchStatusPending)

	views, total, err := svc.ListMyItems(owner.ID, repository.ResearchItemListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list my items failed: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("expected 2 items, got total=%d len=%d", total, len(views))
	}
	got := map[uint]bool{}
	for _, view := range views {
		got[view.ID] = true
	}
	if !got[mine.ID] || !got[shared.ID] {
		t.Fatalf("expected owned and collaborated items, got %v", got)
	}
}
