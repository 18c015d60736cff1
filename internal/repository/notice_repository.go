package repository

import (
	"errors"
	"time"

	"github.com/keyan-next/internal/models"

	"gorm.io/gorm"
)

// UserNoticeRow 用户收件箱里的一条通知
type UserNoticeRow struct {
	models.Notice
	IsRead bool       `json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// NoticeRepository 通知数据访问接口
type NoticeRepository interface {
	CreateTx(tx *gorm.DB, notice *models.Notice) error
	CreateRecipientsTx(tx *gorm.DB, recipients []models.NoticeRecipient) error
	GetByID(id uint) (*models.Notice, error)
	List(filter NoticeListFilter) ([]models.Notice, int64, error)
	ListForUser(userID uint, page, pageSize int) ([]UserNoticeRow, int64, error)
	GetRecipient(noticeID, userID uint) (*models.NoticeRecipient, error)
	MarkRead(noticeID, userID uint) error
	CountUnread(userID uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormNoticeRepository GORM 实现
type GormNoticeRepository struct {
	db *gorm.DB
}

// NewNoticeRepository 创建通知仓库
func NewNoticeRepository(db *gorm.DB) *GormNoticeRepository {
	return &GormNoticeRepository{db: db}
}

// CreateTx 在事务内创建通知
func (r *GormNoticeRepository) CreateTx(tx *gorm.DB, notice *models.Notice) error {
	return tx.Create(notice).Error
}

// CreateRecipientsTx 在事务内批量创建接收记录
func (r *GormNoticeRepository) CreateRecipientsTx(tx *gorm.DB, recipients []models.NoticeRecipient) error {
	if len(recipients) == 0 {
		return nil
	}
	return tx.Create(&recipients).Error
}

// GetByID 根据 ID 获取通知
func (r *GormNoticeRepository) GetByID(id uint) (*models.Notice, error) {
	var notice models.Notice
	if err := r.db.First(&notice, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notice, nil
}

// List 通知列表（发布视角），最新在前
func (r *GormNoticeRepository) List(filter NoticeListFilter) ([]models.Notice, int64, error) {
	notices := make([]models.Notice, 0)
	query := r.db.Model(&models.Notice{})
	if filter.TargetRole != "" {
		query = query.Where("target_role = ?", filter.TargetRole)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC, id DESC").Find(&notices).Error; err != nil {
		return nil, 0, err
	}
	return notices, total, nil
}

// ListForUser 用户收件箱，最新在前
func (r *GormNoticeRepository) ListForUser(userID uint, page, pageSize int) ([]UserNoticeRow, int64, error) {
	rows := make([]UserNoticeRow, 0)
	query := r.db.Model(&models.Notice{}).
		Joins("JOIN notice_recipients ON notice_recipients.notice_id = notices.id").
		Where("notice_recipients.user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)
	if err := query.
		Select("notices.*, notice_recipients.is_read, notice_recipients.read_at").
		Order("notices.created_at DESC, notices.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetRecipient 获取接收记录
func (r *GormNoticeRepository) GetRecipient(noticeID, userID uint) (*models.NoticeRecipient, error) {
	var recipient models.NoticeRecipient
	if err := r.db.Where("notice_id = ? AND user_id = ?", noticeID, userID).
		First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recipient, nil
}

// MarkRead 标记已读
// 附带 is_read = false 条件，重复调用不改写首次已读时间。
func (r *GormNoticeRepository) MarkRead(noticeID, userID uint) error {
	now := time.Now()
	return r.db.Model(&models.NoticeRecipient{}).
		Where("notice_id = ? AND user_id = ? AND is_read = ?", noticeID, userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
		}).Error
}

// CountUnread 未读数
func (r *GormNoticeRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.NoticeRecipient{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Transaction 在事务中执行
func (r *GormNoticeRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
