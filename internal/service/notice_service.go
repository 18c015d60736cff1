package service

import (
	"strings"

	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"

	"gorm.io/gorm"
)

// CreateNoticeInput 创建通知入参
type CreateNoticeInput struct {
	Title            string
	Content          string
	TargetRole       string // 角色名或通配符 all
	TargetDepartment string // 自由文本院系名，可空
	DepartmentCode   string // 已知编码，优先于自由文本解析
	Publisher        string
}

// NoticeService 通知扇出服务
type NoticeService struct {
	noticeRepo repository.NoticeRepository
	deptSvc    *DepartmentService
}

// NewNoticeService 创建通知服务实例
func NewNoticeService(noticeRepo repository.NoticeRepository, deptSvc *DepartmentService) *NoticeService {
	return &NoticeService{
		noticeRepo: noticeRepo,
		deptSvc:    deptSvc,
	}
}

// Create 创建通知并扇出接收记录
// 目标编码优先用入参编码，否则按自由文本院系名归一化解析。
// 通知与接收记录在同一事务内落库。
func (s *NoticeService) Create(input CreateNoticeInput) (*models.Notice, int, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, 0, ErrValidation
	}
	targetRole := input.TargetRole
	if targetRole == "" {
		targetRole = constants.RoleAll
	}

	departmentCode := strings.TrimSpace(input.DepartmentCode)
	if departmentCode == "" && input.TargetDepartment != "" {
		code, err := s.deptSvc.Resolve(input.TargetDepartment)
		if err != nil {
			return nil, 0, err
		}
		departmentCode = code
	}

	roleFilter := targetRole
	if roleFilter == constants.RoleAll {
		roleFilter = ""
	}

	notice := &models.Notice{
		Title:                title,
		Content:              content,
		TargetRole:           targetRole,
		TargetDepartment:     input.TargetDepartment,
		TargetDepartmentCode: departmentCode,
		Publisher:            input.Publisher,
	}

	// 接收人快照在事务内取，扇出与通知落库看到同一份用户集
	fanout := 0
	err := s.noticeRepo.Transaction(func(tx *gorm.DB) error {
		recipients, err := repository.NewUserRepository(tx).ListRecipients(roleFilter, departmentCode)
		if err != nil {
			return err
		}
		txRepo := repository.NewNoticeRepository(tx)
		if err := txRepo.CreateTx(tx, notice); err != nil {
			return err
		}
		fanout = len(recipients)
		if len(recipients) == 0 {
			return nil
		}
		rows := make([]models.NoticeRecipient, 0, len(recipients))
		for _, user := range recipients {
			rows = append(rows, models.NoticeRecipient{NoticeID: notice.ID, UserID: user.ID})
		}
		return txRepo.CreateRecipientsTx(tx, rows)
	})
	if err != nil {
		return nil, 0, err
	}
	return notice, fanout, nil
}

// List 通知列表（发布视角）
func (s *NoticeService) List(filter repository.NoticeListFilter) ([]models.Notice, int64, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	return s.noticeRepo.List(filter)
}

// ListForUser 用户收件箱
func (s *NoticeService) ListForUser(userID uint, page, pageSize int) ([]repository.UserNoticeRow, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	return s.noticeRepo.ListForUser(userID, page, pageSize)
}

// MarkRead 标记已读
// 幂等：重复标记或记录不存在都静默接受。
func (s *NoticeService) MarkRead(noticeID, userID uint) error {
	recipient, err := s.noticeRepo.GetRecipient(noticeID, userID)
	if err != nil {
		return err
	}
	if recipient == nil || recipient.IsRead {
		return nil
	}
	return s.noticeRepo.MarkRead(noticeID, userID)
}

// CountUnread 未读数
func (s *NoticeService) CountUnread(userID uint) (int64, error) {
	return s.noticeRepo.CountUnread(userID)
}
