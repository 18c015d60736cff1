package handlers

import (
	"strconv"

	"github.com/keyan-next/internal/http/response"
	"github.com/keyan-next/internal/repository"
	"github.com/keyan-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateNoticeRequest 创建通知请求
type CreateNoticeRequest struct {
	Title            string `json:"title" binding:"required"`
	Content          string `json:"content" binding:"required"`
	TargetRole       string `json:"target_role"`
	TargetDepartment string `json:"target_department"`
	DepartmentCode   string `json:"department_code"`
}

// CreateNotice 创建通知并扇出接收记录
func (h *Handler) CreateNotice(c *gin.Context) {
	user, ok := h.getCurrentUser(c)
	if !ok {
		return
	}
	var req CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	notice, recipients, err := h.NoticeService.Create(service.CreateNoticeInput{
		Title:            req.Title,
		Content:          req.Content,
		TargetRole:       req.TargetRole,
		TargetDepartment: req.TargetDepartment,
		DepartmentCode:   req.DepartmentCode,
		Publisher:        user.FullName,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	requestLog(c).Infow("notice_created",
		"notice_id", notice.ID,
		"target_role", notice.TargetRole,
		"department_code", notice.TargetDepartmentCode,
		"recipients", recipients,
	)
	response.Success(c, gin.H{
		"notice":     notice,
		"recipients": recipients,
	})
}

// ListNotices 通知列表（发布视角）
func (h *Handler) ListNotices(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = NormalizePagination(page, pageSize)

	notices, total, err := h.NoticeService.List(repository.NoticeListFilter{
		Page:       page,
		PageSize:   pageSize,
		TargetRole: c.Query("target_role"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, notices, response.NewPagination(page, pageSize, total))
}

// ListMyNotices 当前用户收件箱
func (h *Handler) ListMyNotices(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = NormalizePagination(page, pageSize)

	rows, total, err := h.NoticeService.ListForUser(userID, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.NewPagination(page, pageSize, total))
}

// MarkNoticeRead 标记通知已读（幂等）
func (h *Handler) MarkNoticeRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的通知 ID")
		return
	}
	if svcErr := h.NoticeService.MarkRead(uint(id), userID); svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.SuccessWithMsg(c, "已读", nil)
}

// CountUnreadNotices 未读通知数
func (h *Handler) CountUnreadNotices(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	count, err := h.NoticeService.CountUnread(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}
