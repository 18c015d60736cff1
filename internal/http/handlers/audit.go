package handlers

import (
	"strconv"
	"time"

	"github.com/keyan-next/internal/http/response"
	"github.com/keyan-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs 审计日志列表，最新在前
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = NormalizePagination(page, pageSize)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	targetID, _ := strconv.ParseUint(c.Query("target_id"), 10, 64)

	filter := repository.AuditLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     uint(userID),
		Action:     c.Query("action"),
		TargetType: c.Query("target_type"),
		TargetID:   uint(targetID),
	}
	if from := c.Query("created_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if to := c.Query("created_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.CreatedTo = &t
		}
	}

	rows, total, err := h.AuditService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.NewPagination(page, pageSize, total))
}
