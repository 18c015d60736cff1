package handlers

import (
	"strconv"

	"github.com/keyan-next/internal/constants"
	"github.com/keyan-next/internal/http/response"
	"github.com/keyan-next/internal/models"
	"github.com/keyan-next/internal/repository"
	"github.com/keyan-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListResearchTypes 成果大类列表（含子类）
func (h *Handler) ListResearchTypes(c *gin.Context) {
	types, err := h.ResearchService.ListTypes()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, types)
}

// ListResearchSubtypes 成果子类列表
func (h *Handler) ListResearchSubtypes(c *gin.Context) {
	typeID, _ := strconv.ParseUint(c.Query("type_id"), 10, 64)
	subtypes, err := h.ResearchService.ListSubtypes(uint(typeID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, subtypes)
}

// CreateResearchItemRequest 创建成果请求
type CreateResearchItemRequest struct {
	Title         string      `json:"title" binding:"required"`
	SubtypeID     uint        `json:"subtype_id" binding:"required"`
	ContentJSON   models.JSON `json:"content_json"`
	Status        string      `json:"status"`
	FileURL       string      `json:"file_url"`
	Collaborators []string    `json:"collaborators"`
}

// CreateResearchItem 创建成果
func (h *Handler) CreateResearchItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateResearchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	item, err := h.ResearchService.CreateItem(service.CreateItemInput{
		OwnerID:       userID,
		Title:         req.Title,
		SubtypeID:     req.SubtypeID,
		ContentJSON:   req.ContentJSON,
		Status:        req.Status,
		FileURL:       req.FileURL,
		Collaborators: req.Collaborators,
		IP:            c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// GetResearchItem 获取成果详情
func (h *Handler) GetResearchItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的成果 ID")
		return
	}
	item, svcErr := h.ResearchService.GetItem(uint(id))
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.Success(c, item)
}

// ListResearchItems 成果列表（审核/管理视角）
func (h *Handler) ListResearchItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = NormalizePagination(page, pageSize)
	ownerID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	subtypeID, _ := strconv.ParseUint(c.Query("subtype_id"), 10, 64)

	items, total, err := h.ResearchService.ListItems(repository.ResearchItemListFilter{
		Page:      page,
		PageSize:  pageSize,
		OwnerID:   uint(ownerID),
		Status:    c.Query("status"),
		SubtypeID: uint(subtypeID),
		Search:    c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// ListPendingResearchItems 待审成果列表
func (h *Handler) ListPendingResearchItems(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = NormalizePagination(page, pageSize)

	items, total, err := h.ResearchService.ListItems(repository.ResearchItemListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   constants.ResearchStatusPending,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// ListMyResearchItems 我的成果列表（所有者或协作人）
func (h *Handler) ListMyResearchItems(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = NormalizePagination(page, pageSize)
	subtypeID, _ := strconv.ParseUint(c.Query("subtype_id"), 10, 64)

	items, total, err := h.ResearchService.ListMyItems(userID, repository.ResearchItemListFilter{
		Page:      page,
		PageSize:  pageSize,
		Status:    c.Query("status"),
		SubtypeID: uint(subtypeID),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// UpdateResearchItemRequest 更新成果请求
type UpdateResearchItemRequest struct {
	Title       string      `json:"title" binding:"required"`
	SubtypeID   uint        `json:"subtype_id"`
	ContentJSON models.JSON `json:"content_json"`
	FileURL     string      `json:"file_url"`
}

// UpdateResearchItem 更新成果内容字段
func (h *Handler) UpdateResearchItem(c *gin.Context) {
	user, ok := h.getCurrentUser(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的成果 ID")
		return
	}
	var req UpdateResearchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	item, svcErr := h.ResearchService.UpdateItem(user, service.UpdateItemInput{
		ID:          uint(id),
		Title:       req.Title,
		SubtypeID:   req.SubtypeID,
		ContentJSON: req.ContentJSON,
		FileURL:     req.FileURL,
	})
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.Success(c, item)
}

// DeleteResearchItem 删除成果
func (h *Handler) DeleteResearchItem(c *gin.Context) {
	user, ok := h.getCurrentUser(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的成果 ID")
		return
	}
	if svcErr := h.ResearchService.DeleteItem(user, uint(id), c.ClientIP()); svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}

// ReviewRequest 单条审核请求
type ReviewRequest struct {
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

// ReviewResearchItem 单条审核
func (h *Handler) ReviewResearchItem(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的成果 ID")
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	item, svcErr := h.ResearchService.UpdateStatus(service.ReviewInput{
		ID:         uint(id),
		Status:     req.Status,
		Remarks:    req.Remarks,
		ReviewerID: userID,
		IP:         c.ClientIP(),
	})
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.Success(c, item)
}

// BatchReviewRequest 批量审核请求
type BatchReviewRequest struct {
	IDs     []uint `json:"ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

// BatchReviewResearchItems 批量审核
// 非待审条目静默剔除，全部非待审时整批报错。
func (h *Handler) BatchReviewResearchItems(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req BatchReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	updated, err := h.ResearchService.BatchUpdateStatus(service.BatchReviewInput{
		IDs:        req.IDs,
		Status:     req.Status,
		Remarks:    req.Remarks,
		ReviewerID: userID,
		IP:         c.ClientIP(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": updated})
}

// GetResearchStats 成果统计快照
func (h *Handler) GetResearchStats(c *gin.Context) {
	stats, err := h.StatsService.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, stats)
}
