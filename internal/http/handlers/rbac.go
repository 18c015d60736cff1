package handlers

import (
	"strconv"

	"github.com/keyan-next/internal/http/response"
	"github.com/keyan-next/internal/models"

	"github.com/gin-gonic/gin"
)

// ListRoles 角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.RBACService.ListRoles()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, roles)
}

// GetRole 获取角色
func (h *Handler) GetRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的角色 ID")
		return
	}
	role, svcErr := h.RBACService.GetRole(uint(id))
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.Success(c, role)
}

// RoleRequest 角色创建/更新请求
type RoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `json:"is_system"`
}

// CreateRole 创建角色
func (h *Handler) CreateRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	role, err := h.RBACService.CreateRole(req.Name, req.Description, req.IsSystem)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, role)
}

// UpdateRole 更新角色名称与描述
func (h *Handler) UpdateRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的角色 ID")
		return
	}
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	role, svcErr := h.RBACService.UpdateRole(uint(id), req.Name, req.Description)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.Success(c, role)
}

// DeleteRole 删除角色，系统内置角色禁止删除
func (h *Handler) DeleteRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的角色 ID")
		return
	}
	if svcErr := h.RBACService.DeleteRole(uint(id)); svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}

// ReplacePermissionsRequest 替换角色权限请求
type ReplacePermissionsRequest struct {
	Codes []string `json:"codes"`
}

// ReplaceRolePermissions 原子替换角色权限编码集
func (h *Handler) ReplaceRolePermissions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的角色 ID")
		return
	}
	var req ReplacePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	role, svcErr := h.RBACService.ReplacePermissions(uint(id), req.Codes)
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.Success(c, role)
}

// ListPermissionCatalog 权限目录列表
func (h *Handler) ListPermissionCatalog(c *gin.Context) {
	entries, err := h.RBACService.ListCatalog(c.Query("only_enabled") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, entries)
}

// PermissionCatalogRequest 权限目录条目请求
type PermissionCatalogRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Module      string `json:"module"`
	Description string `json:"description"`
	Enabled     *bool  `json:"enabled"`
}

// CreatePermissionCatalogEntry 创建权限目录条目
func (h *Handler) CreatePermissionCatalogEntry(c *gin.Context) {
	var req PermissionCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	entry := &models.PermissionCatalog{
		Code:        req.Code,
		Name:        req.Name,
		Module:      req.Module,
		Description: req.Description,
		Enabled:     true,
	}
	if req.Enabled != nil {
		entry.Enabled = *req.Enabled
	}
	if err := h.RBACService.CreateCatalogEntry(entry); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, entry)
}

// UpdatePermissionCatalogEntry 更新权限目录条目（编码不可变）
func (h *Handler) UpdatePermissionCatalogEntry(c *gin.Context) {
	code := c.Param("code")
	var req PermissionCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	entry, err := h.RBACService.UpdateCatalogEntry(code, req.Name, req.Module, req.Description, enabled)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, entry)
}

// DeletePermissionCatalogEntry 删除权限目录条目
func (h *Handler) DeletePermissionCatalogEntry(c *gin.Context) {
	if err := h.RBACService.DeleteCatalogEntry(c.Param("code")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}
