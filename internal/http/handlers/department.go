package handlers

import (
	"strconv"

	"github.com/keyan-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListDepartments 院系列表
func (h *Handler) ListDepartments(c *gin.Context) {
	departments, err := h.DepartmentService.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, departments)
}

// ResolveDepartment 自由文本院系名解析
func (h *Handler) ResolveDepartment(c *gin.Context) {
	code, err := h.DepartmentService.Resolve(c.Query("name"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"code": code})
}

// DepartmentRequest 院系创建/更新请求
type DepartmentRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CreateDepartment 创建院系
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	dept, err := h.DepartmentService.Create(req.Code, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, dept)
}

// UpdateDepartment 更新院系名称
func (h *Handler) UpdateDepartment(c *gin.Context) {
	var req DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	dept, err := h.DepartmentService.Update(c.Param("code"), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, dept)
}

// DeleteDepartment 删除院系
func (h *Handler) DeleteDepartment(c *gin.Context) {
	if err := h.DepartmentService.Delete(c.Param("code")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}

// ListDepartmentAliases 院系别名列表
func (h *Handler) ListDepartmentAliases(c *gin.Context) {
	aliases, err := h.DepartmentService.ListAliases()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, aliases)
}

// DepartmentAliasRequest 别名创建请求
type DepartmentAliasRequest struct {
	Alias string `json:"alias"`
	Code  string `json:"code"`
}

// CreateDepartmentAlias 创建院系别名
func (h *Handler) CreateDepartmentAlias(c *gin.Context) {
	var req DepartmentAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	alias, err := h.DepartmentService.CreateAlias(req.Alias, req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, alias)
}

// DeleteDepartmentAlias 删除院系别名
func (h *Handler) DeleteDepartmentAlias(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的别名 ID")
		return
	}
	if svcErr := h.DepartmentService.DeleteAlias(uint(id)); svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}
