package handlers

import (
	"strconv"

	"github.com/keyan-next/internal/http/response"
	"github.com/keyan-next/internal/repository"
	"github.com/keyan-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	IsSuperuser    bool   `json:"is_superuser"`
	Department     string `json:"department"`
	DepartmentCode string `json:"department_code"`
	EmployeeID     string `json:"employee_id"`
	Phone          string `json:"phone"`
	Title          string `json:"title"`
}

// CreateUser 创建用户
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.UserService.Create(service.CreateUserInput{
		Email:          req.Email,
		Password:       req.Password,
		FullName:       req.FullName,
		Role:           req.Role,
		IsSuperuser:    req.IsSuperuser,
		Department:     req.Department,
		DepartmentCode: req.DepartmentCode,
		EmployeeID:     req.EmployeeID,
		Phone:          req.Phone,
		Title:          req.Title,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = NormalizePagination(page, pageSize)

	users, total, err := h.UserService.List(repository.UserListFilter{
		Page:           page,
		PageSize:       pageSize,
		Keyword:        c.Query("keyword"),
		Role:           c.Query("role"),
		DepartmentCode: c.Query("department_code"),
		OnlyActive:     c.Query("only_active") == "true",
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// GetUser 获取用户
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}
	user, svcErr := h.UserService.Get(uint(id))
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.Success(c, user)
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	FullName          *string `json:"full_name"`
	Department        *string `json:"department"`
	DepartmentCode    *string `json:"department_code"`
	EmployeeID        *string `json:"employee_id"`
	Phone             *string `json:"phone"`
	Title             *string `json:"title"`
	ResearchDirection *string `json:"research_direction"`
	ProfilePublic     *bool   `json:"profile_public"`
	IsActive          *bool   `json:"is_active"`
	Role              *string `json:"role"`
}

// UpdateUser 更新用户资料
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, svcErr := h.UserService.Update(service.UpdateUserInput{
		ID:                uint(id),
		FullName:          req.FullName,
		Department:        req.Department,
		DepartmentCode:    req.DepartmentCode,
		EmployeeID:        req.EmployeeID,
		Phone:             req.Phone,
		Title:             req.Title,
		ResearchDirection: req.ResearchDirection,
		ProfilePublic:     req.ProfilePublic,
		IsActive:          req.IsActive,
		Role:              req.Role,
	})
	if svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.Success(c, user)
}

// UpdateMyProfile 更新当前用户资料（角色与状态不可自改）
func (h *Handler) UpdateMyProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.UserService.Update(service.UpdateUserInput{
		ID:                userID,
		FullName:          req.FullName,
		Department:        req.Department,
		DepartmentCode:    req.DepartmentCode,
		EmployeeID:        req.EmployeeID,
		Phone:             req.Phone,
		Title:             req.Title,
		ResearchDirection: req.ResearchDirection,
		ProfilePublic:     req.ProfilePublic,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// DeleteUser 删除用户
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的用户 ID")
		return
	}
	if svcErr := h.UserService.Delete(uint(id)); svcErr != nil {
		respondServiceError(c, svcErr)
		return
	}
	response.SuccessWithMsg(c, "已删除", nil)
}
