package service

import "errors"

// 业务哨兵错误，handler 层据此映射 HTTP 状态码
var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInactiveUser       = errors.New("账号已停用")
	ErrPermissionDenied   = errors.New("没有操作权限")
	ErrNotFound           = errors.New("记录不存在")
	ErrAlreadyReviewed    = errors.New("该条目已审核，不能重复审核")
	ErrNoPendingItems     = errors.New("没有待审核的条目")
	ErrValidation         = errors.New("参数校验失败")
	ErrConflict           = errors.New("记录已存在")
	ErrSystemRole         = errors.New("系统内置角色不允许删除")
	ErrEmailExists        = errors.New("邮箱已被注册")
)
