package model

import (
	"errors"
)

// 错误分类：终止类错误直接返回给前端，瞬时类错误在编排层重试或降级
var (
	// ErrMissingPreferences 用户未完成偏好设置（类型或平台为空），引导去完成设置
	ErrMissingPreferences = errors.New("偏好设置不完整")

	// ErrGenerationFailed 推荐生成重试耗尽，前端可重试
	ErrGenerationFailed = errors.New("推荐生成失败")

	// ErrInvalidResponse 外部接口返回了无法解析的内容
	ErrInvalidResponse = errors.New("外部接口响应无效")

	// ErrNotFound 外部接口未找到对应资源
	ErrNotFound = errors.New("资源不存在")

	// ErrTimeout 外部接口调用超时
	ErrTimeout = errors.New("外部接口超时")

	// ErrAuthRequired 未登录用户访问用户级操作
	ErrAuthRequired = errors.New("未登录")
)
