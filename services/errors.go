package services

import "errors"

// 领域错误，传输层通过 errors.Is 映射为 HTTP 状态码
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage failure")
	ErrPersistence  = errors.New("persistence failure")
)
