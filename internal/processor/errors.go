package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	// ErrEmptyFile 上传内容为空
	ErrEmptyFile = errors.New("文件内容为空")
	// ErrFileTooLarge 上传内容超过大小上限
	ErrFileTooLarge = errors.New("文件超过大小上限")
	// ErrParseFailed 文档解析失败
	ErrParseFailed = errors.New("文档解析失败")
	// ErrMatchFailed 语义匹配失败
	ErrMatchFailed = errors.New("语义匹配失败")
	// ErrVectorStoreNotInit 向量库未初始化
	ErrVectorStoreNotInit = errors.New("向量库未初始化")
	// ErrEmbedderNotInit Embedding服务未初始化
	ErrEmbedderNotInit = errors.New("embedding服务未初始化")
)

// AnalysisError 携带请求上下文的分析错误
type AnalysisError struct {
	RequestID string
	FileName  string
	Stage     string
	BaseErr   error
	Detail    string
}

func (e *AnalysisError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (阶段:%s, 文件:%s, 请求:%s): %s", e.BaseErr, e.Stage, e.FileName, e.RequestID, e.Detail)
	}
	return fmt.Sprintf("%s (阶段:%s, 文件:%s, 请求:%s)", e.BaseErr, e.Stage, e.FileName, e.RequestID)
}

func (e *AnalysisError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *AnalysisError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newAnalysisError(requestID, fileName, stage string, baseErr, cause error) error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &AnalysisError{
		RequestID: requestID,
		FileName:  fileName,
		Stage:     stage,
		BaseErr:   baseErr,
		Detail:    detail,
	}
}
