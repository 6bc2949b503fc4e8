package parser

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	// ErrFileNotFound 源文件不存在
	ErrFileNotFound = errors.New("简历文件不存在")
	// ErrUnsupportedFormat 文件扩展名不在支持范围内
	ErrUnsupportedFormat = errors.New("不支持的文件格式")
	// ErrExtractionFailed 底层格式解析器提取失败
	ErrExtractionFailed = errors.New("提取简历文本失败")
	// ErrEmbeddingService Embedding服务调用失败，原样向调用方透传，不做重试
	ErrEmbeddingService = errors.New("embedding服务调用失败")
)

// ExtractError 包含详细信息的文档提取错误
type ExtractError struct {
	FileName string
	Op       string
	BaseErr  error
	Detail   string
}

func (e *ExtractError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.FileName, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.FileName)
}

func (e *ExtractError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数

func NewNotFoundError(fileName string) error {
	return &ExtractError{
		FileName: fileName,
		Op:       "stat",
		BaseErr:  ErrFileNotFound,
	}
}

func NewUnsupportedFormatError(fileName, ext string) error {
	return &ExtractError{
		FileName: fileName,
		Op:       "dispatch",
		BaseErr:  ErrUnsupportedFormat,
		Detail:   ext,
	}
}

func NewExtractionError(fileName, op string, cause error) error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &ExtractError{
		FileName: fileName,
		Op:       op,
		BaseErr:  ErrExtractionFailed,
		Detail:   detail,
	}
}
