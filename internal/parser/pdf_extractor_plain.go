package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PlainPDFTextExtractor 逐页提取PDF纯文本
// 作为布局感知提取的回退层：不理解版面，但对异常编码的PDF更稳
type PlainPDFTextExtractor struct {
	logger *log.Logger
}

// PlainPDFOption 逐页提取器的配置选项
type PlainPDFOption func(*PlainPDFTextExtractor)

// WithPlainPDFLogger 配置自定义日志记录器
func WithPlainPDFLogger(logger *log.Logger) PlainPDFOption {
	return func(p *PlainPDFTextExtractor) {
		p.logger = logger
	}
}

// NewPlainPDFTextExtractor 创建逐页PDF文本提取器
func NewPlainPDFTextExtractor(options ...PlainPDFOption) *PlainPDFTextExtractor {
	extractor := &PlainPDFTextExtractor{
		logger: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractFromFile 从PDF文件逐页提取文本
func (p *PlainPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	file, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open PDF file %s: %w", filePath, err)
	}
	defer file.Close()

	return p.extractPages(ctx, reader, filePath)
}

// ExtractTextFromBytes 从字节数组逐页提取文本
func (p *PlainPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read PDF bytes for URI %s: %w", uri, err)
	}

	return p.extractPages(ctx, reader, uri)
}

// extractPages 逐页收集文本，空页跳过，页间以换行连接
func (p *PlainPDFTextExtractor) extractPages(ctx context.Context, reader *pdf.Reader, uri string) (string, map[string]interface{}, error) {
	totalPages := reader.NumPage()
	var pages []string

	for i := 1; i <= totalPages; i++ {
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// 单页失败不中断整体提取
			p.logger.Printf("第%d页提取失败 (URI: %s): %v", i, uri, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	content := strings.Join(pages, "\n")
	metadata := map[string]interface{}{
		"extraction_method": "plain",
		"page_count":        totalPages,
		"text_length":       len(content),
	}

	p.logger.Printf("逐页PDF提取完成: %d页, %d个字符 (URI: %s)", totalPages, len(content), uri)
	return content, metadata, nil
}
