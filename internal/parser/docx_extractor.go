package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/unidoc/unioffice/document"
)

// DocxTextExtractor 提取DOCX文档文本
// 先按文档顺序拼接正文段落，再拼接所有表格单元格文本；
// 表格文本整体排在正文之后，跨表格的顺序不保证与视觉布局一致（已知限制）
type DocxTextExtractor struct {
	logger *log.Logger
}

// DocxOption DOCX提取器的配置选项
type DocxOption func(*DocxTextExtractor)

// WithDocxLogger 配置自定义日志记录器
func WithDocxLogger(logger *log.Logger) DocxOption {
	return func(d *DocxTextExtractor) {
		d.logger = logger
	}
}

// NewDocxTextExtractor 创建DOCX文本提取器
func NewDocxTextExtractor(options ...DocxOption) *DocxTextExtractor {
	extractor := &DocxTextExtractor{
		logger: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractFromFile 从DOCX文件提取文本
func (d *DocxTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, error) {
	doc, err := document.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX file %s: %w", filePath, err)
	}

	return d.collectText(doc), nil
}

// ExtractFromBytes 从字节数组提取文本
func (d *DocxTextExtractor) ExtractFromBytes(ctx context.Context, data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX bytes: %w", err)
	}

	return d.collectText(doc), nil
}

// collectText 正文段落在前，表格单元格在后
func (d *DocxTextExtractor) collectText(doc *document.Document) string {
	var parts []string

	for _, para := range doc.Paragraphs() {
		text := paragraphText(para)
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	for _, table := range doc.Tables() {
		for _, row := range table.Rows() {
			for _, cell := range row.Cells() {
				var cellParts []string
				for _, para := range cell.Paragraphs() {
					text := paragraphText(para)
					if strings.TrimSpace(text) != "" {
						cellParts = append(cellParts, text)
					}
				}
				if len(cellParts) > 0 {
					parts = append(parts, strings.Join(cellParts, "\n"))
				}
			}
		}
	}

	d.logger.Printf("DOCX提取完成: %d个文本块", len(parts))
	return strings.Join(parts, "\n")
}

// paragraphText 拼接段落内所有run的文本
func paragraphText(para document.Paragraph) string {
	var sb strings.Builder
	for _, run := range para.Runs() {
		sb.WriteString(run.Text())
	}
	return sb.String()
}
