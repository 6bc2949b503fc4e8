package parser

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/types"
)

// PDFTextExtractor PDF文本提取接口，由布局感知提取器和逐页提取器分别实现
type PDFTextExtractor interface {
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

// DocxExtractor DOCX文本提取接口
type DocxExtractor interface {
	ExtractFromFile(ctx context.Context, filePath string) (string, error)
	ExtractFromBytes(ctx context.Context, data []byte) (string, error)
}

// 元数据提取所用的正则，均作用于清洗后的文本
var (
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern    = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedinPattern = regexp.MustCompile(`linkedin\.com/in/[\w-]+`)
	githubPattern   = regexp.MustCompile(`github\.com/[\w-]+`)

	// 文本清洗：空白折叠优先于特殊字符剔除，否则剔除会留下新的空白不规则
	whitespaceRuns = regexp.MustCompile(`\s+`)
	specialChars   = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:\-()@/]`)
)

// DocumentParser 把原始简历文件转换为规范化文本和轻量元数据
// PDF采用两层策略：先做布局感知提取，结果过短时回退到逐页提取
type DocumentParser struct {
	pdfPrimary  PDFTextExtractor
	pdfFallback PDFTextExtractor
	docx        DocxExtractor
	logger      *log.Logger
}

// DocumentParserOption 文档解析器的配置选项
type DocumentParserOption func(*DocumentParser)

// WithPDFExtractors 设置PDF提取器(首选层和回退层)
func WithPDFExtractors(primary, fallback PDFTextExtractor) DocumentParserOption {
	return func(p *DocumentParser) {
		p.pdfPrimary = primary
		p.pdfFallback = fallback
	}
}

// WithDocxExtractor 设置DOCX提取器
func WithDocxExtractor(docx DocxExtractor) DocumentParserOption {
	return func(p *DocumentParser) {
		p.docx = docx
	}
}

// WithParserLogger 配置自定义日志记录器
func WithParserLogger(logger *log.Logger) DocumentParserOption {
	return func(p *DocumentParser) {
		p.logger = logger
	}
}

// NewDocumentParser 创建文档解析器
func NewDocumentParser(options ...DocumentParserOption) *DocumentParser {
	parser := &DocumentParser{
		logger: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(parser)
	}
	return parser
}

// ParseFile 解析磁盘上的简历文件
// 扩展名不在{pdf,docx,txt}内返回ErrUnsupportedFormat；文件不存在返回ErrFileNotFound
func (p *DocumentParser) ParseFile(ctx context.Context, filePath string) (*types.ParsedDocument, error) {
	fileName := filepath.Base(filePath)

	fileType, err := detectFileType(fileName)
	if err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(filePath); statErr != nil {
		return nil, NewNotFoundError(fileName)
	}

	var rawText string
	switch fileType {
	case types.FileTypePDF:
		rawText, err = p.extractPDFFromFile(ctx, filePath)
	case types.FileTypeDOCX:
		rawText, err = p.docx.ExtractFromFile(ctx, filePath)
		if err != nil {
			err = NewExtractionError(fileName, "docx", err)
		}
	case types.FileTypeText:
		var data []byte
		data, err = os.ReadFile(filePath)
		if err != nil {
			err = NewExtractionError(fileName, "read", err)
		} else {
			rawText = string(data)
		}
	}
	if err != nil {
		return nil, err
	}

	return p.buildDocument(fileName, fileType, rawText), nil
}

// ParseBytes 解析内存中的简历文件内容，fileName仅用于类型判定与日志
func (p *DocumentParser) ParseBytes(ctx context.Context, data []byte, fileName string) (*types.ParsedDocument, error) {
	fileType, err := detectFileType(fileName)
	if err != nil {
		return nil, err
	}

	var rawText string
	switch fileType {
	case types.FileTypePDF:
		rawText, err = p.extractPDFFromBytes(ctx, data, fileName)
	case types.FileTypeDOCX:
		rawText, err = p.docx.ExtractFromBytes(ctx, data)
		if err != nil {
			err = NewExtractionError(fileName, "docx", err)
		}
	case types.FileTypeText:
		rawText = string(data)
	}
	if err != nil {
		return nil, err
	}

	return p.buildDocument(fileName, fileType, rawText), nil
}

// extractPDFFromFile 两层PDF提取：布局感知优先，结果过短则逐页回退
func (p *DocumentParser) extractPDFFromFile(ctx context.Context, filePath string) (string, error) {
	fileName := filepath.Base(filePath)

	text, _, err := p.pdfPrimary.ExtractFromFile(ctx, filePath)
	if err != nil {
		return "", NewExtractionError(fileName, "pdf", err)
	}
	if len(strings.TrimSpace(text)) >= constants.MinPDFTextLength {
		return text, nil
	}

	p.logger.Printf("布局感知提取结果过短(%d字符)，回退到逐页提取: %s", len(strings.TrimSpace(text)), fileName)
	text, _, err = p.pdfFallback.ExtractFromFile(ctx, filePath)
	if err != nil {
		return "", NewExtractionError(fileName, "pdf_fallback", err)
	}
	return text, nil
}

// extractPDFFromBytes 同extractPDFFromFile，输入为内存字节
func (p *DocumentParser) extractPDFFromBytes(ctx context.Context, data []byte, fileName string) (string, error) {
	text, _, err := p.pdfPrimary.ExtractTextFromBytes(ctx, data, fileName, nil)
	if err != nil {
		return "", NewExtractionError(fileName, "pdf", err)
	}
	if len(strings.TrimSpace(text)) >= constants.MinPDFTextLength {
		return text, nil
	}

	p.logger.Printf("布局感知提取结果过短(%d字符)，回退到逐页提取: %s", len(strings.TrimSpace(text)), fileName)
	text, _, err = p.pdfFallback.ExtractTextFromBytes(ctx, data, fileName, nil)
	if err != nil {
		return "", NewExtractionError(fileName, "pdf_fallback", err)
	}
	return text, nil
}

// buildDocument 清洗文本并提取元数据，组装不可变的解析结果
func (p *DocumentParser) buildDocument(fileName string, fileType types.FileType, rawText string) *types.ParsedDocument {
	cleaned := CleanText(rawText)

	return &types.ParsedDocument{
		RawText:        rawText,
		NormalizedText: cleaned,
		FileName:       fileName,
		FileType:       fileType,
		Metadata:       ExtractContactMetadata(cleaned),
		WordCount:      len(strings.Fields(cleaned)),
		CharCount:      utf8.RuneCountInString(cleaned),
	}
}

// CleanText 清洗并规范化提取出的文本
// 幂等：CleanText(CleanText(t)) == CleanText(t)
func CleanText(text string) string {
	// 折叠所有空白为单个空格
	text = whitespaceRuns.ReplaceAllString(text, " ")

	// 剔除特殊字符，保留重要标点
	text = specialChars.ReplaceAllString(text, "")

	// 统一行终止符
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	return strings.TrimSpace(text)
}

// ExtractContactMetadata 从清洗后的文本中提取联系方式
// 邮箱仅保留首个，电话最多保留前两个，主页取首个匹配
func ExtractContactMetadata(text string) types.ContactMetadata {
	metadata := types.ContactMetadata{
		Emails: []string{},
		Phones: []string{},
	}

	if email := emailPattern.FindString(text); email != "" {
		metadata.Emails = append(metadata.Emails, email)
	}

	phones := phonePattern.FindAllString(text, 2)
	metadata.Phones = append(metadata.Phones, phones...)

	lower := strings.ToLower(text)
	metadata.LinkedIn = linkedinPattern.FindString(lower)
	metadata.GitHub = githubPattern.FindString(lower)

	return metadata
}

// detectFileType 根据扩展名判定文件类型
func detectFileType(fileName string) (types.FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	switch ext {
	case "pdf":
		return types.FileTypePDF, nil
	case "docx":
		return types.FileTypeDOCX, nil
	case "txt":
		return types.FileTypeText, nil
	default:
		return "", NewUnsupportedFormatError(fileName, ext)
	}
}
