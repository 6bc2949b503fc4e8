package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/types"
)

// TestCleanTextFoldsWhitespace 验证空白折叠和首尾修剪
func TestCleanTextFoldsWhitespace(t *testing.T) {
	cleaned := CleanText("  John   Doe \t Senior \n\n Engineer  ")
	assert.Equal(t, "John Doe Senior Engineer", cleaned)
}

// TestCleanTextIdempotent 已清洗文本再次清洗结果不变
func TestCleanTextIdempotent(t *testing.T) {
	once := CleanText("  John   Doe \n Backend Engineer, Acme (2019-2022)  ")
	assert.Equal(t, once, CleanText(once))
}

// TestCleanTextStripsSpecialChars 剔除装饰符号但保留字母(含重音)、数字和常用标点
func TestCleanTextStripsSpecialChars(t *testing.T) {
	cleaned := CleanText("résumé ★ skills: python, go • c/c++")

	assert.NotContains(t, cleaned, "★")
	assert.NotContains(t, cleaned, "•")
	assert.NotContains(t, cleaned, "+")
	assert.Contains(t, cleaned, "résumé")
	assert.Contains(t, cleaned, "skills: python, go")
	assert.Contains(t, cleaned, "c/c")
}

// TestExtractContactMetadata 邮箱仅取首个，电话最多两个，主页链接大小写不敏感
func TestExtractContactMetadata(t *testing.T) {
	text := "John Doe john.doe@example.com backup jd@old.example.org " +
		"555-123-4567 (555) 987-6543 555.111.2222 " +
		"LinkedIn.com/in/john-doe GitHub.com/johndoe"

	metadata := ExtractContactMetadata(text)

	require.Len(t, metadata.Emails, 1)
	assert.Equal(t, "john.doe@example.com", metadata.Emails[0])
	assert.Len(t, metadata.Phones, 2)
	assert.Equal(t, "linkedin.com/in/john-doe", metadata.LinkedIn)
	assert.Equal(t, "github.com/johndoe", metadata.GitHub)
}

// TestExtractContactMetadataEmpty 无联系方式时返回空切片而非nil
func TestExtractContactMetadataEmpty(t *testing.T) {
	metadata := ExtractContactMetadata("ten years of backend experience")

	assert.NotNil(t, metadata.Emails)
	assert.Empty(t, metadata.Emails)
	assert.NotNil(t, metadata.Phones)
	assert.Empty(t, metadata.Phones)
	assert.Empty(t, metadata.LinkedIn)
	assert.Empty(t, metadata.GitHub)
}

// TestParseBytesText 纯文本解析无需外部提取器
func TestParseBytesText(t *testing.T) {
	p := NewDocumentParser()

	raw := "John Doe\njohn.doe@example.com\n\nSenior   Backend Engineer"
	doc, err := p.ParseBytes(context.Background(), []byte(raw), "resume.txt")
	require.NoError(t, err)

	assert.Equal(t, types.FileTypeText, doc.FileType)
	assert.Equal(t, "resume.txt", doc.FileName)
	assert.Equal(t, raw, doc.RawText)
	assert.Equal(t, "John Doe john.doe@example.com Senior Backend Engineer", doc.NormalizedText)
	assert.Equal(t, 6, doc.WordCount)
	assert.Equal(t, len([]rune(doc.NormalizedText)), doc.CharCount)
	require.Len(t, doc.Metadata.Emails, 1)
	assert.Equal(t, "john.doe@example.com", doc.Metadata.Emails[0])
}

// TestParseBytesUnsupportedFormat 扩展名不受支持时返回哨兵错误
func TestParseBytesUnsupportedFormat(t *testing.T) {
	p := NewDocumentParser()

	_, err := p.ParseBytes(context.Background(), []byte("data"), "resume.xls")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	var extractErr *ExtractError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "resume.xls", extractErr.FileName)
	assert.Equal(t, "xls", extractErr.Detail)
}

// TestParseFileNotFound 类型判定通过但文件不存在
func TestParseFileNotFound(t *testing.T) {
	p := NewDocumentParser()

	_, err := p.ParseFile(context.Background(), "/nonexistent/resume.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
}

// TestDetectFileTypeCaseInsensitive 扩展名大小写不敏感
func TestDetectFileTypeCaseInsensitive(t *testing.T) {
	p := NewDocumentParser()

	doc, err := p.ParseBytes(context.Background(), []byte("hello"), "Resume.TXT")
	require.NoError(t, err)
	assert.Equal(t, types.FileTypeText, doc.FileType)
}
