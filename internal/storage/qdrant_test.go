package storage

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
)

// TestJobPointIDDeterministic 同一岗位ID生成的点ID稳定，不同岗位ID互不冲突
func TestJobPointIDDeterministic(t *testing.T) {
	first := uuid.NewV5(QdrantPointIDNamespace, "job_id:backend-001")
	again := uuid.NewV5(QdrantPointIDNamespace, "job_id:backend-001")
	other := uuid.NewV5(QdrantPointIDNamespace, "job_id:backend-002")

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)
}

// TestTruncateString 长字符串截断并追加省略号
func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmn", 10))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
}

// TestGetContentType 按扩展名返回MIME类型，未知扩展名回落到二进制流
func TestGetContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", getContentType(".pdf"))
	assert.Equal(t, "application/pdf", getContentType(".PDF"))
	assert.Equal(t, "text/plain", getContentType(".txt"))
	assert.Equal(t, "application/json", getContentType(".json"))
	assert.Equal(t, "application/octet-stream", getContentType(".xyz"))
}
