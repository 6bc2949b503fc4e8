package processor

import (
	"context"

	"github.com/cloudwego/eino/components/embedding"

	"resume-analyzer-go/internal/analyzer"
	"resume-analyzer-go/internal/types"
)

// DocumentParser 文档解析接口
type DocumentParser interface {
	ParseBytes(ctx context.Context, data []byte, fileName string) (*types.ParsedDocument, error)
}

// EntityExtractor 命名实体提取接口
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) (map[string][]string, error)
}

// einoEmbedderAdapter 把eino的Embedder适配成分析器所需的窄接口
// eino的EmbedStrings带可变options参数，方法集不能直接满足窄接口
type einoEmbedderAdapter struct {
	embedder embedding.Embedder
}

var _ analyzer.TextEmbedder = (*einoEmbedderAdapter)(nil)

func (a *einoEmbedderAdapter) EmbedStrings(ctx context.Context, texts []string) ([][]float64, error) {
	return a.embedder.EmbedStrings(ctx, texts)
}

// NewEmbedderAdapter 包装eino Embedder供JobMatcher使用
func NewEmbedderAdapter(embedder embedding.Embedder) analyzer.TextEmbedder {
	return &einoEmbedderAdapter{embedder: embedder}
}
