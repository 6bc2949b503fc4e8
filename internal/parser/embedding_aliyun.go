package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"resume-analyzer-go/internal/config"
)

// AliyunEmbedder 阿里云文本向量服务客户端 (OpenAI兼容接口)
// 实现 cloudwego/eino 的 embedding.Embedder 接口
// 对相同模型和文本，服务端返回确定性的向量；客户端无状态，可并发使用
type AliyunEmbedder struct {
	apiKey       string
	model        string
	dimensions   int
	maxBatchSize int // 单次请求的最大文本条数，超出时拆分请求
	httpClient   *http.Client
	baseURL      string
	logger       *log.Logger
}

// AliyunEmbedderOption 嵌入器配置选项
type AliyunEmbedderOption func(*AliyunEmbedder)

// WithEmbedderLogger 配置自定义日志记录器
func WithEmbedderLogger(logger *log.Logger) AliyunEmbedderOption {
	return func(a *AliyunEmbedder) {
		a.logger = logger
	}
}

// NewAliyunEmbedder 创建新的阿里云Embedder
func NewAliyunEmbedder(apiKey string, embeddingCfg config.EmbeddingConfig, options ...AliyunEmbedderOption) (*AliyunEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API密钥不能为空")
	}

	model := embeddingCfg.Model
	if model == "" {
		model = "text-embedding-v3"
	}
	baseURL := embeddingCfg.BaseURL
	if baseURL == "" {
		baseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/embeddings"
	}
	maxBatchSize := embeddingCfg.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = 10
	}

	embedder := &AliyunEmbedder{
		apiKey:       apiKey,
		model:        model,
		dimensions:   embeddingCfg.Dimensions,
		maxBatchSize: maxBatchSize,
		httpClient:   &http.Client{},
		baseURL:      baseURL,
		logger:       log.New(io.Discard, "", 0),
	}

	for _, option := range options {
		option(embedder)
	}

	return embedder, nil
}

// GetDimensions 返回嵌入器配置的维度
func (a *AliyunEmbedder) GetDimensions() int {
	return a.dimensions
}

// aliyunEmbeddingRequest 阿里云Embedding请求结构 (OpenAI compatible)
type aliyunEmbeddingRequest struct {
	Input          interface{} `json:"input"` // string or []string
	Model          string      `json:"model"`
	Dimensions     int         `json:"dimensions,omitempty"`
	EncodingFormat string      `json:"encoding_format,omitempty"`
}

// aliyunEmbeddingResponse 阿里云Embedding响应结构 (OpenAI compatible)
type aliyunEmbeddingResponse struct {
	Object string              `json:"object"`
	Data   []aliyunDataEntry   `json:"data"`
	Model  string              `json:"model"`
	Usage  aliyunUsage         `json:"usage"`
	ID     string              `json:"id,omitempty"`
	Error  *aliyunServiceError `json:"error,omitempty"`
}

type aliyunDataEntry struct {
	Object    string    `json:"object"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type aliyunUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// aliyunServiceError API级别的错误（可能随200 OK返回）
type aliyunServiceError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param"`
	Code    string `json:"code"`
}

// EmbedStrings 将文本转换为向量, 实现 cloudwego/eino embedding.Embedder 接口
// 超过单次请求上限的批量文本拆分为多次请求后合并结果
func (a *AliyunEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	options := &embedding.Options{}
	embedding.GetCommonOptions(options, opts...)

	effectiveModel := a.model
	if options.Model != nil && *options.Model != "" {
		effectiveModel = *options.Model
	}

	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	result := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += a.maxBatchSize {
		end := start + a.maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := a.embedBatch(ctx, texts[start:end], effectiveModel)
		if err != nil {
			return nil, err
		}
		result = append(result, vectors...)
	}

	if len(result) > 0 {
		a.logger.Printf("成功嵌入%d条文本, 向量维度: %d, 首条向量: %s",
			len(texts), firstEmbeddingDim(result), truncateEmbedding(result[0]))
	}
	return result, nil
}

// embedBatch 发送单次嵌入请求
func (a *AliyunEmbedder) embedBatch(ctx context.Context, texts []string, model string) ([][]float64, error) {
	var inputBody interface{}
	if len(texts) == 1 {
		inputBody = texts[0]
	} else {
		inputBody = texts
	}

	reqBody := aliyunEmbeddingRequest{
		Input: inputBody,
		Model: model,
	}
	if a.dimensions > 0 {
		reqBody.Dimensions = a.dimensions
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: 序列化请求失败: %v", ErrEmbeddingService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: 创建HTTP请求失败: %v", ErrEmbeddingService, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: 发送HTTP请求失败: %v", ErrEmbeddingService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取响应体失败: %v", ErrEmbeddingService, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError aliyunServiceError
		if json.Unmarshal(body, &apiError) == nil && apiError.Message != "" {
			return nil, fmt.Errorf("%w: API调用失败, 状态码: %d, 类型: %s, 错误: %s, Code: %s",
				ErrEmbeddingService, resp.StatusCode, apiError.Type, apiError.Message, apiError.Code)
		}
		return nil, fmt.Errorf("%w: API调用失败, 状态码: %d, 响应: %s", ErrEmbeddingService, resp.StatusCode, string(body))
	}

	var parsedResp aliyunEmbeddingResponse
	if err := json.Unmarshal(body, &parsedResp); err != nil {
		return nil, fmt.Errorf("%w: 解析响应JSON失败: %v", ErrEmbeddingService, err)
	}

	// 检查响应中是否包含API级别的错误 (例如，输入文本过多)
	if parsedResp.Error != nil && parsedResp.Error.Message != "" {
		return nil, fmt.Errorf("%w: API返回错误: 类型=%s, 消息='%s', Code=%s",
			ErrEmbeddingService, parsedResp.Error.Type, parsedResp.Error.Message, parsedResp.Error.Code)
	}

	embeddings := make([][]float64, len(parsedResp.Data))
	for i, dataEntry := range parsedResp.Data {
		embeddings[i] = dataEntry.Embedding
	}

	a.logger.Printf("批次嵌入完成: %d条文本, PromptTokens: %d, TotalTokens: %d",
		len(texts), parsedResp.Usage.PromptTokens, parsedResp.Usage.TotalTokens)

	return embeddings, nil
}

// firstEmbeddingDim 安全获取首个向量的维度，用于日志
func firstEmbeddingDim(embeddings [][]float64) int {
	if len(embeddings) > 0 && len(embeddings[0]) > 0 {
		return len(embeddings[0])
	}
	return 0
}

// truncateEmbedding 截断嵌入向量的字符串表示形式，用于日志
func truncateEmbedding(vector []float64) string {
	const maxLen = 6
	const showEachSide = 3

	if len(vector) <= maxLen {
		return fmt.Sprintf("%v", vector)
	}

	var truncated []string
	for i := 0; i < showEachSide; i++ {
		truncated = append(truncated, fmt.Sprintf("%.4f", vector[i]))
	}
	truncated = append(truncated, "...")
	for i := len(vector) - showEachSide; i < len(vector); i++ {
		truncated = append(truncated, fmt.Sprintf("%.4f", vector[i]))
	}
	return fmt.Sprintf("[%s]", strings.Join(truncated, ", "))
}
