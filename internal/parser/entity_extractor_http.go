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
	"time"
)

// HTTPEntityExtractor 通过HTTP调用外部NER服务抽取命名实体
// 服务不可用时调用方应将实体抽取视为可降级步骤
type HTTPEntityExtractor struct {
	serverURL  string
	httpClient *http.Client
	timeout    time.Duration
	logger     *log.Logger
}

// HTTPEntityExtractorOption NER客户端配置选项
type HTTPEntityExtractorOption func(*HTTPEntityExtractor)

// WithEntityTimeout 配置请求超时
func WithEntityTimeout(timeout time.Duration) HTTPEntityExtractorOption {
	return func(e *HTTPEntityExtractor) {
		e.timeout = timeout
	}
}

// WithEntityLogger 配置自定义日志记录器
func WithEntityLogger(logger *log.Logger) HTTPEntityExtractorOption {
	return func(e *HTTPEntityExtractor) {
		e.logger = logger
	}
}

// NewHTTPEntityExtractor 创建NER服务客户端
// serverURL为空时返回错误，调用方可据此关闭实体抽取功能
func NewHTTPEntityExtractor(serverURL string, options ...HTTPEntityExtractorOption) (*HTTPEntityExtractor, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("NER服务URL不能为空")
	}

	extractor := &HTTPEntityExtractor{
		serverURL: strings.TrimRight(serverURL, "/"),
		timeout:   30 * time.Second,
		logger:    log.New(io.Discard, "", 0),
	}

	for _, option := range options {
		option(extractor)
	}

	extractor.httpClient = &http.Client{Timeout: extractor.timeout}
	return extractor, nil
}

// entityRequest NER服务请求体
type entityRequest struct {
	Text string `json:"text"`
}

// entityResponse NER服务响应体
// entities按标签分组, 例如 {"PERSON": ["Jane Doe"], "ORG": ["Acme Corp"]}
type entityResponse struct {
	Entities map[string][]string `json:"entities"`
	Error    string              `json:"error,omitempty"`
}

// ExtractEntities 抽取文本中的命名实体, 按标签分组并去重
// 同一标签下保留首次出现顺序
func (e *HTTPEntityExtractor) ExtractEntities(ctx context.Context, text string) (map[string][]string, error) {
	if strings.TrimSpace(text) == "" {
		return map[string][]string{}, nil
	}

	jsonData, err := json.Marshal(entityRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("序列化NER请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.serverURL+"/entities", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建NER请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用NER服务失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取NER响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NER服务返回错误, 状态码: %d, 响应: %s", resp.StatusCode, string(body))
	}

	var parsed entityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("解析NER响应失败: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("NER服务处理失败: %s", parsed.Error)
	}

	result := make(map[string][]string, len(parsed.Entities))
	for label, values := range parsed.Entities {
		seen := make(map[string]bool, len(values))
		deduped := make([]string, 0, len(values))
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			deduped = append(deduped, v)
		}
		if len(deduped) > 0 {
			result[label] = deduped
		}
	}

	e.logger.Printf("NER抽取完成: %d个标签", len(result))
	return result, nil
}
