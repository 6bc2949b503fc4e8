package handler

import (
	"context"
	"errors"
	"fmt"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/processor"
	"resume-analyzer-go/internal/storage"
	"resume-analyzer-go/internal/types"
)

// ErrInvalidRequest 请求参数校验失败
var ErrInvalidRequest = errors.New("请求参数无效")

// AnalysisHandler 分析接口处理器, 把HTTP请求翻译为服务调用
type AnalysisHandler struct {
	cfg     *config.Config
	service *processor.AnalysisService
}

// NewAnalysisHandler 创建分析处理器
func NewAnalysisHandler(cfg *config.Config, service *processor.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		cfg:     cfg,
		service: service,
	}
}

// HandleAnalyze 处理简历分析请求
func (h *AnalysisHandler) HandleAnalyze(ctx context.Context, fileName string, data []byte, jobDescription string) (*types.AnalysisReport, error) {
	report, err := h.service.AnalyzeUpload(ctx, fileName, data, jobDescription)
	if err != nil {
		logger.Error().Err(err).Str("file_name", fileName).Msg("简历分析失败")
		return nil, err
	}
	logger.Info().
		Str("request_id", report.RequestID).
		Str("file_name", fileName).
		Float64("overall_score", report.ATS.OverallScore).
		Str("grade", report.ATS.Grade).
		Msg("简历分析完成")
	return report, nil
}

// JobMatchRequest 岗位匹配请求
type JobMatchRequest struct {
	ResumeText string             `json:"resume_text"`
	Jobs       []types.JobPosting `json:"jobs"`
	TopK       int                `json:"top_k,omitempty"`
}

// JobMatchResponse 岗位匹配响应
type JobMatchResponse struct {
	Matches []types.JobMatch `json:"matches"`
	Total   int              `json:"total"`
}

// HandleMatchJobs 处理岗位匹配请求
func (h *AnalysisHandler) HandleMatchJobs(ctx context.Context, req *JobMatchRequest) (*JobMatchResponse, error) {
	if req.ResumeText == "" {
		return nil, fmt.Errorf("%w: resume_text不能为空", ErrInvalidRequest)
	}
	if len(req.Jobs) == 0 {
		return &JobMatchResponse{Matches: []types.JobMatch{}, Total: 0}, nil
	}

	matches, err := h.service.MatchJobs(ctx, req.ResumeText, req.Jobs, req.TopK)
	if err != nil {
		logger.Error().Err(err).Int("jobs", len(req.Jobs)).Msg("岗位匹配失败")
		return nil, err
	}
	return &JobMatchResponse{Matches: matches, Total: len(matches)}, nil
}

// JobIndexRequest 岗位入库请求
type JobIndexRequest struct {
	Jobs []types.JobPosting `json:"jobs"`
}

// JobIndexResponse 岗位入库响应
type JobIndexResponse struct {
	PointIDs     []string `json:"point_ids"`
	IndexedCount int      `json:"indexed_count"`
}

// HandleIndexJobs 处理岗位向量入库请求
func (h *AnalysisHandler) HandleIndexJobs(ctx context.Context, req *JobIndexRequest) (*JobIndexResponse, error) {
	if len(req.Jobs) == 0 {
		return nil, fmt.Errorf("%w: jobs不能为空", ErrInvalidRequest)
	}
	for i, job := range req.Jobs {
		if job.Title == "" && job.Description == "" {
			return nil, fmt.Errorf("%w: 第%d个岗位缺少标题和描述", ErrInvalidRequest, i+1)
		}
	}

	pointIDs, err := h.service.IndexJobPostings(ctx, req.Jobs)
	if err != nil {
		logger.Error().Err(err).Int("jobs", len(req.Jobs)).Msg("岗位入库失败")
		return nil, err
	}
	return &JobIndexResponse{PointIDs: pointIDs, IndexedCount: len(pointIDs)}, nil
}

// JobSearchRequest 岗位检索请求
type JobSearchRequest struct {
	ResumeText string `json:"resume_text"`
	Limit      int    `json:"limit,omitempty"`
}

// JobSearchResponse 岗位检索响应
type JobSearchResponse struct {
	Results []storage.JobSearchResult `json:"results"`
	Total   int                       `json:"total"`
}

// HandleSearchJobs 处理相似岗位检索请求
func (h *AnalysisHandler) HandleSearchJobs(ctx context.Context, req *JobSearchRequest) (*JobSearchResponse, error) {
	if req.ResumeText == "" {
		return nil, fmt.Errorf("%w: resume_text不能为空", ErrInvalidRequest)
	}

	results, err := h.service.SearchSimilarJobs(ctx, req.ResumeText, req.Limit)
	if err != nil {
		logger.Error().Err(err).Msg("相似岗位检索失败")
		return nil, err
	}
	return &JobSearchResponse{Results: results, Total: len(results)}, nil
}
