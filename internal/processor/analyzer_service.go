package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-analyzer-go/internal/analyzer"
	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/storage"
	"resume-analyzer-go/internal/storage/models"
	"resume-analyzer-go/internal/tracing"
	"resume-analyzer-go/internal/types"
	"resume-analyzer-go/pkg/utils"
)

var serviceTracer = otel.Tracer("resume-analyzer-go/processor")

// Components 分析服务的依赖集合
type Components struct {
	DocParser DocumentParser
	Lexical   *analyzer.LexicalExtractor
	Scorer    *analyzer.ATSScorer
	Matcher   *analyzer.JobMatcher
	Entities  EntityExtractor
	Embedder  *parser.AliyunEmbedder
	Storage   *storage.Storage
}

// AnalysisService 简历分析流水线的编排层
// 存储侧操作(缓存、归档、落库、发事件)均为尽力而为，不阻断分析结果返回
type AnalysisService struct {
	cfg       *config.Config
	docParser DocumentParser
	lexical   *analyzer.LexicalExtractor
	scorer    *analyzer.ATSScorer
	matcher   *analyzer.JobMatcher
	entities  EntityExtractor
	embedder  *parser.AliyunEmbedder
	storage   *storage.Storage
	logger    zerolog.Logger
}

// NewAnalysisService 创建分析服务
func NewAnalysisService(cfg *config.Config, comps Components) (*AnalysisService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if comps.DocParser == nil {
		return nil, fmt.Errorf("文档解析器不能为空")
	}
	if comps.Lexical == nil {
		return nil, fmt.Errorf("词法提取器不能为空")
	}
	if comps.Scorer == nil {
		return nil, fmt.Errorf("ATS评分器不能为空")
	}

	return &AnalysisService{
		cfg:       cfg,
		docParser: comps.DocParser,
		lexical:   comps.Lexical,
		scorer:    comps.Scorer,
		matcher:   comps.Matcher,
		entities:  comps.Entities,
		embedder:  comps.Embedder,
		storage:   comps.Storage,
		logger:    logger.Logger.With().Str("component", "analysis_service").Logger(),
	}, nil
}

// NewDefaultComponents 按配置装配默认组件
// Embedding或实体服务未配置时对应能力降级，不视为错误
func NewDefaultComponents(cfg *config.Config, store *storage.Storage) (Components, error) {
	comps := Components{
		Lexical: analyzer.NewLexicalExtractor(logger.Logger),
		Scorer:  analyzer.NewATSScorer(logger.Logger),
		Storage: store,
	}

	pdfPrimary, err := parser.NewEinoPDFTextExtractor(context.Background())
	if err != nil {
		return comps, fmt.Errorf("创建PDF提取器失败: %w", err)
	}
	comps.DocParser = parser.NewDocumentParser(
		parser.WithPDFExtractors(pdfPrimary, parser.NewPlainPDFTextExtractor()),
		parser.WithDocxExtractor(parser.NewDocxTextExtractor()),
	)

	if cfg.Aliyun.APIKey != "" {
		embedder, err := parser.NewAliyunEmbedder(cfg.Aliyun.APIKey, cfg.Aliyun.Embedding)
		if err != nil {
			return comps, fmt.Errorf("创建Embedding客户端失败: %w", err)
		}
		comps.Embedder = embedder

		matcherOpts := []analyzer.JobMatcherOption{}
		if cfg.Analyzer.SkillSimilarityThreshold > 0 {
			matcherOpts = append(matcherOpts, analyzer.WithSkillSimilarityThreshold(cfg.Analyzer.SkillSimilarityThreshold))
		}
		matcher, err := analyzer.NewJobMatcher(NewEmbedderAdapter(embedder), logger.Logger, matcherOpts...)
		if err != nil {
			return comps, fmt.Errorf("创建岗位匹配器失败: %w", err)
		}
		comps.Matcher = matcher
	} else {
		logger.Warn().Msg("未配置Embedding API Key, 语义匹配功能不可用")
	}

	if cfg.EntityService.BaseURL != "" {
		extractor, err := parser.NewHTTPEntityExtractor(cfg.EntityService.BaseURL,
			parser.WithEntityTimeout(time.Duration(cfg.EntityService.TimeoutSeconds)*time.Second))
		if err != nil {
			return comps, fmt.Errorf("创建实体提取客户端失败: %w", err)
		}
		comps.Entities = extractor
	}

	return comps, nil
}

// AnalyzeUpload 执行完整的简历分析流水线
// jobDescription为空时跳过语义匹配环节
func (s *AnalysisService) AnalyzeUpload(ctx context.Context, fileName string, data []byte, jobDescription string) (*types.AnalysisReport, error) {
	ctx, span := serviceTracer.Start(ctx, "AnalysisService.AnalyzeUpload",
		trace.WithAttributes(
			attribute.String("file.name", fileName),
			attribute.Int("file.size", len(data)),
			attribute.Bool("request.has_job_description", jobDescription != ""),
		))
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("request.id", requestID))

	if len(data) == 0 {
		err := newAnalysisError(requestID, fileName, "validate", ErrEmptyFile, nil)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	maxBytes := constants.MaxUploadSizeMB * 1024 * 1024
	if len(data) > maxBytes {
		err := newAnalysisError(requestID, fileName, "validate", ErrFileTooLarge,
			fmt.Errorf("大小%d字节, 上限%d字节", len(data), maxBytes))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	fileMD5 := utils.CalculateMD5(data)
	span.SetAttributes(attribute.String("file.md5", fileMD5))

	// 缓存命中直接返回；带JD的请求结果依赖JD内容，不走缓存
	if jobDescription == "" {
		if cached := s.lookupCachedReport(ctx, fileMD5); cached != nil {
			span.AddEvent("report_cache_hit")
			return cached, nil
		}
	}

	// 去重标记仅用于观测，重复文件依然重新分析
	if s.storage != nil && s.storage.Redis != nil {
		if seen, err := s.storage.Redis.CheckAndAddFileMD5(ctx, fileMD5); err != nil {
			s.logger.Warn().Err(err).Str("file_md5", fileMD5).Msg("MD5去重检查失败")
		} else if seen {
			span.AddEvent("duplicate_file_detected")
			s.logger.Info().Str("file_md5", fileMD5).Str("file_name", fileName).Msg("检测到重复上传的文件")
		}
	}

	originalKey := s.archiveOriginal(ctx, fileMD5, fileName, data)

	doc, err := s.docParser.ParseBytes(ctx, data, fileName)
	if err != nil {
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeExtraction,
			attribute.String("file.name", fileName),
			attribute.String("file.md5", fileMD5))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.AddEvent("document_parsed", trace.WithAttributes(
		attribute.Int("document.word_count", doc.WordCount),
		attribute.Int("document.char_count", doc.CharCount),
		attribute.String("document.preview", tracing.SafeResumeContent(doc.NormalizedText)),
	))

	text := doc.NormalizedText
	sections := parser.ExtractSections(text)
	skills := s.lexical.ExtractSkills(text)
	experience := s.lexical.ExtractExperience(text)
	education := s.lexical.ExtractEducation(text)
	years := s.lexical.CalculateExperienceYears(text)
	keywords := s.lexical.ExtractKeywords(text, 10)

	var entities map[string][]string
	if s.entities != nil {
		entities, err = s.entities.ExtractEntities(ctx, text)
		if err != nil {
			// 实体服务不可用时降级为空结果
			s.logger.Warn().Err(err).Msg("实体提取失败, 跳过实体结果")
			span.AddEvent("entity_extraction_degraded")
			entities = nil
		}
	}

	ats := s.scorer.CalculateScore(text, jobDescription)
	span.AddEvent("ats_scored", trace.WithAttributes(
		attribute.Float64("ats.overall_score", ats.OverallScore),
		attribute.String("ats.grade", ats.Grade),
	))

	var match *types.MatchResult
	if jobDescription != "" && s.matcher != nil {
		match = s.matchAgainstJD(ctx, span, text, skills, jobDescription)
	}

	report := &types.AnalysisReport{
		RequestID:       requestID,
		FileName:        fileName,
		FileMD5:         fileMD5,
		Document:        doc,
		Sections:        sections,
		Skills:          skills,
		Experience:      experience,
		Education:       education,
		ExperienceYears: years,
		Entities:        entities,
		Keywords:        keywords,
		ATS:             ats,
		Match:           match,
		AnalyzedAt:      time.Now().Unix(),
	}
	report.Summary = buildReportSummary(report)

	s.persistReport(ctx, report, originalKey)

	span.SetStatus(codes.Ok, "")
	return report, nil
}

// matchAgainstJD 执行语义匹配环节
// Embedding服务失败时技能差距退化为精确匹配；相似度不可得则整段跳过
func (s *AnalysisService) matchAgainstJD(ctx context.Context, span trace.Span, resumeText string, skills types.SkillSet, jobDescription string) *types.MatchResult {
	similarity, err := s.matcher.Similarity(ctx, resumeText, jobDescription)
	if err != nil {
		s.logger.Warn().Err(err).Msg("计算简历与JD相似度失败, 跳过语义匹配")
		span.AddEvent("semantic_match_skipped")
		return nil
	}

	match := &types.MatchResult{
		SimilarityScore: similarity,
		MatchPercentage: similarity * 100,
	}

	recommendations, err := s.matcher.GenerateRecommendations(ctx, resumeText, jobDescription)
	if err != nil {
		s.logger.Warn().Err(err).Msg("生成改进建议失败")
	} else {
		match.Recommendations = recommendations
	}

	resumeSkills := analyzer.FlattenSkills(skills)
	requiredSkills := analyzer.FlattenSkills(s.lexical.ExtractSkills(jobDescription))
	gap, err := s.matcher.AnalyzeSkillMatch(ctx, resumeSkills, requiredSkills)
	if err != nil {
		s.logger.Warn().Err(err).Msg("近义技能分析失败, 退化为精确匹配")
		span.AddEvent("skill_match_degraded_to_exact")
		gap = s.matcher.AnalyzeSkillMatchExact(resumeSkills, requiredSkills)
	}
	match.SkillGap = gap

	span.AddEvent("semantic_match_done", trace.WithAttributes(
		attribute.Float64("match.similarity", similarity),
	))
	return match
}

// lookupCachedReport 尝试从Redis命中已缓存的分析报告
func (s *AnalysisService) lookupCachedReport(ctx context.Context, fileMD5 string) *types.AnalysisReport {
	if s.storage == nil || s.storage.Redis == nil {
		return nil
	}
	data, err := s.storage.Redis.GetAnalysisReport(ctx, fileMD5)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Str("file_md5", fileMD5).Msg("读取报告缓存失败")
		}
		return nil
	}
	var report types.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		s.logger.Warn().Err(err).Str("file_md5", fileMD5).Msg("缓存的报告JSON无法解析, 忽略缓存")
		return nil
	}
	return &report
}

// archiveOriginal 把原始文件归档到对象存储, 失败只告警
func (s *AnalysisService) archiveOriginal(ctx context.Context, fileMD5, fileName string, data []byte) string {
	if s.storage == nil || s.storage.MinIO == nil {
		return ""
	}
	ext := filepath.Ext(fileName)
	objectKey, err := s.storage.MinIO.UploadOriginalResume(ctx, fileMD5, ext, data)
	if err != nil {
		s.logger.Warn().Err(err).Str("file_name", fileName).Msg("归档原始文件失败")
		return ""
	}
	return objectKey
}

// persistReport 把分析结果写入缓存、对象存储、数据库并发布事件
// 任一环节失败只记录告警, 分析结果照常返回
func (s *AnalysisService) persistReport(ctx context.Context, report *types.AnalysisReport, originalKey string) {
	if s.storage == nil {
		return
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", report.RequestID).Msg("序列化分析报告失败")
		return
	}

	if s.storage.Redis != nil {
		if err := s.storage.Redis.CacheAnalysisReport(ctx, report.FileMD5, reportJSON); err != nil {
			s.logger.Warn().Err(err).Msg("缓存分析报告失败")
		}
	}

	reportKey := ""
	if s.storage.MinIO != nil {
		reportKey, err = s.storage.MinIO.UploadAnalysisReport(ctx, report.RequestID, reportJSON)
		if err != nil {
			s.logger.Warn().Err(err).Msg("上传分析报告失败")
		}
	}

	if s.storage.MySQL != nil {
		record := s.buildRecord(report, originalKey, reportKey)
		if err := s.storage.MySQL.SaveAnalysisRecord(ctx, record); err != nil {
			s.logger.Warn().Err(err).Str("request_id", report.RequestID).Msg("保存分析记录失败")
		}
	}

	if s.storage.RabbitMQ != nil {
		event := &types.AnalysisCompletedEvent{
			RequestID:    report.RequestID,
			FileName:     report.FileName,
			FileMD5:      report.FileMD5,
			OverallScore: report.ATS.OverallScore,
			Grade:        report.ATS.Grade,
			AnalyzedAt:   report.AnalyzedAt,
		}
		if report.Match != nil {
			event.MatchPercentage = utils.Float64Ptr(report.Match.MatchPercentage)
		}
		if err := s.storage.RabbitMQ.PublishAnalysisCompleted(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("request_id", report.RequestID).Msg("发布分析完成事件失败")
		}
	}
}

// buildRecord 把分析报告映射为数据库记录
func (s *AnalysisService) buildRecord(report *types.AnalysisReport, originalKey, reportKey string) *models.AnalysisRecord {
	record := &models.AnalysisRecord{
		RequestID:          report.RequestID,
		FileName:           report.FileName,
		FileMD5:            report.FileMD5,
		FileType:           string(report.Document.FileType),
		WordCount:          report.Document.WordCount,
		CharCount:          report.Document.CharCount,
		AnalyzerVersion:    constants.AnalyzerVersion,
		OverallScore:       report.ATS.OverallScore,
		Grade:              report.ATS.Grade,
		CategoryScoresJSON: utils.ConvertToJSON(report.ATS.CategoryScores),
		SkillsJSON:         utils.ConvertToJSON(report.Skills),
		SectionsJSON:       utils.ConvertToJSON(report.Sections),
		OriginalObjectKey:  originalKey,
		ReportObjectKey:    reportKey,
	}
	if len(report.Entities) > 0 {
		record.EntitiesJSON = utils.ConvertToJSON(report.Entities)
	}
	if report.Match != nil {
		record.MatchPercentage = utils.Float64Ptr(report.Match.MatchPercentage)
		record.MatchJSON = utils.ConvertToJSON(report.Match)
	}
	return record
}

// buildReportSummary 生成报告的人类可读摘要
func buildReportSummary(report *types.AnalysisReport) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("ATS评分: %.1f (%s)", report.ATS.OverallScore, report.ATS.Grade))
	lines = append(lines, fmt.Sprintf("工作年限: %.1f年", report.ExperienceYears))

	if formatted := analyzer.FormatSkills(report.Skills); formatted != "" {
		lines = append(lines, "技能:")
		lines = append(lines, formatted)
	}
	if report.Match != nil {
		lines = append(lines, fmt.Sprintf("岗位匹配度: %.1f%%", report.Match.MatchPercentage))
	}
	return strings.Join(lines, "\n")
}

// MatchJobs 把简历文本与一组岗位描述做语义匹配
func (s *AnalysisService) MatchJobs(ctx context.Context, resumeText string, jobs []types.JobPosting, topK int) ([]types.JobMatch, error) {
	ctx, span := serviceTracer.Start(ctx, "AnalysisService.MatchJobs",
		trace.WithAttributes(
			attribute.Int("jobs.count", len(jobs)),
			attribute.Int("match.top_k", topK),
		))
	defer span.End()

	if s.matcher == nil {
		err := ErrEmbedderNotInit
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if topK <= 0 {
		topK = s.cfg.Analyzer.DefaultTopK
	}

	matches, err := s.matcher.MatchJobs(ctx, resumeText, jobs, topK)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrMatchFailed, err)
	}

	// 顺带缓存带ID的岗位描述, 失败不影响结果
	if s.storage != nil && s.storage.Redis != nil {
		for _, job := range jobs {
			if job.ID == "" {
				continue
			}
			if err := s.storage.Redis.SetJobDescription(ctx, job.ID, job.Description); err != nil {
				s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("缓存岗位描述失败")
			}
		}
	}

	span.SetAttributes(attribute.Int("match.results", len(matches)))
	span.SetStatus(codes.Ok, "")
	return matches, nil
}

// IndexJobPostings 把岗位描述向量化并写入向量库
func (s *AnalysisService) IndexJobPostings(ctx context.Context, jobs []types.JobPosting) ([]string, error) {
	ctx, span := serviceTracer.Start(ctx, "AnalysisService.IndexJobPostings",
		trace.WithAttributes(attribute.Int("jobs.count", len(jobs))))
	defer span.End()

	if s.embedder == nil {
		return nil, ErrEmbedderNotInit
	}
	if s.storage == nil || s.storage.Qdrant == nil {
		return nil, ErrVectorStoreNotInit
	}
	if len(jobs) == 0 {
		return []string{}, nil
	}

	texts := make([]string, len(jobs))
	for i, job := range jobs {
		texts[i] = job.Title + " " + job.Description
	}

	embeddings, err := s.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	pointIDs, err := s.storage.Qdrant.UpsertJobPostings(ctx, jobs, embeddings)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// 同步岗位元数据到MySQL和Redis, 失败只告警
	for i, job := range jobs {
		if job.ID == "" {
			continue
		}
		if s.storage.MySQL != nil {
			record := &models.JobPostingRecord{
				JobID:       job.ID,
				Title:       job.Title,
				Description: job.Description,
				PointID:     pointIDs[i],
			}
			if err := s.storage.MySQL.SaveJobPosting(ctx, record); err != nil {
				s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("保存岗位记录失败")
			}
		}
		if s.storage.Redis != nil {
			if err := s.storage.Redis.SetJobDescription(ctx, job.ID, job.Description); err != nil {
				s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("缓存岗位描述失败")
			}
		}
	}

	span.SetAttributes(attribute.Int("index.points", len(pointIDs)))
	span.SetStatus(codes.Ok, "")
	return pointIDs, nil
}

// SearchSimilarJobs 用简历文本在向量库中检索最相似的岗位
func (s *AnalysisService) SearchSimilarJobs(ctx context.Context, resumeText string, limit int) ([]storage.JobSearchResult, error) {
	ctx, span := serviceTracer.Start(ctx, "AnalysisService.SearchSimilarJobs",
		trace.WithAttributes(attribute.Int("search.limit", limit)))
	defer span.End()

	if s.embedder == nil {
		return nil, ErrEmbedderNotInit
	}
	if s.storage == nil || s.storage.Qdrant == nil {
		return nil, ErrVectorStoreNotInit
	}

	if limit <= 0 {
		limit = s.cfg.Qdrant.DefaultSearchLimit
	}

	vectors, err := s.embedder.EmbedStrings(ctx, []string{resumeText})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(vectors) != 1 {
		err := fmt.Errorf("embedding服务返回了%d个向量, 预期1个", len(vectors))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	results, err := s.storage.Qdrant.SearchSimilarJobs(ctx, vectors[0], limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results", len(results)))
	span.SetStatus(codes.Ok, "")
	return results, nil
}
