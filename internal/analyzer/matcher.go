package analyzer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/types"
)

// TextEmbedder 文本向量化接口
// 返回向量与输入文本一一对应; 相同输入应产生相同向量
type TextEmbedder interface {
	EmbedStrings(ctx context.Context, texts []string) ([][]float64, error)
}

// CosineSimilarity 计算两个向量的余弦相似度
// 维度不一致或任一向量为零向量时返回0
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// JobMatcher 基于向量语义的简历岗位匹配器
type JobMatcher struct {
	embedder  TextEmbedder
	threshold float64 // 近义技能判定阈值
	logger    zerolog.Logger
}

// JobMatcherOption 匹配器配置选项
type JobMatcherOption func(*JobMatcher)

// WithSkillSimilarityThreshold 配置近义技能判定阈值
func WithSkillSimilarityThreshold(threshold float64) JobMatcherOption {
	return func(m *JobMatcher) {
		if threshold > 0 {
			m.threshold = threshold
		}
	}
}

// NewJobMatcher 创建匹配器
func NewJobMatcher(embedder TextEmbedder, logger zerolog.Logger, options ...JobMatcherOption) (*JobMatcher, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder不能为空")
	}

	matcher := &JobMatcher{
		embedder:  embedder,
		threshold: constants.SkillSimilarityThreshold,
		logger:    logger.With().Str("component", "job_matcher").Logger(),
	}
	for _, option := range options {
		option(matcher)
	}
	return matcher, nil
}

// Similarity 计算简历与岗位描述的语义相似度
// 两段文本在同一批次内向量化
func (m *JobMatcher) Similarity(ctx context.Context, resumeText, jobDescription string) (float64, error) {
	vectors, err := m.embedder.EmbedStrings(ctx, []string{resumeText, jobDescription})
	if err != nil {
		return 0, fmt.Errorf("相似度计算失败: %w", err)
	}
	if len(vectors) != 2 {
		return 0, fmt.Errorf("相似度计算失败: 预期2个向量, 实际%d个", len(vectors))
	}

	return CosineSimilarity(vectors[0], vectors[1]), nil
}

// MatchJobs 为简历查找最匹配的topK个岗位
// 简历和全部岗位文本在同一批次内向量化; 结果按相似度降序，同分保持输入顺序
func (m *JobMatcher) MatchJobs(ctx context.Context, resumeText string, jobs []types.JobPosting, topK int) ([]types.JobMatch, error) {
	if len(jobs) == 0 {
		return []types.JobMatch{}, nil
	}

	texts := make([]string, 0, len(jobs)+1)
	texts = append(texts, resumeText)
	for _, job := range jobs {
		texts = append(texts, job.Title+" "+job.Description)
	}

	vectors, err := m.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("岗位匹配失败: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("岗位匹配失败: 预期%d个向量, 实际%d个", len(texts), len(vectors))
	}

	resumeVector := vectors[0]
	similarities := make([]float64, len(jobs))
	indices := make([]int, len(jobs))
	for i := range jobs {
		similarities[i] = CosineSimilarity(resumeVector, vectors[i+1])
		indices[i] = i
	}

	sort.SliceStable(indices, func(a, b int) bool {
		return similarities[indices[a]] > similarities[indices[b]]
	})

	if topK < 0 {
		topK = 0
	}
	if topK > len(indices) {
		topK = len(indices)
	}

	results := make([]types.JobMatch, 0, topK)
	for _, idx := range indices[:topK] {
		results = append(results, types.JobMatch{
			Job:             jobs[idx],
			SimilarityScore: similarities[idx],
			MatchPercentage: similarities[idx] * 100,
			Rank:            len(results) + 1,
		})
	}

	m.logger.Debug().Int("jobs", len(jobs)).Int("returned", len(results)).Msg("岗位匹配完成")
	return results, nil
}

// AnalyzeSkillMatchExact 仅做精确匹配的技能差距分析
// 不调用向量服务, 作为向量服务不可用时的降级路径
func (m *JobMatcher) AnalyzeSkillMatchExact(resumeSkills, requiredSkills []string) *types.SkillGapResult {
	resumeSet := make(map[string]bool, len(resumeSkills))
	for _, s := range resumeSkills {
		resumeSet[strings.ToLower(s)] = true
	}

	matching := []string{}
	missing := []string{}
	seen := make(map[string]bool, len(requiredSkills))
	for _, s := range requiredSkills {
		lower := strings.ToLower(s)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		if resumeSet[lower] {
			matching = append(matching, lower)
		} else {
			missing = append(missing, lower)
		}
	}

	matchPercentage := 0.0
	if len(requiredSkills) > 0 {
		matchPercentage = float64(len(matching)) / float64(len(requiredSkills)) * 100
	}

	return &types.SkillGapResult{
		MatchingSkills:  matching,
		MissingSkills:   missing,
		SimilarSkills:   []types.SimilarSkill{},
		MatchPercentage: matchPercentage,
		TotalRequired:   len(requiredSkills),
		TotalMatched:    len(matching),
	}
}

// AnalyzeSkillMatch 技能差距分析: 精确匹配加向量近义匹配
// 缺失技能与简历未命中技能在同一批次内向量化后两两比对
func (m *JobMatcher) AnalyzeSkillMatch(ctx context.Context, resumeSkills, requiredSkills []string) (*types.SkillGapResult, error) {
	result := m.AnalyzeSkillMatchExact(resumeSkills, requiredSkills)

	if len(result.MissingSkills) == 0 || len(resumeSkills) == 0 {
		return result, nil
	}

	matchedSet := make(map[string]bool, len(result.MatchingSkills))
	for _, s := range result.MatchingSkills {
		matchedSet[s] = true
	}

	// 候选为简历中未被精确命中的技能，去重并保持原始顺序
	candidates := []string{}
	candidateSeen := make(map[string]bool, len(resumeSkills))
	for _, s := range resumeSkills {
		lower := strings.ToLower(s)
		if matchedSet[lower] || candidateSeen[lower] {
			continue
		}
		candidateSeen[lower] = true
		candidates = append(candidates, lower)
	}
	if len(candidates) == 0 {
		return result, nil
	}

	texts := make([]string, 0, len(result.MissingSkills)+len(candidates))
	texts = append(texts, result.MissingSkills...)
	texts = append(texts, candidates...)

	vectors, err := m.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("近义技能分析失败: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("近义技能分析失败: 预期%d个向量, 实际%d个", len(texts), len(vectors))
	}

	missingVectors := vectors[:len(result.MissingSkills)]
	candidateVectors := vectors[len(result.MissingSkills):]

	for i, required := range result.MissingSkills {
		for j, candidate := range candidates {
			similarity := CosineSimilarity(missingVectors[i], candidateVectors[j])
			if similarity > m.threshold {
				result.SimilarSkills = append(result.SimilarSkills, types.SimilarSkill{
					Required:   required,
					ResumeHas:  candidate,
					Similarity: similarity,
				})
			}
		}
	}

	return result, nil
}

// GenerateRecommendations 生成针对目标岗位的简历改进建议
func (m *JobMatcher) GenerateRecommendations(ctx context.Context, resumeText, jobDescription string) ([]string, error) {
	recommendations := []string{}

	similarity, err := m.Similarity(ctx, resumeText, jobDescription)
	if err != nil {
		return nil, err
	}

	if similarity < 0.3 {
		recommendations = append(recommendations,
			"Consider tailoring your resume more closely to this job description")
	}

	wordCount := len(strings.Fields(resumeText))
	if wordCount < 200 {
		recommendations = append(recommendations,
			"Your resume seems brief. Consider adding more details about your experience and achievements")
	} else if wordCount > 800 {
		recommendations = append(recommendations,
			"Your resume is quite long. Consider condensing it to focus on most relevant experience")
	}

	if !strings.ContainsAny(resumeText, "0123456789") {
		recommendations = append(recommendations,
			"Add quantifiable achievements (e.g., 'Increased sales by 25%', 'Managed team of 10')")
	}

	textLower := strings.ToLower(resumeText)
	hasActionVerb := false
	for _, verb := range recommendationActionVerbs {
		if strings.Contains(textLower, verb) {
			hasActionVerb = true
			break
		}
	}
	if !hasActionVerb {
		recommendations = append(recommendations,
			"Use strong action verbs to describe your accomplishments (e.g., 'Led', 'Developed', 'Achieved')")
	}

	if len(recommendations) == 0 {
		return []string{"Your resume looks well-structured! Continue to keep it updated with latest achievements."}, nil
	}
	return recommendations, nil
}
