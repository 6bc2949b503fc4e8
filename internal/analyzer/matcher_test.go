package analyzer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/types"
)

// mockEmbedder 返回预置向量的模拟嵌入器
type mockEmbedder struct {
	vectors map[string][]float64
	err     error
	calls   int
}

func (m *mockEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	result := make([][]float64, len(texts))
	for i, text := range texts {
		vector, ok := m.vectors[text]
		if !ok {
			return nil, fmt.Errorf("未预置向量: %q", text)
		}
		result[i] = vector
	}
	return result, nil
}

func newTestMatcher(t *testing.T, embedder TextEmbedder, options ...JobMatcherOption) *JobMatcher {
	t.Helper()
	matcher, err := NewJobMatcher(embedder, zerolog.Nop(), options...)
	require.NoError(t, err)
	return matcher
}

// TestCosineSimilarity 余弦相似度的基本性质
func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{1, 0}, []float64{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	// 与向量长度无关
	assert.InDelta(t, 1.0, CosineSimilarity([]float64{2, 0}, []float64{5, 0}), 1e-9)

	// 维度不一致或零向量返回0
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 0}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

// TestSimilarity 两段文本在同一批次内向量化
func TestSimilarity(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float64{
		"resume text":     {1, 0},
		"job description": {0.6, 0.8},
	}}
	matcher := newTestMatcher(t, embedder)

	similarity, err := matcher.Similarity(context.Background(), "resume text", "job description")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, similarity, 1e-9)
	assert.Equal(t, 1, embedder.calls)
}

// TestNewJobMatcherNilEmbedder 嵌入器为空时构造失败
func TestNewJobMatcherNilEmbedder(t *testing.T) {
	_, err := NewJobMatcher(nil, zerolog.Nop())
	assert.Error(t, err)
}

// TestMatchJobs 岗位按相似度降序排列且Rank从1开始
func TestMatchJobs(t *testing.T) {
	jobs := []types.JobPosting{
		{ID: "a", Title: "Frontend Dev", Description: "react css"},
		{ID: "b", Title: "Backend Dev", Description: "go services"},
		{ID: "c", Title: "Data Engineer", Description: "pipelines"},
	}
	embedder := &mockEmbedder{vectors: map[string][]float64{
		"my resume":               {1, 0},
		"Frontend Dev react css":  {0, 1},
		"Backend Dev go services": {1, 0},
		"Data Engineer pipelines": {0.6, 0.8},
	}}
	matcher := newTestMatcher(t, embedder)

	matches, err := matcher.MatchJobs(context.Background(), "my resume", jobs, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "b", matches[0].Job.ID)
	assert.Equal(t, 1, matches[0].Rank)
	assert.InDelta(t, 1.0, matches[0].SimilarityScore, 1e-9)
	assert.InDelta(t, 100.0, matches[0].MatchPercentage, 1e-9)

	assert.Equal(t, "c", matches[1].Job.ID)
	assert.Equal(t, 2, matches[1].Rank)
	assert.InDelta(t, 0.6, matches[1].SimilarityScore, 1e-9)

	// 简历和全部岗位应在一次批量调用内完成
	assert.Equal(t, 1, embedder.calls)
}

// TestMatchJobsEmptyInput 空岗位列表返回空切片而非nil错误
func TestMatchJobsEmptyInput(t *testing.T) {
	matcher := newTestMatcher(t, &mockEmbedder{})

	matches, err := matcher.MatchJobs(context.Background(), "resume", []types.JobPosting{}, 5)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

// TestMatchJobsTopKExceedsJobs topK超过岗位数时返回全部
func TestMatchJobsTopKExceedsJobs(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float64{
		"resume": {1, 0},
		"Dev x":  {1, 0},
	}}
	matcher := newTestMatcher(t, embedder)

	matches, err := matcher.MatchJobs(context.Background(), "resume",
		[]types.JobPosting{{Title: "Dev", Description: "x"}}, 10)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

// TestMatchJobsEmbedderFailure 嵌入失败时错误携带服务哨兵
func TestMatchJobsEmbedderFailure(t *testing.T) {
	embedder := &mockEmbedder{err: fmt.Errorf("%w: 状态码500", parser.ErrEmbeddingService)}
	matcher := newTestMatcher(t, embedder)

	_, err := matcher.MatchJobs(context.Background(), "resume",
		[]types.JobPosting{{Title: "Dev", Description: "x"}}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrEmbeddingService)
}

// TestAnalyzeSkillMatchExact 精确技能匹配不触发向量调用
func TestAnalyzeSkillMatchExact(t *testing.T) {
	embedder := &mockEmbedder{}
	matcher := newTestMatcher(t, embedder)

	result := matcher.AnalyzeSkillMatchExact([]string{"Python", "sql"}, []string{"python", "java"})

	assert.Equal(t, []string{"python"}, result.MatchingSkills)
	assert.Equal(t, []string{"java"}, result.MissingSkills)
	assert.Empty(t, result.SimilarSkills)
	assert.InDelta(t, 50.0, result.MatchPercentage, 1e-9)
	assert.Equal(t, 2, result.TotalRequired)
	assert.Equal(t, 1, result.TotalMatched)
	assert.Equal(t, 0, embedder.calls)
}

// TestAnalyzeSkillMatchExactEmptyRequired 无要求技能时匹配率为0
func TestAnalyzeSkillMatchExactEmptyRequired(t *testing.T) {
	matcher := newTestMatcher(t, &mockEmbedder{})

	result := matcher.AnalyzeSkillMatchExact([]string{"python"}, nil)
	assert.Equal(t, 0.0, result.MatchPercentage)
	assert.Empty(t, result.MissingSkills)
}

// TestAnalyzeSkillMatchSimilarSkills 缺失技能通过向量找到近义技能
func TestAnalyzeSkillMatchSimilarSkills(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float64{
		"kubernetes": {1, 0},
		"docker":     {0.95, 0.3122},
		"excel":      {0, 1},
	}}
	matcher := newTestMatcher(t, embedder)

	result, err := matcher.AnalyzeSkillMatch(context.Background(),
		[]string{"python", "docker", "excel"},
		[]string{"python", "kubernetes"})
	require.NoError(t, err)

	assert.Equal(t, []string{"python"}, result.MatchingSkills)
	assert.Equal(t, []string{"kubernetes"}, result.MissingSkills)

	require.Len(t, result.SimilarSkills, 1)
	assert.Equal(t, "kubernetes", result.SimilarSkills[0].Required)
	assert.Equal(t, "docker", result.SimilarSkills[0].ResumeHas)
	assert.Greater(t, result.SimilarSkills[0].Similarity, 0.7)

	// 缺失技能与候选技能应在一次批量调用内完成
	assert.Equal(t, 1, embedder.calls)
}

// TestAnalyzeSkillMatchNoMissing 无缺失技能时不调用向量服务
func TestAnalyzeSkillMatchNoMissing(t *testing.T) {
	embedder := &mockEmbedder{}
	matcher := newTestMatcher(t, embedder)

	result, err := matcher.AnalyzeSkillMatch(context.Background(), []string{"python"}, []string{"python"})
	require.NoError(t, err)
	assert.Empty(t, result.MissingSkills)
	assert.Equal(t, 0, embedder.calls)
}

// TestGenerateRecommendationsCascade 各检查项逐条触发
func TestGenerateRecommendationsCascade(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float64{
		"short resume": {1, 0},
		"target jd":    {0, 1}, // 相似度0, 低于0.3
	}}
	matcher := newTestMatcher(t, embedder)

	recs, err := matcher.GenerateRecommendations(context.Background(), "short resume", "target jd")
	require.NoError(t, err)

	joined := strings.Join(recs, "\n")
	assert.Contains(t, joined, "tailoring your resume")
	assert.Contains(t, joined, "seems brief")
	assert.Contains(t, joined, "quantifiable achievements")
	assert.Contains(t, joined, "strong action verbs")
	assert.Len(t, recs, 4)
}

// TestGenerateRecommendationsWellStructured 无可改进项时返回默认建议
func TestGenerateRecommendationsWellStructured(t *testing.T) {
	resume := strings.Repeat("word ", 250) + "led the team and increased revenue by 25 percent"
	embedder := &mockEmbedder{vectors: map[string][]float64{
		resume:      {1, 0},
		"target jd": {1, 0}, // 相似度1
	}}
	matcher := newTestMatcher(t, embedder)

	recs, err := matcher.GenerateRecommendations(context.Background(), resume, "target jd")
	require.NoError(t, err)
	assert.Equal(t, []string{"Your resume looks well-structured! Continue to keep it updated with latest achievements."}, recs)
}
