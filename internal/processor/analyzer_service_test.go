package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/analyzer"
	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/logger"
	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/types"
)

// stubEmbedder 返回固定向量的测试Embedder
type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float64, len(texts))
	for i := range texts {
		// 所有文本映射到同一向量, 相似度恒为1
		vectors[i] = []float64{1, 0, 0}
	}
	return vectors, nil
}

// stubEntityExtractor 可配置失败的实体提取器
type stubEntityExtractor struct {
	entities map[string][]string
	err      error
}

func (s *stubEntityExtractor) ExtractEntities(ctx context.Context, text string) (map[string][]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entities, nil
}

func newTestService(t *testing.T, embedder analyzer.TextEmbedder, entities EntityExtractor) *AnalysisService {
	t.Helper()

	cfg := config.DefaultConfig()
	comps := Components{
		DocParser: parser.NewDocumentParser(),
		Lexical:   analyzer.NewLexicalExtractor(logger.Logger),
		Scorer:    analyzer.NewATSScorer(logger.Logger),
		Entities:  entities,
	}
	if embedder != nil {
		matcher, err := analyzer.NewJobMatcher(embedder, logger.Logger)
		require.NoError(t, err)
		comps.Matcher = matcher
	}

	svc, err := NewAnalysisService(cfg, comps)
	require.NoError(t, err)
	return svc
}

func sampleResumeText() string {
	var b strings.Builder
	b.WriteString("John Smith\n")
	b.WriteString("john.smith@example.com | 555-123-4567\n\n")
	b.WriteString("SUMMARY\nSenior engineer with python and go experience.\n\n")
	b.WriteString("EXPERIENCE\n2018 - 2023 Acme Corp\n")
	b.WriteString("Developed services that improved throughput by 40 percent.\n\n")
	b.WriteString("EDUCATION\nBachelor of Science in Computer Science, 2014\n\n")
	b.WriteString("SKILLS\npython, go, docker, sql, leadership\n")
	return b.String()
}

func TestAnalyzeUploadRejectsEmptyFile(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.AnalyzeUpload(context.Background(), "resume.txt", nil, "")
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestAnalyzeUploadRejectsOversizedFile(t *testing.T) {
	svc := newTestService(t, nil, nil)

	big := make([]byte, 11*1024*1024)
	_, err := svc.AnalyzeUpload(context.Background(), "resume.txt", big, "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestAnalyzeUploadUnsupportedFormat(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.AnalyzeUpload(context.Background(), "resume.xls", []byte("data"), "")
	assert.ErrorIs(t, err, parser.ErrUnsupportedFormat)
}

func TestAnalyzeUploadWithoutJobDescription(t *testing.T) {
	svc := newTestService(t, nil, nil)

	report, err := svc.AnalyzeUpload(context.Background(), "resume.txt", []byte(sampleResumeText()), "")
	require.NoError(t, err)

	assert.NotEmpty(t, report.RequestID)
	assert.Equal(t, "resume.txt", report.FileName)
	assert.Len(t, report.FileMD5, 32)
	assert.NotZero(t, report.AnalyzedAt)

	require.NotNil(t, report.Document)
	assert.Equal(t, types.FileTypeText, report.Document.FileType)
	assert.Contains(t, report.Document.Metadata.Emails, "john.smith@example.com")

	assert.Contains(t, report.Skills[types.SkillProgramming], "python")
	assert.Contains(t, report.Skills[types.SkillProgramming], "go")
	assert.NotEmpty(t, report.Experience)
	assert.NotEmpty(t, report.Education)

	require.NotNil(t, report.ATS)
	assert.GreaterOrEqual(t, report.ATS.OverallScore, 0.0)
	assert.LessOrEqual(t, report.ATS.OverallScore, 100.0)
	assert.NotEmpty(t, report.ATS.Grade)

	assert.Contains(t, report.Summary, "ATS评分")
	assert.Contains(t, report.Summary, "python")

	// 未提供JD时不产生匹配结果
	assert.Nil(t, report.Match)
}

func TestAnalyzeUploadWithJobDescription(t *testing.T) {
	embedder := &stubEmbedder{}
	svc := newTestService(t, embedder, nil)

	jd := "Looking for a python engineer with docker and kubernetes experience."
	report, err := svc.AnalyzeUpload(context.Background(), "resume.txt", []byte(sampleResumeText()), jd)
	require.NoError(t, err)

	require.NotNil(t, report.Match)
	assert.InDelta(t, 1.0, report.Match.SimilarityScore, 1e-9)
	assert.InDelta(t, 100.0, report.Match.MatchPercentage, 1e-9)
	assert.NotNil(t, report.Match.SkillGap)
	assert.Contains(t, report.Match.SkillGap.MatchingSkills, "python")
	assert.Contains(t, report.Match.SkillGap.MatchingSkills, "docker")
}

func TestAnalyzeUploadEntityExtractionDegrades(t *testing.T) {
	entities := &stubEntityExtractor{err: fmt.Errorf("ner service unavailable")}
	svc := newTestService(t, nil, entities)

	report, err := svc.AnalyzeUpload(context.Background(), "resume.txt", []byte(sampleResumeText()), "")
	require.NoError(t, err)
	assert.Nil(t, report.Entities)
}

func TestAnalyzeUploadEntityExtractionSuccess(t *testing.T) {
	entities := &stubEntityExtractor{entities: map[string][]string{
		"PERSON": {"John Smith"},
		"ORG":    {"Acme Corp"},
	}}
	svc := newTestService(t, nil, entities)

	report, err := svc.AnalyzeUpload(context.Background(), "resume.txt", []byte(sampleResumeText()), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"John Smith"}, report.Entities["PERSON"])
	assert.Equal(t, []string{"Acme Corp"}, report.Entities["ORG"])
}

func TestAnalyzeUploadEmbeddingFailureSkipsMatch(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("embedding service down")}
	svc := newTestService(t, embedder, nil)

	report, err := svc.AnalyzeUpload(context.Background(), "resume.txt", []byte(sampleResumeText()), "any jd text")
	require.NoError(t, err)

	// 相似度不可得时整个匹配环节跳过, 分析主流程不受影响
	assert.Nil(t, report.Match)
	require.NotNil(t, report.ATS)
}

func TestMatchJobsRequiresMatcher(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.MatchJobs(context.Background(), "resume text", []types.JobPosting{{Title: "Dev"}}, 3)
	assert.ErrorIs(t, err, ErrEmbedderNotInit)
}

func TestMatchJobsUsesDefaultTopK(t *testing.T) {
	embedder := &stubEmbedder{}
	svc := newTestService(t, embedder, nil)

	jobs := make([]types.JobPosting, 8)
	for i := range jobs {
		jobs[i] = types.JobPosting{ID: fmt.Sprintf("job-%d", i), Title: "Engineer", Description: "Builds things"}
	}

	matches, err := svc.MatchJobs(context.Background(), "resume text", jobs, 0)
	require.NoError(t, err)
	// DefaultTopK默认为5
	assert.Len(t, matches, 5)
	assert.Equal(t, 1, matches[0].Rank)
}

func TestIndexJobPostingsRequiresVectorStore(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.IndexJobPostings(context.Background(), []types.JobPosting{{ID: "j1", Title: "Dev"}})
	assert.ErrorIs(t, err, ErrEmbedderNotInit)
}

func TestSearchSimilarJobsRequiresVectorStore(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.SearchSimilarJobs(context.Background(), "resume text", 5)
	assert.ErrorIs(t, err, ErrEmbedderNotInit)
}
