package analyzer

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer() *ATSScorer {
	return NewATSScorer(zerolog.Nop())
}

// sampleResume 构造一份结构完整的测试简历
func sampleResume() string {
	var b strings.Builder
	b.WriteString("John Doe\njohn.doe@example.com\n(555) 123-4567\nlinkedin.com/in/johndoe\nBoston, MA\n\n")
	b.WriteString("summary:\nProfessional software engineer with 8 years of experience building backend systems.\n\n")
	b.WriteString("experience:\nSenior Engineer at Acme 2019 - 2024\n")
	b.WriteString("Led a team of 6 engineers and improved deployment frequency by 40 percent.\n")
	b.WriteString("Developed and implemented 12 microservices handling 3000 requests per second.\n")
	b.WriteString("Designed monitoring dashboards and achieved 99 percent uptime across 5 regions.\n\n")
	b.WriteString("education:\nBachelor of Science in Computer Science, 2016\n\n")
	b.WriteString("skills:\npython java docker kubernetes mysql\n\n")
	b.WriteString("contact: see header above\n")
	// 填充到200词以上, 避免内容维度扣分
	filler := strings.Repeat("delivered measurable results across multiple projects and achievements ", 25)
	b.WriteString("\nprojects:\n" + filler)
	return b.String()
}

// TestCalculateScoreOverallIsWeightedSum 总分恒为各维度加权和
func TestCalculateScoreOverallIsWeightedSum(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.CalculateScore(sampleResume(), "")
	require.Len(t, result.CategoryScores, 5)

	expected := 0.0
	for category, weight := range categoryWeights {
		score, ok := result.CategoryScores[category]
		require.True(t, ok, "缺少维度: %s", category)
		expected += score.Score * weight
	}

	assert.InDelta(t, expected, result.OverallScore, 0.05+1e-9)
}

// TestFormatScore 格式维度扣分规则
func TestFormatScore(t *testing.T) {
	scorer := newTestScorer()

	clean := scorer.calculateFormatScore("This is a plain resume line that is long enough to pass checks.\nAnother reasonably long line of ordinary resume content here.")
	assert.Equal(t, 100.0, clean.Score)
	assert.Contains(t, clean.Issues, "Clean, ATS-friendly formatting")

	withTabs := scorer.calculateFormatScore("col1\tcol2\tcol3 in a line that is otherwise long enough to not get flagged")
	assert.Equal(t, 90.0, withTabs.Score)
	assert.Contains(t, withTabs.Issues, "Contains tabs (may indicate columns)")

	shortLines := scorer.calculateFormatScore("ab\ncd\nef")
	assert.Equal(t, 90.0, shortLines.Score)
	assert.Contains(t, shortLines.Issues, "Inconsistent line formatting")
}

// TestFormatScoreSpecialChars 特殊字符超过50个扣15分
func TestFormatScoreSpecialChars(t *testing.T) {
	scorer := newTestScorer()

	noisy := "A sufficiently long line of ordinary resume text to keep the average up " + strings.Repeat("★", 60)
	result := scorer.calculateFormatScore(noisy)
	assert.Equal(t, 85.0, result.Score)
	assert.Contains(t, result.Issues, "Too many special characters")
}

// TestSectionScore 章节完整度按命中比例给分
func TestSectionScore(t *testing.T) {
	scorer := newTestScorer()

	full := scorer.calculateSectionScore("intro\nexperience: x\neducation: y\nskills: z\nsummary: s\ncontact: c")
	assert.Equal(t, 100.0, full.Score)
	assert.Contains(t, full.Issues, "All essential sections present")
	assert.Empty(t, full.MissingSections)

	partial := scorer.calculateSectionScore("intro\nexperience: x\nskills: z")
	assert.Equal(t, 40.0, partial.Score)
	assert.Equal(t, []string{"experience", "skills"}, partial.FoundSections)
	assert.Equal(t, []string{"education", "summary", "contact"}, partial.MissingSections)

	none := scorer.calculateSectionScore("nothing relevant here")
	assert.Equal(t, 0.0, none.Score)
}

// TestKeywordScoreWithoutJD 无岗位描述时仅用通用词表
func TestKeywordScoreWithoutJD(t *testing.T) {
	scorer := newTestScorer()

	// 命中9个通用关键词中的3个
	result := scorer.calculateKeywordScore("experience education skills", "")
	assert.InDelta(t, 3.0/9.0*100, result.Score, 1e-9)
	assert.Equal(t, []string{"experience", "education", "skills"}, result.FoundKeywords)
	assert.Contains(t, result.Issues, "Using general ATS keywords (no job description provided)")
}

// TestKeywordScoreWithJD 提供岗位描述时按0.4/0.6混合
func TestKeywordScoreWithJD(t *testing.T) {
	scorer := newTestScorer()

	// 岗位描述中长度大于4的词: golang, kubernetes, experience (3个), 简历全部覆盖
	result := scorer.calculateKeywordScore("golang kubernetes experience", "golang and kubernetes experience")
	base := 1.0 / 9.0 * 100 // 仅命中"experience"
	expected := base*0.4 + 1.0*100*0.6
	assert.InDelta(t, expected, result.Score, 1e-9)
	assert.Contains(t, result.Issues, "Good keyword match: 3 relevant terms")

	// 覆盖率低于0.3时给出告警
	low := scorer.calculateKeywordScore("unrelated text", "golang kubernetes distributed systems observability")
	assert.Contains(t, low.Issues, "Low keyword match with job description")
}

// TestContentScore 内容质量维度的三项检查
func TestContentScore(t *testing.T) {
	scorer := newTestScorer()

	short := scorer.calculateContentScore("led managed developed 1 2 3 4 5")
	// 少于200词扣30, 数字和动词达标
	assert.Equal(t, 70.0, short.Score)
	assert.Contains(t, short.Issues, "Resume too short (< 200 words)")
	assert.Contains(t, short.Issues, "Good use of metrics")
	assert.Contains(t, short.Issues, "Strong action verbs present")

	bare := scorer.calculateContentScore("just some plain text")
	// 扣30+20+15
	assert.Equal(t, 35.0, bare.Score)

	good := strings.Repeat("word ", 250) + "led managed developed 10 20 30 40 50"
	result := scorer.calculateContentScore(good)
	assert.Equal(t, 100.0, result.Score)
	assert.Contains(t, result.Issues, "Appropriate length")
}

// TestContactScore 联系方式各项独立加分
func TestContactScore(t *testing.T) {
	scorer := newTestScorer()

	emailPhone := scorer.calculateContactScore("john@example.com (555) 123-4567")
	assert.Equal(t, 70.0, emailPhone.Score)
	assert.Equal(t, []string{"email", "phone"}, emailPhone.FoundContact)
	assert.Contains(t, emailPhone.Issues, "Complete contact information")

	all := scorer.calculateContactScore("john@example.com (555) 123-4567 linkedin.com/in/johndoe Boston, MA")
	assert.Equal(t, 100.0, all.Score)

	nothing := scorer.calculateContactScore("no contact info at all")
	assert.Equal(t, 0.0, nothing.Score)
	assert.Equal(t, []string{"email", "phone"}, nothing.MissingContact)
}

// TestGetGrade 等级换算边界
func TestGetGrade(t *testing.T) {
	scorer := newTestScorer()

	tests := []struct {
		score    float64
		expected string
	}{
		{95, "A+"}, {90, "A+"}, {89.96, "A"}, {80, "A"},
		{79.9, "B"}, {70, "B"}, {60, "C"}, {59.9, "D"}, {0, "D"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, scorer.getGrade(tt.score), "score=%v", tt.score)
	}
}

// TestGenerateFeedback 反馈按固定维度顺序生成
func TestGenerateFeedback(t *testing.T) {
	scorer := newTestScorer()

	result := scorer.CalculateScore("tiny", "")
	require.NotEmpty(t, result.Feedback)

	// 低分维度以警告标记开头, 高分维度标记优秀
	var hasWarning, hasExcellent bool
	for _, fb := range result.Feedback {
		if strings.HasPrefix(fb, "⚠️ SECTIONS:") {
			hasWarning = true
		}
		if strings.HasPrefix(fb, "✅ FORMAT:") {
			hasExcellent = true
		}
	}
	assert.True(t, hasWarning)
	assert.True(t, hasExcellent)
}
