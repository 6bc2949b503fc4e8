package analyzer

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/types"
)

func newTestExtractor() *LexicalExtractor {
	return NewLexicalExtractor(zerolog.Nop())
}

// TestExtractSkills 验证技能抽取按类别分组且大小写不敏感
func TestExtractSkills(t *testing.T) {
	extractor := newTestExtractor()

	text := "Proficient in Python and Java. Built services with Docker and Kubernetes. Strong leadership."
	skills := extractor.ExtractSkills(text)

	assert.Equal(t, []string{"python", "java"}, skills[types.SkillProgramming])
	assert.Equal(t, []string{"docker", "kubernetes"}, skills[types.SkillCloud])
	assert.Equal(t, []string{"leadership"}, skills[types.SkillSoftSkills])
	// 无命中的类别不应出现
	_, ok := skills[types.SkillDatabase]
	assert.False(t, ok)
}

// TestExtractSkillsWordBoundary 验证词边界匹配, 子串不应命中
func TestExtractSkillsWordBoundary(t *testing.T) {
	extractor := newTestExtractor()

	// "javascript"中包含"java"但有词边界隔离; "gopher"不应命中"go"
	skills := extractor.ExtractSkills("Wrote JavaScript for the frontend, gopher mascot on the laptop")
	assert.Equal(t, []string{"javascript"}, skills[types.SkillProgramming])

	skills = extractor.ExtractSkills("Migrated services to Go last year")
	assert.Contains(t, skills[types.SkillProgramming], "go")
}

// TestExtractSkillsDeterministic 相同输入多次抽取结果一致
func TestExtractSkillsDeterministic(t *testing.T) {
	extractor := newTestExtractor()
	text := "python sql react aws mysql git agile"

	first := extractor.ExtractSkills(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, extractor.ExtractSkills(text))
	}
}

// TestExtractExperience 验证经历条目按日期行和空行切分
func TestExtractExperience(t *testing.T) {
	extractor := newTestExtractor()

	text := "John Doe\n\nEXPERIENCE\nSoftware Engineer at Acme 2019 - 2022\nBuilt internal tooling\nImproved the CI pipeline\n\nData Analyst at Initech 2017 - 2019\nAnalyzed sales data"
	entries := extractor.ExtractExperience(text)

	require.Len(t, entries, 2)
	assert.Equal(t, "Software Engineer at Acme 2019 - 2022", entries[0].RawText)
	assert.Equal(t, []string{"2019", "2022"}, entries[0].Dates)
	assert.Equal(t, []string{"Built internal tooling", "Improved the CI pipeline"}, entries[0].Description)
	assert.Equal(t, []string{"2017", "2019"}, entries[1].Dates)
}

// TestExtractExperienceMonthDates 月份加年份的日期也应命中
func TestExtractExperienceMonthDates(t *testing.T) {
	extractor := newTestExtractor()

	text := "EXPERIENCE\nBackend Engineer, Jan 2020 - March 2022\nMaintained payment APIs"
	entries := extractor.ExtractExperience(text)

	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Dates, "Jan 2020")
}

// TestExtractExperienceNoSection 缺少经历章节时返回空切片
func TestExtractExperienceNoSection(t *testing.T) {
	extractor := newTestExtractor()

	entries := extractor.ExtractExperience("Just a name and an email address")
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

// TestExtractEducation 验证教育条目抽取
func TestExtractEducation(t *testing.T) {
	extractor := newTestExtractor()

	text := "EDUCATION\nBachelor of Science in Computer Science, 2015\nSome award without degree words"
	entries := extractor.ExtractEducation(text)

	require.Len(t, entries, 1)
	assert.True(t, entries[0].DegreeMentioned)
	assert.Contains(t, entries[0].RawText, "Bachelor")
}

// TestCalculateExperienceYears 验证年限估算规则
func TestCalculateExperienceYears(t *testing.T) {
	extractor := newTestExtractor()

	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{"多个年份取极差", "Worked from 1998 to 2001, promoted in 2020", 22},
		{"不足两个不同年份", "Graduated in 2015", 0},
		{"同一年份重复出现", "2015 2015 2015", 0},
		{"无年份", "no dates here", 0},
		{"极差截断到50", "Born 1950, still active in 2024", 50},
		{"五位数字不算年份", "Reference code 20153 only", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractor.CalculateExperienceYears(tt.text))
		})
	}
}

// TestExtractKeywords 验证关键词频次统计和topN截断
func TestExtractKeywords(t *testing.T) {
	extractor := newTestExtractor()

	text := "Python python PYTHON data data engineer and the for"
	keywords := extractor.ExtractKeywords(text, 2)

	require.Len(t, keywords, 2)
	assert.Equal(t, types.KeywordCount{Word: "python", Count: 3}, keywords[0])
	assert.Equal(t, types.KeywordCount{Word: "data", Count: 2}, keywords[1])
}

// TestExtractKeywordsFiltering 停用词和短词不参与统计
func TestExtractKeywordsFiltering(t *testing.T) {
	extractor := newTestExtractor()

	keywords := extractor.ExtractKeywords("the and for a an api sql engineering", 10)

	words := make([]string, len(keywords))
	for i, kw := range keywords {
		words[i] = kw.Word
	}
	// "api"和"sql"长度不超过3, 停用词全部过滤
	assert.Equal(t, []string{"engineering"}, words)
}

// TestFormatSkills 验证分类技能的Markdown渲染
func TestFormatSkills(t *testing.T) {
	skills := types.SkillSet{
		types.SkillProgramming: {"python", "go"},
		types.SkillDataScience: {"machine learning"},
	}

	formatted := FormatSkills(skills)
	assert.Contains(t, formatted, "**Programming**: python, go")
	assert.Contains(t, formatted, "**Data Science**: machine learning")

	assert.Equal(t, "", FormatSkills(types.SkillSet{}))
}
