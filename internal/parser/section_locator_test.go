package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/types"
)

// sectionedResumeText 构造含四个常见章节的简历文本，章节体刻意避开其它章节关键词
func sectionedResumeText() string {
	return "JOHN DOE\n\n" +
		"PROFESSIONAL SUMMARY\n" +
		"Backend engineer focused on distributed systems and reliability.\n\n" +
		"EXPERIENCE\n" +
		"Software Engineer at Acme 2019 - 2022\n" +
		"Built internal tooling and improved the CI pipeline.\n\n" +
		"EDUCATION\n" +
		"Bachelor of Science in Computer Science, 2011 - 2015\n" +
		"Graduated with honors, GPA 3.8\n\n" +
		"SKILLS\n" +
		"python go docker kubernetes"
}

// TestFindSection 关键词命中后章节延伸到下一个类标题行
func TestFindSection(t *testing.T) {
	text := "SUMMARY OF QUALIFICATIONS\n" +
		"Seasoned engineer building resilient backend services for a decade.\n\n" +
		"WORK EXPERIENCE HISTORY\n" +
		"Acme Corp"

	section, found := FindSection(text, []string{"summary"})
	require.True(t, found)
	assert.Contains(t, section, "Seasoned engineer")
	assert.NotContains(t, section, "Acme Corp")
}

// TestFindSectionKeywordFallback 第一个关键词未命中时尝试后续关键词
func TestFindSectionKeywordFallback(t *testing.T) {
	text := "CAREER OBJECTIVE\nJoin a platform team and own the service mesh rollout plan."

	section, found := FindSection(text, []string{"profile", "objective"})
	require.True(t, found)
	assert.Contains(t, section, "service mesh")
}

// TestFindSectionMissing 无任何关键词命中
func TestFindSectionMissing(t *testing.T) {
	_, found := FindSection("plain text without headings", []string{"publications"})
	assert.False(t, found)
}

// TestExtractSections 识别各章节且互不越界
func TestExtractSections(t *testing.T) {
	sections := ExtractSections(sectionedResumeText())

	require.Contains(t, sections, types.SectionSummary)
	require.Contains(t, sections, types.SectionExperience)
	require.Contains(t, sections, types.SectionEducation)
	require.Contains(t, sections, types.SectionSkills)

	assert.Contains(t, sections[types.SectionSummary], "distributed systems")
	assert.NotContains(t, sections[types.SectionSummary], "Acme")

	assert.Contains(t, sections[types.SectionExperience], "Acme")
	assert.NotContains(t, sections[types.SectionExperience], "Bachelor")

	assert.Contains(t, sections[types.SectionEducation], "Bachelor of Science")
	assert.Contains(t, sections[types.SectionSkills], "kubernetes")
}

// TestExtractSectionsMissing 缺失的章节不产生空占位
func TestExtractSectionsMissing(t *testing.T) {
	sections := ExtractSections("EXPERIENCE\nSoftware Engineer at Acme building billing infrastructure since 2019")

	assert.Contains(t, sections, types.SectionExperience)
	assert.NotContains(t, sections, types.SectionCertifications)
	assert.NotContains(t, sections, types.SectionProjects)
}

// TestLocateSectionsBounds 被后续标题截断的章节边界可靠，末尾章节边界不可靠
func TestLocateSectionsBounds(t *testing.T) {
	located := LocateSections(sectionedResumeText())
	require.Len(t, located, 4)

	byName := make(map[types.SectionName]types.Section, len(located))
	for _, section := range located {
		byName[section.Name] = section
	}

	assert.True(t, byName[types.SectionSummary].BoundsValid)
	assert.True(t, byName[types.SectionExperience].BoundsValid)
	assert.True(t, byName[types.SectionEducation].BoundsValid)
	assert.False(t, byName[types.SectionSkills].BoundsValid)
}
