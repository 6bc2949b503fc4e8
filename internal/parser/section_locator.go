package parser

import (
	"regexp"
	"strings"

	"resume-analyzer-go/internal/types"
)

// 章节定位的启发式常量
const (
	// headingLookaheadOffset 从章节起点向后跳过的字符数，再开始找下一个标题
	// 避免把章节自身的标题识别为下一章节的边界
	headingLookaheadOffset = 50
)

// headingLinePattern 类标题行：换行之间连续10个以上的大写字母或空格
var headingLinePattern = regexp.MustCompile(`\n[A-Z\s]{10,}\n`)

// sectionPatterns 各章节的标题关键词，顺序固定
// 边界检测是启发式的，非常规排版的简历上可能多截或少截，属已接受的不精确
var sectionPatterns = []struct {
	Name    types.SectionName
	Pattern *regexp.Regexp
}{
	{types.SectionSummary, regexp.MustCompile(`(professional summary|summary|profile|objective)`)},
	{types.SectionExperience, regexp.MustCompile(`(work experience|experience|employment history|professional experience)`)},
	{types.SectionEducation, regexp.MustCompile(`(education|academic background|qualifications)`)},
	{types.SectionSkills, regexp.MustCompile(`(skills|technical skills|core competencies|expertise)`)},
	{types.SectionProjects, regexp.MustCompile(`(projects|portfolio)`)},
	{types.SectionCertifications, regexp.MustCompile(`(certifications|certificates|licenses)`)},
}

// sectionSpan 章节在原文中的位置
type sectionSpan struct {
	name       types.SectionName
	start, end int
	terminated bool // 是否由后续标题截断（而非到文本末尾）
}

// FindSection 按关键词定位章节正文
// 依次尝试每个关键词的首个大小写不敏感全词匹配，第一个命中的关键词胜出；
// 章节到向后偏移之后的下一个类标题行为止，找不到则到文本末尾
func FindSection(text string, keywords []string) (string, bool) {
	for _, keyword := range keywords {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
		if err != nil {
			continue
		}

		loc := pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}

		start := loc[0]
		end := len(text)

		searchFrom := start + headingLookaheadOffset
		if searchFrom < len(text) {
			if next := headingLinePattern.FindStringIndex(text[searchFrom:]); next != nil {
				end = searchFrom + next[0]
			}
		}

		return text[start:end], true
	}

	return "", false
}

// locateSpans 计算每个命中章节的边界
// 章节从标题首次出现处开始，到偏移之后最近的其他章节标题为止
func locateSpans(text string) []sectionSpan {
	textLower := strings.ToLower(text)
	var spans []sectionSpan

	for _, sp := range sectionPatterns {
		loc := sp.Pattern.FindStringIndex(textLower)
		if loc == nil {
			continue
		}

		start := loc[0]
		end := len(text)
		terminated := false

		searchFrom := start + headingLookaheadOffset
		if searchFrom < len(textLower) {
			for _, other := range sectionPatterns {
				if other.Name == sp.Name {
					continue
				}
				if next := other.Pattern.FindStringIndex(textLower[searchFrom:]); next != nil {
					candidate := searchFrom + next[0]
					if candidate < end {
						end = candidate
						terminated = true
					}
				}
			}
		}

		spans = append(spans, sectionSpan{name: sp.Name, start: start, end: end, terminated: terminated})
	}

	return spans
}

// ExtractSections 识别并提取常见简历章节
// 缺失的章节不出现在结果中（没有空占位）
func ExtractSections(text string) map[types.SectionName]string {
	sections := make(map[types.SectionName]string)
	for _, span := range locateSpans(text) {
		sections[span.name] = strings.TrimSpace(text[span.start:span.end])
	}
	return sections
}

// LocateSections 返回带边界标记的章节列表，顺序与章节目录一致
// 未被后续标题截断的章节（一直延伸到文本末尾）边界视为不可靠
func LocateSections(text string) []types.Section {
	spans := locateSpans(text)
	result := make([]types.Section, 0, len(spans))

	for _, span := range spans {
		result = append(result, types.Section{
			Name:        span.name,
			Text:        strings.TrimSpace(text[span.start:span.end]),
			BoundsValid: span.terminated,
		})
	}

	return result
}
