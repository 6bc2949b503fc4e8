package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/parser"
	"resume-analyzer-go/internal/types"
)

var (
	// entryDatePattern 经历条目的日期片段（四位年份或"月份 年份"）
	entryDatePattern = regexp.MustCompile(`(?i)(\d{4}|\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{4})`)

	// fullYearPattern 完整的四位年份，用于估算工作年限
	fullYearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	// degreePatterns 学位关键词，任一命中即认为该行提及学位
	degreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(bachelor|b\.s\.|b\.a\.|bs|ba|undergraduate)\b`),
		regexp.MustCompile(`(?i)\b(master|m\.s\.|m\.a\.|ms|ma|mba|graduate)\b`),
		regexp.MustCompile(`(?i)\b(phd|ph\.d\.|doctorate|doctoral)\b`),
		regexp.MustCompile(`(?i)\b(associate|a\.s\.|a\.a\.)\b`),
	}

	wordPattern = regexp.MustCompile(`\b\w+\b`)
)

// compiledSkillEntry 预编译后的技能模式，与目录条目一一对应
type compiledSkillEntry struct {
	Category types.SkillCategory
	Skills   []string
	Patterns []*regexp.Regexp
}

// LexicalExtractor 基于词典和正则的简历信息抽取器
// 无状态，技能模式在构造时编译一次，可并发使用
type LexicalExtractor struct {
	skillEntries []compiledSkillEntry
	logger       zerolog.Logger
}

// NewLexicalExtractor 创建抽取器并预编译技能目录的全部匹配模式
func NewLexicalExtractor(logger zerolog.Logger) *LexicalExtractor {
	entries := make([]compiledSkillEntry, 0, len(techSkillCatalog))
	for _, catalogEntry := range techSkillCatalog {
		patterns := make([]*regexp.Regexp, len(catalogEntry.Skills))
		for i, skill := range catalogEntry.Skills {
			// 技能统一用\b包裹;含非单词字符结尾的技能(如c++)因此无法命中，属已知限制
			patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(skill) + `\b`)
		}
		entries = append(entries, compiledSkillEntry{
			Category: catalogEntry.Category,
			Skills:   catalogEntry.Skills,
			Patterns: patterns,
		})
	}

	return &LexicalExtractor{
		skillEntries: entries,
		logger:       logger.With().Str("component", "lexical_extractor").Logger(),
	}
}

// ExtractSkills 从文本中抽取技能，按类别分组
// 大小写不敏感；类别内保持目录顺序；无命中的类别不出现在结果中
func (e *LexicalExtractor) ExtractSkills(text string) types.SkillSet {
	textLower := strings.ToLower(text)
	found := make(types.SkillSet)

	for _, entry := range e.skillEntries {
		var hits []string
		for i, pattern := range entry.Patterns {
			if pattern.MatchString(textLower) {
				hits = append(hits, entry.Skills[i])
			}
		}
		if len(hits) > 0 {
			found[entry.Category] = hits
		}
	}

	e.logger.Debug().Int("total_skills", found.Total()).Msg("技能抽取完成")
	return found
}

// ExtractExperience 从经历章节抽取工作经历条目
// 含日期的行开启新条目，空行或下一个日期行关闭当前条目
func (e *LexicalExtractor) ExtractExperience(text string) []types.ExperienceEntry {
	experiences := []types.ExperienceEntry{}

	section, ok := parser.FindSection(text, []string{"experience", "employment", "work history"})
	if !ok {
		return experiences
	}

	var current *types.ExperienceEntry
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if current != nil {
				experiences = append(experiences, *current)
				current = nil
			}
			continue
		}

		dates := entryDatePattern.FindAllString(line, -1)
		if len(dates) >= 1 {
			if current != nil {
				experiences = append(experiences, *current)
			}
			current = &types.ExperienceEntry{
				RawText:     line,
				Dates:       dates,
				Description: []string{},
			}
		} else if current != nil {
			current.Description = append(current.Description, line)
		}
	}
	if current != nil {
		experiences = append(experiences, *current)
	}

	return experiences
}

// ExtractEducation 从教育章节抽取提及学位的行
func (e *LexicalExtractor) ExtractEducation(text string) []types.EducationEntry {
	education := []types.EducationEntry{}

	section, ok := parser.FindSection(text, []string{"education", "academic"})
	if !ok {
		return education
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		for _, pattern := range degreePatterns {
			if pattern.MatchString(line) {
				education = append(education, types.EducationEntry{
					RawText:         line,
					DegreeMentioned: true,
				})
				break
			}
		}
	}

	return education
}

// CalculateExperienceYears 根据文本中出现的年份估算工作年限
// 取不同年份的最大值减最小值，结果截断到[0,50]；少于两个不同年份返回0
func (e *LexicalExtractor) CalculateExperienceYears(text string) float64 {
	matches := fullYearPattern.FindAllString(text, -1)

	distinct := make(map[string]bool, len(matches))
	minYear, maxYear := 0, 0
	for _, m := range matches {
		if distinct[m] {
			continue
		}
		distinct[m] = true

		year := 0
		for _, c := range m {
			year = year*10 + int(c-'0')
		}
		if minYear == 0 || year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}

	if len(distinct) < 2 {
		return 0
	}

	years := float64(maxYear - minYear)
	if years > 50 {
		years = 50
	}
	return years
}

// ExtractKeywords 统计高频关键词, 返回频次最高的topN个
// 过滤停用词和长度不超过3的词；同频词保持首次出现顺序
func (e *LexicalExtractor) ExtractKeywords(text string, topN int) []types.KeywordCount {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, w := range words {
		if keywordStopwords[w] || len(w) <= 3 {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if topN < 0 {
		topN = 0
	}
	if topN > len(order) {
		topN = len(order)
	}
	result := make([]types.KeywordCount, 0, topN)
	for _, w := range order[:topN] {
		result = append(result, types.KeywordCount{Word: w, Count: counts[w]})
	}
	return result
}
