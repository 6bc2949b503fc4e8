package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"resume-analyzer-go/internal/types"
)

// 评分维度名称, 同时作为结果映射的键
const (
	categoryFormat   = "format"
	categorySections = "sections"
	categoryKeywords = "keywords"
	categoryContent  = "content"
	categoryContact  = "contact"
)

// categoryWeights 各维度固定权重，总和恒为1
var categoryWeights = map[string]float64{
	categoryFormat:   0.30,
	categorySections: 0.25,
	categoryKeywords: 0.20,
	categoryContent:  0.15,
	categoryContact:  0.10,
}

// categoryOrder 维度的计算与反馈输出顺序
var categoryOrder = []string{
	categoryFormat, categorySections, categoryKeywords, categoryContent, categoryContact,
}

var (
	atsSpecialCharPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:()\-@/]`)
	digitRunPattern       = regexp.MustCompile(`\d+`)
	atsEmailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	atsPhonePattern       = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	locationPattern       = regexp.MustCompile(`,\s*[A-Z]{2}\b`)
)

// ATSScorer 简历ATS兼容性评分器
// 五个维度独立计算后加权汇总，权重固定；相同输入产生相同结果
type ATSScorer struct {
	logger zerolog.Logger
}

// NewATSScorer 创建评分器
func NewATSScorer(logger zerolog.Logger) *ATSScorer {
	return &ATSScorer{
		logger: logger.With().Str("component", "ats_scorer").Logger(),
	}
}

// CalculateScore 计算简历的ATS兼容性评分
// jobDescription 为空串时关键词维度仅使用通用词表
func (s *ATSScorer) CalculateScore(resumeText string, jobDescription string) *types.ATSResult {
	scores := map[string]types.CategoryScore{
		categoryFormat:   s.calculateFormatScore(resumeText),
		categorySections: s.calculateSectionScore(resumeText),
		categoryKeywords: s.calculateKeywordScore(resumeText, jobDescription),
		categoryContent:  s.calculateContentScore(resumeText),
		categoryContact:  s.calculateContactScore(resumeText),
	}

	overall := 0.0
	for category, weight := range categoryWeights {
		overall += scores[category].Score * weight
	}

	result := &types.ATSResult{
		OverallScore:   math.Round(overall*10) / 10,
		CategoryScores: scores,
		Feedback:       s.generateFeedback(scores),
		Grade:          s.getGrade(overall), // 等级由未舍入的总分决定
	}

	s.logger.Debug().
		Float64("overall_score", result.OverallScore).
		Str("grade", result.Grade).
		Msg("ATS评分完成")

	return result
}

// calculateFormatScore 格式维度: 特殊字符、制表符和行长度
func (s *ATSScorer) calculateFormatScore(text string) types.CategoryScore {
	score := 100.0
	issues := []string{}

	specialChars := len(atsSpecialCharPattern.FindAllString(text, -1))
	if specialChars > 50 {
		score -= 15
		issues = append(issues, "Too many special characters")
	}

	// 制表符通常意味着多栏布局，ATS解析困难
	if strings.Contains(text, "\t") {
		score -= 10
		issues = append(issues, "Contains tabs (may indicate columns)")
	}

	lines := strings.Split(text, "\n")
	totalLen := 0
	for _, line := range lines {
		totalLen += len(line)
	}
	lineCount := len(lines)
	if lineCount < 1 {
		lineCount = 1
	}
	if float64(totalLen)/float64(lineCount) < 20 {
		score -= 10
		issues = append(issues, "Inconsistent line formatting")
	}

	if score > 80 {
		issues = append(issues, "Clean, ATS-friendly formatting")
	}

	if score < 0 {
		score = 0
	}
	return types.CategoryScore{Score: score, Issues: issues}
}

// calculateSectionScore 章节完整度维度
func (s *ATSScorer) calculateSectionScore(text string) types.CategoryScore {
	textLower := strings.ToLower(text)

	foundSections := []string{}
	missingSections := []string{}
	for _, section := range essentialSections {
		// 章节标题出现在行首或后跟冒号都算命中
		if strings.Contains(textLower, "\n"+section) || strings.Contains(textLower, section+":") {
			foundSections = append(foundSections, section)
		} else {
			missingSections = append(missingSections, section)
		}
	}

	score := float64(len(foundSections)) / float64(len(essentialSections)) * 100

	issues := []string{}
	if len(missingSections) > 0 {
		issues = append(issues, "Missing sections: "+strings.Join(missingSections, ", "))
	}
	if len(foundSections) == len(essentialSections) {
		issues = append(issues, "All essential sections present")
	}

	return types.CategoryScore{
		Score:           score,
		Issues:          issues,
		FoundSections:   foundSections,
		MissingSections: missingSections,
	}
}

// calculateKeywordScore 关键词维度
// 提供岗位描述时，基础分与岗位词覆盖率按0.4/0.6混合
func (s *ATSScorer) calculateKeywordScore(text string, jobDescription string) types.CategoryScore {
	textLower := strings.ToLower(text)

	foundKeywords := []string{}
	for _, keyword := range commonATSKeywords {
		if strings.Contains(textLower, keyword) {
			foundKeywords = append(foundKeywords, keyword)
		}
	}

	baseScore := float64(len(foundKeywords)) / float64(len(commonATSKeywords)) * 100

	issues := []string{}
	if jobDescription != "" {
		jdWords := make(map[string]bool)
		for _, w := range wordPattern.FindAllString(strings.ToLower(jobDescription), -1) {
			if len(w) > 4 { // 过滤短词
				jdWords[w] = true
			}
		}

		resumeWords := make(map[string]bool)
		for _, w := range wordPattern.FindAllString(textLower, -1) {
			resumeWords[w] = true
		}

		matchingCount := 0
		for w := range jdWords {
			if resumeWords[w] {
				matchingCount++
			}
		}

		jdTotal := len(jdWords)
		if jdTotal < 1 {
			jdTotal = 1
		}
		matchRatio := float64(matchingCount) / float64(jdTotal)

		baseScore = baseScore*0.4 + matchRatio*100*0.6

		if matchRatio < 0.3 {
			issues = append(issues, "Low keyword match with job description")
		} else {
			issues = append(issues, fmt.Sprintf("Good keyword match: %d relevant terms", matchingCount))
		}
	} else {
		issues = append(issues, "Using general ATS keywords (no job description provided)")
	}

	if baseScore > 100 {
		baseScore = 100
	}
	return types.CategoryScore{
		Score:         baseScore,
		Issues:        issues,
		FoundKeywords: foundKeywords,
	}
}

// calculateContentScore 内容质量维度: 篇幅、量化指标和动作动词
func (s *ATSScorer) calculateContentScore(text string) types.CategoryScore {
	score := 100.0
	issues := []string{}

	wordCount := len(strings.Fields(text))
	if wordCount < 200 {
		score -= 30
		issues = append(issues, "Resume too short (< 200 words)")
	} else if wordCount > 1000 {
		score -= 15
		issues = append(issues, "Resume too long (> 1000 words)")
	} else {
		issues = append(issues, "Appropriate length")
	}

	numbers := digitRunPattern.FindAllString(text, -1)
	if len(numbers) < 5 {
		score -= 20
		issues = append(issues, "Add more quantifiable achievements")
	} else {
		issues = append(issues, "Good use of metrics")
	}

	textLower := strings.ToLower(text)
	verbCount := 0
	for _, verb := range contentActionVerbs {
		if strings.Contains(textLower, verb) {
			verbCount++
		}
	}
	if verbCount < 3 {
		score -= 15
		issues = append(issues, "Use more action verbs")
	} else {
		issues = append(issues, "Strong action verbs present")
	}

	if score < 0 {
		score = 0
	}
	return types.CategoryScore{
		Score:     score,
		Issues:    issues,
		WordCount: wordCount,
	}
}

// calculateContactScore 联系方式维度: 各项独立加分
func (s *ATSScorer) calculateContactScore(text string) types.CategoryScore {
	score := 0.0
	foundContact := []string{}
	missingContact := []string{}

	if atsEmailPattern.MatchString(text) {
		score += 40
		foundContact = append(foundContact, "email")
	} else {
		missingContact = append(missingContact, "email")
	}

	if atsPhonePattern.MatchString(text) {
		score += 30
		foundContact = append(foundContact, "phone")
	} else {
		missingContact = append(missingContact, "phone")
	}

	if strings.Contains(strings.ToLower(text), "linkedin.com/in/") {
		score += 20
		foundContact = append(foundContact, "linkedin")
	}

	if locationPattern.MatchString(text) {
		score += 10
		foundContact = append(foundContact, "location")
	}

	issues := []string{}
	if len(missingContact) > 0 {
		issues = append(issues, "Missing: "+strings.Join(missingContact, ", "))
	}
	if score >= 70 {
		issues = append(issues, "Complete contact information")
	}

	return types.CategoryScore{
		Score:          score,
		Issues:         issues,
		FoundContact:   foundContact,
		MissingContact: missingContact,
	}
}

// generateFeedback 按维度固定顺序生成反馈
func (s *ATSScorer) generateFeedback(scores map[string]types.CategoryScore) []string {
	feedback := []string{}

	for _, category := range categoryOrder {
		data := scores[category]
		if data.Score < 60 {
			firstIssue := "Needs improvement"
			if len(data.Issues) > 0 {
				firstIssue = data.Issues[0]
			}
			feedback = append(feedback, fmt.Sprintf("⚠️ %s: %s", strings.ToUpper(category), firstIssue))
		} else if data.Score >= 80 {
			feedback = append(feedback, fmt.Sprintf("✅ %s: Excellent", strings.ToUpper(category)))
		}
	}

	if len(feedback) == 0 {
		return []string{"Overall good ATS compatibility"}
	}
	return feedback
}

// getGrade 由总分换算等级
func (s *ATSScorer) getGrade(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	default:
		return "D"
	}
}
