package types

// FileType 简历文件类型
type FileType string

const (
	// FileTypePDF PDF文件
	FileTypePDF FileType = "pdf"
	// FileTypeDOCX Word文档
	FileTypeDOCX FileType = "docx"
	// FileTypeText 纯文本文件
	FileTypeText FileType = "txt"
)

// ContactMetadata 从简历文本中提取的联系方式
// 全部基于清洗后的文本提取，创建后不再修改
type ContactMetadata struct {
	Emails   []string `json:"emails"`             // 邮箱，最多保留1个
	Phones   []string `json:"phones"`             // 电话，最多保留2个
	LinkedIn string   `json:"linkedin,omitempty"` // LinkedIn主页（首个匹配）
	GitHub   string   `json:"github,omitempty"`   // GitHub主页（首个匹配）
}

// ParsedDocument 文档解析结果
// NormalizedText 保证不含制表符、不含裸CR，空白已折叠
type ParsedDocument struct {
	RawText        string          `json:"-"`               // 提取器原始输出
	NormalizedText string          `json:"normalized_text"` // 清洗后的文本
	FileName       string          `json:"file_name"`
	FileType       FileType        `json:"file_type"`
	Metadata       ContactMetadata `json:"metadata"`
	WordCount      int             `json:"word_count"` // NormalizedText按空白切分的词数
	CharCount      int             `json:"char_count"` // NormalizedText的字符数
}

// SkillCategory 技能类别（固定枚举，与技能目录一一对应）
type SkillCategory string

const (
	SkillProgramming SkillCategory = "programming"
	SkillWeb         SkillCategory = "web"
	SkillDataScience SkillCategory = "data_science"
	SkillCloud       SkillCategory = "cloud"
	SkillDatabase    SkillCategory = "database"
	SkillTools       SkillCategory = "tools"
	SkillSoftSkills  SkillCategory = "soft_skills"
)

// SkillSet 类别到命中技能列表的映射
// 类别内顺序为技能目录顺序；无命中的类别不出现在映射中
type SkillSet map[SkillCategory][]string

// Total 返回所有类别命中技能的总数
func (s SkillSet) Total() int {
	total := 0
	for _, skills := range s {
		total += len(skills)
	}
	return total
}

// SectionName 简历章节名称
type SectionName string

const (
	SectionSummary        SectionName = "summary"
	SectionExperience     SectionName = "experience"
	SectionEducation      SectionName = "education"
	SectionSkills         SectionName = "skills"
	SectionProjects       SectionName = "projects"
	SectionCertifications SectionName = "certifications"
)

// Section 定位到的简历章节；缺失的章节不会出现（没有空占位）
type Section struct {
	Name        SectionName `json:"name"`
	Text        string      `json:"text"`
	BoundsValid bool        `json:"bounds_valid"` // 边界由启发式判定，可能不精确
}

// ExperienceEntry 工作经历条目
// 扫描经历章节时增量构建：遇到空行或新的含日期行时关闭当前条目
type ExperienceEntry struct {
	RawText     string   `json:"raw_text"`    // 条目的标题行（含日期）
	Dates       []string `json:"dates"`       // 行内命中的日期片段
	Description []string `json:"description"` // 标题行之后的描述行
}

// EducationEntry 教育经历条目，每个命中学位关键词的行一条
type EducationEntry struct {
	RawText         string `json:"raw_text"`
	DegreeMentioned bool   `json:"degree_mentioned"`
}

// KeywordCount 关键词及其出现频次
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// CategoryScore 单个ATS评分维度的得分与明细
type CategoryScore struct {
	Score  float64  `json:"score"` // [0,100]
	Issues []string `json:"issues"`

	// 维度专属的附加字段
	FoundSections   []string `json:"found_sections,omitempty"`
	MissingSections []string `json:"missing_sections,omitempty"`
	FoundKeywords   []string `json:"found_keywords,omitempty"`
	WordCount       int      `json:"word_count,omitempty"`
	FoundContact    []string `json:"found_contact,omitempty"`
	MissingContact  []string `json:"missing_contact,omitempty"`
}

// ATSResult ATS兼容性评分结果
// OverallScore 恒等于五个维度得分按固定权重的加权和（保留1位小数）
type ATSResult struct {
	OverallScore   float64                  `json:"overall_score"`
	CategoryScores map[string]CategoryScore `json:"category_scores"`
	Feedback       []string                 `json:"feedback"`
	Grade          string                   `json:"grade"` // A+/A/B/C/D
}

// SimilarSkill 近义技能对（缺失技能与简历技能的向量相似度超过阈值）
type SimilarSkill struct {
	Required   string  `json:"required"`
	ResumeHas  string  `json:"resume_has"`
	Similarity float64 `json:"similarity"`
}

// SkillGapResult 技能差距分析结果
type SkillGapResult struct {
	MatchingSkills  []string       `json:"matching_skills"`
	MissingSkills   []string       `json:"missing_skills"`
	SimilarSkills   []SimilarSkill `json:"similar_skills"`
	MatchPercentage float64        `json:"match_percentage"`
	TotalRequired   int            `json:"total_required"`
	TotalMatched    int            `json:"total_matched"`
}

// JobPosting 岗位描述
type JobPosting struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// JobMatch 单个岗位的匹配结果，Rank从1开始
type JobMatch struct {
	Job             JobPosting `json:"job"`
	SimilarityScore float64    `json:"similarity_score"`
	MatchPercentage float64    `json:"match_percentage"`
	Rank            int        `json:"rank"`
}

// MatchResult 简历与岗位描述的语义匹配结果
// SimilarityScore 为余弦相似度，契约上不限定在[0,1]
type MatchResult struct {
	SimilarityScore float64         `json:"similarity_score"`
	MatchPercentage float64         `json:"match_percentage"`
	Recommendations []string        `json:"recommendations"`
	SkillGap        *SkillGapResult `json:"skill_gap,omitempty"`
}

// AnalysisReport 一次完整分析的聚合结果
// 每个字段都是本次调用内产生的值，不跨调用共享
type AnalysisReport struct {
	RequestID       string                 `json:"request_id"`
	FileName        string                 `json:"file_name"`
	FileMD5         string                 `json:"file_md5"`
	Document        *ParsedDocument        `json:"document"`
	Sections        map[SectionName]string `json:"sections"`
	Skills          SkillSet               `json:"skills"`
	Experience      []ExperienceEntry      `json:"experience"`
	Education       []EducationEntry       `json:"education"`
	ExperienceYears float64                `json:"experience_years"`
	Entities        map[string][]string    `json:"entities,omitempty"`
	Keywords        []KeywordCount         `json:"keywords,omitempty"`
	ATS             *ATSResult             `json:"ats_score"`
	Match           *MatchResult           `json:"job_match,omitempty"`
	Summary         string                 `json:"summary,omitempty"`
	AnalyzedAt      int64                  `json:"analyzed_at"`
}

// AnalysisCompletedEvent 分析完成事件，发布到消息队列
type AnalysisCompletedEvent struct {
	RequestID       string   `json:"request_id"`
	FileName        string   `json:"file_name"`
	FileMD5         string   `json:"file_md5"`
	OverallScore    float64  `json:"overall_score"`
	Grade           string   `json:"grade"`
	MatchPercentage *float64 `json:"match_percentage,omitempty"`
	AnalyzedAt      int64    `json:"analyzed_at"`
}
