package analyzer

import (
	"fmt"
	"strings"

	"resume-analyzer-go/internal/types"
)

// skillCatalogEntry 技能目录条目，保持类别扫描顺序固定
type skillCatalogEntry struct {
	Category types.SkillCategory
	Skills   []string
}

// techSkillCatalog 技能目录
// 类别顺序和类别内技能顺序都固定，保证抽取结果可复现
var techSkillCatalog = []skillCatalogEntry{
	{types.SkillProgramming, []string{
		"python", "java", "javascript", "typescript", "c++", "c#", "ruby", "go",
		"rust", "php", "swift", "kotlin", "scala", "r", "matlab", "sql", "bash",
	}},
	{types.SkillWeb, []string{
		"html", "css", "react", "angular", "vue.js", "node.js", "express",
		"django", "flask", "fastapi", "spring", "asp.net", "jquery",
	}},
	{types.SkillDataScience, []string{
		"machine learning", "deep learning", "neural networks", "nlp",
		"computer vision", "tensorflow", "pytorch", "keras", "scikit-learn",
		"pandas", "numpy", "matplotlib", "seaborn", "data analysis",
		"statistical analysis", "predictive modeling",
	}},
	{types.SkillCloud, []string{
		"aws", "azure", "gcp", "google cloud", "docker", "kubernetes",
		"terraform", "jenkins", "ci/cd", "devops", "lambda", "s3", "ec2",
	}},
	{types.SkillDatabase, []string{
		"mysql", "postgresql", "mongodb", "redis", "cassandra", "dynamodb",
		"oracle", "sql server", "sqlite", "elasticsearch",
	}},
	{types.SkillTools, []string{
		"git", "github", "gitlab", "jira", "confluence", "slack", "linux",
		"windows", "macos", "vscode", "jupyter", "postman",
	}},
	{types.SkillSoftSkills, []string{
		"leadership", "communication", "teamwork", "problem solving",
		"critical thinking", "project management", "agile", "scrum",
		"collaboration", "presentation", "negotiation",
	}},
}

// essentialSections ATS评分要求的必备章节
var essentialSections = []string{
	"experience", "education", "skills", "summary", "contact",
}

// commonATSKeywords 通用ATS关键词
var commonATSKeywords = []string{
	"experience", "education", "skills", "professional", "summary",
	"objective", "achievements", "responsibilities", "projects",
}

// contentActionVerbs 内容质量评分使用的动作动词
var contentActionVerbs = []string{
	"led", "managed", "developed", "created", "implemented",
	"designed", "achieved", "improved", "increased", "built",
}

// recommendationActionVerbs 生成改进建议时检查的动作动词
// 与评分用词表末位不同，两份词表独立维护
var recommendationActionVerbs = []string{
	"led", "managed", "developed", "created", "implemented",
	"designed", "achieved", "improved", "increased", "decreased",
}

// keywordStopwords 关键词统计排除的常见虚词
var keywordStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true, "for": true,
}

// FormatSkills 将分类技能渲染为Markdown片段，类别按目录顺序输出
func FormatSkills(skills types.SkillSet) string {
	var formatted []string
	for _, entry := range techSkillCatalog {
		found, ok := skills[entry.Category]
		if !ok || len(found) == 0 {
			continue
		}
		categoryName := titleCase(strings.ReplaceAll(string(entry.Category), "_", " "))
		formatted = append(formatted, fmt.Sprintf("**%s**: %s", categoryName, strings.Join(found, ", ")))
	}
	return strings.Join(formatted, "\n")
}

// FlattenSkills 将分类技能展平为单个列表，顺序与技能目录一致
func FlattenSkills(skills types.SkillSet) []string {
	var flat []string
	for _, entry := range techSkillCatalog {
		flat = append(flat, skills[entry.Category]...)
	}
	return flat
}

// titleCase 将每个单词首字母大写
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
