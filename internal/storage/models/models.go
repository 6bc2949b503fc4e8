package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisRecord 一次简历分析的持久化记录
// 结构化明细以JSON列存储，便于Dashboard直接展示
type AnalysisRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"request_id"`
	FileName  string    `gorm:"type:varchar(255);not null" json:"file_name"`
	FileMD5   string    `gorm:"type:varchar(32);index;not null" json:"file_md5"`
	FileType  string    `gorm:"type:varchar(10)" json:"file_type"`
	WordCount int       `gorm:"default:0" json:"word_count"`
	CharCount int       `gorm:"default:0" json:"char_count"`

	// AnalyzerVersion 产出该记录的分析流水线版本
	AnalyzerVersion string `gorm:"type:varchar(16)" json:"analyzer_version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// ATS评分
	OverallScore float64 `gorm:"type:decimal(5,1)" json:"overall_score"`
	Grade        string  `gorm:"type:varchar(2)" json:"grade"`

	// 结构化明细(JSON)
	CategoryScoresJSON datatypes.JSON `gorm:"column:category_scores_json" json:"category_scores_json,omitempty"`
	SkillsJSON         datatypes.JSON `gorm:"column:skills_json" json:"skills_json,omitempty"`
	SectionsJSON       datatypes.JSON `gorm:"column:sections_json" json:"sections_json,omitempty"`
	EntitiesJSON       datatypes.JSON `gorm:"column:entities_json" json:"entities_json,omitempty"`

	// 岗位匹配(可选)
	MatchPercentage *float64       `gorm:"type:decimal(5,1)" json:"match_percentage,omitempty"`
	MatchJSON       datatypes.JSON `gorm:"column:match_json" json:"match_json,omitempty"`

	// 对象存储位置
	OriginalObjectKey string `gorm:"type:varchar(512)" json:"original_object_key,omitempty"`
	ReportObjectKey   string `gorm:"type:varchar(512)" json:"report_object_key,omitempty"`
}

// TableName 指定表名
func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// JobPostingRecord 岗位描述记录, 与向量库中的点一一对应
type JobPostingRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID       string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"job_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	PointID     string    `gorm:"type:varchar(36);index" json:"point_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (JobPostingRecord) TableName() string {
	return "job_postings"
}
