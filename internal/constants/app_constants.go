package constants

import "time"

const (
	// AnalyzerVersion 当前分析流水线版本，写入分析记录
	AnalyzerVersion = "1.0"

	// MaxUploadSizeMB 上传文件大小上限(MB)
	MaxUploadSizeMB = 10

	// MinPDFTextLength 布局感知提取结果的最小有效长度(字符)
	// 低于该值则回退到逐页提取
	MinPDFTextLength = 50

	// SkillSimilarityThreshold 近义技能的余弦相似度阈值
	SkillSimilarityThreshold = 0.7

	// ReportCacheDuration 分析报告缓存时长
	ReportCacheDuration = 24 * time.Hour
	// JDCacheDuration JD文本缓存时长
	JDCacheDuration = 24 * time.Hour
)
