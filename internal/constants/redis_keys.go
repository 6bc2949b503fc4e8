package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// FileModulePrefix 文件模块
	FileModulePrefix = "file"
	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"
	// ReportModulePrefix 分析报告模块
	ReportModulePrefix = "report"

	// EntityText 文本实体
	EntityText = "text"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityJSON JSON文档实体
	EntityJSON = "json"

	// KeyFileMD5Set 上传文件MD5集合，用于快速去重 (SET)
	// 格式: app:file:dedup_set
	KeyFileMD5Set = AppPrefix + ":" + FileModulePrefix + ":" + EntityDedupSet

	// KeyJobDescriptionText JD文本缓存 (STRING)
	// 格式: app:job:text:{jobID}
	KeyJobDescriptionText = AppPrefix + ":" + JobModulePrefix + ":" + EntityText + ":%s"

	// KeyAnalysisReport 按文件MD5缓存的分析报告 (STRING, JSON)
	// 格式: app:report:json:{md5}
	KeyAnalysisReport = AppPrefix + ":" + ReportModulePrefix + ":" + EntityJSON + ":%s"
)
