package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"resume-analyzer-go/internal/config"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadOriginalResume 归档原始简历文件，返回对象键
	UploadOriginalResume(ctx context.Context, fileMD5, fileExt string, data []byte) (string, error)

	// GetOriginalResume 下载归档的原始简历文件
	GetOriginalResume(ctx context.Context, objectKey string) ([]byte, error)

	// UploadAnalysisReport 上传分析报告JSON，返回对象键
	UploadAnalysisReport(ctx context.Context, requestID string, reportJSON []byte) (string, error)

	// GetAnalysisReport 下载分析报告JSON
	GetAnalysisReport(ctx context.Context, objectKey string) ([]byte, error)

	// GetPresignedURL 获取原始文件的预签名下载URL
	GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)

	// DeleteOriginalResume 删除归档的原始简历文件
	DeleteOriginalResume(ctx context.Context, objectKey string) error
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能
type MinIO struct {
	client          *minio.Client
	cfg             *config.MinIOConfig
	originalsBucket string
	reportsBucket   string
	logger          *log.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing client: endpoint=%s, originalsBucket=%s, reportsBucket=%s",
		cfg.Endpoint, cfg.OriginalsBucket, cfg.ReportsBucket)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Printf("[MinIO] Initialization failed: %v", err)
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	originalsBucket := cfg.OriginalsBucket
	if originalsBucket == "" {
		originalsBucket = "resume-originals"
	}
	reportsBucket := cfg.ReportsBucket
	if reportsBucket == "" {
		reportsBucket = "analysis-reports"
	}

	m := &MinIO{
		client:          client,
		cfg:             cfg,
		originalsBucket: originalsBucket,
		reportsBucket:   reportsBucket,
		logger:          logger,
	}

	if err := m.ensureBucketExists(originalsBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保原始简历存储桶 %s 存在失败: %w", originalsBucket, err)
	}
	if err := m.ensureBucketExists(reportsBucket, cfg.Location); err != nil {
		return nil, fmt.Errorf("确保分析报告存储桶 %s 存在失败: %w", reportsBucket, err)
	}

	// 生命周期规则设置失败不阻塞启动
	if cfg.OriginalFileExpireDays > 0 || cfg.ReportExpireDays > 0 {
		if err := m.setupLifecycleRules(context.Background()); err != nil {
			logger.Printf("[MinIO] Warning: failed to set up lifecycle rules: %v", err)
		}
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		m.logger.Printf("[MinIO] Bucket %s does not exist, creating...", bucketName)
		if err := m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] Bucket %s created.", bucketName)
	}
	return nil
}

// setupLifecycleRules 设置对象生命周期规则
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	if m.cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalsBucket, "expire-originals", m.cfg.OriginalFileExpireDays); err != nil {
			return fmt.Errorf("为原始简历存储桶 %s 设置生命周期失败: %w", m.originalsBucket, err)
		}
	}
	if m.cfg.ReportExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.reportsBucket, "expire-reports", m.cfg.ReportExpireDays); err != nil {
			return fmt.Errorf("为分析报告存储桶 %s 设置生命周期失败: %w", m.reportsBucket, err)
		}
	}
	return nil
}

// setupBucketLifecycle 为指定存储桶设置生命周期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	lc := lifecycle.NewConfiguration()
	lc.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	if err := m.client.SetBucketLifecycle(ctx, bucketName, lc); err != nil {
		return err
	}
	m.logger.Printf("[MinIO] Lifecycle rule set for bucket %s: ID=%s, ExpiryDays=%d", bucketName, ruleID, expiryDays)
	return nil
}

// UploadOriginalResume 归档原始简历文件到originalsBucket
// 对象键形如 originals/{md5}{ext}，相同文件重复上传会覆盖同一对象
func (m *MinIO) UploadOriginalResume(ctx context.Context, fileMD5, fileExt string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("originals/%s%s", fileMD5, fileExt)
	contentType := getContentType(fileExt)

	info, err := m.client.PutObject(ctx, m.originalsBucket, objectKey,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("上传原始简历 %s/%s 失败: %w", m.originalsBucket, objectKey, err)
	}

	m.logger.Printf("[MinIO] Uploaded original resume %s, ETag: %s, Size: %d", objectKey, info.ETag, info.Size)
	return objectKey, nil
}

// GetOriginalResume 下载归档的原始简历文件
func (m *MinIO) GetOriginalResume(ctx context.Context, objectKey string) ([]byte, error) {
	return m.downloadObject(ctx, m.originalsBucket, objectKey)
}

// UploadAnalysisReport 上传分析报告JSON到reportsBucket
// 对象键形如 reports/{requestID}.json
func (m *MinIO) UploadAnalysisReport(ctx context.Context, requestID string, reportJSON []byte) (string, error) {
	objectKey := fmt.Sprintf("reports/%s.json", requestID)

	_, err := m.client.PutObject(ctx, m.reportsBucket, objectKey,
		bytes.NewReader(reportJSON), int64(len(reportJSON)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("上传分析报告 %s/%s 失败: %w", m.reportsBucket, objectKey, err)
	}

	m.logger.Printf("[MinIO] Uploaded analysis report %s, Size: %d", objectKey, len(reportJSON))
	return objectKey, nil
}

// GetAnalysisReport 下载分析报告JSON
func (m *MinIO) GetAnalysisReport(ctx context.Context, objectKey string) ([]byte, error) {
	return m.downloadObject(ctx, m.reportsBucket, objectKey)
}

// downloadObject 从指定存储桶下载对象
func (m *MinIO) downloadObject(ctx context.Context, bucketName, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucketName, objectKey, err)
	}
	defer obj.Close()

	// Stat能提前暴露对象不存在或无权限的问题
	stat, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", bucketName, objectKey, err)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucketName, objectKey, err)
	}
	m.logger.Printf("[MinIO] Downloaded %d bytes from %s/%s (ContentType=%s)", len(data), bucketName, objectKey, stat.ContentType)
	return data, nil
}

// GetPresignedURL 获取原始文件的预签名下载URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.originalsBucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成MinIO预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}

// DeleteOriginalResume 删除归档的原始简历文件
func (m *MinIO) DeleteOriginalResume(ctx context.Context, objectKey string) error {
	if err := m.client.RemoveObject(ctx, m.originalsBucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("删除对象 %s 失败: %w", objectKey, err)
	}
	m.logger.Printf("[MinIO] Deleted object %s from bucket %s", objectKey, m.originalsBucket)
	return nil
}

// getContentType 按文件扩展名返回MIME类型
func getContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
