package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/constants"
	"resume-analyzer-go/internal/tracing"
)

var redisTracer = otel.Tracer("resume-analyzer-go/storage/redis")

// ErrNotFound 表示Redis中不存在请求的键
var ErrNotFound = redis.Nil

// checkAndAddMD5Script 原子地检查并添加文件MD5
// 已存在返回1；否则添加并设置集合过期时间，返回0
const checkAndAddMD5Script = `
local exists = redis.call('SISMEMBER', KEYS[1], ARGV[1])
if exists == 1 then
    return 1
end
redis.call('SADD', KEYS[1], ARGV[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
return 0
`

// Redis 提供缓存与文件去重功能
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端适配器
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("Redis配置不能为空")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	})

	// 为Redis命令启用OpenTelemetry追踪
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("启用Redis追踪失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("连接Redis失败: %w", err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	return r.Client.Close()
}

// Ping 检查Redis连接健康状态
func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// GetMD5ExpireDuration 返回MD5去重记录的过期时间
func (r *Redis) GetMD5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// CheckAndAddFileMD5 原子地检查文件MD5是否已存在，不存在则添加
// 返回true表示该MD5此前已存在
func (r *Redis) CheckAndAddFileMD5(ctx context.Context, fileMD5 string) (bool, error) {
	ctx, span := redisTracer.Start(ctx, "Redis.CheckAndAddFileMD5",
		trace.WithAttributes(
			attribute.String("file.md5", fileMD5),
			attribute.String("redis.key", tracing.SafeRedisKey(constants.KeyFileMD5Set)),
		))
	defer span.End()

	expireSeconds := int64(r.GetMD5ExpireDuration().Seconds())
	result, err := r.Client.Eval(ctx, checkAndAddMD5Script,
		[]string{constants.KeyFileMD5Set}, fileMD5, expireSeconds).Int64()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("执行MD5去重脚本失败: %w", err)
	}

	exists := result == 1
	span.SetAttributes(attribute.Bool("file.md5.exists", exists))
	return exists, nil
}

// RemoveFileMD5 从去重集合中移除文件MD5
// 用于分析失败后允许重新提交
func (r *Redis) RemoveFileMD5(ctx context.Context, fileMD5 string) error {
	if err := r.Client.SRem(ctx, constants.KeyFileMD5Set, fileMD5).Err(); err != nil {
		return fmt.Errorf("移除文件MD5失败: %w", err)
	}
	return nil
}

// CacheAnalysisReport 按文件MD5缓存分析报告JSON
func (r *Redis) CacheAnalysisReport(ctx context.Context, fileMD5 string, reportJSON []byte) error {
	key := fmt.Sprintf(constants.KeyAnalysisReport, fileMD5)
	if err := r.Client.Set(ctx, key, reportJSON, constants.ReportCacheDuration).Err(); err != nil {
		return fmt.Errorf("缓存分析报告失败: %w", err)
	}
	return nil
}

// GetAnalysisReport 按文件MD5读取缓存的分析报告JSON
// 缓存未命中返回ErrNotFound
func (r *Redis) GetAnalysisReport(ctx context.Context, fileMD5 string) ([]byte, error) {
	key := fmt.Sprintf(constants.KeyAnalysisReport, fileMD5)
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("读取分析报告缓存失败: %w", err)
	}
	return data, nil
}

// SetJobDescription 缓存岗位描述文本
func (r *Redis) SetJobDescription(ctx context.Context, jobID, text string) error {
	key := fmt.Sprintf(constants.KeyJobDescriptionText, jobID)
	if err := r.Client.Set(ctx, key, text, constants.JDCacheDuration).Err(); err != nil {
		return fmt.Errorf("缓存岗位描述失败: %w", err)
	}
	return nil
}

// GetJobDescription 读取缓存的岗位描述文本
// 缓存未命中返回ErrNotFound
func (r *Redis) GetJobDescription(ctx context.Context, jobID string) (string, error) {
	key := fmt.Sprintf(constants.KeyJobDescriptionText, jobID)
	text, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("读取岗位描述缓存失败: %w", err)
	}
	return text, nil
}
