package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigMissingFile 配置文件不存在时报错
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// TestLoadConfigAppliesDefaults 未设置的配置项被填充为默认值
func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  address: \":9090\"\nmysql:\n  host: \"db.internal\"\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// 文件中显式设置的值保留
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)

	// 未设置的值回落到默认
	assert.Equal(t, "text-embedding-v3", cfg.Aliyun.Embedding.Model)
	assert.Equal(t, 1024, cfg.Aliyun.Embedding.Dimensions)
	assert.Equal(t, 5, cfg.Analyzer.DefaultTopK)
	assert.Equal(t, 0.7, cfg.Analyzer.SkillSimilarityThreshold)
	assert.Equal(t, 3306, cfg.MySQL.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 365, cfg.Redis.MD5RecordExpireDays)
}

// TestLoadConfigEnvOverride 环境变量覆盖文件中的API Key
func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("aliyun:\n  api_key: \"from-file\"\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("ALIYUN_API_KEY", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Aliyun.APIKey)
}

// TestDefaultConfig 默认配置可直接用于测试场景
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotEmpty(t, cfg.Aliyun.APIKey)
	assert.Equal(t, 10, cfg.Aliyun.Embedding.MaxBatchSize)
	assert.Equal(t, 10, cfg.EntityService.TimeoutSeconds)
}
