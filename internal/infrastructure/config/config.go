package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Generation GenerationConfig `mapstructure:"generation"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Client     ClientConfig     `mapstructure:"client"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodySize  int64         `mapstructure:"max_body_size"` // 请求体上限（字节）
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// OpenAIConfig 上游图像服务配置
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`  // 为空时接口返回配置错误
	BaseURL string `mapstructure:"base_url"` // OpenAI兼容服务地址
	Model   string `mapstructure:"model"`    // 为空时由上游选择默认模型
}

// GenerationConfig 服务端上传校验配置
type GenerationConfig struct {
	MaxFileSizeMB   int64    `mapstructure:"max_file_size_mb"`
	AllowedTypes    []string `mapstructure:"allowed_types"`
	MultipartMemory int64    `mapstructure:"multipart_memory"` // 解析multipart时的内存上限
}

// MaxFileSizeBytes 最大文件字节数
func (c *GenerationConfig) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	HealthCheckPath string `mapstructure:"health_check_path"`
}

// ClientConfig 命令行客户端配置
type ClientConfig struct {
	ServerURL string `mapstructure:"server_url"`
}

// IsConfigured 是否配置了上游凭证
func (c *OpenAIConfig) IsConfigured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// LoadConfig 加载配置
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// 设置环境变量
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 凭证沿用上游SDK的环境变量名
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	setDefaults(v)

	// 配置文件可选，仅靠环境变量也能启动
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认值
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.max_body_size", 32<<20)

	// 日志默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// 上游默认值
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "")

	// 上传校验默认值
	v.SetDefault("generation.max_file_size_mb", 4)
	v.SetDefault("generation.allowed_types", []string{"image/png", "image/jpeg"})
	v.SetDefault("generation.multipart_memory", 32<<20)

	// 监控默认值
	v.SetDefault("monitoring.health_check_path", "/health")

	// 客户端默认值
	v.SetDefault("client.server_url", "http://localhost:8080")
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLogLevels[config.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Generation.MaxFileSizeMB <= 0 {
		return fmt.Errorf("invalid max file size: %d", config.Generation.MaxFileSizeMB)
	}
	if len(config.Generation.AllowedTypes) == 0 {
		return fmt.Errorf("at least one allowed image type is required")
	}
	if config.Server.MaxBodySize > 0 && config.Server.MaxBodySize <= config.Generation.MaxFileSizeBytes() {
		return fmt.Errorf("server max body size %d must exceed max file size %d",
			config.Server.MaxBodySize, config.Generation.MaxFileSizeBytes())
	}

	return nil
}

// GetAddress 获取服务器地址
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
