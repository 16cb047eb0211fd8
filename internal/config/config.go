package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix 是所有环境变量覆盖项的前缀，例如 FOLIO_DATABASE_PATH。
const EnvPrefix = "FOLIO_"

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string `koanf:"listen_addr" yaml:"listen_addr"`
	Port          string `koanf:"port" yaml:"port"`
	DatabasePath  string `koanf:"database_path" yaml:"database_path"`
	SessionSecret string `koanf:"session_secret" yaml:"session_secret"`
	GinMode       string `koanf:"gin_mode" yaml:"gin_mode"`
	UploadDir     string `koanf:"upload_dir" yaml:"upload_dir"`
	UploadURLPath string `koanf:"upload_url_path" yaml:"upload_url_path"`
	SiteBaseURL   string `koanf:"site_base_url" yaml:"site_base_url"`
	SecureCookie  bool   `koanf:"secure_cookie" yaml:"secure_cookie"`

	AdminUsername string `koanf:"admin_username" yaml:"admin_username"`
	AdminPassword string `koanf:"admin_password" yaml:"admin_password"`

	LogLevel  string `koanf:"log_level" yaml:"log_level"`
	LogFormat string `koanf:"log_format" yaml:"log_format"`

	AIProvider string `koanf:"ai_provider" yaml:"ai_provider"`
	AIAPIKey   string `koanf:"ai_api_key" yaml:"ai_api_key"`
	AIModel    string `koanf:"ai_model" yaml:"ai_model"`
	AIBaseURL  string `koanf:"ai_base_url" yaml:"ai_base_url"`

	StorageQuotaBytes int64  `koanf:"storage_quota_bytes" yaml:"storage_quota_bytes"`
	MirrorPath        string `koanf:"mirror_path" yaml:"mirror_path"`

	ImageMaxDimension int   `koanf:"image_max_dimension" yaml:"image_max_dimension"`
	ImageQuality      int   `koanf:"image_quality" yaml:"image_quality"`
	MaxUploadBytes    int64 `koanf:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// Default 返回带有安全默认值的配置。
func Default() AppConfig {
	return AppConfig{
		Port:              "8080",
		DatabasePath:      "folio.db",
		SessionSecret:     "folio-dev-secret",
		GinMode:           "release",
		UploadDir:         "data/uploads",
		UploadURLPath:     "/uploads",
		SiteBaseURL:       "https://jpark.studio",
		AdminUsername:     "admin",
		LogLevel:          "info",
		LogFormat:         "json",
		AIProvider:        "gemini",
		StorageQuotaBytes: 50 << 20,
		ImageMaxDimension: 1600,
		ImageQuality:      82,
		MaxUploadBytes:    20 << 20,
	}
}

// Load 依次读取默认值、YAML 文件（存在时）与 FOLIO_* 环境变量。
// path 为空时跳过文件。
func Load(path string) (AppConfig, error) {
	k := koanf.New(".")
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return cfg, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg.normalize(), nil
}

// Save 将配置写为 YAML 文件。
func (c AppConfig) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// UsesDefaultSessionSecret 用于启动时提示未配置会话密钥。
func (c AppConfig) UsesDefaultSessionSecret() bool {
	return c.SessionSecret == Default().SessionSecret
}

func (c AppConfig) normalize() AppConfig {
	defaults := Default()

	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = defaults.Port
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		c.DatabasePath = defaults.DatabasePath
	}
	if strings.TrimSpace(c.SessionSecret) == "" {
		c.SessionSecret = defaults.SessionSecret
	}
	if strings.TrimSpace(c.GinMode) == "" {
		c.GinMode = defaults.GinMode
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		c.UploadDir = defaults.UploadDir
	}
	c.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(c.UploadURLPath), "/")
	if c.UploadURLPath == "/" {
		c.UploadURLPath = defaults.UploadURLPath
	}
	c.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.SiteBaseURL), "/")
	c.AdminUsername = strings.TrimSpace(c.AdminUsername)
	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))
	if c.AIProvider == "" {
		c.AIProvider = defaults.AIProvider
	}
	c.AIAPIKey = strings.TrimSpace(c.AIAPIKey)
	if c.StorageQuotaBytes < 0 {
		c.StorageQuotaBytes = 0
	}
	if c.ImageMaxDimension <= 0 {
		c.ImageMaxDimension = defaults.ImageMaxDimension
	}
	if c.ImageQuality <= 0 || c.ImageQuality > 100 {
		c.ImageQuality = defaults.ImageQuality
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaults.MaxUploadBytes
	}
	return c
}
