package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/VectorBits/Chainsight/internal/source"
)

type AIConfig struct {
	Provider       string `yaml:"provider"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RequestsPerMin int    `yaml:"requests_per_min"`
}

type Config struct {
	AI                   AIConfig               `yaml:"ai"`
	Etherscan            source.EtherscanConfig `yaml:"etherscan"`
	ReportDir            string                 `yaml:"report_dir"`
	DatabasePath         string                 `yaml:"database_path"`
	LogLevel             string                 `yaml:"log_level"`
	EnhanceBudgetSeconds int                    `yaml:"enhance_budget_seconds"`
}

func defaults() *Config {
	return &Config{
		AI: AIConfig{
			Provider:       "openai",
			TimeoutSeconds: 60,
			RequestsPerMin: 20,
		},
		ReportDir:            "reports",
		DatabasePath:         "data/chainsight.db",
		LogLevel:             "info",
		EnhanceBudgetSeconds: 90,
	}
}

var searchPaths = []string{
	"config/settings.yaml",
	"settings.yaml",
	"../config/settings.yaml",
}

// Load 按固定路径顺序找 settings.yaml，找不到就用默认值，
// 环境变量最后覆盖。配置文件本身是可选的。
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func findConfigFile() string {
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	cfg.AI.APIKey = getEnv("AI_API_KEY", cfg.AI.APIKey)
	cfg.AI.BaseURL = getEnv("AI_BASE_URL", cfg.AI.BaseURL)
	cfg.AI.Model = getEnv("AI_MODEL", cfg.AI.Model)
	cfg.AI.Provider = getEnv("AI_PROVIDER", cfg.AI.Provider)
	cfg.Etherscan.APIKey = getEnv("ETHERSCAN_API_KEY", cfg.Etherscan.APIKey)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnhanceBudgetSeconds = getEnvAsInt("ENHANCE_BUDGET_SECONDS", cfg.EnhanceBudgetSeconds)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
