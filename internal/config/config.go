package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ValidationError marks configuration that is invalid before any file is
// scanned. The scan never starts and no partial result is produced.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

type Config struct {
	Security        SecurityConfig        `mapstructure:"security" yaml:"security"`
	Performance     PerformanceConfig     `mapstructure:"performance" yaml:"performance"`
	Maintainability MaintainabilityConfig `mapstructure:"maintainability" yaml:"maintainability"`
	AIDetection     AIDetectionConfig     `mapstructure:"ai_detection" yaml:"ai_detection"`
	Scan            ScanConfig            `mapstructure:"scan" yaml:"scan"`
}

type SecurityConfig struct {
	Enabled        bool     `mapstructure:"enabled" yaml:"enabled"`
	SecretPatterns []string `mapstructure:"secret_patterns" yaml:"secret_patterns"`
	AllowedSecrets []string `mapstructure:"allowed_secrets" yaml:"allowed_secrets"`
}

type PerformanceConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type MaintainabilityConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled"`
	MaxComplexity     int  `mapstructure:"max_complexity" yaml:"max_complexity"`
	MaxFunctionLength int  `mapstructure:"max_function_length" yaml:"max_function_length"`
	MaxLineLength     int  `mapstructure:"max_line_length" yaml:"max_line_length"`
	MaxParameters     int  `mapstructure:"max_parameters" yaml:"max_parameters"`
}

type AIDetectionConfig struct {
	Enabled             bool    `mapstructure:"enabled" yaml:"enabled"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
}

type ScanConfig struct {
	SeverityThreshold string   `mapstructure:"severity_threshold" yaml:"severity_threshold"`
	FailOn            string   `mapstructure:"fail_on" yaml:"fail_on"`
	Workers           int      `mapstructure:"workers" yaml:"workers"`
	ExcludePatterns   []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
}

func Load(configPath string) (*Config, error) {
	config := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(".codeguardian")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

func DefaultConfig() *Config {
	return &Config{
		Security: SecurityConfig{
			Enabled: true,
			SecretPatterns: []string{
				`(?i)api[_-]?key\s*[:=]\s*["'][A-Za-z0-9_\-]{16,}["']`,
				`(?i)password\s*[:=]\s*["'][^"']{8,}["']`,
				`(?i)secret[_-]?key\s*[:=]\s*["'][A-Za-z0-9]{16,}["']`,
				`(?i)token\s*[:=]\s*["'][A-Za-z0-9]{20,}["']`,
				`(?i)aws[_-]?access[_-]?key.*=\s*["']AKIA[A-Z0-9]{16}["']`,
			},
			AllowedSecrets: []string{},
		},
		Performance: PerformanceConfig{
			Enabled: true,
		},
		Maintainability: MaintainabilityConfig{
			Enabled:           true,
			MaxComplexity:     10,
			MaxFunctionLength: 50,
			MaxLineLength:     120,
			MaxParameters:     5,
		},
		AIDetection: AIDetectionConfig{
			Enabled:             true,
			ConfidenceThreshold: 0.7,
		},
		Scan: ScanConfig{
			SeverityThreshold: "medium",
			FailOn:            "critical",
			Workers:           0, // 0 means one worker per CPU
			ExcludePatterns: []string{
				"*.min.js", "*.min.css", "node_modules/*", "vendor/*",
				"__pycache__/*", "*.pb.go", "testdata/*",
			},
		},
	}
}

// Validate enforces declared bounds on every tunable. Out-of-bounds values
// are reported, never silently clamped.
func (c *Config) Validate() error {
	if !c.Security.Enabled && !c.Performance.Enabled &&
		!c.Maintainability.Enabled && !c.AIDetection.Enabled {
		return &ValidationError{Field: "analyzers", Reason: "at least one analyzer must be enabled"}
	}
	if err := c.validateMaintainability(); err != nil {
		return err
	}
	if err := c.validateAIDetection(); err != nil {
		return err
	}
	return c.validateScan()
}

func (c *Config) validateMaintainability() error {
	if c.Maintainability.MaxComplexity <= 0 {
		return &ValidationError{Field: "maintainability.max_complexity", Reason: "must be positive"}
	}
	if c.Maintainability.MaxFunctionLength <= 0 {
		return &ValidationError{Field: "maintainability.max_function_length", Reason: "must be positive"}
	}
	if c.Maintainability.MaxLineLength <= 0 {
		return &ValidationError{Field: "maintainability.max_line_length", Reason: "must be positive"}
	}
	if c.Maintainability.MaxParameters <= 0 {
		return &ValidationError{Field: "maintainability.max_parameters", Reason: "must be positive"}
	}
	return nil
}

func (c *Config) validateAIDetection() error {
	if c.AIDetection.ConfidenceThreshold < 0 || c.AIDetection.ConfidenceThreshold > 1 {
		return &ValidationError{Field: "ai_detection.confidence_threshold", Reason: "must be between 0 and 1"}
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Workers < 0 {
		return &ValidationError{Field: "scan.workers", Reason: "must be non-negative"}
	}
	if !validSeverity(c.Scan.SeverityThreshold) {
		return &ValidationError{Field: "scan.severity_threshold", Reason: "must be low, medium, high or critical"}
	}
	if !validSeverity(c.Scan.FailOn) {
		return &ValidationError{Field: "scan.fail_on", Reason: "must be low, medium, high or critical"}
	}
	return nil
}

func validSeverity(s string) bool {
	switch s {
	case "low", "medium", "high", "critical":
		return true
	}
	return false
}

func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("security", c.Security)
	v.Set("performance", c.Performance)
	v.Set("maintainability", c.Maintainability)
	v.Set("ai_detection", c.AIDetection)
	v.Set("scan", c.Scan)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
