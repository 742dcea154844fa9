package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// global configuration structure
type Config struct {
	Platform     PlatformConfig     `mapstructure:"platform"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Group        GroupConfig        `mapstructure:"group"`
	Evidence     EvidenceConfig     `mapstructure:"evidence"`
	Propagation  PropagationConfig  `mapstructure:"propagation"`
	Notification NotificationConfig `mapstructure:"notification"`
}

// chat platform configuration
type PlatformConfig struct {
	Token      string `mapstructure:"token"`
	APITimeout int    `mapstructure:"api_timeout"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
	Level     string            `mapstructure:"level"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// defaults applied to newly created groups
type GroupConfig struct {
	MemberLimit    int    `mapstructure:"member_limit"`
	LoggingEnabled bool   `mapstructure:"logging_enabled"`
	NotifyOnBan    bool   `mapstructure:"notify_on_ban"`
	Analytics      bool   `mapstructure:"analytics"`
	LeavePolicy    string `mapstructure:"leave_policy"`
}

// evidence intake settings
type EvidenceConfig struct {
	RootDir     string `mapstructure:"root_dir"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

// ban propagation fan-out settings
type PropagationConfig struct {
	WorkerLimit int `mapstructure:"worker_limit"`
	CallTimeout int `mapstructure:"call_timeout"`
}

// audit notification fallback settings
type NotificationConfig struct {
	FallbackChannel string `mapstructure:"fallback_channel"`
	AdminDMLimit    int    `mapstructure:"admin_dm_limit"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	// Unmarshal configuration
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("platform.api_timeout", 10)

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
	v.SetDefault("logger.level", "INFO")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.charset", "utf8mb4")

	v.SetDefault("group.member_limit", 30)
	v.SetDefault("group.logging_enabled", true)
	v.SetDefault("group.notify_on_ban", true)
	v.SetDefault("group.analytics", false)
	v.SetDefault("group.leave_policy", "retain")

	v.SetDefault("evidence.root_dir", "evidence")
	v.SetDefault("evidence.max_file_size", 25*1024*1024)

	v.SetDefault("propagation.worker_limit", 4)
	v.SetDefault("propagation.call_timeout", 15)

	v.SetDefault("notification.fallback_channel", "moderation-log")
	v.SetDefault("notification.admin_dm_limit", 10)
}
