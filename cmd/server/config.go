// file: cmd/server/config.go

package main

import (
	"GestionBC/internal/adapter/mail"
	"GestionBC/internal/observe"
	"GestionBC/internal/service"
	"GestionBC/internal/transport/http/middleware"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "GESTIONBC"

type ServerConfig struct {
	Port      int             `mapstructure:"port"`
	GrpcPort  int             `mapstructure:"grpc_port"`
	LogLevel  string          `mapstructure:"log_level"`
	LogFile   observe.LogFile `mapstructure:"log_file"`
	PprofAddr string          `mapstructure:"pprof_addr"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ViewsConfig struct {
	Directory       string        `mapstructure:"directory"`
	CacheSize       int           `mapstructure:"cache_size"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
}

type SchedulerConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	DelayCheckCron string        `mapstructure:"delay_check_cron"`
	MetricsCron    string        `mapstructure:"metrics_cron"`
	DelayThreshold time.Duration `mapstructure:"delay_threshold"`
}

type RemoteConfig struct {
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Config struct {
	Server    ServerConfig               `mapstructure:"server"`
	Database  DatabaseConfig             `mapstructure:"database"`
	Views     ViewsConfig                `mapstructure:"views"`
	Scheduler SchedulerConfig            `mapstructure:"scheduler"`
	Mail      mail.Config                `mapstructure:"mail"`
	Remote    RemoteConfig               `mapstructure:"remote"`
	RateLimit middleware.RateLimitConfig `mapstructure:"rate_limit"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.log_level", "INFO")
	v.SetDefault("database.path", "instance/gestionbc.db")
	v.SetDefault("views.directory", "configs/views")
	v.SetDefault("views.cache_ttl", "10m")
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.delay_check_cron", service.DefaultDelayCheckSpec)
	v.SetDefault("scheduler.metrics_cron", service.DefaultMetricsSpec)
	v.SetDefault("scheduler.delay_threshold", service.DefaultDelayThreshold)
	v.SetDefault("mail.port", 587)
	v.SetDefault("remote.timeout", "30s")

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"server.pprof_addr", "server.log_file.path",
		"views.cache_size", "views.default_page_size",
		"mail.host", "mail.user", "mail.password", "mail.from", "mail.insecure_skip_verify",
		"remote.token",
		"rate_limit.global_rps", "rate_limit.global_burst", "rate_limit.ip_rps", "rate_limit.ip_burst",
	} {
		_ = v.BindEnv(key)
	}
}

// loadConfig reads .env (when present), then the YAML file, then GESTIONBC_* variables.
// A missing config file is not an error: defaults and the environment still apply.
func loadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: .env ignored: %v", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %q: %w", path, err)
			}
		}
		log.Printf("INFO: config file %q not found, using defaults and environment", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Database.Path == "" {
		return nil, errors.New("database.path is required")
	}
	return &cfg, nil
}
