package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Log       LogConfig       `mapstructure:"log"`
	DevServer DevServerConfig `mapstructure:"devserver"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// IdentityConfig is only displayed; the client never talks to the identity provider directly.
type IdentityConfig struct {
	URL     string `mapstructure:"url"`
	AnonKey string `mapstructure:"anon_key"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type ChatConfig struct {
	ErrorBannerTTL   time.Duration `mapstructure:"error_banner_ttl"`
	Mode             string        `mapstructure:"mode"`
	DefaultAssistant string        `mapstructure:"default_assistant"`
}

type AdminConfig struct {
	UploadTick         time.Duration `mapstructure:"upload_tick"`
	UploadStep         int           `mapstructure:"upload_step"`
	UploadCap          int           `mapstructure:"upload_cap"`
	ProgressClearDelay time.Duration `mapstructure:"progress_clear_delay"`
	MaxUploadBytes     int64         `mapstructure:"max_upload_bytes"`
}

type AuthConfig struct {
	RestrictDomain bool     `mapstructure:"restrict_domain"`
	AllowedDomains []string `mapstructure:"allowed_domains"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DevServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	JWTSecret      string   `mapstructure:"jwt_secret"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func NewConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    defaultStatePath(),
		},
		Chat: ChatConfig{
			ErrorBannerTTL:   5 * time.Second,
			Mode:             "gpt",
			DefaultAssistant: "typeX",
		},
		Admin: AdminConfig{
			UploadTick:         200 * time.Millisecond,
			UploadStep:         10,
			UploadCap:          90,
			ProgressClearDelay: time.Second,
			MaxUploadBytes:     50 << 20,
		},
		Auth: AuthConfig{
			AllowedDomains: []string{"@ku.edu.kw", "@grad.edu.kw", "@grade.edu.kw"},
		},
		Log: LogConfig{
			Level: "info",
		},
		DevServer: DevServerConfig{
			Addr:           ":8000",
			JWTSecret:      "lovedu-dev-secret",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load layers lovedu.yaml (or configPath) and LOVEDU_* environment variables over NewConfig.
// NEXT_PUBLIC_API_URL is honoured for api.base_url when LOVEDU_API_URL is unset.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, NewConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("lovedu")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "lovedu"))
		}
	}

	v.SetEnvPrefix("LOVEDU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.base_url", "LOVEDU_API_URL", "NEXT_PUBLIC_API_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind api url: %w", err)
	}
	if err := v.BindEnv("identity.url", "LOVEDU_IDENTITY_URL", "NEXT_PUBLIC_SUPABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind identity url: %w", err)
	}
	if err := v.BindEnv("identity.anon_key", "LOVEDU_IDENTITY_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind identity key: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := NewConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)

	v.SetDefault("identity.url", d.Identity.URL)
	v.SetDefault("identity.anon_key", d.Identity.AnonKey)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.dsn", d.Storage.DSN)

	v.SetDefault("chat.error_banner_ttl", d.Chat.ErrorBannerTTL)
	v.SetDefault("chat.mode", d.Chat.Mode)
	v.SetDefault("chat.default_assistant", d.Chat.DefaultAssistant)

	v.SetDefault("admin.upload_tick", d.Admin.UploadTick)
	v.SetDefault("admin.upload_step", d.Admin.UploadStep)
	v.SetDefault("admin.upload_cap", d.Admin.UploadCap)
	v.SetDefault("admin.progress_clear_delay", d.Admin.ProgressClearDelay)
	v.SetDefault("admin.max_upload_bytes", d.Admin.MaxUploadBytes)

	v.SetDefault("auth.restrict_domain", d.Auth.RestrictDomain)
	v.SetDefault("auth.allowed_domains", d.Auth.AllowedDomains)

	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("devserver.addr", d.DevServer.Addr)
	v.SetDefault("devserver.jwt_secret", d.DevServer.JWTSecret)
	v.SetDefault("devserver.allowed_origins", d.DevServer.AllowedOrigins)
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "lovedu", "state.db")
}
