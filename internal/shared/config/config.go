package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/relaywatch/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const dotEnvFile = ".env"

var configFiles = []string{
	"config.yaml",
	"config.yml",
	"config.json",
	"config.toml",
}

type Config struct {
	DiscordBotToken string `koanf:"discord_bot_token"`
	KookBotToken    string `koanf:"kook_bot_token"`
	KookAPIURL      string `koanf:"kook_api_url"`

	ForwardRules       string `koanf:"forward_rules"`
	ForwardBotMessages bool   `koanf:"forward_bot_messages"`
	MessagePrefix      string `koanf:"message_prefix"`

	TranslationEnabled        bool     `koanf:"translation_enabled"`
	TranslationService        string   `koanf:"translation_service"`
	TranslationSourceLanguage string   `koanf:"translation_source_language"`
	TranslationTargetLanguage string   `koanf:"translation_target_language"`
	TranslationWhitelist      []string `koanf:"-"`

	LibreTranslationAPIURL  string `koanf:"libre_translation_api_url"`
	LibreTranslationAPIKey  string `koanf:"libre_translation_api_key"`
	GoogleTranslationAPIKey string `koanf:"google_translation_api_key"`
	TencentSecretID         string `koanf:"tencent_secret_id"`
	TencentSecretKey        string `koanf:"tencent_secret_key"`
	BaiduAppID              string `koanf:"baidu_app_id"`
	BaiduAppKey             string `koanf:"baidu_app_key"`
	YoudaoAppKey            string `koanf:"youdao_app_key"`
	YoudaoAppSecret         string `koanf:"youdao_app_secret"`

	DownloadDir          string `koanf:"download_dir"`
	ImageCleanupHours    int    `koanf:"image_cleanup_hours"`
	VideoCleanupHours    int    `koanf:"video_cleanup_hours"`
	OtherCleanupHours    int    `koanf:"other_cleanup_hours"`
	ImageMaxAgeDays      int    `koanf:"image_max_age_days"`
	VideoMaxAgeDays      int    `koanf:"video_max_age_days"`
	OtherMaxAgeDays      int    `koanf:"other_max_age_days"`
	CleanupIntervalHours int    `koanf:"cleanup_interval_hours"`

	StoragePath                 string `koanf:"storage_path"`
	SteamAPIURL                 string `koanf:"steam_api_url"`
	SteamStoreURL               string `koanf:"steam_store_url"`
	SteamRegion                 string `koanf:"steam_region"`
	PriceCheckIntervalMinutes   int    `koanf:"price_check_interval_minutes"`
	CatalogRefreshIntervalHours int    `koanf:"catalog_refresh_interval_hours"`

	HTTPPort string `koanf:"http_port"`
	LogLevel string `koanf:"log_level"`
	AppEnv   AppEnv `koanf:"app_env"`
}

var defaults = map[string]any{
	"kook_api_url":                   "https://www.kookapp.cn/api/v3",
	"forward_bot_messages":           false,
	"message_prefix":                 "[Discord]",
	"translation_enabled":            false,
	"translation_service":            "libre",
	"translation_source_language":    "auto",
	"translation_target_language":    "zh-CN",
	"download_dir":                   "./downloads",
	"image_cleanup_hours":            24,
	"video_cleanup_hours":            12,
	"other_cleanup_hours":            6,
	"image_max_age_days":             7,
	"video_max_age_days":             3,
	"other_max_age_days":             1,
	"cleanup_interval_hours":         24,
	"storage_path":                   "./data/steam",
	"steam_api_url":                  "https://api.steampowered.com",
	"steam_store_url":                "https://store.steampowered.com",
	"steam_region":                   "cn",
	"price_check_interval_minutes":   30,
	"catalog_refresh_interval_hours": 24,
	"http_port":                      "8080",
	"log_level":                      "info",
	"app_env":                        "production",
}

// Load reads .env (without overriding variables already set), the first
// config file found in the working directory and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(dotEnvFile); err != nil && !os.IsNotExist(err) {
		return nil, oops.With("file", dotEnvFile, "context", "loading .env").Wrap(err)
	}
	return load()
}

// Reload re-reads .env letting it override the current environment, then
// builds a fresh Config. Callers swap the result into their services.
func Reload() (*Config, error) {
	if err := godotenv.Overload(dotEnvFile); err != nil && !os.IsNotExist(err) {
		return nil, oops.With("file", dotEnvFile, "context", "reloading .env").Wrap(err)
	}
	return load()
}

func load() (*Config, error) {
	k := koanf.New(".")

	if configFile, found := findConfigFile(); found {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, oops.Errorf("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Environment variables override config file values
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}

	switch v := k.Get("translation_whitelist").(type) {
	case string:
		cfg.TranslationWhitelist = ParseList(v)
	case []any:
		cfg.TranslationWhitelist = lo.FilterMap(v, func(item any, _ int) (string, bool) {
			s, ok := item.(string)
			s = strings.TrimSpace(s)
			return s, ok && s != ""
		})
	}

	if appEnv, err := ParseAppEnv(k.String("app_env")); err == nil {
		cfg.AppEnv = appEnv
	} else {
		cfg.AppEnv = AppEnvProduction
	}

	if cfg.KookBotToken == "" {
		return nil, errors.ErrMissingKookToken
	}

	return &cfg, nil
}

// Watch invokes onChange whenever the config file or .env changes on disk.
// Watching stops when ctx is cancelled.
func Watch(ctx context.Context, onChange func()) error {
	paths := []string{}
	if configFile, found := findConfigFile(); found {
		paths = append(paths, configFile)
	}
	if _, err := os.Stat(dotEnvFile); err == nil {
		paths = append(paths, dotEnvFile)
	}

	for _, path := range paths {
		provider := file.Provider(path)
		watched := path
		if err := provider.Watch(func(_ any, err error) {
			if err != nil {
				slog.Error("Config watch failed", "file", watched, "error", err)
				return
			}
			slog.Info("Config file changed", "file", watched)
			onChange()
		}); err != nil {
			return oops.With("file", path, "context", "watching config file").Wrap(err)
		}

		go func() {
			<-ctx.Done()
			_ = provider.Unwatch()
		}()
	}

	return nil
}

// ParseList splits a comma-separated value, dropping blank items.
func ParseList(s string) []string {
	return lo.FilterMap(strings.Split(s, ","), func(part string, _ int) (string, bool) {
		part = strings.TrimSpace(part)
		return part, part != ""
	})
}

func (c *Config) PriceCheckInterval() time.Duration {
	return time.Duration(c.PriceCheckIntervalMinutes) * time.Minute
}

func (c *Config) CatalogRefreshInterval() time.Duration {
	return time.Duration(c.CatalogRefreshIntervalHours) * time.Hour
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalHours) * time.Hour
}

// SlogLevel maps log_level to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func findConfigFile() (string, bool) {
	return lo.Find(configFiles, func(file string) bool {
		_, err := os.Stat(file)
		return err == nil
	})
}
