package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KOOK_BOT_TOKEN", "kook-token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "kook-token", cfg.KookBotToken)
	assert.Equal(t, "https://www.kookapp.cn/api/v3", cfg.KookAPIURL)
	assert.Equal(t, "[Discord]", cfg.MessagePrefix)
	assert.Equal(t, "libre", cfg.TranslationService)
	assert.Equal(t, "zh-CN", cfg.TranslationTargetLanguage)
	assert.Equal(t, 24, cfg.ImageCleanupHours)
	assert.Equal(t, 12, cfg.VideoCleanupHours)
	assert.Equal(t, 6, cfg.OtherCleanupHours)
	assert.Equal(t, 30*time.Minute, cfg.PriceCheckInterval())
	assert.Equal(t, 24*time.Hour, cfg.CatalogRefreshInterval())
	assert.Equal(t, AppEnvProduction, cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadRequiresKookToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KOOK_BOT_TOKEN", "")

	_, err := Load()
	assert.ErrorIs(t, err, errors.ErrMissingKookToken)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("KOOK_BOT_TOKEN", "kook-token")
	t.Setenv("TRANSLATION_WHITELIST", " gg , , wp ")
	t.Setenv("FORWARD_BOT_MESSAGES", "true")

	yamlConfig := "message_prefix: \"[DC]\"\nprice_check_interval_minutes: 5\napp_env: Development\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlConfig), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "[DC]", cfg.MessagePrefix)
	assert.Equal(t, 5*time.Minute, cfg.PriceCheckInterval())
	assert.Equal(t, AppEnvDevelopment, cfg.AppEnv)
	assert.True(t, cfg.ForwardBotMessages)
	assert.Equal(t, []string{"gg", "wp"}, cfg.TranslationWhitelist)
}

func TestReloadOverridesFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("KOOK_BOT_TOKEN", "kook-token")
	t.Setenv("FORWARD_RULES", "1:2")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FORWARD_RULES=3:4\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "1:2", cfg.ForwardRules)

	cfg, err = Reload()
	require.NoError(t, err)
	assert.Equal(t, "3:4", cfg.ForwardRules)
}

func TestParseList(t *testing.T) {
	assert.Empty(t, ParseList(""))
	assert.Equal(t, []string{"a", "b c"}, ParseList("a, b c ,"))
}

func TestParseAppEnv(t *testing.T) {
	env, err := ParseAppEnv("TESTING")
	require.NoError(t, err)
	assert.Equal(t, AppEnvTesting, env)

	_, err = ParseAppEnv("staging")
	assert.ErrorIs(t, err, ErrInvalidAppEnv)
}
