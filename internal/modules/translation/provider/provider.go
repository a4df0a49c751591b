// Package provider holds the translation backends. Each one validates its own
// credentials and reports failures as errors; callers decide how to degrade.
package provider

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/modules/translation/domain"
	"github.com/reshetovitsme/relaywatch/internal/shared/config"
	"github.com/samber/oops"
)

const requestTimeout = 15 * time.Second

// FromConfig builds every known provider with the credentials found in cfg.
// Providers without credentials are still returned and report Configured false.
func FromConfig(cfg *config.Config) []domain.Provider {
	return []domain.Provider{
		NewLibre(cfg.LibreTranslationAPIURL, cfg.LibreTranslationAPIKey),
		NewTencent(cfg.TencentSecretID, cfg.TencentSecretKey),
		NewGoogle(cfg.GoogleTranslationAPIKey),
		NewBaidu(cfg.BaiduAppID, cfg.BaiduAppKey),
		NewYoudao(cfg.YoudaoAppKey, cfg.YoudaoAppSecret),
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// mapLanguage rewrites a language code for providers that use their own codes
func mapLanguage(codes map[string]string, lang string) string {
	if mapped, ok := codes[lang]; ok {
		return mapped
	}
	return lang
}

func decodeResponse(provider domain.ProviderName, resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return oops.
			With("provider", provider, "status", resp.StatusCode, "body", string(body)).
			Errorf("translation request failed with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return oops.With("provider", provider, "context", "decoding translation response").Wrap(err)
	}
	return nil
}
