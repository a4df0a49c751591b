package service

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/reshetovitsme/relaywatch/internal/modules/translation/domain"
	"github.com/reshetovitsme/relaywatch/internal/modules/translation/provider"
	"github.com/reshetovitsme/relaywatch/internal/shared/config"
	"github.com/reshetovitsme/relaywatch/internal/shared/telemetry"
	"github.com/samber/lo"
)

type state struct {
	cfg      domain.Config
	provider domain.Provider
}

// Service translates relayed text with the selected provider. It never fails:
// anything that goes wrong yields the original text.
type Service struct {
	current atomic.Pointer[state]
}

// New creates a translation service choosing among providers by cfg.Provider
func New(cfg domain.Config, providers []domain.Provider) *Service {
	s := &Service{}
	s.Reload(cfg, providers)
	return s
}

// NewFromConfig wires the service with every provider built from cfg
func NewFromConfig(cfg *config.Config) *Service {
	return New(ConfigFromAppConfig(cfg), provider.FromConfig(cfg))
}

// ConfigFromAppConfig extracts translation settings from the application config
func ConfigFromAppConfig(cfg *config.Config) domain.Config {
	name, err := domain.ParseProviderName(strings.TrimSpace(cfg.TranslationService))
	if err != nil {
		name = domain.ProviderName(cfg.TranslationService)
	}
	return domain.Config{
		Enabled:    cfg.TranslationEnabled,
		Provider:   name,
		SourceLang: cfg.TranslationSourceLanguage,
		TargetLang: cfg.TranslationTargetLanguage,
		Whitelist:  cfg.TranslationWhitelist,
	}
}

// Select returns the provider named by cfg when it is known and configured
func Select(cfg domain.Config, providers []domain.Provider) (domain.Provider, bool) {
	if !cfg.Enabled {
		return nil, false
	}

	p, found := lo.Find(providers, func(p domain.Provider) bool {
		return p.Name() == cfg.Provider
	})
	if !found {
		slog.Warn("Unsupported translation service, translation disabled", "service", cfg.Provider)
		return nil, false
	}
	if !p.Configured() {
		slog.Warn("Translation service is missing credentials, translation disabled", "service", cfg.Provider)
		return nil, false
	}
	return p, true
}

// Reload swaps in new settings and providers
func (s *Service) Reload(cfg domain.Config, providers []domain.Provider) {
	next := &state{cfg: cfg}
	next.cfg.Whitelist = append([]string(nil), cfg.Whitelist...)
	if p, ok := Select(cfg, providers); ok {
		next.provider = p
	}
	s.current.Store(next)

	if next.provider != nil {
		slog.Info("Translation enabled", "service", cfg.Provider, "target", cfg.TargetLang, "whitelist", len(cfg.Whitelist))
	} else {
		slog.Info("Translation disabled")
	}
}

// Enabled reports whether a provider is active
func (s *Service) Enabled() bool {
	return s.current.Load().provider != nil
}

// TranslateText returns text translated to the target language. Disabled
// translation, blank text and whitelisted text come back unchanged. Fenced
// code blocks are never sent to the provider.
func (s *Service) TranslateText(ctx context.Context, text string) string {
	st := s.current.Load()
	if st.provider == nil || strings.TrimSpace(text) == "" || st.whitelisted(text) {
		return text
	}

	if !strings.Contains(text, fence) {
		return st.translate(ctx, text)
	}

	segments := splitSegments(text)
	for i, seg := range segments {
		if seg.code || strings.TrimSpace(seg.text) == "" {
			continue
		}
		segments[i].text = st.translate(ctx, seg.text)
	}
	return joinSegments(segments)
}

func (st *state) whitelisted(text string) bool {
	return lo.SomeBy(st.cfg.Whitelist, func(item string) bool {
		return item != "" && strings.Contains(text, item)
	})
}

func (st *state) translate(ctx context.Context, text string) string {
	name := string(st.provider.Name())

	translated, err := st.provider.Translate(ctx, text, st.cfg.SourceLang, st.cfg.TargetLang)
	if err != nil {
		telemetry.TranslationRequests.WithLabelValues(name, "error").Inc()
		slog.Warn("Translation failed, keeping original text", "service", name, "error", err)
		return text
	}

	telemetry.TranslationRequests.WithLabelValues(name, "ok").Inc()
	return translated
}
