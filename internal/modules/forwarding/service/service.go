package service

import (
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/reshetovitsme/relaywatch/internal/modules/forwarding/domain"
	"github.com/reshetovitsme/relaywatch/internal/shared/config"
	"github.com/samber/lo"
)

// Service answers forwarding questions against the currently published settings
type Service struct {
	settings atomic.Pointer[domain.Settings]
}

// New creates a forwarding policy service
func New(settings domain.Settings) *Service {
	s := &Service{}
	s.Reload(settings)
	return s
}

// NewFromConfig builds the policy from the loaded configuration
func NewFromConfig(cfg *config.Config) *Service {
	return New(SettingsFromConfig(cfg))
}

// SettingsFromConfig converts configuration values into forwarding settings
func SettingsFromConfig(cfg *config.Config) domain.Settings {
	return domain.Settings{
		Rules:              ParseRules(cfg.ForwardRules),
		ForwardBotMessages: cfg.ForwardBotMessages,
		MessagePrefix:      cfg.MessagePrefix,
	}
}

// Reload publishes a new settings value. Readers see either the old or the
// new value, never a mix.
func (s *Service) Reload(settings domain.Settings) {
	rules := make(map[string]string, len(settings.Rules))
	for src, dst := range settings.Rules {
		rules[src] = dst
	}
	settings.Rules = rules
	s.settings.Store(&settings)

	slog.Info("Forwarding rules loaded", "rules", len(rules), "forward_bot_messages", settings.ForwardBotMessages)
}

// ShouldForward is false only for bot-authored messages while bot relaying is off
func (s *Service) ShouldForward(isBot bool) bool {
	return !isBot || s.settings.Load().ForwardBotMessages
}

// ResolveDestination returns the destination mapped to sourceChannelID
func (s *Service) ResolveDestination(sourceChannelID string) (string, bool) {
	dst, ok := s.settings.Load().Rules[sourceChannelID]
	return dst, ok
}

// Prefix returns the text placed before every relayed message
func (s *Service) Prefix() string {
	return s.settings.Load().MessagePrefix
}

// Rules lists the current rules ordered by source channel
func (s *Service) Rules() []domain.Rule {
	rules := lo.MapToSlice(s.settings.Load().Rules, func(src, dst string) domain.Rule {
		return domain.Rule{SourceChannelID: src, DestChannelID: dst}
	})
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].SourceChannelID < rules[j].SourceChannelID
	})
	return rules
}

// ParseRules parses "src:dst,src:dst". Malformed pairs are skipped and a
// repeated source keeps its last destination.
func ParseRules(raw string) map[string]string {
	rules := make(map[string]string)
	for _, pair := range config.ParseList(raw) {
		src, dst, found := strings.Cut(pair, ":")
		src, dst = strings.TrimSpace(src), strings.TrimSpace(dst)
		if !found || src == "" || dst == "" {
			slog.Warn("Skipping malformed forward rule", "rule", pair)
			continue
		}
		rules[src] = dst
	}
	return rules
}
