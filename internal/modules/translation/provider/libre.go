package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/reshetovitsme/relaywatch/internal/modules/translation/domain"
	"github.com/samber/oops"
)

// Libre talks to a LibreTranslate instance
type Libre struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewLibre(apiURL, apiKey string) *Libre {
	return &Libre{apiURL: apiURL, apiKey: apiKey, client: newHTTPClient()}
}

func (l *Libre) Name() domain.ProviderName { return domain.ProviderNameLibre }

func (l *Libre) Configured() bool { return l.apiURL != "" }

func (l *Libre) Translate(ctx context.Context, text, source, target string) (string, error) {
	payload := map[string]string{
		"q":      text,
		"source": source,
		"target": target,
		"format": "text",
	}
	if l.apiKey != "" {
		payload["api_key"] = l.apiKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", oops.With("provider", l.Name()).Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", oops.With("provider", l.Name(), "url", l.apiURL).Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", oops.With("provider", l.Name(), "url", l.apiURL).Wrap(err)
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := decodeResponse(l.Name(), resp, &result); err != nil {
		return "", err
	}
	if result.TranslatedText == "" {
		return "", oops.With("provider", l.Name()).Errorf("empty translation")
	}
	return result.TranslatedText, nil
}
