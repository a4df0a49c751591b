package provider

import (
	"context"
	"sync"

	"github.com/reshetovitsme/relaywatch/internal/modules/translation/domain"
	"github.com/samber/oops"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

// Google uses the Cloud Translation v2 API with an API key
type Google struct {
	apiKey string
	opts   []option.ClientOption

	once    sync.Once
	svc     *translate.Service
	initErr error
}

// NewGoogle creates the provider. Extra client options are appended after
// the API key, e.g. option.WithEndpoint.
func NewGoogle(apiKey string, opts ...option.ClientOption) *Google {
	return &Google{apiKey: apiKey, opts: opts}
}

func (g *Google) Name() domain.ProviderName { return domain.ProviderNameGoogle }

func (g *Google) Configured() bool { return g.apiKey != "" }

func (g *Google) Translate(ctx context.Context, text, source, target string) (string, error) {
	g.once.Do(func() {
		opts := append([]option.ClientOption{option.WithAPIKey(g.apiKey)}, g.opts...)
		g.svc, g.initErr = translate.NewService(context.Background(), opts...)
	})
	if g.initErr != nil {
		return "", oops.With("provider", g.Name(), "context", "creating translate client").Wrap(g.initErr)
	}

	call := g.svc.Translations.List([]string{text}, target).Format("text").Context(ctx)
	if source != "" && source != "auto" {
		call = call.Source(source)
	}

	resp, err := call.Do()
	if err != nil {
		return "", oops.With("provider", g.Name()).Wrap(err)
	}
	if len(resp.Translations) == 0 {
		return "", oops.With("provider", g.Name()).Errorf("empty translation")
	}
	return resp.Translations[0].TranslatedText, nil
}
