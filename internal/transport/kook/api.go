// Package kook talks to the KOOK bot HTTP API.
package kook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/modules/delivery/domain"
	"github.com/samber/oops"
)

const requestTimeout = 30 * time.Second

// API is a thin client for the endpoints the relay uses. Every call carries
// the bot token and every response is the {code, message, data} envelope.
type API struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Channel is the subset of channel/view the relay reads
type Channel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	GuildID string `json:"guild_id"`
	Type    int    `json:"type"`
}

type createMessageRequest struct {
	TargetID string             `json:"target_id"`
	Content  string             `json:"content"`
	Type     domain.MessageType `json:"type"`
}

// CreateMessage posts content of the given type to a channel
func (a *API) CreateMessage(ctx context.Context, targetID, content string, msgType domain.MessageType) error {
	body, err := json.Marshal(createMessageRequest{TargetID: targetID, Content: content, Type: msgType})
	if err != nil {
		return oops.Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/message/create", bytes.NewReader(body))
	if err != nil {
		return oops.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := a.do(req, nil); err != nil {
		return oops.With("target_id", targetID, "type", int(msgType)).Wrap(err)
	}
	return nil
}

// CreateAsset uploads a file and returns its hosted URL
func (a *API) CreateAsset(ctx context.Context, path, filename string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", oops.With("path", path).Wrap(err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "file", "filename": filename}))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return "", oops.Wrap(err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", oops.With("path", path).Wrap(err)
	}
	if err := w.Close(); err != nil {
		return "", oops.Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/asset/create", &buf)
	if err != nil {
		return "", oops.Wrap(err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var data struct {
		URL string `json:"url"`
	}
	if err := a.do(req, &data); err != nil {
		return "", oops.With("file", filename).Wrap(err)
	}
	if data.URL == "" {
		return "", oops.With("file", filename).Errorf("asset upload returned no url")
	}
	return data.URL, nil
}

// ChannelView looks a channel up by id
func (a *API) ChannelView(ctx context.Context, channelID string) (Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+"/channel/view?"+url.Values{"target_id": {channelID}}.Encode(), nil)
	if err != nil {
		return Channel{}, oops.Wrap(err)
	}

	var ch Channel
	if err := a.do(req, &ch); err != nil {
		return Channel{}, oops.With("channel_id", channelID).Wrap(err)
	}
	return ch, nil
}

func (a *API) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bot "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return oops.With("path", req.URL.Path).Wrap(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.With("path", req.URL.Path).Wrap(err)
	}
	if resp.StatusCode != http.StatusOK {
		return oops.With("path", req.URL.Path, "status", resp.StatusCode, "body", string(raw)).
			Errorf("kook api returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return oops.With("path", req.URL.Path, "context", "decoding kook response").Wrap(err)
	}
	if env.Code != 0 {
		return oops.With("path", req.URL.Path, "code", env.Code).Errorf("kook api error: %s", env.Message)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return oops.With("path", req.URL.Path, "context", "decoding kook data").Wrap(err)
		}
	}
	return nil
}
