package provider

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"

	"github.com/reshetovitsme/relaywatch/internal/modules/translation/domain"
	"github.com/samber/oops"
)

const baiduEndpoint = "https://api.fanyi.baidu.com/api/trans/vip/translate"

var baiduLanguages = map[string]string{
	"zh-CN": "zh",
	"ja":    "jp",
	"ko":    "kor",
	"fr":    "fra",
	"es":    "spa",
}

// Baidu is the Baidu Fanyi general translation API
type Baidu struct {
	appID    string
	appKey   string
	endpoint string
	client   *http.Client
}

func NewBaidu(appID, appKey string) *Baidu {
	return &Baidu{appID: appID, appKey: appKey, endpoint: baiduEndpoint, client: newHTTPClient()}
}

func (b *Baidu) Name() domain.ProviderName { return domain.ProviderNameBaidu }

func (b *Baidu) Configured() bool { return b.appID != "" && b.appKey != "" }

func (b *Baidu) Translate(ctx context.Context, text, source, target string) (string, error) {
	salt := strconv.Itoa(32768 + rand.IntN(32768))
	sum := md5.Sum([]byte(b.appID + text + salt + b.appKey))

	params := url.Values{}
	params.Set("q", text)
	params.Set("from", mapLanguage(baiduLanguages, source))
	params.Set("to", mapLanguage(baiduLanguages, target))
	params.Set("appid", b.appID)
	params.Set("salt", salt)
	params.Set("sign", hex.EncodeToString(sum[:]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", oops.With("provider", b.Name()).Wrap(err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", oops.With("provider", b.Name()).Wrap(err)
	}

	var result struct {
		ErrorCode   string `json:"error_code"`
		ErrorMsg    string `json:"error_msg"`
		TransResult []struct {
			Dst string `json:"dst"`
		} `json:"trans_result"`
	}
	if err := decodeResponse(b.Name(), resp, &result); err != nil {
		return "", err
	}
	if result.ErrorCode != "" && result.ErrorCode != "52000" {
		return "", oops.With("provider", b.Name(), "code", result.ErrorCode).Errorf("baidu error: %s", result.ErrorMsg)
	}
	if len(result.TransResult) == 0 {
		return "", oops.With("provider", b.Name()).Errorf("empty translation")
	}
	return result.TransResult[0].Dst, nil
}
