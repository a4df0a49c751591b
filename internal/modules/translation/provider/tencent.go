package provider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/modules/translation/domain"
	"github.com/samber/oops"
)

const (
	tencentEndpoint = "https://tmt.tencentcloudapi.com"
	tencentService  = "tmt"
	tencentAction   = "TextTranslate"
	tencentVersion  = "2018-03-21"
	tencentRegion   = "ap-guangzhou"
	tencentAlgo     = "TC3-HMAC-SHA256"
	jsonContentType = "application/json; charset=utf-8"
)

var tencentLanguages = map[string]string{
	"zh-CN": "zh",
}

// Tencent is the Tencent Cloud machine translation TextTranslate action
type Tencent struct {
	secretID  string
	secretKey string
	endpoint  string
	client    *http.Client
	now       func() time.Time
}

func NewTencent(secretID, secretKey string) *Tencent {
	return &Tencent{
		secretID:  secretID,
		secretKey: secretKey,
		endpoint:  tencentEndpoint,
		client:    newHTTPClient(),
		now:       time.Now,
	}
}

func (t *Tencent) Name() domain.ProviderName { return domain.ProviderNameTencent }

func (t *Tencent) Configured() bool { return t.secretID != "" && t.secretKey != "" }

func (t *Tencent) Translate(ctx context.Context, text, source, target string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"SourceText": text,
		"Source":     mapLanguage(tencentLanguages, source),
		"Target":     mapLanguage(tencentLanguages, target),
		"ProjectId":  0,
	})
	if err != nil {
		return "", oops.With("provider", t.Name()).Wrap(err)
	}

	endpoint, err := url.Parse(t.endpoint)
	if err != nil {
		return "", oops.With("provider", t.Name(), "endpoint", t.endpoint).Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", oops.With("provider", t.Name()).Wrap(err)
	}

	timestamp := t.now().Unix()
	req.Header.Set("Authorization", t.authorization(endpoint.Host, payload, timestamp))
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("Host", endpoint.Host)
	req.Header.Set("X-TC-Action", tencentAction)
	req.Header.Set("X-TC-Timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-TC-Version", tencentVersion)
	req.Header.Set("X-TC-Region", tencentRegion)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", oops.With("provider", t.Name()).Wrap(err)
	}

	var result struct {
		Response struct {
			TargetText string `json:"TargetText"`
			Error      *struct {
				Code    string `json:"Code"`
				Message string `json:"Message"`
			} `json:"Error"`
		} `json:"Response"`
	}
	if err := decodeResponse(t.Name(), resp, &result); err != nil {
		return "", err
	}
	if e := result.Response.Error; e != nil {
		return "", oops.With("provider", t.Name(), "code", e.Code).Errorf("tencent error: %s", e.Message)
	}
	return result.Response.TargetText, nil
}

// authorization builds the TC3-HMAC-SHA256 Authorization header value
func (t *Tencent) authorization(host string, payload []byte, timestamp int64) string {
	date := time.Unix(timestamp, 0).UTC().Format("2006-01-02")

	signedHeaders := "content-type;host;x-tc-action"
	canonicalHeaders := fmt.Sprintf("content-type:%s\nhost:%s\nx-tc-action:%s\n",
		jsonContentType, host, strings.ToLower(tencentAction))
	canonicalRequest := strings.Join([]string{
		http.MethodPost,
		"/",
		"",
		canonicalHeaders,
		signedHeaders,
		sha256Hex(payload),
	}, "\n")

	scope := date + "/" + tencentService + "/tc3_request"
	stringToSign := strings.Join([]string{
		tencentAlgo,
		strconv.FormatInt(timestamp, 10),
		scope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	secretDate := hmacSHA256([]byte("TC3"+t.secretKey), date)
	secretService := hmacSHA256(secretDate, tencentService)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		tencentAlgo, t.secretID, scope, signedHeaders, signature)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msg))
	return mac.Sum(nil)
}
