package kook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/reshetovitsme/relaywatch/internal/modules/delivery/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	path    string
	auth    string
	message createMessageRequest
	file    string
	name    string
}

func fakeKook(t *testing.T, calls *[]recorded) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{path: r.URL.Path, auth: r.Header.Get("Authorization")}

		switch r.URL.Path {
		case "/message/create":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&rec.message))
			if rec.message.TargetID == "missing" {
				w.Write([]byte(`{"code":40000,"message":"channel not found","data":{}}`))
				*calls = append(*calls, rec)
				return
			}
			w.Write([]byte(`{"code":0,"message":"","data":{"msg_id":"m1"}}`))
		case "/asset/create":
			f, header, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(f)
			rec.file, rec.name = string(data), header.Filename
			w.Write([]byte(`{"code":0,"message":"","data":{"url":"https://img.kookapp.cn/assets/x.png"}}`))
		case "/channel/view":
			w.Write([]byte(`{"code":0,"message":"","data":{"id":"` + r.URL.Query().Get("target_id") + `","name":"general"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
		*calls = append(*calls, rec)
	}))
}

func TestCreateMessage(t *testing.T) {
	var calls []recorded
	srv := fakeKook(t, &calls)
	defer srv.Close()

	api := NewAPI(srv.URL+"/", "secret")
	require.NoError(t, api.CreateMessage(context.Background(), "123", "hi", domain.MessageTypeText))

	require.Len(t, calls, 1)
	assert.Equal(t, "Bot secret", calls[0].auth)
	assert.Equal(t, createMessageRequest{TargetID: "123", Content: "hi", Type: domain.MessageTypeText}, calls[0].message)
}

func TestCreateMessageErrorCode(t *testing.T) {
	var calls []recorded
	srv := fakeKook(t, &calls)
	defer srv.Close()

	err := NewAPI(srv.URL, "secret").CreateMessage(context.Background(), "missing", "hi", domain.MessageTypeText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel not found")
}

func TestCreateAsset(t *testing.T) {
	var calls []recorded
	srv := fakeKook(t, &calls)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "local.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0644))

	url, err := NewAPI(srv.URL, "secret").CreateAsset(context.Background(), path, "cat.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img.kookapp.cn/assets/x.png", url)

	require.Len(t, calls, 1)
	assert.Equal(t, "png-bytes", calls[0].file)
	assert.Equal(t, "cat.png", calls[0].name)
}

func TestHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL, "bad").ChannelView(context.Background(), "1")
	assert.Error(t, err)
}

func TestClientSendFileUsesTypedMessage(t *testing.T) {
	var calls []recorded
	srv := fakeKook(t, &calls)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "clip")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0644))

	client := NewClient(NewAPI(srv.URL, "secret"))
	require.NoError(t, client.SendFile(context.Background(), "42", path, "clip.mp4"))

	require.Len(t, calls, 3)
	assert.Equal(t, "/channel/view", calls[0].path)
	assert.Equal(t, "/asset/create", calls[1].path)
	assert.Equal(t, domain.MessageTypeVideo, calls[2].message.Type)
	assert.Equal(t, "https://img.kookapp.cn/assets/x.png", calls[2].message.Content)
}

func TestClientSendFileMessageFailureCarriesUploadedURL(t *testing.T) {
	var calls []recorded
	srv := fakeKook(t, &calls)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cat")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0644))

	err := NewClient(NewAPI(srv.URL, "secret")).SendFile(context.Background(), "missing", path, "cat.png")
	require.Error(t, err)

	var uploaded *domain.UploadedError
	require.ErrorAs(t, err, &uploaded)
	assert.Equal(t, "https://img.kookapp.cn/assets/x.png", uploaded.URL)
	assert.Contains(t, err.Error(), "channel not found")
	require.Len(t, calls, 3)
	assert.Equal(t, "/asset/create", calls[1].path)
}

func TestClientSendText(t *testing.T) {
	var calls []recorded
	srv := fakeKook(t, &calls)
	defer srv.Close()

	client := NewClient(NewAPI(srv.URL, "secret"))
	require.NoError(t, client.SendText(context.Background(), "42", "hello"))

	require.Len(t, calls, 2)
	assert.Equal(t, "hello", calls[1].message.Content)
}
