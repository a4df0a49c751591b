package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/modules/attachment/domain"
	deliveryDomain "github.com/reshetovitsme/relaywatch/internal/modules/delivery/domain"
	sharedErrors "github.com/reshetovitsme/relaywatch/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendText(ctx context.Context, channelID, text string) error {
	return m.Called(ctx, channelID, text).Error(0)
}

func (m *mockSender) SendCard(ctx context.Context, channelID, card string) error {
	return m.Called(ctx, channelID, card).Error(0)
}

func (m *mockSender) SendNativeFile(ctx context.Context, channelID, path, filename string) error {
	return m.Called(ctx, channelID, path, filename).Error(0)
}

func (m *mockSender) UploadAsset(ctx context.Context, path, filename string) (string, error) {
	args := m.Called(ctx, path, filename)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T, sender Sender) *Service {
	t.Helper()
	cfg := Config{
		Dir: t.TempDir(),
		TTL: map[domain.Category]time.Duration{
			domain.CategoryImage: time.Hour,
			domain.CategoryVideo: time.Hour,
			domain.CategoryOther: time.Hour,
		},
		MaxAge: map[domain.Category]time.Duration{
			domain.CategoryImage: 7 * 24 * time.Hour,
			domain.CategoryVideo: 3 * 24 * time.Hour,
			domain.CategoryOther: 24 * time.Hour,
		},
		SweepInterval: 24 * time.Hour,
	}
	svc := New(cfg, sender, func() string { return "[Discord]" })
	t.Cleanup(svc.Stop)
	return svc
}

func writeFile(t *testing.T, dir, name string, size int64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func TestNewDefaultsNonPositiveSweepInterval(t *testing.T) {
	svc := New(Config{Dir: t.TempDir()}, &mockSender{}, func() string { return "" })
	t.Cleanup(svc.Stop)

	assert.Equal(t, defaultSweepInterval, svc.cfg.SweepInterval)
	assert.Equal(t, defaultDownloadTimeout, svc.cfg.DownloadTimeout)
}

func TestDownloadPicksFolderByContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	svc := newTestService(t, &mockSender{})

	asset, err := svc.Download(context.Background(), srv.URL+"/cat.png", "image/png", "cat.png")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryImage, asset.Category)
	assert.Equal(t, filepath.Join(svc.cfg.Dir, "images"), filepath.Dir(asset.Path))
	assert.True(t, strings.HasSuffix(asset.Path, "_cat.png"))

	data, err := os.ReadFile(asset.Path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	other, err := svc.Download(context.Background(), srv.URL+"/notes", "text/plain", "../../notes.txt")
	require.NoError(t, err)
	assert.Equal(t, svc.cfg.Dir, filepath.Dir(other.Path))
	assert.True(t, strings.HasSuffix(other.Path, "_notes.txt"))
}

func TestDownloadNonOKLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	svc := newTestService(t, &mockSender{})

	_, err := svc.Download(context.Background(), srv.URL, "video/mp4", "clip.mp4")
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(svc.cfg.Dir, "videos"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeliverOversizeSendsNoticeWithoutUpload(t *testing.T) {
	sender := &mockSender{}
	sender.On("SendText", mock.Anything, "dst", "[Discord] File too large (>20MB): big.zip").Return(nil).Once()

	svc := newTestService(t, sender)
	path := writeFile(t, t.TempDir(), "big.zip", 21<<20)

	ok, err := svc.Deliver(context.Background(), "dst", path, "big.zip")

	assert.False(t, ok)
	assert.ErrorIs(t, err, sharedErrors.ErrFileTooLarge)
	sender.AssertExpectations(t)
	sender.AssertNotCalled(t, "SendNativeFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "UploadAsset", mock.Anything, mock.Anything, mock.Anything)
}

func TestForwardOversizeSkipsDownload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	sender := &mockSender{}
	sender.On("SendText", mock.Anything, "dst", "[Discord] File too large (>20MB): big.mp4").Return(nil).Once()

	svc := newTestService(t, sender)
	ok, err := svc.Forward(context.Background(), "dst", domain.Attachment{
		URL: srv.URL, Filename: "big.mp4", ContentType: "video/mp4", SizeBytes: 21 << 20,
	})

	assert.False(t, ok)
	assert.ErrorIs(t, err, sharedErrors.ErrFileTooLarge)
	assert.Equal(t, int32(0), hits.Load())
	sender.AssertExpectations(t)
}

func TestDeliverUnsupportedExtension(t *testing.T) {
	sender := &mockSender{}
	sender.On("SendText", mock.Anything, "dst", "[Discord] Unsupported file type: logo.SVG").Return(nil).Once()

	svc := newTestService(t, sender)
	path := writeFile(t, t.TempDir(), "logo.SVG", 10)

	ok, err := svc.Deliver(context.Background(), "dst", path, "logo.SVG")

	assert.False(t, ok)
	assert.ErrorIs(t, err, sharedErrors.ErrUnsupportedFile)
	sender.AssertNotCalled(t, "UploadAsset", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliverNativeSuccess(t *testing.T) {
	sender := &mockSender{}
	path := writeFile(t, t.TempDir(), "cat.png", 10)
	sender.On("SendNativeFile", mock.Anything, "dst", path, "cat.png").Return(nil).Once()

	ok, err := newTestService(t, sender).Deliver(context.Background(), "dst", path, "cat.png")

	assert.True(t, ok)
	assert.NoError(t, err)
	sender.AssertNotCalled(t, "UploadAsset", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliverUploadsAndSendsImageCard(t *testing.T) {
	sender := &mockSender{}
	path := writeFile(t, t.TempDir(), "cat.png", 10)
	sender.On("SendNativeFile", mock.Anything, "dst", path, "cat.png").Return(errors.New("client down"))
	sender.On("UploadAsset", mock.Anything, path, "cat.png").Return("https://cdn/cat.png", nil)
	sender.On("SendCard", mock.Anything, "dst", mock.MatchedBy(func(card string) bool {
		return strings.Contains(card, `"src":"https://cdn/cat.png"`) && strings.Contains(card, "[Discord] Image: cat.png")
	})).Return(nil).Once()

	ok, err := newTestService(t, sender).Deliver(context.Background(), "dst", path, "cat.png")

	assert.True(t, ok)
	assert.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestDeliverReusesAssetUploadedByNativeSend(t *testing.T) {
	sender := &mockSender{}
	path := writeFile(t, t.TempDir(), "cat.png", 10)
	sender.On("SendNativeFile", mock.Anything, "dst", path, "cat.png").
		Return(&deliveryDomain.UploadedError{URL: "https://cdn/cat.png", Err: errors.New("message rejected")})
	sender.On("SendCard", mock.Anything, "dst", mock.MatchedBy(func(card string) bool {
		return strings.Contains(card, `"src":"https://cdn/cat.png"`)
	})).Return(nil).Once()

	ok, err := newTestService(t, sender).Deliver(context.Background(), "dst", path, "cat.png")

	assert.True(t, ok)
	assert.NoError(t, err)
	sender.AssertExpectations(t)
	sender.AssertNotCalled(t, "UploadAsset", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliverCardFailureFallsBackToLink(t *testing.T) {
	sender := &mockSender{}
	path := writeFile(t, t.TempDir(), "clip.mp4", 10)
	sender.On("SendNativeFile", mock.Anything, "dst", path, "clip.mp4").Return(errors.New("client down"))
	sender.On("UploadAsset", mock.Anything, path, "clip.mp4").Return("https://cdn/clip.mp4", nil)
	sender.On("SendCard", mock.Anything, "dst", mock.Anything).Return(errors.New("card rejected"))
	sender.On("SendText", mock.Anything, "dst", "[Discord] Video: clip.mp4\nhttps://cdn/clip.mp4").Return(nil).Once()

	ok, err := newTestService(t, sender).Deliver(context.Background(), "dst", path, "clip.mp4")

	assert.True(t, ok)
	assert.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestDeliverOtherFileSendsLink(t *testing.T) {
	sender := &mockSender{}
	path := writeFile(t, t.TempDir(), "notes.txt", 10)
	sender.On("SendNativeFile", mock.Anything, "dst", path, "notes.txt").Return(errors.New("client down"))
	sender.On("UploadAsset", mock.Anything, path, "notes.txt").Return("https://cdn/notes.txt", nil)
	sender.On("SendText", mock.Anything, "dst", "[Discord] File: notes.txt\nhttps://cdn/notes.txt").Return(nil).Once()

	ok, err := newTestService(t, sender).Deliver(context.Background(), "dst", path, "notes.txt")

	assert.True(t, ok)
	assert.NoError(t, err)
	sender.AssertNotCalled(t, "SendCard", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeliverUploadFailureSendsNotice(t *testing.T) {
	sender := &mockSender{}
	path := writeFile(t, t.TempDir(), "cat.png", 10)
	sender.On("SendNativeFile", mock.Anything, "dst", path, "cat.png").Return(errors.New("client down"))
	sender.On("UploadAsset", mock.Anything, path, "cat.png").Return("", errors.New("500"))
	sender.On("SendText", mock.Anything, "dst", "[Discord] Upload failed: cat.png").Return(nil).Once()

	ok, err := newTestService(t, sender).Deliver(context.Background(), "dst", path, "cat.png")

	assert.False(t, ok)
	assert.Error(t, err)
	sender.AssertExpectations(t)
}

func TestForwardDownloadsDeliversAndSchedulesCleanup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	sender := &mockSender{}
	sender.On("SendNativeFile", mock.Anything, "dst", mock.Anything, "cat.png").Return(nil).Once()

	svc := newTestService(t, sender)
	svc.cfg.TTL[domain.CategoryImage] = 10 * time.Millisecond

	ok, err := svc.Forward(context.Background(), "dst", domain.Attachment{
		URL: srv.URL, Filename: "cat.png", ContentType: "image/png", SizeBytes: 4,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	imagesDir := filepath.Join(svc.cfg.Dir, "images")
	assert.Eventually(t, func() bool {
		entries, err := os.ReadDir(imagesDir)
		return err == nil && len(entries) == 0
	}, time.Second, 5*time.Millisecond)
}
