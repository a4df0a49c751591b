package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reshetovitsme/relaywatch/internal/modules/attachment/domain"
	deliveryDomain "github.com/reshetovitsme/relaywatch/internal/modules/delivery/domain"
	"github.com/reshetovitsme/relaywatch/internal/shared/config"
	"github.com/reshetovitsme/relaywatch/internal/shared/errors"
	"github.com/reshetovitsme/relaywatch/internal/shared/task"
	"github.com/samber/oops"
)

const (
	imagesDir              = "images"
	videosDir              = "videos"
	defaultDownloadTimeout = 30 * time.Second
	defaultSweepInterval   = 24 * time.Hour
	sweepRecoveryDelay     = time.Hour
)

// Sender is what the pipeline needs from the delivery layer
type Sender interface {
	SendText(ctx context.Context, channelID, text string) error
	SendCard(ctx context.Context, channelID, card string) error
	SendNativeFile(ctx context.Context, channelID, path, filename string) error
	UploadAsset(ctx context.Context, path, filename string) (string, error)
}

type Config struct {
	Dir             string
	TTL             map[domain.Category]time.Duration
	MaxAge          map[domain.Category]time.Duration
	SweepInterval   time.Duration
	DownloadTimeout time.Duration
}

// ConfigFromAppConfig reads download location, TTLs and sweep settings
func ConfigFromAppConfig(cfg *config.Config) Config {
	day := 24 * time.Hour
	return Config{
		Dir: cfg.DownloadDir,
		TTL: map[domain.Category]time.Duration{
			domain.CategoryImage: time.Duration(cfg.ImageCleanupHours) * time.Hour,
			domain.CategoryVideo: time.Duration(cfg.VideoCleanupHours) * time.Hour,
			domain.CategoryOther: time.Duration(cfg.OtherCleanupHours) * time.Hour,
		},
		MaxAge: map[domain.Category]time.Duration{
			domain.CategoryImage: time.Duration(cfg.ImageMaxAgeDays) * day,
			domain.CategoryVideo: time.Duration(cfg.VideoMaxAgeDays) * day,
			domain.CategoryOther: time.Duration(cfg.OtherMaxAgeDays) * day,
		},
		SweepInterval:   cfg.CleanupInterval(),
		DownloadTimeout: defaultDownloadTimeout,
	}
}

// Service downloads attachments, re-hosts them on the destination and
// removes the local copies later
type Service struct {
	cfg    Config
	sender Sender
	prefix func() string
	client *http.Client
	now    func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates the attachment pipeline. prefix is consulted on every notice
// so that reloaded settings apply immediately.
func New(cfg Config, sender Sender, prefix func() string) *Service {
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = defaultDownloadTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:    cfg,
		sender: sender,
		prefix: prefix,
		client: &http.Client{Timeout: cfg.DownloadTimeout},
		now:    time.Now,
		timers: make(map[string]*time.Timer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Forward downloads att, delivers it to channelID and schedules the local
// copy for deletion. It reports true only when the file or its URL reached
// the destination; a notice sent in its place does not count.
func (s *Service) Forward(ctx context.Context, channelID string, att domain.Attachment) (bool, error) {
	if err := s.reject(ctx, channelID, att.Filename, att.SizeBytes); err != nil {
		return false, err
	}

	asset, err := s.Download(ctx, att.URL, att.ContentType, att.Filename)
	if err != nil {
		return false, err
	}
	defer s.ScheduleCleanup(asset)

	return s.Deliver(ctx, channelID, asset.Path, att.Filename)
}

// Download fetches rawURL into the folder for its content type. Only the
// client timeout bounds the request; caller cancellation does not abort it.
func (s *Service) Download(ctx context.Context, rawURL, contentType, filename string) (domain.Asset, error) {
	category := domain.CategoryForContentType(contentType)
	dir := s.dirFor(category)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.Asset{}, oops.With("dir", dir, "context", "failed to create download directory").Wrap(err)
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet, rawURL, nil)
	if err != nil {
		return domain.Asset{}, oops.With("url", rawURL).Wrap(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Asset{}, oops.With("url", rawURL, "context", "failed to download attachment").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Asset{}, oops.With("url", rawURL, "status", resp.StatusCode).Errorf("attachment download failed with status %d", resp.StatusCode)
	}

	path := filepath.Join(dir, uuid.NewString()+"_"+sanitizeFilename(filename))
	f, err := os.Create(path)
	if err != nil {
		return domain.Asset{}, oops.With("path", path).Wrap(err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return domain.Asset{}, oops.With("url", rawURL, "context", "failed to write attachment").Wrap(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return domain.Asset{}, oops.With("path", path).Wrap(err)
	}

	slog.Debug("Attachment downloaded", "path", path, "category", category)
	return domain.Asset{Path: path, Category: category, CreatedAt: s.now()}, nil
}

// Deliver sends a local file to channelID. Files the destination refuses are
// replaced by a text notice before any upload is attempted. The platform
// client is tried first, then a direct upload followed by a card for images
// and videos or a link for anything else.
func (s *Service) Deliver(ctx context.Context, channelID, path, filename string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, oops.With("path", path).Wrap(err)
	}
	if err := s.reject(ctx, channelID, filename, info.Size()); err != nil {
		return false, err
	}

	err = s.sender.SendNativeFile(ctx, channelID, path, filename)
	if err == nil {
		return true, nil
	}

	var url string
	var uploaded *deliveryDomain.UploadedError
	if errors.As(err, &uploaded) {
		slog.Warn("Native file message failed, reusing uploaded asset", "file", filename, "error", err)
		url = uploaded.URL
	} else {
		slog.Warn("Native file send failed, uploading directly", "file", filename, "error", err)
		url, err = s.sender.UploadAsset(ctx, path, filename)
		if err != nil {
			s.notice(ctx, channelID, "Upload failed: %s", filename)
			return false, err
		}
	}

	switch domain.CategoryForFilename(filename) {
	case domain.CategoryImage:
		return s.sendRich(ctx, channelID, "Image", filename, url, func(header string) (string, error) {
			return deliveryDomain.ImageCard(header, url)
		})
	case domain.CategoryVideo:
		return s.sendRich(ctx, channelID, "Video", filename, url, func(header string) (string, error) {
			return deliveryDomain.VideoCard(header, filename, url)
		})
	default:
		return s.sendLink(ctx, channelID, "File", filename, url)
	}
}

func (s *Service) sendRich(ctx context.Context, channelID, label, filename, url string, build func(header string) (string, error)) (bool, error) {
	header := fmt.Sprintf("%s %s: %s", s.prefix(), label, filename)

	card, err := build(header)
	if err == nil {
		if err = s.sender.SendCard(ctx, channelID, card); err == nil {
			return true, nil
		}
	}

	slog.Warn("Card send failed, sending link instead", "file", filename, "error", err)
	return s.sendLink(ctx, channelID, label, filename, url)
}

func (s *Service) sendLink(ctx context.Context, channelID, label, filename, url string) (bool, error) {
	text := fmt.Sprintf("%s %s: %s\n%s", s.prefix(), label, filename, url)
	if err := s.sender.SendText(ctx, channelID, text); err != nil {
		return false, err
	}
	return true, nil
}

// reject sends a notice and returns an error for files the destination refuses
func (s *Service) reject(ctx context.Context, channelID, filename string, size int64) error {
	switch {
	case domain.Unsupported(filename):
		s.notice(ctx, channelID, "Unsupported file type: %s", filename)
		return oops.With("file", filename).Wrap(errors.ErrUnsupportedFile)
	case size > domain.MaxUploadBytes:
		s.notice(ctx, channelID, "File too large (>20MB): %s", filename)
		return oops.With("file", filename, "size", size).Wrap(errors.ErrFileTooLarge)
	}
	return nil
}

func (s *Service) notice(ctx context.Context, channelID, format string, args ...any) {
	text := s.prefix() + " " + fmt.Sprintf(format, args...)
	if err := s.sender.SendText(ctx, channelID, text); err != nil {
		slog.Error("Failed to send attachment notice", "channel_id", channelID, "error", err)
	}
}

// Start launches the periodic sweep
func (s *Service) Start() {
	loop := task.Loop{
		Name:           "attachment-sweeper",
		Interval:       s.cfg.SweepInterval,
		RecoveryDelay:  sweepRecoveryDelay,
		RunImmediately: true,
		Fn: func(ctx context.Context) error {
			_, err := s.Sweep(s.now())
			return err
		},
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		loop.Run(s.ctx)
	}()
}

// Stop ends the sweep and drops pending single-shot deletions. Files they
// would have removed are picked up by the next sweep.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for path, timer := range s.timers {
		timer.Stop()
		delete(s.timers, path)
	}
}

func (s *Service) dirFor(category domain.Category) string {
	switch category {
	case domain.CategoryImage:
		return filepath.Join(s.cfg.Dir, imagesDir)
	case domain.CategoryVideo:
		return filepath.Join(s.cfg.Dir, videosDir)
	default:
		return s.cfg.Dir
	}
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "attachment"
	}
	return name
}
