package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/reshetovitsme/relaywatch/internal/modules/attachment/domain"
	"github.com/reshetovitsme/relaywatch/internal/shared/telemetry"
	"github.com/samber/oops"
)

// ScheduleCleanup deletes the asset once its category TTL has passed
func (s *Service) ScheduleCleanup(asset domain.Asset) {
	ttl := s.cfg.TTL[asset.Category]

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[asset.Path]; ok {
		existing.Stop()
	}
	s.timers[asset.Path] = time.AfterFunc(ttl, func() {
		s.mu.Lock()
		delete(s.timers, asset.Path)
		s.mu.Unlock()

		removeFile(asset.Path, asset.Category, "ttl")
	})

	slog.Debug("Attachment cleanup scheduled", "path", asset.Path, "ttl", ttl)
}

// Sweep deletes files older than their category's max age from the images
// and videos folders and from the top level of the download folder
func (s *Service) Sweep(now time.Time) (int, error) {
	targets := []struct {
		dir      string
		category domain.Category
	}{
		{filepath.Join(s.cfg.Dir, imagesDir), domain.CategoryImage},
		{filepath.Join(s.cfg.Dir, videosDir), domain.CategoryVideo},
		{s.cfg.Dir, domain.CategoryOther},
	}

	total := 0
	for _, target := range targets {
		n, err := sweepDir(target.dir, target.category, s.cfg.MaxAge[target.category], now)
		if err != nil {
			return total, err
		}
		total += n
	}

	if total > 0 {
		slog.Info("Attachment sweep finished", "deleted", total)
	}
	return total, nil
}

func sweepDir(dir string, category domain.Category, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, oops.With("dir", dir, "context", "failed to read download directory").Wrap(err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if now.Sub(info.ModTime()) > maxAge && removeFile(filepath.Join(dir, entry.Name()), category, "sweep") {
			deleted++
		}
	}
	return deleted, nil
}

// removeFile deletes path. A file that is already gone is not an error.
func removeFile(path string, category domain.Category, trigger string) bool {
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to delete attachment", "path", path, "error", err)
		}
		return false
	}

	telemetry.CleanupDeleted.WithLabelValues(category.String(), trigger).Inc()
	slog.Debug("Attachment deleted", "path", path, "trigger", trigger)
	return true
}
