package service

import (
	"context"
	"sync"
	"time"

	"github.com/postboard-dev/postboard/shared/logger"
	"github.com/postboard-dev/postboard/shared/middleware/metrics"
)

// UploadFile describes one stored upload.
type UploadFile struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ImageRefStorage reports every featured image a stored post still points at.
type ImageRefStorage interface {
	FeaturedImages(ctx context.Context) ([]string, error)
}

// UploadLister is the filesystem side of the collector.
type UploadLister interface {
	Files() ([]UploadFile, error)
	Delete(name string) error
}

// UploadsGC removes uploaded images no post references. Orphans appear when a
// post insert fails after the image was saved, or when a delete of the image
// file failed after the post was gone.
type UploadsGC struct {
	storage ImageRefStorage
	files   UploadLister
	// minAge protects images whose post is still being written.
	minAge time.Duration
	now    func() time.Time

	mu        sync.Mutex
	lastStats GCStats
}

type GCStats struct {
	RunAt          time.Time
	FilesScanned   int
	OrphanedFiles  int
	FilesDeleted   int
	BytesReclaimed int64
	Duration       time.Duration
	Errors         []string
}

func NewUploadsGC(storage ImageRefStorage, files UploadLister, minAge time.Duration) *UploadsGC {
	return &UploadsGC{
		storage: storage,
		files:   files,
		minAge:  minAge,
		now:     time.Now,
	}
}

// Start runs a cleanup every interval until ctx is done.
func (gc *UploadsGC) Start(ctx context.Context, interval time.Duration) {
	log := logger.Component("uploads_gc")
	log.Info("started", "interval", interval, "min_age", gc.minAge)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				stats, err := gc.Run(ctx)
				if err != nil {
					log.Error("cleanup failed", "error", err)
					continue
				}
				log.Info("cleanup completed",
					"scanned", stats.FilesScanned,
					"orphans", stats.OrphanedFiles,
					"deleted", stats.FilesDeleted,
					"bytes_reclaimed", stats.BytesReclaimed,
					"duration", stats.Duration,
					"errors", len(stats.Errors),
				)
			case <-ctx.Done():
				log.Info("shutting down")
				return
			}
		}
	}()
}

// Run executes a single collection cycle.
func (gc *UploadsGC) Run(ctx context.Context) (GCStats, error) {
	start := gc.now()
	stats := GCStats{RunAt: start, Errors: []string{}}

	referenced, err := gc.storage.FeaturedImages(ctx)
	if err != nil {
		return stats, err
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		keep[name] = struct{}{}
	}

	files, err := gc.files.Files()
	if err != nil {
		return stats, err
	}
	stats.FilesScanned = len(files)

	for _, f := range files {
		if _, ok := keep[f.Name]; ok {
			continue
		}
		if start.Sub(f.ModTime) < gc.minAge {
			continue
		}
		stats.OrphanedFiles++
		if err := gc.files.Delete(f.Name); err != nil {
			stats.Errors = append(stats.Errors, "delete "+f.Name+": "+err.Error())
			continue
		}
		stats.FilesDeleted++
		stats.BytesReclaimed += f.Size
		metrics.UploadsReclaimed.Inc()
	}

	stats.Duration = gc.now().Sub(start)
	gc.mu.Lock()
	gc.lastStats = stats
	gc.mu.Unlock()
	return stats, nil
}

func (gc *UploadsGC) LastStats() GCStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.lastStats
}
