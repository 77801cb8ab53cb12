package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wanlu-media/reelcheck/internal/media"
)

// mediaExtensions lists the file extensions picked up by folder scans,
// matching the file-dialog filter of the desktop app.
var mediaExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true,
	".mp3": true, ".wav": true, ".aac": true, ".flac": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
}

// IsMediaFile reports whether the path has a recognized media extension.
// The check is case-insensitive.
func IsMediaFile(path string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(path))]
}

// CollectFiles walks root recursively and returns every media file found,
// in sorted order so scans of the same tree are deterministic. The walk
// stops early when ctx is cancelled.
func CollectFiles(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if IsMediaFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Inspector extracts details from a single media file. Satisfied by
// mediainfo.Service; tests substitute a stub.
type Inspector interface {
	Inspect(ctx context.Context, path string) (*media.Details, error)
}

// Result is one analyzed file emitted on the scanner's result channel.
// Index preserves submission order so consumers can display results in
// the order files were queued even though workers finish out of order.
type Result struct {
	Index   int
	Path    string
	Details *media.Details
}

// Scanner analyzes batches of media files on background workers.
type Scanner struct {
	inspector Inspector
	workers   int
}

// NewScanner creates a Scanner. workers <= 0 falls back to a single
// worker, which also preserves strict submission order on the channel.
func NewScanner(inspector Inspector, workers int) *Scanner {
	if workers <= 0 {
		workers = 1
	}
	return &Scanner{inspector: inspector, workers: workers}
}

// Analyze inspects the given paths on background goroutines and returns
// a channel of results. The channel is closed once every path has been
// handled or ctx is cancelled.
//
// Inspection failures do not abort the batch: a failed file is emitted
// as a processing-error result so it still shows up (flagged) in the
// table, matching the desktop app's behavior.
func (s *Scanner) Analyze(ctx context.Context, paths []string) <-chan Result {
	jobs := make(chan Result)
	results := make(chan Result)

	go func() {
		defer close(jobs)
		for i, path := range paths {
			select {
			case jobs <- Result{Index: i, Path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(s.workers)
	for w := 0; w < s.workers; w++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				details, err := s.inspector.Inspect(ctx, job.Path)
				if err != nil {
					details = media.ProcessingError(job.Path, filepath.Base(job.Path), err)
				}
				job.Details = details
				select {
				case results <- job:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
