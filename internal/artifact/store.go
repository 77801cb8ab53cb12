package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wanlu-media/reelcheck/internal/model"
)

// ManifestFileName is the metadata file written next to every published
// artifact.
const ManifestFileName = "manifest.json"

// FileEntry describes one file of a published artifact.
type FileEntry struct {
	// Path is relative to the artifact root, using forward slashes.
	Path string `json:"path"`

	// Size is the file size in bytes. Symlinks record the link target
	// length and no checksum.
	Size int64 `json:"size"`

	// SHA256 is the hex digest of the file contents. Empty for symlinks.
	SHA256 string `json:"sha256,omitempty"`
}

// Manifest is the metadata of a published artifact. The CI uploader
// consumes the artifact directory as-is; the manifest is what makes a
// publication verifiable after the fact.
type Manifest struct {
	// RunID uniquely identifies the publishing run.
	RunID string `json:"runId"`

	// Name is the artifact name, exactly as configured.
	Name string `json:"name"`

	// Bundle is the bundle's directory name inside the artifact.
	Bundle string `json:"bundle"`

	// CreatedAt is the publication timestamp (UTC).
	CreatedAt time.Time `json:"createdAt"`

	// TotalSize is the sum of all file sizes in bytes.
	TotalSize int64 `json:"totalSize"`

	// Files lists every regular file and symlink, sorted by path.
	Files []FileEntry `json:"files"`
}

// Store publishes build outputs into a local artifact directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Dir returns the directory a given artifact name publishes into.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.root, name)
}

// Publish copies the bundle directory tree into the store under the
// given artifact name and writes the manifest. An existing artifact of
// the same name is replaced: publications are whole-artifact, never
// partial merges.
func (s *Store) Publish(name, bundlePath string) (*Manifest, error) {
	if name == "" {
		return nil, model.NewBuildError(model.ExitPublishError, "artifact name must not be empty")
	}
	if _, err := os.Stat(bundlePath); err != nil {
		return nil, model.WrapBuildError(model.ExitPublishError, "bundle path does not exist", err)
	}

	artifactDir := s.Dir(name)
	if err := os.RemoveAll(artifactDir); err != nil {
		return nil, model.WrapBuildError(model.ExitPublishError, "failed to clear previous artifact", err)
	}

	bundleName := filepath.Base(bundlePath)
	destBundle := filepath.Join(artifactDir, bundleName)
	if err := copyTree(bundlePath, destBundle); err != nil {
		return nil, model.WrapBuildError(model.ExitPublishError, "failed to copy bundle into artifact store", err)
	}

	files, totalSize, err := indexFiles(artifactDir)
	if err != nil {
		return nil, model.WrapBuildError(model.ExitPublishError, "failed to index artifact files", err)
	}

	manifest := &Manifest{
		RunID:     uuid.NewString(),
		Name:      name,
		Bundle:    bundleName,
		CreatedAt: time.Now().UTC(),
		TotalSize: totalSize,
		Files:     files,
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, model.WrapBuildError(model.ExitPublishError, "failed to encode artifact manifest", err)
	}
	if err := os.WriteFile(filepath.Join(artifactDir, ManifestFileName), data, 0o644); err != nil {
		return nil, model.WrapBuildError(model.ExitPublishError, "failed to write artifact manifest", err)
	}

	return manifest, nil
}

// copyTree copies a directory tree preserving file modes and symlinks.
// Application bundles rely on both: the main executable's exec bit and
// the symlink layout inside Frameworks directories.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm())
		case info.Mode()&os.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		default:
			return copyFileMode(path, target, info.Mode().Perm())
		}
	})
}

// copyFileMode copies a regular file, applying the given permissions.
func copyFileMode(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}

// indexFiles walks the artifact directory producing sorted file entries
// with sha256 digests, and the total byte count.
func indexFiles(root string) ([]FileEntry, int64, error) {
	var entries []FileEntry
	var total int64

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		entry := FileEntry{
			Path: filepath.ToSlash(rel),
			Size: info.Size(),
		}

		if info.Mode()&os.ModeSymlink == 0 {
			sum, err := hashFile(path)
			if err != nil {
				return fmt.Errorf("hash %s: %w", rel, err)
			}
			entry.SHA256 = sum
			total += info.Size()
		}

		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, total, nil
}

// hashFile returns the hex sha256 digest of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
