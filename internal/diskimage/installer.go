package diskimage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/wanlu-media/reelcheck/internal/model"
)

// DownloadTimeout bounds the disk-image download. The MediaInfo CLI
// image is a few megabytes; anything that takes longer than this is a
// stalled connection, not a slow mirror.
const DownloadTimeout = 5 * time.Minute

// runner abstracts hdiutil execution for tests.
type runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner executes hdiutil with os/exec, folding stderr into errors.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("%s %s failed", name, strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg = fmt.Sprintf("%s: %s", msg, s)
		}
		return "", model.WrapBuildError(model.ExitDiskImageError, msg, err)
	}
	return stdout.String(), nil
}

// Installer downloads a disk image, mounts it with hdiutil, and installs
// a named binary from the mounted volume into a destination directory.
type Installer struct {
	run    runner
	client *http.Client
}

// NewInstaller creates a disk-image Installer.
func NewInstaller() *Installer {
	return &Installer{
		run:    execRunner{},
		client: &http.Client{Timeout: DownloadTimeout},
	}
}

// Download fetches the disk image at url into dest. Any HTTP status
// other than 200 is a failure — a mirror returning an HTML error page
// must not be mounted as a disk image.
func (i *Installer) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.WrapBuildError(model.ExitDiskImageError, "invalid disk image URL", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return model.WrapBuildError(model.ExitDiskImageError, fmt.Sprintf("failed to download %s", url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return model.NewBuildError(
			model.ExitDiskImageError,
			fmt.Sprintf("download %s: unexpected status %s", url, resp.Status),
		)
	}

	out, err := os.Create(dest)
	if err != nil {
		return model.WrapBuildError(model.ExitDiskImageError, "failed to create disk image file", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return model.WrapBuildError(model.ExitDiskImageError, "failed to write disk image", err)
	}
	return nil
}

// Attach mounts the disk image and returns its mount point under
// /Volumes. The -nobrowse flag keeps the volume out of the Finder
// sidebar on build machines.
func (i *Installer) Attach(ctx context.Context, dmgPath string) (string, error) {
	out, err := i.run.Run(ctx, "hdiutil", "attach", "-nobrowse", dmgPath)
	if err != nil {
		return "", err
	}

	mountPoint, err := parseAttachOutput(out)
	if err != nil {
		return "", model.WrapBuildError(
			model.ExitDiskImageError,
			fmt.Sprintf("could not determine mount point for %s", dmgPath),
			err,
		)
	}
	return mountPoint, nil
}

// Detach unmounts the volume. If the plain detach fails (a process still
// holds a file open), a forced detach is attempted before giving up.
func (i *Installer) Detach(ctx context.Context, mountPoint string) error {
	if _, err := i.run.Run(ctx, "hdiutil", "detach", mountPoint); err == nil {
		return nil
	}
	_, err := i.run.Run(ctx, "hdiutil", "detach", "-force", mountPoint)
	return err
}

// InstallBinary locates the named binary on the mounted volume, copies
// it into destDir, and marks it executable. Returns the installed path.
func (i *Installer) InstallBinary(mountPoint, binaryName, destDir string) (string, error) {
	src, err := findBinary(mountPoint, binaryName)
	if err != nil {
		return "", model.WrapBuildError(
			model.ExitDiskImageError,
			fmt.Sprintf("binary %q not found on mounted volume %s", binaryName, mountPoint),
			err,
		)
	}

	dest := filepath.Join(destDir, binaryName)
	if err := copyFile(src, dest); err != nil {
		return "", model.WrapBuildError(model.ExitDiskImageError, "failed to install binary", err)
	}

	if err := os.Chmod(dest, 0o755); err != nil {
		return "", model.WrapBuildError(model.ExitDiskImageError, "failed to mark binary executable", err)
	}
	return dest, nil
}

// parseAttachOutput extracts the mount point from hdiutil attach output.
// The output is a table of tab-separated columns per attached entity;
// the mounted filesystem's line ends with the /Volumes path:
//
//	/dev/disk4          	GUID_partition_scheme
//	/dev/disk4s1        	Apple_HFS            	/Volumes/MediaInfoCLI
func parseAttachOutput(output string) (string, error) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "/Volumes/")
		if idx < 0 {
			continue
		}
		return strings.TrimSpace(line[idx:]), nil
	}
	return "", fmt.Errorf("no /Volumes mount point in hdiutil output")
}

// findBinary walks the mounted volume for a regular file with the given
// name. Vendor images ship the binary at varying depths (volume root,
// a payload directory, an extracted .pkg tree), so the whole volume is
// searched. Walk errors on individual entries are skipped: disk images
// often contain unreadable metadata files.
func findBinary(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || d.Name() != name {
			return nil
		}
		found = path
		return fs.SkipAll
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no file named %q under %s", name, root)
	}
	return found, nil
}

// copyFile copies src to dest, truncating any existing file.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}
