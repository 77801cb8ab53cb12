package diskimage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanlu-media/reelcheck/internal/model"
)

// hdiutilCall records one fake hdiutil invocation.
type hdiutilCall struct {
	name string
	args []string
}

// fakeHdiutil returns canned output per subcommand ("attach", "detach")
// and records every call.
type fakeHdiutil struct {
	outputs map[string]string
	errs    map[string]bool
	calls   []hdiutilCall
}

func (f *fakeHdiutil) Run(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, hdiutilCall{name: name, args: args})
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}
	if f.errs[sub] {
		return "", model.NewBuildError(model.ExitDiskImageError, "hdiutil "+sub+" failed")
	}
	return f.outputs[sub], nil
}

// attachOutput is real-world-shaped hdiutil attach output: one line per
// attached entity, the mounted filesystem last.
const attachOutput = "/dev/disk4          \tGUID_partition_scheme          \t\n" +
	"/dev/disk4s1        \tApple_HFS                      \t/Volumes/MediaInfoCLI\n"

// TestParseAttachOutput verifies mount-point extraction.
func TestParseAttachOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected string
		hasError bool
	}{
		{"two entities", attachOutput, "/Volumes/MediaInfoCLI", false},
		{"single line", "/dev/disk2\tApple_HFS\t/Volumes/Tool\n", "/Volumes/Tool", false},
		{"trailing whitespace", "/dev/disk2\tApple_HFS\t/Volumes/Tool   \n", "/Volumes/Tool", false},
		{"volume name with spaces", "/dev/disk2\tApple_HFS\t/Volumes/MediaInfo CLI\n", "/Volumes/MediaInfo CLI", false},
		{"no volumes line", "/dev/disk4\tGUID_partition_scheme\n", "", true},
		{"empty output", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mount, err := parseAttachOutput(tt.output)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, mount)
			}
		})
	}
}

// TestAttach verifies the hdiutil invocation and mount-point result.
func TestAttach(t *testing.T) {
	fake := &fakeHdiutil{outputs: map[string]string{"attach": attachOutput}}
	inst := &Installer{run: fake}

	mount, err := inst.Attach(context.Background(), "/tmp/MediaInfo.dmg")
	require.NoError(t, err)
	assert.Equal(t, "/Volumes/MediaInfoCLI", mount)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, "hdiutil", fake.calls[0].name)
	assert.Equal(t, []string{"attach", "-nobrowse", "/tmp/MediaInfo.dmg"}, fake.calls[0].args)
}

// TestAttach_NoMountPoint verifies unparseable output maps to the
// disk-image exit code.
func TestAttach_NoMountPoint(t *testing.T) {
	fake := &fakeHdiutil{outputs: map[string]string{"attach": "/dev/disk4\n"}}
	inst := &Installer{run: fake}

	_, err := inst.Attach(context.Background(), "/tmp/MediaInfo.dmg")
	var buildErr *model.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, model.ExitDiskImageError, buildErr.Code)
}

// TestDetach_ForcedFallback verifies a failed plain detach retries with
// -force.
func TestDetach_ForcedFallback(t *testing.T) {
	fake := &fakeHdiutil{errs: map[string]bool{"detach": true}}
	inst := &Installer{run: fake}

	// Both the plain and forced detach fail here; the error surfaces.
	err := inst.Detach(context.Background(), "/Volumes/MediaInfoCLI")
	assert.Error(t, err)
	require.Len(t, fake.calls, 2)
	assert.Equal(t, []string{"detach", "/Volumes/MediaInfoCLI"}, fake.calls[0].args)
	assert.Equal(t, []string{"detach", "-force", "/Volumes/MediaInfoCLI"}, fake.calls[1].args)
}

// TestDetach_PlainSucceeds verifies no forced retry on success.
func TestDetach_PlainSucceeds(t *testing.T) {
	fake := &fakeHdiutil{outputs: map[string]string{}}
	inst := &Installer{run: fake}

	require.NoError(t, inst.Detach(context.Background(), "/Volumes/MediaInfoCLI"))
	assert.Len(t, fake.calls, 1)
}

// TestDownload verifies the image is fetched to the destination path.
func TestDownload(t *testing.T) {
	payload := []byte("dmg-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	inst := &Installer{client: srv.Client()}
	dest := filepath.Join(t.TempDir(), "MediaInfo.dmg")

	require.NoError(t, inst.Download(context.Background(), srv.URL+"/MediaInfo.dmg", dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

// TestDownload_NonOKStatus verifies an error page is never written out
// as a disk image.
func TestDownload_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	inst := &Installer{client: srv.Client()}
	dest := filepath.Join(t.TempDir(), "MediaInfo.dmg")

	err := inst.Download(context.Background(), srv.URL+"/missing.dmg", dest)
	var buildErr *model.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, model.ExitDiskImageError, buildErr.Code)

	_, statErr := os.Stat(dest)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

// TestInstallBinary verifies the binary is found at depth, copied, and
// made executable.
func TestInstallBinary(t *testing.T) {
	mount := t.TempDir()
	payloadDir := filepath.Join(mount, "MediaInfo_CLI", "payload")
	require.NoError(t, os.MkdirAll(payloadDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(payloadDir, "mediainfo"), []byte("#!binary"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(mount, "README.txt"), []byte("docs"), 0o644))

	destDir := t.TempDir()
	inst := &Installer{}

	installed, err := inst.InstallBinary(mount, "mediainfo", destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "mediainfo"), installed)

	info, err := os.Stat(installed)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	got, err := os.ReadFile(installed)
	require.NoError(t, err)
	assert.Equal(t, []byte("#!binary"), got)
}

// TestInstallBinary_NotFound verifies the disk-image exit code when the
// volume has no such binary.
func TestInstallBinary_NotFound(t *testing.T) {
	inst := &Installer{}
	_, err := inst.InstallBinary(t.TempDir(), "mediainfo", t.TempDir())

	var buildErr *model.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, model.ExitDiskImageError, buildErr.Code)
	assert.Contains(t, err.Error(), "mediainfo")
}
