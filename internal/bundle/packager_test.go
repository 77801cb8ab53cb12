package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanlu-media/reelcheck/internal/model"
)

// TestMapping_String verifies the source:dest rendering and the "."
// default destination.
func TestMapping_String(t *testing.T) {
	assert.Equal(t, "mediainfo:.", Mapping{Source: "mediainfo"}.String())
	assert.Equal(t, "app_icon.icns:resources", Mapping{Source: "app_icon.icns", Dest: "resources"}.String())
}

// TestOptions_Args verifies the full argument list for a windowed GUI
// build, including ordering: flags first, entry script last.
func TestOptions_Args(t *testing.T) {
	opts := Options{
		AppName:     "MediaAnalyzer",
		EntryScript: "media_analyzer_app.py",
		Icon:        "app_icon.icns",
		Windowed:    true,
		AddBinaries: []Mapping{{Source: "mediainfo"}},
		DistDir:     "dist",
	}

	assert.Equal(t, []string{
		"--noconfirm",
		"--onedir",
		"--windowed",
		"--name", "MediaAnalyzer",
		"--icon", "app_icon.icns",
		"--add-binary", "mediainfo:.",
		"--distpath", "dist",
		"media_analyzer_app.py",
	}, opts.Args())
}

// TestOptions_Args_Minimal verifies only the always-on flags appear for
// a bare build.
func TestOptions_Args_Minimal(t *testing.T) {
	opts := Options{AppName: "App", EntryScript: "app.py"}
	assert.Equal(t, []string{"--noconfirm", "--onedir", "--name", "App", "app.py"}, opts.Args())
}

// TestOptions_Args_OneFile verifies the onefile variant and data mappings.
func TestOptions_Args_OneFile(t *testing.T) {
	opts := Options{
		AppName:     "App",
		EntryScript: "app.py",
		OneFile:     true,
		AddData:     []Mapping{{Source: "config.yml", Dest: "conf"}},
	}
	assert.Equal(t, []string{
		"--noconfirm", "--onefile",
		"--name", "App",
		"--add-data", "config.yml:conf",
		"app.py",
	}, opts.Args())
}

// fakePackagerRunner records the invocation and optionally creates the
// expected bundle directory, simulating a successful PyInstaller run.
type fakePackagerRunner struct {
	createApp string // .app path to create on run, "" to skip
	err       error

	gotDir  string
	gotName string
	gotArgs []string
}

func (f *fakePackagerRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	f.gotDir = dir
	f.gotName = name
	f.gotArgs = args
	if f.err != nil {
		return "", f.err
	}
	if f.createApp != "" {
		if err := os.MkdirAll(f.createApp, 0o755); err != nil {
			return "", err
		}
	}
	return "", nil
}

// TestBuild verifies the packager runs in the workspace and the bundle
// path is returned.
func TestBuild(t *testing.T) {
	workspace := t.TempDir()
	appPath := filepath.Join(workspace, "dist", "MediaAnalyzer.app")

	runner := &fakePackagerRunner{createApp: appPath}
	p := &Packager{pyinstaller: "/ws/venv/bin/pyinstaller", run: runner}

	got, err := p.Build(context.Background(), workspace, Options{
		AppName:     "MediaAnalyzer",
		EntryScript: "media_analyzer_app.py",
		Windowed:    true,
		DistDir:     "dist",
	})
	require.NoError(t, err)
	assert.Equal(t, appPath, got)

	assert.Equal(t, workspace, runner.gotDir)
	assert.Equal(t, "/ws/venv/bin/pyinstaller", runner.gotName)
	assert.Contains(t, runner.gotArgs, "--windowed")
}

// TestBuild_NoBundleProduced verifies the bundle exit code when the
// packager exits zero but the .app is missing.
func TestBuild_NoBundleProduced(t *testing.T) {
	p := &Packager{pyinstaller: "pyinstaller", run: &fakePackagerRunner{}}

	_, err := p.Build(context.Background(), t.TempDir(), Options{
		AppName:     "MediaAnalyzer",
		EntryScript: "app.py",
		DistDir:     "dist",
	})

	var buildErr *model.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, model.ExitBundleError, buildErr.Code)
	assert.Contains(t, err.Error(), "MediaAnalyzer.app")
}

// TestBuild_RunnerFailure verifies packager failures pass through.
func TestBuild_RunnerFailure(t *testing.T) {
	runner := &fakePackagerRunner{
		err: model.NewBuildError(model.ExitBundleError, "pyinstaller failed: no module named tkinter"),
	}
	p := &Packager{pyinstaller: "pyinstaller", run: runner}

	_, err := p.Build(context.Background(), t.TempDir(), Options{AppName: "App", EntryScript: "app.py"})
	assert.ErrorContains(t, err, "tkinter")
}

// TestTail verifies log-tail truncation keeps the end of the output.
func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 2000))
	long := make([]byte, 3000)
	for i := range long {
		long[i] = 'a'
	}
	got := tail(string(long), 2000)
	assert.Len(t, got, 2003) // "..." + last 2000 bytes
	assert.Equal(t, "...", got[:3])
}
