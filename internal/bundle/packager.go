package bundle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wanlu-media/reelcheck/internal/model"
)

// Mapping is a PyInstaller resource mapping: a source file bundled into
// the application at the given destination directory ("." for the
// bundle root).
type Mapping struct {
	Source string
	Dest   string
}

// String renders the mapping in PyInstaller's source:dest form
// (the macOS/Linux separator; Windows uses ";" but this packager
// only targets darwin).
func (m Mapping) String() string {
	dest := m.Dest
	if dest == "" {
		dest = "."
	}
	return m.Source + ":" + dest
}

// Options describes one packager invocation. The zero value is not
// usable; AppName and EntryScript are required.
type Options struct {
	// AppName names the produced bundle (<AppName>.app).
	AppName string

	// EntryScript is the Python entry script, relative to the workspace.
	EntryScript string

	// Icon is the .icns resource, relative to the workspace. Optional.
	Icon string

	// Windowed builds a GUI app with no console window.
	Windowed bool

	// OneFile collapses the bundle into a single executable. The
	// default (false) is onedir output, which is what the .app wraps.
	OneFile bool

	// AddBinaries lists binaries bundled into the app (the mediainfo
	// CLI goes here so it survives code signing as a Mach-O).
	AddBinaries []Mapping

	// AddData lists plain data files bundled into the app.
	AddData []Mapping

	// DistDir is where PyInstaller writes its output, relative to the
	// workspace.
	DistDir string
}

// Args renders the options into the PyInstaller argument list.
// --noconfirm is always passed: the pipeline owns the dist directory
// and must never block on an interactive overwrite prompt.
func (o *Options) Args() []string {
	args := []string{"--noconfirm"}

	if o.OneFile {
		args = append(args, "--onefile")
	} else {
		args = append(args, "--onedir")
	}
	if o.Windowed {
		args = append(args, "--windowed")
	}

	args = append(args, "--name", o.AppName)

	if o.Icon != "" {
		args = append(args, "--icon", o.Icon)
	}
	for _, b := range o.AddBinaries {
		args = append(args, "--add-binary", b.String())
	}
	for _, d := range o.AddData {
		args = append(args, "--add-data", d.String())
	}
	if o.DistDir != "" {
		args = append(args, "--distpath", o.DistDir)
	}

	return append(args, o.EntryScript)
}

// runner abstracts packager execution for tests.
type runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("%s failed", name)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			// PyInstaller writes its build log to stderr; keep the
			// tail so the actual failure line survives.
			msg = fmt.Sprintf("%s: %s", msg, tail(s, 2000))
		}
		return "", model.WrapBuildError(model.ExitBundleError, msg, err)
	}
	return stdout.String(), nil
}

// tail returns at most the last n bytes of s.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

// Packager invokes PyInstaller inside the build virtualenv.
type Packager struct {
	// pyinstaller is the packager executable, normally the venv's
	// bin/pyinstaller so the packager sees the installed libraries.
	pyinstaller string

	run runner
}

// NewPackager creates a Packager using the given pyinstaller executable.
func NewPackager(pyinstaller string) *Packager {
	return &Packager{pyinstaller: pyinstaller, run: execRunner{}}
}

// Build runs the packager in the workspace and verifies the application
// bundle exists afterwards. Returns the absolute bundle path.
func (p *Packager) Build(ctx context.Context, workspace string, opts Options) (string, error) {
	if _, err := p.run.Run(ctx, workspace, p.pyinstaller, opts.Args()...); err != nil {
		return "", err
	}

	appPath := filepath.Join(workspace, opts.DistDir, opts.AppName+".app")
	info, err := os.Stat(appPath)
	if err != nil || !info.IsDir() {
		return "", model.NewBuildError(
			model.ExitBundleError,
			fmt.Sprintf("packager reported success but %s does not exist", appPath),
		)
	}
	return appPath, nil
}
