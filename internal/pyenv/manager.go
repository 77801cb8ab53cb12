package pyenv

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wanlu-media/reelcheck/internal/model"
)

// Env describes a provisioned build virtualenv.
type Env struct {
	// Root is the virtualenv directory.
	Root string

	// Python is the interpreter inside the virtualenv.
	Python string
}

// Bin returns the path of a command installed into the virtualenv
// (e.g. "pyinstaller", "pip").
func (e *Env) Bin(name string) string {
	return filepath.Join(e.Root, "bin", name)
}

// runner abstracts process execution for tests.
type runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// execRunner executes commands with os/exec, capturing stdout for the
// caller and folding stderr into error messages.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("%s %s failed", name, strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg = fmt.Sprintf("%s: %s", msg, s)
		}
		return "", model.WrapBuildError(model.ExitRuntimeError, msg, err)
	}
	return stdout.String(), nil
}

// Manager provisions the pinned Python runtime and its dependencies.
// It shells out to the interpreter and pip the same way CI setup actions
// do — there is no in-process Python to manage.
type Manager struct {
	run runner
}

// NewManager creates a pyenv Manager.
func NewManager() *Manager {
	return &Manager{run: execRunner{}}
}

// FindInterpreter locates a Python interpreter matching the pinned
// version. It tries the version-suffixed name first (python3.11 for a
// 3.11 pin), then the generic python3, verifying the reported version
// either way. Matching is on the major.minor prefix: a 3.11 pin accepts
// any 3.11.x interpreter, and a 3.11.9 pin accepts exactly 3.11.9.
func (m *Manager) FindInterpreter(ctx context.Context, version string) (string, error) {
	majorMinor := version
	if parts := strings.Split(version, "."); len(parts) >= 2 {
		majorMinor = parts[0] + "." + parts[1]
	}

	candidates := []string{"python" + majorMinor, "python3", "python"}

	var lastErr error
	for _, candidate := range candidates {
		out, err := m.run.Run(ctx, "", candidate, "--version")
		if err != nil {
			lastErr = err
			continue
		}
		if versionMatches(out, version) {
			return candidate, nil
		}
		lastErr = fmt.Errorf("%s reports %q, want %s", candidate, strings.TrimSpace(out), version)
	}

	return "", model.WrapBuildError(
		model.ExitRuntimeError,
		fmt.Sprintf("no Python %s interpreter found (tried %s)", version, strings.Join(candidates, ", ")),
		lastErr,
	)
}

// CreateVenv creates a virtualenv at dir using the given interpreter
// and returns the resulting Env.
func (m *Manager) CreateVenv(ctx context.Context, python, dir string) (*Env, error) {
	if _, err := m.run.Run(ctx, "", python, "-m", "venv", dir); err != nil {
		return nil, err
	}
	return &Env{
		Root:   dir,
		Python: filepath.Join(dir, "bin", "python"),
	}, nil
}

// InstallPackages installs the given pip packages into the virtualenv.
// A nil or empty package list is a no-op.
func (m *Manager) InstallPackages(ctx context.Context, env *Env, packages []string) error {
	if len(packages) == 0 {
		return nil
	}
	args := append([]string{"-m", "pip", "install"}, packages...)
	_, err := m.run.Run(ctx, "", env.Python, args...)
	return err
}

// versionMatches reports whether `python --version` output satisfies the
// pinned version. The output form is "Python 3.11.9". A two-component
// pin matches on major.minor; a three-component pin must match exactly.
func versionMatches(output, pinned string) bool {
	fields := strings.Fields(strings.TrimSpace(output))
	if len(fields) < 2 {
		return false
	}
	actual := fields[len(fields)-1]

	if strings.Count(pinned, ".") >= 2 {
		return actual == pinned
	}
	return actual == pinned || strings.HasPrefix(actual, pinned+".")
}
