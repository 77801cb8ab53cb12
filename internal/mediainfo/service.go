package mediainfo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBinary is the mediainfo CLI name resolved via PATH when no
// explicit binary path is configured. The packaged app overrides this
// with the binary bundled next to the executable.
const DefaultBinary = "mediainfo"

// DefaultTimeout bounds a single file inspection. MediaInfo normally
// answers in well under a second; the timeout guards against a hung
// read on network mounts.
const DefaultTimeout = 30 * time.Second

// commandRunner abstracts process execution so tests can substitute
// canned output for the mediainfo CLI.
type commandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner is the real commandRunner backed by os/exec.
type execRunner struct{}

// Output runs the command and returns its stdout. On failure, stderr is
// folded into the returned error so the caller sees the tool's own
// diagnostic rather than just an exit status.
func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
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
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	return []byte(stdout.String()), nil
}

// Service inspects media files by invoking the mediainfo CLI with JSON
// output and mapping its tracks onto media.Details.
type Service struct {
	binary  string
	timeout time.Duration
	runner  commandRunner
}

// Option configures a Service.
type Option func(*Service)

// WithBinary sets the mediainfo binary path. Used by the packaged app to
// point at the bundled binary instead of whatever is on PATH.
func WithBinary(path string) Option {
	return func(s *Service) { s.binary = path }
}

// WithTimeout overrides the per-file inspection timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// withRunner substitutes the process runner. Test-only.
func withRunner(r commandRunner) Option {
	return func(s *Service) { s.runner = r }
}

// New creates a mediainfo inspection service.
func New(opts ...Option) *Service {
	s := &Service{
		binary:  DefaultBinary,
		timeout: DefaultTimeout,
		runner:  execRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BundledBinary returns the path of the mediainfo binary shipped inside
// the application bundle (next to the executable), or "" if the running
// process has no bundled copy. Callers fall back to PATH resolution.
func BundledBinary() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(filepath.Dir(exe), DefaultBinary)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}
