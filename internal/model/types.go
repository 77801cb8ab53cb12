package model

import (
	"fmt"
	"strings"
)

// StageID identifies one stage of the packaging pipeline. The pipeline
// always runs stages in the order they are declared below:
//
//	workspace → runtime → deps → toolinstall → bundle → publish
type StageID string

const (
	// StageWorkspace validates that the build workspace contains the
	// entry script and icon named in the build manifest.
	StageWorkspace StageID = "workspace"

	// StageRuntime locates a Python interpreter matching the pinned
	// version and creates the build virtualenv.
	StageRuntime StageID = "runtime"

	// StageDeps installs the manifest's package list into the virtualenv.
	StageDeps StageID = "deps"

	// StageToolInstall downloads the MediaInfo disk image, mounts it,
	// and installs the mediainfo CLI binary into the workspace.
	StageToolInstall StageID = "toolinstall"

	// StageBundle invokes PyInstaller to produce the application bundle.
	StageBundle StageID = "bundle"

	// StagePublish copies the bundle into the artifact store under the
	// fixed artifact name.
	StagePublish StageID = "publish"
)

// AllStages lists every pipeline stage in execution order.
var AllStages = []StageID{
	StageWorkspace,
	StageRuntime,
	StageDeps,
	StageToolInstall,
	StageBundle,
	StagePublish,
}

// String returns the string representation of StageID.
// This satisfies fmt.Stringer for CLI output and logging.
func (s StageID) String() string {
	return string(s)
}

// IsValid checks whether the StageID is one of the defined stages.
func (s StageID) IsValid() bool {
	switch s {
	case StageWorkspace, StageRuntime, StageDeps, StageToolInstall, StageBundle, StagePublish:
		return true
	default:
		return false
	}
}

// ParseStageID converts a string to a StageID.
// Returns an error if the string does not name a known stage.
func ParseStageID(s string) (StageID, error) {
	id := StageID(strings.ToLower(s))
	if !id.IsValid() {
		return "", fmt.Errorf("invalid stage %q (valid: workspace, runtime, deps, toolinstall, bundle, publish)", s)
	}
	return id, nil
}

// ExitCode defines the CLI exit codes. Any stage failure aborts the whole
// pipeline; the exit code tells scripts and CI which class of stage failed.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the build manifest was missing or invalid.
	ExitConfigError ExitCode = 2

	// ExitRuntimeError indicates interpreter discovery, virtualenv
	// creation, or dependency installation failed.
	ExitRuntimeError ExitCode = 3

	// ExitDiskImageError indicates the disk image could not be
	// downloaded, mounted, or its binary installed.
	ExitDiskImageError ExitCode = 4

	// ExitBundleError indicates the packager failed or produced no
	// application bundle.
	ExitBundleError ExitCode = 5

	// ExitPublishError indicates the bundle could not be copied into
	// the artifact store.
	ExitPublishError ExitCode = 6

	// ExitAnalyzeError indicates the headless analyzer could not
	// inspect its inputs.
	ExitAnalyzeError ExitCode = 7
)

// BuildError is a custom error type that carries an exit code.
// It lets the CLI layer translate domain errors into OS exit codes.
type BuildError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *BuildError) Unwrap() error {
	return e.Err
}

// NewBuildError creates a new BuildError with the given exit code and message.
func NewBuildError(code ExitCode, message string) *BuildError {
	return &BuildError{Code: code, Message: message}
}

// WrapBuildError creates a new BuildError that wraps an existing error.
func WrapBuildError(code ExitCode, message string, err error) *BuildError {
	return &BuildError{Code: code, Message: message, Err: err}
}
