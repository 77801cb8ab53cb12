// Package pyenv provisions the pinned Python runtime for the build.
//
// It wraps the python and pip CLIs via os/exec: interpreter discovery
// with version verification, virtualenv creation, and package
// installation. Errors are wrapped in model.BuildError with
// ExitRuntimeError so the CLI surfaces runtime-provisioning failures
// with a dedicated exit code.
//
// We shell out rather than manage interpreters in-process because
// CPython installs are host-managed; the job here is the same as a CI
// setup step — find the right interpreter and prepare an isolated
// environment.
package pyenv
