// Package bundle invokes PyInstaller to produce the application bundle.
//
// Options is a declarative description of one invocation (onedir vs
// onefile, windowed, name, icon, bundled binaries and data files)
// rendered to the packager's argument list by Args. Build runs the
// venv's pyinstaller in the workspace and verifies the expected .app
// directory exists before reporting success — PyInstaller can exit 0
// after a partial build when a hook misfires.
package bundle
