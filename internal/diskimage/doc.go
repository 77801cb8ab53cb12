// Package diskimage provisions a binary distributed as a macOS disk image.
//
// The toolinstall pipeline stage uses it to fetch the MediaInfo CLI:
// download the .dmg over HTTPS, mount it with `hdiutil attach -nobrowse`,
// locate the binary on the mounted volume, copy it into the workspace,
// mark it executable, and detach the volume (forced on the second try if
// a plain detach fails). The mount point is parsed from hdiutil's
// tabular output.
//
// hdiutil has no SDK; mounting disk images is inherently an invocation
// of the platform tool, so this package is an exec wrapper in the same
// shape as the rest of the build tooling.
package diskimage
