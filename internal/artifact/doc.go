// Package artifact implements the local artifact store the pipeline
// publishes into.
//
// A publication copies the application bundle tree (preserving exec bits
// and symlinks) into <store-root>/<artifact-name>/ and writes a
// manifest.json recording a run ID, timestamp, and the sha256 digest of
// every file. The artifact name is used exactly as configured — the CI
// upload step consumes the directory under that fixed name.
package artifact
