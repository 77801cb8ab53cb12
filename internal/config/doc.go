// Package config loads and validates the reelbuild build manifest.
//
// The manifest carries every input the packaging pipeline consumes: the
// pinned Python version, the pip package list, the MediaInfo disk-image
// URL, the packager inputs (app name, entry script, icon), the artifact
// name, and the CI trigger surface. Both YAML (reelbuild.yml) and JSONC
// (reelbuild.jsonc) forms are accepted; JSONC is stripped to plain JSON
// with github.com/tidwall/jsonc before parsing.
package config
