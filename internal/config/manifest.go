package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/wanlu-media/reelcheck/internal/model"
)

// Default values applied by ApplyDefaults for fields the manifest omits.
const (
	// DefaultOutputDir is where the packager writes the .app bundle,
	// relative to the workspace.
	DefaultOutputDir = "dist"

	// DefaultArtifactDir is the root of the local artifact store,
	// relative to the workspace.
	DefaultArtifactDir = "dist/artifacts"

	// DefaultToolBinary is the media-inspection binary installed from
	// the disk image.
	DefaultToolBinary = "mediainfo"
)

// Triggers records the CI trigger surface for the build. The CLI itself
// runs on demand; these fields exist so the workflow layer and the build
// tool share a single source of truth about when builds fire.
type Triggers struct {
	// Push lists branch names whose pushes trigger a build.
	Push []string `yaml:"push" json:"push,omitempty"`

	// PullRequest lists target branches whose pull requests trigger a build.
	PullRequest []string `yaml:"pullRequest" json:"pullRequest,omitempty"`

	// ManualDispatch allows triggering a build by hand.
	ManualDispatch bool `yaml:"manualDispatch" json:"manualDispatch,omitempty"`
}

// Manifest is the parsed build manifest (reelbuild.yml). It carries every
// input the packaging pipeline consumes: the pinned interpreter version,
// the dependency list, the disk-image URL for the inspection tool, the
// packager inputs, and the artifact name.
type Manifest struct {
	// AppName is the application bundle name (produces <AppName>.app).
	AppName string `yaml:"appName" json:"appName"`

	// ArtifactName is the exact name the published artifact is stored under.
	ArtifactName string `yaml:"artifactName" json:"artifactName"`

	// EntryScript is the Python entry script, relative to the workspace.
	EntryScript string `yaml:"entryScript" json:"entryScript"`

	// Icon is the .icns icon resource, relative to the workspace.
	Icon string `yaml:"icon" json:"icon"`

	// PythonVersion is the pinned interpreter version, "major.minor" or
	// "major.minor.patch". Matching is by major.minor prefix.
	PythonVersion string `yaml:"pythonVersion" json:"pythonVersion"`

	// Packages lists the pip packages installed before bundling.
	Packages []string `yaml:"packages" json:"packages"`

	// ToolURL is the HTTPS URL of the MediaInfo CLI disk image.
	ToolURL string `yaml:"toolURL" json:"toolURL"`

	// ToolBinary is the binary name installed from the disk image.
	// Defaults to "mediainfo".
	ToolBinary string `yaml:"toolBinary" json:"toolBinary"`

	// OutputDir is the packager output directory, relative to the
	// workspace. Defaults to "dist".
	OutputDir string `yaml:"outputDir" json:"outputDir"`

	// ArtifactDir is the artifact store root, relative to the workspace.
	// Defaults to "dist/artifacts".
	ArtifactDir string `yaml:"artifactDir" json:"artifactDir"`

	// Triggers records when CI runs this build.
	Triggers Triggers `yaml:"triggers" json:"triggers"`
}

// manifestNames are the candidate manifest file names, in priority order.
var manifestNames = []string{
	"reelbuild.yml",
	"reelbuild.yaml",
	"reelbuild.jsonc",
}

// Find locates the build manifest under the workspace root, trying the
// candidate names in priority order. Returns a BuildError with
// ExitConfigError if none exists.
func Find(workspace string) (string, error) {
	for _, name := range manifestNames {
		path := filepath.Join(workspace, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", model.NewBuildError(
		model.ExitConfigError,
		fmt.Sprintf("no build manifest found in %s (searched %s)", workspace, strings.Join(manifestNames, ", ")),
	)
}

// Load reads and parses the manifest at the given path. YAML and JSONC
// are both supported; the format is chosen by file extension. Defaults
// are applied and the result is validated before being returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapBuildError(
				model.ExitConfigError,
				fmt.Sprintf("build manifest not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read build manifest: %w", err)
	}

	var m Manifest
	if strings.HasSuffix(path, ".jsonc") || strings.HasSuffix(path, ".json") {
		// Strip comments and trailing commas, then parse with the
		// standard library. Same approach the JSONC ecosystem uses for
		// devcontainer.json and friends.
		if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
			return nil, model.WrapBuildError(
				model.ExitConfigError,
				fmt.Sprintf("failed to parse build manifest %s", path),
				err,
			)
		}
	} else {
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, model.WrapBuildError(
				model.ExitConfigError,
				fmt.Sprintf("failed to parse build manifest %s", path),
				err,
			)
		}
	}

	m.ApplyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplyDefaults fills in the optional fields the manifest omitted.
func (m *Manifest) ApplyDefaults() {
	if m.OutputDir == "" {
		m.OutputDir = DefaultOutputDir
	}
	if m.ArtifactDir == "" {
		m.ArtifactDir = DefaultArtifactDir
	}
	if m.ToolBinary == "" {
		m.ToolBinary = DefaultToolBinary
	}
}

// versionRegex validates the pinned interpreter version:
// "major.minor" with an optional ".patch".
var versionRegex = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// Validate checks the manifest for the fields the pipeline cannot run
// without. All validation failures map to ExitConfigError.
func (m *Manifest) Validate() error {
	if m.AppName == "" {
		return model.NewBuildError(model.ExitConfigError, "build manifest: appName must not be empty")
	}
	if m.ArtifactName == "" {
		return model.NewBuildError(model.ExitConfigError, "build manifest: artifactName must not be empty")
	}
	if m.EntryScript == "" {
		return model.NewBuildError(model.ExitConfigError, "build manifest: entryScript must not be empty")
	}
	if m.PythonVersion == "" || !versionRegex.MatchString(m.PythonVersion) {
		return model.NewBuildError(
			model.ExitConfigError,
			fmt.Sprintf("build manifest: pythonVersion %q must be major.minor or major.minor.patch", m.PythonVersion),
		)
	}
	if m.ToolURL != "" {
		u, err := url.Parse(m.ToolURL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return model.NewBuildError(
				model.ExitConfigError,
				fmt.Sprintf("build manifest: toolURL %q must be an https URL", m.ToolURL),
			)
		}
	}
	return nil
}

// BundleName returns the file name of the produced application bundle.
func (m *Manifest) BundleName() string {
	return m.AppName + ".app"
}
