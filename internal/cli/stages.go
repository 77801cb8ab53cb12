// stages.go builds the pipeline.Stage values shared by the build,
// provision, bundle, and publish commands. Each command assembles the
// subset of stages it owns from the same constructors, so a full build
// and a staged build behave identically.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wanlu-media/reelcheck/internal/artifact"
	"github.com/wanlu-media/reelcheck/internal/bundle"
	"github.com/wanlu-media/reelcheck/internal/config"
	"github.com/wanlu-media/reelcheck/internal/diskimage"
	"github.com/wanlu-media/reelcheck/internal/model"
	"github.com/wanlu-media/reelcheck/internal/pipeline"
	"github.com/wanlu-media/reelcheck/internal/pyenv"
)

// venvDirName is where the build virtualenv lives under the workspace.
const venvDirName = ".reelbuild/venv"

// toolInstaller is the disk-image surface the toolinstall stage drives.
// Satisfied by diskimage.Installer; tests substitute a fake.
type toolInstaller interface {
	Download(ctx context.Context, url, dest string) error
	Attach(ctx context.Context, dmgPath string) (string, error)
	Detach(ctx context.Context, mountPoint string) error
	InstallBinary(mountPoint, binaryName, destDir string) (string, error)
}

// buildContext carries the state threaded through the pipeline stages:
// the manifest, the workspace, and the paths produced by earlier stages
// and consumed by later ones.
type buildContext struct {
	cfg       *config.Manifest
	workspace string

	// skipTool skips the disk-image stage (--skip-tool), for hosts that
	// already have the mediainfo binary in the workspace.
	skipTool bool

	// bundleOverride replaces the computed bundle path for publish-only
	// runs (--bundle).
	bundleOverride string

	pym       *pyenv.Manager
	installer toolInstaller

	// env is set by the runtime stage (or recovered from disk when a
	// later stage runs standalone).
	env *pyenv.Env

	// toolPath is set by the toolinstall stage.
	toolPath string

	// appPath is set by the bundle stage.
	appPath string

	// published is set by the publish stage.
	published *artifact.Manifest
}

func newBuildContext(workspace string, cfg *config.Manifest) *buildContext {
	return &buildContext{
		cfg:       cfg,
		workspace: workspace,
		pym:       pyenv.NewManager(),
		installer: diskimage.NewInstaller(),
	}
}

// venvDir returns the absolute virtualenv path for this workspace.
func (bc *buildContext) venvDir() string {
	return filepath.Join(bc.workspace, venvDirName)
}

// ensureEnv recovers the virtualenv from disk for commands that run the
// bundle stage without having run the runtime stage in the same process.
func (bc *buildContext) ensureEnv() error {
	if bc.env != nil {
		return nil
	}
	python := filepath.Join(bc.venvDir(), "bin", "python")
	if _, err := os.Stat(python); err != nil {
		return model.WrapBuildError(
			model.ExitRuntimeError,
			fmt.Sprintf("no provisioned virtualenv at %s (run `reelcheck-build provision` first)", bc.venvDir()),
			err,
		)
	}
	bc.env = &pyenv.Env{Root: bc.venvDir(), Python: python}
	return nil
}

// workspaceStage validates that the files the manifest names actually
// exist in the workspace. This is the local equivalent of the checkout
// step: the sources must be present before anything runs.
func (bc *buildContext) workspaceStage() pipeline.Stage {
	return pipeline.Stage{
		ID: model.StageWorkspace,
		Run: func(ctx context.Context) error {
			entry := filepath.Join(bc.workspace, bc.cfg.EntryScript)
			if _, err := os.Stat(entry); err != nil {
				return model.WrapBuildError(
					model.ExitConfigError,
					fmt.Sprintf("entry script %s not found in workspace", bc.cfg.EntryScript),
					err,
				)
			}
			if bc.cfg.Icon != "" {
				icon := filepath.Join(bc.workspace, bc.cfg.Icon)
				if _, err := os.Stat(icon); err != nil {
					return model.WrapBuildError(
						model.ExitConfigError,
						fmt.Sprintf("icon %s not found in workspace", bc.cfg.Icon),
						err,
					)
				}
			}
			return nil
		},
	}
}

// runtimeStage locates the pinned interpreter and creates the build
// virtualenv.
func (bc *buildContext) runtimeStage() pipeline.Stage {
	return pipeline.Stage{
		ID: model.StageRuntime,
		Run: func(ctx context.Context) error {
			python, err := bc.pym.FindInterpreter(ctx, bc.cfg.PythonVersion)
			if err != nil {
				return err
			}
			VerboseLog("using interpreter %s", python)

			env, err := bc.pym.CreateVenv(ctx, python, bc.venvDir())
			if err != nil {
				return err
			}
			bc.env = env
			return nil
		},
	}
}

// depsStage installs the manifest's package list into the virtualenv.
func (bc *buildContext) depsStage() pipeline.Stage {
	return pipeline.Stage{
		ID: model.StageDeps,
		Run: func(ctx context.Context) error {
			if err := bc.ensureEnv(); err != nil {
				return err
			}
			VerboseLog("installing %d package(s)", len(bc.cfg.Packages))
			return bc.pym.InstallPackages(ctx, bc.env, bc.cfg.Packages)
		},
	}
}

// toolInstallStage downloads the MediaInfo disk image, mounts it,
// installs the binary into the workspace, and detaches the volume.
// The detach runs even when installation fails: a dangling mounted
// volume would break the next build on the same host.
func (bc *buildContext) toolInstallStage() pipeline.Stage {
	return pipeline.Stage{
		ID: model.StageToolInstall,
		Run: func(ctx context.Context) error {
			if bc.skipTool || bc.cfg.ToolURL == "" {
				VerboseLog("skipping tool install")
				if existing := filepath.Join(bc.workspace, bc.cfg.ToolBinary); fileExists(existing) {
					bc.toolPath = existing
				}
				return nil
			}

			tmpDir, err := os.MkdirTemp("", "reelbuild-dmg-*")
			if err != nil {
				return model.WrapBuildError(model.ExitDiskImageError, "failed to create temp dir", err)
			}
			defer func() { _ = os.RemoveAll(tmpDir) }()

			dmgPath := filepath.Join(tmpDir, "tool.dmg")
			VerboseLog("downloading %s", bc.cfg.ToolURL)
			if err := bc.installer.Download(ctx, bc.cfg.ToolURL, dmgPath); err != nil {
				return err
			}

			mountPoint, err := bc.installer.Attach(ctx, dmgPath)
			if err != nil {
				return err
			}
			VerboseLog("mounted at %s", mountPoint)
			defer func() {
				// The detach must run even when ctx was cancelled
				// mid-stage; a dangling mount breaks the next build.
				detachCtx := context.WithoutCancel(ctx)
				if err := bc.installer.Detach(detachCtx, mountPoint); err != nil {
					VerboseLog("detach %s failed: %v", mountPoint, err)
				}
			}()

			toolPath, err := bc.installer.InstallBinary(mountPoint, bc.cfg.ToolBinary, bc.workspace)
			if err != nil {
				return err
			}
			bc.toolPath = toolPath
			VerboseLog("installed %s", toolPath)
			return nil
		},
	}
}

// bundleStage invokes the packager with the manifest's fixed option set.
func (bc *buildContext) bundleStage() pipeline.Stage {
	return pipeline.Stage{
		ID: model.StageBundle,
		Run: func(ctx context.Context) error {
			if err := bc.ensureEnv(); err != nil {
				return err
			}

			opts := bundle.Options{
				AppName:     bc.cfg.AppName,
				EntryScript: bc.cfg.EntryScript,
				Icon:        bc.cfg.Icon,
				Windowed:    true,
				DistDir:     bc.cfg.OutputDir,
			}

			// Bundle the mediainfo binary when the workspace has one,
			// whether this run installed it or a previous provision did.
			// The path is relative to the workspace because the packager
			// runs with the workspace as its working directory.
			if fileExists(filepath.Join(bc.workspace, bc.cfg.ToolBinary)) {
				opts.AddBinaries = append(opts.AddBinaries, bundle.Mapping{
					Source: bc.cfg.ToolBinary,
					Dest:   ".",
				})
			}

			packager := bundle.NewPackager(bc.env.Bin("pyinstaller"))
			appPath, err := packager.Build(ctx, bc.workspace, opts)
			if err != nil {
				return err
			}
			bc.appPath = appPath
			VerboseLog("bundle at %s", appPath)
			return nil
		},
	}
}

// publishStage copies the bundle into the artifact store under the
// manifest's fixed artifact name.
func (bc *buildContext) publishStage() pipeline.Stage {
	return pipeline.Stage{
		ID: model.StagePublish,
		Run: func(ctx context.Context) error {
			bundlePath := bc.bundleOverride
			if bundlePath == "" {
				bundlePath = bc.appPath
			}
			if bundlePath == "" {
				bundlePath = filepath.Join(bc.workspace, bc.cfg.OutputDir, bc.cfg.BundleName())
			}

			store := artifact.NewStore(filepath.Join(bc.workspace, bc.cfg.ArtifactDir))
			manifest, err := store.Publish(bc.cfg.ArtifactName, bundlePath)
			if err != nil {
				return err
			}
			bc.published = manifest
			VerboseLog("published %s (%d files, run %s)", manifest.Name, len(manifest.Files), manifest.RunID)
			return nil
		},
	}
}

// provisionStages returns the stages that prepare the workspace for
// packaging: validation, runtime, dependencies, and tool install.
func (bc *buildContext) provisionStages() []pipeline.Stage {
	return []pipeline.Stage{
		bc.workspaceStage(),
		bc.runtimeStage(),
		bc.depsStage(),
		bc.toolInstallStage(),
	}
}

// allStages returns the complete pipeline in execution order.
func (bc *buildContext) allStages() []pipeline.Stage {
	return append(bc.provisionStages(), bc.bundleStage(), bc.publishStage())
}

// loadManifest resolves the workspace to an absolute path and loads its
// build manifest. An explicit configPath bypasses the search. Shared by
// every pipeline-running command.
func loadManifest(workspace, configPath string) (string, *config.Manifest, error) {
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return "", nil, model.WrapBuildError(model.ExitGeneralError, "failed to resolve workspace path", err)
	}

	manifestPath := configPath
	if manifestPath == "" {
		manifestPath, err = config.Find(abs)
		if err != nil {
			return "", nil, err
		}
	}
	VerboseLog("build manifest: %s", manifestPath)

	cfg, err := config.Load(manifestPath)
	if err != nil {
		return "", nil, err
	}
	return abs, cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
