// Package setup sequences a full run: resolve the environment, install the
// fixed modding components, then install any user-supplied mod archives.
//
// Everything is sequential. Component failures are fatal in full-setup mode;
// per-archive failures in mod installation are not, and the run only fails
// when nothing was installed at all.
package setup

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/pterm/pterm"

	"balatro-setup/pkg/archive"
	"balatro-setup/pkg/classify"
	"balatro-setup/pkg/config"
	"balatro-setup/pkg/deps"
	"balatro-setup/pkg/errors"
	"balatro-setup/pkg/fetch"
	"balatro-setup/pkg/install"
	"balatro-setup/pkg/logging"
	"balatro-setup/pkg/steam"
)

// ModsDirName is the directory mods are loaded from, under the data root.
const ModsDirName = "Mods"

// Options configures one run.
type Options struct {
	Config *config.Config

	// InstallDir overrides auto-detection (from --install-dir).
	InstallDir string

	// ModArchives are user-supplied archives to install, in order.
	ModArchives []string

	// ModsOnly skips the fixed components (the --mod flow).
	ModsOnly bool

	// Prompt is the interactive fallback for environment resolution.
	// Nil makes resolution failure fatal immediately.
	Prompt steam.PathPrompter

	// Client defaults to fetch.NewClient; tests substitute an API stub.
	Client *fetch.Client

	// Home overrides the home directory, for tests.
	Home string
}

// Result summarizes a run.
type Result struct {
	Env       *steam.ResolvedEnvironment
	Installed int
	Failed    int
}

// Run executes the setup. The returned error is fatal-level; per-archive
// problems are reflected in Result counts instead.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.GetLogger("setup")
	cfg := opts.Config

	deps.Report()

	installDir := opts.InstallDir
	if installDir == "" {
		installDir = cfg.Game.InstallDir
	}

	env, err := steam.Resolve(steam.Options{
		Home:       opts.Home,
		InstallDir: installDir,
		AppID:      cfg.Game.AppID,
		Marker:     cfg.Game.Executable,
		Prompt:     opts.Prompt,
	})
	if err != nil {
		return nil, err
	}
	pterm.Info.Printfln("Found Balatro (%s) at %s", env.Env, env.InstallRoot)
	pterm.Info.Printfln("Mods directory: %s", filepath.Join(env.DataRoot, ModsDirName))

	workdir, err := archive.NewWorkdir()
	if err != nil {
		return nil, err
	}
	defer workdir.Cleanup()

	client := opts.Client
	if client == nil {
		client = fetch.NewClient()
	}

	result := &Result{Env: env}

	if !opts.ModsOnly {
		if err := installLovely(ctx, client, cfg, workdir, env); err != nil {
			return result, err
		}
		if err := installSteamodded(ctx, client, cfg, workdir, env); err != nil {
			return result, err
		}
	}

	for _, archivePath := range opts.ModArchives {
		installed, failed := installArchive(ctx, cfg, workdir, env, archivePath)
		result.Installed += installed
		result.Failed += failed
	}

	if len(opts.ModArchives) > 0 {
		pterm.Info.Printfln("Mods installed: %d, failed: %d", result.Installed, result.Failed)
		if result.Installed == 0 {
			return result, errors.New(errors.ErrNoModContent, "no mods were installed successfully")
		}
	}

	logger.Info().Int("installed", result.Installed).Int("failed", result.Failed).Msg("Setup finished")
	return result, nil
}

// installLovely downloads the Lovely injector release asset and drops its
// version.dll into the game directory, where Proton's loader picks it up.
func installLovely(ctx context.Context, client *fetch.Client, cfg *config.Config, workdir *archive.Workdir, env *steam.ResolvedEnvironment) error {
	comp := cfg.Components.Lovely
	pterm.Info.Printfln("Installing Lovely injector from %s", comp.Repo)

	rel, err := client.LatestRelease(ctx, comp.Repo)
	if err != nil {
		return err
	}
	asset, err := rel.Asset(comp.AssetPattern)
	if err != nil {
		return err
	}

	dlDir, err := workdir.Sub("lovely-download")
	if err != nil {
		return err
	}
	archivePath, err := fetch.Download(ctx, asset.BrowserDownloadURL, dlDir)
	if err != nil {
		return err
	}

	extractDir, err := workdir.Sub("lovely")
	if err != nil {
		return err
	}
	if err := archive.Extract(ctx, archivePath, extractDir); err != nil {
		return err
	}

	payload, err := findFile(extractDir, comp.Payload)
	if err != nil {
		return err
	}
	if err := install.InstallFile(payload, env.InstallRoot, comp.Payload); err != nil {
		return err
	}

	pterm.Success.Printfln("Lovely injector %s installed", rel.TagName)
	return nil
}

// installSteamodded downloads the Steamodded source zipball and installs it
// under its fixed name in the Mods directory.
func installSteamodded(ctx context.Context, client *fetch.Client, cfg *config.Config, workdir *archive.Workdir, env *steam.ResolvedEnvironment) error {
	comp := cfg.Components.Steamodded
	pterm.Info.Printfln("Installing Steamodded from %s", comp.Repo)

	rel, err := client.LatestRelease(ctx, comp.Repo)
	if err != nil {
		return err
	}

	dlDir, err := workdir.Sub("smods-download")
	if err != nil {
		return err
	}
	archivePath, err := fetch.Download(ctx, rel.ZipballURL, filepath.Join(dlDir, "smods.zip"))
	if err != nil {
		return err
	}

	extractDir, err := workdir.Sub("smods")
	if err != nil {
		return err
	}
	if err := archive.Extract(ctx, archivePath, extractDir); err != nil {
		return err
	}

	units, err := classify.Classify(extractDir, "smods.zip", classifyOptions(cfg))
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return errors.Newf(errors.ErrNoModContent, "release %s of %s contains no mod content", rel.TagName, comp.Repo)
	}

	target := install.Target{Root: filepath.Join(env.DataRoot, ModsDirName), Name: comp.InstallName}
	unit := classify.ContentUnit{Name: comp.InstallName, Source: units[0].Source}
	if err := install.Install(unit, target); err != nil {
		return err
	}

	pterm.Success.Printfln("Steamodded %s installed", rel.TagName)
	return nil
}

// installArchive extracts, classifies and installs one user archive.
// Failures are reported per unit and never abort the batch.
func installArchive(ctx context.Context, cfg *config.Config, workdir *archive.Workdir, env *steam.ResolvedEnvironment, archivePath string) (installed, failed int) {
	logger := logging.GetLogger("setup")
	name := filepath.Base(archivePath)

	pterm.Info.Printfln("Installing %s", name)

	if !archive.Supported(archivePath) {
		pterm.Warning.Printfln("Skipping %s: unsupported archive format", name)
		return 0, 1
	}

	extractDir, err := workdir.Sub(classify.StripArchiveExt(name))
	if err != nil {
		pterm.Error.Printfln("Skipping %s: %v", name, err)
		return 0, 1
	}
	if err := archive.Extract(ctx, archivePath, extractDir); err != nil {
		pterm.Error.Printfln("Skipping %s: %v", name, err)
		return 0, 1
	}

	units, err := classify.Classify(extractDir, name, classifyOptions(cfg))
	if err != nil {
		pterm.Error.Printfln("Skipping %s: %v", name, err)
		return 0, 1
	}
	if len(units) == 0 {
		pterm.Warning.Printfln("%s does not appear to contain any mods", name)
		return 0, 0
	}

	modsRoot := filepath.Join(env.DataRoot, ModsDirName)
	for _, unit := range units {
		if err := install.Install(unit, install.Target{Root: modsRoot, Name: unit.Name}); err != nil {
			logger.Error().Err(err).Str("unit", unit.Name).Msg("Unit install failed")
			pterm.Error.Printfln("Failed to install %s: %v", unit.Name, err)
			failed++
			continue
		}
		pterm.Success.Printfln("Installed %s", unit.Name)
		installed++
	}
	return installed, failed
}

func classifyOptions(cfg *config.Config) classify.Options {
	return classify.Options{MaxScanDirs: cfg.Classify.MaxScanDirs}
}

// findFile locates name anywhere under root, depth first.
func findFile(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot scan %s", root)
	}
	if found == "" {
		return "", errors.Newf(errors.ErrFileNotFound, "%s not found in downloaded archive", name)
	}
	return found, nil
}
