package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ShayCichocki/speclint/internal/config"
	iexec "github.com/ShayCichocki/speclint/internal/exec"
	"github.com/ShayCichocki/speclint/internal/history"
	"github.com/ShayCichocki/speclint/internal/installer"
	"github.com/ShayCichocki/speclint/internal/report"
	"github.com/ShayCichocki/speclint/internal/specfile"
	"github.com/ShayCichocki/speclint/internal/validator"
	"github.com/ShayCichocki/speclint/internal/watch"
	"github.com/ShayCichocki/speclint/internal/xcodebuild"
	"github.com/ShayCichocki/speclint/pkg/models"
)

// lintOptions holds the lint flags. Flags that were not set leave the
// configured value alone.
type lintOptions struct {
	allowWarnings     bool
	failFast          bool
	noSubspecs        bool
	subspec           string
	useFrameworks     bool
	useModularHeaders bool
	skipTests         bool
	noClean           bool
	sources           []string
	platforms         []string
	private           bool
	skipURLChecks     bool
	copyArtifacts     bool
	artifactsDir      string
	timeout           time.Duration

	json      bool
	ui        bool
	watch     bool
	noHistory bool
}

var lintOpts lintOptions

var lintCmd = &cobra.Command{
	Use:   "lint [spec-file]",
	Short: "Validate a spec on every platform it supports",
	Long: `Validate a spec descriptor by building it and running its test specs.

Without an argument, the single *.spec.yaml, *.spec.yml or *.spec.json file in
the current directory is used.

For each platform, four build cells run in a fixed order: Release and Debug for
device, then Release and Debug for simulator (macOS has no simulator). Test
specs then run in Debug on device. Library subspecs are validated after the
spec itself unless --no-subspecs is given.

The command exits with status 1 when validation fails.

Examples:
  speclint lint                          # Validate the spec in this directory
  speclint lint Core.spec.yaml --platforms ios,macos
  speclint lint --subspec Networking --fail-fast
  speclint lint --allow-warnings --json > report.json
  speclint lint --watch                  # Re-run whenever the spec changes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLint,
}

func init() {
	lintOpts.bind(lintCmd.Flags())
}

func (o *lintOptions) bind(fs *pflag.FlagSet) {
	fs.BoolVar(&o.allowWarnings, "allow-warnings", false, "Pass validation even when warnings are reported")
	fs.BoolVar(&o.failFast, "fail-fast", false, "Stop at the first failing platform or subspec")
	fs.BoolVar(&o.noSubspecs, "no-subspecs", false, "Do not validate library subspecs")
	fs.StringVar(&o.subspec, "subspec", "", "Validate only this subspec (qualified under the root when unqualified)")
	fs.BoolVar(&o.useFrameworks, "use-frameworks", false, "Integrate the spec as a framework")
	fs.BoolVar(&o.useModularHeaders, "use-modular-headers", false, "Integrate the spec with modular headers")
	fs.BoolVar(&o.skipTests, "skip-tests", false, "Build only; do not run test specs")
	fs.BoolVar(&o.noClean, "no-clean", false, "Keep the workspace on disk for inspection")
	fs.StringSliceVar(&o.sources, "sources", nil, "Spec sources to resolve dependencies from")
	fs.StringSliceVar(&o.platforms, "platforms", nil, "Platforms to validate (ios, macos, watchos, tvos)")
	fs.BoolVar(&o.private, "private", false, "Ignore results that only apply to public specs")
	fs.BoolVar(&o.skipURLChecks, "skip-url-checks", false, "Do not check homepage and documentation URLs")
	fs.BoolVar(&o.copyArtifacts, "copy-artifacts", false, "Copy built products into <artifacts-dir>/BuiltPods")
	fs.StringVar(&o.artifactsDir, "artifacts-dir", "", "Directory receiving copied build products")
	fs.DurationVar(&o.timeout, "timeout", 0, "Limit for each xcodebuild invocation (0 uses the configured value)")

	fs.BoolVar(&o.json, "json", false, "Print a JSON report on stdout")
	fs.BoolVar(&o.ui, "ui", false, "Show an interactive progress view")
	fs.BoolVar(&o.watch, "watch", false, "Re-run validation whenever the spec file changes")
	fs.BoolVar(&o.noHistory, "no-history", false, "Do not record this run in the history database")
}

// runConfig layers the flags that were set over cfg.
func (o *lintOptions) runConfig(fs *pflag.FlagSet, cfg *config.Config, verbose bool) (validator.RunConfig, error) {
	rc, err := cfg.RunConfig()
	if err != nil {
		return rc, err
	}

	bools := []struct {
		flag string
		dst  *bool
		val  bool
	}{
		{"allow-warnings", &rc.AllowWarnings, o.allowWarnings},
		{"fail-fast", &rc.FailFast, o.failFast},
		{"no-subspecs", &rc.BuildSubspecs, !o.noSubspecs},
		{"use-frameworks", &rc.UseFrameworks, o.useFrameworks},
		{"use-modular-headers", &rc.UseModularHeaders, o.useModularHeaders},
		{"skip-tests", &rc.SkipTests, o.skipTests},
		{"no-clean", &rc.NoClean, o.noClean},
		{"private", &rc.Private, o.private},
		{"skip-url-checks", &rc.SkipURLChecks, o.skipURLChecks},
		{"copy-artifacts", &rc.CopyArtifacts, o.copyArtifacts},
	}
	for _, b := range bools {
		if fs.Changed(b.flag) {
			*b.dst = b.val
		}
	}

	if fs.Changed("subspec") {
		rc.OnlySubspec = o.subspec
	}
	if fs.Changed("sources") {
		rc.Sources = append([]string(nil), o.sources...)
	}
	if fs.Changed("platforms") {
		platforms, err := config.ParsePlatforms(o.platforms)
		if err != nil {
			return rc, err
		}
		rc.Platforms = platforms
	}
	if fs.Changed("artifacts-dir") {
		rc.ArtifactsDir = o.artifactsDir
	}
	rc.Verbose = verbose
	return rc, nil
}

// driverTimeout returns the per-invocation limit.
func (o *lintOptions) driverTimeout(fs *pflag.FlagSet, cfg *config.Config) time.Duration {
	if fs.Changed("timeout") {
		return o.timeout
	}
	return cfg.Driver.Timeout
}

func runLint(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		if path, err = specfile.Find(cwd); err != nil {
			return err
		}
	}

	rc, err := lintOpts.runConfig(cmd.Flags(), appConfig, rootVerbose)
	if err != nil {
		return err
	}
	timeout := lintOpts.driverTimeout(cmd.Flags(), appConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if lintOpts.watch {
		return watchLint(ctx, path, rc, timeout)
	}

	ok, err := lintOnce(ctx, path, rc, timeout)
	if err != nil {
		return err
	}
	if !ok {
		return errValidationFailed
	}
	return nil
}

// watchLint validates once, then again after every change to path.
func watchLint(ctx context.Context, path string, rc validator.RunConfig, timeout time.Duration) error {
	logger := appLog.Logger
	w, err := watch.New([]string{path}, watch.DefaultDebounce, logger)
	if err != nil {
		return err
	}

	rerun := func(ctx context.Context) {
		if _, err := lintOnce(ctx, path, rc, timeout); err != nil {
			logger.Error().Err(err).Msg("lint failed")
		}
		logger.Info().Str("spec", path).Msg("waiting for changes (ctrl+c to stop)")
	}
	rerun(ctx)
	return w.Run(ctx, rerun)
}

// lintOnce loads the spec, validates it and reports the outcome.
func lintOnce(ctx context.Context, path string, rc validator.RunConfig, timeout time.Duration) (bool, error) {
	logger := appLog.Logger

	spec, err := specfile.Load(path)
	if err != nil {
		return false, err
	}

	useUI := lintOpts.ui && !lintOpts.json && isatty.IsTerminal(os.Stdout.Fd())
	if lintOpts.ui && !useUI {
		logger.Warn().Msg("progress view needs a terminal on stdout; falling back to plain output")
	}

	var printerOpts []report.Option
	if lintOpts.json || !isatty.IsTerminal(os.Stdout.Fd()) {
		printerOpts = append(printerOpts, report.WithoutColor())
	}
	printer := report.New(os.Stdout, printerOpts...)

	started := time.Now()
	var b *validator.Builder
	if useUI {
		b, err = runWithTUI(ctx, spec, rc, timeout, logger)
		if err != nil {
			return false, err
		}
	} else {
		if !lintOpts.json {
			printer.Banner(spec.String())
		}
		b, err = newBuilder(spec, rc, timeout, logger, validator.WithProgress(cellLogger(logger)))
		if err != nil {
			return false, err
		}
		if _, err := b.Build(ctx); err != nil {
			return false, err
		}
	}
	duration := time.Since(started)

	if lintOpts.json {
		r := report.Report{
			Spec:          spec.String(),
			Success:       b.Success(),
			FailureReason: b.FailureReason(),
			Results:       b.Results(),
		}
		if rc.NoClean {
			r.Workspace = b.WorkspacePath()
		}
		if err := report.WriteJSON(os.Stdout, r); err != nil {
			return false, err
		}
	} else {
		printer.Results(b.Results())
		printer.Verdict(spec.String(), b.Success(), b.FailureReason())
		if rc.NoClean {
			printer.Workspace(b.WorkspacePath())
		}
	}

	if !lintOpts.noHistory {
		recordHistory(ctx, spec, rc, b, started, duration, logger)
	}
	return b.Success(), nil
}

// newBuilder wires the configured driver and installer into a Builder.
func newBuilder(spec *models.Spec, rc validator.RunConfig, timeout time.Duration,
	logger zerolog.Logger, opts ...validator.Option) (*validator.Builder, error) {
	runner := iexec.NewRunner()
	driver := xcodebuild.New(runner,
		xcodebuild.WithBinary(appConfig.Driver.Binary),
		xcodebuild.WithTimeout(timeout),
		xcodebuild.WithDestinationFinder(xcodebuild.NewSimctlFinder(runner, appConfig.Driver.Simctl)),
		xcodebuild.WithLogger(logger),
	)
	inst := installer.NewCommandInstaller(runner, appConfig.Installer.Command, installer.WithLogger(logger))

	all := []validator.Option{
		validator.WithDriver(driver),
		validator.WithInstaller(inst),
		validator.WithWorkspaceBase(appConfig.Workspace.BaseDir),
		validator.WithLogger(logger),
	}
	return validator.New(spec, rc, append(all, opts...)...)
}

// cellLogger reports per-cell progress at debug level, visible with --verbose.
func cellLogger(logger zerolog.Logger) validator.ProgressFunc {
	return func(e validator.Event) {
		switch e.Type {
		case validator.EventPlatformStarted:
			logger.Info().Str("spec", e.Spec).Msgf("Validating on %s", e.Platform)
		case validator.EventCellFinished:
			logger.Debug().Str("spec", e.Spec).Str("platform", e.Platform.String()).
				Bool("ok", e.OK).Msg(e.Cell.String())
		case validator.EventCellSkipped:
			logger.Debug().Str("spec", e.Spec).Str("platform", e.Platform.String()).
				Str("reason", e.Message).Msg(e.Cell.String() + " skipped")
		}
	}
}

func recordHistory(ctx context.Context, spec *models.Spec, rc validator.RunConfig, b *validator.Builder,
	started time.Time, duration time.Duration, logger zerolog.Logger) {
	path := appConfig.Output.HistoryDB
	if path == "" {
		path = history.DefaultPath()
	}
	db, err := history.Open(path)
	if err != nil {
		logger.Warn().Err(err).Msg("history unavailable")
		return
	}
	defer db.Close()

	platforms := rc.Platforms
	if len(platforms) == 0 {
		for _, p := range spec.AvailablePlatforms() {
			platforms = append(platforms, p.Name)
		}
	}
	run := history.NewRun(spec, platforms, b.Success(), b.FailureReason(), b.Results(), started, duration)
	if err := db.Record(ctx, run); err != nil {
		logger.Warn().Err(err).Msg("record history")
	}
}
