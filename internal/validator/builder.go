package validator

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/ShayCichocki/speclint/internal/classify"
	"github.com/ShayCichocki/speclint/internal/diag"
	iexec "github.com/ShayCichocki/speclint/internal/exec"
	"github.com/ShayCichocki/speclint/internal/installer"
	"github.com/ShayCichocki/speclint/internal/urlcheck"
	"github.com/ShayCichocki/speclint/internal/workspace"
	"github.com/ShayCichocki/speclint/internal/xcodebuild"
	"github.com/ShayCichocki/speclint/pkg/models"
)

// Driver runs the external build tool for one cell.
type Driver interface {
	Available() bool
	Invoke(ctx context.Context, inv xcodebuild.Invocation) (string, error)
}

// URLChecker probes URLs declared by a spec.
type URLChecker interface {
	Check(ctx context.Context, url string) (urlcheck.Result, error)
}

// Option configures a Builder.
type Option func(*Builder)

// WithDriver sets the build driver.
func WithDriver(d Driver) Option {
	return func(b *Builder) { b.driver = d }
}

// WithInstaller sets the dependency installer.
func WithInstaller(i installer.Installer) Option {
	return func(b *Builder) { b.installer = i }
}

// WithURLChecker sets the URL checker. Nil disables URL checks.
func WithURLChecker(c URLChecker) Option {
	return func(b *Builder) {
		b.urls = c
		b.urlsSet = true
	}
}

// WithWorkspaceBase sets the directory workspaces are created under.
func WithWorkspaceBase(dir string) Option {
	return func(b *Builder) { b.workspaceBase = dir }
}

// WithFs sets the filesystem artifacts are copied on.
func WithFs(fs afero.Fs) Option {
	return func(b *Builder) { b.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithProgress sets the progress sink.
func WithProgress(p ProgressSink) Option {
	return func(b *Builder) { b.progress = p }
}

// Builder validates one spec across the build matrix.
type Builder struct {
	spec *models.Spec
	cfg  RunConfig

	driver        Driver
	installer     installer.Installer
	urls          URLChecker
	urlsSet       bool
	workspaces    *workspace.Manager
	workspaceBase string
	fs            afero.Fs
	logger        zerolog.Logger
	progress      ProgressSink

	results *diag.Store
}

// New creates a Builder for spec. Invalid configuration is rejected here.
func New(spec *models.Spec, cfg RunConfig, opts ...Option) (*Builder, error) {
	if spec == nil {
		return nil, configErrorf("no spec to validate")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		spec:    spec,
		cfg:     cfg,
		fs:      afero.NewOsFs(),
		logger:  zerolog.Nop(),
		results: diag.NewStore(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.driver == nil || b.installer == nil {
		runner := iexec.NewRunner()
		if b.driver == nil {
			b.driver = xcodebuild.New(runner, xcodebuild.WithLogger(b.logger))
		}
		if b.installer == nil {
			b.installer = installer.NewCommandInstaller(runner, nil, installer.WithLogger(b.logger))
		}
	}
	if !b.urlsSet {
		b.urls = urlcheck.New()
	}
	if cfg.SkipURLChecks {
		b.urls = nil
	}

	mgr, err := workspace.NewManager(b.workspaceBase, cfg.NoClean)
	if err != nil {
		return nil, fmt.Errorf("create workspace manager: %w", err)
	}
	b.workspaces = mgr
	return b, nil
}

// run is the state of one Build call.
type run struct {
	store         *diag.Store
	platforms     []models.PlatformName
	env           workspace.Env
	driverMissing bool
	checkedURLs   map[string]bool
}

// Build validates the spec and returns the verdict. The returned error is
// always a *ConfigError; every other failure is recorded as a diagnostic.
func (b *Builder) Build(ctx context.Context) (bool, error) {
	active, err := b.activeSpec()
	if err != nil {
		return false, err
	}
	platforms, err := b.targetPlatforms(active)
	if err != nil {
		return false, err
	}

	r := &run{
		store:       diag.NewStore(),
		platforms:   platforms,
		env:         b.childEnv(),
		checkedURLs: make(map[string]bool),
	}
	if !b.driver.Available() {
		b.logger.Warn().Msg(driverMissingMessage)
		r.store.Warning(diag.Scope{}, "xcodebuild", driverMissingMessage)
		r.driverMissing = true
	}

	b.validateTree(ctx, r, active)

	b.results = r.store
	success := b.Success()
	b.emit(Event{Type: EventRunFinished, Spec: active.String(), OK: success, Message: b.FailureReason()})
	return success, nil
}

// Results returns the diagnostics of the last Build in first-seen order.
func (b *Builder) Results() []diag.Diagnostic {
	return b.results.All()
}

// Success reports the verdict of the last Build.
func (b *Builder) Success() bool {
	return b.results.Validated(b.cfg.Policy())
}

// FailureReason explains a failed verdict, or returns "".
func (b *Builder) FailureReason() string {
	return b.results.FailureReason(b.cfg.Policy())
}

// WorkspacePath returns the workspace root used by this Builder.
func (b *Builder) WorkspacePath() string {
	return b.workspaces.Path()
}

// Spec returns the root spec being validated.
func (b *Builder) Spec() *models.Spec {
	return b.spec
}

func (b *Builder) activeSpec() (*models.Spec, error) {
	root := b.spec.Root()
	name := b.cfg.OnlySubspec
	if name == "" {
		return b.spec, nil
	}
	if name != root.Name && !strings.HasPrefix(name, root.Name+"/") {
		name = root.Name + "/" + name
	}
	active := root.SubspecByName(name)
	if active == nil {
		return nil, configErrorf("unable to find a specification named `%s`", name)
	}
	return active, nil
}

func (b *Builder) targetPlatforms(active *models.Spec) ([]models.PlatformName, error) {
	if len(b.cfg.Platforms) == 0 {
		var out []models.PlatformName
		for _, p := range active.AvailablePlatforms() {
			out = append(out, p.Name)
		}
		return out, nil
	}
	for _, name := range b.cfg.Platforms {
		if !active.SupportsPlatform(name) {
			return nil, configErrorf("platform %s is not supported by %s", name.DisplayName(), active.FullName())
		}
	}
	return append([]models.PlatformName(nil), b.cfg.Platforms...), nil
}

func (b *Builder) childEnv() workspace.Env {
	env := workspace.Env{}
	for k, v := range b.cfg.Env {
		env[k] = v
	}
	verbose := "0"
	if b.cfg.Verbose {
		verbose = "1"
	}
	return env.With(workspace.EnvVerbose, verbose)
}

// validateTree validates spec and then its library subspecs depth first.
// Once ctx is done the remaining specs are not visited.
func (b *Builder) validateTree(ctx context.Context, r *run, spec *models.Spec) bool {
	if ctx.Err() != nil {
		return false
	}
	ok := b.validateSpec(ctx, r, spec)
	if !ok && b.cfg.FailFast {
		return false
	}
	if !b.cfg.BuildSubspecs {
		return ok
	}
	for _, sub := range spec.LibrarySubspecs() {
		if ctx.Err() != nil {
			return false
		}
		if !b.validateTree(ctx, r, sub) {
			ok = false
			if b.cfg.FailFast {
				return false
			}
		}
	}
	return ok
}

// validateSpec is the containment boundary for one spec: errors and panics
// become a single unknown diagnostic.
func (b *Builder) validateSpec(ctx context.Context, r *run, spec *models.Spec) (ok bool) {
	scope := diag.Scope{Subspec: subspecTag(spec)}
	defer func() {
		if p := recover(); p != nil {
			detail := fmt.Sprint(p)
			if b.cfg.Verbose {
				detail += "\n" + string(debug.Stack())
			}
			r.store.Error(scope, "unknown", unknownMessage(detail))
			ok = false
		}
	}()

	b.emit(Event{Type: EventSpecStarted, Spec: spec.String()})
	ok, err := b.analyze(ctx, r, spec)
	if err != nil {
		detail := err.Error()
		if b.cfg.Verbose {
			detail = fmt.Sprintf("%+v", err)
		}
		r.store.Error(scope, "unknown", unknownMessage(detail))
		return false
	}
	return ok
}

const driverMissingMessage = "Skipping compilation with `xcodebuild` because it can't be found."

func unknownMessage(detail string) string {
	return fmt.Sprintf("Encountered an unknown error (%s) during validation.", detail)
}

func (b *Builder) analyze(ctx context.Context, r *run, spec *models.Spec) (bool, error) {
	scope := diag.Scope{Subspec: subspecTag(spec)}
	if spec.TestOnly {
		r.store.Error(scope, "spec", fmt.Sprintf("Building a test spec (%s) is not supported.", spec.FullName()))
		return false, nil
	}

	b.checkURLs(ctx, r, spec)

	var platforms []models.Platform
	for _, name := range r.platforms {
		if p, ok := spec.Platform(name); ok {
			platforms = append(platforms, p)
		}
	}
	if len(platforms) == 0 {
		b.logger.Info().Str("spec", spec.FullName()).Msg("no requested platform is supported, skipping")
		return r.store.Validated(b.cfg.Policy()), nil
	}

	all := true
	for _, p := range platforms {
		if err := ctx.Err(); err != nil {
			return false, errors.Wrap(err, "validation cancelled")
		}
		ok, err := b.validatePlatform(ctx, r, spec, p)
		if err != nil {
			return false, err
		}
		if !ok {
			all = false
			if b.cfg.FailFast {
				return false, nil
			}
		}
	}
	return all, nil
}

// validatePlatform runs every cell of one platform inside a fresh workspace.
// The platform counts as passed when the run as a whole still validates.
func (b *Builder) validatePlatform(ctx context.Context, r *run, spec *models.Spec, p models.Platform) (bool, error) {
	b.logger.Info().Msgf("%s - Analyzing on %s platform.", spec, p)

	ps := diag.NewStore()
	merged := false
	defer func() {
		if !merged {
			r.store.Merge(ps)
		}
	}()

	scope := diag.Scope{Platform: p.Name, Subspec: subspecTag(spec)}
	err := b.workspaces.Scoped(r.env, func(ws *workspace.Workspace) error {
		b.emit(Event{Type: EventPlatformStarted, Spec: spec.String(), Platform: p})
		return b.runPlatform(ctx, r, ps, scope, spec, p, ws)
	})

	r.store.Merge(ps)
	merged = true
	ok := err == nil && r.store.Validated(b.cfg.Policy())
	b.emit(Event{Type: EventPlatformFinished, Spec: spec.String(), Platform: p, OK: ok})
	return ok, err
}

func (b *Builder) runPlatform(ctx context.Context, r *run, ps *diag.Store, scope diag.Scope, spec *models.Spec, p models.Platform, ws *workspace.Workspace) error {
	sess := &installer.Session{
		Manifest: installer.NewManifest(spec, p, installer.ManifestOptions{
			UseFrameworks:     b.cfg.UseFrameworks,
			UseModularHeaders: b.cfg.UseModularHeaders,
			Sources:           b.cfg.Sources,
			SkipTests:         b.cfg.SkipTests,
		}),
		Spec: spec,
		Dir:  ws.Path(),
		Env:  ws.Env().Entries(),
	}

	if err := installer.Install(ctx, b.installer, sess); err != nil {
		var pe *installer.PhaseError
		if !errors.As(err, &pe) {
			return errors.Wrap(err, "install")
		}
		b.logger.Debug().Str("phase", string(pe.Phase)).Str("output", pe.Output).Msg("installer failed")
		ps.Error(scope, "installer", fmt.Sprintf("The `%s` phase failed: %v.", pe.Phase, pe.Err))
		for _, c := range b.cells(spec, p) {
			b.skip(spec, p, c, "installation failed")
		}
		return nil
	}

	b.checkFilePatterns(ps, scope, spec, sess.Installation)

	cells := b.cells(spec, p)
	if r.driverMissing {
		for _, c := range cells {
			b.skip(spec, p, c, "xcodebuild not found")
		}
		return nil
	}

	classifier := classify.New(ws.Path())
	for _, c := range cells {
		if c.Action == xcodebuild.ActionTest {
			ts := spec.Root().SubspecByName(c.TestSpec)
			if ts == nil || !ts.SupportsPlatform(p.Name) {
				b.logger.Warn().Str("test_spec", c.TestSpec).Str("platform", p.Name.DisplayName()).
					Msg("test spec does not support the platform, skipping")
				b.skip(spec, p, c, "unsupported platform")
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "validation cancelled")
		}
		b.runCell(ctx, ps, scope, classifier, spec, p, c, ws, sess.Installation)
	}
	return nil
}

// cells returns the fixed cell order: Release and Debug on device, then on
// the simulator when the platform has one, then one Debug device test per test spec.
func (b *Builder) cells(spec *models.Spec, p models.Platform) []Cell {
	var cells []Cell
	dests := []bool{false}
	if p.Name.HasSimulator() {
		dests = append(dests, true)
	}
	for _, sim := range dests {
		for _, cfg := range []xcodebuild.Configuration{xcodebuild.Release, xcodebuild.Debug} {
			cells = append(cells, Cell{Action: xcodebuild.ActionBuild, Configuration: cfg, Simulator: sim})
		}
	}
	if b.cfg.SkipTests {
		return cells
	}
	for _, ts := range spec.TestSpecs() {
		cells = append(cells, Cell{Action: xcodebuild.ActionTest, Configuration: xcodebuild.Debug, TestSpec: ts.FullName()})
	}
	return cells
}

func (b *Builder) runCell(ctx context.Context, ps *diag.Store, scope diag.Scope, classifier *classify.Classifier,
	spec *models.Spec, p models.Platform, c Cell, ws *workspace.Workspace, inst *installer.Installation) {
	inv := xcodebuild.Invocation{
		Action:        c.Action,
		Scheme:        inst.BuildScheme(),
		Configuration: c.Configuration,
		Platform:      p,
		Simulator:     c.Simulator,
		Dir:           ws.Path(),
		Env:           ws.Env().Entries(),
	}
	if c.Action == xcodebuild.ActionTest {
		inv.Scheme = inst.TestScheme(spec.Root().SubspecByName(c.TestSpec))
	}

	b.emit(Event{Type: EventCellStarted, Spec: spec.String(), Platform: p, Cell: c})
	b.logger.Debug().Str("spec", spec.FullName()).Str("platform", p.String()).Stringer("cell", c).Msg("running cell")
	start := time.Now()

	out, err := b.driver.Invoke(ctx, inv)
	ok := err == nil
	if err != nil {
		b.logger.Debug().Err(err).Str("output", out).Msg("build driver failed")
		msg := "Returned an unsuccessful exit code."
		if !b.cfg.Verbose {
			msg += " You can use `--verbose` for more information."
		}
		ps.Error(scope, "xcodebuild", msg)
	}

	for _, cand := range classifier.Classify(out) {
		ps.Record(scope, cand.Severity, "xcodebuild", cand.Message, false)
		if cand.Severity == diag.SevError {
			ok = false
		}
	}

	if err == nil && c.Action == xcodebuild.ActionBuild && b.cfg.CopyArtifacts {
		if cerr := b.copyArtifacts(inv); cerr != nil {
			b.logger.Warn().Err(cerr).Msg("copying build products failed")
		}
	}

	b.logger.Debug().Dur("elapsed", time.Since(start)).Bool("ok", ok).Stringer("cell", c).Msg("cell finished")
	b.emit(Event{Type: EventCellFinished, Spec: spec.String(), Platform: p, Cell: c, OK: ok})
}

func (b *Builder) checkFilePatterns(ps *diag.Store, scope diag.Scope, spec *models.Spec, inst *installer.Installation) {
	fa, ok := inst.FileAccessor(spec.FullName())
	if !ok {
		return
	}
	if len(spec.SourceFiles) > 0 && len(fa.SourceFiles) == 0 {
		ps.Error(scope, "file patterns", "The `source_files` pattern did not match any file.")
	}
	if len(spec.Resources) > 0 && len(fa.Resources) == 0 {
		ps.Error(scope, "file patterns", "The `resources` pattern did not match any file.")
	}
}

func (b *Builder) checkURLs(ctx context.Context, r *run, spec *models.Spec) {
	if b.urls == nil {
		return
	}
	scope := diag.Scope{Subspec: subspecTag(spec)}
	for _, u := range []string{spec.Homepage, spec.DocumentationURL} {
		if u == "" || r.checkedURLs[u] {
			continue
		}
		r.checkedURLs[u] = true

		res, err := b.urls.Check(ctx, u)
		if err != nil {
			b.logger.Debug().Err(err).Str("url", u).Msg("url check failed")
			r.store.Record(scope, diag.SevWarning, "url", fmt.Sprintf("There was a problem validating the URL %s.", u), true)
			continue
		}
		if !res.Reachable() {
			r.store.Record(scope, diag.SevNote, "url", fmt.Sprintf("The URL (%s) is not reachable.", u), true)
		}
	}
}

func (b *Builder) skip(spec *models.Spec, p models.Platform, c Cell, reason string) {
	b.emit(Event{Type: EventCellSkipped, Spec: spec.String(), Platform: p, Cell: c, Message: reason})
}

func (b *Builder) emit(e Event) {
	if b.progress == nil {
		return
	}
	e.Timestamp = time.Now()
	b.progress.Progress(e)
}

// subspecTag is the name recorded on diagnostics; the root spec has none.
func subspecTag(spec *models.Spec) string {
	if spec.IsRoot() {
		return ""
	}
	return spec.FullName()
}
