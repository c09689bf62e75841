package installer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/speclint/pkg/models"
)

type fakeRunner struct {
	calls [][]string
	fail  map[string]error
}

func (f *fakeRunner) Run(ctx context.Context, workDir, name string, args ...string) ([]byte, error) {
	return f.RunEnv(ctx, workDir, nil, name, args...)
}

func (f *fakeRunner) RunEnv(_ context.Context, _ string, _ []string, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	phase := args[len(args)-1]
	if err := f.fail[phase]; err != nil {
		return []byte("installer said no"), err
	}
	return nil, nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	return name, nil
}

func newSpec(dir string) *models.Spec {
	root := &models.Spec{
		Name:        "Core",
		Version:     "1.0.0",
		Dir:         dir,
		Platforms:   []models.Platform{{Name: models.PlatformIOS, DeploymentTarget: "12.0"}},
		SourceFiles: []string{"Sources/**/*.{h,m}"},
		Resources:   []string{"Resources/*.png"},
	}
	root.AddSubspec(&models.Spec{Name: "Net", SourceFiles: []string{"Net/*.swift"}})
	root.AddSubspec(&models.Spec{Name: "Tests", TestOnly: true, SourceFiles: []string{"Tests/*.m"}})
	return root
}

func seed(t *testing.T, fs afero.Fs, files ...string) {
	t.Helper()
	for _, f := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(f), 0755))
		require.NoError(t, afero.WriteFile(fs, f, []byte("x"), 0644))
	}
}

func TestNewManifest(t *testing.T) {
	spec := newSpec("/src/Core")
	m := NewManifest(spec, spec.Platforms[0], ManifestOptions{
		UseFrameworks: true,
		Sources:       []string{"https://cdn.example.com"},
	})

	assert.Equal(t, models.PlatformIOS, m.Platform)
	assert.Equal(t, "12.0", m.DeploymentTarget)
	assert.True(t, m.UseFrameworks)
	assert.False(t, m.UseModularHeaders)
	assert.Equal(t, Dependency{Name: "Core", Path: "/src/Core"}, m.Dependency)
	assert.Equal(t, []string{"Core/Tests"}, m.TestSpecs)

	m = NewManifest(spec, spec.Platforms[0], ManifestOptions{SkipTests: true})
	assert.Empty(t, m.TestSpecs)
}

func TestCommandInstaller_PrepareWritesManifest(t *testing.T) {
	fs := afero.NewMemMapFs()
	spec := newSpec("/src/Core")
	s := &Session{
		Manifest: NewManifest(spec, spec.Platforms[0], ManifestOptions{}),
		Spec:     spec,
		Dir:      "/ws",
	}

	inst := NewCommandInstaller(&fakeRunner{}, nil, WithFs(fs))
	require.NoError(t, inst.RunPhase(context.Background(), PhasePrepare, s))

	got, err := ReadManifest(fs, "/ws/Manifest.yaml")
	require.NoError(t, err)
	assert.Equal(t, s.Manifest, got)
}

func TestCommandInstaller_RunsExternalPhases(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &fakeRunner{}
	spec := newSpec("/src/Core")
	s := &Session{Spec: spec, Dir: "/ws", Env: []string{"A=1"}}

	inst := NewCommandInstaller(runner, []string{"pod-installer", "--quiet"}, WithFs(fs))
	require.NoError(t, Install(context.Background(), inst, s))

	assert.Equal(t, [][]string{
		{"pod-installer", "--quiet", "resolve"},
		{"pod-installer", "--quiet", "download"},
		{"pod-installer", "--quiet", "generate"},
		{"pod-installer", "--quiet", "integrate"},
	}, runner.calls)
	require.NotNil(t, s.Installation)
	assert.Equal(t, DefaultScheme, s.Installation.BuildScheme())
}

func TestCommandInstaller_StopsAtFailingPhase(t *testing.T) {
	fs := afero.NewMemMapFs()
	boom := errors.New("exit status 1")
	runner := &fakeRunner{fail: map[string]error{"download": boom}}
	s := &Session{Spec: newSpec("/src/Core"), Dir: "/ws"}

	err := Install(context.Background(), NewCommandInstaller(runner, []string{"pi"}, WithFs(fs)), s)

	var pe *PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseDownload, pe.Phase)
	assert.Equal(t, "installer said no", pe.Output)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "the `download` phase failed: exit status 1", err.Error())
	assert.Len(t, runner.calls, 2)
	assert.Nil(t, s.Installation)
}

func TestCommandInstaller_SynthesizesInstallation(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs,
		"/src/Core/Sources/A.h",
		"/src/Core/Sources/Deep/B.m",
		"/src/Core/Sources/C.swift",
		"/src/Core/Resources/icon.png",
		"/src/Core/Tests/T.m",
	)
	spec := newSpec("/src/Core")
	s := &Session{
		Manifest: NewManifest(spec, spec.Platforms[0], ManifestOptions{}),
		Spec:     spec,
		Dir:      "/ws",
	}

	require.NoError(t, NewCommandInstaller(&fakeRunner{}, nil, WithFs(fs)).RunPhase(context.Background(), PhasePostInstall, s))

	inst := s.Installation
	require.NotNil(t, inst)
	require.Len(t, inst.Targets, 1)
	assert.Equal(t, []string{"Core", "Core/Net"}, inst.Targets[0].Specs)
	assert.Equal(t, "Core-Unit-Tests", inst.TestScheme(spec.SubspecByName("Core/Tests")))

	core, ok := inst.FileAccessor("Core")
	require.True(t, ok)
	assert.Equal(t, []string{"Sources/A.h", "Sources/Deep/B.m"}, core.SourceFiles)
	assert.Equal(t, []string{"Resources/icon.png"}, core.Resources)

	net, ok := inst.FileAccessor("Core/Net")
	require.True(t, ok)
	assert.Empty(t, net.SourceFiles)
}

func TestCommandInstaller_ReadsInstallResult(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/ws/install-result.yaml", []byte(`
targets:
  - label: Pods-Host
    specs: [Core]
    scheme: Host
    test_schemes:
      Core/Tests: Host-Tests
file_accessors:
  Core:
    source_files: [Sources/A.m]
`), 0644))

	spec := newSpec("/src/Core")
	s := &Session{Spec: spec, Dir: "/ws"}
	require.NoError(t, NewCommandInstaller(&fakeRunner{}, nil, WithFs(fs)).RunPhase(context.Background(), PhasePostInstall, s))

	assert.Equal(t, "Host", s.Installation.BuildScheme())
	assert.Equal(t, "Host-Tests", s.Installation.TestScheme(spec.SubspecByName("Core/Tests")))
	fa, ok := s.Installation.FileAccessor("Core")
	require.True(t, ok)
	assert.Equal(t, []string{"Sources/A.m"}, fa.SourceFiles)
}

func TestInstallation_Defaults(t *testing.T) {
	inst := &Installation{}
	assert.Equal(t, "App", inst.BuildScheme())
	_, ok := inst.FileAccessor("Core")
	assert.False(t, ok)
}
