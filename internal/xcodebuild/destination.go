package xcodebuild

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"

	iexec "github.com/ShayCichocki/speclint/internal/exec"
	"github.com/ShayCichocki/speclint/pkg/models"
)

// DestinationFinder picks the simulator a simulator cell runs against.
type DestinationFinder interface {
	SimulatorDestination(ctx context.Context, platform models.Platform) (string, error)
}

const runtimePrefix = "com.apple.CoreSimulator.SimRuntime."

// SimctlFinder selects the oldest available simulator runtime that satisfies
// the deployment target, using `xcrun simctl list -j devices available`.
type SimctlFinder struct {
	runner iexec.CommandRunner
	xcrun  string
}

// NewSimctlFinder creates a SimctlFinder. xcrun defaults to "xcrun".
func NewSimctlFinder(runner iexec.CommandRunner, xcrun string) *SimctlFinder {
	if xcrun == "" {
		xcrun = "xcrun"
	}
	return &SimctlFinder{runner: runner, xcrun: xcrun}
}

type simulator struct {
	os      string
	version string
	udid    string
	name    string
}

// SimulatorDestination returns an "id=<udid>" destination.
func (f *SimctlFinder) SimulatorDestination(ctx context.Context, platform models.Platform) (string, error) {
	out, err := f.runner.Run(ctx, "", f.xcrun, "simctl", "list", "-j", "devices", "available")
	if err != nil {
		return "", fmt.Errorf("list simulators: %w", err)
	}
	sims, err := parseSimulators(out)
	if err != nil {
		return "", err
	}
	sim, ok := oldestMatching(sims, platform)
	if !ok {
		target := platform.DeploymentTarget
		if target == "" {
			target = "any"
		}
		return "", fmt.Errorf("unable to find a %s simulator for deployment target %s", platform.Name.DisplayName(), target)
	}
	return "id=" + sim.udid, nil
}

func parseSimulators(out []byte) ([]simulator, error) {
	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("parse simulator list: invalid JSON")
	}
	var sims []simulator
	gjson.GetBytes(out, "devices").ForEach(func(key, devices gjson.Result) bool {
		osName, version, ok := parseRuntime(key.String())
		if !ok {
			return true
		}
		devices.ForEach(func(_, d gjson.Result) bool {
			if avail := d.Get("isAvailable"); avail.Exists() && !avail.Bool() {
				return true
			}
			sims = append(sims, simulator{
				os:      osName,
				version: version,
				udid:    d.Get("udid").String(),
				name:    d.Get("name").String(),
			})
			return true
		})
		return true
	})
	return sims, nil
}

// parseRuntime splits "com.apple.CoreSimulator.SimRuntime.iOS-16-4" into ("iOS", "16.4").
func parseRuntime(id string) (osName, version string, ok bool) {
	rest, found := strings.CutPrefix(id, runtimePrefix)
	if !found {
		return "", "", false
	}
	osName, ver, found := strings.Cut(rest, "-")
	if !found {
		return "", "", false
	}
	return osName, strings.ReplaceAll(ver, "-", "."), true
}

func oldestMatching(sims []simulator, platform models.Platform) (simulator, bool) {
	want := platform.Name.DisplayName()
	floor := semverOf(platform.DeploymentTarget)

	var candidates []simulator
	for _, s := range sims {
		if s.os != want || s.udid == "" {
			continue
		}
		v := semverOf(s.version)
		if v == "" {
			continue
		}
		if floor != "" && semver.Compare(v, floor) < 0 {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return simulator{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if c := semver.Compare(semverOf(candidates[i].version), semverOf(candidates[j].version)); c != 0 {
			return c < 0
		}
		return candidates[i].name < candidates[j].name
	})
	return candidates[0], true
}

// semverOf converts "16.4" into "v16.4"; invalid versions yield "".
func semverOf(v string) string {
	if v == "" {
		return ""
	}
	sv := "v" + strings.TrimPrefix(v, "v")
	if !semver.IsValid(sv) {
		return ""
	}
	return sv
}
