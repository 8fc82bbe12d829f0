package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectralab/internal/errors"
	"vectralab/internal/testkit"
)

func writeChannel(t *testing.T, dir string, cfg testkit.GnomonGeneratorConfig) string {
	t.Helper()
	ch, err := testkit.NewGnomonDataGenerator(cfg).Generate()
	require.NoError(t, err)
	path := filepath.Join(dir, cfg.Name+".csv")
	require.NoError(t, testkit.WriteCSV(path, ch))
	return path
}

func run(t *testing.T, args ...string) (map[string]interface{}, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "ERROR"))

	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out), stdout.String())
	return out, nil
}

func noisy(cfg testkit.GnomonGeneratorConfig, name string, seed int64) testkit.GnomonGeneratorConfig {
	cfg.Name = name
	cfg.NoiseDeg = 0.02
	cfg.Seed = seed
	return cfg
}

func TestPeriodCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeChannel(t, dir, noisy(testkit.DefaultSolarConfig(), "solar", 1))

	out, err := run(t, "period", path)
	require.NoError(t, err)

	assert.Equal(t, "solar", out["channel"])
	assert.Equal(t, 24.0, out["expected_period_hours"])
	test := out["test"].(map[string]interface{})
	assert.Equal(t, "confident", test["verdict"])
	period := out["period"].(map[string]interface{})
	assert.InDelta(t, 24.0, period["period_hours"].(float64), 0.05)
}

func TestFitCommand_RadialFromDataDir(t *testing.T) {
	dir := t.TempDir()
	writeChannel(t, dir, noisy(testkit.DefaultSiderealConfig(), "sidereal", 2))
	t.Setenv("VECTRALAB_DATA_DIR", dir)

	out, err := run(t, "fit", "sidereal.csv", "--kind", "radial", "--uncertainty-deg", "0.02")
	require.NoError(t, err)
	period := out["period"].(map[string]interface{})
	assert.InDelta(t, 23.0+56.0/60, period["period_hours"].(float64), 0.05)
}

func TestDescribeCommand(t *testing.T) {
	path := writeChannel(t, t.TempDir(), testkit.DefaultSiderealConfig())

	out, err := run(t, "describe", path)
	require.NoError(t, err)
	assert.Equal(t, "radial", out["kind"])
	assert.Len(t, out["summary"], 2)
}

func TestChiSquareCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeChannel(t, dir, noisy(testkit.DefaultSolarConfig(), "a", 1))
	b := writeChannel(t, dir, noisy(testkit.DefaultSolarConfig(), "b", 2))

	out, err := run(t, "chisquare", a, b, "--bin-width", "600")
	require.NoError(t, err)
	result := out["result"].(map[string]interface{})
	assert.Equal(t, 600.0, result["bin_width_s"])
	assert.Equal(t, float64(len(result["bins"].([]interface{}))-1), result["dof"])
}

func TestChauvenetAndTTestCommands(t *testing.T) {
	path := writeChannel(t, t.TempDir(), noisy(testkit.DefaultSolarConfig(), "solar", 3))

	out, err := run(t, "chauvenet", path, "--threshold", "0.5")
	require.NoError(t, err)
	assert.Len(t, out["scores"], 360)

	out, err = run(t, "ttest", path, "--mean", "100")
	require.NoError(t, err)
	test := out["test"].(map[string]interface{})
	assert.Equal(t, "reject", test["verdict"])
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeChannel(t, dir, noisy(testkit.DefaultSolarConfig(), "solar1", 1))
	b := writeChannel(t, dir, noisy(testkit.DefaultSolarConfig(), "solar2", 2))

	out, err := run(t, "report", a, b, "--alpha", "0.01")
	require.NoError(t, err)
	assert.NotEmpty(t, out["run_id"])
	assert.Len(t, out["channels"], 2)
	assert.Len(t, out["comparisons"], 1)
	assert.Equal(t, 0.01, out["options"].(map[string]interface{})["alpha"])
}

func TestCommandErrors(t *testing.T) {
	path := writeChannel(t, t.TempDir(), testkit.DefaultSolarConfig())
	missing := filepath.Join(t.TempDir(), "nope.csv")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown kind", []string{"fit", path, "--kind", "polar"}, errors.CodeValidationError},
		{"negative uncertainty", []string{"fit", path, "--uncertainty-deg", "-1"}, errors.CodeValidationError},
		{"negative expected period", []string{"period", path, "--expected-hours", "-3"}, errors.CodeValidationError},
		{"zero bin width", []string{"chisquare", path, path, "--bin-width", "0"}, errors.CodeValidationError},
		{"unknown flag", []string{"fit", path, "--bogus"}, errors.CodeValidationError},
		{"missing argument", []string{"chisquare", path}, errors.CodeValidationError},
		{"missing required flag", []string{"ttest", path}, errors.CodeValidationError},
		{"alpha out of range", []string{"period", path, "--alpha", "2"}, errors.CodeConfigInvalid},
		{"missing file", []string{"fit", missing}, errors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(errorLine(err), tt.code+": "), errorLine(err))
		})
	}
}

func TestLogLevelFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	path := writeChannel(t, t.TempDir(), testkit.DefaultSolarConfig())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"period", path, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "--log-level", "INFO"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stderr.String(), "[INFO]")
}
