package app

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/argcegar/internal/cegar"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/hcl"
	"github.com/specialistvlad/argcegar/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const safeProgram = `
program "safe" { entry = "main" }

function "main" {
  locals = ["x"]
  entry  = "a"
  exit   = "c"
  errors = ["err"]

  edge "a" "b" { assign = { x = 1 } }
  branch "b" {
    condition = x == 2
    then      = "err"
    else      = "c"
  }
}
`

const unsafeProgram = `
program "unsafe" { entry = "main" }

function "main" {
  locals = ["x"]
  entry  = "a"
  exit   = "c"
  errors = ["err"]

  edge "a" "b" { assign = { x = 1 } }
  branch "b" {
    condition = x == 1
    then      = "err"
    else      = "c"
  }
}
`

func writeProgram(t *testing.T, dir, src string) string {
	t.Helper()
	path := filepath.Join(dir, "program.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

// setupAppTest creates an app over the files in dir with debug logs captured.
func setupAppTest(t *testing.T, cfg Config) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer) {
	t.Helper()
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	c, err := NewConfig(cfg)
	require.NoError(t, err)

	out, logs := &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	a := NewApp(out, logs, c, hcl.NewLoader())
	t.Cleanup(func() {
		if os.Getenv("ARGCEGAR_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Config{Paths: []string{"x.hcl"}}},
		{name: "no paths", cfg: Config{}, wantErr: "program path"},
		{name: "bad log level", cfg: Config{Paths: []string{"x.hcl"}, LogLevel: "loud"}, wantErr: "LogLevel"},
		{name: "bad report format", cfg: Config{Paths: []string{"x.hcl"}, ReportFormat: "xml"}, wantErr: "ReportFormat"},
		{name: "bad port", cfg: Config{Paths: []string{"x.hcl"}, HealthcheckPort: 70000}, wantErr: "HealthcheckPort"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewConfig(tc.cfg)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "auto", got.LogFormat)
			assert.Equal(t, "info", got.LogLevel)
			assert.Equal(t, "yaml", got.ReportFormat)
		})
	}
}

func TestOverrides_Apply(t *testing.T) {
	a := config.DefaultAnalysis()
	order, limit := config.OrderBottomUp, 7
	timeout := 3 * time.Second

	Overrides{InterpolationOrder: &order, MaxRefinements: &limit, RoundTimeout: &timeout}.Apply(a)

	assert.Equal(t, config.OrderBottomUp, a.InterpolationOrder)
	assert.Equal(t, 7, a.MaxRefinements)
	assert.Equal(t, timeout, a.RoundTimeout)
	assert.Equal(t, config.StrategyInductive, a.InterpolationStrategy, "unset overrides keep the loaded value")
}

func TestApp_Run(t *testing.T) {
	testCases := []struct {
		name        string
		src         string
		format      string
		wantVerdict cegar.Verdict
		wantOutput  []string
	}{
		{name: "safe yaml", src: safeProgram, format: "yaml", wantVerdict: cegar.Safe, wantOutput: []string{"verdict: SAFE", "program: safe", "run_id:"}},
		{name: "unsafe json", src: unsafeProgram, format: "json", wantVerdict: cegar.Unsafe, wantOutput: []string{`"verdict": "UNSAFE"`, `"counterexample"`}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			path := writeProgram(t, t.TempDir(), tc.src)
			a, out, logs := setupAppTest(t, Config{Paths: []string{path}, ReportFormat: tc.format})

			// --- Act ---
			res, err := a.Run(context.Background())

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.wantVerdict, res.Verdict)
			for _, want := range tc.wantOutput {
				assert.Contains(t, out.String(), want)
			}
			assert.Contains(t, logs.String(), "run_id=")
		})
	}
}

func TestApp_Run_LoadError(t *testing.T) {
	path := writeProgram(t, t.TempDir(), `program "broken" {`)
	a, out, _ := setupAppTest(t, Config{Paths: []string{path}})

	_, err := a.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load programs")
	assert.Empty(t, out.String())
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestApp_WatchServesAndReruns(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	path := writeProgram(t, dir, safeProgram)
	a, out, _ := setupAppTest(t, Config{Paths: []string{dir}, Watch: true, WatchDebounce: 20 * time.Millisecond})
	a.ready = make(chan string, 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	type outcome struct {
		res *cegar.Result
		err error
	}
	done := make(chan outcome, 1)

	// --- Act ---
	go func() {
		res, err := a.Run(ctx)
		done <- outcome{res, err}
	}()
	addr := <-a.ready
	require.Eventually(t, func() bool { return strings.Count(out.String(), "verdict:") == 1 }, 5*time.Second, 10*time.Millisecond)

	health := get(t, "http://"+addr+"/health")
	metrics := get(t, "http://"+addr+"/metrics")

	require.NoError(t, os.WriteFile(path, []byte(unsafeProgram), 0o600))
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "verdict: UNSAFE") }, 5*time.Second, 10*time.Millisecond)
	cancel()
	got := <-done

	// --- Assert ---
	assert.Equal(t, "OK\n", health)
	assert.Contains(t, metrics, "argcegar_verdicts_total")
	require.NoError(t, got.err)
	require.NotNil(t, got.res)
	assert.Equal(t, cegar.Unsafe, got.res.Verdict)
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	file := writeProgram(t, sub, safeProgram)

	testCases := []struct {
		name  string
		paths []string
		want  []string
	}{
		{name: "file", paths: []string{file}, want: []string{sub}},
		{name: "directory", paths: []string{dir}, want: []string{dir, sub}},
		{name: "glob", paths: []string{filepath.Join(dir, "**", "*.hcl")}, want: []string{dir, sub}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := watchDirs(tc.paths)

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWatchCreatedDir(t *testing.T) {
	testCases := []struct {
		name     string
		closed   bool
		wantWarn bool
	}{
		{name: "new directory is watched"},
		{name: "failure is logged", closed: true, wantWarn: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			ctx, logs := testutil.Context(t)
			dir := filepath.Join(t.TempDir(), "added")
			require.NoError(t, os.Mkdir(dir, 0o755))
			w, err := fsnotify.NewWatcher()
			require.NoError(t, err)
			t.Cleanup(func() { _ = w.Close() })
			if tc.closed {
				require.NoError(t, w.Close())
			}

			// --- Act ---
			watchCreatedDir(ctx, w, fsnotify.Event{Name: dir, Op: fsnotify.Create})

			// --- Assert ---
			assert.Equal(t, tc.wantWarn, strings.Contains(logs.String(), "Could not watch new directory."))
			if !tc.closed {
				assert.Contains(t, w.WatchList(), dir)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", wantDebug: true},
		{name: "info json", level: "info", format: "json", wantJSON: true},
		{name: "auto on a buffer is json", level: "warn", format: "auto", wantJSON: true},
		{name: "unknown level is info", level: "loud", format: "text"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(tc.level, tc.format, &buf)

			logger.Debug("probe-debug")
			logger.Error("probe-error")

			assert.Equal(t, tc.wantDebug, strings.Contains(buf.String(), "probe-debug"))
			assert.Contains(t, buf.String(), "probe-error")
			assert.Equal(t, tc.wantJSON, strings.HasPrefix(buf.String(), "{"))
		})
	}
}
