package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/verixa/internal/harness"
	"github.com/roach88/verixa/internal/logging"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // rewrite golden traces instead of comparing
	Filter string // glob on the scenario file name, extension excluded
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult summarizes a test run.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

func (r *TestResult) add(s ScenarioResult) {
	r.Scenarios = append(r.Scenarios, s)
	if s.Pass {
		r.Passed++
	} else {
		r.Failed++
	}
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run storefront scenarios",
		Long: `Run storefront scenarios using the harness.

Each scenario runs against a fresh in-memory storefront. Its trace is
compared against golden/<name>.golden next to the scenario file when that
file exists, and its assertions are checked against the final database
and session state.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  verixa test ./scenarios
  verixa test ./scenarios --filter "checkout_*"
  verixa test ./scenarios --update
  verixa test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

// scenarioRunner runs scenario files and reports progress lines in text mode.
type scenarioRunner struct {
	cmd    *cobra.Command
	opts   *TestOptions
	logger *slog.Logger
	w      io.Writer
}

func runTests(cmd *cobra.Command, opts *TestOptions, dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	if len(files) == 0 && opts.Format != "json" {
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	r := &scenarioRunner{cmd: cmd, opts: opts, w: cmd.OutOrStdout()}
	if opts.Verbose {
		r.logger = logging.New(cmd.ErrOrStderr(), "debug")
	}
	for _, path := range files {
		result.add(r.run(path))
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles walks dir for .yaml and .yml files whose base name
// matches filter.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			ok, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

func (r *scenarioRunner) run(path string) ScenarioResult {
	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return r.fail(filepath.Base(path), "Load error", fmt.Sprintf("failed to load scenario: %v", err))
	}

	result, err := harness.Run(r.cmd.Context(), scenario, harness.Options{Logger: r.logger})
	if err != nil {
		return r.fail(scenario.Name, "Execution error", fmt.Sprintf("execution failed: %v", err))
	}

	golden := goldenFilePath(path)
	if r.opts.Update {
		if err := writeGolden(golden, scenario.Name, result); err != nil {
			return r.fail(scenario.Name, "Golden update error", fmt.Sprintf("failed to update golden file: %v", err))
		}
		return r.pass(scenario.Name, " (golden updated)")
	}

	// A scenario without a golden file is judged on its assertions alone.
	if _, err := os.Stat(golden); err == nil {
		match, err := matchesGolden(golden, scenario.Name, result)
		switch {
		case err != nil:
			return r.fail(scenario.Name, "Golden comparison error", fmt.Sprintf("golden comparison failed: %v", err))
		case !match:
			if r.opts.Format != "json" {
				fmt.Fprintf(r.w, "✗ %s\n  Golden file mismatch (run with --update to regenerate)\n", scenario.Name)
			}
			return ScenarioResult{Name: scenario.Name, Errors: []string{"trace does not match golden file"}}
		}
	}

	if !result.Pass {
		if r.opts.Format != "json" {
			fmt.Fprintf(r.w, "✗ %s\n", scenario.Name)
			for _, e := range result.Errors {
				fmt.Fprintf(r.w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: scenario.Name, Errors: result.Errors}
	}
	return r.pass(scenario.Name, "")
}

func (r *scenarioRunner) pass(name, note string) ScenarioResult {
	if r.opts.Format != "json" {
		fmt.Fprintf(r.w, "✓ %s%s\n", name, note)
	}
	return ScenarioResult{Name: name, Pass: true}
}

func (r *scenarioRunner) fail(name, label, msg string) ScenarioResult {
	if r.opts.Format != "json" {
		fmt.Fprintf(r.w, "✗ %s\n  %s: %s\n", name, label, msg)
	}
	return ScenarioResult{Name: name, Errors: []string{msg}}
}

// goldenFilePath maps dir/name.yaml to dir/golden/name.golden.
func goldenFilePath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

func writeGolden(path, name string, result *harness.Result) error {
	data, err := harness.MarshalTrace(name, result)
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func matchesGolden(path, name string, result *harness.Result) (bool, error) {
	want, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read golden file: %w", err)
	}
	got, err := harness.MarshalTrace(name, result)
	if err != nil {
		return false, fmt.Errorf("marshal trace: %w", err)
	}
	return bytes.Equal(want, got), nil
}

func failedRun(result TestResult) error {
	return markReported(NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed)))
}

func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return failedRun(result)
	}
	return nil
}

func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return failedRun(result)
	}
	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
