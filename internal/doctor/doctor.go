// Package doctor checks that the config, feed, and stats store are usable.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/muesli/termenv"

	"seamless/config"
	"seamless/internal/engine"
	"seamless/internal/feed"
	"seamless/internal/stats"
	"seamless/version"
)

type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

type CheckResult struct {
	Name    string
	Status  Status
	Summary string
	Details []string
	Actions []string
}

type Report struct {
	Checks []CheckResult
}

func (r Report) HasFailures() bool {
	for _, check := range r.Checks {
		if check.Status == StatusFail {
			return true
		}
	}
	return false
}

func (r Report) ExitCode() int {
	if r.HasFailures() {
		return 1
	}
	return 0
}

// Paths locates what the checks inspect.
type Paths struct {
	ConfigFile   string
	DatabasePath string
}

// GenerateReport runs every check in order. A config that fails to load
// still lets the feed check run against the defaults.
func GenerateReport(ctx context.Context, p Paths) Report {
	var checks []CheckResult

	checks = append(checks, checkMetadata())

	configResult, cfg := checkConfig(p.ConfigFile)
	checks = append(checks, configResult)
	checks = append(checks, checkFeed(cfg))
	checks = append(checks, checkDataStore(ctx, p.DatabasePath, cfg.Stats))
	checks = append(checks, checkTerminal(termenv.ColorProfile()))

	return Report{Checks: checks}
}

func checkMetadata() CheckResult {
	result := CheckResult{Name: "Runtime Metadata", Status: StatusOK}
	result.Summary = version.Info()
	result.Details = append(result.Details, fmt.Sprintf("Go runtime: %s", runtime.Version()))
	if exe, err := os.Executable(); err == nil {
		result.Details = append(result.Details, fmt.Sprintf("Executable: %s", exe))
	}
	return result
}

func checkConfig(path string) (CheckResult, config.File) {
	result := CheckResult{Name: "Configuration", Status: StatusOK}
	result.Details = append(result.Details, fmt.Sprintf("Config file: %s", path))

	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, config.ErrNotFound):
		result.Status = StatusWarn
		result.Summary = "Config file not found, using defaults"
		result.Actions = append(result.Actions, "run 'seamless init' to write one")
		return result, cfg
	case err != nil:
		result.Status = StatusFail
		result.Summary = "Failed to load config"
		result.Details = append(result.Details, err.Error())
		result.Actions = append(result.Actions, "fix YAML syntax in "+filepath.Base(path))
		return result, cfg
	}

	if err := checkDirWritable(filepath.Dir(path)); err != nil {
		result.Status = StatusWarn
		result.Details = append(result.Details, fmt.Sprintf("Directory not writable: %v", err))
		result.Actions = append(result.Actions, "adjust permissions so seamless can save its config")
	}

	t := cfg.Ticker
	result.Summary = fmt.Sprintf("Config loaded (%s, step %v)", t.Direction, t.Step)
	if _, err := engine.ParseDirection(string(t.Direction)); err != nil {
		result.Status = StatusFail
		result.Summary = "Invalid scroll direction"
		result.Details = append(result.Details, err.Error())
		result.Actions = append(result.Actions, "set ticker.direction to up, down, left or right")
	}
	if t.Step <= 0 {
		result.Status = StatusWarn
		result.Details = append(result.Details, fmt.Sprintf("Step %v is not positive; motion will not advance", t.Step))
	}
	return result, cfg
}

func checkDirWritable(dir string) error {
	file, err := os.CreateTemp(dir, "doctor-")
	if err != nil {
		return err
	}
	name := file.Name()
	file.Close()
	return os.Remove(name)
}

func checkFeed(cfg config.File) CheckResult {
	result := CheckResult{Name: "Feed", Status: StatusOK}
	pattern := cfg.FeedPattern()
	result.Details = append(result.Details, fmt.Sprintf("Pattern: %s", pattern))

	if !doublestar.ValidatePattern(pattern) {
		result.Status = StatusFail
		result.Summary = "Feed pattern is not a valid glob"
		result.Actions = append(result.Actions, "fix the feed key in the config")
		return result
	}

	items, err := feed.Load(pattern)
	switch {
	case errors.Is(err, feed.ErrNoMatches):
		result.Status = StatusWarn
		result.Summary = "No feed files found"
		result.Actions = append(result.Actions, "add .yaml or .md files matching the pattern")
		return result
	case err != nil:
		result.Status = StatusFail
		result.Summary = "Failed to read feed"
		result.Details = append(result.Details, err.Error())
		return result
	}

	result.Summary = fmt.Sprintf("%d items", len(items))
	minItems := engine.DefaultConfig().MinItems
	switch {
	case len(items) < minItems:
		result.Status = StatusWarn
		result.Details = append(result.Details, fmt.Sprintf("Scrolling starts at %d items", minItems))
	case len(items) > engine.ItemWarnThreshold:
		result.Status = StatusWarn
		result.Details = append(result.Details, fmt.Sprintf("More than %d items can slow rendering", engine.ItemWarnThreshold))
	}
	return result
}

func checkDataStore(ctx context.Context, path string, enabled bool) CheckResult {
	result := CheckResult{Name: "Stats Store", Status: StatusOK}
	if !enabled {
		result.Summary = "Disabled in config"
		return result
	}
	result.Details = append(result.Details, fmt.Sprintf("Path: %s", path))

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		result.Status = StatusWarn
		result.Summary = "Database file not initialized"
		result.Actions = append(result.Actions, "run 'seamless' once to create it")
		return result
	}
	if err != nil {
		result.Status = StatusWarn
		result.Summary = "Cannot read stats database"
		result.Details = append(result.Details, err.Error())
		return result
	}

	store, err := stats.Open(ctx, path)
	if err != nil {
		result.Status = StatusFail
		result.Summary = "Failed to open stats database"
		result.Details = append(result.Details, err.Error())
		return result
	}
	defer store.Close()

	rows, err := store.Summary(ctx)
	if err != nil {
		result.Status = StatusFail
		result.Summary = "Failed to query stats database"
		result.Details = append(result.Details, err.Error())
		return result
	}

	result.Summary = fmt.Sprintf("Database available (%d feeds)", len(rows))
	result.Details = append(result.Details,
		fmt.Sprintf("Size: %s", formatBytes(info.Size())),
		fmt.Sprintf("Last modified: %s", info.ModTime().Format(time.RFC3339)),
	)
	return result
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func checkTerminal(profile termenv.Profile) CheckResult {
	result := CheckResult{Name: "Terminal", Status: StatusOK}
	switch profile {
	case termenv.TrueColor:
		result.Summary = "TrueColor"
	case termenv.ANSI256:
		result.Summary = "256 colors, gradients fall back to solid"
	case termenv.ANSI:
		result.Summary = "16 colors, gradients fall back to solid"
	default:
		result.Status = StatusWarn
		result.Summary = "No color support detected"
		result.Actions = append(result.Actions, "check TERM and COLORTERM")
	}
	return result
}

// Write prints the report and returns its exit code.
func (r Report) Write(out io.Writer) int {
	fmt.Fprintln(out, "seamless doctor report")
	fmt.Fprintln(out, strings.Repeat("-", 22))

	for _, check := range r.Checks {
		fmt.Fprintf(out, "%s %s - %s\n", formatStatus(check.Status), check.Name, check.Summary)
		for _, detail := range check.Details {
			fmt.Fprintf(out, "    %s\n", detail)
		}
		for _, action := range check.Actions {
			fmt.Fprintf(out, "    -> %s\n", action)
		}
		fmt.Fprintln(out)
	}

	code := r.ExitCode()
	if code == 0 {
		fmt.Fprintln(out, "All checks completed")
	} else {
		fmt.Fprintln(out, "One or more checks failed")
	}
	return code
}

func formatStatus(status Status) string {
	switch status {
	case StatusOK:
		return "[OK ]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[    ]"
	}
}
