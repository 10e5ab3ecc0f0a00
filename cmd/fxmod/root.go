// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fxmod-cli/internal/config"
	"fxmod-cli/internal/manifest"
	"fxmod-cli/internal/reconcile"
	"fxmod-cli/internal/vcs"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// rootDir is the working tree the manifest is anchored at.
	rootDir string
	// gitModulesFile overrides the manifest filename; empty falls back to
	// the tool config, then to .gitmodules.
	gitModulesFile string
	// excludes lists submodule names dropped from this invocation.
	excludes []string
	// optional includes the opt-in tier.
	optional bool
	// verbosity is raised by each repeated -v.
	verbosity int
	// debug forces debug level and caller reporting.
	debug bool
	// backtrace prints the full error chain on fatal errors.
	backtrace bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "fxmod",
		Short: "Reconcile nested submodules against an extended .gitmodules manifest",
		Long: TitleStyle.Render("fxmod") + SubtitleStyle.Render(" - manifest-driven submodule reconciliation") + `

fxmod layers required/optional tiers, sparse checkouts, pinned-tag
verification and fork-drift detection on top of plain git submodules.
Components are declared in an extended .gitmodules file whose sections
carry fxtag, fxurl, fxrequired and fxsparse attributes.

` + SubtitleStyle.Render("Examples:") + `
  fxmod checkout            Check out all required components
  fxmod checkout -o         Also check out optional components
  fxmod checkout mom6       Check out one component (implies optional)
  fxmod update              Move checked-out components to their pins
  fxmod status              Report per-component sync state
  fxmod test                Like status, exit code = failure count`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "path", "C", ".", "root directory of the working tree")
	rootCmd.PersistentFlags().StringVarP(&gitModulesFile, "gitmodules", "g", "", "manifest filename (default .gitmodules)")
	rootCmd.PersistentFlags().StringSliceVarP(&excludes, "exclude", "x", nil, "submodule names to drop from this invocation")
	rootCmd.PersistentFlags().BoolVarP(&optional, "optional", "o", false, "include optional-tier components")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "raise log level (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging with caller reporting")
	rootCmd.PersistentFlags().BoolVar(&backtrace, "backtrace", false, "print the full error chain on fatal errors")

	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(testCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		if backtrace {
			printBacktrace(err)
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// printBacktrace writes every unwrap level of err to stderr.
func printBacktrace(err error) {
	depth := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(os.Stderr, "%*s%s\n", depth*2, "", e.Error())
		depth++
	}
}

// newLogger builds the logger every component receives. Level follows
// repeated -v flags; -d forces debug and adds caller reporting.
func newLogger() *log.Logger {
	level := log.WarnLevel
	switch {
	case debug || verbosity >= 2:
		level = log.DebugLevel
	case verbosity == 1:
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:        level,
		ReportCaller: debug,
		Prefix:       "fxmod",
	})
}

// invocation bundles everything a subcommand handler needs: the loaded
// manifest, the tier set derived from flags and named components, and a
// ready engine.
type invocation struct {
	man    *manifest.Manifest
	tiers  manifest.TierSet
	engine *reconcile.Engine
	log    *log.Logger
}

// setup resolves tool config and flags into an invocation. Components
// named on the command line restrict scope and imply the optional tier.
func setup(components []string) (*invocation, error) {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Verbose && logger.GetLevel() > log.InfoLevel {
		logger.SetLevel(log.InfoLevel)
	}

	fileName := gitModulesFile
	if fileName == "" {
		fileName = cfg.GitModulesFile
	}
	exclude := append(append([]string{}, cfg.Exclude...), excludes...)

	man, err := manifest.Load(rootDir, fileName, components, exclude)
	if err != nil {
		return nil, err
	}

	tiers := manifest.DefaultTiers()
	if optional || len(components) > 0 {
		tiers = manifest.OptionalTiers()
	}

	git := vcs.New("", logger)
	return &invocation{
		man:    man,
		tiers:  tiers,
		engine: reconcile.New(git, logger, os.Stdout),
		log:    logger,
	}, nil
}
