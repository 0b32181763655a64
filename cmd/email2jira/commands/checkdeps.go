package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/email2jira/email2jira/internal/ci"
	"github.com/email2jira/email2jira/internal/manifest"
)

var (
	checkRequirements string
	checkModeFlag     string
	checkExcludes     []string
	checkKeepDerived  bool
	checkPython       string
	checkTimeout      time.Duration
)

// checkdepsCmd represents the checkdeps command
var checkdepsCmd = &cobra.Command{
	Use:   "checkdeps",
	Short: "Filter a requirements manifest and verify it with a pip dry run",
	Long: `Filter a pip requirements manifest, dropping comments, blank lines, and
Python standard-library module names, then verify the survivors without
installing anything.

Modes:
  dry-run  simulate installation of the filtered requirements
  check    simulate installation, then verify installed dependency consistency

Failures are reported through CI annotations when running under GitHub
Actions.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCheckDeps(); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkdepsCmd)

	checkdepsCmd.Flags().StringVar(&checkRequirements, "requirements", "requirements.txt", "Path to the requirements manifest")
	checkdepsCmd.Flags().StringVar(&checkModeFlag, "mode", string(manifest.ModeDryRun), "Verification mode: dry-run or check")
	checkdepsCmd.Flags().StringSliceVar(&checkExcludes, "exclude", nil, "Additional package names to exclude")
	checkdepsCmd.Flags().BoolVar(&checkKeepDerived, "keep-derived", false, "Keep the filtered manifest file for inspection")
	checkdepsCmd.Flags().StringVar(&checkPython, "python", "python3", "Python interpreter used to invoke pip")
	checkdepsCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "Timeout for the pip invocation")
}

func runCheckDeps() error {
	mode, err := manifest.ParseMode(checkModeFlag)
	if err != nil {
		ci.Errorf("%v", err)
		return err
	}

	excludes := append([]string{}, manifest.DefaultExcludes...)
	excludes = append(excludes, checkExcludes...)

	entries, err := manifest.FilterFile(checkRequirements, excludes)
	if err != nil {
		ci.Errorf("failed to filter %s: %v", checkRequirements, err)
		return err
	}

	if err := manifest.Gate(entries); err != nil {
		ci.Errorf("no valid packages found in %s", checkRequirements)
		return err
	}
	ci.Noticef("found %d package(s) to verify in %s", len(entries), checkRequirements)

	derived, cleanup, err := manifest.WriteDerived(entries)
	if err != nil {
		ci.Errorf("%v", err)
		return err
	}
	if checkKeepDerived {
		fmt.Printf("Derived manifest kept at %s\n", derived)
	} else {
		defer cleanup()
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	checker := &manifest.Checker{Python: checkPython}
	if err := checker.Run(ctx, mode, derived); err != nil {
		ci.Errorf("dependency check failed for %s: %v", checkRequirements, err)
		return err
	}

	ci.Noticef("dependency check passed for %s", checkRequirements)
	return nil
}
