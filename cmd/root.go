package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	rootPath       string
	quiet          bool
	verbose        bool
	outputFormat   string
	outputFile     string
	failOn         string
	maxDepth       int
	reportAll      bool
	strategyName   string
	namingName     string
	staged         bool
	diff           bool
	useBaseline    bool
	createBaseline bool
	baselinePath   string
)

var rootCmd = &cobra.Command{
	Use:   "modcycle [paths...]",
	Short: "Find module dependency cycles in JavaScript and TypeScript projects",
	Long: `modcycle follows the imports, re-exports and requires of each source module,
detects when the references loop back, and recommends how to break each loop:
bypass a barrel file, extract shared types, inject a dependency, or split a module.

By default every source file under the project root is used as a seed.
Pass paths to analyze specific files, or use --staged / --diff to analyze
only what changed in git.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		failed, err := runLint(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if failed {
			os.Exit(1)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootPath, "root", "r", "", "Project root directory (auto-detected if not specified)")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.StringVarP(&outputFormat, "format", "f", "console", "Output format for reports (console|json|markdown|yaml)")
	pf.StringVarP(&outputFile, "output", "o", "", "Output file for reports")
	pf.StringVar(&failOn, "fail-on", "cycle", "Exit non-zero when cycles remain (cycle|never)")
	pf.IntVar(&maxDepth, "max-depth", 10, "Maximum number of references followed from a seed")
	pf.BoolVar(&reportAll, "all", false, "Report every distinct cycle reachable from a seed, not just the first")
	pf.StringVar(&strategyName, "strategy", "auto", "Remediation strategy (auto|module-split|direct-import|extract-shared|dependency-injection)")
	pf.StringVar(&namingName, "naming", "semantic", "Naming convention for suggested modules (semantic|numbered)")

	f := rootCmd.Flags()
	f.BoolVar(&staged, "staged", false, "Only analyze files in the git staging area")
	f.BoolVar(&diff, "diff", false, "Only analyze uncommitted changes")
	f.BoolVar(&useBaseline, "baseline", false, "Ignore cycles recorded in the baseline file")
	f.BoolVar(&createBaseline, "baseline-create", false, "Record the current cycles as the baseline and exit successfully")
	f.StringVar(&baselinePath, "baseline-path", ".modcyclebaseline.json", "Baseline file, relative to the project root")
	rootCmd.MarkFlagsMutuallyExclusive("staged", "diff")

	bindFlags(pf)
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"root":      "root",
	"quiet":     "quiet",
	"verbose":   "verbose",
	"format":    "format",
	"output":    "output",
	"fail-on":   "failOn",
	"max-depth": "maxDepth",
	"all":       "reportAllCycles",
	"strategy":  "strategy",
	"naming":    "naming",
}

// bindFlags binds flags to viper so they override config files and
// environment when set.
func bindFlags(flags *pflag.FlagSet) {
	for flag, key := range flagKeys {
		if f := flags.Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
