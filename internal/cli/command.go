package cli

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/dirscan/internal/dirscan"
	"github.com/idelchi/dirscan/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// allowedOutputs lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"table", "json", "yaml", "paths"}

// settings is the resolved configuration of one invocation.
type settings struct {
	dirscan.Options

	// Output is the output format.
	Output string
	// Dirs ranks directories instead of files.
	Dirs bool
	// Color enables colored headings.
	Color bool
	// Debug enables debug logging.
	Debug bool
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	v := viper.New()

	var (
		configFile string
		integrate  bool
	)

	cmd := &cobra.Command{
		Use:     "dirscan [flags] [path] [max_depth]",
		Short:   "Scan a directory tree and report aggregate statistics",
		Version: c.version,
		Long: heredoc.Doc(`
			dirscan walks a directory tree and reports what it found: total entries
			and size, a breakdown by file extension, the depth distribution, the
			largest, smallest and oldest files, and the entries it could not read.

			Positional Arguments:
			  path                   Directory to scan. Defaults to the current directory.
			  max_depth              Maximum depth to descend, same as --depth.

			The depth limit is inclusive: with a limit of 1 the direct children of
			the root are reported but not listed. Symbolic links are never followed.

			Settings are read from flags, then DIRSCAN_* environment variables, then
			a .dirscan.yaml file in the current or home directory (or --config).

			The '-I' flag is available if using the integration script for shell usage.
			It will then run an interactive mode where the output of the tool is piped to 'fzf'
		`),
		Args:          cobra.RangeArgs(0, 2), //nolint:mnd // path and depth
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if integrate {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return err
			}

			if err := loadConfig(v, configFile); err != nil {
				return err
			}

			s, err := resolve(v, cmd, args)
			if err != nil {
				return err
			}

			return logic(cmd, s)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false

	flags.StringP("output", "o", "table", "Output format: table, json, yaml or paths")
	flags.IntP("depth", "d", dirscan.NoDepthLimit, "Maximum traversal depth (-1=unlimited)")
	flags.IntP("top", "t", dirscan.DefaultTopN, "Number of top files and directories to display")
	flags.StringSliceP("exclude", "e", []string{}, "Regex patterns to exclude")
	flags.StringSliceP(
		"ext",
		"x",
		[]string{},
		"File suffixes to include (e.g., .go,.md). Use '!' prefix to exclude (e.g., !.log,!_test.go)",
	)
	flags.String("min-size", "0B", "Minimum file size (e.g., 1KB)")
	flags.Bool("dirs", false, "Rank directories instead of individual files")
	flags.Bool("parallel", false, "Walk the tree with parallel workers")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("debug", false, "Enable debug output")
	flags.StringVar(&configFile, "config", "", "Config file (default .dirscan.yaml in the current or home directory)")
	flags.BoolVarP(&integrate, "init", "i", false, "Output init script for shell usage")

	for _, name := range configKeys {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %q: %v", name, err))
		}
	}

	return cmd
}

// resolve merges flags, environment and config file into settings and
// validates them.
func resolve(v *viper.Viper, cmd *cobra.Command, args []string) (settings, error) {
	s := settings{
		Options: dirscan.DefaultOptions(),
		Output:  v.GetString("output"),
		Dirs:    v.GetBool("dirs"),
		Color:   !v.GetBool("no-color"),
		Debug:   v.GetBool("debug"),
	}

	if !slices.Contains(allowedOutputs, s.Output) {
		return s, fmt.Errorf("invalid output format %q: must be one of %v", s.Output, allowedOutputs)
	}

	s.MaxDepth = v.GetInt("depth")
	s.TopN = v.GetInt("top")
	s.Excludes = v.GetStringSlice("exclude")
	s.Extensions = v.GetStringSlice("ext")
	s.Parallel = v.GetBool("parallel")

	if len(args) > 0 {
		s.Path = args[0]
	}

	if len(args) > 1 {
		if cmd.Flags().Changed("depth") {
			return s, errors.New("depth given both as argument and as --depth")
		}

		depth, err := strconv.Atoi(args[1])
		if err != nil || depth < 0 {
			return s, fmt.Errorf("invalid max_depth %q: must be a non-negative integer", args[1])
		}

		s.MaxDepth = depth
	}

	if s.MaxDepth < dirscan.NoDepthLimit {
		return s, fmt.Errorf("invalid depth %d: must be non-negative or %d for unlimited", s.MaxDepth, dirscan.NoDepthLimit)
	}

	if s.TopN <= 0 {
		return s, fmt.Errorf("invalid top %d: must be positive", s.TopN)
	}

	// Parse minSize string to bytes
	if minSize := v.GetString("min-size"); minSize != "" {
		size, err := humanize.ParseBytes(minSize)
		if err != nil {
			return s, fmt.Errorf("invalid min-size: %w", err)
		}

		s.MinSize = int64(size) //nolint:gosec // Size conversion from humanize is safe
	}

	return s, nil
}
