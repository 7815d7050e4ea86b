package kegpack

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/kegpack/internal/version"
	"github.com/arthur-debert/kegpack/pkg/assembler"
	"github.com/arthur-debert/kegpack/pkg/config"
	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
	"github.com/arthur-debert/kegpack/pkg/logging"
	"github.com/arthur-debert/kegpack/pkg/manifest"
	"github.com/arthur-debert/kegpack/pkg/output"
)

// globalFlags holds the persistent flags shared by all commands
type globalFlags struct {
	verbosity   int
	configFile  string
	versionFile string
	payloadDir  string
	format      string
	noCycles    bool
}

// overrides turns explicitly set flags into configuration keys. A flag
// naming a file or directory makes it mandatory.
func (g *globalFlags) overrides() map[string]interface{} {
	out := make(map[string]interface{})
	if g.versionFile != "" {
		out["version.file"] = g.versionFile
		out["version.required"] = true
	}
	if g.payloadDir != "" {
		out["payload.dir"] = g.payloadDir
		out["payload.required"] = true
	}
	if g.noCycles {
		out["traversal.detect_cycles"] = false
	}
	return out
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "kegpack",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			if _, err := output.ParseFormat(flags.format); err != nil {
				return err
			}

			cfg, err := config.Load(config.LoadOptions{
				File:      flags.configFile,
				Overrides: flags.overrides(),
			})
			if err != nil {
				return err
			}
			config.Initialize(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrUsage, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVar(&flags.versionFile, "version-file", "", MsgFlagVersionFile)
	rootCmd.PersistentFlags().StringVar(&flags.payloadDir, "payload", "", MsgFlagPayload)
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().BoolVar(&flags.noCycles, "no-cycle-detection", false, MsgFlagNoCycles)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrUsage, MsgErrBadFlags)
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newPlanCmd(flags))
	rootCmd.AddCommand(newManifestCmd())
	rootCmd.AddCommand(newRulesCmd(flags))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// Execute runs the command line and returns the process exit code. Errors
// are printed to stderr, followed by the captured stack for copy failures
// and internal errors.
func Execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := executeRecovered(rootCmd)
	if err == nil {
		return errors.ExitOK
	}

	// Errors raised by cobra itself (unknown command, bad arguments) carry
	// no code.
	if errors.GetErrorCode(err) == errors.ErrUnknown {
		err = errors.Wrap(err, errors.ErrUsage, MsgErrUsage)
	}

	format, _ := rootCmd.PersistentFlags().GetString("format")
	printer := output.NewPrinter(stderr, resolveFormat(format, stderr))
	printer.Error(err, showStack(err))

	if errors.ExitCode(err) == errors.ExitUsage && cmd != nil {
		_, _ = fmt.Fprintln(stderr)
		_, _ = fmt.Fprint(stderr, cmd.UsageString())
	}
	return errors.ExitCode(err)
}

// executeRecovered runs root and turns a panic into an internal error
// carrying the stack
func executeRecovered(root *cobra.Command) (cmd *cobra.Command, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Unexpected failure")
			err = errors.Newf(errors.ErrInternal, "unexpected failure: %v", r).WithStack()
		}
	}()
	return root.ExecuteC()
}

// showStack reports whether the stack captured in err is printed
func showStack(err error) bool {
	return errors.IsCopyFailure(err) || errors.IsErrorCode(err, errors.ErrInternal)
}

// exactArgs is cobra.ExactArgs reporting a usage error
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.Newf(errors.ErrUsage, MsgErrArgCount, cmd.Name(), n, len(args))
		}
		return nil
	}
}

// resolveFormat parses the --format value and detects auto for w
func resolveFormat(value string, w io.Writer) output.Format {
	format, err := output.ParseFormat(value)
	if err != nil {
		format = output.FormatAuto
	}
	if format != output.FormatAuto {
		return format
	}
	if f, ok := w.(*os.File); ok {
		return output.DetectFormat(f)
	}
	return output.FormatText
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		prune        bool
		manifestPath string
	)

	cmd := &cobra.Command{
		Use:     "run <source_dir> <destination_dir>",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		Example: MsgRunExample,
		GroupID: "core",
		Args:    exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := output.NewPrinter(cmd.OutOrStdout(), resolveFormat(flags.format, cmd.OutOrStdout()))
			stderr := output.NewPrinter(cmd.ErrOrStderr(), resolveFormat(flags.format, cmd.ErrOrStderr()))

			opts := assembler.OptionsFromConfig(config.Get(), args[0], args[1], prune)
			opts.Reporter = stdout

			log.Info().
				Str("source", args[0]).
				Str("dest", args[1]).
				Bool("prune", prune).
				Msg("Packing keg")

			stdout.Title(fmt.Sprintf(MsgRunTitle, args[1]))
			result, err := assembler.Run(opts)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				stderr.Warning(w)
			}

			if manifestPath != "" {
				fsys := filesystem.NewOS()
				m, err := manifest.Build(fsys, result.Dest)
				if err != nil {
					return err
				}
				if err := m.Write(fsys, manifestPath); err != nil {
					return err
				}
				stdout.Status(fmt.Sprintf(MsgManifestWritten, manifestPath))
			}

			stdout.Success(fmt.Sprintf(MsgRunDone, len(result.Copy.Copied), len(result.Copy.Linked), args[1]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&prune, "prune", "p", false, MsgFlagPrune)
	cmd.Flags().StringVar(&manifestPath, "manifest", "", MsgFlagManifest)
	return cmd
}

func newPlanCmd(flags *globalFlags) *cobra.Command {
	var excluded bool

	cmd := &cobra.Command{
		Use:     "plan <source_dir>",
		Short:   MsgPlanShort,
		Long:    MsgPlanLong,
		GroupID: "core",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := assembler.OptionsFromConfig(config.Get(), args[0], "", false)
			plan, err := assembler.Plan(opts)
			if err != nil {
				return err
			}

			shown := plan.Copy
			if excluded {
				shown = plan.Excluded
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprint(out, output.RenderTree(args[0], shown.Relative(plan.Source)))
			printer := output.NewPrinter(out, resolveFormat(flags.format, out))
			printer.Status(fmt.Sprintf(MsgPlanSummary, plan.Copy.Len(), plan.Excluded.Len()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&excluded, "excluded", false, MsgFlagExcluded)
	return cmd
}

func newManifestCmd() *cobra.Command {
	var digestOnly bool

	cmd := &cobra.Command{
		Use:     "manifest <dir>",
		Short:   MsgManifestShort,
		Long:    MsgManifestLong,
		GroupID: "core",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Build(filesystem.NewOS(), args[0])
			if err != nil {
				return err
			}
			if digestOnly {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), m.Digest)
				return err
			}
			return m.Encode(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&digestOnly, "digest", false, MsgFlagDigest)
	return cmd
}

func newRulesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rules",
		Short:   MsgRulesShort,
		Long:    MsgRulesLong,
		GroupID: "misc",
		Args:    exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			md := output.RulesMarkdown(config.Get())
			_, err := fmt.Fprint(out, output.RenderMarkdown(md, resolveFormat(flags.format, out)))
			return err
		},
	}
}

func newConfigCmd() *cobra.Command {
	var template bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if template {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GenerateConfigContent())
				return err
			}
			return config.Get().Dump(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&template, "template", false, MsgFlagTemplate)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(exactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
