package cli

import (
	"embed"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mbbroberg/obsidian-dotfile-backup/internal/version"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/cobrax/topics"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/logging"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/ui"
)

//go:embed topics/*.md
var helpTopics embed.FS

// rootOptions holds the parsed flags of one invocation.
type rootOptions struct {
	source      string
	destination string
	compare     bool
	link        bool
	archive     bool
	dryRun      bool

	verbosity  int
	configFile string
	noColor    bool
}

func (o *rootOptions) missingRequired() []string {
	var missing []string
	if strings.TrimSpace(o.destination) == "" {
		missing = append(missing, `"destination"`)
	}
	if strings.TrimSpace(o.source) == "" {
		missing = append(missing, `"source"`)
	}
	return missing
}

func (o *rootOptions) format() ui.Format {
	if o.noColor {
		return ui.FormatText
	}
	return ui.FormatAuto
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "obsidian-backup",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return errors.Newf(errors.ErrInvalidInput, MsgErrUnexpectedArg, args[0])
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Usage errors surface before the log file is opened.
			if !cmd.HasParent() {
				if missing := opts.missingRequired(); len(missing) > 0 {
					return errors.Newf(errors.ErrInvalidInput, MsgErrRequiredFlags, strings.Join(missing, ", "))
				}
			}
			if opts.noColor {
				_ = os.Setenv("NO_COLOR", "1")
			}
			logging.SetupLoggerWithOutput(opts.verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Operation flags
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.source, "source", "s", "", MsgFlagSource)
	flags.StringVarP(&opts.destination, "destination", "d", "", MsgFlagDestination)
	flags.BoolVarP(&opts.compare, "compare", "c", false, MsgFlagCompare)
	flags.BoolVarP(&opts.link, "link", "l", false, MsgFlagLink)
	flags.BoolVarP(&opts.archive, "archive", "a", false, MsgFlagArchive)
	flags.BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	_ = rootCmd.MarkFlagDirname("source")
	_ = rootCmd.MarkFlagDirname("destination")

	// Global flags
	persistent := rootCmd.PersistentFlags()
	persistent.CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	persistent.StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	persistent.BoolVar(&opts.noColor, "no-color", false, MsgFlagNoColor)
	_ = rootCmd.MarkPersistentFlagFilename("config", "toml")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid flags")
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)
	rootCmd.SetVersionTemplate("obsidian-backup {{.Version}}\n")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newGenConfigCmd(opts))
	rootCmd.AddCommand(newManCmd())

	if files, err := fs.Sub(helpTopics, "topics"); err == nil {
		_, err = topics.InitializeWithOptions(rootCmd, files, topics.Options{
			Renderer: topics.NewGlamourRenderer(stdoutIsTerminal()),
		})
		if err != nil {
			log.Debug().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd
}

// IsUsageError reports whether err came from bad arguments rather than from
// running an operation.
func IsUsageError(err error) bool {
	return errors.IsErrorCode(err, errors.ErrInvalidInput)
}
