package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/mbbroberg/obsidian-dotfile-backup/internal/version"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/config"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/paths"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "obsidian-backup version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
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
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
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
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

func newGenConfigCmd(root *rootOptions) *cobra.Command {
	var (
		defaults bool
		source   string
		output   string
	)

	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		Example: `  obsidian-backup gen-config --defaults
  obsidian-backup gen-config -s ~/Vault/.obsidian/plugins
  obsidian-backup gen-config -o ~/.config/obsidian-backup/config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			if defaults {
				content = config.DefaultContent()
			} else {
				opts := config.LoadOptions{ExplicitPath: root.configFile}
				if source != "" {
					resolved, err := paths.ResolveRoot("source", source)
					if err != nil {
						return err
					}
					opts.SourceRoot = resolved
				}
				cfg, err := config.Load(opts)
				if err != nil {
					return err
				}
				content, err = config.Generate(cfg)
				if err != nil {
					return err
				}
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(content)
				return err
			}
			return writeNewFile(cmd, paths.ExpandHome(output), content)
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	cmd.Flags().StringVarP(&source, "source", "s", "", "Include "+paths.RootConfigFileName+" from this source directory")
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagWrite)
	return cmd
}

// writeNewFile refuses to replace an existing file.
func writeNewFile(cmd *cobra.Command, path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(path))
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Newf(errors.ErrInvalidInput, "%s already exists", path).WithDetail("path", path)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot create %s", path)
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot write %s", path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten+"\n", path)
	return nil
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man <dir>",
		Short:   MsgManShort,
		Args:    cobra.ExactArgs(1),
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := paths.ExpandHome(args[0])
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
			}
			if err := doc.GenManTree(cmd.Root(), ManHeader(), dir); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to generate man pages")
			}
			fmt.Fprintf(cmd.OutOrStdout(), MsgManWritten+"\n", dir)
			return nil
		},
	}
}

// ManHeader is shared by the man command and the standalone generator.
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "OBSIDIAN-BACKUP",
		Section: "1",
		Source:  "obsidian-backup " + version.Version,
		Manual:  "obsidian-backup manual",
	}
}
