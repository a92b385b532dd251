package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/archive"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/compare"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/config"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/errors"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/filesystem"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/hardlink"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/logging"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/paths"
	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/ui"
)

// now is the archive clock.
var now = time.Now

type operation string

const (
	opNone    operation = ""
	opCompare operation = "compare"
	opLink    operation = "link"
	opArchive operation = "archive"
)

// selected returns the one operation to run. Compare wins over link, link
// over archive.
func (o *rootOptions) selected() operation {
	switch {
	case o.compare:
		return opCompare
	case o.link:
		return opLink
	case o.archive:
		return opArchive
	default:
		return opNone
	}
}

// runContext carries what every operation needs.
type runContext struct {
	fs          filesystem.FS
	cfg         *config.Config
	printer     *ui.Printer
	source      string
	destination string
	dryRun      bool
}

func runRoot(cmd *cobra.Command, opts *rootOptions) error {
	logger := logging.GetLogger("cli")

	op := opts.selected()
	if op == opNone {
		logger.Info().Msg("No operation selected")
		cmd.PrintErrln(MsgNoOperation)
		return nil
	}

	source, err := paths.ResolveRoot("source", opts.source)
	if err != nil {
		return err
	}
	destination, err := paths.ResolveRoot("destination", opts.destination)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadOptions{
		ExplicitPath: opts.configFile,
		SourceRoot:   source,
	})
	if err != nil {
		return err
	}

	rc := &runContext{
		fs:          filesystem.NewOS(),
		cfg:         cfg,
		printer:     ui.NewPrinter(cmd.OutOrStdout(), opts.format()),
		source:      source,
		destination: destination,
		dryRun:      opts.dryRun,
	}

	logger.Info().
		Str("operation", string(op)).
		Str("source", source).
		Str("destination", destination).
		Msg("Running operation")

	switch op {
	case opCompare:
		return runCompare(rc)
	case opLink:
		return runLink(rc)
	default:
		return runArchive(rc)
	}
}

func runCompare(rc *runContext) error {
	report, err := compare.Compare(rc.fs, rc.source, rc.destination, compare.Options{
		Ignore:     rc.cfg.Plugins.Ignore,
		MarkerFile: rc.cfg.Plugins.MarkerFile,
	})
	if err != nil {
		return err
	}

	err = report.Render(rc.printer.Writer(), compare.RenderOptions{
		ColumnWidth:      rc.cfg.Compare.ColumnWidth,
		SourceTitle:      rc.cfg.Compare.SourceTitle,
		DestinationTitle: rc.cfg.Compare.DestinationTitle,
		Highlight:        rc.printer.Highlight,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to write comparison")
	}

	if report.Equal() {
		rc.printer.Successf(MsgCompareEqual)
	}
	return nil
}

func runLink(rc *runContext) error {
	opts := hardlink.Options{
		Ignore:     rc.cfg.Plugins.Ignore,
		MarkerFile: rc.cfg.Plugins.MarkerFile,
		Patterns:   rc.cfg.Link.Patterns,
		ExtraFiles: rc.cfg.Link.ExtraFiles,
		DryRun:     rc.dryRun,
	}

	summary, err := hardlink.New(rc.fs).Sync(rc.source, rc.destination, opts, func(r hardlink.Result) {
		printLinkResult(rc.printer, r)
	})
	if err != nil {
		return err
	}

	if rc.dryRun {
		rc.printer.Infof(MsgLinkDryRunSummary, summary.Planned, summary.Skipped)
	} else {
		rc.printer.Infof(MsgLinkSummary, summary.Linked, summary.Skipped, summary.Failed)
	}
	return nil
}

func printLinkResult(p *ui.Printer, r hardlink.Result) {
	switch r.Outcome {
	case hardlink.Linked:
		p.Successf(MsgLinkCreated, r.Destination)
	case hardlink.Skipped:
		p.Skipf(MsgLinkSkipped, r.Destination)
	case hardlink.Planned:
		p.Infof(MsgLinkPlanned, r.Source, r.Destination)
	case hardlink.Failed:
		if errors.IsErrorCode(r.Err, errors.ErrLinkVerify) {
			p.Errorf(MsgLinkNotVerified, r.Destination)
			return
		}
		p.Errorf(MsgLinkError, r.Err)
	}
}

func runArchive(rc *runContext) error {
	result, err := archive.Create(rc.fs, rc.destination, archive.Options{
		Prefix:     rc.cfg.Archive.Prefix,
		DateFormat: rc.cfg.Archive.DateFormat,
		Now:        now,
	})
	if err != nil {
		return err
	}

	rc.printer.Successf(MsgArchiveCreated, result.Path)
	if result.Skipped > 0 {
		rc.printer.Skipf(MsgArchiveSkipped, result.Skipped)
	}
	return nil
}
