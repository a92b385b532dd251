package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Back up Obsidian plugin configuration with hard links"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgGenConfigShort  = "Print the effective configuration as TOML"
	MsgGenConfigLong   = "Print the configuration this invocation would use, after every layer has been applied, as a TOML document suitable for .obsidian-backup.toml or the user config file."
	MsgManShort        = "Generate man pages into a directory"

	// Operation output
	MsgLinkCreated       = "Hard link created successfully: %s"
	MsgLinkNotVerified   = "Failed to create hard link: %s"
	MsgLinkSkipped       = "File already exists, skipping: %s"
	MsgLinkError         = "Error creating hard link: %v"
	MsgLinkPlanned       = "Would link: %s -> %s"
	MsgLinkSummary       = "Linked %d, skipped %d, failed %d."
	MsgLinkDryRunSummary = "Dry run: %d to link, %d already present."
	MsgCompareEqual      = "All plugin directories match."
	MsgArchiveCreated    = "Archive created: %s"
	MsgArchiveSkipped    = "Skipped %d unreadable entries."
	MsgNoOperation       = "No operation selected. Use --compare, --link or --archive."
	MsgConfigWritten     = "Wrote %s"
	MsgManWritten        = "Man pages written to %s"

	// Flag descriptions
	MsgFlagSource      = "Plugin directory to back up (required)"
	MsgFlagDestination = "Backup directory receiving the links (required)"
	MsgFlagCompare     = "Compare plugin directories on both sides"
	MsgFlagLink        = "Hard-link plugin configuration files into the destination"
	MsgFlagArchive     = "Write a dated zip of the destination into the destination"
	MsgFlagDryRun      = "With --link, report what would be linked without linking"
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Configuration file applied after the user config"
	MsgFlagNoColor     = "Disable colored output"
	MsgFlagDefaults    = "Print the built-in defaults, comments included"
	MsgFlagWrite       = "Write to this file instead of stdout"

	// Error messages
	MsgErrRequiredFlags = "required flag(s) %s not set"
	MsgErrUnexpectedArg = "unexpected argument %q"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
